package slice

func Map[T any, U any](input []T, fn func(T) U) []U {
	result := make([]U, len(input))
	for i, v := range input {
		result[i] = fn(v)
	}
	return result
}

// Filter returns the elements matching pred, keeping their order.
func Filter[T any](input []T, pred func(T) bool) []T {
	result := make([]T, 0, len(input))
	for _, v := range input {
		if pred(v) {
			result = append(result, v)
		}
	}
	return result
}

func Find[T any](input []T, pred func(T) bool) (T, bool) {
	for _, v := range input {
		if pred(v) {
			return v, true
		}
	}
	var zero T
	return zero, false
}
