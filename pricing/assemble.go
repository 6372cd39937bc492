package pricing

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/icodeforyou/spotprice-go/calc"
	"github.com/icodeforyou/spotprice-go/hours"
	"github.com/icodeforyou/spotprice-go/types"
	"github.com/icodeforyou/spotprice-go/types/maybe"
	"github.com/shopspring/decimal"
)

// Assemble builds the hour records of the local calendar day of date, sorted by
// start time. The samples must cover a contiguous span without overlaps.
// Samples shorter than an hour are merged per clock hour.
func Assemble(date time.Time, samples []types.RawSample, fees calc.FeeSchedule, loc *time.Location) ([]types.HourRecord, error) {
	key := hours.DayKey(date, loc)
	if len(samples) == 0 {
		return nil, fmt.Errorf("%s: %w", key, ErrNoData)
	}

	for i, s := range samples {
		if err := validateSample(s); err != nil {
			err.Index = i
			return nil, err
		}
		if k := hours.DayKey(s.TimeStart, loc); k != key {
			return nil, &InvalidSampleError{Index: i, Reason: fmt.Sprintf("sample belongs to %s, not %s", k, key)}
		}
	}

	order, err := checkSequence(samples)
	if err != nil {
		return nil, err
	}
	sorted := make([]types.RawSample, len(order))
	for i, idx := range order {
		sorted[i] = samples[idx]
	}

	merged := mergeByHour(sorted, loc)

	records := make([]types.HourRecord, 0, len(merged))
	for i, s := range merged {
		hr, err := Build(s, fees, loc)
		if err != nil {
			var ise *InvalidSampleError
			if errors.As(err, &ise) {
				ise.Index = i
			}
			return nil, err
		}
		records = append(records, hr)
	}

	return records, nil
}

// checkSequence orders the samples by start time and requires each one to
// begin exactly where the previous one ended. It returns the sample indexes in
// that order. Errors carry the index of the offending sample in the input.
func checkSequence(samples []types.RawSample) ([]int, error) {
	order := make([]int, len(samples))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return samples[a].TimeStart.Compare(samples[b].TimeStart)
	})

	for i := 1; i < len(order); i++ {
		prev, curr := samples[order[i-1]], samples[order[i]]
		if curr.TimeStart.Before(prev.TimeEnd) {
			return nil, &InvalidSampleError{Index: order[i], Reason: fmt.Sprintf("sample starting %s overlaps previous sample", curr.TimeStart.Format(time.RFC3339))}
		}
		if curr.TimeStart.After(prev.TimeEnd) {
			return nil, &InvalidSampleError{Index: order[i], Reason: fmt.Sprintf("gap before sample starting %s", curr.TimeStart.Format(time.RFC3339))}
		}
	}
	return order, nil
}

// mergeByHour collapses samples sharing a clock hour into one sample with the
// mean spot price. Hours with a single sample pass through untouched.
func mergeByHour(samples []types.RawSample, loc *time.Location) []types.RawSample {
	type bucket struct {
		start, end time.Time
		sum        decimal.Decimal
		n          int64
	}

	var order []int64
	buckets := make(map[int64]*bucket)
	for _, s := range samples {
		k := hours.HourStart(s.TimeStart.In(loc)).Unix()
		b, ok := buckets[k]
		if !ok {
			b = &bucket{start: s.TimeStart, end: s.TimeEnd}
			buckets[k] = b
			order = append(order, k)
		}
		if s.TimeStart.Before(b.start) {
			b.start = s.TimeStart
		}
		if s.TimeEnd.After(b.end) {
			b.end = s.TimeEnd
		}
		b.sum = b.sum.Add(decimal.NewFromFloat(s.SpotPrice.Value()))
		b.n++
	}

	if len(order) == len(samples) {
		return samples
	}

	merged := make([]types.RawSample, 0, len(order))
	for _, k := range order {
		b := buckets[k]
		merged = append(merged, types.RawSample{
			TimeStart: b.start,
			TimeEnd:   b.end,
			SpotPrice: maybe.Some(b.sum.Div(decimal.NewFromInt(b.n)).InexactFloat64()),
		})
	}
	return merged
}
