package slice

import (
	"slices"
	"testing"
)

func TestMap(t *testing.T) {
	got := Map([]int{1, 2, 3}, func(i int) int { return i * 10 })
	if !slices.Equal(got, []int{10, 20, 30}) {
		t.Errorf("got %v", got)
	}
}

func TestFilter(t *testing.T) {
	got := Filter([]int{1, 2, 3, 4}, func(i int) bool { return i%2 == 0 })
	if !slices.Equal(got, []int{2, 4}) {
		t.Errorf("got %v", got)
	}
	if got := Filter([]int(nil), func(int) bool { return true }); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", got)
	}
}

func TestFind(t *testing.T) {
	if v, ok := Find([]string{"a", "b"}, func(s string) bool { return s == "b" }); !ok || v != "b" {
		t.Errorf("got %q, %v", v, ok)
	}
	if _, ok := Find([]string{"a"}, func(s string) bool { return s == "x" }); ok {
		t.Errorf("expected no match")
	}
}
