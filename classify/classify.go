// Package classify flags the most expensive hours of a day as high-cost.
package classify

import (
	"slices"

	"github.com/icodeforyou/spotprice-go/types"
	"github.com/icodeforyou/spotprice-go/types/maybe"
)

// Classify marks exactly n hours as high-cost, or every hour when the day has
// fewer than n hours. Hours are expected in ascending start order and the
// input slice is left untouched.
//
// All hours costing at least the n-th highest cost are marked first. When ties
// at that threshold give more than n, the excess is demoted: first hours listed
// in preferredHours, in the order given, then the earliest hours of the day.
func Classify(hrs []types.HourRecord, n int, preferredHours []int) []types.HourRecord {
	out := make([]types.HourRecord, len(hrs))
	copy(out, hrs)

	if n <= 0 || len(out) == 0 {
		for i := range out {
			out[i].IsHighCost = maybe.Some(false)
		}
		return out
	}

	if n >= len(out) {
		for i := range out {
			out[i].IsHighCost = maybe.Some(true)
		}
		return out
	}

	threshold := nthHighestCost(out, n)
	marked := 0
	for i := range out {
		high := out[i].Cost >= threshold
		out[i].IsHighCost = maybe.Some(high)
		if high {
			marked++
		}
	}

	excess := marked - n
	if excess <= 0 {
		return out
	}

	for _, hod := range preferredHours {
		if excess == 0 {
			break
		}
		for i := range out {
			if excess == 0 {
				break
			}
			if out[i].HourOfDay == hod && isHigh(out[i]) {
				out[i].IsHighCost = maybe.Some(false)
				excess--
			}
		}
	}

	for i := 0; i < len(out) && excess > 0; i++ {
		if isHigh(out[i]) {
			out[i].IsHighCost = maybe.Some(false)
			excess--
		}
	}

	return out
}

func nthHighestCost(hrs []types.HourRecord, n int) float64 {
	costs := make([]float64, len(hrs))
	for i, h := range hrs {
		costs[i] = h.Cost
	}
	slices.Sort(costs)
	return costs[len(costs)-n]
}

func isHigh(h types.HourRecord) bool {
	return h.IsHighCost.ValueOrDefault(false)
}
