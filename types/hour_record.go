package types

import (
	"time"

	"github.com/icodeforyou/spotprice-go/slice"
	"github.com/icodeforyou/spotprice-go/types/maybe"
)

// HourRecord is one hour of a day with the grid fee applied.
type HourRecord struct {
	Start            time.Time
	End              time.Time
	HourOfDay        int // 0-23, local time
	Weekday          int // ISO weekday, Monday = 1
	BaseCost         float64
	IsDiscountWindow bool
	Cost             float64
	IsHighCost       maybe.Maybe[bool] // None until classified
}

// Contains reports whether t lies in [Start, End).
func (h HourRecord) Contains(t time.Time) bool {
	return !t.Before(h.Start) && t.Before(h.End)
}

// DayResult is the classified hours of one local calendar day. It is never
// modified after construction, so it can be shared between readers.
type DayResult struct {
	key   string
	hours []HourRecord
}

func NewDayResult(key string, hours []HourRecord) DayResult {
	cp := make([]HourRecord, len(hours))
	copy(cp, hours)
	return DayResult{key: key, hours: cp}
}

func (d DayResult) Key() string {
	return d.key
}

func (d DayResult) Len() int {
	return len(d.hours)
}

// Hours returns a copy of the hours in ascending start order.
func (d DayResult) Hours() []HourRecord {
	cp := make([]HourRecord, len(d.hours))
	copy(cp, d.hours)
	return cp
}

func (d DayResult) HighCostCount() int {
	n := 0
	for _, h := range d.hours {
		if h.IsHighCost.ValueOrDefault(false) {
			n++
		}
	}
	return n
}

// At finds the hour containing t.
func (d DayResult) At(t time.Time) (HourRecord, bool) {
	return slice.Find(d.hours, func(h HourRecord) bool { return h.Contains(t) })
}
