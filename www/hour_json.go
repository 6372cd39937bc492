package www

import (
	"time"

	"github.com/icodeforyou/spotprice-go/slice"
	"github.com/icodeforyou/spotprice-go/types"
	"github.com/icodeforyou/spotprice-go/types/maybe"
)

// HourJSON is the wire shape of an hour.
type HourJSON struct {
	BaseCost   float64           `json:"baseCost"`
	Cost       float64           `json:"cost"`
	Start      time.Time         `json:"start"`
	End        time.Time         `json:"end"`
	Numeral    int               `json:"numeral"`
	Weekday    int               `json:"weekday"`
	Discounted bool              `json:"discounted"`
	HighCost   maybe.Maybe[bool] `json:"highCost"`
}

func NewHourJSON(h types.HourRecord) HourJSON {
	return HourJSON{
		BaseCost:   h.BaseCost,
		Cost:       h.Cost,
		Start:      h.Start,
		End:        h.End,
		Numeral:    h.HourOfDay,
		Weekday:    h.Weekday,
		Discounted: h.IsDiscountWindow,
		HighCost:   h.IsHighCost,
	}
}

type hourFilter struct {
	onlyHighCost bool
	from         time.Time // zero keeps every hour
}

func (f hourFilter) apply(hrs []types.HourRecord) []HourJSON {
	hrs = slice.Filter(hrs, func(h types.HourRecord) bool {
		if f.onlyHighCost && !h.IsHighCost.ValueOrDefault(false) {
			return false
		}
		return f.from.IsZero() || h.End.After(f.from)
	})
	return slice.Map(hrs, NewHourJSON)
}
