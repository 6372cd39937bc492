package pricing

import (
	"math"
	"time"

	"github.com/icodeforyou/spotprice-go/calc"
	"github.com/icodeforyou/spotprice-go/hours"
	"github.com/icodeforyou/spotprice-go/types"
	"github.com/icodeforyou/spotprice-go/types/maybe"
)

// Build turns one raw sample into an hour record. The discount window and the
// calendar fields are derived from the start time in loc.
func Build(sample types.RawSample, fees calc.FeeSchedule, loc *time.Location) (types.HourRecord, error) {
	if err := validateSample(sample); err != nil {
		return types.HourRecord{}, err
	}

	start := sample.TimeStart.In(loc)
	discounted := calc.IsDiscountWindow(start, loc)
	baseCost := sample.SpotPrice.Value()

	return types.HourRecord{
		Start:            start,
		End:              sample.TimeEnd.In(loc),
		HourOfDay:        start.Hour(),
		Weekday:          hours.IsoWeekday(start),
		BaseCost:         baseCost,
		IsDiscountWindow: discounted,
		Cost:             fees.Cost(baseCost, discounted),
		IsHighCost:       maybe.None[bool](),
	}, nil
}

func validateSample(sample types.RawSample) *InvalidSampleError {
	switch {
	case sample.TimeStart.IsZero():
		return &InvalidSampleError{Reason: "missing start time"}
	case sample.TimeEnd.IsZero():
		return &InvalidSampleError{Reason: "missing end time"}
	case !sample.TimeEnd.After(sample.TimeStart):
		return &InvalidSampleError{Reason: "end time is not after start time"}
	case !sample.SpotPrice.IsValid():
		return &InvalidSampleError{Reason: "missing spot price"}
	}
	p := sample.SpotPrice.Value()
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return &InvalidSampleError{Reason: "spot price is not a finite number"}
	}
	return nil
}
