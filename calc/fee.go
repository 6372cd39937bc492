package calc

import (
	"time"

	"github.com/icodeforyou/spotprice-go/hours"
	"github.com/shopspring/decimal"
)

// FeeSchedule holds the grid fee (nettleie) in currency per kWh.
type FeeSchedule struct {
	FullFee       float64
	DiscountedFee float64
}

// IsDiscountWindow reports whether the hour starting at start gets the reduced
// fee: all of Saturday and Sunday, and 22:00-05:59 on weekdays, local time.
func IsDiscountWindow(start time.Time, loc *time.Location) bool {
	local := start.In(loc)
	if wd := hours.IsoWeekday(local); wd == 6 || wd == 7 {
		return true
	}
	h := local.Hour()
	return h >= 22 || h <= 5
}

func (f FeeSchedule) Fee(discounted bool) float64 {
	if discounted {
		return f.DiscountedFee
	}
	return f.FullFee
}

// Cost adds the grid fee to the spot price. The sum is done in decimal so that
// equal totals from different operands compare equal as float64.
func (f FeeSchedule) Cost(baseCost float64, discounted bool) float64 {
	return decimal.NewFromFloat(baseCost).
		Add(decimal.NewFromFloat(f.Fee(discounted))).
		InexactFloat64()
}
