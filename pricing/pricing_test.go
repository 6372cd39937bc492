package pricing

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/icodeforyou/spotprice-go/calc"
	"github.com/icodeforyou/spotprice-go/types"
	"github.com/icodeforyou/spotprice-go/types/maybe"
)

var fees = calc.FeeSchedule{FullFee: 0.225, DiscountedFee: 0.145}

func oslo(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Oslo")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

// hourlySamples returns one sample per hour of the local day, priced by priceFn.
func hourlySamples(day time.Time, loc *time.Location, priceFn func(i int) float64) []types.RawSample {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)
	var samples []types.RawSample
	for i, t := 0, start; t.Before(end); i, t = i+1, t.Add(time.Hour) {
		samples = append(samples, types.RawSample{
			TimeStart: t,
			TimeEnd:   t.Add(time.Hour),
			SpotPrice: maybe.Some(priceFn(i)),
		})
	}
	return samples
}

type fakeSource struct {
	mu      sync.Mutex
	name    string
	samples map[string][]types.RawSample
	err     error
	calls   int
	loc     *time.Location
}

func (f *fakeSource) Name() string {
	if f.name == "" {
		return "fake"
	}
	return f.name
}

func (f *fakeSource) GetSamples(ctx context.Context, date time.Time) ([]types.RawSample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.samples[date.In(f.loc).Format("2006-01-02")]
	if !ok {
		return nil, ErrNoData
	}
	return s, nil
}

func (f *fakeSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
