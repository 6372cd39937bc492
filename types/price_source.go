package types

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/icodeforyou/spotprice-go/types/maybe"
)

// ErrNoData is returned when a source has nothing published for a date.
var ErrNoData = errors.New("no price data for date")

// RawSample is one price interval as delivered by a price source.
type RawSample struct {
	TimeStart time.Time
	TimeEnd   time.Time
	SpotPrice maybe.Maybe[float64] // Currency per kWh, excluding grid fee
}

// PriceSource returns the raw samples for the calendar day of date.
// A source without data for that day returns an error matching ErrNoData.
type PriceSource interface {
	Name() string
	GetSamples(ctx context.Context, date time.Time) ([]RawSample, error)
}

// TransportError wraps a failure talking to an upstream price source.
type TransportError struct {
	Source     string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: unexpected status code %d", e.Source, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
