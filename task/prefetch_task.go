package task

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/icodeforyou/spotprice-go/pricing"
)

// NewPrefetchTask warms the day cache with today and tomorrow. Tomorrow's
// prices are normally published early afternoon, so missing data for
// tomorrow is expected outside that window.
func NewPrefetchTask(logger *slog.Logger, pricer DayPricer, timeout time.Duration) func() {
	return func() {
		logger.Debug("running prefetch task...")

		ctx, cancel := context.WithTimeout(context.Background(), 2*timeout)
		defer cancel()

		t := now()
		if day, err := pricer.Today(ctx, t); err != nil {
			logger.Error("prefetch task error, today", slog.Any("error", err))
		} else {
			logger.Debug("today ready", slog.String("day", day.Key()))
		}

		day, err := pricer.Tomorrow(ctx, t)
		switch {
		case errors.Is(err, pricing.ErrNoData):
			logger.Debug("tomorrow not published yet")
		case err != nil:
			logger.Error("prefetch task error, tomorrow", slog.Any("error", err))
		default:
			logger.Info("prefetch task done", slog.String("tomorrow", day.Key()), slog.Int("highCost", day.HighCostCount()))
		}
	}
}
