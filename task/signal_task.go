package task

import (
	"context"
	"log/slog"
	"time"
)

// NewSignalTask publishes the classification of the hour that just started.
func NewSignalTask(logger *slog.Logger, pricer DayPricer, publisher HourPublisher) func() {
	return func() {
		logger.Debug("running signal task...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		hour, ok, err := pricer.CurrentHour(ctx, now())
		if err != nil {
			logger.Error("signal task error, getting current hour", slog.Any("error", err))
			return
		}
		if !ok {
			logger.Warn("signal task, current hour missing from today's prices")
			return
		}

		if err := publisher.PublishHour(ctx, hour); err != nil {
			logger.Error("signal task error, publishing", slog.Any("error", err))
			return
		}

		logger.Info("signal task done",
			slog.Time("hour", hour.Start),
			slog.Float64("cost", hour.Cost),
			slog.Bool("highCost", hour.IsHighCost.ValueOrDefault(false)))
	}
}
