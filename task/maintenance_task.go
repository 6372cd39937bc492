package task

import (
	"context"
	"log/slog"
	"time"
)

func NewMaintenanceTask(logger *slog.Logger, db LogPurger, maxLogEntries int) func() {
	return func() {
		logger.Debug("running maintenance task...")

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()

		if err := db.PurgeLog(ctx, maxLogEntries); err != nil {
			logger.Error("log maintenance error", slog.Any("error", err))
			return
		}

		logger.Info("maintenance task done")
	}
}
