package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/icodeforyou/spotprice-go/config"
	"github.com/icodeforyou/spotprice-go/types"
	"github.com/robfig/cron/v3"
)

// DayPricer is the part of the pricing engine the tasks need.
type DayPricer interface {
	Today(ctx context.Context, now time.Time) (types.DayResult, error)
	Tomorrow(ctx context.Context, now time.Time) (types.DayResult, error)
	CurrentHour(ctx context.Context, now time.Time) (types.HourRecord, bool, error)
}

type HourPublisher interface {
	PublishHour(ctx context.Context, hour types.HourRecord) error
}

type LogPurger interface {
	PurgeLog(ctx context.Context, maxLogEntries int) error
}

var now = time.Now

type Tasks struct {
	cron            *cron.Cron
	cnfg            *config.AppConfig
	PrefetchTask    func()
	SignalTask      func()
	MaintenanceTask func()
}

func NewTasks(
	pricer DayPricer,
	publisher HourPublisher,
	db LogPurger,
	cnfg *config.AppConfig,
	loc *time.Location,
) *Tasks {
	logger := slog.Default().With("module", "tasks")
	return &Tasks{
		cron:            cron.New(cron.WithLocation(loc)),
		cnfg:            cnfg,
		PrefetchTask:    NewPrefetchTask(logger.With(slog.String("task", "prefetch")), pricer, cnfg.PriceSource.GetTimeout()),
		SignalTask:      NewSignalTask(logger.With(slog.String("task", "signal")), pricer, publisher),
		MaintenanceTask: NewMaintenanceTask(logger.With(slog.String("task", "maintenance")), db, cnfg.Logging.GetDbMaxEntries()),
	}
}

// Run schedules the tasks and starts the scheduler. The prefetch and signal
// tasks also run once right away, so a fresh start has a warm cache and a
// published state without waiting for the first tick.
func (t *Tasks) Run() {
	_, err := t.cron.AddFunc(t.cnfg.PriceSource.GetPrefetchAt(), t.PrefetchTask)
	if err != nil {
		panic(err)
	}
	_, err = t.cron.AddFunc("@hourly", t.SignalTask)
	if err != nil {
		panic(err)
	}
	_, err = t.cron.AddFunc("30 2 * * *", t.MaintenanceTask)
	if err != nil {
		panic(err)
	}

	go func() {
		t.PrefetchTask()
		t.SignalTask()
	}()

	t.cron.Start()
}

func (t *Tasks) Stop() context.Context {
	return t.cron.Stop()
}
