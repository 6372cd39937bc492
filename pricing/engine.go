package pricing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"github.com/icodeforyou/spotprice-go/cache"
	"github.com/icodeforyou/spotprice-go/calc"
	"github.com/icodeforyou/spotprice-go/classify"
	"github.com/icodeforyou/spotprice-go/hours"
	"github.com/icodeforyou/spotprice-go/types"
)

// Settings controls how a day is priced and classified.
type Settings struct {
	Fees           calc.FeeSchedule
	HighCostHours  int
	PreferredHours []int
}

// Recorder receives engine events, see metrics.Recorder.
type Recorder interface {
	CacheHit()
	CacheMiss()
	CacheSize(n int)
	SourceFetch(source, result string)
}

type nopRecorder struct{}

func (nopRecorder) CacheHit()                  {}
func (nopRecorder) CacheMiss()                 {}
func (nopRecorder) CacheSize(int)              {}
func (nopRecorder) SourceFetch(string, string) {}

type Engine struct {
	logger     *slog.Logger
	source     types.PriceSource
	cache      *cache.DayCache
	loc        *time.Location
	settings   atomic.Pointer[Settings]
	generation atomic.Uint64
	recorder   Recorder
}

func NewEngine(source types.PriceSource, dayCache *cache.DayCache, loc *time.Location, settings Settings) *Engine {
	e := &Engine{
		logger:   slog.Default().With(slog.String("module", "pricing")),
		source:   source,
		cache:    dayCache,
		loc:      loc,
		recorder: nopRecorder{},
	}
	e.storeSettings(settings)
	return e
}

func (e *Engine) SetLogger(logger *slog.Logger) {
	e.logger = logger
}

func (e *Engine) SetRecorder(r Recorder) {
	e.recorder = r
}

func (e *Engine) Location() *time.Location {
	return e.loc
}

func (e *Engine) Settings() Settings {
	return *e.settings.Load()
}

// UpdateSettings replaces the settings and drops every cached day, so that
// later lookups are priced and classified with the new values.
func (e *Engine) UpdateSettings(s Settings) {
	e.storeSettings(s)
	e.generation.Add(1)
	e.cache.Clear()
	e.recorder.CacheSize(0)
	e.logger.Info("pricing settings updated",
		slog.Int("highCostHours", s.HighCostHours),
		slog.Any("preferredHours", s.PreferredHours),
		slog.Float64("fullFee", s.Fees.FullFee),
		slog.Float64("discountedFee", s.Fees.DiscountedFee))
}

func (e *Engine) storeSettings(s Settings) {
	s.PreferredHours = slices.Clone(s.PreferredHours)
	e.settings.Store(&s)
}

// GetDayResult returns the classified hours of the local calendar day of date.
// A date without published prices gives an error matching ErrNoData. Errors
// from the price source are returned as they are.
func (e *Engine) GetDayResult(ctx context.Context, date time.Time) (types.DayResult, error) {
	key := hours.DayKey(date, e.loc)

	if day, ok := e.cache.Get(key); ok {
		e.recorder.CacheHit()
		e.logger.Debug("cache hit", slog.String("day", key))
		return day, nil
	}
	e.recorder.CacheMiss()

	gen := e.generation.Load()
	s := e.Settings()

	samples, err := e.source.GetSamples(ctx, hours.StartOfDay(date, e.loc))
	if err != nil {
		if errors.Is(err, ErrNoData) {
			e.recorder.SourceFetch(e.source.Name(), "no_data")
			e.logger.Debug("no prices published", slog.String("day", key))
		} else {
			e.recorder.SourceFetch(e.source.Name(), "error")
		}
		return types.DayResult{}, err
	}
	if len(samples) == 0 {
		e.recorder.SourceFetch(e.source.Name(), "no_data")
		return types.DayResult{}, fmt.Errorf("%s: %w", key, ErrNoData)
	}
	e.recorder.SourceFetch(e.source.Name(), "ok")

	hrs, err := Assemble(date, samples, s.Fees, e.loc)
	if err != nil {
		return types.DayResult{}, err
	}

	day := types.NewDayResult(key, classify.Classify(hrs, s.HighCostHours, s.PreferredHours))

	// Settings changed while we were fetching, don't cache a stale result
	if e.generation.Load() == gen {
		e.cache.Put(key, day)
		e.recorder.CacheSize(e.cache.Len())
	}

	e.logger.Info("day priced",
		slog.String("day", key),
		slog.Int("hours", day.Len()),
		slog.Int("highCost", day.HighCostCount()))

	return day, nil
}

func (e *Engine) Today(ctx context.Context, now time.Time) (types.DayResult, error) {
	return e.GetDayResult(ctx, now)
}

func (e *Engine) Tomorrow(ctx context.Context, now time.Time) (types.DayResult, error) {
	return e.GetDayResult(ctx, hours.NextDay(now, e.loc))
}

// CurrentHour returns the hour containing now, if its day is available.
func (e *Engine) CurrentHour(ctx context.Context, now time.Time) (types.HourRecord, bool, error) {
	day, err := e.Today(ctx, now)
	if err != nil {
		return types.HourRecord{}, false, err
	}
	h, ok := day.At(now)
	return h, ok, nil
}
