package pricing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/icodeforyou/spotprice-go/cache"
	"github.com/icodeforyou/spotprice-go/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultSettings = Settings{
	Fees:           fees,
	HighCostHours:  8,
	PreferredHours: []int{5, 6, 7, 17, 18, 19},
}

type countingRecorder struct {
	mu                 sync.Mutex
	hits, misses, size int
	fetches            map[string]int
}

func (r *countingRecorder) CacheHit()       { r.mu.Lock(); r.hits++; r.mu.Unlock() }
func (r *countingRecorder) CacheMiss()      { r.mu.Lock(); r.misses++; r.mu.Unlock() }
func (r *countingRecorder) CacheSize(n int) { r.mu.Lock(); r.size = n; r.mu.Unlock() }
func (r *countingRecorder) SourceFetch(_, result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fetches == nil {
		r.fetches = map[string]int{}
	}
	r.fetches[result]++
}

func newEngine(t *testing.T, days ...time.Time) (*Engine, *fakeSource) {
	t.Helper()
	loc := oslo(t)
	src := &fakeSource{loc: loc, samples: map[string][]types.RawSample{}}
	for _, d := range days {
		src.samples[d.Format("2006-01-02")] = hourlySamples(d, loc, func(i int) float64 { return float64(i % 12) })
	}
	return NewEngine(src, cache.NewDayCache(7), loc, defaultSettings), src
}

func TestEngineGetDayResult(t *testing.T) {
	loc := oslo(t)
	day := time.Date(2025, time.January, 8, 0, 0, 0, 0, loc)
	e, src := newEngine(t, day)

	res, err := e.GetDayResult(context.Background(), day.Add(13*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, "2025-01-08", res.Key())
	assert.Equal(t, 24, res.Len())
	assert.Equal(t, 8, res.HighCostCount())
	assert.Equal(t, 1, src.Calls())
}

func TestEngineCachesResult(t *testing.T) {
	loc := oslo(t)
	day := time.Date(2025, time.January, 8, 0, 0, 0, 0, loc)
	e, src := newEngine(t, day)
	rec := &countingRecorder{}
	e.SetRecorder(rec)

	first, err := e.GetDayResult(context.Background(), day)
	require.NoError(t, err)
	second, err := e.GetDayResult(context.Background(), day.Add(20*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, src.Calls())
	assert.Equal(t, 1, rec.hits)
	assert.Equal(t, 1, rec.misses)
	assert.Equal(t, 1, rec.size)
}

func TestEngineConcurrentMisses(t *testing.T) {
	loc := oslo(t)
	day := time.Date(2025, time.January, 8, 0, 0, 0, 0, loc)
	e, src := newEngine(t, day)

	const workers = 8
	var wg sync.WaitGroup
	results := make([]types.DayResult, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := e.GetDayResult(context.Background(), day)
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, src.Calls(), workers)
	for _, r := range results[1:] {
		assert.Equal(t, results[0].Hours(), r.Hours())
	}

	_, err := e.GetDayResult(context.Background(), day)
	require.NoError(t, err)
	assert.LessOrEqual(t, src.Calls(), workers)
}

func TestEngineNoData(t *testing.T) {
	e, src := newEngine(t)

	_, err := e.GetDayResult(context.Background(), time.Now())
	assert.True(t, errors.Is(err, ErrNoData))

	// Missing days are not cached
	_, _ = e.GetDayResult(context.Background(), time.Now())
	assert.Equal(t, 2, src.Calls())
}

func TestEngineEmptySamplesCountAsNoData(t *testing.T) {
	loc := oslo(t)
	day := time.Date(2025, time.January, 8, 0, 0, 0, 0, loc)
	e, src := newEngine(t)
	src.samples["2025-01-08"] = nil
	rec := &countingRecorder{}
	e.SetRecorder(rec)

	_, err := e.GetDayResult(context.Background(), day)

	assert.True(t, errors.Is(err, ErrNoData))
	assert.Equal(t, 1, rec.fetches["no_data"])
	assert.Zero(t, rec.fetches["ok"])
}

func TestEnginePropagatesTransportError(t *testing.T) {
	e, src := newEngine(t)
	transportErr := &types.TransportError{Source: "fake", StatusCode: 503}
	src.err = transportErr

	_, err := e.GetDayResult(context.Background(), time.Now())
	assert.Same(t, transportErr, err)
}

func TestEngineUpdateSettingsReclassifies(t *testing.T) {
	loc := oslo(t)
	day := time.Date(2025, time.January, 8, 0, 0, 0, 0, loc)
	e, src := newEngine(t, day)

	res, err := e.GetDayResult(context.Background(), day)
	require.NoError(t, err)
	require.Equal(t, 8, res.HighCostCount())

	s := e.Settings()
	s.HighCostHours = 4
	e.UpdateSettings(s)

	res, err = e.GetDayResult(context.Background(), day)
	require.NoError(t, err)
	assert.Equal(t, 4, res.HighCostCount())
	assert.Equal(t, 2, src.Calls())
}

func TestEngineTomorrowAndCurrentHour(t *testing.T) {
	loc := oslo(t)
	today := time.Date(2025, time.January, 8, 0, 0, 0, 0, loc)
	tomorrow := today.AddDate(0, 0, 1)
	e, _ := newEngine(t, today, tomorrow)

	now := today.Add(14*time.Hour + 30*time.Minute)

	res, err := e.Tomorrow(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-09", res.Key())

	h, ok, err := e.CurrentHour(context.Background(), now)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 14, h.HourOfDay)
}
