package pricing

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/icodeforyou/spotprice-go/types"
	"github.com/icodeforyou/spotprice-go/types/maybe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertContiguous(t *testing.T, hrs []types.HourRecord) {
	t.Helper()
	for i := 1; i < len(hrs); i++ {
		require.True(t, hrs[i].Start.After(hrs[i-1].Start), "hour %d not ascending", i)
		require.True(t, hrs[i].Start.Equal(hrs[i-1].End), "hour %d not contiguous", i)
	}
}

func TestAssembleSortsShuffledSamples(t *testing.T) {
	loc := oslo(t)
	day := time.Date(2025, time.January, 8, 0, 0, 0, 0, loc)
	samples := hourlySamples(day, loc, func(i int) float64 { return float64(i) / 10 })

	rng := rand.New(rand.NewPCG(1, 2))
	rng.Shuffle(len(samples), func(i, j int) { samples[i], samples[j] = samples[j], samples[i] })

	hrs, err := Assemble(day, samples, fees, loc)
	require.NoError(t, err)
	require.Len(t, hrs, 24)
	assertContiguous(t, hrs)
	for i, h := range hrs {
		assert.Equal(t, i, h.HourOfDay)
		assert.InDelta(t, float64(i)/10, h.BaseCost, 1e-12)
	}
}

func TestAssembleDaylightSaving(t *testing.T) {
	loc := oslo(t)

	tests := []struct {
		name     string
		day      time.Time
		expected int
	}{
		{"spring forward", time.Date(2025, time.March, 30, 0, 0, 0, 0, loc), 23},
		{"fall back", time.Date(2025, time.October, 26, 0, 0, 0, 0, loc), 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hrs, err := Assemble(tt.day, hourlySamples(tt.day, loc, func(int) float64 { return 1 }), fees, loc)
			require.NoError(t, err)
			assert.Len(t, hrs, tt.expected)
			assertContiguous(t, hrs)
		})
	}
}

func TestAssembleMergesQuarterHours(t *testing.T) {
	loc := oslo(t)
	day := time.Date(2025, time.October, 8, 0, 0, 0, 0, loc)

	var samples []types.RawSample
	for q := 0; q < 96; q++ {
		start := day.Add(time.Duration(q) * 15 * time.Minute)
		samples = append(samples, types.RawSample{
			TimeStart: start,
			TimeEnd:   start.Add(15 * time.Minute),
			SpotPrice: maybe.Some(float64(q%4) / 10), // 0.0, 0.1, 0.2, 0.3 within each hour
		})
	}

	hrs, err := Assemble(day, samples, fees, loc)
	require.NoError(t, err)
	require.Len(t, hrs, 24)
	assertContiguous(t, hrs)
	for _, h := range hrs {
		assert.Equal(t, time.Hour, h.End.Sub(h.Start))
		assert.Equal(t, 0.15, h.BaseCost)
	}
}

func TestAssembleNoData(t *testing.T) {
	loc := oslo(t)
	_, err := Assemble(time.Now(), nil, fees, loc)
	assert.True(t, errors.Is(err, ErrNoData))
}

func TestAssembleRejectsInvalidSamples(t *testing.T) {
	loc := oslo(t)
	day := time.Date(2025, time.January, 8, 0, 0, 0, 0, loc)

	t.Run("missing price", func(t *testing.T) {
		samples := hourlySamples(day, loc, func(int) float64 { return 1 })
		samples[5].SpotPrice = maybe.None[float64]()
		_, err := Assemble(day, samples, fees, loc)
		var ise *InvalidSampleError
		require.ErrorAs(t, err, &ise)
		assert.Equal(t, 5, ise.Index)
	})

	t.Run("gap", func(t *testing.T) {
		samples := hourlySamples(day, loc, func(int) float64 { return 1 })
		samples = append(samples[:10], samples[11:]...)
		_, err := Assemble(day, samples, fees, loc)
		var ise *InvalidSampleError
		assert.ErrorAs(t, err, &ise)
	})

	t.Run("quarter overlapping an hour", func(t *testing.T) {
		samples := hourlySamples(day, loc, func(int) float64 { return 1 })
		samples = append(samples, types.RawSample{
			TimeStart: day,
			TimeEnd:   day.Add(15 * time.Minute),
			SpotPrice: maybe.Some(9.0),
		})
		_, err := Assemble(day, samples, fees, loc)
		var ise *InvalidSampleError
		require.ErrorAs(t, err, &ise)
		assert.Equal(t, 24, ise.Index)
		assert.Contains(t, ise.Reason, "overlaps")
	})

	t.Run("duplicated quarter", func(t *testing.T) {
		var samples []types.RawSample
		for q := 0; q < 96; q++ {
			start := day.Add(time.Duration(q) * 15 * time.Minute)
			samples = append(samples, types.RawSample{TimeStart: start, TimeEnd: start.Add(15 * time.Minute), SpotPrice: maybe.Some(1.0)})
		}
		samples = append(samples, samples[40])
		_, err := Assemble(day, samples, fees, loc)
		var ise *InvalidSampleError
		require.ErrorAs(t, err, &ise)
		assert.Contains(t, ise.Reason, "overlaps")
	})

	t.Run("gap inside an hour", func(t *testing.T) {
		var samples []types.RawSample
		for q := 0; q < 96; q++ {
			if q == 1 {
				continue
			}
			start := day.Add(time.Duration(q) * 15 * time.Minute)
			samples = append(samples, types.RawSample{TimeStart: start, TimeEnd: start.Add(15 * time.Minute), SpotPrice: maybe.Some(1.0)})
		}
		_, err := Assemble(day, samples, fees, loc)
		var ise *InvalidSampleError
		require.ErrorAs(t, err, &ise)
		assert.Equal(t, 1, ise.Index)
		assert.Contains(t, ise.Reason, "gap")
	})

	t.Run("other day", func(t *testing.T) {
		samples := hourlySamples(day.AddDate(0, 0, 1), loc, func(int) float64 { return 1 })
		_, err := Assemble(day, samples, fees, loc)
		var ise *InvalidSampleError
		assert.ErrorAs(t, err, &ise)
	})
}
