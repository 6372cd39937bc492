package pricing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/icodeforyou/spotprice-go/hours"
	"github.com/icodeforyou/spotprice-go/types"
)

// FallbackSource asks each source in turn and returns the first one with data.
type FallbackSource struct {
	logger  *slog.Logger
	sources []types.PriceSource
}

func NewFallbackSource(sources ...types.PriceSource) *FallbackSource {
	if len(sources) == 0 {
		panic("no price sources")
	}
	return &FallbackSource{
		logger:  slog.Default().With(slog.String("module", "fallback_source")),
		sources: sources,
	}
}

func (f *FallbackSource) Name() string {
	names := make([]string, len(f.sources))
	for i, s := range f.sources {
		names[i] = s.Name()
	}
	return strings.Join(names, ",")
}

// GetSamples returns ErrNoData only when no source had data and none failed,
// otherwise the last failure is returned.
func (f *FallbackSource) GetSamples(ctx context.Context, date time.Time) ([]types.RawSample, error) {
	var lastErr error
	for _, src := range f.sources {
		samples, err := src.GetSamples(ctx, date)
		if err == nil && len(samples) > 0 {
			return samples, nil
		}

		if err == nil || errors.Is(err, ErrNoData) {
			f.logger.Debug("source has no data",
				slog.String("source", src.Name()),
				slog.String("day", hours.DayKey(date, date.Location())))
			continue
		}

		if ctx.Err() != nil {
			return nil, err
		}

		f.logger.Warn("source failed, trying next",
			slog.String("source", src.Name()),
			slog.Any("error", err))
		lastErr = err
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("%s: %w", hours.DayKey(date, date.Location()), ErrNoData)
}
