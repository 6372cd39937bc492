package nordpool

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/icodeforyou/spotprice-go/convert"
	"github.com/icodeforyou/spotprice-go/types"
	"github.com/icodeforyou/spotprice-go/types/maybe"
)

const (
	Name           = "nordpool"
	DefaultBaseURL = "https://dataportal-api.nordpoolgroup.com"
)

type dayAheadPrices struct {
	DeliveryDateCET  string           `json:"deliveryDateCET"`
	Currency         string           `json:"currency"`
	MultiAreaEntries []multiAreaEntry `json:"multiAreaEntries"`
}

type multiAreaEntry struct {
	DeliveryStart time.Time          `json:"deliveryStart"`
	DeliveryEnd   time.Time          `json:"deliveryEnd"`
	EntryPerArea  map[string]float64 `json:"entryPerArea"`
}

type Nordpool struct {
	logger   *slog.Logger
	area     string
	currency string
	baseURL  string
	client   *http.Client
}

func New(area, currency string, client *http.Client) Nordpool {
	return NewWithBaseURL(area, currency, DefaultBaseURL, client)
}

func NewWithBaseURL(area, currency, baseURL string, client *http.Client) Nordpool {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return Nordpool{
		logger:   slog.Default().With(slog.String("module", Name)),
		area:     area,
		currency: currency,
		baseURL:  baseURL,
		client:   client,
	}
}

func (n Nordpool) Name() string {
	return Name
}

func (n Nordpool) GetSamples(ctx context.Context, date time.Time) ([]types.RawSample, error) {
	q := url.Values{}
	q.Set("date", date.Format("2006-01-02"))
	q.Set("market", "DayAhead")
	q.Set("deliveryArea", n.area)
	q.Set("currency", n.currency)
	u := fmt.Sprintf("%s/api/DayAheadPrices?%s", n.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := n.client.Do(req)
	if err != nil {
		return nil, &types.TransportError{Source: Name, Err: fmt.Errorf("failed to fetch prices: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent {
		return nil, fmt.Errorf("%s %s: %w", Name, date.Format("2006-01-02"), types.ErrNoData)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &types.TransportError{Source: Name, StatusCode: resp.StatusCode}
	}

	var data dayAheadPrices
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, &types.TransportError{Source: Name, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	samples := make([]types.RawSample, 0, len(data.MultiAreaEntries))
	seen := make(map[int64]types.RawSample, len(data.MultiAreaEntries))
	for _, entry := range data.MultiAreaEntries {
		sample := types.RawSample{
			TimeStart: entry.DeliveryStart,
			TimeEnd:   entry.DeliveryEnd,
			SpotPrice: maybe.None[float64](),
		}
		if price, ok := entry.EntryPerArea[n.area]; ok {
			sample.SpotPrice = maybe.Some(normalizePrice(price))
		}

		// Repeated identical entries are dropped, conflicting ones are kept
		// so the day is rejected as overlapping.
		if prev, ok := seen[entry.DeliveryStart.Unix()]; ok {
			if sameSample(prev, sample) {
				n.logger.Warn("dropping repeated entry", slog.Time("deliveryStart", entry.DeliveryStart))
				continue
			}
			n.logger.Warn("conflicting entries for delivery period", slog.Time("deliveryStart", entry.DeliveryStart))
		}
		seen[entry.DeliveryStart.Unix()] = sample
		samples = append(samples, sample)
	}

	if len(samples) == 0 {
		return nil, fmt.Errorf("%s %s: %w", Name, date.Format("2006-01-02"), types.ErrNoData)
	}

	return samples, nil
}

// Prices are published per MWh
func normalizePrice(price float64) float64 {
	return convert.RoundFloat64(convert.MWhToKWh(price), 5)
}

func sameSample(a, b types.RawSample) bool {
	return a.TimeEnd.Equal(b.TimeEnd) &&
		a.SpotPrice.IsValid() == b.SpotPrice.IsValid() &&
		a.SpotPrice.ValueOrDefault(0) == b.SpotPrice.ValueOrDefault(0)
}
