package elprisetjustnu

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/icodeforyou/spotprice-go/types"
	"github.com/icodeforyou/spotprice-go/types/maybe"
)

const (
	Name           = "elprisetjustnu"
	DefaultBaseURL = "https://www.elprisetjustnu.se"
)

type rawPrice struct {
	SEKPerKWh *float64  `json:"SEK_per_kWh"`
	EURPerKWh *float64  `json:"EUR_per_kWh"`
	EXR       float64   `json:"EXR"`
	TimeStart time.Time `json:"time_start"`
	TimeEnd   time.Time `json:"time_end"`
}

type ElPrisetJustNu struct {
	area    string
	baseURL string
	client  *http.Client
}

func New(area string, client *http.Client) ElPrisetJustNu {
	return NewWithBaseURL(area, DefaultBaseURL, client)
}

func NewWithBaseURL(area, baseURL string, client *http.Client) ElPrisetJustNu {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return ElPrisetJustNu{area: area, baseURL: baseURL, client: client}
}

func (e ElPrisetJustNu) Name() string {
	return Name
}

func (e ElPrisetJustNu) GetSamples(ctx context.Context, date time.Time) ([]types.RawSample, error) {
	url := fmt.Sprintf("%s/api/v1/prices/%d/%02d-%02d_%s.json",
		e.baseURL, date.Year(), int(date.Month()), date.Day(), e.area)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &types.TransportError{Source: Name, Err: fmt.Errorf("failed to fetch prices: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s %s: %w", Name, date.Format("2006-01-02"), types.ErrNoData)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &types.TransportError{Source: Name, StatusCode: resp.StatusCode}
	}

	var rawPrices []rawPrice
	if err := json.NewDecoder(resp.Body).Decode(&rawPrices); err != nil {
		return nil, &types.TransportError{Source: Name, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	samples := make([]types.RawSample, 0, len(rawPrices))
	for _, raw := range rawPrices {
		samples = append(samples, types.RawSample{
			TimeStart: raw.TimeStart,
			TimeEnd:   raw.TimeEnd,
			SpotPrice: maybe.FromPtr(raw.SEKPerKWh),
		})
	}

	return samples, nil
}
