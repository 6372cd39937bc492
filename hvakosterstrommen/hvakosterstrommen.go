// Package hvakosterstrommen fetches Norwegian spot prices from hvakosterstrommen.no.
package hvakosterstrommen

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
	Name           = "hvakosterstrommen"
	DefaultBaseURL = "https://www.hvakosterstrommen.no"
)

type rawPrice struct {
	NOKPerKWh *float64  `json:"NOK_per_kWh"`
	TimeStart time.Time `json:"time_start"`
	TimeEnd   time.Time `json:"time_end"`
}

type HvaKosterStrommen struct {
	area    string // "NO1" .. "NO5"
	baseURL string
	client  *http.Client
}

func New(area string, client *http.Client) HvaKosterStrommen {
	return NewWithBaseURL(area, DefaultBaseURL, client)
}

func NewWithBaseURL(area, baseURL string, client *http.Client) HvaKosterStrommen {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return HvaKosterStrommen{area: area, baseURL: baseURL, client: client}
}

func (h HvaKosterStrommen) Name() string {
	return Name
}

func (h HvaKosterStrommen) GetSamples(ctx context.Context, date time.Time) ([]types.RawSample, error) {
	url := fmt.Sprintf("%s/api/v1/prices/%d/%02d-%02d_%s.json",
		h.baseURL, date.Year(), int(date.Month()), date.Day(), h.area)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, &types.TransportError{Source: Name, Err: err}
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

	if len(rawPrices) == 0 {
		return nil, fmt.Errorf("%s %s: %w", Name, date.Format("2006-01-02"), types.ErrNoData)
	}

	samples := make([]types.RawSample, 0, len(rawPrices))
	for _, raw := range rawPrices {
		samples = append(samples, types.RawSample{
			TimeStart: raw.TimeStart,
			TimeEnd:   raw.TimeEnd,
			SpotPrice: maybe.FromPtr(raw.NOKPerKWh),
		})
	}

	return samples, nil
}
