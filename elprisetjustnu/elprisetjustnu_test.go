package elprisetjustnu

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/icodeforyou/spotprice-go/types"
)

func TestGetSamples(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/prices/2025/03-30_SE3.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[{"SEK_per_kWh":1.25,"EUR_per_kWh":0.11,"EXR":11.2,"time_start":"2025-03-30T00:00:00+01:00","time_end":"2025-03-30T01:00:00+01:00"}]`))
	}))
	defer srv.Close()

	e := NewWithBaseURL("SE3", srv.URL, srv.Client())
	samples, err := e.GetSamples(context.Background(), time.Date(2025, time.March, 30, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("GetSamples() unexpected error: %v", err)
	}
	if len(samples) != 1 || samples[0].SpotPrice.Value() != 1.25 {
		t.Errorf("unexpected samples %+v", samples)
	}
}

func TestGetSamplesNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewWithBaseURL("SE3", srv.URL, srv.Client()).GetSamples(context.Background(), time.Now())
	if !errors.Is(err, types.ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}
