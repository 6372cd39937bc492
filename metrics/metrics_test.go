package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.CacheHit()
	r.CacheHit()
	r.CacheMiss()
	r.CacheSize(3)
	r.SourceFetch("hvakosterstrommen", "ok")
	r.SourceFetch("hvakosterstrommen", "no_data")

	if got := testutil.ToFloat64(r.cacheLookups.WithLabelValues("hit")); got != 2 {
		t.Errorf("got %v hits, wanted 2", got)
	}
	if got := testutil.ToFloat64(r.cacheLookups.WithLabelValues("miss")); got != 1 {
		t.Errorf("got %v misses, wanted 1", got)
	}
	if got := testutil.ToFloat64(r.cacheSize); got != 3 {
		t.Errorf("got cache size %v, wanted 3", got)
	}
	if got := testutil.ToFloat64(r.sourceFetches.WithLabelValues("hvakosterstrommen", "no_data")); got != 1 {
		t.Errorf("got %v no_data fetches, wanted 1", got)
	}
}
