package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder exposes the engine counters to Prometheus.
type Recorder struct {
	cacheLookups  *prometheus.CounterVec
	sourceFetches *prometheus.CounterVec
	cacheSize     prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "spotprice",
				Subsystem: "cache",
				Name:      "lookups_total",
				Help:      "Day cache lookups by result",
			},
			[]string{"result"},
		),
		sourceFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "spotprice",
				Subsystem: "source",
				Name:      "fetches_total",
				Help:      "Price source fetches by source and result",
			},
			[]string{"source", "result"},
		),
		cacheSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "spotprice",
				Subsystem: "cache",
				Name:      "days",
				Help:      "Number of days currently cached",
			},
		),
	}
	reg.MustRegister(r.cacheLookups, r.sourceFetches, r.cacheSize)
	return r
}

func (r *Recorder) CacheHit() {
	r.cacheLookups.WithLabelValues("hit").Inc()
}

func (r *Recorder) CacheMiss() {
	r.cacheLookups.WithLabelValues("miss").Inc()
}

func (r *Recorder) CacheSize(n int) {
	r.cacheSize.Set(float64(n))
}

// SourceFetch counts a fetch, result is one of "ok", "no_data" or "error".
func (r *Recorder) SourceFetch(source, result string) {
	r.sourceFetches.WithLabelValues(source, result).Inc()
}
