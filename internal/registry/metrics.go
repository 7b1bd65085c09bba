package registry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks registry lookups and the cache in front of them.
type Metrics struct {
	Lookups      *prometheus.CounterVec
	LookupTime   prometheus.Histogram
	CacheResults *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Lookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vigisan_registry_lookups_total",
			Help: "Registry lookups by outcome",
		}, []string{"outcome"}), // "ok" or an error category

		LookupTime: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "vigisan_registry_lookup_duration_seconds",
			Help:    "Registry lookup duration including rate limiter wait",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),

		CacheResults: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vigisan_registry_cache_total",
			Help: "Registry cache lookups by result",
		}, []string{"result"}), // "hit", "miss", "error"
	}
}

func (m *Metrics) ObserveLookup(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.Lookups.WithLabelValues(outcome).Inc()
	m.LookupTime.Observe(d.Seconds())
}

func (m *Metrics) IncCache(result string) {
	if m != nil {
		m.CacheResults.WithLabelValues(result).Inc()
	}
}
