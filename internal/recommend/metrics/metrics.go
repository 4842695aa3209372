package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	CacheHits         prometheus.Counter
	CacheMisses       prometheus.Counter
	RefreshTotal      prometheus.Counter
	RefreshThrottled  prometheus.Counter
	MatchingDuration  prometheus.Histogram
	RecommendedCounts prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bokji_recommend_cache_hits_total",
			Help: "Total recommendation list reads served from cache",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bokji_recommend_cache_misses_total",
			Help: "Total recommendation list reads that fell through to the store",
		}),
		RefreshTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bokji_recommend_refresh_total",
			Help: "Total completed recommendation refreshes",
		}),
		RefreshThrottled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bokji_recommend_refresh_throttled_total",
			Help: "Total refresh requests rejected by the cooldown window",
		}),
		MatchingDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "bokji_recommend_matching_duration_seconds",
			Help:    "Wall time of scoring all active programs for one user",
			Buckets: prometheus.DefBuckets,
		}),
		RecommendedCounts: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "bokji_recommend_results_per_refresh",
			Help:    "Recommendations produced per refresh",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		}),
	}
}

func (m *Metrics) ObserveCacheHit(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHits.Inc()
	} else {
		m.CacheMisses.Inc()
	}
}

func (m *Metrics) ObserveRefresh(duration time.Duration, results int) {
	if m == nil {
		return
	}
	m.RefreshTotal.Inc()
	m.MatchingDuration.Observe(duration.Seconds())
	m.RecommendedCounts.Observe(float64(results))
}

func (m *Metrics) IncrementThrottled() {
	if m == nil {
		return
	}
	m.RefreshThrottled.Inc()
}
