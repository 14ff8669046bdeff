package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// System metrics
	SystemMemoryUsage = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "system_memory_bytes",
		Help: "Current system memory usage",
	})

	SystemGoroutines = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "system_goroutines",
		Help: "Number of goroutines",
	})

	// Analysis metrics
	StoredAnalyses = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "contract_stored_analyses",
		Help: "Number of analyses currently held in the report store",
	})

	RiskScoreDistribution = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "contract_risk_score",
		Help:    "Distribution of composite risk scores",
		Buckets: prometheus.LinearBuckets(0, 10, 11),
	})

	ParseErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contract_parse_errors_total",
			Help: "Total number of document parse errors",
		},
		[]string{"content_type"},
	)

	AssistantRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_requests_total",
			Help: "Total number of LLM assistant requests",
		},
		[]string{"operation", "status"},
	)
)

// UpdateSystemMetrics updates system-level metrics.
func UpdateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	SystemMemoryUsage.Set(float64(m.Alloc))
	SystemGoroutines.Set(float64(runtime.NumGoroutine()))
}
