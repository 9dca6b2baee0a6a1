package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	APIRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ppc_ads_api_requests_total",
			Help: "Requests sent to the ads API by operation and status code.",
		},
		[]string{"operation", "status"},
	)

	APIRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ppc_ads_api_retries_total",
			Help: "Retries scheduled by the retry policy.",
		},
		[]string{"operation"},
	)

	TokenRefreshes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ppc_ads_token_refreshes_total",
		Help: "Access token refreshes performed.",
	})

	ReportJobs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ppc_report_jobs_total",
			Help: "Report jobs by report type and effective terminal state.",
		},
		[]string{"type", "state"},
	)

	Mutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ppc_mutations_total",
			Help: "Mutation proposals by engine and outcome.",
		},
		[]string{"engine", "outcome"},
	)

	WarehouseRows = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ppc_warehouse_rows_total",
			Help: "Rows loaded into the warehouse by table.",
		},
		[]string{"table"},
	)

	RunDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ppc_run_duration_seconds",
			Help:    "Automation run duration in seconds.",
			Buckets: []float64{10, 30, 60, 120, 300, 600, 1200, 1800},
		},
		[]string{"result"},
	)
)

var once sync.Once

// Init registra as métricas no registro padrão
func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			APIRequests,
			APIRetries,
			TokenRefreshes,
			ReportJobs,
			Mutations,
			WarehouseRows,
			RunDuration,
		)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}
