// Package metrics exposes Prometheus instrumentation for the
// investment platform. The collectors are registered at init and
// served on a dedicated listener so the API port stays clean.
package metrics

import (
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TransactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "camillo_transactions_total",
		Help: "Completed ledger entries by type.",
	}, []string{"type"})

	ProfitsCreditedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "camillo_profits_credited_total",
		Help: "Investments paid out exactly once.",
	})

	InvestmentsOpenedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "camillo_investments_opened_total",
		Help: "Investments opened.",
	})

	SweepRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "camillo_sweep_runs_total",
		Help: "Expiry sweep executions.",
	})

	SweepCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "camillo_sweep_completed_total",
		Help: "Investments completed by the expiry sweep.",
	})

	SweepErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "camillo_sweep_errors_total",
		Help: "Errors during expiry sweeps.",
	})

	DepositRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "camillo_deposit_requests_total",
		Help: "Manual deposit requests by outcome.",
	}, []string{"status"})
)

// StartMetricsServer serves /metrics on its own listener. The returned
// server should be shut down with the rest of the process.
func StartMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server stopped: %v", err)
		}
	}()
	return srv
}
