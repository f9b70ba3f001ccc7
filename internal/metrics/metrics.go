// Package metrics exposes Prometheus collectors for the escrow program.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/blackcloro/escrow-program/internal/programerr"
)

const namespace = "escrow_program"

const (
	OutcomeOK          = "ok"
	OutcomeCustom      = "custom_error"
	OutcomeHostFailure = "host_error"
)

var (
	InstructionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "instructions_total",
			Help:      "Instructions processed, by instruction and outcome",
		},
		[]string{"instruction", "outcome"},
	)
	CustomFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "custom_failures_total",
			Help:      "Custom program failures returned to the host, by kind",
		},
		[]string{"kind", "code"},
	)
	NonRentExemptAccounts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "non_rent_exempt_accounts",
			Help:      "Program owned accounts below the rent-exempt minimum at the last audit",
		},
	)
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "status"},
	)
)

// RecordInstruction counts one processed instruction and returns the outcome
// label it was counted under. name is empty when the data did not decode.
func RecordInstruction(name string, err error) string {
	if name == "" {
		name = "unknown"
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeHostFailure
		if kind, ok := programerr.KindOf(err); ok {
			outcome = OutcomeCustom
			CustomFailuresTotal.WithLabelValues(kind.String(), strconv.FormatUint(uint64(kind.Code()), 10)).Inc()
		}
	}
	InstructionsTotal.WithLabelValues(name, outcome).Inc()
	return outcome
}

func ObserveHTTP(method string, status int, elapsed time.Duration) {
	s := strconv.Itoa(status)
	HTTPRequestsTotal.WithLabelValues(method, s).Inc()
	HTTPRequestDuration.WithLabelValues(method, s).Observe(elapsed.Seconds())
}
