// internal/pkg/resilience/metrics.go
package resilience

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess      = "success"
	outcomeFailure      = "failure"
	outcomePermanent    = "permanent"
	outcomeShortCircuit = "short_circuit"
)

var (
	callsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resilience_calls_total",
		Help: "Logical call outcomes per call group (retries are folded into one outcome).",
	}, []string{"group", "outcome"})

	breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "resilience_breaker_state",
		Help: "Circuit breaker state per call group: 0=closed, 1=open, 2=half-open.",
	}, []string{"group"})
)

func recordCall(group, outcome string) {
	callsTotal.WithLabelValues(group, outcome).Inc()
}

func setBreakerStateGauge(group string, s State) {
	breakerState.WithLabelValues(group).Set(float64(s))
}
