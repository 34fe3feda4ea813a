// internal/service/inventory/application/metrics.go
package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "inventory_operations_total",
	Help: "Ledger operations by type and outcome (ok, rejected, error).",
}, []string{"op", "outcome"})

func recordOperation(op, outcome string) {
	operationsTotal.WithLabelValues(op, outcome).Inc()
}
