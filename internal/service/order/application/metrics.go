// internal/service/order/application/metrics.go
package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var placementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "order_placements_total",
	Help: "Order placement attempts by outcome (ok, rejected, insufficient_stock, unreachable, error).",
}, []string{"outcome"})

func recordOrderPlacement(outcome string) {
	placementsTotal.WithLabelValues(outcome).Inc()
}
