package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Contadores del núcleo de ventas e inventario, expuestos en /metrics.
var (
	MovementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_stock_movements_total",
		Help: "Movimientos de stock registrados en el ledger, por tipo.",
	}, []string{"type"})

	SalesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_sales_total",
		Help: "Ventas por resultado (completed, cancelled).",
	}, []string{"status"})

	InsufficientStockTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_insufficient_stock_total",
		Help: "Operaciones rechazadas por stock insuficiente.",
	})
)
