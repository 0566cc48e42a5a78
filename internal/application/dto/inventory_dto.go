package dto

import "github.com/shopspring/decimal"

// AdjustStockRequest body para POST /api/inventory/movements (ajustes manuales
// y stock inicial; ventas, compras y conteos generan sus propios movimientos).
type AdjustStockRequest struct {
	ProductID string `json:"product_id"`
	Type      string `json:"type"`     // IN, ADJUST
	Quantity  int64  `json:"quantity"` // con signo para ADJUST
	Reason    string `json:"reason,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// MovementResponse un movimiento del ledger.
type MovementResponse struct {
	ID           string `json:"id"`
	ProductID    string `json:"product_id"`
	Sequence     int64  `json:"sequence"`
	Type         string `json:"type"`
	Quantity     int64  `json:"quantity"`
	StockBefore  int64  `json:"stock_before"`
	StockAfter   int64  `json:"stock_after"`
	Reason       string `json:"reason,omitempty"`
	Reference    string `json:"reference,omitempty"`
	MovementDate string `json:"movement_date"`
}

// ListMovementsRequest filtros para GET /api/inventory/movements.
type ListMovementsRequest struct {
	ProductID string `query:"product_id"`
	Type      string `query:"type"`
	From      string `query:"from"` // YYYY-MM-DD
	To        string `query:"to"`
	PageRequest
}

// StockResponse stock vigente de un producto.
type StockResponse struct {
	ProductID    string `json:"product_id"`
	CurrentStock int64  `json:"current_stock"`
	StockStatus  string `json:"stock_status"`
}

// ReorderSignalResponse señal de reorden calculada por el sistema ML externo.
type ReorderSignalResponse struct {
	ProductID         string          `json:"product_id"`
	PredictedDemand   decimal.Decimal `json:"predicted_demand"`
	SuggestedOrderQty int64           `json:"suggested_order_qty"`
	Priority          int             `json:"priority"`
	GeneratedAt       string          `json:"generated_at"`
}

// LowStockItemDTO producto bajo punto de reorden, anotado con la señal ML si existe.
type LowStockItemDTO struct {
	ProductID         string          `json:"product_id"`
	Code              string          `json:"code"`
	Name              string          `json:"name"`
	CurrentStock      int64           `json:"current_stock"`
	MinStock          int64           `json:"min_stock"`
	ReorderPoint      int64           `json:"reorder_point"`
	StockStatus       string          `json:"stock_status"`
	PredictedDemand   decimal.Decimal `json:"predicted_demand,omitempty"`
	SuggestedOrderQty int64           `json:"suggested_order_qty,omitempty"`
	Priority          int             `json:"priority,omitempty"`
}
