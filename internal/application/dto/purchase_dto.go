package dto

import "github.com/shopspring/decimal"

// POItemRequest línea de una orden de compra.
type POItemRequest struct {
	ProductID       string          `json:"product_id"`
	QuantityOrdered int64           `json:"quantity_ordered"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
}

// CreatePurchaseOrderRequest body para POST /api/purchase-orders.
type CreatePurchaseOrderRequest struct {
	SupplierID   string          `json:"supplier_id"`
	ExpectedDate string          `json:"expected_date,omitempty"` // YYYY-MM-DD
	Notes        string          `json:"notes,omitempty"`
	Items        []POItemRequest `json:"items"`
}

// POItemResponse línea en respuestas.
type POItemResponse struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"product_id"`
	QuantityOrdered  int64           `json:"quantity_ordered"`
	QuantityReceived int64           `json:"quantity_received"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	TotalPrice       decimal.Decimal `json:"total_price"`
}

// PurchaseOrderResponse orden con estado y totales.
type PurchaseOrderResponse struct {
	ID           string           `json:"id"`
	OrderNumber  string           `json:"order_number"`
	SupplierID   string           `json:"supplier_id"`
	Status       string           `json:"status"`
	OrderDate    string           `json:"order_date"`
	ExpectedDate string           `json:"expected_date,omitempty"`
	ReceivedDate string           `json:"received_date,omitempty"`
	Subtotal     decimal.Decimal  `json:"subtotal"`
	Tax          decimal.Decimal  `json:"tax"`
	Total        decimal.Decimal  `json:"total"`
	Items        []POItemResponse `json:"items"`
}
