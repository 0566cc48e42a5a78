package dto

import (
	"github.com/shopspring/decimal"
)

// SaleItemRequest una línea del carrito.
type SaleItemRequest struct {
	ProductID          string          `json:"product_id"`
	Quantity           int64           `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unit_price,omitempty"` // 0 = usar precio de catálogo
	DiscountPercentage decimal.Decimal `json:"discount_percentage,omitempty"`
}

// CreateSaleRequest body para POST /api/sales.
type CreateSaleRequest struct {
	CustomerID         string            `json:"customer_id,omitempty"` // vacío = cliente de paso
	PaymentMethod      string            `json:"payment_method"`
	DiscountPercentage decimal.Decimal   `json:"discount_percentage,omitempty"`
	Notes              string            `json:"notes,omitempty"`
	Items              []SaleItemRequest `json:"items"`
}

// SaleItemResponse línea de venta en respuestas.
type SaleItemResponse struct {
	ID                 string          `json:"id"`
	ProductID          string          `json:"product_id"`
	Quantity           int64           `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	TotalPrice         decimal.Decimal `json:"total_price"`
}

// SaleResponse venta con totales calculados.
type SaleResponse struct {
	ID                 string             `json:"id"`
	SaleNumber         string             `json:"sale_number"`
	CustomerID         string             `json:"customer_id,omitempty"`
	Status             string             `json:"status"`
	PaymentMethod      string             `json:"payment_method"`
	Subtotal           decimal.Decimal    `json:"subtotal"`
	DiscountPercentage decimal.Decimal    `json:"discount_percentage"`
	DiscountAmount     decimal.Decimal    `json:"discount_amount"`
	Tax                decimal.Decimal    `json:"tax"`
	Total              decimal.Decimal    `json:"total"`
	SaleDate           string             `json:"sale_date"`
	Items              []SaleItemResponse `json:"items"`
}

// ListSalesRequest filtros para GET /api/sales.
type ListSalesRequest struct {
	CustomerID string `query:"customer_id"`
	Status     string `query:"status"`
	From       string `query:"from"` // YYYY-MM-DD
	To         string `query:"to"`
	PageRequest
}
