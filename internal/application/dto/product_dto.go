package dto

import "github.com/shopspring/decimal"

// CreateProductRequest body para POST /api/products. InitialStock > 0 genera
// un movimiento IN con razón INITIAL_STOCK (el stock nunca se asigna directo).
type CreateProductRequest struct {
	Code         string          `json:"code"`
	Barcode      string          `json:"barcode,omitempty"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	CategoryID   string          `json:"category_id,omitempty"`
	SupplierID   string          `json:"supplier_id,omitempty"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SalePrice    decimal.Decimal `json:"sale_price"`
	MinStock     int64           `json:"min_stock,omitempty"`
	MaxStock     int64           `json:"max_stock,omitempty"`
	ReorderPoint int64           `json:"reorder_point,omitempty"`
	Unit         string          `json:"unit,omitempty"`
	InitialStock int64           `json:"initial_stock,omitempty"`
}

// UpdateProductRequest body para PUT /api/products/:id. El código es inmutable
// y el stock no es editable: solo cambia vía ledger.
type UpdateProductRequest struct {
	Barcode      string          `json:"barcode,omitempty"`
	Name         string          `json:"name,omitempty"`
	Description  string          `json:"description,omitempty"`
	CostPrice    decimal.Decimal `json:"cost_price,omitempty"`
	SalePrice    decimal.Decimal `json:"sale_price,omitempty"`
	MinStock     *int64          `json:"min_stock,omitempty"`
	MaxStock     *int64          `json:"max_stock,omitempty"`
	ReorderPoint *int64          `json:"reorder_point,omitempty"`
	IsActive     *bool           `json:"is_active,omitempty"`
}

// ProductResponse producto del catálogo.
type ProductResponse struct {
	ID           string          `json:"id"`
	Code         string          `json:"code"`
	Barcode      string          `json:"barcode,omitempty"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SalePrice    decimal.Decimal `json:"sale_price"`
	CurrentStock int64           `json:"current_stock"`
	MinStock     int64           `json:"min_stock"`
	MaxStock     int64           `json:"max_stock"`
	ReorderPoint int64           `json:"reorder_point"`
	StockStatus  string          `json:"stock_status"`
	IsActive     bool            `json:"is_active"`
}
