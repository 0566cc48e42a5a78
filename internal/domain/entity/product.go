package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de stock derivados (para alertas y tableros).
const (
	StockStatusOut    = "SIN_STOCK"
	StockStatusLow    = "STOCK_BAJO"
	StockStatusOver   = "SOBRESTOCK"
	StockStatusNormal = "NORMAL"
)

// Product representa un producto del catálogo del minimarket.
// CurrentStock es una materialización derivada del libro de movimientos:
// solo el ledger la escribe (append o replay), nunca ventas/compras/conteos.
type Product struct {
	ID           string
	Code         string // único e inmutable
	Barcode      string
	Name         string
	Description  string
	CategoryID   string
	SupplierID   string
	CostPrice    decimal.Decimal
	SalePrice    decimal.Decimal
	CurrentStock int64
	MinStock     int64
	MaxStock     int64
	ReorderPoint int64 // consultivo: min_stock <= reorder_point <= max_stock
	Unit         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// StockStatus clasifica el stock actual contra los umbrales del producto.
func (p *Product) StockStatus() string {
	switch {
	case p.CurrentStock <= 0:
		return StockStatusOut
	case p.CurrentStock <= p.MinStock:
		return StockStatusLow
	case p.MaxStock > 0 && p.CurrentStock >= p.MaxStock:
		return StockStatusOver
	default:
		return StockStatusNormal
	}
}

// ProfitMargin margen de ganancia en porcentaje sobre el costo.
func (p *Product) ProfitMargin() decimal.Decimal {
	if p.CostPrice.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return p.SalePrice.Sub(p.CostPrice).Div(p.CostPrice).Mul(decimal.NewFromInt(100))
}
