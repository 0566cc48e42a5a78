package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una venta.
const (
	SaleStatusPending   = "PENDING"
	SaleStatusCompleted = "COMPLETED"
	SaleStatusCancelled = "CANCELLED"
)

// Métodos de pago aceptados en caja.
const (
	PaymentCash     = "CASH"
	PaymentCard     = "CARD"
	PaymentTransfer = "TRANSFER"
	PaymentCredit   = "CREDIT"
	PaymentYape     = "YAPE"
	PaymentPlin     = "PLIN"
)

// ValidPaymentMethod verifica el método de pago.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer, PaymentCredit, PaymentYape, PaymentPlin:
		return true
	}
	return false
}

// Sale representa una venta confirmada en caja. Nunca se elimina: una venta
// COMPLETED solo puede pasar a CANCELLED (con movimientos RETURN compensatorios).
type Sale struct {
	ID                 string
	SaleNumber         string // único, generado
	CustomerID         string // vacío = cliente de paso
	SellerID           string
	PaymentMethod      string
	Status             string
	Subtotal           decimal.Decimal
	DiscountPercentage decimal.Decimal // descuento a nivel de orden [0,100]
	DiscountAmount     decimal.Decimal
	Tax                decimal.Decimal // IGV
	Total              decimal.Decimal
	Notes              string
	SaleDate           time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
	Items              []*SaleItem
}

// CanTransitionTo valida la máquina de estados de la venta.
func (s *Sale) CanTransitionTo(target string) bool {
	switch s.Status {
	case SaleStatusPending:
		return target == SaleStatusCompleted || target == SaleStatusCancelled
	case SaleStatusCompleted:
		return target == SaleStatusCancelled
	}
	return false // CANCELLED es terminal
}

// SaleItem es una línea de venta con el precio capturado al momento de vender.
type SaleItem struct {
	ID                 string
	SaleID             string
	ProductID          string
	Quantity           int64
	UnitPrice          decimal.Decimal // snapshot del precio de venta
	DiscountPercentage decimal.Decimal // descuento de línea [0,100]
	TotalPrice         decimal.Decimal
	UnitCost           decimal.Decimal // para análisis de rentabilidad
	TotalCost          decimal.Decimal
	Profit             decimal.Decimal
}
