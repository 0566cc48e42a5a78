package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden de compra. El flujo es estrictamente hacia adelante:
// PENDING -> APPROVED -> RECEIVED; CANCELLED solo desde PENDING o APPROVED.
const (
	POStatusPending   = "PENDING"
	POStatusApproved  = "APPROVED"
	POStatusReceived  = "RECEIVED"
	POStatusCancelled = "CANCELLED"
)

// PurchaseOrder representa una orden de compra a un proveedor.
type PurchaseOrder struct {
	ID           string
	OrderNumber  string
	SupplierID   string
	Status       string
	OrderDate    time.Time
	ExpectedDate *time.Time
	ReceivedDate *time.Time
	Subtotal     decimal.Decimal
	Tax          decimal.Decimal
	Total        decimal.Decimal
	Notes        string
	CreatedBy    string
	ApprovedBy   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Items        []*PurchaseOrderItem
}

// CanTransitionTo valida la máquina de estados de la orden.
func (po *PurchaseOrder) CanTransitionTo(target string) bool {
	switch po.Status {
	case POStatusPending:
		return target == POStatusApproved || target == POStatusCancelled
	case POStatusApproved:
		return target == POStatusReceived || target == POStatusCancelled
	}
	return false // RECEIVED y CANCELLED son terminales
}

// PurchaseOrderItem es una línea de la orden de compra.
type PurchaseOrderItem struct {
	ID               string
	PurchaseOrderID  string
	ProductID        string
	QuantityOrdered  int64
	QuantityReceived int64
	UnitPrice        decimal.Decimal
	TotalPrice       decimal.Decimal
}
