package repository

import (
	"time"

	"github.com/jhoicas/minimarket-pos/internal/domain/entity"
)

// PurchaseOrderRepository define el puerto de persistencia para órdenes de compra.
type PurchaseOrderRepository interface {
	Create(po *entity.PurchaseOrder) error
	CreateItem(item *entity.PurchaseOrderItem) error
	GetByID(id string) (*entity.PurchaseOrder, error)
	GetItems(poID string) ([]*entity.PurchaseOrderItem, error)
	// Update persiste estado, fechas y aprobador.
	Update(po *entity.PurchaseOrder) error
	// TransitionStatus cambia el estado solo si la orden sigue en `from`;
	// una transición concurrente que ganó produce domain.ErrConcurrencyConflict.
	TransitionStatus(id, from, to string, updatedAt time.Time) error
	UpdateItemReceived(itemID string, quantityReceived int64) error
	List(status string, limit, offset int) ([]*entity.PurchaseOrder, error)
}
