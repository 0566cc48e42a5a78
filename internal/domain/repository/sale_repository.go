package repository

import (
	"time"

	"github.com/jhoicas/minimarket-pos/internal/domain/entity"
)

// SaleFilter criterios para listar ventas.
type SaleFilter struct {
	CustomerID string
	Status     string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// SaleRepository define el puerto de persistencia para ventas.
// Las ventas nunca se eliminan; TransitionStatus es el único cambio permitido.
type SaleRepository interface {
	Create(sale *entity.Sale) error
	CreateItem(item *entity.SaleItem) error
	GetByID(id string) (*entity.Sale, error)
	GetItems(saleID string) ([]*entity.SaleItem, error)
	// TransitionStatus cambia el estado solo si la venta sigue en `from`.
	// Una transición concurrente que ganó la carrera produce
	// domain.ErrConcurrencyConflict.
	TransitionStatus(id, from, to string, updatedAt time.Time) error
	List(filter SaleFilter) ([]*entity.Sale, error)
}
