package repository

import (
	"time"

	"github.com/jhoicas/minimarket-pos/internal/domain/entity"
)

// MovementFilter criterios para listar movimientos.
type MovementFilter struct {
	ProductID string
	Type      string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// StockMovementRepository define el puerto de persistencia del libro de
// movimientos. Solo hay Create y lecturas: los movimientos son inmutables.
type StockMovementRepository interface {
	Create(movement *entity.StockMovement) error
	GetByID(id string) (*entity.StockMovement, error)
	// LastSequence devuelve la última secuencia del producto (0 si no hay movimientos).
	LastSequence(productID string) (int64, error)
	// ListByProductAsc lista todos los movimientos de un producto en orden de
	// secuencia ascendente (para replay).
	ListByProductAsc(productID string) ([]*entity.StockMovement, error)
	List(filter MovementFilter) ([]*entity.StockMovement, error)
}
