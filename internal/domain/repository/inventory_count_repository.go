package repository

import (
	"time"

	"github.com/jhoicas/minimarket-pos/internal/domain/entity"
)

// InventoryCountRepository define el puerto de persistencia para conteos físicos.
type InventoryCountRepository interface {
	Create(count *entity.InventoryCount) error
	GetByID(id string) (*entity.InventoryCount, error)
	Update(count *entity.InventoryCount) error
	// TransitionStatus cambia el estado solo si el conteo sigue en `from`;
	// una transición concurrente que ganó produce domain.ErrConcurrencyConflict.
	TransitionStatus(id, from, to string, updatedAt time.Time) error
	// UpsertItem registra o sobrescribe la línea contada de un producto
	// dentro de la misma sesión de conteo.
	UpsertItem(item *entity.InventoryCountItem) error
	GetItems(countID string) ([]*entity.InventoryCountItem, error)
	List(status string, limit, offset int) ([]*entity.InventoryCount, error)
}
