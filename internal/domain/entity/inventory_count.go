package entity

import "time"

// Estados de un conteo físico de inventario.
const (
	CountStatusPlanned    = "PLANNED"
	CountStatusInProgress = "IN_PROGRESS"
	CountStatusCompleted  = "COMPLETED"
	CountStatusCancelled  = "CANCELLED"
)

// InventoryCount representa un conteo físico programado. Al completarse, cada
// línea contada se compara contra el stock del ledger y las diferencias
// generan movimientos ADJUST; los productos no contados no se tocan.
type InventoryCount struct {
	ID            string
	CountNumber   string
	Description   string
	Status        string
	ScheduledDate time.Time
	StartDate     *time.Time
	EndDate       *time.Time
	Responsible   string
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Items         []*InventoryCountItem
}

// CanTransitionTo valida la máquina de estados del conteo.
// CANCELLED es alcanzable desde cualquier estado no terminal.
func (c *InventoryCount) CanTransitionTo(target string) bool {
	switch c.Status {
	case CountStatusPlanned:
		return target == CountStatusInProgress || target == CountStatusCancelled
	case CountStatusInProgress:
		return target == CountStatusCompleted || target == CountStatusCancelled
	}
	return false // COMPLETED y CANCELLED son terminales
}

// InventoryCountItem es una línea contada. SystemQuantity es el stock según
// el ledger al momento de registrar el conteo (solo informativo; la diferencia
// definitiva se recalcula contra el ledger al completar).
type InventoryCountItem struct {
	ID              string
	CountID         string
	ProductID       string
	SystemQuantity  int64
	CountedQuantity int64
	Difference      int64
	CountedBy       string
	CountedAt       time.Time
	Notes           string
}
