package counting

import (
	"context"
	"time"

	"github.com/jhoicas/minimarket-pos/internal/application/ledger"
	"github.com/jhoicas/minimarket-pos/internal/domain/entity"
	"github.com/jhoicas/minimarket-pos/internal/domain/repository"
)

// CountTxRunner inicia una transacción con los repositorios del flujo de
// conteos. Completar un conteo registra todos los ADJUST y el cierre en una
// sola tx.
type CountTxRunner interface {
	RunCount(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
		countRepo repository.InventoryCountRepository,
	) error) error
}

// LedgerWriter registra movimientos dentro de la transacción del caller.
type LedgerWriter interface {
	AppendInTx(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
		input ledger.AppendInput,
		now time.Time,
	) (*entity.StockMovement, error)
}
