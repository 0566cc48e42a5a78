package purchasing

import (
	"context"
	"time"

	"github.com/jhoicas/minimarket-pos/internal/application/ledger"
	"github.com/jhoicas/minimarket-pos/internal/domain/entity"
	"github.com/jhoicas/minimarket-pos/internal/domain/repository"
)

// PurchaseTxRunner inicia una transacción con los repositorios del flujo de
// compras. La recepción registra todos los movimientos IN y el cambio de
// estado en una sola tx.
type PurchaseTxRunner interface {
	RunPurchase(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
		poRepo repository.PurchaseOrderRepository,
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
