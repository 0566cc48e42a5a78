package sales

import (
	"context"
	"time"

	"github.com/jhoicas/minimarket-pos/internal/application/ledger"
	"github.com/jhoicas/minimarket-pos/internal/domain/entity"
	"github.com/jhoicas/minimarket-pos/internal/domain/repository"
)

// SaleTxRunner inicia una transacción con los repositorios que necesita el
// motor de ventas (movimientos + productos + ventas). Commit o Rollback corre
// por cuenta del runner: o la venta entra completa con todos sus movimientos
// OUT, o no queda rastro.
type SaleTxRunner interface {
	RunSale(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
	) error) error
}

// LedgerWriter es lo que el motor de ventas necesita del ledger: registrar
// movimientos dentro de la transacción del caller.
type LedgerWriter interface {
	AppendInTx(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
		input ledger.AppendInput,
		now time.Time,
	) (*entity.StockMovement, error)
}
