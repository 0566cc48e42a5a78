package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/minimarket-pos/internal/domain"
	"github.com/jhoicas/minimarket-pos/internal/domain/entity"
	"github.com/jhoicas/minimarket-pos/internal/domain/repository"
	"github.com/jhoicas/minimarket-pos/pkg/metrics"
)

// LedgerUseCase es el único escritor del libro de movimientos. Toda mutación
// de stock pasa por AppendInTx bajo el candado de fila del producto
// (SELECT FOR UPDATE): el stock nunca se escribe directo en ningún otro lugar.
type LedgerUseCase struct {
	txRunner    TxRunner
	movRepo     repository.StockMovementRepository
	productRepo repository.ProductRepository
}

// NewLedgerUseCase construye el caso de uso. movRepo y productRepo se usan
// para lecturas fuera de transacción; las escrituras van por txRunner.
func NewLedgerUseCase(
	txRunner TxRunner,
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
) *LedgerUseCase {
	return &LedgerUseCase{txRunner: txRunner, movRepo: movRepo, productRepo: productRepo}
}

// AppendInput entrada para registrar un movimiento. Quantity lleva el signo
// del efecto: IN/RETURN positivo, OUT negativo, ADJUST delta con signo.
type AppendInput struct {
	ProductID string
	Type      string
	Quantity  int64
	Reason    string
	Reference string // número de venta, orden de compra o conteo
	Notes     string
	UserID    string
}

func (in AppendInput) validate() error {
	if in.ProductID == "" || !entity.ValidMovementType(in.Type) {
		return domain.ErrInvalidInput
	}
	switch in.Type {
	case entity.MovementTypeIN, entity.MovementTypeRETURN:
		if in.Quantity <= 0 {
			return domain.ErrInvalidInput
		}
	case entity.MovementTypeOUT:
		if in.Quantity >= 0 {
			return domain.ErrInvalidInput
		}
	case entity.MovementTypeADJUST:
		if in.Quantity == 0 {
			return domain.ErrInvalidInput
		}
	}
	return nil
}

// AppendInTx registra un movimiento usando los repositorios de la transacción
// del caller (patrón del motor de ventas: varias líneas, una sola tx).
// Bloquea la fila del producto, calcula stock_before/stock_after, rechaza
// stock negativo y materializa el nuevo stock. La secuencia por producto es
// última+1 bajo el candado; el índice único (product_id, sequence) convierte
// una carrera perdida en ErrConcurrencyConflict.
func (uc *LedgerUseCase) AppendInTx(
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	input AppendInput,
	now time.Time,
) (*entity.StockMovement, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	product, err := productRepo.GetForUpdate(input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	stockBefore := product.CurrentStock
	stockAfter := stockBefore + input.Quantity
	if stockAfter < 0 {
		return nil, &domain.InsufficientStockError{
			ProductID: input.ProductID,
			Requested: -input.Quantity,
			Available: stockBefore,
		}
	}

	lastSeq, err := movRepo.LastSequence(input.ProductID)
	if err != nil {
		return nil, err
	}

	mov := &entity.StockMovement{
		ID:           uuid.New().String(),
		ProductID:    input.ProductID,
		Sequence:     lastSeq + 1,
		Type:         input.Type,
		Quantity:     input.Quantity,
		StockBefore:  stockBefore,
		StockAfter:   stockAfter,
		Reason:       input.Reason,
		Reference:    input.Reference,
		Notes:        input.Notes,
		CreatedBy:    input.UserID,
		MovementDate: now,
		CreatedAt:    now,
	}
	if err := movRepo.Create(mov); err != nil {
		return nil, err
	}
	if err := productRepo.UpdateStock(input.ProductID, stockAfter); err != nil {
		return nil, err
	}
	return mov, nil
}

// Append registra un movimiento suelto (ajuste manual, stock inicial) en su
// propia transacción. Los contadores se incrementan recién tras el commit:
// una transacción revertida no cuenta movimientos.
func (uc *LedgerUseCase) Append(ctx context.Context, input AppendInput) (*entity.StockMovement, error) {
	var mov *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
	) error {
		var err error
		mov, err = uc.AppendInTx(movRepo, productRepo, input, time.Now())
		return err
	})
	if err != nil {
		var insufficient *domain.InsufficientStockError
		if errors.As(err, &insufficient) {
			metrics.InsufficientStockTotal.Inc()
		}
		return nil, err
	}
	metrics.MovementsTotal.WithLabelValues(input.Type).Inc()
	return mov, nil
}

// CurrentStock devuelve el stock vigente: el stock_after del último movimiento,
// materializado en la fila del producto por el propio ledger.
func (uc *LedgerUseCase) CurrentStock(ctx context.Context, productID string) (int64, error) {
	product, err := uc.productRepo.GetByID(productID)
	if err != nil {
		return 0, err
	}
	if product == nil {
		return 0, domain.ErrNotFound
	}
	return product.CurrentStock, nil
}

// ListMovements lista el historial según filtro (producto, tipo, rango de fechas).
func (uc *LedgerUseCase) ListMovements(ctx context.Context, filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Type != "" && !entity.ValidMovementType(filter.Type) {
		return nil, domain.ErrInvalidInput
	}
	return uc.movRepo.List(filter)
}

// Replay recorre todos los movimientos de un producto en orden de secuencia y
// recalcula el stock desde cero, verificando que cada stock_before/stock_after
// encadene con el anterior. Es la propiedad de ida y vuelta del ledger: el
// valor materializado debe coincidir con el recalculado.
func (uc *LedgerUseCase) Replay(ctx context.Context, productID string) (int64, error) {
	movs, err := uc.movRepo.ListByProductAsc(productID)
	if err != nil {
		return 0, err
	}
	var stock int64
	for _, m := range movs {
		if m.StockBefore != stock {
			return 0, fmt.Errorf("secuencia %d del producto %s: stock_before %d no encadena con %d: %w",
				m.Sequence, productID, m.StockBefore, stock, domain.ErrConflict)
		}
		stock = m.StockAfter
		if stock < 0 {
			return 0, fmt.Errorf("secuencia %d del producto %s: stock negativo %d: %w",
				m.Sequence, productID, stock, domain.ErrConflict)
		}
	}
	return stock, nil
}
