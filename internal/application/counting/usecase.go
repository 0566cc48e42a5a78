package counting

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/minimarket-pos/internal/application/dto"
	"github.com/jhoicas/minimarket-pos/internal/application/ledger"
	"github.com/jhoicas/minimarket-pos/internal/domain"
	"github.com/jhoicas/minimarket-pos/internal/domain/entity"
	"github.com/jhoicas/minimarket-pos/internal/domain/repository"
	"github.com/jhoicas/minimarket-pos/pkg/metrics"
)

// CountUseCase maneja los conteos físicos de inventario:
// PLANNED -> IN_PROGRESS -> COMPLETED, con CANCELLED desde cualquier estado
// no terminal. Solo el cierre (Complete) toca el ledger, con un ADJUST por
// cada línea cuya diferencia contra el stock vigente sea distinta de cero.
type CountUseCase struct {
	txRunner    CountTxRunner
	ledgerUC    LedgerWriter
	countRepo   repository.InventoryCountRepository
	productRepo repository.ProductRepository
}

// NewCountUseCase construye el caso de uso.
func NewCountUseCase(
	txRunner CountTxRunner,
	ledgerUC LedgerWriter,
	countRepo repository.InventoryCountRepository,
	productRepo repository.ProductRepository,
) *CountUseCase {
	return &CountUseCase{
		txRunner:    txRunner,
		ledgerUC:    ledgerUC,
		countRepo:   countRepo,
		productRepo: productRepo,
	}
}

// Create programa un conteo en PLANNED.
func (uc *CountUseCase) Create(ctx context.Context, in dto.CreateCountRequest) (*dto.CountResponse, error) {
	if in.ScheduledDate == "" {
		return nil, domain.ErrInvalidInput
	}
	scheduled, err := time.Parse("2006-01-02", in.ScheduledDate)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	count := &entity.InventoryCount{
		ID:            uuid.New().String(),
		CountNumber:   fmt.Sprintf("CNT-%s-%d", now.Format("20060102"), now.UnixNano()%1_000_000),
		Description:   in.Description,
		Status:        entity.CountStatusPlanned,
		ScheduledDate: scheduled,
		Responsible:   in.Responsible,
		Notes:         in.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.countRepo.Create(count); err != nil {
		return nil, err
	}
	return toCountResponse(count, nil), nil
}

// Start transición PLANNED -> IN_PROGRESS.
func (uc *CountUseCase) Start(ctx context.Context, countID string) (*dto.CountResponse, error) {
	count, err := uc.getCount(countID)
	if err != nil {
		return nil, err
	}
	if count.Status != entity.CountStatusPlanned || !count.CanTransitionTo(entity.CountStatusInProgress) {
		return nil, &domain.InvalidTransitionError{Entity: "inventory_count", From: count.Status, To: entity.CountStatusInProgress}
	}
	now := time.Now()
	count.Status = entity.CountStatusInProgress
	count.StartDate = &now
	count.UpdatedAt = now
	if err := uc.countRepo.Update(count); err != nil {
		return nil, err
	}
	return uc.Get(ctx, countID)
}

// RecordCount registra la cantidad contada de un producto. Solo válido con el
// conteo IN_PROGRESS; contar dos veces el mismo producto sobrescribe la línea.
// SystemQuantity captura el stock del ledger al momento de contar (informativo;
// la diferencia definitiva se recalcula al completar).
func (uc *CountUseCase) RecordCount(ctx context.Context, countID, userID string, in dto.RecordCountRequest) error {
	if in.ProductID == "" || in.CountedQuantity < 0 {
		return domain.ErrInvalidInput
	}
	count, err := uc.getCount(countID)
	if err != nil {
		return err
	}
	if count.Status != entity.CountStatusInProgress {
		return &domain.InvalidTransitionError{Entity: "inventory_count", From: count.Status, To: count.Status}
	}
	product, err := uc.productRepo.GetByID(in.ProductID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}

	now := time.Now()
	return uc.countRepo.UpsertItem(&entity.InventoryCountItem{
		ID:              uuid.New().String(),
		CountID:         countID,
		ProductID:       in.ProductID,
		SystemQuantity:  product.CurrentStock,
		CountedQuantity: in.CountedQuantity,
		Difference:      in.CountedQuantity - product.CurrentStock,
		CountedBy:       userID,
		CountedAt:       now,
		Notes:           in.Notes,
	})
}

// Complete transición IN_PROGRESS -> COMPLETED. En una sola transacción, por
// cada línea contada recalcula delta = contado - stock vigente (bajo el
// candado de fila, no contra el snapshot) y registra un ADJUST solo si el
// delta no es cero. Los productos no contados quedan intactos.
func (uc *CountUseCase) Complete(ctx context.Context, countID, userID string) (*dto.CountResponse, error) {
	count, err := uc.getCount(countID)
	if err != nil {
		return nil, err
	}
	if count.Status != entity.CountStatusInProgress || !count.CanTransitionTo(entity.CountStatusCompleted) {
		return nil, &domain.InvalidTransitionError{Entity: "inventory_count", From: count.Status, To: entity.CountStatusCompleted}
	}
	items, err := uc.countRepo.GetItems(countID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	adjusts := 0
	err = uc.txRunner.RunCount(ctx, func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
		countRepo repository.InventoryCountRepository,
	) error {
		// La transición va primero y es condicional sobre IN_PROGRESS: toma el
		// candado de fila del conteo y, si un cierre concurrente ya ganó,
		// falla con ErrConcurrencyConflict antes de registrar ajuste alguno.
		if err := countRepo.TransitionStatus(countID, entity.CountStatusInProgress, entity.CountStatusCompleted, now); err != nil {
			return err
		}
		for _, item := range items {
			product, err := productRepo.GetForUpdate(item.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return domain.ErrNotFound
			}
			delta := item.CountedQuantity - product.CurrentStock
			if delta == 0 {
				continue
			}
			if _, err := uc.ledgerUC.AppendInTx(movRepo, productRepo, ledger.AppendInput{
				ProductID: item.ProductID,
				Type:      entity.MovementTypeADJUST,
				Quantity:  delta,
				Reason:    entity.ReasonInventoryAdjust,
				Reference: count.CountNumber,
				UserID:    userID,
			}, now); err != nil {
				return err
			}
			adjusts++
			// Persistir la diferencia definitiva en la línea
			item.Difference = delta
			if err := countRepo.UpsertItem(item); err != nil {
				return err
			}
		}
		count.Status = entity.CountStatusCompleted
		count.EndDate = &now
		count.UpdatedAt = now
		return countRepo.Update(count)
	})
	if err != nil {
		return nil, err
	}
	if adjusts > 0 {
		metrics.MovementsTotal.WithLabelValues(entity.MovementTypeADJUST).Add(float64(adjusts))
	}
	return uc.Get(ctx, countID)
}

// Cancel cancela un conteo no terminal. Nunca toca el ledger.
func (uc *CountUseCase) Cancel(ctx context.Context, countID string) (*dto.CountResponse, error) {
	count, err := uc.getCount(countID)
	if err != nil {
		return nil, err
	}
	if !count.CanTransitionTo(entity.CountStatusCancelled) {
		return nil, &domain.InvalidTransitionError{Entity: "inventory_count", From: count.Status, To: entity.CountStatusCancelled}
	}
	count.Status = entity.CountStatusCancelled
	count.UpdatedAt = time.Now()
	if err := uc.countRepo.Update(count); err != nil {
		return nil, err
	}
	return uc.Get(ctx, countID)
}

// Get obtiene un conteo con sus líneas.
func (uc *CountUseCase) Get(ctx context.Context, countID string) (*dto.CountResponse, error) {
	count, err := uc.getCount(countID)
	if err != nil {
		return nil, err
	}
	items, err := uc.countRepo.GetItems(countID)
	if err != nil {
		return nil, err
	}
	return toCountResponse(count, items), nil
}

// List lista conteos, opcionalmente por estado.
func (uc *CountUseCase) List(ctx context.Context, status string, limit, offset int) ([]*dto.CountResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	list, err := uc.countRepo.List(status, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.CountResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toCountResponse(c, nil))
	}
	return out, nil
}

func (uc *CountUseCase) getCount(countID string) (*entity.InventoryCount, error) {
	count, err := uc.countRepo.GetByID(countID)
	if err != nil {
		return nil, err
	}
	if count == nil {
		return nil, domain.ErrNotFound
	}
	return count, nil
}

func toCountResponse(count *entity.InventoryCount, items []*entity.InventoryCountItem) *dto.CountResponse {
	resp := &dto.CountResponse{
		ID:            count.ID,
		CountNumber:   count.CountNumber,
		Description:   count.Description,
		Status:        count.Status,
		ScheduledDate: count.ScheduledDate.Format("2006-01-02"),
		Responsible:   count.Responsible,
	}
	if count.StartDate != nil {
		resp.StartDate = count.StartDate.Format(time.RFC3339)
	}
	if count.EndDate != nil {
		resp.EndDate = count.EndDate.Format(time.RFC3339)
	}
	for _, it := range items {
		resp.Items = append(resp.Items, dto.CountItemResponse{
			ProductID:       it.ProductID,
			SystemQuantity:  it.SystemQuantity,
			CountedQuantity: it.CountedQuantity,
			Difference:      it.Difference,
		})
	}
	return resp
}
