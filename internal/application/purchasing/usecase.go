package purchasing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/minimarket-pos/internal/application/dto"
	"github.com/jhoicas/minimarket-pos/internal/application/ledger"
	"github.com/jhoicas/minimarket-pos/internal/domain"
	"github.com/jhoicas/minimarket-pos/internal/domain/entity"
	"github.com/jhoicas/minimarket-pos/internal/domain/pricing"
	"github.com/jhoicas/minimarket-pos/internal/domain/repository"
	"github.com/jhoicas/minimarket-pos/pkg/metrics"
)

// PurchaseOrderUseCase maneja el ciclo de vida de las órdenes de compra:
// PENDING -> APPROVED -> RECEIVED, con CANCELLED solo antes de recibir.
// Únicamente la recepción toca el ledger (movimientos IN).
type PurchaseOrderUseCase struct {
	txRunner     PurchaseTxRunner
	ledgerUC     LedgerWriter
	poRepo       repository.PurchaseOrderRepository
	productRepo  repository.ProductRepository
	supplierRepo repository.SupplierRepository
}

// NewPurchaseOrderUseCase construye el caso de uso.
func NewPurchaseOrderUseCase(
	txRunner PurchaseTxRunner,
	ledgerUC LedgerWriter,
	poRepo repository.PurchaseOrderRepository,
	productRepo repository.ProductRepository,
	supplierRepo repository.SupplierRepository,
) *PurchaseOrderUseCase {
	return &PurchaseOrderUseCase{
		txRunner:     txRunner,
		ledgerUC:     ledgerUC,
		poRepo:       poRepo,
		productRepo:  productRepo,
		supplierRepo: supplierRepo,
	}
}

// Create registra una orden en PENDING. No toca el ledger.
func (uc *PurchaseOrderUseCase) Create(ctx context.Context, userID string, in dto.CreatePurchaseOrderRequest) (*dto.PurchaseOrderResponse, error) {
	if in.SupplierID == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	supplier, err := uc.supplierRepo.GetByID(in.SupplierID)
	if err != nil || supplier == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	po := &entity.PurchaseOrder{
		ID:          uuid.New().String(),
		OrderNumber: fmt.Sprintf("OC-%s-%d", now.Format("20060102"), now.UnixNano()%1_000_000),
		SupplierID:  in.SupplierID,
		Status:      entity.POStatusPending,
		OrderDate:   now,
		Notes:       in.Notes,
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.ExpectedDate != "" {
		d, err := time.Parse("2006-01-02", in.ExpectedDate)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		po.ExpectedDate = &d
	}

	var subtotal decimal.Decimal
	for _, item := range in.Items {
		if item.ProductID == "" || item.QuantityOrdered <= 0 || item.UnitPrice.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		product, err := uc.productRepo.GetByID(item.ProductID)
		if err != nil || product == nil {
			return nil, domain.ErrNotFound
		}
		totalPrice := item.UnitPrice.Mul(decimal.NewFromInt(item.QuantityOrdered)).Round(2)
		po.Items = append(po.Items, &entity.PurchaseOrderItem{
			ID:              uuid.New().String(),
			PurchaseOrderID: po.ID,
			ProductID:       item.ProductID,
			QuantityOrdered: item.QuantityOrdered,
			UnitPrice:       item.UnitPrice,
			TotalPrice:      totalPrice,
		})
		subtotal = subtotal.Add(totalPrice)
	}
	po.Subtotal = subtotal
	po.Tax = subtotal.Mul(pricing.IGVRate).Round(2)
	po.Total = po.Subtotal.Add(po.Tax)

	if err := uc.poRepo.Create(po); err != nil {
		return nil, err
	}
	for _, item := range po.Items {
		if err := uc.poRepo.CreateItem(item); err != nil {
			return nil, err
		}
	}
	return toPOResponse(po, po.Items), nil
}

// Approve transición PENDING -> APPROVED.
func (uc *PurchaseOrderUseCase) Approve(ctx context.Context, poID, userID string) (*dto.PurchaseOrderResponse, error) {
	po, err := uc.getPO(poID)
	if err != nil {
		return nil, err
	}
	if po.Status != entity.POStatusPending || !po.CanTransitionTo(entity.POStatusApproved) {
		return nil, &domain.InvalidTransitionError{Entity: "purchase_order", From: po.Status, To: entity.POStatusApproved}
	}
	po.Status = entity.POStatusApproved
	po.ApprovedBy = userID
	po.UpdatedAt = time.Now()
	if err := uc.poRepo.Update(po); err != nil {
		return nil, err
	}
	return uc.Get(ctx, poID)
}

// Receive transición APPROVED -> RECEIVED. En una sola transacción registra un
// movimiento IN por cada línea (razón PURCHASE, referencia a la orden),
// actualiza lo recibido y marca la orden. Si algo falla, rollback completo:
// la orden sigue APPROVED y el stock intacto.
func (uc *PurchaseOrderUseCase) Receive(ctx context.Context, poID, userID string) (*dto.PurchaseOrderResponse, error) {
	po, err := uc.getPO(poID)
	if err != nil {
		return nil, err
	}
	if po.Status != entity.POStatusApproved || !po.CanTransitionTo(entity.POStatusReceived) {
		return nil, &domain.InvalidTransitionError{Entity: "purchase_order", From: po.Status, To: entity.POStatusReceived}
	}
	items, err := uc.poRepo.GetItems(poID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	err = uc.txRunner.RunPurchase(ctx, func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
		poRepo repository.PurchaseOrderRepository,
	) error {
		// La transición va primero y es condicional sobre APPROVED: toma el
		// candado de fila de la orden y, si una recepción concurrente ya ganó,
		// falla con ErrConcurrencyConflict antes de registrar ingreso alguno.
		if err := poRepo.TransitionStatus(poID, entity.POStatusApproved, entity.POStatusReceived, now); err != nil {
			return err
		}
		for _, item := range items {
			if _, err := uc.ledgerUC.AppendInTx(movRepo, productRepo, ledger.AppendInput{
				ProductID: item.ProductID,
				Type:      entity.MovementTypeIN,
				Quantity:  item.QuantityOrdered,
				Reason:    entity.ReasonPurchase,
				Reference: po.OrderNumber,
				UserID:    userID,
			}, now); err != nil {
				return err
			}
			if err := poRepo.UpdateItemReceived(item.ID, item.QuantityOrdered); err != nil {
				return err
			}
		}
		po.Status = entity.POStatusReceived
		po.ReceivedDate = &now
		po.UpdatedAt = now
		return poRepo.Update(po)
	})
	if err != nil {
		return nil, err
	}
	metrics.MovementsTotal.WithLabelValues(entity.MovementTypeIN).Add(float64(len(items)))
	return uc.Get(ctx, poID)
}

// Cancel cancela la orden antes de recibirla. Nunca toca el ledger: nada fue
// recibido todavía.
func (uc *PurchaseOrderUseCase) Cancel(ctx context.Context, poID string) (*dto.PurchaseOrderResponse, error) {
	po, err := uc.getPO(poID)
	if err != nil {
		return nil, err
	}
	if !po.CanTransitionTo(entity.POStatusCancelled) {
		return nil, &domain.InvalidTransitionError{Entity: "purchase_order", From: po.Status, To: entity.POStatusCancelled}
	}
	po.Status = entity.POStatusCancelled
	po.UpdatedAt = time.Now()
	if err := uc.poRepo.Update(po); err != nil {
		return nil, err
	}
	return uc.Get(ctx, poID)
}

// Get obtiene una orden con sus líneas.
func (uc *PurchaseOrderUseCase) Get(ctx context.Context, poID string) (*dto.PurchaseOrderResponse, error) {
	po, err := uc.getPO(poID)
	if err != nil {
		return nil, err
	}
	items, err := uc.poRepo.GetItems(poID)
	if err != nil {
		return nil, err
	}
	return toPOResponse(po, items), nil
}

// List lista órdenes, opcionalmente por estado.
func (uc *PurchaseOrderUseCase) List(ctx context.Context, status string, limit, offset int) ([]*dto.PurchaseOrderResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	list, err := uc.poRepo.List(status, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.PurchaseOrderResponse, 0, len(list))
	for _, po := range list {
		out = append(out, toPOResponse(po, nil))
	}
	return out, nil
}

func (uc *PurchaseOrderUseCase) getPO(poID string) (*entity.PurchaseOrder, error) {
	po, err := uc.poRepo.GetByID(poID)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, domain.ErrNotFound
	}
	return po, nil
}

func toPOResponse(po *entity.PurchaseOrder, items []*entity.PurchaseOrderItem) *dto.PurchaseOrderResponse {
	resp := &dto.PurchaseOrderResponse{
		ID:          po.ID,
		OrderNumber: po.OrderNumber,
		SupplierID:  po.SupplierID,
		Status:      po.Status,
		OrderDate:   po.OrderDate.Format("2006-01-02"),
		Subtotal:    po.Subtotal,
		Tax:         po.Tax,
		Total:       po.Total,
	}
	if po.ExpectedDate != nil {
		resp.ExpectedDate = po.ExpectedDate.Format("2006-01-02")
	}
	if po.ReceivedDate != nil {
		resp.ReceivedDate = po.ReceivedDate.Format("2006-01-02")
	}
	for _, it := range items {
		resp.Items = append(resp.Items, dto.POItemResponse{
			ID:               it.ID,
			ProductID:        it.ProductID,
			QuantityOrdered:  it.QuantityOrdered,
			QuantityReceived: it.QuantityReceived,
			UnitPrice:        it.UnitPrice,
			TotalPrice:       it.TotalPrice,
		})
	}
	return resp
}
