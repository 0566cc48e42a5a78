package sales

import (
	"context"
	"errors"
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

// SaleUseCase valida el carrito contra catálogo y ledger, y confirma la venta
// con sus movimientos OUT en una sola transacción (todo o nada).
type SaleUseCase struct {
	txRunner     SaleTxRunner
	ledgerUC     LedgerWriter
	saleRepo     repository.SaleRepository
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
}

// NewSaleUseCase construye el caso de uso.
func NewSaleUseCase(
	txRunner SaleTxRunner,
	ledgerUC LedgerWriter,
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
) *SaleUseCase {
	return &SaleUseCase{
		txRunner:     txRunner,
		ledgerUC:     ledgerUC,
		saleRepo:     saleRepo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
	}
}

// CreateSale confirma una venta:
//  1. calcula totales con el calculador puro (rechaza carritos inválidos),
//  2. verifica stock disponible línea por línea,
//  3. en una transacción: registra un movimiento OUT por línea (el ledger
//     vuelve a validar bajo el candado de fila) y persiste la venta COMPLETED.
//
// Si cualquier línea falla (por ejemplo, una venta concurrente consumió el
// stock), la transacción entera se revierte: no queda venta ni movimientos.
func (uc *SaleUseCase) CreateSale(ctx context.Context, userID string, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	if len(in.Items) == 0 || !entity.ValidPaymentMethod(in.PaymentMethod) {
		return nil, domain.ErrInvalidInput
	}

	// Cliente opcional (vacío = cliente de paso)
	if in.CustomerID != "" {
		customer, err := uc.customerRepo.GetByID(in.CustomerID)
		if err != nil || customer == nil {
			return nil, domain.ErrNotFound
		}
	}

	// Validar productos y capturar precios (fuera de la tx, solo lectura)
	productsByID := make(map[string]*entity.Product, len(in.Items))
	lines := make([]pricing.LineInput, 0, len(in.Items))
	for i := range in.Items {
		item := &in.Items[i]
		if item.ProductID == "" {
			return nil, domain.ErrInvalidInput
		}
		if _, dup := productsByID[item.ProductID]; dup {
			return nil, domain.ErrInvalidInput
		}
		product, err := uc.productRepo.GetByID(item.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil || !product.IsActive {
			return nil, domain.ErrNotFound
		}
		productsByID[item.ProductID] = product
		if item.UnitPrice.IsZero() {
			item.UnitPrice = product.SalePrice
		}
		lines = append(lines, pricing.LineInput{
			Quantity:           item.Quantity,
			UnitPrice:          item.UnitPrice,
			DiscountPercentage: item.DiscountPercentage,
		})
	}

	// Cálculo puro de totales; rechaza cantidades y descuentos inválidos
	totals, err := pricing.ComputeSale(lines, in.DiscountPercentage)
	if err != nil {
		return nil, err
	}

	// Chequeo previo de stock: falla temprano con el producto ofensor.
	// El chequeo definitivo ocurre dentro de la tx, bajo el candado de fila.
	for _, item := range in.Items {
		product := productsByID[item.ProductID]
		if product.CurrentStock < item.Quantity {
			metrics.InsufficientStockTotal.Inc()
			return nil, &domain.InsufficientStockError{
				ProductID: item.ProductID,
				Requested: item.Quantity,
				Available: product.CurrentStock,
			}
		}
	}

	now := time.Now()
	sale := &entity.Sale{
		ID:                 uuid.New().String(),
		SaleNumber:         fmt.Sprintf("VTA-%s-%d", now.Format("20060102"), now.UnixNano()%1_000_000),
		CustomerID:         in.CustomerID,
		SellerID:           userID,
		PaymentMethod:      in.PaymentMethod,
		Status:             entity.SaleStatusCompleted,
		Subtotal:           totals.Subtotal,
		DiscountPercentage: in.DiscountPercentage,
		DiscountAmount:     totals.DiscountAmount,
		Tax:                totals.Tax,
		Total:              totals.Total,
		Notes:              in.Notes,
		SaleDate:           now,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	for i, item := range in.Items {
		product := productsByID[item.ProductID]
		totalCost := product.CostPrice.Mul(decimal.NewFromInt(item.Quantity))
		sale.Items = append(sale.Items, &entity.SaleItem{
			ID:                 uuid.New().String(),
			SaleID:             sale.ID,
			ProductID:          item.ProductID,
			Quantity:           item.Quantity,
			UnitPrice:          item.UnitPrice,
			DiscountPercentage: item.DiscountPercentage,
			TotalPrice:         totals.Lines[i].Total,
			UnitCost:           product.CostPrice,
			TotalCost:          totalCost,
			Profit:             totals.Lines[i].Total.Sub(totalCost),
		})
	}

	err = uc.txRunner.RunSale(ctx, func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
	) error {
		// Un movimiento OUT por línea, referenciando la venta. Si el ledger
		// rechaza (stock insuficiente, carrera de secuencia), rollback total.
		for _, item := range sale.Items {
			if _, err := uc.ledgerUC.AppendInTx(movRepo, productRepo, ledger.AppendInput{
				ProductID: item.ProductID,
				Type:      entity.MovementTypeOUT,
				Quantity:  -item.Quantity,
				Reason:    entity.ReasonSale,
				Reference: sale.SaleNumber,
				UserID:    userID,
			}, now); err != nil {
				return err
			}
		}
		if err := saleRepo.Create(sale); err != nil {
			return err
		}
		for _, item := range sale.Items {
			if err := saleRepo.CreateItem(item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		var insufficient *domain.InsufficientStockError
		if errors.As(err, &insufficient) {
			metrics.InsufficientStockTotal.Inc()
		}
		return nil, err
	}

	metrics.SalesTotal.WithLabelValues(entity.SaleStatusCompleted).Inc()
	metrics.MovementsTotal.WithLabelValues(entity.MovementTypeOUT).Add(float64(len(sale.Items)))
	return toSaleResponse(sale, sale.Items), nil
}

// CancelSale cancela una venta COMPLETED: transición a CANCELLED más un
// movimiento RETURN compensatorio por cada línea, en una sola transacción.
// El stock queda exactamente como antes de la venta.
func (uc *SaleUseCase) CancelSale(ctx context.Context, saleID, userID string) (*dto.SaleResponse, error) {
	sale, err := uc.saleRepo.GetByID(saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	if !sale.CanTransitionTo(entity.SaleStatusCancelled) || sale.Status != entity.SaleStatusCompleted {
		return nil, &domain.InvalidTransitionError{
			Entity: "sale", From: sale.Status, To: entity.SaleStatusCancelled,
		}
	}
	items, err := uc.saleRepo.GetItems(saleID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	err = uc.txRunner.RunSale(ctx, func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
	) error {
		// La transición va primero y es condicional sobre COMPLETED: toma el
		// candado de fila de la venta y, si una cancelación concurrente ya
		// ganó, falla con ErrConcurrencyConflict antes de devolver stock.
		if err := saleRepo.TransitionStatus(saleID, entity.SaleStatusCompleted, entity.SaleStatusCancelled, now); err != nil {
			return err
		}
		for _, item := range items {
			if _, err := uc.ledgerUC.AppendInTx(movRepo, productRepo, ledger.AppendInput{
				ProductID: item.ProductID,
				Type:      entity.MovementTypeRETURN,
				Quantity:  item.Quantity,
				Reason:    entity.ReasonReturnCustomer,
				Reference: sale.SaleNumber,
				Notes:     "cancelación de venta " + sale.SaleNumber,
				UserID:    userID,
			}, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.SalesTotal.WithLabelValues(entity.SaleStatusCancelled).Inc()
	metrics.MovementsTotal.WithLabelValues(entity.MovementTypeRETURN).Add(float64(len(items)))
	sale.Status = entity.SaleStatusCancelled
	sale.UpdatedAt = now
	return toSaleResponse(sale, items), nil
}

// GetSale obtiene una venta con sus líneas.
func (uc *SaleUseCase) GetSale(ctx context.Context, saleID string) (*dto.SaleResponse, error) {
	sale, err := uc.saleRepo.GetByID(saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	items, err := uc.saleRepo.GetItems(saleID)
	if err != nil {
		return nil, err
	}
	return toSaleResponse(sale, items), nil
}

// ListSales lista ventas según filtro.
func (uc *SaleUseCase) ListSales(ctx context.Context, filter repository.SaleFilter) ([]*dto.SaleResponse, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	list, err := uc.saleRepo.List(filter)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.SaleResponse, 0, len(list))
	for _, s := range list {
		out = append(out, toSaleResponse(s, nil))
	}
	return out, nil
}

func toSaleResponse(sale *entity.Sale, items []*entity.SaleItem) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:                 sale.ID,
		SaleNumber:         sale.SaleNumber,
		CustomerID:         sale.CustomerID,
		Status:             sale.Status,
		PaymentMethod:      sale.PaymentMethod,
		Subtotal:           sale.Subtotal,
		DiscountPercentage: sale.DiscountPercentage,
		DiscountAmount:     sale.DiscountAmount,
		Tax:                sale.Tax,
		Total:              sale.Total,
		SaleDate:           sale.SaleDate.Format(time.RFC3339),
	}
	for _, it := range items {
		resp.Items = append(resp.Items, dto.SaleItemResponse{
			ID:                 it.ID,
			ProductID:          it.ProductID,
			Quantity:           it.Quantity,
			UnitPrice:          it.UnitPrice,
			DiscountPercentage: it.DiscountPercentage,
			TotalPrice:         it.TotalPrice,
		})
	}
	return resp
}
