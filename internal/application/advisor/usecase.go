package advisor

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/minimarket-pos/internal/application/dto"
	"github.com/jhoicas/minimarket-pos/internal/domain"
	"github.com/jhoicas/minimarket-pos/internal/domain/repository"
)

// AdvisorUseCase consulta las señales de reorden del sistema ML externo y las
// cruza con el catálogo para anotar alertas de stock bajo. Es estrictamente
// de lectura: nunca escribe el ledger ni produce señales.
type AdvisorUseCase struct {
	signalRepo  repository.ReorderSignalRepository
	productRepo repository.ProductRepository
}

// NewAdvisorUseCase construye el caso de uso.
func NewAdvisorUseCase(
	signalRepo repository.ReorderSignalRepository,
	productRepo repository.ProductRepository,
) *AdvisorUseCase {
	return &AdvisorUseCase{signalRepo: signalRepo, productRepo: productRepo}
}

// GetReorderSignal devuelve la señal vigente para un producto.
func (uc *AdvisorUseCase) GetReorderSignal(ctx context.Context, productID string) (*dto.ReorderSignalResponse, error) {
	product, err := uc.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	signal, err := uc.signalRepo.GetByProduct(productID)
	if err != nil {
		return nil, err
	}
	if signal == nil {
		return nil, domain.ErrNotFound
	}
	return &dto.ReorderSignalResponse{
		ProductID:         signal.ProductID,
		PredictedDemand:   signal.PredictedDemand,
		SuggestedOrderQty: signal.SuggestedOrderQty,
		Priority:          signal.Priority,
		GeneratedAt:       signal.GeneratedAt.Format(time.RFC3339),
	}, nil
}

// ListLowStock devuelve los productos bajo punto de reorden, anotados con la
// señal ML cuando existe. Orden: primero los que tienen señal (por prioridad
// ascendente), luego por déficit absoluto contra el punto de reorden.
func (uc *AdvisorUseCase) ListLowStock(ctx context.Context) ([]dto.LowStockItemDTO, error) {
	products, err := uc.productRepo.ListBelowReorderPoint()
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return []dto.LowStockItemDTO{}, nil
	}

	out := make([]dto.LowStockItemDTO, 0, len(products))
	for _, p := range products {
		item := dto.LowStockItemDTO{
			ProductID:    p.ID,
			Code:         p.Code,
			Name:         p.Name,
			CurrentStock: p.CurrentStock,
			MinStock:     p.MinStock,
			ReorderPoint: p.ReorderPoint,
			StockStatus:  p.StockStatus(),
		}
		if signal, err := uc.signalRepo.GetByProduct(p.ID); err == nil && signal != nil {
			item.PredictedDemand = signal.PredictedDemand
			item.SuggestedOrderQty = signal.SuggestedOrderQty
			item.Priority = signal.Priority
		}
		out = append(out, item)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if (a.Priority > 0) != (b.Priority > 0) {
			return a.Priority > 0
		}
		if a.Priority > 0 && a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		// Sin señal: mayor déficit primero
		defA := a.ReorderPoint - a.CurrentStock
		defB := b.ReorderPoint - b.CurrentStock
		return defA > defB
	})
	return out, nil
}
