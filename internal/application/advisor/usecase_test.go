package advisor_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/minimarket-pos/internal/application/advisor"
	"github.com/jhoicas/minimarket-pos/internal/domain"
	"github.com/jhoicas/minimarket-pos/internal/domain/entity"
	"github.com/jhoicas/minimarket-pos/internal/infrastructure/memory"
)

type advisorFixture struct {
	productRepo *memory.ProductRepo
	signalRepo  *memory.ReorderSignalRepo
	uc          *advisor.AdvisorUseCase
}

func newAdvisorFixture(t *testing.T) *advisorFixture {
	t.Helper()
	store := memory.NewStore()
	productRepo := memory.NewProductRepository(store)
	signalRepo := memory.NewReorderSignalRepository(store)
	return &advisorFixture{
		productRepo: productRepo,
		signalRepo:  signalRepo,
		uc:          advisor.NewAdvisorUseCase(signalRepo, productRepo),
	}
}

func (f *advisorFixture) seedProduct(t *testing.T, code string, stock, reorderPoint int64) string {
	t.Helper()
	now := time.Now()
	p := &entity.Product{
		ID: uuid.New().String(), Code: code, Name: "Producto " + code,
		SalePrice:    decimal.RequireFromString("3.00"),
		CurrentStock: stock, MinStock: 2, ReorderPoint: reorderPoint,
		Unit: "UNIDAD", IsActive: true, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, f.productRepo.Create(p))
	return p.ID
}

func (f *advisorFixture) seedSignal(t *testing.T, productID string, priority int, qty int64) {
	t.Helper()
	f.signalRepo.Put(&entity.ReorderSignal{
		ProductID:         productID,
		PredictedDemand:   decimal.RequireFromString("12.5"),
		SuggestedOrderQty: qty,
		Priority:          priority,
		GeneratedAt:       time.Now(),
	})
}

func TestGetReorderSignal(t *testing.T) {
	f := newAdvisorFixture(t)
	ctx := context.Background()
	productID := f.seedProduct(t, "P001", 3, 10)
	f.seedSignal(t, productID, 1, 24)

	resp, err := f.uc.GetReorderSignal(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, productID, resp.ProductID)
	assert.EqualValues(t, 24, resp.SuggestedOrderQty)
	assert.Equal(t, 1, resp.Priority)
}

func TestGetReorderSignalSinSenal(t *testing.T) {
	f := newAdvisorFixture(t)
	productID := f.seedProduct(t, "P001", 3, 10)

	_, err := f.uc.GetReorderSignal(context.Background(), productID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.uc.GetReorderSignal(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListLowStockOrdenaPorSenalYDeficit(t *testing.T) {
	f := newAdvisorFixture(t)
	ctx := context.Background()

	sano := f.seedProduct(t, "SANO", 50, 10)
	deficitChico := f.seedProduct(t, "DEF1", 8, 10)   // déficit 2, sin señal
	deficitGrande := f.seedProduct(t, "DEF2", 1, 10)  // déficit 9, sin señal
	urgente := f.seedProduct(t, "URG", 5, 10)         // señal prioridad 1
	menosUrgente := f.seedProduct(t, "URG2", 6, 10)   // señal prioridad 3
	f.seedSignal(t, urgente, 1, 30)
	f.seedSignal(t, menosUrgente, 3, 12)

	list, err := f.uc.ListLowStock(ctx)
	require.NoError(t, err)
	require.Len(t, list, 4)

	// Con señal primero, por prioridad; luego sin señal por déficit
	assert.Equal(t, urgente, list[0].ProductID)
	assert.Equal(t, menosUrgente, list[1].ProductID)
	assert.Equal(t, deficitGrande, list[2].ProductID)
	assert.Equal(t, deficitChico, list[3].ProductID)

	// El producto sano no aparece
	for _, item := range list {
		assert.NotEqual(t, sano, item.ProductID)
	}
	// La señal quedó anotada en el item
	assert.EqualValues(t, 30, list[0].SuggestedOrderQty)
}

func TestListLowStockVacio(t *testing.T) {
	f := newAdvisorFixture(t)
	f.seedProduct(t, "SANO", 50, 10)

	list, err := f.uc.ListLowStock(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}
