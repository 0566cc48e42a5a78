package counting_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/minimarket-pos/internal/application/counting"
	"github.com/jhoicas/minimarket-pos/internal/application/dto"
	"github.com/jhoicas/minimarket-pos/internal/application/ledger"
	"github.com/jhoicas/minimarket-pos/internal/domain"
	"github.com/jhoicas/minimarket-pos/internal/domain/entity"
	"github.com/jhoicas/minimarket-pos/internal/domain/repository"
	"github.com/jhoicas/minimarket-pos/internal/infrastructure/memory"
)

type countFixture struct {
	store       *memory.Store
	movRepo     *memory.StockMovementRepo
	productRepo *memory.ProductRepo
	countRepo   *memory.InventoryCountRepo
	ledgerUC    *ledger.LedgerUseCase
	uc          *counting.CountUseCase
}

func newCountFixture(t *testing.T) *countFixture {
	t.Helper()
	store := memory.NewStore()
	movRepo := memory.NewStockMovementRepository(store)
	productRepo := memory.NewProductRepository(store)
	countRepo := memory.NewInventoryCountRepository(store)
	ledgerUC := ledger.NewLedgerUseCase(store, movRepo, productRepo)
	return &countFixture{
		store:       store,
		movRepo:     movRepo,
		productRepo: productRepo,
		countRepo:   countRepo,
		ledgerUC:    ledgerUC,
		uc:          counting.NewCountUseCase(store, ledgerUC, countRepo, productRepo),
	}
}

func (f *countFixture) seedProduct(t *testing.T, code string, stock int64) string {
	t.Helper()
	now := time.Now()
	p := &entity.Product{
		ID: uuid.New().String(), Code: code, Name: "Producto " + code,
		CostPrice: decimal.RequireFromString("1.00"),
		SalePrice: decimal.RequireFromString("2.00"),
		Unit:      "UNIDAD", IsActive: true, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, f.productRepo.Create(p))
	if stock > 0 {
		_, err := f.ledgerUC.Append(context.Background(), ledger.AppendInput{
			ProductID: p.ID, Type: entity.MovementTypeIN, Quantity: stock,
			Reason: entity.ReasonInitialStock, UserID: "tester",
		})
		require.NoError(t, err)
	}
	return p.ID
}

// startedCount programa e inicia un conteo.
func (f *countFixture) startedCount(t *testing.T) string {
	t.Helper()
	created, err := f.uc.Create(context.Background(), dto.CreateCountRequest{
		Description:   "Conteo mensual",
		ScheduledDate: "2026-08-31",
		Responsible:   "almacenero",
	})
	require.NoError(t, err)
	_, err = f.uc.Start(context.Background(), created.ID)
	require.NoError(t, err)
	return created.ID
}

func TestCountReconciliaDiferencias(t *testing.T) {
	f := newCountFixture(t)
	ctx := context.Background()
	faltante := f.seedProduct(t, "P001", 50) // se contarán 47: merma de 3
	sobrante := f.seedProduct(t, "P002", 10) // se contarán 12
	exacto := f.seedProduct(t, "P003", 8)    // cuadra

	countID := f.startedCount(t)
	require.NoError(t, f.uc.RecordCount(ctx, countID, "almacenero", dto.RecordCountRequest{ProductID: faltante, CountedQuantity: 47}))
	require.NoError(t, f.uc.RecordCount(ctx, countID, "almacenero", dto.RecordCountRequest{ProductID: sobrante, CountedQuantity: 12}))
	require.NoError(t, f.uc.RecordCount(ctx, countID, "almacenero", dto.RecordCountRequest{ProductID: exacto, CountedQuantity: 8}))

	completed, err := f.uc.Complete(ctx, countID, "supervisor")
	require.NoError(t, err)
	assert.Equal(t, entity.CountStatusCompleted, completed.Status)
	assert.NotEmpty(t, completed.EndDate)

	// El stock quedó en lo contado
	for id, want := range map[string]int64{faltante: 47, sobrante: 12, exacto: 8} {
		stock, err := f.ledgerUC.CurrentStock(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, stock)
	}

	// ADJUST de -3 para la merma, +2 para el sobrante, nada para el exacto
	movs, err := f.movRepo.ListByProductAsc(faltante)
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.Equal(t, entity.MovementTypeADJUST, movs[1].Type)
	assert.EqualValues(t, -3, movs[1].Quantity)
	assert.Equal(t, entity.ReasonInventoryAdjust, movs[1].Reason)

	movs, err = f.movRepo.ListByProductAsc(sobrante)
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.EqualValues(t, 2, movs[1].Quantity)

	movs, err = f.movRepo.ListByProductAsc(exacto)
	require.NoError(t, err)
	assert.Len(t, movs, 1)
}

func TestRecordCountSobrescribeLinea(t *testing.T) {
	f := newCountFixture(t)
	ctx := context.Background()
	productID := f.seedProduct(t, "P001", 20)
	countID := f.startedCount(t)

	require.NoError(t, f.uc.RecordCount(ctx, countID, "a", dto.RecordCountRequest{ProductID: productID, CountedQuantity: 15}))
	require.NoError(t, f.uc.RecordCount(ctx, countID, "a", dto.RecordCountRequest{ProductID: productID, CountedQuantity: 18}))

	count, err := f.uc.Get(ctx, countID)
	require.NoError(t, err)
	require.Len(t, count.Items, 1)
	assert.EqualValues(t, 18, count.Items[0].CountedQuantity)
	assert.EqualValues(t, 20, count.Items[0].SystemQuantity)
	assert.EqualValues(t, -2, count.Items[0].Difference)
}

// La diferencia definitiva se recalcula contra el stock vigente al cierre,
// no contra el snapshot del momento de contar.
func TestCompleteRecalculaContraStockVigente(t *testing.T) {
	f := newCountFixture(t)
	ctx := context.Background()
	productID := f.seedProduct(t, "P001", 20)
	countID := f.startedCount(t)

	require.NoError(t, f.uc.RecordCount(ctx, countID, "a", dto.RecordCountRequest{ProductID: productID, CountedQuantity: 18}))

	// Entre el conteo y el cierre entra mercadería: stock 20 -> 25
	_, err := f.ledgerUC.Append(ctx, ledger.AppendInput{
		ProductID: productID, Type: entity.MovementTypeIN, Quantity: 5,
		Reason: entity.ReasonPurchase, UserID: "almacenero",
	})
	require.NoError(t, err)

	completed, err := f.uc.Complete(ctx, countID, "supervisor")
	require.NoError(t, err)
	require.Len(t, completed.Items, 1)
	assert.EqualValues(t, -7, completed.Items[0].Difference)

	stock, err := f.ledgerUC.CurrentStock(ctx, productID)
	require.NoError(t, err)
	assert.EqualValues(t, 18, stock)
}

func TestTransicionesInvalidas(t *testing.T) {
	f := newCountFixture(t)
	ctx := context.Background()
	productID := f.seedProduct(t, "P001", 5)

	created, err := f.uc.Create(ctx, dto.CreateCountRequest{ScheduledDate: "2026-08-31"})
	require.NoError(t, err)

	// Registrar o completar sin iniciar
	err = f.uc.RecordCount(ctx, created.ID, "a", dto.RecordCountRequest{ProductID: productID, CountedQuantity: 5})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = f.uc.Complete(ctx, created.ID, "supervisor")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	// Iniciar dos veces
	_, err = f.uc.Start(ctx, created.ID)
	require.NoError(t, err)
	_, err = f.uc.Start(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	// Cancelar un conteo completado
	_, err = f.uc.Complete(ctx, created.ID, "supervisor")
	require.NoError(t, err)
	_, err = f.uc.Cancel(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

// gatedCountRunner retiene cada transacción hasta que todas las llamadas en
// vuelo hayan pasado sus verificaciones previas, forzando la carrera.
type gatedCountRunner struct {
	inner   counting.CountTxRunner
	barrier *sync.WaitGroup
}

func (g *gatedCountRunner) RunCount(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	countRepo repository.InventoryCountRepository,
) error) error {
	g.barrier.Done()
	g.barrier.Wait()
	return g.inner.RunCount(ctx, fn)
}

// Dos cierres simultáneos del mismo conteo: ambos leen IN_PROGRESS antes de
// que corra transacción alguna, pero solo uno gana y el ajuste se aplica una
// sola vez.
func TestCompleteConcurrenteAjustaUnaSolaVez(t *testing.T) {
	f := newCountFixture(t)
	ctx := context.Background()
	productID := f.seedProduct(t, "P001", 20)
	countID := f.startedCount(t)
	require.NoError(t, f.uc.RecordCount(ctx, countID, "a", dto.RecordCountRequest{ProductID: productID, CountedQuantity: 17}))

	var barrier sync.WaitGroup
	barrier.Add(2)
	uc := counting.NewCountUseCase(
		&gatedCountRunner{inner: f.store, barrier: &barrier},
		f.ledgerUC, f.countRepo, f.productRepo,
	)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Complete(ctx, countID, "supervisor")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok int
	for err := range results {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
		}
	}
	assert.Equal(t, 1, ok)

	// Un único ADJUST de -3: el stock queda en lo contado, no en 14
	stock, err := f.ledgerUC.CurrentStock(ctx, productID)
	require.NoError(t, err)
	assert.EqualValues(t, 17, stock)
	movs, err := f.movRepo.ListByProductAsc(productID)
	require.NoError(t, err)
	assert.Len(t, movs, 2)
}

func TestCreateValidaFecha(t *testing.T) {
	f := newCountFixture(t)
	_, err := f.uc.Create(context.Background(), dto.CreateCountRequest{ScheduledDate: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.uc.Create(context.Background(), dto.CreateCountRequest{ScheduledDate: "31/08/2026"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCancelNoTocaElLedger(t *testing.T) {
	f := newCountFixture(t)
	ctx := context.Background()
	productID := f.seedProduct(t, "P001", 10)
	countID := f.startedCount(t)

	require.NoError(t, f.uc.RecordCount(ctx, countID, "a", dto.RecordCountRequest{ProductID: productID, CountedQuantity: 4}))
	cancelled, err := f.uc.Cancel(ctx, countID)
	require.NoError(t, err)
	assert.Equal(t, entity.CountStatusCancelled, cancelled.Status)

	stock, err := f.ledgerUC.CurrentStock(ctx, productID)
	require.NoError(t, err)
	assert.EqualValues(t, 10, stock)
}
