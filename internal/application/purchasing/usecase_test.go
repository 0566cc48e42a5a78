package purchasing_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/minimarket-pos/internal/application/dto"
	"github.com/jhoicas/minimarket-pos/internal/application/ledger"
	"github.com/jhoicas/minimarket-pos/internal/application/purchasing"
	"github.com/jhoicas/minimarket-pos/internal/domain"
	"github.com/jhoicas/minimarket-pos/internal/domain/entity"
	"github.com/jhoicas/minimarket-pos/internal/domain/repository"
	"github.com/jhoicas/minimarket-pos/internal/infrastructure/memory"
)

type purchaseFixture struct {
	store        *memory.Store
	movRepo      *memory.StockMovementRepo
	productRepo  *memory.ProductRepo
	poRepo       *memory.PurchaseOrderRepo
	supplierRepo *memory.SupplierRepo
	ledgerUC     *ledger.LedgerUseCase
	uc           *purchasing.PurchaseOrderUseCase
}

func newPurchaseFixture(t *testing.T) *purchaseFixture {
	t.Helper()
	store := memory.NewStore()
	movRepo := memory.NewStockMovementRepository(store)
	productRepo := memory.NewProductRepository(store)
	poRepo := memory.NewPurchaseOrderRepository(store)
	supplierRepo := memory.NewSupplierRepository(store)
	ledgerUC := ledger.NewLedgerUseCase(store, movRepo, productRepo)
	return &purchaseFixture{
		store:        store,
		movRepo:      movRepo,
		productRepo:  productRepo,
		poRepo:       poRepo,
		supplierRepo: supplierRepo,
		ledgerUC:     ledgerUC,
		uc:           purchasing.NewPurchaseOrderUseCase(store, ledgerUC, poRepo, productRepo, supplierRepo),
	}
}

func (f *purchaseFixture) seedSupplier(t *testing.T) string {
	t.Helper()
	now := time.Now()
	s := &entity.Supplier{
		ID: uuid.New().String(), Name: "Distribuidora Lima", RUC: "20123456789",
		IsActive: true, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, f.supplierRepo.Create(s))
	return s.ID
}

func (f *purchaseFixture) seedProduct(t *testing.T, code string) string {
	t.Helper()
	now := time.Now()
	p := &entity.Product{
		ID: uuid.New().String(), Code: code, Name: "Producto " + code,
		CostPrice: decimal.RequireFromString("4.00"),
		SalePrice: decimal.RequireFromString("6.00"),
		Unit:      "UNIDAD", IsActive: true, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, f.productRepo.Create(p))
	return p.ID
}

func TestPurchaseOrderCicloCompleto(t *testing.T) {
	f := newPurchaseFixture(t)
	ctx := context.Background()
	supplierID := f.seedSupplier(t)
	productID := f.seedProduct(t, "P001")

	created, err := f.uc.Create(ctx, "comprador", dto.CreatePurchaseOrderRequest{
		SupplierID:   supplierID,
		ExpectedDate: "2026-09-05",
		Items: []dto.POItemRequest{
			{ProductID: productID, QuantityOrdered: 50, UnitPrice: decimal.RequireFromString("4.00")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.POStatusPending, created.Status)
	// 50*4.00 = 200.00; IGV 18% = 36.00
	assert.True(t, created.Subtotal.Equal(decimal.RequireFromString("200.00")))
	assert.True(t, created.Tax.Equal(decimal.RequireFromString("36.00")))
	assert.True(t, created.Total.Equal(decimal.RequireFromString("236.00")))

	approved, err := f.uc.Approve(ctx, created.ID, "jefe")
	require.NoError(t, err)
	assert.Equal(t, entity.POStatusApproved, approved.Status)

	received, err := f.uc.Receive(ctx, created.ID, "almacenero")
	require.NoError(t, err)
	assert.Equal(t, entity.POStatusReceived, received.Status)
	assert.NotEmpty(t, received.ReceivedDate)
	require.Len(t, received.Items, 1)
	assert.EqualValues(t, 50, received.Items[0].QuantityReceived)

	// El stock entró por el ledger con razón PURCHASE
	stock, err := f.ledgerUC.CurrentStock(ctx, productID)
	require.NoError(t, err)
	assert.EqualValues(t, 50, stock)
	movs, err := f.movRepo.ListByProductAsc(productID)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeIN, movs[0].Type)
	assert.Equal(t, entity.ReasonPurchase, movs[0].Reason)
	assert.Equal(t, received.OrderNumber, movs[0].Reference)
}

func TestReceiveExigeOrdenAprobada(t *testing.T) {
	f := newPurchaseFixture(t)
	ctx := context.Background()
	supplierID := f.seedSupplier(t)
	productID := f.seedProduct(t, "P001")

	created, err := f.uc.Create(ctx, "comprador", dto.CreatePurchaseOrderRequest{
		SupplierID: supplierID,
		Items:      []dto.POItemRequest{{ProductID: productID, QuantityOrdered: 10, UnitPrice: decimal.RequireFromString("4.00")}},
	})
	require.NoError(t, err)

	_, err = f.uc.Receive(ctx, created.ID, "almacenero")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	// El stock no se movió
	stock, err := f.ledgerUC.CurrentStock(ctx, productID)
	require.NoError(t, err)
	assert.Zero(t, stock)
}

// gatedPurchaseRunner retiene cada transacción hasta que todas las llamadas en
// vuelo hayan pasado sus verificaciones previas, forzando la carrera.
type gatedPurchaseRunner struct {
	inner   purchasing.PurchaseTxRunner
	barrier *sync.WaitGroup
}

func (g *gatedPurchaseRunner) RunPurchase(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	poRepo repository.PurchaseOrderRepository,
) error) error {
	g.barrier.Done()
	g.barrier.Wait()
	return g.inner.RunPurchase(ctx, fn)
}

// Dos recepciones simultáneas de la misma orden: ambas leen APPROVED antes de
// que corra transacción alguna, pero solo una gana. El stock entra una sola
// vez.
func TestReceiveConcurrenteIngresaUnaSolaVez(t *testing.T) {
	f := newPurchaseFixture(t)
	ctx := context.Background()
	supplierID := f.seedSupplier(t)
	productID := f.seedProduct(t, "P001")

	created, err := f.uc.Create(ctx, "comprador", dto.CreatePurchaseOrderRequest{
		SupplierID: supplierID,
		Items:      []dto.POItemRequest{{ProductID: productID, QuantityOrdered: 10, UnitPrice: decimal.RequireFromString("4.00")}},
	})
	require.NoError(t, err)
	_, err = f.uc.Approve(ctx, created.ID, "jefe")
	require.NoError(t, err)

	var barrier sync.WaitGroup
	barrier.Add(2)
	uc := purchasing.NewPurchaseOrderUseCase(
		&gatedPurchaseRunner{inner: f.store, barrier: &barrier},
		f.ledgerUC, f.poRepo, f.productRepo, f.supplierRepo,
	)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Receive(ctx, created.ID, "almacenero")
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

	// Un único IN por los 10 pedidos, no dos
	stock, err := f.ledgerUC.CurrentStock(ctx, productID)
	require.NoError(t, err)
	assert.EqualValues(t, 10, stock)
	movs, err := f.movRepo.ListByProductAsc(productID)
	require.NoError(t, err)
	assert.Len(t, movs, 1)
}

func TestCancelSoloAntesDeRecibir(t *testing.T) {
	f := newPurchaseFixture(t)
	ctx := context.Background()
	supplierID := f.seedSupplier(t)
	productID := f.seedProduct(t, "P001")

	created, err := f.uc.Create(ctx, "comprador", dto.CreatePurchaseOrderRequest{
		SupplierID: supplierID,
		Items:      []dto.POItemRequest{{ProductID: productID, QuantityOrdered: 10, UnitPrice: decimal.RequireFromString("4.00")}},
	})
	require.NoError(t, err)

	cancelled, err := f.uc.Cancel(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.POStatusCancelled, cancelled.Status)

	// No se puede aprobar ni recibir una orden cancelada
	_, err = f.uc.Approve(ctx, created.ID, "jefe")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = f.uc.Receive(ctx, created.ID, "almacenero")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCancelOrdenRecibidaRechazado(t *testing.T) {
	f := newPurchaseFixture(t)
	ctx := context.Background()
	supplierID := f.seedSupplier(t)
	productID := f.seedProduct(t, "P001")

	created, err := f.uc.Create(ctx, "comprador", dto.CreatePurchaseOrderRequest{
		SupplierID: supplierID,
		Items:      []dto.POItemRequest{{ProductID: productID, QuantityOrdered: 5, UnitPrice: decimal.RequireFromString("4.00")}},
	})
	require.NoError(t, err)
	_, err = f.uc.Approve(ctx, created.ID, "jefe")
	require.NoError(t, err)
	_, err = f.uc.Receive(ctx, created.ID, "almacenero")
	require.NoError(t, err)

	_, err = f.uc.Cancel(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCreateValidaEntrada(t *testing.T) {
	f := newPurchaseFixture(t)
	ctx := context.Background()
	supplierID := f.seedSupplier(t)
	productID := f.seedProduct(t, "P001")

	cases := []struct {
		name string
		in   dto.CreatePurchaseOrderRequest
		want error
	}{
		{"sin proveedor", dto.CreatePurchaseOrderRequest{
			Items: []dto.POItemRequest{{ProductID: productID, QuantityOrdered: 1, UnitPrice: decimal.RequireFromString("1.00")}},
		}, domain.ErrInvalidInput},
		{"sin items", dto.CreatePurchaseOrderRequest{SupplierID: supplierID}, domain.ErrInvalidInput},
		{"proveedor inexistente", dto.CreatePurchaseOrderRequest{
			SupplierID: uuid.New().String(),
			Items:      []dto.POItemRequest{{ProductID: productID, QuantityOrdered: 1, UnitPrice: decimal.RequireFromString("1.00")}},
		}, domain.ErrNotFound},
		{"cantidad cero", dto.CreatePurchaseOrderRequest{
			SupplierID: supplierID,
			Items:      []dto.POItemRequest{{ProductID: productID, QuantityOrdered: 0, UnitPrice: decimal.RequireFromString("1.00")}},
		}, domain.ErrInvalidInput},
		{"fecha esperada inválida", dto.CreatePurchaseOrderRequest{
			SupplierID:   supplierID,
			ExpectedDate: "05/09/2026",
			Items:        []dto.POItemRequest{{ProductID: productID, QuantityOrdered: 1, UnitPrice: decimal.RequireFromString("1.00")}},
		}, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.Create(ctx, "comprador", tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
