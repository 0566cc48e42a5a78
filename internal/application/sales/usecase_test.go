package sales_test

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
	"github.com/jhoicas/minimarket-pos/internal/application/sales"
	"github.com/jhoicas/minimarket-pos/internal/domain"
	"github.com/jhoicas/minimarket-pos/internal/domain/entity"
	"github.com/jhoicas/minimarket-pos/internal/domain/repository"
	"github.com/jhoicas/minimarket-pos/internal/infrastructure/memory"
)

type saleFixture struct {
	store        *memory.Store
	movRepo      *memory.StockMovementRepo
	productRepo  *memory.ProductRepo
	saleRepo     *memory.SaleRepo
	customerRepo *memory.CustomerRepo
	ledgerUC     *ledger.LedgerUseCase
	uc           *sales.SaleUseCase
}

func newSaleFixture(t *testing.T) *saleFixture {
	t.Helper()
	store := memory.NewStore()
	movRepo := memory.NewStockMovementRepository(store)
	productRepo := memory.NewProductRepository(store)
	saleRepo := memory.NewSaleRepository(store)
	customerRepo := memory.NewCustomerRepository(store)
	ledgerUC := ledger.NewLedgerUseCase(store, movRepo, productRepo)
	return &saleFixture{
		store:        store,
		movRepo:      movRepo,
		productRepo:  productRepo,
		saleRepo:     saleRepo,
		customerRepo: customerRepo,
		ledgerUC:     ledgerUC,
		uc:           sales.NewSaleUseCase(store, ledgerUC, saleRepo, productRepo, customerRepo),
	}
}

// seedProduct crea un producto activo y le carga stock inicial vía ledger.
func (f *saleFixture) seedProduct(t *testing.T, code, salePrice string, stock int64) string {
	t.Helper()
	now := time.Now()
	p := &entity.Product{
		ID:        uuid.New().String(),
		Code:      code,
		Name:      "Producto " + code,
		CostPrice: decimal.RequireFromString("1.00"),
		SalePrice: decimal.RequireFromString(salePrice),
		Unit:      "UNIDAD",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, f.productRepo.Create(p))
	if stock > 0 {
		_, err := f.ledgerUC.Append(context.Background(), ledger.AppendInput{
			ProductID: p.ID,
			Type:      entity.MovementTypeIN,
			Quantity:  stock,
			Reason:    entity.ReasonInitialStock,
			UserID:    "tester",
		})
		require.NoError(t, err)
	}
	return p.ID
}

func (f *saleFixture) stock(t *testing.T, productID string) int64 {
	t.Helper()
	stock, err := f.ledgerUC.CurrentStock(context.Background(), productID)
	require.NoError(t, err)
	return stock
}

func TestCreateSaleCalculaTotalesYDescuentaStock(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	gaseosa := f.seedProduct(t, "P001", "10.00", 20)
	galletas := f.seedProduct(t, "P002", "5.50", 10)

	resp, err := f.uc.CreateSale(ctx, "cajero1", dto.CreateSaleRequest{
		PaymentMethod: entity.PaymentCash,
		Items: []dto.SaleItemRequest{
			{ProductID: gaseosa, Quantity: 2},
			{ProductID: galletas, Quantity: 3},
		},
	})
	require.NoError(t, err)

	// 2*10.00 + 3*5.50 = 36.50; IGV 18% = 6.57
	assert.Equal(t, entity.SaleStatusCompleted, resp.Status)
	assert.True(t, resp.Subtotal.Equal(decimal.RequireFromString("36.50")), "subtotal %s", resp.Subtotal)
	assert.True(t, resp.Tax.Equal(decimal.RequireFromString("6.57")), "tax %s", resp.Tax)
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("43.07")), "total %s", resp.Total)
	assert.Len(t, resp.Items, 2)

	assert.EqualValues(t, 18, f.stock(t, gaseosa))
	assert.EqualValues(t, 7, f.stock(t, galletas))

	// Un movimiento OUT por línea, referenciando la venta
	movs, err := f.movRepo.ListByProductAsc(gaseosa)
	require.NoError(t, err)
	require.Len(t, movs, 2)
	out := movs[1]
	assert.Equal(t, entity.MovementTypeOUT, out.Type)
	assert.EqualValues(t, -2, out.Quantity)
	assert.Equal(t, entity.ReasonSale, out.Reason)
	assert.Equal(t, resp.SaleNumber, out.Reference)
}

func TestCreateSaleUsaPrecioDeCatalogo(t *testing.T) {
	f := newSaleFixture(t)
	productID := f.seedProduct(t, "P001", "2.50", 5)

	resp, err := f.uc.CreateSale(context.Background(), "cajero1", dto.CreateSaleRequest{
		PaymentMethod: entity.PaymentYape,
		Items:         []dto.SaleItemRequest{{ProductID: productID, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.True(t, resp.Items[0].UnitPrice.Equal(decimal.RequireFromString("2.50")))
	assert.True(t, resp.Subtotal.Equal(decimal.RequireFromString("5.00")))
}

func TestCreateSaleTodoONada(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	conStock := f.seedProduct(t, "P001", "10.00", 20)
	sinStock := f.seedProduct(t, "P002", "5.00", 1)

	_, err := f.uc.CreateSale(ctx, "cajero1", dto.CreateSaleRequest{
		PaymentMethod: entity.PaymentCash,
		Items: []dto.SaleItemRequest{
			{ProductID: conStock, Quantity: 5},
			{ProductID: sinStock, Quantity: 3},
		},
	})
	require.Error(t, err)
	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, sinStock, insufficient.ProductID)
	assert.EqualValues(t, 3, insufficient.Requested)
	assert.EqualValues(t, 1, insufficient.Available)

	// Ninguna línea se aplicó: stock intacto y sin ventas registradas
	assert.EqualValues(t, 20, f.stock(t, conStock))
	assert.EqualValues(t, 1, f.stock(t, sinStock))
	list, err := f.uc.ListSales(ctx, repository.SaleFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateSaleValidaEntrada(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	productID := f.seedProduct(t, "P001", "10.00", 5)

	cases := []struct {
		name string
		in   dto.CreateSaleRequest
		want error
	}{
		{"sin items", dto.CreateSaleRequest{PaymentMethod: entity.PaymentCash}, domain.ErrInvalidInput},
		{"método de pago inválido", dto.CreateSaleRequest{
			PaymentMethod: "BITCOIN",
			Items:         []dto.SaleItemRequest{{ProductID: productID, Quantity: 1}},
		}, domain.ErrInvalidInput},
		{"producto duplicado", dto.CreateSaleRequest{
			PaymentMethod: entity.PaymentCash,
			Items: []dto.SaleItemRequest{
				{ProductID: productID, Quantity: 1},
				{ProductID: productID, Quantity: 2},
			},
		}, domain.ErrInvalidInput},
		{"cantidad cero", dto.CreateSaleRequest{
			PaymentMethod: entity.PaymentCash,
			Items:         []dto.SaleItemRequest{{ProductID: productID, Quantity: 0}},
		}, domain.ErrInvalidInput},
		{"cliente inexistente", dto.CreateSaleRequest{
			CustomerID:    uuid.New().String(),
			PaymentMethod: entity.PaymentCash,
			Items:         []dto.SaleItemRequest{{ProductID: productID, Quantity: 1}},
		}, domain.ErrNotFound},
		{"producto inexistente", dto.CreateSaleRequest{
			PaymentMethod: entity.PaymentCash,
			Items:         []dto.SaleItemRequest{{ProductID: uuid.New().String(), Quantity: 1}},
		}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.CreateSale(ctx, "cajero1", tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCancelSaleDevuelveElStock(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	productID := f.seedProduct(t, "P001", "10.00", 10)

	created, err := f.uc.CreateSale(ctx, "cajero1", dto.CreateSaleRequest{
		PaymentMethod: entity.PaymentCard,
		Items:         []dto.SaleItemRequest{{ProductID: productID, Quantity: 4}},
	})
	require.NoError(t, err)
	require.EqualValues(t, 6, f.stock(t, productID))

	cancelled, err := f.uc.CancelSale(ctx, created.ID, "supervisor")
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusCancelled, cancelled.Status)
	assert.EqualValues(t, 10, f.stock(t, productID))

	// El retorno queda en el libro: IN inicial, OUT de venta, RETURN de anulación
	movs, err := f.movRepo.ListByProductAsc(productID)
	require.NoError(t, err)
	require.Len(t, movs, 3)
	ret := movs[2]
	assert.Equal(t, entity.MovementTypeRETURN, ret.Type)
	assert.EqualValues(t, 4, ret.Quantity)
	assert.Equal(t, entity.ReasonReturnCustomer, ret.Reason)

	// Cancelar dos veces es una transición inválida
	_, err = f.uc.CancelSale(ctx, created.ID, "supervisor")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCancelSaleInexistente(t *testing.T) {
	f := newSaleFixture(t)
	_, err := f.uc.CancelSale(context.Background(), uuid.New().String(), "supervisor")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// gatedSaleRunner retiene cada transacción hasta que todas las llamadas en
// vuelo hayan pasado sus verificaciones previas, forzando la carrera.
type gatedSaleRunner struct {
	inner   sales.SaleTxRunner
	barrier *sync.WaitGroup
}

func (g *gatedSaleRunner) RunSale(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
) error) error {
	g.barrier.Done()
	g.barrier.Wait()
	return g.inner.RunSale(ctx, fn)
}

// Dos anulaciones simultáneas de la misma venta: ambas leen COMPLETED antes de
// que corra transacción alguna, pero solo una gana. El stock se devuelve una
// sola vez y queda un único RETURN en el libro.
func TestCancelSaleConcurrenteDevuelveUnaSolaVez(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	productID := f.seedProduct(t, "P001", "10.00", 10)

	created, err := f.uc.CreateSale(ctx, "cajero1", dto.CreateSaleRequest{
		PaymentMethod: entity.PaymentCash,
		Items:         []dto.SaleItemRequest{{ProductID: productID, Quantity: 4}},
	})
	require.NoError(t, err)
	require.EqualValues(t, 6, f.stock(t, productID))

	var barrier sync.WaitGroup
	barrier.Add(2)
	uc := sales.NewSaleUseCase(
		&gatedSaleRunner{inner: f.store, barrier: &barrier},
		f.ledgerUC, f.saleRepo, f.productRepo, f.customerRepo,
	)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.CancelSale(ctx, created.ID, "supervisor")
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
	assert.EqualValues(t, 10, f.stock(t, productID))

	// IN inicial, OUT de venta y un único RETURN
	movs, err := f.movRepo.ListByProductAsc(productID)
	require.NoError(t, err)
	require.Len(t, movs, 3)
	assert.Equal(t, entity.MovementTypeRETURN, movs[2].Type)
}

// Dos cajeros compiten por la última unidad: exactamente una venta entra.
func TestCreateSaleCarreraPorUltimaUnidad(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	productID := f.seedProduct(t, "P001", "10.00", 1)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.CreateSale(ctx, "cajero", dto.CreateSaleRequest{
				PaymentMethod: entity.PaymentCash,
				Items:         []dto.SaleItemRequest{{ProductID: productID, Quantity: 1}},
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok, failed int
	for err := range results {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
			failed++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, failed)
	assert.EqualValues(t, 0, f.stock(t, productID))
}
