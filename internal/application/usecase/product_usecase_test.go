package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/minimarket-pos/internal/application/dto"
	"github.com/jhoicas/minimarket-pos/internal/application/ledger"
	"github.com/jhoicas/minimarket-pos/internal/application/usecase"
	"github.com/jhoicas/minimarket-pos/internal/domain"
	"github.com/jhoicas/minimarket-pos/internal/domain/entity"
	"github.com/jhoicas/minimarket-pos/internal/infrastructure/memory"
)

type productFixture struct {
	store   *memory.Store
	movRepo *memory.StockMovementRepo
	uc      *usecase.ProductUseCase
}

func newProductFixture(t *testing.T) *productFixture {
	t.Helper()
	store := memory.NewStore()
	productRepo := memory.NewProductRepository(store)
	movRepo := memory.NewStockMovementRepository(store)
	ledgerUC := ledger.NewLedgerUseCase(store, movRepo, productRepo)
	return &productFixture{
		store:   store,
		movRepo: movRepo,
		uc:      usecase.NewProductUseCase(productRepo, ledgerUC),
	}
}

func validCreateRequest() dto.CreateProductRequest {
	return dto.CreateProductRequest{
		Code:         "GAS-001",
		Name:         "Gaseosa 500ml",
		CostPrice:    decimal.RequireFromString("1.80"),
		SalePrice:    decimal.RequireFromString("2.50"),
		MinStock:     5,
		MaxStock:     100,
		ReorderPoint: 10,
		InitialStock: 24,
	}
}

func TestCreateProductoRegistraStockInicial(t *testing.T) {
	f := newProductFixture(t)
	ctx := context.Background()

	resp, err := f.uc.Create(ctx, "user-1", validCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, "GAS-001", resp.Code)
	assert.EqualValues(t, 24, resp.CurrentStock)
	assert.Equal(t, "NORMAL", resp.StockStatus)
	assert.True(t, resp.IsActive)

	// El stock inicial entra como movimiento IN referenciando el código
	movs, err := f.movRepo.ListByProductAsc(resp.ID)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeIN, movs[0].Type)
	assert.Equal(t, entity.ReasonInitialStock, movs[0].Reason)
	assert.Equal(t, "GAS-001", movs[0].Reference)
	assert.EqualValues(t, 0, movs[0].StockBefore)
	assert.EqualValues(t, 24, movs[0].StockAfter)
}

func TestCreateProductoSinStockInicial(t *testing.T) {
	f := newProductFixture(t)
	in := validCreateRequest()
	in.InitialStock = 0

	resp, err := f.uc.Create(context.Background(), "user-1", in)
	require.NoError(t, err)
	assert.EqualValues(t, 0, resp.CurrentStock)

	movs, err := f.movRepo.ListByProductAsc(resp.ID)
	require.NoError(t, err)
	assert.Empty(t, movs)
}

func TestCreateProductoCodigoDuplicado(t *testing.T) {
	f := newProductFixture(t)
	ctx := context.Background()

	_, err := f.uc.Create(ctx, "user-1", validCreateRequest())
	require.NoError(t, err)
	_, err = f.uc.Create(ctx, "user-1", validCreateRequest())
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCreateProductoValidaEntrada(t *testing.T) {
	f := newProductFixture(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*dto.CreateProductRequest)
	}{
		{"sin código", func(in *dto.CreateProductRequest) { in.Code = "" }},
		{"sin nombre", func(in *dto.CreateProductRequest) { in.Name = "" }},
		{"precio de costo negativo", func(in *dto.CreateProductRequest) {
			in.CostPrice = decimal.RequireFromString("-1")
		}},
		{"precio de venta negativo", func(in *dto.CreateProductRequest) {
			in.SalePrice = decimal.RequireFromString("-0.10")
		}},
		{"stock mínimo negativo", func(in *dto.CreateProductRequest) { in.MinStock = -1 }},
		{"punto de reorden negativo", func(in *dto.CreateProductRequest) { in.ReorderPoint = -5 }},
		{"stock inicial negativo", func(in *dto.CreateProductRequest) { in.InitialStock = -3 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validCreateRequest()
			tc.mutate(&in)
			_, err := f.uc.Create(ctx, "user-1", in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestUpdateProductoNoTocaCodigoNiStock(t *testing.T) {
	f := newProductFixture(t)
	ctx := context.Background()
	created, err := f.uc.Create(ctx, "user-1", validCreateRequest())
	require.NoError(t, err)

	minStock := int64(8)
	inactive := false
	resp, err := f.uc.Update(ctx, created.ID, dto.UpdateProductRequest{
		Name:      "Gaseosa 500ml retornable",
		SalePrice: decimal.RequireFromString("2.80"),
		MinStock:  &minStock,
		IsActive:  &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Gaseosa 500ml retornable", resp.Name)
	assert.True(t, resp.SalePrice.Equal(decimal.RequireFromString("2.80")))
	assert.EqualValues(t, 8, resp.MinStock)
	assert.False(t, resp.IsActive)

	// Código y stock permanecen
	assert.Equal(t, created.Code, resp.Code)
	assert.EqualValues(t, 24, resp.CurrentStock)
}

func TestUpdateProductoPrecioNegativo(t *testing.T) {
	f := newProductFixture(t)
	ctx := context.Background()
	created, err := f.uc.Create(ctx, "user-1", validCreateRequest())
	require.NoError(t, err)

	_, err = f.uc.Update(ctx, created.ID, dto.UpdateProductRequest{
		SalePrice: decimal.RequireFromString("-2.80"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetProductoInexistente(t *testing.T) {
	f := newProductFixture(t)
	_, err := f.uc.GetByID(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.Update(context.Background(), "no-existe", dto.UpdateProductRequest{Name: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListProductos(t *testing.T) {
	f := newProductFixture(t)
	ctx := context.Background()
	for _, code := range []string{"A-001", "A-002", "A-003"} {
		in := validCreateRequest()
		in.Code = code
		in.InitialStock = 0
		_, err := f.uc.Create(ctx, "user-1", in)
		require.NoError(t, err)
	}

	list, err := f.uc.List(ctx, 2, 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	rest, err := f.uc.List(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}
