package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/minimarket-pos/internal/application/dto"
	"github.com/jhoicas/minimarket-pos/internal/application/ledger"
	"github.com/jhoicas/minimarket-pos/internal/domain"
	"github.com/jhoicas/minimarket-pos/internal/domain/entity"
	"github.com/jhoicas/minimarket-pos/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD del catálogo. El stock NO se edita aquí:
// el stock inicial entra como movimiento IN (razón INITIAL_STOCK) y todo
// cambio posterior pasa por venta, compra o conteo.
type ProductUseCase struct {
	repo     repository.ProductRepository
	ledgerUC *ledger.LedgerUseCase
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, ledgerUC *ledger.LedgerUseCase) *ProductUseCase {
	return &ProductUseCase{repo: repo, ledgerUC: ledgerUC}
}

// Create crea un producto con stock 0; si InitialStock > 0, registra el
// movimiento IN inicial a través del ledger.
func (uc *ProductUseCase) Create(ctx context.Context, userID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if in.Code == "" || in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.CostPrice.LessThan(decimal.Zero) || in.SalePrice.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	if in.MinStock < 0 || in.MaxStock < 0 || in.ReorderPoint < 0 || in.InitialStock < 0 {
		return nil, domain.ErrInvalidInput
	}
	existing, _ := uc.repo.GetByCode(in.Code)
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	if in.Unit == "" {
		in.Unit = "UNIDAD"
	}

	now := time.Now()
	product := &entity.Product{
		ID:           uuid.New().String(),
		Code:         in.Code,
		Barcode:      in.Barcode,
		Name:         in.Name,
		Description:  in.Description,
		CategoryID:   in.CategoryID,
		SupplierID:   in.SupplierID,
		CostPrice:    in.CostPrice,
		SalePrice:    in.SalePrice,
		CurrentStock: 0,
		MinStock:     in.MinStock,
		MaxStock:     in.MaxStock,
		ReorderPoint: in.ReorderPoint,
		Unit:         in.Unit,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(product); err != nil {
		return nil, err
	}

	if in.InitialStock > 0 {
		mov, err := uc.ledgerUC.Append(ctx, ledger.AppendInput{
			ProductID: product.ID,
			Type:      entity.MovementTypeIN,
			Quantity:  in.InitialStock,
			Reason:    entity.ReasonInitialStock,
			Reference: product.Code,
			UserID:    userID,
		})
		if err != nil {
			return nil, err
		}
		product.CurrentStock = mov.StockAfter
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return toProductResponse(product), nil
}

// Update actualiza atributos del producto. Código y stock son inmutables aquí.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if in.Barcode != "" {
		product.Barcode = in.Barcode
	}
	if in.Name != "" {
		product.Name = in.Name
	}
	if in.Description != "" {
		product.Description = in.Description
	}
	if !in.CostPrice.IsZero() {
		if in.CostPrice.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		product.CostPrice = in.CostPrice
	}
	if !in.SalePrice.IsZero() {
		if in.SalePrice.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		product.SalePrice = in.SalePrice
	}
	if in.MinStock != nil {
		product.MinStock = *in.MinStock
	}
	if in.MaxStock != nil {
		product.MaxStock = *in.MaxStock
	}
	if in.ReorderPoint != nil {
		product.ReorderPoint = *in.ReorderPoint
	}
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista productos del catálogo.
func (uc *ProductUseCase) List(ctx context.Context, limit, offset int) ([]*dto.ProductResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	products, err := uc.repo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	return out, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:           p.ID,
		Code:         p.Code,
		Barcode:      p.Barcode,
		Name:         p.Name,
		Description:  p.Description,
		CostPrice:    p.CostPrice,
		SalePrice:    p.SalePrice,
		CurrentStock: p.CurrentStock,
		MinStock:     p.MinStock,
		MaxStock:     p.MaxStock,
		ReorderPoint: p.ReorderPoint,
		StockStatus:  p.StockStatus(),
		IsActive:     p.IsActive,
	}
}
