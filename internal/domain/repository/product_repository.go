package repository

import "github.com/jhoicas/minimarket-pos/internal/domain/entity"

// ProductRepository define el puerto de persistencia para Product (DIP).
// UpdateStock es de uso exclusivo del ledger: materializa el stock derivado
// del libro de movimientos bajo el candado de fila que entrega GetForUpdate.
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	GetByCode(code string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto (SELECT FOR UPDATE); es la
	// unidad de serialización por producto del ledger.
	GetForUpdate(id string) (*entity.Product, error)
	Update(product *entity.Product) error
	UpdateStock(productID string, stock int64) error
	List(limit, offset int) ([]*entity.Product, error)
	ListBelowReorderPoint() ([]*entity.Product, error)
}
