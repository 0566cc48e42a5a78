package repository

import "github.com/jhoicas/minimarket-pos/internal/domain/entity"

// CustomerRepository define el puerto de persistencia para clientes.
type CustomerRepository interface {
	Create(customer *entity.Customer) error
	GetByID(id string) (*entity.Customer, error)
	GetByDocument(documentNumber string) (*entity.Customer, error)
	List(limit, offset int) ([]*entity.Customer, error)
}
