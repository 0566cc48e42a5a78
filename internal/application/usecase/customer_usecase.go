package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/minimarket-pos/internal/application/dto"
	"github.com/jhoicas/minimarket-pos/internal/domain"
	"github.com/jhoicas/minimarket-pos/internal/domain/entity"
	"github.com/jhoicas/minimarket-pos/internal/domain/repository"
)

// CustomerUseCase gestiona los clientes registrados. Las ventas admiten
// cliente de paso, así que registrar es opcional.
type CustomerUseCase struct {
	repo repository.CustomerRepository
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(repo repository.CustomerRepository) *CustomerUseCase {
	return &CustomerUseCase{repo: repo}
}

func validDocumentType(t string) bool {
	return t == "DNI" || t == "RUC" || t == "CE"
}

// Create registra un cliente. El número de documento es único.
func (uc *CustomerUseCase) Create(ctx context.Context, in dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	if in.FirstName == "" || in.DocumentNumber == "" || !validDocumentType(in.DocumentType) {
		return nil, domain.ErrInvalidInput
	}

	existing, err := uc.repo.GetByDocument(in.DocumentNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}

	customerType := in.CustomerType
	if customerType == "" {
		customerType = entity.CustomerRegular
	}

	now := time.Now()
	customer := &entity.Customer{
		ID:             uuid.New().String(),
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		DocumentType:   in.DocumentType,
		DocumentNumber: in.DocumentNumber,
		Phone:          in.Phone,
		Email:          in.Email,
		CustomerType:   customerType,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.repo.Create(customer); err != nil {
		return nil, err
	}
	return toCustomerResponse(customer), nil
}

// GetByID obtiene un cliente.
func (uc *CustomerUseCase) GetByID(ctx context.Context, id string) (*dto.CustomerResponse, error) {
	customer, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, domain.ErrNotFound
	}
	return toCustomerResponse(customer), nil
}

// List lista clientes paginados.
func (uc *CustomerUseCase) List(ctx context.Context, limit, offset int) ([]*dto.CustomerResponse, error) {
	customers, err := uc.repo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	list := make([]*dto.CustomerResponse, 0, len(customers))
	for _, c := range customers {
		list = append(list, toCustomerResponse(c))
	}
	return list, nil
}

func toCustomerResponse(c *entity.Customer) *dto.CustomerResponse {
	return &dto.CustomerResponse{
		ID:             c.ID,
		FirstName:      c.FirstName,
		LastName:       c.LastName,
		FullName:       c.FullName(),
		DocumentType:   c.DocumentType,
		DocumentNumber: c.DocumentNumber,
		Phone:          c.Phone,
		Email:          c.Email,
		CustomerType:   c.CustomerType,
		IsActive:       c.IsActive,
	}
}
