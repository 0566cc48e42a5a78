package dto

// CreateCustomerRequest body para POST /api/customers.
type CreateCustomerRequest struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	DocumentType   string `json:"document_type"` // DNI, RUC, CE
	DocumentNumber string `json:"document_number"`
	Phone          string `json:"phone,omitempty"`
	Email          string `json:"email,omitempty"`
	CustomerType   string `json:"customer_type,omitempty"`
}

// CustomerResponse cliente registrado.
type CustomerResponse struct {
	ID             string `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	FullName       string `json:"full_name"`
	DocumentType   string `json:"document_type"`
	DocumentNumber string `json:"document_number"`
	Phone          string `json:"phone,omitempty"`
	Email          string `json:"email,omitempty"`
	CustomerType   string `json:"customer_type"`
	IsActive       bool   `json:"is_active"`
}
