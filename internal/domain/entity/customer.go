package entity

import "time"

// Tipos de cliente.
const (
	CustomerRegular   = "REGULAR"
	CustomerFrequent  = "FREQUENT"
	CustomerVIP       = "VIP"
	CustomerWholesale = "WHOLESALE"
)

// Customer representa un cliente registrado (las ventas admiten cliente de paso).
type Customer struct {
	ID             string
	FirstName      string
	LastName       string
	DocumentType   string // DNI, RUC, CE
	DocumentNumber string
	Phone          string
	Email          string
	CustomerType   string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// FullName nombre completo para mostrar en comprobantes.
func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}
