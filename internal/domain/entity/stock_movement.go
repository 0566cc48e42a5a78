package entity

import "time"

// Tipos de movimiento de stock.
const (
	MovementTypeIN     = "IN"     // entrada (recepción de compra, stock inicial)
	MovementTypeOUT    = "OUT"    // salida (venta)
	MovementTypeADJUST = "ADJUST" // ajuste por conteo físico
	MovementTypeRETURN = "RETURN" // devolución (cancelación de venta)
)

// Razones de movimiento (documento que lo origina).
const (
	ReasonPurchase        = "PURCHASE"
	ReasonSale            = "SALE"
	ReasonReturnCustomer  = "RETURN_CUSTOMER"
	ReasonInventoryAdjust = "INVENTORY_ADJUST"
	ReasonInitialStock    = "INITIAL_STOCK"
)

// StockMovement es una entrada del libro de movimientos (append-only).
// Sequence es monotónico por producto; StockBefore/StockAfter encierran el
// cambio, de modo que el stock actual siempre es el StockAfter del último
// movimiento. Una vez escrito, el movimiento nunca se modifica ni se borra.
type StockMovement struct {
	ID           string
	ProductID    string
	Sequence     int64
	Type         string // IN, OUT, ADJUST, RETURN
	Quantity     int64  // efecto con signo: IN/RETURN > 0, OUT < 0, ADJUST delta
	StockBefore  int64
	StockAfter   int64
	Reason       string
	Reference    string // número de venta, orden de compra o conteo
	Notes        string
	CreatedBy    string
	MovementDate time.Time
	CreatedAt    time.Time
}

// ValidMovementType verifica que el tipo sea uno de los soportados.
func ValidMovementType(t string) bool {
	switch t {
	case MovementTypeIN, MovementTypeOUT, MovementTypeADJUST, MovementTypeRETURN:
		return true
	}
	return false
}
