package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/minimarket-pos/internal/domain"
)

// IGVRate tasa de IGV vigente (18%).
var IGVRate = decimal.NewFromFloat(0.18)

var hundred = decimal.NewFromInt(100)

// LineInput una línea del carrito para calcular.
type LineInput struct {
	Quantity           int64
	UnitPrice          decimal.Decimal
	DiscountPercentage decimal.Decimal // [0,100]
}

// LineTotal resultado por línea.
type LineTotal struct {
	Subtotal decimal.Decimal // cantidad * precio unitario
	Total    decimal.Decimal // subtotal menos descuento de línea, redondeado a 2 decimales
}

// Totals resultado del cálculo de la venta completa.
type Totals struct {
	Lines          []LineTotal
	Subtotal       decimal.Decimal // suma de totales de línea
	DiscountAmount decimal.Decimal // descuento a nivel de orden
	Tax            decimal.Decimal // IGV sobre la base imponible
	Total          decimal.Decimal
}

// ComputeSale calcula los totales de una venta (función pura, sin efectos).
// Cada línea se redondea a 2 decimales antes de sumar; la suma no se vuelve a
// redondear, para que los totales sean reproducibles línea a línea.
// Rechaza carritos vacíos, cantidades <= 0 y descuentos fuera de [0,100].
func ComputeSale(items []LineInput, orderDiscountPct decimal.Decimal) (*Totals, error) {
	if len(items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if !validPercentage(orderDiscountPct) {
		return nil, domain.ErrInvalidInput
	}

	totals := &Totals{Lines: make([]LineTotal, 0, len(items))}
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, domain.ErrInvalidInput
		}
		if it.UnitPrice.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		if !validPercentage(it.DiscountPercentage) {
			return nil, domain.ErrInvalidInput
		}
		lineSubtotal := decimal.NewFromInt(it.Quantity).Mul(it.UnitPrice)
		discount := lineSubtotal.Mul(it.DiscountPercentage).Div(hundred)
		lineTotal := lineSubtotal.Sub(discount).Round(2)

		totals.Lines = append(totals.Lines, LineTotal{Subtotal: lineSubtotal, Total: lineTotal})
		totals.Subtotal = totals.Subtotal.Add(lineTotal)
	}

	totals.DiscountAmount = totals.Subtotal.Mul(orderDiscountPct).Div(hundred).Round(2)
	taxableBase := totals.Subtotal.Sub(totals.DiscountAmount)
	totals.Tax = taxableBase.Mul(IGVRate).Round(2)
	totals.Total = taxableBase.Add(totals.Tax)
	return totals, nil
}

func validPercentage(p decimal.Decimal) bool {
	return p.GreaterThanOrEqual(decimal.Zero) && p.LessThanOrEqual(hundred)
}
