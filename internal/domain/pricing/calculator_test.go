package pricing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/minimarket-pos/internal/domain"
	"github.com/jhoicas/minimarket-pos/internal/domain/pricing"
)

func d(s string) decimal.Decimal {
	v, _ := decimal.NewFromString(s)
	return v
}

// Caso base: 2 x 10.00 sin descuentos, IGV 18% => subtotal 20.00, IGV 3.60, total 23.60.
func TestComputeSale_SinDescuentos(t *testing.T) {
	totals, err := pricing.ComputeSale([]pricing.LineInput{
		{Quantity: 2, UnitPrice: d("10.00")},
	}, decimal.Zero)
	require.NoError(t, err)

	assert.True(t, totals.Subtotal.Equal(d("20.00")), "subtotal: %s", totals.Subtotal)
	assert.True(t, totals.DiscountAmount.Equal(d("0.00")))
	assert.True(t, totals.Tax.Equal(d("3.60")), "IGV: %s", totals.Tax)
	assert.True(t, totals.Total.Equal(d("23.60")), "total: %s", totals.Total)
}

// Descuento de línea: 3 x 5.50 con 10% de línea => línea 14.85.
func TestComputeSale_DescuentoDeLinea(t *testing.T) {
	totals, err := pricing.ComputeSale([]pricing.LineInput{
		{Quantity: 3, UnitPrice: d("5.50"), DiscountPercentage: d("10")},
	}, decimal.Zero)
	require.NoError(t, err)

	require.Len(t, totals.Lines, 1)
	assert.True(t, totals.Lines[0].Total.Equal(d("14.85")), "línea: %s", totals.Lines[0].Total)
	assert.True(t, totals.Subtotal.Equal(d("14.85")))
}

// Descuento de orden: se aplica sobre la suma de líneas y el IGV sobre la base.
func TestComputeSale_DescuentoDeOrden(t *testing.T) {
	totals, err := pricing.ComputeSale([]pricing.LineInput{
		{Quantity: 4, UnitPrice: d("25.00")},
	}, d("20"))
	require.NoError(t, err)

	assert.True(t, totals.Subtotal.Equal(d("100.00")))
	assert.True(t, totals.DiscountAmount.Equal(d("20.00")))
	assert.True(t, totals.Tax.Equal(d("14.40")), "IGV: %s", totals.Tax)
	assert.True(t, totals.Total.Equal(d("94.40")), "total: %s", totals.Total)
}

// El redondeo es por línea, antes de sumar: dos líneas de 0.333 no acumulan
// fracciones de centavo en el subtotal.
func TestComputeSale_RedondeoPorLinea(t *testing.T) {
	totals, err := pricing.ComputeSale([]pricing.LineInput{
		{Quantity: 1, UnitPrice: d("0.333")},
		{Quantity: 1, UnitPrice: d("0.333")},
	}, decimal.Zero)
	require.NoError(t, err)

	assert.True(t, totals.Lines[0].Total.Equal(d("0.33")))
	assert.True(t, totals.Subtotal.Equal(d("0.66")), "subtotal: %s", totals.Subtotal)
}

// Entradas inválidas: el cálculo rechaza sin tocar nada.
func TestComputeSale_EntradasInvalidas(t *testing.T) {
	cases := []struct {
		name     string
		items    []pricing.LineInput
		discount decimal.Decimal
	}{
		{"carrito vacío", nil, decimal.Zero},
		{"cantidad cero", []pricing.LineInput{{Quantity: 0, UnitPrice: d("1")}}, decimal.Zero},
		{"cantidad negativa", []pricing.LineInput{{Quantity: -2, UnitPrice: d("1")}}, decimal.Zero},
		{"precio negativo", []pricing.LineInput{{Quantity: 1, UnitPrice: d("-1")}}, decimal.Zero},
		{"descuento de línea > 100", []pricing.LineInput{{Quantity: 1, UnitPrice: d("1"), DiscountPercentage: d("101")}}, decimal.Zero},
		{"descuento de línea negativo", []pricing.LineInput{{Quantity: 1, UnitPrice: d("1"), DiscountPercentage: d("-5")}}, decimal.Zero},
		{"descuento de orden > 100", []pricing.LineInput{{Quantity: 1, UnitPrice: d("1")}}, d("150")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := pricing.ComputeSale(tc.items, tc.discount)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

// Descuento total (100%) deja base imponible cero.
func TestComputeSale_DescuentoTotal(t *testing.T) {
	totals, err := pricing.ComputeSale([]pricing.LineInput{
		{Quantity: 1, UnitPrice: d("50.00")},
	}, d("100"))
	require.NoError(t, err)

	assert.True(t, totals.Tax.IsZero())
	assert.True(t, totals.Total.IsZero())
}
