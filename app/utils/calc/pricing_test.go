package calc

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestShippingFee(t *testing.T) {
	assert.True(t, ShippingFee(decimal.NewFromInt(4000)).Equal(decimal.NewFromInt(50)))
	assert.True(t, ShippingFee(decimal.NewFromInt(4999)).Equal(decimal.NewFromInt(50)))
	assert.True(t, ShippingFee(decimal.NewFromInt(5000)).IsZero())
	assert.True(t, ShippingFee(decimal.NewFromInt(6000)).IsZero())
}

func TestPercentOf(t *testing.T) {
	got := PercentOf(decimal.NewFromInt(1000), decimal.NewFromInt(20))
	assert.True(t, got.Equal(decimal.NewFromInt(200)), "got %s", got)
}

func TestBuildBreakdown(t *testing.T) {
	b := BuildBreakdown(decimal.NewFromInt(1000), decimal.NewFromInt(100))

	assert.True(t, b.Subtotal.Equal(decimal.NewFromInt(1000)))
	assert.True(t, b.Discount.Equal(decimal.NewFromInt(100)))
	assert.True(t, b.ShippingFee.Equal(decimal.NewFromInt(50)))
	// total = 1000 - 100 + 50 = 950; tax is carved out of the total.
	assert.True(t, b.TotalPrice.Equal(decimal.NewFromInt(950)))
	assert.True(t, b.TaxPrice.Equal(decimal.NewFromFloat(66.50)), "got %s", b.TaxPrice)
	assert.True(t, b.NetPrice.Equal(decimal.NewFromFloat(883.50)))
	assert.True(t, b.NetPrice.Add(b.TaxPrice).Equal(b.TotalPrice))
}

func TestBuildBreakdownFreeShipping(t *testing.T) {
	b := BuildBreakdown(decimal.NewFromInt(6000), decimal.Zero)

	assert.True(t, b.ShippingFee.IsZero())
	assert.True(t, b.TotalPrice.Equal(decimal.NewFromInt(6000)))
	assert.True(t, b.TaxPrice.Equal(decimal.NewFromInt(420)))
}

func TestBuildBreakdownFloorsAtZero(t *testing.T) {
	b := BuildBreakdown(decimal.NewFromInt(100), decimal.NewFromInt(500))

	assert.True(t, b.TotalPrice.IsZero())
	assert.True(t, b.TaxPrice.IsZero())
	assert.True(t, b.NetPrice.IsZero())
}

func TestBuildBreakdownRounding(t *testing.T) {
	b := BuildBreakdown(decimal.NewFromFloat(99.99), decimal.Zero)

	// total = 149.99, tax = 10.4993 rounded to 10.50
	assert.True(t, b.TotalPrice.Equal(decimal.NewFromFloat(149.99)))
	assert.True(t, b.TaxPrice.Equal(decimal.NewFromFloat(10.50)), "got %s", b.TaxPrice)
	assert.True(t, b.NetPrice.Equal(decimal.NewFromFloat(139.49)))
}
