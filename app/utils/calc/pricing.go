package calc

import "github.com/shopspring/decimal"

var (
	// TaxRate is applied to the discounted, shipping-inclusive total.
	// The tax is carved out of the total, not added on top.
	TaxRate = decimal.NewFromFloat(0.07)

	// Flat shipping fee below the free-shipping threshold.
	ShippingFlatFee     = decimal.NewFromInt(50)
	FreeShippingMinimum = decimal.NewFromInt(5000)

	oneHundred = decimal.NewFromInt(100)
)

// ShippingFee is a flat 50 for subtotals under the free-shipping
// minimum, zero otherwise.
func ShippingFee(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.LessThan(FreeShippingMinimum) {
		return ShippingFlatFee
	}
	return decimal.Zero
}

// PercentOf computes percent% of base.
func PercentOf(base, percent decimal.Decimal) decimal.Decimal {
	return base.Mul(percent).Div(oneHundred)
}

// PriceBreakdown is the pricing block frozen onto an order at creation.
type PriceBreakdown struct {
	Subtotal    decimal.Decimal
	Discount    decimal.Decimal
	ShippingFee decimal.Decimal
	TaxPrice    decimal.Decimal
	TotalPrice  decimal.Decimal
	NetPrice    decimal.Decimal
}

// BuildBreakdown derives the full pricing block from a subtotal and a
// discount amount. total = max(0, subtotal − discount + shipping),
// tax = total × rate, net = total − tax. Money is rounded to 2 decimals.
func BuildBreakdown(subtotal, discount decimal.Decimal) PriceBreakdown {
	fee := ShippingFee(subtotal)

	total := subtotal.Sub(discount).Add(fee)
	if total.IsNegative() {
		total = decimal.Zero
	}
	total = total.Round(2)

	tax := total.Mul(TaxRate).Round(2)

	return PriceBreakdown{
		Subtotal:    subtotal.Round(2),
		Discount:    discount.Round(2),
		ShippingFee: fee.Round(2),
		TaxPrice:    tax,
		TotalPrice:  total,
		NetPrice:    total.Sub(tax),
	}
}
