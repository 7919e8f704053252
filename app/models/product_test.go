package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestApplyDiscount(t *testing.T) {
	p := Product{
		OriginalPrice:  decimal.NewFromInt(100),
		DiscountAmount: decimal.NewFromInt(20),
	}
	p.ApplyDiscount()
	assert.True(t, p.SellingPrice.Equal(decimal.NewFromInt(80)))
}

func TestApplyDiscountLargerThanPrice(t *testing.T) {
	p := Product{
		OriginalPrice:  decimal.NewFromInt(100),
		DiscountAmount: decimal.NewFromInt(150),
	}
	p.ApplyDiscount()
	// An oversized discount leaves the product at full price.
	assert.True(t, p.SellingPrice.Equal(decimal.NewFromInt(100)))
}

func TestEffectivePriceFallsBackToOriginal(t *testing.T) {
	p := Product{OriginalPrice: decimal.NewFromInt(250)}
	assert.True(t, p.EffectivePrice().Equal(decimal.NewFromInt(250)))

	p.ApplyDiscount()
	assert.True(t, p.EffectivePrice().Equal(decimal.NewFromInt(250)))
}
