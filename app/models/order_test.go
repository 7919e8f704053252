package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusRankOrdering(t *testing.T) {
	chain := []OrderStatus{
		OrderStatusPending,
		OrderStatusWaitingVerification,
		OrderStatusPaid,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusCompleted,
	}
	for i := 1; i < len(chain); i++ {
		assert.Greater(t, chain[i].Rank(), chain[i-1].Rank(),
			"%s should outrank %s", chain[i], chain[i-1])
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	assert.True(t, OrderStatusCompleted.Terminal())
	assert.True(t, OrderStatusCancelled.Terminal())
	assert.False(t, OrderStatusShipped.Terminal())
	assert.False(t, OrderStatusPending.Terminal())
}

func TestOrderStatusActive(t *testing.T) {
	assert.False(t, OrderStatusPending.Active())
	assert.False(t, OrderStatusWaitingVerification.Active())
	assert.True(t, OrderStatusPaid.Active())
	assert.True(t, OrderStatusProcessing.Active())
	assert.True(t, OrderStatusShipped.Active())
	assert.True(t, OrderStatusCompleted.Active())
	assert.False(t, OrderStatusCancelled.Active())
}

func TestOrderStatusValid(t *testing.T) {
	assert.True(t, OrderStatusPending.Valid())
	assert.True(t, OrderStatusCancelled.Valid())
	assert.False(t, OrderStatus("refunded").Valid())
}

func TestNormalizeCouponCode(t *testing.T) {
	assert.Equal(t, "SAVE50", NormalizeCouponCode("  save50 "))
}

func TestValidPaymentMethod(t *testing.T) {
	assert.True(t, ValidPaymentMethod(PaymentMethodCOD))
	assert.True(t, ValidPaymentMethod(PaymentMethodBankTransfer))
	assert.False(t, ValidPaymentMethod("credit_card"))
}
