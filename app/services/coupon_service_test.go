package services

import (
	"context"
	"testing"
	"time"

	"github.com/nattawatj/go-storefront/app/apperrors"
	"github.com/nattawatj/go-storefront/app/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCouponTestService() (*CouponService, *fakeCouponRepo, *fakeOrderRepo) {
	couponRepo := newFakeCouponRepo()
	orderRepo := newFakeOrderRepo()
	svc := NewCouponService(couponRepo, orderRepo)
	svc.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }
	return svc, couponRepo, orderRepo
}

func TestCouponEvaluateNotFound(t *testing.T) {
	svc, _, _ := newCouponTestService()

	_, err := svc.Evaluate(context.Background(), "NOPE", decimal.NewFromInt(1000), "u1")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestCouponEvaluateNotStarted(t *testing.T) {
	svc, couponRepo, _ := newCouponTestService()

	starts := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, couponRepo.Create(context.Background(), &models.Coupon{
		Code:          "SOON",
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: decimal.NewFromInt(50),
		StartsAt:      &starts,
		IsActive:      true,
	}))

	_, err := svc.Evaluate(context.Background(), "SOON", decimal.NewFromInt(1000), "u1")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindBusinessRule))
	assert.Equal(t, "คูปองยังไม่ถึงเวลาเริ่มใช้งาน", apperrors.MessageOf(err))
}

func TestCouponEvaluateExpired(t *testing.T) {
	svc, couponRepo, _ := newCouponTestService()

	expired := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, couponRepo.Create(context.Background(), &models.Coupon{
		Code:          "OLD",
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: decimal.NewFromInt(50),
		ExpiresAt:     &expired,
		IsActive:      true,
	}))

	_, err := svc.Evaluate(context.Background(), "OLD", decimal.NewFromInt(1000), "u1")
	require.Error(t, err)
	assert.Equal(t, "คูปองหมดอายุแล้ว", apperrors.MessageOf(err))
}

func TestCouponEvaluateAlreadyUsedByUser(t *testing.T) {
	svc, couponRepo, orderRepo := newCouponTestService()

	require.NoError(t, couponRepo.Create(context.Background(), &models.Coupon{
		Code:          "ONCE",
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: decimal.NewFromInt(50),
		IsActive:      true,
	}))
	require.NoError(t, orderRepo.Create(context.Background(), &models.Order{
		UserID:     "u1",
		CouponCode: "ONCE",
		Status:     models.OrderStatusCompleted,
	}))

	_, err := svc.Evaluate(context.Background(), "ONCE", decimal.NewFromInt(1000), "u1")
	require.Error(t, err)
	assert.Equal(t, "คุณเคยใช้คูปองนี้ไปแล้ว", apperrors.MessageOf(err))
}

func TestCouponEvaluateCancelledOrderDoesNotCount(t *testing.T) {
	svc, couponRepo, orderRepo := newCouponTestService()

	require.NoError(t, couponRepo.Create(context.Background(), &models.Coupon{
		Code:          "RETRY",
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: decimal.NewFromInt(50),
		IsActive:      true,
	}))
	require.NoError(t, orderRepo.Create(context.Background(), &models.Order{
		UserID:     "u1",
		CouponCode: "RETRY",
		Status:     models.OrderStatusCancelled,
	}))

	result, err := svc.Evaluate(context.Background(), "RETRY", decimal.NewFromInt(1000), "u1")
	require.NoError(t, err)
	assert.True(t, result.Discount.Equal(decimal.NewFromInt(50)))
}

func TestCouponEvaluateUsageLimitReached(t *testing.T) {
	svc, couponRepo, _ := newCouponTestService()

	require.NoError(t, couponRepo.Create(context.Background(), &models.Coupon{
		Code:          "FULL",
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: decimal.NewFromInt(50),
		UsageLimit:    5,
		UsedCount:     5,
		IsActive:      true,
	}))

	_, err := svc.Evaluate(context.Background(), "FULL", decimal.NewFromInt(1000), "u1")
	require.Error(t, err)
	assert.Equal(t, "คูปองถูกใช้ครบจำนวนแล้ว", apperrors.MessageOf(err))
}

func TestCouponEvaluateBelowMinimum(t *testing.T) {
	svc, couponRepo, _ := newCouponTestService()

	require.NoError(t, couponRepo.Create(context.Background(), &models.Coupon{
		Code:          "BIGCART",
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: decimal.NewFromInt(50),
		MinOrderValue: decimal.NewFromInt(500),
		IsActive:      true,
	}))

	_, err := svc.Evaluate(context.Background(), "BIGCART", decimal.NewFromInt(499), "u1")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindBusinessRule))
}

func TestCouponEvaluatePercentageCapped(t *testing.T) {
	svc, couponRepo, _ := newCouponTestService()

	require.NoError(t, couponRepo.Create(context.Background(), &models.Coupon{
		Code:              "TWENTY",
		DiscountType:      models.DiscountTypePercentage,
		DiscountValue:     decimal.NewFromInt(20),
		MaxDiscountAmount: decimal.NewFromInt(100),
		IsActive:          true,
	}))

	// 20% of 1000 is 200, capped at 100.
	result, err := svc.Evaluate(context.Background(), "TWENTY", decimal.NewFromInt(1000), "u1")
	require.NoError(t, err)
	assert.True(t, result.Discount.Equal(decimal.NewFromInt(100)), "got %s", result.Discount)
}

func TestCouponEvaluatePercentageUncapped(t *testing.T) {
	svc, couponRepo, _ := newCouponTestService()

	require.NoError(t, couponRepo.Create(context.Background(), &models.Coupon{
		Code:          "TEN",
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: decimal.NewFromInt(10),
		IsActive:      true,
	}))

	result, err := svc.Evaluate(context.Background(), "ten", decimal.NewFromInt(250), "u1")
	require.NoError(t, err)
	assert.True(t, result.Discount.Equal(decimal.NewFromFloat(25)), "got %s", result.Discount)
}

func TestCouponEvaluateNeverConsumesUsage(t *testing.T) {
	svc, couponRepo, _ := newCouponTestService()

	coupon := &models.Coupon{
		Code:          "PREVIEW",
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: decimal.NewFromInt(50),
		UsageLimit:    10,
		IsActive:      true,
	}
	require.NoError(t, couponRepo.Create(context.Background(), coupon))

	for i := 0; i < 3; i++ {
		_, err := svc.Evaluate(context.Background(), "PREVIEW", decimal.NewFromInt(1000), "u1")
		require.NoError(t, err)
	}
	assert.Equal(t, 0, coupon.UsedCount)
}
