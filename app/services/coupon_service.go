package services

import (
	"context"
	"fmt"
	"time"

	"github.com/nattawatj/go-storefront/app/apperrors"
	"github.com/nattawatj/go-storefront/app/models"
	"github.com/nattawatj/go-storefront/app/repositories"
	"github.com/nattawatj/go-storefront/app/utils/calc"
	"github.com/nattawatj/go-storefront/app/utils/format"
	"github.com/shopspring/decimal"
)

type CouponResult struct {
	Coupon   *models.Coupon  `json:"coupon"`
	Discount decimal.Decimal `json:"discount"`
}

type CouponService struct {
	couponRepo repositories.CouponRepository
	orderRepo  repositories.OrderRepository
	now        func() time.Time
}

func NewCouponService(couponRepo repositories.CouponRepository, orderRepo repositories.OrderRepository) *CouponService {
	return &CouponService{
		couponRepo: couponRepo,
		orderRepo:  orderRepo,
		now:        time.Now,
	}
}

// Evaluate runs the full redemption rule chain and computes the discount
// for a subtotal. It never mutates used_count; consumption happens in
// the order workflow, atomically with order persistence.
func (s *CouponService) Evaluate(ctx context.Context, code string, subtotal decimal.Decimal, userID string) (*CouponResult, error) {
	coupon, err := s.couponRepo.FindActiveByCode(ctx, code)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to look up coupon: %w", err))
	}
	if coupon == nil {
		return nil, apperrors.NotFound("ไม่พบคูปองนี้")
	}

	now := s.now()
	if coupon.StartsAt != nil && now.Before(*coupon.StartsAt) {
		return nil, apperrors.BusinessRule("คูปองยังไม่ถึงเวลาเริ่มใช้งาน")
	}
	if coupon.ExpiresAt != nil && now.After(*coupon.ExpiresAt) {
		return nil, apperrors.BusinessRule("คูปองหมดอายุแล้ว")
	}

	alreadyUsed, err := s.orderRepo.ExistsByUserAndCouponCode(ctx, userID, coupon.Code)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to check coupon history: %w", err))
	}
	if alreadyUsed {
		return nil, apperrors.BusinessRule("คุณเคยใช้คูปองนี้ไปแล้ว")
	}

	if coupon.UsageLimit > 0 && coupon.UsedCount >= coupon.UsageLimit {
		return nil, apperrors.BusinessRule("คูปองถูกใช้ครบจำนวนแล้ว")
	}

	if coupon.MinOrderValue.IsPositive() && subtotal.LessThan(coupon.MinOrderValue) {
		return nil, apperrors.BusinessRule(
			fmt.Sprintf("ยอดสั่งซื้อขั้นต่ำสำหรับคูปองนี้คือ %s", format.Baht(coupon.MinOrderValue)))
	}

	return &CouponResult{Coupon: coupon, Discount: s.discountFor(coupon, subtotal)}, nil
}

func (s *CouponService) discountFor(coupon *models.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	if coupon.DiscountType == models.DiscountTypeFixed {
		return coupon.DiscountValue.Round(2)
	}

	discount := calc.PercentOf(subtotal, coupon.DiscountValue)
	if coupon.MaxDiscountAmount.IsPositive() && discount.GreaterThan(coupon.MaxDiscountAmount) {
		discount = coupon.MaxDiscountAmount
	}
	return discount.Round(2)
}
