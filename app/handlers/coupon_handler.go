package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/nattawatj/go-storefront/app/apperrors"
	"github.com/nattawatj/go-storefront/app/middlewares"
	"github.com/nattawatj/go-storefront/app/models"
	"github.com/nattawatj/go-storefront/app/repositories"
	"github.com/nattawatj/go-storefront/app/services"
	"github.com/shopspring/decimal"
	"github.com/unrolled/render"
)

type CouponHandler struct {
	render     *render.Render
	couponRepo repositories.CouponRepository
	coupons    *services.CouponService
	carts      *services.CartService
	validator  *validator.Validate
}

func NewCouponHandler(
	rnd *render.Render,
	couponRepo repositories.CouponRepository,
	coupons *services.CouponService,
	carts *services.CartService,
	validate *validator.Validate,
) *CouponHandler {
	return &CouponHandler{
		render:     rnd,
		couponRepo: couponRepo,
		coupons:    coupons,
		carts:      carts,
		validator:  validate,
	}
}

type CouponCheckForm struct {
	Code string `json:"code" validate:"required"`
}

// Check previews a coupon against the caller's current cart subtotal.
// It never consumes a redemption; that only happens at checkout.
func (h *CouponHandler) Check(w http.ResponseWriter, r *http.Request) {
	user := middlewares.CurrentUser(r)

	var form CouponCheckForm
	if err := decodeJSON(r, &form); err != nil {
		respondError(h.render, w, err)
		return
	}
	if err := h.validator.Struct(form); err != nil {
		respondError(h.render, w, apperrors.Validation("กรุณาระบุรหัสคูปอง"))
		return
	}

	summary, err := h.carts.GetUserCart(r.Context(), user.ID)
	if err != nil {
		respondError(h.render, w, err)
		return
	}
	if summary.Cart == nil {
		respondError(h.render, w, apperrors.BusinessRule("ตะกร้าสินค้าว่างเปล่า"))
		return
	}

	result, err := h.coupons.Evaluate(r.Context(), form.Code, summary.TotalPrice, user.ID)
	if err != nil {
		respondError(h.render, w, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, result)
}

type CouponForm struct {
	Code              string          `json:"code" validate:"required,max=64"`
	DiscountType      string          `json:"discount_type" validate:"required"`
	DiscountValue     decimal.Decimal `json:"discount_value"`
	MaxDiscountAmount decimal.Decimal `json:"max_discount_amount"`
	MinOrderValue     decimal.Decimal `json:"min_order_value"`
	UsageLimit        int             `json:"usage_limit" validate:"min=0"`
	StartsAt          *time.Time      `json:"starts_at"`
	ExpiresAt         *time.Time      `json:"expires_at"`
	IsActive          *bool           `json:"is_active"`
}

func (h *CouponHandler) validateForm(form CouponForm) error {
	if err := h.validator.Struct(form); err != nil {
		return apperrors.Validation("ข้อมูลคูปองไม่ถูกต้อง กรุณาตรวจสอบอีกครั้ง")
	}
	if !models.ValidDiscountType(form.DiscountType) {
		return apperrors.Validation("ประเภทส่วนลดไม่ถูกต้อง")
	}
	if !form.DiscountValue.IsPositive() {
		return apperrors.Validation("มูลค่าส่วนลดต้องมากกว่า 0")
	}
	if form.DiscountType == models.DiscountTypePercentage && form.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
		return apperrors.Validation("ส่วนลดแบบเปอร์เซ็นต์ต้องไม่เกิน 100")
	}
	if form.MaxDiscountAmount.IsNegative() || form.MinOrderValue.IsNegative() {
		return apperrors.Validation("มูลค่าคูปองต้องไม่ติดลบ")
	}
	if form.StartsAt != nil && form.ExpiresAt != nil && form.ExpiresAt.Before(*form.StartsAt) {
		return apperrors.Validation("วันหมดอายุต้องอยู่หลังวันเริ่มใช้งาน")
	}
	return nil
}

func (h *CouponHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	coupons, total, err := h.couponRepo.GetPaginated(r.Context(), limit, offset)
	if err != nil {
		respondError(h.render, w, apperrors.Internal(fmt.Errorf("failed to list coupons: %w", err)))
		return
	}
	_ = h.render.JSON(w, http.StatusOK, pagedResponse{Data: coupons, Total: total})
}

func (h *CouponHandler) Create(w http.ResponseWriter, r *http.Request) {
	var form CouponForm
	if err := decodeJSON(r, &form); err != nil {
		respondError(h.render, w, err)
		return
	}
	if err := h.validateForm(form); err != nil {
		respondError(h.render, w, err)
		return
	}

	coupon := &models.Coupon{
		Code:              form.Code,
		DiscountType:      form.DiscountType,
		DiscountValue:     form.DiscountValue,
		MaxDiscountAmount: form.MaxDiscountAmount,
		MinOrderValue:     form.MinOrderValue,
		UsageLimit:        form.UsageLimit,
		StartsAt:          form.StartsAt,
		ExpiresAt:         form.ExpiresAt,
		IsActive:          true,
	}
	if form.IsActive != nil {
		coupon.IsActive = *form.IsActive
	}

	if err := h.couponRepo.Create(r.Context(), coupon); err != nil {
		respondError(h.render, w, apperrors.Internal(fmt.Errorf("failed to create coupon: %w", err)))
		return
	}
	_ = h.render.JSON(w, http.StatusCreated, coupon)
}

func (h *CouponHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	coupon, err := h.couponRepo.GetByID(r.Context(), id)
	if err != nil {
		respondError(h.render, w, apperrors.Internal(fmt.Errorf("failed to load coupon: %w", err)))
		return
	}
	if coupon == nil {
		respondError(h.render, w, apperrors.NotFound("ไม่พบคูปองนี้"))
		return
	}

	var form CouponForm
	if err := decodeJSON(r, &form); err != nil {
		respondError(h.render, w, err)
		return
	}
	if err := h.validateForm(form); err != nil {
		respondError(h.render, w, err)
		return
	}

	coupon.Code = form.Code
	coupon.DiscountType = form.DiscountType
	coupon.DiscountValue = form.DiscountValue
	coupon.MaxDiscountAmount = form.MaxDiscountAmount
	coupon.MinOrderValue = form.MinOrderValue
	coupon.UsageLimit = form.UsageLimit
	coupon.StartsAt = form.StartsAt
	coupon.ExpiresAt = form.ExpiresAt
	if form.IsActive != nil {
		coupon.IsActive = *form.IsActive
	}

	if err := h.couponRepo.Update(r.Context(), coupon); err != nil {
		respondError(h.render, w, apperrors.Internal(fmt.Errorf("failed to update coupon: %w", err)))
		return
	}
	_ = h.render.JSON(w, http.StatusOK, coupon)
}

func (h *CouponHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.couponRepo.Delete(r.Context(), id); err != nil {
		respondError(h.render, w, apperrors.Internal(fmt.Errorf("failed to delete coupon: %w", err)))
		return
	}
	_ = h.render.JSON(w, http.StatusOK, map[string]string{"message": "ลบคูปองเรียบร้อยแล้ว"})
}
