package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nattawatj/go-storefront/app/apperrors"
	"github.com/nattawatj/go-storefront/app/models"
	"github.com/nattawatj/go-storefront/app/repositories"
	"github.com/nattawatj/go-storefront/app/utils/calc"
	"github.com/nattawatj/go-storefront/app/utils/metrics"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CreateOrderInput struct {
	PaymentMethod string `json:"payment_method" validate:"required"`
	AddressID     string `json:"address_id" validate:"required"`
	CouponCode    string `json:"coupon_code"`
}

type ListOrdersInput struct {
	Status models.OrderStatus
	Limit  int
	Offset int
}

// OrderService owns the order lifecycle: checkout, status transitions,
// stock reservation and cancellation. All multi-step writes run inside
// one transaction; stock and coupon counters only move through guarded
// single-statement updates.
type OrderService struct {
	tx          repositories.Transactor
	userRepo    repositories.UserRepositoryImpl
	addressRepo repositories.AddressRepository
	cartRepo    repositories.CartRepositoryImpl
	productRepo repositories.ProductRepositoryImpl
	orderRepo   repositories.OrderRepository
	couponRepo  repositories.CouponRepository
	coupons     *CouponService
	now         func() time.Time
}

func NewOrderService(
	tx repositories.Transactor,
	userRepo repositories.UserRepositoryImpl,
	addressRepo repositories.AddressRepository,
	cartRepo repositories.CartRepositoryImpl,
	productRepo repositories.ProductRepositoryImpl,
	orderRepo repositories.OrderRepository,
	couponRepo repositories.CouponRepository,
	coupons *CouponService,
) *OrderService {
	return &OrderService{
		tx:          tx,
		userRepo:    userRepo,
		addressRepo: addressRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		couponRepo:  couponRepo,
		coupons:     coupons,
		now:         time.Now,
	}
}

// Create converts the user's cart into an order. Prices, names and
// images are frozen onto the order lines; the cart is gone once the
// transaction commits. COD orders reserve stock immediately and start
// in processing; bank-transfer orders start in pending with stock only
// checked, not reserved.
func (s *OrderService) Create(ctx context.Context, userID string, in CreateOrderInput) (*models.Order, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to load user: %w", err))
	}
	if user == nil {
		return nil, apperrors.NotFound("ไม่พบผู้ใช้งาน")
	}
	if user.Role == models.RoleAdmin {
		return nil, apperrors.BusinessRule("ผู้ดูแลระบบไม่สามารถสั่งซื้อสินค้าได้")
	}

	if !models.ValidPaymentMethod(in.PaymentMethod) {
		return nil, apperrors.Validation("วิธีการชำระเงินไม่ถูกต้อง")
	}

	address, err := s.addressRepo.FindByID(ctx, in.AddressID)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to load address: %w", err))
	}
	if address == nil || address.UserID != userID {
		return nil, apperrors.NotFound("ไม่พบที่อยู่จัดส่ง")
	}

	var order *models.Order
	couponUsed := false

	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		cart, err := s.cartRepo.GetByUserID(txCtx, userID)
		if err != nil {
			return apperrors.Internal(fmt.Errorf("failed to load cart: %w", err))
		}
		if cart == nil || len(cart.CartItems) == 0 {
			return apperrors.BusinessRule("ตะกร้าสินค้าว่างเปล่า")
		}

		subtotal := decimal.Zero
		items := make([]models.OrderItem, 0, len(cart.CartItems))
		for i := range cart.CartItems {
			line := &cart.CartItems[i]

			product, err := s.productRepo.GetByID(txCtx, line.ProductID)
			if err != nil {
				return apperrors.Internal(fmt.Errorf("failed to load product %s: %w", line.ProductID, err))
			}
			if product == nil {
				return apperrors.NotFound("ไม่พบสินค้าในตะกร้า")
			}
			if product.Stock < line.Qty {
				return apperrors.BusinessRule(fmt.Sprintf("สินค้า '%s' ในสต็อกไม่เพียงพอ", product.Name))
			}

			price := product.EffectivePrice()
			subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(line.Qty))))
			items = append(items, models.OrderItem{
				ProductID:    product.ID,
				ProductName:  product.Name,
				ProductImage: product.Image,
				Price:        price,
				Qty:          line.Qty,
			})
		}

		discount := decimal.Zero
		var couponID *string
		couponCode := ""
		if in.CouponCode != "" {
			result, err := s.coupons.Evaluate(txCtx, in.CouponCode, subtotal, userID)
			if err != nil {
				return err
			}
			if err := s.couponRepo.ConsumeUsage(txCtx, result.Coupon.ID, result.Coupon.UsageLimit); err != nil {
				if errors.Is(err, repositories.ErrCouponExhausted) {
					return apperrors.BusinessRule("คูปองถูกใช้ครบจำนวนแล้ว")
				}
				return apperrors.Internal(fmt.Errorf("failed to consume coupon: %w", err))
			}
			discount = result.Discount
			couponID = &result.Coupon.ID
			couponCode = result.Coupon.Code
			couponUsed = true
		}

		breakdown := calc.BuildBreakdown(subtotal, discount)

		status := models.OrderStatusPending
		reserved := false
		if in.PaymentMethod == models.PaymentMethodCOD {
			if err := s.reserveItems(txCtx, items); err != nil {
				return err
			}
			status = models.OrderStatusProcessing
			reserved = true
		}

		order = &models.Order{
			Code:   s.newOrderCode(),
			UserID: userID,
			Items:  items,

			CouponID:   couponID,
			CouponCode: couponCode,

			Subtotal:    breakdown.Subtotal,
			Discount:    breakdown.Discount,
			ShippingFee: breakdown.ShippingFee,
			TaxPrice:    breakdown.TaxPrice,
			TotalPrice:  breakdown.TotalPrice,
			NetPrice:    breakdown.NetPrice,

			Status:        status,
			StockReserved: reserved,
			PaymentMethod: in.PaymentMethod,

			ShippingName:     address.Name,
			ShippingPhone:    address.Phone,
			ShippingAddress1: address.Address1,
			ShippingAddress2: address.Address2,
			ShippingDistrict: address.District,
			ShippingProvince: address.Province,
			ShippingPostCode: address.PostCode,
		}

		if err := s.orderRepo.Create(txCtx, order); err != nil {
			return apperrors.Internal(fmt.Errorf("failed to create order: %w", err))
		}

		if err := s.cartRepo.Delete(txCtx, cart.ID); err != nil {
			return apperrors.Internal(fmt.Errorf("failed to delete converted cart: %w", err))
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.OrdersCreatedTotal.Inc()
	if couponUsed {
		metrics.CouponRedemptionsTotal.Inc()
	}
	zap.L().Info("order created",
		zap.String("order_code", order.Code),
		zap.String("user_id", userID),
		zap.String("status", string(order.Status)),
		zap.String("total", order.TotalPrice.String()))

	return order, nil
}

// Get returns an order, visible only to its owner or to staff.
func (s *OrderService) Get(ctx context.Context, actor *models.User, orderID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to load order: %w", err))
	}
	if order == nil {
		return nil, apperrors.NotFound("ไม่พบคำสั่งซื้อ")
	}
	if !actor.IsStaff() && order.UserID != actor.ID {
		return nil, apperrors.Unauthorized("คุณไม่มีสิทธิ์เข้าถึงคำสั่งซื้อนี้")
	}
	return order, nil
}

// List returns the actor's own orders, or every order for staff.
func (s *OrderService) List(ctx context.Context, actor *models.User, in ListOrdersInput) ([]models.Order, int64, error) {
	filter := repositories.OrderFilter{
		Status: in.Status,
		Limit:  in.Limit,
		Offset: in.Offset,
	}
	if !actor.IsStaff() {
		filter.UserID = actor.ID
	}

	orders, total, err := s.orderRepo.GetPaginated(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.Internal(fmt.Errorf("failed to list orders: %w", err))
	}
	return orders, total, nil
}

// MarkPaid attaches a payment proof to a pending bank-transfer order and
// moves it to waiting_verification. A newer proof replaces the old one.
func (s *OrderService) MarkPaid(ctx context.Context, actor *models.User, orderID, proofRef string) (*models.Order, error) {
	order, err := s.Get(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != actor.ID {
		return nil, apperrors.Unauthorized("คุณไม่มีสิทธิ์เข้าถึงคำสั่งซื้อนี้")
	}

	if order.PaymentMethod != models.PaymentMethodBankTransfer {
		return nil, apperrors.BusinessRule("คำสั่งซื้อนี้ไม่ได้ชำระผ่านการโอนเงิน")
	}
	if order.Status != models.OrderStatusPending {
		return nil, apperrors.BusinessRule("ไม่สามารถแนบหลักฐานการชำระเงินในสถานะนี้ได้")
	}
	if proofRef == "" {
		return nil, apperrors.Validation("กรุณาแนบหลักฐานการชำระเงิน")
	}

	if order.PaymentProof != "" {
		// Asset removal is the upload collaborator's job; we only drop
		// the reference.
		zap.L().Info("replacing payment proof",
			zap.String("order_id", order.ID),
			zap.String("old_proof", order.PaymentProof))
	}

	rows, err := s.orderRepo.UpdateGuarded(ctx, order.ID, models.OrderStatusPending, map[string]interface{}{
		"status":        models.OrderStatusWaitingVerification,
		"payment_proof": proofRef,
	})
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to attach payment proof: %w", err))
	}
	if rows == 0 {
		return nil, apperrors.BusinessRule("สถานะคำสั่งซื้อถูกเปลี่ยนแปลงแล้ว กรุณาลองใหม่")
	}

	return s.reload(ctx, order.ID)
}

// UpdateStatus moves an order forward along the lifecycle. The first
// move into an active state is the reservation point for non-COD
// orders: every line's stock is decremented, and any shortage aborts
// the whole transition. Re-submitting the current status is a no-op.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, target models.OrderStatus) (*models.Order, error) {
	if !target.Valid() || target == models.OrderStatusCancelled {
		return nil, apperrors.Validation("สถานะคำสั่งซื้อไม่ถูกต้อง")
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to load order: %w", err))
	}
	if order == nil {
		return nil, apperrors.NotFound("ไม่พบคำสั่งซื้อ")
	}

	if target == order.Status {
		// Idempotent: no stock movement, no writes.
		return order, nil
	}
	if order.Status.Terminal() {
		return nil, apperrors.BusinessRule("คำสั่งซื้อนี้สิ้นสุดแล้ว ไม่สามารถเปลี่ยนสถานะได้")
	}
	if target.Rank() <= order.Status.Rank() {
		return nil, apperrors.BusinessRule("ไม่สามารถย้อนสถานะคำสั่งซื้อได้")
	}

	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		updates := map[string]interface{}{"status": target}

		if !order.StockReserved && target.Active() {
			if err := s.reserveItems(txCtx, order.Items); err != nil {
				return err
			}
			updates["stock_reserved"] = true
		}

		switch target {
		case models.OrderStatusShipped:
			updates["delivered"] = false
			updates["delivered_at"] = nil
		case models.OrderStatusCompleted:
			updates["delivered"] = true
			updates["delivered_at"] = s.now()
			if order.PaymentMethod == models.PaymentMethodCOD && !order.PaymentPaid {
				updates["payment_paid"] = true
				updates["paid_at"] = s.now()
			}
		}

		rows, err := s.orderRepo.UpdateGuarded(txCtx, order.ID, order.Status, updates)
		if err != nil {
			return apperrors.Internal(fmt.Errorf("failed to update order status: %w", err))
		}
		if rows == 0 {
			return apperrors.BusinessRule("สถานะคำสั่งซื้อถูกเปลี่ยนแปลงแล้ว กรุณาลองใหม่")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, order.ID)
}

// Cancel ends an order. Customers may only cancel their own pending
// orders; staff may cancel any non-terminal order. Reserved stock is
// restored line by line and a consumed coupon gets its redemption back.
func (s *OrderService) Cancel(ctx context.Context, actor *models.User, orderID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to load order: %w", err))
	}
	if order == nil {
		return nil, apperrors.NotFound("ไม่พบคำสั่งซื้อ")
	}

	if !actor.IsStaff() {
		if order.UserID != actor.ID {
			return nil, apperrors.Unauthorized("คุณไม่มีสิทธิ์เข้าถึงคำสั่งซื้อนี้")
		}
		if order.Status != models.OrderStatusPending {
			return nil, apperrors.BusinessRule("ลูกค้าสามารถยกเลิกได้เฉพาะคำสั่งซื้อที่รอดำเนินการเท่านั้น")
		}
	}
	if order.Status.Terminal() {
		return nil, apperrors.BusinessRule("คำสั่งซื้อนี้สิ้นสุดแล้ว ไม่สามารถยกเลิกได้")
	}

	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		updates := map[string]interface{}{"status": models.OrderStatusCancelled}
		if order.StockReserved {
			updates["stock_reserved"] = false
		}
		if actor.IsStaff() && order.PaymentPaid {
			updates["refunded"] = true
		}

		rows, err := s.orderRepo.UpdateGuarded(txCtx, order.ID, order.Status, updates)
		if err != nil {
			return apperrors.Internal(fmt.Errorf("failed to cancel order: %w", err))
		}
		if rows == 0 {
			return apperrors.BusinessRule("สถานะคำสั่งซื้อถูกเปลี่ยนแปลงแล้ว กรุณาลองใหม่")
		}

		if order.StockReserved {
			for _, item := range order.Items {
				if err := s.productRepo.RestoreStock(txCtx, item.ProductID, item.Qty); err != nil {
					return apperrors.Internal(fmt.Errorf("failed to restore stock for %s: %w", item.ProductID, err))
				}
			}
		}

		if order.CouponID != nil {
			if err := s.couponRepo.ReleaseUsage(txCtx, *order.CouponID); err != nil {
				return apperrors.Internal(fmt.Errorf("failed to release coupon usage: %w", err))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	by := "customer"
	if actor.IsStaff() {
		by = "admin"
	}
	metrics.OrdersCancelledTotal.WithLabelValues(by).Inc()
	zap.L().Info("order cancelled",
		zap.String("order_code", order.Code),
		zap.String("by", by))

	return s.reload(ctx, order.ID)
}

// CancelExpired is the sweep's path for a stale pending bank-transfer
// order. Stock was never reserved in pending, so only the coupon counter
// moves. Losing the status race to a manual transition is not an error.
func (s *OrderService) CancelExpired(ctx context.Context, orderID string) (bool, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return false, fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil || order.Status != models.OrderStatusPending ||
		order.PaymentMethod != models.PaymentMethodBankTransfer {
		return false, nil
	}

	cancelled := false
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		rows, err := s.orderRepo.UpdateGuarded(txCtx, order.ID, models.OrderStatusPending, map[string]interface{}{
			"status": models.OrderStatusCancelled,
		})
		if err != nil {
			return fmt.Errorf("failed to cancel expired order: %w", err)
		}
		if rows == 0 {
			return nil
		}
		cancelled = true

		if order.CouponID != nil {
			if err := s.couponRepo.ReleaseUsage(txCtx, *order.CouponID); err != nil {
				return fmt.Errorf("failed to release coupon usage: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	if cancelled {
		metrics.OrdersExpiredTotal.Inc()
	}
	return cancelled, nil
}

// ConfirmReceived lets the owning customer close out a shipped order.
func (s *OrderService) ConfirmReceived(ctx context.Context, actor *models.User, orderID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to load order: %w", err))
	}
	if order == nil {
		return nil, apperrors.NotFound("ไม่พบคำสั่งซื้อ")
	}
	if order.UserID != actor.ID {
		return nil, apperrors.Unauthorized("คุณไม่มีสิทธิ์เข้าถึงคำสั่งซื้อนี้")
	}
	if order.Status != models.OrderStatusShipped {
		return nil, apperrors.BusinessRule("ยืนยันรับสินค้าได้เฉพาะคำสั่งซื้อที่จัดส่งแล้วเท่านั้น")
	}

	updates := map[string]interface{}{
		"status":       models.OrderStatusCompleted,
		"delivered":    true,
		"delivered_at": s.now(),
	}
	if order.PaymentMethod == models.PaymentMethodCOD && !order.PaymentPaid {
		updates["payment_paid"] = true
		updates["paid_at"] = s.now()
	}

	rows, err := s.orderRepo.UpdateGuarded(ctx, order.ID, models.OrderStatusShipped, updates)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to confirm delivery: %w", err))
	}
	if rows == 0 {
		return nil, apperrors.BusinessRule("สถานะคำสั่งซื้อถูกเปลี่ยนแปลงแล้ว กรุณาลองใหม่")
	}

	return s.reload(ctx, order.ID)
}

func (s *OrderService) reserveItems(ctx context.Context, items []models.OrderItem) error {
	for _, item := range items {
		if err := s.productRepo.ReserveStock(ctx, item.ProductID, item.Qty); err != nil {
			if errors.Is(err, repositories.ErrStockConflict) {
				metrics.StockReservationsFailedTotal.Inc()
				return apperrors.BusinessRule(fmt.Sprintf("สินค้า '%s' หมดสต็อก", item.ProductName))
			}
			return apperrors.Internal(fmt.Errorf("failed to reserve stock for %s: %w", item.ProductID, err))
		}
	}
	return nil
}

func (s *OrderService) reload(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to reload order: %w", err))
	}
	if order == nil {
		return nil, apperrors.NotFound("ไม่พบคำสั่งซื้อ")
	}
	return order, nil
}

func (s *OrderService) newOrderCode() string {
	return fmt.Sprintf("INV-%s-%s", s.now().Format("20060102"), uuid.New().String()[:8])
}
