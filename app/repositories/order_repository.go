package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/nattawatj/go-storefront/app/models"
	"gorm.io/gorm"
)

type OrderFilter struct {
	UserID string
	Status models.OrderStatus
	Limit  int
	Offset int
}

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	Update(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	GetPaginated(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error)
	// UpdateGuarded applies updates only while the order still holds the
	// expected status. Returns the number of rows changed so callers can
	// detect a lost race.
	UpdateGuarded(ctx context.Context, orderID string, expected models.OrderStatus, updates map[string]interface{}) (int64, error)
	FindStalePendingBankTransfers(ctx context.Context, olderThan time.Time) ([]models.Order, error)
	ExistsByUserAndCouponCode(ctx context.Context, userID, couponCode string) (bool, error)
	CountItemsByProductID(ctx context.Context, productID string) (int64, error)
}

type gormOrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &gormOrderRepository{db: db}
}

// Create persists the order together with its item snapshots.
func (r *gormOrderRepository) Create(ctx context.Context, order *models.Order) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Create(order).Error
}

func (r *gormOrderRepository) Update(ctx context.Context, order *models.Order) error {
	order.UpdatedAt = time.Now()
	return dbFrom(ctx, r.db).WithContext(ctx).Save(order).Error
}

func (r *gormOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *gormOrderRepository) GetPaginated(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error) {
	base := dbFrom(ctx, r.db).WithContext(ctx).Model(&models.Order{})
	if filter.UserID != "" {
		base = base.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		base = base.Where("status = ?", filter.Status)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err := base.
		Preload("Items").
		Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&orders).Error
	return orders, total, err
}

func (r *gormOrderRepository) UpdateGuarded(ctx context.Context, orderID string, expected models.OrderStatus, updates map[string]interface{}) (int64, error) {
	updates["updated_at"] = time.Now()
	res := dbFrom(ctx, r.db).WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, expected).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *gormOrderRepository) FindStalePendingBankTransfers(ctx context.Context, olderThan time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Where("status = ? AND payment_method = ? AND created_at < ?",
			models.OrderStatusPending, models.PaymentMethodBankTransfer, olderThan).
		Find(&orders).Error
	return orders, err
}

// ExistsByUserAndCouponCode reports whether the user already has a
// non-cancelled order carrying the coupon code. One redemption per user,
// lifetime.
func (r *gormOrderRepository) ExistsByUserAndCouponCode(ctx context.Context, userID, couponCode string) (bool, error) {
	var count int64
	err := dbFrom(ctx, r.db).WithContext(ctx).Model(&models.Order{}).
		Where("user_id = ? AND coupon_code = ? AND status <> ?",
			userID, couponCode, models.OrderStatusCancelled).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *gormOrderRepository) CountItemsByProductID(ctx context.Context, productID string) (int64, error) {
	var count int64
	err := dbFrom(ctx, r.db).WithContext(ctx).Model(&models.OrderItem{}).
		Where("product_id = ?", productID).Count(&count).Error
	return count, err
}
