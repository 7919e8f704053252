package repositories

import (
	"context"
	"errors"

	"github.com/nattawatj/go-storefront/app/models"
	"gorm.io/gorm"
)

// ErrCouponExhausted is returned when the guarded increment finds the
// usage limit already reached.
var ErrCouponExhausted = errors.New("coupon usage limit reached")

type CouponRepository interface {
	Create(ctx context.Context, coupon *models.Coupon) error
	Update(ctx context.Context, coupon *models.Coupon) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Coupon, error)
	FindActiveByCode(ctx context.Context, code string) (*models.Coupon, error)
	GetPaginated(ctx context.Context, limit, offset int) ([]models.Coupon, int64, error)
	// ConsumeUsage increments used_count atomically, guarded against the
	// usage limit so two concurrent checkouts cannot both take the last
	// redemption.
	ConsumeUsage(ctx context.Context, couponID string, usageLimit int) error
	// ReleaseUsage gives one redemption back after a cancellation.
	ReleaseUsage(ctx context.Context, couponID string) error
}

type couponRepository struct {
	db *gorm.DB
}

func NewCouponRepository(db *gorm.DB) CouponRepository {
	return &couponRepository{db: db}
}

func (r *couponRepository) Create(ctx context.Context, coupon *models.Coupon) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Create(coupon).Error
}

func (r *couponRepository) Update(ctx context.Context, coupon *models.Coupon) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Save(coupon).Error
}

func (r *couponRepository) Delete(ctx context.Context, id string) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Delete(&models.Coupon{}, "id = ?", id).Error
}

func (r *couponRepository) GetByID(ctx context.Context, id string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := dbFrom(ctx, r.db).WithContext(ctx).First(&coupon, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &coupon, nil
}

func (r *couponRepository) FindActiveByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := dbFrom(ctx, r.db).WithContext(ctx).
		First(&coupon, "code = ? AND is_active = ?", models.NormalizeCouponCode(code), true).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &coupon, nil
}

func (r *couponRepository) GetPaginated(ctx context.Context, limit, offset int) ([]models.Coupon, int64, error) {
	var total int64
	if err := dbFrom(ctx, r.db).WithContext(ctx).Model(&models.Coupon{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var coupons []models.Coupon
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&coupons).Error
	return coupons, total, err
}

func (r *couponRepository) ConsumeUsage(ctx context.Context, couponID string, usageLimit int) error {
	query := dbFrom(ctx, r.db).WithContext(ctx).Model(&models.Coupon{}).
		Where("id = ?", couponID)
	if usageLimit > 0 {
		query = query.Where("used_count < ?", usageLimit)
	}

	res := query.UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCouponExhausted
	}
	return nil
}

func (r *couponRepository) ReleaseUsage(ctx context.Context, couponID string) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Model(&models.Coupon{}).
		Where("id = ? AND used_count > 0", couponID).
		UpdateColumn("used_count", gorm.Expr("used_count - 1")).Error
}
