package repositories

import (
	"context"
	"errors"

	"github.com/nattawatj/go-storefront/app/models"
	"gorm.io/gorm"
)

type CartItemRepositoryImpl interface {
	Get(ctx context.Context, cartID, productID string) (*models.CartItem, error)
	Add(ctx context.Context, item *models.CartItem) error
	Update(ctx context.Context, item *models.CartItem) error
	Delete(ctx context.Context, cartID, productID string) error
	CountByCartID(ctx context.Context, cartID string) (int64, error)
}

type cartItemRepository struct {
	db *gorm.DB
}

func NewCartItemRepository(db *gorm.DB) CartItemRepositoryImpl {
	return &cartItemRepository{db: db}
}

func (r *cartItemRepository) Get(ctx context.Context, cartID, productID string) (*models.CartItem, error) {
	var item models.CartItem
	err := dbFrom(ctx, r.db).WithContext(ctx).
		First(&item, "cart_id = ? AND product_id = ?", cartID, productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *cartItemRepository) Add(ctx context.Context, item *models.CartItem) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Create(item).Error
}

func (r *cartItemRepository) Update(ctx context.Context, item *models.CartItem) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Save(item).Error
}

func (r *cartItemRepository) Delete(ctx context.Context, cartID, productID string) error {
	return dbFrom(ctx, r.db).WithContext(ctx).
		Delete(&models.CartItem{}, "cart_id = ? AND product_id = ?", cartID, productID).Error
}

func (r *cartItemRepository) CountByCartID(ctx context.Context, cartID string) (int64, error) {
	var count int64
	err := dbFrom(ctx, r.db).WithContext(ctx).Model(&models.CartItem{}).
		Where("cart_id = ?", cartID).Count(&count).Error
	return count, err
}
