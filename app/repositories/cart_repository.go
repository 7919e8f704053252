package repositories

import (
	"context"
	"errors"

	"github.com/nattawatj/go-storefront/app/models"
	"gorm.io/gorm"
)

type CartRepositoryImpl interface {
	GetByUserID(ctx context.Context, userID string) (*models.Cart, error)
	GetOrCreateByUserID(ctx context.Context, userID string) (*models.Cart, error)
	Delete(ctx context.Context, cartID string) error
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepositoryImpl {
	return &cartRepository{db: db}
}

// GetByUserID loads the user's cart with items and live products, or
// nil when the user has no cart.
func (r *cartRepository) GetByUserID(ctx context.Context, userID string) (*models.Cart, error) {
	var cart models.Cart
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Preload("CartItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("cart_items.created_at ASC")
		}).
		Preload("CartItems.Product").
		First(&cart, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) GetOrCreateByUserID(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := r.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart != nil {
		return cart, nil
	}

	cart = &models.Cart{UserID: userID}
	if err := dbFrom(ctx, r.db).WithContext(ctx).Create(cart).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

// Delete removes the cart and its items. Used when the cart empties or
// converts into an order.
func (r *cartRepository) Delete(ctx context.Context, cartID string) error {
	db := dbFrom(ctx, r.db).WithContext(ctx)
	if err := db.Delete(&models.CartItem{}, "cart_id = ?", cartID).Error; err != nil {
		return err
	}
	return db.Delete(&models.Cart{}, "id = ?", cartID).Error
}
