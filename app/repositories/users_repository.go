package repositories

import (
	"context"
	"errors"

	"github.com/nattawatj/go-storefront/app/models"
	"gorm.io/gorm"
)

type UserRepositoryImpl interface {
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	GetPaginated(ctx context.Context, limit, offset int) ([]models.User, int64, error)
	UpdateRole(ctx context.Context, userID, role string) error
	AddToWishlist(ctx context.Context, userID string, product *models.Product) error
	RemoveFromWishlist(ctx context.Context, userID, productID string) error
	GetWishlist(ctx context.Context, userID string) ([]models.Product, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepositoryImpl {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Create(user).Error
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Save(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := dbFrom(ctx, r.db).WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := dbFrom(ctx, r.db).WithContext(ctx).First(&user, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetPaginated(ctx context.Context, limit, offset int) ([]models.User, int64, error) {
	var total int64
	if err := dbFrom(ctx, r.db).WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	return users, total, err
}

func (r *userRepository) UpdateRole(ctx context.Context, userID, role string) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("role", role).Error
}

func (r *userRepository) AddToWishlist(ctx context.Context, userID string, product *models.Product) error {
	return dbFrom(ctx, r.db).WithContext(ctx).
		Model(&models.User{ID: userID}).
		Association("Wishlist").
		Append(product)
}

func (r *userRepository) RemoveFromWishlist(ctx context.Context, userID, productID string) error {
	return dbFrom(ctx, r.db).WithContext(ctx).
		Model(&models.User{ID: userID}).
		Association("Wishlist").
		Delete(&models.Product{ID: productID})
}

func (r *userRepository) GetWishlist(ctx context.Context, userID string) ([]models.Product, error) {
	var products []models.Product
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Model(&models.User{ID: userID}).
		Association("Wishlist").
		Find(&products)
	return products, err
}
