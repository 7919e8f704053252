package repositories

import (
	"context"
	"errors"

	"github.com/nattawatj/go-storefront/app/models"
	"gorm.io/gorm"
)

type BrandRepository interface {
	Create(ctx context.Context, brand *models.Brand) error
	Update(ctx context.Context, brand *models.Brand) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Brand, error)
	GetBySlug(ctx context.Context, slug string) (*models.Brand, error)
	FindByName(ctx context.Context, name string) (*models.Brand, error)
	GetAll(ctx context.Context) ([]models.Brand, error)
}

type brandRepository struct {
	db *gorm.DB
}

func NewBrandRepository(db *gorm.DB) BrandRepository {
	return &brandRepository{db: db}
}

func (r *brandRepository) Create(ctx context.Context, brand *models.Brand) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Create(brand).Error
}

func (r *brandRepository) Update(ctx context.Context, brand *models.Brand) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Save(brand).Error
}

func (r *brandRepository) Delete(ctx context.Context, id string) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Delete(&models.Brand{}, "id = ?", id).Error
}

func (r *brandRepository) GetByID(ctx context.Context, id string) (*models.Brand, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *brandRepository) GetBySlug(ctx context.Context, slug string) (*models.Brand, error) {
	return r.first(ctx, "slug = ?", slug)
}

func (r *brandRepository) FindByName(ctx context.Context, name string) (*models.Brand, error) {
	return r.first(ctx, "name = ?", name)
}

func (r *brandRepository) first(ctx context.Context, cond, value string) (*models.Brand, error) {
	var brand models.Brand
	err := dbFrom(ctx, r.db).WithContext(ctx).First(&brand, cond, value).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &brand, nil
}

func (r *brandRepository) GetAll(ctx context.Context) ([]models.Brand, error) {
	var brands []models.Brand
	err := dbFrom(ctx, r.db).WithContext(ctx).Order("name ASC").Find(&brands).Error
	return brands, err
}
