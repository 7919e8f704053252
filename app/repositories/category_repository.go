package repositories

import (
	"context"
	"errors"

	"github.com/nattawatj/go-storefront/app/models"
	"gorm.io/gorm"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Category, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	FindByName(ctx context.Context, name string) (*models.Category, error)
	GetAll(ctx context.Context) ([]models.Category, error)
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Create(category).Error
}

func (r *categoryRepository) Update(ctx context.Context, category *models.Category) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Save(category).Error
}

func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Delete(&models.Category{}, "id = ?", id).Error
}

func (r *categoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return r.first(ctx, "slug = ?", slug)
}

func (r *categoryRepository) FindByName(ctx context.Context, name string) (*models.Category, error) {
	return r.first(ctx, "name = ?", name)
}

func (r *categoryRepository) first(ctx context.Context, cond, value string) (*models.Category, error) {
	var category models.Category
	err := dbFrom(ctx, r.db).WithContext(ctx).First(&category, cond, value).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) GetAll(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := dbFrom(ctx, r.db).WithContext(ctx).Order("name ASC").Find(&categories).Error
	return categories, err
}
