package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/nattawatj/go-storefront/app/cache"
	"github.com/nattawatj/go-storefront/app/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrStockConflict is returned when the guarded decrement finds less
// stock than requested. The caller decides how to surface it.
var ErrStockConflict = errors.New("insufficient stock for conditional decrement")

type ProductFilter struct {
	Keyword      string
	CategorySlug string
	BrandSlug    string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	OnlyActive   bool
	Limit        int
	Offset       int
}

type ProductRepositoryImpl interface {
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Product, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	GetPaginated(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error)
	ExistsBySku(ctx context.Context, sku, excludeID string) (bool, error)
	ExistsBySlug(ctx context.Context, slug, excludeID string) (bool, error)
	CountByCategoryID(ctx context.Context, categoryID string) (int64, error)
	CountByBrandID(ctx context.Context, brandID string) (int64, error)
	ReserveStock(ctx context.Context, productID string, qty int) error
	RestoreStock(ctx context.Context, productID string, qty int) error
}

type productRepository struct {
	db    *gorm.DB
	cache *cache.ProductCache
}

func NewProductRepository(db *gorm.DB, productCache *cache.ProductCache) ProductRepositoryImpl {
	return &productRepository{db: db, cache: productCache}
}

func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Create(product).Error
}

func (r *productRepository) Update(ctx context.Context, product *models.Product) error {
	if err := dbFrom(ctx, r.db).WithContext(ctx).Save(product).Error; err != nil {
		return err
	}
	r.cache.Invalidate(ctx, product.Slug)
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	product, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return nil
	}
	if err := dbFrom(ctx, r.db).WithContext(ctx).Delete(&models.Product{}, "id = ?", id).Error; err != nil {
		return err
	}
	r.cache.Invalidate(ctx, product.Slug)
	return nil
}

// GetByID always reads the database. Stock checks and order snapshots
// must never see a cached row.
func (r *productRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Preload("Category").
		Preload("Brand").
		First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// GetBySlug serves the public product page and may return a cached copy.
func (r *productRepository) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	if cached := r.cache.GetBySlug(ctx, slug); cached != nil {
		return cached, nil
	}

	var product models.Product
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Preload("Category").
		Preload("Brand").
		First(&product, "slug = ?", slug).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	r.cache.Set(ctx, &product)
	return &product, nil
}

func (r *productRepository) GetPaginated(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error) {
	base := dbFrom(ctx, r.db).WithContext(ctx).Model(&models.Product{})

	if filter.OnlyActive {
		base = base.Where("products.is_active = ?", true)
	}
	if filter.Keyword != "" {
		keyword := "%" + strings.ToLower(filter.Keyword) + "%"
		base = base.Where("LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ?", keyword, keyword)
	}
	if filter.CategorySlug != "" {
		base = base.Joins("JOIN categories c ON c.id = products.category_id").
			Where("c.slug = ?", filter.CategorySlug)
	}
	if filter.BrandSlug != "" {
		base = base.Joins("JOIN brands b ON b.id = products.brand_id").
			Where("b.slug = ?", filter.BrandSlug)
	}
	if filter.MinPrice != nil {
		base = base.Where("products.selling_price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		base = base.Where("products.selling_price <= ?", *filter.MaxPrice)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []models.Product
	err := base.
		Preload("Category").
		Preload("Brand").
		Order("products.created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&products).Error

	return products, total, err
}

func (r *productRepository) ExistsBySku(ctx context.Context, sku, excludeID string) (bool, error) {
	return r.exists(ctx, "sku = ?", sku, excludeID)
}

func (r *productRepository) ExistsBySlug(ctx context.Context, slug, excludeID string) (bool, error) {
	return r.exists(ctx, "slug = ?", slug, excludeID)
}

func (r *productRepository) exists(ctx context.Context, cond, value, excludeID string) (bool, error) {
	query := dbFrom(ctx, r.db).WithContext(ctx).Model(&models.Product{}).Where(cond, value)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *productRepository) CountByCategoryID(ctx context.Context, categoryID string) (int64, error) {
	var count int64
	err := dbFrom(ctx, r.db).WithContext(ctx).Model(&models.Product{}).
		Where("category_id = ?", categoryID).Count(&count).Error
	return count, err
}

func (r *productRepository) CountByBrandID(ctx context.Context, brandID string) (int64, error) {
	var count int64
	err := dbFrom(ctx, r.db).WithContext(ctx).Model(&models.Product{}).
		Where("brand_id = ?", brandID).Count(&count).Error
	return count, err
}

// ReserveStock decrements stock with a guard predicate in a single
// statement, so two concurrent reservations cannot both pass a
// check-then-write. Zero rows affected means the stock ran out.
func (r *productRepository) ReserveStock(ctx context.Context, productID string, qty int) error {
	res := dbFrom(ctx, r.db).WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStockConflict
	}
	return nil
}

func (r *productRepository) RestoreStock(ctx context.Context, productID string, qty int) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty)).Error
}
