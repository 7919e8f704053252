package seeders

import (
	"time"

	"github.com/gosimple/slug"
	"github.com/nattawatj/go-storefront/app/db/fakers"
	"github.com/nattawatj/go-storefront/app/models"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DBSeed fills an empty database with a working storefront: an admin
// account, a few categories and brands, faked products and one welcome
// coupon. Safe to re-run; existing rows are reused.
func DBSeed(db *gorm.DB) error {
	if err := seedAdmin(db); err != nil {
		return err
	}

	categories, err := seedCategories(db)
	if err != nil {
		return err
	}
	brands, err := seedBrands(db)
	if err != nil {
		return err
	}

	if err := seedProducts(db, categories, brands); err != nil {
		return err
	}
	return seedCoupon(db)
}

func seedAdmin(db *gorm.DB) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte("admin1234"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &models.User{
		FirstName: "Store",
		LastName:  "Admin",
		Email:     "admin@storefront.local",
		Password:  string(hashed),
		Role:      models.RoleAdmin,
	}
	return db.FirstOrCreate(admin, "email = ?", admin.Email).Error
}

func seedCategories(db *gorm.DB) ([]models.Category, error) {
	names := []string{"Electronics", "Fashion", "Home and Living"}

	categories := make([]models.Category, 0, len(names))
	for _, name := range names {
		category := models.Category{Name: name, Slug: slug.Make(name)}
		if err := db.FirstOrCreate(&category, "slug = ?", category.Slug).Error; err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, nil
}

func seedBrands(db *gorm.DB) ([]models.Brand, error) {
	names := []string{"Acme", "Northwind", "Globex"}

	brands := make([]models.Brand, 0, len(names))
	for _, name := range names {
		brand := models.Brand{Name: name, Slug: slug.Make(name)}
		if err := db.FirstOrCreate(&brand, "slug = ?", brand.Slug).Error; err != nil {
			return nil, err
		}
		brands = append(brands, brand)
	}
	return brands, nil
}

func seedProducts(db *gorm.DB, categories []models.Category, brands []models.Brand) error {
	var count int64
	if err := db.Model(&models.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for i := 0; i < 12; i++ {
		product := fakers.ProductFaker(&categories[i%len(categories)], &brands[i%len(brands)])
		if err := db.Create(product).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedCoupon(db *gorm.DB) error {
	expires := time.Now().AddDate(0, 1, 0)

	coupon := &models.Coupon{
		Code:              "WELCOME10",
		DiscountType:      models.DiscountTypePercentage,
		DiscountValue:     decimal.NewFromInt(10),
		MaxDiscountAmount: decimal.NewFromInt(100),
		MinOrderValue:     decimal.NewFromInt(300),
		UsageLimit:        100,
		ExpiresAt:         &expires,
		IsActive:          true,
	}
	return db.FirstOrCreate(coupon, "code = ?", coupon.Code).Error
}
