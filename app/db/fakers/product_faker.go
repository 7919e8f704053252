package fakers

import (
	"math/rand"

	"github.com/go-faker/faker/v4"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/nattawatj/go-storefront/app/models"
	"github.com/shopspring/decimal"
)

// ProductFaker builds a random storefront product for the given category
// and brand. Roughly a third carry a discount.
func ProductFaker(category *models.Category, brand *models.Brand) *models.Product {
	name := faker.Word() + " " + faker.Word()
	price := decimal.NewFromInt(int64(rand.Intn(9900) + 100))

	discount := decimal.Zero
	if rand.Intn(3) == 0 {
		discount = price.Div(decimal.NewFromInt(10)).Round(2)
	}

	return &models.Product{
		Sku:            slug.Make(name) + "-" + uuid.NewString()[:6],
		Name:           name,
		Slug:           slug.Make(name + "-" + uuid.NewString()[:6]),
		Description:    faker.Paragraph(),
		Image:          "/images/products/placeholder.jpg",
		CategoryID:     category.ID,
		BrandID:        brand.ID,
		OriginalPrice:  price,
		DiscountAmount: discount,
		Stock:          rand.Intn(20) + 1,
		IsActive:       true,
	}
}
