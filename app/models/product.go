package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID             string          `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	Sku            string          `gorm:"size:100;not null;uniqueIndex" json:"sku"`
	Name           string          `gorm:"size:255;not null" json:"name"`
	Slug           string          `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	Description    string          `gorm:"type:text" json:"description"`
	Image          string          `gorm:"size:255" json:"image"`
	CategoryID     string          `gorm:"size:36;index" json:"category_id"`
	Category       Category        `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	BrandID        string          `gorm:"size:36;index" json:"brand_id"`
	Brand          Brand           `gorm:"foreignKey:BrandID" json:"brand,omitempty"`
	OriginalPrice  decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"original_price"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(16,2);default:0.00" json:"discount_amount"`
	SellingPrice   decimal.Decimal `gorm:"type:decimal(16,2)" json:"selling_price"`
	Stock          int             `gorm:"not null;default:0" json:"stock"`
	IsActive       bool            `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return
}

// BeforeSave keeps the selling price derived from price and discount.
func (p *Product) BeforeSave(tx *gorm.DB) (err error) {
	p.ApplyDiscount()
	return
}

// ApplyDiscount recomputes SellingPrice. A discount larger than the
// original price leaves the selling price at the original price.
func (p *Product) ApplyDiscount() {
	selling := p.OriginalPrice.Sub(p.DiscountAmount)
	if selling.IsNegative() {
		selling = p.OriginalPrice
	}
	p.SellingPrice = selling
}

// EffectivePrice is the price a buyer pays right now.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.SellingPrice.IsZero() {
		return p.OriginalPrice
	}
	return p.SellingPrice
}
