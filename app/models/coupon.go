package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
)

func ValidDiscountType(t string) bool {
	return t == DiscountTypePercentage || t == DiscountTypeFixed
}

// Coupon rules: zero MaxDiscountAmount means no cap, zero MinOrderValue
// means no floor, zero UsageLimit means unlimited redemptions.
type Coupon struct {
	ID                string          `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	Code              string          `gorm:"size:64;not null;uniqueIndex" json:"code"`
	DiscountType      string          `gorm:"size:20;not null" json:"discount_type"`
	DiscountValue     decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"discount_value"`
	MaxDiscountAmount decimal.Decimal `gorm:"type:decimal(16,2);default:0.00" json:"max_discount_amount"`
	MinOrderValue     decimal.Decimal `gorm:"type:decimal(16,2);default:0.00" json:"min_order_value"`
	UsageLimit        int             `gorm:"default:0" json:"usage_limit"`
	UsedCount         int             `gorm:"default:0" json:"used_count"`
	StartsAt          *time.Time      `json:"starts_at,omitempty"`
	ExpiresAt         *time.Time      `json:"expires_at,omitempty"`
	IsActive          bool            `gorm:"default:true" json:"is_active"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	DeletedAt         gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (c *Coupon) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

// BeforeSave normalizes the code so lookups are case-insensitive.
func (c *Coupon) BeforeSave(tx *gorm.DB) (err error) {
	c.Code = NormalizeCouponCode(c.Code)
	return
}

func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
