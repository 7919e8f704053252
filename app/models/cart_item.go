package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CartItem struct {
	ID        string    `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	CartID    string    `gorm:"size:36;not null;uniqueIndex:idx_cart_product" json:"cart_id"`
	ProductID string    `gorm:"size:36;not null;uniqueIndex:idx_cart_product" json:"product_id"`
	Product   Product   `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Qty       int       `gorm:"not null" json:"qty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ci *CartItem) BeforeCreate(tx *gorm.DB) (err error) {
	if ci.ID == "" {
		ci.ID = uuid.New().String()
	}
	return
}
