package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cart is the single mutable cart a user owns. It is deleted once it
// empties or converts into an order.
type Cart struct {
	ID        string     `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	UserID    string     `gorm:"size:36;not null;uniqueIndex" json:"user_id"`
	CartItems []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (c *Cart) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}
