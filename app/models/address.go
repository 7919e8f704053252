package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Address struct {
	ID        string    `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	UserID    string    `gorm:"size:36;index;not null" json:"user_id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Phone     string    `gorm:"size:20;not null" json:"phone"`
	Address1  string    `gorm:"type:text;not null" json:"address1"`
	Address2  string    `gorm:"type:text" json:"address2"`
	District  string    `gorm:"size:100" json:"district"`
	Province  string    `gorm:"size:100" json:"province"`
	PostCode  string    `gorm:"size:10;not null" json:"post_code"`
	IsDefault bool      `gorm:"default:false" json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Address) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return
}
