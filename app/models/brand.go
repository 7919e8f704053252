package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Brand struct {
	ID        string    `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	Name      string    `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Slug      string    `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Brand) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return
}
