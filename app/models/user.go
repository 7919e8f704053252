package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleCustomer = "customer"
	RoleEmployee = "employee"
	RoleAdmin    = "admin"
)

func ValidRole(role string) bool {
	return role == RoleCustomer || role == RoleEmployee || role == RoleAdmin
}

type User struct {
	ID        string    `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	FirstName string    `gorm:"size:100;not null" json:"first_name"`
	LastName  string    `gorm:"size:100;not null" json:"last_name"`
	Email     string    `gorm:"size:100;not null;uniqueIndex" json:"email"`
	Phone     string    `gorm:"size:20" json:"phone"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Role      string    `gorm:"size:20;default:'customer';not null" json:"role"`
	Addresses []Address `gorm:"foreignKey:UserID" json:"addresses,omitempty"`
	Wishlist  []Product `gorm:"many2many:wishlist_items;" json:"wishlist,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}

// IsStaff reports whether the user may access back-office surfaces.
func (u *User) IsStaff() bool {
	return u.Role == RoleAdmin || u.Role == RoleEmployee
}
