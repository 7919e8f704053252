package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending             OrderStatus = "pending"
	OrderStatusWaitingVerification OrderStatus = "waiting_verification"
	OrderStatusPaid                OrderStatus = "paid"
	OrderStatusProcessing          OrderStatus = "processing"
	OrderStatusShipped             OrderStatus = "shipped"
	OrderStatusCompleted           OrderStatus = "completed"
	OrderStatusCancelled           OrderStatus = "cancelled"
)

// statusRank orders the forward path of the lifecycle. Cancelled sits
// outside the chain and is only reachable through cancellation.
var statusRank = map[OrderStatus]int{
	OrderStatusPending:             0,
	OrderStatusWaitingVerification: 1,
	OrderStatusPaid:                2,
	OrderStatusProcessing:          3,
	OrderStatusShipped:             4,
	OrderStatusCompleted:           5,
}

func (s OrderStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok || s == OrderStatusCancelled
}

func (s OrderStatus) Rank() int {
	return statusRank[s]
}

// Terminal statuses accept no further transitions.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// Active statuses are the ones inventory has been committed for.
func (s OrderStatus) Active() bool {
	switch s {
	case OrderStatusPaid, OrderStatusProcessing, OrderStatusShipped, OrderStatusCompleted:
		return true
	}
	return false
}

const (
	PaymentMethodCOD          = "cod"
	PaymentMethodBankTransfer = "bank_transfer"
)

func ValidPaymentMethod(m string) bool {
	return m == PaymentMethodCOD || m == PaymentMethodBankTransfer
}

// Order is an immutable snapshot of a purchase. After creation only the
// status, payment and delivery fields change.
type Order struct {
	ID     string `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	Code   string `gorm:"size:64;not null;uniqueIndex" json:"code"`
	UserID string `gorm:"size:36;index;not null" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"-"`

	Items []OrderItem `json:"items"`

	CouponID   *string `gorm:"size:36;index" json:"coupon_id,omitempty"`
	CouponCode string  `gorm:"size:64" json:"coupon_code,omitempty"`

	Subtotal    decimal.Decimal `gorm:"type:decimal(16,2)" json:"subtotal"`
	Discount    decimal.Decimal `gorm:"type:decimal(16,2)" json:"discount"`
	ShippingFee decimal.Decimal `gorm:"type:decimal(16,2)" json:"shipping_fee"`
	TaxPrice    decimal.Decimal `gorm:"type:decimal(16,2)" json:"tax_price"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(16,2)" json:"total_price"`
	NetPrice    decimal.Decimal `gorm:"type:decimal(16,2)" json:"subtotal_before_tax"`

	Status        OrderStatus `gorm:"size:30;not null;default:'pending';index" json:"status"`
	StockReserved bool        `gorm:"default:false" json:"-"`

	PaymentMethod string     `gorm:"size:30;not null" json:"payment_method"`
	PaymentPaid   bool       `gorm:"default:false" json:"payment_paid"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	PaymentProof  string     `gorm:"size:255" json:"payment_proof,omitempty"`
	Refunded      bool       `gorm:"default:false" json:"refunded"`

	ShippingName     string `gorm:"size:255" json:"shipping_name"`
	ShippingPhone    string `gorm:"size:20" json:"shipping_phone"`
	ShippingAddress1 string `gorm:"type:text" json:"shipping_address1"`
	ShippingAddress2 string `gorm:"type:text" json:"shipping_address2"`
	ShippingDistrict string `gorm:"size:100" json:"shipping_district"`
	ShippingProvince string `gorm:"size:100" json:"shipping_province"`
	ShippingPostCode string `gorm:"size:10" json:"shipping_post_code"`

	Delivered   bool       `gorm:"default:false" json:"delivered"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) (err error) {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return
}
