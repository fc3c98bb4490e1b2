package models

import (
	"github.com/google/uuid"
)

// Order represents a completed checkout
type Order struct {
	BaseModel
	OrderNumber   string      `gorm:"not null" json:"order_number"`
	CustomerEmail string      `json:"customer_email"`
	Status        string      `gorm:"default:'pending'" json:"status"`
	CouponCode    string      `json:"coupon_code"`
	TotalAmount   float64     `gorm:"default:0" json:"total_amount"`
	Items         []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// OrderItem represents a product line of an order
type OrderItem struct {
	BaseModel
	OrderID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID *uuid.UUID `gorm:"type:uuid;index" json:"product_id"` // Nullable when the product is removed
	Quantity  int        `gorm:"not null" json:"quantity"`
	UnitPrice float64    `gorm:"not null" json:"unit_price"`
}
