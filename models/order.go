package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	// Order statuses (checkout through delivery)
	OrderStatusPending    OrderStatus = "pending"    // Order placed, payment not yet confirmed
	OrderStatusConfirmed  OrderStatus = "confirmed"  // Payment confirmed
	OrderStatusProcessing OrderStatus = "processing" // Rider assigned, being prepared
	OrderStatusShipped    OrderStatus = "shipped"    // Out for campus delivery
	OrderStatusDelivered  OrderStatus = "delivered"  // Buyer received the item
	OrderStatusCancelled  OrderStatus = "cancelled"  // Cancelled before delivery
)

type Order struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	OrderNumber     string          `gorm:"uniqueIndex;not null" json:"order_number"`
	UserID          string          `gorm:"not null;index" json:"user_id"`
	User            User            `gorm:"foreignKey:UserID" json:"user"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	DeliveryAddress string          `json:"delivery_address"`
	ZoneID          uint            `gorm:"not null" json:"zone_id"`
	Zone            Zone            `gorm:"foreignKey:ZoneID" json:"zone"`
	Status          OrderStatus     `gorm:"type:VARCHAR(20);default:'pending'" json:"status"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(10,2)" json:"total_amount"`
	Payment         *Payment        `gorm:"foreignKey:OrderID" json:"payment,omitempty"`
	Delivery        *Delivery       `gorm:"foreignKey:OrderID" json:"delivery,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// OrderItem is an immutable snapshot of the product at purchase time.
type OrderItem struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	OrderID      uint            `gorm:"index" json:"order_id"`
	ProductID    uint            `json:"product_id"`
	ProductTitle string          `json:"product_title"`
	ProductImage string          `json:"product_image"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(10,2)" json:"unit_price"`
	Quantity     int             `json:"quantity"`
}
