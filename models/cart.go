package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Cart struct {
	CartID    uint       `gorm:"primaryKey" json:"cart_id"`
	UserID    string     `gorm:"uniqueIndex" json:"user_id"`                    // Enforces ONE cart per user
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"` // Cascade delete items if cart is deleted
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type CartItem struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	CartID       uint            `gorm:"index" json:"cart_id"`
	ProductID    uint            `json:"product_id"`
	ProductTitle string          `json:"product_title"`
	ProductImage string          `json:"product_image"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(10,2)" json:"unit_price"` // price at the time the item was added
	Quantity     int             `json:"quantity"`
	AddedAt      time.Time       `json:"added_at"`
}
