package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Zone is a campus delivery zone (halls, hostels, faculty blocks).
type Zone struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"unique;not null" json:"name"`
	Code        string          `gorm:"unique;not null" json:"code"` // e.g. "NH" for New Hall
	DeliveryFee decimal.Decimal `gorm:"type:decimal(10,2)" json:"delivery_fee"`
	Active      bool            `gorm:"default:true" json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Rider records are managed outside the core; delivery assignment only
// references them.
type Rider struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Phone     string    `json:"phone"`
	ZoneID    uint      `json:"zone_id"`
	Active    bool      `gorm:"default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
}
