package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductCondition string

const (
	ConditionNewWithTags ProductCondition = "new_with_tags"
	ConditionExcellent   ProductCondition = "excellent"
	ConditionGood        ProductCondition = "good"
	ConditionFair        ProductCondition = "fair"
)

type Product struct {
	ID          uint             `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string           `gorm:"not null" json:"title"`
	Description string           `json:"description"`
	Brand       string           `json:"brand"`
	Size        string           `json:"size"` // e.g. "M", "UK 42"
	Condition   ProductCondition `gorm:"type:VARCHAR(20);not null" json:"condition"`
	Price       decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"price"`
	Image       string           `json:"image"`
	Categories  []Category       `gorm:"many2many:product_categories;" json:"categories"`
	Stock       int              `json:"stock"`
	Active      bool             `gorm:"default:true" json:"active"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	DeletedAt   gorm.DeletedAt   `gorm:"index" json:"-"`
}

type Category struct {
	ID       uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string    `gorm:"unique;not null" json:"name"`
	Products []Product `gorm:"many2many:product_categories" json:"products,omitempty"`
}
