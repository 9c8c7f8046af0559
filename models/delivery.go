package models

import "time"

type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "pending"
	DeliveryStatusAssigned  DeliveryStatus = "assigned"
	DeliveryStatusPickedUp  DeliveryStatus = "picked_up"
	DeliveryStatusInTransit DeliveryStatus = "in_transit"
	DeliveryStatusDelivered DeliveryStatus = "delivered"
	DeliveryStatusFailed    DeliveryStatus = "failed"
)

type Delivery struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	OrderID     uint           `gorm:"uniqueIndex;not null" json:"order_id"`
	RiderID     *uint          `json:"rider_id,omitempty"` // nil until a rider is assigned
	Rider       *Rider         `gorm:"foreignKey:RiderID" json:"rider,omitempty"`
	ZoneID      uint           `gorm:"not null" json:"zone_id"`
	Status      DeliveryStatus `gorm:"type:VARCHAR(20);default:'pending'" json:"status"`
	AssignedAt  *time.Time     `json:"assigned_at,omitempty"`
	DeliveredAt *time.Time     `json:"delivered_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
