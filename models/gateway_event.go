package models

import "time"

// GatewayEvent is the webhook idempotency ledger. One row is inserted per
// processed gateway event, in the same transaction as the payment mutation;
// the unique index turns a redelivered event into a no-op.
type GatewayEvent struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	EventID    string    `gorm:"uniqueIndex;not null" json:"event_id"`
	EventType  string    `json:"event_type"`
	PaymentID  uint      `gorm:"index" json:"payment_id"`
	ReceivedAt time.Time `json:"received_at"`
}
