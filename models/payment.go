package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string
type PaymentMethod string

const (
	// Payment statuses
	PaymentStatusPending   PaymentStatus = "pending"   // Created, no charge confirmed yet
	PaymentStatusPartial   PaymentStatus = "partial"   // First installment paid
	PaymentStatusCompleted PaymentStatus = "completed" // Fully paid
	PaymentStatusFailed    PaymentStatus = "failed"    // A charge was declined

	// Payment methods
	PaymentMethodCard        PaymentMethod = "card"
	PaymentMethodMobileMoney PaymentMethod = "mobile_money"
	PaymentMethodInstallment PaymentMethod = "installment" // "Payday Flex" two-part plan
)

type Payment struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	OrderID         uint            `gorm:"uniqueIndex;not null" json:"order_id"`
	Amount          decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	PaidAmount      decimal.Decimal `gorm:"type:decimal(10,2)" json:"paid_amount"`
	RemainingAmount decimal.Decimal `gorm:"type:decimal(10,2)" json:"remaining_amount"`
	Method          PaymentMethod   `gorm:"type:VARCHAR(20);not null" json:"method"`
	Status          PaymentStatus   `gorm:"type:VARCHAR(20);default:'pending'" json:"status"`
	InstallmentPlan bool            `json:"installment_plan"`
	PaydayDate      *time.Time      `json:"payday_date,omitempty"` // due date of the second installment

	// Gateway bookkeeping. The authorization code is stored only so the
	// second installment can be charged without re-collecting card details.
	GatewayReference  string `gorm:"uniqueIndex" json:"gateway_reference"`
	AuthorizationCode string `json:"-"`
	CustomerCode      string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
