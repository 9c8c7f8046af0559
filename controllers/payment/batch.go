package paymentControllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/campusthrift/thrift-api/api"
	"github.com/campusthrift/thrift-api/gateway"
	"github.com/campusthrift/thrift-api/models"
	"github.com/campusthrift/thrift-api/notify"
)

// BatchReport aggregates one run of the due-installment charger.
type BatchReport struct {
	Considered int      `json:"considered"`
	Succeeded  int      `json:"succeeded"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors,omitempty"`
}

// secondChargeReference builds a fresh reference per attempt. Uniqueness
// across retried batch runs leans on the nanosecond timestamp plus a random
// suffix; the gateway is expected to reject true duplicates.
func secondChargeReference(now time.Time, paymentID uint) string {
	return fmt.Sprintf("TXN-PAY2-%d-%d-%s", now.UnixNano(), paymentID, uuid.NewString()[:4])
}

// RunDueInstallmentCharges charges the second half of every installment plan
// whose payday falls on now's calendar day. Each payment is handled
// independently: one bad row is recorded and the batch moves on. Scheduling
// lives outside; this is a plain function of now.
func RunDueInstallmentCharges(ctx context.Context, db *gorm.DB, gw gateway.Client, notifier notify.Notifier, now time.Time) BatchReport {
	report := BatchReport{}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var due []models.Payment
	if err := db.
		Where("status = ? AND installment_plan = ?", models.PaymentStatusPartial, true).
		Where("payday_date >= ? AND payday_date < ?", dayStart, dayEnd).
		Find(&due).Error; err != nil {
		log.Error().Err(err).Msg("installment batch: selecting due payments failed")
		report.Errors = append(report.Errors, fmt.Sprintf("select due payments: %v", err))
		return report
	}

	report.Considered = len(due)
	log.Info().Int("due", len(due)).Time("day", dayStart).Msg("installment batch started")

	for _, payment := range due {
		if err := chargeSecondInstallment(ctx, db, gw, notifier, &payment, now); err != nil {
			report.Failed++
			report.Errors = append(report.Errors, fmt.Sprintf("payment %d: %v", payment.ID, err))
			log.Warn().Err(err).Uint("payment_id", payment.ID).Msg("second installment charge failed")
			continue
		}
		report.Succeeded++
	}

	log.Info().
		Int("considered", report.Considered).
		Int("succeeded", report.Succeeded).
		Int("failed", report.Failed).
		Msg("installment batch finished")
	return report
}

// chargeSecondInstallment charges one due payment's remaining amount.
// A missing stored authorization is a recorded failure that leaves the
// payment PARTIAL; a gateway decline marks it FAILED; a transport error
// leaves it untouched for the next run.
func chargeSecondInstallment(ctx context.Context, db *gorm.DB, gw gateway.Client, notifier notify.Notifier, payment *models.Payment, now time.Time) error {
	if payment.AuthorizationCode == "" {
		return ErrMissingAuthorization
	}

	var order models.Order
	if err := db.Preload("User").First(&order, "id = ?", payment.OrderID).Error; err != nil {
		return fmt.Errorf("load order: %w", err)
	}

	reference := secondChargeReference(now, payment.ID)
	result, err := gw.ChargeAuthorization(ctx, payment.AuthorizationCode, order.User.Email, payment.RemainingAmount, reference)
	if err != nil {
		if gateway.IsTransient(err) {
			// Retryable; leave the payment PARTIAL for the next run.
			return err
		}
		return markSecondChargeFailed(db, notifier, payment, &order, err.Error())
	}
	if !result.Succeeded {
		return markSecondChargeFailed(db, notifier, payment, &order, result.FailureReason)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(payment).Updates(map[string]interface{}{
			"status":           models.PaymentStatusCompleted,
			"paid_amount":      payment.Amount,
			"remaining_amount": decimal.Zero,
		}).Error; err != nil {
			return fmt.Errorf("complete payment: %w", err)
		}
		if _, err := confirmOrder(tx, order.ID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info().
		Uint("payment_id", payment.ID).
		Str("reference", reference).
		Str("gateway_reference", result.GatewayReference).
		Msg("second installment charged")

	if err := notifier.PaymentConfirmed(order.User.Email, order.OrderNumber, payment.Amount.StringFixed(2)); err != nil {
		log.Warn().Err(err).Str("order", order.OrderNumber).Msg("confirmation notification failed")
	}
	return nil
}

func markSecondChargeFailed(db *gorm.DB, notifier notify.Notifier, payment *models.Payment, order *models.Order, reason string) error {
	if err := db.Model(payment).Update("status", models.PaymentStatusFailed).Error; err != nil {
		return fmt.Errorf("mark payment failed: %w", err)
	}
	if err := notifier.PaymentFailed(order.User.Email, order.OrderNumber, reason); err != nil {
		log.Warn().Err(err).Str("order", order.OrderNumber).Msg("failure notification failed")
	}
	return fmt.Errorf("charge declined: %s", reason)
}

// POST /internal/installments/run
// Gated by the internal API key, triggered by an external scheduler. An optional ?date=YYYY-MM-DD overrides "today"
// for catch-up runs.
func RunInstallmentsHandler(db *gorm.DB, gw gateway.Client, notifier notify.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now()
		if d := c.Query("date"); d != "" {
			parsed, err := parseDate(d)
			if err != nil {
				api.Fail(c, http.StatusBadRequest, "VALIDATION", "date must be YYYY-MM-DD", nil)
				return
			}
			now = parsed
		}

		report := RunDueInstallmentCharges(c.Request.Context(), db, gw, notifier, now)
		api.OK(c, http.StatusOK, report, "")
	}
}
