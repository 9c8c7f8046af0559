package paymentControllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/campusthrift/thrift-api/api"
	orderControllers "github.com/campusthrift/thrift-api/controllers/order"
	"github.com/campusthrift/thrift-api/gateway"
	"github.com/campusthrift/thrift-api/middleware"
	"github.com/campusthrift/thrift-api/models"
	"github.com/campusthrift/thrift-api/notify"
	"github.com/campusthrift/thrift-api/store"
)

const (
	eventChargeSuccess = "charge.success"
	eventChargeFailed  = "charge.failed"
)

// WebhookEvent is the gateway's event payload.
type WebhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		ID            int64  `json:"id"`
		Reference     string `json:"reference"`
		Amount        int64  `json:"amount"` // minor currency units
		Authorization struct {
			AuthorizationCode string `json:"authorization_code"`
		} `json:"authorization"`
		Customer struct {
			CustomerCode string `json:"customer_code"`
			Email        string `json:"email"`
		} `json:"customer"`
	} `json:"data"`
}

// ledgerKey identifies one gateway event delivery for the idempotency
// ledger. The gateway's numeric event id is preferred; older payloads
// without one fall back to event type + reference.
func (ev *WebhookEvent) ledgerKey() string {
	if ev.Data.ID > 0 {
		return fmt.Sprint(ev.Data.ID)
	}
	return ev.Event + ":" + ev.Data.Reference
}

// WebhookOutcome reports what a webhook application did, for the handler's
// response and for logging.
type WebhookOutcome struct {
	Applied    bool
	Duplicate  bool
	UnknownRef bool
	FullyPaid  bool
	Payment    *models.Payment
	Order      *models.Order
}

// ApplyChargeSuccess applies a successful charge to the matching payment.
// The ledger row and all payment/order mutations commit together, so a
// redelivered event is a clean no-op instead of a double count.
func ApplyChargeSuccess(db *gorm.DB, ev *WebhookEvent) (*WebhookOutcome, error) {
	outcome := &WebhookOutcome{}

	err := db.Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		err := store.ForUpdate(tx).
			Where("gateway_reference = ?", ev.Data.Reference).
			First(&payment).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			outcome.UnknownRef = true
			return nil
		}
		if err != nil {
			return fmt.Errorf("look up payment by reference %s: %w", ev.Data.Reference, err)
		}

		var seen models.GatewayEvent
		err = tx.Where("event_id = ?", ev.ledgerKey()).First(&seen).Error
		if err == nil {
			outcome.Duplicate = true
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check event ledger: %w", err)
		}
		if err := tx.Create(&models.GatewayEvent{
			EventID:    ev.ledgerKey(),
			EventType:  ev.Event,
			PaymentID:  payment.ID,
			ReceivedAt: time.Now(),
		}).Error; err != nil {
			return fmt.Errorf("record event: %w", err)
		}

		converted := gateway.ToMajorUnits(ev.Data.Amount)
		newPaid := payment.PaidAmount.Add(converted)
		fullyPaid := newPaid.GreaterThanOrEqual(payment.Amount)

		remaining := payment.Amount.Sub(newPaid)
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}

		status := models.PaymentStatusPartial
		if fullyPaid {
			status = models.PaymentStatusCompleted
		}

		updates := map[string]interface{}{
			"paid_amount":      newPaid,
			"remaining_amount": remaining,
			"status":           status,
		}
		// Saved so the second installment can be charged later without
		// re-collecting payment details.
		if ev.Data.Authorization.AuthorizationCode != "" {
			updates["authorization_code"] = ev.Data.Authorization.AuthorizationCode
		}
		if ev.Data.Customer.CustomerCode != "" {
			updates["customer_code"] = ev.Data.Customer.CustomerCode
		}
		if err := tx.Model(&payment).Updates(updates).Error; err != nil {
			return fmt.Errorf("update payment %d: %w", payment.ID, err)
		}

		payment.PaidAmount = newPaid
		payment.RemainingAmount = remaining
		payment.Status = status

		if fullyPaid {
			order, err := confirmOrder(tx, payment.OrderID)
			if err != nil {
				return err
			}
			outcome.Order = order
			outcome.FullyPaid = true
		}

		outcome.Applied = true
		outcome.Payment = &payment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// ApplyChargeFailed marks the payment failed. No order transition.
func ApplyChargeFailed(db *gorm.DB, ev *WebhookEvent) (*WebhookOutcome, error) {
	outcome := &WebhookOutcome{}

	err := db.Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		err := store.ForUpdate(tx).
			Where("gateway_reference = ?", ev.Data.Reference).
			First(&payment).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			outcome.UnknownRef = true
			return nil
		}
		if err != nil {
			return fmt.Errorf("look up payment by reference %s: %w", ev.Data.Reference, err)
		}

		// COMPLETED and FAILED are terminal. A late failure event for a
		// settled payment changes nothing.
		if payment.Status == models.PaymentStatusCompleted || payment.Status == models.PaymentStatusFailed {
			outcome.Payment = &payment
			return nil
		}

		var seen models.GatewayEvent
		err = tx.Where("event_id = ?", ev.ledgerKey()).First(&seen).Error
		if err == nil {
			outcome.Duplicate = true
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check event ledger: %w", err)
		}
		if err := tx.Create(&models.GatewayEvent{
			EventID:    ev.ledgerKey(),
			EventType:  ev.Event,
			PaymentID:  payment.ID,
			ReceivedAt: time.Now(),
		}).Error; err != nil {
			return fmt.Errorf("record event: %w", err)
		}

		if err := tx.Model(&payment).Update("status", models.PaymentStatusFailed).Error; err != nil {
			return fmt.Errorf("mark payment %d failed: %w", payment.ID, err)
		}
		payment.Status = models.PaymentStatusFailed

		outcome.Applied = true
		outcome.Payment = &payment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// POST /payments/webhook
// Signature is verified against the raw body
// captured by the webhook middleware; verification failure mutates nothing.
// Unknown event types and unknown references return 200 so the gateway does
// not keep retrying events that are not ours.
func WebhookHandler(db *gorm.DB, gw gateway.Client, notifier notify.Notifier, hub *orderControllers.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawBody := middleware.RawBody(c)

		signature := c.GetHeader(middleware.SignatureHeader)
		if signature == "" {
			api.Fail(c, http.StatusUnauthorized, "MISSING_SIGNATURE", "Signature header is missing", nil)
			return
		}
		if !gw.VerifySignature(rawBody, signature) {
			log.Warn().Msg("webhook signature verification failed")
			api.Fail(c, http.StatusUnauthorized, "INVALID_SIGNATURE", "Invalid webhook signature", nil)
			return
		}

		var ev WebhookEvent
		if err := json.Unmarshal(rawBody, &ev); err != nil {
			api.Fail(c, http.StatusBadRequest, "VALIDATION", "Malformed webhook payload", nil)
			return
		}

		switch ev.Event {
		case eventChargeSuccess:
			outcome, err := ApplyChargeSuccess(db, &ev)
			if err != nil {
				log.Error().Err(err).Str("reference", ev.Data.Reference).Msg("webhook charge.success failed")
				api.Fail(c, http.StatusInternalServerError, "INTERNAL", "Failed to process event", nil)
				return
			}
			logOutcome(&ev, outcome)

			if outcome.FullyPaid && outcome.Order != nil {
				// Notification and broadcast are best-effort; the charge is
				// already committed and the gateway gets its 200 regardless.
				var user models.User
				if err := db.First(&user, "id = ?", outcome.Order.UserID).Error; err == nil {
					if err := notifier.PaymentConfirmed(user.Email, outcome.Order.OrderNumber, outcome.Payment.Amount.StringFixed(2)); err != nil {
						log.Warn().Err(err).Str("order", outcome.Order.OrderNumber).Msg("confirmation notification failed")
					}
				}
				hub.BroadcastStatus(outcome.Order.ID, outcome.Order.OrderNumber, outcome.Order.Status)
			}
			api.OK(c, http.StatusOK, gin.H{"processed": outcome.Applied}, "")

		case eventChargeFailed:
			outcome, err := ApplyChargeFailed(db, &ev)
			if err != nil {
				log.Error().Err(err).Str("reference", ev.Data.Reference).Msg("webhook charge.failed failed")
				api.Fail(c, http.StatusInternalServerError, "INTERNAL", "Failed to process event", nil)
				return
			}
			logOutcome(&ev, outcome)
			api.OK(c, http.StatusOK, gin.H{"processed": outcome.Applied}, "")

		default:
			log.Info().Str("event", ev.Event).Msg("ignoring unrecognized webhook event")
			api.OK(c, http.StatusOK, gin.H{"processed": false}, "")
		}
	}
}

func logOutcome(ev *WebhookEvent, outcome *WebhookOutcome) {
	l := log.Info().Str("event", ev.Event).Str("reference", ev.Data.Reference)
	switch {
	case outcome.UnknownRef:
		l.Msg("webhook reference matches no payment, ignoring")
	case outcome.Duplicate:
		l.Str("event_id", ev.ledgerKey()).Msg("webhook event already processed, ignoring")
	case outcome.Applied:
		l.Str("payment_status", string(outcome.Payment.Status)).Msg("webhook event applied")
	default:
		l.Msg("webhook event skipped, payment already settled")
	}
}
