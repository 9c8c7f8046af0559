package paymentControllers

import (
	"context"
	"errors"
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
	"github.com/campusthrift/thrift-api/store"
)

const (
	minPaydayDays = 7
	maxPaydayDays = 30
)

type InitializeInstallmentRequest struct {
	OrderID    uint   `json:"order_id" binding:"required"`
	PaydayDate string `json:"payday_date" binding:"required"` // "2006-01-02"
}

type InstallmentResult struct {
	Payment          *models.Payment `json:"payment"`
	FirstCharge      decimal.Decimal `json:"first_charge"`
	AuthorizationURL string          `json:"authorization_url"`
	Reference        string          `json:"reference"`
}

// InitializeInstallment sets up the "Payday Flex" plan: half the order total
// is charged now, the other half on payday. The split is exact decimal
// arithmetic: remaining = total - firstCharge, so the two always sum back.
func InitializeInstallment(ctx context.Context, db *gorm.DB, gw gateway.Client, userID string, orderID uint, payday time.Time, now time.Time) (*InstallmentResult, error) {
	minDate := now.AddDate(0, 0, minPaydayDays)
	maxDate := now.AddDate(0, 0, maxPaydayDays)
	if payday.Before(minDate) || payday.After(maxDate) {
		return nil, ErrInvalidPaydayDate
	}

	var order models.Order
	if err := db.First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("load order: %w", err)
	}
	if order.UserID != userID {
		return nil, ErrForbidden
	}

	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	reference := fmt.Sprintf("TXN-PAY1-%d-%s", now.UnixNano(), uuid.NewString()[:8])

	var result *InstallmentResult
	err := db.Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		if err := store.ForUpdate(tx).Where("order_id = ?", orderID).First(&payment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("load payment: %w", err)
		}
		if payment.Method != models.PaymentMethodInstallment {
			return ErrNotInstallmentOrder
		}
		// A plan can only be set up on a pristine payment. The row stays
		// locked until commit, so a double submit cannot pass this check
		// twice and charge the gateway for both requests.
		if payment.InstallmentPlan || payment.Status != models.PaymentStatusPending || !payment.PaidAmount.IsZero() {
			return ErrPaymentExists
		}

		firstCharge := payment.Amount.Div(decimal.NewFromInt(2)).Round(2)
		remaining := payment.Amount.Sub(firstCharge)

		init, err := gw.Initialize(ctx, user.Email, firstCharge, reference, map[string]string{
			"order_number": order.OrderNumber,
			"installment":  "first",
		})
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"installment_plan":  true,
			"payday_date":       payday,
			"remaining_amount":  remaining,
			"gateway_reference": init.Reference,
		}
		if err := tx.Model(&payment).Updates(updates).Error; err != nil {
			return fmt.Errorf("persist installment plan: %w", err)
		}

		payment.InstallmentPlan = true
		payment.PaydayDate = &payday
		payment.RemainingAmount = remaining
		payment.GatewayReference = init.Reference

		result = &InstallmentResult{
			Payment:          &payment,
			FirstCharge:      firstCharge,
			AuthorizationURL: init.AuthorizationURL,
			Reference:        init.Reference,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Uint("order_id", orderID).
		Str("reference", result.Reference).
		Str("first_charge", result.FirstCharge.StringFixed(2)).
		Time("payday", payday).
		Msg("installment plan initialized")

	return result, nil
}

// POST /payments/installments/initialize
func InitializeInstallmentHandler(db *gorm.DB, gw gateway.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			api.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
			return
		}
		userID := userIDVal.(string)

		var req InitializeInstallmentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			api.Fail(c, http.StatusBadRequest, "VALIDATION", "Invalid request body", err.Error())
			return
		}
		payday, err := parseDate(req.PaydayDate)
		if err != nil {
			api.Fail(c, http.StatusBadRequest, "VALIDATION", "payday_date must be YYYY-MM-DD", nil)
			return
		}

		result, err := InitializeInstallment(c.Request.Context(), db, gw, userID, req.OrderID, payday, time.Now())
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidPaydayDate):
				api.Fail(c, http.StatusBadRequest, "INVALID_PAYDAY_DATE", err.Error(), nil)
			case errors.Is(err, ErrOrderNotFound):
				api.Fail(c, http.StatusNotFound, "NOT_FOUND", "Order not found", nil)
			case errors.Is(err, ErrForbidden):
				api.Fail(c, http.StatusForbidden, "FORBIDDEN", "You do not own this order", nil)
			case errors.Is(err, ErrPaymentExists):
				api.Fail(c, http.StatusConflict, "PAYMENT_EXISTS", err.Error(), nil)
			case errors.Is(err, ErrNotInstallmentOrder):
				api.Fail(c, http.StatusConflict, "NOT_INSTALLMENT", err.Error(), nil)
			case gateway.IsTransient(err):
				api.Fail(c, http.StatusBadGateway, "GATEWAY_UNAVAILABLE", "Payment provider unreachable, try again", nil)
			default:
				log.Error().Err(err).Uint("order_id", req.OrderID).Msg("installment initialize failed")
				api.Fail(c, http.StatusInternalServerError, "INTERNAL", "Failed to initialize installment", nil)
			}
			return
		}

		api.OK(c, http.StatusOK, result, "First installment ready for checkout")
	}
}
