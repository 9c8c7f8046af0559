package paymentControllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campusthrift/thrift-api/api"
	"github.com/campusthrift/thrift-api/models"
)

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrForbidden            = errors.New("order belongs to another user")
	ErrPaymentExists        = errors.New("payment already initialized for this order")
	ErrNotInstallmentOrder  = errors.New("order was not placed with the installment method")
	ErrInvalidPaydayDate    = errors.New("payday date must be 7 to 30 days from now")
	ErrMissingAuthorization = errors.New("missing authorization")
)

// confirmOrder moves the order to confirmed and lazily creates its delivery
// record. Runs inside the caller's transaction.
func confirmOrder(tx *gorm.DB, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := tx.First(&order, "id = ?", orderID).Error; err != nil {
		return nil, fmt.Errorf("load order %d: %w", orderID, err)
	}

	if order.Status == models.OrderStatusPending {
		if err := tx.Model(&order).Update("status", models.OrderStatusConfirmed).Error; err != nil {
			return nil, fmt.Errorf("confirm order %d: %w", orderID, err)
		}
		order.Status = models.OrderStatusConfirmed
	}

	var existing models.Delivery
	err := tx.Where("order_id = ?", order.ID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		delivery := models.Delivery{
			OrderID: order.ID,
			ZoneID:  order.ZoneID,
			Status:  models.DeliveryStatusPending,
		}
		if err := tx.Create(&delivery).Error; err != nil {
			return nil, fmt.Errorf("create delivery for order %d: %w", orderID, err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("check delivery for order %d: %w", orderID, err)
	}

	return &order, nil
}

// GET /payments/verify/:reference
// Poll-side view of the payment. The
// webhook owns mutation; this read converges with it on the same rows, so a
// client polling before the webhook lands simply sees pending.
func VerifyPaymentHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		reference := c.Param("reference")
		if reference == "" {
			api.Fail(c, http.StatusBadRequest, "VALIDATION", "reference is required", nil)
			return
		}

		var payment models.Payment
		if err := db.Where("gateway_reference = ?", reference).First(&payment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				api.Fail(c, http.StatusNotFound, "NOT_FOUND", "No payment with that reference", nil)
				return
			}
			api.Fail(c, http.StatusInternalServerError, "INTERNAL", "Failed to fetch payment", nil)
			return
		}

		var order models.Order
		if err := db.First(&order, "id = ?", payment.OrderID).Error; err != nil {
			api.Fail(c, http.StatusInternalServerError, "INTERNAL", "Failed to fetch order", nil)
			return
		}

		userID, _ := c.Get("user_id")
		if order.UserID != userID {
			api.Fail(c, http.StatusForbidden, "FORBIDDEN", "You do not own this payment", nil)
			return
		}

		api.OK(c, http.StatusOK, gin.H{
			"payment_status":   payment.Status,
			"order_status":     order.Status,
			"amount":           payment.Amount,
			"paid_amount":      payment.PaidAmount,
			"remaining_amount": payment.RemainingAmount,
			"payday_date":      payment.PaydayDate,
		}, "")
	}
}

// Bare dates are anchored in the server's zone so they land in the same
// calendar day the batch selection window uses.
func parseDate(s string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

