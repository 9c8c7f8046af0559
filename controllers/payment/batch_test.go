package paymentControllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/campusthrift/thrift-api/gateway"
	"github.com/campusthrift/thrift-api/models"
)

// seedPartialInstallment puts a payment into the state the batch looks for:
// first half paid, payday set, authorization stored (unless withAuth is false).
func seedPartialInstallment(t *testing.T, db *gorm.DB, amount decimal.Decimal, payday time.Time, withAuth bool) (*models.Order, *models.Payment) {
	t.Helper()
	order, payment := seedOrderWithPayment(t, db, amount, models.PaymentMethodInstallment)

	half := amount.Div(decimal.NewFromInt(2)).Round(2)
	updates := map[string]interface{}{
		"status":           models.PaymentStatusPartial,
		"installment_plan": true,
		"payday_date":      payday,
		"paid_amount":      half,
		"remaining_amount": amount.Sub(half),
	}
	if withAuth {
		updates["authorization_code"] = "AUTH_stored"
		updates["customer_code"] = "CUS_stored"
	}
	require.NoError(t, db.Model(payment).Updates(updates).Error)
	require.NoError(t, db.First(payment, payment.ID).Error)
	return order, payment
}

func TestBatch_SelectsOnlyPaydayToday(t *testing.T) {
	db := setupTestDB(t)
	now := time.Date(2026, 2, 27, 9, 30, 0, 0, time.UTC)

	seedPartialInstallment(t, db, decimal.NewFromFloat(100.00), now, true)
	seedPartialInstallment(t, db, decimal.NewFromFloat(100.00), now.AddDate(0, 0, 1), true)
	seedPartialInstallment(t, db, decimal.NewFromFloat(100.00), now.AddDate(0, 0, -1), true)

	gw := &fakeGateway{}
	report := RunDueInstallmentCharges(context.Background(), db, gw, &fakeNotifier{}, now)

	assert.Equal(t, 1, report.Considered)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, gw.chargeCalls)
}

func TestBatch_SuccessCompletesPaymentAndConfirmsOrder(t *testing.T) {
	db := setupTestDB(t)
	now := time.Date(2026, 2, 27, 9, 30, 0, 0, time.UTC)
	order, payment := seedPartialInstallment(t, db, decimal.NewFromFloat(100.00), now, true)

	gw := &fakeGateway{}
	notifier := &fakeNotifier{}
	report := RunDueInstallmentCharges(context.Background(), db, gw, notifier, now)

	assert.Equal(t, 1, report.Succeeded)
	assert.Zero(t, report.Failed)

	assert.True(t, gw.lastChargeAmt.Equal(decimal.NewFromFloat(50.00)), "charges the remaining half, got %s", gw.lastChargeAmt)
	assert.True(t, strings.HasPrefix(gw.lastChargeRef, "TXN-PAY2-"), "second charge gets its own reference, got %s", gw.lastChargeRef)

	var fresh models.Payment
	require.NoError(t, db.First(&fresh, payment.ID).Error)
	assert.Equal(t, models.PaymentStatusCompleted, fresh.Status)
	assert.True(t, fresh.PaidAmount.Equal(fresh.Amount))
	assert.True(t, fresh.RemainingAmount.IsZero())

	var freshOrder models.Order
	require.NoError(t, db.First(&freshOrder, order.ID).Error)
	assert.Equal(t, models.OrderStatusConfirmed, freshOrder.Status)

	assert.Equal(t, []string{order.OrderNumber}, notifier.confirmed)
}

func TestBatch_MissingAuthorizationIsRecordedNotCharged(t *testing.T) {
	db := setupTestDB(t)
	now := time.Date(2026, 2, 27, 9, 30, 0, 0, time.UTC)
	_, payment := seedPartialInstallment(t, db, decimal.NewFromFloat(100.00), now, false)

	gw := &fakeGateway{}
	report := RunDueInstallmentCharges(context.Background(), db, gw, &fakeNotifier{}, now)

	assert.Equal(t, 1, report.Considered)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "missing authorization")
	assert.Zero(t, gw.chargeCalls)

	// stays partial so a later run (or manual fix) can still collect
	var fresh models.Payment
	require.NoError(t, db.First(&fresh, payment.ID).Error)
	assert.Equal(t, models.PaymentStatusPartial, fresh.Status)
}

func TestBatch_DeclineMarksFailedAndNotifies(t *testing.T) {
	db := setupTestDB(t)
	now := time.Date(2026, 2, 27, 9, 30, 0, 0, time.UTC)
	order, payment := seedPartialInstallment(t, db, decimal.NewFromFloat(100.00), now, true)

	gw := &fakeGateway{chargeResult: &gateway.ChargeResult{Succeeded: false, FailureReason: "insufficient funds"}}
	notifier := &fakeNotifier{}
	report := RunDueInstallmentCharges(context.Background(), db, gw, notifier, now)

	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "insufficient funds")

	var fresh models.Payment
	require.NoError(t, db.First(&fresh, payment.ID).Error)
	assert.Equal(t, models.PaymentStatusFailed, fresh.Status)

	assert.Equal(t, []string{order.OrderNumber}, notifier.failed)
	assert.Empty(t, notifier.confirmed)
}

func TestBatch_TransientErrorLeavesPaymentPartial(t *testing.T) {
	db := setupTestDB(t)
	now := time.Date(2026, 2, 27, 9, 30, 0, 0, time.UTC)
	_, payment := seedPartialInstallment(t, db, decimal.NewFromFloat(100.00), now, true)

	gw := &fakeGateway{chargeErr: &gateway.GatewayError{Code: "GATEWAY_TIMEOUT", Message: "upstream timeout", Transient: true}}
	notifier := &fakeNotifier{}
	report := RunDueInstallmentCharges(context.Background(), db, gw, notifier, now)

	assert.Equal(t, 1, report.Failed)

	var fresh models.Payment
	require.NoError(t, db.First(&fresh, payment.ID).Error)
	assert.Equal(t, models.PaymentStatusPartial, fresh.Status, "transient errors leave the payment for the next run")
	assert.Empty(t, notifier.failed, "no failure email for a retryable error")
}

func TestBatch_OneBadRowDoesNotStopTheRest(t *testing.T) {
	db := setupTestDB(t)
	now := time.Date(2026, 2, 27, 9, 30, 0, 0, time.UTC)

	seedPartialInstallment(t, db, decimal.NewFromFloat(80.00), now, false) // will fail: no auth
	okOrder, _ := seedPartialInstallment(t, db, decimal.NewFromFloat(100.00), now, true)

	gw := &fakeGateway{}
	notifier := &fakeNotifier{}
	report := RunDueInstallmentCharges(context.Background(), db, gw, notifier, now)

	assert.Equal(t, 2, report.Considered)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, []string{okOrder.OrderNumber}, notifier.confirmed)
}

func TestBatch_NothingDue(t *testing.T) {
	db := setupTestDB(t)
	now := time.Date(2026, 2, 27, 9, 30, 0, 0, time.UTC)

	gw := &fakeGateway{}
	report := RunDueInstallmentCharges(context.Background(), db, gw, &fakeNotifier{}, now)

	assert.Zero(t, report.Considered)
	assert.Zero(t, report.Succeeded)
	assert.Zero(t, report.Failed)
	assert.Zero(t, gw.chargeCalls)
}

func TestParseDate_AnchorsInServerZone(t *testing.T) {
	got, err := parseDate("2026-03-13")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2026, 3, 13, 0, 0, 0, 0, time.Local)),
		"bare dates must land in the zone paydays are stored in, got %v", got)
}

func TestRunInstallmentsHandler_DateOverrideCoversLocalDay(t *testing.T) {
	db := setupTestDB(t)
	payday := time.Date(2026, 3, 13, 0, 0, 0, 0, time.Local)
	seedPartialInstallment(t, db, decimal.NewFromFloat(100.00), payday, true)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	gw := &fakeGateway{}
	r.POST("/internal/installments/run", RunInstallmentsHandler(db, gw, &fakeNotifier{}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/internal/installments/run?date=2026-03-13", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"succeeded":1`)
	assert.Equal(t, 1, gw.chargeCalls)
}
