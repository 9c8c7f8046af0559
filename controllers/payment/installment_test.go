package paymentControllers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusthrift/thrift-api/gateway"
	"github.com/campusthrift/thrift-api/models"
)

func TestInitializeInstallment_SplitsExactly(t *testing.T) {
	db := setupTestDB(t)
	gw := &fakeGateway{}
	order, _ := seedOrderWithPayment(t, db, decimal.NewFromFloat(100.00), models.PaymentMethodInstallment)

	now := time.Now()
	payday := now.AddDate(0, 0, 14)

	result, err := InitializeInstallment(context.Background(), db, gw, order.UserID, order.ID, payday, now)
	require.NoError(t, err)

	assert.True(t, result.FirstCharge.Equal(decimal.NewFromFloat(50.00)), "got %s", result.FirstCharge)
	assert.True(t, gw.lastInitAmt.Equal(decimal.NewFromFloat(50.00)))
	assert.NotEmpty(t, result.AuthorizationURL)

	var payment models.Payment
	require.NoError(t, db.Where("order_id = ?", order.ID).First(&payment).Error)
	assert.True(t, payment.InstallmentPlan)
	assert.True(t, payment.PaidAmount.IsZero())
	assert.True(t, payment.RemainingAmount.Equal(decimal.NewFromFloat(50.00)))
	assert.True(t, result.FirstCharge.Add(payment.RemainingAmount).Equal(payment.Amount),
		"first charge plus remaining must equal the total")
	require.NotNil(t, payment.PaydayDate)
}

func TestInitializeInstallment_OddTotalStillSums(t *testing.T) {
	db := setupTestDB(t)
	gw := &fakeGateway{}
	order, _ := seedOrderWithPayment(t, db, decimal.NewFromFloat(99.99), models.PaymentMethodInstallment)

	now := time.Now()
	result, err := InitializeInstallment(context.Background(), db, gw, order.UserID, order.ID, now.AddDate(0, 0, 10), now)
	require.NoError(t, err)

	var payment models.Payment
	require.NoError(t, db.Where("order_id = ?", order.ID).First(&payment).Error)
	assert.True(t, result.FirstCharge.Add(payment.RemainingAmount).Equal(decimal.NewFromFloat(99.99)))
}

func TestInitializeInstallment_PaydayWindow(t *testing.T) {
	db := setupTestDB(t)
	gw := &fakeGateway{}
	order, _ := seedOrderWithPayment(t, db, decimal.NewFromFloat(80.00), models.PaymentMethodInstallment)

	now := time.Now()

	_, err := InitializeInstallment(context.Background(), db, gw, order.UserID, order.ID, now.AddDate(0, 0, 6), now)
	assert.ErrorIs(t, err, ErrInvalidPaydayDate, "six days out is too soon")

	_, err = InitializeInstallment(context.Background(), db, gw, order.UserID, order.ID, now.AddDate(0, 0, 31), now)
	assert.ErrorIs(t, err, ErrInvalidPaydayDate, "thirty-one days out is too late")

	assert.Zero(t, gw.initCalls, "no gateway contact on validation failure")
}

func TestInitializeInstallment_Forbidden(t *testing.T) {
	db := setupTestDB(t)
	gw := &fakeGateway{}
	order, _ := seedOrderWithPayment(t, db, decimal.NewFromFloat(80.00), models.PaymentMethodInstallment)

	now := time.Now()
	_, err := InitializeInstallment(context.Background(), db, gw, "someone-else", order.ID, now.AddDate(0, 0, 14), now)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestInitializeInstallment_OrderNotFound(t *testing.T) {
	db := setupTestDB(t)
	gw := &fakeGateway{}

	now := time.Now()
	_, err := InitializeInstallment(context.Background(), db, gw, "u1", 9999, now.AddDate(0, 0, 14), now)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestInitializeInstallment_AlreadyInitialized(t *testing.T) {
	db := setupTestDB(t)
	gw := &fakeGateway{}
	order, _ := seedOrderWithPayment(t, db, decimal.NewFromFloat(80.00), models.PaymentMethodInstallment)

	now := time.Now()
	_, err := InitializeInstallment(context.Background(), db, gw, order.UserID, order.ID, now.AddDate(0, 0, 14), now)
	require.NoError(t, err)

	_, err = InitializeInstallment(context.Background(), db, gw, order.UserID, order.ID, now.AddDate(0, 0, 14), now)
	assert.ErrorIs(t, err, ErrPaymentExists)
}

func TestInitializeInstallment_WrongMethod(t *testing.T) {
	db := setupTestDB(t)
	gw := &fakeGateway{}
	order, _ := seedOrderWithPayment(t, db, decimal.NewFromFloat(80.00), models.PaymentMethodCard)

	now := time.Now()
	_, err := InitializeInstallment(context.Background(), db, gw, order.UserID, order.ID, now.AddDate(0, 0, 14), now)
	assert.ErrorIs(t, err, ErrNotInstallmentOrder)
}

func TestInitializeInstallment_DoubleSubmitChargesOnce(t *testing.T) {
	db := setupTestDB(t)
	order, _ := seedOrderWithPayment(t, db, decimal.NewFromFloat(100.00), models.PaymentMethodInstallment)

	// Park the first request inside the gateway call so the second request
	// arrives while the plan is still being set up.
	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	gw := &fakeGateway{initHook: func() {
		entered <- struct{}{}
		<-release
	}}

	now := time.Now()
	payday := now.AddDate(0, 0, 14)

	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := InitializeInstallment(context.Background(), db, gw, order.UserID, order.ID, payday, now)
			results <- err
		}()
	}

	<-entered
	close(release)

	errs := []error{<-results, <-results}
	var winners, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, ErrPaymentExists):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, winners, "exactly one request may set up the plan")
	assert.Equal(t, 1, conflicts, "the loser must see the conflict")
	assert.Equal(t, 1, gw.initCalls, "the gateway must be charged once")

	var payment models.Payment
	require.NoError(t, db.Where("order_id = ?", order.ID).First(&payment).Error)
	assert.True(t, payment.InstallmentPlan)
	assert.True(t, payment.RemainingAmount.Equal(decimal.NewFromFloat(50.00)))
}

func TestInitializeInstallment_GatewayFailureLeavesPaymentPristine(t *testing.T) {
	db := setupTestDB(t)
	order, _ := seedOrderWithPayment(t, db, decimal.NewFromFloat(100.00), models.PaymentMethodInstallment)
	gw := &fakeGateway{initErr: &gateway.GatewayError{Code: "GATEWAY_TIMEOUT", Message: "upstream timeout", Transient: true}}

	now := time.Now()
	_, err := InitializeInstallment(context.Background(), db, gw, order.UserID, order.ID, now.AddDate(0, 0, 14), now)
	require.Error(t, err)

	// rolled back, so a retry is allowed
	var payment models.Payment
	require.NoError(t, db.Where("order_id = ?", order.ID).First(&payment).Error)
	assert.False(t, payment.InstallmentPlan)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)

	gw.initErr = nil
	_, err = InitializeInstallment(context.Background(), db, gw, order.UserID, order.ID, now.AddDate(0, 0, 14), now)
	require.NoError(t, err)
}
