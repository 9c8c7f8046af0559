package paymentControllers

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/campusthrift/thrift-api/gateway"
	"github.com/campusthrift/thrift-api/models"
)

// fakeGateway scripts the provider for tests. The mutex makes call counts
// safe to read from tests that fire requests concurrently; initHook, when
// set, runs inside Initialize so a test can park a caller mid-flight.
type fakeGateway struct {
	mu sync.Mutex

	initErr     error
	initCalls   int
	initHook    func()
	lastInitAmt decimal.Decimal

	chargeErr     error
	chargeResult  *gateway.ChargeResult
	chargeCalls   int
	lastChargeRef string
	lastChargeAmt decimal.Decimal

	verifyOK bool
}

func (f *fakeGateway) Initialize(_ context.Context, _ string, amount decimal.Decimal, reference string, _ map[string]string) (*gateway.InitializeResult, error) {
	f.mu.Lock()
	f.initCalls++
	f.lastInitAmt = amount
	f.mu.Unlock()
	if f.initHook != nil {
		f.initHook()
	}
	if f.initErr != nil {
		return nil, f.initErr
	}
	return &gateway.InitializeResult{
		AuthorizationURL: "https://checkout.example/" + reference,
		AccessCode:       "ac_" + reference,
		Reference:        reference,
	}, nil
}

func (f *fakeGateway) ChargeAuthorization(_ context.Context, _, _ string, amount decimal.Decimal, reference string) (*gateway.ChargeResult, error) {
	f.mu.Lock()
	f.chargeCalls++
	f.lastChargeRef = reference
	f.lastChargeAmt = amount
	f.mu.Unlock()
	if f.chargeErr != nil {
		return nil, f.chargeErr
	}
	if f.chargeResult != nil {
		return f.chargeResult, nil
	}
	return &gateway.ChargeResult{Succeeded: true, GatewayReference: reference}, nil
}

func (f *fakeGateway) VerifySignature(_ []byte, _ string) bool { return f.verifyOK }

// fakeNotifier records notifications and can be told to fail.
type fakeNotifier struct {
	confirmed []string
	failed    []string
	err       error
}

func (f *fakeNotifier) PaymentConfirmed(_, orderNumber, _ string) error {
	f.confirmed = append(f.confirmed, orderNumber)
	return f.err
}

func (f *fakeNotifier) PaymentFailed(_, orderNumber, _ string) error {
	f.failed = append(f.failed, orderNumber)
	return f.err
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	// one connection: the in-memory database is per-connection, and it keeps
	// concurrent test requests honest about transaction boundaries
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Product{}, &models.Category{}, &models.Zone{},
		&models.Rider{}, &models.Cart{}, &models.CartItem{}, &models.Order{},
		&models.OrderItem{}, &models.Payment{}, &models.Delivery{}, &models.GatewayEvent{},
	))
	return db
}

var seedSeq int

// seedOrderWithPayment creates a user, zone, pending order and its payment.
func seedOrderWithPayment(t *testing.T, db *gorm.DB, amount decimal.Decimal, method models.PaymentMethod) (*models.Order, *models.Payment) {
	t.Helper()
	seedSeq++

	zone := models.Zone{Name: fmt.Sprintf("Zone %d", seedSeq), Code: fmt.Sprintf("Z%d", seedSeq), Active: true}
	require.NoError(t, db.Create(&zone).Error)

	user := models.User{ID: fmt.Sprintf("u%d", seedSeq), Email: fmt.Sprintf("student%d@knust.edu.gh", seedSeq)}
	require.NoError(t, db.Create(&user).Error)

	order := models.Order{
		OrderNumber:     fmt.Sprintf("CT-TEST-%d", seedSeq),
		UserID:          user.ID,
		ZoneID:          zone.ID,
		Status:          models.OrderStatusPending,
		TotalAmount:     amount,
		DeliveryAddress: "Room 1",
	}
	require.NoError(t, db.Create(&order).Error)

	payment := models.Payment{
		OrderID:          order.ID,
		Amount:           amount,
		PaidAmount:       decimal.Zero,
		RemainingAmount:  amount,
		Method:           method,
		Status:           models.PaymentStatusPending,
		GatewayReference: fmt.Sprintf("TXN-TEST-%d", seedSeq),
	}
	require.NoError(t, db.Create(&payment).Error)

	return &order, &payment
}
