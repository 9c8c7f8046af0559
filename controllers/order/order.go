package orderControllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
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

var (
	ErrCartEmpty         = errors.New("cart is empty")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrProductInactive   = errors.New("product is no longer available")
	ErrZoneNotFound      = errors.New("delivery zone not found")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

// -------- Request Structs --------

type PlaceOrderRequest struct {
	DeliveryAddress string `json:"delivery_address" binding:"required"`
	ZoneID          uint   `json:"zone_id" binding:"required"`
	PaymentMethod   string `json:"payment_method" binding:"required"` // "card", "mobile_money", "installment"
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// PlaceOrderResult carries the created order plus, for card/mobile-money
// methods, the gateway checkout URL the client is redirected to.
type PlaceOrderResult struct {
	Order            *models.Order `json:"order"`
	AuthorizationURL string        `json:"authorization_url,omitempty"`
	Reference        string        `json:"reference,omitempty"`
}

// -------- Helpers --------

func mapOrderStatus(status string) (models.OrderStatus, error) {
	switch strings.ToLower(status) {
	case string(models.OrderStatusPending):
		return models.OrderStatusPending, nil
	case string(models.OrderStatusConfirmed):
		return models.OrderStatusConfirmed, nil
	case string(models.OrderStatusProcessing):
		return models.OrderStatusProcessing, nil
	case string(models.OrderStatusShipped):
		return models.OrderStatusShipped, nil
	case string(models.OrderStatusDelivered):
		return models.OrderStatusDelivered, nil
	case string(models.OrderStatusCancelled):
		return models.OrderStatusCancelled, nil
	default:
		return "", errors.New("invalid order status")
	}
}

func mapPaymentMethod(method string) (models.PaymentMethod, error) {
	switch strings.ToLower(method) {
	case string(models.PaymentMethodCard):
		return models.PaymentMethodCard, nil
	case string(models.PaymentMethodMobileMoney):
		return models.PaymentMethodMobileMoney, nil
	case string(models.PaymentMethodInstallment):
		return models.PaymentMethodInstallment, nil
	default:
		return "", errors.New("invalid payment method")
	}
}

// generateOrderNumber builds a unique human-readable order number,
// e.g. CT-20250901143000-1a2b3c4d.
func generateOrderNumber() string {
	return "CT-" + time.Now().Format("20060102150405") + "-" + uuid.NewString()[:8]
}

func generateChargeReference() string {
	return "TXN-" + fmt.Sprint(time.Now().UnixNano()) + "-" + uuid.NewString()[:8]
}

// ValidTransition reports whether an order may move from one status to
// another. Any state before delivered may be cancelled; forward movement
// follows pending -> confirmed -> processing -> shipped -> delivered.
func ValidTransition(from, to models.OrderStatus) bool {
	if from == to {
		return false
	}
	if to == models.OrderStatusCancelled {
		return from != models.OrderStatusDelivered && from != models.OrderStatusCancelled
	}
	switch from {
	case models.OrderStatusPending:
		return to == models.OrderStatusConfirmed
	case models.OrderStatusConfirmed:
		return to == models.OrderStatusProcessing
	case models.OrderStatusProcessing:
		return to == models.OrderStatusShipped
	case models.OrderStatusShipped:
		return to == models.OrderStatusDelivered
	default:
		return false
	}
}

// -------- Core Logic --------

// PlaceOrder converts the user's cart into an order. Stock checks and
// decrements, price snapshots, cart clearing and the payment row all happen
// in one transaction; a gateway failure aborts everything.
func PlaceOrder(ctx context.Context, db *gorm.DB, gw gateway.Client, userID string, req PlaceOrderRequest) (*PlaceOrderResult, error) {
	method, err := mapPaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	var zone models.Zone
	if err := db.First(&zone, "id = ? AND active = ?", req.ZoneID, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrZoneNotFound
		}
		return nil, fmt.Errorf("load zone: %w", err)
	}

	var cart models.Cart
	if err := db.Preload("Items").Where("user_id = ?", userID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartEmpty
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(cart.Items) == 0 {
		return nil, ErrCartEmpty
	}

	result := &PlaceOrderResult{}

	err = db.Transaction(func(tx *gorm.DB) error {
		total := decimal.Zero
		var orderItems []models.OrderItem

		for _, item := range cart.Items {
			var product models.Product
			if err := store.ForUpdate(tx).
				First(&product, "id = ?", item.ProductID).Error; err != nil {
				return fmt.Errorf("lock product %d: %w", item.ProductID, err)
			}

			if !product.Active {
				return fmt.Errorf("%w: %s", ErrProductInactive, product.Title)
			}
			if product.Stock < item.Quantity {
				return fmt.Errorf("%w: %s", ErrInsufficientStock, product.Title)
			}

			// Deduct stock
			product.Stock -= item.Quantity
			if err := tx.Save(&product).Error; err != nil {
				return fmt.Errorf("update stock for product %d: %w", product.ID, err)
			}

			lineTotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
			total = total.Add(lineTotal)

			orderItems = append(orderItems, models.OrderItem{
				ProductID:    item.ProductID,
				ProductTitle: item.ProductTitle,
				ProductImage: item.ProductImage,
				UnitPrice:    item.UnitPrice,
				Quantity:     item.Quantity,
			})
		}

		order := models.Order{
			OrderNumber:     generateOrderNumber(),
			UserID:          userID,
			Items:           orderItems,
			DeliveryAddress: req.DeliveryAddress,
			ZoneID:          zone.ID,
			Status:          models.OrderStatusPending,
			TotalAmount:     total,
		}
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		// Clear cart items
		if err := tx.Where("cart_id = ?", cart.CartID).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}

		reference := generateChargeReference()

		// Card and mobile-money orders get their gateway transaction up
		// front; the payment row is only written once the gateway accepted
		// the initialize, so a timeout leaves no ambiguous state behind.
		if method != models.PaymentMethodInstallment {
			init, err := gw.Initialize(ctx, user.Email, total, reference, map[string]string{
				"order_number": order.OrderNumber,
			})
			if err != nil {
				return err
			}
			result.AuthorizationURL = init.AuthorizationURL
			result.Reference = init.Reference
			reference = init.Reference
		}

		payment := models.Payment{
			OrderID:          order.ID,
			Amount:           total,
			PaidAmount:       decimal.Zero,
			RemainingAmount:  total,
			Method:           method,
			Status:           models.PaymentStatusPending,
			GatewayReference: reference,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return fmt.Errorf("create payment: %w", err)
		}

		order.Payment = &payment
		result.Order = &order
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("order_number", result.Order.OrderNumber).
		Str("user_id", userID).
		Str("method", string(method)).
		Str("total", result.Order.TotalAmount.StringFixed(2)).
		Msg("order placed")

	return result, nil
}

// -------- Handlers --------

// POST /orders
func PlaceOrderHandler(db *gorm.DB, gw gateway.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			api.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
			return
		}
		userID := userIDVal.(string)

		var req PlaceOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			api.Fail(c, http.StatusBadRequest, "VALIDATION", "Invalid request body", err.Error())
			return
		}

		result, err := PlaceOrder(c.Request.Context(), db, gw, userID, req)
		if err != nil {
			switch {
			case errors.Is(err, ErrCartEmpty):
				api.Fail(c, http.StatusConflict, "CART_EMPTY", "Your cart is empty", nil)
			case errors.Is(err, ErrInsufficientStock):
				api.Fail(c, http.StatusConflict, "INSUFFICIENT_STOCK", err.Error(), nil)
			case errors.Is(err, ErrProductInactive):
				api.Fail(c, http.StatusConflict, "PRODUCT_INACTIVE", err.Error(), nil)
			case errors.Is(err, ErrZoneNotFound):
				api.Fail(c, http.StatusBadRequest, "ZONE_NOT_FOUND", "Delivery zone not found", nil)
			case gateway.IsTransient(err):
				api.Fail(c, http.StatusBadGateway, "GATEWAY_UNAVAILABLE", "Payment provider unreachable, try again", nil)
			default:
				log.Error().Err(err).Str("user_id", userID).Msg("place order failed")
				api.Fail(c, http.StatusInternalServerError, "INTERNAL", "Failed to place order", nil)
			}
			return
		}

		api.OK(c, http.StatusCreated, result, "Order placed successfully")
	}
}

// GET /orders/:orderID (owner or admin)
func GetOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("orderID")
		if id == "" {
			api.Fail(c, http.StatusBadRequest, "VALIDATION", "orderID is required", nil)
			return
		}

		var order models.Order
		if err := db.
			Preload("Items").
			Preload("Payment").
			Preload("Delivery").
			Preload("Zone").
			Where("id = ? OR order_number = ?", id, id).
			First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				api.Fail(c, http.StatusNotFound, "NOT_FOUND", "Order not found", nil)
				return
			}
			api.Fail(c, http.StatusInternalServerError, "INTERNAL", "Failed to fetch order", nil)
			return
		}

		userID, _ := c.Get("user_id")
		role, _ := c.Get("user_role")
		if order.UserID != userID && role != "admin" {
			api.Fail(c, http.StatusForbidden, "FORBIDDEN", "You do not own this order", nil)
			return
		}

		api.OK(c, http.StatusOK, order, "")
	}
}

// GET /orders lists the current user's orders
func GetUserOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			api.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
			return
		}

		var orders []models.Order
		if err := db.
			Where("user_id = ?", userIDVal).
			Preload("Items").
			Preload("Payment").
			Preload("Delivery").
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			api.Fail(c, http.StatusInternalServerError, "INTERNAL", "Failed to fetch orders", nil)
			return
		}
		api.OK(c, http.StatusOK, orders, "")
	}
}

// GET /admin/orders
func GetAllOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var orders []models.Order
		q := db.
			Preload("User").
			Preload("Items").
			Preload("Payment").
			Preload("Delivery").
			Preload("Zone").
			Order("created_at DESC")
		if status := c.Query("status"); status != "" {
			mapped, err := mapOrderStatus(status)
			if err != nil {
				api.Fail(c, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
				return
			}
			q = q.Where("status = ?", mapped)
		}
		if err := q.Find(&orders).Error; err != nil {
			api.Fail(c, http.StatusInternalServerError, "INTERNAL", "Failed to fetch orders", nil)
			return
		}
		api.OK(c, http.StatusOK, orders, "")
	}
}

// PUT /admin/orders/:orderID/status
// Admin-driven transitions. Confirmation
// is owned by the payment webhook and cannot be set here.
func UpdateOrderStatusHandler(db *gorm.DB, hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("orderID")
		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			api.Fail(c, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
			return
		}
		newStatus, err := mapOrderStatus(req.Status)
		if err != nil {
			api.Fail(c, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
			return
		}
		if newStatus == models.OrderStatusConfirmed {
			api.Fail(c, http.StatusConflict, "INVALID_TRANSITION", "Confirmation is driven by payment, not set manually", nil)
			return
		}

		var order models.Order
		if err := db.First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				api.Fail(c, http.StatusNotFound, "NOT_FOUND", "Order not found", nil)
				return
			}
			api.Fail(c, http.StatusInternalServerError, "INTERNAL", "Failed to fetch order", nil)
			return
		}

		if !ValidTransition(order.Status, newStatus) {
			api.Fail(c, http.StatusConflict, "INVALID_TRANSITION",
				fmt.Sprintf("cannot move order from %s to %s", order.Status, newStatus), nil)
			return
		}

		if err := db.Model(&order).Update("status", newStatus).Error; err != nil {
			api.Fail(c, http.StatusInternalServerError, "INTERNAL", "Failed to update order status", nil)
			return
		}

		hub.BroadcastStatus(order.ID, order.OrderNumber, newStatus)
		api.OK(c, http.StatusOK, gin.H{"status": newStatus}, "Order status updated")
	}
}
