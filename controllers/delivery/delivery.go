package deliveryControllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/campusthrift/thrift-api/api"
	orderControllers "github.com/campusthrift/thrift-api/controllers/order"
	"github.com/campusthrift/thrift-api/models"
)

type AssignRiderRequest struct {
	RiderID uint `json:"rider_id" binding:"required"`
}

type UpdateDeliveryStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func mapDeliveryStatus(status string) (models.DeliveryStatus, error) {
	switch strings.ToLower(status) {
	case string(models.DeliveryStatusPickedUp):
		return models.DeliveryStatusPickedUp, nil
	case string(models.DeliveryStatusInTransit):
		return models.DeliveryStatusInTransit, nil
	case string(models.DeliveryStatusDelivered):
		return models.DeliveryStatusDelivered, nil
	case string(models.DeliveryStatusFailed):
		return models.DeliveryStatusFailed, nil
	default:
		return "", errors.New("invalid delivery status")
	}
}

// deliveryStep reports whether a delivery may move between two statuses.
func deliveryStep(from, to models.DeliveryStatus) bool {
	switch from {
	case models.DeliveryStatusAssigned:
		return to == models.DeliveryStatusPickedUp || to == models.DeliveryStatusFailed
	case models.DeliveryStatusPickedUp:
		return to == models.DeliveryStatusInTransit || to == models.DeliveryStatusFailed
	case models.DeliveryStatusInTransit:
		return to == models.DeliveryStatusDelivered || to == models.DeliveryStatusFailed
	default:
		return false
	}
}

// POST /admin/deliveries/:orderID/assign
// Assigns a rider to a confirmed order's delivery and moves the order into
// processing.
func AssignRiderHandler(db *gorm.DB, hub *orderControllers.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("orderID")
		var req AssignRiderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			api.Fail(c, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
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
		if order.Status != models.OrderStatusConfirmed {
			api.Fail(c, http.StatusConflict, "INVALID_TRANSITION", "Only confirmed orders can be assigned a rider", nil)
			return
		}

		var rider models.Rider
		if err := db.First(&rider, "id = ? AND active = ?", req.RiderID, true).Error; err != nil {
			api.Fail(c, http.StatusBadRequest, "RIDER_NOT_FOUND", "Rider not found or inactive", nil)
			return
		}

		var delivery models.Delivery
		if err := db.Where("order_id = ?", order.ID).First(&delivery).Error; err != nil {
			api.Fail(c, http.StatusNotFound, "NOT_FOUND", "Delivery record not found", nil)
			return
		}

		now := time.Now()
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&delivery).Updates(map[string]interface{}{
				"rider_id":    rider.ID,
				"status":      models.DeliveryStatusAssigned,
				"assigned_at": now,
			}).Error; err != nil {
				return err
			}
			return tx.Model(&order).Update("status", models.OrderStatusProcessing).Error
		})
		if err != nil {
			log.Error().Err(err).Uint("order_id", order.ID).Msg("rider assignment failed")
			api.Fail(c, http.StatusInternalServerError, "INTERNAL", "Failed to assign rider", nil)
			return
		}

		hub.BroadcastStatus(order.ID, order.OrderNumber, models.OrderStatusProcessing)
		api.OK(c, http.StatusOK, gin.H{"delivery_status": models.DeliveryStatusAssigned}, "Rider assigned")
	}
}

// PUT /admin/deliveries/:deliveryID/status
// Walks the delivery through pickup and drop-off, driving the order's
// shipped/delivered transitions.
func UpdateDeliveryStatusHandler(db *gorm.DB, hub *orderControllers.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		deliveryID := c.Param("deliveryID")
		var req UpdateDeliveryStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			api.Fail(c, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
			return
		}
		newStatus, err := mapDeliveryStatus(req.Status)
		if err != nil {
			api.Fail(c, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
			return
		}

		var delivery models.Delivery
		if err := db.First(&delivery, "id = ?", deliveryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				api.Fail(c, http.StatusNotFound, "NOT_FOUND", "Delivery not found", nil)
				return
			}
			api.Fail(c, http.StatusInternalServerError, "INTERNAL", "Failed to fetch delivery", nil)
			return
		}

		if !deliveryStep(delivery.Status, newStatus) {
			api.Fail(c, http.StatusConflict, "INVALID_TRANSITION",
				fmt.Sprintf("cannot move delivery from %s to %s", delivery.Status, newStatus), nil)
			return
		}

		var order models.Order
		if err := db.First(&order, "id = ?", delivery.OrderID).Error; err != nil {
			api.Fail(c, http.StatusInternalServerError, "INTERNAL", "Failed to fetch order", nil)
			return
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			updates := map[string]interface{}{"status": newStatus}
			if newStatus == models.DeliveryStatusDelivered {
				updates["delivered_at"] = time.Now()
			}
			if err := tx.Model(&delivery).Updates(updates).Error; err != nil {
				return err
			}

			// Delivery movement drives the order's later transitions.
			switch newStatus {
			case models.DeliveryStatusInTransit:
				if orderControllers.ValidTransition(order.Status, models.OrderStatusShipped) {
					order.Status = models.OrderStatusShipped
					return tx.Model(&order).Update("status", order.Status).Error
				}
			case models.DeliveryStatusDelivered:
				if orderControllers.ValidTransition(order.Status, models.OrderStatusDelivered) {
					order.Status = models.OrderStatusDelivered
					return tx.Model(&order).Update("status", order.Status).Error
				}
			}
			return nil
		})
		if err != nil {
			log.Error().Err(err).Uint("delivery_id", delivery.ID).Msg("delivery status update failed")
			api.Fail(c, http.StatusInternalServerError, "INTERNAL", "Failed to update delivery", nil)
			return
		}

		hub.BroadcastStatus(order.ID, order.OrderNumber, order.Status)
		api.OK(c, http.StatusOK, gin.H{"delivery_status": newStatus, "order_status": order.Status}, "Delivery updated")
	}
}

// GET /admin/deliveries?status=pending
func ListDeliveriesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var deliveries []models.Delivery
		q := db.Preload("Rider").Order("created_at DESC")
		if status := c.Query("status"); status != "" {
			q = q.Where("status = ?", strings.ToLower(status))
		}
		if err := q.Find(&deliveries).Error; err != nil {
			api.Fail(c, http.StatusInternalServerError, "INTERNAL", "Failed to fetch deliveries", nil)
			return
		}
		api.OK(c, http.StatusOK, deliveries, "")
	}
}
