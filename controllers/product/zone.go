package productControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/campusthrift/thrift-api/api"
	"github.com/campusthrift/thrift-api/models"
)

type ZoneInput struct {
	Name        string          `json:"name" binding:"required"`
	Code        string          `json:"code" binding:"required"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
}

// GET /zones lists active campus delivery zones
func GetZones(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var zones []models.Zone
		if err := db.Where("active = ?", true).Order("name").Find(&zones).Error; err != nil {
			api.Fail(c, http.StatusInternalServerError, "INTERNAL", "Failed to fetch zones", nil)
			return
		}
		api.OK(c, http.StatusOK, zones, "")
	}
}

// POST /admin/zones
func CreateZone(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ZoneInput
		if err := c.ShouldBindJSON(&input); err != nil {
			api.Fail(c, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
			return
		}
		zone := models.Zone{Name: input.Name, Code: input.Code, DeliveryFee: input.DeliveryFee, Active: true}
		if err := db.Create(&zone).Error; err != nil {
			api.Fail(c, http.StatusConflict, "CONFLICT", "Zone name or code already exists", nil)
			return
		}
		api.OK(c, http.StatusCreated, zone, "Zone created")
	}
}

// PUT /admin/zones/:id
func UpdateZone(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var zone models.Zone
		if err := db.First(&zone, "id = ?", c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				api.Fail(c, http.StatusNotFound, "NOT_FOUND", "Zone not found", nil)
				return
			}
			api.Fail(c, http.StatusInternalServerError, "INTERNAL", "Failed to fetch zone", nil)
			return
		}

		var input struct {
			Name        *string          `json:"name"`
			Code        *string          `json:"code"`
			DeliveryFee *decimal.Decimal `json:"delivery_fee"`
			Active      *bool            `json:"active"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			api.Fail(c, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
			return
		}

		updates := make(map[string]interface{})
		if input.Name != nil {
			updates["name"] = *input.Name
		}
		if input.Code != nil {
			updates["code"] = *input.Code
		}
		if input.DeliveryFee != nil {
			updates["delivery_fee"] = *input.DeliveryFee
		}
		if input.Active != nil {
			updates["active"] = *input.Active
		}

		if len(updates) > 0 {
			if err := db.Model(&zone).Updates(updates).Error; err != nil {
				api.Fail(c, http.StatusInternalServerError, "INTERNAL", "Failed to update zone", nil)
				return
			}
		}
		api.OK(c, http.StatusOK, zone, "Zone updated")
	}
}
