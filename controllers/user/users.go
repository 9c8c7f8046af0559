package userControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campusthrift/thrift-api/api"
	"github.com/campusthrift/thrift-api/models"
)

type UpdateUserInput struct {
	Name    *string               `json:"name"`
	Phone   *string               `json:"phone"`
	Address *models.CampusAddress `json:"address"`
}

// GET /user
func GetUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := c.Get("user_id")
		var user models.User

		if err := db.Preload("Cart.Items").Preload("Orders").First(&user, "id = ?", userID).Error; err != nil {
			api.Fail(c, http.StatusNotFound, "NOT_FOUND", "User not found", nil)
			return
		}

		api.OK(c, http.StatusOK, user, "")
	}
}

// GET /admin/users
func GetAllUsers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var users []models.User
		if err := db.
			Select("id", "email", "name", "phone", "role", "created_at").
			Order("created_at desc").
			Find(&users).Error; err != nil {
			api.Fail(c, http.StatusInternalServerError, "INTERNAL", "Failed to fetch users", nil)
			return
		}

		api.OK(c, http.StatusOK, users, "")
	}
}

// PUT /user
func UpdateUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := c.Get("user_id")
		var user models.User

		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			api.Fail(c, http.StatusNotFound, "NOT_FOUND", "User not found", nil)
			return
		}

		var input UpdateUserInput
		if err := c.ShouldBindJSON(&input); err != nil {
			api.Fail(c, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
			return
		}

		updates := make(map[string]interface{})
		if input.Name != nil {
			updates["name"] = *input.Name
		}
		if input.Phone != nil {
			updates["phone"] = *input.Phone
		}
		if input.Address != nil {
			updates["hall"] = input.Address.Hall
			updates["room"] = input.Address.Room
			updates["zone_id"] = input.Address.ZoneID
		}

		if len(updates) > 0 {
			if err := db.Model(&user).Updates(updates).Error; err != nil {
				api.Fail(c, http.StatusInternalServerError, "INTERNAL", "Failed to update user", nil)
				return
			}
		}

		api.OK(c, http.StatusOK, user, "")
	}
}
