package cartControllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campusthrift/thrift-api/api"
	"github.com/campusthrift/thrift-api/models"
)

type CartItemInput struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// POST /user/cart
// Adds or updates one cart line. The price is snapshotted
// here so a later listing edit does not change what's in the cart.
func UpdateCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			api.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
			return
		}
		userID := userIDVal.(string)

		var input CartItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			api.Fail(c, http.StatusBadRequest, "VALIDATION", "Invalid input: "+err.Error(), nil)
			return
		}

		var product models.Product
		if err := db.First(&product, "id = ? AND active = ?", input.ProductID, true).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				api.Fail(c, http.StatusBadRequest, "PRODUCT_NOT_FOUND", "Product does not exist", nil)
				return
			}
			api.Fail(c, http.StatusInternalServerError, "INTERNAL", "Failed to validate product", nil)
			return
		}
		if product.Stock < input.Quantity {
			api.Fail(c, http.StatusConflict, "INSUFFICIENT_STOCK", "Not enough stock for "+product.Title, nil)
			return
		}

		// One cart per user; create lazily on first add.
		var cart models.Cart
		if err := db.Where("user_id = ?", userID).First(&cart).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				api.Fail(c, http.StatusInternalServerError, "INTERNAL", "Failed to fetch cart", nil)
				return
			}
			cart = models.Cart{UserID: userID}
			if err := db.Create(&cart).Error; err != nil {
				api.Fail(c, http.StatusInternalServerError, "INTERNAL", "Failed to create cart", nil)
				return
			}
		}

		var item models.CartItem
		err := db.Where("cart_id = ? AND product_id = ?", cart.CartID, input.ProductID).First(&item).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				newItem := models.CartItem{
					CartID:       cart.CartID,
					ProductID:    product.ID,
					ProductTitle: product.Title,
					ProductImage: product.Image,
					UnitPrice:    product.Price,
					Quantity:     input.Quantity,
					AddedAt:      time.Now(),
				}
				if err := db.Create(&newItem).Error; err != nil {
					api.Fail(c, http.StatusInternalServerError, "INTERNAL", "Failed to add item to cart", nil)
					return
				}
				api.OK(c, http.StatusCreated, newItem, "")
				return
			}
			api.Fail(c, http.StatusInternalServerError, "INTERNAL", "Failed to fetch cart item", nil)
			return
		}

		item.Quantity = input.Quantity
		item.AddedAt = time.Now()
		if err := db.Save(&item).Error; err != nil {
			api.Fail(c, http.StatusInternalServerError, "INTERNAL", "Failed to update cart item", nil)
			return
		}

		api.OK(c, http.StatusOK, item, "")
	}
}

// DELETE /user/cart/:product_id
func DeleteCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			api.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
			return
		}
		userID := userIDVal.(string)
		productID := c.Param("product_id")

		var cart models.Cart
		if err := db.Where("user_id = ?", userID).First(&cart).Error; err != nil {
			api.Fail(c, http.StatusNotFound, "NOT_FOUND", "User cart not found", nil)
			return
		}

		result := db.Where("cart_id = ? AND product_id = ?", cart.CartID, productID).Delete(&models.CartItem{})
		if result.Error != nil {
			api.Fail(c, http.StatusInternalServerError, "INTERNAL", "Failed to delete item", nil)
			return
		}
		if result.RowsAffected == 0 {
			api.Fail(c, http.StatusNotFound, "NOT_FOUND", "Cart item not found", nil)
			return
		}

		api.OK(c, http.StatusOK, nil, "Cart item deleted")
	}
}

// DELETE /user/cart
func ClearUserCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			api.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
			return
		}
		userID := userIDVal.(string)

		var cart models.Cart
		if err := db.Where("user_id = ?", userID).First(&cart).Error; err != nil {
			api.Fail(c, http.StatusInternalServerError, "INTERNAL", "Failed to fetch user cart", nil)
			return
		}

		if err := db.Where("cart_id = ?", cart.CartID).Delete(&models.CartItem{}).Error; err != nil {
			api.Fail(c, http.StatusInternalServerError, "INTERNAL", "Failed to clear cart", nil)
			return
		}
		api.OK(c, http.StatusOK, nil, "Cart cleared")
	}
}

// GET /user/cart
func GetUserCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			api.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
			return
		}
		userID := userIDVal.(string)

		var cart models.Cart
		if err := db.Preload("Items").Where("user_id = ?", userID).First(&cart).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				api.OK(c, http.StatusOK, []models.CartItem{}, "")
				return
			}
			api.Fail(c, http.StatusInternalServerError, "INTERNAL", "Failed to fetch cart", nil)
			return
		}

		api.OK(c, http.StatusOK, cart.Items, "")
	}
}
