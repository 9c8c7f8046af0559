package productControllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/campusthrift/thrift-api/api"
	"github.com/campusthrift/thrift-api/models"
)

type ProductInput struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description"`
	Brand       string          `json:"brand"`
	Size        string          `json:"size"`
	Condition   string          `json:"condition" binding:"required"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Image       string          `json:"image"`
	Stock       int             `json:"stock" binding:"required,min=1"`
	CategoryIDs []uint          `json:"category_ids"`
}

func mapCondition(s string) (models.ProductCondition, error) {
	switch strings.ToLower(s) {
	case string(models.ConditionNewWithTags):
		return models.ConditionNewWithTags, nil
	case string(models.ConditionExcellent):
		return models.ConditionExcellent, nil
	case string(models.ConditionGood):
		return models.ConditionGood, nil
	case string(models.ConditionFair):
		return models.ConditionFair, nil
	default:
		return "", errors.New("invalid condition")
	}
}

// GET /products is the listing with thrift filters
func GetProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := db.Preload("Categories").Where("active = ?", true).Order("created_at DESC")

		if cond := c.Query("condition"); cond != "" {
			mapped, err := mapCondition(cond)
			if err != nil {
				api.Fail(c, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
				return
			}
			q = q.Where("condition = ?", mapped)
		}
		if size := c.Query("size"); size != "" {
			q = q.Where("size = ?", size)
		}
		if brand := c.Query("brand"); brand != "" {
			q = q.Where("brand ILIKE ?", "%"+brand+"%")
		}
		if c.Query("in_stock") == "true" {
			q = q.Where("stock > 0")
		}

		var products []models.Product
		if err := q.Find(&products).Error; err != nil {
			api.Fail(c, http.StatusInternalServerError, "INTERNAL", "Failed to fetch products", nil)
			return
		}
		api.OK(c, http.StatusOK, products, "")
	}
}

// GET /products/:id
func GetProductByID(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var product models.Product
		if err := db.Preload("Categories").First(&product, "id = ?", c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				api.Fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
				return
			}
			api.Fail(c, http.StatusInternalServerError, "INTERNAL", "Failed to fetch product", nil)
			return
		}
		api.OK(c, http.StatusOK, product, "")
	}
}

// POST /admin/products
func CreateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ProductInput
		if err := c.ShouldBindJSON(&input); err != nil {
			api.Fail(c, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
			return
		}
		condition, err := mapCondition(input.Condition)
		if err != nil {
			api.Fail(c, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
			return
		}

		product := models.Product{
			Title:       input.Title,
			Description: input.Description,
			Brand:       input.Brand,
			Size:        input.Size,
			Condition:   condition,
			Price:       input.Price,
			Image:       input.Image,
			Stock:       input.Stock,
			Active:      true,
		}
		if len(input.CategoryIDs) > 0 {
			var categories []models.Category
			if err := db.Find(&categories, input.CategoryIDs).Error; err != nil {
				api.Fail(c, http.StatusBadRequest, "VALIDATION", "Invalid category ids", nil)
				return
			}
			product.Categories = categories
		}

		if err := db.Create(&product).Error; err != nil {
			api.Fail(c, http.StatusInternalServerError, "INTERNAL", "Failed to create product", nil)
			return
		}
		api.OK(c, http.StatusCreated, product, "Product created")
	}
}

// PUT /admin/products/:id
func UpdateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var product models.Product
		if err := db.First(&product, "id = ?", c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				api.Fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
				return
			}
			api.Fail(c, http.StatusInternalServerError, "INTERNAL", "Failed to fetch product", nil)
			return
		}

		var input struct {
			Title       *string          `json:"title"`
			Description *string          `json:"description"`
			Brand       *string          `json:"brand"`
			Size        *string          `json:"size"`
			Condition   *string          `json:"condition"`
			Price       *decimal.Decimal `json:"price"`
			Image       *string          `json:"image"`
			Stock       *int             `json:"stock"`
			Active      *bool            `json:"active"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			api.Fail(c, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
			return
		}

		updates := make(map[string]interface{})
		if input.Title != nil {
			updates["title"] = *input.Title
		}
		if input.Description != nil {
			updates["description"] = *input.Description
		}
		if input.Brand != nil {
			updates["brand"] = *input.Brand
		}
		if input.Size != nil {
			updates["size"] = *input.Size
		}
		if input.Condition != nil {
			mapped, err := mapCondition(*input.Condition)
			if err != nil {
				api.Fail(c, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
				return
			}
			updates["condition"] = mapped
		}
		if input.Price != nil {
			updates["price"] = *input.Price
		}
		if input.Image != nil {
			updates["image"] = *input.Image
		}
		if input.Stock != nil {
			updates["stock"] = *input.Stock
		}
		if input.Active != nil {
			updates["active"] = *input.Active
		}

		if len(updates) > 0 {
			if err := db.Model(&product).Updates(updates).Error; err != nil {
				api.Fail(c, http.StatusInternalServerError, "INTERNAL", "Failed to update product", nil)
				return
			}
		}
		api.OK(c, http.StatusOK, product, "Product updated")
	}
}

// DELETE /admin/products/:id soft deletes via gorm.DeletedAt
func DeleteProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		result := db.Delete(&models.Product{}, "id = ?", c.Param("id"))
		if result.Error != nil {
			api.Fail(c, http.StatusInternalServerError, "INTERNAL", "Failed to delete product", nil)
			return
		}
		if result.RowsAffected == 0 {
			api.Fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
			return
		}
		api.OK(c, http.StatusOK, nil, "Product deleted")
	}
}
