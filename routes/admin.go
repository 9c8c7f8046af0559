package routes

import (
	"github.com/gin-gonic/gin"

	adminControllers "github.com/campusthrift/thrift-api/controllers/admin"
	deliveryControllers "github.com/campusthrift/thrift-api/controllers/delivery"
	orderControllers "github.com/campusthrift/thrift-api/controllers/order"
	productControllers "github.com/campusthrift/thrift-api/controllers/product"
	userControllers "github.com/campusthrift/thrift-api/controllers/user"
	"github.com/campusthrift/thrift-api/middleware"
)

// SetupAdminRoutes registers all "/admin/*" endpoints. Requires API-key middleware.
func SetupAdminRoutes(r *gin.Engine, deps Deps) {
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.ValidateAPIKey)
	{
		adminGroup.GET("/users", userControllers.GetAllUsers(deps.DB))

		orderAdmin := adminGroup.Group("/orders")
		{
			orderAdmin.GET("", orderControllers.GetAllOrdersHandler(deps.DB))
			orderAdmin.PUT("/:orderID/status", orderControllers.UpdateOrderStatusHandler(deps.DB, deps.Hub))
			orderAdmin.GET("/export-excel", adminControllers.ExportOrdersToExcel(deps.DB))
		}

		productAdmin := adminGroup.Group("/products")
		{
			productAdmin.POST("", productControllers.CreateProduct(deps.DB))
			productAdmin.PUT("/:id", productControllers.UpdateProduct(deps.DB))
			productAdmin.DELETE("/:id", productControllers.DeleteProduct(deps.DB))
		}

		zoneAdmin := adminGroup.Group("/zones")
		{
			zoneAdmin.POST("", productControllers.CreateZone(deps.DB))
			zoneAdmin.PUT("/:id", productControllers.UpdateZone(deps.DB))
		}

		deliveryAdmin := adminGroup.Group("/deliveries")
		{
			deliveryAdmin.GET("", deliveryControllers.ListDeliveriesHandler(deps.DB))
			deliveryAdmin.POST("/:orderID/assign", deliveryControllers.AssignRiderHandler(deps.DB, deps.Hub))
			deliveryAdmin.PUT("/:deliveryID/status", deliveryControllers.UpdateDeliveryStatusHandler(deps.DB, deps.Hub))
		}
	}
}
