package routes

import (
	"github.com/gin-gonic/gin"

	orderControllers "github.com/campusthrift/thrift-api/controllers/order"
	"github.com/campusthrift/thrift-api/middleware"
)

func SetupOrderRoutes(r *gin.Engine, deps Deps) {
	orders := r.Group("/orders")
	{
		// websocket endpoint for real-time order status updates
		orders.GET("/ws", deps.Hub.Handler)

		authed := orders.Group("")
		authed.Use(middleware.ValidateToken)
		{
			// Create a new order from the cart
			authed.POST("/", orderControllers.PlaceOrderHandler(deps.DB, deps.Gateway))

			// Current user's orders
			authed.GET("/", orderControllers.GetUserOrdersHandler(deps.DB))

			// Single order by id or order number (owner or admin)
			authed.GET("/:orderID", orderControllers.GetOrderHandler(deps.DB))
		}
	}
}
