package routes

import (
	"github.com/gin-gonic/gin"

	cartControllers "github.com/campusthrift/thrift-api/controllers/cart"
	productControllers "github.com/campusthrift/thrift-api/controllers/product"
	userControllers "github.com/campusthrift/thrift-api/controllers/user"
	"github.com/campusthrift/thrift-api/middleware"
)

// SetupPublicRoutes registers the catalog endpoints anyone can browse.
func SetupPublicRoutes(r *gin.Engine, deps Deps) {
	r.GET("/products", productControllers.GetProducts(deps.DB))
	r.GET("/products/:id", productControllers.GetProductByID(deps.DB))
	r.GET("/zones", productControllers.GetZones(deps.DB))
}

// SetupUserRoutes registers all "/user/*" endpoints. Requires JWT middleware.
func SetupUserRoutes(r *gin.Engine, deps Deps) {
	userGroup := r.Group("/user")
	userGroup.Use(middleware.ValidateToken)
	{
		userGroup.GET("/", userControllers.GetUser(deps.DB))
		userGroup.PUT("/", userControllers.UpdateUser(deps.DB))

		cartGroup := userGroup.Group("/cart")
		{
			cartGroup.GET("/", cartControllers.GetUserCart(deps.DB))
			cartGroup.POST("/", cartControllers.UpdateCartItem(deps.DB))
			cartGroup.DELETE("/:product_id", cartControllers.DeleteCartItem(deps.DB))
			cartGroup.DELETE("/", cartControllers.ClearUserCart(deps.DB))
		}
	}
}
