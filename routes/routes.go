package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	orderControllers "github.com/campusthrift/thrift-api/controllers/order"
	"github.com/campusthrift/thrift-api/gateway"
	"github.com/campusthrift/thrift-api/notify"
)

// Deps is everything the route handlers need, constructed once in main.
type Deps struct {
	DB       *gorm.DB
	Gateway  gateway.Client
	Notifier notify.Notifier
	Hub      *orderControllers.Hub
}

// SetupRoutes is the single entry-point wiring all route groups.
func SetupRoutes(r *gin.Engine, deps Deps) {
	// Public catalog routes (no auth)
	SetupPublicRoutes(r, deps)

	// User routes (JWT-protected)
	SetupUserRoutes(r, deps)

	// Order + payment routes
	SetupOrderRoutes(r, deps)
	SetupPaymentRoutes(r, deps)

	// Admin routes (API-key-protected)
	SetupAdminRoutes(r, deps)
}
