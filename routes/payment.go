package routes

import (
	"github.com/gin-gonic/gin"

	paymentControllers "github.com/campusthrift/thrift-api/controllers/payment"
	"github.com/campusthrift/thrift-api/middleware"
)

func SetupPaymentRoutes(r *gin.Engine, deps Deps) {
	payments := r.Group("/payments")
	{
		// Webhook endpoint: the gateway signs the raw body, so it is
		// buffered before the handler verifies and parses it.
		payments.POST("/webhook",
			middleware.CaptureRawBody,
			paymentControllers.WebhookHandler(deps.DB, deps.Gateway, deps.Notifier, deps.Hub),
		)

		authed := payments.Group("")
		authed.Use(middleware.ValidateToken)
		{
			authed.POST("/installments/initialize", paymentControllers.InitializeInstallmentHandler(deps.DB, deps.Gateway))
			authed.GET("/verify/:reference", paymentControllers.VerifyPaymentHandler(deps.DB))
		}
	}

	// Batch trigger for due second installments; called by the external
	// scheduler, not end users.
	internal := r.Group("/internal")
	internal.Use(middleware.ValidateAPIKey)
	{
		internal.POST("/installments/run", paymentControllers.RunInstallmentsHandler(deps.DB, deps.Gateway, deps.Notifier))
	}
}
