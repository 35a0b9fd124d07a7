package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/cinepass/internal/container"
	"github.com/joshua-takyi/cinepass/internal/handlers"
	"github.com/joshua-takyi/cinepass/internal/middleware"
	"github.com/joshua-takyi/cinepass/internal/models"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	cfg := container.Config
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendOrigin},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(gin.Recovery())

	secure := cfg.IsProduction()

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, models.SuccessResponse(gin.H{
				"status":  "OK",
				"service": "cinepass-api",
			}, "healthy"))
		})

		v1.POST("/auth/otp", handlers.RequestOTP(container.UserService))
		v1.POST("/auth/otp/verify", handlers.VerifyOTP(container.UserService, secure))
		v1.POST("/auth/logout", handlers.Logout(secure))

		// The token is its own credential, so gate scanners need no session.
		v1.POST("/bookings/verify-qr", handlers.VerifyQR(container.VerificationService))
		v1.GET("/bookings/verify-qr", handlers.VerifyQR(container.VerificationService))

		v1.POST("/webhooks/stripe", handlers.StripeWebhook(container.PaymentService))
	}

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(container.UserService, container.Logger))
	{
		protected.GET("/profile", handlers.GetProfile(container.UserService))

		bookingRoutes := protected.Group("/bookings/:id")
		bookingRoutes.POST("/qr-signature", handlers.IssueQRSignature(container.TicketService, container.VerificationService))
		bookingRoutes.GET("/qr", handlers.GetTicketQR(container.TicketService))
		bookingRoutes.POST("/payment-intent", handlers.CreatePaymentIntent(container.PaymentService))
	}

	return r
}
