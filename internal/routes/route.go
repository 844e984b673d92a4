package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tixbay/internal/container"
	"tixbay/internal/handlers"
	"tixbay/internal/middleware"
	"tixbay/internal/models"
	"tixbay/internal/monitoring"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(appContainer *container.Container, frontendURL string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{frontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Add middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(appContainer.Logger))
	r.Use(middleware.ErrorHandler(appContainer.Logger))
	r.Use(monitoring.RequestMetrics())
	r.Use(gin.Recovery())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API version 1
	v1 := r.Group("/api/v1")
	{
		// Health check
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "OK",
				"service": "tixbay-api",
			})
		})

		// public routes
		v1.POST("/signup",
			middleware.RateLimit(appContainer.RedisClient, 5, time.Minute),
			handlers.Register(appContainer.AuthService))
		v1.POST("/login", handlers.Login(appContainer.AuthService))
		v1.POST("/resend-verification",
			middleware.RateLimit(appContainer.RedisClient, 3, time.Minute),
			handlers.ResendVerification(appContainer.AuthService))
		v1.POST("/auth/events", handlers.AuthEvents(appContainer.AuthService))
		// Logout stays outside AuthMiddleware: cookies must be cleared even
		// when the token is broken, the profile is missing, or the backend
		// is down.
		v1.POST("/logout", handlers.Logout(appContainer.AuthService))

		// public catalog
		v1.GET("/events", handlers.ListEvents(appContainer.CatalogService))
		v1.GET("/events/:id", handlers.GetEventByID(appContainer.CatalogService))
		v1.GET("/events/:id/promo-codes/:code", handlers.CheckPromo(appContainer.PurchaseService))
		v1.GET("/search", handlers.SearchEvents(appContainer.CatalogService))

		// live change streams
		v1.GET("/live/:collection", handlers.LiveChanges(appContainer.Feed))
	}

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(appContainer.AuthService, appContainer.Logger))
	{
		protected.GET("/profile", handlers.GetProfile(appContainer.AuthService))

		protected.GET("/my-tickets", handlers.MyTickets(appContainer.PurchaseService))
		protected.POST("/purchases", handlers.PurchaseTickets(appContainer.PurchaseService))
		protected.POST("/tickets/:id/transfer", handlers.TransferTicket(appContainer.PurchaseService))
	}

	organizerRoutes := protected.Group("/organizer")
	organizerRoutes.Use(middleware.RequireRole(models.RoleOrganizer))
	{
		organizerRoutes.GET("/events", handlers.MyEvents(appContainer.OrganizerService))
		organizerRoutes.POST("/events", handlers.CreateEvent(appContainer.OrganizerService))
		organizerRoutes.PATCH("/events/:id/status", handlers.UpdateEventStatus(appContainer.OrganizerService))
		organizerRoutes.DELETE("/events/:id", handlers.DeleteEvent(appContainer.OrganizerService))
	}

	return r
}
