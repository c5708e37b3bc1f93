// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/brandwave/licensing-backend/internal/config"
	"github.com/brandwave/licensing-backend/internal/handlers"
	"github.com/brandwave/licensing-backend/internal/middleware"
	"github.com/brandwave/licensing-backend/internal/services"
	"github.com/brandwave/licensing-backend/internal/store"
	"github.com/brandwave/licensing-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	notificationService := services.NewNotificationService(db, cfg)
	storageService, _ := services.NewStorageService(cfg)

	grantStore := store.NewPostgresStore(db, cfg.Issuance.LockTimeout())

	authService := services.NewAuthService(db, cfg)
	assetService := services.NewAssetService(db, storageService)
	grantService := services.NewGrantService(grantStore, notificationService, cfg.Issuance)
	analyticsService := services.NewAnalyticsService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	assetHandler := handlers.NewAssetHandler(assetService)
	grantHandler := handlers.NewGrantHandler(grantService)
	adminHandler := handlers.NewAdminHandler(notificationService, analyticsService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// IP asset routes
		assets := v1.Group("/assets")
		{
			assets.GET("", middleware.OptionalAuth(), assetHandler.GetAssets)
			assets.GET("/:id", middleware.OptionalAuth(), assetHandler.GetAsset)

			// Authenticated routes
			protected := assets.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", assetHandler.CreateAsset)
				protected.PUT("/:id", assetHandler.UpdateAsset)
				protected.DELETE("/:id", assetHandler.ArchiveAsset)
				protected.POST("/:id/upload", middleware.UploadRateLimit(), assetHandler.UploadAssetFile)
			}
		}

		// License grant routes
		grants := v1.Group("/grants")
		grants.Use(middleware.AuthRequired())
		{
			grants.POST("/check", grantHandler.CheckConflicts)
			grants.POST("", grantHandler.IssueGrant)
			grants.GET("", grantHandler.GetGrants)
			grants.GET("/:id", grantHandler.GetGrant)
			grants.PUT("/:id/approve", middleware.AdminRequired(), grantHandler.ApproveGrant)
			grants.PUT("/:id/terminate", grantHandler.TerminateGrant)
			grants.PUT("/:id/suspend", middleware.AdminRequired(), grantHandler.SuspendGrant)
		}

		// Analytics event ingestion
		analytics := v1.Group("/analytics")
		analytics.Use(middleware.AuthRequired())
		{
			analytics.POST("/events", adminHandler.RecordMetric)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/dashboard/stats", adminHandler.GetDashboardStats)
			admin.GET("/analytics", adminHandler.GetAnalytics)

			notifications := admin.Group("/notifications")
			{
				notifications.GET("", adminHandler.GetNotifications)
				notifications.PUT("/:id/read", adminHandler.MarkNotificationRead)
			}
		}
	}

	// Static file serving (for development)
	if cfg.Environment == "development" {
		r.Static("/uploads", "./uploads")
	}

	return r
}
