package routes

import (
	"lab-request-api/controllers"
	"lab-request-api/middleware"
	"lab-request-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/auth/login", controllers.Login)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Lab Request API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// Auth management
			protected.POST("/auth/logout", controllers.Logout)
			protected.GET("/auth/me", controllers.GetProfile)
			protected.PUT("/auth/password", controllers.ChangePassword)

			// Analysis type catalog (read-only, seeded)
			protected.GET("/analysis-types", controllers.GetAnalysisTypes)

			// Analysis requests
			requests := protected.Group("/requests")
			{
				// Chemists see their own requests, analysts and admins see all
				requests.GET("", controllers.ListRequests)
				requests.GET("/:id", controllers.GetRequest)

				// Only chemists create requests and edit them while pending
				requests.POST("", middleware.RequireRole(models.RoleChemist), controllers.CreateRequest)
				requests.PUT("/:id", middleware.RequireRole(models.RoleChemist), controllers.UpdateRequestByChemist)

				// Analyst workflow: claim, then progress to completed/cancelled
				requests.PUT("/:id/sample-received", middleware.RequireRole(models.RoleAnalyst), controllers.ClaimRequest)
				requests.PUT("/:id/status", middleware.RequireRole(models.RoleAnalyst), controllers.UpdateRequestByAnalyst)

				// Result files
				requests.POST("/:id/files", middleware.RequireRole(models.RoleAnalyst), controllers.UploadResultFiles)
				requests.GET("/:id/files", controllers.ListRequestFiles)
			}

			// Result file access
			files := protected.Group("/files")
			{
				files.GET("/:id/download", controllers.DownloadResultFile)
				files.DELETE("/:id", middleware.RequireRole(models.RoleAnalyst, models.RoleAdmin), controllers.DeleteResultFile)
			}

			// Dashboard
			dashboard := protected.Group("/dashboard")
			{
				dashboard.GET("/stats", controllers.GetDashboardStats)
			}

			// Notifications
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", controllers.GetNotifications)
				notifications.GET("/counter", controllers.GetNotificationCounter)
				notifications.PUT("/:id/read", controllers.MarkNotificationRead)
				notifications.PUT("/read-all", controllers.MarkAllNotificationsRead)
			}

			// Admin
			admin := protected.Group("/admin")
			admin.Use(middleware.RequireRole(models.RoleAdmin))
			{
				// User management
				admin.POST("/users", controllers.CreateUser)
				admin.GET("/users", controllers.GetUsers)
				admin.GET("/users/:id", controllers.GetUser)
				admin.PUT("/users/:id", controllers.UpdateUser)

				// Oversight
				admin.GET("/requests", controllers.GetAllRequests)
				admin.PUT("/requests/:id/cancel", controllers.CancelRequest)
				admin.GET("/analytics", controllers.GetDashboardStats)
				admin.GET("/export/requests", controllers.ExportRequests)
				admin.GET("/audit-logs", controllers.GetAuditLogs)
			}
		}
	}
}
