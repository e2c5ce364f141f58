package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/karthikeyan-cs/event-management-backend/config"
	"github.com/karthikeyan-cs/event-management-backend/database"
	"github.com/karthikeyan-cs/event-management-backend/internal/admin"
	"github.com/karthikeyan-cs/event-management-backend/internal/auditlog"
	"github.com/karthikeyan-cs/event-management-backend/internal/auth"
	"github.com/karthikeyan-cs/event-management-backend/internal/category"
	"github.com/karthikeyan-cs/event-management-backend/internal/event"
	"github.com/karthikeyan-cs/event-management-backend/internal/notification"
	"github.com/karthikeyan-cs/event-management-backend/internal/payment"
	"github.com/karthikeyan-cs/event-management-backend/internal/reports"
	"github.com/karthikeyan-cs/event-management-backend/middleware"

	_ "github.com/karthikeyan-cs/event-management-backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Setup wires every module and returns the configured engine. It also
// returns the notification service so main can hand it to the Kafka
// consumer goroutine.
func Setup(cfg *config.Config) (*gin.Engine, notification.Service) {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimiter())
	api.Use(middleware.AuditMiddleware())

	// ========== Audit Log ==========
	auditRepo := auditlog.NewRepository(database.DB)
	auditSvc := auditlog.NewService(auditRepo)
	auditHandler := auditlog.NewHandler(auditSvc)

	// ========== Auth ==========
	authRepo := auth.NewRepository(database.DB)
	authSvc := auth.NewService(authRepo, cfg)
	authHandler := auth.NewHandler(authSvc)

	usersGroup := api.Group("/users")
	{
		usersGroup.POST("/signup", authHandler.Register)
		usersGroup.POST("/login", authHandler.Login)
	}

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/forgot-password", authHandler.ForgotPassword)
		authGroup.POST("/reset-password", authHandler.ResetPassword)
		authGroup.GET("/public-roles", authHandler.GetPublicRoles)
		authGroup.POST("/logout", middleware.AuthMiddleware(cfg, authSvc), authHandler.Logout)
		authGroup.GET("/me", middleware.AuthMiddleware(cfg, authSvc), authHandler.Me)
	}

	// ========== Category ==========
	categoryRepo := category.NewRepository(database.DB)
	categorySvc := category.NewService(categoryRepo, auditSvc)
	categoryHandler := category.NewHandler(categorySvc)

	// ========== Notification ==========
	notificationRepo := notification.NewRepository(database.DB)
	notifSvc := notification.NewService(notificationRepo)

	// ========== Event ==========
	eventRepo := event.NewRepository(database.DB)
	eventSvc := event.NewService(eventRepo, authRepo, categoryRepo, auditSvc)
	eventSvc.NotifSvc = notifSvc
	eventSvc.IncludePrivateInListing = cfg.ListIncludePrivate
	eventHandler := event.NewHandler(eventSvc)

	// Public event browsing
	eventRoutes := api.Group("/events")
	{
		eventRoutes.GET("", eventHandler.ListEvents)
		eventRoutes.GET("/:id", eventHandler.GetEventByID)
		eventRoutes.GET("/user/:userId", eventHandler.GetEventsByOrganizer)
	}

	api.GET("/categories", categoryHandler.GetCategories)

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg, authSvc))

	// Authenticated event lifecycle (ownership enforced in the service)
	eventWrite := protected.Group("/events")
	eventWrite.Use(middleware.RBACMiddleware(middleware.RoleAdmin, middleware.RoleOrganizer))
	{
		eventWrite.POST("/create", eventHandler.CreateEvent)
		eventWrite.PUT("/update/:id", eventHandler.UpdateEvent)
		eventWrite.DELETE("/delete/:id", eventHandler.DeleteEvent)
	}

	// Attendee registration, open to every authenticated role
	attendeeRoutes := protected.Group("/events")
	{
		attendeeRoutes.POST("/:id/register", eventHandler.RegisterAttendee)
	}

	attendeeList := protected.Group("/events")
	attendeeList.Use(middleware.RBACMiddleware(middleware.RoleAdmin, middleware.RoleOrganizer))
	{
		attendeeList.GET("/:id/attendees", eventHandler.ListAttendees)
	}

	// ========== Admin ==========
	adminRepo := admin.NewRepository(database.DB)
	adminSvc := admin.NewService(adminRepo, auditSvc)
	adminHandler := admin.NewHandler(adminSvc)

	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(middleware.RBACMiddleware(middleware.RoleAdmin))
	{
		approvalRoutes := adminRoutes.Group("")
		approvalRoutes.Use(middleware.PermissionMiddleware(authRepo, "event:approve"))
		{
			approvalRoutes.GET("/pending-events", adminHandler.ListPendingEvents)
			approvalRoutes.POST("/approve-event/:eventId", adminHandler.DecideEvent)
		}

		userRoutes := adminRoutes.Group("/users")
		userRoutes.Use(middleware.PermissionMiddleware(authRepo, "user:manage"))
		{
			userRoutes.GET("", adminHandler.ListUsers)
			userRoutes.GET("/:id", adminHandler.GetUser)
			userRoutes.PATCH("/:id/status", adminHandler.UpdateUserStatus)
			userRoutes.POST("/:id/reset-password", adminHandler.ResetUserPassword)
			userRoutes.DELETE("/:id", adminHandler.DeleteUser)
		}

		permissionRoutes := adminRoutes.Group("/permissions")
		{
			permissionRoutes.POST("", adminHandler.CreatePermission)
			permissionRoutes.GET("", adminHandler.ListPermissions)
			permissionRoutes.DELETE("/:id", adminHandler.DeletePermission)
		}

		grantRoutes := adminRoutes.Group("/role-permissions")
		{
			grantRoutes.POST("", adminHandler.GrantPermission)
			grantRoutes.DELETE("", adminHandler.RevokePermission)
			grantRoutes.GET("/:roleId", adminHandler.ListRolePermissions)
		}

		categoryAdmin := adminRoutes.Group("/categories")
		categoryAdmin.Use(middleware.PermissionMiddleware(authRepo, "category:manage"))
		{
			categoryAdmin.POST("", categoryHandler.CreateCategory)
			categoryAdmin.PUT("/:id", categoryHandler.UpdateCategory)
			categoryAdmin.DELETE("/:id", categoryHandler.DeleteCategory)
		}

		auditRoutes := adminRoutes.Group("/auditlogs")
		{
			auditRoutes.GET("", auditHandler.GetAuditLogs)
			auditRoutes.GET("/:id", auditHandler.GetAuditLogByID)
		}
	}

	// ========== Payments ==========
	paymentRepo := payment.NewRepository(database.DB)
	paymentSvc := payment.NewService(paymentRepo, eventSvc, cfg, auditSvc)
	paymentHandler := payment.NewHandler(paymentSvc)

	paymentRoutes := protected.Group("/payments")
	{
		paymentRoutes.POST("/order", paymentHandler.CreateOrder)
		paymentRoutes.POST("/verify", paymentHandler.VerifyPayment)
		paymentRoutes.GET("/my", paymentHandler.GetMyPayments)
	}

	// ========== Notifications ==========
	notificationHandler := notification.NewHandler(notifSvc)

	notificationRoutes := protected.Group("/notifications")
	{
		notificationRoutes.GET("", notificationHandler.ListNotifications)
		notificationRoutes.PUT("/:id/read", notificationHandler.MarkAsRead)
		notificationRoutes.PUT("/read-all", notificationHandler.MarkAllAsRead)
		notificationRoutes.GET("/stream", notificationHandler.StreamNotifications)
		notificationRoutes.POST("/device-tokens", notificationHandler.RegisterDeviceToken)
		notificationRoutes.DELETE("/device-tokens", notificationHandler.RemoveDeviceToken)
	}

	attendeeEmail := protected.Group("/events")
	attendeeEmail.Use(middleware.RBACMiddleware(middleware.RoleAdmin, middleware.RoleOrganizer))
	{
		attendeeEmail.POST("/:id/attendees/email", notificationHandler.EmailAttendees)
	}

	// ========== Reports ==========
	reportsRepo := reports.NewReportRepository(database.DB)
	reportsExporter := reports.NewReportExporter()
	reportsSvc := reports.NewReportService(reportsRepo, eventSvc, reportsExporter, auditSvc)
	reportsHandler := reports.NewHandler(reportsSvc)

	reportRoutes := protected.Group("/reports")
	reportRoutes.Use(middleware.RBACMiddleware(middleware.RoleAdmin, middleware.RoleOrganizer))
	{
		reportRoutes.GET("/events/:id/attendees", reportsHandler.ExportAttendees)

		summaryRoutes := reportRoutes.Group("")
		summaryRoutes.Use(
			middleware.RBACMiddleware(middleware.RoleAdmin),
			middleware.PermissionMiddleware(authRepo, "report:export"),
		)
		{
			summaryRoutes.GET("/events", reportsHandler.ExportEventSummary)
		}
	}

	return r, notifSvc
}
