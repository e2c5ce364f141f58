package main

import (
	"context"
	"fmt"
	"log"

	"github.com/karthikeyan-cs/event-management-backend/config"
	"github.com/karthikeyan-cs/event-management-backend/database"
	"github.com/karthikeyan-cs/event-management-backend/internal/auditlog"
	"github.com/karthikeyan-cs/event-management-backend/internal/auth"
	"github.com/karthikeyan-cs/event-management-backend/internal/category"
	"github.com/karthikeyan-cs/event-management-backend/internal/event"
	"github.com/karthikeyan-cs/event-management-backend/internal/notification"
	"github.com/karthikeyan-cs/event-management-backend/internal/payment"
	"github.com/karthikeyan-cs/event-management-backend/routes"
	"github.com/karthikeyan-cs/event-management-backend/utils"
)

// @title Event Management API
// @version 1.0
// @description Event lifecycle, attendance and access-control backend.
// @BasePath /api/v1
func main() {
	cfg := config.Load()
	db := database.Connect(cfg)

	if err := utils.InitRedis(); err != nil {
		log.Printf("⚠️ Redis init failed: %v (live notifications and password reset disabled)", err)
	}

	utils.InitializeKafka()

	log.Println("🔄 Initializing Firebase...")
	if err := utils.InitFirebase(); err != nil {
		log.Printf("⚠️ Firebase initialization failed: %v", err)
		log.Println("ℹ️ Continuing without Firebase (push notifications disabled)")
	} else if utils.IsFCMEnabled() {
		log.Println("✅ Firebase and FCM initialized")
	} else {
		log.Printf("⚠️ Firebase initialized but FCM client unavailable: %v", utils.GetInitError())
	}

	log.Println("🔄 Running database migrations...")
	if err := db.AutoMigrate(
		&auth.UserRole{},
		&auth.User{},
		&auth.Permission{},
		&auth.RolePermission{},
		&category.Category{},
		&event.Event{},
		&event.EventAttendee{},
		&notification.InAppNotification{},
		&notification.NotificationLog{},
		&notification.FCMDeviceToken{},
		&auditlog.AuditLog{},
		&payment.PaymentOrder{},
	); err != nil {
		panic(fmt.Sprintf("❌ DB AutoMigrate failed: %v", err))
	}
	log.Println("✅ Database migrations completed")

	if err := auth.SeedUserRoles(db); err != nil {
		panic(fmt.Sprintf("❌ Failed to seed roles: %v", err))
	}
	if err := auth.SeedAdminUser(db); err != nil {
		panic(fmt.Sprintf("❌ Failed to seed admin user: %v", err))
	}
	if err := auth.SeedPermissions(db); err != nil {
		panic(fmt.Sprintf("❌ Failed to seed permissions: %v", err))
	}
	if err := category.SeedCategories(db); err != nil {
		panic(fmt.Sprintf("❌ Failed to seed categories: %v", err))
	}

	router, notifSvc := routes.Setup(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go notification.StartKafkaConsumer(ctx, notifSvc)

	fmt.Printf("🚀 Server starting on port %s\n", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		panic(fmt.Sprintf("Failed to start server: %v", err))
	}
}
