package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"autolink-referral/internal/adapters/http/middleware"
	"autolink-referral/internal/adapters/http/routes"
	"autolink-referral/internal/adapters/persistence/models"
	"autolink-referral/internal/adapters/persistence/repositories"
	"autolink-referral/internal/config"
	"autolink-referral/internal/core/services"

	"github.com/gofiber/fiber/v2"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	// Note: This only migrates service-owned tables, NOT the platform's
	// customers/professionals tables
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Start the expiration sweep scheduler
	custRefRepo := repositories.NewCustomerReferralRepository(db)
	proRefRepo := repositories.NewProfessionalReferralRepository(db)
	statsRepo := repositories.NewReferralStatsRepository(db)
	statsService := services.NewStatsService(statsRepo, custRefRepo, proRefRepo)
	sweepService := services.NewSweepService(custRefRepo, proRefRepo, statsService, cfg.Referral)
	if err := sweepService.Start(); err != nil {
		log.Fatalf("❌ Failed to start expiration sweep: %v", err)
	}
	defer sweepService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "AutoLink Referral API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db and cfg for dependency injection)
	routes.Setup(app, db, cfg, sweepService)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
