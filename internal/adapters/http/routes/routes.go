package routes

import (
	"time"

	"autolink-referral/internal/adapters/http/handlers"
	"autolink-referral/internal/adapters/http/middleware"
	"autolink-referral/internal/adapters/persistence/repositories"
	"autolink-referral/internal/config"
	"autolink-referral/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Setup configures all routes for the application. The sweep service is
// constructed in main so its scheduler lifecycle is tied to the process,
// not the router.
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config, sweepService *services.SweepService) {
	// Initialize repositories
	codeRepo := repositories.NewReferralCodeRepository(db)
	custRefRepo := repositories.NewCustomerReferralRepository(db)
	proRefRepo := repositories.NewProfessionalReferralRepository(db)
	statsRepo := repositories.NewReferralStatsRepository(db)
	dirRepo := repositories.NewDirectoryRepository(db)

	// Initialize services
	statsService := services.NewStatsService(statsRepo, custRefRepo, proRefRepo)
	codeService := services.NewReferralCodeService(codeRepo, dirRepo, cfg.Referral)
	custRefService := services.NewCustomerReferralService(db, custRefRepo, codeRepo, dirRepo, codeService, statsService, cfg.Referral)
	proRefService := services.NewProfessionalReferralService(db, proRefRepo, dirRepo, statsService, cfg.Referral)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	codeHandler := handlers.NewReferralCodeHandler(codeService)
	custRefHandler := handlers.NewCustomerReferralHandler(custRefService)
	proRefHandler := handlers.NewProfessionalReferralHandler(proRefService)
	statsHandler := handlers.NewStatsHandler(statsService)
	adminHandler := handlers.NewAdminHandler(sweepService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// API v1 group (all routes require a platform token)
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)
	apiV1.Use(middleware.AuthMiddleware(cfg))

	// Referral code routes
	codeRoutes := apiV1.Group("/codes")
	setupCodeRoutes(codeRoutes, codeHandler)

	// Customer referral routes
	custRefRoutes := apiV1.Group("/referrals/customer")
	setupCustomerReferralRoutes(custRefRoutes, custRefHandler)

	// Professional referral routes
	proRefRoutes := apiV1.Group("/referrals/professional")
	setupProfessionalReferralRoutes(proRefRoutes, proRefHandler)

	// Stats routes
	statsRoutes := apiV1.Group("/stats")
	setupStatsRoutes(statsRoutes, statsHandler)

	// Admin maintenance routes
	adminRoutes := apiV1.Group("/admin")
	adminRoutes.Use(middleware.AdminOnly())
	adminRoutes.Post("/sweep", adminHandler.RunSweep)
	adminRoutes.Post("/stats/:entityType/:entityId/refresh", statsHandler.RefreshStats)
}

// setupCodeRoutes configures referral code routes
func setupCodeRoutes(router fiber.Router, handler *handlers.ReferralCodeHandler) {
	router.Post("/customer/:customerId", handler.EnsureCustomerCode)
	router.Post("/professional/:professionalId", handler.EnsureProfessionalCode)
	router.Get("/validate/:code", handler.ValidateCode)

	// Campaign codes (Admin only)
	router.Post("/campaign", middleware.AdminOnly(), handler.CreateCampaignCode)
}

// setupCustomerReferralRoutes configures customer referral routes
func setupCustomerReferralRoutes(router fiber.Router, handler *handlers.CustomerReferralHandler) {
	router.Post("/", middleware.WriteRateLimiter(), handler.Create)
	router.Get("/", handler.List)
	router.Get("/:id", handler.GetByID)
	router.Put("/:id/contacted", handler.MarkContacted)
	router.Put("/:id/convert", middleware.StaffOrAdmin(), handler.Convert)
	router.Put("/:id/cancel", handler.Cancel)

	// Reward sub-machine (Staff/Admin)
	router.Put("/:id/reward/approve", middleware.StaffOrAdmin(), handler.ApproveReward)
	router.Put("/:id/reward/pay", middleware.StaffOrAdmin(), handler.MarkRewardPaid)
	router.Put("/:id/reward/cancel", middleware.StaffOrAdmin(), handler.CancelReward)
}

// setupProfessionalReferralRoutes configures professional hand-off routes
func setupProfessionalReferralRoutes(router fiber.Router, handler *handlers.ProfessionalReferralHandler) {
	router.Post("/", middleware.WriteRateLimiter(), handler.Create)
	router.Get("/", handler.List)
	router.Get("/:id", handler.GetByID)
	router.Put("/:id/accept", handler.Accept)
	router.Put("/:id/decline", handler.Decline)
	router.Put("/:id/complete", handler.Complete)
	router.Put("/:id/discount", handler.SetDiscount)
	router.Put("/:id/discount/used", handler.MarkDiscountUsed)
	router.Put("/:id/follow-up", handler.SetFollowUp)
	router.Delete("/:id/follow-up", handler.ClearFollowUp)
}

// setupStatsRoutes configures stats routes. Rollups tolerate brief
// staleness, so reads carry a short private cache.
func setupStatsRoutes(router fiber.Router, handler *handlers.StatsHandler) {
	router.Use(middleware.PrivateCacheHeaders(30 * time.Second))
	router.Get("/customer/:customerId", handler.GetCustomerStats)
	router.Get("/professional/:professionalId", handler.GetProfessionalStats)
}
