package handlers

import (
	"autolink-referral/internal/adapters/http/middleware"
	"autolink-referral/internal/core/domain"
	"autolink-referral/internal/core/services"
	"autolink-referral/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// StatsHandler handles referral stats endpoints
type StatsHandler struct {
	statsService *services.StatsService
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(statsService *services.StatsService) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
	}
}

// GetCustomerStats returns a customer's referral rollup
func (h *StatsHandler) GetCustomerStats(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)

	stats, err := h.statsService.GetStats(c.Context(), tenantID, domain.EntityCustomer, c.Params("customerId"))
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Stats retrieved successfully", fiber.Map{
		"stats": stats,
	})
}

// GetProfessionalStats returns a professional's referral rollup
func (h *StatsHandler) GetProfessionalStats(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)

	stats, err := h.statsService.GetStats(c.Context(), tenantID, domain.EntityProfessional, c.Params("professionalId"))
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Stats retrieved successfully", fiber.Map{
		"stats": stats,
	})
}

// RefreshStats forces a recomputation of an entity's rollup (Admin only)
func (h *StatsHandler) RefreshStats(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)
	entityType := domain.EntityType(c.Params("entityType"))
	entityID := c.Params("entityId")

	if err := h.statsService.Refresh(c.Context(), tenantID, entityType, entityID); err != nil {
		return response.DomainError(c, err)
	}

	stats, err := h.statsService.GetStats(c.Context(), tenantID, entityType, entityID)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Stats refreshed successfully", fiber.Map{
		"stats": stats,
	})
}
