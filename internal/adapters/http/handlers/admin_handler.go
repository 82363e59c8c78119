package handlers

import (
	"autolink-referral/internal/adapters/http/middleware"
	"autolink-referral/internal/core/services"
	"autolink-referral/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles administrative maintenance endpoints
type AdminHandler struct {
	sweepService *services.SweepService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(sweepService *services.SweepService) *AdminHandler {
	return &AdminHandler{
		sweepService: sweepService,
	}
}

// RunSweep triggers an expiration sweep for the caller's tenant. The
// scheduled sweep covers all tenants; this endpoint exists for support
// runs between schedules.
func (h *AdminHandler) RunSweep(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)

	result, err := h.sweepService.ExpireDueReferrals(c.Context(), tenantID)
	if err != nil {
		return response.InternalServerError(c, "Sweep failed")
	}

	return response.Success(c, "Sweep completed", result)
}
