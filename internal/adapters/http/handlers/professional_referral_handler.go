package handlers

import (
	"time"

	"autolink-referral/internal/adapters/http/middleware"
	"autolink-referral/internal/core/domain"
	"autolink-referral/internal/core/services"
	"autolink-referral/internal/pkg/pagination"
	"autolink-referral/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// ProfessionalReferralHandler handles professional hand-off endpoints
type ProfessionalReferralHandler struct {
	referralService *services.ProfessionalReferralService
}

// NewProfessionalReferralHandler creates a new professional referral handler
func NewProfessionalReferralHandler(referralService *services.ProfessionalReferralService) *ProfessionalReferralHandler {
	return &ProfessionalReferralHandler{
		referralService: referralService,
	}
}

// CreateHandOffRequest represents hand-off creation body
type CreateHandOffRequest struct {
	SourceProfessionalID string              `json:"source_professional_id"`
	TargetProfessionalID string              `json:"target_professional_id"`
	CustomerID           string              `json:"customer_id"`
	Reason               string              `json:"reason"`
	ServiceNeeded        string              `json:"service_needed"`
	Notes                string              `json:"notes"`
	Priority             domain.Priority     `json:"priority"`
	DiscountType         domain.DiscountType `json:"discount_type"`
	DiscountValue        *decimal.Decimal    `json:"discount_value"`
	DiscountCode         string              `json:"discount_code"`
}

// Create handles opening a hand-off
func (h *ProfessionalReferralHandler) Create(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)

	var req CreateHandOffRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.SourceProfessionalID == "" || req.TargetProfessionalID == "" || req.CustomerID == "" {
		return response.BadRequest(c, "source_professional_id, target_professional_id and customer_id are required")
	}

	ref, err := h.referralService.CreateHandOff(c.Context(), tenantID,
		req.SourceProfessionalID, req.TargetProfessionalID, req.CustomerID,
		services.CreateHandOffInput{
			Reason:        req.Reason,
			ServiceNeeded: req.ServiceNeeded,
			Notes:         req.Notes,
			Priority:      req.Priority,
			DiscountType:  req.DiscountType,
			DiscountValue: req.DiscountValue,
			DiscountCode:  req.DiscountCode,
		})
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Created(c, "Referral created successfully", fiber.Map{
		"referral": ref,
	})
}

// GetByID handles fetching a single hand-off
func (h *ProfessionalReferralHandler) GetByID(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)

	ref, err := h.referralService.GetHandOff(c.Context(), tenantID, c.Params("id"))
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Referral retrieved successfully", fiber.Map{
		"referral": ref,
	})
}

// List handles listing hand-offs where the professional is either side
func (h *ProfessionalReferralHandler) List(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)
	professionalID := c.Query("professional_id")
	if professionalID == "" {
		return response.BadRequest(c, "professional_id is required")
	}

	params := pagination.GetParams(c)
	refs, total, err := h.referralService.ListHandOffs(c.Context(), tenantID, professionalID, params.Offset, params.Limit)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Referrals retrieved successfully",
		pagination.NewResponse(refs, params, total))
}

// Accept handles taking a pending hand-off
func (h *ProfessionalReferralHandler) Accept(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)

	ref, err := h.referralService.AcceptHandOff(c.Context(), tenantID, c.Params("id"))
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Referral accepted", fiber.Map{
		"referral": ref,
	})
}

// DeclineHandOffRequest represents decline body
type DeclineHandOffRequest struct {
	Reason string `json:"reason"`
}

// Decline handles rejecting a pending hand-off
func (h *ProfessionalReferralHandler) Decline(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)

	var req DeclineHandOffRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	ref, err := h.referralService.DeclineHandOff(c.Context(), tenantID, c.Params("id"), req.Reason)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Referral declined", fiber.Map{
		"referral": ref,
	})
}

// Complete handles closing an accepted hand-off as done
func (h *ProfessionalReferralHandler) Complete(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)

	ref, err := h.referralService.CompleteHandOff(c.Context(), tenantID, c.Params("id"))
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Referral completed", fiber.Map{
		"referral": ref,
	})
}

// SetDiscountRequest represents discount offer body
type SetDiscountRequest struct {
	DiscountType  domain.DiscountType `json:"discount_type"`
	DiscountValue *decimal.Decimal    `json:"discount_value"`
	DiscountCode  string              `json:"discount_code"`
}

// SetDiscount handles attaching or clearing the discount offer
func (h *ProfessionalReferralHandler) SetDiscount(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)

	var req SetDiscountRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	ref, err := h.referralService.SetDiscount(c.Context(), tenantID, c.Params("id"),
		req.DiscountType, req.DiscountValue, req.DiscountCode)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Discount updated", fiber.Map{
		"referral": ref,
	})
}

// MarkDiscountUsed handles recording redemption of the offered discount
func (h *ProfessionalReferralHandler) MarkDiscountUsed(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)

	ref, err := h.referralService.MarkDiscountUsed(c.Context(), tenantID, c.Params("id"))
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Discount marked as used", fiber.Map{
		"referral": ref,
	})
}

// SetFollowUpRequest represents follow-up scheduling body
type SetFollowUpRequest struct {
	Date  time.Time `json:"date"`
	Notes string    `json:"notes"`
}

// SetFollowUp handles scheduling a follow-up
func (h *ProfessionalReferralHandler) SetFollowUp(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)

	var req SetFollowUpRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Date.IsZero() {
		return response.BadRequest(c, "date is required")
	}

	ref, err := h.referralService.SetFollowUp(c.Context(), tenantID, c.Params("id"), req.Date, req.Notes)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Follow-up scheduled", fiber.Map{
		"referral": ref,
	})
}

// ClearFollowUp handles removing a scheduled follow-up
func (h *ProfessionalReferralHandler) ClearFollowUp(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)

	ref, err := h.referralService.ClearFollowUp(c.Context(), tenantID, c.Params("id"))
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Follow-up cleared", fiber.Map{
		"referral": ref,
	})
}
