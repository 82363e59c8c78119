package handlers

import (
	"time"

	"autolink-referral/internal/adapters/http/middleware"
	"autolink-referral/internal/core/services"
	"autolink-referral/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// ReferralCodeHandler handles referral code endpoints
type ReferralCodeHandler struct {
	codeService *services.ReferralCodeService
}

// NewReferralCodeHandler creates a new referral code handler
func NewReferralCodeHandler(codeService *services.ReferralCodeService) *ReferralCodeHandler {
	return &ReferralCodeHandler{
		codeService: codeService,
	}
}

// EnsureCustomerCode returns the customer's shareable code, minting one
// on first call
func (h *ReferralCodeHandler) EnsureCustomerCode(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)
	customerID := c.Params("customerId")

	code, err := h.codeService.EnsureCustomerCode(c.Context(), tenantID, customerID)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Referral code retrieved successfully", fiber.Map{
		"code": code,
	})
}

// EnsureProfessionalCode returns the professional's shareable code,
// minting one on first call
func (h *ReferralCodeHandler) EnsureProfessionalCode(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)
	professionalID := c.Params("professionalId")

	code, err := h.codeService.EnsureProfessionalCode(c.Context(), tenantID, professionalID)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Referral code retrieved successfully", fiber.Map{
		"code": code,
	})
}

// CreateCampaignCodeRequest represents campaign code creation body
type CreateCampaignCodeRequest struct {
	CampaignID         string           `json:"campaign_id"`
	Code               string           `json:"code"`
	MaxUses            *int             `json:"max_uses"`
	RewardAmount       *decimal.Decimal `json:"reward_amount"`
	DiscountPercentage *decimal.Decimal `json:"discount_percentage"`
	ExpiresAt          *time.Time       `json:"expires_at"`
}

// CreateCampaignCode handles campaign code creation (Admin only)
func (h *ReferralCodeHandler) CreateCampaignCode(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)

	var req CreateCampaignCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.CampaignID == "" {
		return response.BadRequest(c, "campaign_id is required")
	}

	code, err := h.codeService.CreateCampaignCode(c.Context(), tenantID, req.CampaignID, services.CampaignCodeInput{
		Code:               req.Code,
		MaxUses:            req.MaxUses,
		RewardAmount:       req.RewardAmount,
		DiscountPercentage: req.DiscountPercentage,
		ExpiresAt:          req.ExpiresAt,
	})
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Created(c, "Campaign code created successfully", fiber.Map{
		"code": code,
	})
}

// ValidateCode checks whether a shareable code can be redeemed right now
func (h *ReferralCodeHandler) ValidateCode(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)

	code, err := h.codeService.ValidateCode(c.Context(), tenantID, c.Params("code"))
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Code is valid", fiber.Map{
		"code": code,
	})
}
