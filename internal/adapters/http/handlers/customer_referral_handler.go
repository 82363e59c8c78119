package handlers

import (
	"autolink-referral/internal/adapters/http/middleware"
	"autolink-referral/internal/core/domain"
	"autolink-referral/internal/core/services"
	"autolink-referral/internal/pkg/pagination"
	"autolink-referral/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// CustomerReferralHandler handles customer referral endpoints
type CustomerReferralHandler struct {
	referralService *services.CustomerReferralService
}

// NewCustomerReferralHandler creates a new customer referral handler
func NewCustomerReferralHandler(referralService *services.CustomerReferralService) *CustomerReferralHandler {
	return &CustomerReferralHandler{
		referralService: referralService,
	}
}

// CreateReferralRequest represents referral creation body
type CreateReferralRequest struct {
	ReferrerCustomerID   string `json:"referrer_customer_id"`
	RefereeEmail         string `json:"referee_email"`
	RefereePhone         string `json:"referee_phone"`
	RefereeName          string `json:"referee_name"`
	TargetProfessionalID string `json:"target_professional_id"`
	TargetServiceType    string `json:"target_service_type"`
}

// Create handles opening a referral funnel entry
func (h *CustomerReferralHandler) Create(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)

	var req CreateReferralRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.ReferrerCustomerID == "" {
		return response.BadRequest(c, "referrer_customer_id is required")
	}

	ref, err := h.referralService.CreateReferral(c.Context(), tenantID, req.ReferrerCustomerID, services.CreateReferralInput{
		RefereeEmail:         req.RefereeEmail,
		RefereePhone:         req.RefereePhone,
		RefereeName:          req.RefereeName,
		TargetProfessionalID: req.TargetProfessionalID,
		TargetServiceType:    req.TargetServiceType,
	})
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Created(c, "Referral created successfully", fiber.Map{
		"referral": ref,
	})
}

// GetByID handles fetching a single referral
func (h *CustomerReferralHandler) GetByID(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)

	ref, err := h.referralService.GetReferral(c.Context(), tenantID, c.Params("id"))
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Referral retrieved successfully", fiber.Map{
		"referral": ref,
	})
}

// List handles listing a referrer's funnel entries
func (h *CustomerReferralHandler) List(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)
	customerID := c.Query("customer_id")
	if customerID == "" {
		return response.BadRequest(c, "customer_id is required")
	}

	params := pagination.GetParams(c)
	refs, total, err := h.referralService.ListReferrals(c.Context(), tenantID, customerID, params.Offset, params.Limit)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Referrals retrieved successfully",
		pagination.NewResponse(refs, params, total))
}

// MarkContacted handles recording outreach to the referee
func (h *CustomerReferralHandler) MarkContacted(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)

	ref, err := h.referralService.MarkContacted(c.Context(), tenantID, c.Params("id"))
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Referral marked as contacted", fiber.Map{
		"referral": ref,
	})
}

// ConvertReferralRequest represents conversion body
type ConvertReferralRequest struct {
	RefereeCustomerID string            `json:"referee_customer_id"`
	RewardAmount      *decimal.Decimal  `json:"reward_amount"`
	RewardType        domain.RewardType `json:"reward_type"`
}

// Convert handles closing the funnel as converted
func (h *CustomerReferralHandler) Convert(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)

	var req ConvertReferralRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.RefereeCustomerID == "" {
		return response.BadRequest(c, "referee_customer_id is required")
	}

	ref, err := h.referralService.ConvertReferral(c.Context(), tenantID, c.Params("id"),
		req.RefereeCustomerID, req.RewardAmount, req.RewardType)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Referral converted successfully", fiber.Map{
		"referral": ref,
	})
}

// Cancel handles withdrawing an open referral
func (h *CustomerReferralHandler) Cancel(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)

	ref, err := h.referralService.CancelReferral(c.Context(), tenantID, c.Params("id"))
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Referral cancelled", fiber.Map{
		"referral": ref,
	})
}

// ApproveReward handles approving a converted referral's reward
func (h *CustomerReferralHandler) ApproveReward(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)

	ref, err := h.referralService.ApproveReward(c.Context(), tenantID, c.Params("id"))
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Reward approved", fiber.Map{
		"referral": ref,
	})
}

// MarkRewardPaid handles settling an approved reward
func (h *CustomerReferralHandler) MarkRewardPaid(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)

	ref, err := h.referralService.MarkRewardPaid(c.Context(), tenantID, c.Params("id"))
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Reward marked as paid", fiber.Map{
		"referral": ref,
	})
}

// CancelReward handles cancelling a not-yet-paid reward
func (h *CustomerReferralHandler) CancelReward(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)

	ref, err := h.referralService.CancelReward(c.Context(), tenantID, c.Params("id"))
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Reward cancelled", fiber.Map{
		"referral": ref,
	})
}
