package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"autolink-referral/internal/adapters/persistence/models"
	"autolink-referral/internal/adapters/persistence/repositories"
	"autolink-referral/internal/config"
	"autolink-referral/internal/core/domain"
	"autolink-referral/internal/pkg/codegen"

	"github.com/shopspring/decimal"
)

// ReferralCodeService mints and validates referral codes. It is the only
// caller of the code generator; uniqueness is enforced by the store's
// (tenant_id, code) unique index, with the insert retried on collision.
type ReferralCodeService struct {
	codeRepo repositories.ReferralCodeStore
	dirRepo  repositories.DirectoryStore
	cfg      config.ReferralConfig
}

// NewReferralCodeService creates a new referral code service
func NewReferralCodeService(codeRepo repositories.ReferralCodeStore, dirRepo repositories.DirectoryStore, cfg config.ReferralConfig) *ReferralCodeService {
	return &ReferralCodeService{
		codeRepo: codeRepo,
		dirRepo:  dirRepo,
		cfg:      cfg,
	}
}

// EnsureCustomerCode returns the customer's existing code or mints one.
// Issuance is idempotent: a concurrent mint for the same customer loses
// the unique-index race and picks up the winner's row.
func (s *ReferralCodeService) EnsureCustomerCode(ctx context.Context, tenantID, customerID string) (*models.ReferralCode, error) {
	customer, err := s.dirRepo.GetCustomer(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}

	existing, err := s.codeRepo.GetByOwner(ctx, tenantID, domain.CodeTypeCustomer, customerID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrCodeNotFound) {
		return nil, err
	}

	return s.mint(ctx, tenantID, domain.CodeTypeCustomer, customerID, customer.FirstName)
}

// EnsureProfessionalCode returns the professional's existing code or
// mints one with a business-name vanity prefix.
func (s *ReferralCodeService) EnsureProfessionalCode(ctx context.Context, tenantID, professionalID string) (*models.ReferralCode, error) {
	professional, err := s.dirRepo.GetProfessional(ctx, tenantID, professionalID)
	if err != nil {
		return nil, err
	}

	existing, err := s.codeRepo.GetByOwner(ctx, tenantID, domain.CodeTypeProfessional, professionalID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrCodeNotFound) {
		return nil, err
	}

	return s.mint(ctx, tenantID, domain.CodeTypeProfessional, professionalID, professional.BusinessName)
}

// CampaignCodeInput configures a campaign code
type CampaignCodeInput struct {
	Code               string // optional vanity code; generated when empty
	MaxUses            *int
	RewardAmount       *decimal.Decimal
	DiscountPercentage *decimal.Decimal
	ExpiresAt          *time.Time
}

// CreateCampaignCode issues a campaign-owned code, either a supplied
// vanity code or a generated one
func (s *ReferralCodeService) CreateCampaignCode(ctx context.Context, tenantID, campaignID string, input CampaignCodeInput) (*models.ReferralCode, error) {
	if input.Code != "" {
		vanity := strings.ToUpper(strings.TrimSpace(input.Code))
		if !codegen.IsValidFormat(vanity) {
			return nil, domain.ErrInvalidCodeFormat
		}

		code, err := models.NewReferralCode(tenantID, vanity, domain.CodeTypeCampaign, campaignID)
		if err != nil {
			return nil, err
		}
		if err := code.UpdateConfig(input.MaxUses, input.RewardAmount, input.DiscountPercentage, input.ExpiresAt); err != nil {
			return nil, err
		}
		if err := s.codeRepo.Create(ctx, code); err != nil {
			return nil, err
		}
		log.Printf("✅ Campaign code %s created (campaign: %s)", code.Code, campaignID)
		return code, nil
	}

	code, err := s.mint(ctx, tenantID, domain.CodeTypeCampaign, campaignID, "")
	if err != nil {
		return nil, err
	}
	if err := code.UpdateConfig(input.MaxUses, input.RewardAmount, input.DiscountPercentage, input.ExpiresAt); err != nil {
		return nil, err
	}
	if err := s.codeRepo.Update(ctx, code); err != nil {
		return nil, err
	}
	return code, nil
}

// ValidateCode checks format and redeemability of a shareable code
func (s *ReferralCodeService) ValidateCode(ctx context.Context, tenantID, code string) (*models.ReferralCode, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if !codegen.IsValidFormat(normalized) {
		return nil, domain.ErrInvalidCodeFormat
	}

	rc, err := s.codeRepo.GetByCode(ctx, tenantID, normalized)
	if err != nil {
		return nil, err
	}
	if !rc.CanBeUsed(time.Now()) {
		return nil, domain.ErrCodeNotUsable
	}
	return rc, nil
}

// IncrementUsage records a redemption against the code
func (s *ReferralCodeService) IncrementUsage(ctx context.Context, tenantID, codeID string) error {
	return s.codeRepo.IncrementUsage(ctx, tenantID, codeID)
}

// mint generates candidates until the store accepts one. The generator
// never checks uniqueness itself; the unique indexes are the arbiter. A
// code collision burns one of the bounded attempts; an owner collision
// means a concurrent mint won and its row is adopted instead.
func (s *ReferralCodeService) mint(ctx context.Context, tenantID string, codeType domain.CodeType, ownerID, namePrefix string) (*models.ReferralCode, error) {
	attempts := s.cfg.CodeMintAttempts
	if attempts <= 0 {
		attempts = 5
	}

	for i := 0; i < attempts; i++ {
		var candidate string
		var err error
		switch codeType {
		case domain.CodeTypeCampaign:
			candidate, err = codegen.Generate("")
		default:
			candidate, err = codegen.Generate(namePrefix)
		}
		if err != nil {
			return nil, err
		}

		code, err := models.NewReferralCode(tenantID, candidate, codeType, ownerID)
		if err != nil {
			return nil, err
		}

		err = s.codeRepo.Create(ctx, code)
		if err == nil {
			log.Printf("✅ Referral code %s minted (type: %s, owner: %s)", code.Code, codeType, ownerID)
			return code, nil
		}
		if !errors.Is(err, domain.ErrCodeAlreadyExists) {
			return nil, err
		}

		// Collision. For owner-typed codes the winner may be our own
		// concurrent request, which makes issuance idempotent.
		if codeType != domain.CodeTypeCampaign {
			if existing, lookupErr := s.codeRepo.GetByOwner(ctx, tenantID, codeType, ownerID); lookupErr == nil {
				return existing, nil
			}
		}
	}

	return nil, domain.ErrCodeGenerationFailed
}
