package services

import (
	"context"
	"log"
	"time"

	"autolink-referral/internal/adapters/persistence/models"
	"autolink-referral/internal/adapters/persistence/repositories"
	"autolink-referral/internal/config"
	"autolink-referral/internal/core/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CustomerReferralService drives the customer referral funnel
type CustomerReferralService struct {
	db          *gorm.DB
	refRepo     repositories.CustomerReferralStore
	codeRepo    repositories.ReferralCodeStore
	dirRepo     repositories.DirectoryStore
	codeService *ReferralCodeService
	stats       *StatsService
	cfg         config.ReferralConfig
}

// NewCustomerReferralService creates a new customer referral service
func NewCustomerReferralService(
	db *gorm.DB,
	refRepo repositories.CustomerReferralStore,
	codeRepo repositories.ReferralCodeStore,
	dirRepo repositories.DirectoryStore,
	codeService *ReferralCodeService,
	stats *StatsService,
	cfg config.ReferralConfig,
) *CustomerReferralService {
	return &CustomerReferralService{
		db:          db,
		refRepo:     refRepo,
		codeRepo:    codeRepo,
		dirRepo:     dirRepo,
		codeService: codeService,
		stats:       stats,
		cfg:         cfg,
	}
}

// CreateReferralInput carries the referee details supplied by the referrer
type CreateReferralInput struct {
	RefereeEmail         string
	RefereePhone         string
	RefereeName          string
	TargetProfessionalID string
	TargetServiceType    string
}

// CreateReferral opens a funnel entry for a referred contact. The
// referrer's code is ensured on the fly, so a first-time referrer gets a
// code and a referral in one call. A pre-insert lookup rejects a
// duplicate on either referee contact; the unique index on the derived
// active contact key remains the authoritative guard against racing
// requests.
func (s *CustomerReferralService) CreateReferral(ctx context.Context, tenantID, referrerCustomerID string, input CreateReferralInput) (*models.CustomerReferral, error) {
	code, err := s.codeService.EnsureCustomerCode(ctx, tenantID, referrerCustomerID)
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().AddDate(0, 0, s.cfg.CustomerExpiryDays)
	ref, err := models.NewCustomerReferral(tenantID, referrerCustomerID, code.Code, models.CustomerReferralDetails{
		RefereeEmail:         input.RefereeEmail,
		RefereePhone:         input.RefereePhone,
		RefereeName:          input.RefereeName,
		TargetProfessionalID: input.TargetProfessionalID,
		TargetServiceType:    input.TargetServiceType,
	}, expiresAt)
	if err != nil {
		return nil, err
	}

	var email, phone string
	if ref.RefereeEmail != nil {
		email = *ref.RefereeEmail
	}
	if ref.RefereePhone != nil {
		phone = *ref.RefereePhone
	}
	existing, err := s.refRepo.FindActiveByContact(ctx, tenantID, email, phone)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateReferral
	}

	if err := s.refRepo.Create(ctx, ref); err != nil {
		return nil, err
	}

	if err := s.stats.RefreshCustomer(ctx, tenantID, referrerCustomerID); err != nil {
		log.Printf("Warning: stats refresh failed for customer %s: %v", referrerCustomerID, err)
	}

	log.Printf("✅ Customer referral %s created (referrer: %s)", ref.ID, referrerCustomerID)
	return ref, nil
}

// GetReferral returns a funnel entry by id
func (s *CustomerReferralService) GetReferral(ctx context.Context, tenantID, id string) (*models.CustomerReferral, error) {
	return s.refRepo.GetByID(ctx, tenantID, id)
}

// ListReferrals returns a referrer's funnel entries, newest first
func (s *CustomerReferralService) ListReferrals(ctx context.Context, tenantID, customerID string, offset, limit int) ([]models.CustomerReferral, int64, error) {
	return s.refRepo.ListByReferrer(ctx, tenantID, customerID, offset, limit)
}

// MarkContacted records outreach to the referee
func (s *CustomerReferralService) MarkContacted(ctx context.Context, tenantID, id string) (*models.CustomerReferral, error) {
	ref, err := s.refRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := ref.MarkContacted(); err != nil {
		return nil, err
	}
	if err := s.refRepo.Update(ctx, ref); err != nil {
		return nil, err
	}
	return ref, nil
}

// ConvertReferral closes the funnel successfully: the referee signed up
// as refereeCustomerID. The status change, the code usage increment and
// the referrer's stats refresh commit in one transaction so a failed
// increment rolls the conversion back.
func (s *CustomerReferralService) ConvertReferral(ctx context.Context, tenantID, id, refereeCustomerID string, rewardAmount *decimal.Decimal, rewardType domain.RewardType) (*models.CustomerReferral, error) {
	if _, err := s.dirRepo.GetCustomer(ctx, tenantID, refereeCustomerID); err != nil {
		return nil, err
	}

	ref, err := s.refRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if ref.ReferrerCustomerID == refereeCustomerID {
		return nil, domain.ErrSelfConversion
	}
	if err := ref.Convert(refereeCustomerID, rewardAmount, rewardType, time.Now()); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.refRepo.WithTx(tx).Update(ctx, ref); err != nil {
			return err
		}

		code, err := s.codeRepo.WithTx(tx).GetByCode(ctx, tenantID, ref.ReferrerCode)
		if err != nil {
			return err
		}
		if err := s.codeRepo.WithTx(tx).IncrementUsage(ctx, tenantID, code.ID); err != nil {
			return err
		}

		return s.stats.WithTx(tx).RefreshCustomer(ctx, tenantID, ref.ReferrerCustomerID)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Customer referral %s converted (referee: %s)", ref.ID, refereeCustomerID)
	return ref, nil
}

// CancelReferral withdraws an open referral; any unpaid reward is
// cancelled with it
func (s *CustomerReferralService) CancelReferral(ctx context.Context, tenantID, id string) (*models.CustomerReferral, error) {
	ref, err := s.refRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := ref.Cancel(); err != nil {
		return nil, err
	}
	if err := s.refRepo.Update(ctx, ref); err != nil {
		return nil, err
	}

	if err := s.stats.RefreshCustomer(ctx, tenantID, ref.ReferrerCustomerID); err != nil {
		log.Printf("Warning: stats refresh failed for customer %s: %v", ref.ReferrerCustomerID, err)
	}
	return ref, nil
}

// ApproveReward moves a converted referral's reward to APPROVED
func (s *CustomerReferralService) ApproveReward(ctx context.Context, tenantID, id string) (*models.CustomerReferral, error) {
	return s.updateReward(ctx, tenantID, id, func(ref *models.CustomerReferral) error {
		return ref.ApproveReward()
	})
}

// MarkRewardPaid settles an approved reward
func (s *CustomerReferralService) MarkRewardPaid(ctx context.Context, tenantID, id string) (*models.CustomerReferral, error) {
	return s.updateReward(ctx, tenantID, id, func(ref *models.CustomerReferral) error {
		return ref.MarkRewardPaid(time.Now())
	})
}

// CancelReward cancels a not-yet-paid reward
func (s *CustomerReferralService) CancelReward(ctx context.Context, tenantID, id string) (*models.CustomerReferral, error) {
	return s.updateReward(ctx, tenantID, id, func(ref *models.CustomerReferral) error {
		return ref.CancelReward()
	})
}

// updateReward applies a reward sub-machine transition and refreshes the
// referrer's rollup, since every reward transition moves money between
// the earned and pending buckets
func (s *CustomerReferralService) updateReward(ctx context.Context, tenantID, id string, transition func(*models.CustomerReferral) error) (*models.CustomerReferral, error) {
	ref, err := s.refRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := transition(ref); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.refRepo.WithTx(tx).Update(ctx, ref); err != nil {
			return err
		}
		return s.stats.WithTx(tx).RefreshCustomer(ctx, tenantID, ref.ReferrerCustomerID)
	})
	if err != nil {
		return nil, err
	}
	return ref, nil
}

// IsDuplicateContact reports whether the normalized contact already has
// an open referral in the tenant. Email and phone are checked
// independently, so a match on either counts.
func (s *CustomerReferralService) IsDuplicateContact(ctx context.Context, tenantID, email, phone string) (bool, error) {
	normEmail := models.NormalizeEmail(email)
	normPhone := models.NormalizePhone(phone)
	if normEmail == "" && normPhone == "" {
		return false, domain.ErrMissingContact
	}

	existing, err := s.refRepo.FindActiveByContact(ctx, tenantID, normEmail, normPhone)
	if err != nil {
		return false, err
	}
	return existing != nil, nil
}
