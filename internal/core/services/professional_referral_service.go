package services

import (
	"context"
	"log"
	"time"

	"autolink-referral/internal/adapters/persistence/models"
	"autolink-referral/internal/adapters/persistence/repositories"
	"autolink-referral/internal/config"
	"autolink-referral/internal/core/domain"
	"autolink-referral/internal/pkg/codegen"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProfessionalReferralService drives professional-to-professional
// hand-offs
type ProfessionalReferralService struct {
	db      *gorm.DB
	refRepo repositories.ProfessionalReferralStore
	dirRepo repositories.DirectoryStore
	stats   *StatsService
	cfg     config.ReferralConfig
}

// NewProfessionalReferralService creates a new professional referral service
func NewProfessionalReferralService(
	db *gorm.DB,
	refRepo repositories.ProfessionalReferralStore,
	dirRepo repositories.DirectoryStore,
	stats *StatsService,
	cfg config.ReferralConfig,
) *ProfessionalReferralService {
	return &ProfessionalReferralService{
		db:      db,
		refRepo: refRepo,
		dirRepo: dirRepo,
		stats:   stats,
		cfg:     cfg,
	}
}

// CreateHandOffInput carries the hand-off details plus an optional
// discount offer attached at creation
type CreateHandOffInput struct {
	Reason        string
	ServiceNeeded string
	Notes         string
	Priority      domain.Priority
	DiscountType  domain.DiscountType
	DiscountValue *decimal.Decimal
	DiscountCode  string
}

// CreateHandOff opens a hand-off of a customer from one professional to
// another. Both professionals and the customer must exist in the tenant.
// Both sides' rollups refresh with the insert.
func (s *ProfessionalReferralService) CreateHandOff(ctx context.Context, tenantID, sourceProfessionalID, targetProfessionalID, customerID string, input CreateHandOffInput) (*models.ProfessionalReferral, error) {
	if _, err := s.dirRepo.GetProfessional(ctx, tenantID, sourceProfessionalID); err != nil {
		return nil, err
	}
	if _, err := s.dirRepo.GetProfessional(ctx, tenantID, targetProfessionalID); err != nil {
		return nil, err
	}
	if _, err := s.dirRepo.GetCustomer(ctx, tenantID, customerID); err != nil {
		return nil, err
	}

	expiresAt := time.Now().AddDate(0, 0, s.cfg.ProfessionalExpiryDays)
	ref, err := models.NewProfessionalReferral(tenantID, sourceProfessionalID, targetProfessionalID, customerID, models.ProfessionalReferralDetails{
		Reason:        input.Reason,
		ServiceNeeded: input.ServiceNeeded,
		Notes:         input.Notes,
		Priority:      input.Priority,
	}, expiresAt)
	if err != nil {
		return nil, err
	}

	if input.DiscountType != "" && input.DiscountType != domain.DiscountNone {
		discountCode := input.DiscountCode
		if discountCode == "" {
			discountCode, err = codegen.GenerateDiscountCode()
			if err != nil {
				return nil, err
			}
		}
		if err := ref.SetDiscount(input.DiscountType, input.DiscountValue, discountCode); err != nil {
			return nil, err
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.refRepo.WithTx(tx).Create(ctx, ref); err != nil {
			return err
		}
		txStats := s.stats.WithTx(tx)
		if err := txStats.RefreshProfessional(ctx, tenantID, sourceProfessionalID); err != nil {
			return err
		}
		return txStats.RefreshProfessional(ctx, tenantID, targetProfessionalID)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Professional hand-off %s created (%s → %s)", ref.ID, sourceProfessionalID, targetProfessionalID)
	return ref, nil
}

// GetHandOff returns a hand-off by id
func (s *ProfessionalReferralService) GetHandOff(ctx context.Context, tenantID, id string) (*models.ProfessionalReferral, error) {
	return s.refRepo.GetByID(ctx, tenantID, id)
}

// ListHandOffs returns hand-offs where the professional is either side,
// newest first
func (s *ProfessionalReferralService) ListHandOffs(ctx context.Context, tenantID, professionalID string, offset, limit int) ([]models.ProfessionalReferral, int64, error) {
	return s.refRepo.ListForProfessional(ctx, tenantID, professionalID, offset, limit)
}

// AcceptHandOff takes a pending hand-off
func (s *ProfessionalReferralService) AcceptHandOff(ctx context.Context, tenantID, id string) (*models.ProfessionalReferral, error) {
	return s.transition(ctx, tenantID, id, func(ref *models.ProfessionalReferral) error {
		return ref.Accept(time.Now())
	})
}

// DeclineHandOff rejects a pending hand-off with an optional reason
func (s *ProfessionalReferralService) DeclineHandOff(ctx context.Context, tenantID, id, reason string) (*models.ProfessionalReferral, error) {
	return s.transition(ctx, tenantID, id, func(ref *models.ProfessionalReferral) error {
		return ref.Decline(reason)
	})
}

// CompleteHandOff closes an accepted hand-off as done
func (s *ProfessionalReferralService) CompleteHandOff(ctx context.Context, tenantID, id string) (*models.ProfessionalReferral, error) {
	ref, err := s.transition(ctx, tenantID, id, func(ref *models.ProfessionalReferral) error {
		return ref.Complete(time.Now())
	})
	if err != nil {
		return nil, err
	}
	log.Printf("✅ Professional hand-off %s completed", ref.ID)
	return ref, nil
}

// SetDiscount attaches or clears the discount offer on a hand-off
func (s *ProfessionalReferralService) SetDiscount(ctx context.Context, tenantID, id string, discountType domain.DiscountType, value *decimal.Decimal, code string) (*models.ProfessionalReferral, error) {
	return s.transition(ctx, tenantID, id, func(ref *models.ProfessionalReferral) error {
		return ref.SetDiscount(discountType, value, code)
	})
}

// MarkDiscountUsed records redemption of the offered discount
func (s *ProfessionalReferralService) MarkDiscountUsed(ctx context.Context, tenantID, id string) (*models.ProfessionalReferral, error) {
	return s.transition(ctx, tenantID, id, func(ref *models.ProfessionalReferral) error {
		return ref.MarkDiscountUsed()
	})
}

// SetFollowUp schedules a follow-up on the hand-off
func (s *ProfessionalReferralService) SetFollowUp(ctx context.Context, tenantID, id string, date time.Time, notes string) (*models.ProfessionalReferral, error) {
	return s.transition(ctx, tenantID, id, func(ref *models.ProfessionalReferral) error {
		ref.SetFollowUp(date, notes)
		return nil
	})
}

// ClearFollowUp removes a scheduled follow-up
func (s *ProfessionalReferralService) ClearFollowUp(ctx context.Context, tenantID, id string) (*models.ProfessionalReferral, error) {
	return s.transition(ctx, tenantID, id, func(ref *models.ProfessionalReferral) error {
		ref.ClearFollowUp()
		return nil
	})
}

// transition loads a hand-off, applies a state change, persists it and
// refreshes both professionals' rollups in one transaction
func (s *ProfessionalReferralService) transition(ctx context.Context, tenantID, id string, change func(*models.ProfessionalReferral) error) (*models.ProfessionalReferral, error) {
	ref, err := s.refRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := change(ref); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.refRepo.WithTx(tx).Update(ctx, ref); err != nil {
			return err
		}
		txStats := s.stats.WithTx(tx)
		if err := txStats.RefreshProfessional(ctx, tenantID, ref.SourceProfessionalID); err != nil {
			return err
		}
		return txStats.RefreshProfessional(ctx, tenantID, ref.TargetProfessionalID)
	})
	if err != nil {
		return nil, err
	}
	return ref, nil
}
