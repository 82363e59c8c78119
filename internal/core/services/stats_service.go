package services

import (
	"context"
	"time"

	"autolink-referral/internal/adapters/persistence/models"
	"autolink-referral/internal/adapters/persistence/repositories"
	"autolink-referral/internal/core/domain"

	"gorm.io/gorm"
)

// StatsService maintains the per-entity rollup rows. Every refresh is a
// full recomputation from the referral tables; the projection can always
// be rebuilt, so it carries no version column and last write wins.
type StatsService struct {
	statsRepo repositories.ReferralStatsStore
	custRepo  repositories.CustomerReferralStore
	proRepo   repositories.ProfessionalReferralStore
}

// NewStatsService creates a new stats service
func NewStatsService(statsRepo repositories.ReferralStatsStore, custRepo repositories.CustomerReferralStore, proRepo repositories.ProfessionalReferralStore) *StatsService {
	return &StatsService{
		statsRepo: statsRepo,
		custRepo:  custRepo,
		proRepo:   proRepo,
	}
}

// WithTx returns a copy of the service bound to a transaction, so a
// refresh can commit atomically with the state change that triggered it
func (s *StatsService) WithTx(tx *gorm.DB) *StatsService {
	return &StatsService{
		statsRepo: s.statsRepo.WithTx(tx),
		custRepo:  s.custRepo.WithTx(tx),
		proRepo:   s.proRepo.WithTx(tx),
	}
}

// GetStats returns the rollup for an entity. An entity with no activity
// yet gets a zero-valued row without persisting it.
func (s *StatsService) GetStats(ctx context.Context, tenantID string, entityType domain.EntityType, entityID string) (*models.ReferralStats, error) {
	if !entityType.IsValid() {
		return nil, domain.ErrInvalidEntityType
	}

	stats, err := s.statsRepo.GetByEntity(ctx, tenantID, entityType, entityID)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		return models.NewReferralStats(tenantID, entityType, entityID)
	}
	return stats, nil
}

// Refresh recomputes and persists the rollup for an entity
func (s *StatsService) Refresh(ctx context.Context, tenantID string, entityType domain.EntityType, entityID string) error {
	switch entityType {
	case domain.EntityCustomer:
		return s.RefreshCustomer(ctx, tenantID, entityID)
	case domain.EntityProfessional:
		return s.RefreshProfessional(ctx, tenantID, entityID)
	default:
		return domain.ErrInvalidEntityType
	}
}

// RefreshCustomer recomputes the customer-side rollup from the funnel
// table. PENDING and CONTACTED both count as in-flight; rewards earned
// sums PAID amounts while rewards pending sums PENDING and APPROVED
// amounts on converted referrals.
func (s *StatsService) RefreshCustomer(ctx context.Context, tenantID, customerID string) error {
	counts, err := s.custRepo.CountByStatus(ctx, tenantID, customerID)
	if err != nil {
		return err
	}

	earned, err := s.custRepo.SumRewardAmounts(ctx, tenantID, customerID,
		[]domain.RewardStatus{domain.RewardPaid}, false)
	if err != nil {
		return err
	}

	pendingRewards, err := s.custRepo.SumRewardAmounts(ctx, tenantID, customerID,
		[]domain.RewardStatus{domain.RewardPending, domain.RewardApproved}, true)
	if err != nil {
		return err
	}

	var totalSent int64
	for _, n := range counts {
		totalSent += n
	}

	rollup := models.CustomerRollup{
		TotalSent:      int(totalSent),
		Successful:     int(counts[domain.ReferralConverted]),
		Pending:        int(counts[domain.ReferralPending] + counts[domain.ReferralContacted]),
		RewardsEarned:  earned,
		RewardsPending: pendingRewards,
	}

	stats, err := s.loadOrCreate(ctx, tenantID, domain.EntityCustomer, customerID)
	if err != nil {
		return err
	}
	if err := stats.ApplyCustomerRollup(rollup, time.Now()); err != nil {
		return err
	}
	return s.statsRepo.Save(ctx, stats)
}

// RefreshProfessional recomputes the professional-side rollup. The
// conversion rate is completed/received, zero when nothing was received.
func (s *StatsService) RefreshProfessional(ctx context.Context, tenantID, professionalID string) error {
	given, err := s.proRepo.CountSent(ctx, tenantID, professionalID)
	if err != nil {
		return err
	}

	received, err := s.proRepo.CountReceived(ctx, tenantID, professionalID, nil)
	if err != nil {
		return err
	}

	completedStatus := domain.ProReferralCompleted
	completed, err := s.proRepo.CountReceived(ctx, tenantID, professionalID, &completedStatus)
	if err != nil {
		return err
	}

	avgDiscount, err := s.proRepo.AvgDiscountOffered(ctx, tenantID, professionalID)
	if err != nil {
		return err
	}

	rate := 0.0
	if received > 0 {
		rate = float64(completed) / float64(received)
	}

	rollup := models.ProfessionalRollup{
		Given:          int(given),
		Received:       int(received),
		ConversionRate: rate,
		AvgDiscount:    avgDiscount,
	}

	stats, err := s.loadOrCreate(ctx, tenantID, domain.EntityProfessional, professionalID)
	if err != nil {
		return err
	}
	if err := stats.ApplyProfessionalRollup(rollup, time.Now()); err != nil {
		return err
	}
	return s.statsRepo.Save(ctx, stats)
}

// loadOrCreate fetches the rollup row or builds a fresh one on first
// refresh
func (s *StatsService) loadOrCreate(ctx context.Context, tenantID string, entityType domain.EntityType, entityID string) (*models.ReferralStats, error) {
	stats, err := s.statsRepo.GetByEntity(ctx, tenantID, entityType, entityID)
	if err != nil {
		return nil, err
	}
	if stats != nil {
		return stats, nil
	}
	return models.NewReferralStats(tenantID, entityType, entityID)
}
