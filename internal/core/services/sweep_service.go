package services

import (
	"context"
	"log"
	"time"

	"autolink-referral/internal/adapters/persistence/repositories"
	"autolink-referral/internal/config"

	"github.com/robfig/cron/v3"
)

// SweepService expires overdue referrals on a schedule. The sweep is
// idempotent: each row is claimed with a status-and-version predicated
// update, so concurrent sweeps or a racing user action make the claim a
// no-op and the row is simply skipped.
type SweepService struct {
	custRepo repositories.CustomerReferralStore
	proRepo  repositories.ProfessionalReferralStore
	stats    *StatsService
	cfg      config.ReferralConfig
	cron     *cron.Cron
}

// SweepResult reports how many rows a sweep actually expired
type SweepResult struct {
	CustomerReferralsExpired     int `json:"customer_referrals_expired"`
	ProfessionalReferralsExpired int `json:"professional_referrals_expired"`
}

// NewSweepService creates a new sweep service
func NewSweepService(custRepo repositories.CustomerReferralStore, proRepo repositories.ProfessionalReferralStore, stats *StatsService, cfg config.ReferralConfig) *SweepService {
	return &SweepService{
		custRepo: custRepo,
		proRepo:  proRepo,
		stats:    stats,
		cfg:      cfg,
		cron:     cron.New(),
	}
}

// Start schedules the recurring sweep across all tenants
func (s *SweepService) Start() error {
	_, err := s.cron.AddFunc(s.cfg.SweepCron, func() {
		result, err := s.ExpireDueReferrals(context.Background(), "")
		if err != nil {
			log.Printf("Error: expiration sweep failed: %v", err)
			return
		}
		if result.CustomerReferralsExpired > 0 || result.ProfessionalReferralsExpired > 0 {
			log.Printf("✅ Expiration sweep done (customer: %d, professional: %d)",
				result.CustomerReferralsExpired, result.ProfessionalReferralsExpired)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("✅ Expiration sweep scheduled [%s]", s.cfg.SweepCron)
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish
func (s *SweepService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// ExpireDueReferrals expires every overdue referral, then refreshes the
// rollups of the entities that were touched. An empty tenantID sweeps
// all tenants. Running it twice in a row expires nothing the second
// time.
func (s *SweepService) ExpireDueReferrals(ctx context.Context, tenantID string) (*SweepResult, error) {
	now := time.Now()
	result := &SweepResult{}

	custDue, err := s.custRepo.FindDue(ctx, tenantID, now)
	if err != nil {
		return nil, err
	}

	// tenant+entity pairs whose rollups need a refresh afterwards
	touchedCustomers := make(map[[2]string]struct{})
	for i := range custDue {
		ref := &custDue[i]
		claimed, err := s.custRepo.MarkExpired(ctx, ref)
		if err != nil {
			return nil, err
		}
		if !claimed {
			continue
		}
		result.CustomerReferralsExpired++
		touchedCustomers[[2]string{ref.TenantID, ref.ReferrerCustomerID}] = struct{}{}
	}

	proDue, err := s.proRepo.FindDue(ctx, tenantID, now)
	if err != nil {
		return nil, err
	}

	touchedProfessionals := make(map[[2]string]struct{})
	for i := range proDue {
		ref := &proDue[i]
		claimed, err := s.proRepo.MarkExpired(ctx, ref)
		if err != nil {
			return nil, err
		}
		if !claimed {
			continue
		}
		result.ProfessionalReferralsExpired++
		touchedProfessionals[[2]string{ref.TenantID, ref.SourceProfessionalID}] = struct{}{}
		touchedProfessionals[[2]string{ref.TenantID, ref.TargetProfessionalID}] = struct{}{}
	}

	for key := range touchedCustomers {
		if err := s.stats.RefreshCustomer(ctx, key[0], key[1]); err != nil {
			log.Printf("Warning: stats refresh failed for customer %s: %v", key[1], err)
		}
	}
	for key := range touchedProfessionals {
		if err := s.stats.RefreshProfessional(ctx, key[0], key[1]); err != nil {
			log.Printf("Warning: stats refresh failed for professional %s: %v", key[1], err)
		}
	}

	return result, nil
}
