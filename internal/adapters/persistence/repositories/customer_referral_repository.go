package repositories

import (
	"context"
	"errors"
	"time"

	"autolink-referral/internal/adapters/persistence/models"
	"autolink-referral/internal/core/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CustomerReferralRepository handles customer referral persistence
type CustomerReferralRepository struct {
	db *gorm.DB
}

// NewCustomerReferralRepository creates a new customer referral repository
func NewCustomerReferralRepository(db *gorm.DB) *CustomerReferralRepository {
	return &CustomerReferralRepository{db: db}
}

// WithTx returns a copy of the repository bound to a transaction
func (r *CustomerReferralRepository) WithTx(tx *gorm.DB) CustomerReferralStore {
	return &CustomerReferralRepository{db: tx}
}

// Create inserts a new funnel entry. The (tenant_id, active_contact_key)
// unique index is the authoritative duplicate-pending guard; a rejected
// insert surfaces as domain.ErrDuplicateReferral.
func (r *CustomerReferralRepository) Create(ctx context.Context, ref *models.CustomerReferral) error {
	if err := r.db.WithContext(ctx).Create(ref).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateReferral
		}
		return err
	}
	return nil
}

// GetByID returns a referral by id within the tenant
func (r *CustomerReferralRepository) GetByID(ctx context.Context, tenantID, id string) (*models.CustomerReferral, error) {
	var ref models.CustomerReferral
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&ref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrReferralNotFound
	}
	return &ref, err
}

// FindActiveByContact is the fast-path duplicate check: any still-open
// referral holding the same normalized referee email or phone. Referee
// columns are stored normalized, and open rows are the ones whose
// active_contact_key has not been cleared. nil means no duplicate.
func (r *CustomerReferralRepository) FindActiveByContact(ctx context.Context, tenantID, email, phone string) (*models.CustomerReferral, error) {
	if email == "" && phone == "" {
		return nil, nil
	}

	q := r.db.WithContext(ctx).
		Where("tenant_id = ? AND active_contact_key IS NOT NULL", tenantID)
	switch {
	case email != "" && phone != "":
		q = q.Where("referee_email = ? OR referee_phone = ?", email, phone)
	case email != "":
		q = q.Where("referee_email = ?", email)
	default:
		q = q.Where("referee_phone = ?", phone)
	}

	var ref models.CustomerReferral
	err := q.First(&ref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// ListByReferrer returns a referrer's funnel entries, newest first
func (r *CustomerReferralRepository) ListByReferrer(ctx context.Context, tenantID, customerID string, offset, limit int) ([]models.CustomerReferral, int64, error) {
	var refs []models.CustomerReferral
	var total int64

	base := r.db.WithContext(ctx).Model(&models.CustomerReferral{}).
		Where("tenant_id = ? AND referrer_customer_id = ?", tenantID, customerID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := base.
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&refs).Error
	return refs, total, err
}

// FindDue returns open referrals past their deadline. An empty tenantID
// scans all tenants (used by the scheduled sweep).
func (r *CustomerReferralRepository) FindDue(ctx context.Context, tenantID string, now time.Time) ([]models.CustomerReferral, error) {
	q := r.db.WithContext(ctx).
		Where("status IN ? AND expires_at < ?",
			[]domain.ReferralStatus{domain.ReferralPending, domain.ReferralContacted}, now)
	if tenantID != "" {
		q = q.Where("tenant_id = ?", tenantID)
	}

	var refs []models.CustomerReferral
	err := q.Order("expires_at ASC").Find(&refs).Error
	return refs, err
}

// Update writes the aggregate back under optimistic concurrency
func (r *CustomerReferralRepository) Update(ctx context.Context, ref *models.CustomerReferral) error {
	prev := ref.Version
	ref.Version = prev + 1

	res := r.db.WithContext(ctx).Model(&models.CustomerReferral{}).
		Where("id = ? AND version = ?", ref.ID, prev).
		Select("*").Omit("id", "tenant_id", "created_at").
		Updates(ref)
	if res.Error != nil {
		ref.Version = prev
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateReferral
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		ref.Version = prev
		return domain.ErrConcurrentUpdate
	}
	return nil
}

// MarkExpired transitions a due referral to EXPIRED. The status and
// version predicates make the write a no-op when another writer moved the
// row first; the sweep just skips it.
func (r *CustomerReferralRepository) MarkExpired(ctx context.Context, ref *models.CustomerReferral) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.CustomerReferral{}).
		Where("id = ? AND version = ? AND status IN ?",
			ref.ID, ref.Version,
			[]domain.ReferralStatus{domain.ReferralPending, domain.ReferralContacted}).
		Updates(map[string]interface{}{
			"status":             domain.ReferralExpired,
			"active_contact_key": nil,
			"version":            ref.Version + 1,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CountByStatus groups a referrer's funnel entries by status
func (r *CustomerReferralRepository) CountByStatus(ctx context.Context, tenantID, customerID string) (map[domain.ReferralStatus]int64, error) {
	var rows []struct {
		Status domain.ReferralStatus
		Total  int64
	}
	err := r.db.WithContext(ctx).Model(&models.CustomerReferral{}).
		Select("status, COUNT(*) AS total").
		Where("tenant_id = ? AND referrer_customer_id = ?", tenantID, customerID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.ReferralStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

// SumRewardAmounts totals reward amounts across the given reward
// statuses; convertedOnly restricts the sum to converted referrals.
func (r *CustomerReferralRepository) SumRewardAmounts(ctx context.Context, tenantID, customerID string, rewardStatuses []domain.RewardStatus, convertedOnly bool) (decimal.Decimal, error) {
	q := r.db.WithContext(ctx).Model(&models.CustomerReferral{}).
		Select("COALESCE(SUM(reward_amount), 0)").
		Where("tenant_id = ? AND referrer_customer_id = ? AND reward_status IN ?",
			tenantID, customerID, rewardStatuses)
	if convertedOnly {
		q = q.Where("status = ?", domain.ReferralConverted)
	}

	var total decimal.Decimal
	err := q.Scan(&total).Error
	return total, err
}
