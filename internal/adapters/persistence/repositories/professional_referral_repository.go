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

// ProfessionalReferralRepository handles professional referral persistence
type ProfessionalReferralRepository struct {
	db *gorm.DB
}

// NewProfessionalReferralRepository creates a new professional referral repository
func NewProfessionalReferralRepository(db *gorm.DB) *ProfessionalReferralRepository {
	return &ProfessionalReferralRepository{db: db}
}

// WithTx returns a copy of the repository bound to a transaction
func (r *ProfessionalReferralRepository) WithTx(tx *gorm.DB) ProfessionalReferralStore {
	return &ProfessionalReferralRepository{db: tx}
}

// Create inserts a new hand-off
func (r *ProfessionalReferralRepository) Create(ctx context.Context, ref *models.ProfessionalReferral) error {
	return r.db.WithContext(ctx).Create(ref).Error
}

// GetByID returns a hand-off by id within the tenant
func (r *ProfessionalReferralRepository) GetByID(ctx context.Context, tenantID, id string) (*models.ProfessionalReferral, error) {
	var ref models.ProfessionalReferral
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&ref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrReferralNotFound
	}
	return &ref, err
}

// ListForProfessional returns hand-offs where the professional is either
// side, newest first
func (r *ProfessionalReferralRepository) ListForProfessional(ctx context.Context, tenantID, professionalID string, offset, limit int) ([]models.ProfessionalReferral, int64, error) {
	var refs []models.ProfessionalReferral
	var total int64

	base := r.db.WithContext(ctx).Model(&models.ProfessionalReferral{}).
		Where("tenant_id = ? AND (source_professional_id = ? OR target_professional_id = ?)",
			tenantID, professionalID, professionalID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := base.
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&refs).Error
	return refs, total, err
}

// FindDue returns unanswered hand-offs past their deadline. An empty
// tenantID scans all tenants.
func (r *ProfessionalReferralRepository) FindDue(ctx context.Context, tenantID string, now time.Time) ([]models.ProfessionalReferral, error) {
	q := r.db.WithContext(ctx).
		Where("status = ? AND expires_at < ?", domain.ProReferralPending, now)
	if tenantID != "" {
		q = q.Where("tenant_id = ?", tenantID)
	}

	var refs []models.ProfessionalReferral
	err := q.Order("expires_at ASC").Find(&refs).Error
	return refs, err
}

// Update writes the aggregate back under optimistic concurrency
func (r *ProfessionalReferralRepository) Update(ctx context.Context, ref *models.ProfessionalReferral) error {
	prev := ref.Version
	ref.Version = prev + 1

	res := r.db.WithContext(ctx).Model(&models.ProfessionalReferral{}).
		Where("id = ? AND version = ?", ref.ID, prev).
		Select("*").Omit("id", "tenant_id", "created_at").
		Updates(ref)
	if res.Error != nil {
		ref.Version = prev
		return res.Error
	}
	if res.RowsAffected == 0 {
		ref.Version = prev
		return domain.ErrConcurrentUpdate
	}
	return nil
}

// MarkExpired transitions a due hand-off to EXPIRED, skipping rows that
// were answered between the scan and the write
func (r *ProfessionalReferralRepository) MarkExpired(ctx context.Context, ref *models.ProfessionalReferral) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.ProfessionalReferral{}).
		Where("id = ? AND version = ? AND status = ?", ref.ID, ref.Version, domain.ProReferralPending).
		Updates(map[string]interface{}{
			"status":  domain.ProReferralExpired,
			"version": ref.Version + 1,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CountSent counts hand-offs originated by a professional
func (r *ProfessionalReferralRepository) CountSent(ctx context.Context, tenantID, professionalID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ProfessionalReferral{}).
		Where("tenant_id = ? AND source_professional_id = ?", tenantID, professionalID).
		Count(&count).Error
	return count, err
}

// CountReceived counts hand-offs targeting a professional, optionally
// filtered by status
func (r *ProfessionalReferralRepository) CountReceived(ctx context.Context, tenantID, professionalID string, status *domain.ProReferralStatus) (int64, error) {
	q := r.db.WithContext(ctx).Model(&models.ProfessionalReferral{}).
		Where("tenant_id = ? AND target_professional_id = ?", tenantID, professionalID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}

	var count int64
	err := q.Count(&count).Error
	return count, err
}

// AvgDiscountOffered averages the discount value across hand-offs the
// professional sent with a discount attached
func (r *ProfessionalReferralRepository) AvgDiscountOffered(ctx context.Context, tenantID, professionalID string) (decimal.Decimal, error) {
	var avg decimal.Decimal
	err := r.db.WithContext(ctx).Model(&models.ProfessionalReferral{}).
		Select("COALESCE(AVG(discount_value), 0)").
		Where("tenant_id = ? AND source_professional_id = ? AND discount_offered = ?",
			tenantID, professionalID, true).
		Scan(&avg).Error
	return avg, err
}
