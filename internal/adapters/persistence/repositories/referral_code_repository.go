package repositories

import (
	"context"
	"errors"

	"autolink-referral/internal/adapters/persistence/models"
	"autolink-referral/internal/core/domain"

	"gorm.io/gorm"
)

// ReferralCodeRepository handles referral code persistence
type ReferralCodeRepository struct {
	db *gorm.DB
}

// NewReferralCodeRepository creates a new referral code repository
func NewReferralCodeRepository(db *gorm.DB) *ReferralCodeRepository {
	return &ReferralCodeRepository{db: db}
}

// WithTx returns a copy of the repository bound to a transaction
func (r *ReferralCodeRepository) WithTx(tx *gorm.DB) ReferralCodeStore {
	return &ReferralCodeRepository{db: tx}
}

// Create inserts a new code. The (tenant_id, code) unique index is the
// authoritative uniqueness check; a rejected insert comes back as
// domain.ErrCodeAlreadyExists so the caller can retry with a fresh
// candidate.
func (r *ReferralCodeRepository) Create(ctx context.Context, code *models.ReferralCode) error {
	if err := r.db.WithContext(ctx).Create(code).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrCodeAlreadyExists
		}
		return err
	}
	return nil
}

// GetByID returns a code by id within the tenant
func (r *ReferralCodeRepository) GetByID(ctx context.Context, tenantID, id string) (*models.ReferralCode, error) {
	var code models.ReferralCode
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrCodeNotFound
	}
	return &code, err
}

// GetByCode returns a code by its shareable string within the tenant
func (r *ReferralCodeRepository) GetByCode(ctx context.Context, tenantID, code string) (*models.ReferralCode, error) {
	var rc models.ReferralCode
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND code = ?", tenantID, code).
		First(&rc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrCodeNotFound
	}
	return &rc, err
}

// GetByOwner returns the code owned by an entity, if one was ever minted
func (r *ReferralCodeRepository) GetByOwner(ctx context.Context, tenantID string, codeType domain.CodeType, ownerID string) (*models.ReferralCode, error) {
	var ownerColumn string
	switch codeType {
	case domain.CodeTypeCustomer:
		ownerColumn = "customer_id"
	case domain.CodeTypeProfessional:
		ownerColumn = "professional_id"
	case domain.CodeTypeCampaign:
		ownerColumn = "campaign_id"
	default:
		return nil, domain.ErrOwnerMismatch
	}

	var rc models.ReferralCode
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND code_type = ? AND "+ownerColumn+" = ?", tenantID, codeType, ownerID).
		First(&rc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrCodeNotFound
	}
	return &rc, err
}

// Update writes the aggregate back under optimistic concurrency: the row
// version must still match, otherwise the caller lost the race.
func (r *ReferralCodeRepository) Update(ctx context.Context, code *models.ReferralCode) error {
	prev := code.Version
	code.Version = prev + 1

	res := r.db.WithContext(ctx).Model(&models.ReferralCode{}).
		Where("id = ? AND version = ?", code.ID, prev).
		Select("*").Omit("id", "tenant_id", "created_at").
		Updates(code)
	if res.Error != nil {
		code.Version = prev
		return res.Error
	}
	if res.RowsAffected == 0 {
		code.Version = prev
		return domain.ErrConcurrentUpdate
	}
	return nil
}

// IncrementUsage bumps current_uses atomically in the database, guarded
// by the max-uses budget so two concurrent conversions cannot overshoot.
func (r *ReferralCodeRepository) IncrementUsage(ctx context.Context, tenantID, id string) error {
	res := r.db.WithContext(ctx).Model(&models.ReferralCode{}).
		Where("tenant_id = ? AND id = ? AND (max_uses IS NULL OR current_uses < max_uses)", tenantID, id).
		UpdateColumn("current_uses", gorm.Expr("current_uses + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, tenantID, id); err != nil {
			return err
		}
		return domain.ErrMaxUsesReached
	}
	return nil
}
