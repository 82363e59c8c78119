package repositories

import (
	"context"
	"errors"

	"autolink-referral/internal/adapters/persistence/models"
	"autolink-referral/internal/core/domain"

	"gorm.io/gorm"
)

// ReferralStatsRepository handles the derived per-entity rollup rows
type ReferralStatsRepository struct {
	db *gorm.DB
}

// NewReferralStatsRepository creates a new stats repository
func NewReferralStatsRepository(db *gorm.DB) *ReferralStatsRepository {
	return &ReferralStatsRepository{db: db}
}

// WithTx returns a copy of the repository bound to a transaction
func (r *ReferralStatsRepository) WithTx(tx *gorm.DB) ReferralStatsStore {
	return &ReferralStatsRepository{db: tx}
}

// GetByEntity returns the rollup row for an entity, or nil if none exists
// yet. Stats rows are created lazily on first refresh.
func (r *ReferralStatsRepository) GetByEntity(ctx context.Context, tenantID string, entityType domain.EntityType, entityID string) (*models.ReferralStats, error) {
	var stats models.ReferralStats
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND entity_type = ? AND entity_id = ?", tenantID, entityType, entityID).
		First(&stats).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// Save upserts the rollup row. No version check: the row is a full
// recomputation every time, so last write wins by design.
func (r *ReferralStatsRepository) Save(ctx context.Context, stats *models.ReferralStats) error {
	return r.db.WithContext(ctx).Save(stats).Error
}
