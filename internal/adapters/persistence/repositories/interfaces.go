package repositories

import (
	"context"
	"time"

	"autolink-referral/internal/adapters/persistence/models"
	"autolink-referral/internal/core/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReferralCodeStore is the store contract for referral codes. Uniqueness
// of (tenant_id, code) is enforced by the database; Create surfaces a
// rejected insert as domain.ErrCodeAlreadyExists.
type ReferralCodeStore interface {
	WithTx(tx *gorm.DB) ReferralCodeStore
	Create(ctx context.Context, code *models.ReferralCode) error
	GetByID(ctx context.Context, tenantID, id string) (*models.ReferralCode, error)
	GetByCode(ctx context.Context, tenantID, code string) (*models.ReferralCode, error)
	GetByOwner(ctx context.Context, tenantID string, codeType domain.CodeType, ownerID string) (*models.ReferralCode, error)
	Update(ctx context.Context, code *models.ReferralCode) error
	IncrementUsage(ctx context.Context, tenantID, id string) error
}

// CustomerReferralStore is the store contract for the customer funnel
type CustomerReferralStore interface {
	WithTx(tx *gorm.DB) CustomerReferralStore
	Create(ctx context.Context, ref *models.CustomerReferral) error
	GetByID(ctx context.Context, tenantID, id string) (*models.CustomerReferral, error)
	FindActiveByContact(ctx context.Context, tenantID, email, phone string) (*models.CustomerReferral, error)
	ListByReferrer(ctx context.Context, tenantID, customerID string, offset, limit int) ([]models.CustomerReferral, int64, error)
	FindDue(ctx context.Context, tenantID string, now time.Time) ([]models.CustomerReferral, error)
	Update(ctx context.Context, ref *models.CustomerReferral) error
	MarkExpired(ctx context.Context, ref *models.CustomerReferral) (bool, error)
	CountByStatus(ctx context.Context, tenantID, customerID string) (map[domain.ReferralStatus]int64, error)
	SumRewardAmounts(ctx context.Context, tenantID, customerID string, rewardStatuses []domain.RewardStatus, convertedOnly bool) (decimal.Decimal, error)
}

// ProfessionalReferralStore is the store contract for hand-offs
type ProfessionalReferralStore interface {
	WithTx(tx *gorm.DB) ProfessionalReferralStore
	Create(ctx context.Context, ref *models.ProfessionalReferral) error
	GetByID(ctx context.Context, tenantID, id string) (*models.ProfessionalReferral, error)
	ListForProfessional(ctx context.Context, tenantID, professionalID string, offset, limit int) ([]models.ProfessionalReferral, int64, error)
	FindDue(ctx context.Context, tenantID string, now time.Time) ([]models.ProfessionalReferral, error)
	Update(ctx context.Context, ref *models.ProfessionalReferral) error
	MarkExpired(ctx context.Context, ref *models.ProfessionalReferral) (bool, error)
	CountSent(ctx context.Context, tenantID, professionalID string) (int64, error)
	CountReceived(ctx context.Context, tenantID, professionalID string, status *domain.ProReferralStatus) (int64, error)
	AvgDiscountOffered(ctx context.Context, tenantID, professionalID string) (decimal.Decimal, error)
}

// ReferralStatsStore is the store contract for the derived rollup rows
type ReferralStatsStore interface {
	WithTx(tx *gorm.DB) ReferralStatsStore
	GetByEntity(ctx context.Context, tenantID string, entityType domain.EntityType, entityID string) (*models.ReferralStats, error)
	Save(ctx context.Context, stats *models.ReferralStats) error
}

// DirectoryStore exposes read-only lookups of platform-owned entities
type DirectoryStore interface {
	GetCustomer(ctx context.Context, tenantID, id string) (*models.Customer, error)
	GetProfessional(ctx context.Context, tenantID, id string) (*models.Professional, error)
}

var (
	_ ReferralCodeStore         = (*ReferralCodeRepository)(nil)
	_ CustomerReferralStore     = (*CustomerReferralRepository)(nil)
	_ ProfessionalReferralStore = (*ProfessionalReferralRepository)(nil)
	_ ReferralStatsStore        = (*ReferralStatsRepository)(nil)
	_ DirectoryStore            = (*DirectoryRepository)(nil)
)
