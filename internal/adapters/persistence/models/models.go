package models

import (
	"strings"
	"time"
	"unicode"

	"autolink-referral/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ============================================================
// Referral Codes
// ============================================================

// ReferralCode represents referral_codes table. A code is minted once per
// (tenant, owner), mutated only through usage increments and config
// updates, and never deleted.
//
// Uniqueness is database-enforced twice over: (tenant_id, code) keeps the
// shareable string unique, and the per-owner unique indexes on the
// customer/professional columns keep issuance idempotent — two concurrent
// mints for the same owner generate different codes, so only the owner
// index can reject the loser. NULL owner columns never collide, so each
// index binds only the rows of its code type. Campaigns may own several
// codes (vanity plus generated), so campaign_id stays non-unique.
type ReferralCode struct {
	ID                 string           `gorm:"primaryKey;size:36" json:"id"`
	TenantID           string           `gorm:"size:36;not null;uniqueIndex:idx_tenant_code;uniqueIndex:idx_tenant_customer;uniqueIndex:idx_tenant_professional;index:idx_tenant_campaign" json:"tenant_id"`
	Code               string           `gorm:"size:12;not null;uniqueIndex:idx_tenant_code" json:"code"`
	CodeType           domain.CodeType  `gorm:"size:20;not null" json:"code_type"`
	CustomerID         *string          `gorm:"size:36;uniqueIndex:idx_tenant_customer" json:"customer_id,omitempty"`
	ProfessionalID     *string          `gorm:"size:36;uniqueIndex:idx_tenant_professional" json:"professional_id,omitempty"`
	CampaignID         *string          `gorm:"size:36;index:idx_tenant_campaign" json:"campaign_id,omitempty"`
	MaxUses            *int             `json:"max_uses,omitempty"`
	CurrentUses        int              `gorm:"not null;default:0" json:"current_uses"`
	RewardAmount       *decimal.Decimal `gorm:"type:decimal(15,2)" json:"reward_amount,omitempty"`
	DiscountPercentage *decimal.Decimal `gorm:"type:decimal(5,2)" json:"discount_percentage,omitempty"`
	IsActive           bool             `gorm:"not null;default:true" json:"is_active"`
	ExpiresAt          *time.Time       `json:"expires_at,omitempty"`
	Version            uint             `gorm:"not null;default:1" json:"-"`
	CreatedAt          time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ReferralCode) TableName() string {
	return "referral_codes"
}

func (rc *ReferralCode) BeforeCreate(tx *gorm.DB) error {
	if rc.ID == "" {
		rc.ID = uuid.New().String()
	}
	return nil
}

// NewReferralCode builds a code aggregate. The owner reference must match
// the code type; codes are stored uppercase and trimmed.
func NewReferralCode(tenantID, code string, codeType domain.CodeType, ownerID string) (*ReferralCode, error) {
	rc := &ReferralCode{
		TenantID: tenantID,
		Code:     strings.ToUpper(strings.TrimSpace(code)),
		CodeType: codeType,
		IsActive: true,
		Version:  1,
	}
	if rc.TenantID == "" || rc.Code == "" || ownerID == "" {
		return nil, domain.ErrValidation
	}

	switch codeType {
	case domain.CodeTypeCustomer:
		rc.CustomerID = &ownerID
	case domain.CodeTypeProfessional:
		rc.ProfessionalID = &ownerID
	case domain.CodeTypeCampaign:
		rc.CampaignID = &ownerID
	default:
		return nil, domain.ErrOwnerMismatch
	}
	return rc, nil
}

// OwnerID returns the owner reference matching the code type
func (rc *ReferralCode) OwnerID() string {
	switch rc.CodeType {
	case domain.CodeTypeCustomer:
		if rc.CustomerID != nil {
			return *rc.CustomerID
		}
	case domain.CodeTypeProfessional:
		if rc.ProfessionalID != nil {
			return *rc.ProfessionalID
		}
	case domain.CodeTypeCampaign:
		if rc.CampaignID != nil {
			return *rc.CampaignID
		}
	}
	return ""
}

// IsExpired reports whether the code is past its expiry
func (rc *ReferralCode) IsExpired(now time.Time) bool {
	return rc.ExpiresAt != nil && rc.ExpiresAt.Before(now)
}

// MaxUsesReached reports whether the usage budget is exhausted
func (rc *ReferralCode) MaxUsesReached() bool {
	return rc.MaxUses != nil && rc.CurrentUses >= *rc.MaxUses
}

// CanBeUsed reports whether the code may be redeemed right now
func (rc *ReferralCode) CanBeUsed(now time.Time) bool {
	return rc.IsActive && !rc.IsExpired(now) && !rc.MaxUsesReached()
}

// RecordUse increments the usage counter, guarding the max-uses budget
func (rc *ReferralCode) RecordUse() error {
	if rc.MaxUsesReached() {
		return domain.ErrMaxUsesReached
	}
	rc.CurrentUses++
	return nil
}

// Activate re-enables the code
func (rc *ReferralCode) Activate() {
	rc.IsActive = true
}

// Deactivate disables the code without deleting it
func (rc *ReferralCode) Deactivate() {
	rc.IsActive = false
}

// UpdateConfig replaces the reward/discount/usage configuration
func (rc *ReferralCode) UpdateConfig(maxUses *int, rewardAmount, discountPercentage *decimal.Decimal, expiresAt *time.Time) error {
	if maxUses != nil && *maxUses < rc.CurrentUses {
		return domain.ErrValidation
	}
	rc.MaxUses = maxUses
	rc.RewardAmount = rewardAmount
	rc.DiscountPercentage = discountPercentage
	rc.ExpiresAt = expiresAt
	return nil
}

// ============================================================
// Referral Stats (derived projection)
// ============================================================

// ReferralStats represents referral_stats table: a per-entity rollup
// recomputed in full from the referral aggregates. It has no independent
// source of truth, so concurrent refreshes may race harmlessly.
type ReferralStats struct {
	ID                     string            `gorm:"primaryKey;size:36" json:"id"`
	TenantID               string            `gorm:"size:36;not null;uniqueIndex:idx_tenant_entity" json:"tenant_id"`
	EntityType             domain.EntityType `gorm:"size:20;not null;uniqueIndex:idx_tenant_entity" json:"entity_type"`
	EntityID               string            `gorm:"size:36;not null;uniqueIndex:idx_tenant_entity" json:"entity_id"`
	TotalReferralsSent     int               `gorm:"not null;default:0" json:"total_referrals_sent"`
	SuccessfulReferrals    int               `gorm:"not null;default:0" json:"successful_referrals"`
	PendingReferrals       int               `gorm:"not null;default:0" json:"pending_referrals"`
	TotalRewardsEarned     decimal.Decimal   `gorm:"type:decimal(15,2);not null;default:0" json:"total_rewards_earned"`
	RewardsPending         decimal.Decimal   `gorm:"type:decimal(15,2);not null;default:0" json:"rewards_pending"`
	ReferralsReceived      int               `gorm:"not null;default:0" json:"referrals_received"`
	ReferralsGiven         int               `gorm:"not null;default:0" json:"referrals_given"`
	ReferralConversionRate float64           `gorm:"not null;default:0" json:"referral_conversion_rate"`
	AvgDiscountGiven       decimal.Decimal   `gorm:"type:decimal(15,2);not null;default:0" json:"avg_discount_given"`
	CalculatedAt           time.Time         `json:"calculated_at"`
	CreatedAt              time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ReferralStats) TableName() string {
	return "referral_stats"
}

func (s *ReferralStats) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// NewReferralStats builds an empty rollup row for an entity
func NewReferralStats(tenantID string, entityType domain.EntityType, entityID string) (*ReferralStats, error) {
	if !entityType.IsValid() {
		return nil, domain.ErrInvalidEntityType
	}
	if tenantID == "" || entityID == "" {
		return nil, domain.ErrValidation
	}
	return &ReferralStats{
		TenantID:   tenantID,
		EntityType: entityType,
		EntityID:   entityID,
	}, nil
}

// CustomerRollup is the recomputed customer-side aggregate
type CustomerRollup struct {
	TotalSent      int
	Successful     int
	Pending        int
	RewardsEarned  decimal.Decimal
	RewardsPending decimal.Decimal
}

// ApplyCustomerRollup overwrites the customer-side fields. A
// professional-typed row rejects the write.
func (s *ReferralStats) ApplyCustomerRollup(r CustomerRollup, now time.Time) error {
	if s.EntityType != domain.EntityCustomer {
		return domain.ErrStatsEntityMismatch
	}
	s.TotalReferralsSent = r.TotalSent
	s.SuccessfulReferrals = r.Successful
	s.PendingReferrals = r.Pending
	s.TotalRewardsEarned = r.RewardsEarned
	s.RewardsPending = r.RewardsPending
	s.CalculatedAt = now
	return nil
}

// ProfessionalRollup is the recomputed professional-side aggregate
type ProfessionalRollup struct {
	Given          int
	Received       int
	ConversionRate float64
	AvgDiscount    decimal.Decimal
}

// ApplyProfessionalRollup overwrites the professional-side fields. A
// customer-typed row rejects the write.
func (s *ReferralStats) ApplyProfessionalRollup(r ProfessionalRollup, now time.Time) error {
	if s.EntityType != domain.EntityProfessional {
		return domain.ErrStatsEntityMismatch
	}
	s.ReferralsGiven = r.Given
	s.ReferralsReceived = r.Received
	s.ReferralConversionRate = r.ConversionRate
	s.AvgDiscountGiven = r.AvgDiscount
	s.CalculatedAt = now
	return nil
}

// ============================================================
// Directory tables (platform-owned, Read Only!)
// ============================================================

// Customer mirrors the platform's customers table. This service never
// writes it.
type Customer struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	TenantID  string `gorm:"size:36;not null" json:"tenant_id"`
	FirstName string `gorm:"size:100" json:"first_name"`
	LastName  string `gorm:"size:100" json:"last_name"`
	Email     string `gorm:"size:255" json:"email"`
	Phone     string `gorm:"size:30" json:"phone"`
	IsActive  bool   `json:"is_active"`
}

func (Customer) TableName() string {
	return "customers"
}

// Professional mirrors the platform's professionals table. Read only.
type Professional struct {
	ID           string `gorm:"primaryKey;size:36" json:"id"`
	TenantID     string `gorm:"size:36;not null" json:"tenant_id"`
	BusinessName string `gorm:"size:200" json:"business_name"`
	Email        string `gorm:"size:255" json:"email"`
	Phone        string `gorm:"size:30" json:"phone"`
	IsActive     bool   `json:"is_active"`
}

func (Professional) TableName() string {
	return "professionals"
}

// ============================================================
// Helpers
// ============================================================

// NormalizeEmail lowercases and trims an email for storage and matching
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizePhone strips everything but digits
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, ch := range phone {
		if unicode.IsDigit(ch) {
			b.WriteRune(ch)
		}
	}
	return b.String()
}

// AutoMigrate creates the service-owned tables. Directory tables
// (customers, professionals) belong to the platform and are never
// migrated here.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&ReferralCode{},
		&CustomerReferral{},
		&ProfessionalReferral{},
		&ReferralStats{},
	)
}
