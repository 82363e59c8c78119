package models

import (
	"time"

	"autolink-referral/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ============================================================
// Customer Referrals (referrer → referee funnel)
// ============================================================

// CustomerReferral represents customer_referrals table. Rows are never
// physically deleted; the funnel ends in CONVERTED, EXPIRED or CANCELLED.
//
// ActiveContactKey holds the normalized referee contact while the funnel
// is still open and is cleared on every terminal transition. The
// (tenant_id, active_contact_key) unique index is the authoritative
// duplicate-pending guard; MySQL has no partial indexes, and NULLs do not
// collide in a unique index, so clearing the column on close reopens the
// contact for a fresh referral.
type CustomerReferral struct {
	ID                   string                `gorm:"primaryKey;size:36" json:"id"`
	TenantID             string                `gorm:"size:36;not null;uniqueIndex:idx_tenant_active_contact;index:idx_tenant_referrer" json:"tenant_id"`
	ReferrerCustomerID   string                `gorm:"size:36;not null;index:idx_tenant_referrer" json:"referrer_customer_id"`
	ReferrerCode         string                `gorm:"size:12;not null" json:"referrer_code"`
	RefereeCustomerID    *string               `gorm:"size:36" json:"referee_customer_id,omitempty"`
	RefereeEmail         *string               `gorm:"size:255" json:"referee_email,omitempty"`
	RefereePhone         *string               `gorm:"size:30" json:"referee_phone,omitempty"`
	RefereeName          *string               `gorm:"size:200" json:"referee_name,omitempty"`
	TargetProfessionalID *string               `gorm:"size:36" json:"target_professional_id,omitempty"`
	TargetServiceType    *string               `gorm:"size:100" json:"target_service_type,omitempty"`
	Status               domain.ReferralStatus `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	ConvertedAt          *time.Time            `json:"converted_at,omitempty"`
	RewardStatus         domain.RewardStatus   `gorm:"size:20;not null;default:'PENDING'" json:"reward_status"`
	RewardAmount         *decimal.Decimal      `gorm:"type:decimal(15,2)" json:"reward_amount,omitempty"`
	RewardType           domain.RewardType     `gorm:"size:20;not null;default:'CREDIT'" json:"reward_type"`
	RewardPaidAt         *time.Time            `json:"reward_paid_at,omitempty"`
	ActiveContactKey     *string               `gorm:"size:120;uniqueIndex:idx_tenant_active_contact" json:"-"`
	ExpiresAt            time.Time             `gorm:"not null;index" json:"expires_at"`
	Version              uint                  `gorm:"not null;default:1" json:"-"`
	CreatedAt            time.Time             `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time             `gorm:"autoUpdateTime" json:"updated_at"`
}

func (CustomerReferral) TableName() string {
	return "customer_referrals"
}

func (r *CustomerReferral) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// CustomerReferralDetails carries the optional referee/targeting fields
// supplied at creation. Empty strings mean absent.
type CustomerReferralDetails struct {
	RefereeEmail         string
	RefereePhone         string
	RefereeName          string
	TargetProfessionalID string
	TargetServiceType    string
}

// NewCustomerReferral builds a pending funnel entry. At least one referee
// contact is required; email and phone are normalized at write time.
func NewCustomerReferral(tenantID, referrerCustomerID, referrerCode string, d CustomerReferralDetails, expiresAt time.Time) (*CustomerReferral, error) {
	if tenantID == "" || referrerCustomerID == "" || referrerCode == "" {
		return nil, domain.ErrValidation
	}

	email := NormalizeEmail(d.RefereeEmail)
	phone := NormalizePhone(d.RefereePhone)
	if email == "" && phone == "" {
		return nil, domain.ErrMissingContact
	}

	r := &CustomerReferral{
		TenantID:           tenantID,
		ReferrerCustomerID: referrerCustomerID,
		ReferrerCode:       referrerCode,
		Status:             domain.ReferralPending,
		RewardStatus:       domain.RewardPending,
		RewardType:         domain.RewardTypeCredit,
		ExpiresAt:          expiresAt,
		Version:            1,
	}
	if email != "" {
		r.RefereeEmail = &email
	}
	if phone != "" {
		r.RefereePhone = &phone
	}
	if d.RefereeName != "" {
		name := d.RefereeName
		r.RefereeName = &name
	}
	if d.TargetProfessionalID != "" {
		id := d.TargetProfessionalID
		r.TargetProfessionalID = &id
	}
	if d.TargetServiceType != "" {
		st := d.TargetServiceType
		r.TargetServiceType = &st
	}

	key := email
	if key == "" {
		key = phone
	}
	r.ActiveContactKey = &key

	return r, nil
}

// IsExpired reports whether a still-pending referral is past its deadline.
// TODO: this ignores CONTACTED while the nightly sweep expires CONTACTED
// rows too; confirm the intended funnel behavior with product.
func (r *CustomerReferral) IsExpired(now time.Time) bool {
	return r.Status == domain.ReferralPending && r.ExpiresAt.Before(now)
}

// MarkContacted records that the referee was reached out to
func (r *CustomerReferral) MarkContacted() error {
	if r.Status != domain.ReferralPending {
		return domain.TransitionError(string(r.Status), "mark contacted")
	}
	r.Status = domain.ReferralContacted
	return nil
}

// Convert closes the funnel successfully. The reward stays PENDING; its
// approval/payment runs through the reward sub-machine.
func (r *CustomerReferral) Convert(refereeCustomerID string, rewardAmount *decimal.Decimal, rewardType domain.RewardType, now time.Time) error {
	if r.Status.IsTerminal() {
		return domain.TransitionError(string(r.Status), "convert")
	}
	if refereeCustomerID == "" {
		return domain.ErrValidation
	}
	r.Status = domain.ReferralConverted
	r.RefereeCustomerID = &refereeCustomerID
	r.ConvertedAt = &now
	r.RewardAmount = rewardAmount
	if rewardType != "" {
		r.RewardType = rewardType
	}
	r.ActiveContactKey = nil
	return nil
}

// Expire times out a referral that never progressed past PENDING
func (r *CustomerReferral) Expire() error {
	if r.Status != domain.ReferralPending {
		return domain.TransitionError(string(r.Status), "expire")
	}
	r.Status = domain.ReferralExpired
	r.ActiveContactKey = nil
	return nil
}

// Cancel withdraws the referral and forces the reward to CANCELLED
func (r *CustomerReferral) Cancel() error {
	if r.Status.IsTerminal() {
		return domain.TransitionError(string(r.Status), "cancel")
	}
	r.Status = domain.ReferralCancelled
	r.RewardStatus = domain.RewardCancelled
	r.ActiveContactKey = nil
	return nil
}

// ApproveReward moves the reward sub-machine PENDING → APPROVED. Only a
// converted referral earns a reward.
func (r *CustomerReferral) ApproveReward() error {
	if r.Status != domain.ReferralConverted {
		return domain.TransitionError(string(r.Status), "approve reward")
	}
	if r.RewardStatus != domain.RewardPending {
		return domain.TransitionError(string(r.RewardStatus), "approve reward")
	}
	r.RewardStatus = domain.RewardApproved
	return nil
}

// MarkRewardPaid moves the reward sub-machine APPROVED → PAID
func (r *CustomerReferral) MarkRewardPaid(now time.Time) error {
	if r.RewardStatus != domain.RewardApproved {
		return domain.TransitionError(string(r.RewardStatus), "mark reward paid")
	}
	r.RewardStatus = domain.RewardPaid
	r.RewardPaidAt = &now
	return nil
}

// CancelReward cancels a not-yet-paid reward
func (r *CustomerReferral) CancelReward() error {
	if r.RewardStatus != domain.RewardPending && r.RewardStatus != domain.RewardApproved {
		return domain.TransitionError(string(r.RewardStatus), "cancel reward")
	}
	r.RewardStatus = domain.RewardCancelled
	return nil
}

// ============================================================
// Professional Referrals (professional → professional hand-off)
// ============================================================

// ProfessionalReferral represents professional_referrals table
type ProfessionalReferral struct {
	ID                   string                   `gorm:"primaryKey;size:36" json:"id"`
	TenantID             string                   `gorm:"size:36;not null;index:idx_tenant_source;index:idx_tenant_target" json:"tenant_id"`
	SourceProfessionalID string                   `gorm:"size:36;not null;index:idx_tenant_source" json:"source_professional_id"`
	TargetProfessionalID string                   `gorm:"size:36;not null;index:idx_tenant_target" json:"target_professional_id"`
	CustomerID           string                   `gorm:"size:36;not null" json:"customer_id"`
	Reason               *string                  `gorm:"size:500" json:"reason,omitempty"`
	ServiceNeeded        *string                  `gorm:"size:200" json:"service_needed,omitempty"`
	Notes                *string                  `gorm:"type:text" json:"notes,omitempty"`
	Priority             domain.Priority          `gorm:"size:10;not null;default:'NORMAL'" json:"priority"`
	Status               domain.ProReferralStatus `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	AcceptedAt           *time.Time               `json:"accepted_at,omitempty"`
	CompletedAt          *time.Time               `json:"completed_at,omitempty"`
	DeclinedReason       *string                  `gorm:"size:500" json:"declined_reason,omitempty"`
	DiscountOffered      bool                     `gorm:"not null;default:false" json:"discount_offered"`
	DiscountType         domain.DiscountType      `gorm:"size:20;not null;default:'NONE'" json:"discount_type"`
	DiscountValue        *decimal.Decimal         `gorm:"type:decimal(15,2)" json:"discount_value,omitempty"`
	DiscountCode         *string                  `gorm:"size:12" json:"discount_code,omitempty"`
	DiscountUsed         bool                     `gorm:"not null;default:false" json:"discount_used"`
	FollowUpRequired     bool                     `gorm:"not null;default:false" json:"follow_up_required"`
	FollowUpDate         *time.Time               `json:"follow_up_date,omitempty"`
	FollowUpNotes        *string                  `gorm:"size:500" json:"follow_up_notes,omitempty"`
	ExpiresAt            time.Time                `gorm:"not null;index" json:"expires_at"`
	Version              uint                     `gorm:"not null;default:1" json:"-"`
	CreatedAt            time.Time                `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time                `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ProfessionalReferral) TableName() string {
	return "professional_referrals"
}

func (r *ProfessionalReferral) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// ProfessionalReferralDetails carries the optional creation fields
type ProfessionalReferralDetails struct {
	Reason        string
	ServiceNeeded string
	Notes         string
	Priority      domain.Priority
}

// NewProfessionalReferral builds a pending hand-off. Source and target
// must be distinct professionals within the tenant.
func NewProfessionalReferral(tenantID, sourceProfessionalID, targetProfessionalID, customerID string, d ProfessionalReferralDetails, expiresAt time.Time) (*ProfessionalReferral, error) {
	if tenantID == "" || sourceProfessionalID == "" || targetProfessionalID == "" || customerID == "" {
		return nil, domain.ErrValidation
	}
	if sourceProfessionalID == targetProfessionalID {
		return nil, domain.ErrSelfReferral
	}

	priority := d.Priority
	if priority == "" {
		priority = domain.PriorityNormal
	}
	if !priority.IsValid() {
		return nil, domain.ErrValidation
	}

	r := &ProfessionalReferral{
		TenantID:             tenantID,
		SourceProfessionalID: sourceProfessionalID,
		TargetProfessionalID: targetProfessionalID,
		CustomerID:           customerID,
		Priority:             priority,
		Status:               domain.ProReferralPending,
		DiscountType:         domain.DiscountNone,
		ExpiresAt:            expiresAt,
		Version:              1,
	}
	if d.Reason != "" {
		reason := d.Reason
		r.Reason = &reason
	}
	if d.ServiceNeeded != "" {
		sn := d.ServiceNeeded
		r.ServiceNeeded = &sn
	}
	if d.Notes != "" {
		notes := d.Notes
		r.Notes = &notes
	}
	return r, nil
}

// Accept takes the hand-off
func (r *ProfessionalReferral) Accept(now time.Time) error {
	if r.Status != domain.ProReferralPending {
		return domain.TransitionError(string(r.Status), "accept")
	}
	r.Status = domain.ProReferralAccepted
	r.AcceptedAt = &now
	return nil
}

// Decline rejects the hand-off with an optional reason
func (r *ProfessionalReferral) Decline(reason string) error {
	if r.Status != domain.ProReferralPending {
		return domain.TransitionError(string(r.Status), "decline")
	}
	r.Status = domain.ProReferralDeclined
	if reason != "" {
		r.DeclinedReason = &reason
	}
	return nil
}

// Complete closes an accepted hand-off as done
func (r *ProfessionalReferral) Complete(now time.Time) error {
	if r.Status != domain.ProReferralAccepted {
		return domain.TransitionError(string(r.Status), "complete")
	}
	r.Status = domain.ProReferralCompleted
	r.CompletedAt = &now
	return nil
}

// Expire times out a hand-off that was never answered
func (r *ProfessionalReferral) Expire() error {
	if r.Status != domain.ProReferralPending {
		return domain.TransitionError(string(r.Status), "expire")
	}
	r.Status = domain.ProReferralExpired
	return nil
}

// SetDiscount attaches or clears the discount offer. A non-NONE type
// requires a value; NONE clears the offer entirely.
func (r *ProfessionalReferral) SetDiscount(discountType domain.DiscountType, value *decimal.Decimal, code string) error {
	if !discountType.IsValid() {
		return domain.ErrValidation
	}
	if discountType == domain.DiscountNone {
		r.DiscountOffered = false
		r.DiscountType = domain.DiscountNone
		r.DiscountValue = nil
		r.DiscountCode = nil
		return nil
	}
	if value == nil {
		return domain.ErrMissingDiscountValue
	}
	r.DiscountOffered = true
	r.DiscountType = discountType
	r.DiscountValue = value
	if code != "" {
		r.DiscountCode = &code
	}
	return nil
}

// MarkDiscountUsed records redemption of the offered discount
func (r *ProfessionalReferral) MarkDiscountUsed() error {
	if !r.DiscountOffered {
		return domain.ErrDiscountNotOffered
	}
	r.DiscountUsed = true
	return nil
}

// SetFollowUp schedules a follow-up; independent of the hand-off status
func (r *ProfessionalReferral) SetFollowUp(date time.Time, notes string) {
	r.FollowUpRequired = true
	r.FollowUpDate = &date
	if notes != "" {
		r.FollowUpNotes = &notes
	} else {
		r.FollowUpNotes = nil
	}
}

// ClearFollowUp removes a scheduled follow-up
func (r *ProfessionalReferral) ClearFollowUp() {
	r.FollowUpRequired = false
	r.FollowUpDate = nil
	r.FollowUpNotes = nil
}
