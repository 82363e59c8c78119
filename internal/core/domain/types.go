package domain

// CodeType identifies who a referral code belongs to
type CodeType string

const (
	CodeTypeCustomer     CodeType = "CUSTOMER"
	CodeTypeProfessional CodeType = "PROFESSIONAL"
	CodeTypeCampaign     CodeType = "CAMPAIGN"
)

// ReferralStatus is the customer referral funnel status
type ReferralStatus string

const (
	ReferralPending   ReferralStatus = "PENDING"
	ReferralContacted ReferralStatus = "CONTACTED"
	ReferralConverted ReferralStatus = "CONVERTED"
	ReferralExpired   ReferralStatus = "EXPIRED"
	ReferralCancelled ReferralStatus = "CANCELLED"
)

// IsTerminal reports whether no further funnel transition is allowed
func (s ReferralStatus) IsTerminal() bool {
	return s == ReferralConverted || s == ReferralExpired || s == ReferralCancelled
}

// RewardStatus tracks the reward sub-state attached to a customer referral
type RewardStatus string

const (
	RewardPending   RewardStatus = "PENDING"
	RewardApproved  RewardStatus = "APPROVED"
	RewardPaid      RewardStatus = "PAID"
	RewardCancelled RewardStatus = "CANCELLED"
)

// RewardType is how a referrer reward is paid out
type RewardType string

const (
	RewardTypeCash     RewardType = "CASH"
	RewardTypeCredit   RewardType = "CREDIT"
	RewardTypeDiscount RewardType = "DISCOUNT"
)

// ProReferralStatus is the professional-to-professional hand-off status
type ProReferralStatus string

const (
	ProReferralPending   ProReferralStatus = "PENDING"
	ProReferralAccepted  ProReferralStatus = "ACCEPTED"
	ProReferralDeclined  ProReferralStatus = "DECLINED"
	ProReferralCompleted ProReferralStatus = "COMPLETED"
	ProReferralExpired   ProReferralStatus = "EXPIRED"
)

// IsTerminal reports whether the hand-off can no longer change state
func (s ProReferralStatus) IsTerminal() bool {
	return s == ProReferralDeclined || s == ProReferralCompleted || s == ProReferralExpired
}

// Priority of a professional referral
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// IsValid reports whether p is a known priority
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// DiscountType of the incentive attached to a professional referral
type DiscountType string

const (
	DiscountNone       DiscountType = "NONE"
	DiscountPercentage DiscountType = "PERCENTAGE"
	DiscountFixed      DiscountType = "FIXED"
)

// IsValid reports whether d is a known discount type
func (d DiscountType) IsValid() bool {
	switch d {
	case DiscountNone, DiscountPercentage, DiscountFixed:
		return true
	}
	return false
}

// EntityType identifies which side of the marketplace a stats row covers
type EntityType string

const (
	EntityCustomer     EntityType = "CUSTOMER"
	EntityProfessional EntityType = "PROFESSIONAL"
)

// IsValid reports whether e is a known entity type
func (e EntityType) IsValid() bool {
	return e == EntityCustomer || e == EntityProfessional
}
