package domain

import (
	"errors"
	"fmt"
)

// Error categories. Every domain error wraps exactly one of these so
// callers can branch with errors.Is without enumerating specifics.
var (
	ErrValidation             = errors.New("validation failed")
	ErrNotFound               = errors.New("resource not found")
	ErrConflict               = errors.New("conflict")
	ErrInvalidStateTransition = fmt.Errorf("%w: invalid state transition", ErrConflict)
)

// Validation errors
var (
	ErrMissingContact       = fmt.Errorf("%w: referee email or phone is required", ErrValidation)
	ErrMissingDiscountValue = fmt.Errorf("%w: discount value is required for this discount type", ErrValidation)
	ErrSelfReferral         = fmt.Errorf("%w: source and target professional must differ", ErrValidation)
	ErrSelfConversion       = fmt.Errorf("%w: referrer and referee must be different customers", ErrValidation)
	ErrOwnerMismatch        = fmt.Errorf("%w: code owner does not match code type", ErrValidation)
	ErrInvalidCodeFormat    = fmt.Errorf("%w: referral code format is invalid", ErrValidation)
	ErrInvalidEntityType    = fmt.Errorf("%w: unknown entity type", ErrValidation)
	ErrStatsEntityMismatch  = fmt.Errorf("%w: stats row belongs to a different entity type", ErrValidation)
)

// Not-found errors
var (
	ErrCustomerNotFound     = fmt.Errorf("%w: customer", ErrNotFound)
	ErrProfessionalNotFound = fmt.Errorf("%w: professional", ErrNotFound)
	ErrReferralNotFound     = fmt.Errorf("%w: referral", ErrNotFound)
	ErrCodeNotFound         = fmt.Errorf("%w: referral code", ErrNotFound)
)

// Conflict errors
var (
	ErrDuplicateReferral    = fmt.Errorf("%w: referral already pending for this contact", ErrConflict)
	ErrCodeAlreadyExists    = fmt.Errorf("%w: referral code already exists in tenant", ErrConflict)
	ErrCodeGenerationFailed = fmt.Errorf("%w: could not mint a unique referral code", ErrConflict)
	ErrCodeNotUsable        = fmt.Errorf("%w: referral code cannot be used", ErrConflict)
	ErrMaxUsesReached       = fmt.Errorf("%w: referral code max uses reached", ErrConflict)
	ErrDiscountNotOffered   = fmt.Errorf("%w: no discount offered on this referral", ErrConflict)
	ErrConcurrentUpdate     = fmt.Errorf("%w: referral was modified concurrently, retry", ErrConflict)
)

// IsValidation reports whether err is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFound reports whether err is a not-found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict reports whether err is a conflict (includes invalid transitions)
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// TransitionError builds an ErrInvalidStateTransition describing the rejected move
func TransitionError(from, action string) error {
	return fmt.Errorf("%w: cannot %s from %s", ErrInvalidStateTransition, action, from)
}
