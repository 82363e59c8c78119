package models

import (
	"errors"
	"testing"
	"time"

	"autolink-referral/internal/core/domain"

	"github.com/shopspring/decimal"
)

func newTestReferral(t *testing.T) *CustomerReferral {
	t.Helper()
	ref, err := NewCustomerReferral("tenant-1", "cust-1", "SARA7XKM", CustomerReferralDetails{
		RefereeEmail: "Jake.Ward@Example.com",
		RefereeName:  "Jake Ward",
	}, time.Now().AddDate(0, 0, 90))
	if err != nil {
		t.Fatalf("NewCustomerReferral() error = %v", err)
	}
	return ref
}

func TestNewCustomerReferralRequiresContact(t *testing.T) {
	_, err := NewCustomerReferral("tenant-1", "cust-1", "SARA7XKM", CustomerReferralDetails{}, time.Now())
	if !errors.Is(err, domain.ErrMissingContact) {
		t.Fatalf("error = %v, want ErrMissingContact", err)
	}
}

func TestNewCustomerReferralNormalizesContactKey(t *testing.T) {
	ref := newTestReferral(t)
	if ref.ActiveContactKey == nil || *ref.ActiveContactKey != "jake.ward@example.com" {
		t.Fatalf("ActiveContactKey = %v, want normalized email", ref.ActiveContactKey)
	}

	phoneRef, err := NewCustomerReferral("tenant-1", "cust-1", "SARA7XKM", CustomerReferralDetails{
		RefereePhone: "+1 (555) 010-4477",
	}, time.Now().AddDate(0, 0, 90))
	if err != nil {
		t.Fatalf("NewCustomerReferral() error = %v", err)
	}
	if phoneRef.ActiveContactKey == nil || *phoneRef.ActiveContactKey != "15550104477" {
		t.Fatalf("ActiveContactKey = %v, want normalized phone", phoneRef.ActiveContactKey)
	}
}

func TestCustomerReferralHappyPath(t *testing.T) {
	ref := newTestReferral(t)
	amount := decimal.NewFromFloat(25.00)

	if err := ref.MarkContacted(); err != nil {
		t.Fatalf("MarkContacted() error = %v", err)
	}
	if ref.Status != domain.ReferralContacted {
		t.Errorf("Status = %s, want CONTACTED", ref.Status)
	}

	if err := ref.Convert("cust-2", &amount, domain.RewardTypeCash, time.Now()); err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if ref.Status != domain.ReferralConverted {
		t.Errorf("Status = %s, want CONVERTED", ref.Status)
	}
	if ref.RewardStatus != domain.RewardPending {
		t.Errorf("RewardStatus = %s, want PENDING after conversion", ref.RewardStatus)
	}
	if ref.ActiveContactKey != nil {
		t.Error("ActiveContactKey should be cleared on conversion")
	}
	if ref.RefereeCustomerID == nil || *ref.RefereeCustomerID != "cust-2" {
		t.Errorf("RefereeCustomerID = %v, want cust-2", ref.RefereeCustomerID)
	}
}

func TestCustomerReferralConvertFromPending(t *testing.T) {
	ref := newTestReferral(t)
	if err := ref.Convert("cust-2", nil, "", time.Now()); err != nil {
		t.Fatalf("Convert() straight from PENDING error = %v", err)
	}
}

func TestCustomerReferralTerminalStatesAreFinal(t *testing.T) {
	terminalSetups := []struct {
		name  string
		setup func(ref *CustomerReferral)
	}{
		{"converted", func(ref *CustomerReferral) { _ = ref.Convert("cust-2", nil, "", time.Now()) }},
		{"expired", func(ref *CustomerReferral) { _ = ref.Expire() }},
		{"cancelled", func(ref *CustomerReferral) { _ = ref.Cancel() }},
	}

	for _, tt := range terminalSetups {
		t.Run(tt.name, func(t *testing.T) {
			ref := newTestReferral(t)
			tt.setup(ref)

			if err := ref.MarkContacted(); !errors.Is(err, domain.ErrInvalidStateTransition) {
				t.Errorf("MarkContacted() after %s: error = %v, want invalid transition", tt.name, err)
			}
			if err := ref.Expire(); !errors.Is(err, domain.ErrInvalidStateTransition) {
				t.Errorf("Expire() after %s: error = %v, want invalid transition", tt.name, err)
			}
			if err := ref.Cancel(); !errors.Is(err, domain.ErrInvalidStateTransition) {
				t.Errorf("Cancel() after %s: error = %v, want invalid transition", tt.name, err)
			}
		})
	}
}

func TestCustomerReferralExpireOnlyFromPending(t *testing.T) {
	ref := newTestReferral(t)
	if err := ref.MarkContacted(); err != nil {
		t.Fatalf("MarkContacted() error = %v", err)
	}
	if err := ref.Expire(); !errors.Is(err, domain.ErrInvalidStateTransition) {
		t.Fatalf("Expire() from CONTACTED: error = %v, want invalid transition", err)
	}
}

func TestCustomerReferralCancelForcesRewardCancelled(t *testing.T) {
	ref := newTestReferral(t)
	if err := ref.Cancel(); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if ref.RewardStatus != domain.RewardCancelled {
		t.Errorf("RewardStatus = %s, want CANCELLED", ref.RewardStatus)
	}
	if ref.ActiveContactKey != nil {
		t.Error("ActiveContactKey should be cleared on cancel")
	}
}

func TestRewardSubMachine(t *testing.T) {
	t.Run("approve then pay", func(t *testing.T) {
		ref := newTestReferral(t)
		_ = ref.Convert("cust-2", nil, "", time.Now())

		if err := ref.ApproveReward(); err != nil {
			t.Fatalf("ApproveReward() error = %v", err)
		}
		if err := ref.MarkRewardPaid(time.Now()); err != nil {
			t.Fatalf("MarkRewardPaid() error = %v", err)
		}
		if ref.RewardStatus != domain.RewardPaid {
			t.Errorf("RewardStatus = %s, want PAID", ref.RewardStatus)
		}
		if ref.RewardPaidAt == nil {
			t.Error("RewardPaidAt should be set")
		}
	})

	t.Run("approve requires converted referral", func(t *testing.T) {
		ref := newTestReferral(t)
		if err := ref.ApproveReward(); !errors.Is(err, domain.ErrInvalidStateTransition) {
			t.Fatalf("ApproveReward() on PENDING referral: error = %v, want invalid transition", err)
		}
	})

	t.Run("pay requires approval", func(t *testing.T) {
		ref := newTestReferral(t)
		_ = ref.Convert("cust-2", nil, "", time.Now())
		if err := ref.MarkRewardPaid(time.Now()); !errors.Is(err, domain.ErrInvalidStateTransition) {
			t.Fatalf("MarkRewardPaid() without approval: error = %v, want invalid transition", err)
		}
	})

	t.Run("cancel from pending and approved only", func(t *testing.T) {
		ref := newTestReferral(t)
		_ = ref.Convert("cust-2", nil, "", time.Now())
		if err := ref.CancelReward(); err != nil {
			t.Fatalf("CancelReward() from PENDING error = %v", err)
		}

		ref2 := newTestReferral(t)
		_ = ref2.Convert("cust-2", nil, "", time.Now())
		_ = ref2.ApproveReward()
		if err := ref2.CancelReward(); err != nil {
			t.Fatalf("CancelReward() from APPROVED error = %v", err)
		}

		if err := ref2.CancelReward(); !errors.Is(err, domain.ErrInvalidStateTransition) {
			t.Fatalf("CancelReward() twice: error = %v, want invalid transition", err)
		}
	})

	t.Run("paid reward cannot be cancelled", func(t *testing.T) {
		ref := newTestReferral(t)
		_ = ref.Convert("cust-2", nil, "", time.Now())
		_ = ref.ApproveReward()
		_ = ref.MarkRewardPaid(time.Now())
		if err := ref.CancelReward(); !errors.Is(err, domain.ErrInvalidStateTransition) {
			t.Fatalf("CancelReward() on PAID: error = %v, want invalid transition", err)
		}
	})
}

func TestCustomerReferralIsExpired(t *testing.T) {
	now := time.Now()

	ref := newTestReferral(t)
	ref.ExpiresAt = now.Add(-time.Hour)
	if !ref.IsExpired(now) {
		t.Error("IsExpired() = false for overdue PENDING referral")
	}

	_ = ref.MarkContacted()
	if ref.IsExpired(now) {
		t.Error("IsExpired() = true for CONTACTED referral")
	}
}

func newTestHandOff(t *testing.T) *ProfessionalReferral {
	t.Helper()
	ref, err := NewProfessionalReferral("tenant-1", "pro-1", "pro-2", "cust-1", ProfessionalReferralDetails{
		Reason:   "Transmission rebuild beyond our shop",
		Priority: domain.PriorityHigh,
	}, time.Now().AddDate(0, 0, 30))
	if err != nil {
		t.Fatalf("NewProfessionalReferral() error = %v", err)
	}
	return ref
}

func TestNewProfessionalReferralRejectsSelfReferral(t *testing.T) {
	_, err := NewProfessionalReferral("tenant-1", "pro-1", "pro-1", "cust-1", ProfessionalReferralDetails{}, time.Now())
	if !errors.Is(err, domain.ErrSelfReferral) {
		t.Fatalf("error = %v, want ErrSelfReferral", err)
	}
}

func TestProfessionalReferralLifecycle(t *testing.T) {
	t.Run("accept then complete", func(t *testing.T) {
		ref := newTestHandOff(t)
		if err := ref.Accept(time.Now()); err != nil {
			t.Fatalf("Accept() error = %v", err)
		}
		if ref.AcceptedAt == nil {
			t.Error("AcceptedAt should be set")
		}
		if err := ref.Complete(time.Now()); err != nil {
			t.Fatalf("Complete() error = %v", err)
		}
		if ref.Status != domain.ProReferralCompleted {
			t.Errorf("Status = %s, want COMPLETED", ref.Status)
		}
	})

	t.Run("decline records reason", func(t *testing.T) {
		ref := newTestHandOff(t)
		if err := ref.Decline("fully booked this month"); err != nil {
			t.Fatalf("Decline() error = %v", err)
		}
		if ref.DeclinedReason == nil || *ref.DeclinedReason != "fully booked this month" {
			t.Errorf("DeclinedReason = %v", ref.DeclinedReason)
		}
	})

	t.Run("complete requires accepted", func(t *testing.T) {
		ref := newTestHandOff(t)
		if err := ref.Complete(time.Now()); !errors.Is(err, domain.ErrInvalidStateTransition) {
			t.Fatalf("Complete() from PENDING: error = %v, want invalid transition", err)
		}
	})

	t.Run("expire only from pending", func(t *testing.T) {
		ref := newTestHandOff(t)
		_ = ref.Accept(time.Now())
		if err := ref.Expire(); !errors.Is(err, domain.ErrInvalidStateTransition) {
			t.Fatalf("Expire() from ACCEPTED: error = %v, want invalid transition", err)
		}
	})

	t.Run("terminal states are final", func(t *testing.T) {
		ref := newTestHandOff(t)
		_ = ref.Decline("")
		if err := ref.Accept(time.Now()); !errors.Is(err, domain.ErrInvalidStateTransition) {
			t.Fatalf("Accept() after decline: error = %v, want invalid transition", err)
		}
	})
}

func TestProfessionalReferralDiscount(t *testing.T) {
	value := decimal.NewFromInt(15)

	t.Run("non-none type requires value", func(t *testing.T) {
		ref := newTestHandOff(t)
		if err := ref.SetDiscount(domain.DiscountPercentage, nil, ""); !errors.Is(err, domain.ErrMissingDiscountValue) {
			t.Fatalf("SetDiscount() without value: error = %v, want ErrMissingDiscountValue", err)
		}
	})

	t.Run("set and clear", func(t *testing.T) {
		ref := newTestHandOff(t)
		if err := ref.SetDiscount(domain.DiscountPercentage, &value, "DISCXKM7N2"); err != nil {
			t.Fatalf("SetDiscount() error = %v", err)
		}
		if !ref.DiscountOffered || ref.DiscountCode == nil {
			t.Error("discount offer should be recorded")
		}

		if err := ref.SetDiscount(domain.DiscountNone, nil, ""); err != nil {
			t.Fatalf("SetDiscount(NONE) error = %v", err)
		}
		if ref.DiscountOffered || ref.DiscountValue != nil || ref.DiscountCode != nil {
			t.Error("discount offer should be cleared")
		}
	})

	t.Run("mark used requires offer", func(t *testing.T) {
		ref := newTestHandOff(t)
		if err := ref.MarkDiscountUsed(); !errors.Is(err, domain.ErrDiscountNotOffered) {
			t.Fatalf("MarkDiscountUsed() without offer: error = %v, want ErrDiscountNotOffered", err)
		}

		_ = ref.SetDiscount(domain.DiscountFixed, &value, "")
		if err := ref.MarkDiscountUsed(); err != nil {
			t.Fatalf("MarkDiscountUsed() error = %v", err)
		}
		if !ref.DiscountUsed {
			t.Error("DiscountUsed should be set")
		}
	})
}

func TestProfessionalReferralFollowUp(t *testing.T) {
	ref := newTestHandOff(t)
	_ = ref.Decline("not our specialty")

	// follow-ups are independent of the hand-off status
	date := time.Now().AddDate(0, 0, 7)
	ref.SetFollowUp(date, "check if they found someone")
	if !ref.FollowUpRequired || ref.FollowUpDate == nil || ref.FollowUpNotes == nil {
		t.Fatal("follow-up should be recorded on a declined hand-off")
	}

	ref.ClearFollowUp()
	if ref.FollowUpRequired || ref.FollowUpDate != nil || ref.FollowUpNotes != nil {
		t.Fatal("follow-up should be cleared")
	}
}
