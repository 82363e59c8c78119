package models

import (
	"testing"
	"time"

	"autolink-referral/internal/core/domain"

	"github.com/shopspring/decimal"
)

func TestNewReferralCodeOwnerBinding(t *testing.T) {
	tests := []struct {
		name     string
		codeType domain.CodeType
		check    func(t *testing.T, rc *ReferralCode)
	}{
		{
			"customer code binds customer id",
			domain.CodeTypeCustomer,
			func(t *testing.T, rc *ReferralCode) {
				if rc.CustomerID == nil || *rc.CustomerID != "owner-1" {
					t.Errorf("CustomerID = %v, want owner-1", rc.CustomerID)
				}
				if rc.ProfessionalID != nil || rc.CampaignID != nil {
					t.Error("non-customer owner refs must stay nil")
				}
			},
		},
		{
			"professional code binds professional id",
			domain.CodeTypeProfessional,
			func(t *testing.T, rc *ReferralCode) {
				if rc.ProfessionalID == nil || *rc.ProfessionalID != "owner-1" {
					t.Errorf("ProfessionalID = %v, want owner-1", rc.ProfessionalID)
				}
			},
		},
		{
			"campaign code binds campaign id",
			domain.CodeTypeCampaign,
			func(t *testing.T, rc *ReferralCode) {
				if rc.CampaignID == nil || *rc.CampaignID != "owner-1" {
					t.Errorf("CampaignID = %v, want owner-1", rc.CampaignID)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc, err := NewReferralCode("tenant-1", "sara7xkm", tt.codeType, "owner-1")
			if err != nil {
				t.Fatalf("NewReferralCode() error = %v", err)
			}
			if rc.Code != "SARA7XKM" {
				t.Errorf("Code = %q, want uppercase SARA7XKM", rc.Code)
			}
			if rc.OwnerID() != "owner-1" {
				t.Errorf("OwnerID() = %q, want owner-1", rc.OwnerID())
			}
			tt.check(t, rc)
		})
	}
}

func TestNewReferralCodeRejectsUnknownType(t *testing.T) {
	if _, err := NewReferralCode("tenant-1", "SARA7XKM", "MYSTERY", "owner-1"); err == nil {
		t.Fatal("NewReferralCode() with unknown type should fail")
	}
}

func TestReferralCodeCanBeUsed(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	two := 2

	tests := []struct {
		name string
		mod  func(rc *ReferralCode)
		want bool
	}{
		{"fresh code", func(rc *ReferralCode) {}, true},
		{"inactive", func(rc *ReferralCode) { rc.Deactivate() }, false},
		{"reactivated", func(rc *ReferralCode) { rc.Deactivate(); rc.Activate() }, true},
		{"expired", func(rc *ReferralCode) { rc.ExpiresAt = &past }, false},
		{"not yet expired", func(rc *ReferralCode) { rc.ExpiresAt = &future }, true},
		{"max uses reached", func(rc *ReferralCode) { rc.MaxUses = &two; rc.CurrentUses = 2 }, false},
		{"under max uses", func(rc *ReferralCode) { rc.MaxUses = &two; rc.CurrentUses = 1 }, true},
		{"unlimited uses", func(rc *ReferralCode) { rc.CurrentUses = 999 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc, err := NewReferralCode("tenant-1", "SARA7XKM", domain.CodeTypeCustomer, "owner-1")
			if err != nil {
				t.Fatalf("NewReferralCode() error = %v", err)
			}
			tt.mod(rc)
			if got := rc.CanBeUsed(now); got != tt.want {
				t.Errorf("CanBeUsed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReferralCodeRecordUse(t *testing.T) {
	one := 1
	rc, _ := NewReferralCode("tenant-1", "SARA7XKM", domain.CodeTypeCustomer, "owner-1")
	rc.MaxUses = &one

	if err := rc.RecordUse(); err != nil {
		t.Fatalf("RecordUse() error = %v", err)
	}
	if rc.CurrentUses != 1 {
		t.Errorf("CurrentUses = %d, want 1", rc.CurrentUses)
	}
	if err := rc.RecordUse(); err == nil {
		t.Fatal("RecordUse() past max should fail")
	}
}

func TestReferralCodeUpdateConfigRejectsLoweringBelowUsage(t *testing.T) {
	rc, _ := NewReferralCode("tenant-1", "SARA7XKM", domain.CodeTypeCustomer, "owner-1")
	rc.CurrentUses = 5

	three := 3
	if err := rc.UpdateConfig(&three, nil, nil, nil); err == nil {
		t.Fatal("UpdateConfig() with max_uses below current_uses should fail")
	}
}

func TestStatsEntityTypeGuard(t *testing.T) {
	now := time.Now()

	custStats, err := NewReferralStats("tenant-1", domain.EntityCustomer, "cust-1")
	if err != nil {
		t.Fatalf("NewReferralStats() error = %v", err)
	}
	if err := custStats.ApplyProfessionalRollup(ProfessionalRollup{}, now); err == nil {
		t.Fatal("professional rollup on a customer row should fail")
	}
	if err := custStats.ApplyCustomerRollup(CustomerRollup{TotalSent: 3}, now); err != nil {
		t.Fatalf("ApplyCustomerRollup() error = %v", err)
	}
	if custStats.TotalReferralsSent != 3 {
		t.Errorf("TotalReferralsSent = %d, want 3", custStats.TotalReferralsSent)
	}

	proStats, err := NewReferralStats("tenant-1", domain.EntityProfessional, "pro-1")
	if err != nil {
		t.Fatalf("NewReferralStats() error = %v", err)
	}
	if err := proStats.ApplyCustomerRollup(CustomerRollup{}, now); err == nil {
		t.Fatal("customer rollup on a professional row should fail")
	}
	if err := proStats.ApplyProfessionalRollup(ProfessionalRollup{Given: 2, Received: 4, ConversionRate: 0.5, AvgDiscount: decimal.NewFromInt(10)}, now); err != nil {
		t.Fatalf("ApplyProfessionalRollup() error = %v", err)
	}
	if proStats.ReferralsReceived != 4 {
		t.Errorf("ReferralsReceived = %d, want 4", proStats.ReferralsReceived)
	}
}

func TestNewReferralStatsRejectsInvalidEntityType(t *testing.T) {
	if _, err := NewReferralStats("tenant-1", "VEHICLE", "v-1"); err == nil {
		t.Fatal("NewReferralStats() with invalid entity type should fail")
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Jake.Ward@Example.COM "); got != "jake.ward@example.com" {
		t.Errorf("NormalizeEmail() = %q", got)
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"+1 (555) 010-4477", "15550104477"},
		{"555.010.4477", "5550104477"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizePhone(tt.in); got != tt.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
