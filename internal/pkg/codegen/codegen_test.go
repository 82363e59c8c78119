package codegen

import (
	"strings"
	"testing"
)

func TestGenerateLength(t *testing.T) {
	for i := 0; i < 1000; i++ {
		code, err := Generate("")
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if len(code) != codeLength {
			t.Fatalf("Generate() = %q, want length %d", code, codeLength)
		}
	}
}

func TestGenerateAlphabet(t *testing.T) {
	for i := 0; i < 1000; i++ {
		code, err := Generate("")
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		for _, ch := range code {
			if !strings.ContainsRune(alphabet, ch) {
				t.Fatalf("Generate() = %q contains %q outside the alphabet", code, ch)
			}
		}
	}
}

func TestGenerateExcludesAmbiguousGlyphs(t *testing.T) {
	for i := 0; i < 1000; i++ {
		code, err := Generate("")
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if strings.ContainsAny(code, "0OI1L") {
			t.Fatalf("Generate() = %q contains an ambiguous glyph", code)
		}
	}
}

func TestGenerateWithNamePrefix(t *testing.T) {
	tests := []struct {
		name       string
		namePrefix string
		wantPrefix string
	}{
		{"simple name", "Sarah", "SARA"},
		{"short name", "Max", "MAX"},
		{"name with punctuation", "D&B Garage", "DBGA"},
		{"name with excluded glyphs", "Molly", "MY"},
		{"empty name", "", ""},
		{"fully excluded name", "Lolo", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := Generate(tt.namePrefix)
			if err != nil {
				t.Fatalf("Generate(%q) error = %v", tt.namePrefix, err)
			}
			if len(code) != codeLength {
				t.Fatalf("Generate(%q) = %q, want length %d", tt.namePrefix, code, codeLength)
			}
			if !strings.HasPrefix(code, tt.wantPrefix) {
				t.Errorf("Generate(%q) = %q, want prefix %q", tt.namePrefix, code, tt.wantPrefix)
			}
		})
	}
}

func TestGenerateNeverContainsBlacklistedWord(t *testing.T) {
	for i := 0; i < 1000; i++ {
		code, err := Generate("")
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if containsBlacklisted(code) {
			t.Fatalf("Generate() = %q contains a blacklisted substring", code)
		}
	}
}

func TestGenerateDiscountCode(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := GenerateDiscountCode()
		if err != nil {
			t.Fatalf("GenerateDiscountCode() error = %v", err)
		}
		if len(code) != discountCodeLength {
			t.Fatalf("GenerateDiscountCode() = %q, want length %d", code, discountCodeLength)
		}
		if !strings.HasPrefix(code, discountPrefix) {
			t.Fatalf("GenerateDiscountCode() = %q, want prefix %q", code, discountPrefix)
		}
	}
}

func TestIsValidFormat(t *testing.T) {
	tests := []struct {
		name string
		code string
		want bool
	}{
		{"valid eight chars", "SARA7XKM", true},
		{"valid minimum length", "ABCDEF", true},
		{"valid maximum length", "ABCDEFGHJKMN", true},
		{"valid discount code", "DISCXKM7N2", true},
		{"too short", "ABCDE", false},
		{"too long", "ABCDEFGHJKMNP", false},
		{"empty", "", false},
		{"lowercase", "sara7xkm", false},
		{"contains zero", "SARA70KM", false},
		{"contains letter O", "SARAOXKM", false},
		{"contains one", "SARA71KM", false},
		{"contains letter I", "SARAIXKM", false},
		{"contains letter L", "SARALXKM", false},
		{"contains hyphen", "SARA-XKM", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidFormat(tt.code); got != tt.want {
				t.Errorf("IsValidFormat(%q) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestSanitizePrefix(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain name", "sarah", "SARA"},
		{"spaces and punctuation", "D & B Garage", "DBGA"},
		{"digits kept when legal", "Route 66 Motors", "RUTE"},
		{"excluded glyphs dropped", "Oil & Lube", "UBE"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizePrefix(tt.in); got != tt.want {
				t.Errorf("sanitizePrefix(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
