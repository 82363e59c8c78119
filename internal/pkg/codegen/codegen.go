package codegen

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// Alphabet excludes visually ambiguous glyphs (0, O, I, 1, L) so codes
// survive being read aloud or hand-copied from a windshield flyer.
const alphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const (
	codeLength         = 8
	discountCodeLength = 10
	discountPrefix     = "DISC"
	maxPrefixLength    = 4
	maxAttempts        = 100
)

// Substrings that must never appear in a shareable code. Checked
// case-insensitively, although generated codes are always uppercase.
var blacklist = []string{
	"ASS", "CUM", "DCK", "FAG", "FCK", "FUK",
	"NGR", "PSS", "SEX", "SHT", "TWT", "XXX",
}

// Generate builds an 8-character referral code. If namePrefix is given it
// is uppercased, filtered to alphabet-legal characters and truncated to 4
// characters; the remainder is filled with cryptographically random
// symbols. Candidates containing a blacklisted substring are regenerated;
// after maxAttempts the code falls back to a fully random one with no
// prefix, so generation only errors if the system CSPRNG fails.
func Generate(namePrefix string) (string, error) {
	prefix := sanitizePrefix(namePrefix)

	for attempt := 0; attempt < maxAttempts; attempt++ {
		suffix, err := randomString(codeLength - len(prefix))
		if err != nil {
			return "", err
		}
		candidate := prefix + suffix
		if !containsBlacklisted(candidate) {
			return candidate, nil
		}
	}

	return randomString(codeLength)
}

// GenerateDiscountCode builds a 10-character "DISC"-prefixed code with the
// same blacklist-retry policy as Generate.
func GenerateDiscountCode() (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		suffix, err := randomString(discountCodeLength - len(discountPrefix))
		if err != nil {
			return "", err
		}
		candidate := discountPrefix + suffix
		if !containsBlacklisted(candidate) {
			return candidate, nil
		}
	}

	return randomString(discountCodeLength)
}

// IsValidFormat reports whether code is 6-12 characters drawn entirely
// from the code alphabet. It says nothing about uniqueness.
func IsValidFormat(code string) bool {
	if len(code) < 6 || len(code) > 12 {
		return false
	}
	for _, ch := range code {
		if !strings.ContainsRune(alphabet, ch) {
			return false
		}
	}
	return true
}

// sanitizePrefix uppercases the name, drops everything outside the code
// alphabet and truncates to maxPrefixLength.
func sanitizePrefix(name string) string {
	var b strings.Builder
	for _, ch := range strings.ToUpper(name) {
		if strings.ContainsRune(alphabet, ch) {
			b.WriteRune(ch)
		}
		if b.Len() == maxPrefixLength {
			break
		}
	}
	return b.String()
}

func containsBlacklisted(code string) bool {
	upper := strings.ToUpper(code)
	for _, word := range blacklist {
		if strings.Contains(upper, word) {
			return true
		}
	}
	return false
}

// randomString draws length characters from the alphabet using crypto/rand
func randomString(length int) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(alphabet[n.Int64()])
	}
	return b.String(), nil
}
