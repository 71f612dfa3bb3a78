package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	CodeLength        = 6
	DefaultCodeExpiry = 48 * time.Hour

	codeMin = 100000
	codeMax = 999999
)

// GenerateCode returns a 6-digit code drawn uniformly from [100000, 999999].
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", fmt.Errorf("failed to generate security code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+codeMin), nil
}

// ExpiryFromNow returns now plus the given validity window. A non-positive
// window falls back to DefaultCodeExpiry.
func ExpiryFromNow(validity time.Duration) time.Time {
	return ExpiryFrom(time.Now(), validity)
}

// ExpiryFrom is ExpiryFromNow anchored at a given instant.
func ExpiryFrom(now time.Time, validity time.Duration) time.Time {
	if validity <= 0 {
		validity = DefaultCodeExpiry
	}
	return now.Add(validity)
}

// IsValid reports whether a stored code can still be used.
func IsValid(code *string, used bool, expiry *time.Time) bool {
	return IsValidAt(code, used, expiry, time.Now())
}

// IsValidAt is IsValid evaluated at a fixed instant.
func IsValidAt(code *string, used bool, expiry *time.Time, now time.Time) bool {
	if code == nil || *code == "" || used {
		return false
	}
	return !ExpiredAt(expiry, now)
}

// ExpiredAt reports whether a code expiry is missing or not after now.
func ExpiredAt(expiry *time.Time, now time.Time) bool {
	return expiry == nil || !expiry.After(now)
}

// WellFormedCode reports whether s is exactly six ASCII digits.
func WellFormedCode(s string) bool {
	if len(s) != CodeLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// FormatCode renders a 6-digit code as NN-NN-NN. Any other input is returned
// unchanged.
func FormatCode(code string) string {
	if !WellFormedCode(code) {
		return code
	}
	return code[0:2] + "-" + code[2:4] + "-" + code[4:6]
}
