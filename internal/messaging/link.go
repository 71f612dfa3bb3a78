// Package messaging builds click-to-chat links used to hand a security code
// to an applicant over WhatsApp.
package messaging

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"mutuelle-membership/internal/domain"
)

const chatBaseURL = "https://wa.me/"

type LinkBuilder struct {
	countryCode string
	minDigits   int
	maxDigits   int
}

// NewLinkBuilder returns a builder for numbers in the given country whose
// local part has between minDigits and maxDigits digits.
func NewLinkBuilder(countryCode string, minDigits, maxDigits int) *LinkBuilder {
	return &LinkBuilder{
		countryCode: strings.TrimLeft(strings.TrimSpace(countryCode), "+0"),
		minDigits:   minDigits,
		maxDigits:   maxDigits,
	}
}

// Normalize reduces a phone number to <country code><local digits>.
func (b *LinkBuilder) Normalize(phone string) (string, error) {
	trimmed := strings.TrimSpace(phone)
	international := strings.HasPrefix(trimmed, "+")

	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, trimmed)
	if strings.HasPrefix(digits, "00") {
		digits = digits[2:]
		international = true
	}
	if digits == "" {
		return "", fmt.Errorf("%w: %q has no digits", domain.ErrInvalidPhone, phone)
	}

	local := digits
	if strings.HasPrefix(digits, b.countryCode) && (international || len(digits) > b.maxDigits) {
		local = digits[len(b.countryCode):]
	} else if international {
		return "", fmt.Errorf("%w: %q is not a +%s number", domain.ErrInvalidPhone, phone, b.countryCode)
	}

	if len(local) < b.minDigits || len(local) > b.maxDigits {
		return "", fmt.Errorf("%w: %q must have %d to %d local digits", domain.ErrInvalidPhone, phone, b.minDigits, b.maxDigits)
	}
	return b.countryCode + local, nil
}

// Build returns a chat link to phone prefilled with text.
func (b *LinkBuilder) Build(phone, text string) (string, error) {
	number, err := b.Normalize(phone)
	if err != nil {
		return "", err
	}
	link := chatBaseURL + number
	if text != "" {
		link += "?text=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	}
	return link, nil
}
