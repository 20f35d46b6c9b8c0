package utils

import (
	"fmt"
	"strings"
	"unicode"
)

// DefaultCountryCode is prepended to bare national numbers.
const DefaultCountryCode = "1"

// PhoneError represents a phone normalization error
type PhoneError struct {
	Code    string
	Message string
}

func (e *PhoneError) Error() string {
	return e.Message
}

// NormalizePhone converts a raw phone string to the canonical
// +<countrycode><number> form used as the customer lookup key.
//
// Accepted inputs: "+15551234567", "001 555 123 4567", "(555) 123-4567",
// "555.123.4567". Spaces, dots, dashes and parentheses are stripped; a
// leading "00" international prefix becomes "+"; a bare 10-digit national
// number gets the default country code.
func NormalizePhone(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", &PhoneError{Code: "EMPTY_PHONE", Message: "Phone number is required"}
	}

	hasPlus := strings.HasPrefix(trimmed, "+")

	var digits strings.Builder
	for _, r := range trimmed {
		switch {
		case unicode.IsDigit(r):
			digits.WriteRune(r)
		case r == '+' || r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
			// separators and the leading plus are dropped
		default:
			return "", &PhoneError{
				Code:    "INVALID_PHONE",
				Message: fmt.Sprintf("Phone number contains invalid character %q", r),
			}
		}
	}

	number := digits.String()

	// "00" international dialing prefix is equivalent to "+"
	if !hasPlus && strings.HasPrefix(number, "00") {
		number = number[2:]
		hasPlus = true
	}

	// Bare national numbers get the default country code
	if !hasPlus && len(number) == 10 {
		number = DefaultCountryCode + number
	}

	if len(number) < 8 || len(number) > 15 {
		return "", &PhoneError{Code: "INVALID_PHONE", Message: "Phone number must have 8 to 15 digits"}
	}

	return "+" + number, nil
}
