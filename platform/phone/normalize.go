// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Normalize parses and validates a phone number, returning the E.164 form.
// The default region is used for numbers without an explicit country code.
// An empty input means "no number" and reports ok=false without being an
// error. Numbers that fail to parse, or that are not both possible and valid
// under their numbering plan, also report ok=false.
func Normalize(input, defaultRegion string) (string, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", false
	}

	number, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil {
		return "", false
	}

	if !phonenumbers.IsPossibleNumber(number) || !phonenumbers.IsValidNumber(number) {
		return "", false
	}

	return phonenumbers.Format(number, phonenumbers.E164), true
}
