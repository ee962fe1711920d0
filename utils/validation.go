// utils/validation.go
package utils

import (
	"regexp"
	"strings"
)

var phonePattern = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

// NormalizePhone strips spaces, dashes and parentheses.
func NormalizePhone(phone string) string {
	cleaned := strings.TrimSpace(phone)
	for _, r := range []string{" ", "-", "(", ")"} {
		cleaned = strings.ReplaceAll(cleaned, r, "")
	}
	return cleaned
}

// ValidatePhone checks if a phone number is in a valid international format
func ValidatePhone(phone string) bool {
	// Allows + prefix followed by up to 15 digits
	return phonePattern.MatchString(NormalizePhone(phone))
}
