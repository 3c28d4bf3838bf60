package utils

import (
	"regexp"
	"strings"
)

// NormalizeEmail lowercases and trims an address so it can be used as a key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var e164Regex = regexp.MustCompile(`^\+[1-9]\d{7,14}$`) // ITU-T E.164

var localPhoneRegex = regexp.MustCompile(`^\d{10}$`)

func IsE164(number string) bool { return e164Regex.MatchString(number) }

// IsPhoneNumber accepts E.164 numbers and 10-digit local numbers.
func IsPhoneNumber(number string) bool {
	return IsE164(number) || localPhoneRegex.MatchString(number)
}
