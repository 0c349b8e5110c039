package email

import (
	"strings"
	"unicode"
)

// Normalize trims surrounding whitespace and lower-cases the address.
func Normalize(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// IsValid applies the format rules for registration addresses: exactly one
// '@', a non-empty local part, a dotted domain with no empty labels, and no
// whitespace or control characters anywhere.
func IsValid(address string) bool {
	if address == "" || len(address) > 254 {
		return false
	}
	for _, r := range address {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return false
		}
	}
	local, domain, ok := strings.Cut(address, "@")
	if !ok || local == "" || strings.Contains(domain, "@") {
		return false
	}
	if !strings.Contains(domain, ".") {
		return false
	}
	for _, label := range strings.Split(domain, ".") {
		if label == "" {
			return false
		}
	}
	return true
}
