package domain

import "strings"

// NormalizeCode canonicalizes a discipline code for exclusion-list membership tests.
func NormalizeCode(code string) string {
	return strings.ToLower(strings.Join(strings.Fields(code), " "))
}

// NormalizeCountry canonicalizes a country name for exclusion-list membership tests.
func NormalizeCountry(country string) string {
	return strings.ToUpper(strings.Join(strings.Fields(country), " "))
}
