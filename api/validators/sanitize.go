package validators

import "strings"

// SanitizeFlag normalizes a short query flag such as view or period.
func SanitizeFlag(input string, maxLen int) string {
	trimmed := strings.ToLower(strings.TrimSpace(input))
	if maxLen > 0 && len(trimmed) > maxLen {
		return trimmed[:maxLen]
	}
	return trimmed
}
