package records

import (
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// ParseDate reads a YYYY-MM-DD value. Blank or malformed input is treated as
// absent and never defaulted.
func ParseDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return nil
	}
	return &t
}

// FormatDate renders a stored date for forms and JSON.
func FormatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}
