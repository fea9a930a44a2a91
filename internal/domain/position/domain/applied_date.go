package domain

import (
	"strings"
	"time"
)

// appliedDateLayouts are the accepted date encodings, tried in order.
var appliedDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	time.RFC1123Z,
	time.RFC1123,
}

// AppliedDate is the day an application was submitted.
// It is immutable and always holds a parseable value.
type AppliedDate struct {
	value string
}

// NewAppliedDate validates value and wraps it.
func NewAppliedDate(value string) (AppliedDate, error) {
	if _, ok := parseAppliedDate(value); !ok {
		return AppliedDate{}, newInvalidDateError(value)
	}
	return AppliedDate{value: value}, nil
}

func parseAppliedDate(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, layout := range appliedDateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Value returns the raw validated string.
func (d AppliedDate) Value() string {
	return d.value
}

// String implements fmt.Stringer.
func (d AppliedDate) String() string {
	return d.value
}

// Time returns the parsed date. The zero AppliedDate yields the zero time.
func (d AppliedDate) Time() time.Time {
	t, _ := parseAppliedDate(d.value)
	return t
}

// Display returns the date formatted for people, e.g. "Jan 15, 2024".
func (d AppliedDate) Display() string {
	if d.value == "" {
		return ""
	}
	return d.Time().Format("Jan 2, 2006")
}

// Equals reports whether both dates wrap the same string.
func (d AppliedDate) Equals(other AppliedDate) bool {
	return d.value == other.value
}
