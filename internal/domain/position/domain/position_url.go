package domain

import (
	"net/url"
	"strings"
)

// PositionURL is the link to a job posting. The empty value means no link.
type PositionURL struct {
	value string
}

// NewPositionURL validates value and wraps it. Non-empty values must be
// absolute URLs with a scheme and a host.
func NewPositionURL(value string) (PositionURL, error) {
	if value == "" {
		return PositionURL{}, nil
	}
	if strings.TrimSpace(value) != value {
		return PositionURL{}, newInvalidURLError(value)
	}
	u, err := url.Parse(value)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return PositionURL{}, newInvalidURLError(value)
	}
	return PositionURL{value: value}, nil
}

// Value returns the raw validated string.
func (u PositionURL) Value() string {
	return u.value
}

// String implements fmt.Stringer.
func (u PositionURL) String() string {
	return u.value
}

// IsEmpty reports whether no link was provided.
func (u PositionURL) IsEmpty() bool {
	return u.value == ""
}

// Equals reports whether both URLs wrap the same string.
func (u PositionURL) Equals(other PositionURL) bool {
	return u.value == other.value
}
