// internal/models/host.go

package models

import (
	"strings"
	"time"

	"rdpManager/internal/apperrors"
)

// Host represents a single manageable remote machine. LastConnected is
// nil for hosts never connected to; it is stamped by the launcher after
// a successful session start.
type Host struct {
	Hostname      string
	Description   string
	LastConnected *time.Time
}

// Substrings that would let a hostname escape the application data
// directory when used to derive file paths.
var forbiddenHostnameParts = []string{"..", "/", "\\"}

// NormalizeHostname trims surrounding whitespace. Hostnames keep their
// original case for display; all comparisons are case-insensitive.
func NormalizeHostname(name string) string {
	return strings.TrimSpace(name)
}

// ValidateHostname checks that a hostname is usable as a registry key.
func ValidateHostname(name string) error {
	name = NormalizeHostname(name)
	if name == "" {
		return apperrors.NewInvalidHostname(name)
	}
	for _, part := range forbiddenHostnameParts {
		if strings.Contains(name, part) {
			return apperrors.NewInvalidHostname(name)
		}
	}
	return nil
}

// Validate checks the host record before it is persisted.
func (h Host) Validate() error {
	return ValidateHostname(h.Hostname)
}

// Matches reports whether name refers to this host.
func (h Host) Matches(name string) bool {
	return strings.EqualFold(h.Hostname, NormalizeHostname(name))
}
