package models

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"rdpManager/internal/apperrors"
)

func TestValidateHostname(t *testing.T) {
	valid := []string{"web01", "db01.corp.local", "  padded  ", "10.0.0.5"}
	for _, name := range valid {
		assert.NoError(t, ValidateHostname(name), "hostname %q", name)
	}

	invalid := []string{"", "   ", "..", "a..b", "a/b", `a\b`, "../up"}
	for _, name := range invalid {
		err := ValidateHostname(name)
		assert.Error(t, err, "hostname %q", name)
		assert.True(t, apperrors.IsType(err, apperrors.InvalidHostname), "hostname %q", name)
	}
}

func TestHostMatches(t *testing.T) {
	h := Host{Hostname: "Web01"}
	assert.True(t, h.Matches("web01"))
	assert.True(t, h.Matches("WEB01"))
	assert.True(t, h.Matches("  web01 "))
	assert.False(t, h.Matches("web02"))
}

func TestDisplayUser(t *testing.T) {
	assert.Equal(t, "alice", Credential{Username: "alice"}.DisplayUser())
	assert.Equal(t, `CORP\alice`, Credential{Username: "alice", Domain: "CORP"}.DisplayUser())
}
