package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeFileName(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"web01", "web01"},
		{"db01.corp.local", "db01.corp.local"},
		{"  spaced name  ", "spaced_name"},
		{`..\..\evil`, "evil"},
		{"../up", "up"},
		{"host:3390", "host-3390"},
		{`a/b\c`, "a-b-c"},
		{"", "host"},
		{"...", "host"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.expected, SafeFileName(tc.input), "input %q", tc.input)
	}
}
