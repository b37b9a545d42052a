package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStaticUsers(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []StaticUser
	}{
		{
			name:     "empty",
			input:    "",
			expected: nil,
		},
		{
			name:  "single pair",
			input: "alice:pw",
			expected: []StaticUser{
				{Username: "alice", Password: "pw"},
			},
		},
		{
			name:  "multiple pairs with whitespace",
			input: " alice:pw , bob : hunter2 ",
			expected: []StaticUser{
				{Username: "alice", Password: "pw"},
				{Username: "bob", Password: "hunter2"},
			},
		},
		{
			name:  "pairs without a colon dropped",
			input: "alice:pw,nopassword",
			expected: []StaticUser{
				{Username: "alice", Password: "pw"},
			},
		},
		{
			name:  "password may contain colon",
			input: "alice:pw:extra",
			expected: []StaticUser{
				{Username: "alice", Password: "pw:extra"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseStaticUsers(tt.input))
		})
	}
}
