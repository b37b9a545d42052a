package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRoundTrip(t *testing.T) {
	token, err := IssueSession("secret", SessionClaims{
		Username:   "alice",
		Name:       "Alice",
		IsAdmin:    true,
		AuthMethod: "google",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseSession("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "Alice", claims.Name)
	assert.True(t, claims.IsAdmin)
	assert.Equal(t, "google", claims.AuthMethod)
	require.NotNil(t, claims.ExpiresAt)
}

func TestParseSessionWrongSecret(t *testing.T) {
	token, err := IssueSession("secret", SessionClaims{Username: "alice"})
	require.NoError(t, err)

	_, err = ParseSession("other-secret", token)
	assert.Error(t, err)
}

func TestParseSessionGarbage(t *testing.T) {
	_, err := ParseSession("secret", "not.a.token")
	assert.Error(t, err)
}
