package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	tm := NewTokenManager("unit-test-secret")

	token, err := tm.Issue("alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	username, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	token, err := NewTokenManager("secret-one").Issue("alice")
	require.NoError(t, err)

	_, err = NewTokenManager("secret-two").Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("unit-test-secret")

	for _, bad := range []string{"", "not-a-token", "a.b.c"} {
		_, err := tm.Verify(bad)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", bad)
	}
}
