package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndValidateRoundTrip(t *testing.T) {
	v, err := NewJWTValidator("test-secret", "notegraph")
	require.NoError(t, err)

	token, err := v.IssueToken("user-1", "Ada", time.Minute)
	require.NoError(t, err)

	claims, err := v.ValidateToken("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "Ada", claims.Name)
}

func TestValidateRejectsBadTokens(t *testing.T) {
	v, err := NewJWTValidator("test-secret", "notegraph")
	require.NoError(t, err)

	_, err = v.ValidateToken("")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = v.ValidateToken("Bearer not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := v.IssueToken("user-1", "", -time.Minute)
	require.NoError(t, err)
	_, err = v.ValidateToken(expired)
	assert.ErrorIs(t, err, ErrExpiredToken)

	other, err := NewJWTValidator("other-secret", "notegraph")
	require.NoError(t, err)
	forged, err := other.IssueToken("user-1", "", time.Minute)
	require.NoError(t, err)
	_, err = v.ValidateToken(forged)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateChecksIssuer(t *testing.T) {
	issuerA, err := NewJWTValidator("secret", "a")
	require.NoError(t, err)
	issuerB, err := NewJWTValidator("secret", "b")
	require.NoError(t, err)

	token, err := issuerA.IssueToken("user-1", "", time.Minute)
	require.NoError(t, err)
	_, err = issuerB.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidClaims)
}
