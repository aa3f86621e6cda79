package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenService_EmptySecret(t *testing.T) {
	_, err := NewTokenService("", 0)
	require.ErrorIs(t, err, ErrSecretRequired)
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	t.Parallel()

	svc, err := NewTokenService("super-secret", 0)
	require.NoError(t, err)

	tok, err := svc.Issue("user_123", "a@example.com")
	require.NoError(t, err)

	claims, err := svc.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user_123", claims.UserID)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.NotNil(t, claims.IssuedAt)
	assert.Nil(t, claims.ExpiresAt, "zero ttl must not set exp")
}

func TestTokenService_DistinctUsers(t *testing.T) {
	t.Parallel()

	svc, err := NewTokenService("super-secret", time.Hour)
	require.NoError(t, err)

	tokA, err := svc.Issue("user_a", "a@example.com")
	require.NoError(t, err)
	tokB, err := svc.Issue("user_b", "b@example.com")
	require.NoError(t, err)

	claimsA, err := svc.Verify(tokA)
	require.NoError(t, err)
	claimsB, err := svc.Verify(tokB)
	require.NoError(t, err)

	assert.Equal(t, "user_a", claimsA.UserID)
	assert.Equal(t, "user_b", claimsB.UserID)
}

func TestTokenService_Expired(t *testing.T) {
	t.Parallel()

	svc, err := NewTokenService("secret", time.Minute)
	require.NoError(t, err)

	issuedAt := time.Now().Add(-time.Hour)
	svc.now = func() time.Time { return issuedAt }
	tok, err := svc.Issue("user_1", "u@example.com")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Verify(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestTokenService_WrongSecret(t *testing.T) {
	t.Parallel()

	issuer, err := NewTokenService("right-secret", 0)
	require.NoError(t, err)
	verifier, err := NewTokenService("wrong-secret", 0)
	require.NoError(t, err)

	tok, err := issuer.Issue("user_2", "u2@example.com")
	require.NoError(t, err)

	_, err = verifier.Verify(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_Malformed(t *testing.T) {
	t.Parallel()

	svc, err := NewTokenService("k", 0)
	require.NoError(t, err)

	_, err = svc.Verify("not.a.jwt")
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Verify("")
	require.ErrorIs(t, err, ErrMissingToken)
}

func TestTokenService_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	svc, err := NewTokenService("k", 0)
	require.NoError(t, err)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{UserID: "user_3"})
	signed, err := tok.SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = svc.Verify(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_RejectsEmptyClaims(t *testing.T) {
	t.Parallel()

	svc, err := NewTokenService("k", 0)
	require.NoError(t, err)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{})
	signed, err := tok.SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = svc.Verify(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}
