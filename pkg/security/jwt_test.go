package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenSigner_Roundtrip(t *testing.T) {
	s := NewAccessSigner("access-secret", time.Minute)

	token, exp, err := s.Sign("user1234567890ab", "alice")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), exp, 2*time.Second)

	claims, err := s.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user1234567890ab", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, TypeAccess, claims.TokenType)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenSigner_UniquePerCall(t *testing.T) {
	s := NewRefreshSigner("refresh-secret", time.Hour)

	a, _, err := s.Sign("u1", "")
	require.NoError(t, err)
	b, _, err := s.Sign("u1", "")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestTokenSigner_WrongSecret(t *testing.T) {
	token, _, err := NewAccessSigner("one", time.Minute).Sign("u1", "alice")
	require.NoError(t, err)

	_, err = NewAccessSigner("two", time.Minute).Parse(token)
	require.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestTokenSigner_Expired(t *testing.T) {
	token, _, err := NewAccessSigner("secret", -time.Minute).Sign("u1", "alice")
	require.NoError(t, err)

	_, err = NewAccessSigner("secret", time.Minute).Parse(token)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestTokenSigner_TypeMismatch(t *testing.T) {
	refresh := NewRefreshSigner("secret", time.Hour)
	access := NewAccessSigner("secret", time.Minute)

	token, _, err := refresh.Sign("u1", "")
	require.NoError(t, err)

	_, err = access.Parse(token)
	require.ErrorIs(t, err, ErrTokenType)
}

func TestTokenSigner_Missing(t *testing.T) {
	_, err := NewAccessSigner("secret", time.Minute).Parse("")
	require.ErrorIs(t, err, ErrTokenMissing)
}

func TestTokenSigner_RejectsOtherAlgorithms(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		UserID:    "u1",
		TokenType: TypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	})
	signed, err := tok.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewAccessSigner("secret", time.Minute).Parse(signed)
	assert.Error(t, err)
}

func TestTokenMatches(t *testing.T) {
	stored := HashToken("refresh-token")

	assert.True(t, TokenMatches("refresh-token", stored))
	assert.False(t, TokenMatches("other-token", stored))
	assert.Len(t, stored, 64)
}
