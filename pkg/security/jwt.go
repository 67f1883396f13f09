package security

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

var (
	ErrTokenMissing  = errors.New("token missing")
	ErrTokenType     = errors.New("token type mismatch")
	ErrTokenNoUserID = errors.New("token has no user id")
)

type Claims struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username,omitempty"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// TokenSigner issues and parses one kind of token. Access and refresh tokens
// use separate signers with their own secret and lifetime.
type TokenSigner struct {
	secret    []byte
	ttl       time.Duration
	tokenType string
}

func NewAccessSigner(secret string, ttl time.Duration) *TokenSigner {
	return &TokenSigner{secret: []byte(secret), ttl: ttl, tokenType: TypeAccess}
}

func NewRefreshSigner(secret string, ttl time.Duration) *TokenSigner {
	return &TokenSigner{secret: []byte(secret), ttl: ttl, tokenType: TypeRefresh}
}

func (s *TokenSigner) TTL() time.Duration {
	return s.ttl
}

// Sign returns a signed token for the user and its expiry. Every token gets a
// random jti so two tokens issued in the same second never collide.
func (s *TokenSigner) Sign(userID, username string) (string, time.Time, error) {
	jti, err := gonanoid.New()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate jti, %w", err)
	}

	now := time.Now()
	exp := now.Add(s.ttl)

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:    userID,
		Username:  username,
		TokenType: s.tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})

	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign %s token, %w", s.tokenType, err)
	}

	return signed, exp, nil
}

// Parse validates signature, expiry and token type
func (s *TokenSigner) Parse(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrTokenMissing
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}

	if claims.TokenType != s.tokenType {
		return nil, ErrTokenType
	}

	if claims.UserID == "" {
		return nil, ErrTokenNoUserID
	}

	return claims, nil
}

// HashToken returns the hex SHA-256 of a token, which is what gets stored
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// TokenMatches reports whether token hashes to stored in constant time
func TokenMatches(token, stored string) bool {
	return subtle.ConstantTimeCompare([]byte(HashToken(token)), []byte(stored)) == 1
}
