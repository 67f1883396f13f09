package service

import (
	"bitwise74/vidhub-api/config"
	"bitwise74/vidhub-api/internal/model"
	"bitwise74/vidhub-api/pkg/apperr"
	"bitwise74/vidhub-api/pkg/security"
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SessionPair is what a client gets after logging in or refreshing
type SessionPair struct {
	AccessToken      string    `json:"accessToken"`
	RefreshToken     string    `json:"refreshToken"`
	AccessExpiresAt  time.Time `json:"-"`
	RefreshExpiresAt time.Time `json:"-"`
}

type LoginResult struct {
	User *model.User `json:"user"`
	SessionPair
}

// Sessions issues, rotates and verifies the access/refresh token pair. Only
// the hash of the current refresh token is kept on the user row.
type Sessions struct {
	db      *gorm.DB
	argon   *security.ArgonHash
	access  *security.TokenSigner
	refresh *security.TokenSigner
}

func NewSessions(db *gorm.DB, argon *security.ArgonHash, cfg config.JWT) *Sessions {
	return &Sessions{
		db:      db,
		argon:   argon,
		access:  security.NewAccessSigner(cfg.AccessSecret, cfg.AccessTTL),
		refresh: security.NewRefreshSigner(cfg.RefreshSecret, cfg.RefreshTTL),
	}
}

func (s *Sessions) AccessTTL() time.Duration {
	return s.access.TTL()
}

func (s *Sessions) RefreshTTL() time.Duration {
	return s.refresh.TTL()
}

// IssueSessionPair signs a new pair for the user and stores the refresh token
// hash, replacing whatever was there
func (s *Sessions) IssueSessionPair(ctx context.Context, userID string) (*SessionPair, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, apperr.Internal("Something went wrong while generating tokens", err)
	}

	pair, err := s.sign(&user)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"refresh_token_hash":       security.HashToken(pair.RefreshToken),
			"refresh_token_expires_at": pair.RefreshExpiresAt,
		}).
		Error
	if err != nil {
		return nil, apperr.Internal("Something went wrong while generating tokens", err)
	}

	return pair, nil
}

// Login accepts either the username or the email as identifier
func (s *Sessions) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	identifier = strings.ToLower(strings.TrimSpace(identifier))
	if identifier == "" {
		return nil, apperr.BadRequest("Username or email is required")
	}

	if password == "" {
		return nil, apperr.BadRequest("Password is required")
	}

	var user model.User
	err := s.db.WithContext(ctx).
		Where("username = ? OR email = ?", identifier, identifier).
		First(&user).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User does not exist")
		}

		return nil, apperr.Internal("Failed to look up user", err)
	}

	ok, err := s.argon.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, apperr.Internal("Failed to verify password", err)
	}

	if !ok {
		return nil, apperr.Unauthorized("Invalid user credentials", nil)
	}

	pair, err := s.IssueSessionPair(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &LoginResult{User: &user, SessionPair: *pair}, nil
}

// Logout forgets the stored refresh token. Calling it twice is fine.
func (s *Sessions) Logout(ctx context.Context, userID string) error {
	if err := s.clear(ctx, userID); err != nil {
		return apperr.Internal("Failed to log out", err)
	}

	return nil
}

// Refresh trades a valid refresh token for a new pair. A token that was
// already rotated out revokes the session.
func (s *Sessions) Refresh(ctx context.Context, presented string) (*SessionPair, error) {
	if presented == "" {
		return nil, apperr.Unauthorized("Unauthorized request", security.ErrTokenMissing)
	}

	claims, err := s.refresh.Parse(presented)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid refresh token", err)
	}

	var user model.User
	if err := s.db.WithContext(ctx).Where("id = ?", claims.UserID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized("Invalid refresh token", err)
		}

		return nil, apperr.Internal("Failed to look up user", err)
	}

	if user.RefreshTokenHash == nil || !security.TokenMatches(presented, *user.RefreshTokenHash) {
		zap.L().Warn("Refresh token reuse detected, revoking session", zap.String("userID", user.ID))

		if err := s.clear(ctx, user.ID); err != nil {
			zap.L().Error("Failed to revoke session", zap.Error(err), zap.String("userID", user.ID))
		}

		return nil, apperr.Unauthorized("Refresh token is expired or used", nil)
	}

	pair, err := s.sign(&user)
	if err != nil {
		return nil, err
	}

	// Only rotate if nobody else did in the meantime
	res := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ? AND refresh_token_hash = ?", user.ID, *user.RefreshTokenHash).
		Updates(map[string]any{
			"refresh_token_hash":       security.HashToken(pair.RefreshToken),
			"refresh_token_expires_at": pair.RefreshExpiresAt,
		})
	if res.Error != nil {
		return nil, apperr.Internal("Something went wrong while generating tokens", res.Error)
	}

	if res.RowsAffected == 0 {
		return nil, apperr.Unauthorized("Refresh token is expired or used", nil)
	}

	return pair, nil
}

// VerifyAccess returns the user an access token belongs to
func (s *Sessions) VerifyAccess(ctx context.Context, presented string) (*model.User, error) {
	if presented == "" {
		return nil, apperr.Unauthorized("Unauthorized request", security.ErrTokenMissing)
	}

	claims, err := s.access.Parse(presented)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid access token", err)
	}

	var user model.User
	if err := s.db.WithContext(ctx).Where("id = ?", claims.UserID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized("Invalid access token", err)
		}

		return nil, apperr.Internal("Failed to look up user", err)
	}

	return &user, nil
}

func (s *Sessions) sign(user *model.User) (*SessionPair, error) {
	access, accessExp, err := s.access.Sign(user.ID, user.Username)
	if err != nil {
		return nil, apperr.Internal("Something went wrong while generating tokens", err)
	}

	refresh, refreshExp, err := s.refresh.Sign(user.ID, "")
	if err != nil {
		return nil, apperr.Internal("Something went wrong while generating tokens", err)
	}

	return &SessionPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (s *Sessions) clear(ctx context.Context, userID string) error {
	return s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"refresh_token_hash":       nil,
			"refresh_token_expires_at": nil,
		}).
		Error
}
