package service

import (
	"bitwise74/vidhub-api/internal/model"
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SessionCleanup periodically clears refresh tokens that expired without the
// user logging out. It stops when ctx is cancelled.
func SessionCleanup(ctx context.Context, t time.Duration, db *gorm.DB) {
	ticker := time.NewTicker(t)

	zap.L().Debug("Session cleanup attached", zap.Duration("tick_every", t))

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				n, err := SweepExpiredSessions(ctx, db, now)
				if err != nil {
					zap.L().Error("Failed to cleanup expired sessions", zap.Error(err))
					continue
				}

				if n > 0 {
					zap.L().Debug("Cleaned up expired sessions", zap.Int64("count", n))
				}
			}
		}
	}()
}

// SweepExpiredSessions clears every refresh token that expired before now and
// returns how many were cleared
func SweepExpiredSessions(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Model(&model.User{}).
		Where("refresh_token_expires_at IS NOT NULL AND refresh_token_expires_at < ?", now).
		Updates(map[string]any{
			"refresh_token_hash":       nil,
			"refresh_token_expires_at": nil,
		})

	return res.RowsAffected, res.Error
}
