package model

import "time"

// WatchHistoryEntry keeps a user's watched videos in order. Position grows
// with every new entry so the oldest watch comes first.
type WatchHistoryEntry struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	UserID    string `gorm:"size:16;not null;index:idx_history_user_position"`
	VideoID   uint   `gorm:"not null"`
	Position  int    `gorm:"not null;index:idx_history_user_position"`
	WatchedAt time.Time

	Video *Video `gorm:"foreignKey:VideoID;constraint:OnDelete:CASCADE"`
}

func (WatchHistoryEntry) TableName() string {
	return "watch_history"
}
