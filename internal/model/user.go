// Package model defines database models
package model

import "time"

type User struct {
	ID         string `gorm:"primaryKey;size:16" json:"id"`
	Username   string `gorm:"uniqueIndex;not null" json:"username"`
	Email      string `gorm:"uniqueIndex;not null" json:"email"`
	Fullname   string `gorm:"not null" json:"fullname"`
	Avatar     string `gorm:"not null" json:"avatar"`
	CoverImage string `json:"coverImage"`

	// Never serialized. Only the SHA-256 of the current refresh token is kept
	PasswordHash          string     `gorm:"not null" json:"-"`
	RefreshTokenHash      *string    `gorm:"index" json:"-"`
	RefreshTokenExpiresAt *time.Time `gorm:"index" json:"-"`

	WatchHistory []WatchHistoryEntry `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Owner is the public projection of a user attached to videos
type Owner struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Fullname string `json:"fullname"`
	Avatar   string `json:"avatar"`
}

func (u *User) Owner() Owner {
	return Owner{
		ID:       u.ID,
		Username: u.Username,
		Fullname: u.Fullname,
		Avatar:   u.Avatar,
	}
}
