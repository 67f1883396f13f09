package model

import "time"

type Video struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID     string  `gorm:"size:16;index;not null" json:"-"`
	Title       string  `gorm:"index;not null" json:"title"`
	Description string  `json:"description"`
	Duration    float64 `gorm:"not null" json:"duration"` // Seconds
	Views       int64   `gorm:"default:0" json:"views"`
	IsPublished bool    `gorm:"default:true" json:"isPublished"`
	Thumbnail   string  `gorm:"not null" json:"thumbnail"`
	VideoFile   string  `gorm:"not null" json:"videoFile"`

	Owner *User `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Post struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID   string `gorm:"size:16;index;not null" json:"-"`
	Content   string `gorm:"not null" json:"content"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Owner *User `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
}
