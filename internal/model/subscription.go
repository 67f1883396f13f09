package model

import "time"

// Subscription is a directed edge from a subscriber to the channel they follow
type Subscription struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"`
	SubscriberID string `gorm:"size:16;not null;uniqueIndex:idx_subscriber_channel"`
	ChannelID    string `gorm:"size:16;not null;uniqueIndex:idx_subscriber_channel;index"`
	CreatedAt    time.Time

	Subscriber User `gorm:"foreignKey:SubscriberID;constraint:OnDelete:CASCADE"`
	Channel    User `gorm:"foreignKey:ChannelID;constraint:OnDelete:CASCADE"`
}
