package service

import (
	"bitwise74/vidhub-api/internal/model"
	"bitwise74/vidhub-api/pkg/apperr"
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

type ChannelProfile struct {
	ID                        string `json:"id"`
	Fullname                  string `json:"fullname"`
	Username                  string `json:"username"`
	Email                     string `json:"email"`
	Avatar                    string `json:"avatar"`
	CoverImage                string `json:"coverImage"`
	SubscribersCount          int64  `json:"subscribersCount"`
	ChannelsSubscribedToCount int64  `json:"channelsSubscribedToCount"`
	IsSubscribed              bool   `json:"isSubscribed"`
}

// HistoryVideo is a watched video with only the public owner fields attached
type HistoryVideo struct {
	model.Video
	Owner model.Owner `json:"owner"`
}

// Channels serves read-only views assembled from users and subscriptions
type Channels struct {
	db *gorm.DB
}

func NewChannels(db *gorm.DB) *Channels {
	return &Channels{db: db}
}

// ChannelProfile looks up a channel by username. viewerID may be empty, in
// which case IsSubscribed is always false.
func (ch *Channels) ChannelProfile(ctx context.Context, username, viewerID string) (*ChannelProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, apperr.BadRequest("Username is missing")
	}

	var user model.User
	if err := ch.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Channel does not exist")
		}

		return nil, apperr.Internal("Failed to look up channel", err)
	}

	profile := &ChannelProfile{
		ID:         user.ID,
		Fullname:   user.Fullname,
		Username:   user.Username,
		Email:      user.Email,
		Avatar:     user.Avatar,
		CoverImage: user.CoverImage,
	}

	subs := func() *gorm.DB {
		return ch.db.WithContext(ctx).Model(&model.Subscription{})
	}

	if err := subs().Where("channel_id = ?", user.ID).Count(&profile.SubscribersCount).Error; err != nil {
		return nil, apperr.Internal("Failed to count subscribers", err)
	}

	if err := subs().Where("subscriber_id = ?", user.ID).Count(&profile.ChannelsSubscribedToCount).Error; err != nil {
		return nil, apperr.Internal("Failed to count subscriptions", err)
	}

	if viewerID != "" {
		var n int64
		err := subs().
			Where("subscriber_id = ? AND channel_id = ?", viewerID, user.ID).
			Count(&n).
			Error
		if err != nil {
			return nil, apperr.Internal("Failed to check subscription", err)
		}

		profile.IsSubscribed = n > 0
	}

	return profile, nil
}

// WatchHistory returns the user's watched videos, oldest first
func (ch *Channels) WatchHistory(ctx context.Context, userID string) ([]HistoryVideo, error) {
	var entries []model.WatchHistoryEntry

	err := ch.db.WithContext(ctx).
		Preload("Video.Owner").
		Where("user_id = ?", userID).
		Order("position ASC").
		Find(&entries).
		Error
	if err != nil {
		return nil, apperr.Internal("Failed to fetch watch history", err)
	}

	history := make([]HistoryVideo, 0, len(entries))
	for _, e := range entries {
		// The video may have been removed since it was watched
		if e.Video == nil {
			continue
		}

		hv := HistoryVideo{Video: *e.Video}
		if e.Video.Owner != nil {
			hv.Owner = e.Video.Owner.Owner()
		}
		hv.Video.Owner = nil

		history = append(history, hv)
	}

	return history, nil
}
