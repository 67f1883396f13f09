package service

import (
	"bitwise74/vidhub-api/internal/model"
	"bitwise74/vidhub-api/pkg/apperr"
	"bitwise74/vidhub-api/pkg/security"
	"bitwise74/vidhub-api/pkg/validators"
	"context"
	"errors"
	"mime/multipart"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Username string
	Email    string
	Fullname string
	Password string
}

// ProfileUpdate holds the fields a user may change on their account. Empty
// fields are left alone.
type ProfileUpdate struct {
	Fullname string
	Email    string
}

// Profiles owns the user record: creation, edits, media and deletion
type Profiles struct {
	db           *gorm.DB
	argon        *security.ArgonHash
	media        MediaHost
	maxImageSize int64
}

func NewProfiles(db *gorm.DB, argon *security.ArgonHash, media MediaHost, maxImageSize int64) *Profiles {
	return &Profiles{
		db:           db,
		argon:        argon,
		media:        media,
		maxImageSize: maxImageSize,
	}
}

// Register creates a user. The avatar is required, the cover image isn't.
func (p *Profiles) Register(ctx context.Context, in RegisterInput, avatar, cover *multipart.FileHeader) (*model.User, error) {
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Fullname = strings.TrimSpace(in.Fullname)

	if in.Username == "" || in.Email == "" || in.Fullname == "" || in.Password == "" {
		return nil, apperr.BadRequest("All fields are required")
	}

	if err := validators.UsernameValidator(in.Username); err != nil {
		return nil, apperr.BadRequest("Invalid username").WithDetails(err.Error())
	}

	if err := validators.EmailValidator(in.Email); err != nil {
		return nil, apperr.BadRequest("Invalid email").WithDetails(err.Error())
	}

	if err := validators.PasswordValidator(in.Password); err != nil {
		return nil, apperr.BadRequest("Invalid password").WithDetails(err.Error())
	}

	var existing int64
	err := p.db.WithContext(ctx).
		Model(&model.User{}).
		Where("username = ? OR email = ?", in.Username, in.Email).
		Count(&existing).
		Error
	if err != nil {
		return nil, apperr.Internal("Failed to check for existing user", err)
	}

	if existing > 0 {
		return nil, apperr.Conflict("User with email or username already exists")
	}

	if avatar == nil {
		return nil, apperr.BadRequest("Avatar file is required")
	}

	hash, err := p.argon.Hash(in.Password)
	if err != nil {
		return nil, apperr.Internal("Failed to hash password", err)
	}

	avatarObj, err := p.storeImage(ctx, avatar, "Avatar")
	if err != nil {
		return nil, err
	}

	var coverObj *MediaObject
	if cover != nil {
		coverObj, err = p.storeImage(ctx, cover, "Cover image")
		if err != nil {
			destroyQuietly(p.media, avatarObj)
			return nil, err
		}
	}

	user := &model.User{
		ID:           gonanoid.Must(16),
		Username:     in.Username,
		Email:        in.Email,
		Fullname:     in.Fullname,
		Avatar:       avatarObj.URL,
		PasswordHash: hash,
	}

	if coverObj != nil {
		user.CoverImage = coverObj.URL
	}

	if err := p.db.WithContext(ctx).Create(user).Error; err != nil {
		destroyQuietly(p.media, avatarObj, coverObj)

		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("User with email or username already exists")
		}

		return nil, apperr.Internal("Something went wrong while registering the user", err)
	}

	return user, nil
}

func (p *Profiles) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*model.User, error) {
	upd.Fullname = strings.TrimSpace(upd.Fullname)
	upd.Email = strings.ToLower(strings.TrimSpace(upd.Email))

	if upd.Fullname == "" && upd.Email == "" {
		return nil, apperr.BadRequest("Fullname or email is required")
	}

	fields := map[string]any{}

	if upd.Fullname != "" {
		fields["fullname"] = upd.Fullname
	}

	if upd.Email != "" {
		if err := validators.EmailValidator(upd.Email); err != nil {
			return nil, apperr.BadRequest("Invalid email").WithDetails(err.Error())
		}

		var taken int64
		err := p.db.WithContext(ctx).
			Model(&model.User{}).
			Where("email = ? AND id <> ?", upd.Email, userID).
			Count(&taken).
			Error
		if err != nil {
			return nil, apperr.Internal("Failed to check email", err)
		}

		if taken > 0 {
			return nil, apperr.Conflict("Email is already in use")
		}

		fields["email"] = upd.Email
	}

	if err := p.update(ctx, userID, fields, "Failed to update account details"); err != nil {
		return nil, err
	}

	return p.find(ctx, userID)
}

func (p *Profiles) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if oldPassword == "" {
		return apperr.BadRequest("Old password is required")
	}

	if err := validators.PasswordValidator(newPassword); err != nil {
		return apperr.BadRequest("Invalid new password").WithDetails(err.Error())
	}

	user, err := p.find(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := p.argon.Verify(oldPassword, user.PasswordHash)
	if err != nil {
		return apperr.Internal("Failed to verify password", err)
	}

	if !ok {
		return apperr.Unauthorized("Invalid old password", nil)
	}

	hash, err := p.argon.Hash(newPassword)
	if err != nil {
		return apperr.Internal("Failed to hash password", err)
	}

	if err := p.update(ctx, userID, map[string]any{"password_hash": hash}, "Failed to change password"); err != nil {
		return err
	}

	return nil
}

// UpdateAvatar replaces the avatar. The old object stays on the media host.
func (p *Profiles) UpdateAvatar(ctx context.Context, userID string, fh *multipart.FileHeader) (*model.User, error) {
	return p.replaceImage(ctx, userID, fh, "avatar", "Avatar")
}

func (p *Profiles) UpdateCoverImage(ctx context.Context, userID string, fh *multipart.FileHeader) (*model.User, error) {
	return p.replaceImage(ctx, userID, fh, "cover_image", "Cover image")
}

// DeleteUser removes the user and everything that points at them
func (p *Profiles) DeleteUser(ctx context.Context, username string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return apperr.BadRequest("Username is required")
	}

	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.Where("username = ?", username).First(&user).Error; err != nil {
			return err
		}

		videoIDs := tx.Model(&model.Video{}).Select("id").Where("owner_id = ?", user.ID)

		if err := tx.Where("user_id = ? OR video_id IN (?)", user.ID, videoIDs).Delete(&model.WatchHistoryEntry{}).Error; err != nil {
			return err
		}

		if err := tx.Where("subscriber_id = ? OR channel_id = ?", user.ID, user.ID).Delete(&model.Subscription{}).Error; err != nil {
			return err
		}

		if err := tx.Where("owner_id = ?", user.ID).Delete(&model.Video{}).Error; err != nil {
			return err
		}

		if err := tx.Where("owner_id = ?", user.ID).Delete(&model.Post{}).Error; err != nil {
			return err
		}

		return tx.Delete(&user).Error
	})
	if err != nil {
		return apperr.Internal("Something went wrong while deleting the user", err)
	}

	return nil
}

func (p *Profiles) replaceImage(ctx context.Context, userID string, fh *multipart.FileHeader, column, label string) (*model.User, error) {
	obj, err := p.storeImage(ctx, fh, label)
	if err != nil {
		return nil, err
	}

	if err := p.update(ctx, userID, map[string]any{column: obj.URL}, "Failed to update "+strings.ToLower(label)); err != nil {
		destroyQuietly(p.media, obj)
		return nil, err
	}

	return p.find(ctx, userID)
}

// storeImage validates an uploaded image and puts it on the media host
func (p *Profiles) storeImage(ctx context.Context, fh *multipart.FileHeader, label string) (*MediaObject, error) {
	f, mime, err := validators.ImageValidator(fh, p.maxImageSize)
	if err != nil {
		switch {
		case errors.Is(err, validators.ErrNoFile):
			return nil, apperr.BadRequest(label + " file is required")
		case errors.Is(err, validators.ErrFileTooLarge):
			return nil, apperr.TooLarge(label + " file is too large")
		case errors.Is(err, validators.ErrFileTypeUnsupported):
			return nil, apperr.BadRequest(label + " must be a png, jpeg, webp or gif image")
		default:
			return nil, apperr.Internal("Failed to read "+strings.ToLower(label), err)
		}
	}
	defer f.Close()

	obj, err := p.media.Upload(ctx, f, fh.Size, mime)
	if err != nil {
		return nil, apperr.Internal("Error while uploading "+strings.ToLower(label), err)
	}

	return obj, nil
}

// update applies fields to the user row. msg is what the client sees if the
// write fails for an unexpected reason.
func (p *Profiles) update(ctx context.Context, userID string, fields map[string]any, msg string) error {
	res := p.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Updates(fields)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return apperr.Conflict("Email is already in use")
		}

		return apperr.Internal(msg, res.Error)
	}

	if res.RowsAffected == 0 {
		return apperr.NotFound("User not found")
	}

	return nil
}

func (p *Profiles) find(ctx context.Context, userID string) (*model.User, error) {
	var user model.User
	if err := p.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User not found")
		}

		return nil, apperr.Internal("Failed to look up user", err)
	}

	return &user, nil
}
