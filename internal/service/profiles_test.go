package service_test

import (
	"bitwise74/vidhub-api/internal/model"
	"bitwise74/vidhub-api/internal/service"
	"bitwise74/vidhub-api/internal/testutil"
	"bitwise74/vidhub-api/pkg/apperr"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newProfiles(t *testing.T) (*service.Profiles, *testutil.FakeMedia, *gorm.DB) {
	t.Helper()

	d := testutil.NewDB(t)
	media := testutil.NewFakeMedia()

	return service.NewProfiles(d, testutil.Argon(), media, 1<<20), media, d
}

func validInput() service.RegisterInput {
	return service.RegisterInput{
		Username: "Alice",
		Email:    "alice@example.com",
		Fullname: "Alice Liddell",
		Password: "password123",
	}
}

func countUsers(t *testing.T, d *gorm.DB) int64 {
	t.Helper()

	var n int64
	require.NoError(t, d.Model(&model.User{}).Count(&n).Error)
	return n
}

func TestRegister(t *testing.T) {
	p, media, _ := newProfiles(t)

	avatar := testutil.FileHeader(t, "avatar", "me.png", testutil.PNG)

	user, err := p.Register(context.Background(), validInput(), avatar, nil)
	require.NoError(t, err)

	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Len(t, user.ID, 16)
	assert.True(t, strings.HasPrefix(user.Avatar, "https://cdn.example.com/"))
	assert.Empty(t, user.CoverImage)
	assert.True(t, strings.HasPrefix(user.PasswordHash, "$argon2id$"))
	assert.Equal(t, 1, media.Count())

	ok, err := testutil.Argon().Verify("password123", user.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegister_WithCover(t *testing.T) {
	p, media, _ := newProfiles(t)

	avatar := testutil.FileHeader(t, "avatar", "me.png", testutil.PNG)
	cover := testutil.FileHeader(t, "coverImage", "cover.png", testutil.PNG)

	user, err := p.Register(context.Background(), validInput(), avatar, cover)
	require.NoError(t, err)

	assert.NotEmpty(t, user.CoverImage)
	assert.NotEqual(t, user.Avatar, user.CoverImage)
	assert.Equal(t, 2, media.Count())
}

func TestRegister_Rejected(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*service.RegisterInput)
		avatar []byte
		kind   apperr.Kind
	}{
		{"missing username", func(in *service.RegisterInput) { in.Username = "  " }, testutil.PNG, apperr.KindBadRequest},
		{"missing email", func(in *service.RegisterInput) { in.Email = "" }, testutil.PNG, apperr.KindBadRequest},
		{"missing fullname", func(in *service.RegisterInput) { in.Fullname = "" }, testutil.PNG, apperr.KindBadRequest},
		{"missing password", func(in *service.RegisterInput) { in.Password = "" }, testutil.PNG, apperr.KindBadRequest},
		{"invalid email", func(in *service.RegisterInput) { in.Email = "not-an-email" }, testutil.PNG, apperr.KindBadRequest},
		{"short password", func(in *service.RegisterInput) { in.Password = "short" }, testutil.PNG, apperr.KindBadRequest},
		{"invalid username", func(in *service.RegisterInput) { in.Username = "al ice" }, testutil.PNG, apperr.KindBadRequest},
		{"avatar not an image", func(in *service.RegisterInput) {}, []byte("just some text"), apperr.KindBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, media, d := newProfiles(t)

			in := validInput()
			tt.mutate(&in)

			_, err := p.Register(context.Background(), in, testutil.FileHeader(t, "avatar", "a.png", tt.avatar), nil)
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperr.KindOf(err))
			assert.Zero(t, countUsers(t, d))
			assert.Zero(t, media.Count())
		})
	}
}

func TestRegister_AvatarRequired(t *testing.T) {
	p, media, d := newProfiles(t)

	_, err := p.Register(context.Background(), validInput(), nil, nil)
	require.Error(t, err)
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	assert.Zero(t, countUsers(t, d))
	assert.Zero(t, media.Count())
}

func TestRegister_AvatarTooLarge(t *testing.T) {
	d := testutil.NewDB(t)
	p := service.NewProfiles(d, testutil.Argon(), testutil.NewFakeMedia(), 8)

	_, err := p.Register(context.Background(), validInput(), testutil.FileHeader(t, "avatar", "a.png", testutil.PNG), nil)
	assert.Equal(t, apperr.KindTooLarge, apperr.KindOf(err))
}

func TestRegister_Duplicate(t *testing.T) {
	p, media, d := newProfiles(t)
	ctx := context.Background()

	_, err := p.Register(ctx, validInput(), testutil.FileHeader(t, "avatar", "a.png", testutil.PNG), nil)
	require.NoError(t, err)

	sameName := validInput()
	sameName.Username = "ALICE"
	sameName.Email = "other@example.com"

	sameEmail := validInput()
	sameEmail.Username = "bob"

	emailCase := validInput()
	emailCase.Username = "carol"
	emailCase.Email = "ALICE@Example.com"

	for name, in := range map[string]service.RegisterInput{"username": sameName, "email": sameEmail, "email casing": emailCase} {
		t.Run(name, func(t *testing.T) {
			_, err := p.Register(ctx, in, testutil.FileHeader(t, "avatar", "a.png", testutil.PNG), nil)
			require.Error(t, err)
			assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
		})
	}

	assert.EqualValues(t, 1, countUsers(t, d))
	assert.Equal(t, 1, media.Count())
}

func TestRegister_BadCoverDestroysAvatar(t *testing.T) {
	p, media, d := newProfiles(t)

	avatar := testutil.FileHeader(t, "avatar", "a.png", testutil.PNG)
	cover := testutil.FileHeader(t, "coverImage", "c.txt", []byte("plain text"))

	_, err := p.Register(context.Background(), validInput(), avatar, cover)
	require.Error(t, err)
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))

	assert.Zero(t, media.Count())
	assert.Len(t, media.Deleted, 1)
	assert.Zero(t, countUsers(t, d))
}

func TestRegister_UploadFailure(t *testing.T) {
	p, media, d := newProfiles(t)
	media.UploadErr = errors.New("bucket on fire")

	_, err := p.Register(context.Background(), validInput(), testutil.FileHeader(t, "avatar", "a.png", testutil.PNG), nil)
	require.Error(t, err)

	e := apperr.From(err)
	assert.Equal(t, apperr.KindInternal, e.Kind)
	assert.NotContains(t, e.Message, "bucket on fire")
	assert.Zero(t, countUsers(t, d))
}

func TestUpdateProfile(t *testing.T) {
	p, _, d := newProfiles(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, d, "alice", "password123")
	testutil.CreateUser(t, d, "bob", "password123")

	t.Run("nothing to update", func(t *testing.T) {
		_, err := p.UpdateProfile(ctx, alice.ID, service.ProfileUpdate{})
		assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	})

	t.Run("invalid email", func(t *testing.T) {
		_, err := p.UpdateProfile(ctx, alice.ID, service.ProfileUpdate{Email: "nope"})
		assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	})

	t.Run("email taken", func(t *testing.T) {
		_, err := p.UpdateProfile(ctx, alice.ID, service.ProfileUpdate{Email: "bob@example.com"})
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})

	t.Run("own email is fine", func(t *testing.T) {
		u, err := p.UpdateProfile(ctx, alice.ID, service.ProfileUpdate{Email: "alice@example.com"})
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", u.Email)
	})

	t.Run("email taken in other casing", func(t *testing.T) {
		_, err := p.UpdateProfile(ctx, alice.ID, service.ProfileUpdate{Email: "Bob@Example.COM"})
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})

	t.Run("email is lowercased", func(t *testing.T) {
		u, err := p.UpdateProfile(ctx, alice.ID, service.ProfileUpdate{Email: "Alice@Example.com"})
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", u.Email)
	})

	t.Run("fullname only", func(t *testing.T) {
		u, err := p.UpdateProfile(ctx, alice.ID, service.ProfileUpdate{Fullname: "Alice L."})
		require.NoError(t, err)
		assert.Equal(t, "Alice L.", u.Fullname)
		assert.Equal(t, "alice@example.com", u.Email)
	})

	t.Run("both", func(t *testing.T) {
		u, err := p.UpdateProfile(ctx, alice.ID, service.ProfileUpdate{Fullname: "A", Email: "a@example.com"})
		require.NoError(t, err)
		assert.Equal(t, "A", u.Fullname)
		assert.Equal(t, "a@example.com", u.Email)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := p.UpdateProfile(ctx, "nobody", service.ProfileUpdate{Fullname: "X"})
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})
}

func TestChangePassword(t *testing.T) {
	p, _, d := newProfiles(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, d, "alice", "password123")

	err := p.ChangePassword(ctx, alice.ID, "wrong-password", "newpassword1")
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	err = p.ChangePassword(ctx, alice.ID, "password123", "short")
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))

	err = p.ChangePassword(ctx, alice.ID, "", "newpassword1")
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))

	require.NoError(t, p.ChangePassword(ctx, alice.ID, "password123", "newpassword1"))

	var stored model.User
	require.NoError(t, d.Where("id = ?", alice.ID).First(&stored).Error)

	ok, err := testutil.Argon().Verify("newpassword1", stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = testutil.Argon().Verify("password123", stored.PasswordHash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateAvatarAndCover(t *testing.T) {
	p, media, d := newProfiles(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, d, "alice", "password123")

	u, err := p.UpdateAvatar(ctx, alice.ID, testutil.FileHeader(t, "avatar", "new.png", testutil.PNG))
	require.NoError(t, err)
	assert.NotEqual(t, alice.Avatar, u.Avatar)

	u, err = p.UpdateCoverImage(ctx, alice.ID, testutil.FileHeader(t, "coverImage", "cover.png", testutil.PNG))
	require.NoError(t, err)
	assert.NotEmpty(t, u.CoverImage)
	assert.NotEqual(t, u.Avatar, u.CoverImage)

	assert.Equal(t, 2, media.Count())
	assert.Empty(t, media.Deleted)
}

func TestUpdateAvatar_Rejected(t *testing.T) {
	p, media, d := newProfiles(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, d, "alice", "password123")

	_, err := p.UpdateAvatar(ctx, alice.ID, nil)
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))

	_, err = p.UpdateCoverImage(ctx, alice.ID, testutil.FileHeader(t, "coverImage", "c.txt", []byte("hello")))
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))

	media.UploadErr = errors.New("down")
	_, err = p.UpdateAvatar(ctx, alice.ID, testutil.FileHeader(t, "avatar", "a.png", testutil.PNG))
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}

func TestUpdateAvatar_DestroysUploadWhenWriteFails(t *testing.T) {
	p, media, _ := newProfiles(t)

	_, err := p.UpdateAvatar(context.Background(), "nobody", testutil.FileHeader(t, "avatar", "a.png", testutil.PNG))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	assert.Zero(t, media.Count())
	assert.Len(t, media.Deleted, 1)
}

func TestDeleteUser(t *testing.T) {
	p, _, d := newProfiles(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, d, "alice", "password123")
	bob := testutil.CreateUser(t, d, "bob", "password123")

	video := &model.Video{OwnerID: bob.ID, Title: "v", Thumbnail: "t", VideoFile: "f"}
	require.NoError(t, d.Create(video).Error)
	require.NoError(t, d.Create(&model.Subscription{SubscriberID: alice.ID, ChannelID: bob.ID}).Error)
	require.NoError(t, d.Create(&model.Subscription{SubscriberID: bob.ID, ChannelID: alice.ID}).Error)
	require.NoError(t, d.Create(&model.WatchHistoryEntry{UserID: alice.ID, VideoID: video.ID, Position: 1}).Error)

	t.Run("empty username", func(t *testing.T) {
		err := p.DeleteUser(ctx, " ")
		assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	})

	t.Run("unknown user", func(t *testing.T) {
		err := p.DeleteUser(ctx, "carol")
		require.Error(t, err)
		assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	})

	require.NoError(t, p.DeleteUser(ctx, "alice"))

	var n int64
	require.NoError(t, d.Model(&model.User{}).Where("id = ?", alice.ID).Count(&n).Error)
	assert.Zero(t, n)

	require.NoError(t, d.Model(&model.Subscription{}).Count(&n).Error)
	assert.Zero(t, n)

	require.NoError(t, d.Model(&model.WatchHistoryEntry{}).Count(&n).Error)
	assert.Zero(t, n)

	// Other users and their videos stay
	require.NoError(t, d.Model(&model.Video{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
	assert.EqualValues(t, 1, countUsers(t, d))
}
