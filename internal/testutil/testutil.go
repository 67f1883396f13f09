// Package testutil has helpers shared by tests across packages
package testutil

import (
	"bitwise74/vidhub-api/db"
	"bitwise74/vidhub-api/internal/model"
	"bitwise74/vidhub-api/internal/service"
	"bitwise74/vidhub-api/pkg/security"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"sync"
	"testing"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// PNG is the smallest prefix mimetype recognizes as image/png
var PNG = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

// NewDB returns a migrated in-memory SQLite database private to the test
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := gonanoid.Must(12)
	d, err := db.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)))
	require.NoError(t, err)

	sqlDB, err := d.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	return d
}

// Argon returns a hasher with cheap parameters
func Argon() *security.ArgonHash {
	return &security.ArgonHash{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
}

// CreateUser inserts a user with the given password and returns it
func CreateUser(t *testing.T, d *gorm.DB, username, password string) *model.User {
	t.Helper()

	hash, err := Argon().Hash(password)
	require.NoError(t, err)

	u := &model.User{
		ID:           gonanoid.Must(16),
		Username:     username,
		Email:        username + "@example.com",
		Fullname:     "Test " + username,
		Avatar:       "https://cdn.example.com/" + username + ".png",
		PasswordHash: hash,
	}
	require.NoError(t, d.Create(u).Error)

	return u
}

// FileHeader builds a multipart file header the way the HTTP layer would
func FileHeader(t *testing.T, field, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, name))
	h.Set("Content-Type", "application/octet-stream")

	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })

	return form.File[field][0]
}

// FakeMedia is an in-memory media host
type FakeMedia struct {
	mu      sync.Mutex
	n       int
	Objects map[string][]byte
	Deleted []string

	// When set, uploads fail with this error
	UploadErr error
}

func NewFakeMedia() *FakeMedia {
	return &FakeMedia{Objects: make(map[string][]byte)}
}

func (f *FakeMedia) Upload(_ context.Context, r io.Reader, _ int64, _ string) (*service.MediaObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.UploadErr != nil {
		return nil, f.UploadErr
	}

	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	f.n++
	key := fmt.Sprintf("object-%d", f.n)
	f.Objects[key] = b

	return &service.MediaObject{Key: key, URL: "https://cdn.example.com/" + key}, nil
}

func (f *FakeMedia) Destroy(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.Objects[key]; !ok {
		return errors.New("no such object")
	}

	delete(f.Objects, key)
	f.Deleted = append(f.Deleted, key)

	return nil
}

func (f *FakeMedia) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.Objects)
}
