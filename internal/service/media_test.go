package service_test

import (
	"bitwise74/vidhub-api/internal/service"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjectAPI struct {
	mu      sync.Mutex
	puts    []*s3.PutObjectInput
	bodies  [][]byte
	deletes []string
	putErr  error
}

func (f *fakeObjectAPI) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("upload without deadline")
	}

	if f.putErr != nil {
		return nil, f.putErr
	}

	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}

	f.puts = append(f.puts, in)
	f.bodies = append(f.bodies, b)

	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjectAPI) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deletes = append(f.deletes, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Host_Upload(t *testing.T) {
	api := &fakeObjectAPI{}
	host := service.NewS3HostWithAPI(api, "media", "https://cdn.example.com", time.Minute)

	obj, err := host.Upload(context.Background(), bytes.NewReader([]byte("img")), 3, "image/png")
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(obj.Key, ".png"))
	assert.Equal(t, "https://cdn.example.com/"+obj.Key, obj.URL)

	require.Len(t, api.puts, 1)
	put := api.puts[0]
	assert.Equal(t, "media", aws.ToString(put.Bucket))
	assert.Equal(t, obj.Key, aws.ToString(put.Key))
	assert.Equal(t, "image/png", aws.ToString(put.ContentType))
	assert.EqualValues(t, 3, aws.ToInt64(put.ContentLength))
	assert.Equal(t, []byte("img"), api.bodies[0])
}

func TestS3Host_UniqueKeys(t *testing.T) {
	host := service.NewS3HostWithAPI(&fakeObjectAPI{}, "media", "https://cdn.example.com", time.Minute)

	a, err := host.Upload(context.Background(), strings.NewReader("a"), 1, "image/jpeg")
	require.NoError(t, err)
	b, err := host.Upload(context.Background(), strings.NewReader("b"), 1, "image/jpeg")
	require.NoError(t, err)

	assert.NotEqual(t, a.Key, b.Key)
}

func TestS3Host_UploadError(t *testing.T) {
	api := &fakeObjectAPI{putErr: errors.New("access denied")}
	host := service.NewS3HostWithAPI(api, "media", "https://cdn.example.com", time.Minute)

	obj, err := host.Upload(context.Background(), strings.NewReader("x"), 1, "image/png")
	assert.Nil(t, obj)
	assert.ErrorIs(t, err, api.putErr)
}

func TestS3Host_Destroy(t *testing.T) {
	api := &fakeObjectAPI{}
	host := service.NewS3HostWithAPI(api, "media", "https://cdn.example.com", time.Minute)

	require.NoError(t, host.Destroy(context.Background(), "abc.png"))
	assert.Equal(t, []string{"abc.png"}, api.deletes)
}
