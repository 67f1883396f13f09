package service

import (
	a "bitwise74/vidhub-api/aws"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

const minMultipartSize = 12 << 20

// MediaObject is a stored file and the public URL it can be fetched from
type MediaObject struct {
	Key string
	URL string
}

// MediaHost stores user media somewhere publicly reachable
type MediaHost interface {
	Upload(ctx context.Context, r io.Reader, size int64, contentType string) (*MediaObject, error)
	Destroy(ctx context.Context, key string) error
}

// ObjectAPI is the part of the S3 client the media host needs
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3Host struct {
	api      ObjectAPI
	uploader *manager.Uploader
	bucket   string
	baseURL  string
	timeout  time.Duration
}

func NewS3Host(c *a.S3Client, timeout time.Duration) *S3Host {
	h := NewS3HostWithAPI(c.C, c.Bucket, c.PublicURL, timeout)

	h.uploader = manager.NewUploader(c.C, func(u *manager.Uploader) {
		u.Concurrency = 5
		u.PartSize = 6 << 20
	})

	return h
}

// NewS3HostWithAPI builds a host on top of anything that speaks the S3 object
// API. Multipart uploads are only available through NewS3Host.
func NewS3HostWithAPI(api ObjectAPI, bucket, baseURL string, timeout time.Duration) *S3Host {
	return &S3Host{
		api:     api,
		bucket:  bucket,
		baseURL: baseURL,
		timeout: timeout,
	}
}

// Upload stores r under a random key. The key keeps an extension matching the
// content type so browsers get a sensible file name.
func (h *S3Host) Upload(ctx context.Context, r io.Reader, size int64, contentType string) (*MediaObject, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate object key, %w", err)
	}

	key := id
	if m := mimetype.Lookup(contentType); m != nil {
		key += m.Extension()
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	input := &s3.PutObjectInput{
		Bucket:        aws.String(h.bucket),
		Key:           aws.String(key),
		Body:          r,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	}

	if h.uploader != nil && size > minMultipartSize {
		_, err = h.uploader.Upload(ctx, input)
	} else {
		_, err = h.api.PutObject(ctx, input)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to upload object, %w", err)
	}

	zap.L().Debug("Uploaded object", zap.String("key", key), zap.Int64("size", size))

	return &MediaObject{
		Key: key,
		URL: h.baseURL + "/" + key,
	}, nil
}

func (h *S3Host) Destroy(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	_, err := h.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s, %w", key, err)
	}

	return nil
}

// destroyQuietly removes objects that ended up unreferenced. Failures are only
// logged since the caller is already returning an error.
func destroyQuietly(host MediaHost, objects ...*MediaObject) {
	for _, o := range objects {
		if o == nil {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := host.Destroy(ctx, o.Key); err != nil {
			zap.L().Error("Failed to cleanup after failed upload", zap.String("key", o.Key), zap.Error(err))
		} else {
			zap.L().Debug("Cleaned up after failed upload", zap.String("key", o.Key))
		}
		cancel()
	}
}
