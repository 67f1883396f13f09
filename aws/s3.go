// Package aws builds the S3 client used as the media host
package aws

import (
	cfgpkg "bitwise74/vidhub-api/config"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

type S3Client struct {
	C      *s3.Client
	Bucket string
	// Prefix for public object URLs, without a trailing slash
	PublicURL string
}

func NewS3(ctx context.Context, c cfgpkg.Storage) (*S3Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(c.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.AccessKeyID,
			c.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg)

	if err := CheckBucket(ctx, client, c.Bucket); err != nil {
		return nil, err
	}

	publicURL := c.PublicURL
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", c.Bucket, c.Region)
	}

	return &S3Client{
		C:         client,
		Bucket:    c.Bucket,
		PublicURL: strings.TrimSuffix(publicURL, "/"),
	}, nil
}

// CheckBucket fails if the bucket doesn't exist or can't be reached with
// the configured credentials
func CheckBucket(ctx context.Context, client *s3.Client, bucket string) error {
	_, err := client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		var apiErr smithy.APIError

		if errors.As(err, &apiErr) {
			if apiErr.ErrorCode() == "NotFound" {
				return fmt.Errorf("bucket '%s' does not exist", bucket)
			}
		}

		return fmt.Errorf("failed to check if bucket exists, %w", err)
	}

	return nil
}
