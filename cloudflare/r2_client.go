// Package cloudflare builds an S3 client pointed at Cloudflare R2
package cloudflare

import (
	a "bitwise74/vidhub-api/aws"
	cfgpkg "bitwise74/vidhub-api/config"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// NewR2 returns an S3 client for R2. R2 buckets have no predictable public
// host so the public URL always comes from the config.
func NewR2(ctx context.Context, c cfgpkg.Storage) (*a.S3Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.AccessKeyID,
			c.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.AccountID))
		o.Region = "auto"
	})

	if err := a.CheckBucket(ctx, client, c.Bucket); err != nil {
		return nil, err
	}

	return &a.S3Client{
		C:         client,
		Bucket:    c.Bucket,
		PublicURL: strings.TrimSuffix(c.PublicURL, "/"),
	}, nil
}
