// Package storage uploads link assets to an S3 compatible bucket
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

type Config struct {
	Bucket    string
	Region    string
	Endpoint  string // set for R2, MinIO and other non AWS providers
	AccessKey string
	SecretKey string
	PublicURL string // base used to build returned object URLs
}

type S3Store struct {
	c         *s3.Client
	uploader  *manager.Uploader
	bucket    *string
	publicURL string
}

// NewS3 builds a client and makes sure the bucket exists
func NewS3(ctx context.Context, c Config) (*S3Store, error) {
	opts := []func(*config.LoadOptions) error{}
	if c.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.AccessKey,
			c.SecretKey,
			"",
		)))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if c.Region != "" {
			o.Region = c.Region
		}

		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
			o.UsePathStyle = true
		}
	})

	bucket := aws.String(c.Bucket)

	_, err = client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: bucket,
	})
	if err != nil {
		var apiErr smithy.APIError

		if errors.As(err, &apiErr) {
			if apiErr.ErrorCode() == "NotFound" {
				return nil, fmt.Errorf("bucket '%s' does not exist", c.Bucket)
			}
		}

		return nil, fmt.Errorf("failed to check if bucket exists, %w", err)
	}

	return &S3Store{
		c: client,
		uploader: manager.NewUploader(client, func(u *manager.Uploader) {
			u.Concurrency = 3
			u.PartSize = 6 << 20
		}),
		bucket:    bucket,
		publicURL: c.PublicURL,
	}, nil
}

// Put uploads body under key and returns the URL clients should use
func (s *S3Store) Put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	out, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:       s.bucket,
		Key:          aws.String(key),
		Body:         body,
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s, %w", key, err)
	}

	if s.publicURL != "" {
		return ObjectURL(s.publicURL, key), nil
	}

	return out.Location, nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.c.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: s.bucket,
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s, %w", key, err)
	}

	return nil
}

// Remove deletes the object behind a URL returned by Put. URLs that don't
// point into the bucket are left alone.
func (s *S3Store) Remove(ctx context.Context, rawURL string) error {
	key, ok := KeyFromURL(s.publicURL, *s.bucket, rawURL)
	if !ok {
		return nil
	}

	return s.Delete(ctx, key)
}

// Ping checks that the bucket is still reachable
func (s *S3Store) Ping(ctx context.Context) error {
	_, err := s.c.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: s.bucket})
	return err
}

// ObjectURL joins a public base URL and an object key
func ObjectURL(base, key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}

	return strings.TrimRight(base, "/") + "/" + strings.Join(parts, "/")
}

// KeyFromURL reverses ObjectURL when publicURL is set. Otherwise it accepts
// the virtual hosted and path style locations S3 returns for bucket.
func KeyFromURL(publicURL, bucket, rawURL string) (string, bool) {
	var escaped string

	if publicURL != "" {
		base := strings.TrimRight(publicURL, "/") + "/"
		rest, ok := strings.CutPrefix(rawURL, base)
		if !ok {
			return "", false
		}
		escaped = rest
	} else {
		u, err := url.Parse(rawURL)
		if err != nil || u.Host == "" {
			return "", false
		}

		p := strings.TrimPrefix(u.EscapedPath(), "/")
		switch {
		case strings.HasPrefix(u.Hostname(), bucket+"."):
			escaped = p
		case strings.HasPrefix(p, bucket+"/"):
			escaped = strings.TrimPrefix(p, bucket+"/")
		default:
			return "", false
		}
	}

	key, err := url.PathUnescape(escaped)
	if err != nil || key == "" {
		return "", false
	}

	return key, true
}
