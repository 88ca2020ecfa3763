// Package storage uploads batch outputs to an S3-compatible object store.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/AnyUserName/ggpicture/internal/config"
)

// ErrNoBucket is returned by NewClient when no bucket name is given.
var ErrNoBucket = errors.New("bucket is required")

// immutable is the Cache-Control sent with every upload. Object keys embed
// the content hash, so an object never changes once written.
const immutable = "public, max-age=31536000, immutable"

// Client writes content-addressed objects into a single bucket.
type Client struct {
	mc     *minio.Client
	bucket string
}

// NewClient builds a client for bucket using the endpoint and credentials
// in sc. No request is made until the first call.
func NewClient(sc config.Storage, bucket string) (*Client, error) {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, ErrNoBucket
	}
	mc, err := minio.New(sc.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(sc.AccessKey, sc.SecretKey, ""),
		Secure: sc.UseSSL,
		Region: sc.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("object store %s: %w", sc.Endpoint, err)
	}
	return &Client{mc: mc, bucket: bucket}, nil
}

func (c *Client) Bucket() string { return c.bucket }

// EnsureBucket creates the bucket on first use. Losing a creation race to
// another batch run is not an error.
func (c *Client) EnsureBucket(ctx context.Context) error {
	ok, err := c.mc.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("bucket %s: %w", c.bucket, err)
	}
	if ok {
		return nil
	}
	err = c.mc.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{})
	if code := minio.ToErrorResponse(err).Code; err == nil || code == "BucketAlreadyOwnedByYou" || code == "BucketAlreadyExists" {
		return nil
	}
	return fmt.Errorf("create bucket %s: %w", c.bucket, err)
}

// PutIfAbsent uploads data under key unless the key is already taken, and
// reports whether it uploaded. An existing object is assumed to hold the
// same bytes.
func (c *Client) PutIfAbsent(ctx context.Context, key string, data []byte, contentType string) (bool, error) {
	_, err := c.mc.StatObject(ctx, c.bucket, key, minio.StatObjectOptions{})
	switch {
	case err == nil:
		return false, nil
	case minio.ToErrorResponse(err).StatusCode != http.StatusNotFound:
		return false, fmt.Errorf("stat %s/%s: %w", c.bucket, key, err)
	}

	_, err = c.mc.PutObject(ctx, c.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: immutable,
	})
	if err != nil {
		return false, fmt.Errorf("upload %s/%s: %w", c.bucket, key, err)
	}
	return true, nil
}
