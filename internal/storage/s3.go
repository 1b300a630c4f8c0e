// Package storage brokers reads and writes against the S3-compatible
// object store holding design assets. It wraps the AWS SDK v2 with
// path-style addressing and splits objects across two buckets: a public
// asset bucket served directly, and a private vault bucket for
// admin-only downloads reached through presigned URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ErrNotFound is returned when the backing object does not exist.
var ErrNotFound = errors.New("storage: object not found")

// Client wraps an S3 client for asset operations on two buckets.
type Client struct {
	s3          *s3.Client
	presigner   *s3.PresignClient
	assetBucket string
	vaultBucket string
	endpoint    string
	assetURL    string // optional CDN/direct URL for public assets
}

// New creates an S3 storage client with path-style addressing. Returns
// (nil, nil) if endpoint or credentials are empty, allowing the app to
// start without storage.
func New(endpoint, region, accessKey, secretKey, assetBucket, vaultBucket, assetURL string) (*Client, error) {
	if endpoint == "" || accessKey == "" || secretKey == "" {
		return nil, nil
	}

	endpoint = strings.TrimRight(endpoint, "/")

	s3Client := s3.New(s3.Options{
		Region:       region,
		BaseEndpoint: aws.String(endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		UsePathStyle: true,
	})

	return &Client{
		s3:          s3Client,
		presigner:   s3.NewPresignClient(s3Client),
		assetBucket: assetBucket,
		vaultBucket: vaultBucket,
		endpoint:    endpoint,
		assetURL:    strings.TrimRight(assetURL, "/"),
	}, nil
}

// Upload stores an object in the specified bucket. Asset-bucket objects
// are set to public-read ACL so they can be served directly.
func (c *Client) Upload(ctx context.Context, bucket, key, contentType string, body io.Reader, size int64) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	}
	if bucket == c.assetBucket {
		input.ACL = s3types.ObjectCannedACLPublicRead
	}

	_, err := c.s3.PutObject(ctx, input)
	if err != nil {
		return fmt.Errorf("s3 upload %s/%s: %w", bucket, key, err)
	}
	return nil
}

// Fetch retrieves an object and returns its contents together with the
// content type the store reported, which may be empty or a generic
// application/octet-stream. Missing objects map to ErrNotFound.
func (c *Client) Fetch(ctx context.Context, bucket, key string) ([]byte, string, error) {
	output, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("s3 fetch %s/%s: %w", bucket, key, err)
	}
	defer output.Body.Close()

	data, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, "", fmt.Errorf("s3 read body %s/%s: %w", bucket, key, err)
	}
	return data, aws.ToString(output.ContentType), nil
}

// Delete removes an object from the specified bucket.
func (c *Client) Delete(ctx context.Context, bucket, key string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s/%s: %w", bucket, key, err)
	}
	return nil
}

// AssetURL returns the public URL for an object in the asset bucket.
// Uses the configured CDN URL if set, otherwise builds a path-style URL.
func (c *Client) AssetURL(key string) string {
	if c.assetURL != "" {
		return c.assetURL + "/" + key
	}
	return c.endpoint + "/" + c.assetBucket + "/" + key
}

// PresignedURL generates a pre-signed GET URL for a vault object. The
// URL is valid for the specified duration (max 7 days per S3 spec).
func (c *Client) PresignedURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error) {
	req, err := c.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", fmt.Errorf("s3 presign %s/%s: %w", bucket, key, err)
	}
	return req.URL, nil
}

// AssetBucket returns the name of the public asset bucket.
func (c *Client) AssetBucket() string {
	return c.assetBucket
}

// VaultBucket returns the name of the private vault bucket.
func (c *Client) VaultBucket() string {
	return c.vaultBucket
}

// ExtractKey extracts the object key from a public asset URL. Returns
// the key and true if the URL matches the storage URL pattern, or
// ("", false) if it doesn't belong to this storage.
func (c *Client) ExtractKey(rawURL string) (string, bool) {
	if c.assetURL != "" {
		prefix := c.assetURL + "/"
		if strings.HasPrefix(rawURL, prefix) {
			return rawURL[len(prefix):], true
		}
	}

	prefix := c.endpoint + "/" + c.assetBucket + "/"
	if strings.HasPrefix(rawURL, prefix) {
		return rawURL[len(prefix):], true
	}

	return "", false
}
