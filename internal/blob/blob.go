// Package blob fetches stored resume documents from S3.
package blob

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// keyMarker separates the bucket host from the object key in stored resume
// URLs. Key derivation is a pure string operation on this marker.
const keyMarker = ".amazonaws.com/"

// Error represents an object store fetch failure.
type Error struct {
	Key     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("blob error for %s: %s: %v", e.Key, e.Message, e.Cause)
	}
	return fmt.Sprintf("blob error for %s: %s", e.Key, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// KeyFromURL returns the object key embedded in a full S3 URL. A reference
// without the marker is returned unchanged and treated as a bare key.
func KeyFromURL(url string) string {
	if i := strings.LastIndex(url, keyMarker); i >= 0 {
		return url[i+len(keyMarker):]
	}
	return url
}

// Store fetches objects from a single S3 bucket.
type Store struct {
	client *s3.Client
	bucket string
}

// New builds an S3-backed store with static credentials.
func New(ctx context.Context, region, accessKey, secretKey, bucket string) (*Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
	)
	if err != nil {
		return nil, &Error{Message: "loading AWS configuration", Cause: err}
	}
	return &Store{client: s3.NewFromConfig(cfg), bucket: bucket}, nil
}

// Fetch returns the raw bytes stored under key.
func (s *Store) Fetch(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, &Error{Key: key, Message: "get object failed", Cause: err}
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, &Error{Key: key, Message: "reading object body", Cause: err}
	}
	return data, nil
}
