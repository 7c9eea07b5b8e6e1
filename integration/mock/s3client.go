package mock

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Client is a mock implementation of aws.S3Client interface for testing
type S3Client struct {
	mu sync.Mutex
	// Maps bucket/key to object content
	Files map[string][]byte
	// Maps bucket/key to content type
	ContentTypes map[string]string
	// Buckets that accept writes; nil accepts every bucket
	Buckets map[string]bool
}

// NewS3Client creates a new mock S3 client
func NewS3Client(buckets ...string) *S3Client {
	m := &S3Client{
		Files:        make(map[string][]byte),
		ContentTypes: make(map[string]string),
	}
	if len(buckets) > 0 {
		m.Buckets = make(map[string]bool, len(buckets))
		for _, b := range buckets {
			m.Buckets[b] = true
		}
	}
	return m
}

// Object returns the content stored at bucket/key
func (m *S3Client) Object(bucket, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.Files[bucket+"/"+key]
	return data, ok
}

// PutObject implements the S3Client interface for writing objects
func (m *S3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	bucket := aws.ToString(params.Bucket)
	if m.Buckets != nil && !m.Buckets[bucket] {
		return nil, &types.NoSuchBucket{
			Message: aws.String(fmt.Sprintf("The specified bucket does not exist: %s", bucket)),
		}
	}

	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}

	bucketKey := fmt.Sprintf("%s/%s", bucket, aws.ToString(params.Key))
	etag := fmt.Sprintf("\"%x\"", len(data))

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Files[bucketKey] = data
	m.ContentTypes[bucketKey] = aws.ToString(params.ContentType)

	return &s3.PutObjectOutput{
		ETag: aws.String(etag),
	}, nil
}
