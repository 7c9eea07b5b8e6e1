// Package report uploads the run report to S3 or the local filesystem.
package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	json "github.com/goccy/go-json"
	awsclient "github.com/gurre/aws-endpoints/aws"
	"github.com/gurre/aws-endpoints/metrics"
)

// Uploader stores a finished run report.
// Example:
//
//	up, err := report.NewUploader("s3://my-bucket/reports/endpoints.json", s3Client)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = up.Upload(ctx, m.GenerateReport())
type Uploader interface {
	Upload(ctx context.Context, r metrics.Report) error
}

// NewUploader picks the Uploader matching the scheme of uri. client is only
// used for s3:// URIs and may be nil otherwise.
func NewUploader(uri string, client awsclient.S3Client) (Uploader, error) {
	switch {
	case strings.HasPrefix(uri, "s3://"):
		if client == nil {
			return nil, fmt.Errorf("s3 client is required for %s", uri)
		}
		return NewS3Uploader(client, uri)
	case strings.HasPrefix(uri, "file://"):
		return NewFileUploader(uri)
	default:
		return nil, fmt.Errorf("unsupported report URI: %s", uri)
	}
}

// S3Uploader implements the Uploader interface using AWS S3.
type S3Uploader struct {
	client awsclient.S3Client
	bucket string
	key    string
}

// NewS3Uploader creates a new S3Uploader instance from an S3 URI.
func NewS3Uploader(client awsclient.S3Client, uri string) (*S3Uploader, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid S3 URI: %w", err)
	}
	if u.Scheme != "s3" {
		return nil, fmt.Errorf("invalid S3 URI scheme: %s", u.Scheme)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return nil, fmt.Errorf("invalid S3 URI format: %s (must be s3://bucket/key)", uri)
	}

	return &S3Uploader{
		client: client,
		bucket: u.Host,
		key:    key,
	}, nil
}

// Upload writes the report as a JSON object.
func (s *S3Uploader) Upload(ctx context.Context, r metrics.Report) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &s.key,
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		var noSuchBucket *types.NoSuchBucket
		if errors.As(err, &noSuchBucket) {
			return fmt.Errorf("report bucket %s does not exist: %w", s.bucket, err)
		}
		return fmt.Errorf("failed to upload report: %w", err)
	}

	return nil
}

// FileUploader implements the Uploader interface using the local filesystem.
type FileUploader struct {
	path string
}

// NewFileUploader creates a new FileUploader instance from a file URI.
// The path must be absolute; missing parent directories are created.
func NewFileUploader(uri string) (*FileUploader, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid file URI: %w", err)
	}
	if u.Scheme != "file" {
		return nil, fmt.Errorf("invalid file URI scheme: %s", u.Scheme)
	}

	cleanPath := filepath.Clean(u.Path)
	if !filepath.IsAbs(cleanPath) {
		return nil, fmt.Errorf("report path must be absolute: %s", cleanPath)
	}

	if err := os.MkdirAll(filepath.Dir(cleanPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &FileUploader{path: cleanPath}, nil
}

// Upload writes the report as an indented JSON file.
func (f *FileUploader) Upload(ctx context.Context, r metrics.Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	if err := os.WriteFile(f.path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}

	return nil
}

// MemoryUploader implements the Uploader interface by keeping reports in memory.
// It's primarily intended for testing purposes.
type MemoryUploader struct {
	mu      sync.Mutex
	reports []metrics.Report
}

// NewMemoryUploader creates a new MemoryUploader instance
func NewMemoryUploader() *MemoryUploader {
	return &MemoryUploader{}
}

// Upload stores the report
func (m *MemoryUploader) Upload(ctx context.Context, r metrics.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = append(m.reports, r)
	return nil
}

// Reports returns every stored report
func (m *MemoryUploader) Reports() []metrics.Report {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]metrics.Report, len(m.reports))
	copy(out, m.reports)
	return out
}
