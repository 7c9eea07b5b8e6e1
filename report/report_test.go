package report

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	json "github.com/goccy/go-json"
	"github.com/gurre/aws-endpoints/metrics"
)

// mockS3Client implements the aws.S3Client interface for testing
type mockS3Client struct {
	puts map[string][]byte
	err  error
}

func (m *mockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	if m.puts == nil {
		m.puts = make(map[string][]byte)
	}
	m.puts[aws.ToString(params.Bucket)+"/"+aws.ToString(params.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func sampleReport() metrics.Report {
	return metrics.Report{
		Regions:  2,
		Lookups:  4,
		Resolved: 3,
		Absent:   1,
		Duration: 2 * time.Second,
	}
}

func TestS3Uploader(t *testing.T) {
	client := &mockS3Client{}
	up, err := NewUploader("s3://reports/runs/endpoints.json", client)
	if err != nil {
		t.Fatalf("failed to create uploader: %v", err)
	}

	if err := up.Upload(context.Background(), sampleReport()); err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	data, ok := client.puts["reports/runs/endpoints.json"]
	if !ok {
		t.Fatalf("expected object at reports/runs/endpoints.json, got %v", client.puts)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("uploaded report is not JSON: %v", err)
	}
	if decoded["resolved"] != float64(3) {
		t.Errorf("expected resolved 3, got %v", decoded["resolved"])
	}
}

func TestS3UploaderNoSuchBucket(t *testing.T) {
	client := &mockS3Client{err: &types.NoSuchBucket{Message: aws.String("gone")}}
	up, err := NewS3Uploader(client, "s3://missing/report.json")
	if err != nil {
		t.Fatalf("failed to create uploader: %v", err)
	}

	err = up.Upload(context.Background(), sampleReport())
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &noSuchBucket) {
		t.Errorf("expected NoSuchBucket to be wrapped, got %v", err)
	}
}

func TestS3UploaderParsesURI(t *testing.T) {
	up, err := NewS3Uploader(nil, "s3://my-bucket/path/to/report.json")
	if err != nil {
		t.Fatalf("failed to create S3 uploader: %v", err)
	}
	if up.bucket != "my-bucket" {
		t.Errorf("bucket mismatch: got %s, want my-bucket", up.bucket)
	}
	if up.key != "path/to/report.json" {
		t.Errorf("key mismatch: got %s, want path/to/report.json", up.key)
	}
}

func TestS3UploaderInvalidURI(t *testing.T) {
	for _, uri := range []string{"http://bucket/key", "s3://bucket-only", "s3:///key", "bucket/key"} {
		t.Run(uri, func(t *testing.T) {
			if _, err := NewS3Uploader(nil, uri); err == nil {
				t.Errorf("expected error for invalid S3 URI: %s", uri)
			}
		})
	}
}

func TestFileUploader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "report.json")
	up, err := NewUploader("file://"+path, nil)
	if err != nil {
		t.Fatalf("failed to create uploader: %v", err)
	}

	if err := up.Upload(context.Background(), sampleReport()); err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("report file is not JSON: %v", err)
	}
	if decoded["duration"] != "2s" {
		t.Errorf("expected duration 2s, got %v", decoded["duration"])
	}
}

func TestFileUploaderInvalidURI(t *testing.T) {
	for _, uri := range []string{"s3://bucket/key", "http://example.com/file", "file:relative.json"} {
		t.Run(uri, func(t *testing.T) {
			if _, err := NewFileUploader(uri); err == nil {
				t.Errorf("expected error for invalid file URI: %s", uri)
			}
		})
	}
}

func TestNewUploaderRejects(t *testing.T) {
	if _, err := NewUploader("s3://bucket/key", nil); err == nil {
		t.Error("expected error for s3 URI without client")
	}
	if _, err := NewUploader("ftp://host/report.json", nil); err == nil {
		t.Error("expected error for unsupported scheme")
	}
}

func TestMemoryUploader(t *testing.T) {
	up := NewMemoryUploader()
	if err := up.Upload(context.Background(), sampleReport()); err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	reports := up.Reports()
	if len(reports) != 1 || reports[0].Resolved != 3 {
		t.Errorf("unexpected stored reports: %+v", reports)
	}
}
