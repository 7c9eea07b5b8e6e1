// Package config holds the run configuration for the endpoint lookup. Values
// start from Default, are overlaid from AWS_ENDPOINTS_* environment variables
// and finally from command-line flags.
package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "AWS_ENDPOINTS"

// Limits enforced by Validate.
const (
	MaxWorkers = 32
	// MaxBatchSize is the GetParameters limit on names per call.
	MaxBatchSize = 10
)

// Config holds all configuration for a lookup run.
type Config struct {
	Regions     []string      `envconfig:"REGIONS"`      // Region filter, empty means all regions
	Services    []string      `envconfig:"SERVICES"`     // Service filter, empty means all services
	APIRegion   string        `envconfig:"API_REGION"`   // Region of the SSM API client, empty means SDK default
	Workers     int           `envconfig:"WORKERS"`      // Regions resolved concurrently
	BatchSize   int           `envconfig:"BATCH_SIZE"`   // Parameter names per GetParameters call (1 disables batching)
	MaxAttempts int           `envconfig:"MAX_ATTEMPTS"` // SDK retry attempts per API call
	Timeout     time.Duration `envconfig:"TIMEOUT"`      // Overall run timeout, 0 disables
	AssumeYes   bool          `envconfig:"YES"`          // Skip the full fan-out confirmation
	ReportURI   string        `envconfig:"REPORT_URI"`   // s3:// or file:// destination for the run report
	LogLevel    string        `envconfig:"LOG_LEVEL"`    // debug|info|warn|error
	Quiet       bool          `envconfig:"QUIET"`        // Suppress progress output
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Workers:     4,
		BatchSize:   MaxBatchSize,
		MaxAttempts: 10,
		LogLevel:    "info",
	}
}

// Load returns Default overlaid with any AWS_ENDPOINTS_* environment variables.
func Load() (*Config, error) {
	cfg := Default()
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return cfg, nil
}

// HasFilters reports whether the user narrowed either dimension.
func (c *Config) HasFilters() bool {
	return len(c.Regions) > 0 || len(c.Services) > 0
}

// Validate normalizes the filter lists and checks every field, returning the
// first violation found.
func (c *Config) Validate() error {
	c.Regions = NormalizeList(c.Regions)
	c.Services = NormalizeList(c.Services)

	if c.Workers < 1 || c.Workers > MaxWorkers {
		return fmt.Errorf("workers must be between 1 and %d", MaxWorkers)
	}

	if c.BatchSize < 1 || c.BatchSize > MaxBatchSize {
		return fmt.Errorf("batch size must be between 1 and %d", MaxBatchSize)
	}

	if c.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1")
	}

	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}

	if c.ReportURI != "" &&
		!strings.HasPrefix(c.ReportURI, "s3://") &&
		!strings.HasPrefix(c.ReportURI, "file://") {
		return fmt.Errorf("report URI must start with s3:// or file://")
	}

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil || c.LogLevel == "" {
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}

	return nil
}

// SplitList splits a comma-separated flag value into its entries.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// NormalizeList trims entries, drops empty ones and duplicates, and sorts the
// result. It returns nil when nothing is left.
func NormalizeList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	slices.Sort(out)
	return slices.Compact(out)
}
