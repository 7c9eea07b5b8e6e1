// Package main implements the aws-endpoints command. It looks up the endpoint
// hostname of every service in every region from the public SSM
// global-infrastructure parameters and prints them as JSON on stdout.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	awsclient "github.com/gurre/aws-endpoints/aws"
	"github.com/gurre/aws-endpoints/catalog"
	"github.com/gurre/aws-endpoints/config"
	"github.com/gurre/aws-endpoints/confirm"
	"github.com/gurre/aws-endpoints/coordinator"
	"github.com/gurre/aws-endpoints/progress"
	"github.com/gurre/aws-endpoints/report"
	"github.com/gurre/aws-endpoints/resolver"
	"github.com/gurre/aws-endpoints/result"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

const version = "1.0.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run parses the configuration, performs the lookup and writes the result.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	showVersion, err := parseFlags(os.Args[1:], cfg, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}
	if showVersion {
		fmt.Println(version)
		return nil
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	// Load AWS configuration. The SSM parameters are global, so any region
	// with SSM can answer for all of them.
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRetryMaxAttempts(cfg.MaxAttempts),
		awsconfig.WithRetryMode(aws.RetryModeStandard),
	}
	if cfg.APIRegion != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.APIRegion))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %w", err)
	}
	logger.Debug().Str("region", awsCfg.Region).Int("maxAttempts", cfg.MaxAttempts).Msg("loaded AWS config")

	ssmClient := awsclient.NewSSMClient(ssm.NewFromConfig(awsCfg))

	// Set up the report uploader before the run so a bad destination fails fast
	var uploader report.Uploader
	if cfg.ReportURI != "" {
		uploader, err = report.NewUploader(cfg.ReportURI, awsclient.NewS3Client(s3.NewFromConfig(awsCfg)))
		if err != nil {
			return fmt.Errorf("failed to create report uploader: %w", err)
		}
	}

	var confirmer confirm.Confirmer = confirm.NewPrompt(os.Stdin, os.Stderr)
	if cfg.AssumeYes {
		confirmer = confirm.Always(true)
	} else if !cfg.HasFilters() && !isTerminal(os.Stdin) {
		logger.Info().Msg("stdin is not a terminal, reading confirmation from piped input")
	}

	var reporter progress.Reporter = progress.NewDots(os.Stderr)
	if cfg.Quiet {
		reporter = progress.Nop{}
	}

	coord := coordinator.NewCoordinator(
		cfg,
		catalog.NewFiltered(catalog.NewSSMCatalog(ssmClient), cfg.Regions, cfg.Services),
		resolver.NewSSMResolver(ssmClient),
		confirmer,
		reporter,
		logger,
	)

	endpoints, err := coord.Run(ctx)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			return errors.New("user interrupted program")
		case errors.Is(err, coordinator.ErrDeclined):
			return errors.New("user aborted program")
		}
		return err
	}

	if err := result.Encode(os.Stdout, endpoints); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	r := coord.Report()
	logger.Info().Msg(r.String())
	if r.Failed > 0 {
		logger.Warn().Int64("failed", r.Failed).Msg("some endpoints could not be retrieved")
	}

	if uploader != nil {
		if err := uploader.Upload(ctx, r); err != nil {
			return fmt.Errorf("failed to upload report: %w", err)
		}
		logger.Info().Str("uri", cfg.ReportURI).Msg("uploaded run report")
	}

	return nil
}

// parseFlags overlays command-line flags onto cfg. It reports whether the
// version was requested.
func parseFlags(args []string, cfg *config.Config, output io.Writer) (bool, error) {
	fs := flag.NewFlagSet("aws-endpoints", flag.ContinueOnError)
	fs.SetOutput(output)

	setRegions := func(s string) error {
		cfg.Regions = config.SplitList(s)
		return nil
	}
	setServices := func(s string) error {
		cfg.Services = config.SplitList(s)
		return nil
	}
	fs.Func("regions", "Comma-separated regions to query (default all)", setRegions)
	fs.Func("r", "Shorthand for -regions", setRegions)
	fs.Func("services", "Comma-separated services to query (default all)", setServices)
	fs.Func("s", "Shorthand for -services", setServices)

	fs.StringVar(&cfg.APIRegion, "region", cfg.APIRegion, "AWS region of the SSM API (defaults to AWS_REGION env)")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "Number of regions resolved concurrently")
	fs.IntVar(&cfg.BatchSize, "batch", cfg.BatchSize, "Parameter names per GetParameters call (max 10, 1 disables batching)")
	fs.IntVar(&cfg.MaxAttempts, "max-attempts", cfg.MaxAttempts, "Maximum attempts per AWS API call")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Overall run timeout (0 disables)")
	fs.BoolVar(&cfg.AssumeYes, "yes", cfg.AssumeYes, "Skip the confirmation before querying all regions and services")
	fs.BoolVar(&cfg.AssumeYes, "y", cfg.AssumeYes, "Shorthand for -yes")
	fs.StringVar(&cfg.ReportURI, "report", cfg.ReportURI, "URI for the run report (s3://bucket/key or file:///path)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug|info|warn|error)")
	fs.BoolVar(&cfg.Quiet, "quiet", cfg.Quiet, "Suppress progress output")
	fs.BoolVar(&cfg.Quiet, "q", cfg.Quiet, "Shorthand for -quiet")

	var showVersion bool
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&showVersion, "v", false, "Shorthand for -version")

	if err := fs.Parse(args); err != nil {
		return false, err
	}
	if fs.NArg() > 0 {
		return false, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return showVersion, nil
}

// newLogger creates the diagnostic logger on stderr. The level was checked by
// config.Validate.
func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	out := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		NoColor:    !isTerminal(os.Stderr),
		TimeFormat: "15:04:05",
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
