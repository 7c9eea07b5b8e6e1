// Package coordinator drives a lookup run: it resolves the region and service
// lists, guards an unfiltered run behind a confirmation, fans the lookups out
// to a bounded pool of workers and collects the endpoints.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/gurre/aws-endpoints/catalog"
	"github.com/gurre/aws-endpoints/config"
	"github.com/gurre/aws-endpoints/confirm"
	"github.com/gurre/aws-endpoints/metrics"
	"github.com/gurre/aws-endpoints/progress"
	"github.com/gurre/aws-endpoints/resolver"
	"github.com/gurre/aws-endpoints/result"
	"github.com/rs/zerolog"
)

// ErrDeclined is returned when an unfiltered run was not confirmed. No lookups
// have been issued when it is returned.
var ErrDeclined = errors.New("user declined full lookup")

// sampleRegion is preferred for the call estimate because it carries the
// largest service catalog.
const sampleRegion = "us-east-1"

// Estimate describes the size of an unfiltered run.
type Estimate struct {
	Regions           int    // Regions to query
	SampleRegion      string // Region whose service count was sampled
	ServicesPerRegion int    // Services listed in SampleRegion
}

// Lookups returns the estimated number of endpoint lookups.
func (e Estimate) Lookups() int {
	return e.Regions * e.ServicesPerRegion
}

// String renders the warning shown before asking for confirmation.
func (e Estimate) String() string {
	return fmt.Sprintf(
		"This will retrieve all AWS service endpoints for all services in all regions.\n"+
			"%d regions x ~%d services (sampled from %s) = ~%d lookups.\n"+
			"This will make a large number of API calls and may take a long time.",
		e.Regions, e.ServicesPerRegion, e.SampleRegion, e.Lookups())
}

// task is one region and the services to resolve in it.
type task struct {
	region   string
	services []string
}

// Coordinator runs one lookup pass. It holds no state between runs.
type Coordinator struct {
	cfg       *config.Config
	catalog   catalog.Catalog
	resolver  resolver.Resolver
	confirmer confirm.Confirmer
	reporter  progress.Reporter
	logger    zerolog.Logger
	metrics   *metrics.Metrics
}

// NewCoordinator creates a new Coordinator instance with all required dependencies.
// A nil reporter discards progress; a nil confirmer declines every unfiltered run
// unless cfg.AssumeYes is set.
func NewCoordinator(
	cfg *config.Config,
	cat catalog.Catalog,
	res resolver.Resolver,
	confirmer confirm.Confirmer,
	reporter progress.Reporter,
	logger zerolog.Logger,
) *Coordinator {
	if reporter == nil {
		reporter = progress.Nop{}
	}
	return &Coordinator{
		cfg:       cfg,
		catalog:   cat,
		resolver:  res,
		confirmer: confirmer,
		reporter:  reporter,
		logger:    logger,
		metrics:   metrics.NewMetrics(),
	}
}

// Report returns the run report for the counters collected so far.
func (c *Coordinator) Report() metrics.Report {
	return c.metrics.GenerateReport()
}

// Run performs the lookup pass and returns the collected endpoints.
//
// Catalog errors and a declined confirmation abort before any lookup is issued.
// Per-pair failures are reported and skipped; they never abort the run.
func (c *Coordinator) Run(ctx context.Context) (*result.Map, error) {
	regions, err := c.listRegions(ctx)
	if err != nil {
		return nil, err
	}

	prefetched := make(map[string][]string, 1)
	if !c.cfg.HasFilters() && !c.cfg.AssumeYes {
		est, services, err := c.estimate(ctx, regions)
		if err != nil {
			return nil, err
		}
		prefetched[est.SampleRegion] = services

		if err := c.confirm(ctx, est); err != nil {
			return nil, err
		}
	}

	tasks, err := c.buildTasks(ctx, regions, prefetched)
	if err != nil {
		return nil, err
	}

	results := result.New()
	if err := c.dispatch(ctx, tasks, results); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Int("regions", len(results.Regions())).
		Int("endpoints", results.Len()).
		Msg("lookup finished")

	return results, nil
}

// listRegions returns the regions to query.
func (c *Coordinator) listRegions(ctx context.Context) ([]string, error) {
	c.metrics.RecordCatalogCall()
	regions, err := c.catalog.ListRegions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list regions: %w", err)
	}
	if len(regions) == 0 {
		return nil, fmt.Errorf("failed to list regions: %w", catalog.ErrUnavailable)
	}
	if len(c.cfg.Regions) == 0 {
		c.logger.Info().Int("regions", len(regions)).Msg("found regions")
	}
	return regions, nil
}

// listServices returns the services to query in region.
func (c *Coordinator) listServices(ctx context.Context, region string) ([]string, error) {
	c.metrics.RecordCatalogCall()
	services, err := c.catalog.ListServices(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("failed to list services in %s: %w", region, err)
	}
	if len(c.cfg.Services) == 0 {
		c.logger.Debug().Str("region", region).Int("services", len(services)).Msg("found services")
	}
	return services, nil
}

// estimate sizes an unfiltered run from the service count of one region. The
// sampled service list is returned so it is not fetched twice.
func (c *Coordinator) estimate(ctx context.Context, regions []string) (Estimate, []string, error) {
	sample := regions[0]
	if slices.Contains(regions, sampleRegion) {
		sample = sampleRegion
	}

	services, err := c.listServices(ctx, sample)
	if err != nil {
		return Estimate{}, nil, err
	}

	return Estimate{
		Regions:           len(regions),
		SampleRegion:      sample,
		ServicesPerRegion: len(services),
	}, services, nil
}

// confirm asks the confirmer whether to continue with an unfiltered run.
func (c *Coordinator) confirm(ctx context.Context, est Estimate) error {
	if c.confirmer == nil {
		return ErrDeclined
	}
	ok, err := c.confirmer.Confirm(ctx, est.String())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeclined, err)
	}
	if !ok {
		return ErrDeclined
	}
	c.logger.Info().Int("lookups", est.Lookups()).Msg("full lookup confirmed")
	return nil
}

// buildTasks fetches every region's service list up front so that a catalog
// failure aborts the run before the first lookup.
func (c *Coordinator) buildTasks(ctx context.Context, regions []string, prefetched map[string][]string) ([]task, error) {
	tasks := make([]task, 0, len(regions))
	for _, region := range regions {
		services, ok := prefetched[region]
		if !ok {
			var err error
			services, err = c.listServices(ctx, region)
			if err != nil {
				return nil, err
			}
		}
		if len(services) == 0 {
			c.logger.Debug().Str("region", region).Msg("no services to resolve")
			continue
		}
		tasks = append(tasks, task{region: region, services: services})
	}
	return tasks, nil
}

// dispatch runs tasks on at most cfg.Workers goroutines. Workers write into
// results, which serializes inserts.
func (c *Coordinator) dispatch(ctx context.Context, tasks []task, results *result.Map) error {
	if len(tasks) == 0 {
		return nil
	}

	queue := make(chan task)
	var wg sync.WaitGroup

	workers := min(c.cfg.Workers, len(tasks))
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range queue {
				c.resolveTask(ctx, t, results)
			}
		}()
	}

send:
	for _, t := range tasks {
		select {
		case queue <- t:
		case <-ctx.Done():
			break send
		}
	}
	close(queue)
	wg.Wait()

	return ctx.Err()
}

// resolveTask resolves every service of one region. Batched lookups are used
// when the resolver supports them and the batch size allows it.
func (c *Coordinator) resolveTask(ctx context.Context, t task, results *result.Map) {
	c.metrics.RecordRegion()
	c.reporter.RegionStarted(t.region, len(t.services))
	defer c.reporter.RegionFinished(t.region)

	batchSize := min(c.cfg.BatchSize, resolver.MaxBatch)
	if br, ok := c.resolver.(resolver.BatchResolver); ok && batchSize > 1 {
		for chunk := range slices.Chunk(t.services, batchSize) {
			if ctx.Err() != nil {
				return
			}
			start := time.Now()
			endpoints, err := br.ResolveBatch(ctx, t.region, chunk)
			c.metrics.RecordLookupCall(time.Since(start))
			for _, service := range chunk {
				if err != nil {
					c.failed(t.region, service, err)
					continue
				}
				if endpoint, ok := endpoints[service]; ok {
					c.resolved(results, t.region, service, endpoint)
				} else {
					c.absent(t.region, service)
				}
			}
		}
		return
	}

	for _, service := range t.services {
		if ctx.Err() != nil {
			return
		}
		start := time.Now()
		endpoint, err := c.resolver.Resolve(ctx, t.region, service)
		c.metrics.RecordLookupCall(time.Since(start))
		switch {
		case err == nil && endpoint != "":
			c.resolved(results, t.region, service, endpoint)
		case err == nil, errors.Is(err, resolver.ErrAbsent):
			c.absent(t.region, service)
		default:
			c.failed(t.region, service, err)
		}
	}
}

func (c *Coordinator) resolved(results *result.Map, region, service, endpoint string) {
	results.Set(region, service, endpoint)
	c.metrics.RecordResolved()
	c.reporter.Resolved(region, service, endpoint)
}

func (c *Coordinator) absent(region, service string) {
	c.metrics.RecordAbsent()
	c.reporter.Absent(region, service)
}

func (c *Coordinator) failed(region, service string, err error) {
	c.metrics.RecordFailed()
	c.reporter.Failed(region, service, err)
	c.logger.Warn().
		Str("region", region).
		Str("service", service).
		Str("code", resolver.ErrorCode(err)).
		Err(err).
		Msg("endpoint lookup failed")
}
