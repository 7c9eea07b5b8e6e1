// Package catalog discovers which regions and services to query. The full
// catalog comes from the public SSM global-infrastructure parameters; user
// supplied filters replace either dimension.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	awsclient "github.com/gurre/aws-endpoints/aws"
	"github.com/gurre/aws-endpoints/config"
	"github.com/gurre/aws-endpoints/ssmpath"
)

// ErrUnavailable is returned when the region or service list cannot be
// obtained. No partial catalog is usable, so callers treat it as fatal.
var ErrUnavailable = errors.New("catalog unavailable")

// globalRegion is listed next to the real regions under the regions path but
// carries no per-region services.
const globalRegion = "global"

// Catalog lists the regions and per-region services to resolve.
// Example:
//
//	var c catalog.Catalog = catalog.NewSSMCatalog(client)
//	regions, err := c.ListRegions(ctx)
//	if errors.Is(err, catalog.ErrUnavailable) {
//	    log.Fatal(err)
//	}
type Catalog interface {
	ListRegions(ctx context.Context) ([]string, error)
	ListServices(ctx context.Context, region string) ([]string, error)
}

// SSMCatalog implements Catalog by paging through the SSM parameter hierarchy.
type SSMCatalog struct {
	client awsclient.SSMClient
}

// NewSSMCatalog creates a new SSMCatalog instance
func NewSSMCatalog(client awsclient.SSMClient) *SSMCatalog {
	return &SSMCatalog{client: client}
}

// ListRegions returns every region code in sorted order, without the global
// pseudo-region.
func (c *SSMCatalog) ListRegions(ctx context.Context) ([]string, error) {
	values, err := c.listValues(ctx, ssmpath.Regions())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list regions: %w", ErrUnavailable, err)
	}

	regions := slices.DeleteFunc(values, func(v string) bool { return v == globalRegion })
	if len(regions) == 0 {
		return nil, fmt.Errorf("%w: no regions returned", ErrUnavailable)
	}

	slices.Sort(regions)
	return regions, nil
}

// ListServices returns every service code available in region in sorted order.
func (c *SSMCatalog) ListServices(ctx context.Context, region string) ([]string, error) {
	if region == "" {
		return nil, fmt.Errorf("%w: empty region", ErrUnavailable)
	}

	services, err := c.listValues(ctx, ssmpath.Services(region))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list services in %s: %w", ErrUnavailable, region, err)
	}

	slices.Sort(services)
	return services, nil
}

// listValues collects the values of every direct child parameter of path.
func (c *SSMCatalog) listValues(ctx context.Context, path string) ([]string, error) {
	paginator := ssm.NewGetParametersByPathPaginator(c.client, &ssm.GetParametersByPathInput{
		Path: aws.String(path),
	})

	values := make([]string, 0, 64)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, p := range page.Parameters {
			v := aws.ToString(p.Value)
			if v == "" {
				return nil, fmt.Errorf("parameter %s has no value", aws.ToString(p.Name))
			}
			values = append(values, v)
		}
	}

	return values, nil
}

// Filtered implements Catalog by replacing either dimension of a base catalog
// with a fixed list. A nil base is allowed when both lists are set.
type Filtered struct {
	base     Catalog
	regions  []string
	services []string
}

// NewFiltered creates a new Filtered catalog. The lists are normalized: entries
// are trimmed, blanks and duplicates dropped, and the result sorted.
func NewFiltered(base Catalog, regions, services []string) *Filtered {
	return &Filtered{
		base:     base,
		regions:  config.NormalizeList(regions),
		services: config.NormalizeList(services),
	}
}

// ListRegions returns the region filter, or the base catalog's regions when
// no filter was given.
func (f *Filtered) ListRegions(ctx context.Context) ([]string, error) {
	if len(f.regions) > 0 {
		return slices.Clone(f.regions), nil
	}
	if f.base == nil {
		return nil, fmt.Errorf("%w: no region source", ErrUnavailable)
	}
	return f.base.ListRegions(ctx)
}

// ListServices returns the service filter, or the base catalog's services in
// region when no filter was given.
func (f *Filtered) ListServices(ctx context.Context, region string) ([]string, error) {
	if len(f.services) > 0 {
		return slices.Clone(f.services), nil
	}
	if f.base == nil {
		return nil, fmt.Errorf("%w: no service source", ErrUnavailable)
	}
	return f.base.ListServices(ctx, region)
}

// Static implements Catalog from an in-memory region to services table.
// It's primarily intended for testing purposes.
type Static map[string][]string

// ListRegions returns the table's regions in sorted order.
func (s Static) ListRegions(ctx context.Context) ([]string, error) {
	if len(s) == 0 {
		return nil, fmt.Errorf("%w: no regions returned", ErrUnavailable)
	}
	regions := make([]string, 0, len(s))
	for r := range s {
		regions = append(regions, r)
	}
	slices.Sort(regions)
	return regions, nil
}

// ListServices returns the services listed for region in sorted order.
func (s Static) ListServices(ctx context.Context, region string) ([]string, error) {
	services, ok := s[region]
	if !ok {
		return nil, fmt.Errorf("%w: unknown region %s", ErrUnavailable, region)
	}
	services = slices.Clone(services)
	slices.Sort(services)
	return services, nil
}
