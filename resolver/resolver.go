// Package resolver looks up the endpoint hostname of a (region, service) pair
// in the public SSM global-infrastructure parameters.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/aws/smithy-go"
	awsclient "github.com/gurre/aws-endpoints/aws"
	"github.com/gurre/aws-endpoints/ssmpath"
)

// MaxBatch is the largest number of names GetParameters accepts per call.
const MaxBatch = 10

// ErrAbsent is returned when a pair has no endpoint parameter. Many services
// have no regional endpoint, so this is not a failure.
var ErrAbsent = errors.New("endpoint absent")

// ErrInvalidPair is returned for an empty region or service identifier.
var ErrInvalidPair = errors.New("invalid region/service pair")

// Resolver resolves one pair with exactly one remote read.
// Example:
//
//	r := resolver.NewSSMResolver(client)
//	host, err := r.Resolve(ctx, "us-east-1", "s3")
//	switch {
//	case errors.Is(err, resolver.ErrAbsent):
//	    // no endpoint, skip
//	case err != nil:
//	    log.Printf("lookup failed: %v", err)
//	}
type Resolver interface {
	Resolve(ctx context.Context, region, service string) (string, error)
}

// BatchResolver resolves up to MaxBatch services of one region with a single
// remote read. Services missing from the returned map are absent. An error
// fails every service of the batch.
type BatchResolver interface {
	Resolver
	ResolveBatch(ctx context.Context, region string, services []string) (map[string]string, error)
}

// SSMResolver implements BatchResolver on top of the SSM parameter store.
type SSMResolver struct {
	client awsclient.SSMClient
}

var _ BatchResolver = (*SSMResolver)(nil)

// NewSSMResolver creates a new SSMResolver instance
func NewSSMResolver(client awsclient.SSMClient) *SSMResolver {
	return &SSMResolver{client: client}
}

// Resolve reads the endpoint parameter of service in region.
func (r *SSMResolver) Resolve(ctx context.Context, region, service string) (string, error) {
	if region == "" || service == "" {
		return "", fmt.Errorf("%w: region %q service %q", ErrInvalidPair, region, service)
	}

	out, err := r.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name: aws.String(ssmpath.Endpoint(region, service)),
	})
	if err != nil {
		var notFound *types.ParameterNotFound
		if errors.As(err, &notFound) {
			return "", ErrAbsent
		}
		return "", fmt.Errorf("failed to get endpoint of %s in %s: %w", service, region, err)
	}

	if out.Parameter == nil || aws.ToString(out.Parameter.Value) == "" {
		return "", ErrAbsent
	}
	return aws.ToString(out.Parameter.Value), nil
}

// ResolveBatch reads the endpoint parameters of services in region with one
// GetParameters call. Names reported as invalid by SSM are absent.
func (r *SSMResolver) ResolveBatch(ctx context.Context, region string, services []string) (map[string]string, error) {
	if len(services) > MaxBatch {
		return nil, fmt.Errorf("batch of %d services exceeds limit of %d", len(services), MaxBatch)
	}
	if len(services) == 0 {
		return map[string]string{}, nil
	}

	requested := make(map[string]struct{}, len(services))
	names := make([]string, 0, len(services))
	for _, service := range services {
		if region == "" || service == "" {
			return nil, fmt.Errorf("%w: region %q service %q", ErrInvalidPair, region, service)
		}
		requested[service] = struct{}{}
		names = append(names, ssmpath.Endpoint(region, service))
	}

	out, err := r.client.GetParameters(ctx, &ssm.GetParametersInput{Names: names})
	if err != nil {
		return nil, fmt.Errorf("failed to get %d endpoints in %s: %w", len(names), region, err)
	}

	endpoints := make(map[string]string, len(out.Parameters))
	for _, p := range out.Parameters {
		gotRegion, service, ok := ssmpath.ParseEndpoint(aws.ToString(p.Name))
		if !ok || gotRegion != region {
			continue
		}
		if _, ok := requested[service]; !ok {
			continue
		}
		if v := aws.ToString(p.Value); v != "" {
			endpoints[service] = v
		}
	}

	return endpoints, nil
}

// ErrorCode returns the AWS API error code carried by err, or "" when err did
// not come from an API response.
func ErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}
