package mock

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/aws/smithy-go"
	"github.com/gurre/aws-endpoints/ssmpath"
)

// defaultPageSize matches the SSM GetParametersByPath maximum.
const defaultPageSize = 10

// maxGetParameters is the SSM GetParameters limit on names per call.
const maxGetParameters = 10

// SSMClient is a mock implementation of aws.SSMClient backed by an in-memory
// parameter store laid out like the public global-infrastructure hierarchy.
type SSMClient struct {
	mu sync.RWMutex
	// Maps parameter name to value
	Params map[string]string
	// Maps parameter name or listed path to the error returned when it is read
	Failures map[string]error
	// Parameters returned per GetParametersByPath page
	PageSize int

	PathCalls  atomic.Int64
	GetCalls   atomic.Int64
	BatchCalls atomic.Int64
}

// NewSSMClient creates a new empty mock SSM client
func NewSSMClient() *SSMClient {
	return &SSMClient{
		Params:   make(map[string]string),
		Failures: make(map[string]error),
		PageSize: defaultPageSize,
	}
}

// AddRegion adds region with its services. A service mapped to "" is listed
// but has no endpoint parameter.
func (m *SSMClient) AddRegion(region string, endpoints map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	regionName := ssmpath.Regions() + "/" + region
	m.Params[regionName] = region
	m.Params[regionName+"/longName"] = "Region " + region
	for service, endpoint := range endpoints {
		m.Params[ssmpath.Services(region)+"/"+service] = service
		if endpoint != "" {
			m.Params[ssmpath.Endpoint(region, service)] = endpoint
		}
	}
}

// Fail makes every read of name return err. name may be a listed path.
func (m *SSMClient) Fail(name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Failures[name] = err
}

// LookupCalls returns the number of endpoint read calls made so far
func (m *SSMClient) LookupCalls() int64 {
	return m.GetCalls.Load() + m.BatchCalls.Load()
}

// GetParametersByPath implements the SSMClient interface for listing a path
func (m *SSMClient) GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error) {
	m.PathCalls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	path := strings.TrimSuffix(aws.ToString(params.Path), "/")
	if err, ok := m.Failures[path]; ok {
		return nil, err
	}

	recursive := aws.ToBool(params.Recursive)
	var names []string
	for name := range m.Params {
		rest, ok := strings.CutPrefix(name, path+"/")
		if !ok || rest == "" {
			continue
		}
		if !recursive && strings.Contains(rest, "/") {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)

	start := 0
	if token := aws.ToString(params.NextToken); token != "" {
		n, err := strconv.Atoi(token)
		if err != nil || n < 0 || n > len(names) {
			return nil, &smithy.GenericAPIError{Code: "InvalidNextToken", Message: "invalid token " + token}
		}
		start = n
	}

	size := m.PageSize
	if params.MaxResults != nil && int(*params.MaxResults) < size {
		size = int(*params.MaxResults)
	}
	if size <= 0 {
		size = defaultPageSize
	}
	end := min(start+size, len(names))

	out := &ssm.GetParametersByPathOutput{}
	for _, name := range names[start:end] {
		out.Parameters = append(out.Parameters, m.parameter(name))
	}
	if end < len(names) {
		out.NextToken = aws.String(strconv.Itoa(end))
	}
	return out, nil
}

// GetParameter implements the SSMClient interface for reading one parameter
func (m *SSMClient) GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	m.GetCalls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	name := aws.ToString(params.Name)
	if err, ok := m.Failures[name]; ok {
		return nil, err
	}
	if _, ok := m.Params[name]; !ok {
		return nil, &types.ParameterNotFound{Message: aws.String(fmt.Sprintf("parameter %s not found", name))}
	}
	p := m.parameter(name)
	return &ssm.GetParameterOutput{Parameter: &p}, nil
}

// GetParameters implements the SSMClient interface for reading up to ten
// parameters. Unknown names are reported in InvalidParameters.
func (m *SSMClient) GetParameters(ctx context.Context, params *ssm.GetParametersInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersOutput, error) {
	m.BatchCalls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(params.Names) == 0 || len(params.Names) > maxGetParameters {
		return nil, &smithy.GenericAPIError{
			Code:    "ValidationException",
			Message: fmt.Sprintf("names must contain between 1 and %d items", maxGetParameters),
		}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := &ssm.GetParametersOutput{}
	for _, name := range params.Names {
		if err, ok := m.Failures[name]; ok {
			return nil, err
		}
		if _, ok := m.Params[name]; !ok {
			out.InvalidParameters = append(out.InvalidParameters, name)
			continue
		}
		out.Parameters = append(out.Parameters, m.parameter(name))
	}
	return out, nil
}

func (m *SSMClient) parameter(name string) types.Parameter {
	return types.Parameter{
		Name:  aws.String(name),
		Value: aws.String(m.Params[name]),
		Type:  types.ParameterTypeString,
	}
}
