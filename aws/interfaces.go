// Package aws defines the narrow AWS service abstractions used by the endpoint
// lookup. Each interface mirrors the SDK method signatures so that the SDK
// clients and test doubles are interchangeable.
package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// SSMClient defines the Systems Manager parameter store operations used to
// read the public global-infrastructure namespace.
//
// It is a superset of ssm.GetParametersByPathAPIClient, so it can be handed
// directly to ssm.NewGetParametersByPathPaginator.
type SSMClient interface {
	GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error)
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
	GetParameters(ctx context.Context, params *ssm.GetParametersInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersOutput, error)
}

// S3Client defines the S3 operations used to upload the run report.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Compile-time interface checks to ensure implementations satisfy interfaces
var (
	_ SSMClient = (*SSMClientImpl)(nil)
	_ S3Client  = (*S3ClientImpl)(nil)

	// AWS SDK interface checks to ensure SDK clients satisfy interfaces
	_ SSMClient = (*ssm.Client)(nil)
	_ S3Client  = (*s3.Client)(nil)

	_ ssm.GetParametersByPathAPIClient = (SSMClient)(nil)
)
