// Package aws defines the narrow AWS service abstractions used by the endpoint
// lookup. This file contains the SDK-backed implementations.
package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// SSMClientImpl implements SSMClient using the AWS SDK.
type SSMClientImpl struct {
	client *ssm.Client
}

// NewSSMClient creates a new SSMClientImpl instance
func NewSSMClient(client *ssm.Client) *SSMClientImpl {
	return &SSMClientImpl{client: client}
}

// GetParametersByPath implements the SSMClient interface for listing a parameter hierarchy
func (c *SSMClientImpl) GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error) {
	return c.client.GetParametersByPath(ctx, params, optFns...)
}

// GetParameter implements the SSMClient interface for reading a single parameter
func (c *SSMClientImpl) GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	return c.client.GetParameter(ctx, params, optFns...)
}

// GetParameters implements the SSMClient interface for reading up to ten parameters at once
func (c *SSMClientImpl) GetParameters(ctx context.Context, params *ssm.GetParametersInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersOutput, error) {
	return c.client.GetParameters(ctx, params, optFns...)
}

// S3ClientImpl implements S3Client using the AWS SDK.
type S3ClientImpl struct {
	client *s3.Client
}

// NewS3Client creates a new S3ClientImpl instance
func NewS3Client(client *s3.Client) *S3ClientImpl {
	return &S3ClientImpl{client: client}
}

// PutObject implements the S3Client interface for writing objects
func (c *S3ClientImpl) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return c.client.PutObject(ctx, params, optFns...)
}
