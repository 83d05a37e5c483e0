package s3

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/a9b3/aws-site-deploy/internal/domain/s3"
	"github.com/a9b3/aws-site-deploy/internal/pagination"
	"github.com/a9b3/aws-site-deploy/internal/ports"
	"github.com/a9b3/aws-site-deploy/pkg/metrics"
)

// Client is the subset of the S3 API the repository uses.
type Client interface {
	ListBuckets(ctx context.Context, params *awss3.ListBucketsInput, optFns ...func(*awss3.Options)) (*awss3.ListBucketsOutput, error)
	CreateBucket(ctx context.Context, params *awss3.CreateBucketInput, optFns ...func(*awss3.Options)) (*awss3.CreateBucketOutput, error)
	PutPublicAccessBlock(ctx context.Context, params *awss3.PutPublicAccessBlockInput, optFns ...func(*awss3.Options)) (*awss3.PutPublicAccessBlockOutput, error)
	PutBucketPolicy(ctx context.Context, params *awss3.PutBucketPolicyInput, optFns ...func(*awss3.Options)) (*awss3.PutBucketPolicyOutput, error)
	PutBucketWebsite(ctx context.Context, params *awss3.PutBucketWebsiteInput, optFns ...func(*awss3.Options)) (*awss3.PutBucketWebsiteOutput, error)
	PutObject(ctx context.Context, params *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
}

var _ Client = (*awss3.Client)(nil)

const listBucketsPageSize int32 = 1000

// Repository implements ports.S3Repository using AWS SDK
// This is an Adapter in Hexagonal Architecture
type Repository struct {
	client Client
}

var _ ports.S3Repository = (*Repository)(nil)

// NewRepository creates a new S3 repository. A custom endpoint (LocalStack,
// MinIO) only serves path-style URLs.
func NewRepository(awsConfig aws.Config) *Repository {
	var options []func(*awss3.Options)
	if awsConfig.BaseEndpoint != nil {
		options = append(options, func(o *awss3.Options) {
			o.UsePathStyle = true
		})
	}

	return &Repository{
		client: awss3.NewFromConfig(awsConfig, options...),
	}
}

// NewRepositoryWithClient is used by tests to plug a fake client.
func NewRepositoryWithClient(client Client) *Repository {
	return &Repository{client: client}
}

// List returns every bucket owned by the account
func (r *Repository) List(ctx context.Context) ([]*s3.Bucket, error) {
	pager := pagination.Tokens(func(ctx context.Context, token *string) ([]*s3.Bucket, *string, error) {
		recorder := metrics.NewAWSAPIMetricsRecorder(metrics.ServiceS3, "ListBuckets")
		output, err := r.client.ListBuckets(ctx, &awss3.ListBucketsInput{
			ContinuationToken: token,
			MaxBuckets:        aws.Int32(listBucketsPageSize),
		})
		if err := recorder.Observe(err); err != nil {
			return nil, nil, err
		}

		buckets := make([]*s3.Bucket, 0, len(output.Buckets))
		for _, b := range output.Buckets {
			buckets = append(buckets, &s3.Bucket{
				Name:         aws.ToString(b.Name),
				Region:       aws.ToString(b.BucketRegion),
				CreationTime: b.CreationDate,
			})
		}
		return buckets, output.ContinuationToken, nil
	})

	return pagination.Drain(ctx, "buckets", pager)
}

// Create creates a new S3 bucket. A bucket already owned by the caller is
// not an error.
func (r *Repository) Create(ctx context.Context, bucket *s3.Bucket) error {
	if err := bucket.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	input := &awss3.CreateBucketInput{
		Bucket: aws.String(bucket.Name),
	}

	// Set location constraint if not us-east-1
	if bucket.Region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(bucket.Region),
		}
	}

	recorder := metrics.NewAWSAPIMetricsRecorder(metrics.ServiceS3, "CreateBucket")
	_, err := r.client.CreateBucket(ctx, input)
	if err != nil {
		recorder.RecordError(err)

		var owned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) {
			return nil
		}
		var taken *types.BucketAlreadyExists
		if errors.As(err, &taken) {
			return fmt.Errorf("failed to create bucket %s: %w", bucket.Name, errors.Join(s3.ErrBucketAlreadyExists, err))
		}
		return fmt.Errorf("failed to create bucket %s: %w", bucket.Name, err)
	}
	recorder.RecordSuccess()

	return nil
}

// ConfigurePublicAccessBlock configures public access block
func (r *Repository) ConfigurePublicAccessBlock(ctx context.Context, name string, config *s3.PublicAccessBlockConfig) error {
	recorder := metrics.NewAWSAPIMetricsRecorder(metrics.ServiceS3, "PutPublicAccessBlock")
	_, err := r.client.PutPublicAccessBlock(ctx, &awss3.PutPublicAccessBlockInput{
		Bucket: aws.String(name),
		PublicAccessBlockConfiguration: &types.PublicAccessBlockConfiguration{
			BlockPublicAcls:       aws.Bool(config.BlockPublicAcls),
			IgnorePublicAcls:      aws.Bool(config.IgnorePublicAcls),
			BlockPublicPolicy:     aws.Bool(config.BlockPublicPolicy),
			RestrictPublicBuckets: aws.Bool(config.RestrictPublicBuckets),
		},
	})
	if err := recorder.Observe(err); err != nil {
		return fmt.Errorf("failed to configure public access block: %w", err)
	}

	return nil
}

// PutPolicy attaches a bucket policy document
func (r *Repository) PutPolicy(ctx context.Context, name, policy string) error {
	recorder := metrics.NewAWSAPIMetricsRecorder(metrics.ServiceS3, "PutBucketPolicy")
	_, err := r.client.PutBucketPolicy(ctx, &awss3.PutBucketPolicyInput{
		Bucket: aws.String(name),
		Policy: aws.String(policy),
	})
	if err := recorder.Observe(err); err != nil {
		return fmt.Errorf("failed to put bucket policy: %w", err)
	}

	return nil
}

// ConfigureWebsite enables static website hosting
func (r *Repository) ConfigureWebsite(ctx context.Context, name string, config *s3.WebsiteConfig) error {
	website := &types.WebsiteConfiguration{
		IndexDocument: &types.IndexDocument{Suffix: aws.String(config.IndexDocument)},
	}
	if config.ErrorDocument != "" {
		website.ErrorDocument = &types.ErrorDocument{Key: aws.String(config.ErrorDocument)}
	}

	recorder := metrics.NewAWSAPIMetricsRecorder(metrics.ServiceS3, "PutBucketWebsite")
	_, err := r.client.PutBucketWebsite(ctx, &awss3.PutBucketWebsiteInput{
		Bucket:               aws.String(name),
		WebsiteConfiguration: website,
	})
	if err := recorder.Observe(err); err != nil {
		return fmt.Errorf("failed to configure website: %w", err)
	}

	return nil
}

// PutObject uploads body under key
func (r *Repository) PutObject(ctx context.Context, bucket, key string, body io.Reader, contentType string) error {
	input := &awss3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	recorder := metrics.NewAWSAPIMetricsRecorder(metrics.ServiceS3, "PutObject")
	_, err := r.client.PutObject(ctx, input)
	if err := recorder.Observe(err); err != nil {
		return fmt.Errorf("failed to put object %s: %w", key, err)
	}

	return nil
}
