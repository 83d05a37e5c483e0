package cloudfront

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscf "github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront/types"

	"github.com/a9b3/aws-site-deploy/internal/domain/cloudfront"
	"github.com/a9b3/aws-site-deploy/internal/pagination"
	"github.com/a9b3/aws-site-deploy/internal/ports"
	"github.com/a9b3/aws-site-deploy/pkg/metrics"
)

// Client is the subset of the CloudFront API the repository uses.
type Client interface {
	ListDistributions(ctx context.Context, params *awscf.ListDistributionsInput, optFns ...func(*awscf.Options)) (*awscf.ListDistributionsOutput, error)
	CreateDistribution(ctx context.Context, params *awscf.CreateDistributionInput, optFns ...func(*awscf.Options)) (*awscf.CreateDistributionOutput, error)
	GetDistribution(ctx context.Context, params *awscf.GetDistributionInput, optFns ...func(*awscf.Options)) (*awscf.GetDistributionOutput, error)
	CreateInvalidation(ctx context.Context, params *awscf.CreateInvalidationInput, optFns ...func(*awscf.Options)) (*awscf.CreateInvalidationOutput, error)
}

var _ Client = (*awscf.Client)(nil)

const listPageSize int32 = 100

type Repository struct {
	client Client
}

var _ ports.CloudFrontRepository = (*Repository)(nil)

func NewRepository(cfg aws.Config) *Repository {
	return &Repository{client: awscf.NewFromConfig(cfg)}
}

// NewRepositoryWithClient is used by tests to plug a fake client.
func NewRepositoryWithClient(client Client) *Repository {
	return &Repository{client: client}
}

func (r *Repository) List(ctx context.Context) ([]*cloudfront.Distribution, error) {
	pager := pagination.Truncated(func(ctx context.Context, marker *string) ([]*cloudfront.Distribution, *string, bool, error) {
		recorder := metrics.NewAWSAPIMetricsRecorder(metrics.ServiceCloudFront, "ListDistributions")
		output, err := r.client.ListDistributions(ctx, &awscf.ListDistributionsInput{
			Marker:   marker,
			MaxItems: aws.Int32(listPageSize),
		})
		if err := recorder.Observe(err); err != nil {
			return nil, nil, false, err
		}

		list := output.DistributionList
		if list == nil {
			return nil, nil, false, nil
		}
		dists := make([]*cloudfront.Distribution, 0, len(list.Items))
		for _, s := range list.Items {
			dists = append(dists, fromSummary(s))
		}
		return dists, list.NextMarker, aws.ToBool(list.IsTruncated), nil
	})

	return pagination.Drain(ctx, "distributions", pager)
}

func (r *Repository) Create(ctx context.Context, dist *cloudfront.Distribution) (*cloudfront.Distribution, error) {
	if err := dist.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	recorder := metrics.NewAWSAPIMetricsRecorder(metrics.ServiceCloudFront, "CreateDistribution")
	output, err := r.client.CreateDistribution(ctx, &awscf.CreateDistributionInput{
		DistributionConfig: toDistributionConfig(dist),
	})
	if err := recorder.Observe(err); err != nil {
		return nil, fmt.Errorf("failed to create distribution: %w", err)
	}
	if output == nil || output.Distribution == nil {
		return nil, nil
	}

	return fromDistribution(output.Distribution, output.ETag), nil
}

func (r *Repository) Get(ctx context.Context, distributionID string) (*cloudfront.Distribution, error) {
	recorder := metrics.NewAWSAPIMetricsRecorder(metrics.ServiceCloudFront, "GetDistribution")
	output, err := r.client.GetDistribution(ctx, &awscf.GetDistributionInput{
		Id: aws.String(distributionID),
	})
	if err := recorder.Observe(err); err != nil {
		return nil, fmt.Errorf("failed to get distribution %s: %w", distributionID, err)
	}
	if output.Distribution == nil {
		return nil, fmt.Errorf("distribution %s: %w", distributionID, cloudfront.ErrDistributionNotFound)
	}

	return fromDistribution(output.Distribution, output.ETag), nil
}

func (r *Repository) CreateInvalidation(ctx context.Context, inv *cloudfront.Invalidation) error {
	recorder := metrics.NewAWSAPIMetricsRecorder(metrics.ServiceCloudFront, "CreateInvalidation")
	output, err := r.client.CreateInvalidation(ctx, &awscf.CreateInvalidationInput{
		DistributionId: aws.String(inv.DistributionID),
		InvalidationBatch: &types.InvalidationBatch{
			CallerReference: aws.String(inv.CallerReference),
			Paths: &types.Paths{
				Items:    inv.Paths,
				Quantity: aws.Int32(int32(len(inv.Paths))),
			},
		},
	})
	if err := recorder.Observe(err); err != nil {
		return fmt.Errorf("failed to create invalidation for %s: %w", inv.DistributionID, err)
	}

	if output.Invalidation != nil {
		inv.InvalidationID = aws.ToString(output.Invalidation.Id)
		inv.Status = aws.ToString(output.Invalidation.Status)
	}
	return nil
}
