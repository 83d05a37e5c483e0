package ports

import (
	"context"

	"github.com/a9b3/aws-site-deploy/internal/domain/cloudfront"
)

// CloudFrontRepository defines the interface for CloudFront operations
type CloudFrontRepository interface {
	// List returns a summary of every distribution, aliases included.
	List(ctx context.Context) ([]*cloudfront.Distribution, error)
	// Create returns the created distribution, nil if the provider returned none.
	Create(ctx context.Context, dist *cloudfront.Distribution) (*cloudfront.Distribution, error)
	Get(ctx context.Context, distributionID string) (*cloudfront.Distribution, error)
	// CreateInvalidation sets inv.InvalidationID and inv.Status.
	CreateInvalidation(ctx context.Context, inv *cloudfront.Invalidation) error
}

// CloudFrontUseCase defines the use case interface for CloudFront operations
type CloudFrontUseCase interface {
	FindDistribution(ctx context.Context, aliases []string) (*cloudfront.Distribution, error)
	GetDistribution(ctx context.Context, distributionID string) (*cloudfront.Distribution, error)
	EnsureDistribution(ctx context.Context, fqdn string, aliases []string, certificateARN, indexDocument string) (dist *cloudfront.Distribution, created bool, err error)
	Invalidate(ctx context.Context, distributionID, fqdn string, paths []string) (*cloudfront.Invalidation, error)
}
