// Package cloudfront provisions the distribution that serves a site and
// invalidates its cache.
package cloudfront

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/a9b3/aws-site-deploy/internal/domain/cloudfront"
	"github.com/a9b3/aws-site-deploy/internal/ports"
)

type DistributionUseCase struct {
	repo ports.CloudFrontRepository
	now  func() time.Time
}

func NewDistributionUseCase(repo ports.CloudFrontRepository) *DistributionUseCase {
	return &DistributionUseCase{repo: repo, now: time.Now}
}

var _ ports.CloudFrontUseCase = (*DistributionUseCase)(nil)

// FindDistribution returns the first listed distribution serving any of
// aliases, or nil.
func (uc *DistributionUseCase) FindDistribution(ctx context.Context, aliases []string) (*cloudfront.Distribution, error) {
	dists, err := uc.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list distributions: %w", err)
	}

	matches := lo.Filter(dists, func(d *cloudfront.Distribution, _ int) bool {
		return d.HasAnyAlias(aliases)
	})
	if len(matches) == 0 {
		return nil, nil
	}
	if len(matches) > 1 {
		// Listing order decides; nothing else tells the candidates apart.
		log.FromContext(ctx).Info("several distributions serve the aliases, using the first",
			"aliases", aliases,
			"candidates", lo.Map(matches, func(d *cloudfront.Distribution, _ int) string { return d.DistributionID }),
		)
	}
	return matches[0], nil
}

// EnsureDistribution reuses the distribution serving aliases or creates one
// in front of the bucket named fqdn. Either way the distribution is fetched
// again by ID, since listing and create responses are partial.
func (uc *DistributionUseCase) EnsureDistribution(ctx context.Context, fqdn string, aliases []string, certificateARN, indexDocument string) (*cloudfront.Distribution, bool, error) {
	logger := log.FromContext(ctx)

	existing, err := uc.FindDistribution(ctx, aliases)
	if err != nil {
		return nil, false, err
	}

	if existing != nil {
		logger.Info("reusing distribution", "distributionID", existing.DistributionID, "aliases", existing.Aliases)
		dist, err := uc.GetDistribution(ctx, existing.DistributionID)
		return dist, false, err
	}

	desired := cloudfront.NewStaticSiteDistribution(fqdn, aliases, certificateARN, indexDocument)
	desired.SetDefaults()
	if err := desired.Validate(); err != nil {
		return nil, false, fmt.Errorf("validation failed: %w", err)
	}

	created, err := uc.repo.Create(ctx, desired)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create distribution: %w", err)
	}
	if created == nil || created.DistributionID == "" {
		return nil, true, fmt.Errorf("distribution for %s: %w", fqdn, cloudfront.ErrDistributionNotCreated)
	}
	logger.Info("created distribution", "distributionID", created.DistributionID, "aliases", aliases)

	dist, err := uc.GetDistribution(ctx, created.DistributionID)
	return dist, true, err
}

// GetDistribution returns the full configuration of a distribution.
func (uc *DistributionUseCase) GetDistribution(ctx context.Context, distributionID string) (*cloudfront.Distribution, error) {
	dist, err := uc.repo.Get(ctx, distributionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get distribution %s: %w", distributionID, err)
	}
	return dist, nil
}

// Invalidate invalidates paths, or everything when paths is empty.
func (uc *DistributionUseCase) Invalidate(ctx context.Context, distributionID, fqdn string, paths []string) (*cloudfront.Invalidation, error) {
	if distributionID == "" {
		return nil, cloudfront.ErrDistributionNotFound
	}

	inv := cloudfront.NewInvalidation(distributionID, fqdn, paths, uc.now())
	if err := uc.repo.CreateInvalidation(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to create invalidation: %w", err)
	}

	log.FromContext(ctx).Info("created invalidation", "distributionID", distributionID, "invalidationID", inv.InvalidationID, "paths", inv.Paths)
	return inv, nil
}
