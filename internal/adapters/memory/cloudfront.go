package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/a9b3/aws-site-deploy/internal/domain/cloudfront"
	"github.com/a9b3/aws-site-deploy/internal/ports"
)

// CloudFront implements ports.CloudFrontRepository on top of a Provider.
type CloudFront struct {
	p *Provider
}

var _ ports.CloudFrontRepository = (*CloudFront)(nil)

// AddDistribution registers an existing distribution serving aliases and
// returns its ID.
func (p *Provider) AddDistribution(aliases ...string) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	d := p.newDistribution(&cloudfront.Distribution{Aliases: aliases, Enabled: true})
	d.Status = cloudfront.StatusDeployed
	return d.DistributionID
}

// Distributions returns a snapshot of every distribution.
func (p *Provider) Distributions() []cloudfront.Distribution {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]cloudfront.Distribution, 0, len(p.distributions))
	for _, d := range p.distributions {
		out = append(out, *d)
	}
	return out
}

// Invalidations returns a snapshot of every invalidation.
func (p *Provider) Invalidations() []cloudfront.Invalidation {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]cloudfront.Invalidation, 0, len(p.invalidations))
	for _, inv := range p.invalidations {
		out = append(out, *inv)
	}
	return out
}

// newDistribution stores a copy of d with provider assigned fields. Callers
// hold p.mu.
func (p *Provider) newDistribution(d *cloudfront.Distribution) *cloudfront.Distribution {
	id := p.nextID()
	stored := *d
	stored.Aliases = slices.Clone(d.Aliases)
	stored.DistributionID = fmt.Sprintf("E%06d", id)
	stored.DomainName = fmt.Sprintf("d%06d.cloudfront.net", id)
	stored.ARN = "arn:aws:cloudfront::000000000000:distribution/" + stored.DistributionID
	stored.Status = "InProgress"
	stored.ETag = fmt.Sprintf("ETAG%d", id)
	p.distributions = append(p.distributions, &stored)
	return &stored
}

// List returns summaries: aliases and identity, no configuration.
func (c *CloudFront) List(ctx context.Context) ([]*cloudfront.Distribution, error) {
	c.p.mu.Lock()
	summaries := make([]*cloudfront.Distribution, 0, len(c.p.distributions))
	for _, d := range c.p.distributions {
		summaries = append(summaries, &cloudfront.Distribution{
			DistributionID: d.DistributionID,
			ARN:            d.ARN,
			DomainName:     d.DomainName,
			Status:         d.Status,
			Aliases:        slices.Clone(d.Aliases),
		})
	}
	c.p.mu.Unlock()

	return page(ctx, c.p, "distributions", "ListDistributions", summaries)
}

func (c *CloudFront) Create(_ context.Context, dist *cloudfront.Distribution) (*cloudfront.Distribution, error) {
	c.p.mu.Lock()
	defer c.p.mu.Unlock()

	if err := c.p.call("CreateDistribution"); err != nil {
		return nil, err
	}
	if err := dist.Validate(); err != nil {
		return nil, err
	}
	created := c.p.newDistribution(dist)
	if c.p.DropCreatedDistribution {
		return nil, nil
	}
	// Like the real API, the create response is only partially populated.
	return &cloudfront.Distribution{DistributionID: created.DistributionID, Status: created.Status}, nil
}

func (c *CloudFront) Get(_ context.Context, distributionID string) (*cloudfront.Distribution, error) {
	c.p.mu.Lock()
	defer c.p.mu.Unlock()

	if err := c.p.call("GetDistribution"); err != nil {
		return nil, err
	}
	for _, d := range c.p.distributions {
		if d.DistributionID == distributionID {
			out := *d
			out.Aliases = slices.Clone(d.Aliases)
			return &out, nil
		}
	}
	return nil, fmt.Errorf("distribution %s: %w", distributionID, cloudfront.ErrDistributionNotFound)
}

func (c *CloudFront) CreateInvalidation(_ context.Context, inv *cloudfront.Invalidation) error {
	c.p.mu.Lock()
	defer c.p.mu.Unlock()

	if err := c.p.call("CreateInvalidation"); err != nil {
		return err
	}
	inv.InvalidationID = fmt.Sprintf("I%06d", c.p.nextID())
	inv.Status = "InProgress"
	stored := *inv
	stored.Paths = slices.Clone(inv.Paths)
	c.p.invalidations = append(c.p.invalidations, &stored)
	return nil
}
