package ports

import (
	"context"

	"github.com/a9b3/aws-site-deploy/internal/domain/cloudfront"
	"github.com/a9b3/aws-site-deploy/internal/domain/site"
)

// DeployUseCase runs whole deployments. It is what the CLI drives.
type DeployUseCase interface {
	Deploy(ctx context.Context, req site.Request) (*site.Result, error)
	// Plan reports what Deploy would do without writing anything.
	Plan(ctx context.Context, req site.Request) (*site.Plan, error)
	// Invalidate finds the distribution serving fqdn and invalidates paths.
	Invalidate(ctx context.Context, fqdn string, paths []string) (*cloudfront.Invalidation, error)
}
