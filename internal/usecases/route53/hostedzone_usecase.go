package route53

import (
	"context"
	"fmt"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/a9b3/aws-site-deploy/internal/domain/route53"
	"github.com/a9b3/aws-site-deploy/internal/ports"
)

// HostedZoneUseCase looks up hosted zones. Zones are never created here.
type HostedZoneUseCase struct {
	repo ports.Route53Repository
}

func NewHostedZoneUseCase(repo ports.Route53Repository) *HostedZoneUseCase {
	return &HostedZoneUseCase{repo: repo}
}

// FindForRootDomain returns the first zone named after rootDomain, or nil
// when the account has none.
func (uc *HostedZoneUseCase) FindForRootDomain(ctx context.Context, rootDomain string) (*route53.HostedZone, error) {
	if rootDomain == "" {
		return nil, route53.ErrInvalidDomainName
	}

	zones, err := uc.repo.ListHostedZones(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list hosted zones: %w", err)
	}

	for _, zone := range zones {
		if zone.Matches(rootDomain) {
			log.FromContext(ctx).V(1).Info("found hosted zone", "rootDomain", rootDomain, "hostedZoneID", zone.HostedZoneID)
			return zone, nil
		}
	}
	return nil, nil
}
