// Package route53 holds the DNS use cases of a deploy: finding the zone of
// the root domain and upserting records into it.
package route53

import (
	"context"

	"github.com/a9b3/aws-site-deploy/internal/domain/route53"
	"github.com/a9b3/aws-site-deploy/internal/ports"
)

// Route53UseCaseImpl implements the Route53UseCase interface
type Route53UseCaseImpl struct {
	hostedZoneUC *HostedZoneUseCase
	recordSetUC  *RecordSetUseCase
}

// NewRoute53UseCase creates a new Route53 use case
func NewRoute53UseCase(repo ports.Route53Repository) ports.Route53UseCase {
	return &Route53UseCaseImpl{
		hostedZoneUC: NewHostedZoneUseCase(repo),
		recordSetUC:  NewRecordSetUseCase(repo),
	}
}

func (uc *Route53UseCaseImpl) FindHostedZoneForRootDomain(ctx context.Context, rootDomain string) (*route53.HostedZone, error) {
	return uc.hostedZoneUC.FindForRootDomain(ctx, rootDomain)
}

func (uc *Route53UseCaseImpl) UpsertAliasRecord(ctx context.Context, hostedZoneID, fqdn, cdnDomainName string) error {
	return uc.recordSetUC.UpsertAlias(ctx, hostedZoneID, fqdn, cdnDomainName)
}

func (uc *Route53UseCaseImpl) UpsertRecords(ctx context.Context, hostedZoneID string, records []route53.RecordSet) error {
	return uc.recordSetUC.Upsert(ctx, hostedZoneID, records)
}
