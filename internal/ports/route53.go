package ports

import (
	"context"

	"github.com/a9b3/aws-site-deploy/internal/domain/route53"
)

// Route53Repository defines the interface for Route53 operations
type Route53Repository interface {
	ListHostedZones(ctx context.Context) ([]*route53.HostedZone, error)
	// UpsertRecordSets writes records in a single UPSERT change batch and
	// returns the change ID.
	UpsertRecordSets(ctx context.Context, hostedZoneID string, records []route53.RecordSet) (string, error)
}

// Route53UseCase defines the use case interface for Route53 operations
type Route53UseCase interface {
	// FindHostedZoneForRootDomain returns nil when no zone matches.
	FindHostedZoneForRootDomain(ctx context.Context, rootDomain string) (*route53.HostedZone, error)
	UpsertAliasRecord(ctx context.Context, hostedZoneID, fqdn, cdnDomainName string) error
	UpsertRecords(ctx context.Context, hostedZoneID string, records []route53.RecordSet) error
}
