package route53

import (
	"context"
	"fmt"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/a9b3/aws-site-deploy/internal/domain/route53"
	"github.com/a9b3/aws-site-deploy/internal/ports"
	"github.com/a9b3/aws-site-deploy/pkg/metrics"
)

type RecordSetUseCase struct {
	repo ports.Route53Repository
}

func NewRecordSetUseCase(repo ports.Route53Repository) *RecordSetUseCase {
	return &RecordSetUseCase{repo: repo}
}

// UpsertAlias points fqdn at the distribution domain with an A alias.
func (uc *RecordSetUseCase) UpsertAlias(ctx context.Context, hostedZoneID, fqdn, cdnDomainName string) error {
	record := route53.NewCloudFrontAliasRecord(hostedZoneID, fqdn, cdnDomainName)
	return uc.Upsert(ctx, hostedZoneID, []route53.RecordSet{record})
}

// Upsert writes records in one change batch. Records repeating a name and
// type are sent once.
func (uc *RecordSetUseCase) Upsert(ctx context.Context, hostedZoneID string, records []route53.RecordSet) error {
	if hostedZoneID == "" {
		return route53.ErrInvalidHostedZoneID
	}

	batch := route53.DedupeRecordSets(records)
	if len(batch) == 0 {
		return nil
	}
	for i := range batch {
		batch[i].HostedZoneID = hostedZoneID
		if err := batch[i].Validate(); err != nil {
			return fmt.Errorf("validation failed for %s: %w", batch[i].Key(), err)
		}
	}

	changeID, err := uc.repo.UpsertRecordSets(ctx, hostedZoneID, batch)
	if err != nil {
		return fmt.Errorf("failed to upsert records: %w", err)
	}
	metrics.RecordUpsert(len(batch))

	log.FromContext(ctx).V(1).Info("upserted records", "hostedZoneID", hostedZoneID, "count", len(batch), "changeID", changeID)
	return nil
}
