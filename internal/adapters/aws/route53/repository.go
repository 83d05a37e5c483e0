package route53

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsroute53 "github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/route53/types"

	"github.com/a9b3/aws-site-deploy/internal/domain/route53"
	"github.com/a9b3/aws-site-deploy/internal/pagination"
	"github.com/a9b3/aws-site-deploy/internal/ports"
	"github.com/a9b3/aws-site-deploy/pkg/metrics"
)

// Client is the subset of the Route53 API the repository uses.
type Client interface {
	ListHostedZones(ctx context.Context, params *awsroute53.ListHostedZonesInput, optFns ...func(*awsroute53.Options)) (*awsroute53.ListHostedZonesOutput, error)
	ChangeResourceRecordSets(ctx context.Context, params *awsroute53.ChangeResourceRecordSetsInput, optFns ...func(*awsroute53.Options)) (*awsroute53.ChangeResourceRecordSetsOutput, error)
}

var _ Client = (*awsroute53.Client)(nil)

const listPageSize int32 = 100

// Repository handles Route53 operations using AWS SDK
type Repository struct {
	client Client
}

var _ ports.Route53Repository = (*Repository)(nil)

// NewRepository creates a new Route53 repository
func NewRepository(cfg aws.Config) *Repository {
	return &Repository{
		client: awsroute53.NewFromConfig(cfg),
	}
}

// NewRepositoryWithClient is used by tests to plug a fake client.
func NewRepositoryWithClient(client Client) *Repository {
	return &Repository{client: client}
}

// ListHostedZones returns every hosted zone of the account
func (r *Repository) ListHostedZones(ctx context.Context) ([]*route53.HostedZone, error) {
	pager := pagination.Truncated(func(ctx context.Context, marker *string) ([]*route53.HostedZone, *string, bool, error) {
		recorder := metrics.NewAWSAPIMetricsRecorder(metrics.ServiceRoute53, "ListHostedZones")
		output, err := r.client.ListHostedZones(ctx, &awsroute53.ListHostedZonesInput{
			Marker:   marker,
			MaxItems: aws.Int32(listPageSize),
		})
		if err := recorder.Observe(err); err != nil {
			return nil, nil, false, err
		}

		zones := make([]*route53.HostedZone, 0, len(output.HostedZones))
		for _, z := range output.HostedZones {
			zone := &route53.HostedZone{
				HostedZoneID:           extractHostedZoneID(aws.ToString(z.Id)),
				Name:                   aws.ToString(z.Name),
				ResourceRecordSetCount: aws.ToInt64(z.ResourceRecordSetCount),
			}
			if z.Config != nil {
				zone.Comment = aws.ToString(z.Config.Comment)
				zone.PrivateZone = z.Config.PrivateZone
			}
			zones = append(zones, zone)
		}
		return zones, output.NextMarker, output.IsTruncated, nil
	})

	return pagination.Drain(ctx, "hosted zones", pager)
}

// UpsertRecordSets writes every record in one UPSERT change batch
func (r *Repository) UpsertRecordSets(ctx context.Context, hostedZoneID string, records []route53.RecordSet) (string, error) {
	if len(records) == 0 {
		return "", nil
	}

	changes := make([]types.Change, 0, len(records))
	for i := range records {
		if err := records[i].Validate(); err != nil {
			return "", fmt.Errorf("invalid record %s: %w", records[i].Name, err)
		}
		changes = append(changes, buildChange(&records[i], types.ChangeActionUpsert))
	}

	input := &awsroute53.ChangeResourceRecordSetsInput{
		HostedZoneId: aws.String(formatHostedZoneID(hostedZoneID)),
		ChangeBatch: &types.ChangeBatch{
			Changes: changes,
		},
	}

	recorder := metrics.NewAWSAPIMetricsRecorder(metrics.ServiceRoute53, "ChangeResourceRecordSets")
	output, err := r.client.ChangeResourceRecordSets(ctx, input)
	if err := recorder.Observe(err); err != nil {
		return "", fmt.Errorf("failed to change resource record sets: %w", err)
	}

	if output.ChangeInfo == nil {
		return "", nil
	}
	return extractChangeID(aws.ToString(output.ChangeInfo.Id)), nil
}

// buildChange builds a Change input for Route53 API
func buildChange(rs *route53.RecordSet, action types.ChangeAction) types.Change {
	rrs := &types.ResourceRecordSet{
		Name: aws.String(rs.Name),
		Type: types.RRType(rs.Type),
	}

	if rs.AliasTarget != nil {
		rrs.AliasTarget = &types.AliasTarget{
			HostedZoneId:         aws.String(rs.AliasTarget.HostedZoneID),
			DNSName:              aws.String(rs.AliasTarget.DNSName),
			EvaluateTargetHealth: rs.AliasTarget.EvaluateTargetHealth,
		}
	} else {
		rrs.TTL = rs.TTL
		var resourceRecords []types.ResourceRecord
		for _, value := range rs.ResourceRecords {
			resourceRecords = append(resourceRecords, types.ResourceRecord{
				Value: aws.String(value),
			})
		}
		rrs.ResourceRecords = resourceRecords
	}

	return types.Change{
		Action:            action,
		ResourceRecordSet: rrs,
	}
}

// formatHostedZoneID ensures hosted zone ID has the correct format
func formatHostedZoneID(id string) string {
	if strings.HasPrefix(id, "/hostedzone/") {
		return id
	}
	return "/hostedzone/" + id
}

// extractHostedZoneID removes the /hostedzone/ prefix
func extractHostedZoneID(id string) string {
	return strings.TrimPrefix(id, "/hostedzone/")
}

// extractChangeID removes the /change/ prefix
func extractChangeID(id string) string {
	return strings.TrimPrefix(id, "/change/")
}
