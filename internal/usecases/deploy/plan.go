package deploy

import (
	"context"
	"fmt"

	"github.com/a9b3/aws-site-deploy/internal/domain/fqdn"
	"github.com/a9b3/aws-site-deploy/internal/domain/site"
)

// Plan answers, resource by resource, whether Deploy would reuse or create
// it. It only lists and never writes.
func (o *Orchestrator) Plan(ctx context.Context, req site.Request) (*site.Plan, error) {
	req.SetDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	name, err := fqdn.Parse(req.FQDN)
	if err != nil {
		return nil, err
	}
	zone, err := o.resolveHostedZone(ctx, name)
	if err != nil {
		return nil, err
	}

	plan := &site.Plan{FQDN: name, HostedZoneID: zone.HostedZoneID}
	add := func(resource, resourceName, id string) {
		action := site.ActionCreate
		if id != "" {
			action = site.ActionReuse
		}
		plan.Changes = append(plan.Changes, site.PlannedChange{Resource: resource, Name: resourceName, ID: id, Action: action})
	}

	cert, err := o.certificates.FindUsableCertificate(ctx, name.Domain)
	if err != nil {
		return nil, err
	}
	if cert != nil {
		add("certificate", cert.DomainName, cert.CertificateARN)
	} else {
		add("certificate", fqdn.Wildcard(name.Domain), "")
	}

	exists, err := o.buckets.BucketExists(ctx, name.Name)
	if err != nil {
		return nil, err
	}
	bucketID := ""
	if exists {
		bucketID = name.Name
	}
	add("bucket", name.Name, bucketID)

	if req.Source != "" {
		files, err := o.buckets.CollectFiles(ctx, req.Source)
		if err != nil {
			return nil, err
		}
		plan.Changes = append(plan.Changes, site.PlannedChange{
			Resource: "objects",
			Name:     fmt.Sprintf("%d files from %s", len(files), req.Source),
			Action:   site.ActionUpload,
		})
	}

	dist, err := o.distributions.FindDistribution(ctx, aliases(name))
	if err != nil {
		return nil, err
	}
	distID := ""
	if dist != nil {
		distID = dist.DistributionID
	}
	add("distribution", name.Name, distID)

	plan.Changes = append(plan.Changes, site.PlannedChange{Resource: "record", Name: name.Name + " A", Action: site.ActionUpsert})
	return plan, nil
}

