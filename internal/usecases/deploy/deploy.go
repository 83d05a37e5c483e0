// Package deploy runs the deployment pipeline of a static site: hosted zone,
// certificate, bucket, files, distribution, DNS and cache, strictly in that
// order.
//
// Every step is an idempotent ensure, so a failed run is recovered by running
// again. Nothing created by earlier steps is rolled back. Two runs for the
// same FQDN must not overlap: each ensure lists then creates, and the
// providers offer no lock to make that atomic.
package deploy

import (
	"context"
	"fmt"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/a9b3/aws-site-deploy/internal/domain/acm"
	"github.com/a9b3/aws-site-deploy/internal/domain/cloudfront"
	"github.com/a9b3/aws-site-deploy/internal/domain/fqdn"
	"github.com/a9b3/aws-site-deploy/internal/domain/route53"
	"github.com/a9b3/aws-site-deploy/internal/domain/s3"
	"github.com/a9b3/aws-site-deploy/internal/domain/site"
	"github.com/a9b3/aws-site-deploy/internal/ports"
	"github.com/a9b3/aws-site-deploy/pkg/metrics"
)

type Orchestrator struct {
	certificates  ports.ACMUseCase
	buckets       ports.S3UseCase
	distributions ports.CloudFrontUseCase
	dns           ports.Route53UseCase
}

func NewOrchestrator(certificates ports.ACMUseCase, buckets ports.S3UseCase, distributions ports.CloudFrontUseCase, dns ports.Route53UseCase) *Orchestrator {
	return &Orchestrator{
		certificates:  certificates,
		buckets:       buckets,
		distributions: distributions,
		dns:           dns,
	}
}

var _ ports.DeployUseCase = (*Orchestrator)(nil)

// Deploy provisions everything the site needs and uploads it. The first
// failing step ends the run.
func (o *Orchestrator) Deploy(ctx context.Context, req site.Request) (*site.Result, error) {
	req.SetDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Source == "" {
		return nil, site.ErrSourceRequired
	}

	ctx = log.IntoContext(ctx, log.FromContext(ctx).WithValues("fqdn", req.FQDN))
	result := &site.Result{}

	var (
		name  fqdn.FQDN
		zone  *route53.HostedZone
		cert  *acm.Certificate
		files []s3.Object
		dist  *cloudfront.Distribution
	)

	err := runStep(ctx, StepParseFQDN, func(ctx context.Context) error {
		var err error
		name, err = fqdn.Parse(req.FQDN)
		return err
	})
	if err != nil {
		return nil, err
	}
	result.FQDN = name
	result.Bucket = name.Name

	if err := runStep(ctx, StepResolveHostedZone, func(ctx context.Context) error {
		var err error
		zone, err = o.resolveHostedZone(ctx, name)
		return err
	}); err != nil {
		return result, err
	}
	result.HostedZoneID = zone.HostedZoneID

	// The certificate is for the parent domain: a wildcard only covers one
	// label, so *.bar.example.com serves foo.bar.example.com and its siblings.
	if err := runStep(ctx, StepEnsureCertificate, func(ctx context.Context) error {
		var err error
		cert, result.CertificateCreated, err = o.certificates.EnsureCertificate(ctx, name.Domain)
		if err == nil {
			metrics.RecordResource(metrics.ResourceCertificate, result.CertificateCreated)
		}
		return err
	}); err != nil {
		return result, err
	}
	result.CertificateARN = cert.CertificateARN
	result.CertificateStatus = cert.Status

	if cert.NeedsValidationRecords() {
		if err := runStep(ctx, StepValidateCert, func(ctx context.Context) error {
			return o.certificates.ValidateCertificate(ctx, zone.HostedZoneID, cert)
		}); err != nil {
			return result, err
		}
	}

	if req.WaitForCertificate > 0 && !cert.IsIssued() {
		if err := runStep(ctx, StepWaitCertificate, func(ctx context.Context) error {
			return o.certificates.WaitForIssued(ctx, cert.CertificateARN, req.WaitForCertificate)
		}); err != nil {
			return result, err
		}
		result.CertificateStatus = acm.StatusIssued
	}

	if err := runStep(ctx, StepEnsureBucket, func(ctx context.Context) error {
		var err error
		result.BucketCreated, err = o.buckets.EnsureStaticBucket(ctx, s3.NewStaticSiteBucket(name.Name, req.Region, req.IndexDocument))
		if err == nil {
			metrics.RecordResource(metrics.ResourceBucket, result.BucketCreated)
		}
		return err
	}); err != nil {
		return result, err
	}

	if err := runStep(ctx, StepUploadFiles, func(ctx context.Context) error {
		var err error
		files, err = o.buckets.CollectFiles(ctx, req.Source)
		if err != nil {
			return err
		}
		result.FilesUploaded, err = o.buckets.UploadFiles(ctx, name.Name, files)
		return err
	}); err != nil {
		return result, err
	}

	if err := runStep(ctx, StepEnsureDistribution, func(ctx context.Context) error {
		var err error
		dist, result.DistributionCreated, err = o.distributions.EnsureDistribution(ctx, name.Name, aliases(name), cert.CertificateARN, req.IndexDocument)
		if err == nil {
			metrics.RecordResource(metrics.ResourceDistribution, result.DistributionCreated)
		}
		return err
	}); err != nil {
		return result, err
	}
	result.DistributionID = dist.DistributionID
	result.DistributionDomain = dist.DomainName

	if err := runStep(ctx, StepUpsertDNS, func(ctx context.Context) error {
		return o.dns.UpsertAliasRecord(ctx, zone.HostedZoneID, name.Name, dist.DomainName)
	}); err != nil {
		return result, err
	}

	// A new distribution has nothing cached yet.
	if !result.DistributionCreated {
		if err := runStep(ctx, StepInvalidateCache, func(ctx context.Context) error {
			inv, err := o.distributions.Invalidate(ctx, dist.DistributionID, name.Name, req.InvalidationPaths)
			if err != nil {
				return err
			}
			result.InvalidationID = inv.InvalidationID
			metrics.RecordResource(metrics.ResourceInvalidation, true)
			return nil
		}); err != nil {
			return result, err
		}
	}

	log.FromContext(ctx).Info("deployed site",
		"distributionDomain", result.DistributionDomain,
		"filesUploaded", result.FilesUploaded,
		"certificateStatus", result.CertificateStatus,
	)
	return result, nil
}

// resolveHostedZone fails with a precondition error when the root domain has
// no zone. Zones come with domain registration and are never created here.
func (o *Orchestrator) resolveHostedZone(ctx context.Context, name fqdn.FQDN) (*route53.HostedZone, error) {
	zone, err := o.dns.FindHostedZoneForRootDomain(ctx, name.RootDomain)
	if err != nil {
		return nil, err
	}
	if zone == nil {
		return nil, route53.ZoneNotFoundError(name.RootDomain)
	}
	return zone, nil
}

// Invalidate invalidates paths on the distribution serving fqdn.
func (o *Orchestrator) Invalidate(ctx context.Context, name string, paths []string) (*cloudfront.Invalidation, error) {
	parsed, err := fqdn.Parse(name)
	if err != nil {
		return nil, err
	}

	var inv *cloudfront.Invalidation
	err = runStep(ctx, StepInvalidateCache, func(ctx context.Context) error {
		dist, err := o.distributions.FindDistribution(ctx, aliases(parsed))
		if err != nil {
			return err
		}
		if dist == nil {
			return fmt.Errorf("no distribution serves %s: %w", parsed.Name, cloudfront.ErrDistributionNotFound)
		}
		inv, err = o.distributions.Invalidate(ctx, dist.DistributionID, parsed.Name, paths)
		return err
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func aliases(name fqdn.FQDN) []string {
	return []string{name.Name}
}
