package deploy_test

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/a9b3/aws-site-deploy/internal/adapters/memory"
	domainacm "github.com/a9b3/aws-site-deploy/internal/domain/acm"
	domaincf "github.com/a9b3/aws-site-deploy/internal/domain/cloudfront"
	"github.com/a9b3/aws-site-deploy/internal/domain/fqdn"
	domainr53 "github.com/a9b3/aws-site-deploy/internal/domain/route53"
	domains3 "github.com/a9b3/aws-site-deploy/internal/domain/s3"
	"github.com/a9b3/aws-site-deploy/internal/domain/site"
	"github.com/a9b3/aws-site-deploy/internal/usecases/acm"
	"github.com/a9b3/aws-site-deploy/internal/usecases/cloudfront"
	"github.com/a9b3/aws-site-deploy/internal/usecases/deploy"
	"github.com/a9b3/aws-site-deploy/internal/usecases/route53"
	"github.com/a9b3/aws-site-deploy/internal/usecases/s3"
)

func newOrchestrator(provider *memory.Provider, files memory.Files) *deploy.Orchestrator {
	dns := route53.NewRoute53UseCase(provider.Route53())
	return deploy.NewOrchestrator(
		acm.NewCertificateUseCase(provider.ACM(), dns, acm.WithBackOff(func() backoff.BackOff {
			return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 3)
		})),
		s3.NewBucketUseCase(provider.S3(), files),
		cloudfront.NewDistributionUseCase(provider.CloudFront()),
		dns,
	)
}

var _ = Describe("Deploy", func() {
	var (
		ctx          context.Context
		provider     *memory.Provider
		orchestrator *deploy.Orchestrator
		zoneID       string
		req          site.Request
	)

	BeforeEach(func() {
		ctx = context.Background()
		provider = memory.NewProvider()
		orchestrator = newOrchestrator(provider, memory.Files{
			"dist/index.html":    "<html></html>",
			"dist/main.js":       "console.log(1)",
			"dist/css/style.css": "body{}",
		})
		zoneID = provider.AddHostedZone("example.com")
		req = site.Request{FQDN: "foo.example.com", Source: "dist"}
	})

	It("provisions every resource on a first run", func() {
		result, err := orchestrator.Deploy(ctx, req)
		Expect(err).NotTo(HaveOccurred())

		Expect(result.FQDN.RootDomain).To(Equal("example.com"))
		Expect(result.HostedZoneID).To(Equal(zoneID))
		Expect(result.CertificateCreated).To(BeTrue())
		Expect(result.BucketCreated).To(BeTrue())
		Expect(result.FilesUploaded).To(Equal(3))
		Expect(result.DistributionCreated).To(BeTrue())
		Expect(result.InvalidationID).To(BeEmpty())

		By("requesting a wildcard certificate for the parent domain")
		certs := provider.Certificates()
		Expect(certs).To(HaveLen(1))
		Expect(certs[0].DomainName).To(Equal("*.example.com"))

		By("publishing the validation record")
		r := certs[0].ValidationRecords[0]
		_, ok := provider.Record(zoneID, r.ResourceRecordName, r.ResourceRecordType)
		Expect(ok).To(BeTrue())

		By("uploading the site under keys relative to the source")
		Expect(provider.ObjectKeys("foo.example.com")).To(ConsistOf("index.html", "main.js", "css/style.css"))

		By("pointing the FQDN at the distribution")
		rs, ok := provider.Record(zoneID, "foo.example.com", domainr53.RecordTypeA)
		Expect(ok).To(BeTrue())
		Expect(rs.AliasTarget.DNSName).To(Equal(result.DistributionDomain))

		dists := provider.Distributions()
		Expect(dists).To(HaveLen(1))
		Expect(dists[0].Aliases).To(Equal([]string{"foo.example.com"}))
		Expect(dists[0].ViewerCertificate.ACMCertificateARN).To(Equal(result.CertificateARN))
	})

	It("reuses everything on a second run", func() {
		first, err := orchestrator.Deploy(ctx, req)
		Expect(err).NotTo(HaveOccurred())

		second, err := orchestrator.Deploy(ctx, req)
		Expect(err).NotTo(HaveOccurred())

		Expect(second.CertificateCreated).To(BeFalse())
		Expect(second.BucketCreated).To(BeFalse())
		Expect(second.DistributionCreated).To(BeFalse())
		Expect(second.CertificateARN).To(Equal(first.CertificateARN))
		Expect(second.DistributionID).To(Equal(first.DistributionID))
		Expect(provider.Certificates()).To(HaveLen(1))
		Expect(provider.Distributions()).To(HaveLen(1))
		Expect(provider.Calls("CreateBucket")).To(Equal(1))

		By("invalidating the cache of the reused distribution")
		Expect(second.InvalidationID).NotTo(BeEmpty())
		invs := provider.Invalidations()
		Expect(invs).To(HaveLen(1))
		Expect(invs[0].Paths).To(Equal([]string{domaincf.InvalidateAll}))
	})

	It("reuses the certificate of a sibling subdomain", func() {
		arn := provider.AddCertificate("*.example.com", domainacm.StatusIssued)
		req.FQDN = "bar.example.com"

		result, err := orchestrator.Deploy(ctx, req)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.CertificateARN).To(Equal(arn))
		Expect(result.CertificateCreated).To(BeFalse())
		Expect(provider.Calls("RequestCertificate")).To(BeZero())
	})

	It("invalidates the requested paths", func() {
		_, err := orchestrator.Deploy(ctx, req)
		Expect(err).NotTo(HaveOccurred())

		req.InvalidationPaths = []string{"/index.html"}
		_, err = orchestrator.Deploy(ctx, req)
		Expect(err).NotTo(HaveOccurred())
		Expect(provider.Invalidations()[0].Paths).To(Equal([]string{"/index.html"}))
	})

	It("waits for the certificate when asked to", func() {
		req.WaitForCertificate = time.Minute

		result, err := orchestrator.Deploy(ctx, req)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.CertificateStatus).To(Equal(domainacm.StatusIssued))
		Expect(provider.Calls("WaitCertificateValidated")).To(Equal(1))
	})

	Context("failures", func() {
		It("rejects a malformed FQDN before touching AWS", func() {
			req.FQDN = "not a url"

			_, err := orchestrator.Deploy(ctx, req)
			Expect(err).To(MatchError(fqdn.ErrInvalidFQDN))
			var parseErr *fqdn.ParseError
			Expect(errors.As(err, &parseErr)).To(BeTrue())
			Expect(provider.Calls("ListHostedZones")).To(BeZero())
		})

		It("requires a hosted zone for the root domain", func() {
			req.FQDN = "foo.unknown.org"

			_, err := orchestrator.Deploy(ctx, req)
			Expect(err).To(MatchError(domainr53.ErrHostedZoneNotFound))
			var precondition *domainr53.PreconditionError
			Expect(errors.As(err, &precondition)).To(BeTrue())
			Expect(precondition.RootDomain).To(Equal("unknown.org"))
			Expect(provider.Calls("ListCertificates")).To(BeZero())
		})

		It("requires a source directory", func() {
			req.Source = ""

			_, err := orchestrator.Deploy(ctx, req)
			Expect(err).To(MatchError(site.ErrSourceRequired))
		})

		It("stops when an upload fails", func() {
			provider.Fail("PutObject:main.js", errors.New("boom"))

			result, err := orchestrator.Deploy(ctx, req)
			Expect(err).To(MatchError(domains3.ErrUploadFailed))
			Expect(result.BucketCreated).To(BeTrue())
			Expect(provider.Calls("CreateDistribution")).To(BeZero())
			Expect(provider.Calls("ChangeResourceRecordSets")).To(Equal(1))
		})

		It("fails when the distribution is not returned", func() {
			provider.DropCreatedDistribution = true

			_, err := orchestrator.Deploy(ctx, req)
			Expect(err).To(MatchError(domaincf.ErrDistributionNotCreated))
			_, ok := provider.Record(zoneID, "foo.example.com", domainr53.RecordTypeA)
			Expect(ok).To(BeFalse())
		})

		It("recovers on the next run", func() {
			provider.Fail("PutObject:main.js", errors.New("boom"))
			_, err := orchestrator.Deploy(ctx, req)
			Expect(err).To(HaveOccurred())

			provider.Fail("PutObject:main.js", nil)
			result, err := orchestrator.Deploy(ctx, req)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.BucketCreated).To(BeFalse())
			Expect(result.FilesUploaded).To(Equal(3))
		})
	})
})

var _ = Describe("Plan", func() {
	var (
		ctx          context.Context
		provider     *memory.Provider
		orchestrator *deploy.Orchestrator
	)

	BeforeEach(func() {
		ctx = context.Background()
		provider = memory.NewProvider()
		orchestrator = newOrchestrator(provider, memory.Files{"index.html": "<html></html>"})
		provider.AddHostedZone("example.com")
	})

	It("plans to create everything for a new site without writing", func() {
		plan, err := orchestrator.Plan(ctx, site.Request{FQDN: "foo.example.com", Source: "."})
		Expect(err).NotTo(HaveOccurred())
		Expect(plan.Creates()).To(BeTrue())
		Expect(plan.Changes).To(ContainElement(site.PlannedChange{Resource: "certificate", Name: "*.example.com", Action: site.ActionCreate}))
		Expect(plan.Changes).To(ContainElement(site.PlannedChange{Resource: "objects", Name: "1 files from .", Action: site.ActionUpload}))

		Expect(provider.Calls("RequestCertificate")).To(BeZero())
		Expect(provider.Calls("CreateBucket")).To(BeZero())
		Expect(provider.Calls("CreateDistribution")).To(BeZero())
		Expect(provider.Calls("ChangeResourceRecordSets")).To(BeZero())
	})

	It("plans to reuse everything after a deploy", func() {
		result, err := orchestrator.Deploy(ctx, site.Request{FQDN: "foo.example.com", Source: "."})
		Expect(err).NotTo(HaveOccurred())

		plan, err := orchestrator.Plan(ctx, site.Request{FQDN: "foo.example.com"})
		Expect(err).NotTo(HaveOccurred())
		Expect(plan.Creates()).To(BeFalse())
		Expect(plan.Changes).To(ContainElement(site.PlannedChange{
			Resource: "distribution",
			Name:     "foo.example.com",
			ID:       result.DistributionID,
			Action:   site.ActionReuse,
		}))
	})

	It("fails without a hosted zone", func() {
		_, err := orchestrator.Plan(ctx, site.Request{FQDN: "foo.unknown.org"})
		Expect(err).To(MatchError(domainr53.ErrHostedZoneNotFound))
	})
})

var _ = Describe("Invalidate", func() {
	var (
		ctx          context.Context
		provider     *memory.Provider
		orchestrator *deploy.Orchestrator
	)

	BeforeEach(func() {
		ctx = context.Background()
		provider = memory.NewProvider()
		orchestrator = newOrchestrator(provider, nil)
	})

	It("invalidates the distribution serving the FQDN", func() {
		provider.AddDistribution("other.example.com")
		id := provider.AddDistribution("foo.example.com")

		inv, err := orchestrator.Invalidate(ctx, "foo.example.com", []string{"/a", "/b/*"})
		Expect(err).NotTo(HaveOccurred())
		Expect(inv.DistributionID).To(Equal(id))
		Expect(inv.Paths).To(Equal([]string{"/a", "/b/*"}))
	})

	It("fails when no distribution serves the FQDN", func() {
		provider.AddDistribution("other.example.com")

		_, err := orchestrator.Invalidate(ctx, "foo.example.com", nil)
		Expect(err).To(MatchError(domaincf.ErrDistributionNotFound))
	})

	It("rejects a malformed FQDN", func() {
		_, err := orchestrator.Invalidate(ctx, "localhost", nil)
		Expect(err).To(MatchError(fqdn.ErrInvalidFQDN))
	})
})
