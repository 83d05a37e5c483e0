package cloudfront_test

import (
	"context"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/a9b3/aws-site-deploy/internal/adapters/memory"
	domain "github.com/a9b3/aws-site-deploy/internal/domain/cloudfront"
	"github.com/a9b3/aws-site-deploy/internal/usecases/cloudfront"
)

const certARN = "arn:aws:acm:us-east-1:000000000000:certificate/0001"

var _ = Describe("Distribution use case", func() {
	var (
		ctx      context.Context
		provider *memory.Provider
		uc       *cloudfront.DistributionUseCase
	)

	BeforeEach(func() {
		ctx = context.Background()
		provider = memory.NewProvider()
		uc = cloudfront.NewDistributionUseCase(provider.CloudFront())
	})

	Context("FindDistribution", func() {
		It("finds a distribution by any alias past the first page", func() {
			provider.AddDistribution("a.example.com")
			provider.AddDistribution("b.example.com")
			id := provider.AddDistribution("other.example.com", "FOO.example.com")

			dist, err := uc.FindDistribution(ctx, []string{"foo.example.com"})
			Expect(err).NotTo(HaveOccurred())
			Expect(dist).NotTo(BeNil())
			Expect(dist.DistributionID).To(Equal(id))
		})

		It("picks the first in listing order when several match", func() {
			first := provider.AddDistribution("foo.example.com")
			provider.AddDistribution("foo.example.com")

			dist, err := uc.FindDistribution(ctx, []string{"foo.example.com"})
			Expect(err).NotTo(HaveOccurred())
			Expect(dist.DistributionID).To(Equal(first))
		})

		It("returns nil without a match", func() {
			provider.AddDistribution("bar.example.com")

			dist, err := uc.FindDistribution(ctx, []string{"foo.example.com"})
			Expect(err).NotTo(HaveOccurred())
			Expect(dist).To(BeNil())
		})
	})

	Context("EnsureDistribution", func() {
		It("creates a distribution in front of the bucket", func() {
			dist, created, err := uc.EnsureDistribution(ctx, "foo.example.com", []string{"foo.example.com"}, certARN, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeTrue())

			// The full configuration comes back, not the create projection.
			Expect(dist.DomainName).To(HaveSuffix(".cloudfront.net"))
			Expect(dist.Origins).To(HaveLen(1))
			Expect(dist.Origins[0].DomainName).To(Equal("foo.example.com.s3.amazonaws.com"))
			Expect(dist.DefaultCacheBehavior.ViewerProtocolPolicy).To(Equal(domain.ViewerProtocolRedirectToHTTPS))
			Expect(dist.DefaultCacheBehavior.AllowedMethods).To(ConsistOf("GET", "HEAD"))
			Expect(dist.CustomErrorResponses).To(ConsistOf(domain.CustomErrorResponse{
				ErrorCode:        403,
				ResponsePagePath: "/index.html",
				ResponseCode:     "200",
			}))
			Expect(dist.ViewerCertificate.ACMCertificateARN).To(Equal(certARN))
			Expect(dist.ViewerCertificate.SSLSupportMethod).To(Equal(domain.SSLSupportMethodSNIOnly))
			Expect(dist.DefaultRootObject).To(Equal("index.html"))
		})

		It("does not create a second distribution on a second run", func() {
			first, _, err := uc.EnsureDistribution(ctx, "foo.example.com", []string{"foo.example.com"}, certARN, "")
			Expect(err).NotTo(HaveOccurred())

			again, created, err := uc.EnsureDistribution(ctx, "foo.example.com", []string{"foo.example.com"}, certARN, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeFalse())
			Expect(again.DistributionID).To(Equal(first.DistributionID))
			Expect(provider.Distributions()).To(HaveLen(1))
		})

		It("fails when the create response carries no distribution", func() {
			provider.DropCreatedDistribution = true

			_, created, err := uc.EnsureDistribution(ctx, "foo.example.com", []string{"foo.example.com"}, certARN, "")
			Expect(created).To(BeTrue())
			Expect(err).To(MatchError(domain.ErrDistributionNotCreated))
		})

		It("requires a certificate for the aliases", func() {
			_, _, err := uc.EnsureDistribution(ctx, "foo.example.com", []string{"foo.example.com"}, "", "")
			Expect(err).To(MatchError(domain.ErrMissingViewerCertificate))
			Expect(provider.Calls("CreateDistribution")).To(BeZero())
		})

		It("wraps create failures", func() {
			boom := errors.New("boom")
			provider.Fail("CreateDistribution", boom)

			_, _, err := uc.EnsureDistribution(ctx, "foo.example.com", []string{"foo.example.com"}, certARN, "")
			Expect(err).To(MatchError(boom))
		})
	})

	Context("GetDistribution", func() {
		It("returns the full configuration", func() {
			dist, _, err := uc.EnsureDistribution(ctx, "foo.example.com", []string{"foo.example.com"}, certARN, "")
			Expect(err).NotTo(HaveOccurred())

			got, err := uc.GetDistribution(ctx, dist.DistributionID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Aliases).To(Equal([]string{"foo.example.com"}))
			Expect(got.Origins).To(HaveLen(1))
			Expect(got.Origins[0].DomainName).To(Equal("foo.example.com.s3.amazonaws.com"))
			Expect(got.ViewerCertificate.ACMCertificateARN).To(Equal(certARN))
		})

		It("wraps a missing distribution", func() {
			_, err := uc.GetDistribution(ctx, "E404")
			Expect(err).To(MatchError(domain.ErrDistributionNotFound))
		})
	})

	Context("Invalidate", func() {
		It("invalidates everything by default", func() {
			id := provider.AddDistribution("foo.example.com")

			inv, err := uc.Invalidate(ctx, id, "foo.example.com", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(inv.InvalidationID).NotTo(BeEmpty())
			Expect(inv.Paths).To(Equal([]string{domain.InvalidateAll}))
			Expect(strings.HasPrefix(inv.CallerReference, "foo.example.com-")).To(BeTrue())
			Expect(provider.Invalidations()).To(HaveLen(1))
		})

		It("requires a distribution", func() {
			_, err := uc.Invalidate(ctx, "", "foo.example.com", nil)
			Expect(err).To(MatchError(domain.ErrDistributionNotFound))
		})
	})
})
