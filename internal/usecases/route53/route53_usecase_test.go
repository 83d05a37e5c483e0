package route53_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/a9b3/aws-site-deploy/internal/adapters/memory"
	domain "github.com/a9b3/aws-site-deploy/internal/domain/route53"
	"github.com/a9b3/aws-site-deploy/internal/ports"
	"github.com/a9b3/aws-site-deploy/internal/usecases/route53"
)

var _ = Describe("Route53 use case", func() {
	var (
		ctx      context.Context
		provider *memory.Provider
		uc       ports.Route53UseCase
	)

	BeforeEach(func() {
		ctx = context.Background()
		provider = memory.NewProvider()
		uc = route53.NewRoute53UseCase(provider.Route53())
	})

	Context("FindHostedZoneForRootDomain", func() {
		It("finds the zone past the first page", func() {
			provider.AddHostedZone("a.com")
			provider.AddHostedZone("b.com")
			provider.AddHostedZone("c.com")
			id := provider.AddHostedZone("example.com")

			zone, err := uc.FindHostedZoneForRootDomain(ctx, "example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(zone).NotTo(BeNil())
			Expect(zone.HostedZoneID).To(Equal(id))
			Expect(provider.Calls("ListHostedZones")).To(Equal(2))
		})

		It("matches regardless of case and trailing dot", func() {
			id := provider.AddHostedZone("Example.COM.")

			zone, err := uc.FindHostedZoneForRootDomain(ctx, "example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(zone.HostedZoneID).To(Equal(id))
		})

		It("returns nil when no zone matches", func() {
			provider.AddHostedZone("other.com")

			zone, err := uc.FindHostedZoneForRootDomain(ctx, "example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(zone).To(BeNil())
		})

		It("does not match a parent or child zone", func() {
			provider.AddHostedZone("sub.example.com")
			provider.AddHostedZone("com")

			zone, err := uc.FindHostedZoneForRootDomain(ctx, "example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(zone).To(BeNil())
		})

		It("wraps listing failures", func() {
			boom := errors.New("boom")
			provider.Fail("ListHostedZones", boom)

			_, err := uc.FindHostedZoneForRootDomain(ctx, "example.com")
			Expect(err).To(MatchError(boom))
		})
	})

	Context("UpsertAliasRecord", func() {
		It("writes an A alias to the CloudFront zone", func() {
			zoneID := provider.AddHostedZone("example.com")

			Expect(uc.UpsertAliasRecord(ctx, zoneID, "foo.example.com", "d1.cloudfront.net")).To(Succeed())

			rs, ok := provider.Record(zoneID, "foo.example.com", domain.RecordTypeA)
			Expect(ok).To(BeTrue())
			Expect(rs.AliasTarget).NotTo(BeNil())
			Expect(rs.AliasTarget.HostedZoneID).To(Equal(domain.CloudFrontHostedZoneID))
			Expect(rs.AliasTarget.DNSName).To(Equal("d1.cloudfront.net"))
			Expect(rs.AliasTarget.EvaluateTargetHealth).To(BeFalse())
		})

		It("overwrites the record on a second run", func() {
			zoneID := provider.AddHostedZone("example.com")

			Expect(uc.UpsertAliasRecord(ctx, zoneID, "foo.example.com", "d1.cloudfront.net")).To(Succeed())
			Expect(uc.UpsertAliasRecord(ctx, zoneID, "foo.example.com", "d2.cloudfront.net")).To(Succeed())

			rs, _ := provider.Record(zoneID, "foo.example.com", domain.RecordTypeA)
			Expect(rs.AliasTarget.DNSName).To(Equal("d2.cloudfront.net"))
			Expect(provider.RecordCount(zoneID)).To(Equal(1))
		})
	})

	Context("UpsertRecords", func() {
		It("sends duplicate records once", func() {
			zoneID := provider.AddHostedZone("example.com")
			record := domain.NewValidationRecord(zoneID, "_x.example.com.", "CNAME", "_y.acm-validations.aws.")

			Expect(uc.UpsertRecords(ctx, zoneID, []domain.RecordSet{record, record})).To(Succeed())
			Expect(provider.RecordCount(zoneID)).To(Equal(1))
			Expect(provider.Calls("ChangeResourceRecordSets")).To(Equal(1))
		})

		It("skips the call for an empty batch", func() {
			zoneID := provider.AddHostedZone("example.com")

			Expect(uc.UpsertRecords(ctx, zoneID, nil)).To(Succeed())
			Expect(provider.Calls("ChangeResourceRecordSets")).To(BeZero())
		})

		It("rejects an invalid record before calling Route53", func() {
			zoneID := provider.AddHostedZone("example.com")
			bad := domain.RecordSet{Name: "x.example.com", Type: "CNAME"}

			err := uc.UpsertRecords(ctx, zoneID, []domain.RecordSet{bad})
			Expect(err).To(MatchError(domain.ErrMissingTTL))
			Expect(provider.Calls("ChangeResourceRecordSets")).To(BeZero())
		})

		It("requires a hosted zone ID", func() {
			err := uc.UpsertRecords(ctx, "", nil)
			Expect(err).To(MatchError(domain.ErrInvalidHostedZoneID))
		})
	})
})
