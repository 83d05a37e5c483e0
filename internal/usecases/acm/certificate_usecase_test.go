package acm_test

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/a9b3/aws-site-deploy/internal/adapters/memory"
	domain "github.com/a9b3/aws-site-deploy/internal/domain/acm"
	"github.com/a9b3/aws-site-deploy/internal/domain/route53"
	"github.com/a9b3/aws-site-deploy/internal/usecases/acm"
	dns "github.com/a9b3/aws-site-deploy/internal/usecases/route53"
)

func quickRetries(n uint64) acm.Option {
	return acm.WithBackOff(func() backoff.BackOff {
		return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, n)
	})
}

var _ = Describe("Certificate use case", func() {
	var (
		ctx      context.Context
		provider *memory.Provider
		uc       *acm.CertificateUseCase
	)

	BeforeEach(func() {
		ctx = context.Background()
		provider = memory.NewProvider()
		uc = acm.NewCertificateUseCase(provider.ACM(), dns.NewRoute53UseCase(provider.Route53()), quickRetries(5))
	})

	Context("FindUsableCertificate", func() {
		It("finds a wildcard certificate past the first page", func() {
			provider.AddCertificate("a.org", domain.StatusIssued)
			provider.AddCertificate("b.org", domain.StatusIssued)
			arn := provider.AddCertificate("*.example.com", domain.StatusIssued)

			cert, err := uc.FindUsableCertificate(ctx, "example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(cert).NotTo(BeNil())
			Expect(cert.CertificateARN).To(Equal(arn))
		})

		It("returns the first match in listing order", func() {
			first := provider.AddCertificate("*.example.com", domain.StatusIssued)
			provider.AddCertificate("example.com", domain.StatusIssued)

			cert, err := uc.FindUsableCertificate(ctx, "example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(cert.CertificateARN).To(Equal(first))
		})

		It("does not match deeper subdomains", func() {
			provider.AddCertificate("*.example.com", domain.StatusIssued)

			cert, err := uc.FindUsableCertificate(ctx, "a.b.example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(cert).To(BeNil())
		})

		It("wraps listing failures", func() {
			boom := errors.New("boom")
			provider.Fail("ListCertificates", boom)

			_, err := uc.FindUsableCertificate(ctx, "example.com")
			Expect(err).To(MatchError(boom))
		})
	})

	Context("EnsureCertificate", func() {
		It("reuses *.example.com for bar.example.com", func() {
			arn := provider.AddCertificate("*.example.com", domain.StatusIssued)

			cert, created, err := uc.EnsureCertificate(ctx, "bar.example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeFalse())
			Expect(cert.CertificateARN).To(Equal(arn))
			Expect(cert.ValidationRecords).NotTo(BeEmpty())
			Expect(provider.Calls("RequestCertificate")).To(BeZero())
		})

		It("requests a wildcard certificate for the domain when none matches", func() {
			cert, created, err := uc.EnsureCertificate(ctx, "example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeTrue())
			Expect(cert.DomainName).To(Equal("*.example.com"))
			Expect(cert.RecordsComplete()).To(BeTrue())
			Expect(provider.Certificates()).To(HaveLen(1))
		})

		It("does not request a second certificate on a second run", func() {
			_, created, err := uc.EnsureCertificate(ctx, "example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeTrue())

			_, created, err = uc.EnsureCertificate(ctx, "example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeFalse())
			Expect(provider.Calls("RequestCertificate")).To(Equal(1))
		})

		It("polls until ACM attaches the validation records", func() {
			provider.RecordDelay = 2

			cert, _, err := uc.EnsureCertificate(ctx, "example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(cert.RecordsComplete()).To(BeTrue())
			Expect(provider.Calls("DescribeCertificate")).To(Equal(3))
		})

		It("fails when the records never show up", func() {
			provider.RecordDelay = 100

			_, created, err := uc.EnsureCertificate(ctx, "example.com")
			Expect(created).To(BeTrue())
			Expect(err).To(MatchError(domain.ErrValidationRecordIncomplete))
		})

		It("does not retry describe failures", func() {
			boom := errors.New("boom")
			provider.Fail("DescribeCertificate", boom)

			_, _, err := uc.EnsureCertificate(ctx, "example.com")
			Expect(err).To(MatchError(boom))
			Expect(provider.Calls("DescribeCertificate")).To(Equal(1))
		})

		It("rejects an empty domain", func() {
			_, _, err := uc.EnsureCertificate(ctx, "")
			Expect(err).To(MatchError(domain.ErrInvalidDomainName))
		})
	})

	Context("ValidateCertificate", func() {
		var zoneID string

		BeforeEach(func() {
			zoneID = provider.AddHostedZone("example.com")
		})

		It("upserts the validation records into the zone", func() {
			cert, _, err := uc.EnsureCertificate(ctx, "example.com")
			Expect(err).NotTo(HaveOccurred())

			Expect(uc.ValidateCertificate(ctx, zoneID, cert)).To(Succeed())

			r := cert.ValidationRecords[0]
			rs, ok := provider.Record(zoneID, r.ResourceRecordName, r.ResourceRecordType)
			Expect(ok).To(BeTrue())
			Expect(rs.ResourceRecords).To(ConsistOf(r.ResourceRecordValue))
			Expect(*rs.TTL).To(Equal(route53.ValidationRecordTTL))
		})

		It("collapses records repeated across validation options", func() {
			cert := &domain.Certificate{
				CertificateARN: "arn",
				Status:         domain.StatusPendingValidation,
				ValidationRecords: []domain.ValidationRecord{
					{DomainName: "*.example.com", ResourceRecordName: "_a.example.com.", ResourceRecordType: "CNAME", ResourceRecordValue: "_b.acm-validations.aws."},
					{DomainName: "example.com", ResourceRecordName: "_a.example.com.", ResourceRecordType: "CNAME", ResourceRecordValue: "_b.acm-validations.aws."},
				},
			}

			Expect(uc.ValidateCertificate(ctx, zoneID, cert)).To(Succeed())
			Expect(provider.RecordCount(zoneID)).To(Equal(1))
		})

		It("fails on a validation option without its record", func() {
			cert := &domain.Certificate{
				CertificateARN:    "arn",
				Status:            domain.StatusPendingValidation,
				ValidationRecords: []domain.ValidationRecord{{DomainName: "*.example.com"}},
			}

			err := uc.ValidateCertificate(ctx, zoneID, cert)
			Expect(err).To(MatchError(domain.ErrValidationRecordIncomplete))
			Expect(provider.Calls("ChangeResourceRecordSets")).To(BeZero())
		})

		It("skips failed certificates", func() {
			cert := &domain.Certificate{CertificateARN: "arn", Status: domain.StatusFailed}

			Expect(uc.ValidateCertificate(ctx, zoneID, cert)).To(Succeed())
			Expect(provider.Calls("ChangeResourceRecordSets")).To(BeZero())
		})
	})

	Context("WaitForIssued", func() {
		It("succeeds once the validation records are published", func() {
			zoneID := provider.AddHostedZone("example.com")
			cert, _, err := uc.EnsureCertificate(ctx, "example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(uc.ValidateCertificate(ctx, zoneID, cert)).To(Succeed())

			Expect(uc.WaitForIssued(ctx, cert.CertificateARN, time.Minute)).To(Succeed())
			Expect(provider.Certificates()[0].Status).To(Equal(domain.StatusIssued))
		})

		It("fails while validation is pending", func() {
			cert, _, err := uc.EnsureCertificate(ctx, "example.com")
			Expect(err).NotTo(HaveOccurred())

			err = uc.WaitForIssued(ctx, cert.CertificateARN, time.Minute)
			Expect(err).To(MatchError(memory.ErrCertificateNotIssued))
		})
	})
})
