// Package acm provisions the TLS certificate a site is served with.
package acm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/a9b3/aws-site-deploy/internal/domain/acm"
	"github.com/a9b3/aws-site-deploy/internal/domain/fqdn"
	"github.com/a9b3/aws-site-deploy/internal/domain/route53"
	"github.com/a9b3/aws-site-deploy/internal/ports"
)

// DefaultValidationRecordTimeout bounds the wait for ACM to attach resource
// records to a freshly requested certificate.
const DefaultValidationRecordTimeout = 30 * time.Second

var errRecordsPending = errors.New("validation records not yet available")

type CertificateUseCase struct {
	repo ports.ACMRepository
	dns  ports.Route53UseCase

	// newBackOff returns the policy used while polling a new certificate.
	newBackOff func() backoff.BackOff
}

type Option func(*CertificateUseCase)

// WithValidationRecordTimeout overrides DefaultValidationRecordTimeout.
func WithValidationRecordTimeout(timeout time.Duration) Option {
	return func(uc *CertificateUseCase) {
		uc.newBackOff = func() backoff.BackOff {
			return backoff.NewExponentialBackOff(
				backoff.WithInitialInterval(500*time.Millisecond),
				backoff.WithMaxInterval(5*time.Second),
				backoff.WithMaxElapsedTime(timeout),
			)
		}
	}
}

// WithBackOff sets the polling policy directly.
func WithBackOff(newBackOff func() backoff.BackOff) Option {
	return func(uc *CertificateUseCase) {
		uc.newBackOff = newBackOff
	}
}

func NewCertificateUseCase(repo ports.ACMRepository, dns ports.Route53UseCase, opts ...Option) *CertificateUseCase {
	uc := &CertificateUseCase{repo: repo, dns: dns}
	WithValidationRecordTimeout(DefaultValidationRecordTimeout)(uc)
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

var _ ports.ACMUseCase = (*CertificateUseCase)(nil)

// FindUsableCertificate returns the first listed certificate whose domain
// name covers domain, or nil.
func (uc *CertificateUseCase) FindUsableCertificate(ctx context.Context, domain string) (*acm.Certificate, error) {
	if domain == "" {
		return nil, acm.ErrInvalidDomainName
	}

	certs, err := uc.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list certificates: %w", err)
	}
	for _, cert := range certs {
		if cert.IsUsableFor(domain) {
			return cert, nil
		}
	}
	return nil, nil
}

// EnsureCertificate reuses a certificate covering domain or requests one for
// *.domain, so sibling hostnames share it. The returned certificate is fully
// described.
func (uc *CertificateUseCase) EnsureCertificate(ctx context.Context, domain string) (*acm.Certificate, bool, error) {
	logger := log.FromContext(ctx)

	cert, err := uc.FindUsableCertificate(ctx, domain)
	if err != nil {
		return nil, false, err
	}

	if cert != nil {
		logger.Info("reusing certificate", "domain", domain, "certificateARN", cert.CertificateARN, "certificateDomain", cert.DomainName)
		described, err := uc.describe(ctx, cert.CertificateARN)
		return described, false, err
	}

	cert = &acm.Certificate{DomainName: fqdn.Wildcard(domain)}
	cert.SetDefaults()
	if err := cert.Validate(); err != nil {
		return nil, false, fmt.Errorf("validation failed: %w", err)
	}
	if err := uc.repo.Request(ctx, cert); err != nil {
		return nil, false, fmt.Errorf("failed to request certificate: %w", err)
	}
	if cert.CertificateARN == "" {
		return nil, true, fmt.Errorf("certificate for %s: %w", cert.DomainName, acm.ErrCertificateMissingARN)
	}
	logger.Info("requested certificate", "domain", cert.DomainName, "certificateARN", cert.CertificateARN)

	described, err := uc.awaitRecords(ctx, cert.CertificateARN)
	return described, true, err
}

// awaitRecords describes a new certificate until ACM has attached every
// validation record or the backoff policy gives up.
func (uc *CertificateUseCase) awaitRecords(ctx context.Context, certARN string) (*acm.Certificate, error) {
	var cert *acm.Certificate
	operation := func() error {
		described, err := uc.describe(ctx, certARN)
		if err != nil {
			return backoff.Permanent(err)
		}
		cert = described
		if !described.RecordsComplete() {
			return errRecordsPending
		}
		return nil
	}
	notify := func(err error, wait time.Duration) {
		log.FromContext(ctx).V(1).Info("waiting for validation records", "certificateARN", certARN, "retryIn", wait.String())
	}

	err := backoff.RetryNotify(operation, backoff.WithContext(uc.newBackOff(), ctx), notify)
	if errors.Is(err, errRecordsPending) {
		return nil, fmt.Errorf("certificate %s: %w", certARN, acm.ErrValidationRecordIncomplete)
	}
	if err != nil {
		return nil, err
	}
	return cert, nil
}

func (uc *CertificateUseCase) describe(ctx context.Context, certARN string) (*acm.Certificate, error) {
	cert, err := uc.repo.Describe(ctx, certARN)
	if err != nil {
		return nil, fmt.Errorf("failed to describe certificate: %w", err)
	}
	if err := cert.CheckDescription(); err != nil {
		return nil, fmt.Errorf("certificate %s: %w", certARN, err)
	}
	return cert, nil
}

// ValidateCertificate publishes the DNS validation records of cert into the
// zone. Records are upserted on every run so a stuck validation recovers.
func (uc *CertificateUseCase) ValidateCertificate(ctx context.Context, hostedZoneID string, cert *acm.Certificate) error {
	if !cert.NeedsValidationRecords() {
		log.FromContext(ctx).Info("skipping certificate validation", "certificateARN", cert.CertificateARN, "status", cert.Status)
		return nil
	}

	records := make([]route53.RecordSet, 0, len(cert.ValidationRecords))
	for _, r := range cert.ValidationRecords {
		if !r.Complete() {
			return fmt.Errorf("certificate %s, %s: %w", cert.CertificateARN, r.DomainName, acm.ErrValidationRecordIncomplete)
		}
		records = append(records, route53.NewValidationRecord(hostedZoneID, r.ResourceRecordName, r.ResourceRecordType, r.ResourceRecordValue))
	}

	if err := uc.dns.UpsertRecords(ctx, hostedZoneID, records); err != nil {
		return fmt.Errorf("failed to publish validation records: %w", err)
	}
	return nil
}

func (uc *CertificateUseCase) WaitForIssued(ctx context.Context, certARN string, timeout time.Duration) error {
	log.FromContext(ctx).Info("waiting for certificate", "certificateARN", certARN, "timeout", timeout.String())
	if err := uc.repo.WaitUntilIssued(ctx, certARN, timeout); err != nil {
		return fmt.Errorf("certificate %s was not issued: %w", certARN, err)
	}
	return nil
}
