package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/a9b3/aws-site-deploy/internal/domain/acm"
	"github.com/a9b3/aws-site-deploy/internal/domain/route53"
	"github.com/a9b3/aws-site-deploy/internal/ports"
)

var ErrCertificateNotIssued = errors.New("certificate was not issued in time")

// ACM implements ports.ACMRepository on top of a Provider.
type ACM struct {
	p *Provider
}

var _ ports.ACMRepository = (*ACM)(nil)

// AddCertificate registers an existing certificate and returns its ARN.
// Records are generated for the domain name.
func (p *Provider) AddCertificate(domainName, status string) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	c := p.newCertificate(domainName)
	c.cert.Status = status
	return c.cert.CertificateARN
}

// newCertificate creates a certificate with its validation record filled in.
// Callers hold p.mu.
func (p *Provider) newCertificate(domainName string) *certificate {
	id := p.nextID()
	base := strings.TrimPrefix(domainName, "*.")
	c := &certificate{cert: acm.Certificate{
		DomainName:       domainName,
		CertificateARN:   fmt.Sprintf("arn:aws:acm:us-east-1:000000000000:certificate/%04d", id),
		Status:           acm.StatusPendingValidation,
		ValidationMethod: acm.ValidationMethodDNS,
		ValidationRecords: []acm.ValidationRecord{{
			DomainName:          domainName,
			ValidationStatus:    acm.StatusPendingValidation,
			ResourceRecordName:  fmt.Sprintf("_%04d.%s.", id, base),
			ResourceRecordType:  route53.RecordTypeCNAME,
			ResourceRecordValue: fmt.Sprintf("_%04d.acm-validations.aws.", id),
		}},
	}}
	p.certificates = append(p.certificates, c)
	return c
}

// Certificates returns a snapshot of every certificate.
func (p *Provider) Certificates() []acm.Certificate {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]acm.Certificate, 0, len(p.certificates))
	for _, c := range p.certificates {
		out = append(out, c.cert)
	}
	return out
}

func (a *ACM) List(ctx context.Context) ([]*acm.Certificate, error) {
	a.p.mu.Lock()
	summaries := make([]*acm.Certificate, 0, len(a.p.certificates))
	for _, c := range a.p.certificates {
		summaries = append(summaries, &acm.Certificate{
			DomainName:     c.cert.DomainName,
			CertificateARN: c.cert.CertificateARN,
			Status:         c.cert.Status,
		})
	}
	a.p.mu.Unlock()

	return page(ctx, a.p, "certificates", "ListCertificates", summaries)
}

func (a *ACM) Request(_ context.Context, cert *acm.Certificate) error {
	a.p.mu.Lock()
	defer a.p.mu.Unlock()

	if err := a.p.call("RequestCertificate"); err != nil {
		return err
	}
	c := a.p.newCertificate(cert.DomainName)
	c.describes = -a.p.RecordDelay
	cert.CertificateARN = c.cert.CertificateARN
	return nil
}

func (a *ACM) Describe(_ context.Context, certARN string) (*acm.Certificate, error) {
	a.p.mu.Lock()
	defer a.p.mu.Unlock()

	if err := a.p.call("DescribeCertificate"); err != nil {
		return nil, err
	}
	c := a.p.findCertificate(certARN)
	if c == nil {
		return nil, nil
	}

	a.p.settleValidation(c)

	out := c.cert
	out.ValidationRecords = append([]acm.ValidationRecord(nil), c.cert.ValidationRecords...)
	c.describes++
	if c.describes <= 0 {
		for i := range out.ValidationRecords {
			out.ValidationRecords[i].ResourceRecordName = ""
			out.ValidationRecords[i].ResourceRecordType = ""
			out.ValidationRecords[i].ResourceRecordValue = ""
		}
	}
	return &out, nil
}

// WaitUntilIssued succeeds once the validation records are published in a
// hosted zone. It never sleeps.
func (a *ACM) WaitUntilIssued(_ context.Context, certARN string, _ time.Duration) error {
	a.p.mu.Lock()
	defer a.p.mu.Unlock()

	if err := a.p.call("WaitCertificateValidated"); err != nil {
		return err
	}
	c := a.p.findCertificate(certARN)
	if c == nil {
		return fmt.Errorf("%s: %w", certARN, ErrCertificateNotIssued)
	}
	a.p.settleValidation(c)
	if c.cert.Status != acm.StatusIssued {
		return fmt.Errorf("%s: %w", certARN, ErrCertificateNotIssued)
	}
	return nil
}

func (p *Provider) findCertificate(arn string) *certificate {
	for _, c := range p.certificates {
		if c.cert.CertificateARN == arn {
			return c
		}
	}
	return nil
}

// settleValidation issues a pending certificate whose validation records
// all exist in some hosted zone. Callers hold p.mu.
func (p *Provider) settleValidation(c *certificate) {
	if c.cert.Status != acm.StatusPendingValidation {
		return
	}
	for _, r := range c.cert.ValidationRecords {
		if !p.hasRecord(r.ResourceRecordName, r.ResourceRecordType) {
			return
		}
	}
	c.cert.Status = acm.StatusIssued
	for i := range c.cert.ValidationRecords {
		c.cert.ValidationRecords[i].ValidationStatus = acm.StatusSuccess
	}
}
