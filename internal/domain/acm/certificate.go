package acm

import (
	"errors"

	"github.com/a9b3/aws-site-deploy/internal/domain/fqdn"
)

var (
	ErrInvalidDomainName             = errors.New("domain name cannot be empty")
	ErrInvalidValidationMethod       = errors.New("validation method must be 'DNS' or 'EMAIL'")
	ErrCertificateMissingARN         = errors.New("certificate has no ARN")
	ErrCertificateMissingDescription = errors.New("certificate description is empty")
	ErrValidationRecordIncomplete    = errors.New("certificate validation option is missing its resource record")
)

const (
	StatusIssued            = "ISSUED"
	StatusPendingValidation = "PENDING_VALIDATION"
	StatusFailed            = "FAILED"
	// StatusSuccess is a domain validation status, reported per validation
	// option rather than for the whole certificate.
	StatusSuccess = "SUCCESS"

	ValidationMethodDNS = "DNS"
)

type Certificate struct {
	DomainName              string
	SubjectAlternativeNames []string
	CertificateARN          string
	Status                  string
	ValidationMethod        string
	ValidationRecords       []ValidationRecord
}

// ValidationRecord is the DNS record ACM expects to find for one of the
// names the certificate covers.
type ValidationRecord struct {
	DomainName          string
	ValidationStatus    string
	ResourceRecordName  string
	ResourceRecordType  string
	ResourceRecordValue string
}

func (r ValidationRecord) Complete() bool {
	return r.ResourceRecordName != "" && r.ResourceRecordType != "" && r.ResourceRecordValue != ""
}

func (c *Certificate) Validate() error {
	if c.DomainName == "" {
		return ErrInvalidDomainName
	}
	if c.ValidationMethod != "" && c.ValidationMethod != ValidationMethodDNS && c.ValidationMethod != "EMAIL" {
		return ErrInvalidValidationMethod
	}
	return nil
}

func (c *Certificate) SetDefaults() {
	if c.ValidationMethod == "" {
		c.ValidationMethod = ValidationMethodDNS
	}
}

func (c *Certificate) IsIssued() bool {
	return c.Status == StatusIssued
}

func (c *Certificate) IsPendingValidation() bool {
	return c.Status == StatusPendingValidation
}

func (c *Certificate) IsFailed() bool {
	return c.Status == StatusFailed
}

// NeedsValidationRecords reports whether the validation records should be
// (re)published to DNS. Upserting them on an issued certificate is harmless
// and keeps renewals working.
func (c *Certificate) NeedsValidationRecords() bool {
	switch c.Status {
	case StatusIssued, StatusPendingValidation, StatusSuccess:
		return true
	}
	return false
}

// IsUsableFor reports whether the certificate covers domain.
func (c *Certificate) IsUsableFor(domain string) bool {
	return fqdn.MatchesWildcard(c.DomainName, domain)
}

// RecordsComplete reports whether every validation option carries its
// resource record. ACM fills these in a few seconds after a request.
func (c *Certificate) RecordsComplete() bool {
	if len(c.ValidationRecords) == 0 {
		return false
	}
	for _, r := range c.ValidationRecords {
		if !r.Complete() {
			return false
		}
	}
	return true
}

// CheckDescription returns a CertificateError style error when the
// description lacks what provisioning needs.
func (c *Certificate) CheckDescription() error {
	if c == nil {
		return ErrCertificateMissingDescription
	}
	if c.CertificateARN == "" {
		return ErrCertificateMissingARN
	}
	return nil
}
