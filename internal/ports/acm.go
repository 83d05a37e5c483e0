// Package ports declares the interfaces between the deploy use cases and the
// providers they drive.
//
// Repositories are implemented by adapters (AWS, in-memory, local disk); use
// cases are implemented under internal/usecases and consumed by the
// orchestrator and the CLI.
package ports

import (
	"context"
	"time"

	"github.com/a9b3/aws-site-deploy/internal/domain/acm"
)

// ACMRepository defines the interface for ACM Certificate operations
type ACMRepository interface {
	// List returns a summary (domain name, ARN, status) of every certificate.
	List(ctx context.Context) ([]*acm.Certificate, error)
	// Request asks for a new certificate and sets cert.CertificateARN.
	Request(ctx context.Context, cert *acm.Certificate) error
	// Describe returns the full certificate, validation records included.
	// A nil certificate without error means the provider returned no description.
	Describe(ctx context.Context, certARN string) (*acm.Certificate, error)
	WaitUntilIssued(ctx context.Context, certARN string, timeout time.Duration) error
}

// ACMUseCase defines the use case interface for ACM operations
type ACMUseCase interface {
	FindUsableCertificate(ctx context.Context, domain string) (*acm.Certificate, error)
	// EnsureCertificate returns a described certificate usable for domain,
	// requesting *.domain when none exists. created reports a new request.
	EnsureCertificate(ctx context.Context, domain string) (cert *acm.Certificate, created bool, err error)
	ValidateCertificate(ctx context.Context, hostedZoneID string, cert *acm.Certificate) error
	WaitForIssued(ctx context.Context, certARN string, timeout time.Duration) error
}
