package acm

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsacm "github.com/aws/aws-sdk-go-v2/service/acm"
	"github.com/aws/aws-sdk-go-v2/service/acm/types"

	"github.com/a9b3/aws-site-deploy/internal/domain/acm"
	"github.com/a9b3/aws-site-deploy/internal/pagination"
	"github.com/a9b3/aws-site-deploy/pkg/metrics"
)

// Client is the subset of the ACM API the repository uses.
type Client interface {
	awsacm.ListCertificatesAPIClient
	awsacm.DescribeCertificateAPIClient
	RequestCertificate(ctx context.Context, params *awsacm.RequestCertificateInput, optFns ...func(*awsacm.Options)) (*awsacm.RequestCertificateOutput, error)
}

var _ Client = (*awsacm.Client)(nil)

// listedKeyTypes widens the listing beyond the RSA-only default so ECDSA
// certificates issued outside this tool are considered for reuse too.
var listedKeyTypes = []types.KeyAlgorithm{
	types.KeyAlgorithmRsa1024,
	types.KeyAlgorithmRsa2048,
	types.KeyAlgorithmRsa3072,
	types.KeyAlgorithmRsa4096,
	types.KeyAlgorithmEcPrime256v1,
	types.KeyAlgorithmEcSecp384r1,
}

type Repository struct {
	client Client
}

func NewRepository(cfg aws.Config) *Repository {
	return &Repository{client: awsacm.NewFromConfig(cfg)}
}

// NewRepositoryWithClient is used by tests to plug a fake client.
func NewRepositoryWithClient(client Client) *Repository {
	return &Repository{client: client}
}

func (r *Repository) List(ctx context.Context) ([]*acm.Certificate, error) {
	paginator := awsacm.NewListCertificatesPaginator(r.client, &awsacm.ListCertificatesInput{
		Includes: &types.Filters{KeyTypes: listedKeyTypes},
	})

	pager := pagination.Cursor(paginator.HasMorePages, func(ctx context.Context) ([]*acm.Certificate, error) {
		recorder := metrics.NewAWSAPIMetricsRecorder(metrics.ServiceACM, "ListCertificates")
		page, err := paginator.NextPage(ctx)
		if err := recorder.Observe(err); err != nil {
			return nil, err
		}

		certs := make([]*acm.Certificate, 0, len(page.CertificateSummaryList))
		for _, s := range page.CertificateSummaryList {
			certs = append(certs, &acm.Certificate{
				DomainName:              aws.ToString(s.DomainName),
				CertificateARN:          aws.ToString(s.CertificateArn),
				Status:                  string(s.Status),
				SubjectAlternativeNames: s.SubjectAlternativeNameSummaries,
			})
		}
		return certs, nil
	})

	return pagination.Drain(ctx, "certificates", pager)
}

func (r *Repository) Request(ctx context.Context, cert *acm.Certificate) error {
	input := &awsacm.RequestCertificateInput{
		DomainName:              aws.String(cert.DomainName),
		ValidationMethod:        types.ValidationMethod(cert.ValidationMethod),
		SubjectAlternativeNames: cert.SubjectAlternativeNames,
	}

	recorder := metrics.NewAWSAPIMetricsRecorder(metrics.ServiceACM, "RequestCertificate")
	output, err := r.client.RequestCertificate(ctx, input)
	if err := recorder.Observe(err); err != nil {
		return fmt.Errorf("failed to request certificate for %s: %w", cert.DomainName, err)
	}

	cert.CertificateARN = aws.ToString(output.CertificateArn)
	return nil
}

func (r *Repository) Describe(ctx context.Context, certARN string) (*acm.Certificate, error) {
	input := &awsacm.DescribeCertificateInput{CertificateArn: aws.String(certARN)}

	recorder := metrics.NewAWSAPIMetricsRecorder(metrics.ServiceACM, "DescribeCertificate")
	output, err := r.client.DescribeCertificate(ctx, input)
	if err := recorder.Observe(err); err != nil {
		return nil, fmt.Errorf("failed to describe certificate %s: %w", certARN, err)
	}
	if output == nil || output.Certificate == nil {
		return nil, nil
	}

	detail := output.Certificate
	cert := &acm.Certificate{
		CertificateARN:          aws.ToString(detail.CertificateArn),
		DomainName:              aws.ToString(detail.DomainName),
		SubjectAlternativeNames: detail.SubjectAlternativeNames,
		Status:                  string(detail.Status),
	}
	if detail.Type == types.CertificateTypeAmazonIssued {
		cert.ValidationMethod = string(types.ValidationMethodDns)
	}

	// Options without a resource record are kept so callers can tell the
	// record is still missing.
	for _, opt := range detail.DomainValidationOptions {
		record := acm.ValidationRecord{
			DomainName:       aws.ToString(opt.DomainName),
			ValidationStatus: string(opt.ValidationStatus),
		}
		if opt.ResourceRecord != nil {
			record.ResourceRecordName = aws.ToString(opt.ResourceRecord.Name)
			record.ResourceRecordType = string(opt.ResourceRecord.Type)
			record.ResourceRecordValue = aws.ToString(opt.ResourceRecord.Value)
		}
		if opt.ValidationMethod != "" {
			cert.ValidationMethod = string(opt.ValidationMethod)
		}
		cert.ValidationRecords = append(cert.ValidationRecords, record)
	}

	return cert, nil
}

// WaitUntilIssued blocks until the certificate is issued, fails validation,
// or timeout elapses.
func (r *Repository) WaitUntilIssued(ctx context.Context, certARN string, timeout time.Duration) error {
	waiter := awsacm.NewCertificateValidatedWaiter(r.client)

	recorder := metrics.NewAWSAPIMetricsRecorder(metrics.ServiceACM, "WaitCertificateValidated")
	err := waiter.Wait(ctx, &awsacm.DescribeCertificateInput{CertificateArn: aws.String(certARN)}, timeout)
	if err := recorder.Observe(err); err != nil {
		return fmt.Errorf("certificate %s was not issued: %w", certARN, err)
	}
	return nil
}
