// Package clients wires the AWS adapters into the use cases.
package clients

import (
	"github.com/aws/aws-sdk-go-v2/aws"

	awsacm "github.com/a9b3/aws-site-deploy/internal/adapters/aws/acm"
	awscf "github.com/a9b3/aws-site-deploy/internal/adapters/aws/cloudfront"
	awsroute53 "github.com/a9b3/aws-site-deploy/internal/adapters/aws/route53"
	awss3 "github.com/a9b3/aws-site-deploy/internal/adapters/aws/s3"
	"github.com/a9b3/aws-site-deploy/internal/adapters/local"
	"github.com/a9b3/aws-site-deploy/internal/ports"
	acmuc "github.com/a9b3/aws-site-deploy/internal/usecases/acm"
	cfuc "github.com/a9b3/aws-site-deploy/internal/usecases/cloudfront"
	deployuc "github.com/a9b3/aws-site-deploy/internal/usecases/deploy"
	route53uc "github.com/a9b3/aws-site-deploy/internal/usecases/route53"
	s3uc "github.com/a9b3/aws-site-deploy/internal/usecases/s3"
	siteaws "github.com/a9b3/aws-site-deploy/pkg/aws"
)

// Options tune the use cases built by the factory.
type Options struct {
	// UploadConcurrency caps in-flight uploads; zero means unlimited.
	UploadConcurrency int
}

// AWSClientFactory creates use cases backed by AWS SDK clients.
type AWSClientFactory struct {
	cfg   aws.Config
	files ports.FileSource
	opts  Options
}

// NewAWSClientFactory creates a new factory. Site files are read from the
// local disk.
func NewAWSClientFactory(cfg aws.Config, opts Options) *AWSClientFactory {
	return &AWSClientFactory{
		cfg:   cfg,
		files: local.NewFileSource(),
		opts:  opts,
	}
}

// GetRoute53UseCase creates Route53 use case
func (f *AWSClientFactory) GetRoute53UseCase() ports.Route53UseCase {
	return route53uc.NewRoute53UseCase(awsroute53.NewRepository(f.cfg))
}

// GetACMUseCase creates ACM use case. Certificates live in us-east-1 whatever
// the region of the rest of the site.
func (f *AWSClientFactory) GetACMUseCase() ports.ACMUseCase {
	repo := awsacm.NewRepository(siteaws.CertificateConfig(f.cfg))
	return acmuc.NewCertificateUseCase(repo, f.GetRoute53UseCase())
}

// GetS3UseCase creates S3 use case
func (f *AWSClientFactory) GetS3UseCase() ports.S3UseCase {
	return s3uc.NewBucketUseCase(awss3.NewRepository(f.cfg), f.files, s3uc.WithUploadConcurrency(f.opts.UploadConcurrency))
}

// GetCloudFrontUseCase creates CloudFront use case
func (f *AWSClientFactory) GetCloudFrontUseCase() ports.CloudFrontUseCase {
	return cfuc.NewDistributionUseCase(awscf.NewRepository(f.cfg))
}

// GetDeployUseCase creates the orchestrator over every other use case.
func (f *AWSClientFactory) GetDeployUseCase() ports.DeployUseCase {
	return deployuc.NewOrchestrator(
		f.GetACMUseCase(),
		f.GetS3UseCase(),
		f.GetCloudFrontUseCase(),
		f.GetRoute53UseCase(),
	)
}
