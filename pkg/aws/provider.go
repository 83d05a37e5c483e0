// Package aws builds the SDK configuration every adapter is constructed from.
package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// CertificateRegion is the only region CloudFront accepts certificates from.
const CertificateRegion = "us-east-1"

// Settings are the connection settings given on the command line, in a
// manifest or in the environment.
type Settings struct {
	Region          string
	Endpoint        string // LocalStack or another AWS compatible endpoint
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Profile         string
}

// LoadConfig returns an SDK configuration. Static credentials win when both
// keys are set, then the named profile, then the default chain (environment,
// shared files, instance role).
func LoadConfig(ctx context.Context, s Settings) (aws.Config, error) {
	var opts []func(*config.LoadOptions) error

	if s.Region != "" {
		opts = append(opts, config.WithRegion(s.Region))
	}

	if s.AccessKeyID != "" && s.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.AccessKeyID, s.SecretAccessKey, s.SessionToken),
		))
	} else if s.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(s.Profile))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	if s.Endpoint != "" {
		cfg.BaseEndpoint = aws.String(s.Endpoint)
	}

	return cfg, nil
}

// CertificateConfig returns cfg addressed to CertificateRegion. An endpoint
// override keeps its region, since emulators serve every service from one
// region.
func CertificateConfig(cfg aws.Config) aws.Config {
	if cfg.BaseEndpoint != nil {
		return cfg
	}
	pinned := cfg.Copy()
	pinned.Region = CertificateRegion
	return pinned
}
