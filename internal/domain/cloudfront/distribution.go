package cloudfront

import (
	"errors"
	"strings"

	"github.com/samber/lo"

	"github.com/a9b3/aws-site-deploy/internal/domain/s3"
)

var (
	ErrInvalidOrigins           = errors.New("invalid origins: must have at least one origin")
	ErrInvalidPriceClass        = errors.New("invalid price class")
	ErrMissingViewerCertificate = errors.New("aliased distribution requires an ACM certificate")
	ErrDistributionNotCreated   = errors.New("distribution creation returned no distribution")
	ErrDistributionNotFound     = errors.New("no distribution found for aliases")
)

const (
	PriceClassAll = "PriceClass_All"
	PriceClass100 = "PriceClass_100"
	PriceClass200 = "PriceClass_200"

	StatusDeployed = "Deployed"

	ViewerProtocolRedirectToHTTPS = "redirect-to-https"
	SSLSupportMethodSNIOnly       = "sni-only"
	MinimumProtocolTLSv12_2021    = "TLSv1.2_2021"

	// CachingOptimizedPolicyID is the AWS managed cache policy for static content.
	CachingOptimizedPolicyID = "658327ea-f89d-4fab-a63d-7e88639e58f6"
)

// Distribution represents a CloudFront distribution
type Distribution struct {
	CallerReference      string
	Comment              string
	DefaultRootObject    string
	Origins              []Origin
	DefaultCacheBehavior CacheBehavior
	CustomErrorResponses []CustomErrorResponse
	Enabled              bool
	IPv6Enabled          bool
	PriceClass           string
	ViewerCertificate    *ViewerCertificate
	Aliases              []string

	// Output fields from AWS
	DistributionID string
	ARN            string
	DomainName     string
	Status         string
	ETag           string
}

type Origin struct {
	ID             string
	DomainName     string
	OriginPath     string
	S3OriginConfig *S3OriginConfig
}

type S3OriginConfig struct {
	OriginAccessIdentity string
}

type CacheBehavior struct {
	TargetOriginID       string
	ViewerProtocolPolicy string
	AllowedMethods       []string
	CachedMethods        []string
	Compress             bool
	CachePolicyID        string
}

// CustomErrorResponse rewrites an origin error into a page served with
// ResponseCode.
type CustomErrorResponse struct {
	ErrorCode          int32
	ResponsePagePath   string
	ResponseCode       string
	ErrorCachingMinTTL int64
}

type ViewerCertificate struct {
	ACMCertificateARN            string
	CloudFrontDefaultCertificate bool
	MinimumProtocolVersion       string
	SSLSupportMethod             string
}

// NewStaticSiteDistribution builds the distribution that fronts the bucket
// named after fqdn. S3 answers 403 for missing keys on a REST origin, so 403
// is rewritten to the entry page to let the client side router handle it.
func NewStaticSiteDistribution(fqdn string, aliases []string, certificateARN, indexDocument string) *Distribution {
	if indexDocument == "" {
		indexDocument = s3.DefaultIndexDocument
	}
	originID := "S3-" + fqdn
	return &Distribution{
		CallerReference:   fqdn,
		Comment:           fqdn,
		DefaultRootObject: indexDocument,
		Origins: []Origin{{
			ID:             originID,
			DomainName:     s3.RESTEndpoint(fqdn),
			S3OriginConfig: &S3OriginConfig{},
		}},
		DefaultCacheBehavior: CacheBehavior{
			TargetOriginID:       originID,
			ViewerProtocolPolicy: ViewerProtocolRedirectToHTTPS,
			AllowedMethods:       []string{"GET", "HEAD"},
			CachedMethods:        []string{"GET", "HEAD"},
			Compress:             true,
			CachePolicyID:        CachingOptimizedPolicyID,
		},
		CustomErrorResponses: []CustomErrorResponse{{
			ErrorCode:        403,
			ResponsePagePath: "/" + strings.TrimPrefix(indexDocument, "/"),
			ResponseCode:     "200",
		}},
		Enabled:     true,
		IPv6Enabled: true,
		PriceClass:  PriceClass100,
		ViewerCertificate: &ViewerCertificate{
			ACMCertificateARN:      certificateARN,
			MinimumProtocolVersion: MinimumProtocolTLSv12_2021,
			SSLSupportMethod:       SSLSupportMethodSNIOnly,
		},
		Aliases: aliases,
	}
}

func (d *Distribution) Validate() error {
	if len(d.Origins) == 0 {
		return ErrInvalidOrigins
	}

	if d.PriceClass != "" {
		if d.PriceClass != PriceClassAll && d.PriceClass != PriceClass100 && d.PriceClass != PriceClass200 {
			return ErrInvalidPriceClass
		}
	}

	if len(d.Aliases) > 0 && (d.ViewerCertificate == nil || d.ViewerCertificate.ACMCertificateARN == "") {
		return ErrMissingViewerCertificate
	}

	return nil
}

func (d *Distribution) SetDefaults() {
	if d.PriceClass == "" {
		d.PriceClass = PriceClass100
	}
}

func (d *Distribution) IsReady() bool {
	return d.DistributionID != "" && d.Status == StatusDeployed
}

// HasAnyAlias reports whether the distribution serves at least one of
// aliases. Alias comparison is case-insensitive.
func (d *Distribution) HasAnyAlias(aliases []string) bool {
	mine := lo.Map(d.Aliases, func(a string, _ int) string { return strings.ToLower(a) })
	theirs := lo.Map(aliases, func(a string, _ int) string { return strings.ToLower(a) })
	return len(lo.Intersect(mine, theirs)) > 0
}

