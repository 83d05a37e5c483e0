package s3

import "time"

// DefaultIndexDocument is the single page application entry point served for
// both the index and the error document.
const DefaultIndexDocument = "index.html"

// Bucket represents a bucket that serves a static site. Its name is the FQDN
// of the site.
type Bucket struct {
	Name   string
	Region string

	Website           *WebsiteConfig
	PublicAccessBlock *PublicAccessBlockConfig

	// State
	CreationTime *time.Time
}

// WebsiteConfig is the static website hosting configuration.
type WebsiteConfig struct {
	IndexDocument string
	ErrorDocument string
}

// PublicAccessBlockConfig defines public access block settings
type PublicAccessBlockConfig struct {
	BlockPublicAcls       bool
	IgnorePublicAcls      bool
	BlockPublicPolicy     bool
	RestrictPublicBuckets bool
}

// NewStaticSiteBucket returns the bucket layout used to host a single page
// application: client side routes that 404 in the bucket still get the app
// shell because the error document is the entry page too.
func NewStaticSiteBucket(name, region, indexDocument string) *Bucket {
	if indexDocument == "" {
		indexDocument = DefaultIndexDocument
	}
	return &Bucket{
		Name:   name,
		Region: region,
		Website: &WebsiteConfig{
			IndexDocument: indexDocument,
			ErrorDocument: indexDocument,
		},
		// A public-read bucket policy is rejected while BlockPublicPolicy is on.
		PublicAccessBlock: &PublicAccessBlockConfig{},
	}
}

// Validate performs domain validation
func (b *Bucket) Validate() error {
	if b.Name == "" {
		return ErrBucketNameRequired
	}

	if len(b.Name) < 3 || len(b.Name) > 63 {
		return ErrInvalidBucketNameLength
	}

	if b.Region == "" {
		return ErrRegionRequired
	}

	if b.Website != nil && b.Website.IndexDocument == "" {
		return ErrIndexDocumentRequired
	}

	return nil
}

// HasPublicAccessBlocked checks if any public access block setting would
// prevent the site from being served.
func (b *Bucket) HasPublicAccessBlocked() bool {
	if b.PublicAccessBlock == nil {
		return false
	}

	return b.PublicAccessBlock.BlockPublicAcls ||
		b.PublicAccessBlock.IgnorePublicAcls ||
		b.PublicAccessBlock.BlockPublicPolicy ||
		b.PublicAccessBlock.RestrictPublicBuckets
}

// ARN returns the bucket ARN.
func (b *Bucket) ARN() string {
	return "arn:aws:s3:::" + b.Name
}

// RESTEndpoint is the origin domain CloudFront uses to reach the bucket.
func RESTEndpoint(bucket string) string {
	return bucket + ".s3.amazonaws.com"
}
