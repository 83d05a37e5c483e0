package ports

import (
	"context"
	"io"

	"github.com/a9b3/aws-site-deploy/internal/domain/s3"
)

// S3Repository defines the interface for S3 operations
// This is a Port in Hexagonal Architecture - defines WHAT we need, not HOW
type S3Repository interface {
	// List returns every bucket owned by the account
	List(ctx context.Context) ([]*s3.Bucket, error)

	// Create creates a new S3 bucket
	Create(ctx context.Context, bucket *s3.Bucket) error

	// ConfigurePublicAccessBlock configures public access block
	ConfigurePublicAccessBlock(ctx context.Context, name string, config *s3.PublicAccessBlockConfig) error

	// PutPolicy attaches a bucket policy document
	PutPolicy(ctx context.Context, name, policy string) error

	// ConfigureWebsite enables static website hosting
	ConfigureWebsite(ctx context.Context, name string, config *s3.WebsiteConfig) error

	// PutObject uploads body under key
	PutObject(ctx context.Context, bucket, key string, body io.Reader, contentType string) error
}

// FileSource enumerates and opens the files of a site.
type FileSource interface {
	Files(ctx context.Context, root string) ([]s3.Object, error)
	Open(path string) (io.ReadCloser, error)
}

// S3UseCase defines business logic operations for S3
type S3UseCase interface {
	// BucketExists looks the bucket up in the bucket listing
	BucketExists(ctx context.Context, name string) (bool, error)

	// EnsureStaticBucket creates and configures the bucket unless it exists
	EnsureStaticBucket(ctx context.Context, bucket *s3.Bucket) (created bool, err error)

	// CollectFiles lists the files under root
	CollectFiles(ctx context.Context, root string) ([]s3.Object, error)

	// UploadFiles uploads every file, failing the batch on the first error
	UploadFiles(ctx context.Context, bucket string, files []s3.Object) (int, error)
}
