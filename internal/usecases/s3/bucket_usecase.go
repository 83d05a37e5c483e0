// Package s3 provisions the bucket a site is served from and uploads the
// site into it.
package s3

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/a9b3/aws-site-deploy/internal/domain/s3"
	"github.com/a9b3/aws-site-deploy/internal/ports"
	"github.com/a9b3/aws-site-deploy/pkg/metrics"
)

// BucketUseCase implements business logic for S3 buckets
type BucketUseCase struct {
	repo  ports.S3Repository
	files ports.FileSource

	// concurrency caps in-flight uploads; zero or less means one goroutine
	// per file.
	concurrency int
}

type Option func(*BucketUseCase)

// WithUploadConcurrency limits the number of uploads in flight.
func WithUploadConcurrency(n int) Option {
	return func(uc *BucketUseCase) {
		uc.concurrency = n
	}
}

// NewBucketUseCase creates a new use case
func NewBucketUseCase(repo ports.S3Repository, files ports.FileSource, opts ...Option) ports.S3UseCase {
	uc := &BucketUseCase{
		repo:  repo,
		files: files,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// BucketExists looks for name in the bucket listing.
func (uc *BucketUseCase) BucketExists(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return false, s3.ErrBucketNameRequired
	}

	buckets, err := uc.repo.List(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list buckets: %w", err)
	}
	for _, b := range buckets {
		if b.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// EnsureStaticBucket creates and configures the bucket for static hosting.
// An existing bucket is left untouched.
func (uc *BucketUseCase) EnsureStaticBucket(ctx context.Context, bucket *s3.Bucket) (bool, error) {
	logger := log.FromContext(ctx)

	// Domain validation
	if err := bucket.Validate(); err != nil {
		return false, fmt.Errorf("validation failed: %w", err)
	}

	exists, err := uc.BucketExists(ctx, bucket.Name)
	if err != nil {
		return false, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		logger.Info("reusing bucket", "bucket", bucket.Name)
		return false, nil
	}

	if err := uc.repo.Create(ctx, bucket); err != nil {
		return false, fmt.Errorf("failed to create bucket: %w", err)
	}
	logger.Info("created bucket", "bucket", bucket.Name, "region", bucket.Region)

	if bucket.PublicAccessBlock != nil {
		if err := uc.repo.ConfigurePublicAccessBlock(ctx, bucket.Name, bucket.PublicAccessBlock); err != nil {
			return true, fmt.Errorf("failed to configure public access block: %w", err)
		}
	}

	policy, err := s3.PublicReadPolicy(bucket.Name).JSON()
	if err != nil {
		return true, fmt.Errorf("failed to build bucket policy: %w", err)
	}
	if err := uc.repo.PutPolicy(ctx, bucket.Name, policy); err != nil {
		return true, fmt.Errorf("failed to put bucket policy: %w", err)
	}

	if bucket.Website != nil {
		if err := uc.repo.ConfigureWebsite(ctx, bucket.Name, bucket.Website); err != nil {
			return true, fmt.Errorf("failed to configure website: %w", err)
		}
	}

	now := time.Now()
	bucket.CreationTime = &now
	return true, nil
}

func (uc *BucketUseCase) CollectFiles(ctx context.Context, root string) ([]s3.Object, error) {
	files, err := uc.files.Files(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("failed to collect files under %s: %w", root, err)
	}
	return files, nil
}

// UploadFiles uploads every file concurrently. The first failure cancels
// the uploads still in flight and is returned as an *s3.UploadError; objects
// already written stay in the bucket.
func (uc *BucketUseCase) UploadFiles(ctx context.Context, bucket string, files []s3.Object) (int, error) {
	var uploaded atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	if uc.concurrency > 0 {
		g.SetLimit(uc.concurrency)
	}

	for _, obj := range files {
		obj := obj
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			err := uc.upload(gctx, bucket, obj)
			metrics.RecordUpload(obj.Size, err)
			if err != nil {
				return &s3.UploadError{Bucket: bucket, Key: obj.Key, Err: err}
			}
			uploaded.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return int(uploaded.Load()), err
	}
	if err := ctx.Err(); err != nil {
		return int(uploaded.Load()), err
	}
	log.FromContext(ctx).V(1).Info("uploaded files", "bucket", bucket, "count", uploaded.Load())
	return int(uploaded.Load()), nil
}

func (uc *BucketUseCase) upload(ctx context.Context, bucket string, obj s3.Object) error {
	body, err := uc.files.Open(obj.Path)
	if err != nil {
		return err
	}
	defer body.Close()

	return uc.repo.PutObject(ctx, bucket, obj.Key, body, obj.ContentType)
}
