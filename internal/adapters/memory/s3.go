package memory

import (
	"context"
	"io"
	"slices"

	"github.com/a9b3/aws-site-deploy/internal/domain/s3"
	"github.com/a9b3/aws-site-deploy/internal/ports"
)

// S3 implements ports.S3Repository on top of a Provider.
type S3 struct {
	p *Provider
}

var _ ports.S3Repository = (*S3)(nil)

// AddBucket registers an existing bucket.
func (p *Provider) AddBucket(name, region string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buckets = append(p.buckets, &s3.Bucket{Name: name, Region: region})
}

// Bucket returns a copy of the bucket named name.
func (p *Provider) Bucket(name string) (s3.Bucket, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if b := p.findBucket(name); b != nil {
		return *b, true
	}
	return s3.Bucket{}, false
}

// BucketPolicy returns the policy document attached to name.
func (p *Provider) BucketPolicy(name string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.policies[name]
}

// Object returns the body and content type stored under key.
func (p *Provider) Object(bucket, key string) (string, string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	o, ok := p.objects[bucket][key]
	return string(o.body), o.contentType, ok
}

// ObjectKeys returns the sorted keys stored in bucket.
func (p *Provider) ObjectKeys(bucket string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]string, 0, len(p.objects[bucket]))
	for k := range p.objects[bucket] {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (p *Provider) findBucket(name string) *s3.Bucket {
	for _, b := range p.buckets {
		if b.Name == name {
			return b
		}
	}
	return nil
}

func (s *S3) List(ctx context.Context) ([]*s3.Bucket, error) {
	s.p.mu.Lock()
	buckets := make([]*s3.Bucket, 0, len(s.p.buckets))
	for _, b := range s.p.buckets {
		buckets = append(buckets, &s3.Bucket{Name: b.Name, Region: b.Region})
	}
	s.p.mu.Unlock()

	return page(ctx, s.p, "buckets", "ListBuckets", buckets)
}

func (s *S3) Create(_ context.Context, bucket *s3.Bucket) error {
	s.p.mu.Lock()
	defer s.p.mu.Unlock()

	if err := s.p.call("CreateBucket"); err != nil {
		return err
	}
	if err := bucket.Validate(); err != nil {
		return err
	}
	if s.p.findBucket(bucket.Name) != nil {
		return s3.ErrBucketAlreadyExists
	}
	s.p.buckets = append(s.p.buckets, &s3.Bucket{
		Name:              bucket.Name,
		Region:            bucket.Region,
		PublicAccessBlock: &s3.PublicAccessBlockConfig{BlockPublicAcls: true, IgnorePublicAcls: true, BlockPublicPolicy: true, RestrictPublicBuckets: true},
	})
	return nil
}

func (s *S3) ConfigurePublicAccessBlock(_ context.Context, name string, config *s3.PublicAccessBlockConfig) error {
	s.p.mu.Lock()
	defer s.p.mu.Unlock()

	if err := s.p.call("PutPublicAccessBlock"); err != nil {
		return err
	}
	b := s.p.findBucket(name)
	if b == nil {
		return s3.ErrBucketNotFound
	}
	cfg := *config
	b.PublicAccessBlock = &cfg
	return nil
}

// PutPolicy rejects public policies while the bucket blocks them, as S3 does.
func (s *S3) PutPolicy(_ context.Context, name, policy string) error {
	s.p.mu.Lock()
	defer s.p.mu.Unlock()

	if err := s.p.call("PutBucketPolicy"); err != nil {
		return err
	}
	b := s.p.findBucket(name)
	if b == nil {
		return s3.ErrBucketNotFound
	}
	if b.PublicAccessBlock != nil && b.PublicAccessBlock.BlockPublicPolicy {
		return errAccessDenied
	}
	s.p.policies[name] = policy
	return nil
}

func (s *S3) ConfigureWebsite(_ context.Context, name string, config *s3.WebsiteConfig) error {
	s.p.mu.Lock()
	defer s.p.mu.Unlock()

	if err := s.p.call("PutBucketWebsite"); err != nil {
		return err
	}
	b := s.p.findBucket(name)
	if b == nil {
		return s3.ErrBucketNotFound
	}
	cfg := *config
	b.Website = &cfg
	return nil
}

func (s *S3) PutObject(ctx context.Context, bucket, key string, body io.Reader, contentType string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.p.mu.Lock()
	defer s.p.mu.Unlock()

	if err := s.p.call("PutObject", "PutObject:"+key); err != nil {
		return err
	}
	if s.p.findBucket(bucket) == nil {
		return s3.ErrBucketNotFound
	}
	if s.p.objects[bucket] == nil {
		s.p.objects[bucket] = map[string]object{}
	}
	s.p.objects[bucket][key] = object{body: data, contentType: contentType}
	return nil
}
