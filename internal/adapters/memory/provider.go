// Package memory is an in-process stand-in for the AWS services a deploy
// touches. It keeps every resource in maps, pages its listings, and can be
// told to fail specific operations, which makes it the backend of the use
// case and orchestrator test suites.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/smithy-go"

	"github.com/a9b3/aws-site-deploy/internal/domain/acm"
	"github.com/a9b3/aws-site-deploy/internal/domain/cloudfront"
	"github.com/a9b3/aws-site-deploy/internal/domain/route53"
	"github.com/a9b3/aws-site-deploy/internal/domain/s3"
	"github.com/a9b3/aws-site-deploy/internal/pagination"
)

// DefaultPageSize keeps pages small so listings always span several pages.
const DefaultPageSize = 2

var errAccessDenied = &smithy.GenericAPIError{Code: "AccessDenied", Message: "public policies are blocked by the BlockPublicPolicy block public access setting"}

type object struct {
	body        []byte
	contentType string
}

// Provider holds the state of every simulated service.
type Provider struct {
	mu sync.Mutex

	// PageSize is the number of items per listing page.
	PageSize int
	// RecordDelay is the number of Describe calls a new certificate answers
	// before its validation records are filled in.
	RecordDelay int
	// DropCreatedDistribution makes CreateDistribution answer without a
	// distribution.
	DropCreatedDistribution bool

	seq   int
	calls map[string]int
	fail  map[string]error

	certificates  []*certificate
	buckets       []*s3.Bucket
	policies      map[string]string
	objects       map[string]map[string]object
	distributions []*cloudfront.Distribution
	invalidations []*cloudfront.Invalidation
	zones         []*route53.HostedZone
	records       map[string]map[string]route53.RecordSet
}

type certificate struct {
	cert      acm.Certificate
	describes int
}

func NewProvider() *Provider {
	return &Provider{
		PageSize: DefaultPageSize,
		calls:    map[string]int{},
		fail:     map[string]error{},
		policies: map[string]string{},
		objects:  map[string]map[string]object{},
		records:  map[string]map[string]route53.RecordSet{},
	}
}

// Fail makes every call of operation return err. Operation names follow the
// AWS API (CreateBucket, PutObject, ...); PutObject can be narrowed to one
// key with "PutObject:<key>".
func (p *Provider) Fail(operation string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fail[operation] = err
}

// Calls returns how many times operation was invoked.
func (p *Provider) Calls(operation string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[operation]
}

// call records an invocation and returns the injected failure, if any.
// Callers hold p.mu.
func (p *Provider) call(operations ...string) error {
	p.calls[operations[0]]++
	for _, op := range operations {
		if err, ok := p.fail[op]; ok {
			return err
		}
	}
	return nil
}

func (p *Provider) nextID() int {
	p.seq++
	return p.seq
}

// ACM returns the certificate repository view.
func (p *Provider) ACM() *ACM { return &ACM{p: p} }

// S3 returns the bucket repository view.
func (p *Provider) S3() *S3 { return &S3{p: p} }

// CloudFront returns the distribution repository view.
func (p *Provider) CloudFront() *CloudFront { return &CloudFront{p: p} }

// Route53 returns the DNS repository view.
func (p *Provider) Route53() *Route53 { return &Route53{p: p} }

// page lists items in chunks of PageSize through a continuation token, the
// same way the real services are drained.
func page[T any](ctx context.Context, p *Provider, resource, operation string, items []T) ([]T, error) {
	size := p.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	pager := pagination.Tokens(func(_ context.Context, token *string) ([]T, *string, error) {
		p.mu.Lock()
		err := p.call(operation)
		p.mu.Unlock()
		if err != nil {
			return nil, nil, err
		}

		start := 0
		if token != nil {
			if _, err := fmt.Sscanf(*token, "%d", &start); err != nil {
				return nil, nil, err
			}
		}
		end := min(start+size, len(items))
		var next *string
		if end < len(items) {
			n := fmt.Sprintf("%d", end)
			next = &n
		}
		return items[start:end], next, nil
	})
	return pagination.Drain(ctx, resource, pager)
}
