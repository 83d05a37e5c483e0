// Package pagination drains paged provider listings into a single slice.
//
// Providers page in different ways: an opaque continuation token (ACM, S3),
// a truncation flag plus a marker (CloudFront, Route53), or an SDK paginator
// handle. Each style is adapted to Pager so listing code is written once.
package pagination

import (
	"context"
	"fmt"
)

// Pager yields one page of items per call until the provider reports no
// further pages.
type Pager[T any] interface {
	HasMorePages() bool
	NextPage(ctx context.Context) ([]T, error)
}

// ListingError reports a failed page fetch.
type ListingError struct {
	Resource string
	Page     int
	Err      error
}

func (e *ListingError) Error() string {
	return fmt.Sprintf("failed to list %s (page %d): %v", e.Resource, e.Page, e.Err)
}

func (e *ListingError) Unwrap() error {
	return e.Err
}

// Drain fetches every page from p and returns the concatenation in page order.
func Drain[T any](ctx context.Context, resource string, p Pager[T]) ([]T, error) {
	var all []T
	for page := 1; p.HasMorePages(); page++ {
		items, err := p.NextPage(ctx)
		if err != nil {
			return nil, &ListingError{Resource: resource, Page: page, Err: err}
		}
		all = append(all, items...)
	}
	return all, nil
}

// TokenFetcher fetches the page starting at token (nil for the first page)
// and returns the token of the following page, nil when done.
type TokenFetcher[T any] func(ctx context.Context, token *string) ([]T, *string, error)

// Tokens adapts a continuation-token API.
func Tokens[T any](fetch func(ctx context.Context, token *string) ([]T, *string, error)) Pager[T] {
	return &tokenPager[T]{fetch: fetch}
}

type tokenPager[T any] struct {
	fetch TokenFetcher[T]
	token *string
	done  bool
}

func (p *tokenPager[T]) HasMorePages() bool {
	return !p.done
}

func (p *tokenPager[T]) NextPage(ctx context.Context) ([]T, error) {
	if p.done {
		return nil, nil
	}
	prev := p.token
	items, next, err := p.fetch(ctx, p.token)
	if err != nil {
		return nil, err
	}
	p.token = next
	// A provider echoing the same token would otherwise loop forever.
	if next == nil || *next == "" || (prev != nil && *prev == *next) {
		p.done = true
	}
	return items, nil
}

// MarkerFetcher fetches the page starting at marker and reports whether the
// listing was truncated along with the marker of the following page.
type MarkerFetcher[T any] func(ctx context.Context, marker *string) (items []T, next *string, truncated bool, err error)

// Truncated adapts a truncation-flag API.
func Truncated[T any](fetch func(ctx context.Context, marker *string) ([]T, *string, bool, error)) Pager[T] {
	return &markerPager[T]{fetch: fetch}
}

type markerPager[T any] struct {
	fetch  MarkerFetcher[T]
	marker *string
	done   bool
}

func (p *markerPager[T]) HasMorePages() bool {
	return !p.done
}

func (p *markerPager[T]) NextPage(ctx context.Context) ([]T, error) {
	if p.done {
		return nil, nil
	}
	prev := p.marker
	items, next, truncated, err := p.fetch(ctx, p.marker)
	if err != nil {
		return nil, err
	}
	p.marker = next
	if !truncated || next == nil || *next == "" || (prev != nil && *prev == *next) {
		p.done = true
	}
	return items, nil
}

// Cursor adapts a paginator handle such as the ones generated by the AWS SDK.
func Cursor[T any](hasMore func() bool, next func(ctx context.Context) ([]T, error)) Pager[T] {
	return cursorPager[T]{hasMore: hasMore, next: next}
}

type cursorPager[T any] struct {
	hasMore func() bool
	next    func(ctx context.Context) ([]T, error)
}

func (p cursorPager[T]) HasMorePages() bool {
	return p.hasMore()
}

func (p cursorPager[T]) NextPage(ctx context.Context) ([]T, error) {
	return p.next(ctx)
}
