// Package site models one deployment of a static site: what is asked for,
// what a run did and what a run would do.
package site

import (
	"errors"
	"time"

	"github.com/a9b3/aws-site-deploy/internal/domain/fqdn"
	"github.com/a9b3/aws-site-deploy/internal/domain/s3"
)

// DefaultRegion is where buckets are created when no region is given.
const DefaultRegion = "us-east-1"

var (
	ErrFQDNRequired   = errors.New("fqdn is required")
	ErrSourceRequired = errors.New("source directory is required")
)

type Request struct {
	FQDN          string
	Source        string
	IndexDocument string
	Region        string

	// InvalidationPaths are invalidated when an existing distribution is
	// reused. Empty means everything.
	InvalidationPaths []string
	// WaitForCertificate, when positive, blocks until a pending certificate
	// is issued before the distribution is created.
	WaitForCertificate time.Duration
}

func (r *Request) SetDefaults() {
	if r.IndexDocument == "" {
		r.IndexDocument = s3.DefaultIndexDocument
	}
	if r.Region == "" {
		r.Region = DefaultRegion
	}
}

func (r *Request) Validate() error {
	if r.FQDN == "" {
		return ErrFQDNRequired
	}
	return nil
}

// Result reports what a deploy run did.
type Result struct {
	FQDN         fqdn.FQDN
	HostedZoneID string

	CertificateARN     string
	CertificateStatus  string
	CertificateCreated bool

	Bucket        string
	BucketCreated bool
	FilesUploaded int

	DistributionID      string
	DistributionDomain  string
	DistributionCreated bool

	InvalidationID string
}

type Action string

const (
	ActionReuse  Action = "reuse"
	ActionCreate Action = "create"
	ActionUpload Action = "upload"
	ActionUpsert Action = "upsert"
)

// PlannedChange is one resource a deploy would touch.
type PlannedChange struct {
	Resource string
	Name     string
	// ID is set when an existing resource would be reused.
	ID     string
	Action Action
}

type Plan struct {
	FQDN         fqdn.FQDN
	HostedZoneID string
	Changes      []PlannedChange
}

// Creates reports whether applying the plan would create any resource.
func (p *Plan) Creates() bool {
	for _, c := range p.Changes {
		if c.Action == ActionCreate {
			return true
		}
	}
	return false
}
