package cloudfront

import (
	"fmt"
	"time"
)

// InvalidateAll matches every object served by the distribution.
const InvalidateAll = "/*"

type Invalidation struct {
	DistributionID  string
	CallerReference string
	Paths           []string

	// Output fields from AWS
	InvalidationID string
	Status         string
}

// NewInvalidation returns an invalidation of paths, or of everything when
// paths is empty. The caller reference is unique per call.
func NewInvalidation(distributionID, fqdn string, paths []string, now time.Time) *Invalidation {
	if len(paths) == 0 {
		paths = []string{InvalidateAll}
	}
	return &Invalidation{
		DistributionID:  distributionID,
		CallerReference: fmt.Sprintf("%s-%d", fqdn, now.UnixNano()),
		Paths:           paths,
	}
}
