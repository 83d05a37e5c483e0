package route53

import (
	"errors"
	"strings"
)

var (
	ErrInvalidDomainName  = errors.New("domain name cannot be empty")
	ErrHostedZoneNotFound = errors.New("no hosted zone found for root domain")
)

// HostedZone represents a Route53 hosted zone. Zones are owned outside this
// tool and are only ever looked up.
type HostedZone struct {
	HostedZoneID           string
	Name                   string
	Comment                string
	PrivateZone            bool
	ResourceRecordSetCount int64
}

// NormalizeZoneName lower-cases name and adds the trailing dot Route53 uses
// for zone names.
func NormalizeZoneName(name string) string {
	name = strings.ToLower(name)
	if name == "" || strings.HasSuffix(name, ".") {
		return name
	}
	return name + "."
}

// Matches reports whether the zone is the zone for rootDomain.
func (hz *HostedZone) Matches(rootDomain string) bool {
	if rootDomain == "" {
		return false
	}
	return NormalizeZoneName(hz.Name) == NormalizeZoneName(rootDomain)
}

// IsPublic returns true if this is a public hosted zone
func (hz *HostedZone) IsPublic() bool {
	return !hz.PrivateZone
}

// ZoneNotFoundError returns the precondition failure for rootDomain.
func ZoneNotFoundError(rootDomain string) error {
	return &PreconditionError{RootDomain: rootDomain}
}

// PreconditionError reports a missing hosted zone. The zone has to be
// created out of band before a deploy can succeed.
type PreconditionError struct {
	RootDomain string
}

func (e *PreconditionError) Error() string {
	return "no hosted zone found for root domain " + NormalizeZoneName(e.RootDomain) + ": create it before deploying"
}

func (e *PreconditionError) Unwrap() error {
	return ErrHostedZoneNotFound
}
