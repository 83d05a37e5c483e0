package route53

import (
	"errors"
	"strings"
)

var (
	ErrInvalidRecordName       = errors.New("record name cannot be empty")
	ErrInvalidRecordType       = errors.New("record type cannot be empty")
	ErrInvalidHostedZoneID     = errors.New("hosted zone ID cannot be empty")
	ErrMissingTTL              = errors.New("TTL is required for non-alias records")
	ErrMissingResourceRecords  = errors.New("resource records are required for non-alias records")
	ErrConflictingRecordConfig = errors.New("cannot specify both alias target and resource records")
	ErrInvalidAliasTarget      = errors.New("alias target must have hosted zone ID and DNS name")
)

const (
	// CloudFrontHostedZoneID is the fixed zone every CloudFront alias targets.
	CloudFrontHostedZoneID = "Z2FDTNDATAQYW2"

	ValidationRecordTTL int64 = 60

	RecordTypeA     = "A"
	RecordTypeCNAME = "CNAME"
)

// AliasTarget represents an alias target for Route53
type AliasTarget struct {
	HostedZoneID         string
	DNSName              string
	EvaluateTargetHealth bool
}

// RecordSet represents a Route53 resource record set
type RecordSet struct {
	HostedZoneID    string
	Name            string
	Type            string
	TTL             *int64
	ResourceRecords []string
	AliasTarget     *AliasTarget
}

// NewCloudFrontAliasRecord points name at a distribution domain.
func NewCloudFrontAliasRecord(zoneID, name, distributionDomain string) RecordSet {
	return RecordSet{
		HostedZoneID: zoneID,
		Name:         name,
		Type:         RecordTypeA,
		AliasTarget: &AliasTarget{
			HostedZoneID:         CloudFrontHostedZoneID,
			DNSName:              distributionDomain,
			EvaluateTargetHealth: false,
		},
	}
}

// NewValidationRecord builds the record ACM looks up for DNS validation.
func NewValidationRecord(zoneID, name, recordType, value string) RecordSet {
	ttl := ValidationRecordTTL
	return RecordSet{
		HostedZoneID:    zoneID,
		Name:            name,
		Type:            recordType,
		TTL:             &ttl,
		ResourceRecords: []string{value},
	}
}

// Key identifies the record within its zone.
func (rs *RecordSet) Key() string {
	return NormalizeZoneName(rs.Name) + " " + strings.ToUpper(rs.Type)
}

// Validate validates the record set configuration
func (rs *RecordSet) Validate() error {
	if rs.HostedZoneID == "" {
		return ErrInvalidHostedZoneID
	}

	if rs.Name == "" {
		return ErrInvalidRecordName
	}

	if rs.Type == "" {
		return ErrInvalidRecordType
	}

	if rs.AliasTarget != nil {
		if len(rs.ResourceRecords) > 0 || rs.TTL != nil {
			return ErrConflictingRecordConfig
		}
		if rs.AliasTarget.HostedZoneID == "" || rs.AliasTarget.DNSName == "" {
			return ErrInvalidAliasTarget
		}
	} else {
		if rs.TTL == nil {
			return ErrMissingTTL
		}
		if len(rs.ResourceRecords) == 0 {
			return ErrMissingResourceRecords
		}
	}

	return nil
}

// IsAlias returns true if this is an alias record
func (rs *RecordSet) IsAlias() bool {
	return rs.AliasTarget != nil
}

// DedupeRecordSets drops records repeating the name and type of an earlier
// one. ACM hands out the same CNAME for *.example.com and example.com, and a
// change batch naming a record twice is rejected.
func DedupeRecordSets(records []RecordSet) []RecordSet {
	seen := make(map[string]struct{}, len(records))
	out := make([]RecordSet, 0, len(records))
	for _, r := range records {
		k := r.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}
