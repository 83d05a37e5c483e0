package memory

import (
	"context"
	"fmt"

	"github.com/a9b3/aws-site-deploy/internal/domain/route53"
	"github.com/a9b3/aws-site-deploy/internal/ports"
)

// Route53 implements ports.Route53Repository on top of a Provider.
type Route53 struct {
	p *Provider
}

var _ ports.Route53Repository = (*Route53)(nil)

// AddHostedZone registers a hosted zone for name and returns its ID.
func (p *Provider) AddHostedZone(name string) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := fmt.Sprintf("Z%06d", p.nextID())
	p.zones = append(p.zones, &route53.HostedZone{HostedZoneID: id, Name: route53.NormalizeZoneName(name)})
	return id
}

// Record returns the record with name and type in the zone.
func (p *Provider) Record(zoneID, name, recordType string) (route53.RecordSet, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := (&route53.RecordSet{Name: name, Type: recordType}).Key()
	rs, ok := p.records[zoneID][key]
	return rs, ok
}

// RecordCount returns the number of records in the zone.
func (p *Provider) RecordCount(zoneID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.records[zoneID])
}

// hasRecord reports whether any zone holds the record. Callers hold p.mu.
func (p *Provider) hasRecord(name, recordType string) bool {
	key := (&route53.RecordSet{Name: name, Type: recordType}).Key()
	for _, zone := range p.records {
		if _, ok := zone[key]; ok {
			return true
		}
	}
	return false
}

func (r *Route53) ListHostedZones(ctx context.Context) ([]*route53.HostedZone, error) {
	r.p.mu.Lock()
	zones := make([]*route53.HostedZone, 0, len(r.p.zones))
	for _, z := range r.p.zones {
		zone := *z
		zones = append(zones, &zone)
	}
	r.p.mu.Unlock()

	return page(ctx, r.p, "hosted zones", "ListHostedZones", zones)
}

// UpsertRecordSets applies the batch atomically: an invalid record rejects
// the whole batch, as Route53 does.
func (r *Route53) UpsertRecordSets(_ context.Context, hostedZoneID string, records []route53.RecordSet) (string, error) {
	r.p.mu.Lock()
	defer r.p.mu.Unlock()

	if err := r.p.call("ChangeResourceRecordSets"); err != nil {
		return "", err
	}

	found := false
	for _, z := range r.p.zones {
		if z.HostedZoneID == hostedZoneID {
			found = true
			break
		}
	}
	if !found {
		return "", fmt.Errorf("hosted zone %s: %w", hostedZoneID, route53.ErrHostedZoneNotFound)
	}

	seen := map[string]bool{}
	for i := range records {
		if err := records[i].Validate(); err != nil {
			return "", err
		}
		key := records[i].Key()
		if seen[key] {
			return "", fmt.Errorf("InvalidChangeBatch: duplicate record %s", key)
		}
		seen[key] = true
	}

	if r.p.records[hostedZoneID] == nil {
		r.p.records[hostedZoneID] = map[string]route53.RecordSet{}
	}
	for _, rs := range records {
		r.p.records[hostedZoneID][rs.Key()] = rs
	}
	return fmt.Sprintf("C%06d", r.p.nextID()), nil
}
