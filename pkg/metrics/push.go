package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus/push"
)

// JobName is the Pushgateway job label of every pushed run.
const JobName = "site_deploy"

// Push sends the registry to the Pushgateway at url, grouped by fqdn.
func Push(ctx context.Context, url, fqdn string) error {
	pusher := push.New(url, JobName).Gatherer(Registry)
	if fqdn != "" {
		pusher = pusher.Grouping("fqdn", fqdn)
	}
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", url, err)
	}
	return nil
}
