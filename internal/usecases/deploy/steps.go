package deploy

import (
	"context"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/a9b3/aws-site-deploy/pkg/metrics"
)

// Pipeline steps, in the order Deploy runs them.
const (
	StepParseFQDN          = "parse_fqdn"
	StepResolveHostedZone  = "resolve_hosted_zone"
	StepEnsureCertificate  = "ensure_certificate"
	StepValidateCert       = "validate_certificate"
	StepWaitCertificate    = "wait_certificate"
	StepEnsureBucket       = "ensure_bucket"
	StepUploadFiles        = "upload_files"
	StepEnsureDistribution = "ensure_distribution"
	StepUpsertDNS          = "upsert_dns"
	StepInvalidateCache    = "invalidate_cache"
)

// runStep times fn and logs its outcome. The logger handed to fn carries the
// step name.
func runStep(ctx context.Context, step string, fn func(ctx context.Context) error) error {
	logger := log.FromContext(ctx).WithValues("step", step)
	ctx = log.IntoContext(ctx, logger)

	logger.V(1).Info("starting step")
	recorder := metrics.NewStepRecorder(step)
	err := fn(ctx)
	elapsed := recorder.Done(err)
	if err != nil {
		logger.Error(err, "step failed", "duration", elapsed.String())
		return err
	}
	logger.Info("step done", "duration", elapsed.String())
	return nil
}
