// Package metrics provides Prometheus metrics for observability of site
// deployments.
//
// This package exposes metrics about:
// - Deployment runs and the duration of each pipeline step
// - Resources reused or created per run
// - AWS API call performance and errors
// - Uploaded files and bytes
//
// The CLI is a short-lived process, so metrics live in their own registry
// and are pushed to a Pushgateway at the end of a run when one is configured.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds every metric of this package.
var Registry = prometheus.NewRegistry()

var (
	// ============================================
	// Deployment Metrics
	// ============================================

	// DeploymentsTotal tracks deployment runs.
	// Labels: command (deploy, plan, invalidate), result (success, error)
	DeploymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "site_deploy_runs_total",
			Help: "Total number of runs per command and result",
		},
		[]string{"command", "result"},
	)

	// StepsTotal tracks pipeline steps by result.
	// Labels: step (parse_fqdn, resolve_hosted_zone, ...), result (success, error)
	StepsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "site_deploy_steps_total",
			Help: "Total number of deployment steps per step and result",
		},
		[]string{"step", "result"},
	)

	// StepDuration tracks the duration of each pipeline step in seconds.
	// Certificate validation may take minutes, hence the long tail buckets.
	StepDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "site_deploy_step_duration_seconds",
			Help:    "Duration of deployment steps in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 300, 900},
		},
		[]string{"step"},
	)

	// ResourcesTotal tracks whether resources were reused or created.
	// Labels: resource_type (certificate, bucket, distribution, record), action (reused, created, upserted)
	ResourcesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "site_deploy_resources_total",
			Help: "Resources found and reused or created by deployments",
		},
		[]string{"resource_type", "action"},
	)

	// ============================================
	// Upload Metrics
	// ============================================

	UploadedFilesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "site_deploy_uploaded_files_total",
			Help: "Total number of files uploaded by result",
		},
		[]string{"result"},
	)

	UploadedBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "site_deploy_uploaded_bytes_total",
			Help: "Total number of bytes uploaded",
		},
	)

	// ============================================
	// AWS API Metrics
	// ============================================

	// AWSAPICallsTotal tracks the total number of AWS API calls.
	// Labels: service (ACM, S3, CloudFront, Route53), operation (ListCertificates, CreateBucket, etc.), result (success, error)
	AWSAPICallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "site_deploy_aws_api_calls_total",
			Help: "Total number of AWS API calls by service, operation, and result",
		},
		[]string{"service", "operation", "result"},
	)

	// AWSAPICallDuration tracks the duration of AWS API calls in seconds.
	AWSAPICallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "site_deploy_aws_api_call_duration_seconds",
			Help:    "Duration of AWS API calls in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"service", "operation"},
	)

	// AWSAPIErrors tracks the total number of AWS API errors.
	// Labels: service, operation, error_code (NoSuchBucket, InvalidChangeBatch, etc.)
	AWSAPIErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "site_deploy_aws_api_errors_total",
			Help: "Total number of AWS API errors by service, operation, and error code",
		},
		[]string{"service", "operation", "error_code"},
	)

	// AWSAPIThrottles tracks the number of AWS API throttling events.
	AWSAPIThrottles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "site_deploy_aws_api_throttles_total",
			Help: "Total number of AWS API throttling events (rate limit exceeded)",
		},
		[]string{"service", "operation"},
	)
)

func init() {
	Registry.MustRegister(
		DeploymentsTotal,
		StepsTotal,
		StepDuration,
		ResourcesTotal,
	)

	Registry.MustRegister(
		UploadedFilesTotal,
		UploadedBytesTotal,
	)

	Registry.MustRegister(
		AWSAPICallsTotal,
		AWSAPICallDuration,
		AWSAPIErrors,
		AWSAPIThrottles,
	)
}

// AWS service names for standardized service labels
const (
	ServiceS3         = "S3"
	ServiceCloudFront = "CloudFront"
	ServiceRoute53    = "Route53"
	ServiceACM        = "ACM"
)

// Resource types for ResourcesTotal
const (
	ResourceCertificate  = "certificate"
	ResourceBucket       = "bucket"
	ResourceDistribution = "distribution"
	ResourceRecord       = "record"
	ResourceInvalidation = "invalidation"
)

// Resource actions for ResourcesTotal
const (
	ActionReused   = "reused"
	ActionCreated  = "created"
	ActionUpserted = "upserted"
)

// Results
const (
	ResultSuccess = "success"
	ResultError   = "error"
)
