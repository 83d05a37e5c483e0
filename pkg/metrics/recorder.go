package metrics

import (
	"errors"
	"slices"
	"time"

	"github.com/aws/smithy-go"
)

// ============================================
// Step Metrics Recorder
// ============================================

// StepRecorder times one pipeline step.
// Usage:
//
//	step := metrics.NewStepRecorder("ensure_bucket")
//	created, err := uc.EnsureStaticBucket(ctx, bucket)
//	step.Done(err)
type StepRecorder struct {
	step      string
	startTime time.Time
}

// NewStepRecorder creates a new step recorder and starts timing.
func NewStepRecorder(step string) *StepRecorder {
	return &StepRecorder{
		step:      step,
		startTime: time.Now(),
	}
}

// Done records the outcome of the step and returns its duration.
func (s *StepRecorder) Done(err error) time.Duration {
	elapsed := time.Since(s.startTime)

	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	StepsTotal.WithLabelValues(s.step, result).Inc()
	StepDuration.WithLabelValues(s.step).Observe(elapsed.Seconds())
	return elapsed
}

// RecordRun records the outcome of a whole command.
func RecordRun(command string, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	DeploymentsTotal.WithLabelValues(command, result).Inc()
}

// RecordResource records whether a resource was reused or created.
func RecordResource(resourceType string, created bool) {
	action := ActionReused
	if created {
		action = ActionCreated
	}
	ResourcesTotal.WithLabelValues(resourceType, action).Inc()
}

// RecordUpsert records DNS records written in one change batch.
func RecordUpsert(count int) {
	ResourcesTotal.WithLabelValues(ResourceRecord, ActionUpserted).Add(float64(count))
}

// RecordUpload records one uploaded object.
func RecordUpload(size int64, err error) {
	if err != nil {
		UploadedFilesTotal.WithLabelValues(ResultError).Inc()
		return
	}
	UploadedFilesTotal.WithLabelValues(ResultSuccess).Inc()
	UploadedBytesTotal.Add(float64(size))
}

// ============================================
// AWS API Metrics Recorder
// ============================================

// AWSAPIMetricsRecorder helps record AWS API call metrics consistently.
// Usage:
//
//	recorder := metrics.NewAWSAPIMetricsRecorder(metrics.ServiceS3, "CreateBucket")
//	output, err := r.client.CreateBucket(ctx, input)
//	if err != nil {
//	  recorder.RecordError(err)
//	  return err
//	}
//	recorder.RecordSuccess()
type AWSAPIMetricsRecorder struct {
	service   string
	operation string
	startTime time.Time
}

// NewAWSAPIMetricsRecorder creates a new AWS API metrics recorder.
// It automatically starts timing the API call.
func NewAWSAPIMetricsRecorder(service, operation string) *AWSAPIMetricsRecorder {
	return &AWSAPIMetricsRecorder{
		service:   service,
		operation: operation,
		startTime: time.Now(),
	}
}

// RecordSuccess records a successful AWS API call.
func (a *AWSAPIMetricsRecorder) RecordSuccess() {
	duration := time.Since(a.startTime).Seconds()

	AWSAPICallsTotal.WithLabelValues(a.service, a.operation, ResultSuccess).Inc()
	AWSAPICallDuration.WithLabelValues(a.service, a.operation).Observe(duration)
}

// RecordError records a failed AWS API call.
// It extracts the AWS error code from the error and records it.
func (a *AWSAPIMetricsRecorder) RecordError(err error) {
	duration := time.Since(a.startTime).Seconds()

	errorCode := ErrorCode(err)

	AWSAPICallsTotal.WithLabelValues(a.service, a.operation, ResultError).Inc()
	AWSAPICallDuration.WithLabelValues(a.service, a.operation).Observe(duration)
	AWSAPIErrors.WithLabelValues(a.service, a.operation, errorCode).Inc()

	if IsThrottlingError(errorCode) {
		AWSAPIThrottles.WithLabelValues(a.service, a.operation).Inc()
	}
}

// Observe records err, or a success when err is nil, and returns err.
func (a *AWSAPIMetricsRecorder) Observe(err error) error {
	if err != nil {
		a.RecordError(err)
		return err
	}
	a.RecordSuccess()
	return nil
}

// ErrorCode extracts the AWS error code from an error.
// Returns "Unknown" if the error is not an AWS error.
func ErrorCode(err error) string {
	if err == nil {
		return "Unknown"
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}

	return "Unknown"
}

var throttlingCodes = []string{
	"Throttling",
	"ThrottlingException",
	"RequestLimitExceeded",
	"TooManyRequestsException",
	"PriorRequestNotComplete",
	"RequestThrottled",
	"SlowDown",
}

// IsThrottlingError checks if an error code represents throttling.
func IsThrottlingError(errorCode string) bool {
	return slices.Contains(throttlingCodes, errorCode)
}
