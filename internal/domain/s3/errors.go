package s3

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrBucketNameRequired      = errors.New("bucket name is required")
	ErrInvalidBucketNameLength = errors.New("bucket name must be between 3 and 63 characters")
	ErrRegionRequired          = errors.New("region is required")
	ErrIndexDocumentRequired   = errors.New("index document is required")
	ErrBucketNotFound          = errors.New("bucket not found")
	ErrBucketAlreadyExists     = errors.New("bucket already exists")
	ErrUploadFailed            = errors.New("upload failed")
)

// UploadError reports the first object that failed to upload. The whole
// batch is considered failed.
type UploadError struct {
	Bucket string
	Key    string
	Err    error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("failed to upload %s to bucket %s: %v", e.Key, e.Bucket, e.Err)
}

func (e *UploadError) Unwrap() []error {
	return []error{ErrUploadFailed, e.Err}
}
