package services

import (
	"fmt"
	"strings"
)

// ConfigError means required media host configuration is absent. It is
// raised before any network call and fails the whole batch.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return "missing media host configuration: " + strings.Join(e.Missing, ", ")
}

// TransformError means a file could not be re-encoded for upload. The
// batch aborts rather than silently skipping the file.
type TransformError struct {
	Filename string
	Err      error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("failed to process %s: %v", e.Filename, e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }

// UploadError means the media host rejected or never received one file.
// The rest of the batch aborts and no post is committed.
type UploadError struct {
	Filename string
	Status   int
	Message  string
}

func (e *UploadError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("upload failed for %s (%d): %s", e.Filename, e.Status, e.Message)
	}
	return fmt.Sprintf("upload failed for %s: %s", e.Filename, e.Message)
}

// CommitError means the store write failed after every upload succeeded.
// The already-uploaded remote media stays orphaned: deleting it would need
// privileged host credentials this pipeline does not hold.
type CommitError struct {
	Err error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("failed to save post (uploaded media is left on the host): %v", e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }

// CanceledError means the composer session was torn down between files of
// an in-flight batch.
type CanceledError struct {
	Session string
}

func (e *CanceledError) Error() string {
	return fmt.Sprintf("upload batch canceled for session %s", e.Session)
}
