// Package errs defines the error categories every command recovers at its
// boundary. Callers wrap these sentinels with context via fmt.Errorf and %w;
// the cmd layer matches with errors.Is to pick exit messages.
package errs

import "errors"

var (
	// ErrNotFound means an artifact, bundle, or source does not exist
	// at the origin being consulted.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists means the destination is occupied and the caller
	// declined (or was never asked) to overwrite it.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidReference means a malformed URL, an unknown resource kind,
	// or a manifest missing a required field.
	ErrInvalidReference = errors.New("invalid reference")

	// ErrSourceUnavailable means a clone, pull, or download failed:
	// network, auth, timeout.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrSizeLimitExceeded means a downloaded file crossed the hard size cap.
	ErrSizeLimitExceeded = errors.New("size limit exceeded")

	// ErrConflict means a tracked artifact has local modifications and no
	// overwrite decision was made.
	ErrConflict = errors.New("local modifications present")
)
