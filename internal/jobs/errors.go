package jobs

import "errors"

var (
	// ErrInvalidInput rejects malformed StartJob parameters before any
	// job record exists.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound means the job_id is unknown to this process.
	ErrNotFound = errors.New("job not found")
)
