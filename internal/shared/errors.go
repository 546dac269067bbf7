package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Remote task errors
	ErrSubmission        = fmt.Errorf("task submission failed")
	ErrRemoteTask        = fmt.Errorf("remote task failed")
	ErrRemoteTaskTimeout = fmt.Errorf("remote task timed out")
	ErrSchema            = fmt.Errorf("unexpected payload shape")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrInvalidChart       = fmt.Errorf("invalid chart")

	// Snapshot errors
	ErrSnapshotNotFound = fmt.Errorf("snapshot not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
