package runner

import "errors"

var (
	// ErrDestroyed is returned by every operation invoked after Destroy.
	ErrDestroyed = errors.New("module runner has been destroyed")

	// ErrProtocolViolation marks transport answers that contradict the
	// runner's cache state, e.g. a cache hit reported for a URL with no
	// resolvable prior record.
	ErrProtocolViolation = errors.New("transport protocol violation")

	// ErrLoadFailure marks modules the transport resolved without a code
	// payload.
	ErrLoadFailure = errors.New("failed to load module")
)
