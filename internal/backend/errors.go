package backend

import "errors"

var (
	// ErrBackendUnreachable marks embedding or generation calls that
	// failed at the transport level (timeout, connection refused,
	// non-2xx status). Fatal to the current request only.
	ErrBackendUnreachable = errors.New("model backend unreachable")

	// ErrEmptyGeneration marks a completion that came back blank. The
	// chain substitutes the fixed apology instead of surfacing this to
	// the caller.
	ErrEmptyGeneration = errors.New("model returned empty text")
)
