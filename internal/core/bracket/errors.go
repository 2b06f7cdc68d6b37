package bracket

import "errors"

var (
	// ErrTransport marks a remote call that failed or timed out. Never
	// fatal: the poll loop retries on its next tick.
	ErrTransport = errors.New("bracket service unreachable")

	// ErrConflict marks a report the bracket service refused because the
	// set is no longer open, usually a staff finalize racing the submit.
	ErrConflict = errors.New("set already processed")
)
