package delivery

import "errors"

// Error kinds for the individual pipeline steps. They never cross the worker
// boundary: the run loop converts every kind into a local diagnostic and
// either a retry, a buffer write, or a drop. Nothing propagates to the
// application that emitted the record.
var (
	// ErrTransient wraps a failed delivery attempt: non-2xx status,
	// timeout, or connection failure.
	ErrTransient = errors.New("transient delivery failure")

	// ErrSigning wraps a bearer-token signing failure. Treated like a
	// transient attempt failure.
	ErrSigning = errors.New("token signing failure")

	// ErrBufferIO wraps a disk buffer failure. Best-effort boundary: the
	// record may be lost, a diagnostic is emitted.
	ErrBufferIO = errors.New("buffer i/o failure")
)
