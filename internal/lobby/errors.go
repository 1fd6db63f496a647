// internal/lobby/errors.go
package lobby

import "errors"

// Error taxonomy shared by the lobby core and its transports. Callers wrap these
// with context and inspect them with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrUpstreamFailure    = errors.New("upstream failure")
)
