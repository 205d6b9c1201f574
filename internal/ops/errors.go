package ops

import "errors"

// Error kinds reported by kernels and the runtime. Callers branch on them
// with errors.Is; messages carry the details.
var (
	// ErrInvalidArgument is returned by a call whose inputs violate the
	// operator's contract. The kernel stays usable for other inputs.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidConfiguration is returned when a kernel cannot be constructed
	// from the node's attributes.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrNotFound is returned for unknown operators or missing kernels.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when registering a duplicate op or kernel.
	ErrAlreadyExists = errors.New("already exists")
)
