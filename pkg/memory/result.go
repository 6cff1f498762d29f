package memory

import "errors"

// Status tags the outcome of a memory operation.
type Status string

const (
	// StatusOK means the operation completed and Value is authoritative.
	StatusOK Status = "success"

	// StatusDegraded means the store was unreachable or returned records
	// that could not be decoded. Value holds whatever could be read, often
	// nothing, and callers continue without memory.
	StatusDegraded Status = "degraded"

	// StatusRejected means the input was invalid and the store was never
	// contacted.
	StatusRejected Status = "rejected"
)

// Result is the outcome of a memory operation. Degraded is a normal branch
// for callers, not a failure of the enclosing request.
type Result[T any] struct {
	Status Status
	Value  T
	Err    error
}

// OK reports whether the operation fully succeeded.
func (r Result[T]) OK() bool { return r.Status == StatusOK }

// Degraded reports whether memory was unavailable or partially unreadable.
func (r Result[T]) Degraded() bool { return r.Status == StatusDegraded }

// Rejected reports whether the input was invalid.
func (r Result[T]) Rejected() bool { return r.Status == StatusRejected }

func classify(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrInvalidUserID), errors.Is(err, ErrInvalidSessionID):
		return StatusRejected
	default:
		return StatusDegraded
	}
}
