package resolver

import (
	"context"
	"errors"

	apperrors "github.com/jrsteele09/lead-dashboard/internal/errors"
)

// Kind tags the three shapes a lookup can take.
type Kind int

const (
	KindFound Kind = iota + 1
	KindNotFound
	KindFailed
)

func (k Kind) String() string {
	switch k {
	case KindFound:
		return "found"
	case KindNotFound:
		return "not_found"
	case KindFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the outcome of a resolver or fetch operation. Not-found is its
// own kind and never carries an error; only failed results do.
type Result[T any] struct {
	kind  Kind
	value T
	err   error
}

func Found[T any](value T) Result[T] {
	return Result[T]{kind: KindFound, value: value}
}

func NotFound[T any]() Result[T] {
	return Result[T]{kind: KindNotFound}
}

func Failed[T any](err error) Result[T] {
	if err == nil {
		err = apperrors.ErrInternal
	}
	return Result[T]{kind: KindFailed, err: err}
}

func (r Result[T]) Kind() Kind {
	return r.kind
}

// Value returns the resolved value and whether the result is Found.
func (r Result[T]) Value() (T, bool) {
	return r.value, r.kind == KindFound
}

// Err is non-nil only for failed results.
func (r Result[T]) Err() error {
	return r.err
}

// Canceled reports a lookup abandoned by its caller.
func (r Result[T]) Canceled() bool {
	return r.kind == KindFailed && errors.Is(r.err, context.Canceled)
}

// Unauthorized reports a failure that must send the agent back to login.
func (r Result[T]) Unauthorized() bool {
	return r.kind == KindFailed &&
		(errors.Is(r.err, apperrors.ErrUnauthorized) || errors.Is(r.err, apperrors.ErrInvalidCredentials))
}

// Unavailable reports a timeout or an unreachable backend.
func (r Result[T]) Unavailable() bool {
	return r.kind == KindFailed && errors.Is(r.err, apperrors.ErrServiceUnavailable)
}

// Retryable reports whether the view should offer a retry.
func (r Result[T]) Retryable() bool {
	return r.kind == KindFailed && !r.Unauthorized() && !r.Canceled() &&
		!errors.Is(r.err, apperrors.ErrInvalidRequest)
}

// FromError classifies a backend error: 404s become NotFound, everything
// else is a failure.
func FromError[T any](err error) Result[T] {
	if errors.Is(err, apperrors.ErrNotFound) {
		return NotFound[T]()
	}
	return Failed[T](err)
}
