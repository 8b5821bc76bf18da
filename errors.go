package blit

import (
	"errors"
	"fmt"
	"image"
)

// Errors returned by Draw and DrawPixbuf.
var (
	// ErrPrecondition reports a malformed request: a bad pixbuf shape or a
	// source rectangle outside the pixbuf. It is a caller bug; the
	// destination has not been touched when it is returned.
	ErrPrecondition = errors.New("blit: precondition violated")

	// ErrNoDrawable is returned when the destination is nil.
	ErrNoDrawable = errors.New("blit: no destination drawable")
)

// BackendError reports a failed read back or transfer on the destination.
//
// In the tiled fast path, tiles before the failing one may already have been
// written.
type BackendError struct {
	// Op is the failing operation: "copy-to-image", "draw-image",
	// "read-rgb" or "draw-rgb".
	Op string

	// Rect is the destination rectangle of the failing operation.
	Rect image.Rectangle

	// Err is the error returned by the drawable.
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("blit: %s %v: %v", e.Op, e.Rect, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

func preconditionf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrPrecondition}, args...)...)
}
