package backend

import (
	"errors"

	"github.com/gogpu/blit"
)

// Standard backend priorities.
const (
	// PriorityDisplay is used by backends that show pixels on screen.
	PriorityDisplay = 100

	// PrioritySoftware is used by pure memory backends.
	PrioritySoftware = 10
)

// Common backend errors.
var (
	// ErrNoBackendAvailable is returned when no backend is registered or
	// available on the current system.
	ErrNoBackendAvailable = errors.New("backend: no backend available")
)

// Options configures a new Target.
type Options struct {
	// Width and Height of the drawable.
	Width  int
	Height int

	// Visual requests a pixel layout. Backends that cannot choose their
	// layout ignore it. The zero value selects the backend default.
	Visual blit.Visual

	// Display names the display connection, for backends that have one.
	// Empty means the environment default.
	Display string

	// Title is the window title, for backends that open windows.
	Title string
}

// Target is a drawable owned by a backend.
type Target interface {
	blit.Drawable

	// Close releases the backend resources. The target must not be used
	// afterwards.
	Close() error
}

// Factory creates a Target.
type Factory func(opts Options) (Target, error)

// NotFoundError indicates a named backend is not registered.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return "backend: not found: " + e.Name
}

// UnavailableError indicates a backend is registered but cannot run on this
// system.
type UnavailableError struct {
	Name string
}

func (e *UnavailableError) Error() string {
	return "backend: unavailable: " + e.Name
}
