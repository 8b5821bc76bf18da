// Package backend is the registry of drawable backends.
//
// A backend turns Options into a Target: a blit.Drawable that owns some
// resource (a window, a server pixmap, a buffer) and must be closed.
// Backends register themselves from init functions, so importing a backend
// package for side effects makes it available:
//
//	import _ "github.com/gogpu/blit/backend/memory"
//	import _ "github.com/gogpu/blit/backend/x11"
//
// # Backend Selection
//
// Open picks a backend by name; OpenDefault tries every available backend in
// priority order and returns the first that succeeds:
//
//	t, err := backend.OpenDefault(backend.Options{Width: 640, Height: 480})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer t.Close()
//
//	err = blit.DrawPixbuf(t, pb, image.Point{}, image.Pt(10, 10),
//		image.Pt(blit.Unspecified, blit.Unspecified), blit.DitherNormal, image.Point{})
//
// # Built-in Backends
//
//   - "memory": pixels in a byte slice (always available)
//   - "x11": a window on the X server named by $DISPLAY
package backend
