// Package blit draws client-side RGB and RGBA images (pixbufs) onto
// drawables: windows, pixmaps or memory surfaces whose pixels are stored in
// the drawable's own native format.
//
// # Overview
//
// A blit clips the requested area against the drawable bounds and its clip
// region, then picks one of three paths:
//
//   - Direct: an opaque pixbuf is converted and written in one transfer.
//   - Fast: a pixbuf with alpha is composited in the native format, one
//     scratch tile at a time. Available for 32-bit x8r8g8b8 and 16-bit
//     r5g6b5 visuals in either byte order.
//   - Slow: the target area is read back as 24-bit RGB, composited, and
//     written back with the requested dither.
//
// Compositing is straight-alpha "over": each channel becomes
// (a*s + (255-a)*d) / 255, rounded, where a is the source alpha. Alpha 0
// leaves the destination unchanged and alpha 255 copies the source.
//
// # Quick Start
//
//	import (
//		"github.com/gogpu/blit"
//		"github.com/gogpu/blit/backend/memory"
//	)
//
//	d, _ := memory.New(640, 480, blit.VisualRGB565(blit.LSBFirst))
//	pb := blit.PixbufFromImage(img)
//
//	err := blit.DrawPixbuf(d, pb, image.Point{}, image.Pt(10, 10),
//		image.Pt(blit.Unspecified, blit.Unspecified), blit.DitherMax, image.Point{})
//
// # Blitters
//
// DrawPixbuf uses a shared Blitter with 128x128 tiles on the calling
// goroutine. New creates a Blitter with its own tile size, tile workers, or
// with the fast path disabled:
//
//	b := blit.New(blit.WithWorkers(4))
//	defer b.Close()
//	err := b.Draw(d, pb, blit.Request{Dst: image.Pt(10, 10), Width: blit.Unspecified, Height: blit.Unspecified})
//
// Plan returns the clipped target and chosen path without drawing.
//
// # Errors
//
// Malformed requests wrap ErrPrecondition and leave the drawable untouched.
// Failures reported by the drawable are returned as *BackendError and are
// never retried on another path.
//
// # Backends
//
// The Drawable interface is implemented by backend/memory, backend/x11 and
// backend/ebitenview. See package backend for opening drawables by name.
package blit
