package blit

import (
	"image"

	"github.com/gogpu/blit/scratch"
)

// Drawable is a destination surface for pixbuf blits: a window or an
// off-screen pixmap living in a display server, GPU, or plain memory.
//
// Rectangles passed to a Drawable are always inside its current bounds and
// never empty. All methods may block on a round trip to the backend.
//
// Drawables used with WithWorkers must accept concurrent calls that address
// disjoint rectangles.
type Drawable interface {
	// Size returns the current drawable dimensions.
	Size() (width, height int)

	// Depth returns the number of significant bits per pixel.
	Depth() int

	// Visual describes the native pixel layout. It may return nil when the
	// layout is unknown, which rules out direct compositing.
	Visual() *Visual

	// ClipRegion returns the area that drawing may affect. A nil region means
	// the whole drawable.
	ClipRegion() *Region

	// CopyToImage reads the native pixels of src into img with src.Min
	// landing at pixel at of img.
	CopyToImage(img *scratch.Image, src image.Rectangle, at image.Point) error

	// DrawImage writes the native pixels of img, starting at pixel from, into
	// dst.
	DrawImage(img *scratch.Image, from image.Point, dst image.Rectangle) error

	// ReadRGB reads r back as a new 3-channel pixbuf.
	ReadRGB(r image.Rectangle) (*Pixbuf, error)

	// DrawRGB converts the pixels of pb starting at src to the native format
	// and writes them into dst. A fourth channel, if any, is ignored. The
	// dither pattern cell of the destination pixel (x, y) is
	// ((x + phase.X) & 7, (y + phase.Y) & 7), independent of dst.Min, so
	// that a blit split across clip boxes or calls keeps one pattern.
	DrawRGB(dst image.Rectangle, pb *Pixbuf, src image.Point, dither Dither, phase image.Point) error
}
