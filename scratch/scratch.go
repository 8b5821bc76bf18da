// Package scratch provides bounded, reusable pixel buffers used as local
// staging areas for one tile of a drawable transfer.
//
// A scratch image is acquired for a single read-composite-write step and
// released right after. The cache caps the size of every image it hands out,
// which in turn bounds the size of every request sent to a backend.
package scratch

import "sync"

// Default tile capacity.
const (
	// DefaultMaxWidth is the default maximum scratch image width in pixels.
	DefaultMaxWidth = 128

	// DefaultMaxHeight is the default maximum scratch image height in pixels.
	DefaultMaxHeight = 128

	// maxBytesPerPixel is the widest native pixel a scratch image can hold.
	maxBytesPerPixel = 4
)

// Image is a writable block of native pixels.
//
// Width and Height describe the extent requested by the last Acquire; the
// underlying allocation may be larger. Pixel (x, y) starts at
// Pix[y*BytesPerLine + x*BytesPerPixel].
type Image struct {
	// Width is the usable width in pixels.
	Width int

	// Height is the usable height in pixels.
	Height int

	// BytesPerPixel is the size of one native pixel (1 to 4).
	BytesPerPixel int

	// BytesPerLine is the distance in bytes between two rows.
	BytesPerLine int

	// Pix holds the pixel data.
	Pix []byte
}

// PixOffset returns the index of the first byte of pixel (x, y).
func (img *Image) PixOffset(x, y int) int {
	return y*img.BytesPerLine + x*img.BytesPerPixel
}

// Cache hands out scratch images no larger than its maximum tile size.
//
// Images are recycled through one sync.Pool per pixel size. Callers must not
// rely on getting the same image back from two Acquire calls.
//
// Thread safety: Cache is safe for concurrent use. An acquired Image belongs
// to the caller until it is released.
type Cache struct {
	maxWidth  int
	maxHeight int
	pools     [maxBytesPerPixel + 1]sync.Pool
}

// NewCache creates a cache whose images are at most maxWidth x maxHeight.
// Non-positive dimensions select DefaultMaxWidth and DefaultMaxHeight.
func NewCache(maxWidth, maxHeight int) *Cache {
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}
	if maxHeight <= 0 {
		maxHeight = DefaultMaxHeight
	}

	c := &Cache{maxWidth: maxWidth, maxHeight: maxHeight}
	for bpp := 1; bpp <= maxBytesPerPixel; bpp++ {
		c.pools[bpp].New = func() any {
			return &Image{
				BytesPerPixel: bpp,
				BytesPerLine:  maxWidth * bpp,
				Pix:           make([]byte, maxWidth*bpp*maxHeight),
			}
		}
	}
	return c
}

// MaxSize returns the largest tile the cache can serve.
func (c *Cache) MaxSize() (width, height int) {
	return c.maxWidth, c.maxHeight
}

// Acquire returns an image able to hold width x height pixels of
// bytesPerPixel bytes each, together with the origin of the usable area
// inside it. This implementation always returns origin (0, 0).
//
// Acquire returns nil if the request exceeds the cache's maximum tile size
// or bytesPerPixel is outside 1..4. The contents of the image are undefined.
func (c *Cache) Acquire(width, height, bytesPerPixel int) (img *Image, x0, y0 int) {
	if width <= 0 || height <= 0 || width > c.maxWidth || height > c.maxHeight {
		return nil, 0, 0
	}
	if bytesPerPixel < 1 || bytesPerPixel > maxBytesPerPixel {
		return nil, 0, 0
	}

	img = c.pools[bytesPerPixel].Get().(*Image)
	img.Width = width
	img.Height = height
	return img, 0, 0
}

// Release returns an image to the cache. The caller must not use img
// afterwards. Releasing nil is a no-op.
func (c *Cache) Release(img *Image) {
	if img == nil || img.BytesPerPixel < 1 || img.BytesPerPixel > maxBytesPerPixel {
		return
	}
	if img.BytesPerLine != c.maxWidth*img.BytesPerPixel || len(img.Pix) < img.BytesPerLine*c.maxHeight {
		// Not one of ours; let the GC have it.
		return
	}
	c.pools[img.BytesPerPixel].Put(img)
}

var defaultCache = NewCache(DefaultMaxWidth, DefaultMaxHeight)

// Default returns the shared 128x128 cache.
func Default() *Cache {
	return defaultCache
}
