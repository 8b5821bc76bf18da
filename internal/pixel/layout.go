// Package pixel converts between 8-bit RGB samples and the native pixels of
// a TrueColor visual.
//
// Any visual whose channel masks are contiguous runs of bits and whose
// pixels are 8, 16, 24 or 32 bits wide is supported, in either byte order.
// Narrow channels are widened by bit replication and narrowed by truncation,
// optionally after adding an ordered dither threshold.
package pixel

import (
	"errors"
	"fmt"
	"image"
	"math/bits"

	"github.com/gogpu/blit"
)

// ErrUnsupportedVisual is returned for visuals the codec cannot describe.
var ErrUnsupportedVisual = errors.New("pixel: unsupported visual")

// channel describes where one color channel lives inside a native pixel.
type channel struct {
	shift uint
	width uint
}

// Layout is a codec for one visual.
type Layout struct {
	bytesPerPixel int
	order         blit.ByteOrder
	depth         int
	ch            [3]channel
}

// NewLayout builds the codec for v.
func NewLayout(v blit.Visual) (Layout, error) {
	switch v.BitsPerPixel {
	case 8, 16, 24, 32:
	default:
		return Layout{}, fmt.Errorf("%w: %d bits per pixel", ErrUnsupportedVisual, v.BitsPerPixel)
	}

	l := Layout{
		bytesPerPixel: v.BitsPerPixel / 8,
		order:         v.ByteOrder,
		depth:         v.Depth,
	}
	for i, m := range [3]uint32{v.RedMask, v.GreenMask, v.BlueMask} {
		c, err := maskChannel(m, v.BitsPerPixel)
		if err != nil {
			return Layout{}, err
		}
		l.ch[i] = c
	}
	return l, nil
}

func maskChannel(m uint32, bpp int) (channel, error) {
	if m == 0 {
		return channel{}, fmt.Errorf("%w: empty channel mask", ErrUnsupportedVisual)
	}
	shift := uint(bits.TrailingZeros32(m))
	width := uint(bits.OnesCount32(m))
	if m>>shift != 1<<width-1 {
		return channel{}, fmt.Errorf("%w: mask %#x is not contiguous", ErrUnsupportedVisual, m)
	}
	if int(shift+width) > bpp {
		return channel{}, fmt.Errorf("%w: mask %#x exceeds %d bits per pixel", ErrUnsupportedVisual, m, bpp)
	}
	return channel{shift: shift, width: width}, nil
}

// BytesPerPixel returns the storage size of one native pixel.
func (l Layout) BytesPerPixel() int {
	return l.bytesPerPixel
}

// Load reads the native pixel starting at p[0].
func (l Layout) Load(p []byte) uint32 {
	switch l.bytesPerPixel {
	case 1:
		return uint32(p[0])
	case 2:
		if l.order == blit.MSBFirst {
			return uint32(p[0])<<8 | uint32(p[1])
		}
		return uint32(p[0]) | uint32(p[1])<<8
	case 3:
		if l.order == blit.MSBFirst {
			return uint32(p[0])<<16 | uint32(p[1])<<8 | uint32(p[2])
		}
		return uint32(p[0]) | uint32(p[1])<<8 | uint32(p[2])<<16
	default:
		if l.order == blit.MSBFirst {
			return uint32(p[0])<<24 | uint32(p[1])<<16 | uint32(p[2])<<8 | uint32(p[3])
		}
		return uint32(p[0]) | uint32(p[1])<<8 | uint32(p[2])<<16 | uint32(p[3])<<24
	}
}

// Store writes v as a native pixel starting at p[0].
func (l Layout) Store(p []byte, v uint32) {
	n := l.bytesPerPixel
	for i := 0; i < n; i++ {
		b := byte(v >> (8 * uint(i)))
		if l.order == blit.MSBFirst {
			p[n-1-i] = b
		} else {
			p[i] = b
		}
	}
}

// Decode splits a native pixel into 8-bit channels.
func (l Layout) Decode(v uint32) (r, g, b uint8) {
	return widen(l.ch[0], v), widen(l.ch[1], v), widen(l.ch[2], v)
}

// Encode packs 8-bit channels into a native pixel by truncation. Bits not
// covered by any mask are zero.
func (l Layout) Encode(r, g, b uint8) uint32 {
	return narrow(l.ch[0], r, 0) | narrow(l.ch[1], g, 0) | narrow(l.ch[2], b, 0)
}

// EncodeDithered packs 8-bit channels, adding the ordered dither threshold
// of pattern cell (x&7, y&7) to every channel narrower than 8 bits.
func (l Layout) EncodeDithered(r, g, b uint8, x, y int) uint32 {
	t := bayer8[y&7][x&7]
	return narrow(l.ch[0], r, t) | narrow(l.ch[1], g, t) | narrow(l.ch[2], b, t)
}

func widen(c channel, v uint32) uint8 {
	if c.width == 0 {
		return 0
	}
	x := (v >> c.shift) & (1<<c.width - 1)
	if c.width >= 8 {
		return uint8(x >> (c.width - 8))
	}
	var out uint32
	for s := int(8 - c.width); s > -int(c.width); s -= int(c.width) {
		if s >= 0 {
			out |= x << uint(s)
		} else {
			out |= x >> uint(-s)
		}
	}
	return uint8(out)
}

// narrow truncates an 8-bit sample to the channel width after adding a
// dither threshold t in 0..63, scaled to one step of the target width.
func narrow(c channel, v uint8, t uint8) uint32 {
	x := uint32(v)
	if c.width >= 8 {
		return (x << (c.width - 8)) << c.shift
	}
	drop := 8 - c.width
	if t != 0 {
		x += (uint32(t) << drop) >> 6
		if x > 255 {
			x = 255
		}
	}
	return (x >> drop) << c.shift
}

// bayer8 is the 8x8 ordered dither matrix, values 0..63.
var bayer8 = [8][8]uint8{
	{0, 32, 8, 40, 2, 34, 10, 42},
	{48, 16, 56, 24, 50, 18, 58, 26},
	{12, 44, 4, 36, 14, 46, 6, 38},
	{60, 28, 52, 20, 62, 30, 54, 22},
	{3, 35, 11, 43, 1, 33, 9, 41},
	{51, 19, 59, 27, 49, 17, 57, 25},
	{15, 47, 7, 39, 13, 45, 5, 37},
	{63, 31, 55, 23, 61, 29, 53, 21},
}

// ToRGB converts a w x h block of native pixels to packed 8-bit RGB.
func (l Layout) ToRGB(dst []byte, dstStride int, src []byte, srcStride int, w, h int) {
	bpp := l.bytesPerPixel
	for y := 0; y < h; y++ {
		p := src[y*srcStride:]
		q := dst[y*dstStride:]
		for x := 0; x < w; x++ {
			q[x*3], q[x*3+1], q[x*3+2] = l.Decode(l.Load(p[x*bpp:]))
		}
	}
}

// FromRGB converts a w x h block of 8-bit samples with the given channel
// count (3 or 4; a fourth channel is ignored) to native pixels. origin is
// the destination position of the first pixel. When dither is set, the
// sample at column x and row y of the block uses pattern cell
// (origin.X + x + phase.X, origin.Y + y + phase.Y), so the pattern stays
// fixed to the destination however the block is split.
func (l Layout) FromRGB(dst []byte, dstStride int, src []byte, srcStride, channels int, w, h int, origin image.Point, dither bool, phase image.Point) {
	cell := origin.Add(phase)
	bpp := l.bytesPerPixel
	for y := 0; y < h; y++ {
		p := src[y*srcStride:]
		q := dst[y*dstStride:]
		for x := 0; x < w; x++ {
			s := p[x*channels:]
			var v uint32
			if dither {
				v = l.EncodeDithered(s[0], s[1], s[2], cell.X+x, cell.Y+y)
			} else {
				v = l.Encode(s[0], s[1], s[2])
			}
			l.Store(q[x*bpp:], v)
		}
	}
}

// Dithers reports whether mode d dithers on this layout.
func (l Layout) Dithers(d blit.Dither) bool {
	return d.Applies(l.depth)
}
