package blit

import (
	"fmt"

	"github.com/gogpu/blit/internal/blend"
)

// ByteOrder is the memory order of a multi-byte native pixel.
type ByteOrder uint8

const (
	// LSBFirst stores the least significant byte of a pixel first.
	LSBFirst ByteOrder = iota

	// MSBFirst stores the most significant byte of a pixel first.
	MSBFirst
)

// String returns a string representation of the byte order.
func (o ByteOrder) String() string {
	switch o {
	case LSBFirst:
		return "LSBFirst"
	case MSBFirst:
		return "MSBFirst"
	default:
		return fmt.Sprintf("ByteOrder(%d)", uint8(o))
	}
}

// Visual describes how a drawable stores its pixels.
//
// Only TrueColor visuals are described: each channel occupies a contiguous
// run of bits selected by its mask.
type Visual struct {
	// Depth is the number of significant bits per pixel.
	Depth int

	// BitsPerPixel is the storage size of one pixel (8, 16, 24 or 32).
	BitsPerPixel int

	// ByteOrder is the memory order of the pixel bytes.
	ByteOrder ByteOrder

	// RedMask, GreenMask and BlueMask select each channel's bits.
	RedMask   uint32
	GreenMask uint32
	BlueMask  uint32
}

// VisualRGB565 returns a 16-bit r5g6b5 visual.
func VisualRGB565(order ByteOrder) Visual {
	return Visual{
		Depth:        16,
		BitsPerPixel: 16,
		ByteOrder:    order,
		RedMask:      0xf800,
		GreenMask:    0x07e0,
		BlueMask:     0x001f,
	}
}

// VisualXRGB8888 returns a depth 24 visual stored in 32-bit pixels.
func VisualXRGB8888(order ByteOrder) Visual {
	return Visual{
		Depth:        24,
		BitsPerPixel: 32,
		ByteOrder:    order,
		RedMask:      0xff0000,
		GreenMask:    0x00ff00,
		BlueMask:     0x0000ff,
	}
}

// VisualRGB888 returns a depth 24 visual stored in tightly packed 3-byte
// pixels. With MSBFirst the bytes are R,G,B in memory.
func VisualRGB888(order ByteOrder) Visual {
	return Visual{
		Depth:        24,
		BitsPerPixel: 24,
		ByteOrder:    order,
		RedMask:      0xff0000,
		GreenMask:    0x00ff00,
		BlueMask:     0x0000ff,
	}
}

// BytesPerPixel returns the storage size of one pixel in bytes.
func (v Visual) BytesPerPixel() int {
	return (v.BitsPerPixel + 7) / 8
}

// Format classifies the visual into one of the layouts the compositor
// understands. Visuals that match none of them yield FormatUnknown.
func (v Visual) Format() PixelFormat {
	switch {
	case v.Depth == 16 && v.BitsPerPixel == 16 &&
		v.RedMask == 0xf800 && v.GreenMask == 0x07e0 && v.BlueMask == 0x001f:
		if v.ByteOrder == MSBFirst {
			return FormatRGB565MSB
		}
		return FormatRGB565LSB

	case v.Depth == 24 && v.BitsPerPixel == 32 &&
		v.RedMask == 0xff0000 && v.GreenMask == 0x00ff00 && v.BlueMask == 0x0000ff:
		if v.ByteOrder == MSBFirst {
			return FormatPacked32MSB
		}
		return FormatPacked32LSB

	case v.Depth == 24 && v.BitsPerPixel == 24 && v.ByteOrder == MSBFirst &&
		v.RedMask == 0xff0000 && v.GreenMask == 0x00ff00 && v.BlueMask == 0x0000ff:
		return FormatRGB24
	}
	return FormatUnknown
}

// PixelFormat is the closed set of native layouts with a compositing kernel.
type PixelFormat uint8

const (
	// FormatUnknown is any layout without a kernel.
	FormatUnknown PixelFormat = iota

	// FormatRGB24 is 3 bytes per pixel in R,G,B memory order.
	FormatRGB24

	// FormatPacked32LSB is 4 bytes per pixel in B,G,R,pad memory order.
	FormatPacked32LSB

	// FormatPacked32MSB is 4 bytes per pixel in pad,R,G,B memory order.
	FormatPacked32MSB

	// FormatRGB565LSB is r5g6b5 stored least significant byte first.
	FormatRGB565LSB

	// FormatRGB565MSB is r5g6b5 stored most significant byte first.
	FormatRGB565MSB

	formatCount
)

// String returns a string representation of the format.
func (f PixelFormat) String() string {
	switch f {
	case FormatRGB24:
		return "RGB24"
	case FormatPacked32LSB:
		return "Packed32LSB"
	case FormatPacked32MSB:
		return "Packed32MSB"
	case FormatRGB565LSB:
		return "RGB565LSB"
	case FormatRGB565MSB:
		return "RGB565MSB"
	default:
		return "Unknown"
	}
}

// BytesPerPixel returns the storage size of one pixel, or 0 for
// FormatUnknown.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case FormatRGB24:
		return 3
	case FormatPacked32LSB, FormatPacked32MSB:
		return 4
	case FormatRGB565LSB, FormatRGB565MSB:
		return 2
	default:
		return 0
	}
}

// kernels maps each format to its compositing kernel.
var kernels = [formatCount]blend.Kernel{
	FormatRGB24: blend.CompositeRGB24,
	FormatPacked32LSB: func(src []byte, srcStride int, dst []byte, dstStride int, w, h int) {
		blend.CompositePacked32(src, srcStride, dst, dstStride, blend.LSBFirst, w, h)
	},
	FormatPacked32MSB: func(src []byte, srcStride int, dst []byte, dstStride int, w, h int) {
		blend.CompositePacked32(src, srcStride, dst, dstStride, blend.MSBFirst, w, h)
	},
	FormatRGB565LSB: func(src []byte, srcStride int, dst []byte, dstStride int, w, h int) {
		blend.Composite565(src, srcStride, dst, dstStride, blend.LSBFirst, w, h)
	},
	FormatRGB565MSB: func(src []byte, srcStride int, dst []byte, dstStride int, w, h int) {
		blend.Composite565(src, srcStride, dst, dstStride, blend.MSBFirst, w, h)
	},
}

// kernel returns the compositing kernel for the format, or nil for
// FormatUnknown.
func (f PixelFormat) kernel() blend.Kernel {
	if f >= formatCount {
		return nil
	}
	return kernels[f]
}

// directComposite reports whether tiles can be composited in place in this
// format. FormatRGB24 has a kernel but is only used for staging buffers.
func (f PixelFormat) directComposite() bool {
	switch f {
	case FormatPacked32LSB, FormatPacked32MSB, FormatRGB565LSB, FormatRGB565MSB:
		return true
	default:
		return false
	}
}
