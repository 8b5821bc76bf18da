package blend

// ByteOrder is the order in which a multi-byte native pixel is laid out in
// memory.
type ByteOrder uint8

const (
	// LSBFirst stores the least significant byte of a pixel first.
	LSBFirst ByteOrder = iota

	// MSBFirst stores the most significant byte of a pixel first.
	MSBFirst
)

// Kernel composites a block of 4-channel RGBA source pixels over a block of
// destination pixels in place.
type Kernel func(src []byte, srcStride int, dst []byte, dstStride int, width, height int)

// CompositeRGB24 blends RGBA source pixels over tightly packed R,G,B
// destination pixels (3 bytes per pixel).
func CompositeRGB24(src []byte, srcStride int, dst []byte, dstStride int, width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	for y := 0; y < height; y++ {
		p := src[y*srcStride:]
		q := dst[y*dstStride:]
		for x := 0; x < width; x++ {
			a := uint32(p[3])
			q[0] = div255(blendTerm(a, uint32(p[0]), uint32(q[0])))
			q[1] = div255(blendTerm(a, uint32(p[1]), uint32(q[1])))
			q[2] = div255(blendTerm(a, uint32(p[2]), uint32(q[2])))
			p = p[4:]
			q = q[3:]
		}
	}
}

// CompositePacked32 blends RGBA source pixels over 32-bit x8r8g8b8 pixels.
//
// With LSBFirst the destination bytes are B,G,R,pad; with MSBFirst they are
// pad,R,G,B. The pad byte is never written.
func CompositePacked32(src []byte, srcStride int, dst []byte, dstStride int, order ByteOrder, width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	ri, gi, bi := 2, 1, 0
	if order == MSBFirst {
		ri, gi, bi = 1, 2, 3
	}
	for y := 0; y < height; y++ {
		p := src[y*srcStride:]
		q := dst[y*dstStride:]
		for x := 0; x < width; x++ {
			a := uint32(p[3])
			q[ri] = div255(blendTerm(a, uint32(p[0]), uint32(q[ri])))
			q[gi] = div255(blendTerm(a, uint32(p[1]), uint32(q[gi])))
			q[bi] = div255(blendTerm(a, uint32(p[2]), uint32(q[bi])))
			p = p[4:]
			q = q[4:]
		}
	}
}

// Composite565 blends RGBA source pixels over 16-bit r5g6b5 pixels stored in
// the given byte order.
//
// The destination channels are widened to 8 bits by bit replication, blended
// in the 8-bit domain exactly like CompositeRGB24, and the blended value is
// truncated back to 5/6/5 bits. Blending a 565 pixel therefore gives the
// same result as converting it to RGB24, compositing, and converting back
// without dithering.
func Composite565(src []byte, srcStride int, dst []byte, dstStride int, order ByteOrder, width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	for y := 0; y < height; y++ {
		p := src[y*srcStride:]
		q := dst[y*dstStride:]
		for x := 0; x < width; x++ {
			var v uint32
			if order == LSBFirst {
				v = uint32(q[0]) | uint32(q[1])<<8
			} else {
				v = uint32(q[0])<<8 | uint32(q[1])
			}

			a := uint32(p[3])
			tr := blendTerm(a, uint32(p[0]), Widen5(v>>11))
			tg := blendTerm(a, uint32(p[1]), Widen6((v>>5)&0x3f))
			tb := blendTerm(a, uint32(p[2]), Widen5(v&0x1f))

			v = ((tr + (tr >> 8)) & 0xf800) |
				(((tg + (tg >> 8)) & 0xfc00) >> 5) |
				((tb + (tb >> 8)) >> 11)

			if order == LSBFirst {
				q[0], q[1] = byte(v), byte(v>>8)
			} else {
				q[0], q[1] = byte(v>>8), byte(v)
			}
			p = p[4:]
			q = q[2:]
		}
	}
}
