// Package blend implements the straight-alpha compositing kernels used to
// blend a 4-channel RGBA source over destination pixels that are already in
// a packed native format.
//
// Every kernel reduces to the same per-channel operation:
//
//	t   = a*s + (255-a)*d + 0x80
//	out = (t + (t >> 8)) >> 8
//
// which is a rounding divide by 255 without a division. The kernels must
// reproduce it bit for bit; tests compare against [Channel], not against
// floating point.
//
// Kernels do no bounds checking of their own and never allocate. The caller
// guarantees that the buffers cover width*height pixels at the given strides.
package blend

// Channel blends one 8-bit source channel s over destination channel d with
// straight alpha a.
func Channel(a, s, d byte) byte {
	t := blendTerm(uint32(a), uint32(s), uint32(d))
	return byte((t + (t >> 8)) >> 8)
}

// blendTerm returns a*s + (255-a)*d + 0x80, the pre-division term shared by
// all kernels. The result always fits in 16 bits (max 65153).
func blendTerm(a, s, d uint32) uint32 {
	return a*s + (255-a)*d + 0x80
}

// div255 finishes a blendTerm into an 8-bit channel.
func div255(t uint32) byte {
	return byte((t + (t >> 8)) >> 8)
}

// Widen5 expands a 5-bit channel to 8 bits by bit replication.
func Widen5(v uint32) uint32 {
	return (v << 3) | (v >> 2)
}

// Widen6 expands a 6-bit channel to 8 bits by bit replication.
func Widen6(v uint32) uint32 {
	return (v << 2) | (v >> 4)
}
