package x11

// scanlineStride returns the byte length of a ZPixmap row of width pixels.
func scanlineStride(width, bitsPerPixel, pad int) int {
	if pad <= 0 {
		pad = 8
	}
	bits := width * bitsPerPixel
	return (bits + pad - 1) / pad * pad / 8
}

// rowsPerRequest returns how many rows of the given stride fit into one
// PutImage request, or 0 if not even one does.
func rowsPerRequest(maxRequestBytes, stride int) int {
	if stride <= 0 {
		return 0
	}
	return max(0, (maxRequestBytes-requestHeader)/stride)
}

// copyRows copies h rows of n bytes between buffers of different strides.
func copyRows(dst []byte, dstStride int, src []byte, srcStride int, n, h int) {
	for y := 0; y < h; y++ {
		copy(dst[y*dstStride:y*dstStride+n], src[y*srcStride:y*srcStride+n])
	}
}
