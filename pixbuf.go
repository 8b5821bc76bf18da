package blit

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Pixbuf is a client-side RGB or RGBA image with 8 bits per sample.
//
// A 4-channel pixbuf stores straight (non-premultiplied) alpha as the fourth
// byte of each pixel; a 3-channel pixbuf is fully opaque. Blits only read a
// pixbuf; the pixel memory stays owned by whoever created it.
type Pixbuf struct {
	// Width and Height are the pixbuf dimensions in pixels.
	Width  int
	Height int

	// Stride is the distance in bytes between two rows.
	Stride int

	// Channels is 3 (RGB) or 4 (RGBA).
	Channels int

	// BitsPerSample must be 8.
	BitsPerSample int

	// Pix holds the samples, row after row.
	Pix []byte
}

// NewPixbuf allocates a zeroed pixbuf.
func NewPixbuf(width, height int, hasAlpha bool) *Pixbuf {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	channels := 3
	if hasAlpha {
		channels = 4
	}
	return &Pixbuf{
		Width:         width,
		Height:        height,
		Stride:        width * channels,
		Channels:      channels,
		BitsPerSample: 8,
		Pix:           make([]byte, width*channels*height),
	}
}

// PixbufFromBytes wraps existing pixel memory without copying.
func PixbufFromBytes(pix []byte, width, height, stride, channels int) (*Pixbuf, error) {
	pb := &Pixbuf{
		Width:         width,
		Height:        height,
		Stride:        stride,
		Channels:      channels,
		BitsPerSample: 8,
		Pix:           pix,
	}
	if err := pb.Validate(); err != nil {
		return nil, err
	}
	return pb, nil
}

// PixbufFromImage converts img to a 4-channel pixbuf with straight alpha.
// An *image.NRGBA is wrapped without copying.
func PixbufFromImage(img image.Image) *Pixbuf {
	b := img.Bounds()
	nrgba, ok := img.(*image.NRGBA)
	if !ok || b.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	}
	return &Pixbuf{
		Width:         b.Dx(),
		Height:        b.Dy(),
		Stride:        nrgba.Stride,
		Channels:      4,
		BitsPerSample: 8,
		Pix:           nrgba.Pix,
	}
}

// HasAlpha reports whether the pixbuf carries an alpha channel.
func (pb *Pixbuf) HasAlpha() bool {
	return pb.Channels == 4
}

// Bounds returns the pixbuf rectangle, anchored at the origin.
func (pb *Pixbuf) Bounds() image.Rectangle {
	return image.Rect(0, 0, pb.Width, pb.Height)
}

// PixOffset returns the index of the first sample of pixel (x, y).
func (pb *Pixbuf) PixOffset(x, y int) int {
	return y*pb.Stride + x*pb.Channels
}

// Validate checks the shape of the pixbuf. Failures wrap ErrPrecondition.
func (pb *Pixbuf) Validate() error {
	switch {
	case pb == nil:
		return preconditionf("nil pixbuf")
	case pb.Channels != 3 && pb.Channels != 4:
		return preconditionf("pixbuf has %d channels, want 3 or 4", pb.Channels)
	case pb.BitsPerSample != 8:
		return preconditionf("pixbuf has %d bits per sample, want 8", pb.BitsPerSample)
	case pb.Width < 0 || pb.Height < 0:
		return preconditionf("pixbuf size %dx%d", pb.Width, pb.Height)
	case pb.Stride < pb.Width*pb.Channels:
		return preconditionf("pixbuf stride %d too small for width %d", pb.Stride, pb.Width)
	case pb.Height > 0 && len(pb.Pix) < (pb.Height-1)*pb.Stride+pb.Width*pb.Channels:
		return preconditionf("pixbuf data is %d bytes, too small for %dx%d", len(pb.Pix), pb.Width, pb.Height)
	}
	return nil
}

// At returns the color of pixel (x, y) as color.NRGBA.
func (pb *Pixbuf) At(x, y int) color.NRGBA {
	if !image.Pt(x, y).In(pb.Bounds()) {
		return color.NRGBA{}
	}
	p := pb.Pix[pb.PixOffset(x, y):]
	if pb.Channels == 3 {
		return color.NRGBA{R: p[0], G: p[1], B: p[2], A: 0xff}
	}
	return color.NRGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
}

// Set stores c at pixel (x, y). The alpha of c is dropped for a 3-channel
// pixbuf.
func (pb *Pixbuf) Set(x, y int, c color.NRGBA) {
	if !image.Pt(x, y).In(pb.Bounds()) {
		return
	}
	p := pb.Pix[pb.PixOffset(x, y):]
	p[0], p[1], p[2] = c.R, c.G, c.B
	if pb.Channels == 4 {
		p[3] = c.A
	}
}

// Fill sets every pixel to c.
func (pb *Pixbuf) Fill(c color.NRGBA) {
	for y := 0; y < pb.Height; y++ {
		for x := 0; x < pb.Width; x++ {
			pb.Set(x, y, c)
		}
	}
}

// ToNRGBA copies the pixbuf into a new image.
func (pb *Pixbuf) ToNRGBA() *image.NRGBA {
	img := image.NewNRGBA(pb.Bounds())
	for y := 0; y < pb.Height; y++ {
		for x := 0; x < pb.Width; x++ {
			img.SetNRGBA(x, y, pb.At(x, y))
		}
	}
	return img
}
