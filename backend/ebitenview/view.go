// Package ebitenview presents a blit drawable in an Ebitengine window.
//
// Blits go to a CPU-side RGBA frame that is uploaded to the GPU with
// WritePixels when the game draws. The frame's byte order is R, G, B, A,
// which no compositing kernel matches, so alpha blits onto a View always
// take the 24-bit staging path.
package ebitenview

import (
	"image"
	"image/color"
	"sync"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/gogpu/blit"
	"github.com/gogpu/blit/backend/memory"
	"github.com/gogpu/blit/scratch"
)

// Visual is the pixel layout of a View: 32-bit pixels with red in the
// lowest-addressed byte.
var Visual = blit.Visual{
	Depth:        24,
	BitsPerPixel: 32,
	ByteOrder:    blit.LSBFirst,
	RedMask:      0x0000ff,
	GreenMask:    0x00ff00,
	BlueMask:     0xff0000,
}

// View is a drawable backed by an RGBA frame.
type View struct {
	*memory.Drawable

	dirty  atomic.Bool
	mu     sync.Mutex
	upload []byte
	img    *ebiten.Image
}

// New creates a width x height view filled with opaque black.
func New(width, height int) (*View, error) {
	d, err := memory.New(width, height, Visual)
	if err != nil {
		return nil, err
	}
	v := &View{Drawable: d}
	v.Fill(color.Black)
	return v, nil
}

// DrawImage implements blit.Drawable.
func (v *View) DrawImage(img *scratch.Image, from image.Point, dst image.Rectangle) error {
	defer v.dirty.Store(true)
	return v.Drawable.DrawImage(img, from, dst)
}

// DrawRGB implements blit.Drawable.
func (v *View) DrawRGB(dst image.Rectangle, pb *blit.Pixbuf, src image.Point, dither blit.Dither, phase image.Point) error {
	defer v.dirty.Store(true)
	return v.Drawable.DrawRGB(dst, pb, src, dither, phase)
}

// Fill implements memory fill and marks the frame for upload.
func (v *View) Fill(c color.Color) {
	v.Drawable.Fill(c)
	v.dirty.Store(true)
}

// Frame returns a copy of the frame as straight RGBA with opaque alpha.
func (v *View) Frame() []byte {
	pix, _ := v.Pix()
	out := make([]byte, len(pix))
	opaque(out, pix)
	return out
}

// Image returns the GPU image holding the last uploaded frame, uploading
// the frame first if it changed. It must be called from the game's Draw.
func (v *View) Image() *ebiten.Image {
	v.mu.Lock()
	defer v.mu.Unlock()

	w, h := v.Size()
	if v.img == nil || v.img.Bounds().Dx() != w || v.img.Bounds().Dy() != h {
		if v.img != nil {
			v.img.Deallocate()
		}
		v.img = ebiten.NewImage(w, h)
		v.dirty.Store(true)
	}
	if v.dirty.Swap(false) {
		pix, _ := v.Pix()
		if len(v.upload) != len(pix) {
			v.upload = make([]byte, len(pix))
		}
		opaque(v.upload, pix)
		v.img.WritePixels(v.upload)
	}
	return v.img
}

// Present draws the view onto screen at its origin.
func (v *View) Present(screen *ebiten.Image) {
	screen.DrawImage(v.Image(), nil)
}

// opaque copies RGBA pixels and sets every alpha byte to 0xff.
func opaque(dst, src []byte) {
	copy(dst, src)
	for i := 3; i < len(dst); i += 4 {
		dst[i] = 0xff
	}
}
