// Package memory implements blit.Drawable over a plain byte slice holding
// native pixels of any supported TrueColor visual.
//
// A memory drawable behaves like a server-side pixmap without the server:
// reads and writes go straight to its pixel slice. It is the reference
// backend for tests and for rendering blits to image files.
package memory

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync/atomic"

	"github.com/gogpu/blit"
	"github.com/gogpu/blit/backend"
	"github.com/gogpu/blit/internal/pixel"
	"github.com/gogpu/blit/scratch"
)

// Op names a drawable primitive, for fault injection and statistics.
type Op string

// Primitive operations.
const (
	OpCopyToImage Op = "copy-to-image"
	OpDrawImage   Op = "draw-image"
	OpReadRGB     Op = "read-rgb"
	OpDrawRGB     Op = "draw-rgb"
)

// ErrOutOfBounds is returned for rectangles outside the drawable or the
// image they are copied to or from.
var ErrOutOfBounds = errors.New("memory: rectangle out of bounds")

// Stats counts primitive calls.
type Stats struct {
	CopyToImage int64
	DrawImage   int64
	ReadRGB     int64
	DrawRGB     int64
}

// Option configures a Drawable.
type Option func(*Drawable)

// WithClip sets the initial clip region.
func WithClip(r *blit.Region) Option {
	return func(d *Drawable) {
		d.clip = r
	}
}

// WithFault installs a hook called before every primitive. A non-nil error
// aborts the primitive and is returned to the caller.
func WithFault(fn func(op Op, r image.Rectangle) error) Option {
	return func(d *Drawable) {
		d.fault = fn
	}
}

// Drawable is an in-memory drawable.
//
// Thread safety: primitives touching disjoint rectangles may run
// concurrently. Resize, SetClipRegion and Fill must not overlap any other
// call.
type Drawable struct {
	width  int
	height int
	visual blit.Visual
	layout pixel.Layout
	stride int
	pix    []byte
	clip   *blit.Region
	fault  func(op Op, r image.Rectangle) error

	copyToImage atomic.Int64
	drawImage   atomic.Int64
	readRGB     atomic.Int64
	drawRGB     atomic.Int64
}

// New creates a zeroed width x height drawable with visual v.
func New(width, height int, v blit.Visual, opts ...Option) (*Drawable, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("memory: invalid size %dx%d", width, height)
	}
	layout, err := pixel.NewLayout(v)
	if err != nil {
		return nil, err
	}

	d := &Drawable{
		width:  width,
		height: height,
		visual: v,
		layout: layout,
		stride: width * layout.BytesPerPixel(),
	}
	d.pix = make([]byte, d.stride*height)
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Size returns the drawable dimensions.
func (d *Drawable) Size() (width, height int) {
	return d.width, d.height
}

// Depth returns the visual depth.
func (d *Drawable) Depth() int {
	return d.visual.Depth
}

// Visual returns a copy of the drawable's visual.
func (d *Drawable) Visual() *blit.Visual {
	v := d.visual
	return &v
}

// ClipRegion returns the clip region, or nil for the whole drawable.
func (d *Drawable) ClipRegion() *blit.Region {
	return d.clip
}

// SetClipRegion replaces the clip region. nil removes clipping.
func (d *Drawable) SetClipRegion(r *blit.Region) {
	d.clip = r
}

// Bounds returns the drawable rectangle.
func (d *Drawable) Bounds() image.Rectangle {
	return image.Rect(0, 0, d.width, d.height)
}

// Pix returns the native pixel memory and its stride. The slice aliases the
// drawable.
func (d *Drawable) Pix() ([]byte, int) {
	return d.pix, d.stride
}

// Stats returns the number of primitive calls so far.
func (d *Drawable) Stats() Stats {
	return Stats{
		CopyToImage: d.copyToImage.Load(),
		DrawImage:   d.drawImage.Load(),
		ReadRGB:     d.readRGB.Load(),
		DrawRGB:     d.drawRGB.Load(),
	}
}

// Resize changes the drawable size, keeping the overlapping pixels.
func (d *Drawable) Resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	stride := width * d.layout.BytesPerPixel()
	pix := make([]byte, stride*height)
	n := min(stride, d.stride)
	for y := 0; y < min(height, d.height); y++ {
		copy(pix[y*stride:y*stride+n], d.pix[y*d.stride:])
	}
	d.width, d.height, d.stride, d.pix = width, height, stride, pix
}

// PixelAt returns the native pixel at (x, y), or 0 outside the drawable.
func (d *Drawable) PixelAt(x, y int) uint32 {
	if !image.Pt(x, y).In(d.Bounds()) {
		return 0
	}
	return d.layout.Load(d.pix[d.offset(x, y):])
}

// SetPixel stores a native pixel at (x, y).
func (d *Drawable) SetPixel(x, y int, v uint32) {
	if !image.Pt(x, y).In(d.Bounds()) {
		return
	}
	d.layout.Store(d.pix[d.offset(x, y):], v)
}

// RGBAAt returns the opaque color of the pixel at (x, y).
func (d *Drawable) RGBAAt(x, y int) color.RGBA {
	r, g, b := d.layout.Decode(d.PixelAt(x, y))
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// Fill sets every pixel, ignoring the clip region, to c without dithering.
func (d *Drawable) Fill(c color.Color) {
	r, g, b, _ := c.RGBA()
	v := d.layout.Encode(uint8(r>>8), uint8(g>>8), uint8(b>>8))
	for y := 0; y < d.height; y++ {
		for x := 0; x < d.width; x++ {
			d.layout.Store(d.pix[d.offset(x, y):], v)
		}
	}
}

// Snapshot returns the drawable contents as an opaque RGBA image.
func (d *Drawable) Snapshot() *image.RGBA {
	img := image.NewRGBA(d.Bounds())
	for y := 0; y < d.height; y++ {
		for x := 0; x < d.width; x++ {
			img.SetRGBA(x, y, d.RGBAAt(x, y))
		}
	}
	return img
}

// CopyToImage copies the native pixels of src into img at pixel at.
func (d *Drawable) CopyToImage(img *scratch.Image, src image.Rectangle, at image.Point) error {
	d.copyToImage.Add(1)
	if err := d.check(OpCopyToImage, src); err != nil {
		return err
	}
	if err := d.checkImage(img, at, src.Size()); err != nil {
		return err
	}
	n := src.Dx() * d.layout.BytesPerPixel()
	for y := 0; y < src.Dy(); y++ {
		from := d.offset(src.Min.X, src.Min.Y+y)
		to := img.PixOffset(at.X, at.Y+y)
		copy(img.Pix[to:to+n], d.pix[from:from+n])
	}
	return nil
}

// DrawImage copies the native pixels of img starting at from into dst.
func (d *Drawable) DrawImage(img *scratch.Image, from image.Point, dst image.Rectangle) error {
	d.drawImage.Add(1)
	if err := d.check(OpDrawImage, dst); err != nil {
		return err
	}
	if err := d.checkImage(img, from, dst.Size()); err != nil {
		return err
	}
	n := dst.Dx() * d.layout.BytesPerPixel()
	for y := 0; y < dst.Dy(); y++ {
		src := img.PixOffset(from.X, from.Y+y)
		to := d.offset(dst.Min.X, dst.Min.Y+y)
		copy(d.pix[to:to+n], img.Pix[src:src+n])
	}
	return nil
}

// ReadRGB returns r as a new 3-channel pixbuf.
func (d *Drawable) ReadRGB(r image.Rectangle) (*blit.Pixbuf, error) {
	d.readRGB.Add(1)
	if err := d.check(OpReadRGB, r); err != nil {
		return nil, err
	}
	pb := blit.NewPixbuf(r.Dx(), r.Dy(), false)
	d.layout.ToRGB(pb.Pix, pb.Stride, d.pix[d.offset(r.Min.X, r.Min.Y):], d.stride, r.Dx(), r.Dy())
	return pb, nil
}

// DrawRGB converts the pixels of pb starting at src and writes them to dst.
func (d *Drawable) DrawRGB(dst image.Rectangle, pb *blit.Pixbuf, src image.Point, dither blit.Dither, phase image.Point) error {
	d.drawRGB.Add(1)
	if err := d.check(OpDrawRGB, dst); err != nil {
		return err
	}
	if !(image.Rectangle{Min: src, Max: src.Add(dst.Size())}).In(pb.Bounds()) {
		return fmt.Errorf("%w: source %v in %v", ErrOutOfBounds, src, pb.Bounds())
	}
	d.layout.FromRGB(d.pix[d.offset(dst.Min.X, dst.Min.Y):], d.stride,
		pb.Pix[pb.PixOffset(src.X, src.Y):], pb.Stride, pb.Channels,
		dst.Dx(), dst.Dy(), dst.Min, d.layout.Dithers(dither), phase)
	return nil
}

func (d *Drawable) offset(x, y int) int {
	return y*d.stride + x*d.layout.BytesPerPixel()
}

func (d *Drawable) check(op Op, r image.Rectangle) error {
	if d.fault != nil {
		if err := d.fault(op, r); err != nil {
			return err
		}
	}
	if r.Empty() || !r.In(d.Bounds()) {
		return fmt.Errorf("%w: %s %v in %v", ErrOutOfBounds, op, r, d.Bounds())
	}
	return nil
}

func (d *Drawable) checkImage(img *scratch.Image, at image.Point, size image.Point) error {
	if img == nil || img.BytesPerPixel != d.layout.BytesPerPixel() {
		return fmt.Errorf("memory: scratch image does not match %d-byte pixels", d.layout.BytesPerPixel())
	}
	if at.X < 0 || at.Y < 0 || at.X+size.X > img.Width || at.Y+size.Y > img.Height {
		return fmt.Errorf("%w: %v at %v in %dx%d scratch image", ErrOutOfBounds, size, at, img.Width, img.Height)
	}
	return nil
}

// Target wraps a Drawable for the backend registry.
type Target struct {
	*Drawable
}

// Close implements backend.Target. It is a no-op.
func (Target) Close() error { return nil }

func init() {
	backend.Register("memory", backend.PrioritySoftware, func(opts backend.Options) (backend.Target, error) {
		v := opts.Visual
		if v == (blit.Visual{}) {
			v = blit.VisualXRGB8888(blit.LSBFirst)
		}
		d, err := New(opts.Width, opts.Height, v)
		if err != nil {
			return nil, err
		}
		return Target{d}, nil
	}, nil)
}
