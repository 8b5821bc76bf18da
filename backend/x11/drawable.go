package x11

import (
	"fmt"
	"image"
	"sync"

	"github.com/jezek/xgb/xproto"

	"github.com/gogpu/blit"
	"github.com/gogpu/blit/internal/pixel"
	"github.com/gogpu/blit/scratch"
)

// Drawable is a window or pixmap on an X server.
//
// Thread safety: primitives may be called concurrently; the connection
// serializes the requests.
type Drawable struct {
	dpy    *Display
	id     xproto.Drawable
	gc     xproto.Gcontext
	depth  byte
	visual blit.Visual
	layout pixel.Layout
	pad    int

	mu     sync.RWMutex
	width  int
	height int
	clip   *blit.Region
}

// Wrap creates a Drawable for an existing window or pixmap. The drawable
// gets its own graphics context, released by Free.
func (dpy *Display) Wrap(id xproto.Drawable) (*Drawable, error) {
	geom, err := xproto.GetGeometry(dpy.conn, id).Reply()
	if err != nil {
		return nil, fmt.Errorf("x11: get geometry: %w", err)
	}

	// Pixmaps have no visual; fall back to one of the same depth.
	var v blit.Visual
	if attrs, err := xproto.GetWindowAttributes(dpy.conn, xproto.Window(id)).Reply(); err == nil {
		v, err = dpy.Visual(attrs.Visual)
		if err != nil {
			return nil, err
		}
	} else if v, err = dpy.visualForDepth(geom.Depth); err != nil {
		return nil, err
	}

	layout, err := pixel.NewLayout(v)
	if err != nil {
		return nil, err
	}
	_, pad, err := dpy.format(geom.Depth)
	if err != nil {
		return nil, err
	}

	gc, err := xproto.NewGcontextId(dpy.conn)
	if err != nil {
		return nil, fmt.Errorf("x11: allocate gc: %w", err)
	}
	if err := xproto.CreateGCChecked(dpy.conn, gc, id, 0, nil).Check(); err != nil {
		return nil, fmt.Errorf("x11: create gc: %w", err)
	}

	blit.Logger().Debug("x11: wrapped drawable",
		"id", uint32(id),
		"depth", geom.Depth,
		"format", v.Format(),
		"scanlinePad", pad)

	return &Drawable{
		dpy:    dpy,
		id:     id,
		gc:     gc,
		depth:  geom.Depth,
		visual: v,
		layout: layout,
		pad:    pad,
		width:  int(geom.Width),
		height: int(geom.Height),
	}, nil
}

// Display returns the connection the drawable lives on.
func (d *Drawable) Display() *Display {
	return d.dpy
}

// ID returns the X resource ID.
func (d *Drawable) ID() xproto.Drawable {
	return d.id
}

// Free releases the graphics context. The X drawable itself is left alone.
func (d *Drawable) Free() {
	xproto.FreeGC(d.dpy.conn, d.gc)
}

// Refresh re-reads the drawable size from the server.
func (d *Drawable) Refresh() error {
	geom, err := xproto.GetGeometry(d.dpy.conn, d.id).Reply()
	if err != nil {
		return fmt.Errorf("x11: get geometry: %w", err)
	}
	d.setSize(int(geom.Width), int(geom.Height))
	return nil
}

func (d *Drawable) setSize(width, height int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.width == width && d.height == height {
		return false
	}
	d.width, d.height = width, height
	blit.Logger().Debug("x11: drawable resized", "id", d.id, "width", width, "height", height)
	return true
}

// Size returns the cached drawable size. It is read when the drawable is
// wrapped and updated by Refresh and Window.HandleEvent; a blit clips
// against this value.
func (d *Drawable) Size() (width, height int) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.width, d.height
}

// Depth returns the drawable depth.
func (d *Drawable) Depth() int {
	return int(d.depth)
}

// Visual returns the drawable's pixel layout.
func (d *Drawable) Visual() *blit.Visual {
	v := d.visual
	return &v
}

// ClipRegion returns the clip region, or nil for the whole drawable.
func (d *Drawable) ClipRegion() *blit.Region {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.clip
}

// SetClipRegion limits blits to r. nil removes clipping.
func (d *Drawable) SetClipRegion(r *blit.Region) {
	d.mu.Lock()
	d.clip = r
	d.mu.Unlock()
}

// CopyToImage reads src into img at pixel at.
func (d *Drawable) CopyToImage(img *scratch.Image, src image.Rectangle, at image.Point) error {
	if img.BytesPerPixel != d.layout.BytesPerPixel() {
		return fmt.Errorf("x11: scratch image has %d-byte pixels, want %d", img.BytesPerPixel, d.layout.BytesPerPixel())
	}
	data, stride, err := d.getImage(src)
	if err != nil {
		return err
	}
	copyRows(img.Pix[img.PixOffset(at.X, at.Y):], img.BytesPerLine,
		data, stride, src.Dx()*img.BytesPerPixel, src.Dy())
	return nil
}

// DrawImage writes the pixels of img starting at from into dst.
func (d *Drawable) DrawImage(img *scratch.Image, from image.Point, dst image.Rectangle) error {
	if img.BytesPerPixel != d.layout.BytesPerPixel() {
		return fmt.Errorf("x11: scratch image has %d-byte pixels, want %d", img.BytesPerPixel, d.layout.BytesPerPixel())
	}
	stride := d.stride(dst.Dx())
	data := make([]byte, stride*dst.Dy())
	copyRows(data, stride, img.Pix[img.PixOffset(from.X, from.Y):], img.BytesPerLine,
		dst.Dx()*img.BytesPerPixel, dst.Dy())
	return d.putImage(dst, data, stride)
}

// ReadRGB reads r back as a 3-channel pixbuf.
func (d *Drawable) ReadRGB(r image.Rectangle) (*blit.Pixbuf, error) {
	data, stride, err := d.getImage(r)
	if err != nil {
		return nil, err
	}
	pb := blit.NewPixbuf(r.Dx(), r.Dy(), false)
	d.layout.ToRGB(pb.Pix, pb.Stride, data, stride, r.Dx(), r.Dy())
	return pb, nil
}

// DrawRGB converts the pixels of pb starting at src and writes them to dst.
func (d *Drawable) DrawRGB(dst image.Rectangle, pb *blit.Pixbuf, src image.Point, dither blit.Dither, phase image.Point) error {
	stride := d.stride(dst.Dx())
	data := make([]byte, stride*dst.Dy())
	d.layout.FromRGB(data, stride, pb.Pix[pb.PixOffset(src.X, src.Y):], pb.Stride, pb.Channels,
		dst.Dx(), dst.Dy(), dst.Min, d.layout.Dithers(dither), phase)
	return d.putImage(dst, data, stride)
}

func (d *Drawable) stride(width int) int {
	return scanlineStride(width, d.visual.BitsPerPixel, d.pad)
}

func (d *Drawable) getImage(r image.Rectangle) ([]byte, int, error) {
	reply, err := xproto.GetImage(d.dpy.conn, xproto.ImageFormatZPixmap, d.id,
		int16(r.Min.X), int16(r.Min.Y), uint16(r.Dx()), uint16(r.Dy()), ^uint32(0)).Reply()
	if err != nil {
		return nil, 0, fmt.Errorf("x11: get image %v: %w", r, err)
	}
	stride := d.stride(r.Dx())
	if len(reply.Data) < stride*r.Dy() {
		return nil, 0, fmt.Errorf("x11: get image %v: short reply of %d bytes", r, len(reply.Data))
	}
	return reply.Data, stride, nil
}

// putImage sends data in as many PutImage requests as the server's request
// size limit needs.
func (d *Drawable) putImage(r image.Rectangle, data []byte, stride int) error {
	rows := rowsPerRequest(d.dpy.maxRequestBytes(), stride)
	if rows == 0 {
		return fmt.Errorf("x11: put image %v: row of %d bytes exceeds the request limit", r, stride)
	}
	if rows < r.Dy() {
		blit.Logger().Debug("x11: splitting put image", "rect", r, "rowsPerRequest", rows)
	}
	for y := 0; y < r.Dy(); y += rows {
		n := min(rows, r.Dy()-y)
		err := xproto.PutImageChecked(d.dpy.conn, xproto.ImageFormatZPixmap, d.id, d.gc,
			uint16(r.Dx()), uint16(n), int16(r.Min.X), int16(r.Min.Y+y), 0, d.depth,
			data[y*stride:(y+n)*stride]).Check()
		if err != nil {
			return fmt.Errorf("x11: put image %v: %w", r, err)
		}
	}
	return nil
}
