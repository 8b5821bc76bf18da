package blit

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/blit/internal/blend"
	"github.com/gogpu/blit/internal/parallel"
	"github.com/gogpu/blit/scratch"
)

// Blitter draws pixbufs onto drawables.
//
// A Blitter keeps no state between calls apart from its configuration and
// worker pool; every buffer it uses is scoped to one Draw.
//
// Thread safety: Blitter is safe for concurrent use. Concurrent draws to
// overlapping areas of the same drawable must be excluded by the caller.
type Blitter struct {
	cache    *scratch.Cache
	pool     *parallel.WorkerPool
	fastPath bool
}

// New creates a Blitter.
func New(opts ...Option) *Blitter {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.cache == nil {
		o.cache = scratch.Default()
	}
	return &Blitter{
		cache:    o.cache,
		pool:     o.newPool(),
		fastPath: o.fastPath,
	}
}

// Close stops the tile workers, if any.
func (b *Blitter) Close() {
	if b.pool != nil {
		b.pool.Close()
	}
}

// Draw blits the area of pb described by req onto d.
//
// Sources without alpha are converted and transferred in one DrawRGB call.
// Sources with alpha are composited either tile by tile in the native format
// of d (fast path) or against a 24-bit read back of the whole target
// (slow path), see Plan.
//
// Errors wrapping ErrPrecondition are returned before anything is drawn.
// Backend failures are returned as *BackendError; in the fast path some
// tiles may already have been written.
func (b *Blitter) Draw(d Drawable, pb *Pixbuf, req Request) error {
	p, err := b.Plan(d, pb, req)
	if err != nil {
		return err
	}

	switch p.Path {
	case PathNone:
		return nil
	case PathDirect:
		Logger().Debug("blit: direct transfer", "target", p.Target, "dither", req.Dither)
		if err = d.DrawRGB(p.Target, pb, p.Src, req.Dither, req.DitherPhase); err != nil {
			err = &BackendError{Op: "draw-rgb", Rect: p.Target, Err: err}
		}
	case PathFast:
		err = b.drawTiles(d, pb, p)
	default:
		err = b.drawStaged(d, pb, p, req)
	}

	var be *BackendError
	if errors.As(err, &be) {
		Logger().Warn("blit: backend failure", "op", be.Op, "rect", be.Rect, "err", be.Err)
	}
	return err
}

// drawTiles composites the plan tile by tile in the native format.
func (b *Blitter) drawTiles(d Drawable, pb *Pixbuf, p Plan) error {
	kernel := p.Format.kernel()
	bpp := p.Format.BytesPerPixel()
	tw, th := b.cache.MaxSize()
	tiles := parallel.Tiles(p.Target, tw, th)

	Logger().Debug("blit: fast path",
		"target", p.Target,
		"format", p.Format,
		"tiles", len(tiles))

	tasks := make([]func() error, len(tiles))
	for i, tile := range tiles {
		src := p.Src.Add(tile.Min.Sub(p.Target.Min))
		tasks[i] = func() error {
			return b.drawTile(d, pb, src, tile, bpp, kernel)
		}
	}

	if b.pool != nil {
		return b.pool.Run(tasks)
	}
	for _, task := range tasks {
		if err := task(); err != nil {
			return err
		}
	}
	return nil
}

// drawTile runs one read-composite-write step through a scratch image.
func (b *Blitter) drawTile(d Drawable, pb *Pixbuf, src image.Point, tile image.Rectangle, bpp int, kernel blend.Kernel) error {
	img, x0, y0 := b.cache.Acquire(tile.Dx(), tile.Dy(), bpp)
	if img == nil {
		return fmt.Errorf("blit: scratch cache refused %dx%d tile", tile.Dx(), tile.Dy())
	}
	defer b.cache.Release(img)

	at := image.Pt(x0, y0)
	if err := d.CopyToImage(img, tile, at); err != nil {
		return &BackendError{Op: "copy-to-image", Rect: tile, Err: err}
	}

	kernel(pb.Pix[pb.PixOffset(src.X, src.Y):], pb.Stride,
		img.Pix[img.PixOffset(x0, y0):], img.BytesPerLine,
		tile.Dx(), tile.Dy())

	if err := d.DrawImage(img, at, tile); err != nil {
		return &BackendError{Op: "draw-image", Rect: tile, Err: err}
	}
	return nil
}

// drawStaged composites against a 24-bit copy of the target and writes it
// back in one transfer.
func (b *Blitter) drawStaged(d Drawable, pb *Pixbuf, p Plan, req Request) error {
	Logger().Debug("blit: slow path",
		"target", p.Target,
		"format", p.Format,
		"dither", req.Dither)

	w, h := p.Target.Dx(), p.Target.Dy()
	staging, err := d.ReadRGB(p.Target)
	if err != nil {
		return &BackendError{Op: "read-rgb", Rect: p.Target, Err: err}
	}
	if staging == nil || staging.Channels != 3 || staging.Width < w || staging.Height < h {
		return &BackendError{Op: "read-rgb", Rect: p.Target, Err: errShortRead}
	}

	blend.CompositeRGB24(pb.Pix[pb.PixOffset(p.Src.X, p.Src.Y):], pb.Stride,
		staging.Pix, staging.Stride, w, h)

	if err := d.DrawRGB(p.Target, staging, image.Point{}, req.Dither, req.DitherPhase); err != nil {
		return &BackendError{Op: "draw-rgb", Rect: p.Target, Err: err}
	}
	return nil
}

var errShortRead = errors.New("drawable returned a short RGB read back")

var defaultBlitter = New()

// DrawPixbuf blits the size.X x size.Y area of pb starting at src onto d at
// dst, using 128x128 tiles on the calling goroutine. A size component of
// Unspecified selects the full pixbuf extent. dither and phase are passed
// through to every RGB transfer.
func DrawPixbuf(d Drawable, pb *Pixbuf, src, dst, size image.Point, dither Dither, phase image.Point) error {
	return defaultBlitter.Draw(d, pb, Request{
		Src:         src,
		Dst:         dst,
		Width:       size.X,
		Height:      size.Y,
		Dither:      dither,
		DitherPhase: phase,
	})
}
