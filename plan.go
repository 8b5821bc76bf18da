package blit

import (
	"fmt"
	"image"
)

// Path is the strategy chosen for one blit.
type Path uint8

const (
	// PathNone means nothing is left to draw after clipping.
	PathNone Path = iota

	// PathDirect transfers an opaque source with a single DrawRGB.
	PathDirect

	// PathFast composites tile by tile directly in the native format.
	PathFast

	// PathSlow composites against a 24-bit read back of the target.
	PathSlow
)

// String returns a string representation of the path.
func (p Path) String() string {
	switch p {
	case PathNone:
		return "none"
	case PathDirect:
		return "direct"
	case PathFast:
		return "fast"
	case PathSlow:
		return "slow"
	default:
		return fmt.Sprintf("Path(%d)", uint8(p))
	}
}

// Unspecified as Request.Width or Request.Height selects the full source
// extent.
const Unspecified = -1

// Request describes one pixbuf blit.
type Request struct {
	// Src is the top-left source pixel to read.
	Src image.Point

	// Dst is where Src lands on the destination. It may be negative.
	Dst image.Point

	// Width and Height of the area to draw. Unspecified selects the pixbuf
	// width or height.
	Width  int
	Height int

	// Dither is the quantization mode for writes to low-depth drawables.
	Dither Dither

	// DitherPhase shifts the dither pattern, which is otherwise anchored to
	// destination pixel positions. It is passed to the drawable unchanged,
	// so calls sharing a phase tile into one continuous pattern.
	DitherPhase image.Point
}

// Plan is the outcome of clipping and path selection for a Request.
type Plan struct {
	// Target is the destination rectangle that will be touched.
	Target image.Rectangle

	// Src is the source pixel drawn at Target.Min.
	Src image.Point

	// Path is the chosen strategy.
	Path Path

	// Format is the destination layout used by PathFast.
	Format PixelFormat
}

// Plan validates req, clips it against d and selects a path, without
// touching any pixels. Draw executes the same plan.
//
// The destination size and clip region are sampled once here; a drawable
// resized while the blit runs gives undefined pixels, not an error.
func (b *Blitter) Plan(d Drawable, pb *Pixbuf, req Request) (Plan, error) {
	if d == nil {
		return Plan{}, ErrNoDrawable
	}
	if err := pb.Validate(); err != nil {
		return Plan{}, err
	}

	width, height := req.Width, req.Height
	if width == Unspecified {
		width = pb.Width
	}
	if height == Unspecified {
		height = pb.Height
	}
	if width < 0 || height < 0 {
		return Plan{}, preconditionf("size %dx%d", width, height)
	}
	src := image.Rectangle{Min: req.Src, Max: req.Src.Add(image.Pt(width, height))}
	if src.Min.X < 0 || src.Min.Y < 0 || src.Max.X > pb.Width || src.Max.Y > pb.Height {
		return Plan{}, preconditionf("source rectangle %v outside pixbuf %v", src, pb.Bounds())
	}

	// Clip to the destination edges, moving the source origin along.
	srcPt, dst := req.Src, req.Dst
	if dst.X < 0 {
		srcPt.X -= dst.X
		width += dst.X
		dst.X = 0
	}
	if dst.Y < 0 {
		srcPt.Y -= dst.Y
		height += dst.Y
		dst.Y = 0
	}
	dw, dh := d.Size()
	if dst.X+width > dw {
		width = dw - dst.X
	}
	if dst.Y+height > dh {
		height = dh - dst.Y
	}
	if width <= 0 || height <= 0 {
		return Plan{}, nil
	}
	target := image.Rectangle{Min: dst, Max: dst.Add(image.Pt(width, height))}

	// Clip to the clip region.
	if clip := d.ClipRegion(); clip != nil {
		box := clip.IntersectRect(target).ClipBox()
		if box.Empty() {
			return Plan{}, nil
		}
		srcPt = srcPt.Add(box.Min.Sub(target.Min))
		target = box
	}

	plan := Plan{Target: target, Src: srcPt, Path: PathDirect}
	if !pb.HasAlpha() {
		return plan, nil
	}

	plan.Path = PathSlow
	if vis := d.Visual(); vis != nil {
		plan.Format = vis.Format()
	}
	if b.fastPath && plan.Format.directComposite() &&
		!(req.Dither == DitherMax && d.Depth() != 24) {
		plan.Path = PathFast
	}
	return plan, nil
}
