package blit

import "image"

// Region is a set of rectangles.
//
// Region keeps only what a blit needs: intersection with a rectangle and the
// bounding box of the result. The rectangles may overlap; the region is their
// union.
type Region struct {
	rects []image.Rectangle
}

// NewRegion creates a region covering the union of rects. Empty rectangles
// are dropped.
func NewRegion(rects ...image.Rectangle) *Region {
	r := &Region{rects: make([]image.Rectangle, 0, len(rects))}
	for _, rc := range rects {
		rc = rc.Canon()
		if !rc.Empty() {
			r.rects = append(r.rects, rc)
		}
	}
	return r
}

// Rects returns a copy of the region's rectangles.
func (r *Region) Rects() []image.Rectangle {
	if r == nil {
		return nil
	}
	return append([]image.Rectangle(nil), r.rects...)
}

// Empty reports whether the region covers no pixels.
func (r *Region) Empty() bool {
	return r == nil || len(r.rects) == 0
}

// IntersectRect returns the part of the region inside rc.
func (r *Region) IntersectRect(rc image.Rectangle) *Region {
	out := &Region{}
	if r == nil {
		return out
	}
	for _, a := range r.rects {
		if i := a.Intersect(rc); !i.Empty() {
			out.rects = append(out.rects, i)
		}
	}
	return out
}

// Intersect returns the region covered by both r and other.
func (r *Region) Intersect(other *Region) *Region {
	out := &Region{}
	if r == nil || other == nil {
		return out
	}
	for _, a := range r.rects {
		for _, b := range other.rects {
			if i := a.Intersect(b); !i.Empty() {
				out.rects = append(out.rects, i)
			}
		}
	}
	return out
}

// ClipBox returns the smallest rectangle containing the region.
func (r *Region) ClipBox() image.Rectangle {
	var box image.Rectangle
	if r == nil {
		return box
	}
	for _, rc := range r.rects {
		box = box.Union(rc)
	}
	return box
}

// Contains reports whether the point is inside the region.
func (r *Region) Contains(p image.Point) bool {
	if r == nil {
		return false
	}
	for _, rc := range r.rects {
		if p.In(rc) {
			return true
		}
	}
	return false
}
