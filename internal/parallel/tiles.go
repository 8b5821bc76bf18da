package parallel

import "image"

// Tiles partitions r into tiles of at most tileW x tileH pixels in row-major
// order. Tiles in the last column and row may be narrower or shorter. The
// tiles never overlap and their union is exactly r.
//
// Tiles returns nil for an empty rectangle or non-positive tile size.
func Tiles(r image.Rectangle, tileW, tileH int) []image.Rectangle {
	if r.Empty() || tileW <= 0 || tileH <= 0 {
		return nil
	}

	cols := (r.Dx() + tileW - 1) / tileW
	rows := (r.Dy() + tileH - 1) / tileH
	tiles := make([]image.Rectangle, 0, cols*rows)

	for y := r.Min.Y; y < r.Max.Y; y += tileH {
		y1 := min(y+tileH, r.Max.Y)
		for x := r.Min.X; x < r.Max.X; x += tileW {
			x1 := min(x+tileW, r.Max.X)
			tiles = append(tiles, image.Rect(x, y, x1, y1))
		}
	}
	return tiles
}
