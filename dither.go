package blit

import "fmt"

// Dither selects how RGB data is quantized when written to a drawable with
// fewer than 8 bits per channel.
type Dither uint8

const (
	// DitherNone truncates each channel.
	DitherNone Dither = iota

	// DitherNormal dithers on displays of depth 8 or less.
	DitherNormal

	// DitherMax dithers on displays of depth 16 or less.
	DitherMax
)

// String returns a string representation of the dither mode.
func (d Dither) String() string {
	switch d {
	case DitherNone:
		return "none"
	case DitherNormal:
		return "normal"
	case DitherMax:
		return "max"
	default:
		return fmt.Sprintf("Dither(%d)", uint8(d))
	}
}

// ParseDither converts "none", "normal" or "max" to a Dither.
func ParseDither(s string) (Dither, error) {
	switch s {
	case "none", "":
		return DitherNone, nil
	case "normal":
		return DitherNormal, nil
	case "max":
		return DitherMax, nil
	default:
		return DitherNone, fmt.Errorf("blit: unknown dither mode %q", s)
	}
}

// Applies reports whether the mode dithers on a drawable of the given depth.
func (d Dither) Applies(depth int) bool {
	switch d {
	case DitherNormal:
		return depth <= 8
	case DitherMax:
		return depth <= 16
	default:
		return false
	}
}
