package main

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	// Decoders registered with image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// loadImage decodes a png, jpeg, gif, bmp, webp or tga file.
func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// TGA has no magic number, so it is chosen by extension.
	if strings.EqualFold(filepath.Ext(path), ".tga") {
		img, err := tga.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		return img, nil
	}
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// outputFormat returns the encoder name for a destination path. "-" (stdout)
// is written as PNG unless format overrides it.
func outputFormat(path, format string) (string, error) {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
		if path == "-" {
			format = "png"
		}
	}
	switch format {
	case "png", "webp", "tga":
		return format, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (want png, webp or tga)", format)
	}
}

// encodeImage writes img to w in the named format.
func encodeImage(w io.Writer, img image.Image, format string) error {
	switch format {
	case "png":
		return png.Encode(w, img)
	case "webp":
		return nativewebp.Encode(w, img, nil)
	case "tga":
		return tga.Encode(w, img)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}
