// Command blitview stamps an image onto a window wherever the mouse is
// clicked, using the blit staging path on an Ebitengine frame.
//
// Keys: D cycles the dither mode, C clears the canvas, Escape quits.
package main

import (
	"flag"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/gogpu/blit"
	"github.com/gogpu/blit/backend/ebitenview"
)

type viewer struct {
	view   *ebitenview.View
	pb     *blit.Pixbuf
	dither blit.Dither
}

func newViewer(w, h int, pb *blit.Pixbuf) (*viewer, error) {
	view, err := ebitenview.New(w, h)
	if err != nil {
		return nil, err
	}
	v := &viewer{view: view, pb: pb, dither: blit.DitherNormal}
	v.clear()
	return v, nil
}

// clear paints a checkerboard so alpha is visible.
func (v *viewer) clear() {
	w, h := v.view.Size()
	bg := blit.NewPixbuf(w, h, false)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := uint8(0x60)
			if (x/16+y/16)%2 == 0 {
				c = 0x90
			}
			p := bg.Pix[bg.PixOffset(x, y):]
			p[0], p[1], p[2] = c, c, c
		}
	}
	if err := blit.DrawPixbuf(v.view, bg, image.Point{}, image.Point{},
		image.Pt(blit.Unspecified, blit.Unspecified), blit.DitherNone, image.Point{}); err != nil {
		blit.Logger().Warn("blitview: clear failed", "err", err)
	}
}

// stamp centers the pixbuf on p.
func (v *viewer) stamp(p image.Point) error {
	dst := p.Sub(image.Pt(v.pb.Width/2, v.pb.Height/2))
	return blit.DrawPixbuf(v.view, v.pb, image.Point{}, dst,
		image.Pt(blit.Unspecified, blit.Unspecified), v.dither, image.Point{})
}

func (v *viewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyD) {
		v.dither = (v.dither + 1) % 3
		ebiten.SetWindowTitle("blitview: dither " + v.dither.String())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		v.clear()
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		if err := v.stamp(image.Pt(ebiten.CursorPosition())); err != nil {
			return err
		}
	}
	return nil
}

func (v *viewer) Draw(screen *ebiten.Image) {
	v.view.Present(screen)
}

func (v *viewer) Layout(_, _ int) (int, int) {
	return v.view.Size()
}

func main() {
	var (
		src     = flag.String("src", "", "image to stamp")
		width   = flag.Int("width", 800, "window width")
		height  = flag.Int("height", 600, "window height")
		verbose = flag.Bool("v", false, "log blit decisions to stderr")
	)
	flag.Parse()

	if *verbose {
		blit.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	if *src == "" {
		log.Fatal("-src is required")
	}

	f, err := os.Open(*src)
	if err != nil {
		log.Fatal(err)
	}
	img, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		log.Fatalf("decode %s: %v", *src, err)
	}

	v, err := newViewer(*width, *height, blit.PixbufFromImage(img))
	if err != nil {
		log.Fatal(err)
	}

	ebiten.SetWindowSize(*width, *height)
	ebiten.SetWindowTitle("blitview: dither " + v.dither.String())
	if err := ebiten.RunGame(v); err != nil {
		log.Fatal(err)
	}
}
