// Command blitdemo composites an image onto a solid background in a chosen
// native pixel format and writes the result to a file or shows it in an X
// window.
//
// Usage:
//
//	blitdemo -src logo.png -dst out.webp -visual rgb565 -bg #0000ff -x 10 -y 10 -dither max
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/jezek/xgb/xproto"
	"golang.org/x/image/draw"
	"golang.org/x/term"

	"github.com/gogpu/blit"
	"github.com/gogpu/blit/backend"
	"github.com/gogpu/blit/backend/memory"
	"github.com/gogpu/blit/backend/x11"
	"github.com/gogpu/blit/scratch"
)

type config struct {
	src     string
	dst     string
	format  string
	visual  string
	width   int
	height  int
	bg      string
	x, y    int
	dither  string
	phase   image.Point
	tile    int
	workers int
	scale   float64
	opacity int
	slow    bool
	x11     bool
	display string
	verbose bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.src, "src", "", "source image (png, jpeg, gif, bmp, webp, tga)")
	flag.StringVar(&cfg.dst, "dst", "blit.png", "output file, or - for stdout")
	flag.StringVar(&cfg.format, "format", "", "output format (png, webp, tga); default from -dst")
	flag.StringVar(&cfg.visual, "visual", "xrgb8888", "destination visual: rgb565, rgb565be, xrgb8888, xrgb8888be, rgb888")
	flag.IntVar(&cfg.width, "width", 0, "destination width (default: source width + 2*x)")
	flag.IntVar(&cfg.height, "height", 0, "destination height (default: source height + 2*y)")
	flag.StringVar(&cfg.bg, "bg", "#202020", "background color")
	flag.IntVar(&cfg.x, "x", 16, "destination x")
	flag.IntVar(&cfg.y, "y", 16, "destination y")
	flag.StringVar(&cfg.dither, "dither", "normal", "dither mode: none, normal, max")
	flag.IntVar(&cfg.phase.X, "phase-x", 0, "dither phase x")
	flag.IntVar(&cfg.phase.Y, "phase-y", 0, "dither phase y")
	flag.IntVar(&cfg.tile, "tile", scratch.DefaultMaxWidth, "fast path tile size")
	flag.IntVar(&cfg.workers, "workers", 1, "tile workers")
	flag.Float64Var(&cfg.scale, "scale", 1, "scale the source before blitting")
	flag.IntVar(&cfg.opacity, "opacity", 255, "multiply source alpha by opacity/255")
	flag.BoolVar(&cfg.slow, "slow", false, "disable the fast path")
	flag.BoolVar(&cfg.x11, "x11", false, "show the result in an X window instead of writing a file")
	flag.StringVar(&cfg.display, "display", "", "X display (default $DISPLAY)")
	flag.BoolVar(&cfg.verbose, "v", false, "log blit decisions to stderr")
	flag.Parse()

	if cfg.verbose {
		blit.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}

func run(cfg config) error {
	if cfg.src == "" {
		return errors.New("-src is required")
	}
	dither, err := blit.ParseDither(cfg.dither)
	if err != nil {
		return err
	}
	bg, err := parseColor(cfg.bg)
	if err != nil {
		return err
	}

	img, err := loadImage(cfg.src)
	if err != nil {
		return err
	}
	if cfg.scale != 1 {
		img = scaleImage(img, cfg.scale)
	}
	pb := blit.PixbufFromImage(img)
	applyOpacity(pb, cfg.opacity)

	w, h := cfg.width, cfg.height
	if w <= 0 {
		w = pb.Width + 2*max(cfg.x, 0)
	}
	if h <= 0 {
		h = pb.Height + 2*max(cfg.y, 0)
	}

	b := blit.New(
		blit.WithScratchCache(scratch.NewCache(cfg.tile, cfg.tile)),
		blit.WithWorkers(cfg.workers),
		blit.WithFastPath(!cfg.slow),
	)
	defer b.Close()

	paint := func(d blit.Drawable) error {
		if err := fill(d, bg); err != nil {
			return err
		}
		return b.Draw(d, pb, blit.Request{
			Dst:         image.Pt(cfg.x, cfg.y),
			Width:       blit.Unspecified,
			Height:      blit.Unspecified,
			Dither:      dither,
			DitherPhase: cfg.phase,
		})
	}

	if cfg.x11 {
		return show(cfg, w, h, paint)
	}
	return render(cfg, w, h, paint)
}

// render draws into memory and encodes the result.
func render(cfg config, w, h int, paint func(blit.Drawable) error) error {
	format, err := outputFormat(cfg.dst, cfg.format)
	if err != nil {
		return err
	}
	v, err := parseVisual(cfg.visual)
	if err != nil {
		return err
	}
	d, err := memory.New(w, h, v)
	if err != nil {
		return err
	}
	if err := paint(d); err != nil {
		return err
	}

	if cfg.dst == "-" {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Errorf("refusing to write %s data to a terminal", format)
		}
		return encodeImage(os.Stdout, d.Snapshot(), format)
	}
	f, err := os.Create(cfg.dst)
	if err != nil {
		return err
	}
	if err := encodeImage(f, d.Snapshot(), format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// show opens an X window and redraws it on every expose until the
// connection closes.
func show(cfg config, w, h int, paint func(blit.Drawable) error) error {
	t, err := backend.Open("x11", backend.Options{
		Width:   w,
		Height:  h,
		Display: cfg.display,
		Title:   "blitdemo: " + cfg.src,
	})
	if err != nil {
		return err
	}
	defer t.Close()

	win, ok := t.(x11.Target)
	if !ok {
		return fmt.Errorf("unexpected x11 target %T", t)
	}
	conn := win.Display().Conn()
	for {
		ev, xerr := conn.WaitForEvent()
		if ev == nil && xerr == nil {
			return nil
		}
		if xerr != nil {
			return fmt.Errorf("x11: %v", xerr)
		}
		if _, ok := ev.(xproto.ExposeEvent); !ok && !win.HandleEvent(ev) {
			continue
		}
		if err := paint(win); err != nil {
			return err
		}
	}
}

// fill paints the whole drawable with c through an opaque blit.
func fill(d blit.Drawable, c color.NRGBA) error {
	w, h := d.Size()
	solid := blit.NewPixbuf(w, h, false)
	solid.Fill(c)
	return blit.DrawPixbuf(d, solid, image.Point{}, image.Point{},
		image.Pt(blit.Unspecified, blit.Unspecified), blit.DitherNone, image.Point{})
}

func scaleImage(img image.Image, s float64) image.Image {
	b := img.Bounds()
	w := max(1, int(float64(b.Dx())*s))
	h := max(1, int(float64(b.Dy())*s))
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(out, out.Bounds(), img, b, draw.Src, nil)
	return out
}

func applyOpacity(pb *blit.Pixbuf, opacity int) {
	if opacity >= 255 || !pb.HasAlpha() {
		return
	}
	opacity = max(opacity, 0)
	for y := 0; y < pb.Height; y++ {
		row := pb.Pix[y*pb.Stride:]
		for x := 0; x < pb.Width; x++ {
			a := &row[x*4+3]
			*a = uint8((int(*a)*opacity + 127) / 255)
		}
	}
}

func parseVisual(name string) (blit.Visual, error) {
	switch strings.ToLower(name) {
	case "rgb565":
		return blit.VisualRGB565(blit.LSBFirst), nil
	case "rgb565be":
		return blit.VisualRGB565(blit.MSBFirst), nil
	case "xrgb8888":
		return blit.VisualXRGB8888(blit.LSBFirst), nil
	case "xrgb8888be":
		return blit.VisualXRGB8888(blit.MSBFirst), nil
	case "rgb888":
		return blit.VisualRGB888(blit.MSBFirst), nil
	default:
		return blit.Visual{}, fmt.Errorf("unknown visual %q", name)
	}
}

// parseColor accepts #rgb and #rrggbb.
func parseColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
