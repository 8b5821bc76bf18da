package blit_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"log/slog"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/gogpu/blit"
	"github.com/gogpu/blit/backend/memory"
	"github.com/gogpu/blit/scratch"
)

var full = image.Pt(blit.Unspecified, blit.Unspecified)

var visuals = []struct {
	name string
	v    blit.Visual
	mask uint32
}{
	{"565 lsb", blit.VisualRGB565(blit.LSBFirst), 0xffff},
	{"565 msb", blit.VisualRGB565(blit.MSBFirst), 0xffff},
	{"x888 lsb", blit.VisualXRGB8888(blit.LSBFirst), 0xffffff},
	{"x888 msb", blit.VisualXRGB8888(blit.MSBFirst), 0xffffff},
}

func newTarget(t *testing.T, w, h int, v blit.Visual, opts ...memory.Option) *memory.Drawable {
	t.Helper()
	d, err := memory.New(w, h, v, opts...)
	if err != nil {
		t.Fatalf("memory.New() error = %v", err)
	}
	return d
}

func fillRandom(d *memory.Drawable, mask uint32, rng *rand.Rand) {
	w, h := d.Size()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d.SetPixel(x, y, rng.Uint32()&mask)
		}
	}
}

func randomPixbuf(w, h int, rng *rand.Rand) *blit.Pixbuf {
	pb := blit.NewPixbuf(w, h, true)
	for i := range pb.Pix {
		pb.Pix[i] = byte(rng.UintN(256))
	}
	return pb
}

func pix(d *memory.Drawable) []byte {
	p, _ := d.Pix()
	return append([]byte(nil), p...)
}

func TestDrawPixbuf565Oracle(t *testing.T) {
	for _, order := range []blit.ByteOrder{blit.LSBFirst, blit.MSBFirst} {
		for _, fast := range []bool{true, false} {
			d := newTarget(t, 4, 4, blit.VisualRGB565(order))
			d.Fill(color.RGBA{B: 0xff, A: 0xff})

			pb := blit.NewPixbuf(4, 4, true)
			pb.Fill(color.NRGBA{R: 255, A: 128})

			b := blit.New(blit.WithFastPath(fast))
			if err := b.Draw(d, pb, blit.Request{Width: blit.Unspecified, Height: blit.Unspecified}); err != nil {
				t.Fatalf("Draw() error = %v", err)
			}
			for y := 0; y < 4; y++ {
				for x := 0; x < 4; x++ {
					if got := d.PixelAt(x, y); got != 0x800F {
						t.Errorf("%v fast=%v: pixel (%d,%d) = %#04x, want 0x800f", order, fast, x, y, got)
					}
				}
			}
		}
	}
}

// TestOpaqueOverCompositedTiles draws a translucent source and then an opaque
// one over a rectangle one and a half tiles wide, with small and large tiles.
func TestOpaqueOverCompositedTiles(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	translucent := randomPixbuf(12, 12, rng)
	for i := 3; i < len(translucent.Pix); i += 4 {
		translucent.Pix[i] = byte(1 + rng.UintN(254))
	}
	opaque := blit.NewPixbuf(12, 12, false)
	for i := range opaque.Pix {
		opaque.Pix[i] = byte(rng.UintN(256))
	}

	v := blit.VisualXRGB8888(blit.LSBFirst)
	tiled := newTarget(t, 16, 16, v)
	single := newTarget(t, 16, 16, v)
	fillRandom(tiled, 0xffffff, rand.New(rand.NewPCG(1, 2)))
	fillRandom(single, 0xffffff, rand.New(rand.NewPCG(1, 2)))

	req := blit.Request{Dst: image.Pt(2, 3), Width: blit.Unspecified, Height: blit.Unspecified}
	for _, tt := range []struct {
		d *memory.Drawable
		b *blit.Blitter
	}{
		{tiled, blit.New(blit.WithScratchCache(scratch.NewCache(8, 8)))},
		{single, blit.New(blit.WithScratchCache(scratch.NewCache(64, 64)))},
	} {
		if err := tt.b.Draw(tt.d, translucent, req); err != nil {
			t.Fatalf("Draw(translucent) error = %v", err)
		}
		if err := tt.b.Draw(tt.d, opaque, req); err != nil {
			t.Fatalf("Draw(opaque) error = %v", err)
		}
	}

	if !bytes.Equal(pix(tiled), pix(single)) {
		t.Fatal("8x8 tiles and a single tile produced different pixels")
	}
	for y := 0; y < 12; y++ {
		for x := 0; x < 12; x++ {
			c := opaque.At(x, y)
			want := uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
			if got := tiled.PixelAt(x+2, y+3); got != want {
				t.Fatalf("pixel (%d,%d) = %#06x, want %#06x", x+2, y+3, got, want)
			}
		}
	}
}

func TestDrawPixbufNegativeDestination(t *testing.T) {
	d := newTarget(t, 10, 10, blit.VisualXRGB8888(blit.LSBFirst))
	pb := blit.NewPixbuf(4, 4, false)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			pb.Set(x, y, color.NRGBA{R: uint8(x + 1), G: uint8(y + 1), B: 0x77, A: 0xff})
		}
	}

	err := blit.DrawPixbuf(d, pb, image.Point{}, image.Pt(-2, -2), image.Pt(4, 4), blit.DitherNone, image.Point{})
	if err != nil {
		t.Fatalf("DrawPixbuf() error = %v", err)
	}

	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			var want uint32
			if x < 2 && y < 2 {
				want = uint32(x+3)<<16 | uint32(y+3)<<8 | 0x77
			}
			if got := d.PixelAt(x, y); got != want {
				t.Errorf("pixel (%d,%d) = %#06x, want %#06x", x, y, got, want)
			}
		}
	}
}

func TestDrawPixbufOutsideIsNoOp(t *testing.T) {
	tests := []struct {
		name string
		dst  image.Point
		size image.Point
	}{
		{"right of drawable", image.Pt(20, 0), full},
		{"above drawable", image.Pt(0, -8), full},
		{"zero width", image.Pt(0, 0), image.Pt(0, 4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTarget(t, 8, 8, blit.VisualRGB565(blit.LSBFirst))
			pb := blit.NewPixbuf(8, 8, true)
			pb.Fill(color.NRGBA{R: 255, A: 255})
			if err := blit.DrawPixbuf(d, pb, image.Point{}, tt.dst, tt.size, blit.DitherNone, image.Point{}); err != nil {
				t.Fatalf("DrawPixbuf() error = %v", err)
			}
			if st := d.Stats(); st != (memory.Stats{}) {
				t.Errorf("drawable was touched: %+v", st)
			}
		})
	}
}

func TestDrawPixbufAlphaExtremes(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for _, tv := range visuals {
		for _, fast := range []bool{true, false} {
			d := newTarget(t, 9, 5, tv.v)
			fillRandom(d, tv.mask, rng)
			before := pix(d)

			pb := randomPixbuf(9, 5, rng)
			for i := 3; i < len(pb.Pix); i += 4 {
				pb.Pix[i] = 0
			}
			b := blit.New(blit.WithFastPath(fast))
			if err := b.Draw(d, pb, blit.Request{Width: blit.Unspecified, Height: blit.Unspecified}); err != nil {
				t.Fatalf("Draw() error = %v", err)
			}
			if !bytes.Equal(before, pix(d)) {
				t.Errorf("%s fast=%v: alpha 0 changed the destination", tv.name, fast)
			}

			for i := 3; i < len(pb.Pix); i += 4 {
				pb.Pix[i] = 255
			}
			if err := b.Draw(d, pb, blit.Request{Width: blit.Unspecified, Height: blit.Unspecified}); err != nil {
				t.Fatalf("Draw() error = %v", err)
			}
			opaque := blit.NewPixbuf(9, 5, false)
			for y := 0; y < 5; y++ {
				for x := 0; x < 9; x++ {
					opaque.Set(x, y, pb.At(x, y))
				}
			}
			want := newTarget(t, 9, 5, tv.v)
			if err := want.DrawRGB(want.Bounds(), opaque, image.Point{}, blit.DitherNone, image.Point{}); err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(pix(want), pix(d)) {
				t.Errorf("%s fast=%v: alpha 255 is not a plain copy", tv.name, fast)
			}
		}
	}
}

func TestFastAndSlowPathsAgree(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	for _, tv := range visuals {
		t.Run(tv.name, func(t *testing.T) {
			fastDst := newTarget(t, 37, 21, tv.v)
			fillRandom(fastDst, tv.mask, rng)
			slowDst := newTarget(t, 37, 21, tv.v)
			p, _ := fastDst.Pix()
			q, _ := slowDst.Pix()
			copy(q, p)

			pb := randomPixbuf(40, 30, rng)
			req := blit.Request{Src: image.Pt(2, 3), Dst: image.Pt(-1, 4), Width: 35, Height: 20}

			if err := blit.New().Draw(fastDst, pb, req); err != nil {
				t.Fatalf("fast Draw() error = %v", err)
			}
			if err := blit.New(blit.WithFastPath(false)).Draw(slowDst, pb, req); err != nil {
				t.Fatalf("slow Draw() error = %v", err)
			}
			if fastDst.Stats().CopyToImage == 0 || slowDst.Stats().ReadRGB != 1 {
				t.Fatalf("paths not taken: fast %+v, slow %+v", fastDst.Stats(), slowDst.Stats())
			}
			if !bytes.Equal(pix(fastDst), pix(slowDst)) {
				t.Error("fast and slow paths produced different pixels")
			}
		})
	}
}

func TestTiledMatchesSinglePass(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	for _, tv := range visuals {
		t.Run(tv.name, func(t *testing.T) {
			small := newTarget(t, 30, 20, tv.v)
			fillRandom(small, tv.mask, rng)
			large := newTarget(t, 30, 20, tv.v)
			p, _ := small.Pix()
			q, _ := large.Pix()
			copy(q, p)

			pb := randomPixbuf(30, 20, rng)
			req := blit.Request{Width: blit.Unspecified, Height: blit.Unspecified}

			if err := blit.New(blit.WithScratchCache(scratch.NewCache(8, 8))).Draw(small, pb, req); err != nil {
				t.Fatal(err)
			}
			if err := blit.New(blit.WithScratchCache(scratch.NewCache(64, 64))).Draw(large, pb, req); err != nil {
				t.Fatal(err)
			}
			if n := small.Stats().CopyToImage; n != 12 {
				t.Errorf("8x8 tiles over 30x20: %d tiles, want 12", n)
			}
			if n := large.Stats().CopyToImage; n != 1 {
				t.Errorf("64x64 tiles over 30x20: %d tiles, want 1", n)
			}
			if !bytes.Equal(pix(small), pix(large)) {
				t.Error("tile size changed the result")
			}
		})
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 8))
	v := blit.VisualXRGB8888(blit.LSBFirst)

	seq := newTarget(t, 70, 50, v)
	fillRandom(seq, 0xffffff, rng)
	par := newTarget(t, 70, 50, v)
	p, _ := seq.Pix()
	q, _ := par.Pix()
	copy(q, p)

	pb := randomPixbuf(70, 50, rng)
	req := blit.Request{Width: blit.Unspecified, Height: blit.Unspecified}
	cache := scratch.NewCache(16, 16)

	if err := blit.New(blit.WithScratchCache(cache)).Draw(seq, pb, req); err != nil {
		t.Fatal(err)
	}
	b := blit.New(blit.WithScratchCache(cache), blit.WithWorkers(4))
	defer b.Close()
	if err := b.Draw(par, pb, req); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(pix(seq), pix(par)) {
		t.Error("parallel tiles produced different pixels")
	}
}

// recorder captures the dither arguments of RGB transfers.
type recorder struct {
	*memory.Drawable
	dithers []blit.Dither
	phases  []image.Point
}

func (r *recorder) DrawRGB(dst image.Rectangle, pb *blit.Pixbuf, src image.Point, dither blit.Dither, phase image.Point) error {
	r.dithers = append(r.dithers, dither)
	r.phases = append(r.phases, phase)
	return r.Drawable.DrawRGB(dst, pb, src, dither, phase)
}

func TestDitherPhasePassedThrough(t *testing.T) {
	phase := image.Pt(5, 3)
	tests := []struct {
		name  string
		alpha bool
		v     blit.Visual
	}{
		{"direct", false, blit.VisualRGB565(blit.LSBFirst)},
		{"slow", true, blit.VisualRGB565(blit.LSBFirst)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recorder{Drawable: newTarget(t, 16, 16, tt.v)}
			pb := blit.NewPixbuf(8, 8, tt.alpha)
			pb.Fill(color.NRGBA{R: 100, G: 100, B: 100, A: 200})

			err := blit.DrawPixbuf(r, pb, image.Point{}, image.Pt(4, 4), full, blit.DitherMax, phase)
			if err != nil {
				t.Fatalf("DrawPixbuf() error = %v", err)
			}
			if len(r.phases) != 1 || r.phases[0] != phase || r.dithers[0] != blit.DitherMax {
				t.Errorf("DrawRGB calls: phases %v dithers %v, want one call with %v max", r.phases, r.dithers, phase)
			}
		})
	}
}

// TestDitherContinuousAcrossClipBoxes draws one request whole and then as two
// halves split by clip regions; the dithered pixels must match.
func TestDitherContinuousAcrossClipBoxes(t *testing.T) {
	tests := []struct {
		name  string
		alpha bool
	}{
		{"direct", false},
		{"slow", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pb := blit.NewPixbuf(16, 8, tt.alpha)
			pb.Fill(color.NRGBA{R: 107, G: 101, B: 99, A: 0xff})
			phase := image.Pt(2, 1)

			whole := newTarget(t, 16, 8, blit.VisualRGB565(blit.LSBFirst))
			if err := blit.DrawPixbuf(whole, pb, image.Point{}, image.Point{}, full, blit.DitherMax, phase); err != nil {
				t.Fatalf("DrawPixbuf() error = %v", err)
			}

			split := newTarget(t, 16, 8, blit.VisualRGB565(blit.LSBFirst))
			for _, r := range []image.Rectangle{image.Rect(0, 0, 5, 8), image.Rect(5, 0, 16, 8)} {
				split.SetClipRegion(blit.NewRegion(r))
				if err := blit.DrawPixbuf(split, pb, image.Point{}, image.Point{}, full, blit.DitherMax, phase); err != nil {
					t.Fatalf("DrawPixbuf() clip %v error = %v", r, err)
				}
			}

			for y := 0; y < 8; y++ {
				for x := 0; x < 16; x++ {
					if a, b := whole.PixelAt(x, y), split.PixelAt(x, y); a != b {
						t.Fatalf("pixel (%d,%d): whole %#04x, split %#04x", x, y, a, b)
					}
				}
			}
		})
	}
}

func TestBackendErrorIsNotDowngraded(t *testing.T) {
	errInjected := errors.New("lost connection")
	tests := []struct {
		name   string
		fault  memory.Op
		alpha  bool
		fast   bool
		wantOp string
	}{
		{"read back tile", memory.OpCopyToImage, true, true, "copy-to-image"},
		{"write tile", memory.OpDrawImage, true, true, "draw-image"},
		{"staging read", memory.OpReadRGB, true, false, "read-rgb"},
		{"staging write", memory.OpDrawRGB, true, false, "draw-rgb"},
		{"direct write", memory.OpDrawRGB, false, true, "draw-rgb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTarget(t, 8, 8, blit.VisualXRGB8888(blit.MSBFirst),
				memory.WithFault(func(op memory.Op, _ image.Rectangle) error {
					if op == tt.fault {
						return errInjected
					}
					return nil
				}))
			pb := blit.NewPixbuf(8, 8, tt.alpha)

			err := blit.New(blit.WithFastPath(tt.fast)).Draw(d, pb, blit.Request{Width: 8, Height: 8})
			var be *blit.BackendError
			if !errors.As(err, &be) {
				t.Fatalf("Draw() error = %v, want *BackendError", err)
			}
			if be.Op != tt.wantOp || !errors.Is(err, errInjected) {
				t.Errorf("BackendError = %v, want op %s wrapping the fault", be, tt.wantOp)
			}
			if tt.fast && tt.alpha && d.Stats().ReadRGB != 0 {
				t.Error("fast path failure fell back to the staging path")
			}
		})
	}
}

func TestPreconditions(t *testing.T) {
	good := blit.NewPixbuf(4, 4, true)
	tests := []struct {
		name string
		pb   *blit.Pixbuf
		req  blit.Request
	}{
		{"nil pixbuf", nil, blit.Request{Width: 1, Height: 1}},
		{"two channels", &blit.Pixbuf{Width: 1, Height: 1, Stride: 2, Channels: 2, BitsPerSample: 8, Pix: make([]byte, 2)}, blit.Request{Width: 1, Height: 1}},
		{"16 bits per sample", &blit.Pixbuf{Width: 1, Height: 1, Stride: 8, Channels: 4, BitsPerSample: 16, Pix: make([]byte, 8)}, blit.Request{Width: 1, Height: 1}},
		{"short data", &blit.Pixbuf{Width: 2, Height: 2, Stride: 6, Channels: 3, BitsPerSample: 8, Pix: make([]byte, 11)}, blit.Request{Width: 1, Height: 1}},
		{"negative source", good, blit.Request{Src: image.Pt(-1, 0), Width: 1, Height: 1}},
		{"source past width", good, blit.Request{Src: image.Pt(2, 0), Width: 3, Height: 1}},
		{"source past height", good, blit.Request{Src: image.Pt(0, 1), Width: 1, Height: blit.Unspecified}},
		{"negative width", good, blit.Request{Width: -2, Height: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTarget(t, 8, 8, blit.VisualRGB565(blit.LSBFirst))
			err := blit.New().Draw(d, tt.pb, tt.req)
			if !errors.Is(err, blit.ErrPrecondition) {
				t.Fatalf("Draw() error = %v, want ErrPrecondition", err)
			}
			if st := d.Stats(); st != (memory.Stats{}) {
				t.Errorf("drawable touched before precondition failure: %+v", st)
			}
		})
	}

	if err := blit.New().Draw(nil, good, blit.Request{}); !errors.Is(err, blit.ErrNoDrawable) {
		t.Errorf("Draw(nil) error = %v, want ErrNoDrawable", err)
	}
}

func TestClipRegion(t *testing.T) {
	for _, tv := range visuals {
		t.Run(tv.name, func(t *testing.T) {
			clip := blit.NewRegion(image.Rect(2, 2, 4, 3), image.Rect(3, 5, 5, 6))
			d := newTarget(t, 8, 8, tv.v, memory.WithClip(clip))

			pb := blit.NewPixbuf(8, 8, true)
			for y := 0; y < 8; y++ {
				for x := 0; x < 8; x++ {
					pb.Set(x, y, color.NRGBA{R: uint8(x * 32), G: uint8(y * 32), B: 0xff, A: 0xff})
				}
			}
			if err := blit.DrawPixbuf(d, pb, image.Point{}, image.Point{}, full, blit.DitherNone, image.Point{}); err != nil {
				t.Fatalf("DrawPixbuf() error = %v", err)
			}

			box := image.Rect(2, 2, 5, 6)
			for y := 0; y < 8; y++ {
				for x := 0; x < 8; x++ {
					drawn := d.PixelAt(x, y) != 0
					if in := image.Pt(x, y).In(box); drawn != in {
						t.Errorf("pixel (%d,%d) drawn=%v, want %v", x, y, drawn, in)
					}
				}
			}
			// Pixels inside the box come from the same source coordinates.
			want := pb.At(4, 5).R
			if tv.v.Depth == 16 {
				want = want&0xf8 | want>>5
			}
			if c := d.RGBAAt(4, 5); c.R != want {
				t.Errorf("pixel (4,5) red = %d, want %d", c.R, want)
			}
		})
	}
}

func TestPlan(t *testing.T) {
	tests := []struct {
		name   string
		v      blit.Visual
		alpha  bool
		dither blit.Dither
		opts   []blit.Option
		want   blit.Path
	}{
		{"opaque", blit.VisualRGB565(blit.LSBFirst), false, blit.DitherMax, nil, blit.PathDirect},
		{"565 alpha", blit.VisualRGB565(blit.LSBFirst), true, blit.DitherNormal, nil, blit.PathFast},
		{"565 alpha max dither", blit.VisualRGB565(blit.LSBFirst), true, blit.DitherMax, nil, blit.PathSlow},
		{"x888 alpha max dither", blit.VisualXRGB8888(blit.MSBFirst), true, blit.DitherMax, nil, blit.PathFast},
		{"packed rgb", blit.VisualRGB888(blit.MSBFirst), true, blit.DitherNone, nil, blit.PathSlow},
		{"fast path disabled", blit.VisualXRGB8888(blit.LSBFirst), true, blit.DitherNone, []blit.Option{blit.WithFastPath(false)}, blit.PathSlow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTarget(t, 8, 8, tt.v)
			pb := blit.NewPixbuf(4, 4, tt.alpha)
			p, err := blit.New(tt.opts...).Plan(d, pb, blit.Request{Dst: image.Pt(6, -1), Width: blit.Unspecified, Height: blit.Unspecified, Dither: tt.dither})
			if err != nil {
				t.Fatalf("Plan() error = %v", err)
			}
			if p.Path != tt.want {
				t.Errorf("Plan().Path = %v, want %v", p.Path, tt.want)
			}
			if want := image.Rect(6, 0, 8, 3); p.Target != want {
				t.Errorf("Plan().Target = %v, want %v", p.Target, want)
			}
			if want := image.Pt(0, 1); p.Src != want {
				t.Errorf("Plan().Src = %v, want %v", p.Src, want)
			}
		})
	}
}

func TestDrawLogsPath(t *testing.T) {
	orig := blit.Logger()
	t.Cleanup(func() { blit.SetLogger(orig) })

	var buf bytes.Buffer
	blit.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	d := newTarget(t, 4, 4, blit.VisualRGB565(blit.MSBFirst))
	pb := blit.NewPixbuf(4, 4, true)
	if err := blit.DrawPixbuf(d, pb, image.Point{}, image.Point{}, full, blit.DitherNone, image.Point{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "fast path") {
		t.Errorf("log output %q does not mention the fast path", buf.String())
	}
}

func BenchmarkDrawPixbuf(b *testing.B) {
	rng := rand.New(rand.NewPCG(9, 10))
	pb := randomPixbuf(512, 512, rng)
	for _, tv := range visuals {
		d, _ := memory.New(512, 512, tv.v)
		b.Run(tv.name, func(b *testing.B) {
			b.SetBytes(512 * 512 * 4)
			for b.Loop() {
				_ = blit.DrawPixbuf(d, pb, image.Point{}, image.Point{}, full, blit.DitherNone, image.Point{})
			}
		})
	}
}
