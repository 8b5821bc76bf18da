// Package x11 implements blit.Drawable for windows and pixmaps on an X
// server, using the core protocol only.
//
// Native pixels travel as ZPixmap images: GetImage reads a rectangle back,
// PutImage writes one. Rows are padded to the server's scanline pad and the
// byte order follows the server's image byte order, both taken from the
// connection setup. Only TrueColor visuals are supported.
//
// A Drawable caches its size instead of asking the server on every blit.
// After a window is resized, pass its ConfigureNotify event to
// Window.HandleEvent, or call Refresh, before drawing again; otherwise
// blits clip against the old size.
package x11

import (
	"errors"
	"fmt"
	"os"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"github.com/gogpu/blit"
	"github.com/gogpu/blit/cache"
)

// Errors.
var (
	// ErrNoVisual is returned when a visual ID is not a TrueColor visual of
	// the display.
	ErrNoVisual = errors.New("x11: no TrueColor visual")

	// ErrNoFormat is returned when the server lists no pixmap format for a
	// depth.
	ErrNoFormat = errors.New("x11: no pixmap format")
)

// requestHeader is the size of a PutImage request without its data.
const requestHeader = 24

// Display is a connection to an X server.
//
// Thread safety: Display is safe for concurrent use.
type Display struct {
	conn    *xgb.Conn
	setup   *xproto.SetupInfo
	screen  *xproto.ScreenInfo
	visuals *cache.Cache[uint32, blit.Visual]
}

// Connect opens a connection to the named display, or to $DISPLAY if name
// is empty.
func Connect(name string) (*Display, error) {
	var (
		conn *xgb.Conn
		err  error
	)
	if name == "" {
		conn, err = xgb.NewConn()
	} else {
		conn, err = xgb.NewConnDisplay(name)
	}
	if err != nil {
		return nil, fmt.Errorf("x11: connect: %w", err)
	}
	setup := xproto.Setup(conn)
	blit.Logger().Debug("x11: connected",
		"display", name,
		"imageByteOrder", setup.ImageByteOrder,
		"maxRequestBytes", int(setup.MaximumRequestLength)*4)
	return newDisplay(conn, setup, setup.DefaultScreen(conn)), nil
}

func newDisplay(conn *xgb.Conn, setup *xproto.SetupInfo, screen *xproto.ScreenInfo) *Display {
	return &Display{
		conn:    conn,
		setup:   setup,
		screen:  screen,
		visuals: cache.New[uint32, blit.Visual](0, cache.Uint32Hasher),
	}
}

// Conn returns the underlying connection.
func (d *Display) Conn() *xgb.Conn {
	return d.conn
}

// Screen returns the default screen.
func (d *Display) Screen() *xproto.ScreenInfo {
	return d.screen
}

// Close closes the connection.
func (d *Display) Close() {
	d.conn.Close()
}

// byteOrder returns the server's image byte order.
func (d *Display) byteOrder() blit.ByteOrder {
	if d.setup.ImageByteOrder == xproto.ImageOrderLSBFirst {
		return blit.LSBFirst
	}
	return blit.MSBFirst
}

// format returns the ZPixmap bits per pixel and scanline pad for depth.
func (d *Display) format(depth byte) (bpp, pad int, err error) {
	for _, f := range d.setup.PixmapFormats {
		if f.Depth == depth {
			return int(f.BitsPerPixel), int(f.ScanlinePad), nil
		}
	}
	return 0, 0, fmt.Errorf("%w for depth %d", ErrNoFormat, depth)
}

// maxRequestBytes is the largest request the server accepts.
func (d *Display) maxRequestBytes() int {
	return int(d.setup.MaximumRequestLength) * 4
}

// Visual returns the layout of the visual with the given ID. Results are
// cached per display.
func (d *Display) Visual(id xproto.Visualid) (blit.Visual, error) {
	return d.visuals.GetOrLoad(uint32(id), func() (blit.Visual, error) {
		for _, screen := range d.setup.Roots {
			for _, depth := range screen.AllowedDepths {
				for _, vi := range depth.Visuals {
					if vi.VisualId == id {
						return d.visualFromInfo(depth.Depth, vi)
					}
				}
			}
		}
		return blit.Visual{}, fmt.Errorf("%w: visual %#x not found", ErrNoVisual, id)
	})
}

// visualForDepth returns the first TrueColor visual of the default screen
// with the given depth, for drawables without a visual of their own.
func (d *Display) visualForDepth(depth byte) (blit.Visual, error) {
	for _, di := range d.screen.AllowedDepths {
		if di.Depth != depth {
			continue
		}
		for _, vi := range di.Visuals {
			if vi.Class == xproto.VisualClassTrueColor {
				return d.Visual(vi.VisualId)
			}
		}
	}
	return blit.Visual{}, fmt.Errorf("%w with depth %d", ErrNoVisual, depth)
}

func (d *Display) visualFromInfo(depth byte, vi xproto.VisualInfo) (blit.Visual, error) {
	if vi.Class != xproto.VisualClassTrueColor {
		return blit.Visual{}, fmt.Errorf("%w: visual %#x has class %d", ErrNoVisual, vi.VisualId, vi.Class)
	}
	bpp, _, err := d.format(depth)
	if err != nil {
		return blit.Visual{}, err
	}
	return blit.Visual{
		Depth:        int(depth),
		BitsPerPixel: bpp,
		ByteOrder:    d.byteOrder(),
		RedMask:      vi.RedMask,
		GreenMask:    vi.GreenMask,
		BlueMask:     vi.BlueMask,
	}, nil
}

// available reports whether a display is configured in the environment.
func available() bool {
	return os.Getenv("DISPLAY") != ""
}
