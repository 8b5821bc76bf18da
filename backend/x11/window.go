package x11

import (
	"fmt"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"github.com/gogpu/blit"
	"github.com/gogpu/blit/backend"
)

// Window is a top-level window created on the default screen with the root
// visual.
type Window struct {
	*Drawable
	win xproto.Window
}

// NewWindow creates and maps a width x height window.
func (dpy *Display) NewWindow(width, height int, title string) (*Window, error) {
	if width <= 0 || height <= 0 || width > 0xffff || height > 0xffff {
		return nil, fmt.Errorf("x11: invalid window size %dx%d", width, height)
	}
	win, err := xproto.NewWindowId(dpy.conn)
	if err != nil {
		return nil, fmt.Errorf("x11: allocate window: %w", err)
	}

	s := dpy.screen
	err = xproto.CreateWindowChecked(dpy.conn, s.RootDepth, win, s.Root,
		0, 0, uint16(width), uint16(height), 0,
		xproto.WindowClassInputOutput, s.RootVisual,
		xproto.CwBackPixel|xproto.CwEventMask,
		[]uint32{s.BlackPixel, xproto.EventMaskExposure | xproto.EventMaskStructureNotify}).Check()
	if err != nil {
		return nil, fmt.Errorf("x11: create window: %w", err)
	}
	if title != "" {
		err = xproto.ChangePropertyChecked(dpy.conn, xproto.PropModeReplace, win,
			xproto.AtomWmName, xproto.AtomString, 8, uint32(len(title)), []byte(title)).Check()
		if err != nil {
			xproto.DestroyWindow(dpy.conn, win)
			return nil, fmt.Errorf("x11: set title: %w", err)
		}
	}
	if err := xproto.MapWindowChecked(dpy.conn, win).Check(); err != nil {
		xproto.DestroyWindow(dpy.conn, win)
		return nil, fmt.Errorf("x11: map window: %w", err)
	}

	d, err := dpy.Wrap(xproto.Drawable(win))
	if err != nil {
		xproto.DestroyWindow(dpy.conn, win)
		return nil, err
	}
	return &Window{Drawable: d, win: win}, nil
}

// Window returns the X window ID.
func (w *Window) Window() xproto.Window {
	return w.win
}

// HandleEvent updates the cached size from a ConfigureNotify event for
// this window and reports whether the size changed. Other events are
// ignored. Windows select StructureNotify, so feeding every event from the
// connection here keeps Size current without a GetGeometry round trip.
func (w *Window) HandleEvent(ev xgb.Event) bool {
	cn, ok := ev.(xproto.ConfigureNotifyEvent)
	if !ok || cn.Window != w.win {
		return false
	}
	return w.setSize(int(cn.Width), int(cn.Height))
}

// Destroy frees the graphics context and destroys the window.
func (w *Window) Destroy() {
	w.Free()
	xproto.DestroyWindow(w.dpy.conn, w.win)
}

// Pixmap is an off-screen drawable of the default screen's root depth.
type Pixmap struct {
	*Drawable
	pix xproto.Pixmap
}

// NewPixmap creates a width x height pixmap.
func (dpy *Display) NewPixmap(width, height int) (*Pixmap, error) {
	if width <= 0 || height <= 0 || width > 0xffff || height > 0xffff {
		return nil, fmt.Errorf("x11: invalid pixmap size %dx%d", width, height)
	}
	pix, err := xproto.NewPixmapId(dpy.conn)
	if err != nil {
		return nil, fmt.Errorf("x11: allocate pixmap: %w", err)
	}
	s := dpy.screen
	err = xproto.CreatePixmapChecked(dpy.conn, s.RootDepth, pix, xproto.Drawable(s.Root),
		uint16(width), uint16(height)).Check()
	if err != nil {
		return nil, fmt.Errorf("x11: create pixmap: %w", err)
	}
	d, err := dpy.Wrap(xproto.Drawable(pix))
	if err != nil {
		xproto.FreePixmap(dpy.conn, pix)
		return nil, err
	}
	return &Pixmap{Drawable: d, pix: pix}, nil
}

// Destroy frees the graphics context and the pixmap.
func (p *Pixmap) Destroy() {
	p.Free()
	xproto.FreePixmap(p.dpy.conn, p.pix)
}

// Target is a window that owns its display connection.
type Target struct {
	*Window
}

// Close destroys the window and closes the connection.
func (t Target) Close() error {
	t.Destroy()
	t.dpy.Close()
	return nil
}

// Open connects to opts.Display and creates a window.
func Open(opts backend.Options) (Target, error) {
	dpy, err := Connect(opts.Display)
	if err != nil {
		return Target{}, err
	}
	w, err := dpy.NewWindow(opts.Width, opts.Height, opts.Title)
	if err != nil {
		dpy.Close()
		return Target{}, err
	}
	return Target{w}, nil
}

var _ blit.Drawable = (*Drawable)(nil)

func init() {
	backend.Register("x11", backend.PriorityDisplay, func(opts backend.Options) (backend.Target, error) {
		t, err := Open(opts)
		if err != nil {
			return nil, err
		}
		return t, nil
	}, available)
}
