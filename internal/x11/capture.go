package x11

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/xgb/composite"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xprop"
)

const allPlanes = ^uint32(0)

// ErrNeedsCompositor is returned for window captures that cannot be served
// correctly without a compositing manager.
var ErrNeedsCompositor = errors.New("x11: window is covered, unmapped or off screen and no compositing manager is running")

// WindowGrab says where a window's pixels are read from.
type WindowGrab int

const (
	// GrabPixmap reads the composite off-screen storage of the frame.
	GrabPixmap WindowGrab = iota + 1
	// GrabScreen copies the frame's area of the root window.
	GrabScreen
)

// ChooseWindowGrab picks the capture path for target. With a compositor the
// off-screen storage is kept up to date and is always used. Without one, a
// freshly redirected window starts out holding whatever covered it, so the
// only correct source is the screen, and only while target is viewable,
// inside the root window and not overlapped by any viewable window in above.
func ChooseWindowGrab(compositor bool, target Client, root Area, above []Client) (WindowGrab, error) {
	if compositor {
		return GrabPixmap, nil
	}
	if !target.Viewable || target.Frame.Width <= 0 || target.Frame.Height <= 0 {
		return 0, ErrNeedsCompositor
	}
	if intersectArea(target.Frame, root) != target.Frame {
		return 0, ErrNeedsCompositor
	}
	for _, w := range above {
		if !w.Viewable {
			continue
		}
		if o := intersectArea(target.Frame, w.Frame); o.Width > 0 && o.Height > 0 {
			return 0, ErrNeedsCompositor
		}
	}
	return GrabScreen, nil
}

// CompositorActive reports whether a compositing manager owns the
// _NET_WM_CM_S<screen> selection.
func (c *Connection) CompositorActive() (bool, error) {
	name := fmt.Sprintf("_NET_WM_CM_S%d", c.XUtil.Conn().DefaultScreen)
	atom, err := xprop.Atm(c.XUtil, name)
	if err != nil {
		return false, fmt.Errorf("intern %s: %w", name, err)
	}
	reply, err := xproto.GetSelectionOwner(c.XUtil.Conn(), atom).Reply()
	if err != nil {
		return false, fmt.Errorf("selection owner of %s: %w", name, err)
	}
	return reply.Owner != xproto.WindowNone, nil
}

// StackAbove describes target and every managed window stacked above it,
// topmost first. A target the window manager does not list is treated as
// being below everything.
func (c *Connection) StackAbove(target xproto.Window) (Client, []Client, error) {
	ids, err := c.ClientsFrontToBack()
	if err != nil {
		return Client{}, nil, err
	}
	var above []Client
	for _, id := range ids {
		if id == target {
			break
		}
		client, err := c.Describe(id)
		if err != nil {
			continue
		}
		above = append(above, client)
	}
	client, err := c.Describe(target)
	if err != nil {
		return Client{}, nil, err
	}
	return client, above, nil
}

// GrabArea reads a rectangle of the root window as 32-bit BGRX rows with a
// stride of 4*a.Width. Pixels outside the root window are left black.
func (c *Connection) GrabArea(a Area) ([]byte, error) {
	if a.Width <= 0 || a.Height <= 0 {
		return nil, fmt.Errorf("empty capture area %+v", a)
	}
	root, err := c.RootArea()
	if err != nil {
		return nil, err
	}

	out := make([]byte, a.Width*a.Height*4)
	visible := intersectArea(a, root)
	if visible.Width == 0 || visible.Height == 0 {
		return out, nil
	}

	data, err := c.getImage(xproto.Drawable(c.Root), visible)
	if err != nil {
		return nil, err
	}

	srcStride := visible.Width * 4
	dstStride := a.Width * 4
	dx := (visible.X - a.X) * 4
	for row := 0; row < visible.Height; row++ {
		dst := (visible.Y-a.Y+row)*dstStride + dx
		copy(out[dst:dst+srcStride], data[row*srcStride:(row+1)*srcStride])
	}
	return out, nil
}

func (c *Connection) getImage(d xproto.Drawable, a Area) ([]byte, error) {
	reply, err := xproto.GetImage(
		c.XUtil.Conn(),
		xproto.ImageFormatZPixmap,
		d,
		int16(a.X), int16(a.Y),
		uint16(a.Width), uint16(a.Height),
		allPlanes,
	).Reply()
	if err != nil {
		return nil, fmt.Errorf("GetImage: %w", err)
	}
	if want := a.Width * a.Height * 4; len(reply.Data) < want {
		return nil, fmt.Errorf("GetImage returned %d bytes for %dx%d at depth %d, want 32 bits per pixel",
			len(reply.Data), a.Width, a.Height, reply.Depth)
	}
	return reply.Data, nil
}

// FrameWindow returns the child of the root that contains windowID. Under a
// reparenting window manager this is the decoration frame.
func (c *Connection) FrameWindow(windowID xproto.Window) (xproto.Window, error) {
	current := windowID
	for {
		tree, err := xproto.QueryTree(c.XUtil.Conn(), current).Reply()
		if err != nil {
			return 0, ErrWindowGone
		}
		if tree.Parent == c.Root || tree.Parent == 0 {
			return current, nil
		}
		current = tree.Parent
	}
}

// RedirectWindow redirects a window tree to off-screen storage so that its
// content survives being covered by other windows. The returned function
// undoes the redirection.
func (c *Connection) RedirectWindow(frame xproto.Window) (func() error, error) {
	if err := c.initComposite(); err != nil {
		return nil, err
	}
	if err := composite.RedirectWindowChecked(c.XUtil.Conn(), frame, composite.RedirectAutomatic).Check(); err != nil {
		return nil, fmt.Errorf("composite redirect: %w", err)
	}
	return func() error {
		return composite.UnredirectWindowChecked(c.XUtil.Conn(), frame, composite.RedirectAutomatic).Check()
	}, nil
}

// NameWindowPixmap binds a pixmap to the off-screen storage of a redirected
// window. The window must be mapped. The returned function frees the pixmap.
func (c *Connection) NameWindowPixmap(frame xproto.Window) (xproto.Pixmap, func() error, error) {
	pixmap, err := xproto.NewPixmapId(c.XUtil.Conn())
	if err != nil {
		return 0, nil, fmt.Errorf("allocate pixmap id: %w", err)
	}
	if err := composite.NameWindowPixmapChecked(c.XUtil.Conn(), frame, pixmap).Check(); err != nil {
		return 0, nil, fmt.Errorf("name window pixmap (is the window mapped?): %w", err)
	}
	return pixmap, func() error {
		return xproto.FreePixmapChecked(c.XUtil.Conn(), pixmap).Check()
	}, nil
}

// GrabPixmap reads a whole pixmap as 32-bit BGRX rows and returns its size.
func (c *Connection) GrabPixmap(pixmap xproto.Pixmap) (data []byte, width, height int, err error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(pixmap)).Reply()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("pixmap geometry: %w", err)
	}
	a := Area{Width: int(geom.Width), Height: int(geom.Height)}
	data, err = c.getImage(xproto.Drawable(pixmap), a)
	if err != nil {
		return nil, 0, 0, err
	}
	return data, a.Width, a.Height, nil
}
