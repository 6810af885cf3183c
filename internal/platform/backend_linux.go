//go:build linux

package platform

import (
	"errors"
	"fmt"

	"github.com/1broseidon/winsight/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
)

// LinuxBackend wraps an X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// Open detects the X session and connects to it.
func Open(opts Options) (Backend, error) {
	session, err := x11.DetectSession(opts.Display, opts.XAuthority)
	if err != nil {
		return nil, err
	}
	conn, err := x11.Connect(session)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{conn: conn}, nil
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

// Displays returns all active displays.
func (b *LinuxBackend) Displays() ([]Display, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, Display{
			Name:    m.Name,
			Bounds:  rectFromArea(m.Bounds),
			Usable:  rectFromArea(m.Work),
			Primary: m.Primary,
		})
	}
	return displays, nil
}

// VirtualScreen returns the root window rectangle.
func (b *LinuxBackend) VirtualScreen() (Rect, error) {
	conn, err := b.connection()
	if err != nil {
		return Rect{}, err
	}
	root, err := conn.RootArea()
	if err != nil {
		return Rect{}, err
	}
	return rectFromArea(root), nil
}

// Windows lists managed windows front to back. Visible means a normal
// application window; iconified windows are still visible in this sense.
func (b *LinuxBackend) Windows() ([]Window, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	ids, err := conn.ClientsFrontToBack()
	if err != nil {
		return nil, err
	}

	windows := make([]Window, 0, len(ids))
	for _, id := range ids {
		client, err := conn.Describe(id)
		if err != nil {
			// Destroyed between listing and describing.
			continue
		}
		windows = append(windows, windowFromClient(client))
	}
	return windows, nil
}

// Window re-queries a single window.
func (b *LinuxBackend) Window(id WindowID) (Window, error) {
	conn, err := b.connection()
	if err != nil {
		return Window{}, err
	}
	client, err := conn.Describe(xproto.Window(id))
	if err != nil {
		return Window{}, mapX11Error(err)
	}
	return windowFromClient(client), nil
}

// ActiveWindow returns the currently active/focused window ID.
func (b *LinuxBackend) ActiveWindow() (WindowID, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}

	wid, err := conn.GetActiveWindow()
	if err != nil {
		return 0, err
	}
	return WindowID(wid), nil
}

// Focus activates a window through the window manager.
func (b *LinuxBackend) Focus(id WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return mapX11Error(conn.Activate(xproto.Window(id)))
}

// SetState iconifies, maximizes or restores a window.
func (b *LinuxBackend) SetState(id WindowID, state ShowState) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	win := xproto.Window(id)
	switch state {
	case StateMinimized:
		err = conn.Iconify(win)
	case StateMaximized:
		err = conn.Maximize(win)
	default:
		err = conn.Restore(win)
	}
	return mapX11Error(err)
}

// Move places a window's outer frame.
func (b *LinuxBackend) Move(id WindowID, x, y int) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return mapX11Error(conn.Move(xproto.Window(id), x, y))
}

// Resize sets a window's outer size.
func (b *LinuxBackend) Resize(id WindowID, width, height int) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return mapX11Error(conn.Resize(xproto.Window(id), width, height))
}

// GrabRect reads a rectangle of the root window.
func (b *LinuxBackend) GrabRect(r Rect, fn GrabFunc) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	if r.Empty() {
		return fmt.Errorf("empty capture rectangle %+v", r)
	}

	data, err := conn.GrabArea(x11.Area{X: r.Left, Y: r.Top, Width: r.Width(), Height: r.Height()})
	if err != nil {
		return err
	}
	img, err := BGRAToRGBA(data, r.Width(), r.Height(), r.Width()*4)
	if err != nil {
		return err
	}
	return fn(img)
}

// GrabWindow reads a window's frame. With a compositing manager running it
// comes from composite off-screen storage (redirect → name pixmap →
// GetImage, released in reverse order after fn). Without one, only an
// uncovered window can be captured, from the screen.
func (b *LinuxBackend) GrabWindow(id WindowID, fn GrabFunc) (err error) {
	conn, err := b.connection()
	if err != nil {
		return err
	}

	compositor, err := conn.CompositorActive()
	if err != nil {
		return err
	}
	target, above, err := conn.StackAbove(xproto.Window(id))
	if err != nil {
		return mapX11Error(err)
	}
	root, err := conn.RootArea()
	if err != nil {
		return err
	}
	grab, err := x11.ChooseWindowGrab(compositor, target, root, above)
	if err != nil {
		return err
	}
	if grab == x11.GrabScreen {
		return b.GrabRect(rectFromArea(target.Frame), fn)
	}

	frame, err := conn.FrameWindow(xproto.Window(id))
	if err != nil {
		return mapX11Error(err)
	}

	chain := &Chain{}
	defer chain.ReleaseInto(&err)

	unredirect, err := conn.RedirectWindow(frame)
	if err != nil {
		return err
	}
	chain.Push("composite redirection", unredirect)

	pixmap, freePixmap, err := conn.NameWindowPixmap(frame)
	if err != nil {
		return err
	}
	chain.Push("window pixmap", freePixmap)

	data, w, h, err := conn.GrabPixmap(pixmap)
	if err != nil {
		return err
	}
	img, err := BGRAToRGBA(data, w, h, w*4)
	if err != nil {
		return err
	}
	return fn(img)
}

// ProcessEnv adds the detected DISPLAY/XAUTHORITY to base.
func (b *LinuxBackend) ProcessEnv(base []string) []string {
	if b == nil || b.conn == nil {
		return base
	}
	return b.conn.Session.Environ(base)
}

// Close disconnects from the X server.
func (b *LinuxBackend) Close() error {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
	return nil
}

func windowFromClient(c x11.Client) Window {
	state := StateNormal
	switch {
	case c.Minimized:
		state = StateMinimized
	case c.Maximized:
		state = StateMaximized
	}
	return Window{
		ID:        WindowID(c.ID),
		PID:       c.PID,
		ClassName: c.Class,
		Title:     c.Title,
		Bounds:    rectFromArea(c.Frame),
		State:     state,
		Visible:   c.Normal,
	}
}

func rectFromArea(a x11.Area) Rect {
	return RectFromSize(a.X, a.Y, a.Width, a.Height).Normalize()
}

func mapX11Error(err error) error {
	if errors.Is(err, x11.ErrWindowGone) {
		return ErrInvalidWindow
	}
	return err
}
