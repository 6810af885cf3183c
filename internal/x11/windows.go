package x11

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// ErrWindowGone is returned when a window id no longer names a live window.
var ErrWindowGone = errors.New("x11: window no longer exists")

const (
	stateHidden   = "_NET_WM_STATE_HIDDEN"
	stateMaxVert  = "_NET_WM_STATE_MAXIMIZED_VERT"
	stateMaxHorz  = "_NET_WM_STATE_MAXIMIZED_HORZ"
	wmStateRemove = 0
	wmStateAdd    = 1
)

// Client describes a managed top-level window.
type Client struct {
	ID    xproto.Window
	PID   int
	Class string
	Title string
	// Frame is the outer geometry including window manager decorations.
	Frame     Area
	Minimized bool
	Maximized bool
	Normal    bool
	// Viewable is false when the window or its frame is unmapped, e.g.
	// iconified or on another virtual desktop.
	Viewable bool
}

// ClientsFrontToBack returns managed windows, topmost first. Window managers
// that do not publish _NET_CLIENT_LIST_STACKING fall back to the mapping
// order of _NET_CLIENT_LIST.
func (c *Connection) ClientsFrontToBack() ([]xproto.Window, error) {
	clients, err := ewmh.ClientListStackingGet(c.XUtil)
	if err != nil || len(clients) == 0 {
		clients, err = ewmh.ClientListGet(c.XUtil)
		if err != nil {
			return nil, fmt.Errorf("failed to get client list: %w", err)
		}
	}
	// Stacking order is bottom to top.
	out := slices.Clone(clients)
	slices.Reverse(out)
	return out, nil
}

// Describe re-queries a window. It returns ErrWindowGone when the window was
// destroyed.
func (c *Connection) Describe(windowID xproto.Window) (Client, error) {
	attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), windowID).Reply()
	if err != nil {
		return Client{}, ErrWindowGone
	}

	frame, err := xwindow.New(c.XUtil, windowID).DecorGeometry()
	if err != nil {
		return Client{}, ErrWindowGone
	}

	client := Client{
		ID:    windowID,
		Class: c.windowClass(windowID),
		Title: c.windowTitle(windowID),
		Frame: Area{
			X:      frame.X(),
			Y:      frame.Y(),
			Width:  frame.Width(),
			Height: frame.Height(),
		},
		Normal:   c.IsNormalWindow(windowID),
		Viewable: attrs.MapState == xproto.MapStateViewable,
	}
	if p, err := ewmh.WmPidGet(c.XUtil, windowID); err == nil {
		client.PID = int(p)
	}

	hasMaxH, hasMaxV := false, false
	if states, err := ewmh.WmStateGet(c.XUtil, windowID); err == nil {
		for _, state := range states {
			switch state {
			case stateHidden:
				client.Minimized = true
			case stateMaxHorz:
				hasMaxH = true
			case stateMaxVert:
				hasMaxV = true
			}
		}
	}
	client.Maximized = hasMaxH && hasMaxV
	return client, nil
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_NORMAL" || t == "_NET_WM_WINDOW_TYPE_DIALOG" {
			return true
		}
		// Reject desktop, dock, splash, etc.
		if t == "_NET_WM_WINDOW_TYPE_DESKTOP" ||
			t == "_NET_WM_WINDOW_TYPE_DOCK" ||
			t == "_NET_WM_WINDOW_TYPE_SPLASH" ||
			t == "_NET_WM_WINDOW_TYPE_NOTIFICATION" {
			return false
		}
	}

	// If no specific type is set, assume it's normal
	return len(types) == 0
}

// GetActiveWindow returns _NET_ACTIVE_WINDOW.
func (c *Connection) GetActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}

// Activate asks the window manager to raise and focus a window. Iconified
// windows are mapped first, which deiconifies them per ICCCM.
func (c *Connection) Activate(windowID xproto.Window) error {
	client, err := c.Describe(windowID)
	if err != nil {
		return err
	}
	if client.Minimized {
		xwindow.New(c.XUtil, windowID).Map()
	}
	return ewmh.ActiveWindowReq(c.XUtil, windowID)
}

// Iconify minimizes a window via WM_CHANGE_STATE.
func (c *Connection) Iconify(windowID xproto.Window) error {
	if _, err := c.Describe(windowID); err != nil {
		return err
	}

	changeState, err := xprop.Atm(c.XUtil, "WM_CHANGE_STATE")
	if err != nil {
		return err
	}

	const iconicState = 3
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   changeState,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{iconicState, 0, 0, 0, 0}),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}

// Maximize adds both maximized states in a single _NET_WM_STATE request.
func (c *Connection) Maximize(windowID xproto.Window) error {
	client, err := c.Describe(windowID)
	if err != nil {
		return err
	}
	if client.Minimized {
		xwindow.New(c.XUtil, windowID).Map()
	}
	return ewmh.WmStateReqExtra(c.XUtil, windowID, wmStateAdd, stateMaxVert, stateMaxHorz, 2)
}

// Restore returns a window to its normal state: deiconified and
// unmaximized.
func (c *Connection) Restore(windowID xproto.Window) error {
	client, err := c.Describe(windowID)
	if err != nil {
		return err
	}
	if client.Minimized {
		xwindow.New(c.XUtil, windowID).Map()
		if err := ewmh.WmStateReq(c.XUtil, windowID, wmStateRemove, stateHidden); err != nil {
			return err
		}
	}
	return c.unmaximizeWindow(windowID)
}

// unmaximizeWindow removes maximized state from a window
func (c *Connection) unmaximizeWindow(windowID xproto.Window) error {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return nil
	}

	hasMaxH := slices.Contains(states, stateMaxHorz)
	hasMaxV := slices.Contains(states, stateMaxVert)
	if !hasMaxH && !hasMaxV {
		return nil
	}
	return ewmh.WmStateReqExtra(c.XUtil, windowID, wmStateRemove, stateMaxVert, stateMaxHorz, 2)
}

// Move places the window's outer frame at x, y.
func (c *Connection) Move(windowID xproto.Window, x, y int) error {
	if _, err := c.Describe(windowID); err != nil {
		return err
	}
	return xwindow.New(c.XUtil, windowID).WMMove(x, y)
}

// Resize sets the outer frame size; decorations are subtracted before the
// request reaches the window manager.
func (c *Connection) Resize(windowID xproto.Window, width, height int) error {
	if _, err := c.Describe(windowID); err != nil {
		return err
	}
	return xwindow.New(c.XUtil, windowID).WMResize(width, height)
}

func (c *Connection) windowClass(windowID xproto.Window) string {
	wmClass, err := icccm.WmClassGet(c.XUtil, windowID)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(wmClass.Class)
}

func (c *Connection) windowTitle(windowID xproto.Window) string {
	title, err := ewmh.WmNameGet(c.XUtil, windowID)
	if err == nil {
		title = strings.TrimSpace(title)
		if title != "" {
			return title
		}
	}

	title, err = icccm.WmNameGet(c.XUtil, windowID)
	if err == nil {
		return strings.TrimSpace(title)
	}
	return ""
}
