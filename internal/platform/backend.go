package platform

import (
	"errors"
	"image"
)

// ErrUnsupported is returned by backends for operations the host window
// system cannot perform.
var ErrUnsupported = errors.New("operation not supported on this platform")

// ErrInvalidWindow is returned when a window handle no longer names a live
// top-level window.
var ErrInvalidWindow = errors.New("window handle is no longer valid")

// WindowID is a platform-neutral window identifier. It is owned by the OS and
// only valid until the window is destroyed.
type WindowID uint64

// Rect describes a rectangle in virtual-screen coordinates. Right and Bottom
// are exclusive.
type Rect struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// RectFromSize builds a Rect from an origin and a size.
func RectFromSize(x, y, width, height int) Rect {
	return Rect{Left: x, Top: y, Right: x + width, Bottom: y + height}
}

func (r Rect) Width() int  { return r.Right - r.Left }
func (r Rect) Height() int { return r.Bottom - r.Top }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Width() <= 0 || r.Height() <= 0 }

// Normalize clamps inverted edges so that Right >= Left and Bottom >= Top.
func (r Rect) Normalize() Rect {
	if r.Right < r.Left {
		r.Right = r.Left
	}
	if r.Bottom < r.Top {
		r.Bottom = r.Top
	}
	return r
}

// Intersect returns the overlap of r and o, or an empty Rect.
func (r Rect) Intersect(o Rect) Rect {
	out := Rect{
		Left:   max(r.Left, o.Left),
		Top:    max(r.Top, o.Top),
		Right:  min(r.Right, o.Right),
		Bottom: min(r.Bottom, o.Bottom),
	}
	if out.Empty() {
		return Rect{}
	}
	return out
}

// Union returns the smallest rectangle containing r and o.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	return Rect{
		Left:   min(r.Left, o.Left),
		Top:    min(r.Top, o.Top),
		Right:  max(r.Right, o.Right),
		Bottom: max(r.Bottom, o.Bottom),
	}
}

// Contains reports whether the point lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.Left && x < r.Right && y >= r.Top && y < r.Bottom
}

// Display describes a physical monitor and its usable work area.
type Display struct {
	Name    string
	Bounds  Rect
	Usable  Rect
	Primary bool
}

// ShowState is a window's minimized/maximized classification.
type ShowState int

const (
	StateNormal ShowState = iota
	StateMinimized
	StateMaximized
)

func (s ShowState) String() string {
	switch s {
	case StateMinimized:
		return "minimized"
	case StateMaximized:
		return "maximized"
	default:
		return "normal"
	}
}

// Window contains metadata and geometry for a top-level window.
type Window struct {
	ID        WindowID
	PID       int
	ClassName string
	Title     string
	Bounds    Rect
	State     ShowState
	Visible   bool
}

// GrabFunc receives the pixels of a capture while the backend still holds
// every OS resource used to produce them. The image must not be retained
// after the function returns.
type GrabFunc func(img *image.RGBA) error

// Backend abstracts window-system operations across platforms.
//
// Implementations keep no per-call state: every method re-queries the OS.
type Backend interface {
	// Displays lists active monitors in OS enumeration order.
	Displays() ([]Display, error)
	// VirtualScreen returns the rectangle spanning every monitor.
	VirtualScreen() (Rect, error)
	// Windows lists top-level windows front to back.
	Windows() ([]Window, error)
	// Window re-queries a single window.
	Window(id WindowID) (Window, error)
	// ActiveWindow returns the foreground window, or 0 when there is none.
	ActiveWindow() (WindowID, error)

	Focus(id WindowID) error
	SetState(id WindowID, state ShowState) error
	Move(id WindowID, x, y int) error
	Resize(id WindowID, width, height int) error

	// GrabRect copies a screen rectangle and hands the pixels to fn.
	GrabRect(r Rect, fn GrabFunc) error
	// GrabWindow renders a window from its own paint pipeline, independent
	// of what currently covers it on screen, and hands the pixels to fn.
	GrabWindow(id WindowID, fn GrabFunc) error

	// ProcessEnv returns the environment a launched GUI process needs to
	// reach this window system.
	ProcessEnv(base []string) []string

	Close() error
}

// Options configures how Open reaches the window system. Only the X11
// backend reads it.
type Options struct {
	// Display overrides $DISPLAY.
	Display string
	// XAuthority overrides $XAUTHORITY.
	XAuthority string
}
