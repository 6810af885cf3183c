//go:build !windows && !linux

package platform

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
)

// ScreenshotBackend covers monitor listing and rectangle capture on
// platforms without a native window backend. Window operations report
// ErrUnsupported.
type ScreenshotBackend struct{}

var _ Backend = ScreenshotBackend{}

// Open returns the screenshot-only backend.
func Open(_ Options) (Backend, error) {
	return ScreenshotBackend{}, nil
}

// Displays lists active displays; display 0 is the main display.
func (ScreenshotBackend) Displays() ([]Display, error) {
	n := screenshot.NumActiveDisplays()
	if n <= 0 {
		return nil, fmt.Errorf("no active displays")
	}
	displays := make([]Display, 0, n)
	for i := 0; i < n; i++ {
		bounds := rectFromImage(screenshot.GetDisplayBounds(i))
		displays = append(displays, Display{
			Name:    fmt.Sprintf("Display%d", i),
			Bounds:  bounds,
			Usable:  bounds,
			Primary: i == 0,
		})
	}
	return displays, nil
}

// VirtualScreen is the union of every display's bounds.
func (b ScreenshotBackend) VirtualScreen() (Rect, error) {
	displays, err := b.Displays()
	if err != nil {
		return Rect{}, err
	}
	var r Rect
	for _, d := range displays {
		r = r.Union(d.Bounds)
	}
	return r, nil
}

func (ScreenshotBackend) Windows() ([]Window, error) {
	return nil, ErrUnsupported
}

func (ScreenshotBackend) Window(WindowID) (Window, error) {
	return Window{}, ErrUnsupported
}

func (ScreenshotBackend) ActiveWindow() (WindowID, error) {
	return 0, ErrUnsupported
}

func (ScreenshotBackend) Focus(WindowID) error {
	return ErrUnsupported
}

func (ScreenshotBackend) SetState(WindowID, ShowState) error {
	return ErrUnsupported
}

func (ScreenshotBackend) Move(WindowID, int, int) error {
	return ErrUnsupported
}

func (ScreenshotBackend) Resize(WindowID, int, int) error {
	return ErrUnsupported
}

func (ScreenshotBackend) GrabWindow(WindowID, GrabFunc) error {
	return ErrUnsupported
}

// GrabRect captures a rectangle of the virtual screen.
func (ScreenshotBackend) GrabRect(r Rect, fn GrabFunc) error {
	if r.Empty() {
		return fmt.Errorf("empty capture rectangle %+v", r)
	}
	img, err := screenshot.CaptureRect(image.Rect(r.Left, r.Top, r.Right, r.Bottom))
	if err != nil {
		return fmt.Errorf("capture rect: %w", err)
	}
	return fn(img)
}

func (ScreenshotBackend) ProcessEnv(base []string) []string {
	return base
}

func (ScreenshotBackend) Close() error {
	return nil
}

func rectFromImage(r image.Rectangle) Rect {
	return Rect{Left: r.Min.X, Top: r.Min.Y, Right: r.Max.X, Bottom: r.Max.Y}
}
