package mcp

import (
	"errors"
	"image"
	"image/color"
	"sync"

	"github.com/1broseidon/winsight/internal/platform"
)

// fakeBackend is a small in-memory desktop: two monitors, a notepad and a
// calculator window.
type fakeBackend struct {
	mu        sync.Mutex
	windows   []platform.Window
	active    platform.WindowID
	mutations []string
	grabErr   error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		windows: []platform.Window{
			{ID: 0x10, PID: 4242, ClassName: "Notepad", Title: "Untitled - Notepad", Bounds: platform.RectFromSize(100, 100, 800, 600), Visible: true},
			{ID: 0x20, PID: 77, ClassName: "ApplicationFrameWindow", Title: "Calculator", Bounds: platform.RectFromSize(50, 50, 320, 500), Visible: true},
		},
		active: 0x20,
	}
}

func (f *fakeBackend) Displays() ([]platform.Display, error) {
	return []platform.Display{
		{Name: `\\.\DISPLAY1`, Bounds: platform.RectFromSize(0, 0, 1920, 1080), Usable: platform.RectFromSize(0, 0, 1920, 1040), Primary: true},
		{Name: `\\.\DISPLAY2`, Bounds: platform.RectFromSize(1920, 0, 2560, 1440)},
	}, nil
}

func (f *fakeBackend) VirtualScreen() (platform.Rect, error) {
	return platform.RectFromSize(0, 0, 4480, 1440), nil
}

func (f *fakeBackend) Windows() ([]platform.Window, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]platform.Window(nil), f.windows...), nil
}

func (f *fakeBackend) Window(id platform.WindowID) (platform.Window, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, w := range f.windows {
		if w.ID == id {
			return w, nil
		}
	}
	return platform.Window{}, platform.ErrInvalidWindow
}

func (f *fakeBackend) ActiveWindow() (platform.WindowID, error) { return f.active, nil }

func (f *fakeBackend) update(op string, id platform.WindowID, change func(w *platform.Window)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mutations = append(f.mutations, op)
	for i := range f.windows {
		if f.windows[i].ID == id {
			change(&f.windows[i])
			return nil
		}
	}
	return platform.ErrInvalidWindow
}

func (f *fakeBackend) Focus(id platform.WindowID) error {
	f.active = id
	return f.update("focus", id, func(w *platform.Window) { w.State = platform.StateNormal })
}

func (f *fakeBackend) SetState(id platform.WindowID, state platform.ShowState) error {
	return f.update("state "+state.String(), id, func(w *platform.Window) { w.State = state })
}

func (f *fakeBackend) Move(id platform.WindowID, x, y int) error {
	return f.update("move", id, func(w *platform.Window) {
		w.Bounds = platform.RectFromSize(x, y, w.Bounds.Width(), w.Bounds.Height())
	})
}

func (f *fakeBackend) Resize(id platform.WindowID, width, height int) error {
	return f.update("resize", id, func(w *platform.Window) {
		w.Bounds = platform.RectFromSize(w.Bounds.Left, w.Bounds.Top, width, height)
	})
}

func (f *fakeBackend) GrabRect(r platform.Rect, fn platform.GrabFunc) error {
	if f.grabErr != nil {
		return f.grabErr
	}
	return fn(fill(r.Width(), r.Height()))
}

func (f *fakeBackend) GrabWindow(id platform.WindowID, fn platform.GrabFunc) error {
	w, err := f.Window(id)
	if err != nil {
		return err
	}
	if f.grabErr != nil {
		return f.grabErr
	}
	return fn(fill(w.Bounds.Width(), w.Bounds.Height()))
}

func (f *fakeBackend) ProcessEnv(base []string) []string { return base }

func (f *fakeBackend) Close() error { return nil }

var errGrab = errors.New("grab failed")

func fill(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 40, G: 80, B: 120, A: 255})
		}
	}
	return img
}
