package desktop

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/1broseidon/winsight/internal/platform"
)

// fakeBackend is an in-memory desktop. Grabs acquire named fake resources on
// a platform.Chain in the same order the Win32 backend does, so tests can
// check that nothing stays live.
type fakeBackend struct {
	mu sync.Mutex

	displays    []platform.Display
	displaysErr error
	virtual     platform.Rect
	windows     []platform.Window
	windowsErr  error
	active      platform.WindowID

	screenColor color.RGBA
	// windowColors is what each window paints itself with; it differs from
	// screenColor so a window grab cannot be confused with a screen copy.
	windowColors map[platform.WindowID]color.RGBA

	failAcquire string
	mutateErr   error

	live      int
	acquired  []string
	released  []string
	mutations []string
	grabs     []platform.Rect
	env       []string
}

var _ platform.Backend = (*fakeBackend)(nil)

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		displays: []platform.Display{
			{Name: `\\.\DISPLAY1`, Bounds: platform.RectFromSize(0, 0, 1920, 1080), Usable: platform.RectFromSize(0, 0, 1920, 1040), Primary: true},
			{Name: `\\.\DISPLAY2`, Bounds: platform.RectFromSize(1920, 0, 2560, 1440), Usable: platform.RectFromSize(1920, 0, 2560, 1440)},
		},
		virtual:     platform.RectFromSize(0, 0, 4480, 1440),
		screenColor: color.RGBA{R: 10, G: 20, B: 30, A: 255},
		windowColors: map[platform.WindowID]color.RGBA{
			0x10: {R: 200, G: 10, B: 10, A: 255},
			0x20: {R: 10, G: 200, B: 10, A: 255},
		},
		windows: []platform.Window{
			{ID: 0x30, Title: "   ", Bounds: platform.RectFromSize(0, 0, 10, 10), Visible: true},
			{ID: 0x10, PID: 4242, ClassName: "Notepad", Title: "Untitled - Notepad", Bounds: platform.RectFromSize(100, 100, 800, 600), Visible: true},
			{ID: 0x40, Title: "Hidden Notepad helper", Bounds: platform.RectFromSize(0, 0, 10, 10)},
			{ID: 0x20, PID: 77, ClassName: "ApplicationFrameWindow", Title: "Calculator", Bounds: platform.RectFromSize(50, 50, 320, 500), Visible: true},
		},
		active: 0x20,
	}
}

func (f *fakeBackend) Displays() ([]platform.Display, error) {
	return f.displays, f.displaysErr
}

func (f *fakeBackend) VirtualScreen() (platform.Rect, error) { return f.virtual, nil }

func (f *fakeBackend) Windows() ([]platform.Window, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.windowsErr != nil {
		return nil, f.windowsErr
	}
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

func (f *fakeBackend) addWindow(w platform.Window) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.windows = append([]platform.Window{w}, f.windows...)
}

func (f *fakeBackend) update(id platform.WindowID, change func(w *platform.Window)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.windows {
		if f.windows[i].ID == id {
			change(&f.windows[i])
			return nil
		}
	}
	return platform.ErrInvalidWindow
}

func (f *fakeBackend) recordMutation(format string, args ...any) error {
	f.mutations = append(f.mutations, fmt.Sprintf(format, args...))
	return f.mutateErr
}

func (f *fakeBackend) Focus(id platform.WindowID) error {
	if err := f.recordMutation("focus %#x", id); err != nil {
		return err
	}
	err := f.update(id, func(w *platform.Window) {
		if w.State == platform.StateMinimized {
			w.State = platform.StateNormal
		}
	})
	if err == nil {
		f.active = id
	}
	return err
}

func (f *fakeBackend) SetState(id platform.WindowID, state platform.ShowState) error {
	if err := f.recordMutation("state %#x %s", id, state); err != nil {
		return err
	}
	return f.update(id, func(w *platform.Window) { w.State = state })
}

func (f *fakeBackend) Move(id platform.WindowID, x, y int) error {
	if err := f.recordMutation("move %#x %d,%d", id, x, y); err != nil {
		return err
	}
	return f.update(id, func(w *platform.Window) {
		w.Bounds = platform.RectFromSize(x, y, w.Bounds.Width(), w.Bounds.Height())
	})
}

func (f *fakeBackend) Resize(id platform.WindowID, width, height int) error {
	if err := f.recordMutation("resize %#x %dx%d", id, width, height); err != nil {
		return err
	}
	return f.update(id, func(w *platform.Window) {
		w.Bounds = platform.RectFromSize(w.Bounds.Left, w.Bounds.Top, width, height)
	})
}

func (f *fakeBackend) acquire(chain *platform.Chain, names ...string) error {
	for _, name := range names {
		if name == f.failAcquire {
			return fmt.Errorf("acquire %s: injected failure", name)
		}
		f.live++
		f.acquired = append(f.acquired, name)
		chain.Push(name, func() error {
			f.live--
			f.released = append(f.released, name)
			return nil
		})
	}
	return nil
}

func (f *fakeBackend) GrabRect(r platform.Rect, fn platform.GrabFunc) (err error) {
	chain := &platform.Chain{}
	defer chain.ReleaseInto(&err)

	if err := f.acquire(chain, "screen-dc", "mem-dc", "bitmap", "select"); err != nil {
		return err
	}
	f.grabs = append(f.grabs, r)
	return fn(solid(r.Width(), r.Height(), f.screenColor))
}

func (f *fakeBackend) GrabWindow(id platform.WindowID, fn platform.GrabFunc) (err error) {
	w, err := f.Window(id)
	if err != nil {
		return err
	}

	chain := &platform.Chain{}
	defer chain.ReleaseInto(&err)

	if err := f.acquire(chain, "window-dc", "mem-dc", "bitmap", "select"); err != nil {
		return err
	}
	c, ok := f.windowColors[id]
	if !ok {
		return errors.New("window has no content")
	}
	return fn(solid(w.Bounds.Width(), w.Bounds.Height(), c))
}

func (f *fakeBackend) ProcessEnv(base []string) []string {
	return append(base, f.env...)
}

func (f *fakeBackend) Close() error { return nil }

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}
