//go:build windows

package platform

import (
	"fmt"
	"image"
	"runtime"
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

// WindowsBackend implements Backend with user32 and gdi32.
type WindowsBackend struct {
	// restoreDelay lets a minimized window finish its restore animation
	// before foreground activation is forced.
	restoreDelay time.Duration
}

var _ Backend = (*WindowsBackend)(nil)

var dpiOnce sync.Once

// NewWindowsBackend creates the Win32 backend and opts the process into
// per-monitor DPI awareness.
func NewWindowsBackend() *WindowsBackend {
	dpiOnce.Do(enableDPIAwareness)
	return &WindowsBackend{restoreDelay: 300 * time.Millisecond}
}

// Open returns the native backend for this platform.
func Open(_ Options) (Backend, error) {
	return NewWindowsBackend(), nil
}

// EnumWindows and EnumDisplayMonitors callbacks are created once:
// windows.NewCallback slots are a finite per-process resource.
var (
	enumMu          sync.Mutex
	enumWindowsSink []windows.HWND
	enumMonitorSink []uintptr

	enumWindowsCallback = windows.NewCallback(func(hwnd windows.HWND, _ uintptr) uintptr {
		enumWindowsSink = append(enumWindowsSink, hwnd)
		return 1
	})
	enumMonitorsCallback = windows.NewCallback(func(hmonitor, _ uintptr, _ *rect32, _ uintptr) uintptr {
		enumMonitorSink = append(enumMonitorSink, hmonitor)
		return 1
	})
)

func topLevelWindows() ([]windows.HWND, error) {
	enumMu.Lock()
	defer enumMu.Unlock()

	enumWindowsSink = make([]windows.HWND, 0, 256)
	if err := windows.EnumWindows(enumWindowsCallback, nil); err != nil {
		return nil, fmt.Errorf("EnumWindows: %w", err)
	}
	out := enumWindowsSink
	enumWindowsSink = nil
	return out, nil
}

func monitorHandles() ([]uintptr, error) {
	enumMu.Lock()
	defer enumMu.Unlock()

	enumMonitorSink = make([]uintptr, 0, 4)
	ret, _, callErr := procEnumDisplayMonitors.Call(0, 0, enumMonitorsCallback, 0)
	if ret == 0 {
		return nil, fmt.Errorf("EnumDisplayMonitors: %w", callErr)
	}
	out := enumMonitorSink
	enumMonitorSink = nil
	return out, nil
}

// Displays returns all active monitors.
func (b *WindowsBackend) Displays() ([]Display, error) {
	handles, err := monitorHandles()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(handles))
	for _, h := range handles {
		info := monitorInfoEx{}
		info.CbSize = uint32(unsafe.Sizeof(info))
		ret, _, callErr := procGetMonitorInfoW.Call(h, uintptr(unsafe.Pointer(&info)))
		if ret == 0 {
			return nil, fmt.Errorf("GetMonitorInfo: %w", callErr)
		}
		displays = append(displays, Display{
			Name:    windows.UTF16ToString(info.SzDevice[:]),
			Bounds:  info.RcMonitor.toRect(),
			Usable:  info.RcWork.toRect(),
			Primary: info.DwFlags&monitorInfoFPrimary != 0,
		})
	}
	return displays, nil
}

// VirtualScreen returns the bounding rectangle of all monitors.
func (b *WindowsBackend) VirtualScreen() (Rect, error) {
	r := RectFromSize(
		getSystemMetric(smXVirtualScreen),
		getSystemMetric(smYVirtualScreen),
		getSystemMetric(smCXVirtualScreen),
		getSystemMetric(smCYVirtualScreen),
	)
	if r.Empty() {
		return Rect{}, fmt.Errorf("GetSystemMetrics reported an empty virtual screen")
	}
	return r, nil
}

// Windows lists top-level windows in z-order, topmost first.
func (b *WindowsBackend) Windows() ([]Window, error) {
	hwnds, err := topLevelWindows()
	if err != nil {
		return nil, err
	}
	out := make([]Window, 0, len(hwnds))
	for _, hwnd := range hwnds {
		w, ok := describeWindow(hwnd)
		if !ok {
			continue
		}
		out = append(out, w)
	}
	return out, nil
}

// Window re-queries one window.
func (b *WindowsBackend) Window(id WindowID) (Window, error) {
	w, ok := describeWindow(windows.HWND(id))
	if !ok {
		return Window{}, ErrInvalidWindow
	}
	return w, nil
}

// ActiveWindow returns the current foreground window.
func (b *WindowsBackend) ActiveWindow() (WindowID, error) {
	return WindowID(windows.GetForegroundWindow()), nil
}

func describeWindow(hwnd windows.HWND) (Window, bool) {
	if !windows.IsWindow(hwnd) {
		return Window{}, false
	}
	r, ok := getWindowRect(hwnd)
	if !ok {
		return Window{}, false
	}

	state := StateNormal
	if wp, ok := getWindowPlacement(hwnd); ok {
		switch wp.ShowCmd {
		case swShowMinimized:
			state = StateMinimized
		case swShowMaximized:
			state = StateMaximized
		}
	}

	var pid uint32
	windows.GetWindowThreadProcessId(hwnd, &pid)

	return Window{
		ID:        WindowID(hwnd),
		PID:       int(pid),
		ClassName: getClassName(hwnd),
		Title:     getWindowTitle(hwnd),
		Bounds:    r.toRect(),
		State:     state,
		Visible:   windows.IsWindowVisible(hwnd),
	}, true
}

func liveWindow(id WindowID) (windows.HWND, error) {
	hwnd := windows.HWND(id)
	if hwnd == 0 || !windows.IsWindow(hwnd) {
		return 0, ErrInvalidWindow
	}
	return hwnd, nil
}

// Focus brings a window to the foreground. Windows ignores
// SetForegroundWindow from a process that does not own the foreground, so the
// calling thread temporarily attaches its input queue to the foreground
// thread first. Thread identity matters here, hence the locked OS thread.
func (b *WindowsBackend) Focus(id WindowID) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	hwnd, err := liveWindow(id)
	if err != nil {
		return err
	}

	if wp, ok := getWindowPlacement(hwnd); ok && wp.ShowCmd == swShowMinimized {
		showWindow(hwnd, swRestore)
		time.Sleep(b.restoreDelay)
	}

	current := windows.GetCurrentThreadId()
	if fg := windows.GetForegroundWindow(); fg != 0 && fg != hwnd {
		fgThread, _ := windows.GetWindowThreadProcessId(fg, nil)
		if fgThread != 0 && fgThread != current && attachThreadInput(current, fgThread, true) {
			defer attachThreadInput(current, fgThread, false)
		}
	}

	procBringWindowToTop.Call(uintptr(hwnd))
	showWindow(hwnd, swShow)
	ret, _, callErr := procSetForegroundWindow.Call(uintptr(hwnd))
	if ret == 0 {
		if !windows.IsWindow(hwnd) {
			return ErrInvalidWindow
		}
		return fmt.Errorf("SetForegroundWindow refused activation: %w", callErr)
	}
	return nil
}

// SetState minimizes, maximizes or restores a window.
func (b *WindowsBackend) SetState(id WindowID, state ShowState) error {
	hwnd, err := liveWindow(id)
	if err != nil {
		return err
	}
	switch state {
	case StateMinimized:
		showWindow(hwnd, swMinimize)
	case StateMaximized:
		showWindow(hwnd, swMaximize)
	default:
		showWindow(hwnd, swRestore)
	}
	if !windows.IsWindow(hwnd) {
		return ErrInvalidWindow
	}
	return nil
}

// Move sets a window's position, keeping its size and z-order.
func (b *WindowsBackend) Move(id WindowID, x, y int) error {
	hwnd, err := liveWindow(id)
	if err != nil {
		return err
	}
	return setWindowPosChecked(hwnd, x, y, 0, 0, swpNoSize|swpNoZOrder|swpNoActivate)
}

// Resize sets a window's outer size, keeping its position and z-order.
func (b *WindowsBackend) Resize(id WindowID, width, height int) error {
	hwnd, err := liveWindow(id)
	if err != nil {
		return err
	}
	return setWindowPosChecked(hwnd, 0, 0, width, height, swpNoMove|swpNoZOrder|swpNoActivate)
}

func setWindowPosChecked(hwnd windows.HWND, x, y, cx, cy int, flags uint32) error {
	ret, _, callErr := procSetWindowPos.Call(
		uintptr(hwnd),
		0,
		uintptr(int32(x)),
		uintptr(int32(y)),
		uintptr(int32(cx)),
		uintptr(int32(cy)),
		uintptr(flags),
	)
	if ret == 0 {
		return fmt.Errorf("SetWindowPos: %w", callErr)
	}
	return nil
}

// GrabRect copies a rectangle of the visible screen:
// GetDC(screen) → CreateCompatibleDC → CreateCompatibleBitmap → SelectObject
// → BitBlt → GetDIBits. fn runs before any of them is released.
func (b *WindowsBackend) GrabRect(r Rect, fn GrabFunc) (err error) {
	if r.Empty() {
		return fmt.Errorf("empty capture rectangle %+v", r)
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	chain := &Chain{}
	defer chain.ReleaseInto(&err)

	screenDC, _, callErr := procGetDC.Call(0)
	if screenDC == 0 {
		return fmt.Errorf("GetDC(screen): %w", callErr)
	}
	chain.Push("screen DC", func() error { return releaseDC(0, screenDC) })

	w, h := r.Width(), r.Height()
	img, err := renderToBitmap(chain, screenDC, w, h, func(memDC uintptr) error {
		ret, _, callErr := procBitBlt.Call(
			memDC, 0, 0, uintptr(int32(w)), uintptr(int32(h)),
			screenDC, uintptr(int32(r.Left)), uintptr(int32(r.Top)),
			srcCopy|captureBlt,
		)
		if ret == 0 {
			return fmt.Errorf("BitBlt: %w", callErr)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return fn(img)
}

// GrabWindow asks the window to paint itself into a memory bitmap with
// PrintWindow(PW_RENDERFULLCONTENT). Because the content comes from the
// window's own rendering (through DWM's redirection surface), it is correct
// when the window is covered. A minimized window is rendered at its restored
// size; DWM serves the surface it kept from before minimizing.
func (b *WindowsBackend) GrabWindow(id WindowID, fn GrabFunc) (err error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	hwnd, err := liveWindow(id)
	if err != nil {
		return err
	}

	r, ok := getWindowRect(hwnd)
	if !ok {
		return ErrInvalidWindow
	}
	size := r.toRect()
	if wp, ok := getWindowPlacement(hwnd); ok && wp.ShowCmd == swShowMinimized {
		size = wp.RcNormalPosition.toRect()
	}
	w, h := size.Width(), size.Height()
	if w <= 0 || h <= 0 {
		return fmt.Errorf("window has no drawable area (%dx%d)", w, h)
	}

	chain := &Chain{}
	defer chain.ReleaseInto(&err)

	windowDC, _, callErr := procGetWindowDC.Call(uintptr(hwnd))
	if windowDC == 0 {
		if !windows.IsWindow(hwnd) {
			return ErrInvalidWindow
		}
		return fmt.Errorf("GetWindowDC: %w", callErr)
	}
	chain.Push("window DC", func() error { return releaseDC(uintptr(hwnd), windowDC) })

	img, err := renderToBitmap(chain, windowDC, w, h, func(memDC uintptr) error {
		ret, _, callErr := procPrintWindow.Call(uintptr(hwnd), memDC, pwRenderFullContent)
		if ret == 0 {
			if !windows.IsWindow(hwnd) {
				return ErrInvalidWindow
			}
			return fmt.Errorf("PrintWindow: %w", callErr)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return fn(img)
}

// renderToBitmap creates a memory DC and a w×h bitmap compatible with srcDC,
// lets draw fill it, and reads the pixels back top-down. Each acquired GDI
// object is pushed onto chain as soon as it exists.
func renderToBitmap(chain *Chain, srcDC uintptr, w, h int, draw func(memDC uintptr) error) (*image.RGBA, error) {
	memDC, _, callErr := procCreateCompatibleDC.Call(srcDC)
	if memDC == 0 {
		return nil, fmt.Errorf("CreateCompatibleDC: %w", callErr)
	}
	chain.Push("compatible DC", func() error { return deleteDC(memDC) })

	bitmap, _, callErr := procCreateCompatibleBitmap.Call(srcDC, uintptr(int32(w)), uintptr(int32(h)))
	if bitmap == 0 {
		return nil, fmt.Errorf("CreateCompatibleBitmap(%dx%d): %w", w, h, callErr)
	}
	chain.Push("compatible bitmap", func() error { return deleteObject(bitmap) })

	previous, _, callErr := procSelectObject.Call(memDC, bitmap)
	if previous == 0 || previous == hgdiError {
		return nil, fmt.Errorf("SelectObject: %w", callErr)
	}
	deselect := chain.PushEarly("bitmap selection", func() error {
		procSelectObject.Call(memDC, previous)
		return nil
	})

	if err := draw(memDC); err != nil {
		return nil, err
	}
	// GetDIBits requires the bitmap to be out of every DC.
	deselect()

	bmi := bitmapInfo{}
	bmi.BmiHeader = bitmapInfoHeader{
		BiSize:        uint32(unsafe.Sizeof(bmi.BmiHeader)),
		BiWidth:       int32(w),
		BiHeight:      -int32(h), // negative height: top-down rows
		BiPlanes:      1,
		BiBitCount:    32,
		BiCompression: biRGB,
	}
	stride := w * 4
	buf := make([]byte, stride*h)
	lines, _, callErr := procGetDIBits.Call(
		memDC,
		bitmap,
		0,
		uintptr(uint32(h)),
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(unsafe.Pointer(&bmi)),
		dibRGBColors,
	)
	if lines == 0 {
		return nil, fmt.Errorf("GetDIBits: %w", callErr)
	}
	return BGRAToRGBA(buf, w, h, stride)
}

func releaseDC(hwnd, hdc uintptr) error {
	if ret, _, callErr := procReleaseDC.Call(hwnd, hdc); ret == 0 {
		return fmt.Errorf("ReleaseDC: %w", callErr)
	}
	return nil
}

func deleteDC(hdc uintptr) error {
	if ret, _, callErr := procDeleteDC.Call(hdc); ret == 0 {
		return fmt.Errorf("DeleteDC: %w", callErr)
	}
	return nil
}

func deleteObject(obj uintptr) error {
	if ret, _, callErr := procDeleteObject.Call(obj); ret == 0 {
		return fmt.Errorf("DeleteObject: %w", callErr)
	}
	return nil
}

// ProcessEnv returns base unchanged; Win32 needs no session variables.
func (b *WindowsBackend) ProcessEnv(base []string) []string {
	return base
}

// Close is a no-op; the backend holds no OS resources between calls.
func (b *WindowsBackend) Close() error {
	return nil
}
