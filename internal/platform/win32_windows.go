//go:build windows

package platform

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")
	gdi32  = windows.NewLazySystemDLL("gdi32.dll")

	procGetWindowRect             = user32.NewProc("GetWindowRect")
	procGetWindowPlacement        = user32.NewProc("GetWindowPlacement")
	procGetClassNameW             = user32.NewProc("GetClassNameW")
	procGetWindowTextW            = user32.NewProc("GetWindowTextW")
	procGetWindowTextLengthW      = user32.NewProc("GetWindowTextLengthW")
	procShowWindow                = user32.NewProc("ShowWindow")
	procSetForegroundWindow       = user32.NewProc("SetForegroundWindow")
	procBringWindowToTop          = user32.NewProc("BringWindowToTop")
	procAttachThreadInput         = user32.NewProc("AttachThreadInput")
	procSetWindowPos              = user32.NewProc("SetWindowPos")
	procPrintWindow               = user32.NewProc("PrintWindow")
	procGetDC                     = user32.NewProc("GetDC")
	procGetWindowDC               = user32.NewProc("GetWindowDC")
	procReleaseDC                 = user32.NewProc("ReleaseDC")
	procEnumDisplayMonitors       = user32.NewProc("EnumDisplayMonitors")
	procGetMonitorInfoW           = user32.NewProc("GetMonitorInfoW")
	procGetSystemMetrics          = user32.NewProc("GetSystemMetrics")
	procSetProcessDpiAwarenessCtx = user32.NewProc("SetProcessDpiAwarenessContext")
	procSetProcessDPIAware        = user32.NewProc("SetProcessDPIAware")
	procCreateCompatibleDC        = gdi32.NewProc("CreateCompatibleDC")
	procCreateCompatibleBitmap    = gdi32.NewProc("CreateCompatibleBitmap")
	procSelectObject              = gdi32.NewProc("SelectObject")
	procBitBlt                    = gdi32.NewProc("BitBlt")
	procGetDIBits                 = gdi32.NewProc("GetDIBits")
	procDeleteObject              = gdi32.NewProc("DeleteObject")
	procDeleteDC                  = gdi32.NewProc("DeleteDC")
)

const (
	swShowMinimized = 2
	swShowMaximized = 3
	swMaximize      = 3
	swShow          = 5
	swMinimize      = 6
	swRestore       = 9

	swpNoSize     = 0x0001
	swpNoMove     = 0x0002
	swpNoZOrder   = 0x0004
	swpNoActivate = 0x0010

	smXVirtualScreen  = 76
	smYVirtualScreen  = 77
	smCXVirtualScreen = 78
	smCYVirtualScreen = 79

	monitorInfoFPrimary = 0x1

	srcCopy    = 0x00CC0020
	captureBlt = 0x40000000

	biRGB        = 0
	dibRGBColors = 0

	// PW_RENDERFULLCONTENT asks DWM for the composed window content,
	// including DirectComposition and hardware-accelerated surfaces.
	pwRenderFullContent = 0x2

	hgdiError = ^uintptr(0)
)

// dpiAwarenessPerMonitorV2 is DPI_AWARENESS_CONTEXT_PER_MONITOR_AWARE_V2 (-4).
var dpiAwarenessPerMonitorV2 = ^uintptr(3)

type rect32 struct {
	Left, Top, Right, Bottom int32
}

func (r rect32) toRect() Rect {
	return Rect{
		Left:   int(r.Left),
		Top:    int(r.Top),
		Right:  int(r.Right),
		Bottom: int(r.Bottom),
	}.Normalize()
}

type point32 struct {
	X, Y int32
}

type windowPlacement struct {
	Length           uint32
	Flags            uint32
	ShowCmd          uint32
	PtMinPosition    point32
	PtMaxPosition    point32
	RcNormalPosition rect32
}

type monitorInfoEx struct {
	CbSize    uint32
	RcMonitor rect32
	RcWork    rect32
	DwFlags   uint32
	SzDevice  [32]uint16
}

type bitmapInfoHeader struct {
	BiSize          uint32
	BiWidth         int32
	BiHeight        int32
	BiPlanes        uint16
	BiBitCount      uint16
	BiCompression   uint32
	BiSizeImage     uint32
	BiXPelsPerMeter int32
	BiYPelsPerMeter int32
	BiClrUsed       uint32
	BiClrImportant  uint32
}

type bitmapInfo struct {
	BmiHeader bitmapInfoHeader
	BmiColors [1]uint32
}

func getWindowRect(hwnd windows.HWND) (rect32, bool) {
	var r rect32
	ret, _, _ := procGetWindowRect.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&r)))
	return r, ret != 0
}

func getWindowPlacement(hwnd windows.HWND) (windowPlacement, bool) {
	wp := windowPlacement{}
	wp.Length = uint32(unsafe.Sizeof(wp))
	ret, _, _ := procGetWindowPlacement.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&wp)))
	return wp, ret != 0
}

func getClassName(hwnd windows.HWND) string {
	buf := make([]uint16, 256)
	n, _, _ := procGetClassNameW.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if n == 0 {
		return ""
	}
	return windows.UTF16ToString(buf[:n])
}

func getWindowTitle(hwnd windows.HWND) string {
	length, _, _ := procGetWindowTextLengthW.Call(uintptr(hwnd))
	if length == 0 {
		return ""
	}
	buf := make([]uint16, length+1)
	n, _, _ := procGetWindowTextW.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if n == 0 {
		return ""
	}
	return windows.UTF16ToString(buf[:n])
}

func getSystemMetric(index int) int {
	ret, _, _ := procGetSystemMetrics.Call(uintptr(index))
	return int(int32(ret))
}

func showWindow(hwnd windows.HWND, cmd int) {
	// ShowWindow returns the previous visibility, not success.
	procShowWindow.Call(uintptr(hwnd), uintptr(cmd))
}

func attachThreadInput(from, to uint32, attach bool) bool {
	var flag uintptr
	if attach {
		flag = 1
	}
	ret, _, _ := procAttachThreadInput.Call(uintptr(from), uintptr(to), flag)
	return ret != 0
}

// enableDPIAwareness makes GetWindowRect, monitor rectangles and GDI copies
// all report physical pixels, so captured sizes match reported bounds.
func enableDPIAwareness() {
	if procSetProcessDpiAwarenessCtx.Find() == nil {
		if ret, _, _ := procSetProcessDpiAwarenessCtx.Call(dpiAwarenessPerMonitorV2); ret != 0 {
			return
		}
	}
	if procSetProcessDPIAware.Find() == nil {
		procSetProcessDPIAware.Call()
	}
}
