package mcp

import "github.com/1broseidon/winsight/internal/desktop"

// TakeScreenshotInput is the input for the take_screenshot tool.
type TakeScreenshotInput struct {
	Monitor *int `json:"monitor,omitempty" jsonschema:"Monitor id from list_monitors (1-based). Omit or pass 0 to capture the whole virtual desktop."`
}

// ScreenshotRegionInput is the input for the screenshot_region tool.
type ScreenshotRegionInput struct {
	X      int `json:"x" jsonschema:"Left edge in virtual-screen coordinates (may be negative)"`
	Y      int `json:"y" jsonschema:"Top edge in virtual-screen coordinates (may be negative)"`
	Width  int `json:"width" jsonschema:"Region width in pixels, must be positive"`
	Height int `json:"height" jsonschema:"Region height in pixels, must be positive"`
}

// ScreenshotWindowInput is the input for the screenshot_window tool.
type ScreenshotWindowInput struct {
	WindowTitle string `json:"window_title,omitempty" jsonschema:"Case-insensitive substring of the window title; the first visible match in z-order is used"`
	Handle      uint64 `json:"handle,omitempty" jsonschema:"Window handle from an earlier result. Used when window_title is empty."`
}

// WindowTitleInput is the input for tools that act on one window.
type WindowTitleInput struct {
	WindowTitle string `json:"window_title" jsonschema:"Case-insensitive substring of the window title; the first visible match in z-order is used"`
}

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct {
	Filter string `json:"filter,omitempty" jsonschema:"Optional case-insensitive substring the title must contain"`
}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Count   int                        `json:"count"`
	Windows []desktop.WindowDescriptor `json:"windows"`
}

// ResizeWindowInput is the input for the resize_window tool.
type ResizeWindowInput struct {
	WindowTitle string `json:"window_title" jsonschema:"Case-insensitive substring of the window title"`
	Width       int    `json:"width" jsonschema:"New outer width in pixels, must be positive"`
	Height      int    `json:"height" jsonschema:"New outer height in pixels, must be positive"`
}

// MoveWindowInput is the input for the move_window tool.
type MoveWindowInput struct {
	WindowTitle string `json:"window_title" jsonschema:"Case-insensitive substring of the window title"`
	X           int    `json:"x" jsonschema:"New left edge in virtual-screen coordinates"`
	Y           int    `json:"y" jsonschema:"New top edge in virtual-screen coordinates"`
}

// WindowActionOutput is the output for tools that change a window.
type WindowActionOutput struct {
	OK      bool                     `json:"ok"`
	Message string                   `json:"message"`
	Window  desktop.WindowDescriptor `json:"window"`
}

// WaitForWindowInput is the input for the wait_for_window tool.
type WaitForWindowInput struct {
	WindowTitle string `json:"window_title" jsonschema:"Case-insensitive substring of the window title to wait for"`
	Timeout     int    `json:"timeout,omitempty" jsonschema:"Timeout in seconds (default: 30, max: 300)"`
}

// ListMonitorsInput is the input for the list_monitors tool.
type ListMonitorsInput struct{}

// ListMonitorsOutput is the output for the list_monitors tool.
type ListMonitorsOutput struct {
	Count    int                         `json:"count"`
	Monitors []desktop.MonitorDescriptor `json:"monitors"`
}

// OpenApplicationInput is the input for the open_application tool.
type OpenApplicationInput struct {
	Command       string   `json:"command" jsonschema:"Executable name or path, resolved through PATH"`
	Args          []string `json:"args,omitempty" jsonschema:"Command-line arguments"`
	WaitForWindow string   `json:"wait_for_window,omitempty" jsonschema:"Optional window title substring to wait for after starting"`
	Timeout       int      `json:"timeout,omitempty" jsonschema:"Seconds to wait for the window (default: 10). Only used when wait_for_window is set."`
}
