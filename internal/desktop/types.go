package desktop

import "github.com/1broseidon/winsight/internal/platform"

// WindowDescriptor is a snapshot of a top-level window. Handle is owned by
// the OS and is only valid until the window is destroyed.
type WindowDescriptor struct {
	Handle    uint64        `json:"handle"`
	Title     string        `json:"title"`
	Bounds    platform.Rect `json:"bounds"`
	Width     int           `json:"width"`
	Height    int           `json:"height"`
	State     string        `json:"state"`
	IsVisible bool          `json:"is_visible"`
	IsActive  bool          `json:"is_active"`
	PID       int           `json:"pid,omitempty"`
	ClassName string        `json:"class_name,omitempty"`
}

func describe(w platform.Window, active platform.WindowID) WindowDescriptor {
	bounds := w.Bounds.Normalize()
	return WindowDescriptor{
		Handle:    uint64(w.ID),
		Title:     w.Title,
		Bounds:    bounds,
		Width:     bounds.Width(),
		Height:    bounds.Height(),
		State:     w.State.String(),
		IsVisible: w.Visible,
		IsActive:  active != 0 && w.ID == active,
		PID:       w.PID,
		ClassName: w.ClassName,
	}
}

// MonitorDescriptor describes one monitor. IDs are 1-based and follow OS
// enumeration order.
type MonitorDescriptor struct {
	ID        int           `json:"id"`
	Name      string        `json:"name"`
	Bounds    platform.Rect `json:"bounds"`
	WorkArea  platform.Rect `json:"work_area"`
	Width     int           `json:"width"`
	Height    int           `json:"height"`
	IsPrimary bool          `json:"is_primary"`
}

// Capture sources.
const (
	SourceScreen  = "screen"
	SourceMonitor = "monitor"
	SourceRegion  = "region"
	SourceWindow  = "window"
)

// CaptureResult holds one encoded frame and the dimensions of the encoded
// image.
type CaptureResult struct {
	PNG    []byte        `json:"-"`
	Width  int           `json:"width"`
	Height int           `json:"height"`
	Format string        `json:"format"`
	Source string        `json:"source"`
	Bounds platform.Rect `json:"bounds"`
	// Window is set for window captures.
	Window *WindowDescriptor `json:"window,omitempty"`
}

// LaunchHandle reports a started process. The process is not tracked after
// the launch call returns.
type LaunchHandle struct {
	PID         int               `json:"pid"`
	Command     string            `json:"command"`
	Args        []string          `json:"args,omitempty"`
	ProcessName string            `json:"process_name,omitempty"`
	Running     bool              `json:"running"`
	Window      *WindowDescriptor `json:"window,omitempty"`
}
