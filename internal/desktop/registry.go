package desktop

import (
	"context"
	"strings"
	"time"

	"github.com/1broseidon/winsight/internal/platform"
)

// Registry finds top-level windows by title and changes their state and
// geometry. It keeps no state between calls; every operation re-enumerates.
type Registry struct {
	backend platform.Backend
	wait    WaitPolicy

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRegistry creates a Registry over backend.
func NewRegistry(backend platform.Backend, wait WaitPolicy) *Registry {
	return &Registry{
		backend: backend,
		wait:    wait.withDefaults(),
		now:     time.Now,
		sleep:   sleepContext,
	}
}

// ListWindows returns visible top-level windows with a non-blank title in
// front-to-back order, optionally restricted to titles containing filter
// (case-insensitive). An empty result is not an error.
func (r *Registry) ListWindows(filter string) ([]WindowDescriptor, error) {
	windows, active, err := r.visibleWindows("list_windows")
	if err != nil {
		return nil, err
	}

	out := make([]WindowDescriptor, 0, len(windows))
	for _, w := range windows {
		if filter != "" && !containsFold(w.Title, filter) {
			continue
		}
		out = append(out, describe(w, active))
	}
	return out, nil
}

// FindWindow returns the first visible window, in enumeration order, whose
// title contains title case-insensitively.
func (r *Registry) FindWindow(title string) (WindowDescriptor, error) {
	w, active, err := r.resolve("find_window", title)
	if err != nil {
		return WindowDescriptor{}, err
	}
	return describe(w, active), nil
}

// GetWindowInfo resolves title and re-queries the live state of the handle.
func (r *Registry) GetWindowInfo(title string) (WindowDescriptor, error) {
	const op = "get_window_info"
	w, _, err := r.resolve(op, title)
	if err != nil {
		return WindowDescriptor{}, err
	}
	return r.requery(op, w)
}

// FocusWindow makes the window the foreground window, restoring it first if
// it is minimized.
func (r *Registry) FocusWindow(title string) (WindowDescriptor, error) {
	return r.mutate("focus_window", title, func(id platform.WindowID) error {
		return r.backend.Focus(id)
	})
}

func (r *Registry) MinimizeWindow(title string) (WindowDescriptor, error) {
	return r.setState("minimize_window", title, platform.StateMinimized)
}

func (r *Registry) MaximizeWindow(title string) (WindowDescriptor, error) {
	return r.setState("maximize_window", title, platform.StateMaximized)
}

func (r *Registry) RestoreWindow(title string) (WindowDescriptor, error) {
	return r.setState("restore_window", title, platform.StateNormal)
}

// ResizeWindow sets the outer size and keeps the position. Dimensions are
// validated before the window is resolved.
func (r *Registry) ResizeWindow(title string, width, height int) (WindowDescriptor, error) {
	const op = "resize_window"
	if width <= 0 || height <= 0 {
		return WindowDescriptor{}, invalidArgument(op, "width and height must be positive, got %dx%d", width, height)
	}
	return r.mutate(op, title, func(id platform.WindowID) error {
		return r.backend.Resize(id, width, height)
	})
}

// MoveWindow places the window's top-left corner and keeps its size.
func (r *Registry) MoveWindow(title string, x, y int) (WindowDescriptor, error) {
	return r.mutate("move_window", title, func(id platform.WindowID) error {
		return r.backend.Move(id, x, y)
	})
}

// Describe re-queries a window by handle.
func (r *Registry) Describe(handle uint64) (WindowDescriptor, error) {
	const op = "describe_window"
	w, err := r.backend.Window(platform.WindowID(handle))
	if err != nil {
		return WindowDescriptor{}, osFailure(op, err, "query window %#x", handle)
	}
	active, _ := r.backend.ActiveWindow()
	return describe(w, active), nil
}

// FocusHandle focuses a window the caller already holds a handle for,
// skipping title resolution.
func (r *Registry) FocusHandle(handle uint64) (WindowDescriptor, error) {
	const op = "focus_window"
	w, err := r.backend.Window(platform.WindowID(handle))
	if err != nil {
		return WindowDescriptor{}, newError(NotFound, op, err, "no window with handle %#x", handle)
	}
	if err := r.backend.Focus(w.ID); err != nil {
		return WindowDescriptor{}, osFailure(op, err, "%s on window %q", op, w.Title)
	}
	after, err := r.requery(op, w)
	if err != nil {
		active, _ := r.backend.ActiveWindow()
		return describe(w, active), nil
	}
	return after, nil
}

func (r *Registry) setState(op, title string, state platform.ShowState) (WindowDescriptor, error) {
	return r.mutate(op, title, func(id platform.WindowID) error {
		return r.backend.SetState(id, state)
	})
}

// mutate resolves title, applies change and returns the state after the
// change.
func (r *Registry) mutate(op, title string, change func(platform.WindowID) error) (WindowDescriptor, error) {
	w, active, err := r.resolve(op, title)
	if err != nil {
		return WindowDescriptor{}, err
	}
	if err := change(w.ID); err != nil {
		return WindowDescriptor{}, osFailure(op, err, "%s on window %q", op, w.Title)
	}
	after, err := r.requery(op, w)
	if err != nil {
		// The window may close itself in response; report what was changed.
		return describe(w, active), nil
	}
	return after, nil
}

func (r *Registry) requery(op string, w platform.Window) (WindowDescriptor, error) {
	live, err := r.backend.Window(w.ID)
	if err != nil {
		return WindowDescriptor{}, osFailure(op, err, "re-query window %q", w.Title)
	}
	active, _ := r.backend.ActiveWindow()
	return describe(live, active), nil
}

func (r *Registry) resolve(op, title string) (platform.Window, platform.WindowID, error) {
	if strings.TrimSpace(title) == "" {
		return platform.Window{}, 0, invalidArgument(op, "window title must not be empty")
	}
	windows, active, err := r.visibleWindows(op)
	if err != nil {
		return platform.Window{}, 0, err
	}
	for _, w := range windows {
		if containsFold(w.Title, title) {
			return w, active, nil
		}
	}
	return platform.Window{}, 0, newError(NotFound, op, nil, "no visible window title contains %q", title)
}

func (r *Registry) visibleWindows(op string) ([]platform.Window, platform.WindowID, error) {
	all, err := r.backend.Windows()
	if err != nil {
		return nil, 0, osFailure(op, err, "enumerate windows")
	}
	active, _ := r.backend.ActiveWindow()

	visible := make([]platform.Window, 0, len(all))
	for _, w := range all {
		if !w.Visible || strings.TrimSpace(w.Title) == "" {
			continue
		}
		visible = append(visible, w)
	}
	return visible, active, nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
