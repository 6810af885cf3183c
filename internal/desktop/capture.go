package desktop

import (
	"image"

	"github.com/1broseidon/winsight/internal/platform"
)

// Capturer produces PNG frames of the screen, a monitor, a region or a
// window. Every OS resource used for a frame is released before a Capture
// method returns, including when encoding fails.
type Capturer struct {
	backend  platform.Backend
	topology *Topology
	registry *Registry
	encode   func(img image.Image) (data []byte, width, height int, err error)
}

// NewCapturer creates a Capturer. Window captures resolve titles through
// registry.
func NewCapturer(backend platform.Backend, topology *Topology, registry *Registry, enc PNGEncoder) *Capturer {
	return &Capturer{
		backend:  backend,
		topology: topology,
		registry: registry,
		encode:   enc.Encode,
	}
}

// CaptureScreen captures the full virtual desktop when monitorID is nil or
// 0, otherwise the monitor with that id.
func (c *Capturer) CaptureScreen(monitorID *int) (CaptureResult, error) {
	const op = "capture_screen"

	if monitorID != nil && *monitorID != 0 {
		m, err := c.topology.Monitor(*monitorID)
		if err != nil {
			return CaptureResult{}, err
		}
		return c.grabRect(op, SourceMonitor, m.Bounds)
	}

	virtual, err := c.backend.VirtualScreen()
	if err != nil {
		return CaptureResult{}, osFailure(op, err, "query virtual screen")
	}
	return c.grabRect(op, SourceScreen, virtual)
}

// CaptureRegion captures an arbitrary rectangle of the virtual desktop.
// Coordinates are not checked against monitor bounds.
func (c *Capturer) CaptureRegion(x, y, width, height int) (CaptureResult, error) {
	const op = "capture_region"
	if width <= 0 || height <= 0 {
		return CaptureResult{}, invalidArgument(op, "width and height must be positive, got %dx%d", width, height)
	}
	return c.grabRect(op, SourceRegion, platform.RectFromSize(x, y, width, height))
}

// CaptureWindow resolves title and renders that window from its own
// content, so windows covered by others are captured intact.
func (c *Capturer) CaptureWindow(title string) (CaptureResult, error) {
	w, err := c.registry.FindWindow(title)
	if err != nil {
		return CaptureResult{}, err
	}
	return c.grabWindow("capture_window", w)
}

// CaptureHandle captures a window by a handle returned earlier.
func (c *Capturer) CaptureHandle(handle uint64) (CaptureResult, error) {
	w, err := c.registry.Describe(handle)
	if err != nil {
		return CaptureResult{}, err
	}
	return c.grabWindow("capture_handle", w)
}

func (c *Capturer) grabRect(op, source string, r platform.Rect) (CaptureResult, error) {
	res := CaptureResult{Format: "png", Source: source, Bounds: r}
	err := c.backend.GrabRect(r, c.encodeInto(op, &res))
	if err != nil {
		return CaptureResult{}, osFailure(op, err, "capture %s %+v", source, r)
	}
	return res, nil
}

func (c *Capturer) grabWindow(op string, w WindowDescriptor) (CaptureResult, error) {
	res := CaptureResult{Format: "png", Source: SourceWindow, Bounds: w.Bounds, Window: &w}
	err := c.backend.GrabWindow(platform.WindowID(w.Handle), c.encodeInto(op, &res))
	if err != nil {
		return CaptureResult{}, osFailure(op, err, "capture window %q", w.Title)
	}
	return res, nil
}

// encodeInto runs while the backend still holds the frame's resources.
func (c *Capturer) encodeInto(op string, res *CaptureResult) platform.GrabFunc {
	return func(img *image.RGBA) error {
		data, w, h, err := c.encode(img)
		if err != nil {
			return newError(OperationFailed, op, err, "encode %s capture", res.Source)
		}
		res.PNG, res.Width, res.Height = data, w, h
		return nil
	}
}
