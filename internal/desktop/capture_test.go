package desktop

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"reflect"
	"testing"

	"github.com/1broseidon/winsight/internal/platform"
)

func newTestCapturer(fb *fakeBackend) *Capturer {
	topo := NewTopology(fb)
	reg := NewRegistry(fb, DefaultWaitPolicy())
	return NewCapturer(fb, topo, reg, PNGEncoder{})
}

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png decode: %v", err)
	}
	return img
}

func TestCaptureRegionReportsRequestedDimensions(t *testing.T) {
	fb := newFakeBackend()
	c := newTestCapturer(fb)

	res, err := c.CaptureRegion(-100, 50, 321, 123)
	if err != nil {
		t.Fatalf("CaptureRegion: %v", err)
	}
	if res.Width != 321 || res.Height != 123 || res.Format != "png" || res.Source != SourceRegion {
		t.Fatalf("result = %+v", res)
	}
	img := decodePNG(t, res.PNG)
	if b := img.Bounds(); b.Dx() != 321 || b.Dy() != 123 {
		t.Fatalf("decoded size = %v, want 321x123", b)
	}
	if want := platform.RectFromSize(-100, 50, 321, 123); fb.grabs[0] != want || res.Bounds != want {
		t.Fatalf("grabbed %+v, reported %+v, want %+v", fb.grabs[0], res.Bounds, want)
	}
	if fb.live != 0 {
		t.Fatalf("%d resources still live", fb.live)
	}
}

func TestCaptureRegionRejectsInvalidDimensions(t *testing.T) {
	for _, dims := range [][2]int{{0, 10}, {10, 0}, {-5, 10}} {
		fb := newFakeBackend()
		_, err := newTestCapturer(fb).CaptureRegion(0, 0, dims[0], dims[1])
		if !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("CaptureRegion(%v) err = %v, want InvalidArgument", dims, err)
		}
		if len(fb.acquired) != 0 {
			t.Fatalf("CaptureRegion(%v) acquired %v, want no OS calls", dims, fb.acquired)
		}
	}
}

func TestCaptureScreen(t *testing.T) {
	fb := newFakeBackend()
	c := newTestCapturer(fb)

	full, err := c.CaptureScreen(nil)
	if err != nil {
		t.Fatalf("CaptureScreen(nil): %v", err)
	}
	if full.Source != SourceScreen || full.Width != 4480 || full.Height != 1440 {
		t.Fatalf("full = %+v", full)
	}

	zero := 0
	combined, err := c.CaptureScreen(&zero)
	if err != nil {
		t.Fatalf("CaptureScreen(0): %v", err)
	}
	if combined.Source != SourceScreen || combined.Width != 4480 {
		t.Fatalf("monitor 0 = %+v, want the whole virtual screen", combined)
	}

	id := 2
	mon, err := c.CaptureScreen(&id)
	if err != nil {
		t.Fatalf("CaptureScreen(2): %v", err)
	}
	if mon.Source != SourceMonitor || mon.Width != 2560 || mon.Height != 1440 || mon.Bounds.Left != 1920 {
		t.Fatalf("monitor = %+v", mon)
	}

	missing := 9
	before := len(fb.acquired)
	if _, err := c.CaptureScreen(&missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("CaptureScreen(9) err = %v, want NotFound", err)
	}
	if len(fb.acquired) != before {
		t.Fatal("unknown monitor must not reach the capture path")
	}
}

func TestCaptureWindowRendersWindowContentNotScreen(t *testing.T) {
	fb := newFakeBackend()
	// Calculator overlaps Notepad on screen; the grab must still show Notepad.
	c := newTestCapturer(fb)

	res, err := c.CaptureWindow("notepad")
	if err != nil {
		t.Fatalf("CaptureWindow: %v", err)
	}
	if res.Source != SourceWindow || res.Window == nil || res.Window.Handle != 0x10 {
		t.Fatalf("result = %+v", res)
	}
	if res.Width != 800 || res.Height != 600 {
		t.Fatalf("size = %dx%d, want 800x600", res.Width, res.Height)
	}
	got := color.RGBAModel.Convert(decodePNG(t, res.PNG).At(400, 300)).(color.RGBA)
	if got != fb.windowColors[0x10] {
		t.Fatalf("pixel = %+v, want window content %+v", got, fb.windowColors[0x10])
	}
	if len(fb.grabs) != 0 {
		t.Fatal("window capture must not copy the screen")
	}
}

func TestCaptureWindowNotFound(t *testing.T) {
	fb := newFakeBackend()
	if _, err := newTestCapturer(fb).CaptureWindow("Photoshop"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want NotFound", err)
	}
	if len(fb.acquired) != 0 {
		t.Fatalf("acquired %v, want none", fb.acquired)
	}
}

func TestCaptureHandleStaleHandle(t *testing.T) {
	fb := newFakeBackend()
	c := newTestCapturer(fb)

	if _, err := c.CaptureHandle(0x20); err != nil {
		t.Fatalf("CaptureHandle(live): %v", err)
	}
	_, err := c.CaptureHandle(0xdead)
	if !errors.Is(err, ErrOperationFailed) || !errors.Is(err, platform.ErrInvalidWindow) {
		t.Fatalf("err = %v, want OperationFailed wrapping ErrInvalidWindow", err)
	}
}

func TestCaptureEncodeFailureReleasesEverything(t *testing.T) {
	fb := newFakeBackend()
	c := newTestCapturer(fb)
	encodeErr := errors.New("disk full")
	c.encode = func(image.Image) ([]byte, int, int, error) { return nil, 0, 0, encodeErr }

	_, err := c.CaptureRegion(0, 0, 64, 64)
	if !errors.Is(err, ErrOperationFailed) || !errors.Is(err, encodeErr) {
		t.Fatalf("err = %v, want OperationFailed wrapping the encode error", err)
	}
	if fb.live != 0 {
		t.Fatalf("%d resources still live after encode failure", fb.live)
	}
	want := []string{"select", "bitmap", "mem-dc", "screen-dc"}
	if !reflect.DeepEqual(fb.released, want) {
		t.Fatalf("release order = %v, want %v", fb.released, want)
	}

	fb.released = nil
	if _, err := c.CaptureWindow("Calculator"); !errors.Is(err, encodeErr) {
		t.Fatalf("window err = %v, want encode error", err)
	}
	if fb.live != 0 {
		t.Fatalf("%d resources still live after window encode failure", fb.live)
	}
}

func TestCaptureAcquisitionFailureReleasesAcquired(t *testing.T) {
	for _, step := range []string{"screen-dc", "mem-dc", "bitmap", "select"} {
		t.Run(step, func(t *testing.T) {
			fb := newFakeBackend()
			fb.failAcquire = step
			_, err := newTestCapturer(fb).CaptureScreen(nil)
			if !errors.Is(err, ErrOperationFailed) {
				t.Fatalf("err = %v, want OperationFailed", err)
			}
			if fb.live != 0 {
				t.Fatalf("%d resources still live", fb.live)
			}
			if len(fb.released) != len(fb.acquired) {
				t.Fatalf("acquired %v but released %v", fb.acquired, fb.released)
			}
		})
	}
}

func TestPNGEncoderDownscale(t *testing.T) {
	img := solid(400, 200, color.RGBA{R: 1, G: 2, B: 3, A: 255})

	data, w, h, err := PNGEncoder{MaxDimension: 100, Compression: png.BestSpeed}.Encode(img)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if w != 100 || h != 50 {
		t.Fatalf("encoded size = %dx%d, want 100x50", w, h)
	}
	if b := decodePNG(t, data).Bounds(); b.Dx() != 100 || b.Dy() != 50 {
		t.Fatalf("decoded size = %v", b)
	}

	_, w, h, err = PNGEncoder{MaxDimension: 1000}.Encode(img)
	if err != nil || w != 400 || h != 200 {
		t.Fatalf("no-op downscale = %dx%d, %v", w, h, err)
	}
}
