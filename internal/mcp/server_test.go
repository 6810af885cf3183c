package mcp

import (
	"bytes"
	"context"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/winsight/internal/config"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, backend *fakeBackend, cfg *config.Config) *Server {
	t.Helper()
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s, err := NewServer(cfg, backend, quietLogger())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// connect serves s over in-memory transports and returns a client session.
func connect(t *testing.T, s *Server) *mcpsdk.ClientSession {
	t.Helper()
	ctx := context.Background()
	serverTransport, clientTransport := mcpsdk.NewInMemoryTransports()
	ss, err := s.Connect(ctx, serverTransport)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	t.Cleanup(func() { ss.Close() })

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { cs.Close() })
	return cs
}

func callTool(t *testing.T, cs *mcpsdk.ClientSession, name string, args map[string]any) *mcpsdk.CallToolResult {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcpsdk.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	return res
}

func resultText(res *mcpsdk.CallToolResult) string {
	var parts []string
	for _, c := range res.Content {
		if tc, ok := c.(*mcpsdk.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func structured(t *testing.T, res *mcpsdk.CallToolResult) map[string]any {
	t.Helper()
	m, ok := res.StructuredContent.(map[string]any)
	if !ok {
		t.Fatalf("structured content = %T, want object", res.StructuredContent)
	}
	return m
}

func TestServer_RegistersAllTools(t *testing.T) {
	cs := connect(t, newTestServer(t, newFakeBackend(), nil))
	res, err := cs.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	want := []string{
		"focus_window", "get_window_info", "list_monitors", "list_windows",
		"maximize_window", "minimize_window", "move_window", "open_application",
		"resize_window", "restore_window", "screenshot_region", "screenshot_window",
		"take_screenshot", "wait_for_window",
	}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("tools = %v\nwant %v", names, want)
	}
}

func TestScreenshotRegion_ReturnsPNGWithRequestedSize(t *testing.T) {
	cs := connect(t, newTestServer(t, newFakeBackend(), nil))
	res := callTool(t, cs, "screenshot_region", map[string]any{"x": -5, "y": 10, "width": 64, "height": 48})
	if res.IsError {
		t.Fatalf("unexpected error: %s", resultText(res))
	}
	if len(res.Content) != 2 {
		t.Fatalf("content = %d items, want image + text", len(res.Content))
	}
	img, ok := res.Content[0].(*mcpsdk.ImageContent)
	if !ok || img.MIMEType != "image/png" {
		t.Fatalf("first content = %#v, want png image", res.Content[0])
	}
	decoded, err := png.Decode(bytes.NewReader(img.Data))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 64 || b.Dy() != 48 {
		t.Fatalf("png size = %dx%d, want 64x48", b.Dx(), b.Dy())
	}

	meta := structured(t, res)
	if meta["width"] != float64(64) || meta["height"] != float64(48) || meta["source"] != "region" {
		t.Fatalf("metadata = %v", meta)
	}
}

func TestTakeScreenshot_MonitorAndUnknownMonitor(t *testing.T) {
	cs := connect(t, newTestServer(t, newFakeBackend(), nil))

	res := callTool(t, cs, "take_screenshot", map[string]any{"monitor": 1})
	if res.IsError {
		t.Fatalf("unexpected error: %s", resultText(res))
	}
	meta := structured(t, res)
	if meta["width"] != float64(1920) || meta["source"] != "monitor" {
		t.Fatalf("metadata = %v", meta)
	}

	res = callTool(t, cs, "take_screenshot", map[string]any{"monitor": 0})
	if res.IsError {
		t.Fatalf("monitor 0: %s", resultText(res))
	}
	if meta := structured(t, res); meta["source"] != "screen" || meta["width"] != float64(4480) {
		t.Fatalf("monitor 0 metadata = %v, want whole virtual screen", meta)
	}

	res = callTool(t, cs, "take_screenshot", map[string]any{"monitor": 9})
	if !res.IsError {
		t.Fatalf("expected error for unknown monitor")
	}
	if !strings.HasPrefix(resultText(res), "not_found:") {
		t.Fatalf("error text = %q", resultText(res))
	}
}

func TestScreenshotWindow_ByTitleAndHandle(t *testing.T) {
	cs := connect(t, newTestServer(t, newFakeBackend(), nil))

	res := callTool(t, cs, "screenshot_window", map[string]any{"window_title": "calc"})
	if res.IsError {
		t.Fatalf("unexpected error: %s", resultText(res))
	}
	meta := structured(t, res)
	if meta["width"] != float64(320) || meta["height"] != float64(500) {
		t.Fatalf("metadata = %v", meta)
	}
	win, ok := meta["window"].(map[string]any)
	if !ok || win["title"] != "Calculator" {
		t.Fatalf("window = %v", meta["window"])
	}

	res = callTool(t, cs, "screenshot_window", map[string]any{"handle": 0x10})
	if res.IsError {
		t.Fatalf("unexpected error: %s", resultText(res))
	}
	if meta := structured(t, res); meta["width"] != float64(800) {
		t.Fatalf("metadata = %v", meta)
	}

	res = callTool(t, cs, "screenshot_window", map[string]any{"window_title": "no such window"})
	if !res.IsError || !strings.HasPrefix(resultText(res), "not_found:") {
		t.Fatalf("expected not_found, got %q", resultText(res))
	}
}

func TestScreenshot_BackendFailureIsOperationFailed(t *testing.T) {
	backend := newFakeBackend()
	backend.grabErr = errGrab
	cs := connect(t, newTestServer(t, backend, nil))

	res := callTool(t, cs, "take_screenshot", nil)
	if !res.IsError {
		t.Fatalf("expected error")
	}
	if text := resultText(res); !strings.HasPrefix(text, "operation_failed:") || !strings.Contains(text, "grab failed") {
		t.Fatalf("error text = %q", text)
	}
}

func TestListWindowsAndMonitors(t *testing.T) {
	cs := connect(t, newTestServer(t, newFakeBackend(), nil))

	res := callTool(t, cs, "list_windows", map[string]any{"filter": "NOTE"})
	if res.IsError {
		t.Fatalf("unexpected error: %s", resultText(res))
	}
	out := structured(t, res)
	if out["count"] != float64(1) {
		t.Fatalf("count = %v", out["count"])
	}
	windows := out["windows"].([]any)
	if windows[0].(map[string]any)["title"] != "Untitled - Notepad" {
		t.Fatalf("windows = %v", windows)
	}

	res = callTool(t, cs, "list_windows", map[string]any{"filter": "zzz"})
	if out := structured(t, res); out["count"] != float64(0) || len(out["windows"].([]any)) != 0 {
		t.Fatalf("empty filter result = %v", out)
	}

	res = callTool(t, cs, "list_monitors", nil)
	out = structured(t, res)
	if out["count"] != float64(2) {
		t.Fatalf("monitors = %v", out)
	}
	primaries := 0
	for _, m := range out["monitors"].([]any) {
		if m.(map[string]any)["is_primary"] == true {
			primaries++
		}
	}
	if primaries != 1 {
		t.Fatalf("primary monitors = %d, want 1", primaries)
	}
}

func TestWindowActions(t *testing.T) {
	backend := newFakeBackend()
	cs := connect(t, newTestServer(t, backend, nil))

	res := callTool(t, cs, "resize_window", map[string]any{"window_title": "notepad", "width": 640, "height": 480})
	if res.IsError {
		t.Fatalf("unexpected error: %s", resultText(res))
	}
	out := structured(t, res)
	win := out["window"].(map[string]any)
	if out["ok"] != true || win["width"] != float64(640) || win["height"] != float64(480) {
		t.Fatalf("resize output = %v", out)
	}

	res = callTool(t, cs, "move_window", map[string]any{"window_title": "notepad", "x": -100, "y": 20})
	bounds := structured(t, res)["window"].(map[string]any)["bounds"].(map[string]any)
	if bounds["left"] != float64(-100) || bounds["top"] != float64(20) {
		t.Fatalf("bounds after move = %v", bounds)
	}

	res = callTool(t, cs, "minimize_window", map[string]any{"window_title": "calculator"})
	if state := structured(t, res)["window"].(map[string]any)["state"]; state != "minimized" {
		t.Fatalf("state = %v", state)
	}

	res = callTool(t, cs, "focus_window", map[string]any{"window_title": "calculator"})
	win = structured(t, res)["window"].(map[string]any)
	if win["state"] != "normal" || win["is_active"] != true {
		t.Fatalf("focused window = %v", win)
	}
}

func TestResizeWindow_InvalidDimensionsDoNotMutate(t *testing.T) {
	backend := newFakeBackend()
	cs := connect(t, newTestServer(t, backend, nil))

	res := callTool(t, cs, "resize_window", map[string]any{"window_title": "notepad", "width": 0, "height": 480})
	if !res.IsError || !strings.HasPrefix(resultText(res), "invalid_argument:") {
		t.Fatalf("expected invalid_argument, got %q", resultText(res))
	}
	if len(backend.mutations) != 0 {
		t.Fatalf("backend mutated: %v", backend.mutations)
	}
}

func TestWaitForWindowAndInfo(t *testing.T) {
	cs := connect(t, newTestServer(t, newFakeBackend(), nil))

	res := callTool(t, cs, "wait_for_window", map[string]any{"window_title": "calc", "timeout": 1})
	if res.IsError {
		t.Fatalf("unexpected error: %s", resultText(res))
	}
	if out := structured(t, res); out["handle"] != float64(0x20) {
		t.Fatalf("wait result = %v", out)
	}

	res = callTool(t, cs, "get_window_info", map[string]any{"window_title": "   "})
	if !res.IsError || !strings.HasPrefix(resultText(res), "invalid_argument:") {
		t.Fatalf("expected invalid_argument, got %q", resultText(res))
	}
}

func TestOpenApplication_EmptyCommand(t *testing.T) {
	cs := connect(t, newTestServer(t, newFakeBackend(), nil))
	res := callTool(t, cs, "open_application", map[string]any{"command": "  "})
	if !res.IsError || !strings.HasPrefix(resultText(res), "invalid_argument:") {
		t.Fatalf("expected invalid_argument, got %q", resultText(res))
	}
}

func TestOpenApplication_MissingBinaryIsLaunchFailed(t *testing.T) {
	cs := connect(t, newTestServer(t, newFakeBackend(), nil))
	res := callTool(t, cs, "open_application", map[string]any{"command": "winsight-definitely-not-installed"})
	if !res.IsError || !strings.HasPrefix(resultText(res), "launch_failed:") {
		t.Fatalf("expected launch_failed, got %q", resultText(res))
	}
}

func TestNewServer_ActionLogWritesFile(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Logging.Enabled = true
	cfg.Logging.Level = "debug"
	cfg.Logging.File = filepath.Join(t.TempDir(), "actions.log")

	s := newTestServer(t, newFakeBackend(), cfg)
	if s.logger == nil {
		t.Fatalf("expected action logger")
	}
	cs := connect(t, s)
	callTool(t, cs, "list_monitors", nil)
	callTool(t, cs, "focus_window", map[string]any{"window_title": "nope"})
	s.Close()

	data, err := os.ReadFile(cfg.Logging.File)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	got := string(data)
	if !strings.Contains(got, "[LIST-MONITORS] count=2") {
		t.Fatalf("missing monitors entry:\n%s", got)
	}
	if !strings.Contains(got, `[WINDOW-STATE] target="nope" error="not_found:`) {
		t.Fatalf("missing failed focus entry:\n%s", got)
	}
}

func TestNewServer_NilBackend(t *testing.T) {
	if _, err := NewServer(nil, nil, quietLogger()); err == nil {
		t.Fatalf("expected error for nil backend")
	}
}
