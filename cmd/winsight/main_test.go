package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/winsight/internal/desktop"
	"github.com/1broseidon/winsight/internal/platform"
)

func TestParseRegion(t *testing.T) {
	tests := []struct {
		in      string
		want    region
		wantErr bool
	}{
		{in: "0,0,100,50", want: region{0, 0, 100, 50}},
		{in: "-1920, 10, 640, 480", want: region{-1920, 10, 640, 480}},
		{in: "1,2,3", wantErr: true},
		{in: "a,b,c,d", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseRegion(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseRegion(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseRegion(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseRegion(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestPrintWindowsTruncatesTitles(t *testing.T) {
	var buf bytes.Buffer
	printWindows(&buf, []desktop.WindowDescriptor{
		{Handle: 0x10, PID: 4242, Title: "Untitled - Notepad", State: "normal", Bounds: platform.RectFromSize(100, 100, 800, 600), Width: 800, Height: 600},
		{Handle: 0x20, PID: 77, Title: "Calculator", State: "minimized", IsActive: true},
	}, 8)

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("output has %d lines, want header + 2:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[1], "0x10") || !strings.Contains(lines[1], "Untitled...") {
		t.Fatalf("row 1 = %q", lines[1])
	}
	if !strings.Contains(lines[2], "Calculat... (active)") {
		t.Fatalf("row 2 = %q", lines[2])
	}
}

func TestPrintMonitorsMarksPrimary(t *testing.T) {
	var buf bytes.Buffer
	printMonitors(&buf, []desktop.MonitorDescriptor{
		{ID: 1, Name: "DISPLAY1", Width: 1920, Height: 1080, IsPrimary: true},
		{ID: 2, Name: "DISPLAY2", Bounds: platform.RectFromSize(1920, 0, 2560, 1440), Width: 2560, Height: 1440},
	})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
	if !strings.HasSuffix(strings.TrimSpace(lines[1]), "*") || strings.HasSuffix(strings.TrimSpace(lines[2]), "*") {
		t.Fatalf("primary marker wrong:\n%s", buf.String())
	}
	if !strings.Contains(lines[2], "1920,0") {
		t.Fatalf("row 2 = %q", lines[2])
	}
}

func TestRunConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("wait:\n  max_timeout: 60s\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"validate", []string{"validate", "--config", path}, 0},
		{"print", []string{"print", "--config", path}, 0},
		{"print defaults", []string{"print", "--defaults"}, 0},
		{"explain", []string{"explain", "--config", path, "wait.max_timeout"}, 0},
		{"explain unknown", []string{"explain", "--config", path, "wait.nope"}, 1},
		{"explain missing arg", []string{"explain", "--config", path}, 2},
		{"unknown", []string{"frobnicate"}, 2},
		{"no args", nil, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rc := runConfig(tt.args); rc != tt.want {
				t.Fatalf("runConfig(%v) = %d, want %d", tt.args, rc, tt.want)
			}
		})
	}
}

func TestRunConfigValidateRejectsBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("capture:\n  png_compression: zip\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if rc := runConfig([]string{"validate", "--config", path}); rc != 1 {
		t.Fatalf("rc = %d, want 1", rc)
	}
}

func TestRunCaptureRejectsConflictingTargets(t *testing.T) {
	if rc := runCapture([]string{"--monitor", "1", "--window", "calc", "-o", filepath.Join(t.TempDir(), "x.png")}); rc != 2 {
		t.Fatalf("rc = %d, want 2", rc)
	}
	if rc := runCapture([]string{"--region", "1,2", "-o", filepath.Join(t.TempDir(), "x.png")}); rc != 2 {
		t.Fatalf("rc = %d, want 2", rc)
	}
}
