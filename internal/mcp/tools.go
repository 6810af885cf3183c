package mcp

import (
	"context"
	"fmt"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/winsight/internal/actionlog"
	"github.com/1broseidon/winsight/internal/desktop"
)

// logResult records a finished call, adding the error when there is one.
func (s *Server) logResult(action actionlog.Action, target string, details map[string]any, err error) {
	if details == nil {
		details = map[string]any{}
	}
	if err != nil {
		details[actionlog.ErrorKey] = err
		s.log.Debug("tool call failed", "action", string(action), "target", target, "error", err)
	}
	s.logger.Log(action, s.logger.Preview(target), details)
}

// imageResult returns the PNG as image content followed by a short text
// summary. The metadata also goes out as structured content.
func imageResult(res desktop.CaptureResult) *mcpsdk.CallToolResult {
	summary := fmt.Sprintf("Captured %s: %dx%d png, bounds (%d,%d)-(%d,%d)",
		res.Source, res.Width, res.Height,
		res.Bounds.Left, res.Bounds.Top, res.Bounds.Right, res.Bounds.Bottom)
	if res.Window != nil {
		summary += fmt.Sprintf(", window %q handle %d", res.Window.Title, res.Window.Handle)
	}
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.ImageContent{Data: res.PNG, MIMEType: "image/png"},
			&mcpsdk.TextContent{Text: summary},
		},
	}
}

func captureDetails(res desktop.CaptureResult) map[string]any {
	return map[string]any{
		"source": res.Source,
		"width":  res.Width,
		"height": res.Height,
		"bytes":  len(res.PNG),
	}
}

func (s *Server) handleTakeScreenshot(_ context.Context, _ *mcpsdk.CallToolRequest, args TakeScreenshotInput) (*mcpsdk.CallToolResult, desktop.CaptureResult, error) {
	res, err := s.desktop.Capture.CaptureScreen(args.Monitor)
	target := "screen"
	if args.Monitor != nil {
		target = fmt.Sprintf("monitor %d", *args.Monitor)
	}
	s.logResult(actionlog.ActionCapture, target, captureDetails(res), err)
	if err != nil {
		return nil, desktop.CaptureResult{}, err
	}
	return imageResult(res), res, nil
}

func (s *Server) handleScreenshotRegion(_ context.Context, _ *mcpsdk.CallToolRequest, args ScreenshotRegionInput) (*mcpsdk.CallToolResult, desktop.CaptureResult, error) {
	res, err := s.desktop.Capture.CaptureRegion(args.X, args.Y, args.Width, args.Height)
	target := fmt.Sprintf("%dx%d+%d+%d", args.Width, args.Height, args.X, args.Y)
	s.logResult(actionlog.ActionCapture, target, captureDetails(res), err)
	if err != nil {
		return nil, desktop.CaptureResult{}, err
	}
	return imageResult(res), res, nil
}

func (s *Server) handleScreenshotWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args ScreenshotWindowInput) (*mcpsdk.CallToolResult, desktop.CaptureResult, error) {
	var (
		res    desktop.CaptureResult
		err    error
		target = args.WindowTitle
	)
	if args.WindowTitle == "" && args.Handle != 0 {
		target = fmt.Sprintf("handle %d", args.Handle)
		res, err = s.desktop.Capture.CaptureHandle(args.Handle)
	} else {
		res, err = s.desktop.Capture.CaptureWindow(args.WindowTitle)
	}
	s.logResult(actionlog.ActionCapture, target, captureDetails(res), err)
	if err != nil {
		return nil, desktop.CaptureResult{}, err
	}
	return imageResult(res), res, nil
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	windows, err := s.desktop.Registry.ListWindows(args.Filter)
	s.logResult(actionlog.ActionListWindows, args.Filter, map[string]any{"count": len(windows)}, err)
	if err != nil {
		return nil, ListWindowsOutput{}, err
	}
	return nil, ListWindowsOutput{Count: len(windows), Windows: windows}, nil
}

func (s *Server) handleGetWindowInfo(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowTitleInput) (*mcpsdk.CallToolResult, desktop.WindowDescriptor, error) {
	w, err := s.desktop.Registry.GetWindowInfo(args.WindowTitle)
	s.logResult(actionlog.ActionWindowInfo, args.WindowTitle, map[string]any{"handle": w.Handle}, err)
	if err != nil {
		return nil, desktop.WindowDescriptor{}, err
	}
	return nil, w, nil
}

// windowAction runs one registry mutation and shapes the shared
// {ok, message, window} reply.
func (s *Server) windowAction(action actionlog.Action, op, title string, details map[string]any, mutate func() (desktop.WindowDescriptor, error)) (*mcpsdk.CallToolResult, WindowActionOutput, error) {
	w, err := mutate()
	if details == nil {
		details = map[string]any{}
	}
	details["op"] = op
	s.logResult(action, title, details, err)
	if err != nil {
		return nil, WindowActionOutput{}, err
	}
	return nil, WindowActionOutput{
		OK:      true,
		Message: fmt.Sprintf("%s: %q (state %s, %dx%d at %d,%d)", op, w.Title, w.State, w.Width, w.Height, w.Bounds.Left, w.Bounds.Top),
		Window:  w,
	}, nil
}

func (s *Server) handleFocusWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowTitleInput) (*mcpsdk.CallToolResult, WindowActionOutput, error) {
	return s.windowAction(actionlog.ActionWindowState, "focused", args.WindowTitle, nil, func() (desktop.WindowDescriptor, error) {
		return s.desktop.Registry.FocusWindow(args.WindowTitle)
	})
}

func (s *Server) handleMinimizeWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowTitleInput) (*mcpsdk.CallToolResult, WindowActionOutput, error) {
	return s.windowAction(actionlog.ActionWindowState, "minimized", args.WindowTitle, nil, func() (desktop.WindowDescriptor, error) {
		return s.desktop.Registry.MinimizeWindow(args.WindowTitle)
	})
}

func (s *Server) handleMaximizeWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowTitleInput) (*mcpsdk.CallToolResult, WindowActionOutput, error) {
	return s.windowAction(actionlog.ActionWindowState, "maximized", args.WindowTitle, nil, func() (desktop.WindowDescriptor, error) {
		return s.desktop.Registry.MaximizeWindow(args.WindowTitle)
	})
}

func (s *Server) handleRestoreWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowTitleInput) (*mcpsdk.CallToolResult, WindowActionOutput, error) {
	return s.windowAction(actionlog.ActionWindowState, "restored", args.WindowTitle, nil, func() (desktop.WindowDescriptor, error) {
		return s.desktop.Registry.RestoreWindow(args.WindowTitle)
	})
}

func (s *Server) handleResizeWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args ResizeWindowInput) (*mcpsdk.CallToolResult, WindowActionOutput, error) {
	details := map[string]any{"width": args.Width, "height": args.Height}
	return s.windowAction(actionlog.ActionWindowGeometry, "resized", args.WindowTitle, details, func() (desktop.WindowDescriptor, error) {
		return s.desktop.Registry.ResizeWindow(args.WindowTitle, args.Width, args.Height)
	})
}

func (s *Server) handleMoveWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args MoveWindowInput) (*mcpsdk.CallToolResult, WindowActionOutput, error) {
	details := map[string]any{"x": args.X, "y": args.Y}
	return s.windowAction(actionlog.ActionWindowGeometry, "moved", args.WindowTitle, details, func() (desktop.WindowDescriptor, error) {
		return s.desktop.Registry.MoveWindow(args.WindowTitle, args.X, args.Y)
	})
}

func (s *Server) handleWaitForWindow(ctx context.Context, _ *mcpsdk.CallToolRequest, args WaitForWindowInput) (*mcpsdk.CallToolResult, desktop.WindowDescriptor, error) {
	start := time.Now()
	w, err := s.desktop.Registry.WaitForWindow(ctx, args.WindowTitle, time.Duration(args.Timeout)*time.Second)
	s.logResult(actionlog.ActionWait, args.WindowTitle, map[string]any{
		"timeout_s": args.Timeout,
		"elapsed":   time.Since(start).Round(time.Millisecond).String(),
	}, err)
	if err != nil {
		return nil, desktop.WindowDescriptor{}, err
	}
	return nil, w, nil
}

func (s *Server) handleListMonitors(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListMonitorsInput) (*mcpsdk.CallToolResult, ListMonitorsOutput, error) {
	monitors, err := s.desktop.Topology.ListMonitors()
	s.logResult(actionlog.ActionListMonitors, "", map[string]any{"count": len(monitors)}, err)
	if err != nil {
		return nil, ListMonitorsOutput{}, err
	}
	return nil, ListMonitorsOutput{Count: len(monitors), Monitors: monitors}, nil
}

func (s *Server) handleOpenApplication(ctx context.Context, _ *mcpsdk.CallToolRequest, args OpenApplicationInput) (*mcpsdk.CallToolResult, desktop.LaunchHandle, error) {
	var wait *desktop.WaitSpec
	if args.WaitForWindow != "" {
		wait = &desktop.WaitSpec{
			Title:   args.WaitForWindow,
			Timeout: time.Duration(args.Timeout) * time.Second,
		}
	}

	handle, err := s.desktop.Launcher.OpenApplication(ctx, args.Command, args.Args, wait)
	details := map[string]any{
		"args": len(args.Args),
		"pid":  handle.PID,
	}
	if args.WaitForWindow != "" {
		details["wait_for"] = s.logger.Preview(args.WaitForWindow)
	}
	s.logResult(actionlog.ActionLaunch, args.Command, details, err)

	if err != nil {
		if handle.PID == 0 {
			return nil, desktop.LaunchHandle{}, err
		}
		// The process is running; report it alongside the failure so the
		// caller can still find or capture it later.
		return &mcpsdk.CallToolResult{
			IsError: true,
			Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: err.Error()}},
		}, handle, nil
	}
	return nil, handle, nil
}
