package mcp

import (
	"context"
	"errors"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/winsight/internal/actionlog"
	"github.com/1broseidon/winsight/internal/config"
	"github.com/1broseidon/winsight/internal/desktop"
	"github.com/1broseidon/winsight/internal/platform"
)

const (
	ServerName    = "winsight"
	ServerVersion = "0.1.0"
)

// Server is the MCP server exposing desktop capture, window control and
// application launch.
type Server struct {
	mcpServer *mcpsdk.Server
	config    *config.Config
	desktop   *desktop.Desktop
	logger    *actionlog.Logger
	log       *slog.Logger
}

// NewServer creates a new MCP server on top of backend. The caller keeps
// ownership of backend.
func NewServer(cfg *config.Config, backend platform.Backend, log *slog.Logger) (*Server, error) {
	if backend == nil {
		return nil, errors.New("mcp: nil platform backend")
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if log == nil {
		log = slog.Default()
	}

	logCfg := cfg.GetLoggingConfig()
	var logger *actionlog.Logger
	if logCfg.Enabled {
		var err error
		logger, err = actionlog.New(actionlog.Config{
			Enabled:       logCfg.Enabled,
			Level:         actionlog.ParseLevel(logCfg.Level),
			FilePath:      logCfg.File,
			MaxSizeMB:     logCfg.MaxSizeMB,
			MaxFiles:      logCfg.MaxFiles,
			PreviewLength: logCfg.PreviewLength,
		})
		if err != nil {
			log.Warn("action log disabled", "file", logCfg.File, "error", err)
			logger = nil
		}
	}

	s := &Server{
		config:  cfg,
		desktop: desktop.New(backend, cfg.DesktopOptions()),
		logger:  logger,
		log:     log,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Connect serves one session over t. Run is the stdio shorthand.
func (s *Server) Connect(ctx context.Context, t mcpsdk.Transport) (*mcpsdk.ServerSession, error) {
	return s.mcpServer.Connect(ctx, t, nil)
}

// Close releases server resources.
func (s *Server) Close() error {
	if s == nil || s.logger == nil {
		return nil
	}
	return s.logger.Close()
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "take_screenshot",
		Description: "Capture the whole virtual desktop, or one monitor when monitor is set. Returns a PNG image plus its width, height and the captured bounds.",
	}, s.handleTakeScreenshot)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "screenshot_region",
		Description: "Capture an arbitrary rectangle of the virtual desktop. Coordinates may be negative on multi-monitor setups and are not clipped to monitors.",
	}, s.handleScreenshotRegion)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "screenshot_window",
		Description: "Capture a single window by title (or by handle) from its own content, so windows covered by other windows are captured intact. Minimized windows are rendered at their restored size where the OS allows it.",
	}, s.handleScreenshotWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List visible top-level windows with a non-empty title, front to back. Optionally filter by a case-insensitive title substring.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_window_info",
		Description: "Return the live handle, title, bounds, state and visibility of the first window whose title contains window_title.",
	}, s.handleGetWindowInfo)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "focus_window",
		Description: "Bring a window to the foreground, restoring it first when minimized.",
	}, s.handleFocusWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "minimize_window",
		Description: "Minimize a window.",
	}, s.handleMinimizeWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "maximize_window",
		Description: "Maximize a window.",
	}, s.handleMaximizeWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "restore_window",
		Description: "Restore a minimized or maximized window to its normal size and position.",
	}, s.handleRestoreWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "resize_window",
		Description: "Resize a window keeping its top-left corner in place.",
	}, s.handleResizeWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "move_window",
		Description: "Move a window's top-left corner keeping its size.",
	}, s.handleMoveWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "wait_for_window",
		Description: "Wait until a visible window whose title contains window_title appears. Polls with adaptive backoff (200ms growing to 500ms) and fails with a timeout error after timeout seconds (default 30, max 300).",
	}, s.handleWaitForWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_monitors",
		Description: "List monitors with their id, name, bounds, work area and which one is primary. Ids are used by take_screenshot.",
	}, s.handleListMonitors)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "open_application",
		Description: "Start an application detached from the server. Optionally wait for its window to appear; on timeout the process keeps running and its pid is reported.",
	}, s.handleOpenApplication)
}
