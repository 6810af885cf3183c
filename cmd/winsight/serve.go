package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/winsight/internal/mcp"
	"github.com/1broseidon/winsight/internal/platform"
)

func printServeUsage() {
	fmt.Fprintln(os.Stdout, "Usage: winsight serve [--config PATH]")
	fmt.Fprintln(os.Stdout, "")
	fmt.Fprintln(os.Stdout, "Start the MCP server on stdio. Designed to be invoked by MCP clients;")
	fmt.Fprintln(os.Stdout, "diagnostics go to stderr.")
	fmt.Fprintln(os.Stdout, "")
	fmt.Fprintln(os.Stdout, "Example:")
	fmt.Fprintln(os.Stdout, "  claude mcp add winsight -- winsight serve")
}

func runServe(args []string) int {
	if isHelpArg(args) {
		printServeUsage()
		return 0
	}

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := configFlag(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	res, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	cfg := res.Config

	// stdout carries the MCP transport.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.GetLoggingConfig().SlogLevel(),
	}))
	if res.File != "" {
		logger.Debug("config loaded", "file", res.File)
	}

	backend, err := platform.Open(platform.Options{
		Display:    cfg.Display,
		XAuthority: cfg.XAuthority,
	})
	if err != nil {
		logger.Error("failed to open window system", "error", err)
		return 1
	}
	defer backend.Close()

	server, err := mcp.NewServer(cfg, backend, logger)
	if err != nil {
		logger.Error("failed to create MCP server", "error", err)
		return 1
	}
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	logger.Info("winsight MCP server starting", "version", mcp.ServerVersion)
	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("MCP server error", "error", err)
		return 1
	}
	return 0
}
