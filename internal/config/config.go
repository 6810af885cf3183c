package config

import (
	"fmt"
	"image/png"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/1broseidon/winsight/internal/desktop"
	"github.com/adrg/xdg"
)

// PNG compression names accepted by capture.png_compression.
const (
	CompressionDefault = "default"
	CompressionSpeed   = "speed"
	CompressionBest    = "best"
	CompressionNone    = "none"
)

// DefaultLaunchTimeout bounds open_application window waits that carry no
// timeout of their own.
const DefaultLaunchTimeout = 10 * time.Second

// CaptureConfig controls how captured frames are encoded.
type CaptureConfig struct {
	// MaxDimension scales the longest side of a frame down to this many
	// pixels before encoding. 0 keeps native resolution.
	MaxDimension int `yaml:"max_dimension"`
	// PNGCompression is one of: default, speed, best, none
	PNGCompression string `yaml:"png_compression"`
}

// WaitConfig controls wait_for_window polling.
type WaitConfig struct {
	InitialInterval time.Duration `yaml:"initial_interval"`
	MaxInterval     time.Duration `yaml:"max_interval"`
	// Growth multiplies the interval after every unsuccessful poll.
	Growth         float64       `yaml:"growth"`
	DefaultTimeout time.Duration `yaml:"default_timeout"`
	MaxTimeout     time.Duration `yaml:"max_timeout"`
}

// LaunchConfig controls open_application.
type LaunchConfig struct {
	DefaultTimeout time.Duration `yaml:"default_timeout"`
}

// LoggingConfig configures tool action logging.
type LoggingConfig struct {
	// Enabled turns action logging on/off
	Enabled bool `yaml:"enabled,omitempty"`
	// Level controls logging verbosity: debug, info, warn, error
	Level string `yaml:"level,omitempty"`
	// File is the log file path (default: $XDG_STATE_HOME/winsight/actions.log)
	File string `yaml:"file,omitempty"`
	// MaxSizeMB is the maximum log file size before rotation (default: 10)
	MaxSizeMB int `yaml:"max_size_mb,omitempty"`
	// MaxFiles is the number of rotated files to keep (default: 3)
	MaxFiles int `yaml:"max_files,omitempty"`
	// PreviewLength is the number of characters of titles and commands to
	// keep in log entries (default: 50)
	PreviewLength int `yaml:"preview_length,omitempty"`
}

type Config struct {
	// Display and XAuthority pin the X11 session. Ignored on other platforms.
	Display    string        `yaml:"display"`
	XAuthority string        `yaml:"xauthority"`
	Capture    CaptureConfig `yaml:"capture"`
	Wait       WaitConfig    `yaml:"wait"`
	Launch     LaunchConfig  `yaml:"launch"`
	Logging    LoggingConfig `yaml:"logging,omitempty"`
}

func DefaultConfig() *Config {
	wait := desktop.DefaultWaitPolicy()
	return &Config{
		Capture: CaptureConfig{
			MaxDimension:   0,
			PNGCompression: CompressionDefault,
		},
		Wait: WaitConfig{
			InitialInterval: wait.InitialInterval,
			MaxInterval:     wait.MaxInterval,
			Growth:          wait.Growth,
			DefaultTimeout:  wait.DefaultTimeout,
			MaxTimeout:      wait.MaxTimeout,
		},
		Launch: LaunchConfig{
			DefaultTimeout: DefaultLaunchTimeout,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// WaitPolicy converts the wait section for the window registry.
func (c *Config) WaitPolicy() desktop.WaitPolicy {
	if c == nil {
		return desktop.DefaultWaitPolicy()
	}
	return desktop.WaitPolicy{
		InitialInterval: c.Wait.InitialInterval,
		MaxInterval:     c.Wait.MaxInterval,
		Growth:          c.Wait.Growth,
		DefaultTimeout:  c.Wait.DefaultTimeout,
		MaxTimeout:      c.Wait.MaxTimeout,
	}
}

// Encoder converts the capture section into a frame encoder.
func (c *Config) Encoder() desktop.PNGEncoder {
	if c == nil {
		return desktop.PNGEncoder{}
	}
	level, _ := parseCompression(c.Capture.PNGCompression)
	return desktop.PNGEncoder{
		MaxDimension: c.Capture.MaxDimension,
		Compression:  level,
	}
}

// DesktopOptions bundles everything desktop.New needs from the config.
func (c *Config) DesktopOptions() desktop.Options {
	launch := DefaultLaunchTimeout
	if c != nil && c.Launch.DefaultTimeout > 0 {
		launch = c.Launch.DefaultTimeout
	}
	return desktop.Options{
		Wait:              c.WaitPolicy(),
		Encoder:           c.Encoder(),
		LaunchWaitTimeout: launch,
	}
}

// GetLoggingConfig returns the logging configuration with defaults applied.
func (c *Config) GetLoggingConfig() LoggingConfig {
	if c == nil {
		return LoggingConfig{}
	}
	cfg := c.Logging
	if cfg.File == "" {
		cfg.File = filepath.Join(xdg.StateHome, "winsight", "actions.log")
	}
	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = 10
	}
	if cfg.MaxFiles == 0 {
		cfg.MaxFiles = 3
	}
	if cfg.PreviewLength == 0 {
		cfg.PreviewLength = 50
	}
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	return cfg
}

// SlogLevel maps logging.level onto the diagnostic logger.
func (l LoggingConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseCompression(name string) (png.CompressionLevel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", CompressionDefault:
		return png.DefaultCompression, nil
	case CompressionSpeed:
		return png.BestSpeed, nil
	case CompressionBest:
		return png.BestCompression, nil
	case CompressionNone:
		return png.NoCompression, nil
	default:
		return png.DefaultCompression, fmt.Errorf("png_compression must be one of: default, speed, best, none")
	}
}

func (c *Config) Validate() error {
	if c.Capture.MaxDimension < 0 {
		return &ValidationError{Path: "capture.max_dimension", Err: fmt.Errorf("max_dimension must be >= 0")}
	}
	if _, err := parseCompression(c.Capture.PNGCompression); err != nil {
		return &ValidationError{Path: "capture.png_compression", Err: err}
	}

	if c.Wait.InitialInterval <= 0 {
		return &ValidationError{Path: "wait.initial_interval", Err: fmt.Errorf("initial_interval must be > 0")}
	}
	if c.Wait.MaxInterval < c.Wait.InitialInterval {
		return &ValidationError{Path: "wait.max_interval", Err: fmt.Errorf("max_interval must be >= initial_interval (%s)", c.Wait.InitialInterval)}
	}
	if c.Wait.Growth < 1 {
		return &ValidationError{Path: "wait.growth", Err: fmt.Errorf("growth must be >= 1")}
	}
	if c.Wait.DefaultTimeout <= 0 {
		return &ValidationError{Path: "wait.default_timeout", Err: fmt.Errorf("default_timeout must be > 0")}
	}
	if c.Wait.MaxTimeout < c.Wait.DefaultTimeout {
		return &ValidationError{Path: "wait.max_timeout", Err: fmt.Errorf("max_timeout must be >= default_timeout (%s)", c.Wait.DefaultTimeout)}
	}

	if c.Launch.DefaultTimeout <= 0 {
		return &ValidationError{Path: "launch.default_timeout", Err: fmt.Errorf("default_timeout must be > 0")}
	}
	if c.Launch.DefaultTimeout > c.Wait.MaxTimeout {
		return &ValidationError{Path: "launch.default_timeout", Err: fmt.Errorf("default_timeout must be <= wait.max_timeout (%s)", c.Wait.MaxTimeout)}
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "logging.level", Err: fmt.Errorf("level must be one of: debug, info, warn, error")}
	}
	if c.Logging.MaxSizeMB < 0 {
		return &ValidationError{Path: "logging.max_size_mb", Err: fmt.Errorf("max_size_mb must be >= 0")}
	}
	if c.Logging.MaxFiles < 0 {
		return &ValidationError{Path: "logging.max_files", Err: fmt.Errorf("max_files must be >= 0")}
	}
	if c.Logging.PreviewLength < 0 {
		return &ValidationError{Path: "logging.preview_length", Err: fmt.Errorf("preview_length must be >= 0")}
	}
	return nil
}
