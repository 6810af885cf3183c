package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/1broseidon/winsight/internal/config"
	"github.com/1broseidon/winsight/internal/desktop"
	"github.com/1broseidon/winsight/internal/platform"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "serve":
		os.Exit(runServe(os.Args[2:]))
	case "monitors":
		os.Exit(runMonitors(os.Args[2:]))
	case "windows":
		os.Exit(runWindows(os.Args[2:]))
	case "capture":
		os.Exit(runCapture(os.Args[2:]))
	case "pick":
		os.Exit(runPick(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: winsight <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve               Start the MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  monitors            List monitors")
	fmt.Fprintln(w, "  windows             List visible windows")
	fmt.Fprintln(w, "  capture             Capture the screen, a monitor, a region or a window to PNG")
	fmt.Fprintln(w, "  pick                Interactively pick a window and focus it")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "Configuration is read from --config, $%s or the user config directory.\n", config.EnvConfigPath)
	fmt.Fprintln(w, "Run 'winsight <command> --help' for command-specific options.")
}

func isHelpArg(args []string) bool {
	return len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help")
}

// configFlag registers the --config flag shared by every command.
func configFlag(fs *flag.FlagSet) *string {
	return fs.String("config", "", fmt.Sprintf("Config file path (default: $%s or <config dir>/winsight/config.yaml)", config.EnvConfigPath))
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

// openDesktop loads the config and connects to the window system. The
// returned close func releases the backend.
func openDesktop(configPath string) (*config.Config, *desktop.Desktop, func(), error) {
	res, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	cfg := res.Config
	backend, err := platform.Open(platform.Options{
		Display:    cfg.Display,
		XAuthority: cfg.XAuthority,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, desktop.New(backend, cfg.DesktopOptions()), func() { backend.Close() }, nil
}
