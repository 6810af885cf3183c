package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/1broseidon/winsight/internal/actionlog"
	"github.com/1broseidon/winsight/internal/desktop"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runMonitors(args []string) int {
	fs := flag.NewFlagSet("monitors", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winsight monitors [--json] [--config PATH]")
		fs.PrintDefaults()
	}
	configPath := configFlag(fs)
	asJSON := fs.Bool("json", false, "Print JSON")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	_, d, closeFn, err := openDesktop(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer closeFn()

	monitors, err := d.Topology.ListMonitors()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		if err := writeJSON(os.Stdout, monitors); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}
	printMonitors(os.Stdout, monitors)
	return 0
}

func printMonitors(w io.Writer, monitors []desktop.MonitorDescriptor) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSIZE\tPOSITION\tPRIMARY")
	for _, m := range monitors {
		primary := ""
		if m.IsPrimary {
			primary = "*"
		}
		fmt.Fprintf(tw, "%d\t%s\t%dx%d\t%d,%d\t%s\n", m.ID, m.Name, m.Width, m.Height, m.Bounds.Left, m.Bounds.Top, primary)
	}
	tw.Flush()
}

func runWindows(args []string) int {
	fs := flag.NewFlagSet("windows", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winsight windows [--filter TEXT] [--json] [--config PATH]")
		fs.PrintDefaults()
	}
	configPath := configFlag(fs)
	filter := fs.String("filter", "", "Only list windows whose title contains TEXT (case-insensitive)")
	asJSON := fs.Bool("json", false, "Print JSON")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	_, d, closeFn, err := openDesktop(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer closeFn()

	windows, err := d.Registry.ListWindows(*filter)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		if err := writeJSON(os.Stdout, windows); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}
	printWindows(os.Stdout, windows, titleWidth(os.Stdout))
	return 0
}

// titleWidth leaves room for the fixed columns when stdout is a terminal.
// 0 means no truncation.
func titleWidth(f *os.File) int {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	cols, _, err := term.GetSize(fd)
	if err != nil || cols <= 60 {
		return 0
	}
	return cols - 60
}

func printWindows(w io.Writer, windows []desktop.WindowDescriptor, maxTitle int) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "HANDLE\tPID\tSTATE\tSIZE\tPOSITION\tTITLE")
	for _, win := range windows {
		title := win.Title
		if maxTitle > 0 {
			title = actionlog.Truncate(title, maxTitle)
		}
		if win.IsActive {
			title += " (active)"
		}
		fmt.Fprintf(tw, "%#x\t%d\t%s\t%dx%d\t%d,%d\t%s\n",
			win.Handle, win.PID, win.State, win.Width, win.Height, win.Bounds.Left, win.Bounds.Top, title)
	}
	tw.Flush()
}
