package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/1broseidon/winsight/internal/desktop"
)

type region struct {
	X, Y, Width, Height int
}

// parseRegion parses "x,y,width,height".
func parseRegion(s string) (region, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return region{}, fmt.Errorf("region must be x,y,width,height, got %q", s)
	}
	var vals [4]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return region{}, fmt.Errorf("region component %d: %w", i+1, err)
		}
		vals[i] = v
	}
	return region{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}, nil
}

func runCapture(args []string) int {
	fs := flag.NewFlagSet("capture", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winsight capture [--monitor ID | --region x,y,w,h | --window TITLE | --handle H] [-o FILE]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Without a target the whole virtual desktop is captured. PNG bytes go to")
		fmt.Fprintln(os.Stderr, "stdout unless -o is given; writing to a terminal is refused.")
		fs.PrintDefaults()
	}
	configPath := configFlag(fs)
	monitor := fs.Int("monitor", 0, "Monitor id (1-based, see 'winsight monitors')")
	regionFlag := fs.String("region", "", "Region as x,y,width,height")
	window := fs.String("window", "", "Window title substring")
	handle := fs.Uint64("handle", 0, "Window handle from 'winsight windows'")
	output := fs.String("o", "", "Output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	targets := 0
	for _, set := range []bool{*monitor != 0, *regionFlag != "", *window != "", *handle != 0} {
		if set {
			targets++
		}
	}
	if targets > 1 {
		fmt.Fprintln(os.Stderr, "capture: --monitor, --region, --window and --handle are mutually exclusive")
		return 2
	}

	var rgn region
	if *regionFlag != "" {
		var err error
		if rgn, err = parseRegion(*regionFlag); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
	}

	if *output == "" || *output == "-" {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "capture: refusing to write PNG data to a terminal; use -o FILE or redirect stdout")
			return 2
		}
	}

	_, d, closeFn, err := openDesktop(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer closeFn()

	var res desktop.CaptureResult
	switch {
	case *monitor != 0:
		res, err = d.Capture.CaptureScreen(monitor)
	case *regionFlag != "":
		res, err = d.Capture.CaptureRegion(rgn.X, rgn.Y, rgn.Width, rgn.Height)
	case *window != "":
		res, err = d.Capture.CaptureWindow(*window)
	case *handle != 0:
		res, err = d.Capture.CaptureHandle(*handle)
	default:
		res, err = d.Capture.CaptureScreen(nil)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, desktop.ErrInvalidArgument) {
			return 2
		}
		return 1
	}

	if *output == "" || *output == "-" {
		_, err = os.Stdout.Write(res.PNG)
	} else {
		err = os.WriteFile(*output, res.PNG, 0644)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "capture: write: %v\n", err)
		return 1
	}
	fmt.Fprintf(os.Stderr, "captured %s %dx%d (%d bytes)\n", res.Source, res.Width, res.Height, len(res.PNG))
	return 0
}
