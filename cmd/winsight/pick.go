package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/1broseidon/winsight/internal/tui"
)

func runPick(args []string) int {
	fs := flag.NewFlagSet("pick", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winsight pick [--filter TEXT] [--config PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Browse visible windows and focus the selected one. The handle of the")
		fmt.Fprintln(os.Stderr, "focused window is printed on exit.")
		fs.PrintDefaults()
	}
	configPath := configFlag(fs)
	filter := fs.String("filter", "", "Only list windows whose title contains TEXT (case-insensitive)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stderr, "pick: stdin is not a terminal")
		return 2
	}

	_, d, closeFn, err := openDesktop(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer closeFn()

	win, err := tui.Pick(d.Registry, *filter)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if win == nil {
		return 0
	}
	fmt.Printf("%#x\t%s\n", win.Handle, win.Title)
	return 0
}
