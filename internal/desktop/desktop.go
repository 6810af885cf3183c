// Package desktop implements display topology, the window registry, frame
// capture and the process launcher on top of a platform.Backend. Results
// are descriptors and encoded frames; failures are *Error values.
package desktop

import (
	"time"

	"github.com/1broseidon/winsight/internal/platform"
)

// Options configures the components built by New.
type Options struct {
	Wait    WaitPolicy
	Encoder PNGEncoder
	// LaunchWaitTimeout applies to OpenApplication window waits that do
	// not set their own timeout.
	LaunchWaitTimeout time.Duration
}

// Desktop bundles the components sharing one backend.
type Desktop struct {
	Topology *Topology
	Registry *Registry
	Capture  *Capturer
	Launcher *Launcher
}

// New wires every component to backend.
func New(backend platform.Backend, opts Options) *Desktop {
	topology := NewTopology(backend)
	registry := NewRegistry(backend, opts.Wait)
	return &Desktop{
		Topology: topology,
		Registry: registry,
		Capture:  NewCapturer(backend, topology, registry, opts.Encoder),
		Launcher: NewLauncher(backend, registry, opts.LaunchWaitTimeout),
	}
}
