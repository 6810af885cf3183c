package desktop

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/1broseidon/winsight/internal/platform"
)

// WaitSpec asks OpenApplication to wait for a window after starting.
type WaitSpec struct {
	Title   string
	Timeout time.Duration
}

// Launcher starts detached GUI processes.
type Launcher struct {
	backend     platform.Backend
	registry    *Registry
	waitTimeout time.Duration

	start   func(cmd *exec.Cmd) (pid int, err error)
	inspect func(pid int) (name string, running bool)
}

// NewLauncher creates a Launcher. waitTimeout applies when a WaitSpec has no
// timeout of its own.
func NewLauncher(backend platform.Backend, registry *Registry, waitTimeout time.Duration) *Launcher {
	return &Launcher{
		backend:     backend,
		registry:    registry,
		waitTimeout: waitTimeout,
		start:       startDetached,
		inspect:     inspectProcess,
	}
}

// OpenApplication starts command detached from this process. When wait is
// set it then waits for a matching window; on expiry it returns the handle
// together with a Timeout error and leaves the process running.
func (l *Launcher) OpenApplication(ctx context.Context, command string, args []string, wait *WaitSpec) (LaunchHandle, error) {
	const op = "open_application"
	if strings.TrimSpace(command) == "" {
		return LaunchHandle{}, invalidArgument(op, "command must not be empty")
	}

	cmd := exec.Command(command, args...)
	cmd.Env = l.backend.ProcessEnv(os.Environ())
	detach(cmd)

	pid, err := l.start(cmd)
	if err != nil {
		return LaunchHandle{}, newError(LaunchFailed, op, err, "start %q", command)
	}

	handle := LaunchHandle{
		PID:     pid,
		Command: command,
		Args:    args,
	}
	handle.ProcessName, handle.Running = l.inspect(pid)

	if wait == nil || strings.TrimSpace(wait.Title) == "" {
		return handle, nil
	}

	timeout := wait.Timeout
	if timeout <= 0 {
		timeout = l.waitTimeout
	}
	w, err := l.registry.WaitForWindow(ctx, wait.Title, timeout)
	if err != nil {
		var de *Error
		if errors.As(err, &de) && de.Kind == Timeout {
			return handle, newError(Timeout, op, de.Err,
				"process %d (%s) started but %s; the process was left running", pid, command, de.Msg)
		}
		return handle, err
	}
	handle.Window = &w
	return handle, nil
}

// startDetached starts cmd and reaps it in the background. The child is
// never waited on by the caller or killed.
func startDetached(cmd *exec.Cmd) (int, error) {
	if err := cmd.Start(); err != nil {
		return 0, err
	}
	pid := cmd.Process.Pid
	go func() { _ = cmd.Wait() }()
	return pid, nil
}

func inspectProcess(pid int) (string, bool) {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return "", false
	}
	name, _ := p.Name()
	running, _ := p.IsRunning()
	return name, running
}
