//go:build unix

package desktop

import (
	"os/exec"
	"syscall"
)

// detach puts the child in a new process group so signals sent to the
// server's group do not reach it. Stdio is left nil, which exec connects to
// the null device.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
