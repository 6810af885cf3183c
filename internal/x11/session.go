package x11

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/adrg/xdg"
)

var (
	getenvFn                  = os.Getenv
	runCommandOutputFn        = runCommandOutput
	readFileFn                = os.ReadFile
	readDirFn                 = os.ReadDir
	detectSessionX11EnvFn     = detectSessionX11Env
	detectDisplayFromSocketFn = detectDisplayFromSockets
)

// Session names the X display this process talks to and the credentials a
// launched GUI process needs to reach the same display.
type Session struct {
	Display    string
	XAuthority string
	RuntimeDir string
}

// DetectSession resolves the display for a server process that may have been
// started without a graphical environment (for example by an MCP client
// spawned from a service manager). Priority for each value: explicit
// override, process environment, the user's logind session, and finally the
// highest X socket in /tmp/.X11-unix.
func DetectSession(display, xauthority string) (Session, error) {
	display = strings.TrimSpace(display)
	xauthority = strings.TrimSpace(xauthority)

	if display == "" {
		display = strings.TrimSpace(getenvFn("DISPLAY"))
	}
	if xauthority == "" {
		xauthority = strings.TrimSpace(getenvFn("XAUTHORITY"))
	}

	if display == "" || xauthority == "" {
		detectedDisplay, detectedXAuthority := detectSessionX11EnvFn()
		if display == "" {
			display = strings.TrimSpace(detectedDisplay)
		}
		if xauthority == "" {
			xauthority = strings.TrimSpace(detectedXAuthority)
		}
	}

	if display == "" {
		display = detectDisplayFromSocketFn("/tmp/.X11-unix")
	}
	if display == "" {
		return Session{}, fmt.Errorf("no X display found; set display in config (e.g. display: \":1\") or export DISPLAY for the server")
	}

	if xauthority == "" {
		home := strings.TrimSpace(getenvFn("HOME"))
		if home == "" {
			if detectedHome, err := os.UserHomeDir(); err == nil {
				home = detectedHome
			}
		}
		if home != "" {
			candidate := filepath.Join(home, ".Xauthority")
			if _, err := os.Stat(candidate); err == nil {
				xauthority = candidate
			}
		}
	}

	return Session{
		Display:    display,
		XAuthority: xauthority,
		RuntimeDir: xdg.RuntimeDir,
	}, nil
}

// Environ returns base with DISPLAY, XAUTHORITY and XDG_RUNTIME_DIR filled in
// from the session. Values already present in base win.
func (s Session) Environ(base []string) []string {
	env := append([]string(nil), base...)
	if strings.TrimSpace(envLookup(env, "DISPLAY")) == "" && s.Display != "" {
		env = upsertEnv(env, "DISPLAY", s.Display)
	}
	if strings.TrimSpace(envLookup(env, "XAUTHORITY")) == "" && s.XAuthority != "" {
		env = upsertEnv(env, "XAUTHORITY", s.XAuthority)
	}
	if strings.TrimSpace(envLookup(env, "XDG_RUNTIME_DIR")) == "" && s.RuntimeDir != "" {
		env = upsertEnv(env, "XDG_RUNTIME_DIR", s.RuntimeDir)
	}
	return env
}

func runCommandOutput(name string, args ...string) (string, error) {
	out, err := exec.Command(name, args...).Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func detectSessionX11Env() (display string, xauthority string) {
	uid := strconv.Itoa(os.Getuid())
	out, err := runCommandOutputFn("loginctl", "list-sessions", "--no-legend")
	if err != nil {
		return "", ""
	}
	for _, sessionID := range parseLoginctlSessions(out, uid) {
		d := strings.TrimSpace(loginctlShowSessionProp(sessionID, "Display"))
		if d == "" || strings.EqualFold(d, "n/a") {
			continue
		}

		xauth := ""
		leader := strings.TrimSpace(loginctlShowSessionProp(sessionID, "Leader"))
		if leader != "" && leader != "0" {
			if envMap, err := readProcEnviron(leader); err == nil {
				if ed := strings.TrimSpace(envMap["DISPLAY"]); ed != "" {
					d = ed
				}
				xauth = strings.TrimSpace(envMap["XAUTHORITY"])
			}
		}
		return d, xauth
	}
	return "", ""
}

func parseLoginctlSessions(output string, uid string) []string {
	var sessions []string
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(strings.TrimSpace(line))
		if len(fields) < 2 {
			continue
		}
		if fields[1] == uid {
			sessions = append(sessions, fields[0])
		}
	}
	return sessions
}

func loginctlShowSessionProp(sessionID string, prop string) string {
	out, err := runCommandOutputFn("loginctl", "show-session", sessionID, "-p", prop, "--value")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

func readProcEnviron(pid string) (map[string]string, error) {
	data, err := readFileFn(filepath.Join("/proc", pid, "environ"))
	if err != nil {
		return nil, err
	}

	env := make(map[string]string)
	for _, part := range strings.Split(string(data), "\x00") {
		k, v, ok := strings.Cut(part, "=")
		if !ok || k == "" {
			continue
		}
		env[k] = v
	}
	return env, nil
}

func detectDisplayFromSockets(dir string) string {
	entries, err := readDirFn(dir)
	if err != nil {
		return ""
	}

	var displays []int
	for _, entry := range entries {
		name := entry.Name()
		if len(name) < 2 || name[0] != 'X' {
			continue
		}
		n, err := strconv.Atoi(name[1:])
		if err != nil {
			continue
		}
		displays = append(displays, n)
	}

	if len(displays) == 0 {
		return ""
	}
	sort.Ints(displays)
	return fmt.Sprintf(":%d", displays[len(displays)-1])
}

func envLookup(env []string, key string) string {
	prefix := key + "="
	for _, e := range env {
		if strings.HasPrefix(e, prefix) {
			return strings.TrimPrefix(e, prefix)
		}
	}
	return ""
}

func upsertEnv(env []string, key string, value string) []string {
	prefix := key + "="
	for i, e := range env {
		if strings.HasPrefix(e, prefix) {
			env[i] = prefix + value
			return env
		}
	}
	return append(env, prefix+value)
}
