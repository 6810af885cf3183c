package x11

import (
	"fmt"
	"os"
	"sync"

	"github.com/BurntSushi/xgb/composite"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// Connection manages the X11 connection and the extensions used for
// monitor discovery and window capture.
type Connection struct {
	XUtil   *xgbutil.XUtil
	Root    xproto.Window
	Session Session

	randrOnce sync.Once
	randrErr  error

	compositeOnce sync.Once
	compositeErr  error
}

// Connect opens a connection to the display named by session. XAUTHORITY is
// read by xgb from the process environment, so a detected cookie file is
// exported before dialing when the environment lacks one.
func Connect(session Session) (*Connection, error) {
	if session.XAuthority != "" && os.Getenv("XAUTHORITY") == "" {
		if err := os.Setenv("XAUTHORITY", session.XAuthority); err != nil {
			return nil, fmt.Errorf("export XAUTHORITY: %w", err)
		}
	}

	xu, err := xgbutil.NewConnDisplay(session.Display)
	if err != nil {
		return nil, fmt.Errorf("connect to X display %q: %w", session.Display, err)
	}

	return &Connection{
		XUtil:   xu,
		Root:    xu.RootWin(),
		Session: session,
	}, nil
}

func (c *Connection) initRandR() error {
	c.randrOnce.Do(func() {
		if err := randr.Init(c.XUtil.Conn()); err != nil {
			c.randrErr = fmt.Errorf("randr init failed: %w", err)
		}
	})
	return c.randrErr
}

func (c *Connection) initComposite() error {
	c.compositeOnce.Do(func() {
		if err := composite.Init(c.XUtil.Conn()); err != nil {
			c.compositeErr = fmt.Errorf("composite init failed: %w", err)
			return
		}
		// NameWindowPixmap requires Composite 0.2.
		if _, err := composite.QueryVersion(c.XUtil.Conn(), 0, 4).Reply(); err != nil {
			c.compositeErr = fmt.Errorf("composite version query failed: %w", err)
		}
	})
	return c.compositeErr
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}
