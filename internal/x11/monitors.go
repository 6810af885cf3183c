package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Area is an axis-aligned rectangle in root window coordinates.
type Area struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Monitor represents a physical display
type Monitor struct {
	Name    string
	Bounds  Area
	Work    Area
	Primary bool
}

// RootArea returns the geometry of the root window, which spans every
// monitor of the screen.
func (c *Connection) RootArea() (Area, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return Area{}, fmt.Errorf("failed to get root geometry: %w", err)
	}
	return Area{Width: int(geom.Width), Height: int(geom.Height)}, nil
}

// GetMonitors retrieves all active monitors using XRandR, in CRTC order.
// Work areas exclude dock struts, or fall back to _NET_WORKAREA.
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := c.initRandR(); err != nil {
		return nil, err
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var primaryOutput randr.Output
	if reply, err := randr.GetOutputPrimary(c.XUtil.Conn(), c.Root).Reply(); err == nil {
		primaryOutput = reply.Output
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		outputName := fmt.Sprintf("Monitor%d", i)
		outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
		if err == nil {
			outputName = string(outputInfo.Name)
		}

		primary := false
		for _, out := range crtcInfo.Outputs {
			if primaryOutput != 0 && out == primaryOutput {
				primary = true
			}
		}

		bounds := Area{
			X:      int(crtcInfo.X),
			Y:      int(crtcInfo.Y),
			Width:  int(crtcInfo.Width),
			Height: int(crtcInfo.Height),
		}
		monitors = append(monitors, Monitor{
			Name:    outputName,
			Bounds:  bounds,
			Work:    bounds,
			Primary: primary,
		})
	}

	// Servers without RandR outputs (Xvfb, some VNC servers) still have a
	// usable root window.
	if len(monitors) == 0 {
		root, err := c.RootArea()
		if err != nil {
			return nil, err
		}
		monitors = append(monitors, Monitor{Name: "screen", Bounds: root, Work: root})
	}

	c.applyWorkAreas(monitors)
	return monitors, nil
}

func (c *Connection) applyWorkAreas(monitors []Monitor) {
	root, err := c.RootArea()
	if err != nil {
		return
	}
	partials := c.dockStrutPartials(root)

	var workArea []ewmh.Workarea
	if wa, err := ewmh.WorkareaGet(c.XUtil); err == nil {
		workArea = wa
	}
	desktopIndex := 0
	if currentDesktop, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(currentDesktop) < len(workArea) {
		desktopIndex = int(currentDesktop)
	}

	for i := range monitors {
		m := &monitors[i]
		var struts dockStruts
		for _, sp := range partials {
			updateStrutsForMonitor(m.Bounds, root.Width, root.Height, sp, &struts)
		}
		if !struts.empty() {
			m.Work = struts.shrink(m.Bounds)
			continue
		}
		if len(workArea) == 0 {
			continue
		}
		wa := workArea[desktopIndex]
		isect := intersectArea(m.Bounds, Area{X: wa.X, Y: wa.Y, Width: int(wa.Width), Height: int(wa.Height)})
		if isect.Width > 0 && isect.Height > 0 {
			m.Work = isect
		}
	}
}

// dockStrutPartials collects the strut reservations of every dock window.
// Docks that only set _NET_WM_STRUT are widened to span the whole root.
func (c *Connection) dockStrutPartials(root Area) []*ewmh.WmStrutPartial {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil
	}

	var partials []*ewmh.WmStrutPartial
	for _, windowID := range clients {
		types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
		if err != nil {
			continue
		}

		isDock := false
		for _, t := range types {
			if t == "_NET_WM_WINDOW_TYPE_DOCK" {
				isDock = true
				break
			}
		}
		if !isDock {
			continue
		}

		if sp, err := ewmh.WmStrutPartialGet(c.XUtil, windowID); err == nil {
			partials = append(partials, sp)
			continue
		}

		if s, err := ewmh.WmStrutGet(c.XUtil, windowID); err == nil {
			partials = append(partials, &ewmh.WmStrutPartial{
				Left:       s.Left,
				Right:      s.Right,
				Top:        s.Top,
				Bottom:     s.Bottom,
				LeftEndY:   uint(root.Height - 1),
				RightEndY:  uint(root.Height - 1),
				TopEndX:    uint(root.Width - 1),
				BottomEndX: uint(root.Width - 1),
			})
		}
	}
	return partials
}

type dockStruts struct {
	left   int
	right  int
	top    int
	bottom int
}

func (s dockStruts) empty() bool {
	return s.left == 0 && s.right == 0 && s.top == 0 && s.bottom == 0
}

func (s dockStruts) shrink(a Area) Area {
	a.X += s.left
	a.Y += s.top
	a.Width = max(a.Width-(s.left+s.right), 1)
	a.Height = max(a.Height-(s.top+s.bottom), 1)
	return a
}

func updateStrutsForMonitor(mon Area, rootWidth, rootHeight int, sp *ewmh.WmStrutPartial, acc *dockStruts) {
	// Top strut: y=[0,Top), x=[TopStartX,TopEndX]
	if sp.Top > 0 {
		strut := spanArea(int(sp.TopStartX), 0, int(sp.TopEndX)+1, int(sp.Top))
		if isect := intersectArea(mon, strut); isect.Width > 0 && isect.Height > 0 {
			acc.top = max(acc.top, isect.Height)
		}
	}

	// Bottom strut: y=[rootHeight-Bottom,rootHeight), x=[BottomStartX,BottomEndX]
	if sp.Bottom > 0 {
		strut := spanArea(int(sp.BottomStartX), rootHeight-int(sp.Bottom), int(sp.BottomEndX)+1, rootHeight)
		if isect := intersectArea(mon, strut); isect.Width > 0 && isect.Height > 0 {
			acc.bottom = max(acc.bottom, isect.Height)
		}
	}

	// Left strut: x=[0,Left), y=[LeftStartY,LeftEndY]
	if sp.Left > 0 {
		strut := spanArea(0, int(sp.LeftStartY), int(sp.Left), int(sp.LeftEndY)+1)
		if isect := intersectArea(mon, strut); isect.Width > 0 && isect.Height > 0 {
			acc.left = max(acc.left, isect.Width)
		}
	}

	// Right strut: x=[rootWidth-Right,rootWidth), y=[RightStartY,RightEndY]
	if sp.Right > 0 {
		strut := spanArea(rootWidth-int(sp.Right), int(sp.RightStartY), rootWidth, int(sp.RightEndY)+1)
		if isect := intersectArea(mon, strut); isect.Width > 0 && isect.Height > 0 {
			acc.right = max(acc.right, isect.Width)
		}
	}
}

func spanArea(x1, y1, x2, y2 int) Area {
	return Area{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// intersectArea returns the overlap of a and b; the result has zero size
// when they are disjoint.
func intersectArea(a, b Area) Area {
	x1 := max(a.X, b.X)
	y1 := max(a.Y, b.Y)
	x2 := min(a.X+a.Width, b.X+b.Width)
	y2 := min(a.Y+a.Height, b.Y+b.Height)

	if x2 <= x1 || y2 <= y1 {
		return Area{}
	}
	return spanArea(x1, y1, x2, y2)
}
