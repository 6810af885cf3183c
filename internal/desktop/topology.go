package desktop

import "github.com/1broseidon/winsight/internal/platform"

// Topology reports the monitor layout.
type Topology struct {
	backend platform.Backend
}

// NewTopology creates a Topology over backend.
func NewTopology(backend platform.Backend) *Topology {
	return &Topology{backend: backend}
}

// ListMonitors enumerates active monitors. Exactly one monitor in the result
// is primary.
func (t *Topology) ListMonitors() ([]MonitorDescriptor, error) {
	const op = "list_monitors"

	displays, err := t.backend.Displays()
	if err != nil {
		return nil, osFailure(op, err, "enumerate monitors")
	}
	if len(displays) == 0 {
		return nil, newError(OperationFailed, op, nil, "the OS reported no active monitors")
	}

	primary := primaryIndex(displays)
	monitors := make([]MonitorDescriptor, 0, len(displays))
	for i, d := range displays {
		bounds := d.Bounds.Normalize()
		work := d.Usable.Normalize()
		if work.Empty() {
			work = bounds
		}
		monitors = append(monitors, MonitorDescriptor{
			ID:        i + 1,
			Name:      d.Name,
			Bounds:    bounds,
			WorkArea:  work,
			Width:     bounds.Width(),
			Height:    bounds.Height(),
			IsPrimary: i == primary,
		})
	}
	return monitors, nil
}

// Monitor returns the monitor with the given 1-based id.
func (t *Topology) Monitor(id int) (MonitorDescriptor, error) {
	monitors, err := t.ListMonitors()
	if err != nil {
		return MonitorDescriptor{}, err
	}
	for _, m := range monitors {
		if m.ID == id {
			return m, nil
		}
	}
	return MonitorDescriptor{}, newError(NotFound, "monitor", nil,
		"no monitor with id %d (valid ids are 1..%d)", id, len(monitors))
}

// primaryIndex picks the single primary monitor: the first one the OS flags,
// else the one holding the virtual-screen origin, else the first.
func primaryIndex(displays []platform.Display) int {
	for i, d := range displays {
		if d.Primary {
			return i
		}
	}
	for i, d := range displays {
		if d.Bounds.Contains(0, 0) {
			return i
		}
	}
	return 0
}
