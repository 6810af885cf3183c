package desktop

import (
	"context"
	"errors"
	"strings"
	"time"
)

// WaitPolicy bounds WaitForWindow polling.
type WaitPolicy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Growth          float64
	DefaultTimeout  time.Duration
	MaxTimeout      time.Duration
}

// DefaultWaitPolicy polls at 200ms, growing by 1.5x up to 500ms, for 30s by
// default and 300s at most.
func DefaultWaitPolicy() WaitPolicy {
	return WaitPolicy{
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     500 * time.Millisecond,
		Growth:          1.5,
		DefaultTimeout:  30 * time.Second,
		MaxTimeout:      300 * time.Second,
	}
}

func (p WaitPolicy) withDefaults() WaitPolicy {
	d := DefaultWaitPolicy()
	if p.InitialInterval <= 0 {
		p.InitialInterval = d.InitialInterval
	}
	if p.MaxInterval <= 0 {
		p.MaxInterval = d.MaxInterval
	}
	if p.MaxInterval < p.InitialInterval {
		p.MaxInterval = p.InitialInterval
	}
	if p.Growth < 1 {
		p.Growth = d.Growth
	}
	if p.DefaultTimeout <= 0 {
		p.DefaultTimeout = d.DefaultTimeout
	}
	if p.MaxTimeout <= 0 {
		p.MaxTimeout = d.MaxTimeout
	}
	return p
}

// Timeout applies the default to non-positive requests and clamps to the
// maximum.
func (p WaitPolicy) Timeout(requested time.Duration) time.Duration {
	if requested <= 0 {
		requested = p.DefaultTimeout
	}
	return min(requested, p.MaxTimeout)
}

func (p WaitPolicy) next(interval time.Duration) time.Duration {
	return min(time.Duration(float64(interval)*p.Growth), p.MaxInterval)
}

// WaitForWindow polls FindWindow until a match appears or timeout elapses.
// It returns as soon as the window is found. Each sleep is clipped to the
// time left, so expiry is reported no later than one interval past the
// deadline.
func (r *Registry) WaitForWindow(ctx context.Context, title string, timeout time.Duration) (WindowDescriptor, error) {
	const op = "wait_for_window"
	if strings.TrimSpace(title) == "" {
		return WindowDescriptor{}, invalidArgument(op, "window title must not be empty")
	}

	timeout = r.wait.Timeout(timeout)
	deadline := r.now().Add(timeout)
	interval := r.wait.InitialInterval

	for {
		w, err := r.FindWindow(title)
		if err == nil {
			return w, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return WindowDescriptor{}, err
		}

		remaining := deadline.Sub(r.now())
		if remaining <= 0 {
			return WindowDescriptor{}, newError(Timeout, op, nil,
				"no visible window title contains %q after %s", title, timeout)
		}
		if err := r.sleep(ctx, min(interval, remaining)); err != nil {
			return WindowDescriptor{}, interrupted(op, title, err)
		}
		interval = r.wait.next(interval)
	}
}

// interrupted types a context error ending the wait: an expired caller
// deadline is a Timeout, a cancellation is OperationFailed. The context
// error stays in the chain.
func interrupted(op, title string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return newError(Timeout, op, err, "wait for window %q ended by caller deadline", title)
	}
	return newError(OperationFailed, op, err, "wait for window %q cancelled", title)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
