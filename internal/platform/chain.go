package platform

import (
	"errors"
	"fmt"
)

// Chain owns a sequence of acquired OS resources and releases them in
// reverse acquisition order. A capture builds one Chain, defers Release, and
// pushes each resource immediately after acquiring it, so a failure at any
// step unwinds exactly what was acquired before it.
type Chain struct {
	names    []string
	releases []func() error
	released bool
}

// Push registers the release for a resource that was just acquired.
func (c *Chain) Push(name string, release func() error) {
	if c.released {
		// Pushing after Release would leak; release immediately instead.
		_ = release()
		return
	}
	c.names = append(c.names, name)
	c.releases = append(c.releases, release)
}

// Len reports how many resources are currently held.
func (c *Chain) Len() int {
	return len(c.releases)
}

// Release runs every registered release, last acquired first. Every release
// runs even if an earlier one fails; the failures are joined. Calling Release
// more than once is a no-op.
func (c *Chain) Release() error {
	if c.released {
		return nil
	}
	c.released = true

	var errs []error
	for i := len(c.releases) - 1; i >= 0; i-- {
		if err := c.releases[i](); err != nil {
			errs = append(errs, fmt.Errorf("release %s: %w", c.names[i], err))
		}
	}
	c.names = nil
	c.releases = nil
	return errors.Join(errs...)
}

// ReleaseInto releases the chain and folds a release failure into *errp
// without hiding an earlier error. Meant for use with defer.
func (c *Chain) ReleaseInto(errp *error) {
	if err := c.Release(); err != nil && *errp == nil {
		*errp = err
	}
}

// PushEarly registers release like Push and returns a func that runs it
// ahead of the rest of the chain. The release runs at most once, whichever
// of the two gets there first.
func (c *Chain) PushEarly(name string, release func() error) func() error {
	done := false
	once := func() error {
		if done {
			return nil
		}
		done = true
		return release()
	}
	c.Push(name, once)
	return once
}
