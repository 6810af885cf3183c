package platform

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestChainReleasesInReverseOrder(t *testing.T) {
	var order []string
	c := &Chain{}
	for _, name := range []string{"screen-dc", "mem-dc", "bitmap", "select"} {
		name := name
		c.Push(name, func() error {
			order = append(order, name)
			return nil
		})
	}
	if c.Len() != 4 {
		t.Fatalf("Len = %d, want 4", c.Len())
	}
	if err := c.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	want := []string{"select", "bitmap", "mem-dc", "screen-dc"}
	if !reflect.DeepEqual(order, want) {
		t.Fatalf("release order = %v, want %v", order, want)
	}
	if c.Len() != 0 {
		t.Fatalf("Len after release = %d, want 0", c.Len())
	}
}

func TestChainReleaseRunsAllAndJoinsErrors(t *testing.T) {
	released := 0
	c := &Chain{}
	c.Push("a", func() error { released++; return nil })
	c.Push("b", func() error { released++; return errors.New("boom") })
	c.Push("c", func() error { released++; return nil })

	err := c.Release()
	if err == nil {
		t.Fatal("expected error from failing release")
	}
	if !strings.Contains(err.Error(), "release b") {
		t.Fatalf("error %q does not name failing resource", err)
	}
	if released != 3 {
		t.Fatalf("released %d resources, want 3", released)
	}
}

func TestChainReleaseIsIdempotent(t *testing.T) {
	calls := 0
	c := &Chain{}
	c.Push("x", func() error { calls++; return nil })
	_ = c.Release()
	_ = c.Release()
	if calls != 1 {
		t.Fatalf("release called %d times, want 1", calls)
	}
}

func TestChainPushAfterReleaseReleasesImmediately(t *testing.T) {
	calls := 0
	c := &Chain{}
	_ = c.Release()
	c.Push("late", func() error { calls++; return nil })
	if calls != 1 {
		t.Fatalf("late resource released %d times, want 1", calls)
	}
	if c.Len() != 0 {
		t.Fatalf("Len = %d, want 0", c.Len())
	}
}

func TestChainReleaseIntoKeepsFirstError(t *testing.T) {
	first := errors.New("encode failed")
	release := func() (err error) {
		c := &Chain{}
		c.Push("dc", func() error { return errors.New("release failed") })
		defer c.ReleaseInto(&err)
		return first
	}
	if err := release(); !errors.Is(err, first) {
		t.Fatalf("err = %v, want %v", err, first)
	}

	onlyRelease := func() (err error) {
		c := &Chain{}
		c.Push("dc", func() error { return errors.New("release failed") })
		defer c.ReleaseInto(&err)
		return nil
	}
	if err := onlyRelease(); err == nil || !strings.Contains(err.Error(), "release dc") {
		t.Fatalf("err = %v, want release failure", err)
	}
}

func TestChainPushEarlyRunsOnce(t *testing.T) {
	var order []string
	c := &Chain{}
	c.Push("bitmap", func() error {
		order = append(order, "bitmap")
		return nil
	})
	deselect := c.PushEarly("selection", func() error {
		order = append(order, "selection")
		return nil
	})

	if err := deselect(); err != nil {
		t.Fatalf("early release: %v", err)
	}
	if err := deselect(); err != nil {
		t.Fatalf("second early release: %v", err)
	}
	if err := c.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	want := []string{"selection", "bitmap"}
	if !reflect.DeepEqual(order, want) {
		t.Fatalf("release order = %v, want %v", order, want)
	}
}

func TestChainPushEarlyUnusedReleasesWithChain(t *testing.T) {
	calls := 0
	c := &Chain{}
	c.PushEarly("selection", func() error {
		calls++
		return nil
	})
	if err := c.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if calls != 1 {
		t.Fatalf("release ran %d times, want 1", calls)
	}
}
