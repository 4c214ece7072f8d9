// File: view/registry_test.go
package view

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"zeus-tournaments/view/viewtest"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestRegistry(t *testing.T) (*Registry, *fakeClock, *int) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	created := 0
	r := NewRegistry(func(id string) (*Loop, error) {
		created++
		return NewLoop(id, viewtest.NewBackend()), nil
	})
	r.now = clock.Now
	t.Cleanup(r.Close)
	return r, clock, &created
}

func TestRegistry_ViewIsCreatedOnce(t *testing.T) {
	r, _, created := newTestRegistry(t)

	a, err := r.View("view-a")
	require.NoError(t, err)
	again, err := r.View("view-a")
	require.NoError(t, err)

	assert.Same(t, a, again)
	assert.Equal(t, 1, *created)
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, "view-a", a.ID())
}

func TestRegistry_FactoryError(t *testing.T) {
	r := NewRegistry(func(id string) (*Loop, error) {
		return nil, errors.New("no backend")
	})

	_, err := r.View("view-a")
	assert.EqualError(t, err, "no backend")
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_SweepClosesIdleViews(t *testing.T) {
	r, clock, _ := newTestRegistry(t)

	idle, err := r.View("idle")
	require.NoError(t, err)
	_, err = r.View("busy")
	require.NoError(t, err)

	closed := make(chan struct{})
	idle.OnClose(func() { close(closed) })

	clock.Advance(20 * time.Minute)
	r.Touch("busy")
	clock.Advance(15 * time.Minute)

	assert.Equal(t, 1, r.Sweep(30*time.Minute))
	assert.Equal(t, 1, r.Len())
	select {
	case <-closed:
	default:
		t.Fatal("idle view was not closed")
	}

	// a returning browser gets a fresh loop
	fresh, err := r.View("idle")
	require.NoError(t, err)
	assert.NotSame(t, idle, fresh)
}

func TestRegistry_TouchUnknownViewIsNoop(t *testing.T) {
	r, _, created := newTestRegistry(t)
	r.Touch("missing")
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 0, *created)
}

func TestRegistry_CloseStopsEverything(t *testing.T) {
	r, _, _ := newTestRegistry(t)
	loop, err := r.View("view-a")
	require.NoError(t, err)

	closed := false
	loop.OnClose(func() { closed = true })
	r.Close()

	assert.True(t, closed)
	assert.Equal(t, 0, r.Len())
}
