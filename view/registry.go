// File: view/registry.go
package view

import (
	"sync"
	"time"

	"zeus-tournaments/logger"
)

// Factory builds the loop for a new view id.
type Factory func(id string) (*Loop, error)

// Registry tracks one running Loop per browser view and closes views nobody has
// touched for a while.
type Registry struct {
	factory Factory
	now     func() time.Time

	mu    sync.Mutex
	views map[string]*registered
}

type registered struct {
	loop     *Loop
	lastSeen time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry(factory Factory) *Registry {
	return &Registry{
		factory: factory,
		now:     time.Now,
		views:   make(map[string]*registered),
	}
}

// View returns the running loop for id, creating and starting it on first use.
func (r *Registry) View(id string) (*Loop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.views[id]; ok {
		v.lastSeen = r.now()
		return v.loop, nil
	}

	loop, err := r.factory(id)
	if err != nil {
		return nil, err
	}
	loop.Start()
	r.views[id] = &registered{loop: loop, lastSeen: r.now()}
	logger.Info.Printf("[Registry.View] Created view=%s (active=%d)", id, len(r.views))
	return loop, nil
}

// Touch marks id as in use without creating it.
func (r *Registry) Touch(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.views[id]; ok {
		v.lastSeen = r.now()
	}
}

// Len reports the number of running views.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}

// Sweep closes views idle for longer than timeout and returns how many it closed.
// Their stored sessions survive, so a returning browser picks its session back up.
func (r *Registry) Sweep(timeout time.Duration) int {
	r.mu.Lock()
	var stale []*Loop
	for id, v := range r.views {
		if r.now().Sub(v.lastSeen) > timeout {
			logger.Info.Printf("[Registry.Sweep] Removing inactive view=%s (timeout=%v)", id, timeout)
			stale = append(stale, v.loop)
			delete(r.views, id)
		}
	}
	r.mu.Unlock()

	for _, loop := range stale {
		loop.Close()
	}
	return len(stale)
}

// Close stops every view.
func (r *Registry) Close() {
	r.mu.Lock()
	loops := make([]*Loop, 0, len(r.views))
	for id, v := range r.views {
		loops = append(loops, v.loop)
		delete(r.views, id)
	}
	r.mu.Unlock()

	for _, loop := range loops {
		loop.Close()
	}
}
