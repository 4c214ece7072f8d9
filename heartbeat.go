// file: heartbeat.go
package main

import (
	"context"
	"time"

	"zeus-tournaments/logger"
	"zeus-tournaments/websocket"
)

// activeViewsMetric is the number of browser views with a running loop.
const activeViewsMetric = "ActiveViews"

// SweepInterval is how often idle views are looked for.
var SweepInterval = 10 * time.Second

// viewSweeper is the part of view.Registry the heartbeat needs.
type viewSweeper interface {
	Sweep(timeout time.Duration) int
	Len() int
}

// Heartbeat closes views nobody has touched within the idle timeout and reports how many
// are left.
type Heartbeat struct {
	views   viewSweeper
	gauges  websocket.Gauges
	timeout time.Duration
}

// NewHeartbeat builds a heartbeat for views.
func NewHeartbeat(views viewSweeper, gauges websocket.Gauges, timeout time.Duration) *Heartbeat {
	return &Heartbeat{views: views, gauges: gauges, timeout: timeout}
}

// Run sweeps every SweepInterval until ctx is cancelled.
func (h *Heartbeat) Run(ctx context.Context) {
	ticker := time.NewTicker(SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Beat()
		}
	}
}

// Beat runs one sweep and returns how many views it closed.
func (h *Heartbeat) Beat() int {
	removed := h.views.Sweep(h.timeout)
	active := h.views.Len()
	if removed > 0 {
		logger.Info.Printf("[Heartbeat.Beat] Closed %d inactive views (timeout=%v, active=%d)", removed, h.timeout, active)
	}
	h.gauges.PublishGauge(activeViewsMetric, float64(active))
	return removed
}
