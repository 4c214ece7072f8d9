// Package websocket - websocket/metrics.go
// file: websocket/metrics.go

package websocket

// Gauges publishes point-in-time counts. services.CloudWatchMetrics implements it.
type Gauges interface {
	PublishGauge(name string, value float64)
}

type noopGauges struct{}

func (noopGauges) PublishGauge(string, float64) {}

// connectionsMetric is the open websocket count across all views.
const connectionsMetric = "ViewConnections"

func (h *Hub) publishConnections(count int) {
	h.gauges.PublishGauge(connectionsMetric, float64(count))
}
