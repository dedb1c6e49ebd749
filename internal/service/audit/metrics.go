package audit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var metricAuditEvents = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "tuskheart",
	Name:      "audit_events_total",
	Help:      "Audit events emitted by the emotional context engine, by kind and degraded component.",
}, []string{"event", "component"})

var metricAuditWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "tuskheart",
	Name:      "audit_write_failures_total",
	Help:      "Audit events that could not be written to their sink.",
})

// MetricsSink counts events. It keeps no payload, only kind and component.
type MetricsSink struct{}

func NewMetricsSink() MetricsSink {
	return MetricsSink{}
}

func (MetricsSink) Emit(e Event) {
	component, _ := e.Payload[PayloadComponent].(string)
	metricAuditEvents.WithLabelValues(string(e.Kind), component).Inc()
}
