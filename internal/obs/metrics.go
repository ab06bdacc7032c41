// Package obs provides observability functionality including metrics and HTTP endpoints
package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the bridge.
type Metrics struct {
	RecordsConsumedTotal    prometheus.Counter
	BackendRequestsTotal    prometheus.Counter
	TransportFailuresTotal  prometheus.Counter
	ResponsesPublishedTotal prometheus.Counter
	PublishFailuresTotal    prometheus.Counter
	OffsetsCommittedTotal   prometheus.Counter
	RecordsInFlight         prometheus.Gauge
}

// NewMetrics creates and initializes a new Metrics instance
// All metrics are registered with the Prometheus default registry
func NewMetrics(serviceName string) *Metrics {
	return &Metrics{
		RecordsConsumedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bridge_records_consumed_total",
			Help: "Total number of records fetched from the request topic",
			ConstLabels: prometheus.Labels{
				"service": serviceName,
			},
		}),
		BackendRequestsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bridge_backend_requests_total",
			Help: "Total number of HTTP requests issued to the backend",
			ConstLabels: prometheus.Labels{
				"service": serviceName,
			},
		}),
		TransportFailuresTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bridge_backend_transport_failures_total",
			Help: "Total number of backend requests that failed before a response was received",
			ConstLabels: prometheus.Labels{
				"service": serviceName,
			},
		}),
		ResponsesPublishedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bridge_responses_published_total",
			Help: "Total number of response records published to the response topic",
			ConstLabels: prometheus.Labels{
				"service": serviceName,
			},
		}),
		PublishFailuresTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bridge_publish_failures_total",
			Help: "Total number of response records that could not be published",
			ConstLabels: prometheus.Labels{
				"service": serviceName,
			},
		}),
		OffsetsCommittedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bridge_offsets_committed_total",
			Help: "Total number of request offsets committed after a published response",
			ConstLabels: prometheus.Labels{
				"service": serviceName,
			},
		}),
		RecordsInFlight: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "bridge_records_in_flight",
			Help: "Number of fetched records whose processing has not finished",
			ConstLabels: prometheus.Labels{
				"service": serviceName,
			},
		}),
	}
}

// IncrementRecordsConsumed increments the records consumed counter by 1
func (m *Metrics) IncrementRecordsConsumed() {
	m.RecordsConsumedTotal.Inc()
}

// IncrementBackendRequests increments the backend requests counter by 1
func (m *Metrics) IncrementBackendRequests() {
	m.BackendRequestsTotal.Inc()
}

// IncrementTransportFailures increments the transport failures counter by 1
func (m *Metrics) IncrementTransportFailures() {
	m.TransportFailuresTotal.Inc()
}

// IncrementResponsesPublished increments the published responses counter by 1
func (m *Metrics) IncrementResponsesPublished() {
	m.ResponsesPublishedTotal.Inc()
}

// IncrementPublishFailures increments the publish failures counter by 1
func (m *Metrics) IncrementPublishFailures() {
	m.PublishFailuresTotal.Inc()
}

// IncrementOffsetsCommitted increments the committed offsets counter by 1
func (m *Metrics) IncrementOffsetsCommitted() {
	m.OffsetsCommittedTotal.Inc()
}

// IncrementRecordsInFlight increments the in-flight gauge by 1
func (m *Metrics) IncrementRecordsInFlight() {
	m.RecordsInFlight.Inc()
}

// DecrementRecordsInFlight decrements the in-flight gauge by 1
func (m *Metrics) DecrementRecordsInFlight() {
	m.RecordsInFlight.Dec()
}
