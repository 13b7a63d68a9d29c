package metric

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "graphdev"

// Round trip results.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Registry holds all application metrics on a private Prometheus registry.
type Registry struct {
	registry *prometheus.Registry

	// Follower metrics
	RoundTrips        *prometheus.CounterVec
	RoundTripDuration *prometheus.HistogramVec
	Heartbeats        *prometheus.CounterVec
	VersionChecks     *prometheus.CounterVec

	// Leader metrics
	LeaderRequests *prometheus.CounterVec

	// Session metrics
	SchemaReloads *prometheus.CounterVec
}

// NewRegistry creates a registry with all graphdev metrics plus the Go
// runtime and process collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
		RoundTrips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "round_trips_total",
			Help:      "Follower to leader round trips by message, transport and result.",
		}, []string{"message", "transport", "result"}),
		RoundTripDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "round_trip_duration_seconds",
			Help:      "Latency of follower to leader round trips.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"message", "transport"}),
		Heartbeats: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "heartbeats_total",
			Help:      "Liveness checks sent to the leader by result.",
		}, []string{"result"}),
		VersionChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "version_checks_total",
			Help:      "Version handshakes by outcome.",
		}, []string{"result"}),
		LeaderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "leader_requests_total",
			Help:      "Follower messages handled by the leader by kind.",
		}, []string{"kind"}),
		SchemaReloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schema_reloads_total",
			Help:      "Schema file reloads pushed to the leader by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.RoundTrips,
		r.RoundTripDuration,
		r.Heartbeats,
		r.VersionChecks,
		r.LeaderRequests,
		r.SchemaReloads,
	)

	return r
}

var (
	globalOnce     sync.Once
	globalRegistry *Registry
)

// Global returns the process-wide registry.
func Global() *Registry {
	globalOnce.Do(func() {
		globalRegistry = NewRegistry()
	})
	return globalRegistry
}

// Handler returns an HTTP handler for the /metrics endpoint of Global().
func Handler() http.Handler {
	return Global().Handler()
}

// Handler returns an HTTP handler serving this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Gatherer exposes the underlying registry for tests and embedding.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Register adds a custom collector such as the one from NewCollector.
func (r *Registry) Register(c prometheus.Collector) error {
	return r.registry.Register(c)
}

// RecordRoundTrip counts one round trip and observes its latency.
func (r *Registry) RecordRoundTrip(message, transport string, err error, seconds float64) {
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	r.RoundTrips.WithLabelValues(message, transport, result).Inc()
	r.RoundTripDuration.WithLabelValues(message, transport).Observe(seconds)
}

// RecordHeartbeat counts one liveness check.
func (r *Registry) RecordHeartbeat(err error) {
	if err != nil {
		r.Heartbeats.WithLabelValues(ResultError).Inc()
		return
	}
	r.Heartbeats.WithLabelValues(ResultOK).Inc()
}

// RecordVersionCheck counts a version handshake outcome
// (compatible, incompatible, error).
func (r *Registry) RecordVersionCheck(result string) {
	r.VersionChecks.WithLabelValues(result).Inc()
}

// RecordLeaderRequest counts one follower message handled by the leader.
func (r *Registry) RecordLeaderRequest(kind string) {
	r.LeaderRequests.WithLabelValues(kind).Inc()
}

// RecordSchemaReload counts one schema reload.
func (r *Registry) RecordSchemaReload(err error) {
	if err != nil {
		r.SchemaReloads.WithLabelValues(ResultError).Inc()
		return
	}
	r.SchemaReloads.WithLabelValues(ResultOK).Inc()
}
