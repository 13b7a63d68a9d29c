// Package metric provides Prometheus metrics for graphdev.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: metrics registry and HTTP handler
//   - collector.go: custom collector reading live session state
//
// Metrics include:
//
//   - Follower round trip counters and latency histograms
//   - Heartbeat and version check outcomes
//   - Leader request counters per message kind
//   - Subgraph count of the running session
//
// The leader exposes them at /metrics when metrics.addr is configured.
package metric
