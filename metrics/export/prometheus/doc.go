// Package prometheus renders coursehub engine metrics in the Prometheus text
// exposition format.
//
// [NewPrometheusExporter] reads [coursehub.Engine.MetricsSnapshot] on every
// scrape. Counter names are prefixed coursehub_*_total and latency
// histograms are coursehub_*_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry; callers mount the handler.
//   - Mutate engine state.
package prometheus
