// Package prometheus provides Prometheus collectors for hubauth metrics.
//
// [NewPrometheusExporter] accepts a [hubauth.Client] and exposes an [http.Handler]
// that renders all hubauth counters and histograms in Prometheus text exposition format.
// Counter names are prefixed hubauth_*_total; the single histogram is
// hubauth_send_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate client state.
package prometheus
