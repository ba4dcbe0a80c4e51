// Package prometheus renders the authorization metrics in Prometheus text
// exposition format.
//
// [NewPrometheusExporter] accepts a [scitokens.Engine] and exposes an
// [http.Handler]. Counter names are prefixed scitokens_*_total; the single
// histogram is scitokens_authorize_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry; callers mount the
//     Handler.
//   - Mutate engine state.
package prometheus
