// Package otel provides OpenTelemetry metric exporter bindings for the
// authorization counters and histograms.
//
// [NewOTelExporter] registers an Int64ObservableCounter per core counter and
// an Int64ObservableGauge per histogram bucket. A single callback reads
// [scitokens.Engine.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider; callers supply the Meter.
//   - Mutate engine state.
package otel
