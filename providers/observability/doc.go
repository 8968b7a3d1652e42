// Package observability defines the tracing, metrics and logging interfaces
// used across jsonmend, plus the attribute keys, span names and metric names
// every backend reports under.
//
// [Provider] composes [Tracer], [Metrics] and [Logger] into a single injectable
// dependency. Nothing in the repair core requires one: when no provider is
// configured the loader falls back to [Nop], and everything an observer sees is
// also available from the returned repair session.
//
// Concrete backends live in sub-packages: slogobs (log/slog) and zapobs
// (go.uber.org/zap).
package observability
