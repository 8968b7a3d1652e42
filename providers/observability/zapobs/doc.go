// Package zapobs adapts a go.uber.org/zap logger to observability.Provider.
// Spans and metric updates are written as debug entries with a "span" or
// "metric" field; log calls map onto the matching zap levels.
package zapobs
