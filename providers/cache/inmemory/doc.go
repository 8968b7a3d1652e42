// Package inmemory provides a concurrency-safe, map-backed [cache.Store] that
// lives in process memory. It is meant for single-process use where results
// do not need to survive a restart; expired entries are dropped lazily on
// read and by [Store.Purge].
package inmemory
