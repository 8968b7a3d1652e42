// Package sqlitecache implements [cache.Store] on a SQLite file using the
// pure-Go modernc.org/sqlite driver, so cached results survive restarts and
// can be shared by CLI runs on the same machine.
//
// Each row holds a msgpack-encoded [cache.Entry]; the expiry is duplicated in
// an indexed column so [Store.PurgeExpired] never has to decode blobs. The
// schema is versioned with PRAGMA user_version.
package sqlitecache
