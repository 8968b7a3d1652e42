// Package cache defines the optional result cache consulted by the loader
// before any repair work, and the entry format shared by its backends.
//
// Keys are content hashes of the raw payload (see [Key]); values are the
// canonical JSON bytes of a successfully parsed value. Writers race with
// last-write-wins semantics, and the loader re-validates anything it reads.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Store is the capability the loader needs from a cache backend.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value stored under key. A missing or expired key is
	// reported as ok == false with a nil error.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set stores value under key. A ttl <= 0 means the entry never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Purger is implemented by stores that can drop every entry at once.
type Purger interface {
	Purge(ctx context.Context) (int, error)
}

// Key returns the cache key for a raw payload: the hex SHA-256 of its bytes.
func Key(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// VariantKey returns the cache key for raw loaded under a non-default
// pipeline variant. An empty variant yields Key(raw).
func VariantKey(raw, variant string) string {
	if variant == "" {
		return Key(raw)
	}
	h := sha256.New()
	h.Write([]byte(variant))
	h.Write([]byte{0})
	h.Write([]byte(raw))
	return hex.EncodeToString(h.Sum(nil))
}

// EntrySchema is bumped whenever the encoded Entry layout changes; entries
// carrying another schema are treated as misses.
const EntrySchema uint16 = 1

// ErrSchemaMismatch is returned by DecodeEntry for entries written by an
// incompatible version.
var ErrSchemaMismatch = errors.New("cache: entry schema mismatch")

// Entry is the persisted form of a cached value.
type Entry struct {
	Schema    uint16    `msgpack:"s"`
	Value     []byte    `msgpack:"v"`
	StoredAt  time.Time `msgpack:"t"`
	ExpiresAt time.Time `msgpack:"e"`
}

// NewEntry builds an entry stored at now that expires after ttl (never when ttl <= 0).
func NewEntry(value []byte, now time.Time, ttl time.Duration) Entry {
	entry := Entry{Schema: EntrySchema, Value: append([]byte(nil), value...), StoredAt: now}
	if ttl > 0 {
		entry.ExpiresAt = now.Add(ttl)
	}
	return entry
}

// Expired reports whether the entry is past its expiry at now.
func (e Entry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

// EncodeEntry serializes e with msgpack.
func EncodeEntry(e Entry) ([]byte, error) {
	data, err := msgpack.Marshal(&e)
	if err != nil {
		return nil, fmt.Errorf("cache: encode entry: %w", err)
	}
	return data, nil
}

// DecodeEntry parses data produced by EncodeEntry.
func DecodeEntry(data []byte) (Entry, error) {
	var e Entry
	if err := msgpack.Unmarshal(data, &e); err != nil {
		return Entry{}, fmt.Errorf("cache: decode entry: %w", err)
	}
	if e.Schema != EntrySchema {
		return Entry{}, fmt.Errorf("%w: got %d, want %d", ErrSchemaMismatch, e.Schema, EntrySchema)
	}
	return e, nil
}
