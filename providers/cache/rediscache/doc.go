// Package rediscache implements [cache.Store] on Redis with
// github.com/redis/go-redis/v9, for caches shared between processes or hosts.
// Values are msgpack-encoded [cache.Entry] records under a key prefix; expiry
// is delegated to Redis.
package rediscache
