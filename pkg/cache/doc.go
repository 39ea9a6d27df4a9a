// Package cache provides a generic key-value Cache with in-memory and Redis backends.
//
// Keys are namespaced as "prefix:key", the layout the session store and the
// CSRF middleware rely on to share one Redis database.
//
//	sessions := cache.NewRedis[session.Session](client, cache.WithPrefix("session"))
//	local := cache.NewMemory[string](cache.WithDefaultTTL(time.Minute))
//	defer local.Close()
//
// TTL semantics for Set: positive expires after the duration, zero uses the
// backend default, negative never expires.
package cache
