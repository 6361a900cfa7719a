// Package redis opens the connection used to cache non-secret org settings.
// Caching is optional: an empty BROKER_REDIS_URL disables it and the broker
// falls back to reading the control plane on every request.
package redis
