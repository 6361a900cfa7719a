package tenantconn

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry caches ready tenant connections keyed by organization id so
// busy tenants do not rebuild a pool on every request. Entries are
// time-bounded and must be invalidated whenever the organization's
// dedicated key is re-saved; secretstore wires its invalidator here.
type Registry struct {
	resolver *Resolver
	ttl      time.Duration

	mu      sync.Mutex
	entries map[uuid.UUID]*registryEntry
}

type registryEntry struct {
	conn    *Conn
	expires time.Time
}

// DefaultEntryTTL bounds how long a cached tenant pool may serve without
// re-resolving.
const DefaultEntryTTL = 10 * time.Minute

// NewRegistry creates a Registry over the resolver. A non-positive ttl
// falls back to DefaultEntryTTL.
func NewRegistry(resolver *Resolver, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultEntryTTL
	}
	return &Registry{
		resolver: resolver,
		ttl:      ttl,
		entries:  make(map[uuid.UUID]*registryEntry),
	}
}

// Get returns a cached connection for orgID or resolves a fresh one.
// Expired entries are closed and replaced.
func (r *Registry) Get(ctx context.Context, orgID uuid.UUID) (*Conn, error) {
	r.mu.Lock()
	if e, ok := r.entries[orgID]; ok {
		if time.Now().Before(e.expires) {
			conn := e.conn
			r.mu.Unlock()
			return conn, nil
		}
		delete(r.entries, orgID)
		r.mu.Unlock()
		e.conn.Close()
	} else {
		r.mu.Unlock()
	}

	conn, err := r.resolver.Resolve(ctx, orgID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[orgID]; ok && time.Now().Before(e.expires) {
		// Lost the race; keep the winner's pool.
		conn.Close()
		return e.conn, nil
	}
	r.entries[orgID] = &registryEntry{conn: conn, expires: time.Now().Add(r.ttl)}
	return conn, nil
}

// Invalidate closes and drops the organization's cached connection.
// Called after every dedicated-key save, and safe when nothing is
// cached.
func (r *Registry) Invalidate(orgID uuid.UUID) {
	r.mu.Lock()
	e, ok := r.entries[orgID]
	delete(r.entries, orgID)
	r.mu.Unlock()
	if ok {
		e.conn.Close()
	}
}

// Close tears down every cached connection.
func (r *Registry) Close() {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[uuid.UUID]*registryEntry)
	r.mu.Unlock()
	for _, e := range entries {
		e.conn.Close()
	}
}
