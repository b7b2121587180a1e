// internal/tenant/cache.go
//
// Read-through registry cache.
//
// Context
// -------
// Site-admin logins and published-content lookups resolve tenants by
// slug on every request.  The cache keeps recently-used registry rows
// in a sync.Map, deduplicates concurrent misses with singleflight, and
// evicts on idle TTL or LRU pressure (see evictor.go).
//
// Only registry rows are cached.  Credentials, lockout state, and the
// content ownership chain are always re-read from the store so lockout
// decisions stay current across service instances.
package tenant

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/singleflight"

	"github.com/latticecms/lattice/internal/metrics"
)

// Static defaults.  Override via the Cache constructor if desired.
const (
	IdleTTL       = 30 * time.Minute
	MaxEntries    = 500
	EvictInterval = 5 * time.Minute
)

// Cache lazily loads tenant rows, stores them in a sync.Map, and evicts
// them on idle TTL or LRU pressure.
type Cache struct {
	db          *sqlx.DB
	sfg         singleflight.Group
	m           sync.Map
	evictTicker *time.Ticker
	idleTTL     time.Duration
	maxEntries  int
}

type entry struct {
	rec      *Record
	lastSeen int64 // UnixNano
}

// NewCache constructs a Cache and starts the background evictor.
func NewCache(db *sqlx.DB, idleTTL time.Duration, maxEntries int) *Cache {
	c := &Cache{
		db:         db,
		idleTTL:    idleTTL,
		maxEntries: maxEntries,
	}
	c.evictTicker = time.NewTicker(EvictInterval)
	go c.evictLoop()
	return c
}

// Get returns the tenant Record for slug, loading it on demand.
func (c *Cache) Get(ctx context.Context, slug string) (*Record, error) {
	if v, ok := c.m.Load(slug); ok {
		ent := v.(*entry)
		atomic.StoreInt64(&ent.lastSeen, time.Now().UnixNano())
		return ent.rec, nil
	}

	v, err, _ := c.sfg.Do(slug, func() (interface{}, error) {
		// Double-check after singleflight barrier.
		if v, ok := c.m.Load(slug); ok {
			ent := v.(*entry)
			atomic.StoreInt64(&ent.lastSeen, time.Now().UnixNano())
			return ent.rec, nil
		}
		rec, err := BySlug(ctx, c.db, slug)
		if err != nil {
			if err != ErrNotFound {
				metrics.TenantLoadErrorsTotal.Inc()
			}
			return nil, err
		}
		ent := &entry{
			rec:      rec,
			lastSeen: time.Now().UnixNano(),
		}
		c.m.Store(slug, ent)
		metrics.TenantLoadTotal.Inc()
		metrics.ActiveTenants.Inc()
		return rec, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Record), nil
}

// Invalidate drops one slug so the next Get re-reads the store.  Called
// after tenant mutations (create, delete) from the central-admin API.
func (c *Cache) Invalidate(slug string) {
	if _, ok := c.m.LoadAndDelete(slug); ok {
		metrics.ActiveTenants.Dec()
	}
}
