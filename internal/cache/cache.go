// Package cache implements the domains cache: a thread-safe map from domain
// name to resolved address, with a single fixed TTL applied at insertion
// time. It is deliberately simpler than a resolver's response cache — no
// LRU eviction, no negative caching, no capacity bound — by design: a
// sweep-driven eviction policy is a possible future extension, not part of
// this cache's contract.
package cache

import (
	"sync"
	"time"
)

// Clock abstracts the passage of time so tests can control expiry without
// sleeping. Now must be non-decreasing and unaffected by wall-clock edits;
// the production implementation relies on time.Time's monotonic reading,
// which already satisfies this.
type Clock interface {
	Now() time.Time
}

// systemClock is the production Clock, backed by time.Now's monotonic
// reading.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type entry struct {
	address   string
	expiresAt time.Time
}

// Domains is a thread-safe, TTL-expiring name to address map. The zero
// value is not usable; construct with New.
type Domains struct {
	mu    sync.Mutex
	ttl   time.Duration
	clock Clock
	data  map[string]entry
}

// New creates a Domains cache with a single TTL applied to every insertion.
func New(ttl time.Duration) *Domains {
	return newWithClock(ttl, systemClock{})
}

func newWithClock(ttl time.Duration, clock Clock) *Domains {
	return &Domains{
		ttl:   ttl,
		clock: clock,
		data:  make(map[string]entry),
	}
}

// Insert unconditionally records (address, now()+ttl) for name, replacing
// any prior entry.
func (d *Domains) Insert(name, address string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.data[name] = entry{
		address:   address,
		expiresAt: d.clock.Now().Add(d.ttl),
	}
}

// Lookup returns the address for name and true iff an entry exists and has
// not expired. A lookup that finds an expired entry removes it and reports
// absence, per the cache's contract.
func (d *Domains) Lookup(name string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.data[name]
	if !ok {
		return "", false
	}
	if !d.clock.Now().Before(e.expiresAt) {
		delete(d.data, name)
		return "", false
	}
	return e.address, true
}

// Sweep removes every entry whose expiry has passed as of now.
func (d *Domains) Sweep() {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.clock.Now()
	for name, e := range d.data {
		if !now.Before(e.expiresAt) {
			delete(d.data, name)
		}
	}
}

// Size returns the current number of entries, expired or not. Intended for
// tests and diagnostics; an expired-but-unswept entry still counts until a
// Lookup or Sweep removes it.
func (d *Domains) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.data)
}
