package catalog

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"hesapvitrini.com/vitrine/internal/backend"
)

// Ticket identifies one issued fetch.
type Ticket uint64

// Sequence issues monotonically increasing tickets.
type Sequence struct {
	last atomic.Uint64
}

// Next issues a ticket newer than every ticket issued before.
func (s *Sequence) Next() Ticket {
	return Ticket(s.last.Add(1))
}

// Latest reports whether t is the most recently issued ticket.
func (s *Sequence) Latest(t Ticket) bool {
	return uint64(t) == s.last.Load()
}

// Fetcher lists catalog items.
type Fetcher interface {
	Accounts(ctx context.Context, token string, filter backend.AccountFilter) ([]backend.Account, error)
}

// Outcome is the result of one List.Fetch.
type Outcome int

const (
	// Applied means the response replaced the list.
	Applied Outcome = iota
	// Stale means a newer fetch was issued meanwhile; the response was dropped.
	Stale
	// Failed means the fetch errored; the previous list is kept.
	Failed
)

// List is a catalog result list that only accepts the newest response.
type List struct {
	seq Sequence

	mu    sync.Mutex
	items []backend.Account
	query Query
	valid bool
}

// Fetch loads q and applies it unless a newer fetch was issued in the meantime.
// On error the previous items stay in place.
func (l *List) Fetch(ctx context.Context, f Fetcher, token string, q Query) (Outcome, error) {
	ticket := l.seq.Next()
	items, err := f.Accounts(ctx, token, q.Filter())
	if err != nil {
		return Failed, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.seq.Latest(ticket) {
		return Stale, nil
	}
	l.items = items
	l.query = q
	l.valid = true
	return Applied, nil
}

// Snapshot returns the current items and the query that produced them.
func (l *List) Snapshot() ([]backend.Account, Query, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]backend.Account(nil), l.items...), l.query, l.valid
}

// Registry keeps one List per viewer (session) so concurrent filter requests
// from the same browser are ordered.
type Registry struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]*registryEntry
}

type registryEntry struct {
	list     *List
	lastUsed time.Time
}

// NewRegistry constructs a Registry evicting lists idle for longer than ttl.
func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Registry{ttl: ttl, now: time.Now, entries: make(map[string]*registryEntry)}
}

// List returns the list for key, creating it on first use.
func (r *Registry) List(key string) *List {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for k, e := range r.entries {
		if now.Sub(e.lastUsed) > r.ttl {
			delete(r.entries, k)
		}
	}
	e, ok := r.entries[key]
	if !ok {
		e = &registryEntry{list: &List{}}
		r.entries[key] = e
	}
	e.lastUsed = now
	return e.list
}

// Len reports the number of live lists.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
