package registry

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vigor8or/lockserver/pkg/clock"
	"github.com/vigor8or/lockserver/pkg/types"
)

// DefaultInterval is the lease duration applied when none is configured.
const DefaultInterval = 1 * time.Second

// manages core lock and lease state
// critical :
// - at most one exclusive holder per name, never mixed with shared holders
// - every mutation is atomic with respect to all others and the sweeper
// - expired holders are reclaimed by the sweeper, never silently resurrected
type Registry struct {
	mu sync.RWMutex

	entries map[string]*entry // lock name -> holder set

	interval time.Duration // lease duration for every new or renewed holder
	clock    clock.Clock
}

// holder set for one lock name, keyed by token
type entry struct {
	holders map[string]*types.Holder
}

func (e *entry) kind() types.LockKind {
	for _, h := range e.holders {
		return h.Kind
	}
	return types.KindNone
}

// New constructs a Registry granting leases of the given duration.
func New(clk clock.Clock, interval time.Duration) *Registry {
	if clk == nil {
		clk = clock.Real{}
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Registry{
		entries:  make(map[string]*entry),
		interval: interval,
		clock:    clk,
	}
}

// Interval returns the configured lease duration.
func (r *Registry) Interval() time.Duration {
	return r.interval
}

// Acquire attempts to take the named lock with the requested kind. The
// decision is a single atomic check-and-set: an empty holder set always
// grants, a shared request joins an all-shared set, everything else is
// types.ErrConflict with no state change. There is no queueing; losers
// retry at their own pace.
func (r *Registry) Acquire(name string, kind types.LockKind) (*types.Holder, error) {
	if name == "" {
		return nil, types.ErrEmptyName
	}
	if kind != types.KindExclusive && kind != types.KindShared {
		return nil, fmt.Errorf("%w: %d", types.ErrInvalidKind, kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.entries[name]
	if exists && len(e.holders) > 0 {
		// any exclusive holder blocks everything; an exclusive request
		// is blocked by any holder at all
		if kind == types.KindExclusive || e.kind() == types.KindExclusive {
			return nil, types.ErrConflict
		}
	}
	if !exists {
		e = &entry{holders: make(map[string]*types.Holder)}
		r.entries[name] = e
	}

	h := &types.Holder{
		Token:     uuid.NewString(),
		Kind:      kind,
		ExpiresAt: r.clock.Now().Add(r.interval),
	}
	e.holders[h.Token] = h

	r.checkInvariant(name, e)

	cp := *h
	return &cp, nil
}

// Release removes the holder matching token from the named lock. A missing
// holder is types.ErrNotFound: releases race with sweeper eviction, so the
// caller treats that as a benign outcome, not a failure.
func (r *Registry) Release(name, token string) error {
	if name == "" {
		return types.ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.entries[name]
	if !exists {
		return types.ErrNotFound
	}
	if _, held := e.holders[token]; !held {
		return types.ErrNotFound
	}

	delete(e.holders, token)
	if len(e.holders) == 0 {
		delete(r.entries, name)
	} else {
		r.checkInvariant(name, e)
	}
	return nil
}

// Renew extends the lease of the holder matching token and returns the new
// expiry. Any holder still present in the registry may renew; eviction of
// lapsed holders is the sweeper's job alone, and renewal and sweeping are
// serialized on the same mutex so a freshly renewed holder is never evicted.
func (r *Registry) Renew(name, token string) (time.Time, error) {
	if name == "" {
		return time.Time{}, types.ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.entries[name]
	if !exists {
		return time.Time{}, types.ErrNotFound
	}
	h, held := e.holders[token]
	if !held {
		return time.Time{}, types.ErrNotFound
	}

	h.ExpiresAt = r.clock.Now().Add(r.interval)
	return h.ExpiresAt, nil
}

// Status is a point-in-time view of one lock name.
type Status struct {
	Name        string
	Kind        types.LockKind
	HolderCount int
}

// Status reports the named lock under the registry mutex, so the view is a
// single consistent snapshot, never a mix of pre and post mutation state.
func (r *Registry) Status(name string) Status {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st := Status{Name: name}
	if e, exists := r.entries[name]; exists {
		st.Kind = e.kind()
		st.HolderCount = len(e.holders)
	}
	return st
}

// Snapshot returns the status of every held lock name.
func (r *Registry) Snapshot() []Status {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Status, 0, len(r.entries))
	for name, e := range r.entries {
		out = append(out, Status{
			Name:        name,
			Kind:        e.kind(),
			HolderCount: len(e.holders),
		})
	}
	return out
}

// ExpireDue evicts every holder whose lease lapsed at or before now and
// prunes entries left empty. It runs under the same mutex as every other
// mutation; the sweeper calls it once per period.
func (r *Registry) ExpireDue(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for name, e := range r.entries {
		for token, h := range e.holders {
			if h.IsExpired(now) {
				delete(e.holders, token)
				evicted++
			}
		}
		if len(e.holders) == 0 {
			delete(r.entries, name)
		} else {
			r.checkInvariant(name, e)
		}
	}
	return evicted
}

// current registry stats
type Stats struct {
	Locks   int
	Holders int
}

func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := Stats{Locks: len(r.entries)}
	for _, e := range r.entries {
		s.Holders += len(e.holders)
	}
	return s
}

// checkInvariant panics on a mixed or multi-exclusive holder set. Reaching
// it means a mutation slipped past the acquire check, a programming bug the
// process must not paper over.
func (r *Registry) checkInvariant(name string, e *entry) {
	exclusive := 0
	shared := 0
	for _, h := range e.holders {
		switch h.Kind {
		case types.KindExclusive:
			exclusive++
		case types.KindShared:
			shared++
		}
	}
	if exclusive > 1 || (exclusive > 0 && shared > 0) {
		panic(fmt.Sprintf("registry: invariant violated on %q: %d exclusive, %d shared", name, exclusive, shared))
	}
}
