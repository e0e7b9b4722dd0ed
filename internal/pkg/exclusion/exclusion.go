package exclusion

import (
	"context"
	"slices"
	"sync"
	"time"

	"dispatch/internal/pkg/errs"

	"golang.org/x/sync/semaphore"
)

// Observer receives the time spent waiting for a set of exclusions.
type Observer interface {
	ObserveExclusionWait(wait time.Duration, acquired bool)
}

// Key builds the exclusion key of one entity, e.g. Key("order", id) == "order:<id>".
func Key(kind string, id interface{ String() string }) string {
	return kind + ":" + id.String()
}

type entry struct {
	sem  *semaphore.Weighted
	refs int
}

// Manager hands out mutually exclusive access to entities by key. Each key is
// a weighted semaphore of size one, created on first use and dropped when
// nobody holds or waits for it.
//
// Keys are always acquired in lexical order, so two callers asking for
// overlapping sets cannot deadlock. Callers asking for disjoint sets never
// wait for each other.
type Manager struct {
	mu       sync.Mutex
	entries  map[string]*entry
	timeout  time.Duration
	observer Observer
}

// NewManager creates a Manager. A positive timeout bounds every Acquire in
// addition to the caller's context. observer may be nil.
func NewManager(timeout time.Duration, observer Observer) *Manager {
	return &Manager{
		entries:  make(map[string]*entry),
		timeout:  timeout,
		observer: observer,
	}
}

// Lease is a set of held exclusions. Release is idempotent.
type Lease struct {
	m    *Manager
	keys []string
	once sync.Once
}

// Keys returns the held keys in acquisition order.
func (l *Lease) Keys() []string {
	return slices.Clone(l.keys)
}

// Release gives the exclusions back in reverse acquisition order.
func (l *Lease) Release() {
	l.once.Do(func() {
		for i := len(l.keys) - 1; i >= 0; i-- {
			l.m.release(l.keys[i])
		}
	})
}

// Acquire blocks until every key is held or the deadline passes. On failure
// nothing stays held and the error is an *errs.BusyError naming the key that
// could not be acquired.
func (m *Manager) Acquire(ctx context.Context, keys ...string) (*Lease, error) {
	sorted := slices.Clone(keys)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	start := time.Now()
	lease := &Lease{m: m, keys: make([]string, 0, len(sorted))}
	for _, key := range sorted {
		e := m.ref(key)
		if err := e.sem.Acquire(ctx, 1); err != nil {
			m.unref(key)
			lease.Release()
			m.observe(time.Since(start), false)
			return nil, errs.NewBusyError(key, err)
		}
		lease.keys = append(lease.keys, key)
	}
	m.observe(time.Since(start), true)

	return lease, nil
}

// Size returns the number of keys currently held or waited for.
func (m *Manager) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Manager) ref(key string) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		e = &entry{sem: semaphore.NewWeighted(1)}
		m.entries[key] = e
	}
	e.refs++
	return e
}

func (m *Manager) unref(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.entries[key]
	e.refs--
	if e.refs == 0 {
		delete(m.entries, key)
	}
}

func (m *Manager) release(key string) {
	m.mu.Lock()
	e := m.entries[key]
	m.mu.Unlock()

	e.sem.Release(1)
	m.unref(key)
}

func (m *Manager) observe(wait time.Duration, acquired bool) {
	if m.observer != nil {
		m.observer.ObserveExclusionWait(wait, acquired)
	}
}
