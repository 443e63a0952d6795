// Package cache holds the memo tables an explainer engine owns. A Memo is
// never global: each engine instance creates its own, so engines built over
// different classifiers never share results.
package cache

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pbnjay/memory"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const numShards = 64

type shard[V any] struct {
	sync.RWMutex
	objects map[string]V
}

// Memo memoizes the results of a load function by string key. With a size
// of 0 it grows without bound (the reference behaviour); a positive size
// bounds it with least-recently-used eviction.
type Memo[V any] struct {
	name   string
	group  singleflight.Group
	shards []*shard[V]
	lru    *lru.Cache[string, V]

	hits    atomic.Uint64
	misses  atomic.Uint64
	evicted atomic.Uint64

	hitCounter  prometheus.Counter
	missCounter prometheus.Counter
}

type Option[V any] func(*Memo[V])

// WithCounters mirrors hits and misses into Prometheus counters.
func WithCounters[V any](hits, misses prometheus.Counter) Option[V] {
	return func(m *Memo[V]) {
		m.hitCounter = hits
		m.missCounter = misses
	}
}

func New[V any](name string, size int, opts ...Option[V]) (*Memo[V], error) {
	m := &Memo[V]{name: name}
	if size > 0 {
		l, err := lru.NewWithEvict[string, V](size, func(string, V) {
			m.evicted.Add(1)
		})
		if err != nil {
			return nil, err
		}
		m.lru = l
	} else {
		m.shards = make([]*shard[V], numShards)
		for i := range m.shards {
			m.shards[i] = &shard[V]{objects: make(map[string]V)}
		}
	}
	for _, o := range opts {
		o(m)
	}
	log.Debug().Str("cache", name).Int("size", size).Msg("created-memo")
	return m, nil
}

func (m *Memo[V]) shardFor(key string) *shard[V] {
	return m.shards[xxhash.Sum64String(key)%numShards]
}

func (m *Memo[V]) lookup(key string) (V, bool) {
	if m.lru != nil {
		return m.lru.Get(key)
	}
	s := m.shardFor(key)
	s.RLock()
	defer s.RUnlock()
	v, ok := s.objects[key]
	return v, ok
}

func (m *Memo[V]) store(key string, v V) {
	if m.lru != nil {
		m.lru.Add(key, v)
		return
	}
	s := m.shardFor(key)
	s.Lock()
	s.objects[key] = v
	s.Unlock()
}

// Get returns the memoized value for key, calling load on a miss.
// Concurrent misses on the same key share a single load. Errors are not
// memoized.
func (m *Memo[V]) Get(key string, load func() (V, error)) (V, error) {
	if v, ok := m.lookup(key); ok {
		m.hits.Add(1)
		if m.hitCounter != nil {
			m.hitCounter.Inc()
		}
		return v, nil
	}
	obj, err, _ := m.group.Do(key, func() (interface{}, error) {
		// another caller may have stored it while we waited
		if v, ok := m.lookup(key); ok {
			return v, nil
		}
		m.misses.Add(1)
		if m.missCounter != nil {
			m.missCounter.Inc()
		}
		v, err := load()
		if err != nil {
			return nil, err
		}
		m.store(key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return obj.(V), nil
}

func (m *Memo[V]) Len() int {
	if m.lru != nil {
		return m.lru.Len()
	}
	n := 0
	for _, s := range m.shards {
		s.RLock()
		n += len(s.objects)
		s.RUnlock()
	}
	return n
}

// Clear drops every memoized value. Statistics are kept.
func (m *Memo[V]) Clear() {
	if m.lru != nil {
		// Purge fires the eviction callback; those are not capacity evictions.
		before := m.evicted.Load()
		m.lru.Purge()
		m.evicted.Store(before)
		return
	}
	for _, s := range m.shards {
		s.Lock()
		s.objects = make(map[string]V)
		s.Unlock()
	}
	log.Debug().Str("cache", m.name).Msg("cleared-memo")
}

func (m *Memo[V]) Name() string {
	return m.name
}

// Stats is a snapshot of a memo's counters.
type Stats struct {
	Name    string  `yaml:"name"`
	Hits    uint64  `yaml:"hits"`
	Misses  uint64  `yaml:"misses"`
	Evicted uint64  `yaml:"evicted"`
	Size    int     `yaml:"size"`
	HitRate float64 `yaml:"hit_rate"`
}

func (m *Memo[V]) Stats() Stats {
	hits, misses := m.hits.Load(), m.misses.Load()
	rate := 0.0
	if hits+misses > 0 {
		rate = float64(hits) / float64(hits+misses)
	}
	return Stats{
		Name:    m.name,
		Hits:    hits,
		Misses:  misses,
		Evicted: m.evicted.Load(),
		Size:    m.Len(),
		HitRate: rate,
	}
}

// Key joins already-canonical key parts.
func Key(parts ...string) string {
	return strings.Join(parts, "\x1e")
}

// SizeForMemory returns how many entries of roughly entryBytes fit in the
// given fraction of physical memory. A non-positive fraction means
// unbounded (0).
func SizeForMemory(fraction float64, entryBytes int) int {
	if fraction <= 0 || entryBytes <= 0 {
		return 0
	}
	if fraction > 1 {
		fraction = 1
	}
	total := memory.TotalMemory()
	if total == 0 {
		// unknown on this platform
		return 0
	}
	n := int(float64(total) * fraction / float64(entryBytes))
	log.Debug().Uint64("total-memory", total).Float64("fraction", fraction).
		Int("entries", n).Msg("sized-memo")
	if n < 1 {
		n = 1
	}
	return n
}
