// Package cache is a keyed cache over asynchronous fetches with per-key
// freshness windows, stale-while-revalidate reads and mutation-triggered
// invalidation. Concurrent reads of one key share a single in-flight
// fetch.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/vibast-solutions/lib-go-subtrack/app/factory"
	"github.com/vibast-solutions/lib-go-subtrack/config"
)

// FetchFunc loads the value for a key from the backend.
type FetchFunc func(ctx context.Context) (any, error)

// Windows are the freshness windows of one key. StaleAfter is the
// duration before a read triggers a refetch; EvictAfter is the duration
// of no reads before the entry is discarded. StaleAfter never exceeds
// EvictAfter.
type Windows struct {
	StaleAfter time.Duration
	EvictAfter time.Duration
}

type entry struct {
	value       any
	hasValue    bool
	fetchedAt   time.Time
	lastRead    time.Time
	invalidated bool
	failures    int
}

// Store holds all cache entries for one client instance. It is created
// explicitly and passed by reference to the composition root; there is no
// package-level state.
type Store struct {
	mu        sync.RWMutex
	entries   map[Key]*entry
	overrides map[Key]Windows
	cfg       config.CacheConfig
	flight    singleflight.Group
	logger    logrus.FieldLogger
	stop      chan struct{}
	stopOnce  sync.Once
}

func New(cfg config.CacheConfig) *Store {
	s := &Store{
		entries:   make(map[Key]*entry),
		overrides: make(map[Key]Windows),
		cfg:       cfg,
		logger:    factory.NewModuleLogger("query-cache"),
		stop:      make(chan struct{}),
	}
	interval := cfg.JanitorInterval
	if interval <= 0 {
		interval = time.Minute
	}
	go s.janitor(interval)
	return s
}

// Close stops the eviction janitor. Cached values stay readable.
func (s *Store) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Get returns the cached value for key, fetching it when no fresh value
// exists. A fresh entry is returned without a network call. A stale entry
// is returned immediately while a detached background refetch updates it.
// An empty or invalidated entry is fetched in the foreground; concurrent
// callers attach to the same in-flight fetch. When the foreground fetch
// fails and a previous value exists, that value is returned alongside the
// error so callers can prefer stale data over a blank screen.
func (s *Store) Get(ctx context.Context, key Key, fetch FetchFunc) (any, error) {
	windows := s.windowsFor(key)
	now := time.Now()

	s.mu.Lock()
	e, ok := s.entries[key]
	if ok {
		e.lastRead = now
	}
	if ok && e.hasValue && !e.invalidated {
		value := e.value
		age := now.Sub(e.fetchedAt)
		s.mu.Unlock()

		if age < windows.StaleAfter {
			return value, nil
		}
		s.revalidate(ctx, key, fetch)
		return value, nil
	}
	s.mu.Unlock()

	return s.fetchShared(ctx, key, fetch)
}

// Invalidate marks the entry behind key so the next read fetches from the
// backend instead of serving the cached value. The old value is kept only
// as a fallback for a failed refetch.
func (s *Store) Invalidate(key Key) {
	s.mu.Lock()
	if e, ok := s.entries[key]; ok {
		e.invalidated = true
	}
	s.mu.Unlock()
}

// SetWindows overrides the freshness windows for one key.
func (s *Store) SetWindows(key Key, w Windows) {
	if w.EvictAfter < w.StaleAfter {
		w.EvictAfter = w.StaleAfter
	}
	s.mu.Lock()
	s.overrides[key] = w
	s.mu.Unlock()
}

// fetchShared performs a deduplicated foreground fetch. The double-check
// inside the flight covers callers that queued behind a fetch that
// already filled the entry.
func (s *Store) fetchShared(ctx context.Context, key Key, fetch FetchFunc) (any, error) {
	value, err, _ := s.flight.Do(string(key), func() (any, error) {
		s.mu.RLock()
		if e, ok := s.entries[key]; ok && e.hasValue && !e.invalidated {
			value := e.value
			s.mu.RUnlock()
			return value, nil
		}
		s.mu.RUnlock()

		value, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		s.storeValue(key, value)
		return value, nil
	})
	if err == nil {
		return value, nil
	}

	s.mu.RLock()
	e, ok := s.entries[key]
	var fallback any
	if ok && e.hasValue {
		fallback = e.value
	}
	s.mu.RUnlock()
	return fallback, err
}

// revalidate refreshes a stale entry in the background. The fetch runs
// detached from the caller's context: a consumer being torn down must not
// abort a refetch other subscribers benefit from.
func (s *Store) revalidate(ctx context.Context, key Key, fetch FetchFunc) {
	detached := context.WithoutCancel(ctx)
	staleAfter := s.windowsFor(key).StaleAfter
	go func() {
		_, err, _ := s.flight.Do(string(key), func() (any, error) {
			s.mu.RLock()
			if e, ok := s.entries[key]; ok && time.Since(e.fetchedAt) < staleAfter {
				value := e.value
				s.mu.RUnlock()
				return value, nil
			}
			s.mu.RUnlock()

			value, err := fetch(detached)
			if err != nil {
				return nil, err
			}
			s.storeValue(key, value)
			return value, nil
		})
		if err != nil {
			s.recordRevalidationFailure(key, err)
		}
	}()
}

func (s *Store) storeValue(key Key, value any) {
	now := time.Now()
	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		e = &entry{lastRead: now}
		s.entries[key] = e
	}
	e.value = value
	e.hasValue = true
	e.fetchedAt = now
	e.invalidated = false
	e.failures = 0
	s.mu.Unlock()
}

// recordRevalidationFailure keeps the stale value in place but drops the
// entry entirely once the configured number of consecutive background
// refetches has failed, so readers stop seeing data that can no longer be
// refreshed.
func (s *Store) recordRevalidationFailure(key Key, err error) {
	limit := s.cfg.RevalidationFailureLimit
	if limit <= 0 {
		limit = 3
	}

	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		s.mu.Unlock()
		return
	}
	e.failures++
	failures := e.failures
	dropped := failures >= limit
	if dropped {
		delete(s.entries, key)
	}
	s.mu.Unlock()

	log := s.logger.WithError(err).WithFields(logrus.Fields{
		"key":      string(key),
		"failures": failures,
	})
	if dropped {
		log.Warn("Dropping cache entry after repeated revalidation failures")
		return
	}
	log.Warn("Background revalidation failed, keeping stale value")
}

func (s *Store) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.evictIdle()
		}
	}
}

func (s *Store) evictIdle() {
	now := time.Now()
	s.mu.Lock()
	for key, e := range s.entries {
		if now.Sub(e.lastRead) > s.windowsForLocked(key).EvictAfter {
			delete(s.entries, key)
			s.logger.WithField("key", string(key)).Debug("Evicted idle cache entry")
		}
	}
	s.mu.Unlock()
}

func (s *Store) windowsFor(key Key) Windows {
	s.mu.RLock()
	w := s.windowsForLocked(key)
	s.mu.RUnlock()
	return w
}

// windowsForLocked requires s.mu to be held.
func (s *Store) windowsForLocked(key Key) Windows {
	w, ok := s.overrides[key]
	if !ok {
		w = s.defaultWindows(key)
	}
	if w.EvictAfter < w.StaleAfter {
		w.EvictAfter = w.StaleAfter
	}
	return w
}

func (s *Store) defaultWindows(key Key) Windows {
	switch {
	case key == KeySubscriptions:
		return Windows{StaleAfter: s.cfg.SubscriptionsStaleAfter, EvictAfter: s.cfg.SubscriptionsEvictAfter}
	case key == KeyStats:
		return Windows{StaleAfter: s.cfg.StatsStaleAfter, EvictAfter: s.cfg.StatsEvictAfter}
	case key == KeyCategories:
		return Windows{StaleAfter: s.cfg.CategoriesStaleAfter, EvictAfter: s.cfg.CategoriesEvictAfter}
	case strings.HasPrefix(string(key), "catalog"):
		return Windows{StaleAfter: s.cfg.CatalogStaleAfter, EvictAfter: s.cfg.CatalogEvictAfter}
	default:
		return Windows{StaleAfter: time.Minute, EvictAfter: 10 * time.Minute}
	}
}
