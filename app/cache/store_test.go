package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vibast-solutions/lib-go-subtrack/config"
)

func testCacheConfig() config.CacheConfig {
	return config.CacheConfig{
		SubscriptionsStaleAfter:  time.Minute,
		SubscriptionsEvictAfter:  10 * time.Minute,
		StatsStaleAfter:          time.Minute,
		StatsEvictAfter:          10 * time.Minute,
		CategoriesStaleAfter:     30 * time.Minute,
		CategoriesEvictAfter:     time.Hour,
		CatalogStaleAfter:        15 * time.Minute,
		CatalogEvictAfter:        45 * time.Minute,
		JanitorInterval:          time.Hour,
		RevalidationFailureLimit: 3,
	}
}

func countingFetch(counter *int32, value any, delay time.Duration) FetchFunc {
	return func(_ context.Context) (any, error) {
		atomic.AddInt32(counter, 1)
		if delay > 0 {
			time.Sleep(delay)
		}
		return value, nil
	}
}

func TestConcurrentGetsShareOneFetch(t *testing.T) {
	store := New(testCacheConfig())
	defer store.Close()

	var calls int32
	fetch := countingFetch(&calls, "value", 20*time.Millisecond)

	const readers = 16
	results := make([]any, readers)
	var wg sync.WaitGroup
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := store.Get(context.Background(), KeySubscriptions, fetch)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			results[i] = v
		}(i)
	}
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected exactly 1 fetch, got %d", got)
	}
	for i, v := range results {
		if v != "value" {
			t.Fatalf("reader %d got %v", i, v)
		}
	}
}

func TestFreshEntryServedWithoutFetch(t *testing.T) {
	store := New(testCacheConfig())
	defer store.Close()

	var calls int32
	fetch := countingFetch(&calls, "value", 0)

	for i := 0; i < 5; i++ {
		if _, err := store.Get(context.Background(), KeyStats, fetch); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected 1 fetch for fresh reads, got %d", got)
	}
}

func TestStaleEntryReturnsOldValueAndRevalidates(t *testing.T) {
	store := New(testCacheConfig())
	defer store.Close()
	store.SetWindows(KeySubscriptions, Windows{StaleAfter: 10 * time.Millisecond, EvictAfter: time.Hour})

	var calls int32
	fetch := func(_ context.Context) (any, error) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			return "v1", nil
		}
		return "v2", nil
	}

	v, err := store.Get(context.Background(), KeySubscriptions, fetch)
	if err != nil || v != "v1" {
		t.Fatalf("expected v1, got %v (%v)", v, err)
	}

	time.Sleep(20 * time.Millisecond)

	v, err = store.Get(context.Background(), KeySubscriptions, fetch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "v1" {
		t.Fatalf("stale read must return the old value immediately, got %v", v)
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		v, err = store.Get(context.Background(), KeySubscriptions, fetch)
		if err == nil && v == "v2" {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("background revalidation never produced v2, last value %v", v)
}

func TestInvalidateForcesForegroundFetch(t *testing.T) {
	store := New(testCacheConfig())
	defer store.Close()

	var calls int32
	fetch := countingFetch(&calls, "value", 0)

	if _, err := store.Get(context.Background(), KeySubscriptions, fetch); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	store.Invalidate(KeySubscriptions)

	if _, err := store.Get(context.Background(), KeySubscriptions, fetch); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected a fresh fetch after invalidation, got %d calls", got)
	}
}

func TestFailedFetchAfterInvalidateKeepsLastGoodValue(t *testing.T) {
	store := New(testCacheConfig())
	defer store.Close()

	fetchErr := errors.New("backend down")
	var fail atomic.Bool
	fetch := func(_ context.Context) (any, error) {
		if fail.Load() {
			return nil, fetchErr
		}
		return "good", nil
	}

	if _, err := store.Get(context.Background(), KeyStats, fetch); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fail.Store(true)
	store.Invalidate(KeyStats)

	v, err := store.Get(context.Background(), KeyStats, fetch)
	if !errors.Is(err, fetchErr) {
		t.Fatalf("expected fetch error to surface, got %v", err)
	}
	if v != "good" {
		t.Fatalf("expected last good value as fallback, got %v", v)
	}
}

func TestRepeatedRevalidationFailuresDropEntry(t *testing.T) {
	cfg := testCacheConfig()
	cfg.RevalidationFailureLimit = 2
	store := New(cfg)
	defer store.Close()
	store.SetWindows(KeyStats, Windows{StaleAfter: time.Millisecond, EvictAfter: time.Hour})

	fetchErr := errors.New("backend down")
	var fail atomic.Bool
	var calls int32
	fetch := func(_ context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		if fail.Load() {
			return nil, fetchErr
		}
		return "good", nil
	}

	if _, err := store.Get(context.Background(), KeyStats, fetch); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fail.Store(true)

	// Each stale read schedules one failing background revalidation.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
		store.mu.RLock()
		_, exists := store.entries[KeyStats]
		store.mu.RUnlock()
		if !exists {
			break
		}
		_, _ = store.Get(context.Background(), KeyStats, fetch)
	}

	store.mu.RLock()
	_, exists := store.entries[KeyStats]
	store.mu.RUnlock()
	if exists {
		t.Fatal("expected entry to be dropped after repeated revalidation failures")
	}

	// Next read starts from empty and surfaces the error directly.
	v, err := store.Get(context.Background(), KeyStats, fetch)
	if !errors.Is(err, fetchErr) {
		t.Fatalf("expected foreground fetch error, got %v (%v)", err, v)
	}
	if v != nil {
		t.Fatalf("expected no fallback value after drop, got %v", v)
	}
}

func TestIdleEntriesEvicted(t *testing.T) {
	store := New(testCacheConfig())
	defer store.Close()
	store.SetWindows(KeyCategories, Windows{StaleAfter: time.Millisecond, EvictAfter: time.Millisecond})

	var calls int32
	fetch := countingFetch(&calls, "value", 0)
	if _, err := store.Get(context.Background(), KeyCategories, fetch); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	time.Sleep(5 * time.Millisecond)
	store.evictIdle()

	store.mu.RLock()
	_, exists := store.entries[KeyCategories]
	store.mu.RUnlock()
	if exists {
		t.Fatal("expected idle entry to be evicted")
	}
}

func TestDifferentKeysFetchIndependently(t *testing.T) {
	store := New(testCacheConfig())
	defer store.Close()

	var subsCalls, statsCalls int32
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _ = store.Get(context.Background(), KeySubscriptions, countingFetch(&subsCalls, "subs", 10*time.Millisecond))
	}()
	go func() {
		defer wg.Done()
		_, _ = store.Get(context.Background(), KeyStats, countingFetch(&statsCalls, "stats", 10*time.Millisecond))
	}()
	wg.Wait()

	if subsCalls != 1 || statsCalls != 1 {
		t.Fatalf("expected one fetch per key, got %d/%d", subsCalls, statsCalls)
	}
}

func TestCatalogKeysShareWindowClass(t *testing.T) {
	store := New(testCacheConfig())
	defer store.Close()

	w := store.windowsFor(KeyCatalog(12))
	if w.StaleAfter != 15*time.Minute || w.EvictAfter != 45*time.Minute {
		t.Fatalf("unexpected catalog windows: %+v", w)
	}
	w = store.windowsFor(KeyCatalogDetails(3))
	if w.StaleAfter != 15*time.Minute {
		t.Fatalf("unexpected catalog-details windows: %+v", w)
	}
}

func TestWindowsClampEvictToStale(t *testing.T) {
	store := New(testCacheConfig())
	defer store.Close()
	store.SetWindows(KeyStats, Windows{StaleAfter: time.Hour, EvictAfter: time.Minute})

	w := store.windowsFor(KeyStats)
	if w.EvictAfter < w.StaleAfter {
		t.Fatalf("evict window must not undercut stale window: %+v", w)
	}
}
