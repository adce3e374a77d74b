package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vibast-solutions/lib-go-subtrack/app/cache"
	"github.com/vibast-solutions/lib-go-subtrack/app/mapper"
	"github.com/vibast-solutions/lib-go-subtrack/app/types"
	"github.com/vibast-solutions/lib-go-subtrack/config"
)

type mockAPIClient struct {
	listSubscriptionsFn        func(ctx context.Context) ([]types.SubscriptionRecord, error)
	getStatsFn                 func(ctx context.Context) (*types.StatsRecord, error)
	listCategoriesFn           func(ctx context.Context) ([]types.CategoryRecord, error)
	listCatalogFn              func(ctx context.Context, categoryID uint64) ([]types.CatalogSubscriptionRecord, error)
	getCatalogFn               func(ctx context.Context, id uint64) (*types.CatalogSubscriptionRecord, error)
	createPresetFn             func(ctx context.Context, req *types.CreatePresetRequest) (*types.SubscriptionRecord, error)
	createCustomFn             func(ctx context.Context, req *types.CreateCustomRequest) (*types.SubscriptionRecord, error)
	updateFn                   func(ctx context.Context, id uint64, req *types.UpdateSubscriptionRequest) (*types.SubscriptionRecord, error)
	deleteFn                   func(ctx context.Context, id uint64) error
	listSubscriptionsCallCount int32
	getStatsCallCount          int32
	catalogCallCount           int32
}

func (m *mockAPIClient) ListSubscriptions(ctx context.Context) ([]types.SubscriptionRecord, error) {
	atomic.AddInt32(&m.listSubscriptionsCallCount, 1)
	if m.listSubscriptionsFn != nil {
		return m.listSubscriptionsFn(ctx)
	}
	return nil, nil
}

func (m *mockAPIClient) GetStats(ctx context.Context) (*types.StatsRecord, error) {
	atomic.AddInt32(&m.getStatsCallCount, 1)
	if m.getStatsFn != nil {
		return m.getStatsFn(ctx)
	}
	return &types.StatsRecord{}, nil
}

func (m *mockAPIClient) ListCategories(ctx context.Context) ([]types.CategoryRecord, error) {
	if m.listCategoriesFn != nil {
		return m.listCategoriesFn(ctx)
	}
	return nil, nil
}

func (m *mockAPIClient) ListCatalogSubscriptions(ctx context.Context, categoryID uint64) ([]types.CatalogSubscriptionRecord, error) {
	if m.listCatalogFn != nil {
		return m.listCatalogFn(ctx, categoryID)
	}
	return nil, nil
}

func (m *mockAPIClient) GetCatalogSubscription(ctx context.Context, id uint64) (*types.CatalogSubscriptionRecord, error) {
	atomic.AddInt32(&m.catalogCallCount, 1)
	if m.getCatalogFn != nil {
		return m.getCatalogFn(ctx, id)
	}
	return &types.CatalogSubscriptionRecord{ID: id}, nil
}

func (m *mockAPIClient) CreatePresetSubscription(ctx context.Context, req *types.CreatePresetRequest) (*types.SubscriptionRecord, error) {
	if m.createPresetFn != nil {
		return m.createPresetFn(ctx, req)
	}
	return nil, nil
}

func (m *mockAPIClient) CreateCustomSubscription(ctx context.Context, req *types.CreateCustomRequest) (*types.SubscriptionRecord, error) {
	if m.createCustomFn != nil {
		return m.createCustomFn(ctx, req)
	}
	return nil, nil
}

func (m *mockAPIClient) UpdateSubscription(ctx context.Context, id uint64, req *types.UpdateSubscriptionRequest) (*types.SubscriptionRecord, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, req)
	}
	return nil, nil
}

func (m *mockAPIClient) DeleteSubscription(ctx context.Context, id uint64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type staticProfile struct {
	currency string
}

func (p *staticProfile) PreferredCurrency(_ context.Context) string {
	return p.currency
}

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

func newTestService(api *mockAPIClient, currency string) (*SubscriptionService, *cache.Store) {
	store := cache.New(testCacheConfig())
	svc := NewSubscriptionService(api, store, &staticProfile{currency: currency}, "USD")
	return svc, store
}

func presetSubscriptionRecord() types.SubscriptionRecord {
	return types.SubscriptionRecord{
		ID:     1,
		Kind:   "preset",
		Price:  15.99,
		Status: "active",
		Plan: &types.PlanRecord{
			ID:           7,
			Name:         "Premium",
			BillingCycle: "monthly",
			Prices: []types.PriceRecord{
				{Currency: "USD", Price: 15.99},
				{Currency: "TRY", Price: 499},
			},
			Subscription: &types.CatalogSubscriptionRecord{
				ID:       3,
				Name:     "Netflix",
				Category: types.CategoryRecord{ID: 9, Name: "Streaming"},
			},
		},
		Currency: "USD",
	}
}

func TestSubscriptionsServedFromCacheWithinStaleWindow(t *testing.T) {
	api := &mockAPIClient{
		listSubscriptionsFn: func(_ context.Context) ([]types.SubscriptionRecord, error) {
			return []types.SubscriptionRecord{presetSubscriptionRecord()}, nil
		},
	}
	svc, store := newTestService(api, "TRY")
	defer store.Close()

	for i := 0; i < 3; i++ {
		items, err := svc.Subscriptions(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(items) != 1 {
			t.Fatalf("expected 1 item, got %d", len(items))
		}
	}
	if got := atomic.LoadInt32(&api.listSubscriptionsCallCount); got != 1 {
		t.Fatalf("expected 1 API call, got %d", got)
	}
}

func TestSubscriptionsResolveUserCurrency(t *testing.T) {
	api := &mockAPIClient{
		listSubscriptionsFn: func(_ context.Context) ([]types.SubscriptionRecord, error) {
			return []types.SubscriptionRecord{presetSubscriptionRecord()}, nil
		},
	}
	svc, store := newTestService(api, "TRY")
	defer store.Close()

	items, err := svc.Subscriptions(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items[0].Price != 499 || items[0].Currency != "TRY" {
		t.Fatalf("expected 499 TRY, got %v %s", items[0].Price, items[0].Currency)
	}
}

func TestDeleteInvalidatesSubscriptionsAndStats(t *testing.T) {
	api := &mockAPIClient{
		listSubscriptionsFn: func(_ context.Context) ([]types.SubscriptionRecord, error) {
			return []types.SubscriptionRecord{presetSubscriptionRecord()}, nil
		},
	}
	svc, store := newTestService(api, "USD")
	defer store.Close()

	if _, err := svc.Subscriptions(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Stats(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := svc.DeleteSubscription(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Invalidated) != 2 {
		t.Fatalf("expected 2 invalidated keys, got %v", result.Invalidated)
	}

	if _, err := svc.Subscriptions(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Stats(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := atomic.LoadInt32(&api.listSubscriptionsCallCount); got != 2 {
		t.Fatalf("expected refetch of subscriptions after delete, got %d calls", got)
	}
	if got := atomic.LoadInt32(&api.getStatsCallCount); got != 2 {
		t.Fatalf("expected refetch of stats after delete, got %d calls", got)
	}
}

func TestFailedMutationDoesNotInvalidate(t *testing.T) {
	updateErr := errors.New("backend rejected update")
	api := &mockAPIClient{
		listSubscriptionsFn: func(_ context.Context) ([]types.SubscriptionRecord, error) {
			return []types.SubscriptionRecord{presetSubscriptionRecord()}, nil
		},
		updateFn: func(_ context.Context, _ uint64, _ *types.UpdateSubscriptionRequest) (*types.SubscriptionRecord, error) {
			return nil, updateErr
		},
	}
	svc, store := newTestService(api, "USD")
	defer store.Close()

	if _, err := svc.Subscriptions(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	notes := "note"
	_, err := svc.UpdateSubscription(context.Background(), 1, &types.UpdateSubscriptionRequest{Notes: &notes})
	if !errors.Is(err, updateErr) {
		t.Fatalf("expected update error to propagate unchanged, got %v", err)
	}

	if _, err := svc.Subscriptions(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := atomic.LoadInt32(&api.listSubscriptionsCallCount); got != 1 {
		t.Fatalf("expected cached value after failed mutation, got %d calls", got)
	}
}

func TestAddPresetRejectsInvalidRequest(t *testing.T) {
	called := false
	api := &mockAPIClient{
		createPresetFn: func(_ context.Context, _ *types.CreatePresetRequest) (*types.SubscriptionRecord, error) {
			called = true
			return nil, nil
		},
	}
	svc, store := newTestService(api, "USD")
	defer store.Close()

	_, err := svc.AddPresetSubscription(context.Background(), &types.CreatePresetRequest{})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if called {
		t.Fatal("expected no API call for invalid request")
	}
}

func TestAddCustomReturnsNormalizedSubscription(t *testing.T) {
	api := &mockAPIClient{
		createCustomFn: func(_ context.Context, req *types.CreateCustomRequest) (*types.SubscriptionRecord, error) {
			return &types.SubscriptionRecord{
				ID:                 9,
				Kind:               "custom",
				CustomName:         req.CustomName,
				CustomCategoryID:   req.CustomCategoryID,
				CustomPrice:        req.CustomPrice,
				CustomCurrency:     req.CustomCurrency,
				CustomBillingCycle: req.CustomBillingCycle,
				Status:             "active",
			}, nil
		},
	}
	svc, store := newTestService(api, "USD")
	defer store.Close()

	result, err := svc.AddCustomSubscription(context.Background(), &types.CreateCustomRequest{
		CustomName:         "Gym",
		CustomCategoryID:   4,
		CustomPrice:        9.99,
		CustomCurrency:     "EUR",
		CustomBillingCycle: "monthly",
		StartDate:          "2026-01-01",
		NextBillingDate:    "2026-02-01",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Subscription == nil || result.Subscription.Price != 9.99 || result.Subscription.Currency != "EUR" {
		t.Fatalf("expected normalized custom subscription, got %+v", result.Subscription)
	}
	if !result.Subscription.IsCustom {
		t.Fatal("expected IsCustom")
	}
}

func TestMalformedSubscriptionSurfacesIntegrityError(t *testing.T) {
	api := &mockAPIClient{
		listSubscriptionsFn: func(_ context.Context) ([]types.SubscriptionRecord, error) {
			return []types.SubscriptionRecord{{ID: 5, Kind: "preset", Status: "active"}}, nil
		},
	}
	svc, store := newTestService(api, "USD")
	defer store.Close()

	_, err := svc.Subscriptions(context.Background())
	if !errors.Is(err, mapper.ErrMalformedSubscription) {
		t.Fatalf("expected ErrMalformedSubscription, got %v", err)
	}
}

func TestCatalogDetailsCachedPerID(t *testing.T) {
	api := &mockAPIClient{}
	svc, store := newTestService(api, "USD")
	defer store.Close()

	for _, id := range []uint64{1, 2, 1, 2} {
		item, err := svc.CatalogSubscriptionDetails(context.Background(), id)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if item.ID != id {
			t.Fatalf("expected item %d, got %d", id, item.ID)
		}
	}
	if got := atomic.LoadInt32(&api.catalogCallCount); got != 2 {
		t.Fatalf("expected one fetch per id, got %d", got)
	}
}
