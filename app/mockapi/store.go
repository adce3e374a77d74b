package mockapi

import (
	"errors"
	"sync"
	"time"

	"github.com/vibast-solutions/lib-go-subtrack/app/types"
)

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrPlanNotFound         = errors.New("plan not found")
	ErrCatalogNotFound      = errors.New("catalog subscription not found")
)

// Store is the in-memory backing state of the mock backend. Stats are
// computed from the stored instance set on every read so they can never
// drift from the subscription list.
type Store struct {
	mu            sync.RWMutex
	nextID        uint64
	subscriptions map[uint64]*types.SubscriptionRecord
	categories    []types.CategoryRecord
	catalog       []types.CatalogSubscriptionRecord
}

func NewStore() *Store {
	s := &Store{
		nextID:        1,
		subscriptions: make(map[uint64]*types.SubscriptionRecord),
	}
	s.seed()
	return s
}

func (s *Store) seed() {
	s.categories = []types.CategoryRecord{
		{ID: 1, Name: "Streaming", Icon: "tv"},
		{ID: 2, Name: "Music", Icon: "headphones"},
		{ID: 3, Name: "Fitness", Icon: "dumbbell"},
	}

	streaming := types.CatalogSubscriptionRecord{
		ID:       1,
		Name:     "Netflix",
		LogoURL:  "https://cdn.example.com/logos/netflix.png",
		Category: s.categories[0],
	}
	streaming.Plans = []types.PlanRecord{
		{
			ID:           1,
			Name:         "Standard",
			BillingCycle: "monthly",
			Prices: []types.PriceRecord{
				{ID: 1, Region: "us", Currency: "USD", Price: 10.99},
				{ID: 2, Region: "eu", Currency: "EUR", Price: 9.99},
				{ID: 3, Region: "tr", Currency: "TRY", Price: 299},
			},
		},
		{
			ID:           2,
			Name:         "Premium",
			BillingCycle: "monthly",
			Features:     "4K, 4 screens",
			Prices: []types.PriceRecord{
				{ID: 4, Region: "us", Currency: "USD", Price: 15.99},
				{ID: 5, Region: "tr", Currency: "TRY", Price: 499},
			},
		},
	}

	music := types.CatalogSubscriptionRecord{
		ID:       2,
		Name:     "Spotify",
		LogoURL:  "https://cdn.example.com/logos/spotify.png",
		Category: s.categories[1],
	}
	music.Plans = []types.PlanRecord{
		{
			ID:           3,
			Name:         "Individual",
			BillingCycle: "monthly",
			Prices: []types.PriceRecord{
				{ID: 6, Region: "us", Currency: "USD", Price: 11.99},
				{ID: 7, Region: "eu", Currency: "EUR", Price: 10.99},
			},
		},
	}

	s.catalog = []types.CatalogSubscriptionRecord{streaming, music}
}

func (s *Store) ListSubscriptions() []types.SubscriptionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]types.SubscriptionRecord, 0, len(s.subscriptions))
	for _, item := range s.subscriptions {
		result = append(result, *item)
	}
	return result
}

func (s *Store) Categories() []types.CategoryRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.CategoryRecord(nil), s.categories...)
}

func (s *Store) CategoryByID(id uint64) (types.CategoryRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.categories {
		if c.ID == id {
			return c, true
		}
	}
	return types.CategoryRecord{}, false
}

// Catalog returns the catalog listing without plan details; plans are
// only embedded in the per-id details response, like the real backend.
func (s *Store) Catalog(categoryID uint64) []types.CatalogSubscriptionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]types.CatalogSubscriptionRecord, 0, len(s.catalog))
	for _, item := range s.catalog {
		if categoryID != 0 && item.Category.ID != categoryID {
			continue
		}
		listed := item
		listed.Plans = nil
		result = append(result, listed)
	}
	return result
}

func (s *Store) CatalogByID(id uint64) (*types.CatalogSubscriptionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.catalog {
		if item.ID == id {
			found := item
			return &found, nil
		}
	}
	return nil, ErrCatalogNotFound
}

// planByID returns the plan together with its parent catalog entry,
// plans stripped, so the plan can be embedded in a subscription record.
func (s *Store) planByID(planID uint64) (*types.PlanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.catalog {
		for _, plan := range item.Plans {
			if plan.ID == planID {
				found := plan
				parent := item
				parent.Plans = nil
				found.Subscription = &parent
				return &found, nil
			}
		}
	}
	return nil, ErrPlanNotFound
}

func (s *Store) CreatePreset(req *types.CreatePresetRequest) (*types.SubscriptionRecord, error) {
	plan, err := s.planByID(req.PlanID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := &types.SubscriptionRecord{
		ID:              s.nextID,
		Kind:            "preset",
		Plan:            plan,
		StartDate:       req.StartDate,
		NextBillingDate: req.NextBillingDate,
		Status:          "active",
		Notes:           req.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	rec.Price, rec.Currency = serverSelectedPrice(plan.Prices)
	s.nextID++
	s.subscriptions[rec.ID] = rec

	stored := *rec
	return &stored, nil
}

func (s *Store) CreateCustom(req *types.CreateCustomRequest) (*types.SubscriptionRecord, error) {
	category, _ := s.CategoryByID(req.CustomCategoryID)

	now := time.Now().UTC().Format(time.RFC3339)
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := &types.SubscriptionRecord{
		ID:                 s.nextID,
		Kind:               "custom",
		CustomName:         req.CustomName,
		CustomCategoryID:   req.CustomCategoryID,
		CustomPrice:        req.CustomPrice,
		CustomCurrency:     req.CustomCurrency,
		CustomBillingCycle: req.CustomBillingCycle,
		StartDate:          req.StartDate,
		NextBillingDate:    req.NextBillingDate,
		Status:             "active",
		Notes:              req.Notes,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if category.ID != 0 {
		rec.CustomCategory = &category
	}
	s.nextID++
	s.subscriptions[rec.ID] = rec

	stored := *rec
	return &stored, nil
}

func (s *Store) Update(id uint64, req *types.UpdateSubscriptionRequest) (*types.SubscriptionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.subscriptions[id]
	if !ok {
		return nil, ErrSubscriptionNotFound
	}

	if req.CustomPrice != nil {
		rec.CustomPrice = *req.CustomPrice
	}
	if req.NextBillingDate != nil {
		rec.NextBillingDate = *req.NextBillingDate
	}
	if req.Status != nil {
		rec.Status = *req.Status
	}
	if req.Notes != nil {
		rec.Notes = *req.Notes
	}
	rec.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	updated := *rec
	return &updated, nil
}

func (s *Store) Delete(id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subscriptions[id]; !ok {
		return ErrSubscriptionNotFound
	}
	delete(s.subscriptions, id)
	return nil
}

func (s *Store) Stats() types.StatsRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := types.StatsRecord{MonthlySpend: make(map[string]float64)}
	now := time.Now().UTC()
	for _, rec := range s.subscriptions {
		stats.TotalCount++
		switch rec.Status {
		case "active":
			stats.ActiveCount++
		case "cancelled":
			stats.CancelledCount++
		case "paused":
			stats.PausedCount++
		case "expired":
			stats.ExpiredCount++
		}
		if rec.Status != "active" {
			continue
		}

		amount, currency, cycle := recordPricing(rec)
		if currency != "" {
			stats.MonthlySpend[currency] += monthlyAmount(amount, cycle)
		}
		if due, err := types.ParseDate(rec.NextBillingDate); err == nil {
			if due.After(now) && due.Before(now.Add(7*24*time.Hour)) {
				stats.UpcomingBilling++
			}
		}
	}
	return stats
}

// serverSelectedPrice mimics the backend's own region logic: it prefers
// the USD entry, otherwise the first listed price.
func serverSelectedPrice(prices []types.PriceRecord) (float64, string) {
	for _, p := range prices {
		if p.Currency == "USD" {
			return p.Price, p.Currency
		}
	}
	if len(prices) > 0 {
		return prices[0].Price, prices[0].Currency
	}
	return 0, ""
}

func recordPricing(rec *types.SubscriptionRecord) (amount float64, currency, cycle string) {
	if rec.Kind == "custom" {
		return rec.CustomPrice, rec.CustomCurrency, rec.CustomBillingCycle
	}
	cycle = "monthly"
	if rec.Plan != nil {
		cycle = rec.Plan.BillingCycle
	}
	return rec.Price, rec.Currency, cycle
}

func monthlyAmount(amount float64, cycle string) float64 {
	switch cycle {
	case "yearly":
		return amount / 12
	case "weekly":
		return amount * 52 / 12
	default:
		return amount
	}
}
