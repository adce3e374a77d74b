package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/vibast-solutions/lib-go-subtrack/app/cache"
	"github.com/vibast-solutions/lib-go-subtrack/app/entity"
	"github.com/vibast-solutions/lib-go-subtrack/app/factory"
	"github.com/vibast-solutions/lib-go-subtrack/app/identity"
	"github.com/vibast-solutions/lib-go-subtrack/app/mapper"
	"github.com/vibast-solutions/lib-go-subtrack/app/pricing"
	"github.com/vibast-solutions/lib-go-subtrack/app/types"
)

type apiClient interface {
	ListSubscriptions(ctx context.Context) ([]types.SubscriptionRecord, error)
	GetStats(ctx context.Context) (*types.StatsRecord, error)
	ListCategories(ctx context.Context) ([]types.CategoryRecord, error)
	ListCatalogSubscriptions(ctx context.Context, categoryID uint64) ([]types.CatalogSubscriptionRecord, error)
	GetCatalogSubscription(ctx context.Context, id uint64) (*types.CatalogSubscriptionRecord, error)
	CreatePresetSubscription(ctx context.Context, req *types.CreatePresetRequest) (*types.SubscriptionRecord, error)
	CreateCustomSubscription(ctx context.Context, req *types.CreateCustomRequest) (*types.SubscriptionRecord, error)
	UpdateSubscription(ctx context.Context, id uint64, req *types.UpdateSubscriptionRequest) (*types.SubscriptionRecord, error)
	DeleteSubscription(ctx context.Context, id uint64) error
}

type queryStore interface {
	Get(ctx context.Context, key cache.Key, fetch cache.FetchFunc) (any, error)
	Invalidate(key cache.Key)
}

// SubscriptionService is the reconciliation layer every screen reads
// through: one cache store per client instance, one fetch per key, raw
// responses normalized through the mapper before they are cached.
type SubscriptionService struct {
	api             apiClient
	store           queryStore
	profile         identity.ProfileProvider
	defaultCurrency string
	logger          logrus.FieldLogger
}

func NewSubscriptionService(api apiClient, store queryStore, profile identity.ProfileProvider, defaultCurrency string) *SubscriptionService {
	return &SubscriptionService{
		api:             api,
		store:           store,
		profile:         profile,
		defaultCurrency: defaultCurrency,
		logger:          factory.NewModuleLogger("subscription-service"),
	}
}

// Subscriptions returns the user's normalized subscription list. A stale
// cached list may be returned together with a non-nil error when the
// refetch behind an invalidation failed; callers should render the list
// and surface the error separately.
func (s *SubscriptionService) Subscriptions(ctx context.Context) ([]*entity.NormalizedSubscription, error) {
	currency := s.userCurrency(ctx)
	v, err := s.store.Get(ctx, cache.KeySubscriptions, func(ctx context.Context) (any, error) {
		records, err := s.api.ListSubscriptions(ctx)
		if err != nil {
			return nil, err
		}
		items, err := mapper.NormalizeSubscriptions(records, currency)
		if err != nil {
			s.logger.WithError(err).Error("Subscription list failed data-integrity check")
			return nil, err
		}
		for _, item := range items {
			if item.PriceMissing {
				s.logger.WithField("subscription_id", item.ID).Warn("No price available for subscription")
			}
		}
		return items, nil
	})
	if v == nil {
		return nil, err
	}
	return v.([]*entity.NormalizedSubscription), err
}

func (s *SubscriptionService) Stats(ctx context.Context) (*entity.StatsSummary, error) {
	v, err := s.store.Get(ctx, cache.KeyStats, func(ctx context.Context) (any, error) {
		rec, err := s.api.GetStats(ctx)
		if err != nil {
			return nil, err
		}
		return mapper.StatsFromRecord(rec), nil
	})
	if v == nil {
		return nil, err
	}
	return v.(*entity.StatsSummary), err
}

func (s *SubscriptionService) Categories(ctx context.Context) ([]entity.Category, error) {
	v, err := s.store.Get(ctx, cache.KeyCategories, func(ctx context.Context) (any, error) {
		records, err := s.api.ListCategories(ctx)
		if err != nil {
			return nil, err
		}
		return mapper.CategoriesFromRecords(records), nil
	})
	if v == nil {
		return nil, err
	}
	return v.([]entity.Category), err
}

func (s *SubscriptionService) CatalogSubscriptions(ctx context.Context, categoryID uint64) ([]entity.CatalogSubscription, error) {
	v, err := s.store.Get(ctx, cache.KeyCatalog(categoryID), func(ctx context.Context) (any, error) {
		records, err := s.api.ListCatalogSubscriptions(ctx, categoryID)
		if err != nil {
			return nil, err
		}
		return mapper.CatalogSubscriptionsFromRecords(records), nil
	})
	if v == nil {
		return nil, err
	}
	return v.([]entity.CatalogSubscription), err
}

func (s *SubscriptionService) CatalogSubscriptionDetails(ctx context.Context, id uint64) (*entity.CatalogSubscription, error) {
	v, err := s.store.Get(ctx, cache.KeyCatalogDetails(id), func(ctx context.Context) (any, error) {
		rec, err := s.api.GetCatalogSubscription(ctx, id)
		if err != nil {
			return nil, err
		}
		item := mapper.CatalogSubscriptionFromRecord(rec)
		return &item, nil
	})
	if v == nil {
		return nil, err
	}
	return v.(*entity.CatalogSubscription), err
}

func (s *SubscriptionService) userCurrency(ctx context.Context) string {
	if s.profile != nil {
		if currency := s.profile.PreferredCurrency(ctx); currency != "" {
			return currency
		}
	}
	if s.defaultCurrency != "" {
		return s.defaultCurrency
	}
	return pricing.DefaultCurrency
}
