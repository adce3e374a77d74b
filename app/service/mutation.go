package service

import (
	"context"
	"fmt"

	"github.com/vibast-solutions/lib-go-subtrack/app/cache"
	"github.com/vibast-solutions/lib-go-subtrack/app/entity"
	"github.com/vibast-solutions/lib-go-subtrack/app/mapper"
	"github.com/vibast-solutions/lib-go-subtrack/app/types"
)

// MutationResult carries the outcome of a write plus the cache keys it
// invalidated, so the caller (or a thin event bus) can react without the
// service knowing about any UI framework's mutation hooks.
type MutationResult struct {
	Subscription *entity.NormalizedSubscription
	Invalidated  []cache.Key
}

// AddPresetSubscription creates an instance from a catalog plan. The
// subscriptions and stats keys are invalidated only after the backend
// confirmed the write; a failed call leaves the cache untouched.
func (s *SubscriptionService) AddPresetSubscription(ctx context.Context, req *types.CreatePresetRequest) (*MutationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, err)
	}
	rec, err := s.api.CreatePresetSubscription(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.confirmMutation(ctx, rec)
}

func (s *SubscriptionService) AddCustomSubscription(ctx context.Context, req *types.CreateCustomRequest) (*MutationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, err)
	}
	rec, err := s.api.CreateCustomSubscription(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.confirmMutation(ctx, rec)
}

func (s *SubscriptionService) UpdateSubscription(ctx context.Context, id uint64, req *types.UpdateSubscriptionRequest) (*MutationResult, error) {
	if id == 0 {
		return nil, fmt.Errorf("%w: subscription id is required", ErrInvalidRequest)
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, err)
	}
	rec, err := s.api.UpdateSubscription(ctx, id, req)
	if err != nil {
		return nil, err
	}
	return s.confirmMutation(ctx, rec)
}

func (s *SubscriptionService) DeleteSubscription(ctx context.Context, id uint64) (*MutationResult, error) {
	if id == 0 {
		return nil, fmt.Errorf("%w: subscription id is required", ErrInvalidRequest)
	}
	if err := s.api.DeleteSubscription(ctx, id); err != nil {
		return nil, err
	}
	return s.confirmMutation(ctx, nil)
}

// confirmMutation runs after the backend confirmed a write. Subscriptions
// and stats derive from the same instance set and must never be shown
// inconsistently, so both keys are invalidated together.
func (s *SubscriptionService) confirmMutation(ctx context.Context, rec *types.SubscriptionRecord) (*MutationResult, error) {
	invalidated := []cache.Key{cache.KeySubscriptions, cache.KeyStats}
	for _, key := range invalidated {
		s.store.Invalidate(key)
	}

	result := &MutationResult{Invalidated: invalidated}
	if rec == nil {
		return result, nil
	}

	item, err := mapper.NormalizeSubscription(rec, s.userCurrency(ctx))
	if err != nil {
		// The write went through and the keys are already invalidated;
		// only the returned record is unusable.
		s.logger.WithError(err).Error("Mutation response failed data-integrity check")
		return result, err
	}
	result.Subscription = item
	return result, nil
}
