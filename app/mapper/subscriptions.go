package mapper

import (
	"errors"
	"fmt"
	"time"

	"github.com/vibast-solutions/lib-go-subtrack/app/entity"
	"github.com/vibast-solutions/lib-go-subtrack/app/pricing"
	"github.com/vibast-solutions/lib-go-subtrack/app/types"
)

// ErrMalformedSubscription marks a locally detected data-integrity fault,
// such as a preset instance arriving without its plan. It is not
// retryable and must be logged apart from user-facing errors.
var ErrMalformedSubscription = errors.New("malformed subscription instance")

func SubscriptionFromRecord(rec *types.SubscriptionRecord) *entity.SubscriptionInstance {
	if rec == nil {
		return nil
	}

	item := &entity.SubscriptionInstance{
		ID:                 rec.ID,
		Kind:               entity.Kind(rec.Kind),
		CustomName:         rec.CustomName,
		CustomCategoryID:   rec.CustomCategoryID,
		CustomPrice:        rec.CustomPrice,
		CustomCurrency:     rec.CustomCurrency,
		CustomBillingCycle: rec.CustomBillingCycle,
		Price:              rec.Price,
		Currency:           rec.Currency,
		StartDate:          parseTimePtr(rec.StartDate),
		NextBillingDate:    parseTimePtr(rec.NextBillingDate),
		Status:             entity.Status(rec.Status),
		Notes:              rec.Notes,
		CreatedAt:          parseTime(rec.CreatedAt),
		UpdatedAt:          parseTime(rec.UpdatedAt),
	}
	if rec.Plan != nil {
		plan := PlanFromRecord(rec.Plan)
		item.Plan = &plan
	}
	return item
}

// NormalizeSubscription derives the display projection for one raw
// instance. Custom instances carry exactly one currency by construction,
// so their price passes through untouched; preset instances go through
// price resolution against the user's preferred currency.
func NormalizeSubscription(rec *types.SubscriptionRecord, userCurrency string) (*entity.NormalizedSubscription, error) {
	if rec == nil {
		return nil, fmt.Errorf("%w: nil record", ErrMalformedSubscription)
	}

	raw := SubscriptionFromRecord(rec)
	normalized := &entity.NormalizedSubscription{
		ID:              raw.ID,
		Status:          raw.Status,
		StartDate:       raw.StartDate,
		NextBillingDate: raw.NextBillingDate,
		Notes:           raw.Notes,
	}

	switch raw.Kind {
	case entity.KindCustom:
		normalized.Name = raw.CustomName
		normalized.Price = raw.CustomPrice
		normalized.Currency = raw.CustomCurrency
		normalized.BillingCycle = raw.CustomBillingCycle
		normalized.CategoryID = raw.CustomCategoryID
		normalized.IsCustom = true
		if rec.CustomCategory != nil {
			normalized.CategoryName = rec.CustomCategory.Name
			normalized.CategoryIcon = rec.CustomCategory.Icon
		}
	case entity.KindPreset:
		plan := raw.Plan
		if plan == nil || plan.Subscription == nil {
			return nil, fmt.Errorf("%w: preset instance %d has no plan reference", ErrMalformedSubscription, raw.ID)
		}
		money, resolved := pricing.Resolve(raw.Price, raw.Currency, plan.Prices, userCurrency)
		normalized.Price = money.Amount
		normalized.Currency = money.Currency
		normalized.PriceMissing = !resolved
		normalized.Name = plan.Subscription.Name
		normalized.LogoURL = plan.Subscription.LogoURL
		normalized.CategoryID = plan.Subscription.Category.ID
		normalized.CategoryName = plan.Subscription.Category.Name
		normalized.CategoryIcon = plan.Subscription.Category.Icon
		normalized.PlanName = plan.Name
		normalized.Features = plan.Features
		normalized.BillingCycle = plan.BillingCycle
	default:
		return nil, fmt.Errorf("%w: instance %d has unknown kind %q", ErrMalformedSubscription, raw.ID, rec.Kind)
	}

	return normalized, nil
}

func NormalizeSubscriptions(records []types.SubscriptionRecord, userCurrency string) ([]*entity.NormalizedSubscription, error) {
	result := make([]*entity.NormalizedSubscription, 0, len(records))
	for i := range records {
		item, err := NormalizeSubscription(&records[i], userCurrency)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, nil
}

func PlanFromRecord(rec *types.PlanRecord) entity.Plan {
	plan := entity.Plan{
		ID:           rec.ID,
		Name:         rec.Name,
		BillingCycle: rec.BillingCycle,
		Features:     rec.Features,
		CreatedAt:    parseTime(rec.CreatedAt),
		UpdatedAt:    parseTime(rec.UpdatedAt),
	}
	prices := make([]entity.Price, 0, len(rec.Prices))
	for _, p := range rec.Prices {
		prices = append(prices, entity.Price{
			ID:       p.ID,
			Region:   p.Region,
			Currency: p.Currency,
			Amount:   p.Price,
		})
	}
	plan.Prices = pricing.DedupePrices(prices)
	if rec.Subscription != nil {
		sub := CatalogSubscriptionFromRecord(rec.Subscription)
		plan.Subscription = &sub
	}
	return plan
}

func CategoryFromRecord(rec *types.CategoryRecord) entity.Category {
	return entity.Category{
		ID:        rec.ID,
		Name:      rec.Name,
		Icon:      rec.Icon,
		CreatedAt: parseTime(rec.CreatedAt),
		UpdatedAt: parseTime(rec.UpdatedAt),
	}
}

func CategoriesFromRecords(records []types.CategoryRecord) []entity.Category {
	result := make([]entity.Category, 0, len(records))
	for i := range records {
		result = append(result, CategoryFromRecord(&records[i]))
	}
	return result
}

func CatalogSubscriptionFromRecord(rec *types.CatalogSubscriptionRecord) entity.CatalogSubscription {
	item := entity.CatalogSubscription{
		ID:        rec.ID,
		Name:      rec.Name,
		LogoURL:   rec.LogoURL,
		Category:  CategoryFromRecord(&rec.Category),
		CreatedAt: parseTime(rec.CreatedAt),
		UpdatedAt: parseTime(rec.UpdatedAt),
	}
	for i := range rec.Plans {
		item.Plans = append(item.Plans, PlanFromRecord(&rec.Plans[i]))
	}
	return item
}

func CatalogSubscriptionsFromRecords(records []types.CatalogSubscriptionRecord) []entity.CatalogSubscription {
	result := make([]entity.CatalogSubscription, 0, len(records))
	for i := range records {
		result = append(result, CatalogSubscriptionFromRecord(&records[i]))
	}
	return result
}

func StatsFromRecord(rec *types.StatsRecord) *entity.StatsSummary {
	if rec == nil {
		return nil
	}
	return &entity.StatsSummary{
		TotalCount:      rec.TotalCount,
		ActiveCount:     rec.ActiveCount,
		CancelledCount:  rec.CancelledCount,
		PausedCount:     rec.PausedCount,
		ExpiredCount:    rec.ExpiredCount,
		MonthlySpend:    rec.MonthlySpend,
		UpcomingBilling: rec.UpcomingBilling,
	}
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := types.ParseDate(value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseTimePtr(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := types.ParseDate(value)
	if err != nil {
		return nil
	}
	return &t
}
