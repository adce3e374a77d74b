package entity

import "time"

type Category struct {
	ID        uint64
	Name      string
	Icon      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CatalogSubscription is a catalog-defined service (e.g. a streaming
// provider) that preset instances subscribe to through one of its plans.
type CatalogSubscription struct {
	ID        uint64
	Name      string
	LogoURL   string
	Category  Category
	Plans     []Plan
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StatsSummary aggregates the user's instance set. It is derived from the
// same underlying data as the subscription list and must never be shown
// inconsistently with it.
type StatsSummary struct {
	TotalCount      int
	ActiveCount     int
	CancelledCount  int
	PausedCount     int
	ExpiredCount    int
	MonthlySpend    map[string]float64
	UpcomingBilling int
}
