package entity

import "time"

type Kind string

const (
	KindCustom Kind = "custom"
	KindPreset Kind = "preset"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
	StatusPaused    Status = "paused"
)

// SubscriptionInstance is one user-owned subscription as reported by the
// backend. Exactly one of the custom fields or Plan is populated, selected
// by Kind.
type SubscriptionInstance struct {
	ID                 uint64
	Kind               Kind
	CustomName         string
	CustomCategoryID   uint64
	CustomPrice        float64
	CustomCurrency     string
	CustomBillingCycle string
	Plan               *Plan
	// Price and Currency are the server-selected values for preset
	// instances. They may be absent or zero; the plan price list takes
	// precedence when it has an entry in the user's currency.
	Price           float64
	Currency        string
	StartDate       *time.Time
	NextBillingDate *time.Time
	Status          Status
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NormalizedSubscription is the read-only display projection of an
// instance with a single resolved price/currency pair. It is derived by
// the mapper and never mutated; a change requires re-deriving from a
// fresh raw instance.
type NormalizedSubscription struct {
	ID              uint64
	Name            string
	Price           float64
	Currency        string
	PriceMissing    bool
	BillingCycle    string
	CategoryID      uint64
	CategoryName    string
	CategoryIcon    string
	PlanName        string
	Features        string
	LogoURL         string
	IsCustom        bool
	Status          Status
	StartDate       *time.Time
	NextBillingDate *time.Time
	Notes           string
}
