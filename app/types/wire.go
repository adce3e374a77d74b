package types

import "encoding/json"

// Envelope is the wrapper the backend puts around every response body.
// Data stays raw until the caller decodes it into the expected record
// shape; branching on the payload happens exactly once, here.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message,omitempty"`
}

type PriceRecord struct {
	ID       uint64  `json:"id"`
	Region   string  `json:"region"`
	Currency string  `json:"currency"`
	Price    float64 `json:"price"`
}

type PlanRecord struct {
	ID           uint64                     `json:"id"`
	Name         string                     `json:"name"`
	BillingCycle string                     `json:"billing_cycle"`
	Features     string                     `json:"features,omitempty"`
	Prices       []PriceRecord              `json:"prices"`
	Subscription *CatalogSubscriptionRecord `json:"subscription,omitempty"`
	CreatedAt    string                     `json:"created_at,omitempty"`
	UpdatedAt    string                     `json:"updated_at,omitempty"`
}

type CategoryRecord struct {
	ID        uint64 `json:"id"`
	Name      string `json:"name"`
	Icon      string `json:"icon,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

type CatalogSubscriptionRecord struct {
	ID        uint64         `json:"id"`
	Name      string         `json:"name"`
	LogoURL   string         `json:"logo_url,omitempty"`
	Category  CategoryRecord `json:"category"`
	Plans     []PlanRecord   `json:"plans,omitempty"`
	CreatedAt string         `json:"created_at,omitempty"`
	UpdatedAt string         `json:"updated_at,omitempty"`
}

type SubscriptionRecord struct {
	ID                 uint64          `json:"id"`
	Kind               string          `json:"kind"`
	CustomName         string          `json:"custom_name,omitempty"`
	CustomCategoryID   uint64          `json:"custom_category_id,omitempty"`
	CustomPrice        float64         `json:"custom_price,omitempty"`
	CustomCurrency     string          `json:"custom_currency,omitempty"`
	CustomBillingCycle string          `json:"custom_billing_cycle,omitempty"`
	CustomCategory     *CategoryRecord `json:"custom_category,omitempty"`
	Plan               *PlanRecord     `json:"plan,omitempty"`
	Price              float64         `json:"price,omitempty"`
	Currency           string          `json:"currency,omitempty"`
	StartDate          string          `json:"start_date,omitempty"`
	NextBillingDate    string          `json:"next_billing_date,omitempty"`
	Status             string          `json:"status"`
	Notes              string          `json:"notes,omitempty"`
	CreatedAt          string          `json:"created_at,omitempty"`
	UpdatedAt          string          `json:"updated_at,omitempty"`
}

type StatsRecord struct {
	TotalCount      int                `json:"total_count"`
	ActiveCount     int                `json:"active_count"`
	CancelledCount  int                `json:"cancelled_count"`
	PausedCount     int                `json:"paused_count"`
	ExpiredCount    int                `json:"expired_count"`
	MonthlySpend    map[string]float64 `json:"monthly_spend"`
	UpcomingBilling int                `json:"upcoming_billing"`
}
