package entity

import "time"

// Price is one regional price record attached to a plan.
type Price struct {
	ID       uint64
	Region   string
	Currency string
	Amount   float64
}

// Plan belongs to one catalog subscription and carries a non-empty ordered
// collection of regional prices. A plan holds at most one price per
// currency; duplicates from the backend are resolved by keeping the first
// occurrence.
type Plan struct {
	ID           uint64
	Name         string
	BillingCycle string
	Features     string
	Prices       []Price
	Subscription *CatalogSubscription
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PriceFor returns the plan price in the given currency, if any.
func (p *Plan) PriceFor(currency string) (Price, bool) {
	for _, price := range p.Prices {
		if price.Currency == currency {
			return price, true
		}
	}
	return Price{}, false
}
