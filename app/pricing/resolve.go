// Package pricing selects the display price for a subscription instance
// from the server-selected value and the plan's regional price list.
package pricing

import "github.com/vibast-solutions/lib-go-subtrack/app/entity"

const DefaultCurrency = "USD"

type Money struct {
	Amount   float64
	Currency string
}

// Resolve picks the price/currency pair for a preset instance. Priority
// order, first match wins:
//
//  1. plan price in the user's currency
//  2. non-zero server-selected root price, unchanged
//  3. first plan price entry (catalog order)
//  4. zero in the user's currency
//
// The backend may already have applied its own region logic (2), but an
// exact currency match in the full price list (1) still wins because the
// backend's choice can be based on a different signal than the stored
// preference. The second return is false only for case 4, which means no
// price is available upstream and the caller should flag it.
func Resolve(rootPrice float64, rootCurrency string, planPrices []entity.Price, userCurrency string) (Money, bool) {
	if userCurrency == "" {
		userCurrency = DefaultCurrency
	}

	for _, p := range planPrices {
		if p.Currency == userCurrency {
			return Money{Amount: p.Amount, Currency: p.Currency}, true
		}
	}
	if rootPrice != 0 {
		return Money{Amount: rootPrice, Currency: rootCurrency}, true
	}
	if len(planPrices) > 0 {
		first := planPrices[0]
		return Money{Amount: first.Amount, Currency: first.Currency}, true
	}
	return Money{Amount: 0, Currency: userCurrency}, false
}

// DedupePrices drops repeated currencies from a plan price list, keeping
// the first occurrence of each.
func DedupePrices(prices []entity.Price) []entity.Price {
	if len(prices) < 2 {
		return prices
	}
	seen := make(map[string]bool, len(prices))
	result := make([]entity.Price, 0, len(prices))
	for _, p := range prices {
		if seen[p.Currency] {
			continue
		}
		seen[p.Currency] = true
		result = append(result, p)
	}
	return result
}
