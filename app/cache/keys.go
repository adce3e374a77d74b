package cache

import "fmt"

// Key identifies one cached resource. Keys are stable across the process
// so every consumer of the same resource shares one entry.
type Key string

const (
	KeySubscriptions Key = "subscriptions"
	KeyStats         Key = "stats"
	KeyCategories    Key = "categories"
)

// KeyCatalog returns the key for the catalog listing, optionally scoped
// to one category.
func KeyCatalog(categoryID uint64) Key {
	if categoryID == 0 {
		return "catalog"
	}
	return Key(fmt.Sprintf("catalog:%d", categoryID))
}

// KeyCatalogDetails returns the key for one catalog subscription with its
// plans.
func KeyCatalogDetails(id uint64) Key {
	return Key(fmt.Sprintf("catalog-details:%d", id))
}
