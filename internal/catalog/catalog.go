package catalog

import (
	"sort"
	"strings"

	"github.com/orilam/kniyot/internal/model"
)

// FallbackCategoryName labels items whose category id does not resolve.
const FallbackCategoryName = "אחר"

// Catalog is the read-only reference data a list session works against:
// categories ordered by display rank and the curated base items.
type Catalog struct {
	categories   []model.Category
	categoryByID map[int64]model.Category
	items        []model.CatalogItem
	itemByID     map[int64]model.CatalogItem
}

// New builds a Catalog from category and item rows. Categories are kept in
// sort-rank order regardless of input order.
func New(categories []model.Category, items []model.CatalogItem) *Catalog {
	c := &Catalog{
		categories:   append([]model.Category(nil), categories...),
		categoryByID: make(map[int64]model.Category, len(categories)),
		items:        append([]model.CatalogItem(nil), items...),
		itemByID:     make(map[int64]model.CatalogItem, len(items)),
	}
	sort.SliceStable(c.categories, func(i, j int) bool {
		return c.categories[i].SortOrder < c.categories[j].SortOrder
	})
	for _, cat := range c.categories {
		c.categoryByID[cat.ID] = cat
	}
	for _, item := range c.items {
		c.itemByID[item.ID] = item
	}
	return c
}

// Default returns the built-in catalog used when no shared backend supplies
// one (offline mode, or a failed categories fetch).
func Default() *Catalog {
	return New(
		[]model.Category{
			{ID: 1, Name: "מוצרי יסוד", SortOrder: 1},
			{ID: 2, Name: "פירות וירקות", SortOrder: 2},
			{ID: 3, Name: "מוצרי חלב וביצים", SortOrder: 3},
			{ID: 4, Name: "חומרי ניקוי", SortOrder: 4},
			{ID: 5, Name: "שתייה", SortOrder: 5},
		},
		[]model.CatalogItem{
			{ID: 1, Name: "קמח לבן", CategoryID: 1},
			{ID: 2, Name: "סוכר", CategoryID: 1},
			{ID: 3, Name: "חלב", CategoryID: 3},
			{ID: 4, Name: "ביצים", CategoryID: 3},
			{ID: 5, Name: "עגבניות", CategoryID: 2},
			{ID: 6, Name: "מלפפונים", CategoryID: 2},
			{ID: 7, Name: "נוזל כביסה", CategoryID: 4},
		},
	)
}

// Categories returns the categories in display order.
func (c *Catalog) Categories() []model.Category {
	return c.categories
}

// Items returns all catalog items.
func (c *Catalog) Items() []model.CatalogItem {
	return c.items
}

func (c *Catalog) CategoryByID(id int64) (model.Category, bool) {
	cat, ok := c.categoryByID[id]
	return cat, ok
}

func (c *Catalog) ItemByID(id int64) (model.CatalogItem, bool) {
	item, ok := c.itemByID[id]
	return item, ok
}

// CategoryName resolves a nullable category id to its display name, falling
// back to FallbackCategoryName for nil or unknown ids.
func (c *Catalog) CategoryName(id *int64) string {
	if id == nil {
		return FallbackCategoryName
	}
	cat, ok := c.categoryByID[*id]
	if !ok {
		return FallbackCategoryName
	}
	return cat.Name
}

// FilterItems returns the catalog items whose name contains the search text
// as typed. Empty or whitespace-only search returns everything.
func (c *Catalog) FilterItems(search string) []model.CatalogItem {
	s := strings.TrimSpace(search)
	if s == "" {
		return c.items
	}
	var out []model.CatalogItem
	for _, item := range c.items {
		if strings.Contains(item.Name, s) {
			out = append(out, item)
		}
	}
	return out
}
