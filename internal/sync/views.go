package sync

import (
	"strings"

	"github.com/orilam/kniyot/internal/catalog"
	"github.com/orilam/kniyot/internal/model"
)

// Filter returns the items whose name contains the search text as typed.
// Empty or whitespace-only search returns the input unchanged.
func Filter(items []model.ListItem, search string) []model.ListItem {
	s := strings.TrimSpace(search)
	if s == "" {
		return items
	}
	var out []model.ListItem
	for _, item := range items {
		if strings.Contains(item.Name, s) {
			out = append(out, item)
		}
	}
	return out
}

// Group is one category bucket of the grouped view.
type Group struct {
	Category string
	Items    []model.ListItem
}

// GroupByCategory buckets items by resolved category name, preserving the
// input order within each group. Groups follow the catalog's display order;
// items whose category does not resolve land in a trailing fallback group.
// Every input item appears in exactly one group.
func GroupByCategory(items []model.ListItem, cat *catalog.Catalog) []Group {
	buckets := make(map[string][]model.ListItem)
	for _, item := range items {
		name := cat.CategoryName(item.CategoryID)
		buckets[name] = append(buckets[name], item)
	}

	var groups []Group
	for _, c := range cat.Categories() {
		if bucket, ok := buckets[c.Name]; ok {
			groups = append(groups, Group{Category: c.Name, Items: bucket})
			delete(buckets, c.Name)
		}
	}
	if bucket, ok := buckets[catalog.FallbackCategoryName]; ok {
		groups = append(groups, Group{Category: catalog.FallbackCategoryName, Items: bucket})
	}
	return groups
}
