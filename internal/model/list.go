package model

import "time"

type List struct {
	ID        int64     `json:"id"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// ListItem is one entry on a family's active shopping list. Item identifiers
// are opaque strings: clients generate a placeholder id for an insert and the
// server assigns the durable one, so the two never need to coordinate ranges.
type ListItem struct {
	ID            string    `json:"id"`
	ListID        int64     `json:"list_id"`
	Name          string    `json:"name"`
	CategoryID    *int64    `json:"category_id"`
	Quantity      string    `json:"quantity"`
	Comment       string    `json:"comment"`
	CatalogItemID *int64    `json:"catalog_item_id"`
	CreatedAt     time.Time `json:"created_at"`
}
