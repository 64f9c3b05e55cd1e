// Package sync owns a list session: it resolves a slug to a live,
// continuously reconciled collection of active items, and routes mutation
// intents to whichever backing store the session runs against — the shared
// server, or local memory when none is configured.
package sync

import (
	"context"
	"errors"

	"github.com/orilam/kniyot/internal/feed"
	"github.com/orilam/kniyot/internal/model"
)

// ErrDuplicateOrigin reports an insert rejected because the list already
// carries an item from the same catalog entry.
var ErrDuplicateOrigin = errors.New("catalog item already on list")

// Draft is an item a shopper intends to add, carrying the client-generated
// placeholder id the backing store either keeps or replaces.
type Draft struct {
	ID            string
	Name          string
	CategoryID    *int64
	Quantity      string
	Comment       string
	CatalogItemID *int64
}

// Backend is the mutation contract a list session runs against. Both modes
// implement it, so the engine's call sites never branch on where the data
// lives.
type Backend interface {
	// Resolve maps the session's slug to a durable list, creating it when
	// absent.
	Resolve(ctx context.Context, slug string) error

	// LoadItems returns the list's active items ordered by creation time
	// ascending.
	LoadItems(ctx context.Context) ([]model.ListItem, error)

	// InsertItem stores the draft and returns the row as stored.
	InsertItem(ctx context.Context, d Draft) (*model.ListItem, error)

	// DeleteItem removes the item. Deleting an absent id is not an error.
	DeleteItem(ctx context.Context, id string) error

	// Suggest records a pending catalog suggestion. Best effort; callers
	// log failures and move on.
	Suggest(ctx context.Context, d Draft) error

	// Subscribe opens the list's change feed. The channel closes when the
	// context is canceled or the feed drops. A nil channel with nil error
	// means the backend has no feed (local memory).
	Subscribe(ctx context.Context) (<-chan feed.Event, error)

	// Close releases any resources held by the backend.
	Close() error
}
