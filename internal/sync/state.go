package sync

import (
	"sort"

	"github.com/orilam/kniyot/internal/model"
)

// State holds the canonical active-item collection for one list session,
// ordered by creation time. It is mutated only by the owning Engine; callers
// read snapshots.
type State struct {
	items []model.ListItem
}

// NewState initializes the collection from a loaded snapshot.
func NewState(items []model.ListItem) *State {
	s := &State{items: append([]model.ListItem(nil), items...)}
	s.sort()
	return s
}

// Items returns a copy of the collection in order.
func (s *State) Items() []model.ListItem {
	return append([]model.ListItem(nil), s.items...)
}

func (s *State) Len() int {
	return len(s.items)
}

func (s *State) Get(id string) (model.ListItem, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return model.ListItem{}, false
}

// HasCatalogOrigin reports whether any item was added from the given catalog
// entry.
func (s *State) HasCatalogOrigin(catalogItemID int64) bool {
	for _, item := range s.items {
		if item.CatalogItemID != nil && *item.CatalogItemID == catalogItemID {
			return true
		}
	}
	return false
}

// Insert adds the item unless one with the same id is already present, and
// re-sorts so a late-arriving row lands in chronological position. Reports
// whether the collection changed.
func (s *State) Insert(item model.ListItem) bool {
	if _, ok := s.Get(item.ID); ok {
		return false
	}
	s.items = append(s.items, item)
	s.sort()
	return true
}

// Replace swaps the item with the same id for the incoming row, verbatim.
// No-op when the id is absent.
func (s *State) Replace(item model.ListItem) bool {
	for i := range s.items {
		if s.items[i].ID == item.ID {
			s.items[i] = item
			s.sort()
			return true
		}
	}
	return false
}

// Remove deletes the item with the given id. No-op when absent.
func (s *State) Remove(id string) bool {
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

func (s *State) sort() {
	sort.SliceStable(s.items, func(i, j int) bool {
		a, b := s.items[i], s.items[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
