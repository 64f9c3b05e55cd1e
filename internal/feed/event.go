package feed

import "github.com/orilam/kniyot/internal/model"

type EventKind string

const (
	EventInsert EventKind = "insert"
	EventUpdate EventKind = "update"
	EventDelete EventKind = "delete"
)

// Event is one row change on a list, delivered in commit order to every
// subscriber of that list. Insert and update carry the full row; delete
// carries only the identifier.
type Event struct {
	Kind   EventKind       `json:"kind"`
	Item   *model.ListItem `json:"item,omitempty"`
	ItemID string          `json:"item_id,omitempty"`
}

// ID returns the identifier of the row the event refers to.
func (e Event) ID() string {
	if e.Item != nil {
		return e.Item.ID
	}
	return e.ItemID
}
