package model

import "time"

const (
	PendingOpen     = "open"
	PendingApproved = "approved"
	PendingRejected = "rejected"
)

// PendingItem is a shopper-proposed addition to the permanent catalog,
// awaiting admin review.
type PendingItem struct {
	ID         int64     `json:"id"`
	ListID     int64     `json:"list_id"`
	Name       string    `json:"name"`
	CategoryID *int64    `json:"category_id"`
	Quantity   string    `json:"quantity"`
	Comment    string    `json:"comment"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}
