package cart

import "time"

// Actions carried by cart activity events.
const (
	ActionItemAdded   = "item_added"
	ActionItemUpdated = "item_updated"
	ActionItemRemoved = "item_removed"
	ActionCartDeleted = "cart_deleted"
	ActionCartsMerged = "carts_merged"
)

// ActivityEvent describes one mutation of a customer's cart.
type ActivityEvent struct {
	CustomerID string    `json:"customer_id"`
	Action     string    `json:"action"`
	ItemID     string    `json:"item_id,omitempty"`
	Quantity   int       `json:"quantity,omitempty"`
	Timestamp  time.Time `json:"ts"`
}
