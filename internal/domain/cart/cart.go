package cart

import (
	"context"
	"errors"
)

// ErrItemNotFound indicates the cart has no such item.
var ErrItemNotFound = errors.New("cart item not found")

// Item is one line of a customer's cart.
type Item struct {
	ItemID    string  `json:"itemId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

// Cart is the full cart of one customer.
type Cart struct {
	CustomerID string `json:"customerId"`
	Items      []Item `json:"items"`
}

// Store is the persistence surface the cart service depends on.
type Store interface {
	ListItems(ctx context.Context, customerID string) ([]Item, error)
	GetItem(ctx context.Context, customerID, itemID string) (Item, error)
	// AddItem inserts the item, merging quantities when the item already
	// exists in the cart.
	AddItem(ctx context.Context, customerID string, item Item) error
	// ReplaceItem overwrites quantity and price of an existing item;
	// returns ErrItemNotFound when the cart has no such item.
	ReplaceItem(ctx context.Context, customerID string, item Item) error
	RemoveItem(ctx context.Context, customerID, itemID string) error
	DeleteCart(ctx context.Context, customerID string) error
	// MergeCarts folds every item of the session cart into the customer
	// cart and removes the session cart.
	MergeCarts(ctx context.Context, sessionID, customerID string) error
}

// Cache holds serialized carts keyed by customer id.
type Cache interface {
	GetCart(ctx context.Context, customerID string) ([]byte, bool, error)
	SetCart(ctx context.Context, customerID string, payload []byte) error
	InvalidateCart(ctx context.Context, customerID string) error
}
