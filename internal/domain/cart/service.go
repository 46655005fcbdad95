package cart

import (
	"context"
	"encoding/json"
	"errors"
	"log"
)

// Service coordinates the cart store and the cache. Cache failures degrade
// to store reads; they never fail a request.
type Service struct {
	store Store
	cache Cache
}

// NewService wires dependencies.
func NewService(store Store, cache Cache) *Service {
	return &Service{store: store, cache: cache}
}

// GetCart returns the customer's cart, reading through the cache. A cart
// with no items is still a valid, empty cart.
func (s *Service) GetCart(ctx context.Context, customerID string) (Cart, error) {
	if customerID == "" {
		return Cart{}, errors.New("customer id is required")
	}
	if payload, ok, err := s.cache.GetCart(ctx, customerID); err != nil {
		log.Printf("cart service: cache read failed for %s: %v", customerID, err)
	} else if ok {
		var cached Cart
		if err := json.Unmarshal(payload, &cached); err == nil {
			return cached, nil
		}
		log.Printf("cart service: dropping malformed cache entry for %s", customerID)
	}

	items, err := s.store.ListItems(ctx, customerID)
	if err != nil {
		return Cart{}, err
	}
	c := Cart{CustomerID: customerID, Items: items}
	if payload, err := json.Marshal(c); err == nil {
		if err := s.cache.SetCart(ctx, customerID, payload); err != nil {
			log.Printf("cart service: cache write failed for %s: %v", customerID, err)
		}
	}
	return c, nil
}

// GetItem fetches a single cart line.
func (s *Service) GetItem(ctx context.Context, customerID, itemID string) (Item, error) {
	return s.store.GetItem(ctx, customerID, itemID)
}

// AddItem puts an item into the cart, merging quantities on duplicates.
func (s *Service) AddItem(ctx context.Context, customerID string, item Item) error {
	if err := validateItem(item); err != nil {
		return err
	}
	if err := s.store.AddItem(ctx, customerID, item); err != nil {
		return err
	}
	s.invalidate(ctx, customerID)
	return nil
}

// UpdateItem overwrites quantity and price of an existing cart line.
func (s *Service) UpdateItem(ctx context.Context, customerID string, item Item) error {
	if err := validateItem(item); err != nil {
		return err
	}
	if err := s.store.ReplaceItem(ctx, customerID, item); err != nil {
		return err
	}
	s.invalidate(ctx, customerID)
	return nil
}

// RemoveItem deletes one line from the cart.
func (s *Service) RemoveItem(ctx context.Context, customerID, itemID string) error {
	if err := s.store.RemoveItem(ctx, customerID, itemID); err != nil {
		return err
	}
	s.invalidate(ctx, customerID)
	return nil
}

// DeleteCart removes the whole cart.
func (s *Service) DeleteCart(ctx context.Context, customerID string) error {
	if err := s.store.DeleteCart(ctx, customerID); err != nil {
		return err
	}
	s.invalidate(ctx, customerID)
	return nil
}

// Merge folds an anonymous session cart into the customer's cart.
func (s *Service) Merge(ctx context.Context, sessionID, customerID string) error {
	if sessionID == "" || customerID == "" {
		return errors.New("session id and customer id are required")
	}
	if sessionID == customerID {
		return errors.New("cannot merge a cart into itself")
	}
	if err := s.store.MergeCarts(ctx, sessionID, customerID); err != nil {
		return err
	}
	s.invalidate(ctx, sessionID)
	s.invalidate(ctx, customerID)
	return nil
}

func (s *Service) invalidate(ctx context.Context, customerID string) {
	if err := s.cache.InvalidateCart(ctx, customerID); err != nil {
		log.Printf("cart service: cache invalidation failed for %s: %v", customerID, err)
	}
}

func validateItem(item Item) error {
	if item.ItemID == "" {
		return errors.New("item id is required")
	}
	if item.Quantity <= 0 {
		return errors.New("quantity must be positive")
	}
	if item.UnitPrice < 0 {
		return errors.New("unit price cannot be negative")
	}
	return nil
}
