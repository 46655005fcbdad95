package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"carts/internal/domain/cart"
	"carts/internal/observability/metrics"
)

// Store wraps a pgx connection pool and exposes typed cart helpers. It
// implements cart.Store and cart.ActivityStore.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store backed by a pgx pool.
func New(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Close releases underlying connections.
func (s *Store) Close() {
	s.pool.Close()
}

// Ping verifies connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// EnsureSchema guarantees required tables exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	start := time.Now()
	defer func() { metrics.ObserveDBOperation("ensure_schema", time.Since(start)) }()
	_, err := s.pool.Exec(ctx, schemaSQL)
	return err
}

// RunInTx executes fn within a transaction boundary.
func (s *Store) RunInTx(ctx context.Context, fn func(pgx.Tx) error) error {
	start := time.Now()
	defer func() { metrics.ObserveDBOperation("run_in_tx", time.Since(start)) }()
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// ListItems returns every line of a customer's cart.
func (s *Store) ListItems(ctx context.Context, customerID string) ([]cart.Item, error) {
	start := time.Now()
	defer func() { metrics.ObserveDBOperation("list_items", time.Since(start)) }()
	rows, err := s.pool.Query(ctx, `
        SELECT item_id, quantity, unit_price
        FROM cart_items
        WHERE customer_id = $1
        ORDER BY id
    `, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []cart.Item
	for rows.Next() {
		var item cart.Item
		if err := rows.Scan(&item.ItemID, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetItem fetches one cart line.
func (s *Store) GetItem(ctx context.Context, customerID, itemID string) (cart.Item, error) {
	start := time.Now()
	defer func() { metrics.ObserveDBOperation("get_item", time.Since(start)) }()
	var item cart.Item
	err := s.pool.QueryRow(ctx, `
        SELECT item_id, quantity, unit_price
        FROM cart_items
        WHERE customer_id = $1 AND item_id = $2
    `, customerID, itemID).Scan(&item.ItemID, &item.Quantity, &item.UnitPrice)
	if errors.Is(err, pgx.ErrNoRows) {
		return cart.Item{}, cart.ErrItemNotFound
	}
	if err != nil {
		return cart.Item{}, err
	}
	return item, nil
}

// AddItem inserts a cart line, merging quantities when the item already
// exists. The price of the newest add wins.
func (s *Store) AddItem(ctx context.Context, customerID string, item cart.Item) error {
	start := time.Now()
	defer func() { metrics.ObserveDBOperation("add_item", time.Since(start)) }()
	_, err := s.pool.Exec(ctx, `
        INSERT INTO cart_items (customer_id, item_id, quantity, unit_price)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (customer_id, item_id)
        DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity,
                      unit_price = EXCLUDED.unit_price
    `, customerID, item.ItemID, item.Quantity, item.UnitPrice)
	return err
}

// ReplaceItem overwrites quantity and price of an existing cart line.
func (s *Store) ReplaceItem(ctx context.Context, customerID string, item cart.Item) error {
	start := time.Now()
	defer func() { metrics.ObserveDBOperation("replace_item", time.Since(start)) }()
	cmdTag, err := s.pool.Exec(ctx, `
        UPDATE cart_items
        SET quantity = $3, unit_price = $4
        WHERE customer_id = $1 AND item_id = $2
    `, customerID, item.ItemID, item.Quantity, item.UnitPrice)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return cart.ErrItemNotFound
	}
	return nil
}

// RemoveItem deletes one cart line.
func (s *Store) RemoveItem(ctx context.Context, customerID, itemID string) error {
	start := time.Now()
	defer func() { metrics.ObserveDBOperation("remove_item", time.Since(start)) }()
	cmdTag, err := s.pool.Exec(ctx, `
        DELETE FROM cart_items
        WHERE customer_id = $1 AND item_id = $2
    `, customerID, itemID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return cart.ErrItemNotFound
	}
	return nil
}

// DeleteCart removes every line of a customer's cart. Deleting an empty
// cart is not an error.
func (s *Store) DeleteCart(ctx context.Context, customerID string) error {
	start := time.Now()
	defer func() { metrics.ObserveDBOperation("delete_cart", time.Since(start)) }()
	_, err := s.pool.Exec(ctx, `
        DELETE FROM cart_items WHERE customer_id = $1
    `, customerID)
	return err
}

// MergeCarts folds the session cart into the customer cart atomically.
func (s *Store) MergeCarts(ctx context.Context, sessionID, customerID string) error {
	start := time.Now()
	defer func() { metrics.ObserveDBOperation("merge_carts", time.Since(start)) }()
	return s.RunInTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
            INSERT INTO cart_items (customer_id, item_id, quantity, unit_price)
            SELECT $2, item_id, quantity, unit_price
            FROM cart_items
            WHERE customer_id = $1
            ON CONFLICT (customer_id, item_id)
            DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
        `, sessionID, customerID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
            DELETE FROM cart_items WHERE customer_id = $1
        `, sessionID)
		return err
	})
}

// InsertActivity stores a cart activity event for auditing.
func (s *Store) InsertActivity(ctx context.Context, event cart.ActivityEvent) error {
	start := time.Now()
	defer func() { metrics.ObserveDBOperation("insert_activity", time.Since(start)) }()
	_, err := s.pool.Exec(ctx, `
        INSERT INTO cart_activity (customer_id, action, item_id, quantity, occurred_at)
        VALUES ($1, $2, NULLIF($3, ''), $4, $5)
    `, event.CustomerID, event.Action, event.ItemID, event.Quantity, event.Timestamp)
	return err
}
