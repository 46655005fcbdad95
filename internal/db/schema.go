package db

const schemaSQL = `
CREATE TABLE IF NOT EXISTS cart_items (
    id          BIGSERIAL PRIMARY KEY,
    customer_id TEXT NOT NULL,
    item_id     TEXT NOT NULL,
    quantity    INT NOT NULL,
    unit_price  NUMERIC(12, 2) NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (customer_id, item_id)
);

CREATE TABLE IF NOT EXISTS cart_activity (
    id          BIGSERIAL PRIMARY KEY,
    customer_id TEXT NOT NULL,
    action      TEXT NOT NULL,
    item_id     TEXT,
    quantity    INT,
    occurred_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_cart_items_customer ON cart_items (customer_id);
CREATE INDEX IF NOT EXISTS idx_cart_activity_customer ON cart_activity (customer_id);
`
