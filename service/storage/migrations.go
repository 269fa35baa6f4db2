package storage

const schemaV1 = `
CREATE TABLE IF NOT EXISTS receipts (
    receipt_id           INTEGER PRIMARY KEY AUTOINCREMENT,
    receipt_hash         TEXT UNIQUE NOT NULL,
    run_uuid             TEXT,
    source_ref           TEXT,
    bundle_id            TEXT NOT NULL,
    app_version          TEXT NOT NULL,
    original_app_version TEXT,
    creation_date        TEXT NOT NULL,
    expiration_date      TEXT,
    purchase_count       INTEGER DEFAULT 0,
    active_count         INTEGER DEFAULT 0,
    parse_count          INTEGER DEFAULT 1,
    cli_version          TEXT,
    first_parsed         DATETIME DEFAULT CURRENT_TIMESTAMP,
    last_parsed          DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_receipts_bundle_parsed
    ON receipts(bundle_id, last_parsed);
CREATE INDEX IF NOT EXISTS idx_receipts_parsed
    ON receipts(last_parsed DESC);

CREATE TABLE IF NOT EXISTS in_app_purchases (
    purchase_id             INTEGER PRIMARY KEY AUTOINCREMENT,
    receipt_id              INTEGER NOT NULL,
    transaction_id          TEXT NOT NULL,
    original_transaction_id TEXT,
    product_id              TEXT NOT NULL,
    product_type            INTEGER NOT NULL DEFAULT -1,
    quantity                INTEGER NOT NULL,
    purchase_date           TEXT NOT NULL,
    original_purchase_date  TEXT,
    expires_date            TEXT,
    cancellation_date       TEXT,
    is_trial                INTEGER DEFAULT 0,
    is_intro_offer          INTEGER DEFAULT 0,
    web_order_line_item_id  INTEGER,
    UNIQUE(receipt_id, transaction_id),
    FOREIGN KEY (receipt_id) REFERENCES receipts(receipt_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_purchases_receipt ON in_app_purchases(receipt_id);
CREATE INDEX IF NOT EXISTS idx_purchases_original ON in_app_purchases(original_transaction_id);
CREATE INDEX IF NOT EXISTS idx_purchases_product ON in_app_purchases(product_id);
`
