package database

import (
	"context"
	"database/sql"
	"fmt"
)

const createCartChecksTable = `
CREATE TABLE IF NOT EXISTS cart_checks (
	id UUID PRIMARY KEY,
	reference VARCHAR(255) UNIQUE NOT NULL,
	base_url TEXT NOT NULL,
	scenario VARCHAR(100) NOT NULL,
	status VARCHAR(20) NOT NULL,
	items INTEGER NOT NULL DEFAULT 0,
	total BIGINT NOT NULL DEFAULT 0,
	sum BIGINT NOT NULL DEFAULT 0,
	detail TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_cart_checks_status ON cart_checks(status);
CREATE INDEX IF NOT EXISTS idx_cart_checks_created_at ON cart_checks(created_at DESC);
`

// RunMigrations creates the run history tables in the connection's search path
func RunMigrations(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("database connection not initialized")
	}

	if _, err := db.ExecContext(ctx, createCartChecksTable); err != nil {
		return fmt.Errorf("failed to create cart_checks table: %w", err)
	}
	return nil
}
