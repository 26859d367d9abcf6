package postgres

import "context"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS product_trees (
    id             TEXT PRIMARY KEY,
    product_id     TEXT NOT NULL,
    status         TEXT NOT NULL,
    schema_version INT  NOT NULL DEFAULT 2,
    doc            JSONB NOT NULL DEFAULT '{}',
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_product_trees_product ON product_trees(product_id);

-- At most one draft and one active tree per product. Retired trees are
-- unconstrained; they accumulate as the audit trail.
CREATE UNIQUE INDEX IF NOT EXISTS uq_product_trees_draft
    ON product_trees(product_id) WHERE status = 'DRAFT';
CREATE UNIQUE INDEX IF NOT EXISTS uq_product_trees_active
    ON product_trees(product_id) WHERE status = 'ACTIVE';
`

// CreateSchema creates the product_trees table if it doesn't exist.
func (s *PGStore) CreateSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schemaSQL)
	return err
}

// DropSchema drops the product_trees table.
func (s *PGStore) DropSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS product_trees CASCADE;`)
	return err
}
