package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/harborprint/optiontree"
)

// docPayload is the JSONB document column: everything except identity and
// lifecycle state, which live in their own columns.
type docPayload struct {
	Nodes       []optiontree.Node `json:"nodes"`
	Edges       []optiontree.Edge `json:"edges"`
	RootNodeIDs []string          `json:"rootNodeIds"`
}

func encodeDoc(t *optiontree.Tree) ([]byte, error) {
	doc, err := json.Marshal(docPayload{
		Nodes:       t.Nodes,
		Edges:       t.Edges,
		RootNodeIDs: t.RootNodeIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("optiontree: encode doc: %w", err)
	}
	return doc, nil
}

func decodeDoc(raw []byte, t *optiontree.Tree) error {
	var doc docPayload
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("optiontree: decode doc: %w", err)
	}
	t.Nodes = doc.Nodes
	t.Edges = doc.Edges
	t.RootNodeIDs = doc.RootNodeIDs
	if t.Nodes == nil {
		t.Nodes = []optiontree.Node{}
	}
	if t.Edges == nil {
		t.Edges = []optiontree.Edge{}
	}
	if t.RootNodeIDs == nil {
		t.RootNodeIDs = []string{}
	}
	return nil
}

// CreateTree inserts a tree version. If t.ID is empty a UUID is generated.
// Returns the stored tree with its ID filled in.
func (s *PGStore) CreateTree(ctx context.Context, t *optiontree.Tree) (*optiontree.Tree, error) {
	stored := *t
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.SchemaVersion == 0 {
		stored.SchemaVersion = optiontree.SchemaVersion
	}
	doc, err := encodeDoc(&stored)
	if err != nil {
		return nil, err
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO product_trees (id, product_id, status, schema_version, doc) VALUES ($1, $2, $3, $4, $5)`,
		stored.ID, stored.ProductID, stored.Status, stored.SchemaVersion, doc,
	)
	if err != nil {
		return nil, fmt.Errorf("optiontree: insert tree: %w", err)
	}
	return &stored, nil
}

// GetTree fetches a single tree version by its ID.
// Returns nil, nil if not found.
func (s *PGStore) GetTree(ctx context.Context, treeID string) (*optiontree.Tree, error) {
	var t optiontree.Tree
	var doc []byte
	err := s.db.QueryRow(ctx,
		`SELECT id, product_id, status, schema_version, doc FROM product_trees WHERE id = $1`, treeID,
	).Scan(&t.ID, &t.ProductID, &t.Status, &t.SchemaVersion, &doc)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("optiontree: get tree: %w", err)
	}
	if err := decodeDoc(doc, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTrees returns the current draft and active tree for a product.
// Either may be nil.
func (s *PGStore) GetTrees(ctx context.Context, productID string) (*optiontree.Tree, *optiontree.Tree, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, product_id, status, schema_version, doc
		   FROM product_trees
		  WHERE product_id = $1 AND status IN ('DRAFT', 'ACTIVE')`, productID)
	if err != nil {
		return nil, nil, fmt.Errorf("optiontree: query trees: %w", err)
	}
	defer rows.Close()

	var draft, active *optiontree.Tree
	for rows.Next() {
		var t optiontree.Tree
		var doc []byte
		if err := rows.Scan(&t.ID, &t.ProductID, &t.Status, &t.SchemaVersion, &doc); err != nil {
			return nil, nil, fmt.Errorf("optiontree: scan tree: %w", err)
		}
		if err := decodeDoc(doc, &t); err != nil {
			return nil, nil, err
		}
		switch t.Status {
		case optiontree.TreeDraft:
			tt := t
			draft = &tt
		case optiontree.TreeActive:
			tt := t
			active = &tt
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("optiontree: rows trees: %w", err)
	}
	return draft, active, nil
}

// SaveDoc replaces the document of an existing tree. Last write wins;
// concurrent editors on the same draft resolve here.
// Returns ErrTreeNotFound if the tree doesn't exist.
func (s *PGStore) SaveDoc(ctx context.Context, treeID string, nodes []optiontree.Node, edges []optiontree.Edge, rootNodeIDs []string) error {
	doc, err := encodeDoc(&optiontree.Tree{Nodes: nodes, Edges: edges, RootNodeIDs: rootNodeIDs})
	if err != nil {
		return err
	}
	ct, err := s.db.Exec(ctx,
		`UPDATE product_trees SET doc = $1, updated_at = NOW() WHERE id = $2`,
		doc, treeID,
	)
	if err != nil {
		return fmt.Errorf("optiontree: save doc: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return optiontree.ErrTreeNotFound
	}
	return nil
}

// Promote publishes a draft in a single transaction: the product's current
// active tree (if any) is retired, the draft becomes active, and newDraft is
// inserted as the fresh draft. A crash mid-publish leaves either the old
// state or the new state, never a product with zero or two active trees.
func (s *PGStore) Promote(ctx context.Context, draftID string, newDraft *optiontree.Tree) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("optiontree: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var productID string
	var status optiontree.TreeStatus
	err = tx.QueryRow(ctx,
		`SELECT product_id, status FROM product_trees WHERE id = $1 FOR UPDATE`, draftID,
	).Scan(&productID, &status)
	if err != nil {
		if isNoRows(err) {
			return optiontree.ErrTreeNotFound
		}
		return fmt.Errorf("optiontree: find draft: %w", err)
	}
	if status != optiontree.TreeDraft {
		return optiontree.ErrNotDraft
	}

	if _, err := tx.Exec(ctx,
		`UPDATE product_trees SET status = 'RETIRED', updated_at = NOW()
		  WHERE product_id = $1 AND status = 'ACTIVE'`, productID,
	); err != nil {
		return fmt.Errorf("optiontree: retire active: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE product_trees SET status = 'ACTIVE', updated_at = NOW() WHERE id = $1`, draftID,
	); err != nil {
		return fmt.Errorf("optiontree: activate draft: %w", err)
	}

	if newDraft != nil {
		nd := *newDraft
		if nd.ID == "" {
			nd.ID = uuid.NewString()
		}
		if nd.SchemaVersion == 0 {
			nd.SchemaVersion = optiontree.SchemaVersion
		}
		doc, err := encodeDoc(&nd)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO product_trees (id, product_id, status, schema_version, doc) VALUES ($1, $2, 'DRAFT', $3, $4)`,
			nd.ID, productID, nd.SchemaVersion, doc,
		); err != nil {
			return fmt.Errorf("optiontree: insert new draft: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("optiontree: commit: %w", err)
	}
	return nil
}
