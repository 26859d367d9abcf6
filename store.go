package optiontree

import (
	"context"
	"errors"
)

var (
	ErrTreeNotFound = errors.New("optiontree: tree not found")
	ErrNotDraft     = errors.New("optiontree: tree is not a draft")
)

// Store defines the contract for persisting tree versions. The engine itself
// is pure; this is its only boundary with mutable state. Implementations own
// concurrency: SaveDoc is last-write-wins, Promote must be atomic (retire the
// old active, activate the draft, open a fresh draft) so a crash cannot leave
// a product with zero or two active trees.
type Store interface {
	// Schema
	CreateSchema(ctx context.Context) error
	DropSchema(ctx context.Context) error

	// Trees
	CreateTree(ctx context.Context, t *Tree) (*Tree, error)
	GetTree(ctx context.Context, treeID string) (*Tree, error)
	// GetTrees returns the current draft and active tree for a product.
	// Either may be nil.
	GetTrees(ctx context.Context, productID string) (draft, active *Tree, err error)
	// SaveDoc replaces the nodes, edges and roots of an existing tree.
	// Returns ErrTreeNotFound if the tree doesn't exist.
	SaveDoc(ctx context.Context, treeID string, nodes []Node, edges []Edge, rootNodeIDs []string) error
	// Promote retires the product's current active tree (if any), marks the
	// draft ACTIVE, and persists newDraft as the product's fresh draft — all
	// in one transaction. Returns ErrTreeNotFound if the draft doesn't exist.
	Promote(ctx context.Context, draftID string, newDraft *Tree) error
}
