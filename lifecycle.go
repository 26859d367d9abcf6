package optiontree

import (
	"context"
	"fmt"
	"log/slog"
)

// PublishBlockedError is returned when a publish attempt hits blocking
// validation errors. It carries the full report so callers can show every
// finding, not just the first.
type PublishBlockedError struct {
	Findings []Finding
}

func (e *PublishBlockedError) Error() string {
	return fmt.Sprintf("optiontree: publish blocked by %d validation error(s)", len(e.Findings))
}

// PublishResult is the outcome of a publish attempt that did not fail.
// Exactly one of Published / RequiresWarningsConfirm is true.
type PublishResult struct {
	Published               bool      `json:"published"`
	RequiresWarningsConfirm bool      `json:"requiresWarningsConfirm,omitempty"`
	Findings                []Finding `json:"findings,omitempty"`
}

// Lifecycle owns the draft/active relationship for products. Editing is
// permissive (PatchDraft stores whatever the patch produced, valid or not,
// so autosave never blocks mid-edit); Publish is the sole enforcement gate.
type Lifecycle struct {
	store Store
	log   *slog.Logger
}

// NewLifecycle wires a controller over a store. logger may be nil.
func NewLifecycle(store Store, logger *slog.Logger) *Lifecycle {
	if logger == nil {
		logger = slog.Default()
	}
	return &Lifecycle{store: store, log: logger}
}

// CreateDraft returns the product's existing draft if one exists, otherwise
// initializes an empty valid skeleton as the new draft. Idempotent: a product
// never has two concurrent drafts.
func (l *Lifecycle) CreateDraft(ctx context.Context, productID string) (*Tree, error) {
	draft, _, err := l.store.GetTrees(ctx, productID)
	if err != nil {
		return nil, err
	}
	if draft != nil {
		return draft, nil
	}
	created, err := l.store.CreateTree(ctx, NewDraft(productID))
	if err != nil {
		return nil, err
	}
	l.log.Debug("draft created", "product", productID, "tree", created.ID)
	return created, nil
}

// PatchDraft replaces the draft's document with the given nodes/edges/roots.
// The document is stored as-is; structural problems surface at publish time.
// Returns ErrTreeNotFound or ErrNotDraft for lifecycle misuse.
func (l *Lifecycle) PatchDraft(ctx context.Context, draftID string, doc *Tree) (*Tree, error) {
	cur, err := l.store.GetTree(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, ErrTreeNotFound
	}
	if cur.Status != TreeDraft {
		return nil, ErrNotDraft
	}
	if err := l.store.SaveDoc(ctx, draftID, doc.Nodes, doc.Edges, doc.RootNodeIDs); err != nil {
		return nil, err
	}
	cur.Nodes = doc.Nodes
	cur.Edges = doc.Edges
	cur.RootNodeIDs = doc.RootNodeIDs
	return cur, nil
}

// Publish validates the draft and, if it passes, promotes it to ACTIVE,
// retires the prior active tree, and opens a fresh empty draft.
//
//   - blocking errors: returns *PublishBlockedError, nothing changes.
//   - warnings only, confirmWarnings false: returns a result with
//     RequiresWarningsConfirm set, nothing changes.
//   - otherwise: promotes and returns Published.
func (l *Lifecycle) Publish(ctx context.Context, draftID string, confirmWarnings bool) (*PublishResult, error) {
	draft, err := l.store.GetTree(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return nil, ErrTreeNotFound
	}
	if draft.Status != TreeDraft {
		return nil, ErrNotDraft
	}

	report := Validate(draft)
	if len(report.Errors) > 0 {
		return nil, &PublishBlockedError{Findings: report.Findings()}
	}
	if len(report.Warnings) > 0 && !confirmWarnings {
		return &PublishResult{
			RequiresWarningsConfirm: true,
			Findings:                report.Warnings,
		}, nil
	}

	if err := l.store.Promote(ctx, draftID, NewDraft(draft.ProductID)); err != nil {
		return nil, err
	}
	l.log.Info("tree published", "product", draft.ProductID, "tree", draftID,
		"warnings", len(report.Warnings))
	return &PublishResult{Published: true, Findings: report.Warnings}, nil
}

// Trees returns the product's current draft and active tree, either of which
// may be nil. Used by the editor on load and by downstream consumers needing
// the live configuration.
func (l *Lifecycle) Trees(ctx context.Context, productID string) (draft, active *Tree, err error) {
	return l.store.GetTrees(ctx, productID)
}
