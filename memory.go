package optiontree

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store for tests and for hosts that bring
// their own persistence and only need the engine. Promote is atomic under
// the store mutex.
type MemoryStore struct {
	mu    sync.Mutex
	trees map[string]*Tree
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{trees: make(map[string]*Tree)}
}

func (s *MemoryStore) CreateSchema(ctx context.Context) error { return nil }
func (s *MemoryStore) DropSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trees = make(map[string]*Tree)
	return nil
}

func (s *MemoryStore) CreateTree(ctx context.Context, t *Tree) (*Tree, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := t.clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	s.trees[stored.ID] = stored
	return stored.clone(), nil
}

func (s *MemoryStore) GetTree(ctx context.Context, treeID string) (*Tree, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.trees[treeID]
	if !ok {
		return nil, nil
	}
	return t.clone(), nil
}

func (s *MemoryStore) GetTrees(ctx context.Context, productID string) (*Tree, *Tree, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var draft, active *Tree
	for _, t := range s.trees {
		if t.ProductID != productID {
			continue
		}
		switch t.Status {
		case TreeDraft:
			draft = t.clone()
		case TreeActive:
			active = t.clone()
		}
	}
	return draft, active, nil
}

// SaveDoc is last-write-wins: concurrent editors racing on the same draft
// resolve at this boundary, the engine carries no optimistic locking.
func (s *MemoryStore) SaveDoc(ctx context.Context, treeID string, nodes []Node, edges []Edge, rootNodeIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.trees[treeID]
	if !ok {
		return ErrTreeNotFound
	}
	t.Nodes = append([]Node(nil), nodes...)
	t.Edges = append([]Edge(nil), edges...)
	t.RootNodeIDs = append([]string(nil), rootNodeIDs...)
	return nil
}

func (s *MemoryStore) Promote(ctx context.Context, draftID string, newDraft *Tree) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft, ok := s.trees[draftID]
	if !ok {
		return ErrTreeNotFound
	}
	if draft.Status != TreeDraft {
		return ErrNotDraft
	}
	for _, t := range s.trees {
		if t.ProductID == draft.ProductID && t.Status == TreeActive {
			t.Status = TreeRetired
		}
	}
	draft.Status = TreeActive
	if newDraft != nil {
		nd := newDraft.clone()
		if nd.ID == "" {
			nd.ID = uuid.NewString()
		}
		nd.Status = TreeDraft
		s.trees[nd.ID] = nd
	}
	return nil
}
