package optiontree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// UnmarshalJSON accepts both the current document shape (nodes/edges as
// arrays) and the legacy shape (nodes/edges as id-keyed maps, no kind on
// edges, possibly no schemaVersion), normalizing to the current shape.
// Malformed legacy documents are repaired where possible rather than
// rejected.
func (t *Tree) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID            string          `json:"id"`
		ProductID     string          `json:"productId"`
		SchemaVersion int             `json:"schemaVersion"`
		Status        TreeStatus      `json:"status"`
		Nodes         json.RawMessage `json:"nodes"`
		Edges         json.RawMessage `json:"edges"`
		RootNodeIDs   []string        `json:"rootNodeIds"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("optiontree: decode tree: %w", err)
	}

	t.ID = raw.ID
	t.ProductID = raw.ProductID
	t.SchemaVersion = raw.SchemaVersion
	if t.SchemaVersion == 0 {
		t.SchemaVersion = SchemaVersion
	}
	t.Status = raw.Status
	t.RootNodeIDs = raw.RootNodeIDs
	if t.RootNodeIDs == nil {
		t.RootNodeIDs = []string{}
	}

	nodes, err := decodeNodes(raw.Nodes)
	if err != nil {
		return err
	}
	edges, err := decodeEdges(raw.Edges)
	if err != nil {
		return err
	}
	for i := range edges {
		if edges[i].Kind == "" {
			edges[i].Kind = inferEdgeKind(edges[i])
		}
	}
	t.Nodes = nodes
	t.Edges = edges
	return nil
}

// inferEdgeKind recovers the edge kind for documents written before the
// kind field existed: structural edges were persisted DISABLED with no
// condition, conditional edges ENABLED with one.
func inferEdgeKind(e Edge) EdgeKind {
	if e.Status == StatusEnabled || e.Condition != nil {
		return EdgeConditional
	}
	return EdgeStructural
}

func decodeNodes(raw json.RawMessage) ([]Node, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []Node{}, nil
	}
	if raw[0] == '[' {
		var nodes []Node
		if err := json.Unmarshal(raw, &nodes); err != nil {
			return nil, fmt.Errorf("optiontree: decode nodes: %w", err)
		}
		return nodes, nil
	}
	var m map[string]Node
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("optiontree: decode nodes: %w", err)
	}
	nodes := make([]Node, 0, len(m))
	for id, n := range m {
		if n.ID == "" {
			n.ID = id
		}
		nodes = append(nodes, n)
	}
	// Map iteration order is random; keep the normalized form stable.
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes, nil
}

func decodeEdges(raw json.RawMessage) ([]Edge, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []Edge{}, nil
	}
	if raw[0] == '[' {
		var edges []Edge
		if err := json.Unmarshal(raw, &edges); err != nil {
			return nil, fmt.Errorf("optiontree: decode edges: %w", err)
		}
		return edges, nil
	}
	var m map[string]Edge
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("optiontree: decode edges: %w", err)
	}
	edges := make([]Edge, 0, len(m))
	for id, e := range m {
		if e.ID == "" {
			e.ID = id
		}
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })
	return edges, nil
}
