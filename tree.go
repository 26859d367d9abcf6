package optiontree

import (
	"encoding/json"
	"sort"
)

// SchemaVersion is the only document shape this engine understands.
const SchemaVersion = 2

// NodeType discriminates configuration elements.
type NodeType string

const (
	NodeTypeGroup NodeType = "GROUP"
	NodeTypeInput NodeType = "INPUT"

	// NodeTypeComposite is reserved for a future document revision and is
	// never produced by this engine.
	NodeTypeComposite NodeType = "COMPOSITE"
)

// Status applies to both nodes and edges. Nodes are soft-deleted only:
// a DELETED node stays in the document so edges referencing it remain
// resolvable.
type Status string

const (
	StatusEnabled  Status = "ENABLED"
	StatusDisabled Status = "DISABLED"
	StatusDeleted  Status = "DELETED"
)

// EdgeKind separates containment edges from runtime conditional edges.
// On the wire a structural edge carries status DISABLED and no condition,
// a conditional edge carries status ENABLED and a condition; Kind makes
// that distinction explicit instead of overloading status alone. Legacy
// documents without a kind get one inferred from status (see normalize.go).
type EdgeKind string

const (
	EdgeStructural  EdgeKind = "STRUCTURAL"
	EdgeConditional EdgeKind = "CONDITIONAL"
)

// TreeStatus is the lifecycle state of one tree version.
type TreeStatus string

const (
	TreeDraft   TreeStatus = "DRAFT"
	TreeActive  TreeStatus = "ACTIVE"
	TreeRetired TreeStatus = "RETIRED"
)

// ValueType is the kind of value an input captures.
type ValueType string

const (
	ValueEnum    ValueType = "ENUM"
	ValueBoolean ValueType = "BOOLEAN"
	ValueNumber  ValueType = "NUMBER"
	ValueArray   ValueType = "ARRAY"
)

// InputSpec carries the selection metadata for GROUP and INPUT nodes.
// SelectionKey is the runtime variable name that pricing and conditional
// logic bind to; it is stable across label renames.
type InputSpec struct {
	SelectionKey string          `json:"selectionKey"`
	ValueType    ValueType       `json:"valueType"`
	Required     bool            `json:"required,omitempty"`
	IsDefault    bool            `json:"isDefault,omitempty"`
	Constraints  json.RawMessage `json:"constraints,omitempty"`
	DefaultValue json.RawMessage `json:"defaultValue,omitempty"`
}

// PriceComponent is a pricing effect attached to a node. Params are opaque
// to the graph engine and interpreted by the pricing subsystem.
// Known kinds: flat, perUnit, perArea, formula, tiered.
type PriceComponent struct {
	Kind   string          `json:"kind"`
	Params json.RawMessage `json:"params,omitempty"`
}

// MaterialEffect is a production/material impact attached to a node.
// Known kinds: weight, finishing.
type MaterialEffect struct {
	Kind   string          `json:"kind"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Node is a single configuration element.
type Node struct {
	ID          string   `json:"id"`
	Type        NodeType `json:"type"`
	Status      Status   `json:"status"`
	Key         string   `json:"key,omitempty"`
	Label       string   `json:"label,omitempty"`
	Description string   `json:"description,omitempty"`

	Input *InputSpec `json:"input,omitempty"`

	PriceComponents []PriceComponent `json:"priceComponents,omitempty"`
	MaterialEffects []MaterialEffect `json:"materialEffects,omitempty"`
}

// Condition gates a conditional edge's target on the source's selected value.
type Condition struct {
	SelectionKey string          `json:"selectionKey"`
	Operator     string          `json:"operator"`
	Value        json.RawMessage `json:"value,omitempty"`
}

// Edge is a directed relationship between two nodes in the same tree.
type Edge struct {
	ID         string     `json:"id"`
	FromNodeID string     `json:"fromNodeId"`
	ToNodeID   string     `json:"toNodeId"`
	Kind       EdgeKind   `json:"kind,omitempty"`
	Status     Status     `json:"status"`
	Priority   int        `json:"priority,omitempty"`
	Condition  *Condition `json:"condition,omitempty"`
}

// Tree is one versioned configuration document for a product.
// Nodes and Edges are flat, id-referenced collections; relationships are
// resolved lazily by the traversal methods, never as live pointers, so
// soft-deleted nodes stay harmlessly resolvable.
type Tree struct {
	ID            string     `json:"id,omitempty"`
	ProductID     string     `json:"productId,omitempty"`
	SchemaVersion int        `json:"schemaVersion"`
	Status        TreeStatus `json:"status,omitempty"`
	Nodes         []Node     `json:"nodes"`
	Edges         []Edge     `json:"edges"`
	RootNodeIDs   []string   `json:"rootNodeIds"`
}

// NewDraft returns an empty-but-valid draft skeleton for a product.
func NewDraft(productID string) *Tree {
	return &Tree{
		ProductID:     productID,
		SchemaVersion: SchemaVersion,
		Status:        TreeDraft,
		Nodes:         []Node{},
		Edges:         []Edge{},
		RootNodeIDs:   []string{},
	}
}

// NodeByID returns the node with the given id, or nil.
func (t *Tree) NodeByID(id string) *Node {
	for i := range t.Nodes {
		if t.Nodes[i].ID == id {
			return &t.Nodes[i]
		}
	}
	return nil
}

// EdgeByID returns the edge with the given id, or nil.
func (t *Tree) EdgeByID(id string) *Edge {
	for i := range t.Edges {
		if t.Edges[i].ID == id {
			return &t.Edges[i]
		}
	}
	return nil
}

// Roots returns the ids of the top-level groups in document order.
func (t *Tree) Roots() []string {
	out := make([]string, len(t.RootNodeIDs))
	copy(out, t.RootNodeIDs)
	return out
}

// ChildrenOf returns the ids of nodes reachable from nodeID via non-deleted
// structural edges, ordered by edge priority then edge id.
func (t *Tree) ChildrenOf(nodeID string) []string {
	var hits []Edge
	for _, e := range t.Edges {
		if e.FromNodeID != nodeID || e.Status == StatusDeleted {
			continue
		}
		if e.Kind != EdgeStructural {
			continue
		}
		hits = append(hits, e)
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Priority != hits[j].Priority {
			return hits[i].Priority < hits[j].Priority
		}
		return hits[i].ID < hits[j].ID
	})
	out := make([]string, 0, len(hits))
	for _, e := range hits {
		out = append(out, e.ToNodeID)
	}
	return out
}

// EdgeCondition pairs a conditional edge with its condition clause.
type EdgeCondition struct {
	Edge      Edge
	Condition Condition
}

// ConditionsOn returns the conditions carried by enabled conditional edges
// targeting nodeID, ordered by priority then edge id. Edges missing a
// condition clause are skipped here; the validator reports them.
func (t *Tree) ConditionsOn(nodeID string) []EdgeCondition {
	var out []EdgeCondition
	for _, e := range t.Edges {
		if e.ToNodeID != nodeID || e.Status != StatusEnabled || e.Kind != EdgeConditional {
			continue
		}
		if e.Condition == nil {
			continue
		}
		out = append(out, EdgeCondition{Edge: e, Condition: *e.Condition})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Edge.Priority != out[j].Edge.Priority {
			return out[i].Edge.Priority < out[j].Edge.Priority
		}
		return out[i].Edge.ID < out[j].Edge.ID
	})
	return out
}

// clone returns a copy of t with fresh Nodes/Edges/RootNodeIDs slices.
// Entries are carried over as-is; patch operations replace only the entries
// they touch.
func (t *Tree) clone() *Tree {
	c := *t
	c.Nodes = make([]Node, len(t.Nodes))
	copy(c.Nodes, t.Nodes)
	c.Edges = make([]Edge, len(t.Edges))
	copy(c.Edges, t.Edges)
	c.RootNodeIDs = make([]string, len(t.RootNodeIDs))
	copy(c.RootNodeIDs, t.RootNodeIDs)
	return &c
}
