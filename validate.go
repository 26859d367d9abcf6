package optiontree

import "fmt"

// Severity of a validator finding.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
)

// Finding codes. Stable machine-readable identifiers; downstream consumers
// (pricing/weight checks) reuse the Finding shape with their own codes.
const (
	CodeTreeNoRoots            = "TREE_NO_ROOTS"
	CodeRootNodeInvalid        = "ROOT_NODE_INVALID"
	CodeInputMissingSelection  = "INPUT_MISSING_SELECTION_KEY"
	CodeEdgeEndpointMissing    = "EDGE_ENDPOINT_MISSING"
	CodeEdgeStatusInvalid      = "EDGE_STATUS_INVALID"
	CodeEdgeConditionInvalid   = "EDGE_CONDITION_INVALID"
	CodeOrphanOption           = "ORPHAN_OPTION"
	CodeEmptyGroup             = "EMPTY_GROUP"
	CodeRequiredGroupNoDefault = "REQUIRED_GROUP_NO_DEFAULT"
)

// Finding describes one rule violation. Findings are results, not errors:
// validation always completes and returns the full report.
type Finding struct {
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	NodeID   string   `json:"nodeId,omitempty"`
	EdgeID   string   `json:"edgeId,omitempty"`
}

// Report is the outcome of validating one candidate tree.
type Report struct {
	Errors   []Finding `json:"errors"`
	Warnings []Finding `json:"warnings"`
}

// Clean reports whether the tree can publish without confirmation.
func (r *Report) Clean() bool {
	return len(r.Errors) == 0 && len(r.Warnings) == 0
}

// Findings returns errors followed by warnings.
func (r *Report) Findings() []Finding {
	out := make([]Finding, 0, len(r.Errors)+len(r.Warnings))
	out = append(out, r.Errors...)
	out = append(out, r.Warnings...)
	return out
}

func (r *Report) addError(code, msg, nodeID, edgeID string) {
	r.Errors = append(r.Errors, Finding{Code: code, Severity: SeverityError, Message: msg, NodeID: nodeID, EdgeID: edgeID})
}

func (r *Report) addWarning(code, msg, nodeID, edgeID string) {
	r.Warnings = append(r.Warnings, Finding{Code: code, Severity: SeverityWarning, Message: msg, NodeID: nodeID, EdgeID: edgeID})
}

// Validate walks a candidate tree and reports every violation it finds,
// in document order. It never stops at the first problem.
func Validate(t *Tree) *Report {
	r := &Report{Errors: []Finding{}, Warnings: []Finding{}}

	nodeByID := make(map[string]*Node, len(t.Nodes))
	for i := range t.Nodes {
		nodeByID[t.Nodes[i].ID] = &t.Nodes[i]
	}

	// Roots: non-empty, no duplicates, every id resolvable.
	if len(t.RootNodeIDs) == 0 {
		r.addError(CodeTreeNoRoots, "tree has no root groups", "", "")
	}
	seenRoots := make(map[string]bool, len(t.RootNodeIDs))
	for _, id := range t.RootNodeIDs {
		if seenRoots[id] {
			r.addError(CodeRootNodeInvalid, fmt.Sprintf("root id %s listed more than once", id), id, "")
			continue
		}
		seenRoots[id] = true
		if nodeByID[id] == nil {
			r.addError(CodeRootNodeInvalid, fmt.Sprintf("root id %s does not resolve to a node", id), id, "")
		}
	}

	// Per-node checks.
	for i := range t.Nodes {
		n := &t.Nodes[i]
		if n.Type != NodeTypeInput || n.Status == StatusDeleted {
			continue
		}
		if n.Input == nil || n.Input.SelectionKey == "" {
			r.addError(CodeInputMissingSelection,
				fmt.Sprintf("input node %s has no selection key", n.ID), n.ID, "")
		}
	}

	// Per-edge checks. Endpoints must resolve regardless of node status;
	// kind/status and status/condition pairings must agree.
	for i := range t.Edges {
		e := &t.Edges[i]
		if nodeByID[e.FromNodeID] == nil {
			r.addError(CodeEdgeEndpointMissing,
				fmt.Sprintf("edge %s references missing source node %s", e.ID, e.FromNodeID), "", e.ID)
		}
		if nodeByID[e.ToNodeID] == nil {
			r.addError(CodeEdgeEndpointMissing,
				fmt.Sprintf("edge %s references missing target node %s", e.ID, e.ToNodeID), "", e.ID)
		}
		if e.Status == StatusDeleted {
			continue
		}
		switch e.Kind {
		case EdgeStructural:
			if e.Status != StatusDisabled {
				r.addError(CodeEdgeStatusInvalid,
					fmt.Sprintf("structural edge %s must have status DISABLED, got %s", e.ID, e.Status), "", e.ID)
			}
			if e.Condition != nil {
				r.addError(CodeEdgeConditionInvalid,
					fmt.Sprintf("structural edge %s carries a condition", e.ID), "", e.ID)
			}
		case EdgeConditional:
			if e.Status != StatusEnabled {
				r.addError(CodeEdgeStatusInvalid,
					fmt.Sprintf("conditional edge %s must have status ENABLED, got %s", e.ID, e.Status), "", e.ID)
			}
			if e.Condition == nil || e.Condition.SelectionKey == "" || e.Condition.Operator == "" {
				r.addError(CodeEdgeConditionInvalid,
					fmt.Sprintf("conditional edge %s has a missing or malformed condition", e.ID), "", e.ID)
			}
		default:
			r.addError(CodeEdgeStatusInvalid,
				fmt.Sprintf("edge %s has unknown kind %q", e.ID, e.Kind), "", e.ID)
		}
	}

	// Containment: every live input needs a live structural parent that is a
	// live group; every live group gets a children census for the warnings.
	liveParents := make(map[string]bool)
	childCount := make(map[string]int)
	defaulted := make(map[string]bool)
	for i := range t.Edges {
		e := &t.Edges[i]
		if e.Kind != EdgeStructural || e.Status == StatusDeleted {
			continue
		}
		from := nodeByID[e.FromNodeID]
		to := nodeByID[e.ToNodeID]
		if from == nil || to == nil {
			continue
		}
		if from.Type != NodeTypeGroup || from.Status == StatusDeleted {
			continue
		}
		if to.Status != StatusDeleted {
			liveParents[to.ID] = true
			childCount[from.ID]++
			if to.Input != nil && to.Input.IsDefault {
				defaulted[from.ID] = true
			}
		}
	}

	for i := range t.Nodes {
		n := &t.Nodes[i]
		if n.Status == StatusDeleted {
			continue
		}
		switch n.Type {
		case NodeTypeInput:
			if !liveParents[n.ID] {
				r.addError(CodeOrphanOption,
					fmt.Sprintf("option %s has no containing group", n.ID), n.ID, "")
			}
		case NodeTypeGroup:
			if childCount[n.ID] == 0 {
				r.addWarning(CodeEmptyGroup,
					fmt.Sprintf("group %s has no options", n.ID), n.ID, "")
			}
			if n.Input != nil && n.Input.Required && childCount[n.ID] > 0 && !defaulted[n.ID] {
				r.addWarning(CodeRequiredGroupNoDefault,
					fmt.Sprintf("required group %s has no default option", n.ID), n.ID, "")
			}
		}
	}

	return r
}
