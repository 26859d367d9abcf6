package optiontree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codes(fs []Finding) []string {
	out := make([]string, 0, len(fs))
	for _, f := range fs {
		out = append(out, f.Code)
	}
	return out
}

func TestValidateCleanTree(t *testing.T) {
	tree, g1 := AddGroup(NewDraft("p1"))
	tree, _ = AddOption(tree, g1)
	report := Validate(tree)
	assert.Empty(t, report.Errors)
	assert.Empty(t, report.Warnings)
	assert.True(t, report.Clean())
}

func TestValidateEmptyTreeHasNoRoots(t *testing.T) {
	report := Validate(NewDraft("p1"))
	assert.Contains(t, codes(report.Errors), CodeTreeNoRoots)
}

func TestValidateRootNodeInvalid(t *testing.T) {
	tree, g1 := AddGroup(NewDraft("p1"))
	tree, _ = AddOption(tree, g1)

	t.Run("duplicate root id", func(t *testing.T) {
		dup := tree.clone()
		dup.RootNodeIDs = append(dup.RootNodeIDs, g1)
		assert.Contains(t, codes(Validate(dup).Errors), CodeRootNodeInvalid)
	})

	t.Run("unknown root id", func(t *testing.T) {
		bad := tree.clone()
		bad.RootNodeIDs = append(bad.RootNodeIDs, "ghost")
		assert.Contains(t, codes(Validate(bad).Errors), CodeRootNodeInvalid)
	})
}

func TestValidateInputMissingSelectionKey(t *testing.T) {
	tree, g1 := AddGroup(NewDraft("p1"))
	tree, o1 := AddOption(tree, g1)

	tree.NodeByID(o1).Input.SelectionKey = ""
	report := Validate(tree)
	require.Contains(t, codes(report.Errors), CodeInputMissingSelection)

	// A deleted input is exempt.
	deleted := DeleteOption(tree, o1)
	assert.NotContains(t, codes(Validate(deleted).Errors), CodeInputMissingSelection)
}

func TestValidateEdgeEndpointMissing(t *testing.T) {
	tree, g1 := AddGroup(NewDraft("p1"))
	tree, _ = AddOption(tree, g1)
	tree.Edges = append(tree.Edges, Edge{
		ID: "dangling", FromNodeID: g1, ToNodeID: "ghost",
		Kind: EdgeStructural, Status: StatusDisabled,
	})
	report := Validate(tree)
	assert.Contains(t, codes(report.Errors), CodeEdgeEndpointMissing)
}

func TestValidateEdgeEndpointResolvesToDeletedNode(t *testing.T) {
	// Soft-deleted nodes still exist, so edges pointing at them are fine
	// structurally — that is the point of soft delete.
	tree, g1 := AddGroup(NewDraft("p1"))
	tree, o1 := AddOption(tree, g1)
	tree = DeleteOption(tree, o1)
	assert.NotContains(t, codes(Validate(tree).Errors), CodeEdgeEndpointMissing)
}

func TestValidateEdgeStatusInvalid(t *testing.T) {
	base, g1 := AddGroup(NewDraft("p1"))
	base, o1 := AddOption(base, g1)

	t.Run("structural edge enabled", func(t *testing.T) {
		tree := base.clone()
		tree.Edges[0].Status = StatusEnabled
		assert.Contains(t, codes(Validate(tree).Errors), CodeEdgeStatusInvalid)
	})

	t.Run("conditional edge disabled", func(t *testing.T) {
		tree := base.clone()
		tree.Edges = append(tree.Edges, Edge{
			ID: "c1", FromNodeID: g1, ToNodeID: o1,
			Kind: EdgeConditional, Status: StatusDisabled,
			Condition: &Condition{SelectionKey: "k", Operator: "eq"},
		})
		assert.Contains(t, codes(Validate(tree).Errors), CodeEdgeStatusInvalid)
	})

	t.Run("deleted edges are exempt", func(t *testing.T) {
		tree := base.clone()
		tree.Edges[0].Status = StatusDeleted
		assert.NotContains(t, codes(Validate(tree).Errors), CodeEdgeStatusInvalid)
	})
}

func TestValidateEdgeConditionInvalid(t *testing.T) {
	base, g1 := AddGroup(NewDraft("p1"))
	base, o1 := AddOption(base, g1)

	tests := []struct {
		name string
		edge Edge
	}{
		{
			name: "enabled conditional without condition",
			edge: Edge{ID: "c1", FromNodeID: g1, ToNodeID: o1,
				Kind: EdgeConditional, Status: StatusEnabled},
		},
		{
			name: "enabled conditional with empty selection key",
			edge: Edge{ID: "c1", FromNodeID: g1, ToNodeID: o1,
				Kind: EdgeConditional, Status: StatusEnabled,
				Condition: &Condition{Operator: "eq"}},
		},
		{
			name: "enabled conditional with empty operator",
			edge: Edge{ID: "c1", FromNodeID: g1, ToNodeID: o1,
				Kind: EdgeConditional, Status: StatusEnabled,
				Condition: &Condition{SelectionKey: "k"}},
		},
		{
			name: "structural edge carrying a condition",
			edge: Edge{ID: "c1", FromNodeID: g1, ToNodeID: o1,
				Kind: EdgeStructural, Status: StatusDisabled,
				Condition: &Condition{SelectionKey: "k", Operator: "eq"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := base.clone()
			tree.Edges = append(tree.Edges, tt.edge)
			assert.Contains(t, codes(Validate(tree).Errors), CodeEdgeConditionInvalid)
		})
	}
}

func TestValidateOrphanOption(t *testing.T) {
	tree, g1 := AddGroup(NewDraft("p1"))
	tree, _ = AddOption(tree, g1)

	t.Run("option with no structural parent", func(t *testing.T) {
		orphaned := tree.clone()
		orphaned.Nodes = append(orphaned.Nodes, Node{
			ID: "stray", Type: NodeTypeInput, Status: StatusEnabled,
			Input: &InputSpec{SelectionKey: "sel_stray", ValueType: ValueEnum},
		})
		assert.Contains(t, codes(Validate(orphaned).Errors), CodeOrphanOption)
	})

	t.Run("parent group deleted without cascade", func(t *testing.T) {
		// Hand-built corruption: group deleted but edge and child left live.
		bad := tree.clone()
		bad.NodeByID(g1).Status = StatusDeleted
		assert.Contains(t, codes(Validate(bad).Errors), CodeOrphanOption)
	})

	t.Run("deleted option is not an orphan", func(t *testing.T) {
		del := tree.clone()
		del.Nodes = append(del.Nodes, Node{
			ID: "gone", Type: NodeTypeInput, Status: StatusDeleted,
			Input: &InputSpec{SelectionKey: "sel_gone", ValueType: ValueEnum},
		})
		assert.NotContains(t, codes(Validate(del).Errors), CodeOrphanOption)
	})
}

func TestValidateEmptyGroupWarning(t *testing.T) {
	tree, _ := AddGroup(NewDraft("p1"))
	report := Validate(tree)
	assert.Empty(t, report.Errors)
	assert.Contains(t, codes(report.Warnings), CodeEmptyGroup)
}

func TestValidateRequiredGroupNoDefault(t *testing.T) {
	tree, g1 := AddGroup(NewDraft("p1"))
	tree, o1 := AddOption(tree, g1)
	tree = UpdateGroup(tree, g1, GroupFields{Required: boolp(true)})

	report := Validate(tree)
	assert.Contains(t, codes(report.Warnings), CodeRequiredGroupNoDefault)

	// Flagging a default clears the warning.
	tree = UpdateOption(tree, o1, OptionFields{IsDefault: boolp(true)})
	assert.NotContains(t, codes(Validate(tree).Warnings), CodeRequiredGroupNoDefault)

	// A non-required group never warns.
	tree = UpdateGroup(tree, g1, GroupFields{Required: boolp(false)})
	tree = UpdateOption(tree, o1, OptionFields{IsDefault: boolp(false)})
	assert.NotContains(t, codes(Validate(tree).Warnings), CodeRequiredGroupNoDefault)
}

// A broken tree yields the full report, not just the first hit.
func TestValidateReportsEveryFinding(t *testing.T) {
	tree := &Tree{
		SchemaVersion: SchemaVersion,
		RootNodeIDs:   []string{},
		Nodes: []Node{
			{ID: "o1", Type: NodeTypeInput, Status: StatusEnabled}, // no selection key, orphan
		},
		Edges: []Edge{
			{ID: "e1", FromNodeID: "ghost", ToNodeID: "o1",
				Kind: EdgeConditional, Status: StatusEnabled}, // dangling + no condition
		},
	}
	report := Validate(tree)
	got := codes(report.Errors)
	assert.Contains(t, got, CodeTreeNoRoots)
	assert.Contains(t, got, CodeInputMissingSelection)
	assert.Contains(t, got, CodeEdgeEndpointMissing)
	assert.Contains(t, got, CodeEdgeConditionInvalid)
	assert.Contains(t, got, CodeOrphanOption)
}

func TestReportFindings(t *testing.T) {
	r := &Report{
		Errors:   []Finding{{Code: "A", Severity: SeverityError}},
		Warnings: []Finding{{Code: "B", Severity: SeverityWarning}},
	}
	assert.Equal(t, []string{"A", "B"}, codes(r.Findings()))
	assert.False(t, r.Clean())
}
