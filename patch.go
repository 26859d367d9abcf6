package optiontree

// Patch operations compute a new tree from an existing one plus an edit
// intent. They never mutate their input, and they are deliberately
// permissive: referencing an id that does not exist in the tree is a no-op
// returning the input unchanged, never an error, so patches stay composable
// and idempotent under retry. Existence checks belong to the caller via the
// traversal methods; structural enforcement belongs to Validate at publish
// time.

// GroupFields is a partial update for a group node. Nil fields are left
// untouched. MultiSelect maps to the group's input valueType: ARRAY when
// multi-select, ENUM otherwise.
type GroupFields struct {
	Label       *string
	Description *string
	Required    *bool
	MultiSelect *bool
}

// OptionFields is a partial update for an option node. Type maps onto the
// input valueType: "numeric" -> NUMBER, "checkbox" -> BOOLEAN, anything
// else -> ENUM.
type OptionFields struct {
	Label       *string
	Description *string
	Required    *bool
	IsDefault   *bool
	Type        *string
}

// AddGroup appends a new enabled top-level group and returns the new tree
// and the group's id.
func AddGroup(t *Tree) (*Tree, string) {
	out := t.clone()
	id := newID(takenIDs(t))
	out.Nodes = append(out.Nodes, Node{
		ID:     id,
		Type:   NodeTypeGroup,
		Status: StatusEnabled,
		Key:    "group_" + shortID(id),
		Input: &InputSpec{
			SelectionKey: "sel_" + shortID(id),
			ValueType:    ValueEnum,
		},
	})
	out.RootNodeIDs = append(out.RootNodeIDs, id)
	return out, id
}

// UpdateGroup applies the supplied fields to the matching group node.
// Unknown ids and non-group nodes pass through as a no-op.
func UpdateGroup(t *Tree, groupID string, f GroupFields) *Tree {
	idx := nodeIndex(t, groupID)
	if idx < 0 || t.Nodes[idx].Type != NodeTypeGroup {
		return t
	}
	out := t.clone()
	n := out.Nodes[idx]
	if f.Label != nil {
		n.Label = *f.Label
	}
	if f.Description != nil {
		n.Description = *f.Description
	}
	if n.Input == nil {
		n.Input = &InputSpec{SelectionKey: "sel_" + shortID(n.ID), ValueType: ValueEnum}
	} else {
		in := *n.Input
		n.Input = &in
	}
	if f.Required != nil {
		n.Input.Required = *f.Required
	}
	if f.MultiSelect != nil {
		if *f.MultiSelect {
			n.Input.ValueType = ValueArray
		} else {
			n.Input.ValueType = ValueEnum
		}
	}
	out.Nodes[idx] = n
	return out
}

// DeleteGroup soft-deletes the group, every node reachable from it via
// structural edges, and every edge originating from the group or from any of
// its now-deleted descendants. Entries are never removed from the document.
// The group is dropped from the root list so remaining roots stay meaningful.
func DeleteGroup(t *Tree, groupID string) *Tree {
	idx := nodeIndex(t, groupID)
	if idx < 0 || t.Nodes[idx].Type != NodeTypeGroup {
		return t
	}

	// Collect the structural closure of the group.
	doomed := map[string]bool{groupID: true}
	queue := []string{groupID}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range t.Edges {
			if e.Kind != EdgeStructural || e.Status == StatusDeleted || e.FromNodeID != cur {
				continue
			}
			if !doomed[e.ToNodeID] {
				doomed[e.ToNodeID] = true
				queue = append(queue, e.ToNodeID)
			}
		}
	}

	out := t.clone()
	for i := range out.Nodes {
		if doomed[out.Nodes[i].ID] {
			out.Nodes[i].Status = StatusDeleted
		}
	}
	for i := range out.Edges {
		if doomed[out.Edges[i].FromNodeID] || doomed[out.Edges[i].ToNodeID] {
			out.Edges[i].Status = StatusDeleted
		}
	}
	roots := out.RootNodeIDs[:0]
	for _, id := range out.RootNodeIDs {
		if id != groupID {
			roots = append(roots, id)
		}
	}
	out.RootNodeIDs = roots
	return out
}

// AddOption appends a new enabled INPUT node under groupID, wired in with a
// structural edge, and returns the new tree and the option's id. The
// selection key is derived from the fresh id so the node satisfies the
// selection-key invariant from the moment it exists.
func AddOption(t *Tree, groupID string) (*Tree, string) {
	idx := nodeIndex(t, groupID)
	if idx < 0 || t.Nodes[idx].Type != NodeTypeGroup {
		return t, ""
	}
	out := t.clone()
	taken := takenIDs(t)
	id := newID(taken)
	taken[id] = true
	edgeID := newID(taken)

	out.Nodes = append(out.Nodes, Node{
		ID:     id,
		Type:   NodeTypeInput,
		Status: StatusEnabled,
		Key:    "option_" + shortID(id),
		Input: &InputSpec{
			SelectionKey: "sel_" + shortID(id),
			ValueType:    ValueEnum,
		},
	})
	out.Edges = append(out.Edges, Edge{
		ID:         edgeID,
		FromNodeID: groupID,
		ToNodeID:   id,
		Kind:       EdgeStructural,
		Status:     StatusDisabled,
		Priority:   0,
	})
	return out, id
}

// UpdateOption applies the supplied fields to the matching INPUT node.
// Unknown ids and non-input nodes pass through as a no-op.
func UpdateOption(t *Tree, optionID string, f OptionFields) *Tree {
	idx := nodeIndex(t, optionID)
	if idx < 0 || t.Nodes[idx].Type != NodeTypeInput {
		return t
	}
	out := t.clone()
	n := out.Nodes[idx]
	if f.Label != nil {
		n.Label = *f.Label
	}
	if f.Description != nil {
		n.Description = *f.Description
	}
	if n.Input == nil {
		n.Input = &InputSpec{SelectionKey: "sel_" + shortID(n.ID), ValueType: ValueEnum}
	} else {
		in := *n.Input
		n.Input = &in
	}
	if f.Required != nil {
		n.Input.Required = *f.Required
	}
	if f.IsDefault != nil {
		n.Input.IsDefault = *f.IsDefault
	}
	if f.Type != nil {
		switch *f.Type {
		case "numeric":
			n.Input.ValueType = ValueNumber
		case "checkbox":
			n.Input.ValueType = ValueBoolean
		default:
			n.Input.ValueType = ValueEnum
		}
	}
	out.Nodes[idx] = n
	return out
}

// DeleteOption soft-deletes the option and every edge touching it, in either
// direction. Deleting an already-deleted option changes nothing observable.
func DeleteOption(t *Tree, optionID string) *Tree {
	idx := nodeIndex(t, optionID)
	if idx < 0 || t.Nodes[idx].Type != NodeTypeInput {
		return t
	}
	out := t.clone()
	out.Nodes[idx].Status = StatusDeleted
	for i := range out.Edges {
		if out.Edges[i].FromNodeID == optionID || out.Edges[i].ToNodeID == optionID {
			out.Edges[i].Status = StatusDeleted
		}
	}
	return out
}

func nodeIndex(t *Tree, id string) int {
	for i := range t.Nodes {
		if t.Nodes[i].ID == id {
			return i
		}
	}
	return -1
}
