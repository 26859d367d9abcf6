package optiontree

// The editor never sees raw nodes and edges. It gets this one-way projection,
// regenerated on every tree change; edits against it are translated back into
// patch operations, never applied to the projection itself.

// ViewTags are derived booleans the editor uses for badges and filtering.
type ViewTags struct {
	HasPricing         bool `json:"hasPricing"`
	HasProductionFlags bool `json:"hasProductionFlags"`
	HasConditionals    bool `json:"hasConditionals"`
	HasWeight          bool `json:"hasWeight"`
}

// OptionView is the editor-facing shape of one INPUT node.
type OptionView struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Label     string    `json:"label"`
	ValueType ValueType `json:"valueType"`
	Required  bool      `json:"required"`
	IsDefault bool      `json:"isDefault"`
	Disabled  bool      `json:"disabled"`
	Tags      ViewTags  `json:"tags"`
}

// GroupView is the editor-facing shape of one GROUP node with its ordered
// option ids.
type GroupView struct {
	ID          string   `json:"id"`
	Key         string   `json:"key"`
	Label       string   `json:"label"`
	Required    bool     `json:"required"`
	MultiSelect bool     `json:"multiSelect"`
	OptionIDs   []string `json:"optionIds"`
	Tags        ViewTags `json:"tags"`
}

// EditorView is the full projection: root groups in order, options flat by id.
type EditorView struct {
	Groups  []GroupView           `json:"groups"`
	Options map[string]OptionView `json:"options"`
}

// ProjectEditorView builds the editor projection of a tree. Deleted nodes are
// excluded; deleted edges don't contribute ordering or conditional tags.
func ProjectEditorView(t *Tree) *EditorView {
	view := &EditorView{
		Groups:  []GroupView{},
		Options: map[string]OptionView{},
	}

	outgoingConditionals := make(map[string]bool)
	for _, e := range t.Edges {
		if e.Kind == EdgeConditional && e.Status == StatusEnabled {
			outgoingConditionals[e.FromNodeID] = true
		}
	}

	for _, rootID := range t.RootNodeIDs {
		g := t.NodeByID(rootID)
		if g == nil || g.Type != NodeTypeGroup || g.Status == StatusDeleted {
			continue
		}
		gv := GroupView{
			ID:        g.ID,
			Key:       g.Key,
			Label:     g.Label,
			OptionIDs: []string{},
			Tags:      nodeTags(g, outgoingConditionals),
		}
		if g.Input != nil {
			gv.Required = g.Input.Required
			gv.MultiSelect = g.Input.ValueType == ValueArray
		}
		for _, childID := range t.ChildrenOf(g.ID) {
			o := t.NodeByID(childID)
			if o == nil || o.Type != NodeTypeInput || o.Status == StatusDeleted {
				continue
			}
			gv.OptionIDs = append(gv.OptionIDs, o.ID)
			ov := OptionView{
				ID:       o.ID,
				Key:      o.Key,
				Label:    o.Label,
				Disabled: o.Status == StatusDisabled,
				Tags:     nodeTags(o, outgoingConditionals),
			}
			if o.Input != nil {
				ov.ValueType = o.Input.ValueType
				ov.Required = o.Input.Required
				ov.IsDefault = o.Input.IsDefault
			}
			view.Options[o.ID] = ov
		}
		view.Groups = append(view.Groups, gv)
	}
	return view
}

func nodeTags(n *Node, outgoingConditionals map[string]bool) ViewTags {
	tags := ViewTags{
		HasPricing:      len(n.PriceComponents) > 0,
		HasConditionals: outgoingConditionals[n.ID],
	}
	for _, m := range n.MaterialEffects {
		tags.HasProductionFlags = true
		if m.Kind == "weight" {
			tags.HasWeight = true
		}
	}
	return tags
}
