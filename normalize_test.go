package optiontree

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalArrayShapedDocument(t *testing.T) {
	raw := `{
		"id": "t1",
		"productId": "p1",
		"schemaVersion": 2,
		"status": "DRAFT",
		"nodes": [{"id": "g1", "type": "GROUP", "status": "ENABLED"}],
		"edges": [],
		"rootNodeIds": ["g1"]
	}`
	var tree Tree
	require.NoError(t, json.Unmarshal([]byte(raw), &tree))
	assert.Equal(t, "t1", tree.ID)
	assert.Equal(t, "p1", tree.ProductID)
	require.Len(t, tree.Nodes, 1)
	assert.Equal(t, "g1", tree.Nodes[0].ID)
	assert.Equal(t, []string{"g1"}, tree.RootNodeIDs)
}

func TestUnmarshalMapShapedDocument(t *testing.T) {
	// Earlier schema revisions keyed nodes/edges by id and omitted the id
	// from the entry itself.
	raw := `{
		"nodes": {
			"g1": {"type": "GROUP", "status": "ENABLED"},
			"o1": {"type": "INPUT", "status": "ENABLED",
			       "input": {"selectionKey": "sel_o1", "valueType": "ENUM"}}
		},
		"edges": {
			"e1": {"fromNodeId": "g1", "toNodeId": "o1", "status": "DISABLED"}
		},
		"rootNodeIds": ["g1"]
	}`
	var tree Tree
	require.NoError(t, json.Unmarshal([]byte(raw), &tree))

	require.Len(t, tree.Nodes, 2)
	assert.Equal(t, "g1", tree.Nodes[0].ID)
	assert.Equal(t, "o1", tree.Nodes[1].ID)
	require.Len(t, tree.Edges, 1)
	assert.Equal(t, "e1", tree.Edges[0].ID)
}

func TestUnmarshalDefaultsMissingSchemaVersion(t *testing.T) {
	var tree Tree
	require.NoError(t, json.Unmarshal([]byte(`{"nodes": [], "edges": []}`), &tree))
	assert.Equal(t, SchemaVersion, tree.SchemaVersion)
	assert.NotNil(t, tree.RootNodeIDs)
}

func TestUnmarshalInfersEdgeKind(t *testing.T) {
	tests := []struct {
		name string
		edge string
		want EdgeKind
	}{
		{
			name: "disabled without condition is structural",
			edge: `{"id": "e1", "fromNodeId": "a", "toNodeId": "b", "status": "DISABLED"}`,
			want: EdgeStructural,
		},
		{
			name: "enabled is conditional",
			edge: `{"id": "e1", "fromNodeId": "a", "toNodeId": "b", "status": "ENABLED",
			        "condition": {"selectionKey": "k", "operator": "eq"}}`,
			want: EdgeConditional,
		},
		{
			name: "condition implies conditional even when status is wrong",
			edge: `{"id": "e1", "fromNodeId": "a", "toNodeId": "b", "status": "DISABLED",
			        "condition": {"selectionKey": "k", "operator": "eq"}}`,
			want: EdgeConditional,
		},
		{
			name: "explicit kind wins",
			edge: `{"id": "e1", "fromNodeId": "a", "toNodeId": "b", "status": "ENABLED", "kind": "STRUCTURAL"}`,
			want: EdgeStructural,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tree Tree
			require.NoError(t, json.Unmarshal([]byte(`{"edges": [`+tt.edge+`]}`), &tree))
			require.Len(t, tree.Edges, 1)
			assert.Equal(t, tt.want, tree.Edges[0].Kind)
		})
	}
}

func TestUnmarshalNullCollections(t *testing.T) {
	var tree Tree
	require.NoError(t, json.Unmarshal([]byte(`{"nodes": null, "edges": null, "rootNodeIds": null}`), &tree))
	assert.Empty(t, tree.Nodes)
	assert.Empty(t, tree.Edges)
	assert.Empty(t, tree.RootNodeIDs)
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	var tree Tree
	assert.Error(t, json.Unmarshal([]byte(`{"nodes": 42}`), &tree))
	assert.Error(t, json.Unmarshal([]byte(`{"edges": "nope"}`), &tree))
}

func TestMarshalRoundTrip(t *testing.T) {
	orig := fixtureTree()
	data, err := json.Marshal(orig)
	require.NoError(t, err)

	var back Tree
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, orig.Nodes, back.Nodes)
	assert.Equal(t, orig.Edges, back.Edges)
	assert.Equal(t, orig.RootNodeIDs, back.RootNodeIDs)
}
