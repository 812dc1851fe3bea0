package itemtree

import (
	"testing"

	"github.com/jward/pawnls/internal/diag"
	"github.com/jward/pawnls/internal/syntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCollectsFunctionsAndGlobals(t *testing.T) {
	root, _ := syntax.Parse([]byte(`
int gCount;
void OnPluginStart() {}
void OnClientConnect() {}
`))
	tree, def, diags := Build(root)
	assert.Empty(t, diags)

	require.Len(t, tree.Items[KindFunction], 2)
	assert.Equal(t, "OnPluginStart", tree.Items[KindFunction][0].Name)
	assert.Equal(t, "OnClientConnect", tree.Items[KindFunction][1].Name)

	id, ok := def.Resolve("gCount")
	require.True(t, ok)
	assert.Equal(t, KindGlobal, id.Kind)
}

func TestBuildAssignsStableIdsByDeclarationOrder(t *testing.T) {
	root, _ := syntax.Parse([]byte(`
void First() {}
void Second() {}
`))
	tree, _, _ := Build(root)
	require.Len(t, tree.Items[KindFunction], 2)
	assert.Equal(t, ItemId{Kind: KindFunction, Idx: 0}, tree.Items[KindFunction][0].Id)
	assert.Equal(t, ItemId{Kind: KindFunction, Idx: 1}, tree.Items[KindFunction][1].Id)
}

func TestBuildSurfacesDuplicateDefinitionButKeepsLastWins(t *testing.T) {
	root, _ := syntax.Parse([]byte(`
void Dup() {}
void Dup() {}
`))
	tree, def, diags := Build(root)
	require.Len(t, tree.Items[KindFunction], 2)

	require.Len(t, diags, 1)
	assert.Equal(t, diag.DuplicateDefinition, diags[0].Kind)
	assert.Equal(t, "Dup", diags[0].Name)

	id, ok := def.Resolve("Dup")
	require.True(t, ok)
	assert.Equal(t, 1, id.Idx, "last definition should win in the def map")
}

func TestMethodmapRecordsParentLink(t *testing.T) {
	root, _ := syntax.Parse([]byte(`methodmap Zombie < Player { }`))
	tree, _, _ := Build(root)
	require.Len(t, tree.Items[KindMethodmap], 1)
	assert.Equal(t, "Player", tree.Items[KindMethodmap][0].Parent)
}

func TestGetReturnsFalseForOutOfRangeId(t *testing.T) {
	tree := &Tree{Items: make(map[ItemKind][]Item)}
	_, ok := tree.Get(ItemId{Kind: KindFunction, Idx: 3})
	assert.False(t, ok)
}
