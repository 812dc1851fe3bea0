package infer

import (
	"testing"

	"github.com/jward/pawnls/internal/itemtree"
	"github.com/jward/pawnls/internal/syntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveMemberWalksInheritanceChain(t *testing.T) {
	root, diags := syntax.Parse([]byte(`
methodmap Entity { }
methodmap Player < Entity { }
methodmap Zombie < Player { }
`))
	require.Empty(t, diags)
	tree, _, _ := itemtree.Build(root)
	mm := NewMethodmaps(tree)

	memberOf := func(methodmap, member string) bool {
		return methodmap == "Entity" && member == "IsValid"
	}

	owner, ok := mm.ResolveMember("Zombie", "IsValid", memberOf)
	require.True(t, ok)
	assert.Equal(t, "Entity", owner)
}

func TestResolveMemberReturnsFalseWhenNoAncestorOwnsMember(t *testing.T) {
	root, _ := syntax.Parse([]byte(`methodmap Entity { }`))
	tree, _, _ := itemtree.Build(root)
	mm := NewMethodmaps(tree)

	_, ok := mm.ResolveMember("Entity", "Missing", func(string, string) bool { return false })
	assert.False(t, ok)
}

func TestResolveMemberDetectsCycleWithoutInfiniteLoop(t *testing.T) {
	root, _ := syntax.Parse([]byte(`
methodmap A < B { }
methodmap B < A { }
`))
	tree, _, _ := itemtree.Build(root)
	mm := NewMethodmaps(tree)

	_, ok := mm.ResolveMember("A", "Anything", func(string, string) bool { return false })
	assert.False(t, ok)
}

func TestResolveMemberUnknownParentStopsWalk(t *testing.T) {
	root, _ := syntax.Parse([]byte(`methodmap Zombie < Ghost { }`))
	tree, _, _ := itemtree.Build(root)
	mm := NewMethodmaps(tree)

	_, ok := mm.ResolveMember("Zombie", "X", func(methodmap, member string) bool {
		return methodmap == "Ghost"
	})
	assert.False(t, ok, "Ghost is never indexed since it has no methodmap declaration of its own")
}
