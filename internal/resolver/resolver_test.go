package resolver

import (
	"testing"

	"github.com/jward/pawnls/internal/hir"
	"github.com/jward/pawnls/internal/itemtree"
	"github.com/jward/pawnls/internal/syntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildFixture(t *testing.T, src string) (*itemtree.Tree, *itemtree.DefMap, *hir.Body, *syntax.Node) {
	t.Helper()
	root, diags := syntax.Parse([]byte(src))
	require.Empty(t, diags)
	tree, def, _ := itemtree.Build(root)
	var fn *syntax.Node
	for _, c := range root.Children() {
		if c.Kind() == syntax.KindFunctionDeclaration {
			fn = c
		}
	}
	require.NotNil(t, fn)
	return tree, def, hir.Lower(fn), fn
}

func TestResolveLocalBindingShadowsGlobal(t *testing.T) {
	_, def, body, _ := buildFixture(t, "int x; void f(int x) { }")
	r := ForPoint("file1", def, body, body.RootScope)
	res := r.Resolve("x")
	assert.Equal(t, LocalBinding, res.Kind)
}

func TestResolveFallsBackToGlobalWhenNoLocalBinding(t *testing.T) {
	_, def, body, _ := buildFixture(t, "int x; void f() { }")
	r := ForPoint("file1", def, body, body.RootScope)
	res := r.Resolve("x")
	require.Equal(t, GlobalItem, res.Kind)
	assert.Equal(t, "file1", res.FileId)
}

func TestResolveUnknownNameReturnsNotFound(t *testing.T) {
	_, def, body, _ := buildFixture(t, "void f() { }")
	r := ForPoint("file1", def, body, body.RootScope)
	res := r.Resolve("nope")
	assert.Equal(t, NotFound, res.Kind)
}

func TestNewWithoutExpressionScopeOnlyResolvesGlobals(t *testing.T) {
	_, def, _, _ := buildFixture(t, "int x; void f() { }")
	r := New("file1", def)
	res := r.Resolve("x")
	assert.Equal(t, GlobalItem, res.Kind)
}
