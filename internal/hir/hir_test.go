package hir

import (
	"testing"

	"github.com/jward/pawnls/internal/syntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lowerSource(t *testing.T, src string) (*syntax.Node, *Body) {
	t.Helper()
	root, diags := syntax.Parse([]byte(src))
	require.Empty(t, diags)
	require.NotEmpty(t, root.Children())
	fn := root.Children()[0]
	require.Equal(t, syntax.KindFunctionDeclaration, fn.Kind())
	return fn, Lower(fn)
}

func TestLowerBindsParameterInRootScope(t *testing.T) {
	_, body := lowerSource(t, "void f(int a) { }")
	b, ok := body.ResolveNameInScope(body.RootScope, "a")
	require.True(t, ok)
	assert.Equal(t, "a", b.Name)
	assert.Equal(t, ExprBinding, body.Exprs[b.Expr].Kind)
}

func TestInnerBlockShadowsOuterBinding(t *testing.T) {
	// void f(int a) { { int a; a = 1; } a = 2; }
	fn, body := lowerSource(t, "void f(int a) { { int a; a = 1; } a = 2; }")

	outerBlock := fn.ChildByField("body")
	require.NotNil(t, outerBlock)
	stmts := outerBlock.Children()
	require.Len(t, stmts, 2, "inner block statement, then 'a = 2;'")

	innerBlockNode := stmts[0]
	innerAssignNode := innerBlockNode.Children()[1] // "a = 1;" expression statement
	outerAssignNode := stmts[1]                     // "a = 2;" expression statement

	innerAssignExprId, ok := body.NodeToExpr[innerAssignNode.ChildByField("expression")]
	require.True(t, ok)
	innerLeft := body.Exprs[innerAssignExprId].Children[0]
	innerScope := body.Exprs[innerLeft].Scope
	innerBinding, ok := body.ResolveNameInScope(innerScope, "a")
	require.True(t, ok)

	outerAssignExprId, ok := body.NodeToExpr[outerAssignNode.ChildByField("expression")]
	require.True(t, ok)
	outerLeft := body.Exprs[outerAssignExprId].Children[0]
	outerScope := body.Exprs[outerLeft].Scope
	outerBinding, ok := body.ResolveNameInScope(outerScope, "a")
	require.True(t, ok)

	assert.NotEqual(t, innerBinding.Expr, outerBinding.Expr,
		"the inner 'a = 1' must bind to the block-local declaration, the outer 'a = 2' to the parameter")
	assert.Equal(t, ExprBinding, body.Exprs[outerBinding.Expr].Kind)
	assert.Equal(t, body.RootScope, body.ScopeFor(outerBinding.Expr))
}

func TestResolveNameInScopeReturnsFalseForUnknownName(t *testing.T) {
	_, body := lowerSource(t, "void f() { }")
	_, ok := body.ResolveNameInScope(body.RootScope, "nope")
	assert.False(t, ok)
}

func TestScopeChainEndsAtRoot(t *testing.T) {
	_, body := lowerSource(t, "void f() { { { } } }")
	leafScope := ScopeId(len(body.Scopes) - 1)
	chain := body.ScopeChain(leafScope)
	assert.Equal(t, body.RootScope, chain[len(chain)-1])
}
