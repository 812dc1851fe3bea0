package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFunctionDeclarationFields(t *testing.T) {
	root, diags := Parse([]byte("int Add(int a, int b) { return a + b; }"))
	require.NotNil(t, root)
	assert.Empty(t, diags)

	require.Len(t, root.Children(), 1)
	fn := root.Children()[0]
	assert.Equal(t, KindFunctionDeclaration, fn.Kind())

	name := fn.ChildByField("name")
	require.NotNil(t, name)
	assert.Equal(t, "Add", name.Text())

	params := fn.ChildByField("parameters")
	require.NotNil(t, params)
	assert.Equal(t, KindParameterList, params.Kind())
	assert.Len(t, params.Children(), 2)

	body := fn.ChildByField("body")
	require.NotNil(t, body)
	assert.Equal(t, KindBlock, body.Kind())
}

func TestParseMalformedInputProducesErrorNode(t *testing.T) {
	root, _ := Parse([]byte("int Broken( {"))
	var sawError bool
	root.Walk(func(n *Node) bool {
		if n.IsError() {
			sawError = true
		}
		return true
	})
	assert.True(t, sawError, "malformed input should produce an ERROR node rather than panic")
}

func TestWalkVisitsEveryNodePreOrder(t *testing.T) {
	root, _ := Parse([]byte("int x = 1;"))
	var kinds []Kind
	root.Walk(func(n *Node) bool {
		kinds = append(kinds, n.Kind())
		return true
	})
	assert.Equal(t, KindFile, kinds[0], "Walk must visit the root first")
	assert.Greater(t, len(kinds), 1)
}

func TestChildByFieldReturnsNilWhenAbsent(t *testing.T) {
	root, _ := Parse([]byte("int x;"))
	assert.Nil(t, root.ChildByField("nonexistent"))
}
