package pawnls

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenFileIsImmediatelyQueryable(t *testing.T) {
	e := New(nopLoader{})
	file := e.OpenFile("main.sp", true, []byte("void f() { }"))

	root, err := e.Query().Parse(context.Background(), file)
	require.NoError(t, err)
	assert.NotNil(t, root)
}

func TestChangeFileInvalidatesItemTree(t *testing.T) {
	e := New(nopLoader{})
	file := e.OpenFile("main.sp", true, []byte("void f() { }"))
	q := e.Query()
	ctx := context.Background()

	tree1, err := q.ItemTree(ctx, file)
	require.NoError(t, err)
	require.Len(t, tree1.Items[0], 1) // KindFunction == 0

	e.ChangeFile("main.sp", true, []byte("void f() { } void g() { }"))

	tree2, err := q.ItemTree(ctx, file)
	require.NoError(t, err)
	assert.Len(t, tree2.Items[0], 2)
}

func TestCloseFileRemovesItFromKnownFiles(t *testing.T) {
	e := New(nopLoader{})
	e.OpenFile("main.sp", true, []byte("void f() { }"))
	require.Len(t, e.Vfs().KnownFiles(), 1)

	e.CloseFile("main.sp")
	assert.Empty(t, e.Vfs().KnownFiles())
}

func TestWithParseCacheSizeAppliesToQueryEngine(t *testing.T) {
	e := New(nopLoader{}, WithParseCacheSize(4))
	file := e.OpenFile("main.sp", true, []byte("void f() { }"))

	root, err := e.Query().Parse(context.Background(), file)
	require.NoError(t, err)
	assert.NotNil(t, root)
}
