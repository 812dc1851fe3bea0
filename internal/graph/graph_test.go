package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/pawnls/internal/vfs"
)

func TestIncludeGraphRootPrefersScript(t *testing.T) {
	// Scenario: main.sp includes lib.inc. project_of(lib.inc) must return the
	// component rooted at main.sp, not at lib.inc.
	main := Node{File: 1, Extension: vfs.ExtensionScript}
	lib := Node{File: 2, Extension: vfs.ExtensionInclude}

	g := New()
	g.AddEdge(main, lib)

	proj := ProjectOf(g, lib.File)
	require.NotNil(t, proj)
	assert.Equal(t, main.File, proj.Root.File)
	assert.True(t, proj.Contains(main.File))
	assert.True(t, proj.Contains(lib.File))
}

func TestProjectOfUnknownFileReturnsNil(t *testing.T) {
	g := New()
	g.AddNode(Node{File: 1, Extension: vfs.ExtensionScript})
	assert.Nil(t, ProjectOf(g, 999))
}

func TestCyclicIncludesDoNotInfiniteLoop(t *testing.T) {
	root := Node{File: 1, Extension: vfs.ExtensionScript}
	a := Node{File: 2, Extension: vfs.ExtensionInclude}
	b := Node{File: 3, Extension: vfs.ExtensionInclude}

	g := New()
	g.AddEdge(root, a)
	g.AddEdge(a, b)
	g.AddEdge(b, a) // mutual include cycle between a and b

	var subgraphs []Subgraph
	assert.NotPanics(t, func() {
		subgraphs = g.FindSubgraphs()
	})
	require.Len(t, subgraphs, 1)
	assert.True(t, subgraphs[0].Contains(a.File))
	assert.True(t, subgraphs[0].Contains(b.File))
}

func TestRootlessMutualIncludeCycleStillYieldsASubgraph(t *testing.T) {
	// a.inc and b.inc include only each other: every node has an incoming
	// edge, so FindRoots reports no zero-in-degree root for this component.
	a := Node{File: 1, Extension: vfs.ExtensionInclude}
	b := Node{File: 2, Extension: vfs.ExtensionInclude}

	g := New()
	g.AddEdge(a, b)
	g.AddEdge(b, a)

	assert.Empty(t, g.FindRoots())

	subgraphs := g.FindSubgraphs()
	require.Len(t, subgraphs, 1)
	assert.True(t, subgraphs[0].Contains(a.File))
	assert.True(t, subgraphs[0].Contains(b.File))

	projA := ProjectOf(g, a.File)
	require.NotNil(t, projA)
	assert.True(t, projA.Contains(a.File))

	projB := ProjectOf(g, b.File)
	require.NotNil(t, projB)
	assert.True(t, projB.Contains(b.File))
}

func TestStandaloneFileIsItsOwnRoot(t *testing.T) {
	g := New()
	g.AddNode(Node{File: 1, Extension: vfs.ExtensionInclude})

	roots := g.FindRoots()
	require.Len(t, roots, 1)
	assert.Equal(t, vfs.FileId(1), roots[0].File)
}
