// Package graph builds the project's include graph and computes its
// connected-component "project" subgraphs, per spec.md §4.5. Grounded
// directly on original_source's crates/base-db/src/graph.rs: arena-indexed
// nodes/edges (no owning pointers, per spec.md §9 "Cyclic graphs"),
// find_roots by in/out-degree, and find_subgraphs by DFS with a visited set
// tolerating cycles.
package graph

import "github.com/jward/pawnls/internal/vfs"

// Node is one file in the include graph, identified solely by its FileId —
// extension is carried for root-preference but plays no part in equality.
type Node struct {
	File      vfs.FileId
	Extension vfs.Extension
}

// Edge is one resolved #include relationship.
type Edge struct {
	Source, Target Node
}

// Graph is the whole project's include graph: a flat edge/node set, no
// owning pointers, built fresh from known files and their resolved
// includes, per spec.md §4.5.
type Graph struct {
	Nodes map[vfs.FileId]Node
	Edges []Edge
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{Nodes: make(map[vfs.FileId]Node)}
}

// AddNode registers a known file, a no-op if already present.
func (g *Graph) AddNode(n Node) {
	if _, ok := g.Nodes[n.File]; !ok {
		g.Nodes[n.File] = n
	}
}

// AddEdge registers a resolved include from source to target, adding
// either endpoint as a node if not already known.
func (g *Graph) AddEdge(source, target Node) {
	g.AddNode(source)
	g.AddNode(target)
	g.Edges = append(g.Edges, Edge{Source: source, Target: target})
}

func (g *Graph) adjacentTargets() map[vfs.FileId][]vfs.FileId {
	adj := make(map[vfs.FileId][]vfs.FileId)
	for _, e := range g.Edges {
		adj[e.Source.File] = append(adj[e.Source.File], e.Target.File)
	}
	return adj
}

// FindRoots returns every node with zero incoming edges, or a standalone
// node with no edges at all, per graph.rs's find_roots.
func (g *Graph) FindRoots() []Node {
	type degree struct{ in, out int }
	deg := make(map[vfs.FileId]degree)
	for _, e := range g.Edges {
		d := deg[e.Source.File]
		d.out++
		deg[e.Source.File] = d
		d = deg[e.Target.File]
		d.in++
		deg[e.Target.File] = d
	}
	for id := range g.Nodes {
		if _, ok := deg[id]; !ok {
			deg[id] = degree{}
		}
	}

	var roots []Node
	for id, d := range deg {
		if d.in == 0 {
			roots = append(roots, g.Nodes[id])
		}
	}
	return roots
}

// Subgraph is one connected component, identified by its root.
type Subgraph struct {
	Root  Node
	Nodes map[vfs.FileId]Node
}

// Contains reports whether id belongs to this subgraph.
func (s *Subgraph) Contains(id vfs.FileId) bool {
	_, ok := s.Nodes[id]
	return ok
}

func (g *Graph) dfs(root vfs.FileId, adj map[vfs.FileId][]vfs.FileId, visited map[vfs.FileId]bool, out map[vfs.FileId]Node) {
	if visited[root] {
		return
	}
	visited[root] = true
	if n, ok := g.Nodes[root]; ok {
		out[root] = n
	}
	for _, target := range adj[root] {
		g.dfs(target, adj, visited, out)
	}
}

// FindSubgraphs computes one connected component per root found by
// FindRoots, tolerating cycles via a visited set in the DFS. A component
// entirely made of mutual includes (every node has an incoming edge) has no
// zero-in-degree root for FindRoots to report, so after the root-rooted
// pass it walks whatever nodes remain unreached and synthesizes one
// subgraph per such component, rooted at a script-extension node when the
// component has one.
func (g *Graph) FindSubgraphs() []Subgraph {
	adj := g.adjacentTargets()
	var subgraphs []Subgraph
	reached := make(map[vfs.FileId]bool)

	for _, root := range g.FindRoots() {
		nodes := make(map[vfs.FileId]Node)
		visited := make(map[vfs.FileId]bool)
		g.dfs(root.File, adj, visited, nodes)
		nodes[root.File] = root
		for id := range nodes {
			reached[id] = true
		}
		subgraphs = append(subgraphs, Subgraph{Root: root, Nodes: nodes})
	}

	grouped := make(map[vfs.FileId]bool)
	for id := range g.Nodes {
		if reached[id] || grouped[id] {
			continue
		}
		nodes := make(map[vfs.FileId]Node)
		g.dfs(id, adj, grouped, nodes)
		nodes[id] = g.Nodes[id]

		root := g.Nodes[id]
		for _, n := range nodes {
			if n.Extension == vfs.ExtensionScript {
				root = n
				break
			}
		}
		subgraphs = append(subgraphs, Subgraph{Root: root, Nodes: nodes})
	}

	return subgraphs
}

// ProjectOf returns the subgraph containing file, preferring one whose root
// has script extension over one whose root has include extension, per
// spec.md §4.5 "project_of(FileId) semantics". Returns nil if file belongs
// to no component.
func ProjectOf(g *Graph, file vfs.FileId) *Subgraph {
	subgraphs := g.FindSubgraphs()

	var includeRooted *Subgraph
	for i := range subgraphs {
		sg := &subgraphs[i]
		if !sg.Contains(file) {
			continue
		}
		if sg.Root.Extension == vfs.ExtensionScript {
			return sg
		}
		if includeRooted == nil {
			includeRooted = sg
		}
	}
	return includeRooted
}
