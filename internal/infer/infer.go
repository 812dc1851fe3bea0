// Package infer resolves field accesses and method calls against a
// receiver's declared type, walking methodmap "<" inheritance chains, per
// spec.md §4.9.
package infer

import "github.com/jward/pawnls/internal/itemtree"

// Methodmaps indexes a project's methodmap items by name so inheritance
// chains can be walked across files — inheritance is resolved after
// item-tree construction, per spec.md §4.9; during construction the parent
// link is held as an unresolved name (itemtree.Item.Parent).
type Methodmaps struct {
	ByName map[string]itemtree.Item
}

// NewMethodmaps indexes every methodmap item in tree under name.
func NewMethodmaps(tree *itemtree.Tree) *Methodmaps {
	m := &Methodmaps{ByName: make(map[string]itemtree.Item)}
	for _, item := range tree.Items[itemtree.KindMethodmap] {
		m.ByName[item.Name] = item
	}
	return m
}

// ResolveMember walks receiverType's "<" inheritance chain looking for
// member among each methodmap's declared members (memberOf is supplied by
// the caller since member-kind lookup, e.g. method vs property, belongs to
// the item tree's per-methodmap children, not to this package). It returns
// the methodmap in the chain that owns the member, or false if none does
// or a cycle is detected.
func (m *Methodmaps) ResolveMember(receiverType, member string, memberOf func(methodmap, member string) bool) (owner string, ok bool) {
	visited := make(map[string]bool)
	cur := receiverType
	for cur != "" && !visited[cur] {
		visited[cur] = true
		mm, found := m.ByName[cur]
		if !found {
			return "", false
		}
		if memberOf(cur, member) {
			return cur, true
		}
		cur = mm.Parent
	}
	return "", false
}
