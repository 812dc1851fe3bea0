// Package itemtree collects a file's top-level declarations into per-kind
// arenas and builds the simple-name definition map, per spec.md §4.6.
// Grounded on original_source's crates/parser/src/enum_parser.rs (per-kind
// item collection, "last wins" declarations map) generalised from its
// single-pass tree-sitter walk to a walk over internal/syntax's CST.
package itemtree

import (
	"github.com/jward/pawnls/internal/diag"
	"github.com/jward/pawnls/internal/syntax"
)

// ItemKind tags a top-level declaration's category, per spec.md §4.6.
type ItemKind uint8

const (
	KindFunction ItemKind = iota
	KindGlobal
	KindEnumStruct
	KindMethodmap
	KindEnum
	KindTypedef
	KindTypeset
	KindFuncenum
	KindFunctag
	KindMacro
)

func (k ItemKind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindGlobal:
		return "global"
	case KindEnumStruct:
		return "enum-struct"
	case KindMethodmap:
		return "methodmap"
	case KindEnum:
		return "enum"
	case KindTypedef:
		return "typedef"
	case KindTypeset:
		return "typeset"
	case KindFuncenum:
		return "funcenum"
	case KindFunctag:
		return "functag"
	case KindMacro:
		return "macro"
	default:
		return "unknown"
	}
}

// ItemId is a stable, within-file id. Stability requirement (spec.md §4.6):
// re-running the item tree on a file whose parse tree only had *body*
// changes must reproduce the same ids — satisfied here because ids are
// assigned purely by declaration order among same-kind siblings, and a
// body-only edit never changes that order.
type ItemId struct {
	Kind ItemKind
	Idx  int
}

// Item is one top-level declaration.
type Item struct {
	Id     ItemId
	Name   string
	Node   *syntax.Node // the declaration's CST node (FunctionDeclaration, Enum, ...)
	Parent string       // parent methodmap name, for an inherited-from link; "" if none/unresolved
}

// Tree is one file's item tree: one arena per kind.
type Tree struct {
	Items map[ItemKind][]Item
}

// DefMap maps a simple name to the item that last defined it, per spec.md
// §4.6 "last wins"; duplicates are surfaced as diagnostics by Build.
type DefMap struct {
	ByName map[string]ItemId
}

// Build walks file's CST root, collecting top-level items into a Tree and a
// DefMap. Diagnostics record duplicate-name definitions (last wins, but the
// shadowing is surfaced) per spec.md §4.6.
func Build(root *syntax.Node) (*Tree, *DefMap, []diag.Diagnostic) {
	tree := &Tree{Items: make(map[ItemKind][]Item)}
	def := &DefMap{ByName: make(map[string]ItemId)}
	var diags []diag.Diagnostic

	record := func(kind ItemKind, name string, node *syntax.Node) {
		id := ItemId{Kind: kind, Idx: len(tree.Items[kind])}
		item := Item{Id: id, Name: name, Node: node}
		if kind == KindMethodmap {
			if parent := node.ChildByField("parent"); parent != nil {
				item.Parent = parent.Text()
			}
		}
		tree.Items[kind] = append(tree.Items[kind], item)

		if _, exists := def.ByName[name]; exists {
			diags = append(diags, diag.Diagnostic{
				Kind:    diag.DuplicateDefinition,
				Range:   diag.Range{Start: node.ByteRange().Start, End: node.ByteRange().End},
				Message: "duplicate top-level definition",
				Name:    name,
			})
		}
		def.ByName[name] = id
	}

	for _, child := range root.Children() {
		kind, ok := classify(child)
		if !ok {
			continue
		}
		if kind == KindGlobal {
			// A single statement may comma-declare several globals; each
			// declarator is its own item.
			for _, declarator := range child.Children() {
				if id := declarator.ChildByField("name"); id != nil && id.Text() != "" {
					record(KindGlobal, id.Text(), declarator)
				}
			}
			continue
		}
		name := nameOf(child)
		if name == "" {
			continue
		}
		record(kind, name, child)
	}

	return tree, def, diags
}

func classify(n *syntax.Node) (ItemKind, bool) {
	switch n.Kind() {
	case syntax.KindFunctionDeclaration:
		return KindFunction, true
	case syntax.KindEnumStruct:
		return KindEnumStruct, true
	case syntax.KindEnum:
		return KindEnum, true
	case syntax.KindMethodmap:
		return KindMethodmap, true
	case syntax.KindTypedef:
		return KindTypedef, true
	case syntax.KindTypeset:
		return KindTypeset, true
	case syntax.KindFuncenum:
		return KindFuncenum, true
	case syntax.KindFunctag:
		return KindFunctag, true
	case syntax.KindVariableDeclarationStatement:
		return KindGlobal, true
	default:
		return 0, false
	}
}

// nameOf returns a non-global declaration's name.
func nameOf(n *syntax.Node) string {
	if id := n.ChildByField("name"); id != nil {
		return id.Text()
	}
	return ""
}

// Get returns the item for id, or the zero Item and false if out of range.
func (t *Tree) Get(id ItemId) (Item, bool) {
	items := t.Items[id.Kind]
	if id.Idx < 0 || id.Idx >= len(items) {
		return Item{}, false
	}
	return items[id.Idx], true
}

// Resolve looks up name in the definition map.
func (d *DefMap) Resolve(name string) (ItemId, bool) {
	id, ok := d.ByName[name]
	return id, ok
}
