// Package resolver walks a stack of file-global and expression scopes to
// resolve a name at a point in source, per spec.md §4.8.
package resolver

import (
	"github.com/jward/pawnls/internal/hir"
	"github.com/jward/pawnls/internal/itemtree"
)

// ResultKind tags what resolving a name found.
type ResultKind uint8

const (
	NotFound ResultKind = iota
	LocalBinding
	GlobalItem
)

// Result is a tagged name-resolution outcome, per spec.md §4.8.
type Result struct {
	Kind ResultKind

	// LocalBinding:
	BodyId hir.ExprId // the declaring expression (ExprBinding)

	// GlobalItem:
	FileId string // caller-assigned file identity; opaque to this package
	ItemId itemtree.ItemId
}

// scopeFrame is one level of the resolver's scope stack: either the
// file-global scope (backed by a DefMap) or one body's expression scope.
type scopeFrame struct {
	defMap *itemtree.DefMap
	fileId string

	body  *hir.Body
	scope hir.ScopeId
}

// Resolver is a stack of scopes, innermost (pushed last) searched first,
// per spec.md §4.8 "resolve(name) walks top-to-bottom; the first match
// wins."
type Resolver struct {
	frames []scopeFrame
}

// New creates a Resolver seeded with the file-global scope.
func New(fileId string, defMap *itemtree.DefMap) *Resolver {
	return &Resolver{frames: []scopeFrame{{defMap: defMap, fileId: fileId}}}
}

// PushExpressionScope adds body's scope chain from outermost to scope
// (the scope strictly enclosing the query point), per spec.md §4.8's
// resolver-construction recipe.
func (r *Resolver) PushExpressionScope(body *hir.Body, scope hir.ScopeId) {
	chain := body.ScopeChain(scope)
	for i := len(chain) - 1; i >= 0; i-- {
		r.frames = append(r.frames, scopeFrame{body: body, scope: chain[i]})
	}
}

// Resolve walks the scope stack top-to-bottom (innermost first), returning
// the first match.
func (r *Resolver) Resolve(name string) Result {
	for i := len(r.frames) - 1; i >= 0; i-- {
		f := r.frames[i]
		if f.body != nil {
			if b, ok := f.body.ResolveNameInScope(f.scope, name); ok {
				return Result{Kind: LocalBinding, BodyId: b.Expr}
			}
			continue
		}
		if f.defMap != nil {
			if id, ok := f.defMap.Resolve(name); ok {
				return Result{Kind: GlobalItem, FileId: f.fileId, ItemId: id}
			}
		}
	}
	return Result{Kind: NotFound}
}

// ForPoint builds a Resolver for a point inside body at scope, seeded with
// fileId's global scope and body's scope chain up to (and including) scope
// — the exact construction spec.md §4.8 describes for point-in-source
// queries. Memoisation by (body id, scope id) is the caller's
// responsibility (the query engine layer), since this package has no
// notion of a body's identity beyond the *hir.Body pointer itself.
func ForPoint(fileId string, defMap *itemtree.DefMap, body *hir.Body, scope hir.ScopeId) *Resolver {
	r := New(fileId, defMap)
	if body != nil {
		r.PushExpressionScope(body, scope)
	}
	return r
}
