package pawnls

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jward/pawnls/internal/diag"
	"github.com/jward/pawnls/internal/graph"
	"github.com/jward/pawnls/internal/hir"
	"github.com/jward/pawnls/internal/itemtree"
	"github.com/jward/pawnls/internal/lexer"
	"github.com/jward/pawnls/internal/preprocessor"
	"github.com/jward/pawnls/internal/qengine"
	"github.com/jward/pawnls/internal/resolver"
	"github.com/jward/pawnls/internal/syntax"
	"github.com/jward/pawnls/internal/vfs"
)

// QueryBuilder provides the position-driven and structural query API over
// an Engine's query engine, per spec.md §6.
type QueryBuilder struct {
	qe *qengine.Engine
	v  *vfs.Vfs
}

// Parse returns file's concrete syntax tree.
func (q *QueryBuilder) Parse(ctx context.Context, file FileId) (*syntax.Node, error) {
	root, err := q.qe.Parse(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return root, nil
}

// Preprocessed returns file's preprocessed text, source map, and macro
// table, per spec.md §6's preprocessed_text/source_map/macros queries.
func (q *QueryBuilder) Preprocessed(ctx context.Context, file FileId) (*preprocessor.Result, error) {
	res, err := q.qe.Preprocessed(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("preprocessed: %w", err)
	}
	return res, nil
}

// FileIncludes returns file's direct (non-transitive) includes and any
// unresolved include targets, per spec.md §6.
func (q *QueryBuilder) FileIncludes(ctx context.Context, file FileId) ([]preprocessor.Include, []preprocessor.UnresolvedInclude, error) {
	res, err := q.qe.Preprocessed(ctx, file)
	if err != nil {
		return nil, nil, fmt.Errorf("file includes: %w", err)
	}
	return res.Includes, res.Unresolved, nil
}

// Graph returns the whole project's include graph.
func (q *QueryBuilder) Graph(ctx context.Context) (*graph.Graph, error) {
	g, err := q.qe.Graph(ctx)
	if err != nil {
		return nil, fmt.Errorf("graph: %w", err)
	}
	return g, nil
}

// ProjectSubgraph returns the connected component file belongs to, or nil
// if file is not part of any known component, per spec.md §4.5.
func (q *QueryBuilder) ProjectSubgraph(ctx context.Context, file FileId) (*graph.Subgraph, error) {
	sg, err := q.qe.ProjectSubgraph(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("project subgraph: %w", err)
	}
	return sg, nil
}

// ItemTree returns file's top-level declarations.
func (q *QueryBuilder) ItemTree(ctx context.Context, file FileId) (*itemtree.Tree, error) {
	tree, _, err := q.qe.ItemTree(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("item tree: %w", err)
	}
	return tree, nil
}

// DefMap returns file's simple-name to item lookup.
func (q *QueryBuilder) DefMap(ctx context.Context, file FileId) (*itemtree.DefMap, error) {
	_, def, err := q.qe.ItemTree(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("def map: %w", err)
	}
	return def, nil
}

// Body lowers functionName's body in file into its expression arena.
func (q *QueryBuilder) Body(ctx context.Context, file FileId, functionName string) (*hir.Body, error) {
	body, err := q.qe.Body(ctx, file, functionName)
	if err != nil {
		return nil, fmt.Errorf("body: %w", err)
	}
	return body, nil
}

// ExprScopes returns functionName's lexical scope tree. It exists for
// symmetry with spec.md §6's named expr_scopes query; callers that also
// need the expression arena should call Body directly instead.
func (q *QueryBuilder) ExprScopes(ctx context.Context, file FileId, functionName string) ([]hir.Scope, error) {
	body, err := q.Body(ctx, file, functionName)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}
	return body.Scopes, nil
}

// ResultKind tags what ResolveNameAt found.
type ResultKind = resolver.ResultKind

const (
	NotFound     = resolver.NotFound
	LocalBinding = resolver.LocalBinding
	GlobalItem   = resolver.GlobalItem
)

// Resolution is the outcome of resolving a name at a point in source, per
// spec.md §6's resolve_name_at.
type Resolution struct {
	Kind ResultKind

	// LocalBinding:
	FuncName string
	BodyId   hir.ExprId

	// GlobalItem:
	File   FileId
	ItemId itemtree.ItemId
}

// Def identifies a named thing's declaration site, per spec.md §6's def_at.
// Its Kind-specific fields mirror Resolution's, since def_at is built
// directly from resolve_name_at's outcome.
type Def struct {
	File  FileId
	Range diag.Range
	Name  string
	Kind  ResultKind

	ItemId itemtree.ItemId // valid when Kind == GlobalItem

	FuncName string     // valid when Kind == LocalBinding
	BodyId   hir.ExprId // valid when Kind == LocalBinding
}

// FileRange is one reference location, per spec.md §6's references.
type FileRange struct {
	File  FileId
	Range diag.Range
}

func fileIdString(id FileId) string { return strconv.Itoa(int(id)) }

func parseFileIdString(s string) FileId {
	n, _ := strconv.Atoi(s)
	return FileId(n)
}

func byteRangeToDiag(r lexer.Range) diag.Range {
	return diag.Range{Start: r.Start, End: r.End}
}

// identifierAt returns the innermost identifier node in root whose byte
// range contains offset, or nil if none.
func identifierAt(root *syntax.Node, offset int) *syntax.Node {
	var found *syntax.Node
	root.Walk(func(n *syntax.Node) bool {
		r := n.ByteRange()
		if offset < r.Start || offset > r.End {
			return false
		}
		if n.Kind() == syntax.KindIdentifier {
			found = n
		}
		return true
	})
	return found
}

// enclosingFunction returns the KindFunction item in tree whose node
// contains offset, or (Item{}, false) if offset is at file scope.
func enclosingFunction(tree *itemtree.Tree, offset int) (itemtree.Item, bool) {
	for _, fn := range tree.Items[itemtree.KindFunction] {
		r := fn.Node.ByteRange()
		if offset >= r.Start && offset <= r.End {
			return fn, true
		}
	}
	return itemtree.Item{}, false
}

// ResolveNameAt resolves the identifier at offset in file's preprocessed
// text, per spec.md §6's resolve_name_at(FileId, offset) -> Resolution.
// offset is a byte offset into the text [QueryBuilder.Parse] parses (the
// preprocessed text, not the original source — callers needing original
// coordinates translate via [QueryBuilder.Preprocessed]'s SourceMap first).
func (q *QueryBuilder) ResolveNameAt(ctx context.Context, file FileId, offset int) (Resolution, error) {
	root, err := q.Parse(ctx, file)
	if err != nil {
		return Resolution{}, err
	}
	ident := identifierAt(root, offset)
	if ident == nil {
		return Resolution{Kind: NotFound}, nil
	}

	tree, def, err := q.qe.ItemTree(ctx, file)
	if err != nil {
		return Resolution{}, fmt.Errorf("resolve name at: %w", err)
	}

	r := resolver.New(fileIdString(file), def)
	fn, inFunc := enclosingFunction(tree, offset)
	var body *hir.Body
	if inFunc {
		body, err = q.qe.Body(ctx, file, fn.Name)
		if err != nil {
			return Resolution{}, fmt.Errorf("resolve name at: %w", err)
		}
		if body != nil {
			if exprId, ok := body.NodeToExpr[ident]; ok {
				r = resolver.ForPoint(fileIdString(file), def, body, body.ScopeFor(exprId))
			}
		}
	}

	res := r.Resolve(ident.Text())
	switch res.Kind {
	case resolver.LocalBinding:
		return Resolution{Kind: LocalBinding, FuncName: fn.Name, BodyId: res.BodyId}, nil
	case resolver.GlobalItem:
		return Resolution{Kind: GlobalItem, File: parseFileIdString(res.FileId), ItemId: res.ItemId}, nil
	default:
		return Resolution{Kind: NotFound}, nil
	}
}

// DefAt resolves the identifier at offset and returns its declaration site,
// or nil if it resolves to nothing, per spec.md §6's def_at.
func (q *QueryBuilder) DefAt(ctx context.Context, file FileId, offset int) (*Def, error) {
	res, err := q.ResolveNameAt(ctx, file, offset)
	if err != nil {
		return nil, err
	}
	switch res.Kind {
	case GlobalItem:
		tree, _, err := q.qe.ItemTree(ctx, res.File)
		if err != nil {
			return nil, fmt.Errorf("def at: %w", err)
		}
		item, ok := itemAt(tree, res.ItemId)
		if !ok {
			return nil, nil
		}
		return &Def{
			File: res.File, Range: byteRangeToDiag(item.Node.ByteRange()), Name: item.Name,
			Kind: GlobalItem, ItemId: res.ItemId,
		}, nil

	case LocalBinding:
		body, err := q.qe.Body(ctx, file, res.FuncName)
		if err != nil {
			return nil, fmt.Errorf("def at: %w", err)
		}
		if body == nil || int(res.BodyId) >= len(body.Exprs) {
			return nil, nil
		}
		expr := body.Exprs[res.BodyId]
		if expr.Node == nil {
			return nil, nil
		}
		return &Def{
			File: file, Range: byteRangeToDiag(expr.Node.ByteRange()), Name: expr.Name,
			Kind: LocalBinding, FuncName: res.FuncName, BodyId: res.BodyId,
		}, nil

	default:
		return nil, nil
	}
}

// References finds every point-in-source reference resolving to def, per
// spec.md §6's references(Def) -> [FileRange]. For a GlobalItem def every
// known file is scanned, but each file's identifiers are resolved against
// that file's own definition map, so only references inside def.File are
// found; uses in other files are not matched. A LocalBinding def only
// exists within its own function body, so the scan is confined to it.
func (q *QueryBuilder) References(ctx context.Context, def Def) ([]FileRange, error) {
	if def.Kind == LocalBinding {
		return q.referencesToLocal(ctx, def)
	}
	return q.referencesToGlobal(ctx, def)
}

func (q *QueryBuilder) referencesToLocal(ctx context.Context, def Def) ([]FileRange, error) {
	body, err := q.qe.Body(ctx, def.File, def.FuncName)
	if err != nil {
		return nil, fmt.Errorf("references: %w", err)
	}
	if body == nil {
		return nil, nil
	}
	var out []FileRange
	for _, expr := range body.Exprs {
		if expr.Kind != hir.ExprIdentifier || expr.Node == nil {
			continue
		}
		if b, ok := body.ResolveNameInScope(expr.Scope, expr.Name); ok && b.Expr == def.BodyId {
			out = append(out, FileRange{File: def.File, Range: byteRangeToDiag(expr.Node.ByteRange())})
		}
	}
	return out, nil
}

func (q *QueryBuilder) referencesToGlobal(ctx context.Context, def Def) ([]FileRange, error) {
	var out []FileRange
	for _, kf := range q.v.KnownFiles() {
		tree, defMap, err := q.qe.ItemTree(ctx, kf.ID)
		if err != nil {
			return nil, fmt.Errorf("references: %w", err)
		}

		for _, fn := range tree.Items[itemtree.KindFunction] {
			body, err := q.qe.Body(ctx, kf.ID, fn.Name)
			if err != nil {
				return nil, fmt.Errorf("references: %w", err)
			}
			if body == nil {
				continue
			}
			for _, expr := range body.Exprs {
				if expr.Kind != hir.ExprIdentifier || expr.Node == nil {
					continue
				}
				r := resolver.ForPoint(fileIdString(kf.ID), defMap, body, expr.Scope)
				res := r.Resolve(expr.Name)
				if res.Kind == resolver.GlobalItem && parseFileIdString(res.FileId) == def.File && res.ItemId == def.ItemId {
					out = append(out, FileRange{File: kf.ID, Range: byteRangeToDiag(expr.Node.ByteRange())})
				}
			}
		}

		root, err := q.qe.Parse(ctx, kf.ID)
		if err != nil {
			return nil, fmt.Errorf("references: %w", err)
		}
		root.Walk(func(n *syntax.Node) bool {
			if n.Kind() != syntax.KindIdentifier {
				return true
			}
			if _, insideFn := enclosingFunction(tree, n.ByteRange().Start); insideFn {
				return true // already covered by the per-function scan above
			}
			if id, ok := defMap.Resolve(n.Text()); ok && id == def.ItemId && kf.ID == def.File {
				out = append(out, FileRange{File: kf.ID, Range: byteRangeToDiag(n.ByteRange())})
			}
			return true
		})
	}
	return out, nil
}

func itemAt(tree *itemtree.Tree, id itemtree.ItemId) (itemtree.Item, bool) {
	items, ok := tree.Items[id.Kind]
	if !ok || id.Idx < 0 || id.Idx >= len(items) {
		return itemtree.Item{}, false
	}
	return items[id.Idx], true
}
