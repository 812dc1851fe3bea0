// Package pawnls is a demand-driven semantic analysis core for SourcePawn,
// the C-like scripting dialect used by the SourceMod plugin ecosystem. It
// answers IDE queries — go-to-definition, find-references, hover — by
// deriving, on demand, a layered program model from source text: lexing,
// C-style preprocessing, parsing into a concrete syntax tree, item-tree and
// definition-map construction, body lowering into expression scopes, and
// name resolution.
//
// # Pipeline
//
// Every query is served from an [Engine], a revision-stamped, memoizing
// query engine (see internal/qengine). A query never recomputes work whose
// recorded dependencies are still content-equal to what they were the last
// time it ran, even across a write that bumped the revision for unrelated
// reasons.
//
// # Usage
//
// Create an Engine over a [FileLoader], open files, and query:
//
//	e := pawnls.New(loader)
//	file := e.OpenFile("plugins/afk_manager.sp", true, content)
//
//	q := e.Query()
//	res, err := q.ResolveNameAt(ctx, file, offset)
//
// # Query API
//
// The [QueryBuilder] returned by [Engine.Query] exposes the engine's output
// queries:
//
//   - [QueryBuilder.Parse] — the file's concrete syntax tree.
//   - [QueryBuilder.Preprocessed] — preprocessed text, source map, macro table.
//   - [QueryBuilder.FileIncludes] — a file's direct (non-transitive) includes.
//   - [QueryBuilder.Graph] / [QueryBuilder.ProjectSubgraph] — the include graph
//     and the connected component a file belongs to.
//   - [QueryBuilder.ItemTree] / [QueryBuilder.DefMap] — top-level declarations.
//   - [QueryBuilder.Body] / [QueryBuilder.ExprScopes] — a function's lowered body.
//   - [QueryBuilder.ResolveNameAt] / [QueryBuilder.DefAt] / [QueryBuilder.References] —
//     position-driven name resolution.
package pawnls
