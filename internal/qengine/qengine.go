// Package qengine is the demand-driven, memoizing query engine at the core
// of the system, per spec.md §4.1: queries are memoised per revision,
// dependencies are tracked and validated by content equality (not revision
// equality), readers run concurrently against a revision snapshot, and a
// writer excludes all readers and raises cancellation. Grounded on the
// teacher's (mvp-joe-canopy) Engine/Option shape, generalized from its
// SQLite-backed store to an in-memory generation-stamped memo table — the
// realisation spec.md §9 offers as an alternative to an embedded database.
package qengine

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/jward/pawnls/internal/diag"
	"github.com/jward/pawnls/internal/graph"
	"github.com/jward/pawnls/internal/hir"
	"github.com/jward/pawnls/internal/itemtree"
	"github.com/jward/pawnls/internal/preprocessor"
	"github.com/jward/pawnls/internal/syntax"
	"github.com/jward/pawnls/internal/vfs"
)

// ErrCancelled is returned by any query aborted because a writer entered
// while it was in flight, per spec.md §4.1 "Failure semantics".
var ErrCancelled = errors.New("qengine: cancelled")

// Kind tags a memoized query's identity.
type Kind uint8

const (
	qRawContents Kind = iota
	QPreprocessed
	QParse
	QItemTree
	QBody
	QGraph
	QProjectSubgraph
)

// Key identifies one memoized query invocation: a kind plus its argument
// tuple, flattened to a FileId and an optional string (a function name, for
// QBody).
type Key struct {
	Kind  Kind
	File  vfs.FileId
	Extra string
}

func (k Key) String() string { return fmt.Sprintf("%d:%d:%s", k.Kind, k.File, k.Extra) }

type entry struct {
	value    any
	revision uint64
	deps     []Key
	depVals  []any
}

// Option configures an Engine.
type Option func(*Engine)

// WithParseCacheSize overrides the bounded parse-tree LRU's capacity.
func WithParseCacheSize(n int) Option {
	return func(e *Engine) { e.parseCacheSize = n }
}

// WithPrelude supplies the "sourcepawn.inc" auto-include content, per
// spec.md §4.4.
func WithPrelude(path string, content []byte) Option {
	return func(e *Engine) {
		e.preludePath = path
		e.preludeContent = content
	}
}

// FileLoader is the engine's only external collaborator for resolving
// include paths to known files, per spec.md §6.
type FileLoader interface {
	ResolveInclude(anchorPath, path string, angle bool) (resolved string, isScript bool, ok bool)
	SourceRoots() []string
}

// Engine is the query engine: readers run concurrently against a revision
// snapshot; ApplyEdit is the sole writer entry point.
type Engine struct {
	v      *vfs.Vfs
	loader FileLoader

	mu       sync.RWMutex // excludes readers from a writer in flight
	revision uint64
	cancel   *cancelToken

	memoMu sync.Mutex
	memo   map[Key]*entry
	sf     singleflight.Group

	parseCache     *lru.Cache[vfs.FileId, *syntax.Node]
	parseCacheSize int

	preludePath    string
	preludeContent []byte
}

type cancelToken struct {
	ch chan struct{}
}

func newCancelToken() *cancelToken { return &cancelToken{ch: make(chan struct{})} }

// New creates an Engine over v, using loader to resolve #include targets.
func New(v *vfs.Vfs, loader FileLoader, opts ...Option) *Engine {
	e := &Engine{
		v:              v,
		loader:         loader,
		memo:           make(map[Key]*entry),
		cancel:         newCancelToken(),
		parseCacheSize: 128,
	}
	for _, opt := range opts {
		opt(e)
	}
	cache, _ := lru.New[vfs.FileId, *syntax.Node](e.parseCacheSize)
	e.parseCache = cache
	return e
}

// ApplyEdit is the engine's sole writer entry point, per spec.md §5: it
// signals cancellation to any in-flight readers, waits for exclusive
// access, applies fn, and bumps the revision.
func (e *Engine) ApplyEdit(fn func(v *vfs.Vfs)) {
	e.cancel.closeOnce()

	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.v)
	e.revision++
	e.cancel = newCancelToken()
}

func (c *cancelToken) closeOnce() {
	select {
	case <-c.ch:
	default:
		close(c.ch)
	}
}

// newContext returns a context cancelled when the engine's current
// revision is superseded by a write, per spec.md §4.1 point 3.
func (e *Engine) newContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	tok := e.cancel
	go func() {
		select {
		case <-tok.ch:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// Snapshot runs fn with a consistent read-only view of the engine,
// honoring cancellation the moment a concurrent ApplyEdit begins.
func (e *Engine) Snapshot(ctx context.Context, fn func(ctx context.Context) error) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	rctx, cancel := e.newContext(ctx)
	defer cancel()
	return fn(rctx)
}

func (e *Engine) get(ctx context.Context, key Key) (any, error) {
	if ctx.Err() != nil {
		return nil, ErrCancelled
	}

	rev := e.currentRevision()
	if v, ok := e.fastPath(key, rev); ok {
		return v, nil
	}

	sfKey := fmt.Sprintf("%s@%d", key, rev)
	v, err, _ := e.sf.Do(sfKey, func() (any, error) {
		if v, ok := e.fastPath(key, rev); ok {
			return v, nil
		}
		if v, ok := e.tryValidate(ctx, key, rev); ok {
			return v, nil
		}
		val, deps, cerr := e.compute(ctx, key)
		if cerr != nil {
			return nil, cerr
		}
		depVals := make([]any, len(deps))
		for i, dk := range deps {
			depVals[i], _ = e.fastPath(dk, rev)
		}
		e.memoMu.Lock()
		e.memo[key] = &entry{value: val, revision: rev, deps: deps, depVals: depVals}
		e.memoMu.Unlock()
		return val, nil
	})
	return v, err
}

func (e *Engine) currentRevision() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.revision
}

func (e *Engine) fastPath(key Key, rev uint64) (any, bool) {
	e.memoMu.Lock()
	defer e.memoMu.Unlock()
	ent, ok := e.memo[key]
	if !ok || ent.revision != rev {
		return nil, false
	}
	return ent.value, true
}

// tryValidate re-derives a stale entry's recorded dependency values; if
// every one is still content-equal, the entry is revalidated at rev
// without recomputing its own value — spec.md §4.1 point 2. A leaf query
// (qRawContents) has no dependencies to compare against, so there is
// nothing cheap to revalidate: it must fall through to a real recompute.
func (e *Engine) tryValidate(ctx context.Context, key Key, rev uint64) (any, bool) {
	e.memoMu.Lock()
	ent, ok := e.memo[key]
	e.memoMu.Unlock()
	if !ok || len(ent.deps) == 0 {
		return nil, false
	}
	for i, dk := range ent.deps {
		dv, err := e.get(ctx, dk)
		if err != nil || !reflect.DeepEqual(dv, ent.depVals[i]) {
			return nil, false
		}
	}
	e.memoMu.Lock()
	ent.revision = rev
	e.memoMu.Unlock()
	return ent.value, true
}

func (e *Engine) compute(ctx context.Context, key Key) (any, []Key, error) {
	switch key.Kind {
	case qRawContents:
		return e.v.Contents(key.File), nil, nil

	case QPreprocessed:
		rawKey := Key{Kind: qRawContents, File: key.File}
		raw, err := e.get(ctx, rawKey)
		if err != nil {
			return nil, nil, err
		}
		path, _ := e.v.Path(key.File)
		res := preprocessor.Run(toBytes(raw), path, e.resolverFor())
		return res, []Key{rawKey}, nil

	case QParse:
		ppKey := Key{Kind: QPreprocessed, File: key.File}
		ppAny, err := e.get(ctx, ppKey)
		if err != nil {
			return nil, nil, err
		}
		pp := ppAny.(*preprocessor.Result)
		root, diags := syntax.Parse([]byte(pp.Text))
		e.parseCache.Add(key.File, root)
		return parseValue{Root: root, Diagnostics: diags}, []Key{ppKey}, nil

	case QItemTree:
		parseKey := Key{Kind: QParse, File: key.File}
		pvAny, err := e.get(ctx, parseKey)
		if err != nil {
			return nil, nil, err
		}
		pv := pvAny.(parseValue)
		tree, def, diags := itemtree.Build(pv.Root)
		return itemTreeValue{Tree: tree, DefMap: def, Diagnostics: diags}, []Key{parseKey}, nil

	case QBody:
		itKey := Key{Kind: QItemTree, File: key.File}
		itAny, err := e.get(ctx, itKey)
		if err != nil {
			return nil, nil, err
		}
		it := itAny.(itemTreeValue)
		for _, fn := range it.Tree.Items[itemtree.KindFunction] {
			if fn.Name == key.Extra {
				return hir.Lower(fn.Node), []Key{itKey}, nil
			}
		}
		return (*hir.Body)(nil), []Key{itKey}, nil

	case QGraph:
		return e.computeGraph(ctx)

	case QProjectSubgraph:
		gKey := Key{Kind: QGraph}
		gAny, err := e.get(ctx, gKey)
		if err != nil {
			return nil, nil, err
		}
		g := gAny.(*graph.Graph)
		return graph.ProjectOf(g, key.File), []Key{gKey}, nil

	default:
		return nil, nil, fmt.Errorf("qengine: unknown query kind %d", key.Kind)
	}
}

type parseValue struct {
	Root        *syntax.Node
	Diagnostics []diag.Diagnostic
}

type itemTreeValue struct {
	Tree        *itemtree.Tree
	DefMap      *itemtree.DefMap
	Diagnostics []diag.Diagnostic
}

func (e *Engine) computeGraph(ctx context.Context) (any, []Key, error) {
	known := e.v.KnownFiles()
	sort.Slice(known, func(i, j int) bool { return known[i].ID < known[j].ID })

	g := graph.New()
	var deps []Key
	for _, kf := range known {
		g.AddNode(graph.Node{File: kf.ID, Extension: kf.Extension})
		ppKey := Key{Kind: QPreprocessed, File: kf.ID}
		ppAny, err := e.get(ctx, ppKey)
		if err != nil {
			return nil, nil, err
		}
		deps = append(deps, ppKey)
		pp := ppAny.(*preprocessor.Result)
		for _, inc := range pp.Includes {
			targetID := e.v.Intern(inc.TargetPath, extensionOf(inc.IsScript))
			ext := vfs.ExtensionInclude
			if inc.IsScript {
				ext = vfs.ExtensionScript
			}
			g.AddEdge(graph.Node{File: kf.ID, Extension: kf.Extension}, graph.Node{File: targetID, Extension: ext})
		}
	}
	return g, deps, nil
}

func extensionOf(isScript bool) vfs.Extension {
	if isScript {
		return vfs.ExtensionScript
	}
	return vfs.ExtensionInclude
}

func toBytes(v any) []byte {
	if v == nil {
		return nil
	}
	return v.([]byte)
}

type loaderResolver struct {
	loader FileLoader
	engine *Engine
}

func (e *Engine) resolverFor() preprocessor.Resolver {
	return &loaderResolver{loader: e.loader, engine: e}
}

func (r *loaderResolver) Resolve(anchorPath, path string, angle bool) (string, bool, bool) {
	if r.loader == nil {
		return "", false, false
	}
	return r.loader.ResolveInclude(anchorPath, path, angle)
}

func (r *loaderResolver) ResolvePrelude() ([]byte, string, bool) {
	if r.engine.preludeContent == nil {
		return nil, "", false
	}
	return r.engine.preludeContent, r.engine.preludePath, true
}

// Parse returns file's CST and syntax diagnostics at the current revision.
func (e *Engine) Parse(ctx context.Context, file vfs.FileId) (*syntax.Node, error) {
	v, err := e.get(ctx, Key{Kind: QParse, File: file})
	if err != nil {
		return nil, err
	}
	return v.(parseValue).Root, nil
}

// Preprocessed returns file's preprocessed text, macro table, includes, and
// diagnostics, per spec.md §6's preprocessed_text/source_map/macros/
// file_includes queries.
func (e *Engine) Preprocessed(ctx context.Context, file vfs.FileId) (*preprocessor.Result, error) {
	v, err := e.get(ctx, Key{Kind: QPreprocessed, File: file})
	if err != nil {
		return nil, err
	}
	return v.(*preprocessor.Result), nil
}

// ItemTree returns file's item tree and definition map, per spec.md §6.
func (e *Engine) ItemTree(ctx context.Context, file vfs.FileId) (*itemtree.Tree, *itemtree.DefMap, error) {
	v, err := e.get(ctx, Key{Kind: QItemTree, File: file})
	if err != nil {
		return nil, nil, err
	}
	val := v.(itemTreeValue)
	return val.Tree, val.DefMap, nil
}

// Body lowers functionName's body in file, per spec.md §6.
func (e *Engine) Body(ctx context.Context, file vfs.FileId, functionName string) (*hir.Body, error) {
	v, err := e.get(ctx, Key{Kind: QBody, File: file, Extra: functionName})
	if err != nil {
		return nil, err
	}
	return v.(*hir.Body), nil
}

// Graph returns the whole project's include graph, per spec.md §6.
func (e *Engine) Graph(ctx context.Context) (*graph.Graph, error) {
	v, err := e.get(ctx, Key{Kind: QGraph})
	if err != nil {
		return nil, err
	}
	return v.(*graph.Graph), nil
}

// ProjectSubgraph returns file's project subgraph, per spec.md §4.5.
func (e *Engine) ProjectSubgraph(ctx context.Context, file vfs.FileId) (*graph.Subgraph, error) {
	v, err := e.get(ctx, Key{Kind: QProjectSubgraph, File: file})
	if err != nil {
		return nil, err
	}
	sg, _ := v.(*graph.Subgraph)
	return sg, nil
}
