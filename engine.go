package pawnls

import (
	"go.uber.org/zap"

	"github.com/jward/pawnls/internal/qengine"
	"github.com/jward/pawnls/internal/vfs"
)

// FileLoader is the Engine's sole external collaborator: it knows how to
// turn an include target into a known file and which directories are
// source roots, per spec.md §6. A default, filesystem-backed implementation
// lives in cmd/pawnls.
type FileLoader interface {
	ResolveInclude(anchorPath, path string, angle bool) (resolved string, isScript bool, ok bool)
	SourceRoots() []string
}

// Engine orchestrates the pawnls pipeline: a mutable file store, the
// memoizing query engine built over it, and the loader used to resolve
// #include directives.
type Engine struct {
	vfs    *vfs.Vfs
	qe     *qengine.Engine
	loader FileLoader
	log    *zap.SugaredLogger
	qeOpts []qengine.Option
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger overrides the Engine's structured logger. The default is a
// no-op logger so New never needs to return an error.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(e *Engine) { e.log = log }
}

// WithParseCacheSize overrides the bounded parse-tree LRU's capacity
// (default 128, per spec.md §6).
func WithParseCacheSize(n int) Option {
	return func(e *Engine) { e.qeOpts = append(e.qeOpts, qengine.WithParseCacheSize(n)) }
}

// WithPrelude supplies the implicit "sourcepawn.inc" include, per spec.md
// §4.4.
func WithPrelude(path string, content []byte) Option {
	return func(e *Engine) { e.qeOpts = append(e.qeOpts, qengine.WithPrelude(path, content)) }
}

// New creates an Engine backed by loader for #include resolution.
func New(loader FileLoader, opts ...Option) *Engine {
	e := &Engine{
		vfs:    vfs.New(),
		loader: loader,
		log:    zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.qe = qengine.New(e.vfs, loaderAdapter{loader}, e.qeOpts...)
	return e
}

// loaderAdapter satisfies qengine.FileLoader so the Engine's own FileLoader
// type can remain the one external-facing interface.
type loaderAdapter struct {
	FileLoader
}

// OpenFile registers path's initial content with the Engine, per spec.md
// §3's file-creation semantics.
func (e *Engine) OpenFile(path string, script bool, content []byte) vfs.FileId {
	ext := vfs.ExtensionInclude
	if script {
		ext = vfs.ExtensionScript
	}
	id, _ := e.vfs.SetContents(path, ext, content)
	e.log.Debugw("file opened", "path", path, "script", script, "bytes", len(content))
	return id
}

// ChangeFile replaces path's content through the query engine's writer
// path (CloseFile is the other Engine method that writes): it bumps the
// revision and cancels any in-flight reads, per spec.md §5.
func (e *Engine) ChangeFile(path string, script bool, content []byte) {
	ext := vfs.ExtensionInclude
	if script {
		ext = vfs.ExtensionScript
	}
	var changed bool
	e.qe.ApplyEdit(func(v *vfs.Vfs) {
		_, changed = v.SetContents(path, ext, content)
	})
	e.log.Debugw("file changed", "path", path, "changed", changed)
}

// CloseFile removes path from the Engine's known files.
func (e *Engine) CloseFile(path string) {
	e.qe.ApplyEdit(func(v *vfs.Vfs) {
		v.Delete(path)
	})
	e.log.Debugw("file closed", "path", path)
}

// Query returns a new QueryBuilder wrapping the Engine's query engine.
func (e *Engine) Query() *QueryBuilder {
	return &QueryBuilder{qe: e.qe, v: e.vfs}
}

// Vfs exposes the underlying file store for callers that need FileId
// lookups (e.g. cmd/pawnls translating LSP paths to FileIds).
func (e *Engine) Vfs() *vfs.Vfs { return e.vfs }
