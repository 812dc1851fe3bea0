package preprocessor

import "github.com/jward/pawnls/internal/lexer"

// Macro is an object-like or function-like textual rewrite defined by
// #define, per spec.md §3.
type Macro struct {
	Name          string
	FunctionLike  bool
	ParamCount    int // meaningless when !FunctionLike
	Body          []lexer.Token
	DefiningRange lexer.Range

	// disabled is true while the macro is on the expansion stack, per the
	// spec.md §3 invariant: a disabled macro must not re-expand.
	disabled bool
}

// Table is the per-preprocessor-run macro table. It is owned by exactly one
// Preprocessor invocation; spec.md §5 "the macro-expansion engine mutates
// its macro table during preprocessing, but that table is owned by a single
// preprocessor invocation... it is not shared."
type Table struct {
	macros map[string]*Macro
}

// NewTable creates an empty macro table.
func NewTable() *Table {
	return &Table{macros: make(map[string]*Macro)}
}

// Define inserts or replaces a macro. Matches "#define inserts" (spec.md §4.4).
func (t *Table) Define(m *Macro) {
	t.macros[m.Name] = m
}

// Undef removes a macro, if present.
func (t *Table) Undef(name string) {
	delete(t.macros, name)
}

// Get returns the macro named name, or nil.
func (t *Table) Get(name string) *Macro {
	return t.macros[name]
}

// Defined reports whether name is currently in the macro table — the exact
// semantics of the "defined" operator in #if conditions (spec.md §4.4).
func (t *Table) Defined(name string) bool {
	_, ok := t.macros[name]
	return ok
}

// Disable marks m disabled for the duration it is on the expansion stack.
func (t *Table) Disable(m *Macro) { m.disabled = true }

// Enable clears m's disabled flag once its expansion has finished.
func (t *Table) Enable(m *Macro) { m.disabled = false }

// IsDisabled reports m's transient self-recursion guard state.
func (t *Table) IsDisabled(m *Macro) bool { return m.disabled }

// Names returns every currently-defined macro name. Order is unspecified.
func (t *Table) Names() []string {
	out := make([]string, 0, len(t.macros))
	for n := range t.macros {
		out = append(out, n)
	}
	return out
}

// Snapshot returns a shallow copy of the table suitable for exposing as the
// query engine's macros(FileId) result: safe to read concurrently with a
// subsequent preprocessor run building a fresh table.
func (t *Table) Snapshot() map[string]*Macro {
	out := make(map[string]*Macro, len(t.macros))
	for k, v := range t.macros {
		cp := *v
		cp.disabled = false
		out[k] = &cp
	}
	return out
}
