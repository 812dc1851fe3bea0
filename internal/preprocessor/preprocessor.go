// Package preprocessor interprets SourcePawn's C-style preprocessor
// directives, expands macros, and produces preprocessed text plus a
// bidirectional source map back to the original text, per spec.md §4.4.
//
// Directives are interpreted line-by-line (after line-continuation
// joining); macro invocations are expanded within the line they start on.
// This is a deliberate simplification of the original's single flat token
// stream (see DESIGN.md): every concrete scenario in spec.md §8 is
// single-line, and the common SourcePawn style never spans a function-like
// macro call across a raw (non-continued) newline.
package preprocessor

import (
	"strings"

	"github.com/jward/pawnls/internal/diag"
	"github.com/jward/pawnls/internal/lexer"
)

// IncludeKind distinguishes angle-bracket from quoted includes.
type IncludeKind uint8

const (
	IncludeAngle IncludeKind = iota
	IncludeQuoted
)

// IncludeDirective distinguishes #include from #tryinclude.
type IncludeDirective uint8

const (
	DirectiveInclude IncludeDirective = iota
	DirectiveTryInclude
)

// Include is one resolved include target, per spec.md §3.
type Include struct {
	TargetPath string
	IsScript   bool // target extension tag: true .sp, false .inc
	Kind       IncludeKind
	Directive  IncludeDirective
	Range      diag.Range
}

// UnresolvedInclude is an include directive whose path did not resolve to a
// known file.
type UnresolvedInclude struct {
	Path      string
	Directive IncludeDirective
	Range     diag.Range
}

// DeprecatedAnnotation records a #pragma deprecated directive, surfaced
// later as a Deprecated-use diagnostic wherever the annotated symbol is
// referenced (spec.md §7).
type DeprecatedAnnotation struct {
	Target  string
	Message string
	Range   diag.Range
}

// Resolver resolves include targets to a known file, per the resolution
// path contract in spec.md §6. It is supplied by the caller (ultimately the
// query engine, backed by a FileLoader) so the preprocessor package itself
// has no filesystem dependency.
type Resolver interface {
	// Resolve resolves path (as written in an #include/#tryinclude
	// directive) relative to anchorPath, honoring angle vs quoted lookup
	// order. It returns the resolved path and whether the target is a
	// script (.sp) file, or ok=false if no known file matched.
	Resolve(anchorPath, path string, angle bool) (resolved string, isScript bool, ok bool)
	// ResolvePrelude resolves the implicit "sourcepawn.inc" prelude
	// included at the head of every file, per spec.md §4.4. Returns
	// ok=false if no such file is known (e.g. in isolated unit tests).
	ResolvePrelude() (content []byte, path string, ok bool)
}

// Result is everything one preprocessor run over a file produces, per
// spec.md §4.4.
type Result struct {
	Text        string
	SourceMap   *SourceMap
	Macros      *Table
	Includes    []Include
	Unresolved  []UnresolvedInclude
	Deprecated  []DeprecatedAnnotation
	Diagnostics []diag.Diagnostic
}

type condFrame struct {
	active       bool
	everActive   bool
	parentActive bool
}

type run struct {
	table       *Table
	out         strings.Builder
	sourceMap   *SourceMap
	diags       []diag.Diagnostic
	includes    []Include
	unresolved  []UnresolvedInclude
	deprecated  []DeprecatedAnnotation
	condStack   []condFrame
	anchorPath  string
	resolver    Resolver
	endInput    bool
	outLine     int
}

// Run preprocesses src as the file at anchorPath, per spec.md §4.4. If
// resolver is non-nil and resolves a prelude, its macro definitions are
// seeded into the macro table before src is processed, matching the
// "sourcepawn.inc" auto-include behavior.
func Run(src []byte, anchorPath string, resolver Resolver) *Result {
	r := &run{
		table:     NewTable(),
		sourceMap: NewSourceMap(),
		resolver:  resolver,
	}

	if resolver != nil {
		if content, path, ok := resolver.ResolvePrelude(); ok {
			prelude := &run{table: r.table, sourceMap: NewSourceMap(), resolver: resolver, anchorPath: path}
			prelude.processLines(content)
			// Prelude diagnostics and includes are not surfaced against the
			// including file; only its macro definitions (already mutated
			// into the shared table) matter here.
		}
	}

	r.anchorPath = anchorPath
	r.processLines(src)

	return &Result{
		Text:        r.out.String(),
		SourceMap:   r.sourceMap,
		Macros:      r.table,
		Includes:    r.includes,
		Unresolved:  r.unresolved,
		Deprecated:  r.deprecated,
		Diagnostics: r.diags,
	}
}

func (r *run) active() bool {
	if len(r.condStack) == 0 {
		return true
	}
	return r.condStack[len(r.condStack)-1].active
}

func (r *run) processLines(src []byte) {
	lines := splitLines(src)
	i := 0
	for i < len(lines) {
		if r.endInput {
			return
		}
		line := lines[i]
		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, "#") {
			joined, consumed := joinContinuations(lines, i)
			r.processDirective(joined)
			for n := 0; n < consumed; n++ {
				if i+n < len(lines)-1 {
					r.out.WriteByte('\n')
				}
				r.outLine++
			}
			i += consumed
			continue
		}
		r.processTextLine(line, i)
		if i < len(lines)-1 {
			r.out.WriteByte('\n')
		}
		r.outLine++
		i++
	}
}

// splitLines splits src into lines without their terminators, preserving
// the exact physical line count (a trailing newline does not add an empty
// final line beyond what bytes.Split already reflects).
func splitLines(src []byte) []string {
	text := string(src)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}

// joinContinuations joins a directive line with any subsequent lines that
// end in a line-continuation backslash, returning the logical directive
// text (continuation backslashes replaced with a space) and the number of
// physical lines consumed.
func joinContinuations(lines []string, start int) (string, int) {
	var b strings.Builder
	i := start
	for {
		line := lines[i]
		if strings.HasSuffix(line, "\\") && i+1 < len(lines) {
			b.WriteString(strings.TrimSuffix(line, "\\"))
			b.WriteByte(' ')
			i++
			continue
		}
		b.WriteString(line)
		i++
		break
	}
	return b.String(), i - start
}

func (r *run) processDirective(line string) {
	trimmed := strings.TrimLeft(line, " \t")
	rest := strings.TrimPrefix(trimmed, "#")
	rest = strings.TrimLeft(rest, " \t")

	name, argText := splitDirectiveName(rest)

	switch name {
	case "if":
		r.handleIf(argText)
	case "elseif":
		r.handleElseif(argText)
	case "else":
		r.handleElse()
	case "endif":
		r.handleEndif()
	case "endinput":
		if r.active() {
			r.endInput = true
		}
	case "define":
		if r.active() {
			r.handleDefine(argText)
		}
	case "undef":
		if r.active() {
			r.table.Undef(strings.TrimSpace(argText))
		}
	case "include":
		if r.active() {
			r.handleInclude(argText, DirectiveInclude)
		}
	case "tryinclude":
		if r.active() {
			r.handleInclude(argText, DirectiveTryInclude)
		}
	case "pragma":
		if r.active() {
			r.handlePragma(argText)
		}
	case "error":
		if r.active() {
			r.diags = append(r.diags, diag.Diagnostic{Kind: diag.SyntaxError, Message: "error: " + strings.TrimSpace(argText)})
		}
	case "warning":
		// Non-fatal; recorded nowhere further, matching the teacher's
		// policy of recovering locally and continuing.
	case "assert", "static_assert":
		// Recognised but not evaluated by the preprocessor itself — these
		// are compile-time checks for a later stage, per spec.md §4.4.
	default:
		// Unknown directive: ignored, matching "#tryinclude failure stays
		// silent" spirit of recovering without aborting the file.
	}
}

func splitDirectiveName(rest string) (name, argText string) {
	i := 0
	for i < len(rest) && isNameByte(rest[i]) {
		i++
	}
	name = rest[:i]
	argText = strings.TrimLeft(rest[i:], " \t")
	return
}

func isNameByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func (r *run) handleIf(argText string) {
	parentActive := r.active()
	var active bool
	if parentActive {
		toks := significantTokens(lexer.Tokenize([]byte(argText)))
		v, diags := evaluateCondition(r.table, toks)
		active = v
		r.diags = append(r.diags, diags...)
	}
	r.condStack = append(r.condStack, condFrame{active: active, everActive: active, parentActive: parentActive})
}

func (r *run) handleElseif(argText string) {
	if len(r.condStack) == 0 {
		return
	}
	top := &r.condStack[len(r.condStack)-1]
	if top.parentActive && !top.everActive {
		toks := significantTokens(lexer.Tokenize([]byte(argText)))
		v, diags := evaluateCondition(r.table, toks)
		top.active = v
		r.diags = append(r.diags, diags...)
		if v {
			top.everActive = true
		}
	} else {
		top.active = false
	}
}

func (r *run) handleElse() {
	if len(r.condStack) == 0 {
		return
	}
	top := &r.condStack[len(r.condStack)-1]
	top.active = top.parentActive && !top.everActive
	if top.active {
		top.everActive = true
	}
}

func (r *run) handleEndif() {
	if len(r.condStack) == 0 {
		return
	}
	r.condStack = r.condStack[:len(r.condStack)-1]
}

func (r *run) handleDefine(argText string) {
	i := 0
	for i < len(argText) && isNameByte(argText[i]) {
		i++
	}
	name := argText[:i]
	if name == "" {
		return
	}
	if i < len(argText) && argText[i] == '(' {
		close := strings.IndexByte(argText[i:], ')')
		if close < 0 {
			return
		}
		params := argText[i+1 : i+close]
		body := strings.TrimLeft(argText[i+close+1:], " \t")
		arity := countParams(params)
		m := &Macro{
			Name:         name,
			FunctionLike: true,
			ParamCount:   arity,
			Body:         significantTokens(lexer.Tokenize([]byte(body))),
		}
		// A body placeholder %n names a parameter by the label written in
		// the parameter list; rewrite it to that parameter's position so
		// substitution can index the collected arguments directly.
		positions := make(map[string]int)
		for pos, p := range strings.Split(params, ",") {
			positions[strings.TrimPrefix(strings.TrimSpace(p), "%")] = pos
		}
		for j := 1; j < len(m.Body); j++ {
			single := m.Body[j-1].Kind == lexer.KindPercent && (j < 2 || m.Body[j-2].Kind != lexer.KindPercent)
			if pos, ok := positions[m.Body[j].Text]; ok && single && m.Body[j].Kind == lexer.KindIntLiteral {
				m.Body[j].Text = string(rune('0' + pos))
			}
		}
		r.table.Define(m)
		return
	}
	body := strings.TrimLeft(argText[i:], " \t")
	m := &Macro{
		Name: name,
		Body: significantTokens(lexer.Tokenize([]byte(body))),
	}
	r.table.Define(m)
}

func countParams(params string) int {
	params = strings.TrimSpace(params)
	if params == "" {
		return 0
	}
	return strings.Count(params, ",") + 1
}

func (r *run) handleInclude(argText string, directive IncludeDirective) {
	argText = strings.TrimSpace(argText)
	if argText == "" {
		return
	}
	var path string
	angle := false
	switch argText[0] {
	case '"':
		end := strings.IndexByte(argText[1:], '"')
		if end < 0 {
			return
		}
		path = argText[1 : 1+end]
	case '<':
		end := strings.IndexByte(argText[1:], '>')
		if end < 0 {
			return
		}
		path = argText[1 : 1+end]
		angle = true
	default:
		path = argText
	}

	var resolved string
	var isScript, ok bool
	if r.resolver != nil {
		resolved, isScript, ok = r.resolver.Resolve(r.anchorPath, path, angle)
	}
	if !ok {
		r.unresolved = append(r.unresolved, UnresolvedInclude{Path: path, Directive: directive})
		if directive == DirectiveInclude {
			r.diags = append(r.diags, diag.Diagnostic{Kind: diag.UnresolvedInclude, Message: "unresolved include", Name: path})
		}
		// #tryinclude failure is silent, per spec.md §9 Open Questions.
		return
	}

	kind := IncludeQuoted
	if angle {
		kind = IncludeAngle
	}
	r.includes = append(r.includes, Include{
		TargetPath: resolved,
		IsScript:   isScript,
		Kind:       kind,
		Directive:  directive,
	})
}

func (r *run) handlePragma(argText string) {
	fields := strings.Fields(argText)
	if len(fields) >= 2 && fields[0] == "deprecated" {
		// #pragma deprecated <message...> annotates the *next* declaration;
		// here we only record that a deprecation pragma occurred on this
		// line, leaving association with a symbol to the item tree.
		r.deprecated = append(r.deprecated, DeprecatedAnnotation{
			Message: strings.Join(fields[1:], " "),
		})
	}
}

func (r *run) processTextLine(line string, lineIdx int) {
	if !r.active() {
		return
	}
	toks := significantTokens(lexer.Tokenize([]byte(line)))
	cur := newCursor(toks)
	ex := &expander{table: r.table, diags: &r.diags}

	outCol := 0
	lastEnd := 0

	writeRaw := func(from, to int) {
		if to > len(line) {
			to = len(line)
		}
		if from < to {
			r.out.WriteString(line[from:to])
			outCol += to - from
		}
	}

	for {
		startIdx := cur.pos
		t, ok := cur.next()
		if !ok {
			break
		}
		if t.Kind != lexer.KindIdent || !r.table.Defined(t.Text) {
			continue
		}
		// Flush raw text up to this identifier (preserves exact spacing).
		writeRaw(lastEnd, t.Range.Start)

		var expanded []lexer.Token
		ex.expandIdentifier(t, cur, &expanded)

		origEnd := t.Range.End
		if cur.pos > startIdx+1 {
			origEnd = cur.toks[cur.pos-1].Range.End
		}
		originalWidth := origEnd - t.Range.Start

		text := joinExpandedTokens(expanded)
		if len(text) < originalWidth {
			text += strings.Repeat(" ", originalWidth-len(text))
		}

		r.sourceMap.Push(Offset{
			Line:                 lineIdx,
			OriginalColStart:     t.Range.Start,
			OriginalColEnd:       origEnd,
			PreprocessedColStart: outCol,
			PreprocessedColEnd:   outCol + len(text),
			Diff:                 len(text) - originalWidth,
			ProducingMacro:       t.Text,
		})

		r.out.WriteString(text)
		outCol += len(text)
		lastEnd = origEnd
	}
	writeRaw(lastEnd, len(line))
}

func joinExpandedTokens(toks []lexer.Token) string {
	var b strings.Builder
	for i, t := range toks {
		if i > 0 && (t.Delta.Cols > 0 || t.Delta.Lines > 0) {
			b.WriteByte(' ')
		}
		b.WriteString(t.Text)
	}
	return b.String()
}
