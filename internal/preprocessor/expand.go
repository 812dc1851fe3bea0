package preprocessor

import (
	"strconv"
	"strings"

	"github.com/jward/pawnls/internal/diag"
	"github.com/jward/pawnls/internal/lexer"
)

// expandDepthCap bounds accidental deep macro nesting while letting
// legitimate nesting through, per spec.md §9.
const expandDepthCap = 5

// expandedSpan records one macro-expansion event for the source map: the
// preprocessed range it produced, the originating range, and which macro
// produced it. Populated only for top-level invocations (depth 0), matching
// "Do not keep track of sub-macros, they will not appear in the final
// document" from original_source's macros.rs.
type expandedSpan struct {
	originalRange lexer.Range
	producingName string
	tokenCount    int // number of output tokens this invocation produced
}

// expander drives recursive macro expansion over a token stream, honoring
// the disabled-macro self-recursion guard and the expansion depth cap.
type expander struct {
	table *Table
	diags *[]diag.Diagnostic
	spans *[]expandedSpan
}

type expandFrame struct {
	tok       lexer.Token
	delta     lexer.Delta
	depth     int
	reenable  *Macro // non-nil: a sentinel; pop re-enables this macro instead of emitting
	spanStart bool   // marks the first frame of a top-level macro invocation
}

// frameSource yields the next token to scan, preferring tokens still queued
// in the expansion stack over the upstream cursor — this lets a function-like
// macro invocation spanning an already-expanded macro body collect its
// arguments from that body before falling back to the original input,
// mirroring the dual stack/lexer source in macros.rs's collect_arguments.
type frameSource struct {
	stack *[]expandFrame
	in    *cursor
}

func (s *frameSource) next() (lexer.Token, bool) {
	st := *s.stack
	for len(st) > 0 {
		fr := st[len(st)-1]
		st = st[:len(st)-1]
		*s.stack = st
		if fr.reenable != nil {
			// An argument list reached across a macro boundary; re-enable
			// and keep pulling — the sentinel itself is not a token.
			fr.reenable.disabled = false
			continue
		}
		return fr.tok, true
	}
	return s.in.next()
}

// expandIdentifier expands the macro named by ident, appending resulting
// tokens to out. The caller must already know ident names a macro present
// in the table; it returns false (without touching out) if it does not.
func (e *expander) expandIdentifier(ident lexer.Token, in *cursor, out *[]lexer.Token) bool {
	m := e.table.Get(ident.Text)
	if m == nil {
		return false
	}

	stack := []expandFrame{{tok: ident, delta: ident.Delta, depth: 0}}
	src := &frameSource{stack: &stack, in: in}
	spanStart := len(*out)

	for len(stack) > 0 {
		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if fr.reenable != nil {
			e.table.Enable(fr.reenable)
			continue
		}
		if fr.depth >= expandDepthCap {
			continue
		}

		if fr.tok.Kind != lexer.KindIdent {
			t := fr.tok
			t.Delta = fr.delta
			*out = append(*out, t)
			continue
		}

		mm := e.table.Get(fr.tok.Text)
		if mm == nil || e.table.IsDisabled(mm) {
			t := fr.tok
			t.Delta = fr.delta
			*out = append(*out, t)
			continue
		}

		e.table.Disable(mm)

		if !mm.FunctionLike {
			stack = append(stack, expandFrame{reenable: mm})
			for i := len(mm.Body) - 1; i >= 0; i-- {
				d := mm.Body[i].Delta
				if i == 0 {
					d = fr.delta
				}
				stack = append(stack, expandFrame{tok: mm.Body[i], delta: d, depth: fr.depth + 1})
			}
			continue
		}

		args, argDiag := collectArguments(src, mm.ParamCount)
		if argDiag != nil {
			*e.diags = append(*e.diags, *argDiag)
		}
		body, bodyDiag := substituteParams(mm, args, fr.tok)
		if bodyDiag != nil {
			*e.diags = append(*e.diags, *bodyDiag)
		}
		stack = append(stack, expandFrame{reenable: mm})
		for i := len(body) - 1; i >= 0; i-- {
			d := body[i].Delta
			if i == 0 {
				d = fr.delta
			}
			stack = append(stack, expandFrame{tok: body[i], delta: d, depth: fr.depth + 1})
		}
	}

	if e.spans != nil {
		*e.spans = append(*e.spans, expandedSpan{
			originalRange: ident.Range,
			producingName: ident.Text,
			tokenCount:    len(*out) - spanStart,
		})
	}
	return true
}

// collectArguments scans a balanced-parenthesis comma-separated argument
// list from next, per spec.md §4.4: excess arguments merge into the last
// slot, missing arguments are empty. Assumes the opening paren has not yet
// been consumed.
func collectArguments(src *frameSource, paramCount int) ([][]lexer.Token, *diag.Diagnostic) {
	args := make([][]lexer.Token, max(paramCount, 1))

	t, ok := src.next()
	if !ok || t.Kind != lexer.KindLParen {
		// No argument list at all: treat as a zero-arg invocation.
		return args, nil
	}

	depth := 1
	idx := 0
	for {
		t, ok := src.next()
		if !ok {
			break
		}
		switch t.Kind {
		case lexer.KindLParen:
			depth++
			args[idx] = append(args[idx], t)
		case lexer.KindRParen:
			depth--
			if depth == 0 {
				return args, nil
			}
			args[idx] = append(args[idx], t)
		case lexer.KindComma:
			if depth == 1 {
				if idx+1 < paramCount {
					idx++
				} else {
					args[idx] = append(args[idx], t)
				}
			} else {
				args[idx] = append(args[idx], t)
			}
		default:
			args[idx] = append(args[idx], t)
		}
	}
	return args, nil
}

// substituteParams expands a function-like macro's body against collected
// arguments: %n placeholders, #%n stringisation, and %% escaping, per
// spec.md §4.4.
func substituteParams(m *Macro, args [][]lexer.Token, invocation lexer.Token) ([]lexer.Token, *diag.Diagnostic) {
	var out []lexer.Token
	consecutivePercent := 0
	var stringize bool

	for i, child := range m.Body {
		switch {
		case child.Kind == lexer.KindPercent:
			consecutivePercent++
			if consecutivePercent%2 == 1 {
				out = append(out, child)
			}
			continue
		case child.Kind == lexer.KindHash && consecutivePercent == 0 && peekIsPercentPlaceholder(m.Body, i):
			stringize = true
			continue
		case child.Kind == lexer.KindIntLiteral && consecutivePercent == 1:
			consecutivePercent = 0
			// The preceding '%' placeholder token was appended speculatively
			// above; drop it now that we know it is a real placeholder.
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
			n, err := strconv.Atoi(child.Text)
			if err != nil || n < 0 || n > 9 {
				return out, &diag.Diagnostic{
					Kind:    diag.IntParseError,
					Range:   diag.Range{Start: child.Range.Start, End: child.Range.End},
					Message: "invalid macro parameter index",
					Name:    child.Text,
				}
			}
			if n >= len(args) {
				stringize = false
				continue
			}
			arg := args[n]
			if stringize {
				out = append(out, stringizeArg(arg, invocation))
				stringize = false
			} else {
				out = append(out, arg...)
			}
			continue
		default:
			consecutivePercent = 0
			stringize = false
			out = append(out, child)
		}
	}
	return out, nil
}

func peekIsPercentPlaceholder(body []lexer.Token, hashIdx int) bool {
	if hashIdx+2 >= len(body) {
		return false
	}
	return body[hashIdx+1].Kind == lexer.KindPercent && body[hashIdx+2].Kind == lexer.KindIntLiteral
}

// stringizeArg concatenates an argument's tokens with single spaces between
// non-adjacent tokens, wrapped in double quotes, per spec.md §4.4.
func stringizeArg(arg []lexer.Token, at lexer.Token) lexer.Token {
	var b strings.Builder
	b.WriteByte('"')
	for i, t := range arg {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(t.Text)
	}
	b.WriteByte('"')
	return lexer.Token{
		Kind:  lexer.KindStringLiteral,
		Text:  b.String(),
		Range: at.Range,
		Delta: at.Delta,
		Line:  at.Line,
		Col:   at.Col,
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
