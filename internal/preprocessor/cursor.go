package preprocessor

import "github.com/jward/pawnls/internal/lexer"

// cursor walks a slice of already-lexed significant (non-trivia) tokens,
// letting macro expansion "read ahead" to collect function-like macro
// arguments the same way the original scans the live lexer stream
// (original_source crates/sourcepawn_preprocessor/src/macros.rs
// collect_arguments). Trivia is dropped before the cursor is built; deltas
// on each token already encode the spacing that trivia would have carried.
type cursor struct {
	toks []lexer.Token
	pos  int
}

func newCursor(toks []lexer.Token) *cursor {
	return &cursor{toks: toks}
}

func (c *cursor) next() (lexer.Token, bool) {
	if c.pos >= len(c.toks) {
		return lexer.Token{}, false
	}
	t := c.toks[c.pos]
	c.pos++
	return t, true
}

func (c *cursor) peek() (lexer.Token, bool) {
	if c.pos >= len(c.toks) {
		return lexer.Token{}, false
	}
	return c.toks[c.pos], true
}

func (c *cursor) rest() []lexer.Token {
	return c.toks[c.pos:]
}

// significantTokens strips trivia from a raw token slice, keeping the
// EOF-terminated semantics (EOF is dropped too; callers use len()).
func significantTokens(toks []lexer.Token) []lexer.Token {
	out := make([]lexer.Token, 0, len(toks))
	for _, t := range toks {
		if t.IsTrivia || t.Kind == lexer.KindEOF {
			continue
		}
		out = append(out, t)
	}
	return out
}
