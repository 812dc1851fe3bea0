package lexer

import "testing"

func significant(toks []Token) []Token {
	var out []Token
	for _, t := range toks {
		if !t.IsTrivia && t.Kind != KindEOF {
			out = append(out, t)
		}
	}
	return out
}

func TestTokenizeRangesMonotone(t *testing.T) {
	toks := Tokenize([]byte("#define FOO 1\nint x = FOO;\n"))
	prevEnd := 0
	for _, tok := range toks {
		if tok.Range.Start < prevEnd {
			t.Fatalf("token range not monotone: %+v after prevEnd=%d", tok, prevEnd)
		}
		prevEnd = tok.Range.End
	}
}

func TestTokenizeIdentifiersAndKeywords(t *testing.T) {
	toks := significant(Tokenize([]byte("defined true false foo123")))
	want := []Kind{KindDefined, KindTrue, KindFalse, KindIdent}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(want), toks)
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: got kind %v, want %v", i, toks[i].Kind, k)
		}
	}
}

func TestLineContinuationIsTrivia(t *testing.T) {
	toks := Tokenize([]byte("#define FOO 1 + \\\n2\n"))
	for _, tok := range toks {
		if tok.Kind == KindLineCont && !tok.IsTrivia {
			t.Fatalf("line continuation must be trivia")
		}
	}
}

func TestDirectiveNewlineIsSignificant(t *testing.T) {
	toks := Tokenize([]byte("#define FOO 1\nint x;\n"))
	foundSignificantNewline := false
	for _, tok := range toks {
		if tok.Kind == KindNewline && !tok.IsTrivia {
			foundSignificantNewline = true
		}
	}
	if !foundSignificantNewline {
		t.Fatalf("expected the directive-terminating newline to be significant")
	}
}

func TestBlockCommentSpansTracked(t *testing.T) {
	toks := Tokenize([]byte("/* line1\nline2\nline3 */x"))
	var comment Token
	for _, tok := range toks {
		if tok.Kind == KindBlockComment {
			comment = tok
		}
	}
	if comment.Text == "" {
		t.Fatalf("expected a block comment token")
	}
	newlines := 0
	for _, c := range comment.Text {
		if c == '\n' {
			newlines++
		}
	}
	if newlines != 2 {
		t.Fatalf("expected 2 embedded newlines in block comment, got %d", newlines)
	}
}

func TestHexBinaryLiterals(t *testing.T) {
	toks := significant(Tokenize([]byte("0x1F 0b101 42")))
	if len(toks) != 3 {
		t.Fatalf("got %d tokens, want 3", len(toks))
	}
	for _, tok := range toks {
		if tok.Kind != KindIntLiteral {
			t.Errorf("expected int literal, got %v (%q)", tok.Kind, tok.Text)
		}
	}
}
