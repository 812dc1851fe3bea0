package preprocessor

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/pawnls/internal/diag"
	"github.com/jward/pawnls/internal/lexer"
)

func sigTexts(line string) []string {
	toks := significantTokens(lexer.Tokenize([]byte(line)))
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Text
	}
	return out
}

func outputLines(t *testing.T, res *Result) []string {
	t.Helper()
	return strings.Split(res.Text, "\n")
}

func TestObjectLikeDefineColumnPreservation(t *testing.T) {
	src := "#define FOO 1\nint x = FOO;"
	res := Run([]byte(src), "main.sp", nil)

	lines := outputLines(t, res)
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Equal(t, "int x = 1  ;", lines[1])
	assert.Equal(t, []string{"int", "x", "=", "1", ";"}, sigTexts(lines[1]))
}

func TestFunctionLikeStringisation(t *testing.T) {
	src := "#define S(%1) #%1\nchar c[] = S(hello);"
	res := Run([]byte(src), "main.sp", nil)

	lines := outputLines(t, res)
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Equal(t, []string{"char", "c", "[", "]", "=", `"hello"`, ";"}, sigTexts(lines[1]))
}

func TestConditionalCompilation(t *testing.T) {
	src := "#define A\n#if defined A\nint x;\n#else\nint y;\n#endif"
	res := Run([]byte(src), "main.sp", nil)

	assert.Contains(t, res.Text, "x")
	assert.NotContains(t, res.Text, "int y;")

	inLines := splitLines([]byte(src))
	outLines := outputLines(t, res)
	assert.Equal(t, len(inLines), len(outLines))
}

func TestSelfReferentialMacroTerminates(t *testing.T) {
	src := "#define FOO FOO\nint x = FOO;"
	res := Run([]byte(src), "main.sp", nil)

	lines := outputLines(t, res)
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Equal(t, []string{"int", "x", "=", "FOO", ";"}, sigTexts(lines[1]))

	for _, d := range res.Diagnostics {
		assert.NotEqual(t, diag.UnresolvedMacro, d.Kind)
	}
}

func TestUnresolvedIncludeDiagnostic(t *testing.T) {
	src := `#include "nope.inc"`
	res := Run([]byte(src), "main.sp", nil)

	require.Len(t, res.Unresolved, 1)
	assert.Equal(t, "nope.inc", res.Unresolved[0].Path)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, diag.UnresolvedInclude, res.Diagnostics[0].Kind)
}

func TestObjectLikeDefineRecordsSourceMapOffset(t *testing.T) {
	src := "#define FOO 1234\nint x = FOO;"
	res := Run([]byte(src), "main.sp", nil)

	got := res.SourceMap.OffsetsForLine(1)
	require.Len(t, got, 1)

	want := []Offset{{
		Line:             1,
		OriginalColStart: 8,
		OriginalColEnd:   11,
		ProducingMacro:   "FOO",
	}}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(Offset{}, "PreprocessedColStart", "PreprocessedColEnd", "Diff", "ArgsDiff")); diff != "" {
		t.Errorf("source map offset mismatch (-want +got):\n%s", diff)
	}
}

func TestTryIncludeFailsSilently(t *testing.T) {
	src := `#tryinclude "nope.inc"`
	res := Run([]byte(src), "main.sp", nil)

	require.Len(t, res.Unresolved, 1)
	assert.Empty(t, res.Diagnostics)
}

func TestUndefRemovesMacro(t *testing.T) {
	src := "#define A 1\n#undef A\n#if defined A\nint x;\n#else\nint y;\n#endif"
	res := Run([]byte(src), "main.sp", nil)
	assert.Contains(t, res.Text, "y")
	assert.NotContains(t, res.Text, "int x;")
}

func TestElseifChain(t *testing.T) {
	src := "#define B\n#if defined A\nint a;\n#elseif defined B\nint b;\n#else\nint c;\n#endif"
	res := Run([]byte(src), "main.sp", nil)
	assert.Contains(t, res.Text, "b")
	assert.NotContains(t, res.Text, "int a;")
	assert.NotContains(t, res.Text, "int c;")
}

func TestEndinputStopsProcessing(t *testing.T) {
	src := "int x;\n#endinput\nint y;"
	res := Run([]byte(src), "main.sp", nil)
	assert.Contains(t, res.Text, "x")
	assert.NotContains(t, res.Text, "y")
}

func TestPreprocessingIsIdempotentOnPlainText(t *testing.T) {
	src := "int x = 1;\nint y = 2;"
	res := Run([]byte(src), "main.sp", nil)
	assert.Equal(t, src, strings.TrimRight(res.Text, "\n"))
}

func TestSourceMapUnchangedOutsideExpansion(t *testing.T) {
	src := "#define FOO 1\nint x = FOO;"
	res := Run([]byte(src), "main.sp", nil)

	p := res.SourceMap.OriginalPosOf(Position{Line: 1, Col: 0})
	assert.Equal(t, Position{Line: 1, Col: 0}, p)
}

func TestSourceMapNeverPanicsOnUnknownLine(t *testing.T) {
	res := Run([]byte("int x;"), "main.sp", nil)
	assert.NotPanics(t, func() {
		res.SourceMap.OriginalPosOf(Position{Line: 99, Col: 5})
	})
}

type stubFiles map[string]bool // path -> isScript

func (s stubFiles) Exists(p string) (bool, bool) {
	isScript, ok := s[p]
	return isScript, ok
}

type stubRoots []string

func (s stubRoots) Roots() []string { return s }

func TestPathResolverQuotedIncludeOrder(t *testing.T) {
	files := stubFiles{"src/include/lib.inc": false}
	r := &PathResolver{Files: files, Roots: stubRoots{"src"}}

	resolved, isScript, ok := r.Resolve("src/plugin.sp", "lib.inc", false)
	require.True(t, ok)
	assert.False(t, isScript)
	assert.Equal(t, "src/include/lib.inc", resolved)
}

func TestPathResolverAngleSkipsAnchorDir(t *testing.T) {
	files := stubFiles{"src/plugin2.inc": false}
	r := &PathResolver{Files: files, Roots: stubRoots{"root"}}

	_, _, ok := r.Resolve("src/plugin.sp", "plugin2.inc", true)
	assert.False(t, ok, "angle includes must not search the anchor's own directory")
}

func TestPathResolverAppendsIncSuffix(t *testing.T) {
	files := stubFiles{"src/lib.inc": false}
	r := &PathResolver{Files: files, Roots: nil}

	resolved, _, ok := r.Resolve("src/plugin.sp", "lib", false)
	require.True(t, ok)
	assert.Equal(t, "src/lib.inc", resolved)
}

func TestPathResolverRespectsSpSuffix(t *testing.T) {
	files := stubFiles{"src/other.sp": true}
	r := &PathResolver{Files: files}

	resolved, isScript, ok := r.Resolve("src/plugin.sp", "other.sp", false)
	require.True(t, ok)
	assert.True(t, isScript)
	assert.Equal(t, "src/other.sp", resolved)
}
