package pawnls

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLoader struct{}

func (nopLoader) ResolveInclude(anchorPath, path string, angle bool) (string, bool, bool) {
	return "", false, false
}
func (nopLoader) SourceRoots() []string { return nil }

func TestResolveNameAtFindsLocalBindingInnermostScope(t *testing.T) {
	// void f(int a) { { int a; a = 1; } a = 2; }
	// resolving "a" in "a = 1;" must yield the inner block's binding;
	// resolving "a" in "a = 2;" must yield the parameter.
	src := "void f(int a) { { int a; a = 1; } a = 2; }"
	e := New(nopLoader{})
	file := e.OpenFile("main.sp", true, []byte(src))
	q := e.Query()
	ctx := context.Background()

	innerAssign := indexOfNth(src, "a = 1", 0) // offset of the "a" in "a = 1;"
	res, err := q.ResolveNameAt(ctx, file, innerAssign)
	require.NoError(t, err)
	require.Equal(t, LocalBinding, res.Kind)

	innerDef, err := q.DefAt(ctx, file, innerAssign)
	require.NoError(t, err)
	require.NotNil(t, innerDef)

	outerAssign := indexOfNth(src, "a = 2", 0)
	outerDef, err := q.DefAt(ctx, file, outerAssign)
	require.NoError(t, err)
	require.NotNil(t, outerDef)

	assert.NotEqual(t, innerDef.Range, outerDef.Range, "inner and outer 'a' must resolve to different declarations")
}

func TestDefAtGlobalFunctionAcrossFiles(t *testing.T) {
	e := New(nopLoader{})
	ctx := context.Background()
	lib := e.OpenFile("lib.inc", false, []byte("int Shared = 1;"))
	q := e.Query()

	offset := indexOfNth("int Shared = 1;", "Shared", 0)
	res, err := q.ResolveNameAt(ctx, lib, offset)
	require.NoError(t, err)
	require.Equal(t, GlobalItem, res.Kind)

	def, err := q.DefAt(ctx, lib, offset)
	require.NoError(t, err)
	require.NotNil(t, def)
	assert.Equal(t, "Shared", def.Name)
}

func TestReferencesFindsGlobalUseAcrossFiles(t *testing.T) {
	e := New(nopLoader{})
	ctx := context.Background()
	e.OpenFile("lib.inc", false, []byte("int Shared = 1;"))
	e.OpenFile("main.sp", true, []byte("void f() { Shared = 2; }"))
	q := e.Query()

	libID := findKnownFile(t, e, "lib.inc")
	def, err := q.DefAt(ctx, libID, indexOfNth("int Shared = 1;", "Shared", 0))
	require.NoError(t, err)
	require.NotNil(t, def)

	refs, err := q.References(ctx, *def)
	require.NoError(t, err)
	assert.NotEmpty(t, refs, "Shared's use inside f() must be found")
}

func findKnownFile(t *testing.T, e *Engine, path string) FileId {
	t.Helper()
	for _, kf := range e.Vfs().KnownFiles() {
		p, _ := e.Vfs().Path(kf.ID)
		if p == path {
			return kf.ID
		}
	}
	t.Fatalf("file %q not known", path)
	return 0
}

func indexOfNth(s, substr string, n int) int {
	idx := -1
	start := 0
	for i := 0; i <= n; i++ {
		rel := indexOf(s[start:], substr)
		if rel < 0 {
			return -1
		}
		idx = start + rel
		start = idx + 1
	}
	return idx
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
