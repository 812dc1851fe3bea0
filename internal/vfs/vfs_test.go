package vfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetContentsInternsOnFirstWrite(t *testing.T) {
	v := New()
	id, changed := v.SetContents("a.sp", ExtensionScript, []byte("int x;"))
	assert.True(t, changed)
	assert.Equal(t, []byte("int x;"), v.Contents(id))

	path, ok := v.Path(id)
	require.True(t, ok)
	assert.Equal(t, "a.sp", path)
}

func TestSetContentsIsNoOpForIdenticalBytes(t *testing.T) {
	v := New()
	id, _ := v.SetContents("a.sp", ExtensionScript, []byte("int x;"))
	v.DrainChanges()

	_, changed := v.SetContents("a.sp", ExtensionScript, []byte("int x;"))
	assert.False(t, changed, "rewriting identical bytes must not register a change")

	changes := v.DrainChanges()
	assert.Empty(t, changes)
	assert.Equal(t, []byte("int x;"), v.Contents(id))
}

func TestSetContentsDetectsRealChange(t *testing.T) {
	v := New()
	id, _ := v.SetContents("a.sp", ExtensionScript, []byte("int x;"))
	v.DrainChanges()

	_, changed := v.SetContents("a.sp", ExtensionScript, []byte("int y;"))
	assert.True(t, changed)

	changes := v.DrainChanges()
	require.Len(t, changes, 1)
	assert.Equal(t, ChangeModified, changes[0].Kind)
	assert.Equal(t, id, changes[0].File)
}

func TestDeleteMarksFileGoneButKeepsIdentity(t *testing.T) {
	v := New()
	id, _ := v.SetContents("a.sp", ExtensionScript, []byte("int x;"))
	v.DrainChanges()

	deletedID, ok := v.Delete("a.sp")
	require.True(t, ok)
	assert.Equal(t, id, deletedID)
	assert.Nil(t, v.Contents(id))

	changes := v.DrainChanges()
	require.Len(t, changes, 1)
	assert.Equal(t, ChangeDeleted, changes[0].Kind)
}

func TestDeleteUnknownPathReturnsFalse(t *testing.T) {
	v := New()
	_, ok := v.Delete("nope.sp")
	assert.False(t, ok)
}

func TestDeleteTwiceIsNoOp(t *testing.T) {
	v := New()
	v.SetContents("a.sp", ExtensionScript, []byte("int x;"))
	v.Delete("a.sp")
	v.DrainChanges()

	_, changed := v.Delete("a.sp")
	assert.False(t, changed)
	assert.Empty(t, v.DrainChanges())
}

func TestKnownFilesExcludesDeleted(t *testing.T) {
	v := New()
	v.SetContents("a.sp", ExtensionScript, []byte("1"))
	v.SetContents("b.inc", ExtensionInclude, []byte("2"))
	v.Delete("a.sp")

	known := v.KnownFiles()
	require.Len(t, known, 1)
	assert.Equal(t, ExtensionInclude, known[0].Extension)
}

func TestRecreatingADeletedFileGetsChangeCreated(t *testing.T) {
	v := New()
	v.SetContents("a.sp", ExtensionScript, []byte("1"))
	v.Delete("a.sp")
	v.DrainChanges()

	_, changed := v.SetContents("a.sp", ExtensionScript, []byte("2"))
	assert.True(t, changed)

	changes := v.DrainChanges()
	require.Len(t, changes, 1)
	assert.Equal(t, ChangeCreated, changes[0].Kind)
}
