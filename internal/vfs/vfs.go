// Package vfs owns file identity and content for the analysis engine.
// Every other component reads file bytes only through the query engine's
// view of the Vfs; the Vfs itself never reads from disk (that is the
// FileLoader's job, which lives above this package).
package vfs

import (
	"sync"

	"github.com/minio/highwayhash"
)

// FileId is an opaque, interned file identity. It is never reused within a
// session, even if the underlying path is deleted and re-created.
type FileId int32

// Extension tags the kind of a SourcePawn source file.
type Extension uint8

const (
	ExtensionScript Extension = iota // .sp
	ExtensionInclude                 // .inc
)

func (e Extension) String() string {
	if e == ExtensionInclude {
		return "include"
	}
	return "script"
}

// ChangeKind classifies a single change-log entry.
type ChangeKind uint8

const (
	ChangeCreated ChangeKind = iota
	ChangeModified
	ChangeDeleted
)

// ChangeEvent is one entry in the VFS change log, read back through
// DrainChanges.
type ChangeEvent struct {
	File FileId
	Kind ChangeKind
}

// hashKey is a fixed, arbitrary 32-byte key for the HighwayHash content
// digest used to detect no-op writes. It need not be secret: it only has
// to be stable across a process so that repeated hashing of identical
// bytes produces identical digests.
var hashKey = [32]byte{
	0x0d, 0x17, 0x2b, 0x4a, 0x6e, 0x8c, 0xa1, 0xc3,
	0xe5, 0x09, 0x2d, 0x4f, 0x71, 0x93, 0xb5, 0xd7,
	0xf9, 0x1b, 0x3d, 0x5f, 0x81, 0xa3, 0xc5, 0xe7,
	0x09, 0x2b, 0x4d, 0x6f, 0x91, 0xb3, 0xd5, 0xf7,
}

type fileEntry struct {
	path      string
	extension Extension
	content   []byte
	digest    [highwayhash.Size]byte
	deleted   bool
}

// Vfs interns file identities and owns their byte content. It is the only
// component permitted to hold a canonical copy of file bytes; every other
// component reads content through a query that reads the Vfs.
type Vfs struct {
	mu      sync.Mutex
	byPath  map[string]FileId
	files   map[FileId]*fileEntry
	nextID  FileId
	changes []ChangeEvent
}

// New creates an empty Vfs.
func New() *Vfs {
	return &Vfs{
		byPath: make(map[string]FileId),
		files:  make(map[FileId]*fileEntry),
	}
}

// Intern returns the stable FileId for path, allocating a new one on first
// sight. Interning alone does not create an entry with content; content is
// set separately via SetContents so that discovery (knowing a path exists)
// and loading (having its bytes) remain distinct steps, matching how the
// Engine's file-walk step discovers paths before any bytes are read.
func (v *Vfs) Intern(path string, ext Extension) FileId {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.internLocked(path, ext)
}

func (v *Vfs) internLocked(path string, ext Extension) FileId {
	if id, ok := v.byPath[path]; ok {
		return id
	}
	v.nextID++
	id := v.nextID
	v.byPath[path] = id
	v.files[id] = &fileEntry{path: path, extension: ext}
	return id
}

// SetContents replaces the bytes for path (interning it if new) and reports
// whether the content actually changed. An identical-bytes write is a
// documented no-op: it reports false and does not append a change event.
func (v *Vfs) SetContents(path string, ext Extension, content []byte) (FileId, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	id := v.internLocked(path, ext)
	entry := v.files[id]
	digest := highwayhash.Sum(content, hashKey[:])

	wasDeleted := entry.deleted
	if !wasDeleted && entry.digest == digest && entry.content != nil {
		return id, false
	}

	entry.content = content
	entry.digest = digest
	entry.deleted = false

	kind := ChangeModified
	if wasDeleted || entry.content == nil {
		kind = ChangeCreated
	}
	v.changes = append(v.changes, ChangeEvent{File: id, Kind: kind})
	return id, true
}

// Delete marks path's content as gone. Contents(id) subsequently returns an
// empty slice, matching the "contents for a deleted file is empty"
// invariant. The FileId remains interned and is never reused.
func (v *Vfs) Delete(path string) (FileId, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	id, ok := v.byPath[path]
	if !ok {
		return 0, false
	}
	entry := v.files[id]
	if entry.deleted {
		return id, false
	}
	entry.deleted = true
	entry.content = nil
	v.changes = append(v.changes, ChangeEvent{File: id, Kind: ChangeDeleted})
	return id, true
}

// Contents returns the current bytes for id, or nil if id is unknown or
// its file has been deleted.
func (v *Vfs) Contents(id FileId) []byte {
	v.mu.Lock()
	defer v.mu.Unlock()
	entry, ok := v.files[id]
	if !ok || entry.deleted {
		return nil
	}
	return entry.content
}

// Path returns the path interned for id, and whether id is known.
func (v *Vfs) Path(id FileId) (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	entry, ok := v.files[id]
	if !ok {
		return "", false
	}
	return entry.path, true
}

// Extension returns the extension tag recorded for id.
func (v *Vfs) Extension(id FileId) (Extension, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	entry, ok := v.files[id]
	if !ok {
		return 0, false
	}
	return entry.extension, true
}

// KnownFiles returns every interned, non-deleted (FileId, Extension) pair.
// Order is unspecified; callers that need determinism should sort.
func (v *Vfs) KnownFiles() []KnownFile {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]KnownFile, 0, len(v.files))
	for id, entry := range v.files {
		if entry.deleted {
			continue
		}
		out = append(out, KnownFile{ID: id, Extension: entry.extension})
	}
	return out
}

// KnownFile pairs an interned FileId with its extension tag.
type KnownFile struct {
	ID        FileId
	Extension Extension
}

// DrainChanges returns and clears the accumulated change log.
func (v *Vfs) DrainChanges() []ChangeEvent {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := v.changes
	v.changes = nil
	return out
}
