package pawnls

import "github.com/jward/pawnls/internal/vfs"

// FileId identifies one known file, stable for the Engine's lifetime.
type FileId = vfs.FileId
