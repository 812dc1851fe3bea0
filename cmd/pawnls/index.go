package main

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jward/pawnls"
)

// skipDirs are directories never descended into by walkListFiles, per the
// teacher's equivalent indexing fallback.
var skipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	"obj":          true,
}

func hasSourceExt(path string) (isScript bool, ok bool) {
	switch filepath.Ext(path) {
	case ".sp":
		return true, true
	case ".inc":
		return false, true
	default:
		return false, false
	}
}

// gitListFiles uses git ls-files to discover tracked and untracked (but not
// ignored) files under root, the way the teacher's engine.go preferred
// .gitignore-aware discovery over a bare filesystem walk.
func gitListFiles(root string) ([]string, error) {
	cmd := exec.Command("git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git ls-files: %w", err)
	}

	var paths []string
	for _, line := range strings.Split(stdout.String(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		abs := filepath.Join(root, line)
		if _, ok := hasSourceExt(abs); ok {
			paths = append(paths, abs)
		}
	}
	return paths, nil
}

// walkListFiles discovers files by walking the filesystem, the fallback
// used when root is not a git repository, skipping hidden and excluded
// directories.
func walkListFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if strings.HasPrefix(name, ".") || skipDirs[name] {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := hasSourceExt(path); ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}
	return paths, nil
}

// listProjectFiles discovers a project's SourcePawn files, preferring
// .gitignore-aware git ls-files and falling back to a plain walk.
func listProjectFiles(root string) ([]string, error) {
	paths, err := gitListFiles(root)
	if err == nil {
		return paths, nil
	}
	return walkListFiles(root)
}

// loadProject builds an Engine over root's files and warms the query
// engine's item-tree cache for every discovered file in parallel, using
// golang.org/x/sync/errgroup the way the teacher's extraction pipeline
// fanned work out across a worker pool.
func loadProject(ctx context.Context, root string) (*pawnls.Engine, error) {
	cfg, err := loadProjectConfig(root)
	if err != nil {
		return nil, err
	}

	loader := newDiskLoader(ctx, cfg.SourceRoots)
	e := pawnls.New(loader)
	loader.bind(e.Vfs())

	paths, err := listProjectFiles(root)
	if err != nil {
		return nil, err
	}

	fileIDs := make([]pawnls.FileId, 0, len(paths))
	for _, p := range paths {
		content, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		isScript, _ := hasSourceExt(p)
		fileIDs = append(fileIDs, e.OpenFile(p, isScript, content))
	}

	g, gctx := errgroup.WithContext(ctx)
	q := e.Query()
	for _, id := range fileIDs {
		id := id
		g.Go(func() error {
			_, err := q.ItemTree(gctx, id)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("warming item trees: %w", err)
	}

	return e, nil
}
