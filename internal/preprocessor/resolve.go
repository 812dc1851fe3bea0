package preprocessor

import (
	"path"
	"strings"
)

// FileExists answers whether a candidate resolved path names a known file,
// and whether it is a script (.sp) file — the minimal query the preprocessor
// needs from whatever backs the project's files (normally the vfs package),
// kept as an interface so this package has no dependency on vfs.
type FileExists interface {
	// Exists reports whether p (a clean, slash-separated path) is known, and
	// if so whether it is a script file as opposed to an include file.
	Exists(p string) (isScript bool, ok bool)
}

// SourceRoots supplies the project's configured source roots, each of which
// contributes an "include/" search directory per spec.md §6.
type SourceRoots interface {
	Roots() []string
}

// PathResolver implements Resolver against a FileExists + SourceRoots pair,
// per the resolution path contract in spec.md §6.
type PathResolver struct {
	Files FileExists
	Roots SourceRoots
	// Prelude, if set, is consulted by ResolvePrelude.
	Prelude FileExists
}

var _ Resolver = (*PathResolver)(nil)

const preludeName = "sourcepawn.inc"

func (p *PathResolver) Resolve(anchorPath, target string, angle bool) (string, bool, bool) {
	candidates := p.candidateDirs(anchorPath, angle)
	names := candidateNames(target)

	for _, dir := range candidates {
		for _, name := range names {
			full := joinClean(dir, name)
			if isScript, ok := p.Files.Exists(full); ok {
				return full, isScript, true
			}
		}
	}
	return "", false, false
}

func (p *PathResolver) ResolvePrelude() ([]byte, string, bool) {
	// The prelude's content is not owned by this package; callers that want
	// auto-prelude behavior wire a FileLoader-backed Resolver that knows how
	// to fetch sourcepawn.inc's bytes. A bare PathResolver (as used directly
	// in unit tests) has none.
	return nil, "", false
}

func (p *PathResolver) candidateDirs(anchorPath string, angle bool) []string {
	anchorDir := path.Dir(anchorPath)
	var dirs []string
	if !angle {
		dirs = append(dirs, anchorDir, joinClean(anchorDir, "include"))
	}
	if p.Roots != nil {
		for _, root := range p.Roots.Roots() {
			dirs = append(dirs, joinClean(root, "include"))
		}
	}
	return dirs
}

func candidateNames(target string) []string {
	if strings.HasSuffix(target, ".sp") || strings.HasSuffix(target, ".inc") {
		return []string{target}
	}
	return []string{target + ".inc", target}
}

func joinClean(dir, name string) string {
	return path.Clean(path.Join(dir, name))
}
