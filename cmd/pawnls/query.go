package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jward/pawnls"
)

// findFile returns the FileId whose recorded path equals path exactly,
// failing if no file discovered during loadProject has that path. Recorded
// paths are absolute paths under the indexed directory; a relative argument
// is not joined to that directory, so it matches no file.
func findFile(e *pawnls.Engine, path string) (pawnls.FileId, error) {
	for _, kf := range e.Vfs().KnownFiles() {
		p, _ := e.Vfs().Path(kf.ID)
		if p == path {
			return kf.ID, nil
		}
	}
	return 0, fmt.Errorf("file not indexed: %s", path)
}

func parseOffset(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid offset %q: %w", s, err)
	}
	return n, nil
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <dir> <file> <offset>",
	Short: "Resolve the identifier at a byte offset into preprocessed text",
	Args:  cobra.ExactArgs(3),
	RunE:  runResolve,
}

func runResolve(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	offset, err := parseOffset(args[2])
	if err != nil {
		return outputError("resolve", err)
	}

	root, err := resolveTargetDir(args[:1])
	if err != nil {
		return outputError("resolve", err)
	}
	e, err := loadProject(ctx, root)
	if err != nil {
		return outputError("resolve", err)
	}
	file, err := findFile(e, args[1])
	if err != nil {
		return outputError("resolve", err)
	}

	res, err := e.Query().ResolveNameAt(ctx, file, offset)
	if err != nil {
		return outputError("resolve", err)
	}

	out := CLIResolution{Kind: resultKindString(res.Kind)}
	if res.Kind == pawnls.LocalBinding {
		out.FuncName = res.FuncName
	}
	if res.Kind == pawnls.GlobalItem {
		out.File, _ = e.Vfs().Path(res.File)
	}
	return outputResult("resolve", out)
}

var defCmd = &cobra.Command{
	Use:   "def <dir> <file> <offset>",
	Short: "Find the declaration site of the identifier at a byte offset",
	Args:  cobra.ExactArgs(3),
	RunE:  runDef,
}

func runDef(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	offset, err := parseOffset(args[2])
	if err != nil {
		return outputError("def", err)
	}

	root, err := resolveTargetDir(args[:1])
	if err != nil {
		return outputError("def", err)
	}
	e, err := loadProject(ctx, root)
	if err != nil {
		return outputError("def", err)
	}
	file, err := findFile(e, args[1])
	if err != nil {
		return outputError("def", err)
	}

	def, err := e.Query().DefAt(ctx, file, offset)
	if err != nil {
		return outputError("def", err)
	}
	if def == nil {
		return outputResult("def", nil)
	}
	path, _ := e.Vfs().Path(def.File)
	return outputResult("def", CLIDef{
		Kind:     resultKindString(def.Kind),
		Name:     def.Name,
		Location: CLILocation{File: path, Start: def.Range.Start, End: def.Range.End},
	})
}

var referencesCmd = &cobra.Command{
	Use:   "references <dir> <file> <offset>",
	Short: "Find every reference to the name declared at a byte offset",
	Args:  cobra.ExactArgs(3),
	RunE:  runReferences,
}

func runReferences(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	offset, err := parseOffset(args[2])
	if err != nil {
		return outputError("references", err)
	}

	root, err := resolveTargetDir(args[:1])
	if err != nil {
		return outputError("references", err)
	}
	e, err := loadProject(ctx, root)
	if err != nil {
		return outputError("references", err)
	}
	file, err := findFile(e, args[1])
	if err != nil {
		return outputError("references", err)
	}

	q := e.Query()
	def, err := q.DefAt(ctx, file, offset)
	if err != nil {
		return outputError("references", err)
	}
	if def == nil {
		return outputResult("references", []CLILocation{})
	}

	refs, err := q.References(ctx, *def)
	if err != nil {
		return outputError("references", err)
	}

	out := make([]CLILocation, 0, len(refs))
	for _, r := range refs {
		path, _ := e.Vfs().Path(r.File)
		out = append(out, CLILocation{File: path, Start: r.Range.Start, End: r.Range.End})
	}
	return outputResult("references", out)
}

var graphCmd = &cobra.Command{
	Use:   "graph <dir>",
	Short: "Print the project's include graph as an edge list",
	Args:  cobra.ExactArgs(1),
	RunE:  runGraph,
}

func runGraph(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	root, err := resolveTargetDir(args)
	if err != nil {
		return outputError("graph", err)
	}
	e, err := loadProject(ctx, root)
	if err != nil {
		return outputError("graph", err)
	}

	g, err := e.Query().Graph(ctx)
	if err != nil {
		return outputError("graph", err)
	}

	type edge struct {
		Source string `json:"source"`
		Target string `json:"target"`
	}
	var edges []edge
	for _, ed := range g.Edges {
		source, _ := e.Vfs().Path(ed.Source.File)
		target, _ := e.Vfs().Path(ed.Target.File)
		edges = append(edges, edge{Source: source, Target: target})
	}
	return outputResult("graph", edges)
}

func resultKindString(k pawnls.ResultKind) string {
	switch k {
	case pawnls.LocalBinding:
		return "local-binding"
	case pawnls.GlobalItem:
		return "global-item"
	default:
		return "not-found"
	}
}
