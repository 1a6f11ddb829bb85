// Package render turns an analysis result into text for people and
// language models: an adjacency listing and a Mermaid diagram.
package render

import (
	"fmt"
	"slices"
	"strings"

	"github.com/phobologic/importmap/internal/graph"
	"github.com/phobologic/importmap/internal/model"
)

// DefaultDiagramFiles caps the number of nodes in a diagram.
const DefaultDiagramFiles = 20

const (
	maxLabelLen      = 30
	importsPerNode   = 3
	noImportsText    = "No imports found."
	noImportsMermaid = "```mermaid\ngraph TD;\n  A[No imports found];\n```"
)

// AdjacencyList renders the dependency, reverse dependency, core file and
// cycle sections, separated by blank lines. The cycle section is omitted
// when there are no cycles.
func AdjacencyList(res *model.AnalysisResult) string {
	if res == nil || res.Graph.Empty() {
		return noImportsText
	}
	g := res.Graph

	lines := []string{"FILE DEPENDENCIES:"}
	for _, file := range sortedKeys(g.Imports) {
		imports := g.Imports[file]
		external := g.External[file]
		if len(imports) == 0 && len(external) == 0 {
			continue
		}
		parts := slices.Clone(imports)
		for _, pkg := range external {
			parts = append(parts, "external:"+pkg)
		}
		lines = append(lines, fmt.Sprintf("%s -> %s", file, strings.Join(parts, ", ")))
	}

	lines = append(lines, "", "IMPORTED BY:")
	for _, file := range sortedKeys(g.ImportedBy) {
		if importers := g.ImportedBy[file]; len(importers) > 0 {
			lines = append(lines, fmt.Sprintf("%s <- %s", file, strings.Join(importers, ", ")))
		}
	}

	lines = append(lines, "", "CORE FILES (most imported):")
	for i, cf := range res.CoreFiles {
		lines = append(lines, fmt.Sprintf("%d. %s (imported by %d files)", i+1, cf.Path, cf.Importers))
	}

	if len(res.Cycles) > 0 {
		lines = append(lines, "", "CIRCULAR DEPENDENCIES:")
		for i, cycle := range res.Cycles {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, strings.Join(cycle, " -> ")))
		}
	}

	return strings.Join(lines, "\n")
}

// Mermaid renders a top-down Mermaid graph of at most maxFiles nodes: the
// most imported files plus up to three of each one's own imports. Edges
// whose endpoints did not make the cut are left out. A maxFiles below one
// selects DefaultDiagramFiles.
func Mermaid(res *model.AnalysisResult, maxFiles int) string {
	if res == nil || res.Graph.Empty() {
		return noImportsMermaid
	}
	if maxFiles < 1 {
		maxFiles = DefaultDiagramFiles
	}
	g := res.Graph

	var nodes []string
	seen := make(map[string]struct{})
	add := func(file string) {
		if _, ok := seen[file]; !ok {
			seen[file] = struct{}{}
			nodes = append(nodes, file)
		}
	}
	ranked := graph.Centrality(g)
	if len(ranked) > maxFiles {
		ranked = ranked[:maxFiles]
	}
	for _, cf := range ranked {
		add(cf.Path)
		imports := g.Imports[cf.Path]
		for _, imported := range imports[:min(len(imports), importsPerNode)] {
			add(imported)
		}
	}
	if len(nodes) > maxFiles {
		nodes = nodes[:maxFiles]
	}

	ids := make(map[string]string, len(nodes))
	lines := []string{"```mermaid", "graph TD;"}
	for i, file := range nodes {
		ids[file] = fmt.Sprintf("N%d", i)
		lines = append(lines, fmt.Sprintf("  %s[\"%s\"];", ids[file], Label(file)))
	}

	for _, file := range g.OrderedSources() {
		from, ok := ids[file]
		if !ok {
			continue
		}
		for _, imported := range g.Imports[file] {
			if to, ok := ids[imported]; ok {
				lines = append(lines, fmt.Sprintf("  %s --> %s;", from, to))
			}
		}
	}

	lines = append(lines, "```")
	return strings.Join(lines, "\n")
}

// Label shortens paths longer than 30 characters with more than two
// segments to first/.../last.
func Label(path string) string {
	if len(path) <= maxLabelLen {
		return path
	}
	parts := strings.Split(path, "/")
	if len(parts) <= 2 {
		return path
	}
	return parts[0] + "/.../" + parts[len(parts)-1]
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// OrphanList renders the files nothing imports, one per line under an
// ORPHANED FILES header. It returns "" when there are none.
func OrphanList(res *model.AnalysisResult) string {
	if res == nil || len(res.Orphans) == 0 {
		return ""
	}
	lines := []string{"ORPHANED FILES:"}
	for _, o := range res.Orphans {
		lines = append(lines, "- "+o)
	}
	return strings.Join(lines, "\n")
}
