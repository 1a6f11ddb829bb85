// Package model defines core data structures for importmap.
package model

import "slices"

// Graph is the import graph collected by one analysis run. Every path is
// relative to the project root and slash-separated.
type Graph struct {
	// Imports maps a file to the project files it imports, in match order.
	// A file importing the same target twice lists it twice.
	Imports map[string][]string
	// ImportedBy is the transpose of Imports.
	ImportedBy map[string][]string
	// External maps a file to the sorted, deduplicated external packages it
	// references.
	External map[string][]string

	// Sources lists the keys of Imports in the order they were added.
	Sources []string
	// Targets lists the keys of ImportedBy in first-insertion order.
	Targets []string
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		Imports:    make(map[string][]string),
		ImportedBy: make(map[string][]string),
		External:   make(map[string][]string),
	}
}

// AddFile records the imports of one file. Files with neither internal nor
// external imports are not recorded. Adding a path again appends to its
// existing entries.
func (g *Graph) AddFile(path string, internal, external []string) {
	if len(internal) == 0 && len(external) == 0 {
		return
	}
	if _, ok := g.Imports[path]; !ok {
		g.Sources = append(g.Sources, path)
	}
	g.Imports[path] = append(g.Imports[path], internal...)
	if g.External[path] == nil {
		g.External[path] = []string{}
	}
	g.External[path] = mergeSorted(g.External[path], external)

	for _, target := range internal {
		if _, ok := g.ImportedBy[target]; !ok {
			g.Targets = append(g.Targets, target)
		}
		g.ImportedBy[target] = append(g.ImportedBy[target], path)
	}
}

// Empty reports whether no file with imports was recorded.
func (g *Graph) Empty() bool {
	return g == nil || len(g.Imports) == 0
}

// OrderedSources returns the keys of Imports in insertion order. Graphs
// assembled by hand without Sources fall back to sorted order.
func (g *Graph) OrderedSources() []string {
	if len(g.Sources) == len(g.Imports) {
		return g.Sources
	}
	return sortedKeys(g.Imports)
}

// OrderedTargets returns the keys of ImportedBy in first-insertion order,
// or sorted when Targets was not maintained.
func (g *Graph) OrderedTargets() []string {
	if len(g.Targets) == len(g.ImportedBy) {
		return g.Targets
	}
	return sortedKeys(g.ImportedBy)
}

// CoreFile is one entry of the centrality ranking.
type CoreFile struct {
	Path      string
	Importers int
}

// AnalysisResult is the snapshot returned by one full analysis run.
type AnalysisResult struct {
	Root      string
	Files     []string
	Graph     *Graph
	CoreFiles []CoreFile
	Cycles    [][]string
	Orphans   []string
	Ranks     map[string]float64
}

func mergeSorted(dst, add []string) []string {
	for _, s := range add {
		if i, found := slices.BinarySearch(dst, s); !found {
			dst = slices.Insert(dst, i, s)
		}
	}
	return dst
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
