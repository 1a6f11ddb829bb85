// Package ranking narrows an analysis to the files a reader cares about.
package ranking

import (
	"slices"
	"sort"
	"strings"

	"github.com/phobologic/importmap/internal/graph"
	"github.com/phobologic/importmap/internal/model"
)

// SelectFiles returns a new result with only the maxFiles highest-ranked
// files and the import edges between them. Cycles are recomputed over those
// edges. If maxFiles is <= 0 or covers every file, res is returned unchanged.
func SelectFiles(res *model.AnalysisResult, maxFiles int) *model.AnalysisResult {
	if maxFiles <= 0 || maxFiles >= len(res.Files) {
		return res
	}

	ordered := slices.Clone(res.Files)
	sort.SliceStable(ordered, func(i, j int) bool {
		ri, rj := res.Ranks[ordered[i]], res.Ranks[ordered[j]]
		if ri != rj {
			return ri > rj
		}
		return ordered[i] < ordered[j]
	})

	selected := toSet(ordered[:maxFiles])
	sub := subset(res, selected,
		func(src string) bool { return has(selected, src) },
		func(src, tgt string) bool { return has(selected, src) && has(selected, tgt) },
	)

	// Importers outside the selection still count, so orphans carry over.
	for _, o := range res.Orphans {
		if has(selected, o) {
			sub.Orphans = append(sub.Orphans, o)
		}
	}
	return sub
}

// FilterByFile returns a new result containing only files whose path
// contains substr (case-insensitive) and every import edge touching them.
// Cycles and orphans are recomputed over the filtered graph.
func FilterByFile(res *model.AnalysisResult, substr string) *model.AnalysisResult {
	lower := strings.ToLower(substr)

	matched := make(map[string]struct{})
	for _, f := range res.Files {
		if strings.Contains(strings.ToLower(f), lower) {
			matched[f] = struct{}{}
		}
	}

	sub := subset(res, matched,
		func(src string) bool { return has(matched, src) },
		func(src, tgt string) bool { return has(matched, src) || has(matched, tgt) },
	)
	sub.Orphans = graph.FindOrphans(sub.Graph, sub.Files)
	return sub
}

// subset rebuilds res over the kept files. keepSource decides whether a
// file's external packages survive, keepEdge filters internal imports.
// Orphans are left to the caller.
func subset(
	res *model.AnalysisResult,
	files map[string]struct{},
	keepSource func(src string) bool,
	keepEdge func(src, tgt string) bool,
) *model.AnalysisResult {
	g := model.NewGraph()
	if res.Graph != nil {
		for _, src := range res.Graph.OrderedSources() {
			var internal []string
			for _, tgt := range res.Graph.Imports[src] {
				if keepEdge(src, tgt) {
					internal = append(internal, tgt)
				}
			}
			var external []string
			if keepSource(src) {
				external = res.Graph.External[src]
			}
			g.AddFile(src, internal, external)
		}
	}

	var kept []string
	for _, f := range res.Files {
		if has(files, f) {
			kept = append(kept, f)
		}
	}

	ranks := make(map[string]float64)
	for path, r := range res.Ranks {
		if has(files, path) {
			ranks[path] = r
		}
	}

	return &model.AnalysisResult{
		Root:      res.Root,
		Files:     kept,
		Graph:     g,
		CoreFiles: graph.CoreFiles(g, len(res.CoreFiles)),
		Cycles:    graph.DetectCycles(g),
		Ranks:     ranks,
	}
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, s := range items {
		set[s] = struct{}{}
	}
	return set
}

func has(set map[string]struct{}, s string) bool {
	_, ok := set[s]
	return ok
}
