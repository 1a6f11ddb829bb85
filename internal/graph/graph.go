// Package graph builds the file import graph and analyzes its structure:
// centrality, cycles, orphans and PageRank.
package graph

import (
	"math"
	"slices"
	"sort"

	"github.com/phobologic/importmap/internal/model"
)

// DefaultCoreFiles is how many entries the core-file ranking keeps.
const DefaultCoreFiles = 10

// Centrality ranks every imported file by the number of importer entries
// recorded against it, highest first. Repeated imports from the same file
// count each time. Ties keep the order in which targets were first seen.
func Centrality(g *model.Graph) []model.CoreFile {
	if g == nil {
		return nil
	}
	targets := g.OrderedTargets()
	ranked := make([]model.CoreFile, 0, len(targets))
	for _, path := range targets {
		ranked = append(ranked, model.CoreFile{Path: path, Importers: len(g.ImportedBy[path])})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Importers > ranked[j].Importers
	})
	return ranked
}

// CoreFiles returns the first n entries of the centrality ranking, or all of
// them when fewer files have importers.
func CoreFiles(g *model.Graph, n int) []model.CoreFile {
	ranked := Centrality(g)
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// PageRank scores every node reachable from files or the graph. Each import
// occurrence is one edge from importer to imported file.
func PageRank(g *model.Graph, files []string) map[string]float64 {
	nodes := make(map[string]struct{})
	for _, f := range files {
		nodes[f] = struct{}{}
	}

	outEdges := make(map[string][]string)
	outDegree := make(map[string]int)
	if g != nil {
		for _, src := range sortedKeys(g.Imports) {
			nodes[src] = struct{}{}
			for _, tgt := range g.Imports[src] {
				nodes[tgt] = struct{}{}
				outEdges[src] = append(outEdges[src], tgt)
				outDegree[src]++
			}
		}
	}

	if len(nodes) == 0 {
		return nil
	}
	if len(outEdges) == 0 {
		uniform := 1.0 / float64(len(nodes))
		ranks := make(map[string]float64, len(nodes))
		for node := range nodes {
			ranks[node] = uniform
		}
		return ranks
	}

	return pageRank(nodes, outEdges, outDegree, 0.85, 100, 1e-6)
}

func pageRank(
	nodes map[string]struct{},
	outEdges map[string][]string,
	outDegree map[string]int,
	alpha float64,
	maxIter int,
	tol float64,
) map[string]float64 {
	// Iterate in sorted order so repeated runs produce identical floats.
	order := make([]string, 0, len(nodes))
	for node := range nodes {
		order = append(order, node)
	}
	slices.Sort(order)
	sources := sortedKeys(outEdges)

	n := len(order)
	rank := make(map[string]float64, n)
	initial := 1.0 / float64(n)
	for _, node := range order {
		rank[node] = initial
	}

	teleport := (1.0 - alpha) / float64(n)

	for range maxIter {
		newRank := make(map[string]float64, n)

		// Files that import nothing spread their rank evenly.
		var danglingSum float64
		for _, node := range order {
			if outDegree[node] == 0 {
				danglingSum += rank[node]
			}
		}
		danglingContrib := alpha * danglingSum / float64(n)

		for _, node := range order {
			newRank[node] = teleport + danglingContrib
		}

		for _, src := range sources {
			contrib := alpha * rank[src] / float64(outDegree[src])
			for _, tgt := range outEdges[src] {
				newRank[tgt] += contrib
			}
		}

		var diff float64
		for _, node := range order {
			diff += math.Abs(newRank[node] - rank[node])
		}

		rank = newRank

		if diff < tol {
			break
		}
	}

	return rank
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
