package graph

import (
	"slices"

	"github.com/phobologic/importmap/internal/model"
)

// DetectCycles walks the forward import map depth first from every
// unexplored file and reports one cycle per back edge. Each cycle starts and
// ends with the same file: a path [A B C] meeting the edge C -> B yields
// [B C B]. Several back edges into one loop produce several cycles.
func DetectCycles(g *model.Graph) [][]string {
	if g.Empty() {
		return nil
	}

	var (
		cycles   [][]string
		stack    []string
		explored = make(map[string]bool)
	)

	var visit func(file string)
	visit = func(file string) {
		if i := slices.Index(stack, file); i >= 0 {
			cycle := append(slices.Clone(stack[i:]), file)
			cycles = append(cycles, cycle)
			return
		}
		if explored[file] {
			return
		}
		explored[file] = true

		stack = append(stack, file)
		for _, imported := range g.Imports[file] {
			visit(imported)
		}
		stack = stack[:len(stack)-1]
	}

	for _, file := range g.OrderedSources() {
		if !explored[file] {
			visit(file)
		}
	}
	return cycles
}
