// Package toon implements TOON (Token-Oriented Object Notation) encoding.
package toon

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/phobologic/importmap/internal/model"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// Encode converts an analysis result into TOON format.
func Encode(res *model.AnalysisResult) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("root: %s", encodeValue(filepath.Base(res.Root))))

	g := res.Graph
	if g == nil {
		g = model.NewGraph()
	}

	var fileRows [][]string
	for _, f := range res.Files {
		fileRows = append(fileRows, []string{
			f,
			strconv.Itoa(len(g.Imports[f])),
			strconv.Itoa(len(g.ImportedBy[f])),
			fmt.Sprintf("%.4f", res.Ranks[f]),
		})
	}
	parts = append(parts, formatTabular("files", []string{"path", "imports", "importers", "rank"}, fileRows))

	var importRows, externalRows [][]string
	for _, src := range g.OrderedSources() {
		for _, tgt := range g.Imports[src] {
			importRows = append(importRows, []string{src, tgt})
		}
		for _, pkg := range g.External[src] {
			externalRows = append(externalRows, []string{src, pkg})
		}
	}
	parts = append(parts, formatTabular("imports", []string{"source", "target"}, importRows))
	parts = append(parts, formatTabular("external", []string{"file", "package"}, externalRows))

	var coreRows [][]string
	for _, cf := range res.CoreFiles {
		coreRows = append(coreRows, []string{cf.Path, strconv.Itoa(cf.Importers)})
	}
	parts = append(parts, formatTabular("core", []string{"path", "importers"}, coreRows))

	var cycleRows [][]string
	for _, c := range res.Cycles {
		cycleRows = append(cycleRows, []string{strings.Join(c, " -> ")})
	}
	parts = append(parts, formatTabular("cycles", []string{"cycle"}, cycleRows))

	var orphanRows [][]string
	for _, o := range res.Orphans {
		orphanRows = append(orphanRows, []string{o})
	}
	parts = append(parts, formatTabular("orphans", []string{"path"}, orphanRows))

	return strings.Join(parts, "\n")
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}
