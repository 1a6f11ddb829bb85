package graph

import (
	"path"
	"regexp"
	"slices"

	"github.com/phobologic/importmap/internal/model"
)

// Unimported files matching these base names are expected roots of a
// project, not dead code.
var (
	entryPointPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^index\.(js|ts|jsx|tsx)$`),
		regexp.MustCompile(`^main\.(js|ts|jsx|tsx|py)$`),
		regexp.MustCompile(`^app\.(js|ts|jsx|tsx)$`),
		regexp.MustCompile(`^server\.(js|ts|jsx|tsx|py)$`),
	}
	configPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^package\.json$`),
		regexp.MustCompile(`^tsconfig\.json$`),
		regexp.MustCompile(`^\.eslintrc`),
		regexp.MustCompile(`^\.prettierrc`),
		regexp.MustCompile(`^pyproject\.toml$`),
		regexp.MustCompile(`^setup\.py$`),
		regexp.MustCompile(`^requirements\.txt$`),
		regexp.MustCompile(`^README\.md$`),
	}
)

// FindOrphans returns the files that no file in g imports, minus entry
// points and project config files, sorted.
func FindOrphans(g *model.Graph, files []string) []string {
	imported := make(map[string]struct{})
	if g != nil {
		for _, targets := range g.Imports {
			for _, t := range targets {
				imported[t] = struct{}{}
			}
		}
	}

	seen := make(map[string]struct{}, len(files))
	var orphans []string
	for _, f := range files {
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		if _, ok := imported[f]; ok {
			continue
		}
		if IsEntryPoint(f) || IsConfigFile(f) {
			continue
		}
		orphans = append(orphans, f)
	}
	slices.Sort(orphans)
	return orphans
}

// IsEntryPoint reports whether the base name of p is a conventional entry
// point such as index.js or main.py.
func IsEntryPoint(p string) bool {
	return matchAny(entryPointPatterns, path.Base(p))
}

// IsConfigFile reports whether the base name of p is a conventional project
// or tooling config file.
func IsConfigFile(p string) bool {
	return matchAny(configPatterns, path.Base(p))
}

func matchAny(patterns []*regexp.Regexp, name string) bool {
	for _, re := range patterns {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}
