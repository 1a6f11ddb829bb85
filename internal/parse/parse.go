// Package parse extracts import tokens from source text with line-level
// patterns. It does not build a syntax tree, so imports inside comments or
// strings are reported like any other.
package parse

import (
	"slices"
	"unicode/utf8"

	"github.com/phobologic/importmap/internal/lang"
)

// Imports holds the raw import tokens found in one file.
type Imports struct {
	// Local lists candidate project imports in match order, repeats included.
	Local []string
	// External lists package names, sorted and deduplicated.
	External []string
}

// Empty reports whether no import token was found.
func (im Imports) Empty() bool {
	return len(im.Local) == 0 && len(im.External) == 0
}

// Extract scans source for the import shapes of l. isLocal decides whether a
// token refers to the project; a nil isLocal treats every token as external.
// A nil language or source that is not valid UTF-8 yields no imports.
func Extract(l *lang.Language, source []byte, isLocal func(token string) bool) Imports {
	var im Imports
	if l == nil || len(source) == 0 || !utf8.Valid(source) {
		return im
	}

	seen := make(map[string]struct{})
	for _, re := range l.Patterns {
		for _, m := range re.FindAllSubmatch(source, -1) {
			token := string(m[1])
			if isLocal != nil && isLocal(token) {
				im.Local = append(im.Local, token)
				continue
			}
			if _, dup := seen[token]; dup {
				continue
			}
			seen[token] = struct{}{}
			im.External = append(im.External, token)
		}
	}

	slices.Sort(im.External)
	return im
}
