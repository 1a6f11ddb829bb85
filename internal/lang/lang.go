// Package lang provides a language registry mapping file extensions to
// import patterns.
package lang

import (
	"path/filepath"
	"regexp"
	"sync"
)

// Family groups languages that share a module system.
type Family int

const (
	// Unknown is returned for files no registered language claims.
	Unknown Family = iota
	// Python covers .py and .pyi sources.
	Python
	// JavaScript covers JavaScript and TypeScript sources.
	JavaScript
)

func (f Family) String() string {
	switch f {
	case Python:
		return "python"
	case JavaScript:
		return "javascript"
	default:
		return "unknown"
	}
}

// Language holds the import patterns for a supported language.
type Language struct {
	Name       string
	Family     Family
	Extensions []string

	// Patterns each capture the imported module or path in group 1.
	// They are applied in order, and all matches of one pattern are
	// reported before the next pattern runs.
	Patterns []*regexp.Regexp
}

// Languages maps language names to their configuration.
// Populated by init() functions in per-language files.
var Languages = map[string]*Language{}

// extensionMap is built lazily after all init() functions have run.
var extensionMap map[string]*Language
var extensionOnce sync.Once

func getExtensionMap() map[string]*Language {
	extensionOnce.Do(func() {
		extensionMap = make(map[string]*Language)
		for _, l := range Languages {
			for _, ext := range l.Extensions {
				extensionMap[ext] = l
			}
		}
	})
	return extensionMap
}

// ForExtension returns the language name for a file extension, or "" if unsupported.
func ForExtension(ext string) string {
	if l := getExtensionMap()[ext]; l != nil {
		return l.Name
	}
	return ""
}

// ForPath returns the language for a file path, or nil if unsupported.
func ForPath(path string) *Language {
	return getExtensionMap()[filepath.Ext(path)]
}
