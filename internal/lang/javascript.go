package lang

import (
	"regexp"
	"strings"
)

func init() {
	Languages["javascript"] = &Language{
		Name:       "javascript",
		Family:     JavaScript,
		Extensions: []string{".js", ".jsx", ".ts", ".tsx"},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`import\s+.*?from\s+['"]([^'"]+)['"]`),
			regexp.MustCompile(`require\s*\(\s*['"]([^'"]+)['"]`),
			regexp.MustCompile(`import\s+['"]([^'"]+)['"]`),
			regexp.MustCompile(`dynamic\s*\(\s*['"]([^'"]+)['"]`),
		},
	}
}

// IsRelativeJS reports whether a JS/TS import specifier points into the
// project rather than at a package.
func IsRelativeJS(spec string) bool {
	return strings.HasPrefix(spec, ".") || strings.HasPrefix(spec, "/")
}
