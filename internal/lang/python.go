package lang

import "regexp"

func init() {
	Languages["python"] = &Language{
		Name:       "python",
		Family:     Python,
		Extensions: []string{".py", ".pyi"},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?m)^\s*import\s+([\p{L}\p{N}_.]+)(?:\s+as\s+[\p{L}\p{N}_]+)?`),
			regexp.MustCompile(`(?m)^\s*from\s+([\p{L}\p{N}_.]+)\s+import`),
		},
	}
}
