package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

const (
	sentinelStart = "<!-- importmap:start -->"
	sentinelEnd   = "<!-- importmap:end -->"
)

// newInitCmd builds the `importmap init` subcommand, which writes (or
// updates) an importmap usage section in a CLAUDE.md file.
func newInitCmd(stdout, stderr io.Writer) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "init [path-to-CLAUDE.md]",
		Short: "Write an importmap usage section to CLAUDE.md",
		Long: `Write an importmap usage section to a CLAUDE.md file. The section is wrapped in
sentinel comments so it can be updated in place on subsequent runs without
touching surrounding content. Creates the file if it does not exist.

path-to-CLAUDE.md defaults to ./CLAUDE.md.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runInit(args, dryRun, stdout, stderr)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print what would be written without modifying the file")
	return cmd
}

func runInit(args []string, dryRun bool, stdout, stderr io.Writer) error {
	section := generateSection()

	// --dry-run with no path: just print the section itself.
	if dryRun && len(args) == 0 {
		_, _ = fmt.Fprintln(stdout, section)
		return nil
	}

	path := "CLAUDE.md"
	if len(args) > 0 {
		path = args[0]
	}

	existing, _ := os.ReadFile(path)
	updated := applySection(string(existing), section)

	if dryRun {
		_, _ = fmt.Fprint(stdout, updated)
		return nil
	}

	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	_, _ = fmt.Fprintf(stderr, "wrote importmap section to %s\n", path)
	return nil
}

// generateSection returns the full sentinel-wrapped importmap documentation block.
func generateSection() string {
	body := `## importmap: Import Graph

Run ` + "`importmap`" + ` via the Bash tool before changing code in an unfamiliar
Python or JavaScript/TypeScript project. It lists which files import which,
the most imported files, circular imports and files nothing imports.

**Availability:** Check with ` + "`importmap --version`" + ` first; skip gracefully if
not found.

**Run it:**
` + "```" + `bash
importmap                                    # current directory, all languages
importmap /path/to/repo                      # explicit path
importmap -l python                          # filter by language
importmap -f mermaid                         # diagram of the most imported files
importmap -f toon                            # tabular output for tools
importmap --file auth                        # only files matching "auth"
importmap --cache .importmap-cache           # cache output (fast on repeat runs)
` + "```" + `

**All flags:** ` + "`importmap --help`" + `

**How to use the output:**

1. **Start from CORE FILES.** They are the most imported files; changes there
   ripple furthest. Read them before the files that depend on them.

2. **Check IMPORTED BY before editing a file.** Every file listed there may
   need updating when a signature changes.

3. **Do not add to CIRCULAR DEPENDENCIES.** If a change would create a new
   cycle, move the shared code into a module both sides can import.

4. **Treat ORPHANED FILES with care.** Nothing imports them, but they may be
   scripts or tests run directly; confirm before deleting.`

	return sentinelStart + "\n" + body + "\n" + sentinelEnd
}

// applySection inserts section into content, replacing an existing sentinel
// block if present or appending if not. It is a pure function for easy testing.
func applySection(content, section string) string {
	start := strings.Index(content, sentinelStart)
	end := strings.Index(content, sentinelEnd)

	if start >= 0 && end > start {
		return content[:start] + section + content[end+len(sentinelEnd):]
	}

	// Append, ensuring a blank line separator.
	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + "\n" + section + "\n"
}
