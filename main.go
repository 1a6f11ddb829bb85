// importmap maps the static import graph of a Python or JavaScript/TypeScript
// project and reports core files, circular imports and orphaned files.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/phobologic/importmap/internal/config"
	"github.com/phobologic/importmap/internal/discover"
	"github.com/phobologic/importmap/internal/graph"
	"github.com/phobologic/importmap/internal/model"
	"github.com/phobologic/importmap/internal/ranking"
	"github.com/phobologic/importmap/internal/render"
	"github.com/phobologic/importmap/internal/toon"
)

var version = "dev"

var errNoSources = errors.New("no Python or JavaScript/TypeScript files found")

type options struct {
	langs       []string
	format      string
	maxDiagram  int
	maxFileSize int64
	maxFiles    int
	focus       string
	cachePath   string
	configPath  string
	workers     int
	verbose     bool
	showVersion bool
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd.ExecuteContext(context.Background())
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "importmap [path]",
		Short: "Map the import graph of a Python or JavaScript/TypeScript project",
		Long: `importmap scans a project for Python and JavaScript/TypeScript imports,
resolves the ones that point at project files and reports who imports whom,
the most imported files, circular imports and files nothing imports.

Settings are read from .importmap.yaml in the project root when present;
flags override them.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.showVersion {
				_, _ = fmt.Fprintf(stdout, "importmap %s\n", version)
				return nil
			}
			root := "."
			if len(args) > 0 {
				root = args[0]
			}
			return analyze(cmd.Context(), cmd.Flags(), root, &opts, stdout, stderr)
		},
	}

	f := cmd.Flags()
	f.StringSliceVarP(&opts.langs, "langs", "l", nil, "comma-separated languages to include (python, javascript)")
	f.StringVarP(&opts.format, "format", "f", config.FormatText, "output format: text, mermaid, toon or all")
	f.IntVar(&opts.maxDiagram, "max-diagram-files", render.DefaultDiagramFiles, "maximum number of nodes in the Mermaid diagram")
	f.Int64Var(&opts.maxFileSize, "max-file-size", config.Default().MaxFileSize, "skip files larger than this many bytes (0 disables the limit)")
	f.IntVarP(&opts.maxFiles, "max-files", "n", 0, "keep only the N highest-ranked files")
	f.StringVar(&opts.focus, "file", "", "only report files whose path contains this text")
	f.StringVar(&opts.cachePath, "cache", "", "cache file path")
	f.StringVar(&opts.configPath, "config", "", "config file (default <path>/"+config.FileName+")")
	f.IntVar(&opts.workers, "workers", 0, "files analyzed in parallel (0 uses every CPU)")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log skipped files and progress to stderr")
	f.BoolVarP(&opts.showVersion, "version", "V", false, "show version and exit")

	cmd.AddCommand(newInitCmd(stdout, stderr))
	return cmd
}

func analyze(ctx context.Context, flags *pflag.FlagSet, root string, opts *options, stdout, stderr io.Writer) error {
	logger := newLogger(stderr, opts.verbose)

	root, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolving root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("root path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: not a directory", root)
	}

	cfgPath := root
	if opts.configPath != "" {
		cfgPath = opts.configPath
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	applyFlags(flags, opts, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	files, err := discover.Files(root, cfg.Languages)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if !hasSource(files) {
		return errNoSources
	}

	if opts.cachePath != "" && cacheIsFresh(opts.cachePath, root, files) {
		data, err := os.ReadFile(opts.cachePath)
		if err == nil {
			logger.Debug("replaying cached output", "cache", opts.cachePath)
			_, _ = stdout.Write(data)
			return nil
		}
	}

	files = filterBySize(root, files, cfg.MaxFileSize, logger)
	if !hasSource(files) {
		return fmt.Errorf("%w (all exceeded size limit)", errNoSources)
	}

	b, err := graph.NewBuilder(root,
		graph.WithLogger(logger),
		graph.WithWorkers(cfg.Workers),
		graph.WithCoreFiles(cfg.CoreFiles),
	)
	if err != nil {
		return fmt.Errorf("creating builder: %w", err)
	}
	res, err := b.Build(ctx, discover.Paths(files))
	if err != nil {
		return err
	}

	if opts.focus != "" {
		res = ranking.FilterByFile(res, opts.focus)
	}
	res = ranking.SelectFiles(res, opts.maxFiles)

	output := renderOutput(res, cfg)

	if opts.cachePath != "" {
		if err := os.WriteFile(opts.cachePath, []byte(output+"\n"), 0o644); err != nil {
			logger.Warn("writing cache", "path", opts.cachePath, "error", err)
		}
	}

	_, _ = fmt.Fprintln(stdout, output)
	return nil
}

// applyFlags copies explicitly set flags over the loaded config.
func applyFlags(flags *pflag.FlagSet, opts *options, cfg *config.Config) {
	if flags.Changed("langs") {
		cfg.Languages = cfg.Languages[:0]
		for _, name := range opts.langs {
			if name = strings.TrimSpace(name); name != "" {
				cfg.Languages = append(cfg.Languages, name)
			}
		}
	}
	if flags.Changed("format") {
		cfg.Format = opts.format
	}
	if flags.Changed("max-diagram-files") {
		cfg.DiagramMaxFiles = opts.maxDiagram
	}
	if flags.Changed("max-file-size") {
		cfg.MaxFileSize = opts.maxFileSize
	}
	if flags.Changed("workers") {
		cfg.Workers = opts.workers
	}
}

func renderOutput(res *model.AnalysisResult, cfg *config.Config) string {
	text := render.AdjacencyList(res)
	if orphans := render.OrphanList(res); orphans != "" {
		text += "\n\n" + orphans
	}

	switch cfg.Format {
	case config.FormatMermaid:
		return render.Mermaid(res, cfg.DiagramMaxFiles)
	case config.FormatTOON:
		return toon.Encode(res)
	case config.FormatAll:
		return strings.Join([]string{text, render.Mermaid(res, cfg.DiagramMaxFiles), toon.Encode(res)}, "\n\n")
	default:
		return text
	}
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func hasSource(files []discover.FileEntry) bool {
	for _, f := range files {
		if f.Language != "" {
			return true
		}
	}
	return false
}

func cacheIsFresh(cachePath, root string, files []discover.FileEntry) bool {
	cacheInfo, err := os.Stat(cachePath)
	if err != nil {
		return false
	}
	cacheMtime := cacheInfo.ModTime()

	for _, f := range files {
		fi, err := os.Stat(filepath.Join(root, filepath.FromSlash(f.Path)))
		if err != nil {
			return false
		}
		if !fi.ModTime().Before(cacheMtime) {
			return false
		}
	}
	return true
}

func filterBySize(root string, files []discover.FileEntry, maxSize int64, logger *slog.Logger) []discover.FileEntry {
	if maxSize <= 0 {
		return files
	}
	var kept []discover.FileEntry
	for _, f := range files {
		fi, err := os.Stat(filepath.Join(root, filepath.FromSlash(f.Path)))
		if err != nil {
			kept = append(kept, f) // keep if can't stat
			continue
		}
		if fi.Size() > maxSize {
			logger.Warn("skipping large file", "path", f.Path, "size", fi.Size(), "limit", maxSize)
			continue
		}
		kept = append(kept, f)
	}
	return kept
}
