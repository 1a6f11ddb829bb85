package graph

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/phobologic/importmap/internal/lang"
	"github.com/phobologic/importmap/internal/model"
	"github.com/phobologic/importmap/internal/parse"
	"github.com/phobologic/importmap/internal/resolve"
)

// ErrEmptyRoot is returned by NewBuilder when no project root is given.
var ErrEmptyRoot = errors.New("project root is empty")

// Builder runs extraction and resolution over a file list and assembles the
// import graph. A Builder holds no state between calls to Build, so one
// instance may be reused, but each concurrent analysis should use its own.
type Builder struct {
	root      string
	resolver  *resolve.Resolver
	logger    *slog.Logger
	workers   int
	coreFiles int
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger used for per-file diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithWorkers bounds how many files are read concurrently. Values below one
// select GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.workers = n
		}
	}
}

// WithCoreFiles sets the length of the core-file ranking.
func WithCoreFiles(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.coreFiles = n
		}
	}
}

// NewBuilder returns a Builder for the project rooted at root.
func NewBuilder(root string, opts ...Option) (*Builder, error) {
	if root == "" {
		return nil, ErrEmptyRoot
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}

	b := &Builder{
		root:      abs,
		resolver:  resolve.New(abs),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		workers:   runtime.GOMAXPROCS(0),
		coreFiles: DefaultCoreFiles,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Root returns the absolute project root.
func (b *Builder) Root() string {
	return b.root
}

// AnalyzeFile returns the resolved project imports and the external
// packages of one file. path may be absolute or relative to the root.
// Unreadable, undecodable and unsupported files yield no imports.
func (b *Builder) AnalyzeFile(path string) (internal, external []string) {
	rel, ok := b.relPath(path)
	if !ok {
		return nil, nil
	}
	return b.analyze(rel)
}

func (b *Builder) analyze(rel string) (internal, external []string) {
	l := lang.ForPath(rel)
	if l == nil {
		return nil, nil
	}

	source, err := os.ReadFile(filepath.Join(b.root, filepath.FromSlash(rel)))
	if err != nil {
		b.logger.Debug("skipping unreadable file", "path", rel, "error", err)
		return nil, nil
	}

	im := parse.Extract(l, source, func(token string) bool {
		return b.resolver.IsLocal(l, token)
	})
	for _, token := range im.Local {
		// Unresolvable project imports are dropped, not reclassified.
		if target, ok := b.resolver.Resolve(l, token, rel); ok {
			internal = append(internal, target)
		}
	}
	return internal, im.External
}

// Build analyzes files and returns a fresh result. Entries that are not
// regular files are ignored; entries outside the root are skipped with a
// warning. Files are read concurrently but recorded in input order, so the
// result depends only on the input. Build fails only when ctx is done.
func (b *Builder) Build(ctx context.Context, files []string) (*model.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	scanned := b.scannable(files)

	type extraction struct {
		internal []string
		external []string
	}
	results := make([]extraction, len(scanned))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(b.workers)
	for i, rel := range scanned {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			internal, external := b.analyze(rel)
			results[i] = extraction{internal: internal, external: external}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("analyzing files: %w", err)
	}

	g := model.NewGraph()
	for i, rel := range scanned {
		g.AddFile(rel, results[i].internal, results[i].external)
	}

	b.logger.Debug("built import graph",
		"files", len(scanned),
		"importers", len(g.Imports),
		"imported", len(g.ImportedBy))

	return &model.AnalysisResult{
		Root:      b.root,
		Files:     scanned,
		Graph:     g,
		CoreFiles: CoreFiles(g, b.coreFiles),
		Cycles:    DetectCycles(g),
		Orphans:   FindOrphans(g, scanned),
		Ranks:     PageRank(g, scanned),
	}, nil
}

// scannable normalizes files to root-relative slash paths, keeping regular
// files only and dropping repeats.
func (b *Builder) scannable(files []string) []string {
	seen := make(map[string]struct{}, len(files))
	scanned := make([]string, 0, len(files))
	for _, f := range files {
		rel, ok := b.relPath(f)
		if !ok {
			continue
		}
		if _, dup := seen[rel]; dup {
			continue
		}
		info, err := os.Stat(filepath.Join(b.root, filepath.FromSlash(rel)))
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		seen[rel] = struct{}{}
		scanned = append(scanned, rel)
	}
	return scanned
}

func (b *Builder) relPath(path string) (string, bool) {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(b.root, abs)
	}
	rel, err := filepath.Rel(b.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		b.logger.Warn("skipping file outside project root", "path", path, "root", b.root)
		return "", false
	}
	return filepath.ToSlash(rel), true
}
