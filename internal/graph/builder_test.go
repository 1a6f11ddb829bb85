package graph

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/importmap/internal/model"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newBuilder(t *testing.T, root string, opts ...Option) *Builder {
	t.Helper()
	b, err := NewBuilder(root, opts...)
	require.NoError(t, err)
	return b
}

func build(t *testing.T, b *Builder, files []string) *model.AnalysisResult {
	t.Helper()
	res, err := b.Build(context.Background(), files)
	require.NoError(t, err)
	return res
}

func TestNewBuilderEmptyRoot(t *testing.T) {
	t.Parallel()

	_, err := NewBuilder("")
	assert.ErrorIs(t, err, ErrEmptyRoot)
}

func TestBuildEndToEndPython(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	files := []string{
		writeFile(t, dir, "main.py", "import utils\nfrom helpers import helper_func\n"),
		writeFile(t, dir, "utils.py", "import os\n"),
		writeFile(t, dir, "helpers.py", "def helper_func():\n    pass\n"),
	}

	res := build(t, newBuilder(t, dir), files)
	g := res.Graph

	assert.Equal(t, []string{"utils.py", "helpers.py"}, g.Imports["main.py"])
	assert.Empty(t, g.External["main.py"])
	assert.Equal(t, []string{"os"}, g.External["utils.py"])
	assert.Equal(t, []string{"main.py"}, g.ImportedBy["helpers.py"])
	assert.Equal(t, []string{"main.py"}, g.ImportedBy["utils.py"])

	_, recorded := g.Imports["helpers.py"]
	assert.False(t, recorded, "files without imports are not recorded")

	require.Len(t, res.CoreFiles, 2)
	assert.ElementsMatch(t, []string{"utils.py", "helpers.py"},
		[]string{res.CoreFiles[0].Path, res.CoreFiles[1].Path})
	assert.Empty(t, res.Cycles)
	assert.Empty(t, res.Orphans)
	assert.Equal(t, []string{"main.py", "utils.py", "helpers.py"}, res.Files)
}

// sampleProject mirrors a small mixed Python and JS tree with a cycle.
func sampleProject(t *testing.T) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	files := []string{
		writeFile(t, dir, "main.py", "import utils\nfrom helpers import helper_func\nfrom .local_module import local_func\n"),
		writeFile(t, dir, "utils.py", "import os\nimport sys\nfrom helpers import another_func\n"),
		writeFile(t, dir, "helpers.py", "import math\ndef helper_func():\n    pass\n"),
		writeFile(t, dir, "local_module.py", "def local_func():\n    pass\n"),
		writeFile(t, dir, "circular1.py", "from circular2 import func2\n"),
		writeFile(t, dir, "circular2.py", "from circular1 import func1\n"),
		writeFile(t, dir, "app.js", "import React from 'react';\nimport { Component } from 'react';\nimport './styles.css';\nimport utils from './utils.js';\nrequire('lodash');\n"),
		writeFile(t, dir, "utils.js", "import axios from 'axios';\nimport './helpers.js';\nexport default {};\n"),
		writeFile(t, dir, "helpers.js", "// Helper functions\n"),
		writeFile(t, dir, "styles.css", "body { color: red; }\n"),
		writeFile(t, dir, "orphaned.py", "# Orphaned file\n"),
	}
	return dir, files
}

func TestBuildSampleProject(t *testing.T) {
	t.Parallel()

	dir, files := sampleProject(t)
	res := build(t, newBuilder(t, dir), files)
	g := res.Graph

	assert.Equal(t, []string{"utils.py", "helpers.py", "local_module.py"}, g.Imports["main.py"])
	assert.Equal(t, []string{"helpers.py"}, g.Imports["utils.py"])
	assert.Equal(t, []string{"os", "sys"}, g.External["utils.py"])
	assert.Equal(t, []string{"math"}, g.External["helpers.py"])

	assert.Equal(t, []string{"utils.js", "styles.css"}, g.Imports["app.js"])
	assert.Equal(t, []string{"lodash", "react"}, g.External["app.js"])
	assert.Equal(t, []string{"helpers.js"}, g.Imports["utils.js"])

	assert.Equal(t, []string{"main.py", "utils.py"}, g.ImportedBy["helpers.py"])
	require.NotEmpty(t, res.CoreFiles)
	assert.Equal(t, "helpers.py", res.CoreFiles[0].Path)
	assert.Equal(t, 2, res.CoreFiles[0].Importers)

	require.Len(t, res.Cycles, 1)
	assert.Equal(t, []string{"circular1.py", "circular2.py", "circular1.py"}, res.Cycles[0])

	// app.js and main.py are entry points; styles.css is imported.
	assert.Equal(t, []string{"orphaned.py"}, res.Orphans)
}

func TestBuildIdempotent(t *testing.T) {
	t.Parallel()

	dir, files := sampleProject(t)
	b := newBuilder(t, dir, WithWorkers(3))

	first := build(t, b, files)
	second := build(t, b, files)
	assert.Equal(t, first, second)

	sequential := build(t, newBuilder(t, dir, WithWorkers(1)), files)
	assert.Equal(t, first, sequential)
}

func TestBuildReverseIsTranspose(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	files := []string{
		writeFile(t, dir, "a.js", "import x from './b';\nimport y from './b';\nimport z from './c';\n"),
		writeFile(t, dir, "b.js", "import './c';\n"),
		writeFile(t, dir, "c.js", "export const c = 1;\n"),
	}
	g := build(t, newBuilder(t, dir), files).Graph

	count := func(list []string, s string) int {
		n := 0
		for _, v := range list {
			if v == s {
				n++
			}
		}
		return n
	}
	nodes := []string{"a.js", "b.js", "c.js"}
	for _, a := range nodes {
		for _, b := range nodes {
			assert.Equal(t, count(g.Imports[b], a), count(g.ImportedBy[a], b), "%s <- %s", a, b)
		}
	}
	assert.Equal(t, []string{"a.js", "a.js"}, g.ImportedBy["b.js"])
}

func TestBuildRelativeInputsAndNonFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "pkg/__init__.py", "")
	writeFile(t, dir, "pkg/module.py", "from . import sibling\nfrom .sub import thing\n")
	writeFile(t, dir, "pkg/sub.py", "")

	res := build(t, newBuilder(t, dir), []string{
		"pkg/module.py",
		"pkg",
		"missing.py",
		"pkg/sub.py",
		"pkg/module.py",
	})

	assert.Equal(t, []string{"pkg/module.py", "pkg/sub.py"}, res.Files)
	assert.Equal(t, []string{"pkg/__init__.py", "pkg/sub.py"}, res.Graph.Imports["pkg/module.py"])
}

func TestBuildSkipsOutsideRoot(t *testing.T) {
	t.Parallel()

	outer := t.TempDir()
	root := filepath.Join(outer, "project")
	inside := writeFile(t, root, "main.py", "import os\n")
	outside := writeFile(t, outer, "stray.py", "import sys\n")

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	res := build(t, newBuilder(t, root, WithLogger(logger)), []string{inside, outside, "../stray.py"})

	assert.Equal(t, []string{"main.py"}, res.Files)
	assert.Contains(t, logs.String(), "outside project root")
}

func TestAnalyzeFileEdgeCases(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	b := newBuilder(t, dir)

	css := writeFile(t, dir, "styles.css", "@import 'x';\n")
	internal, external := b.AnalyzeFile(css)
	assert.Empty(t, internal)
	assert.Empty(t, external)

	binary := writeFile(t, dir, "blob.py", "import \xff\xfe\n")
	internal, external = b.AnalyzeFile(binary)
	assert.Empty(t, internal)
	assert.Empty(t, external)

	internal, external = b.AnalyzeFile(filepath.Join(dir, "does_not_exist.py"))
	assert.Empty(t, internal)
	assert.Empty(t, external)

	ghost := writeFile(t, dir, "ghost.py", "import ghostpkg.missing\nfrom .nowhere import x\n")
	internal, external = b.AnalyzeFile(ghost)
	assert.Empty(t, internal, "unresolvable relative import is dropped")
	assert.Equal(t, []string{"ghostpkg.missing"}, external)
}

func TestAnalyzeFileExternalDedup(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "app.jsx", "import React from 'react';\nimport React from 'react';\n")

	_, external := newBuilder(t, dir).AnalyzeFile(path)
	assert.Equal(t, []string{"react"}, external)
}

func TestBuildCancelled(t *testing.T) {
	t.Parallel()

	dir, files := sampleProject(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := newBuilder(t, dir).Build(ctx, files)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res)
}

func TestAnalyzeFileUnreadable(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("file permissions are not enforced")
	}

	dir := t.TempDir()
	locked := writeFile(t, dir, "locked.py", "import os\nimport locked_dep\n")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o644) })

	var logs bytes.Buffer
	b := newBuilder(t, dir, WithLogger(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))))

	internal, external := b.AnalyzeFile(locked)
	assert.Empty(t, internal)
	assert.Empty(t, external)
	assert.Contains(t, logs.String(), "skipping unreadable file")

	// The rest of the run is unaffected.
	ok := writeFile(t, dir, "main.py", "import os\n")
	res := build(t, b, []string{locked, ok})
	assert.Equal(t, []string{"locked.py", "main.py"}, res.Files)
	assert.Equal(t, []string{"os"}, res.Graph.External["main.py"])
	_, hasLocked := res.Graph.Imports["locked.py"]
	assert.False(t, hasLocked)
}
