// Package resolve maps raw import tokens to files inside the project root.
//
// All paths handled here are relative to the root and slash-separated. A
// token that cannot be mapped to an existing file is reported as
// unresolvable; resolution never fails with an error.
package resolve

import (
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/phobologic/importmap/internal/lang"
)

// jsExtensions is the probe order for extensionless JS/TS specifiers.
var jsExtensions = []string{".js", ".jsx", ".ts", ".tsx", ".json"}

// Resolver resolves imports against one project tree.
type Resolver struct {
	fsys fs.FS
}

// New returns a Resolver rooted at the directory root.
func New(root string) *Resolver {
	return NewFS(os.DirFS(root))
}

// NewFS returns a Resolver over an arbitrary file system.
func NewFS(fsys fs.FS) *Resolver {
	return &Resolver{fsys: fsys}
}

// IsLocal reports whether token should be treated as a project import for
// language l. Python tokens are checked against the tree; JS/TS tokens are
// local when they are relative or absolute paths.
func (r *Resolver) IsLocal(l *lang.Language, token string) bool {
	if l == nil {
		return false
	}
	switch l.Family {
	case lang.Python:
		return r.IsInternalPython(token)
	case lang.JavaScript:
		return lang.IsRelativeJS(token)
	}
	return false
}

// Resolve maps token, imported from the file from, to a project file.
func (r *Resolver) Resolve(l *lang.Language, token, from string) (string, bool) {
	if l == nil {
		return "", false
	}
	switch l.Family {
	case lang.Python:
		return r.ResolvePython(token, from)
	case lang.JavaScript:
		return r.ResolveJS(token, from)
	}
	return "", false
}

// IsInternalPython reports whether a dotted module names something in the
// project: it is relative, or the module path exists as a file, a .py file,
// or a package directory with an __init__.py.
func (r *Resolver) IsInternalPython(module string) bool {
	if strings.HasPrefix(module, ".") {
		return true
	}
	target := modulePath(module)
	if target == "" {
		return false
	}
	return r.exists(target) || r.exists(target+".py") || r.exists(path.Join(target, "__init__.py"))
}

// ResolvePython maps a dotted module imported from the file from to a .py
// file or a package __init__.py.
func (r *Resolver) ResolvePython(module, from string) (string, bool) {
	if strings.HasPrefix(module, ".") {
		return r.resolvePythonRelative(module, from)
	}

	target := modulePath(module)
	if target == "" {
		return "", false
	}
	if r.isDir(target) {
		if pkgInit := path.Join(target, "__init__.py"); r.isFile(pkgInit) {
			return pkgInit, true
		}
	}
	if r.isFile(target + ".py") {
		return target + ".py", true
	}
	return "", false
}

func (r *Resolver) resolvePythonRelative(module, from string) (string, bool) {
	rest := strings.TrimLeft(module, ".")
	dots := len(module) - len(rest)

	// One dot is the importing file's own package; each extra dot climbs.
	dir := path.Dir(from)
	for range dots - 1 {
		if dir == "." {
			return "", false
		}
		dir = path.Dir(dir)
	}

	if rest == "" {
		return path.Join(dir, "__init__.py"), true
	}

	sub := modulePath(rest)
	if sub == "" {
		return "", false
	}
	target := path.Join(dir, sub)
	if r.isFile(target + ".py") {
		return target + ".py", true
	}
	if pkgInit := path.Join(target, "__init__.py"); r.isFile(pkgInit) {
		return pkgInit, true
	}
	return "", false
}

// ResolveJS maps a relative JS/TS specifier imported from the file from. A
// literal file wins over extension probing, which wins over index files.
// Bare package names and absolute specifiers are never resolved.
func (r *Resolver) ResolveJS(spec, from string) (string, bool) {
	if !strings.HasPrefix(spec, ".") {
		return "", false
	}

	target := path.Join(path.Dir(from), spec)
	if target == ".." || strings.HasPrefix(target, "../") {
		return "", false
	}

	if r.isFile(target) {
		return target, true
	}
	for _, ext := range jsExtensions {
		if r.isFile(target + ext) {
			return target + ext, true
		}
	}
	for _, ext := range jsExtensions {
		if index := path.Join(target, "index"+ext); r.isFile(index) {
			return index, true
		}
	}
	return "", false
}

// modulePath converts a dotted module to a slash path, or "" when the
// result would not be a valid path inside the root.
func modulePath(module string) string {
	p := path.Clean(strings.ReplaceAll(module, ".", "/"))
	if !fs.ValidPath(p) || p == "." {
		return ""
	}
	return p
}

func (r *Resolver) stat(name string) (fs.FileInfo, bool) {
	if !fs.ValidPath(name) {
		return nil, false
	}
	info, err := fs.Stat(r.fsys, name)
	if err != nil {
		return nil, false
	}
	return info, true
}

func (r *Resolver) exists(name string) bool {
	_, ok := r.stat(name)
	return ok
}

func (r *Resolver) isFile(name string) bool {
	info, ok := r.stat(name)
	return ok && info.Mode().IsRegular()
}

func (r *Resolver) isDir(name string) bool {
	info, ok := r.stat(name)
	return ok && info.IsDir()
}
