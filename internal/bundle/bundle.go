// Package bundle runs one bundle invocation: walk the pattern, build the
// namespace tree, emit declarations, render Go source and write it.
package bundle

import (
	"bytes"
	"fmt"
	"io"
	"iter"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"

	"github.com/agentic-research/staticres/internal/config"
	"github.com/agentic-research/staticres/internal/emit"
	"github.com/agentic-research/staticres/internal/logging"
	"github.com/agentic-research/staticres/internal/render"
	"github.com/agentic-research/staticres/internal/tree"
	"github.com/agentic-research/staticres/internal/walk"
)

// tempPrefix names the temporary files Write renames into place.
const tempPrefix = ".staticres-"

// Result is the outcome of a bundle run.
type Result struct {
	Namespace *emit.Namespace
	Stats     tree.Stats
	Output    *render.Output
}

// Scanner walks a bundle's files and emits its declaration tree.
type Scanner struct {
	Walker *walk.Walker
	Log    *logging.Logger
}

// NewScanner returns a Scanner on the OS filesystem rooted at b.Dir.
func NewScanner(b config.Bundle, log *logging.Logger) *Scanner {
	return &Scanner{
		Walker: walk.New(osfs.New(b.Dir)),
		Log:    log.With("bundle", b.Name),
	}
}

// Scan builds and emits the namespace tree of b. Per-entry walk failures are
// logged and skipped; everything else is fatal.
func (s *Scanner) Scan(b config.Bundle) (*emit.Namespace, tree.Stats, error) {
	vis, err := b.RootVisibility()
	if err != nil {
		return nil, tree.Stats{}, err
	}
	root, stats, err := tree.FromGlob(loggingGlobber{s: s, output: outputEntry(b)}, b.Pattern, b.Name, vis)
	if err != nil {
		return nil, tree.Stats{}, err
	}
	s.Log.Debugf("folded %d files and %d directories (%d skipped) into %d levels",
		stats.Files, stats.Dirs, stats.Skipped, root.Depth())

	ns, err := emit.Emit(root, s.Walker, emit.Options{Strict: b.Strict})
	if err != nil {
		return nil, stats, err
	}
	return ns, stats, nil
}

// loggingGlobber logs per-entry walk failures before the tree builder drops
// them, and hides the bundle's own output so that regenerating is stable.
type loggingGlobber struct {
	s      *Scanner
	output string
}

func (g loggingGlobber) Glob(pattern string) (iter.Seq2[walk.Entry, error], error) {
	entries, err := g.s.Walker.Glob(pattern)
	if err != nil {
		return nil, err
	}
	return func(yield func(walk.Entry, error) bool) {
		for e, err := range entries {
			if err != nil {
				g.s.Log.Warnf("skipping %s: %v", e.Path, err)
			} else if g.generated(e) {
				g.s.Log.Debugf("skipping generated %s", e.Path)
				continue
			}
			if !yield(e, err) {
				return
			}
		}
	}, nil
}

func (g loggingGlobber) generated(e walk.Entry) bool {
	if e.IsDir {
		return false
	}
	if e.Path == g.output {
		return true
	}
	name := path.Base(e.Path)
	return strings.HasPrefix(name, tempPrefix) && strings.HasSuffix(name, ".go")
}

// outputEntry returns the output file as a walk path relative to b.Dir, or
// "" when the output is not below the walk root.
func outputEntry(b config.Bundle) string {
	if b.Output == "" || b.Output == config.Stdout {
		return ""
	}
	dir, err := filepath.Abs(b.Dir)
	if err != nil {
		return ""
	}
	out, err := filepath.Abs(b.Output)
	if err != nil {
		return ""
	}
	rel, err := filepath.Rel(dir, out)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ""
	}
	return filepath.ToSlash(rel)
}

// Generate scans b and renders its Go source. Nothing is written.
func (s *Scanner) Generate(b config.Bundle) (*Result, error) {
	ns, stats, err := s.Scan(b)
	if err != nil {
		return nil, err
	}

	backend, err := s.backend(b)
	if err != nil {
		return nil, err
	}
	out, err := render.Render(ns, render.Options{
		Package: b.Package,
		Pattern: b.Pattern,
		Backend: backend,
	})
	if err != nil {
		return nil, err
	}
	_ = ns.Walk(func(path []string, c emit.Const) error {
		s.Log.Debugf("%s.%s <- %s", strings.Join(path, "."), c.Name, c.Path)
		return nil
	})
	if !out.Formatted {
		s.Log.Warnf("generated source is not valid Go, the compiler will reject it: %v", out.Syntax)
	} else {
		s.lint(out.Source)
	}
	return &Result{Namespace: ns, Stats: stats, Output: out}, nil
}

// lint reports identifier collisions that slipped through without --strict.
func (s *Scanner) lint(src []byte) {
	diags, err := render.Lint(src)
	if err != nil {
		s.Log.Debugf("lint skipped: %v", err)
		return
	}
	for _, d := range diags {
		s.Log.Warnf("%s (use strict mode to fail instead)", d)
	}
}

func (s *Scanner) backend(b config.Bundle) (render.Backend, error) {
	switch b.Backend {
	case config.BackendInline:
		return &render.InlineBackend{FS: s.Walker.FS}, nil
	default:
		return render.NewEmbedBackend(b.OutputDir())
	}
}

// Run generates b and writes the result to b.Output, or to stdout when the
// output is config.Stdout.
func Run(b config.Bundle, log *logging.Logger, stdout io.Writer) (*Result, error) {
	s := NewScanner(b, log)
	res, err := s.Generate(b)
	if err != nil {
		return nil, fmt.Errorf("bundle %q: %w", b.Name, err)
	}
	if b.Output == config.Stdout {
		_, err := stdout.Write(res.Output.Source)
		return res, err
	}
	changed, err := Write(b.Output, res.Output.Source)
	if err != nil {
		return nil, fmt.Errorf("bundle %q: %w", b.Name, err)
	}

	namespaces, consts := res.Namespace.Count()
	if changed {
		s.Log.Infof("wrote %s (%d namespaces, %d files)", b.Output, namespaces, consts)
	} else {
		s.Log.Debugf("%s is up to date", b.Output)
	}
	return res, nil
}

// Write replaces path with src through a temporary file in the same
// directory. It leaves an identical file untouched and reports whether the
// content changed.
func Write(path string, src []byte) (bool, error) {
	if old, err := os.ReadFile(path); err == nil && bytes.Equal(old, src) {
		return false, nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, tempPrefix+"*.go")
	if err != nil {
		return false, err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(src); err != nil {
		_ = tmp.Close()
		return false, err
	}
	if err := tmp.Close(); err != nil {
		return false, err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return false, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return false, err
	}
	return true, nil
}
