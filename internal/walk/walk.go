// Package walk discovers filesystem entries matching a glob pattern.
//
// Walking happens on a go-billy filesystem so that the same code serves the
// OS (osfs) and in-memory fixtures (memfs). Per-entry failures are reported
// through the iterator instead of aborting the walk.
package walk

import (
	"errors"
	"fmt"
	"iter"
	"os"
	"path"
	"path/filepath"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/gobwas/glob"
)

const (
	// DefaultMaxDepth bounds how many path segments below the walk root an
	// entry may have.
	DefaultMaxDepth = 10

	metaChars = `*?[{\`
)

var (
	ErrInvalidPattern = errors.New("invalid pattern")
	ErrWalkFailure    = errors.New("walk failure")
)

// Entry is a discovered file or directory. Path is slash separated and
// relative to the root of the walked filesystem.
type Entry struct {
	Path  string
	IsDir bool
}

// Segments splits the entry path into its components. Empty and "."
// components are dropped.
func (e Entry) Segments() []string {
	var out []string
	for _, seg := range strings.Split(e.Path, "/") {
		if seg == "" || seg == "." {
			continue
		}
		out = append(out, seg)
	}
	return out
}

// Walker matches glob patterns against a billy.Filesystem.
type Walker struct {
	FS          billy.Filesystem
	MaxDepth    int
	FollowLinks bool
}

// New returns a Walker with the default depth limit that follows symlinks.
func New(fsys billy.Filesystem) *Walker {
	return &Walker{
		FS:          fsys,
		MaxDepth:    DefaultMaxDepth,
		FollowLinks: true,
	}
}

// Compile validates pattern and returns its static directory prefix along
// with the compiled matcher.
func Compile(pattern string) (string, glob.Glob, error) {
	if strings.TrimSpace(pattern) == "" {
		return "", nil, fmt.Errorf("%w: empty pattern", ErrInvalidPattern)
	}
	if path.IsAbs(pattern) || filepath.IsAbs(pattern) {
		return "", nil, fmt.Errorf("%w: %q is absolute, patterns are relative to the walk root", ErrInvalidPattern, pattern)
	}
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return "", nil, fmt.Errorf("%w: %q: %w", ErrInvalidPattern, pattern, err)
	}
	return staticPrefix(pattern), g, nil
}

// staticPrefix returns the leading directory segments of pattern that
// contain no glob syntax. The last segment is never part of the prefix.
func staticPrefix(pattern string) string {
	segments := strings.Split(pattern, "/")
	var prefix []string
	for _, seg := range segments[:len(segments)-1] {
		if strings.ContainsAny(seg, metaChars) {
			break
		}
		if seg == "" || seg == "." {
			continue
		}
		prefix = append(prefix, seg)
	}
	return strings.Join(prefix, "/")
}

// Glob compiles pattern and returns an iterator over every matching entry.
// Entries paired with a non-nil error failed to be read; their Path is set
// and IsDir is meaningless.
func (w *Walker) Glob(pattern string) (iter.Seq2[Entry, error], error) {
	base, g, err := Compile(cleanPattern(pattern))
	if err != nil {
		return nil, err
	}
	return func(yield func(Entry, error) bool) {
		if base != "" {
			info, err := w.stat(base)
			if errors.Is(err, os.ErrNotExist) {
				return
			}
			if err != nil {
				yield(Entry{Path: base}, w.failure(base, err))
				return
			}
			if !info.IsDir() {
				return
			}
		}
		w.walk(base, rootDepth(base), g, yield)
	}, nil
}

func (w *Walker) walk(dir string, depth int, g glob.Glob, yield func(Entry, error) bool) bool {
	infos, err := w.FS.ReadDir(dir)
	if err != nil {
		return yield(Entry{Path: dir}, w.failure(dir, err))
	}
	for _, info := range infos {
		p := path.Join(dir, info.Name())
		if info.Mode()&os.ModeSymlink != 0 {
			if !w.FollowLinks {
				continue
			}
			target, err := w.FS.Stat(p)
			if err != nil {
				if !yield(Entry{Path: p}, w.failure(p, err)) {
					return false
				}
				continue
			}
			info = target
		}

		if g.Match(p) {
			if !yield(Entry{Path: p, IsDir: info.IsDir()}, nil) {
				return false
			}
		}
		if info.IsDir() && depth < w.maxDepth() {
			if !w.walk(p, depth+1, g, yield) {
				return false
			}
		}
	}
	return true
}

// rootDepth is the depth of the entries directly inside base, counted from
// the walk root so that the limit does not depend on how the pattern is
// spelled.
func rootDepth(base string) int {
	if base == "" {
		return 1
	}
	return strings.Count(base, "/") + 2
}

func (w *Walker) stat(p string) (os.FileInfo, error) {
	if w.FollowLinks {
		return w.FS.Stat(p)
	}
	return w.FS.Lstat(p)
}

func (w *Walker) maxDepth() int {
	if w.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return w.MaxDepth
}

func (w *Walker) failure(p string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrWalkFailure, p, err)
}

// Canonicalize returns the absolute, symlink-free host path of an entry.
// It fails when the entry no longer exists. Filesystems that are not backed
// by the host (memfs) resolve to their own absolute path.
func (w *Walker) Canonicalize(p string) (string, error) {
	if _, err := w.FS.Stat(p); err != nil {
		return "", err
	}
	abs := filepath.Join(w.FS.Root(), filepath.FromSlash(p))
	if !filepath.IsAbs(abs) {
		var err error
		if abs, err = filepath.Abs(abs); err != nil {
			return "", err
		}
	}
	real, err := filepath.EvalSymlinks(abs)
	if errors.Is(err, os.ErrNotExist) {
		return abs, nil
	}
	if err != nil {
		return "", err
	}
	return real, nil
}

// cleanPattern drops leading "./" segments so patterns written relative to
// the current directory match walker paths.
func cleanPattern(pattern string) string {
	for strings.HasPrefix(pattern, "./") {
		pattern = strings.TrimPrefix(pattern, "./")
	}
	return pattern
}
