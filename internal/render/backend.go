package render

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/agentic-research/staticres/internal/emit"
)

var ErrOutsidePackage = errors.New("file is outside the package directory")

// Binding is how a backend supplies a constant's bytes. Exactly one field is
// set: EmbedPath asks the Go compiler to read the file through a //go:embed
// directive, Data is embedded as a literal.
type Binding struct {
	EmbedPath string
	Data      []byte
}

// Backend binds emitted constants to their bytes.
type Backend interface {
	Bind(c emit.Const) (Binding, error)
}

// EmbedBackend binds files with //go:embed. The compiler only embeds files
// inside the package directory of the generated source.
type EmbedBackend struct {
	PackageDir string
}

// NewEmbedBackend canonicalizes dir so that it compares with canonical
// file paths.
func NewEmbedBackend(dir string) (*EmbedBackend, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		abs = real
	}
	return &EmbedBackend{PackageDir: abs}, nil
}

func (b *EmbedBackend) Bind(c emit.Const) (Binding, error) {
	rel, err := filepath.Rel(b.PackageDir, c.Canonical)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return Binding{}, fmt.Errorf("%w: %s is not below %s (use the inline backend)", ErrOutsidePackage, c.Canonical, b.PackageDir)
	}
	return Binding{EmbedPath: filepath.ToSlash(rel)}, nil
}

// InlineBackend reads each file from FS at generation time and embeds its
// bytes as a literal.
type InlineBackend struct {
	FS billy.Filesystem
}

func (b *InlineBackend) Bind(c emit.Const) (Binding, error) {
	data, err := util.ReadFile(b.FS, c.Path)
	if err != nil {
		return Binding{}, fmt.Errorf("%w: %s: %w", emit.ErrPathResolution, c.Path, err)
	}
	if data == nil {
		data = []byte{}
	}
	return Binding{Data: data}, nil
}
