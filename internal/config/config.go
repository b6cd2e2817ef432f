// Package config describes bundles: which files to embed and where the
// generated source goes. Bundles come from command-line flags or from an
// HCL or YAML file.
package config

import (
	"errors"
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/hcl/v2/hclsimple"

	"github.com/agentic-research/staticres/internal/ident"
	"github.com/agentic-research/staticres/internal/tree"
)

var ErrMalformedInvocation = errors.New("malformed invocation")

const (
	BackendEmbed  = "embed"
	BackendInline = "inline"

	VisibilityExported   = "exported"
	VisibilityUnexported = "unexported"

	// Stdout as Output writes the generated source to standard output.
	Stdout = "-"
)

// File is the top level of a configuration file.
type File struct {
	Bundles []Bundle `hcl:"bundle,block" yaml:"bundles"`
}

// Bundle is one generated declaration tree.
type Bundle struct {
	Name       string `hcl:"name,label" yaml:"name"`
	Pattern    string `hcl:"pattern" yaml:"pattern"`
	Package    string `hcl:"package,optional" yaml:"package"`
	Output     string `hcl:"output,optional" yaml:"output"`
	Dir        string `hcl:"dir,optional" yaml:"dir"`
	Visibility string `hcl:"visibility,optional" yaml:"visibility"`
	Backend    string `hcl:"backend,optional" yaml:"backend"`
	Strict     bool   `hcl:"strict,optional" yaml:"strict"`
}

// Load reads a configuration file. Relative Dir and Output paths are
// resolved against the directory of the file. Every bundle is defaulted and
// validated.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".hcl":
		err = hclsimple.Decode(path, data, nil, &f)
	case ".yaml", ".yml":
		err = yaml.UnmarshalWithOptions(data, &f, yaml.DisallowUnknownField())
	default:
		return nil, fmt.Errorf("%w: unsupported config format %q", ErrMalformedInvocation, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedInvocation, path, err)
	}

	base := filepath.Dir(path)
	outputs := make(map[string]string)
	for i := range f.Bundles {
		b := &f.Bundles[i]
		b.Dir = resolve(base, b.Dir)
		if b.Output != Stdout && b.Output != "" {
			b.Output = resolve(base, b.Output)
		}
		b.ApplyDefaults()
		if err := b.Validate(); err != nil {
			return nil, err
		}
		if prev, ok := outputs[b.Output]; ok && b.Output != Stdout {
			return nil, fmt.Errorf("%w: bundles %q and %q both write %s", ErrMalformedInvocation, prev, b.Name, b.Output)
		}
		outputs[b.Output] = b.Name
	}
	return &f, nil
}

func resolve(base, p string) string {
	if p == "" {
		return base
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// ApplyDefaults fills unset optional fields.
func (b *Bundle) ApplyDefaults() {
	if b.Dir == "" {
		b.Dir = "."
	}
	if b.Backend == "" {
		b.Backend = BackendEmbed
	}
	if b.Output == "" && b.Name != "" {
		b.Output = filepath.Join(b.Dir, strings.ToLower(ident.Sanitize(b.Name))+"_staticres.go")
	}
	if b.Package == "" {
		b.Package = packageFromDir(b.OutputDir())
	}
}

// OutputDir is the directory the generated file lives in: the package
// directory for //go:embed.
func (b *Bundle) OutputDir() string {
	if b.Output == Stdout || b.Output == "" {
		return b.Dir
	}
	return filepath.Dir(b.Output)
}

// packageFromDir derives a package clause from the directory name. Names
// that are not legal Go identifiers (a leading digit, a keyword) fall back to
// "main".
func packageFromDir(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "main"
	}
	name := strings.ToLower(ident.Sanitize(filepath.Base(abs)))
	if !token.IsIdentifier(name) || name == "_" {
		return "main"
	}
	return name
}

// Validate reports ErrMalformedInvocation for bundles that do not name
// exactly one pattern and a declaration, or carry unknown options.
func (b *Bundle) Validate() error {
	switch {
	case strings.TrimSpace(b.Name) == "":
		return fmt.Errorf("%w: bundle name is required", ErrMalformedInvocation)
	case strings.TrimSpace(b.Pattern) == "":
		return fmt.Errorf("%w: bundle %q: exactly one pattern is required", ErrMalformedInvocation, b.Name)
	}
	if b.Backend != BackendEmbed && b.Backend != BackendInline {
		return fmt.Errorf("%w: bundle %q: unknown backend %q", ErrMalformedInvocation, b.Name, b.Backend)
	}
	if _, err := b.RootVisibility(); err != nil {
		return err
	}
	return nil
}

// RootVisibility returns the export qualifier of the root declaration. An
// unset visibility follows the case of Name.
func (b *Bundle) RootVisibility() (tree.Visibility, error) {
	switch b.Visibility {
	case "":
		if ident.IsExported(b.Name) {
			return tree.Exported, nil
		}
		return tree.Unexported, nil
	case VisibilityExported:
		return tree.Exported, nil
	case VisibilityUnexported:
		return tree.Unexported, nil
	default:
		return tree.Exported, fmt.Errorf("%w: bundle %q: unknown visibility %q", ErrMalformedInvocation, b.Name, b.Visibility)
	}
}
