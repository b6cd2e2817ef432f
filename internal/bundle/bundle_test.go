package bundle

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/staticres/internal/config"
	"github.com/agentic-research/staticres/internal/emit"
	"github.com/agentic-research/staticres/internal/logging"
	"github.com/agentic-research/staticres/internal/render"
	"github.com/agentic-research/staticres/internal/tree"
	"github.com/agentic-research/staticres/internal/walk"
)

func fixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"tests/test.txt":        "test",
		"tests/folder/test.txt": "yet another test",
	}
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return dir
}

func bundleFor(dir string) config.Bundle {
	b := config.Bundle{Name: "Res", Pattern: "tests/**", Dir: dir, Package: "assets"}
	b.ApplyDefaults()
	return b
}

func TestRun_WritesEmbedSource(t *testing.T) {
	dir := fixture(t)
	b := bundleFor(dir)

	res, err := Run(b, logging.NewNop(), nil)
	require.NoError(t, err)
	assert.Equal(t, tree.Stats{Dirs: 1, Files: 2}, res.Stats)

	src, err := os.ReadFile(filepath.Join(dir, "res_staticres.go"))
	require.NoError(t, err)
	assert.Equal(t, res.Output.Source, src)
	assert.Contains(t, string(src), "package assets")
	assert.Contains(t, string(src), "//go:embed tests/folder/test.txt")
	assert.Contains(t, string(src), "//go:embed tests/test.txt")
	assert.Contains(t, string(src), "Res.Tests.Folder.Test_txt = _Res_0")
	assert.Contains(t, string(src), "Res.Tests.Test_txt = _Res_1")
}

func TestRun_UnchangedOutputIsNotRewritten(t *testing.T) {
	dir := fixture(t)
	b := bundleFor(dir)

	_, err := Run(b, logging.NewNop(), nil)
	require.NoError(t, err)

	old := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(b.Output, old, old))

	_, err = Run(b, logging.NewNop(), nil)
	require.NoError(t, err)

	info, err := os.Stat(b.Output)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(old), "output rewritten although unchanged")
}

func TestRun_RegenerateIsStable(t *testing.T) {
	dir := fixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".staticres-123.go"), []byte("package x\n"), 0o644))
	b := config.Bundle{Name: "Res", Pattern: "**", Dir: dir, Package: "assets"}
	b.ApplyDefaults()

	first, err := Run(b, logging.NewNop(), nil)
	require.NoError(t, err)
	second, err := Run(b, logging.NewNop(), nil)
	require.NoError(t, err)

	assert.Equal(t, string(first.Output.Source), string(second.Output.Source))
	assert.NotContains(t, string(second.Output.Source), "staticres_go")
	assert.NotContains(t, string(second.Output.Source), "123")
	_, consts := second.Namespace.Count()
	assert.Equal(t, 2, consts)
}

func TestOutputEntry(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, "res_staticres.go", outputEntry(config.Bundle{Dir: dir, Output: filepath.Join(dir, "res_staticres.go")}))
	assert.Equal(t, "gen/res.go", outputEntry(config.Bundle{Dir: dir, Output: filepath.Join(dir, "gen", "res.go")}))
	assert.Empty(t, outputEntry(config.Bundle{Dir: filepath.Join(dir, "sub"), Output: filepath.Join(dir, "res.go")}))
	assert.Empty(t, outputEntry(config.Bundle{Dir: dir, Output: config.Stdout}))
}

func TestRun_InlineToStdout(t *testing.T) {
	dir := fixture(t)
	b := bundleFor(dir)
	b.Backend = config.BackendInline
	b.Output = config.Stdout

	var stdout bytes.Buffer
	_, err := Run(b, logging.NewNop(), &stdout)
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), `Res.Tests.Test_txt = []byte("test")`)
	assert.Contains(t, stdout.String(), `Res.Tests.Folder.Test_txt = []byte("yet another test")`)
	assert.NoFileExists(t, filepath.Join(dir, "res_staticres.go"))
}

func TestRun_EmptyMatch(t *testing.T) {
	dir := t.TempDir()
	b := config.Bundle{Name: "Res", Pattern: "nothing/**", Dir: dir, Package: "assets"}
	b.ApplyDefaults()

	res, err := Run(b, logging.NewNop(), nil)
	require.NoError(t, err)

	namespaces, consts := res.Namespace.Count()
	assert.Zero(t, namespaces)
	assert.Zero(t, consts)
	assert.NotContains(t, string(res.Output.Source), "embed")
	assert.FileExists(t, b.Output)
}

func TestRun_InvalidPattern(t *testing.T) {
	b := bundleFor(fixture(t))
	b.Pattern = "tests/[oops"

	_, err := Run(b, logging.NewNop(), nil)
	assert.ErrorIs(t, err, walk.ErrInvalidPattern)
	assert.NoFileExists(t, b.Output)
}

func TestRun_EmbedOutsidePackage(t *testing.T) {
	b := bundleFor(fixture(t))
	b.Output = filepath.Join(t.TempDir(), "elsewhere", "res.go")

	_, err := Run(b, logging.NewNop(), nil)
	assert.ErrorIs(t, err, render.ErrOutsidePackage)
	assert.NoFileExists(t, b.Output)
}

func TestRun_LogsWalkFailures(t *testing.T) {
	dir := fixture(t)
	require.NoError(t, os.Symlink(filepath.Join(dir, "missing"), filepath.Join(dir, "tests", "dangling")))

	var logs bytes.Buffer
	log, err := logging.New(logging.Config{Level: "warn", Output: &logs})
	require.NoError(t, err)

	res, err := Run(bundleFor(dir), log, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats.Skipped)
	assert.Contains(t, logs.String(), "skipping tests/dangling")
}

func TestRun_WarnsOnCollision(t *testing.T) {
	dir := fixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tests", "test-txt"), []byte("x"), 0o644))

	var logs bytes.Buffer
	log, err := logging.New(logging.Config{Level: "warn", Output: &logs})
	require.NoError(t, err)

	_, err = Run(bundleFor(dir), log, nil)
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "duplicate field Test_txt")

	b := bundleFor(dir)
	b.Strict = true
	b.Output = filepath.Join(dir, "strict.go")
	_, err = Run(b, logging.NewNop(), nil)
	assert.ErrorIs(t, err, emit.ErrIdentifierCollision)
	assert.NoFileExists(t, b.Output)
}

func TestScanner_Scan(t *testing.T) {
	dir := fixture(t)
	b := bundleFor(dir)

	ns, stats, err := NewScanner(b, logging.NewNop()).Scan(b)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Files)
	require.Len(t, ns.Namespaces, 1)
	assert.Equal(t, "tests", ns.Namespaces[0].Name)

	want, err := filepath.EvalSymlinks(filepath.Join(dir, "tests", "test.txt"))
	require.NoError(t, err)
	assert.Equal(t, want, ns.Namespaces[0].Consts[0].Canonical)
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.go")

	changed, err := Write(path, []byte("package x\n"))
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = Write(path, []byte("package x\n"))
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = Write(path, []byte("package y\n"))
	require.NoError(t, err)
	assert.True(t, changed)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "package y\n", string(got))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files left behind")
}
