package evidence

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic_Fetch(t *testing.T) {
	fetcher := Static{"ana/repo": {Name: "repo"}}

	snap, err := fetcher.Fetch(context.Background(), "ana/repo")
	require.NoError(t, err)
	assert.Equal(t, "repo", snap.Name)

	_, err = fetcher.Fetch(context.Background(), "desconocido")
	assert.ErrorIs(t, err, ErrSubjectAccess)
}

func TestSnapshot_Helpers(t *testing.T) {
	snap := &Snapshot{
		Directories: []string{"src", "conf/base", "data/01_raw"},
		Files: map[string]FileMeta{
			"data/01_raw/ventas.csv":   {},
			"data/01_raw/clientes.csv": {},
			"src/tests/test_nodes.py":  {},
			"README.md":                {},
		},
	}

	assert.True(t, snap.HasDirectory("src"))
	assert.True(t, snap.HasDirectory("base"), "nested directory matched by name")
	assert.False(t, snap.HasDirectory("notebooks"))

	assert.True(t, snap.HasPathContaining("test_"))
	assert.False(t, snap.HasPathContaining("kedro-viz"))

	assert.Equal(t, 2, snap.CountFilesUnder("data/01_raw/"))
	assert.Equal(t, 0, snap.CountFilesUnder("notebooks/"))

	assert.Equal(t, []string{"conf/base", "data/01_raw", "src"}, snap.SortedDirectories())
}

func TestLocal_Fetch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src", "pipelines"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# proyecto"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "requirements.txt"), []byte("kedro"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git", "HEAD"), []byte("ref"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "pipelines", "nodes.py"), []byte("def f(): pass"), 0o644))

	snap, err := Local{}.Fetch(context.Background(), dir)
	require.NoError(t, err)

	assert.True(t, snap.ReadmePresent)
	assert.True(t, snap.RequirementsPresent)
	assert.False(t, snap.GitignorePresent)
	assert.True(t, snap.HasDirectory("src"))
	assert.Contains(t, snap.Files, "src/pipelines/nodes.py")
	assert.NotContains(t, snap.Files, ".git/HEAD", "VCS internals are skipped")
}

func TestLocal_Fetch_Missing(t *testing.T) {
	_, err := Local{}.Fetch(context.Background(), "/no/existe")
	assert.ErrorIs(t, err, ErrSubjectAccess)

	// a plain file is not a repository either
	file := filepath.Join(t.TempDir(), "archivo.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err = Local{}.Fetch(context.Background(), file)
	assert.ErrorIs(t, err, ErrSubjectAccess)
}

func TestLocal_Fetch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0o644))

	_, err := Local{}.Fetch(ctx, dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
