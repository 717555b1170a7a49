package input

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResolver(t *testing.T) (*Resolver, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	return &Resolver{Fs: fs, BuildRoot: "/project"}, fs
}

func TestResolveInlineSource(t *testing.T) {
	r, _ := newResolver(t)

	t.Run("single string", func(t *testing.T) {
		q, err := r.Resolve("get_user", map[string]any{
			"source": "SELECT id FROM users",
		})
		require.NoError(t, err)
		assert.Equal(t, "SELECT id FROM users", q.SourceText)
		assert.Equal(t, GeneratedRecord, q.Shape)
		assert.True(t, q.Checked)
	})

	t.Run("parts concatenate in order", func(t *testing.T) {
		q, err := r.Resolve("get_user", map[string]any{
			"source": []any{"SELECT id ", "FROM users ", "WHERE id = $1"},
			"args":   []any{"id"},
		})
		require.NoError(t, err)
		assert.Equal(t, "SELECT id FROM users WHERE id = $1", q.SourceText)
		assert.Equal(t, 1, q.ArgCount())
	})
}

func TestResolveKeys(t *testing.T) {
	r, _ := newResolver(t)

	t.Run("unknown key is named", func(t *testing.T) {
		_, err := r.Resolve("q", map[string]any{
			"source": "SELECT 1",
			"sauce":  "typo",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected input key: sauce")
	})

	t.Run("record selects existing type", func(t *testing.T) {
		q, err := r.Resolve("q", map[string]any{
			"source": "SELECT id FROM users",
			"record": "User",
		})
		require.NoError(t, err)
		assert.Equal(t, ExistingType, q.Shape)
		assert.Equal(t, "User", q.RecordType)
	})

	t.Run("scalar mode", func(t *testing.T) {
		q, err := r.Resolve("q", map[string]any{
			"source": "SELECT count(*) FROM users",
			"scalar": true,
			"type":   "int64",
		})
		require.NoError(t, err)
		assert.Equal(t, Scalar, q.Shape)
		assert.Equal(t, "int64", q.ScalarType)
	})

	t.Run("record and scalar conflict", func(t *testing.T) {
		_, err := r.Resolve("q", map[string]any{
			"source": "SELECT 1",
			"record": "User",
			"scalar": true,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mutually exclusive")
	})

	t.Run("type without scalar", func(t *testing.T) {
		_, err := r.Resolve("q", map[string]any{
			"source": "SELECT 1",
			"type":   "int64",
		})
		require.Error(t, err)
	})

	t.Run("unchecked mode", func(t *testing.T) {
		q, err := r.Resolve("q", map[string]any{
			"source":  "SELECT 1",
			"checked": false,
		})
		require.NoError(t, err)
		assert.False(t, q.Checked)
	})

	t.Run("no source at all", func(t *testing.T) {
		_, err := r.Resolve("q", map[string]any{})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNoSource)
	})

	t.Run("source and source_file conflict", func(t *testing.T) {
		_, err := r.Resolve("q", map[string]any{
			"source":      "SELECT 1",
			"source_file": "queries/q.sql",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mutually exclusive")
	})
}

func TestResolveFileSource(t *testing.T) {
	t.Run("absolute path rejected", func(t *testing.T) {
		r, _ := newResolver(t)
		_, err := r.Resolve("q", map[string]any{"source_file": "/etc/q.sql"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrAbsolutePath)
	})

	t.Run("bare filename rejected", func(t *testing.T) {
		r, _ := newResolver(t)
		_, err := r.Resolve("q", map[string]any{"source_file": "q.sql"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrBarePath)
	})

	t.Run("missing build root is a config error", func(t *testing.T) {
		r := &Resolver{Fs: afero.NewMemMapFs()}
		_, err := r.Resolve("q", map[string]any{"source_file": "queries/q.sql"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNoBuildRoot)
	})

	t.Run("resolves against build root", func(t *testing.T) {
		r, fs := newResolver(t)
		require.NoError(t, afero.WriteFile(fs, "/project/queries/q.sql", []byte("SELECT 1"), 0o644))

		q, err := r.Resolve("q", map[string]any{"source_file": "queries/q.sql"})
		require.NoError(t, err)
		assert.Equal(t, "SELECT 1", q.SourceText)
		assert.Equal(t, "queries/q.sql", q.SourceFile)
	})

	t.Run("missing file reports the resolved path", func(t *testing.T) {
		r, _ := newResolver(t)
		_, err := r.Resolve("q", map[string]any{"source_file": "queries/gone.sql"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "/project/queries/gone.sql")
	})
}

func TestLoadManifest(t *testing.T) {
	fs := afero.NewMemMapFs()
	manifest := `package: store
output: store.gen.go
queries:
  b_second:
    source: SELECT 2
  a_first:
    source: SELECT 1
`
	require.NoError(t, afero.WriteFile(fs, "querybind.yaml", []byte(manifest), 0o644))

	m, err := LoadManifest(fs, "querybind.yaml")
	require.NoError(t, err)
	assert.Equal(t, "store", m.Package)
	assert.Equal(t, "store.gen.go", m.Output)
	require.Len(t, m.Queries, 2)
	assert.Equal(t, "a_first", m.Queries[0].Name)
	assert.Equal(t, "b_second", m.Queries[1].Name)

	t.Run("unknown top level key", func(t *testing.T) {
		bad := "queries:\n  q:\n    source: SELECT 1\nextras: true\n"
		require.NoError(t, afero.WriteFile(fs, "bad.yaml", []byte(bad), 0o644))
		_, err := LoadManifest(fs, "bad.yaml")
		require.Error(t, err)
	})

	t.Run("empty manifest", func(t *testing.T) {
		require.NoError(t, afero.WriteFile(fs, "empty.yaml", []byte("queries: {}\n"), 0o644))
		_, err := LoadManifest(fs, "empty.yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no queries")
	})
}
