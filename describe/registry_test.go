package describe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBackend struct {
	tag     string
	schemes []string
}

func (s *stubBackend) Tag() string       { return s.tag }
func (s *stubBackend) Schemes() []string { return s.schemes }

func (s *stubBackend) Describe(ctx context.Context, url string, query string) (*Description, error) {
	return &Description{BackendTag: s.tag}, nil
}

func (s *stubBackend) TypeTable() map[string]string {
	return map[string]string{"text": "string"}
}

func TestForURL(t *testing.T) {
	Register(&stubBackend{tag: "stub", schemes: []string{"stub"}})

	t.Run("registered scheme", func(t *testing.T) {
		b, err := ForURL("stub://localhost/db")
		require.NoError(t, err)
		assert.Equal(t, "stub", b.Tag())
	})

	t.Run("known scheme without its backend", func(t *testing.T) {
		// No backend subpackage is imported by this test binary, so the
		// postgres scheme is recognized but not servable.
		_, err := ForURL("postgres://localhost/db")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrBackendNotIncluded)
		assert.Contains(t, err.Error(), "postgres")
	})

	t.Run("alias of a known scheme", func(t *testing.T) {
		_, err := ForURL("mariadb://localhost/db")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrBackendNotIncluded)
		assert.Contains(t, err.Error(), "mysql")
	})

	t.Run("unknown scheme", func(t *testing.T) {
		_, err := ForURL("oracle://localhost/db")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownScheme)
		assert.Contains(t, err.Error(), `"oracle"`)
	})
}

func TestForTag(t *testing.T) {
	Register(&stubBackend{tag: "tagonly", schemes: []string{"tagonly"}})

	b, err := ForTag("tagonly")
	require.NoError(t, err)
	assert.Equal(t, "tagonly", b.Tag())

	_, err = ForTag("absent")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBackendNotIncluded)
	assert.Contains(t, err.Error(), `"absent"`)
}

func TestRegisterDuplicatePanics(t *testing.T) {
	Register(&stubBackend{tag: "dup", schemes: []string{"dup"}})
	assert.Panics(t, func() {
		Register(&stubBackend{tag: "dup", schemes: []string{"dup2"}})
	})
}

func TestBackendsSorted(t *testing.T) {
	Register(&stubBackend{tag: "zz", schemes: []string{"zz"}})
	Register(&stubBackend{tag: "aa", schemes: []string{"aa"}})

	tags := Backends()
	require.NotEmpty(t, tags)
	assert.IsIncreasing(t, tags)
}
