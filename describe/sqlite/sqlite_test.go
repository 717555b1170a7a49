package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDeclType(t *testing.T) {
	tests := []struct {
		decl string
		want string
	}{
		{"INTEGER", "INTEGER"},
		{"integer", "INTEGER"},
		{"varchar(20)", "VARCHAR"},
		{"NUMERIC(10,2)", "NUMERIC"},
		{" text ", "TEXT"},
		{"", "ANY"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeDeclType(tt.decl), "decl %q", tt.decl)
	}
}

func TestDSNFromURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{"opaque form", "sqlite:app.db", "app.db", false},
		{"double slash form", "sqlite://db/app.db", "db/app.db", false},
		{"memory database", "sqlite::memory:", ":memory:", false},
		{"options survive", "sqlite://db/app.db?mode=ro", "db/app.db?mode=ro", false},
		{"no path", "sqlite://", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := dsnFromURL(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
