package mssql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTypeName(t *testing.T) {
	tests := []struct {
		typeName string
		want     string
	}{
		{"int", "int"},
		{"varchar(50)", "varchar"},
		{"NVARCHAR(MAX)", "nvarchar"},
		{"decimal(10,2)", "decimal"},
		{" datetime2(7) ", "datetime2"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeTypeName(tt.typeName), "type %q", tt.typeName)
	}
}

func TestDSNFromURL(t *testing.T) {
	got, err := dsnFromURL("mssql://sa:pw@localhost:1433?database=app")
	require.NoError(t, err)
	assert.Equal(t, "sqlserver://sa:pw@localhost:1433?database=app", got)

	got, err = dsnFromURL("sqlserver://sa:pw@localhost:1433?database=app")
	require.NoError(t, err)
	assert.Equal(t, "sqlserver://sa:pw@localhost:1433?database=app", got)
}
