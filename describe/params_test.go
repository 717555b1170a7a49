package describe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionPlaceholders(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want int
	}{
		{"none", "SELECT 1", 0},
		{"simple", "SELECT * FROM users WHERE id = ?", 1},
		{"several", "INSERT INTO t (a, b, c) VALUES (?, ?, ?)", 3},
		{"inside string literal", "SELECT '?' FROM t WHERE a = ?", 1},
		{"escaped quote in literal", "SELECT 'it''s ?' FROM t WHERE a = ?", 1},
		{"inside line comment", "SELECT 1 -- was it ?\nFROM t WHERE a = ?", 1},
		{"inside block comment", "SELECT /* ? */ a FROM t WHERE b = ?", 1},
		{"inside quoted identifier", "SELECT `odd?name` FROM t WHERE a = ?", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := QuestionPlaceholders(tt.sql)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDollarPlaceholders(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want int
	}{
		{"none", "SELECT 1", 0},
		{"sequential", "SELECT * FROM t WHERE a = $1 AND b = $2", 2},
		{"repeated highest wins", "SELECT * FROM t WHERE a = $2 OR b = $2 OR c = $1", 2},
		{"inside string literal", "SELECT '$9' FROM t WHERE a = $1", 1},
		{"dollar quoted body", "SELECT $$not $3 a param$$ FROM t WHERE a = $1", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DollarPlaceholders(tt.sql)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNamedPlaceholders(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want int
	}{
		{"none", "SELECT 1", 0},
		{"distinct", "SELECT * FROM t WHERE a = @p1 AND b = @p2", 2},
		{"repeated name counts once", "SELECT * FROM t WHERE a = @id OR b = @id", 1},
		{"case insensitive", "SELECT * FROM t WHERE a = @ID OR b = @id", 1},
		{"inside bracket identifier", "SELECT [a@b] FROM t WHERE c = @p1", 1},
		{"inside string literal", "SELECT 'mail@host' FROM t WHERE a = @p1", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NamedPlaceholders(tt.sql)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
