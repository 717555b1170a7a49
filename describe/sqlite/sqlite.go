// Package sqlite implements the describe backend for SQLite with the mattn
// driver. SQLite prepares a statement without running it, and the driver
// does not step until the first row is read, so reading column metadata
// before Next is side-effect free.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/querybind/querybind/describe"
)

func init() {
	describe.Register(&Backend{})
}

// Backend describes queries against SQLite.
type Backend struct{}

func (*Backend) Tag() string { return "sqlite" }

func (*Backend) Schemes() []string { return []string{"sqlite", "sqlite3"} }

// Describe prepares the statement and reads column metadata without stepping
// it. SQLite reports declared column types but not nullability through the
// prepared statement, so nullability stays undetermined.
func (b *Backend) Describe(ctx context.Context, connURL string, query string) (*describe.Description, error) {
	dsn, err := dsnFromURL(connURL)
	if err != nil {
		return nil, err
	}

	paramCount, err := describe.QuestionPlaceholders(query)
	if err != nil {
		return nil, fmt.Errorf("failed to scan placeholders: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	defer db.Close()

	args := make([]any, paramCount)
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", describe.ErrDescribeFailed, err)
	}
	// Closed before the first Next, so the statement is never stepped.
	defer rows.Close()

	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", describe.ErrDescribeFailed, err)
	}

	desc := &describe.Description{BackendTag: b.Tag()}
	for i := 0; i < paramCount; i++ {
		desc.Parameters = append(desc.Parameters, describe.Parameter{})
	}
	for _, ct := range colTypes {
		desc.Columns = append(desc.Columns, describe.Column{
			Name:       ct.Name(),
			NativeType: normalizeDeclType(ct.DatabaseTypeName()),
		})
	}

	return desc, nil
}

// normalizeDeclType canonicalizes a declared column type: uppercased, length
// suffix stripped, so "varchar(20)" and "VARCHAR" share one table entry.
// Expression columns have no declared type at all; SQLite calls that
// affinity ANY.
func normalizeDeclType(declType string) string {
	declType = strings.ToUpper(strings.TrimSpace(declType))
	if i := strings.IndexByte(declType, '('); i >= 0 {
		declType = strings.TrimSpace(declType[:i])
	}
	if declType == "" {
		return "ANY"
	}
	return declType
}

// dsnFromURL extracts the database path from a sqlite: or sqlite:// URL.
func dsnFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid database URL: %w", err)
	}

	path := u.Opaque
	if path == "" {
		path = u.Host + u.Path
	}
	if path == "" {
		return "", fmt.Errorf("sqlite URL %q names no database file", rawURL)
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return path, nil
}

// TypeTable maps normalized declared types to Go types.
func (*Backend) TypeTable() map[string]string {
	return map[string]string{
		"INTEGER":   "int64",
		"INT":       "int64",
		"BIGINT":    "int64",
		"SMALLINT":  "int64",
		"TINYINT":   "int64",
		"MEDIUMINT": "int64",
		"TEXT":      "string",
		"CHAR":      "string",
		"VARCHAR":   "string",
		"NCHAR":     "string",
		"NVARCHAR":  "string",
		"CLOB":      "string",
		"REAL":      "float64",
		"DOUBLE":    "float64",
		"FLOAT":     "float64",
		"NUMERIC":   "float64",
		"DECIMAL":   "float64",
		"BLOB":      "[]byte",
		"BOOLEAN":   "bool",
		"BOOL":      "bool",
		"DATE":      "time.Time",
		"DATETIME":  "time.Time",
		"TIMESTAMP": "time.Time",
		"ANY":       "any",
	}
}
