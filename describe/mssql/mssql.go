// Package mssql implements the describe backend for SQL Server using
// sys.dm_exec_describe_first_result_set, the server's own describe facility,
// which analyzes a statement without executing it.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/microsoft/go-mssqldb"

	"github.com/querybind/querybind/describe"
)

func init() {
	describe.Register(&Backend{})
}

// Backend describes queries against SQL Server.
type Backend struct{}

func (*Backend) Tag() string { return "mssql" }

func (*Backend) Schemes() []string { return []string{"mssql", "sqlserver"} }

const describeQuery = `
SELECT column_ordinal, name, is_nullable, system_type_name, error_message
FROM sys.dm_exec_describe_first_result_set(@stmt, NULL, 0)
WHERE is_hidden = 0 OR is_hidden IS NULL
ORDER BY column_ordinal`

// Describe asks the server to analyze the statement's first result set.
// Parameter counts come from the placeholder scanner; the management view
// does not report parameter types for ad hoc statements.
func (b *Backend) Describe(ctx context.Context, connURL string, query string) (*describe.Description, error) {
	dsn, err := dsnFromURL(connURL)
	if err != nil {
		return nil, err
	}

	paramCount, err := describe.NamedPlaceholders(query)
	if err != nil {
		return nil, fmt.Errorf("failed to scan placeholders: %w", err)
	}

	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SQL Server: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, describeQuery, sql.Named("stmt", query))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", describe.ErrDescribeFailed, err)
	}
	defer rows.Close()

	desc := &describe.Description{BackendTag: b.Tag()}
	for i := 0; i < paramCount; i++ {
		desc.Parameters = append(desc.Parameters, describe.Parameter{})
	}

	for rows.Next() {
		var (
			ordinal    int
			name       sql.NullString
			nullable   sql.NullBool
			nativeType sql.NullString
			errMsg     sql.NullString
		)
		if err := rows.Scan(&ordinal, &name, &nullable, &nativeType, &errMsg); err != nil {
			return nil, fmt.Errorf("%w: %v", describe.ErrDescribeFailed, err)
		}
		if errMsg.Valid {
			return nil, fmt.Errorf("%w: %s", describe.ErrDescribeFailed, errMsg.String)
		}

		col := describe.Column{
			Name:       name.String,
			NativeType: normalizeTypeName(nativeType.String),
		}
		if nullable.Valid {
			col.Nullable = describe.Bool(nullable.Bool)
		}
		desc.Columns = append(desc.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", describe.ErrDescribeFailed, err)
	}

	return desc, nil
}

// normalizeTypeName strips length and precision decorations so
// "varchar(50)" and "decimal(10,2)" land on their base table entries.
func normalizeTypeName(typeName string) string {
	typeName = strings.ToLower(strings.TrimSpace(typeName))
	if i := strings.IndexByte(typeName, '('); i >= 0 {
		typeName = strings.TrimSpace(typeName[:i])
	}
	return typeName
}

// dsnFromURL canonicalizes the scheme to sqlserver://, which is the form the
// driver accepts.
func dsnFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid database URL: %w", err)
	}
	u.Scheme = "sqlserver"
	return u.String(), nil
}

// TypeTable maps SQL Server system type names to Go types.
func (*Backend) TypeTable() map[string]string {
	return map[string]string{
		"bit":              "bool",
		"tinyint":          "uint8",
		"smallint":         "int16",
		"int":              "int32",
		"bigint":           "int64",
		"real":             "float32",
		"float":            "float64",
		"decimal":          "string",
		"numeric":          "string",
		"money":            "string",
		"smallmoney":       "string",
		"char":             "string",
		"varchar":          "string",
		"text":             "string",
		"nchar":            "string",
		"nvarchar":         "string",
		"ntext":            "string",
		"sysname":          "string",
		"xml":              "string",
		"uniqueidentifier": "string",
		"binary":           "[]byte",
		"varbinary":        "[]byte",
		"image":            "[]byte",
		"rowversion":       "[]byte",
		"timestamp":        "[]byte",
		"date":             "time.Time",
		"time":             "time.Time",
		"smalldatetime":    "time.Time",
		"datetime":         "time.Time",
		"datetime2":        "time.Time",
		"datetimeoffset":   "time.Time",
	}
}
