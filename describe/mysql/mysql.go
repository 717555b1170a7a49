// Package mysql implements the describe backend for MySQL and MariaDB over
// database/sql with the go-sql-driver driver.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"github.com/querybind/querybind/describe"
)

func init() {
	describe.Register(&Backend{})
}

// Backend describes queries against MySQL/MariaDB.
type Backend struct{}

func (*Backend) Tag() string { return "mysql" }

func (*Backend) Schemes() []string { return []string{"mysql", "mariadb"} }

// Describe prepares and probes the statement inside a transaction that is
// always rolled back, so the statement's effects never commit. The binary
// protocol does not report parameter types through database/sql, so
// parameters carry only a count, taken from the placeholder scanner.
func (b *Backend) Describe(ctx context.Context, connURL string, query string) (*describe.Description, error) {
	dsn, err := dsnFromURL(connURL)
	if err != nil {
		return nil, err
	}

	paramCount, err := describe.QuestionPlaceholders(query)
	if err != nil {
		return nil, fmt.Errorf("failed to scan placeholders: %w", err)
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", describe.ErrDescribeFailed, err)
	}
	defer stmt.Close()

	args := make([]any, paramCount)
	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", describe.ErrDescribeFailed, err)
	}
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
		col := describe.Column{
			Name:       ct.Name(),
			NativeType: ct.DatabaseTypeName(),
		}
		if nullable, ok := ct.Nullable(); ok {
			col.Nullable = describe.Bool(nullable)
		}
		desc.Columns = append(desc.Columns, col)
	}

	return desc, nil
}

// dsnFromURL converts a mysql:// connection URL into the driver's DSN form,
// user:pass@tcp(host:port)/dbname?params.
func dsnFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid database URL: %w", err)
	}

	var dsn strings.Builder
	if u.User != nil {
		dsn.WriteString(u.User.Username())
		if password, ok := u.User.Password(); ok {
			dsn.WriteString(":")
			dsn.WriteString(password)
		}
		dsn.WriteString("@")
	}

	host := u.Host
	if u.Port() == "" {
		host += ":3306"
	}
	fmt.Fprintf(&dsn, "tcp(%s)", host)

	dsn.WriteString("/")
	dsn.WriteString(strings.TrimPrefix(u.Path, "/"))

	if u.RawQuery != "" {
		dsn.WriteString("?")
		dsn.WriteString(u.RawQuery)
	}

	return dsn.String(), nil
}

// TypeTable maps the driver's DatabaseTypeName values to Go types.
func (*Backend) TypeTable() map[string]string {
	return map[string]string{
		"TINYINT":           "int8",
		"SMALLINT":          "int16",
		"MEDIUMINT":         "int32",
		"INT":               "int32",
		"BIGINT":            "int64",
		"UNSIGNED TINYINT":  "uint8",
		"UNSIGNED SMALLINT": "uint16",
		"UNSIGNED MEDIUMINT": "uint32",
		"UNSIGNED INT":      "uint32",
		"UNSIGNED BIGINT":   "uint64",
		"YEAR":              "int16",
		"FLOAT":             "float32",
		"DOUBLE":            "float64",
		"DECIMAL":           "string",
		"CHAR":              "string",
		"VARCHAR":           "string",
		"TINYTEXT":          "string",
		"TEXT":              "string",
		"MEDIUMTEXT":        "string",
		"LONGTEXT":          "string",
		"ENUM":              "string",
		"SET":               "string",
		"BINARY":            "[]byte",
		"VARBINARY":         "[]byte",
		"TINYBLOB":          "[]byte",
		"BLOB":              "[]byte",
		"MEDIUMBLOB":        "[]byte",
		"LONGBLOB":          "[]byte",
		"BIT":               "[]byte",
		"DATE":              "time.Time",
		"DATETIME":          "time.Time",
		"TIMESTAMP":         "time.Time",
		"TIME":              "string",
		"JSON":              "json.RawMessage",
	}
}
