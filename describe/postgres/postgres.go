// Package postgres implements the describe backend for PostgreSQL using the
// extended protocol's Parse/Describe round trip, which resolves parameter
// and column metadata without ever executing the statement.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/querybind/querybind/describe"
)

func init() {
	describe.Register(&Backend{})
}

// Backend describes queries against PostgreSQL.
type Backend struct{}

func (*Backend) Tag() string { return "postgres" }

func (*Backend) Schemes() []string { return []string{"postgres", "postgresql"} }

// Describe prepares the statement on a fresh connection and reads the
// resulting statement description. Nullability is resolved per column from
// pg_attribute when the column traces back to a table; computed columns
// stay undetermined.
func (b *Backend) Describe(ctx context.Context, url string, query string) (*describe.Description, error) {
	conn, err := pgx.Connect(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer conn.Close(ctx)

	sd, err := conn.Prepare(ctx, "querybind_describe", query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", describe.ErrDescribeFailed, err)
	}

	desc := &describe.Description{BackendTag: b.Tag()}

	for _, oid := range sd.ParamOIDs {
		desc.Parameters = append(desc.Parameters, describe.Parameter{
			NativeType: b.typeName(conn, oid),
		})
	}

	for _, field := range sd.Fields {
		col := describe.Column{
			Name:       field.Name,
			NativeType: b.typeName(conn, field.DataTypeOID),
		}
		if field.TableOID != 0 {
			notNull, err := columnNotNull(ctx, conn, field.TableOID, field.TableAttributeNumber)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve nullability of column %q: %w", field.Name, err)
			}
			if notNull != nil {
				col.Nullable = describe.Bool(!*notNull)
			}
		}
		desc.Columns = append(desc.Columns, col)
	}

	return desc, nil
}

// typeName resolves a type OID to its catalog name, falling back to the
// numeric OID for types the connection does not know.
func (*Backend) typeName(conn *pgx.Conn, oid uint32) string {
	if t, ok := conn.TypeMap().TypeForOID(oid); ok {
		return t.Name
	}
	return fmt.Sprintf("oid(%d)", oid)
}

// columnNotNull looks up attnotnull for a (table, attribute) pair. A nil
// result means the attribute row was not found and nullability is unknown.
func columnNotNull(ctx context.Context, conn *pgx.Conn, tableOID uint32, attnum uint16) (*bool, error) {
	const q = `SELECT attnotnull FROM pg_attribute WHERE attrelid = $1 AND attnum = $2`

	var notNull bool
	err := conn.QueryRow(ctx, q, tableOID, int16(attnum)).Scan(&notNull)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &notNull, nil
}

// TypeTable maps PostgreSQL catalog type names to Go types.
func (*Backend) TypeTable() map[string]string {
	return map[string]string{
		"bool":        "bool",
		"int2":        "int16",
		"int4":        "int32",
		"int8":        "int64",
		"float4":      "float32",
		"float8":      "float64",
		"numeric":     "string",
		"money":       "string",
		"text":        "string",
		"varchar":     "string",
		"bpchar":      "string",
		"name":        "string",
		"citext":      "string",
		"bytea":       "[]byte",
		"date":        "time.Time",
		"timestamp":   "time.Time",
		"timestamptz": "time.Time",
		"time":        "string",
		"timetz":      "string",
		"interval":    "string",
		"uuid":        "string",
		"json":        "json.RawMessage",
		"jsonb":       "json.RawMessage",
		"inet":        "string",
		"cidr":        "string",
		"macaddr":     "string",
		"oid":         "uint32",
		"xml":         "string",
	}
}
