// Package describe defines the database describe capability used to resolve
// query metadata at build time, and the registry of backends that provide it.
package describe

import (
	"context"
)

// Parameter describes one statement parameter, in placeholder order.
// NativeType is the backend's own type tag; it is empty when the backend
// cannot determine parameter types.
type Parameter struct {
	NativeType string `json:"native_type,omitempty"`
}

// Column describes one result column, in the query's native column order.
// Nullable is nil when the backend cannot determine nullability; the type
// mapper decides the default in that case.
type Column struct {
	Name       string `json:"name"`
	Nullable   *bool  `json:"nullable"`
	NativeType string `json:"native_type"`
}

// Description is the full metadata for one query against one backend. It is
// produced by a single prepare/describe round trip, never by executing the
// statement, and is the unit stored in the offline snapshot.
type Description struct {
	BackendTag string      `json:"backend"`
	Parameters []Parameter `json:"parameters"`
	Columns    []Column    `json:"columns"`
}

// Backend is the capability a database must provide to participate in query
// binding. Implementations live in subpackages and register themselves on
// import, the same way database/sql drivers do.
type Backend interface {
	// Tag is the canonical backend name, stored in offline snapshots.
	Tag() string

	// Schemes lists the connection URL schemes this backend answers to.
	Schemes() []string

	// Describe opens one fresh connection, resolves parameter and column
	// metadata for the statement without running its side effects, and
	// closes the connection before returning.
	Describe(ctx context.Context, url string, query string) (*Description, error)

	// TypeTable maps this backend's native type tags to Go type names.
	TypeTable() map[string]string
}

// Bool is a convenience for building Column.Nullable values.
func Bool(b bool) *bool { return &b }
