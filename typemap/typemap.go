// Package typemap converts native column and parameter types into Go type
// names, applying nullability inference and user overrides.
package typemap

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/querybind/querybind/describe"
	"github.com/querybind/querybind/query/input"
)

// HostType is the mapped Go type for one column. GoType is final, pointer
// wrapping already applied.
type HostType struct {
	GoType     string
	Nullable   bool
	Overridden bool
}

// Resolve maps every column of a description through the backend's type
// table.
//
// Nullability policy: when the backend reports nullability the report wins;
// when it cannot, the column is assumed nullable. That is a conservative
// default, not a protocol guarantee — backends differ in how reliably they
// report nullability, and this package never tightens the assumption.
func Resolve(in *input.QueryInput, desc *describe.Description, table map[string]string) ([]HostType, error) {
	if len(in.Overrides) > 0 && in.Shape == input.GeneratedRecord {
		return nil, fmt.Errorf("query %q: columns may not have type overrides when the record type is generated", in.Name)
	}
	if err := checkOverrides(in, desc.Columns); err != nil {
		return nil, err
	}

	hosts := make([]HostType, 0, len(desc.Columns))
	for i, col := range desc.Columns {
		if goType, ok := override(in.Overrides, col.Name, i); ok {
			// The user forced this type; it replaces the mapping and is
			// never pointer-wrapped.
			hosts = append(hosts, HostType{GoType: goType, Overridden: true})
			continue
		}

		goType, ok := table[col.NativeType]
		if !ok {
			return nil, fmt.Errorf("query %q: no Go type for native type %q of column %q", in.Name, col.NativeType, col.Name)
		}

		nullable := true
		if col.Nullable != nil {
			nullable = *col.Nullable
		}

		if in.Shape == input.Scalar && in.ScalarType != "" {
			if nullable && !canHoldNull(in.ScalarType) {
				return nil, fmt.Errorf("query %q: column %q may be null but the requested type %s cannot represent null", in.Name, col.Name, in.ScalarType)
			}
			hosts = append(hosts, HostType{GoType: in.ScalarType, Nullable: nullable})
			continue
		}

		if nullable {
			goType = wrapNullable(goType)
		}
		hosts = append(hosts, HostType{GoType: goType, Nullable: nullable})
	}
	return hosts, nil
}

// ResolveParams maps parameter native types. Backends that cannot determine
// parameter types report them untyped, which maps to any.
func ResolveParams(in *input.QueryInput, desc *describe.Description, table map[string]string) ([]string, error) {
	params := make([]string, 0, len(desc.Parameters))
	for i, p := range desc.Parameters {
		if p.NativeType == "" {
			params = append(params, "any")
			continue
		}
		goType, ok := table[p.NativeType]
		if !ok {
			return nil, fmt.Errorf("query %q: no Go type for native type %q of parameter %d", in.Name, p.NativeType, i+1)
		}
		params = append(params, goType)
	}
	return params, nil
}

// override looks up a column's forced type by name first, then by 1-based
// position.
func override(overrides map[string]string, name string, index int) (string, bool) {
	if goType, ok := overrides[name]; ok {
		return goType, true
	}
	goType, ok := overrides[strconv.Itoa(index+1)]
	return goType, ok
}

// checkOverrides rejects overrides that name no column at all, so a typo in
// the manifest does not silently do nothing.
func checkOverrides(in *input.QueryInput, cols []describe.Column) error {
	for key := range in.Overrides {
		if n, err := strconv.Atoi(key); err == nil {
			if n < 1 || n > len(cols) {
				return fmt.Errorf("query %q: type override for position %d but the query has %d columns", in.Name, n, len(cols))
			}
			continue
		}
		found := false
		for _, col := range cols {
			if col.Name == key {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("query %q: type override names unknown column %q", in.Name, key)
		}
	}
	return nil
}

// wrapNullable makes a Go type capable of holding NULL. Reference types can
// already be nil and are left alone.
func wrapNullable(goType string) string {
	if canHoldNull(goType) {
		return goType
	}
	return "*" + goType
}

func canHoldNull(goType string) bool {
	switch {
	case strings.HasPrefix(goType, "*"),
		strings.HasPrefix(goType, "[]"),
		goType == "json.RawMessage",
		goType == "any",
		goType == "interface{}":
		return true
	}
	return false
}
