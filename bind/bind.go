// Package bind assembles the binding plan: the abstract description of the
// generated binding that the code generator consumes. It decides the
// generation strategy from the requested shape and the described columns,
// and emits no source text itself.
package bind

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/querybind/querybind/describe"
	"github.com/querybind/querybind/query/input"
	"github.com/querybind/querybind/typemap"
)

// Strategy is the generation strategy selected for one query.
type Strategy int

const (
	// Exec is the no-row binding: the query returns no columns and is
	// executed for its effect.
	Exec Strategy = iota
	// Record synthesizes a new record type, one field per column.
	Record
	// Struct binds the columns to a caller-supplied type.
	Struct
	// ScalarValue binds a single column to one value.
	ScalarValue
)

func (s Strategy) String() string {
	switch s {
	case Exec:
		return "exec"
	case Record:
		return "record"
	case Struct:
		return "struct"
	case ScalarValue:
		return "scalar"
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// Field is one ordered result field of a binding.
type Field struct {
	// Name is the Go field name; Column is the result column it came from.
	Name     string
	Column   string
	GoType   string
	Nullable bool
}

// Plan is the binding description handed to the code generator.
type Plan struct {
	QueryName string
	SQL       string
	Strategy  Strategy
	Shape     input.Shape

	// RecordName is the synthesized type name under Record strategy, or the
	// caller-supplied type under Struct.
	RecordName string

	// Fields follow the query's native column order.
	Fields []Field
	// Params are Go types for the statement parameters, in placeholder
	// order; ArgNames are the declared argument names, same order.
	Params   []string
	ArgNames []string

	Checked bool
}

// ValidateArgs enforces that the declared arguments match the statement's
// parameters. It runs before any type mapping; a mismatch is a hard error
// naming both counts.
func ValidateArgs(in *input.QueryInput, desc *describe.Description) error {
	if len(desc.Parameters) != in.ArgCount() {
		return fmt.Errorf("query %q: expected %d parameters, got %d arguments", in.Name, len(desc.Parameters), in.ArgCount())
	}
	return nil
}

// Assemble selects the generation strategy and builds the plan. hosts must
// be the mapped types for desc's columns, in order.
func Assemble(in *input.QueryInput, desc *describe.Description, hosts []typemap.HostType, params []string) (*Plan, error) {
	plan := &Plan{
		QueryName: in.Name,
		SQL:       in.SourceText,
		Shape:     in.Shape,
		Params:    params,
		ArgNames:  in.ArgNames,
		Checked:   in.Checked,
	}

	if len(desc.Columns) == 0 {
		if in.Shape != input.GeneratedRecord {
			return nil, fmt.Errorf("query %q: a typed result was requested but the query returns no columns", in.Name)
		}
		plan.Strategy = Exec
		return plan, nil
	}

	switch in.Shape {
	case input.GeneratedRecord:
		plan.Strategy = Record
		plan.RecordName = PascalCase(in.Name) + "Row"
	case input.ExistingType:
		plan.Strategy = Struct
		plan.RecordName = in.RecordType
	case input.Scalar:
		if len(desc.Columns) != 1 {
			return nil, fmt.Errorf("query %q: expected exactly one column from query, got %d", in.Name, len(desc.Columns))
		}
		plan.Strategy = ScalarValue
	}

	for i, col := range desc.Columns {
		host := hosts[i]
		if host.GoType == "" {
			return nil, fmt.Errorf("query %q: column %q has no resolved type", in.Name, col.Name)
		}
		plan.Fields = append(plan.Fields, Field{
			Name:     PascalCase(col.Name),
			Column:   col.Name,
			GoType:   host.GoType,
			Nullable: host.Nullable,
		})
	}

	return plan, nil
}

// PascalCase converts a column or query name to an exported Go identifier.
func PascalCase(name string) string {
	var b strings.Builder
	upper := true
	for _, r := range name {
		switch {
		case r == '_' || r == '-' || r == ' ' || r == '.':
			upper = true
		case upper:
			b.WriteRune(unicode.ToUpper(r))
			upper = false
		default:
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 || !unicode.IsLetter(rune(b.String()[0])) {
		return "Col" + b.String()
	}
	return b.String()
}
