// Package generator emits Go source from binding plans. It consumes only
// the plan's shape, ordered fields, and parameter bindings; everything about
// the query itself was settled earlier in the pipeline.
package generator

import (
	"fmt"
	"go/format"
	"sort"
	"strconv"
	"strings"

	"github.com/querybind/querybind/bind"
	"github.com/querybind/querybind/internal/debug"
)

// Generate renders one Go source file containing the bindings for every
// plan, in the order given. Output is gofmt-formatted.
func Generate(packageName string, plans []*bind.Plan) ([]byte, error) {
	debug.Debug("Generating bindings", "package", packageName, "queries", len(plans))

	var body strings.Builder
	for _, plan := range plans {
		if err := emitBinding(&body, plan); err != nil {
			return nil, fmt.Errorf("failed to generate binding for %q: %w", plan.QueryName, err)
		}
	}

	var file strings.Builder
	file.WriteString("// Code generated by querybind. DO NOT EDIT.\n\n")
	fmt.Fprintf(&file, "package %s\n\n", packageName)
	emitImports(&file, plans)
	file.WriteString(body.String())

	src, err := format.Source([]byte(file.String()))
	if err != nil {
		return nil, fmt.Errorf("generated code does not parse: %w", err)
	}
	return src, nil
}

func emitImports(w *strings.Builder, plans []*bind.Plan) {
	imports := map[string]bool{
		"context":      true,
		"database/sql": true,
	}
	for _, plan := range plans {
		types := append([]string{}, plan.Params...)
		for _, f := range plan.Fields {
			types = append(types, f.GoType)
		}
		for _, t := range types {
			if strings.Contains(t, "time.Time") {
				imports["time"] = true
			}
			if strings.Contains(t, "json.RawMessage") {
				imports["encoding/json"] = true
			}
		}
	}

	paths := make([]string, 0, len(imports))
	for path := range imports {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	w.WriteString("import (\n")
	for _, path := range paths {
		fmt.Fprintf(w, "\t%q\n", path)
	}
	w.WriteString(")\n\n")
}

func emitBinding(w *strings.Builder, plan *bind.Plan) error {
	funcName := bind.PascalCase(plan.QueryName)
	constName := lowerFirst(funcName) + "SQL"

	fmt.Fprintf(w, "const %s = %s\n\n", constName, strconv.Quote(plan.SQL))

	switch plan.Strategy {
	case bind.Exec:
		emitExec(w, plan, funcName, constName)
	case bind.Record:
		emitRecordType(w, plan)
		emitRows(w, plan, funcName, constName)
	case bind.Struct:
		emitRows(w, plan, funcName, constName)
	case bind.ScalarValue:
		emitScalar(w, plan, funcName, constName)
	default:
		return fmt.Errorf("unknown strategy %s", plan.Strategy)
	}
	return nil
}

func emitRecordType(w *strings.Builder, plan *bind.Plan) {
	fmt.Fprintf(w, "// %s is one result row of the %s query.\n", plan.RecordName, plan.QueryName)
	fmt.Fprintf(w, "type %s struct {\n", plan.RecordName)
	for _, f := range plan.Fields {
		fmt.Fprintf(w, "\t%s %s\n", f.Name, f.GoType)
	}
	w.WriteString("}\n\n")
}

func emitExec(w *strings.Builder, plan *bind.Plan, funcName, constName string) {
	fmt.Fprintf(w, "// %s executes the %s query.\n", funcName, plan.QueryName)
	fmt.Fprintf(w, "func %s(ctx context.Context, db *sql.DB%s) (sql.Result, error) {\n", funcName, paramList(plan))
	fmt.Fprintf(w, "\treturn db.ExecContext(ctx, %s%s)\n", constName, argList(plan))
	w.WriteString("}\n\n")
}

func emitRows(w *strings.Builder, plan *bind.Plan, funcName, constName string) {
	fmt.Fprintf(w, "// %s runs the %s query.\n", funcName, plan.QueryName)
	fmt.Fprintf(w, "func %s(ctx context.Context, db *sql.DB%s) ([]%s, error) {\n", funcName, paramList(plan), plan.RecordName)
	fmt.Fprintf(w, "\trows, err := db.QueryContext(ctx, %s%s)\n", constName, argList(plan))
	w.WriteString("\tif err != nil {\n\t\treturn nil, err\n\t}\n")
	w.WriteString("\tdefer rows.Close()\n\n")
	fmt.Fprintf(w, "\tvar out []%s\n", plan.RecordName)
	w.WriteString("\tfor rows.Next() {\n")
	fmt.Fprintf(w, "\t\tvar row %s\n", plan.RecordName)

	targets := make([]string, 0, len(plan.Fields))
	for _, f := range plan.Fields {
		targets = append(targets, "&row."+f.Name)
	}
	fmt.Fprintf(w, "\t\tif err := rows.Scan(%s); err != nil {\n\t\t\treturn nil, err\n\t\t}\n", strings.Join(targets, ", "))
	w.WriteString("\t\tout = append(out, row)\n")
	w.WriteString("\t}\n")
	w.WriteString("\treturn out, rows.Err()\n")
	w.WriteString("}\n\n")
}

func emitScalar(w *strings.Builder, plan *bind.Plan, funcName, constName string) {
	goType := plan.Fields[0].GoType
	fmt.Fprintf(w, "// %s runs the %s query and returns its single column.\n", funcName, plan.QueryName)
	fmt.Fprintf(w, "func %s(ctx context.Context, db *sql.DB%s) (%s, error) {\n", funcName, paramList(plan), goType)
	fmt.Fprintf(w, "\tvar value %s\n", goType)
	fmt.Fprintf(w, "\terr := db.QueryRowContext(ctx, %s%s).Scan(&value)\n", constName, argList(plan))
	w.WriteString("\treturn value, err\n")
	w.WriteString("}\n\n")
}

// paramList renders the binding's arguments as Go parameters, in
// placeholder order.
func paramList(plan *bind.Plan) string {
	var b strings.Builder
	for i, name := range plan.ArgNames {
		fmt.Fprintf(&b, ", %s %s", lowerFirst(bind.PascalCase(name)), plan.Params[i])
	}
	return b.String()
}

func argList(plan *bind.Plan) string {
	var b strings.Builder
	for _, name := range plan.ArgNames {
		fmt.Fprintf(&b, ", %s", lowerFirst(bind.PascalCase(name)))
	}
	return b.String()
}

func lowerFirst(name string) string {
	if name == "" {
		return name
	}
	return strings.ToLower(name[:1]) + name[1:]
}
