// Package input resolves declared queries into the normalized form the
// binding pipeline consumes: one source string, an output shape, and the
// declared arguments.
package input

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// Shape selects how a query's result columns become a Go type.
type Shape int

const (
	// GeneratedRecord synthesizes a new record type from the columns.
	GeneratedRecord Shape = iota
	// ExistingType binds the columns to a caller-supplied type.
	ExistingType
	// Scalar binds a single-column result to one value.
	Scalar
)

func (s Shape) String() string {
	switch s {
	case GeneratedRecord:
		return "generated record"
	case ExistingType:
		return "existing type"
	case Scalar:
		return "scalar"
	}
	return fmt.Sprintf("shape(%d)", int(s))
}

// QueryInput is one fully resolved query declaration. Immutable once
// resolved.
type QueryInput struct {
	// Name is the declaration name, used for generated identifiers.
	Name string
	// SourceText is the SQL, with file references already read.
	SourceText string
	// SourceFile is the file the SQL came from, empty for inline sources.
	// Kept for diagnostics only.
	SourceFile string

	Shape Shape
	// RecordType is the caller-supplied type name when Shape is ExistingType.
	RecordType string
	// ScalarType is an explicitly requested Go type for Scalar shape.
	ScalarType string

	// ArgNames are the declared argument names, in placeholder order.
	ArgNames []string
	// Overrides force a column's Go type, keyed by column name or 1-based
	// position.
	Overrides map[string]string
	// Checked reports whether type mismatches downstream are hard errors
	// rather than best-effort casts.
	Checked bool
}

// ArgCount returns the number of declared arguments.
func (q *QueryInput) ArgCount() int { return len(q.ArgNames) }

// Resolver turns raw query declarations into QueryInputs. BuildRoot anchors
// file-based sources and is required only for them; it comes in from the
// configuration boundary, never from the environment here.
type Resolver struct {
	Fs        afero.Fs
	BuildRoot string
}

// Resolve validates one raw declaration. Every key is checked against the
// known set so a typo fails naming the offending key.
func (r *Resolver) Resolve(name string, raw map[string]any) (*QueryInput, error) {
	q := &QueryInput{Name: name, Checked: true}

	var (
		source     string
		hasSource  bool
		sourceFile string
	)

	for key, value := range raw {
		switch key {
		case "source":
			s, err := sourceString(value)
			if err != nil {
				return nil, fmt.Errorf("query %q: %w", name, err)
			}
			source = s
			hasSource = true
		case "source_file":
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("query %q: source_file must be a string", name)
			}
			sourceFile = s
		case "record":
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("query %q: record must be a type name", name)
			}
			q.Shape = ExistingType
			q.RecordType = s
		case "scalar":
			b, ok := value.(bool)
			if !ok {
				return nil, fmt.Errorf("query %q: scalar must be a boolean", name)
			}
			if b {
				q.Shape = Scalar
			}
		case "type":
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("query %q: type must be a type name", name)
			}
			q.ScalarType = s
		case "checked":
			b, ok := value.(bool)
			if !ok {
				return nil, fmt.Errorf("query %q: checked must be a boolean", name)
			}
			q.Checked = b
		case "args":
			names, err := stringList(value)
			if err != nil {
				return nil, fmt.Errorf("query %q: args must be a list of names", name)
			}
			q.ArgNames = names
		case "overrides":
			overrides, err := stringMap(value)
			if err != nil {
				return nil, fmt.Errorf("query %q: overrides must map columns to type names", name)
			}
			q.Overrides = overrides
		default:
			return nil, fmt.Errorf("query %q: unexpected input key: %s", name, key)
		}
	}

	if q.RecordType != "" && q.Shape == Scalar {
		return nil, fmt.Errorf("query %q: record and scalar are mutually exclusive", name)
	}
	if q.ScalarType != "" && q.Shape != Scalar {
		return nil, fmt.Errorf("query %q: type is only valid together with scalar", name)
	}

	switch {
	case hasSource && sourceFile != "":
		return nil, fmt.Errorf("query %q: source and source_file are mutually exclusive", name)
	case hasSource:
		q.SourceText = source
	case sourceFile != "":
		text, err := r.readFileSource(sourceFile)
		if err != nil {
			return nil, fmt.Errorf("query %q: %w", name, err)
		}
		q.SourceText = text
		q.SourceFile = sourceFile
	default:
		return nil, fmt.Errorf("query %q: %w", name, ErrNoSource)
	}

	return q, nil
}

// readFileSource applies the file path policy: no absolute paths, no bare
// filenames, everything anchored at the build root.
func (r *Resolver) readFileSource(path string) (string, error) {
	if filepath.IsAbs(path) {
		return "", fmt.Errorf("%w: %s", ErrAbsolutePath, path)
	}
	if filepath.Dir(path) == "." {
		return "", fmt.Errorf("%w: %s", ErrBarePath, path)
	}
	if r.BuildRoot == "" {
		return "", ErrNoBuildRoot
	}

	full := filepath.Join(r.BuildRoot, path)
	data, err := afero.ReadFile(r.Fs, full)
	if err != nil {
		return "", fmt.Errorf("failed to read query file at %s: %w", full, err)
	}
	return string(data), nil
}

// sourceString accepts a single string or a list of strings, concatenated in
// order.
func sourceString(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []any:
		var out string
		for _, part := range v {
			s, ok := part.(string)
			if !ok {
				return "", fmt.Errorf("source parts must be strings")
			}
			out += s
		}
		return out, nil
	}
	return "", fmt.Errorf("source must be a string or a list of strings")
}

func stringList(value any) ([]string, error) {
	items, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("not a list")
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("not a list of strings")
		}
		out = append(out, s)
	}
	return out, nil
}

func stringMap(value any) (map[string]string, error) {
	items, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("not a map")
	}
	out := make(map[string]string, len(items))
	for key, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("not a map of strings")
		}
		out[key] = s
	}
	return out, nil
}
