package input

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Manifest is the parsed querybind.yaml: the set of query declarations plus
// where and under which package name generated code lands.
type Manifest struct {
	Package string
	Output  string
	Queries []RawQuery
}

// RawQuery is one declaration before resolution, keys still unvalidated.
type RawQuery struct {
	Name string
	Keys map[string]any
}

type manifestDoc struct {
	Package string                    `yaml:"package"`
	Output  string                    `yaml:"output"`
	Queries map[string]map[string]any `yaml:"queries"`
}

// LoadManifest reads and parses a manifest file. Query order is by name so
// repeated runs generate identical output.
func LoadManifest(fs afero.Fs, path string) (*Manifest, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	var doc manifestDoc
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}

	if len(doc.Queries) == 0 {
		return nil, fmt.Errorf("manifest %s declares no queries", path)
	}

	m := &Manifest{
		Package: doc.Package,
		Output:  doc.Output,
	}
	if m.Package == "" {
		m.Package = "queries"
	}
	if m.Output == "" {
		m.Output = "queries.gen.go"
	}

	names := make([]string, 0, len(doc.Queries))
	for name := range doc.Queries {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		m.Queries = append(m.Queries, RawQuery{Name: name, Keys: doc.Queries[name]})
	}
	return m, nil
}
