// Package pipeline runs the query-description pipeline for one declared
// query: resolve input, describe it against a live database or replay the
// offline snapshot, map types, and assemble the binding plan.
package pipeline

import (
	"context"
	"fmt"

	"github.com/spf13/afero"

	"github.com/querybind/querybind/bind"
	"github.com/querybind/querybind/describe"
	"github.com/querybind/querybind/offline"
	"github.com/querybind/querybind/query/input"
	"github.com/querybind/querybind/typemap"
)

// Config carries everything the pipeline needs from the outside world. All
// environment coupling happens at the CLI boundary that builds it; nothing
// below this point reads the environment.
type Config struct {
	// DatabaseURL selects the live path when set. Empty means offline.
	DatabaseURL string
	// BuildRoot anchors file-based query sources and cache files.
	BuildRoot string
	// PersistQueries writes a cache entry after each successful live
	// describe so `querybind prepare` can build the offline snapshot.
	PersistQueries bool

	Fs afero.Fs
}

func (c Config) fs() afero.Fs {
	if c.Fs != nil {
		return c.Fs
	}
	return afero.NewOsFs()
}

// Expand processes one query end to end and returns its binding plan.
// Each invocation is independent: one connection, no shared state beyond
// the cache files.
func Expand(ctx context.Context, cfg Config, in *input.QueryInput) (*bind.Plan, error) {
	if cfg.DatabaseURL != "" {
		return expandLive(ctx, cfg, in)
	}
	return expandOffline(cfg, in)
}

func expandLive(ctx context.Context, cfg Config, in *input.QueryInput) (*bind.Plan, error) {
	backend, err := describe.ForURL(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	desc, err := backend.Describe(ctx, cfg.DatabaseURL, in.SourceText)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", in.Name, err)
	}

	if cfg.PersistQueries {
		store, err := offline.NewStore(cfg.fs(), cfg.BuildRoot)
		if err != nil {
			return nil, err
		}
		if err := store.Save(offline.NewEntry(backend.Tag(), in.SourceText, desc)); err != nil {
			return nil, err
		}
	}

	return assemble(in, desc, backend.TypeTable())
}

func expandOffline(cfg Config, in *input.QueryInput) (*bind.Plan, error) {
	store, err := offline.NewStore(cfg.fs(), cfg.BuildRoot)
	if err != nil {
		return nil, err
	}

	snap, err := store.Load()
	if err != nil {
		return nil, err
	}

	entry, err := snap.Lookup(in.SourceText)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", in.Name, err)
	}

	// The cached entry is only trusted once its backend tag resolves to a
	// backend present in this build.
	backend, err := describe.ForTag(entry.BackendTag)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", in.Name, err)
	}

	return assemble(in, &entry.Description, backend.TypeTable())
}

// assemble runs the ordered tail of the pipeline. The argument-count
// invariant is enforced before any type mapping happens.
func assemble(in *input.QueryInput, desc *describe.Description, table map[string]string) (*bind.Plan, error) {
	if err := bind.ValidateArgs(in, desc); err != nil {
		return nil, err
	}

	hosts, err := typemap.Resolve(in, desc, table)
	if err != nil {
		return nil, err
	}
	params, err := typemap.ResolveParams(in, desc, table)
	if err != nil {
		return nil, err
	}

	return bind.Assemble(in, desc, hosts, params)
}
