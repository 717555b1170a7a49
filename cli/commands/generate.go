package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/querybind/querybind/bind"
	"github.com/querybind/querybind/cli/internal/config"
	"github.com/querybind/querybind/cli/internal/ui"
	"github.com/querybind/querybind/cli/internal/watch"
	"github.com/querybind/querybind/generator"
	"github.com/querybind/querybind/internal/debug"
	"github.com/querybind/querybind/pipeline"
	"github.com/querybind/querybind/query/input"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate typed bindings for the declared queries",
	Long: `Generate Go bindings from the queries declared in querybind.yaml.

Each query is described against DATABASE_URL when it is set; otherwise the
offline snapshot produced by 'querybind prepare' is replayed.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

var generateWatch bool

func init() {
	generateCmd.Flags().BoolVarP(&generateWatch, "watch", "w", false, "Regenerate when the manifest or query files change")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if generateWatch {
		return runGenerateWatch(cfg)
	}
	return generateOnce(cfg)
}

func generateOnce(cfg *config.Config) error {
	ui.PrintHeader("querybind", "Generate bindings")

	manifest, err := input.LoadManifest(config.AppFs, cfg.ManifestPath)
	if err != nil {
		return err
	}

	mode := "offline snapshot"
	if cfg.DatabaseURL != "" {
		mode = "live database"
	}
	ui.PrintInfo("%d queries, %s", len(manifest.Queries), mode)

	resolver := &input.Resolver{Fs: config.AppFs, BuildRoot: cfg.BuildRoot}
	pipeCfg := pipeline.Config{
		DatabaseURL:    cfg.DatabaseURL,
		BuildRoot:      cfg.BuildRoot,
		PersistQueries: cfg.PersistQueries,
		Fs:             config.AppFs,
	}

	ctx := context.Background()
	plans := make([]*bind.Plan, 0, len(manifest.Queries))
	for i, raw := range manifest.Queries {
		ui.PrintStep(i+1, len(manifest.Queries), raw.Name)

		q, err := resolver.Resolve(raw.Name, raw.Keys)
		if err != nil {
			return err
		}
		debug.Debug("Resolved query", "name", q.Name, "shape", q.Shape.String(), "args", q.ArgCount())

		plan, err := pipeline.Expand(ctx, pipeCfg, q)
		if err != nil {
			return err
		}
		plans = append(plans, plan)
	}

	src, err := generator.Generate(manifest.Package, plans)
	if err != nil {
		return err
	}

	outPath := manifest.Output
	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(filepath.Dir(cfg.ManifestPath), outPath)
	}
	if err := afero.WriteFile(config.AppFs, outPath, src, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}

	ui.PrintSuccess("Generated %d bindings in %s", len(plans), outPath)
	return nil
}

func runGenerateWatch(cfg *config.Config) error {
	files, err := watchedFiles(cfg)
	if err != nil {
		return err
	}

	watcher, err := watch.NewWatcher(files, func() error {
		if err := generateOnce(cfg); err != nil {
			ui.PrintError("%v", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	defer watcher.Stop()

	if err := watcher.Start(); err != nil {
		return err
	}
	ui.PrintInfo("Watching %d files, press Ctrl+C to stop", len(files))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	return nil
}

// watchedFiles is the manifest plus every file-based query source it names.
func watchedFiles(cfg *config.Config) ([]string, error) {
	manifest, err := input.LoadManifest(config.AppFs, cfg.ManifestPath)
	if err != nil {
		return nil, err
	}

	files := []string{cfg.ManifestPath}
	for _, raw := range manifest.Queries {
		file, ok := raw.Keys["source_file"].(string)
		if !ok || filepath.IsAbs(file) || cfg.BuildRoot == "" {
			continue
		}
		files = append(files, filepath.Join(cfg.BuildRoot, file))
	}
	return files, nil
}
