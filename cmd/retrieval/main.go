// Command retrieval is the course-material retrieval CLI.
package main

import (
	"fmt"
	"os"

	"github.com/doccloud/retrieval/internal/adapters/driven/config/file"
	"github.com/doccloud/retrieval/internal/adapters/driven/embedding"
	"github.com/doccloud/retrieval/internal/adapters/driven/materials/fsdir"
	"github.com/doccloud/retrieval/internal/adapters/driven/materials/sqlite"
	"github.com/doccloud/retrieval/internal/adapters/driving/cli"
	"github.com/doccloud/retrieval/internal/core/ports/driven"
	"github.com/doccloud/retrieval/internal/core/services"
	"github.com/doccloud/retrieval/internal/logger"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := file.NewConfigStore(os.Getenv("RETRIEVAL_CONFIG_DIR"))
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	store, closeStore, err := openMaterialStore(cfg)
	if err != nil {
		return fmt.Errorf("opening material store: %w", err)
	}
	defer closeStore()

	// A missing or unreachable provider is not fatal: the engine serves
	// lexical-only bundles and marks them degraded.
	embedder, err := embedding.NewValidated(cfg)
	if err != nil {
		logger.Warn("embedding provider unavailable: %v", err)
		embedder = nil
	}
	if embedder != nil {
		defer embedder.Close()
	}

	svc := services.NewContextService(store, embedder, services.LoadParams(cfg))

	cli.SetServices(svc)
	cli.SetVersion(version)
	return cli.Execute()
}

// openMaterialStore selects the material backend from configuration.
// materials.backend is "sqlite" (default) or "dir"; "dir" reads course
// JSON files from materials.dir and reindexes on file changes.
func openMaterialStore(cfg driven.ConfigStore) (driven.MaterialStore, func(), error) {
	switch backend := cfg.GetString("materials.backend"); backend {
	case "", "sqlite":
		store, err := sqlite.NewMaterialStore(cfg.GetString("materials.data_dir"))
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	case "dir":
		store, err := fsdir.NewMaterialStore(cfg.GetString("materials.dir"))
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown materials backend %q", backend)
	}
}
