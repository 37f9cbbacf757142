package main

import (
	"fmt"
	"os"

	"github.com/go-logr/logr"

	"github.com/resolvectx/resloc/internal/config"
	"github.com/resolvectx/resloc/pkg/builder"
	"github.com/resolvectx/resloc/pkg/importer"
)

// loadSnapshot reads the registry config at configPath, imports every
// resource declared under sourceDir, and seals the result.
func loadSnapshot(log logr.Logger, configPath, sourceDir string) (*builder.Snapshot, error) {
	raw, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading registry config: %w", err)
	}
	spec, err := config.ParseRegistrySpec(raw)
	if err != nil {
		return nil, err
	}
	qualTypes, resTypes, err := config.BuildRegistries(spec)
	if err != nil {
		return nil, fmt.Errorf("building registries: %w", err)
	}

	b := builder.New(qualTypes, resTypes)

	fsys := os.DirFS(sourceDir)

	pathImp := &importer.PathImporter{FS: fsys, IgnoredExtensions: map[string]bool{}}
	fsItemImp := &importer.FsItemImporter{FS: fsys, ResolveBareValue: bareValueResolver(qualTypes)}
	mgr := importer.DefaultPipeline(pathImp, fsItemImp)

	initial := importer.PathImportable{Path: "."}
	log.Info("importing", "sourceDir", sourceDir)
	if err := mgr.Import(initial, b); err != nil {
		return nil, fmt.Errorf("importing %s: %w", sourceDir, err)
	}

	snap, err := b.Seal()
	if err != nil {
		return nil, fmt.Errorf("sealing: %w", err)
	}
	log.Info("sealed", "stats", snap.Stats())
	return snap, nil
}
