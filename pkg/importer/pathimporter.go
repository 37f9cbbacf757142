package importer

import (
	"fmt"
	"io/fs"
	"path"

	"github.com/resolvectx/resloc/pkg/builder"
)

// PathImporter resolves a filesystem path to a FileTreeItem via fs.Stat,
// optionally filtering out paths whose extension is in IgnoredExtensions.
type PathImporter struct {
	FS                fs.FS
	IgnoredExtensions map[string]bool
}

func (i *PathImporter) Handles(k Kind) bool { return k == KindPath }

func (i *PathImporter) Import(item Importable, b *builder.Builder) (Result, error) {
	pi, ok := item.(PathImportable)
	if !ok {
		return Result{}, fmt.Errorf("pathimporter: unexpected importable type %T", item)
	}

	if ext := path.Ext(pi.Path); ext != "" && i.IgnoredExtensions[ext] {
		return Result{Detail: Skipped}, nil
	}

	info, err := fs.Stat(i.FS, pi.Path)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", pi.Path, err)
	}

	item2 := FsItemImportable{
		Item: FileTreeItem{
			Path:  pi.Path,
			Name:  path.Base(pi.Path),
			IsDir: info.IsDir(),
		},
		Ctx: pi.Ctx,
	}
	return Result{Produced: []Importable{item2}, Detail: Processed}, nil
}
