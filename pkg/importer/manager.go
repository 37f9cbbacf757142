package importer

import (
	"github.com/resolvectx/resloc/internal/errutil"
	"github.com/resolvectx/resloc/pkg/builder"
)

// Detail is one importer call's disposition of the item it was handed.
type Detail string

const (
	Consumed  Detail = "consumed"
	Processed Detail = "processed"
	Skipped   Detail = "skipped"
	Failed    Detail = "failed"
)

// Result is what an Importer.Import call returns: zero or more further
// Importables to push onto the scheduler's stack, and how it disposed of
// the input item.
type Result struct {
	Produced []Importable
	Detail   Detail
}

// Importer is one stage of the pipeline: it declares which Kinds it
// handles and attempts to import a matching item.
type Importer interface {
	Handles(k Kind) bool
	Import(item Importable, b *builder.Builder) (Result, error)
}

// Manager is the work-stack scheduler: it drives a
// chain of Importers over a LIFO stack of Importables, aggregating every
// failure rather than aborting on the first.
type Manager struct {
	importers []Importer
}

// NewManager builds a Manager over importers, tried in the given order for
// each item.
func NewManager(importers ...Importer) *Manager {
	return &Manager{importers: importers}
}

// DefaultPipeline returns the canonical pipeline order:
// PathImporter -> FsItemImporter -> JsonImporter -> CollectionImporter.
func DefaultPipeline(path *PathImporter, fsItem *FsItemImporter) *Manager {
	return NewManager(path, fsItem, &JSONImporter{}, &CollectionImporter{})
}

// BrowserSafePipeline is the filesystem-free subset
// for embeddings with no filesystem access: JsonImporter + CollectionImporter.
func BrowserSafePipeline() *Manager {
	return NewManager(&JSONImporter{}, &CollectionImporter{})
}

// Import pushes initial onto the stack and drains it: for each popped
// item, every importer that Handles its Kind is tried in order. A
// "consumed" result stops trying further importers on that item;
// "processed" and "skipped" continue to the next importer; "failed"
// accumulates the error and abandons the item (the scheduler moves on to
// the next stack entry). Produced items are pushed for "consumed" and
// "processed" results. Import returns the aggregated error, nil if every
// item was handled without failure.
func (m *Manager) Import(initial Importable, b *builder.Builder) error {
	stack := []Importable{initial}
	var agg errutil.Aggregator

	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, imp := range m.importers {
			if !imp.Handles(item.Kind()) {
				continue
			}
			res, err := imp.Import(item, b)
			if err != nil {
				agg.Add(err)
				break
			}
			stack = append(stack, res.Produced...)
			if res.Detail == Consumed {
				break
			}
		}
	}

	return agg.Err()
}
