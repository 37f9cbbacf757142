package importer

import (
	"encoding/json"
	"fmt"

	"github.com/resolvectx/resloc/pkg/builder"
)

// JSONImporter classifies raw JSON as either a resource collection or a
// nested resource tree: a resource collection document
// carries a "resources", "candidates" or "context" key at its top level; anything
// else is treated as a resource tree.
type JSONImporter struct{}

func (i *JSONImporter) Handles(k Kind) bool { return k == KindJSON }

func (i *JSONImporter) Import(item Importable, b *builder.Builder) (Result, error) {
	ji, ok := item.(JSONImportable)
	if !ok {
		return Result{}, fmt.Errorf("jsonimporter: unexpected importable type %T", item)
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(ji.JSON, &probe); err != nil {
		return Result{}, fmt.Errorf("invalid json: %w", err)
	}
	_, hasResources := probe["resources"]
	_, hasCandidates := probe["candidates"]
	_, hasContext := probe["context"]

	if hasResources || hasCandidates || hasContext {
		var coll ResourceCollection
		if err := json.Unmarshal(ji.JSON, &coll); err != nil {
			return Result{}, fmt.Errorf("invalid resource collection: %w", err)
		}
		return Result{
			Produced: []Importable{ResourceCollectionImportable{Collection: coll, Ctx: ji.Ctx}},
			Detail:   Processed,
		}, nil
	}

	return Result{
		Produced: []Importable{ResourceTreeImportable{Tree: ResourceTreeDecl{Raw: ji.JSON}, Ctx: ji.Ctx}},
		Detail:   Processed,
	}, nil
}
