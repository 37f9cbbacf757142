package importer

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"sigs.k8s.io/yaml"

	"github.com/resolvectx/resloc/pkg/builder"
	"github.com/resolvectx/resloc/pkg/ids"
	"github.com/resolvectx/resloc/pkg/resources"
)

// FsItemImporter resolves a FileTreeItem: directories are listed and
// re-pushed as one FsItemImportable per child (depth-first via the
// scheduler's LIFO stack); JSON and YAML files are read and, by default,
// registered as a single loose candidate for the resource their stripped
// basename names, under the conditions their filename encodes. A file
// shaped like a resource collection is instead handed to JSONImporter,
// scoped under this file's own resource id; any other JSON content,
// including a nested tree document, becomes that one resource's value.
// Any other file is skipped.
type FsItemImporter struct {
	FS fs.FS

	// ResolveBareValue looks up the qualifier a bare (unqualified)
	// filename condition token belongs to, by checking which qualifier's
	// type accepts it as a condition value. Builder.QualTypes() supplies
	// the registry callers typically wire in here.
	ResolveBareValue func(value string) (qualifier string, ok bool)
}

func (i *FsItemImporter) Handles(k Kind) bool { return k == KindFsItem }

func (i *FsItemImporter) Import(item Importable, b *builder.Builder) (Result, error) {
	fi, ok := item.(FsItemImportable)
	if !ok {
		return Result{}, fmt.Errorf("fsitemimporter: unexpected importable type %T", item)
	}

	if fi.Item.IsDir {
		return i.importDir(fi)
	}
	return i.importFile(fi)
}

func (i *FsItemImporter) importDir(fi FsItemImportable) (Result, error) {
	entries, err := fs.ReadDir(i.FS, fi.Item.Path)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", fi.Item.Path, err)
	}
	sort.Slice(entries, func(a, b int) bool { return entries[a].Name() < entries[b].Name() })

	produced := make([]Importable, 0, len(entries))
	for _, e := range entries {
		produced = append(produced, FsItemImportable{
			Item: FileTreeItem{
				Path:  path.Join(fi.Item.Path, e.Name()),
				Name:  e.Name(),
				IsDir: e.IsDir(),
			},
			Ctx: fi.Ctx,
		})
	}
	return Result{Produced: produced, Detail: Processed}, nil
}

// importFile reads a .json, .yaml, or .yml file and decides, from its
// shape, whether it names a resource collection document (top-level
// "resources", "candidates" or "context" key - dispatched to JSONImporter,
// scoped under this file's own resource id as BaseId) or is itself one
// resource's instance value (the common case: the file's stripped,
// condition-free basename names the resource directly, and the file's
// filename-encoded conditions, if any, select the condition set its value
// applies under). YAML files are converted to JSON via yaml.YAMLToJSON
// before any further processing, so everything downstream of this point
// only ever sees JSON.
//
// A conditioned candidate is given a higher decision-ordering priority
// than an unconditioned one for the same resource, so it outranks the
// default on a score tie the way the resolver's decision-order tiebreak
// requires (mirrors the resolver's partial-augments-full scenario).
func (i *FsItemImporter) importFile(fi FsItemImportable) (Result, error) {
	ext := path.Ext(fi.Item.Name)
	isYAML := ext == ".yaml" || ext == ".yml"
	if ext != ".json" && !isYAML {
		return Result{Detail: Skipped}, nil
	}

	parsed, err := parseFilenameConditions(fi.Item.Name, i.ResolveBareValue)
	if err != nil {
		return Result{}, err
	}

	raw, err := fs.ReadFile(i.FS, fi.Item.Path)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", fi.Item.Path, err)
	}
	if isYAML {
		raw, err = yaml.YAMLToJSON(raw)
		if err != nil {
			return Result{}, fmt.Errorf("%s: %w", fi.Item.Path, err)
		}
	}
	if !json.Valid(raw) {
		return Result{}, fmt.Errorf("%s: not valid json", fi.Item.Path)
	}

	leafName := strings.TrimSuffix(parsed.BaseName, ext)
	leaf, err := ids.ToResourceName(leafName)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", fi.Item.Path, err)
	}

	var probe map[string]json.RawMessage
	collectionShaped := json.Unmarshal(raw, &probe) == nil &&
		(probe["resources"] != nil || probe["candidates"] != nil || probe["context"] != nil)

	if collectionShaped {
		nestedCtx, err := fi.Ctx.WithBaseId(leaf)
		if err != nil {
			return Result{}, fmt.Errorf("%s: %w", fi.Item.Path, err)
		}
		nestedCtx = nestedCtx.WithConditions(parsed.Conditions)
		return Result{
			Produced: []Importable{JSONImportable{JSON: raw, Ctx: nestedCtx}},
			Detail:   Processed,
		}, nil
	}

	cond := make(map[string]string, len(parsed.Conditions))
	for _, d := range parsed.Conditions {
		cond[string(d.QualifierName)] = d.Value
	}

	var priority *int
	if len(parsed.Conditions) > 0 {
		p := int(ids.DefaultConditionPriority) + 10*len(parsed.Conditions)
		priority = &p
	}

	collection := ResourceCollectionImportable{
		Collection: ResourceCollection{
			Candidates: []LooseCandidateJSON{{
				Id:          string(leaf),
				Conditions:  cond,
				JSON:        raw,
				MergeMethod: string(resources.MergeAugment),
				Priority:    priority,
			}},
		},
		Ctx: fi.Ctx,
	}
	return Result{Produced: []Importable{collection}, Detail: Processed}, nil
}
