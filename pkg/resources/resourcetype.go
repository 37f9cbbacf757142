// Package resources implements the resource model and resource-type
// contract: resource declarations, candidates, merge methods,
// and the canonical "json" resource type.
package resources

import (
	"encoding/json"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/resolvectx/resloc/pkg/ids"
)

// MergeMethod dictates how a partial candidate overlays the accumulating
// value during resolution.
type MergeMethod string

const (
	MergeAugment MergeMethod = "augment"
	MergeDelete  MergeMethod = "delete"
	MergeReplace MergeMethod = "replace"
)

// IsValidMergeMethod reports whether m is one of the three defined methods.
func IsValidMergeMethod(m MergeMethod) bool {
	switch m {
	case MergeAugment, MergeDelete, MergeReplace:
		return true
	}
	return false
}

// CandidateCompleteness says whether a candidate's value stands alone
// ("full") or must be overlaid on a full base ("partial").
type CandidateCompleteness string

const (
	Full    CandidateCompleteness = "full"
	Partial CandidateCompleteness = "partial"
)

// ResourceType declares how instance values are validated and merged for
// one family of resources.
type ResourceType interface {
	Name() ids.ResourceTypeName
	ValidateInstanceValue(v json.RawMessage) error
	MergeValues(older, newer json.RawMessage, method MergeMethod) (json.RawMessage, error)
	// Schema returns the canonical JSON schema for this resource type's
	// instance values, or nil if the type imposes no schema beyond "valid
	// JSON".
	Schema() json.RawMessage
}

// JSONResourceType is the canonical, JSON-valued resource type:
// instance values are arbitrary JSON, merged with RFC 7396 JSON Merge
// Patch semantics (github.com/evanphx/json-patch/v5) for "augment", plain
// replacement for "replace", and a null-keyed merge patch for "delete".
type JSONResourceType struct {
	name   ids.ResourceTypeName
	schema json.RawMessage
}

// NewJSONResourceType builds the canonical json resource type. schema may
// be nil.
func NewJSONResourceType(name ids.ResourceTypeName, schema json.RawMessage) *JSONResourceType {
	return &JSONResourceType{name: name, schema: schema}
}

func (t *JSONResourceType) Name() ids.ResourceTypeName { return t.name }
func (t *JSONResourceType) Schema() json.RawMessage    { return t.schema }

// ValidateInstanceValue only requires v to be syntactically valid JSON;
// schema-shaped validation is left to a caller that wants to enforce
// t.Schema() with a dedicated validator, which is out of this type's
// contract.
func (t *JSONResourceType) ValidateInstanceValue(v json.RawMessage) error {
	if !json.Valid(v) {
		return fmt.Errorf("not valid JSON")
	}
	return nil
}

// MergeValues implements the three merge methods.
func (t *JSONResourceType) MergeValues(older, newer json.RawMessage, method MergeMethod) (json.RawMessage, error) {
	switch method {
	case MergeReplace:
		return newer, nil
	case MergeAugment:
		return mergePatch(older, newer)
	case MergeDelete:
		return applyDelete(older, newer)
	default:
		return nil, fmt.Errorf("%s: not a valid merge method", method)
	}
}

// mergePatch applies newer as an RFC 7396 merge patch over older. A null
// at any key in newer removes that key from the result - the augment+null
// surrogate for "delete";
// implementations must accept it even when the canonical "delete" method
// is also supported, so this same helper backs both.
func mergePatch(older, newer json.RawMessage) (json.RawMessage, error) {
	if len(older) == 0 {
		return newer, nil
	}
	if len(newer) == 0 {
		return older, nil
	}
	out, err := jsonpatch.MergePatch(older, newer)
	if err != nil {
		return nil, fmt.Errorf("merging candidate values: %w", err)
	}
	return out, nil
}

// applyDelete treats newer as an object naming the keys to remove (values
// are ignored); every named key is nulled out and the result merge-patched
// over older, which is RFC 7396's standard way of expressing a deletion.
// A non-object newer, or an empty one, is a no-op over older.
func applyDelete(older, newer json.RawMessage) (json.RawMessage, error) {
	if len(older) == 0 {
		return json.RawMessage("null"), nil
	}
	if len(newer) == 0 {
		return older, nil
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(newer, &keys); err != nil {
		// Not an object naming keys to delete: nothing to do.
		return older, nil
	}
	nulled := make(map[string]json.RawMessage, len(keys))
	for k := range keys {
		nulled[k] = json.RawMessage("null")
	}
	patch, err := json.Marshal(nulled)
	if err != nil {
		return nil, fmt.Errorf("building delete patch: %w", err)
	}
	return mergePatch(older, patch)
}

// Registry is a small name->ResourceType lookup, sealed after
// configuration, mirroring pkg/qualtypes.Registry.
type Registry struct {
	types    []ResourceType
	byName   map[ids.ResourceTypeName]ids.ResourceTypeIndex
	sealed   bool
}

// NewRegistry creates an empty, mutable resource-type registry.
func NewRegistry() *Registry {
	return &Registry{byName: map[ids.ResourceTypeName]ids.ResourceTypeIndex{}}
}

// Add registers rt, idempotent by name.
func (r *Registry) Add(rt ResourceType) (ids.ResourceTypeIndex, error) {
	if r.sealed {
		return 0, fmt.Errorf("%s: resource type registry is sealed", rt.Name())
	}
	if idx, ok := r.byName[rt.Name()]; ok {
		return idx, nil
	}
	idx := ids.ResourceTypeIndex(len(r.types))
	r.types = append(r.types, rt)
	r.byName[rt.Name()] = idx
	return idx, nil
}

// Seal freezes the registry.
func (r *Registry) Seal() { r.sealed = true }

// NumResourceTypes returns the number of interned resource types.
func (r *Registry) NumResourceTypes() int { return len(r.types) }

// ByIndex returns the ResourceType at idx.
func (r *Registry) ByIndex(idx ids.ResourceTypeIndex) (ResourceType, error) {
	if int(idx) < 0 || int(idx) >= len(r.types) {
		return nil, fmt.Errorf("%d: resource type index not found", idx)
	}
	return r.types[idx], nil
}

// ByName looks up a resource type by name.
func (r *Registry) ByName(name ids.ResourceTypeName) (ids.ResourceTypeIndex, ResourceType, error) {
	idx, ok := r.byName[name]
	if !ok {
		return 0, nil, fmt.Errorf("%s: resource type not found", name)
	}
	return idx, r.types[idx], nil
}
