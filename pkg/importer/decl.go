package importer

import "encoding/json"

// ResourceCollection is the JSON shape for a resource
// collection document: `{ context?, resources: [...], candidates: [...] }`.
type ResourceCollection struct {
	Context    map[string]string    `json:"context,omitempty"`
	Resources  []LooseResourceJSON  `json:"resources,omitempty"`
	Candidates []LooseCandidateJSON `json:"candidates,omitempty"`
}

// LooseResourceJSON is a loose resource declaration: an id, a resource
// type name, and one or more (conditions, value) pairs each contributing
// one full candidate. This is the common single-decision-per-conditions
// shape; a fuller `decision|conditions` union that would let a
// declaration reference an already-interned Decision directly is not
// modeled here - loose resources always derive their decision from the
// conditions they carry, which is the shape every known declaration
// actually uses.
type LooseResourceJSON struct {
	Id               string              `json:"id"`
	ResourceTypeName string              `json:"resourceTypeName"`
	Conditions       []map[string]string `json:"conditions"`
	InstanceValues   []json.RawMessage   `json:"instanceValues"`
}

// LooseCandidateJSON is a loose candidate declaration: `{ id,
// conditions: { qualifierName: value, ... }, json, mergeMethod? }`.
type LooseCandidateJSON struct {
	Id               string            `json:"id"`
	ResourceTypeName string            `json:"resourceTypeName,omitempty"`
	Conditions       map[string]string `json:"conditions"`
	JSON             json.RawMessage   `json:"json"`
	MergeMethod      string            `json:"mergeMethod,omitempty"`
	Partial          bool              `json:"partial,omitempty"`
	Priority         *int              `json:"priority,omitempty"`
}

// ResourceTreeDecl is a nested resource-tree document: raw JSON whose keys
// are resource-name segments and whose values are either further nested
// objects (branches) or leaf candidate declarations (objects carrying a
// "json" key).
type ResourceTreeDecl struct {
	Raw json.RawMessage
}

// treeLeaf is the shape a ResourceTreeDecl's terminal nodes take.
type treeLeaf struct {
	Conditions  map[string]string `json:"conditions"`
	JSON        json.RawMessage   `json:"json"`
	MergeMethod string            `json:"mergeMethod,omitempty"`
	Partial     bool              `json:"partial,omitempty"`
	Priority    *int              `json:"priority,omitempty"`
}

func isTreeLeaf(raw json.RawMessage) (treeLeaf, bool) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return treeLeaf{}, false
	}
	if _, ok := probe["json"]; !ok {
		return treeLeaf{}, false
	}
	var leaf treeLeaf
	if err := json.Unmarshal(raw, &leaf); err != nil {
		return treeLeaf{}, false
	}
	return leaf, true
}
