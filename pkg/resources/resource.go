package resources

import (
	"encoding/json"
	"fmt"

	"github.com/resolvectx/resloc/pkg/ids"
)

// Candidate pairs a condition-set position with the value that wins when
// that position's condition set is the highest-ranked match, the merge
// method governing how it overlays a lower-priority partial's result, and
// whether it stands alone (full) or must be applied over a full base
// (partial).
type Candidate struct {
	ConditionSetIndex ids.ConditionSetIndex
	InstanceValue     json.RawMessage
	MergeMethod       MergeMethod
	Completeness      CandidateCompleteness
}

// IsPartial reports whether the candidate is partial.
func (c Candidate) IsPartial() bool { return c.Completeness == Partial }

// Validate checks internal consistency: a full candidate may not carry the
// delete merge method (there is nothing for "delete" to operate over when
// standing alone), and MergeMethod/Completeness must be one of the defined
// enumerators.
func (c Candidate) Validate() error {
	if !IsValidMergeMethod(c.MergeMethod) {
		return fmt.Errorf("%s: not a valid merge method", c.MergeMethod)
	}
	if c.Completeness != Full && c.Completeness != Partial {
		return fmt.Errorf("%s: not a valid candidate completeness", c.Completeness)
	}
	if c.Completeness == Full && c.MergeMethod == MergeDelete {
		return fmt.Errorf("a full candidate cannot use the delete merge method")
	}
	return nil
}

// Resource is a named, typed declaration: a DecisionIndex
// selects which of its Candidates apply for a given context, and Path
// locates it within the owning resource tree when the tree is non-flat.
type Resource struct {
	Path          *ids.ResourceId
	Name          ids.ResourceName
	TypeIndex     ids.ResourceTypeIndex
	DecisionIndex ids.DecisionIndex

	// Candidates is index-aligned with the referenced Decision's
	// condition sets: Candidates[i] is the candidate whose conditions are
	// decision.ConditionSets()[i].
	Candidates []Candidate
}

// NewResource builds a Resource, validating that every candidate is
// internally consistent.
func NewResource(name ids.ResourceName, typeIdx ids.ResourceTypeIndex, decisionIdx ids.DecisionIndex, candidates []Candidate) (*Resource, error) {
	for i, c := range candidates {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("candidate %d: %w", i, err)
		}
	}
	return &Resource{
		Name:          name,
		TypeIndex:     typeIdx,
		DecisionIndex: decisionIdx,
		Candidates:    append([]Candidate(nil), candidates...),
	}, nil
}

// WithPath returns a copy of r with Path set.
func (r *Resource) WithPath(path ids.ResourceId) *Resource {
	cp := *r
	cp.Path = &path
	return &cp
}

// CandidateAt returns the candidate for condition-set position i, or false
// if i is out of range.
func (r *Resource) CandidateAt(i int) (Candidate, bool) {
	if i < 0 || i >= len(r.Candidates) {
		return Candidate{}, false
	}
	return r.Candidates[i], true
}
