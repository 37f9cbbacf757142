package builder

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/resolvectx/resloc/internal/errutil"
	"github.com/resolvectx/resloc/pkg/conditions"
	"github.com/resolvectx/resloc/pkg/forest"
	"github.com/resolvectx/resloc/pkg/ids"
	"github.com/resolvectx/resloc/pkg/qualtypes"
	"github.com/resolvectx/resloc/pkg/resources"
)

// Snapshot is the immutable, sealed result of Builder.Seal: every interned
// table plus the compiled resource tree, ready for pkg/resolver to consume.
type Snapshot struct {
	ID string

	QualTypes *qualtypes.Registry
	ResTypes  *resources.Registry

	Conditions    []*conditions.Condition
	ConditionSets []*conditions.ConditionSet
	Decisions     []*conditions.Decision

	Tree *forest.Tree[*resources.Resource]

	resourceOrder []ids.ResourceId
}

// Seal finalizes every pending resource (deriving its Decision from the
// condition sets it referenced, ordered by the priority passed to
// AddLooseCandidate, highest first, ties kept in first-seen order), builds the resource
// tree, and freezes the underlying registries. Seal fails with
// errutil.ErrTreeShapeConflict (aggregated, one entry per offending id) if
// any resource id is declared as both a leaf and a branch prefix.
func (b *Builder) Seal() (*Snapshot, error) {
	if err := b.checkSealed(); err != nil {
		return nil, err
	}

	for _, id := range b.pendingOrder {
		pr := b.pending[id]
		ordered := append([]ids.ConditionSetIndex(nil), pr.setOrder...)
		sort.SliceStable(ordered, func(i, j int) bool {
			return pr.priority[ordered[i]] > pr.priority[ordered[j]]
		})
		decisionIdx, err := b.AddDecision(ordered)
		if err != nil {
			return nil, fmt.Errorf("%s: deriving decision: %w", id, err)
		}
		candidates := make([]resources.Candidate, len(ordered))
		for i, si := range ordered {
			candidates[i] = pr.bySet[si]
		}
		r, err := resources.NewResource(pr.name, pr.typeIndex, decisionIdx, candidates)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %v", id, errutil.ErrValidation, err)
		}
		r = r.WithPath(id)
		b.finalResources[id] = r
		b.resourceOrder = append(b.resourceOrder, id)
	}
	b.pending = nil
	b.pendingOrder = nil

	entries := make([]forest.Entry[*resources.Resource], 0, len(b.resourceOrder))
	for _, id := range b.resourceOrder {
		entries = append(entries, forest.Entry[*resources.Resource]{Id: id, Resource: b.finalResources[id]})
	}
	tree, err := forest.BuildTree(entries)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errutil.ErrTreeShapeConflict, err)
	}

	b.qualTypes.Seal()
	b.resTypes.Seal()
	b.sealed = true

	snap := &Snapshot{
		ID:            uuid.NewString(),
		QualTypes:     b.qualTypes,
		ResTypes:      b.resTypes,
		Conditions:    append([]*conditions.Condition(nil), b.conditions...),
		ConditionSets: append([]*conditions.ConditionSet(nil), b.conditionSets...),
		Decisions:     append([]*conditions.Decision(nil), b.decisions...),
		Tree:          tree,
		resourceOrder: append([]ids.ResourceId(nil), b.resourceOrder...),
	}
	return snap, nil
}

// Stats summarizes a snapshot's size, useful for logging and for the CLI's
// "build" subcommand to report what it compiled.
type Stats struct {
	Qualifiers    int
	QualifierTypes int
	ResourceTypes int
	Conditions    int
	ConditionSets int
	Decisions     int
	Resources     int
}

// Stats computes the snapshot's Stats.
func (s *Snapshot) Stats() Stats {
	return Stats{
		Qualifiers:     s.QualTypes.NumQualifiers(),
		QualifierTypes: s.QualTypes.NumQualifierTypes(),
		ResourceTypes:  s.ResTypes.NumResourceTypes(),
		Conditions:     len(s.Conditions),
		ConditionSets:  len(s.ConditionSets),
		Decisions:      len(s.Decisions),
		Resources:      len(s.resourceOrder),
	}
}

// ExportedCandidate is one resource's flattened candidate declaration, with
// its condition set given as the canonical ConditionSetKey string. It is not
// the LooseCandidateJSON shape pkg/importer's CollectionImporter reads, and
// nothing in this module converts one into the other, so exported
// candidates cannot be fed back through the importer.
type ExportedCandidate struct {
	ResourceId      ids.ResourceId
	ConditionSetKey string
	MergeMethod     resources.MergeMethod
	Completeness    resources.CandidateCompleteness
	InstanceValue   []byte
}

// ExportCandidates flattens every resource's candidates back into
// declaration form: resources added with AddResource first, in the order
// they were added, then those built from loose candidates at Seal, in the
// order their ids were first seen.
func (s *Snapshot) ExportCandidates() []ExportedCandidate {
	var out []ExportedCandidate
	for _, id := range s.resourceOrder {
		r, err := s.Tree.GetResourceById(id)
		if err != nil {
			continue
		}
		d := s.Decisions[r.DecisionIndex]
		for i, cand := range r.Candidates {
			sets := d.ConditionSets()
			var key string
			if i < len(sets) {
				key = sets[i].Key()
			}
			out = append(out, ExportedCandidate{
				ResourceId:      id,
				ConditionSetKey: key,
				MergeMethod:     cand.MergeMethod,
				Completeness:    cand.Completeness,
				InstanceValue:   append([]byte(nil), cand.InstanceValue...),
			})
		}
	}
	return out
}

// DecisionByIndex returns the decision at idx.
func (s *Snapshot) DecisionByIndex(idx ids.DecisionIndex) (*conditions.Decision, error) {
	if int(idx) < 0 || int(idx) >= len(s.Decisions) {
		return nil, fmt.Errorf("%d: %w (decision index)", idx, errutil.ErrNotFound)
	}
	return s.Decisions[idx], nil
}

// ResourceIds returns every resource id in the snapshot, in the same order
// as ExportCandidates: AddResource resources first, then those built from
// loose candidates.
func (s *Snapshot) ResourceIds() []ids.ResourceId {
	return append([]ids.ResourceId(nil), s.resourceOrder...)
}

// SortedResourceIds returns every resource id, lexically sorted - useful
// for deterministic listing in the CLI.
func (s *Snapshot) SortedResourceIds() []ids.ResourceId {
	out := s.ResourceIds()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
