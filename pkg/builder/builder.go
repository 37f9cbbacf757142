// Package builder implements the resolution engine's manager/builder:
// the interner for conditions, condition sets, decisions, and resources,
// producing an immutable, sealed Snapshot. Its index-assignment
// and accessor pattern follows the reference resource-manager this engine
// is modeled on (a dense-array-plus-lookup-map interner keyed by
// first-seen order), adapted to this repo's Condition / ConditionSet /
// Decision algebra.
package builder

import (
	"fmt"

	"github.com/resolvectx/resloc/internal/errutil"
	"github.com/resolvectx/resloc/pkg/conditions"
	"github.com/resolvectx/resloc/pkg/ids"
	"github.com/resolvectx/resloc/pkg/qualtypes"
	"github.com/resolvectx/resloc/pkg/resources"
)

// pendingResource accumulates loose candidates for a resource id whose
// decision is not yet known; it is resolved into a concrete
// resources.Resource at Seal time, once every condition set it references
// has been seen.
type pendingResource struct {
	name      ids.ResourceName
	typeIndex ids.ResourceTypeIndex
	setOrder  []ids.ConditionSetIndex
	bySet     map[ids.ConditionSetIndex]resources.Candidate
	priority  map[ids.ConditionSetIndex]ids.ConditionPriority
}

// Builder interns conditions, condition sets, and decisions and
// accumulates resource declarations,
// streaming-style, ahead of sealing into a Snapshot.
type Builder struct {
	qualTypes *qualtypes.Registry
	resTypes  *resources.Registry

	conditions []*conditions.Condition
	condByKey  map[string]ids.ConditionIndex

	conditionSets []*conditions.ConditionSet
	csByKey       map[string]ids.ConditionSetIndex

	decisions []*conditions.Decision
	decByKey  map[string]ids.DecisionIndex

	pending      map[ids.ResourceId]*pendingResource
	pendingOrder []ids.ResourceId

	finalResources map[ids.ResourceId]*resources.Resource
	resourceOrder  []ids.ResourceId

	sealed bool
}

// New creates an empty Builder over the given qualifier-type and
// resource-type registries. The registries may still be mutated by the
// caller (e.g. via AddQualifierType) until Seal is called, at which point
// Builder seals them too.
func New(qualTypes *qualtypes.Registry, resTypes *resources.Registry) *Builder {
	return &Builder{
		qualTypes:      qualTypes,
		resTypes:       resTypes,
		condByKey:      map[string]ids.ConditionIndex{},
		csByKey:        map[string]ids.ConditionSetIndex{},
		decByKey:       map[string]ids.DecisionIndex{},
		pending:        map[ids.ResourceId]*pendingResource{},
		finalResources: map[ids.ResourceId]*resources.Resource{},
	}
}

// QualTypes returns the qualifier-type registry this builder interns
// conditions against.
func (b *Builder) QualTypes() *qualtypes.Registry { return b.qualTypes }

// ResTypes returns the resource-type registry this builder validates
// candidates against.
func (b *Builder) ResTypes() *resources.Registry { return b.resTypes }

func (b *Builder) checkSealed() error {
	if b.sealed {
		return errutil.ErrSealed
	}
	return nil
}

// AddCondition interns c, returning its existing ConditionIndex if an
// equal-keyed condition was already added.
func (b *Builder) AddCondition(c *conditions.Condition) (ids.ConditionIndex, error) {
	if err := b.checkSealed(); err != nil {
		return 0, err
	}
	if idx, ok := b.condByKey[c.Key()]; ok {
		return idx, nil
	}
	idx := ids.ConditionIndex(len(b.conditions))
	b.conditions = append(b.conditions, c)
	b.condByKey[c.Key()] = idx
	return idx, nil
}

// ConditionByIndex returns the interned condition at idx.
func (b *Builder) ConditionByIndex(idx ids.ConditionIndex) (*conditions.Condition, error) {
	if int(idx) < 0 || int(idx) >= len(b.conditions) {
		return nil, fmt.Errorf("%d: %w (condition index)", idx, errutil.ErrNotFound)
	}
	return b.conditions[idx], nil
}

// AddConditionSet interns the ConditionSet formed from the conditions at
// indices, canonicalizing (dedup + sort) as conditions.NewConditionSet
// does.
func (b *Builder) AddConditionSet(indices []ids.ConditionIndex) (ids.ConditionSetIndex, error) {
	if err := b.checkSealed(); err != nil {
		return 0, err
	}
	conds := make([]*conditions.Condition, len(indices))
	for i, ci := range indices {
		c, err := b.ConditionByIndex(ci)
		if err != nil {
			return 0, err
		}
		conds[i] = c
	}
	cs := conditions.NewConditionSet(conds)
	if idx, ok := b.csByKey[cs.Key()]; ok {
		return idx, nil
	}
	idx := ids.ConditionSetIndex(len(b.conditionSets))
	b.conditionSets = append(b.conditionSets, cs)
	b.csByKey[cs.Key()] = idx
	return idx, nil
}

// ConditionSetByIndex returns the interned condition set at idx.
func (b *Builder) ConditionSetByIndex(idx ids.ConditionSetIndex) (*conditions.ConditionSet, error) {
	if int(idx) < 0 || int(idx) >= len(b.conditionSets) {
		return nil, fmt.Errorf("%d: %w (condition set index)", idx, errutil.ErrNotFound)
	}
	return b.conditionSets[idx], nil
}

// AddDecision interns the Decision formed from the condition sets at
// setIndices, preserving their given order.
func (b *Builder) AddDecision(setIndices []ids.ConditionSetIndex) (ids.DecisionIndex, error) {
	if err := b.checkSealed(); err != nil {
		return 0, err
	}
	sets := make([]*conditions.ConditionSet, len(setIndices))
	for i, si := range setIndices {
		cs, err := b.ConditionSetByIndex(si)
		if err != nil {
			return 0, err
		}
		sets[i] = cs
	}
	d := conditions.NewDecision(sets)
	if idx, ok := b.decByKey[d.Key()]; ok {
		return idx, nil
	}
	idx := ids.DecisionIndex(len(b.decisions))
	b.decisions = append(b.decisions, d)
	b.decByKey[d.Key()] = idx
	return idx, nil
}

// DecisionByIndex returns the interned decision at idx.
func (b *Builder) DecisionByIndex(idx ids.DecisionIndex) (*conditions.Decision, error) {
	if int(idx) < 0 || int(idx) >= len(b.decisions) {
		return nil, fmt.Errorf("%d: %w (decision index)", idx, errutil.ErrNotFound)
	}
	return b.decisions[idx], nil
}

// AddLooseCandidate associates a candidate with resourceId's condition set
// at conditionSetIdx, creating the resource's pending shell on first
// reference. priority ranks this condition set among the resource's other
// referenced condition sets for the purpose of building its eventual
// Decision: resolution breaks score ties by decision order, and a
// decision's leftmost (first) entry is its highest-priority condition set,
// so at Seal time a resource's condition sets are ordered by this priority
// descending (ties broken by first-seen order) rather than by literal
// declaration order, letting a low-priority unconditional default rank
// below a higher-priority specific candidate even when declared first.
// Pass ids.DefaultConditionPriority when the declaration carries no
// explicit priority of its own.
func (b *Builder) AddLooseCandidate(
	resourceId ids.ResourceId,
	name ids.ResourceName,
	typeIdx ids.ResourceTypeIndex,
	conditionSetIdx ids.ConditionSetIndex,
	priority ids.ConditionPriority,
	cand resources.Candidate,
) error {
	if err := b.checkSealed(); err != nil {
		return err
	}
	if err := cand.Validate(); err != nil {
		return fmt.Errorf("%s: %w: %v", resourceId, errutil.ErrValidation, err)
	}
	if _, final := b.finalResources[resourceId]; final {
		return fmt.Errorf("%s: %w (already registered as a complete resource)", resourceId, errutil.ErrConflict)
	}

	pr, ok := b.pending[resourceId]
	if !ok {
		pr = &pendingResource{
			name:      name,
			typeIndex: typeIdx,
			bySet:     map[ids.ConditionSetIndex]resources.Candidate{},
			priority:  map[ids.ConditionSetIndex]ids.ConditionPriority{},
		}
		b.pending[resourceId] = pr
		b.pendingOrder = append(b.pendingOrder, resourceId)
	}
	if existing, ok := pr.bySet[conditionSetIdx]; ok {
		if existing.MergeMethod == cand.MergeMethod && string(existing.InstanceValue) != string(cand.InstanceValue) {
			return fmt.Errorf("%s: %w (duplicate candidate for the same condition set)", resourceId, errutil.ErrConflict)
		}
		return nil
	}
	pr.setOrder = append(pr.setOrder, conditionSetIdx)
	pr.bySet[conditionSetIdx] = cand
	pr.priority[conditionSetIdx] = priority
	return nil
}

// AddResource registers a complete resource whose decision has already
// been computed (e.g. by an importer that pre-interned every condition
// set it needed).
func (b *Builder) AddResource(resourceId ids.ResourceId, name ids.ResourceName, typeIdx ids.ResourceTypeIndex, decisionIdx ids.DecisionIndex, candidates []resources.Candidate) error {
	if err := b.checkSealed(); err != nil {
		return err
	}
	if _, pendingExists := b.pending[resourceId]; pendingExists {
		return fmt.Errorf("%s: %w (already has loose candidates registered)", resourceId, errutil.ErrConflict)
	}
	r, err := resources.NewResource(name, typeIdx, decisionIdx, candidates)
	if err != nil {
		return fmt.Errorf("%s: %w: %v", resourceId, errutil.ErrValidation, err)
	}
	r = r.WithPath(resourceId)

	if existing, ok := b.finalResources[resourceId]; ok {
		if !sameResource(existing, r) {
			return fmt.Errorf("%s: %w", resourceId, errutil.ErrConflict)
		}
		return nil
	}
	b.finalResources[resourceId] = r
	b.resourceOrder = append(b.resourceOrder, resourceId)
	return nil
}

func sameResource(a, b *resources.Resource) bool {
	if a.Name != b.Name || a.TypeIndex != b.TypeIndex || a.DecisionIndex != b.DecisionIndex {
		return false
	}
	if len(a.Candidates) != len(b.Candidates) {
		return false
	}
	for i := range a.Candidates {
		if string(a.Candidates[i].InstanceValue) != string(b.Candidates[i].InstanceValue) {
			return false
		}
		if a.Candidates[i].MergeMethod != b.Candidates[i].MergeMethod {
			return false
		}
	}
	return true
}

// CloneOptions seeds the cloned builder with additional loose candidates
// after copying.
type CloneOptions struct {
	ExtraCandidates []LooseCandidateDecl
}

// LooseCandidateDecl is the argument shape AddLooseCandidate takes,
// bundled so Clone can replay a batch of them.
type LooseCandidateDecl struct {
	ResourceId      ids.ResourceId
	Name            ids.ResourceName
	TypeIndex       ids.ResourceTypeIndex
	ConditionSetIdx ids.ConditionSetIndex
	Priority        ids.ConditionPriority
	Candidate       resources.Candidate
}

// Clone produces an independent Builder with the same interned tables:
// every index already assigned in b is preserved identically in the
// clone, and further additions to either builder extend indices
// independently. opts.ExtraCandidates, if given, seeds the clone with
// additional loose candidates after copying.
func (b *Builder) Clone(opts CloneOptions) (*Builder, error) {
	nb := &Builder{
		qualTypes:      b.qualTypes,
		resTypes:       b.resTypes,
		conditions:     append([]*conditions.Condition(nil), b.conditions...),
		condByKey:      copyStrIdxMap(b.condByKey),
		conditionSets:  append([]*conditions.ConditionSet(nil), b.conditionSets...),
		csByKey:        copyStrIdxMapCS(b.csByKey),
		decisions:      append([]*conditions.Decision(nil), b.decisions...),
		decByKey:       copyStrIdxMapDec(b.decByKey),
		pending:        map[ids.ResourceId]*pendingResource{},
		pendingOrder:   append([]ids.ResourceId(nil), b.pendingOrder...),
		finalResources: map[ids.ResourceId]*resources.Resource{},
		resourceOrder:  append([]ids.ResourceId(nil), b.resourceOrder...),
	}
	for id, pr := range b.pending {
		cp := &pendingResource{
			name:      pr.name,
			typeIndex: pr.typeIndex,
			setOrder:  append([]ids.ConditionSetIndex(nil), pr.setOrder...),
			bySet:     make(map[ids.ConditionSetIndex]resources.Candidate, len(pr.bySet)),
			priority:  make(map[ids.ConditionSetIndex]ids.ConditionPriority, len(pr.priority)),
		}
		for k, v := range pr.bySet {
			cp.bySet[k] = v
		}
		for k, v := range pr.priority {
			cp.priority[k] = v
		}
		nb.pending[id] = cp
	}
	for id, r := range b.finalResources {
		cp := *r
		cp.Candidates = append([]resources.Candidate(nil), r.Candidates...)
		nb.finalResources[id] = &cp
	}

	for _, decl := range opts.ExtraCandidates {
		if err := nb.AddLooseCandidate(decl.ResourceId, decl.Name, decl.TypeIndex, decl.ConditionSetIdx, decl.Priority, decl.Candidate); err != nil {
			return nil, err
		}
	}
	return nb, nil
}

func copyStrIdxMap(m map[string]ids.ConditionIndex) map[string]ids.ConditionIndex {
	out := make(map[string]ids.ConditionIndex, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyStrIdxMapCS(m map[string]ids.ConditionSetIndex) map[string]ids.ConditionSetIndex {
	out := make(map[string]ids.ConditionSetIndex, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyStrIdxMapDec(m map[string]ids.DecisionIndex) map[string]ids.DecisionIndex {
	out := make(map[string]ids.DecisionIndex, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
