// Package resolver implements the per-resource and per-tree resolution
// algorithm: scoring a resource's decision against a bound context,
// picking the winning full candidate, and layering higher-ranked partial
// candidates onto it. Its per-resource result cache and layered result
// shape follow the reference resource-resolver this engine is modeled on.
package resolver

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/resolvectx/resloc/internal/errutil"
	"github.com/resolvectx/resloc/pkg/builder"
	"github.com/resolvectx/resloc/pkg/conditions"
	"github.com/resolvectx/resloc/pkg/ids"
	"github.com/resolvectx/resloc/pkg/resources"
)

// Resolver binds a sealed snapshot to a context and resolves resources
// against it. It is safe for concurrent read-only use once constructed; a
// derived resolver from WithContext is an independent value with its own
// cache.
type Resolver struct {
	snap    *builder.Snapshot
	context map[ids.QualifierName]string

	mu    sync.Mutex
	cache map[ids.ResourceId]json.RawMessage
}

// New creates a Resolver over snap with an empty (all-neutral) context.
func New(snap *builder.Snapshot) *Resolver {
	return &Resolver{
		snap:    snap,
		context: map[ids.QualifierName]string{},
		cache:   map[ids.ResourceId]json.RawMessage{},
	}
}

// WithContext returns a derived resolver over the same snapshot, with kv
// validated against the qualifier registry: unknown qualifier names, or
// values the qualifier's type rejects, fail the whole call. The derived
// resolver has its own, empty cache.
func (r *Resolver) WithContext(kv map[string]string) (*Resolver, error) {
	ctx := make(map[ids.QualifierName]string, len(kv))
	for k, v := range kv {
		name := ids.QualifierName(k)
		_, qual, err := r.snap.QualTypes.QualifierByName(name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, errutil.ErrNotFound)
		}
		qt, err := r.snap.QualTypes.QualifierTypeByIndex(qual.TypeIndex)
		if err != nil {
			return nil, err
		}
		if !qt.IsValidContextValue(v) {
			return nil, fmt.Errorf("%s: %w (invalid context value for qualifier %s)", v, errutil.ErrValidation, k)
		}
		ctx[name] = v
	}
	return &Resolver{
		snap:    r.snap,
		context: ctx,
		cache:   map[ids.ResourceId]json.RawMessage{},
	}, nil
}

// boundScorer adapts a Resolver's snapshot + context into a
// conditions.ConditionScorer.
type boundScorer struct {
	r *Resolver
}

func (s boundScorer) Score(c *conditions.Condition) conditions.QualifierMatchScoreWithDefault {
	value, ok := s.r.context[c.QualifierName]
	if !ok {
		if c.ScoreAsDefault != nil {
			return conditions.QualifierMatchScoreWithDefault{Score: float64(*c.ScoreAsDefault), MatchedAsDefault: true}
		}
		return conditions.QualifierMatchScoreWithDefault{Score: 0}
	}

	qual, err := s.r.snap.QualTypes.QualifierByIndex(c.QualifierIndex)
	if err != nil {
		return conditions.QualifierMatchScoreWithDefault{Score: 0}
	}
	qt, err := s.r.snap.QualTypes.QualifierTypeByIndex(qual.TypeIndex)
	if err != nil {
		return conditions.QualifierMatchScoreWithDefault{Score: 0}
	}
	score := qt.Match(c.Value, value)
	return conditions.QualifierMatchScoreWithDefault{Score: float64(score)}
}

// rankedSet is one condition set scored and ranked for a single resolve
// call.
type rankedSet struct {
	conditions.ResolvedConditionSet
}

// Resolve resolves the resource at id against r's bound context, applying
// the resolution algorithm. Results are cached per (resolver, resource
// id): Resolve is a pure function of (snapshot, context) once both are
// fixed, so caching never observes staleness.
func (r *Resolver) Resolve(id ids.ResourceId) (json.RawMessage, error) {
	r.mu.Lock()
	if v, ok := r.cache[id]; ok {
		r.mu.Unlock()
		return v, nil
	}
	r.mu.Unlock()

	res, err := r.snap.Tree.GetResourceById(id)
	if err != nil {
		return nil, err
	}
	out, err := r.resolveResource(id, res)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[id] = out
	r.mu.Unlock()
	return out, nil
}

func (r *Resolver) resolveResource(id ids.ResourceId, res *resources.Resource) (json.RawMessage, error) {
	decision, err := r.snap.DecisionByIndex(res.DecisionIndex)
	if err != nil {
		return nil, err
	}

	scorer := boundScorer{r: r}
	resolved := conditions.Resolve(decision, scorer)

	ranked := make([]rankedSet, 0, len(resolved))
	for _, rs := range resolved {
		if !rs.Matched {
			continue
		}
		ranked = append(ranked, rankedSet{rs})
	}
	// Stable sort by score descending; ties keep the original (decision)
	// order because conditions.Resolve already emitted entries in that
	// order and sort.SliceStable preserves relative order among equals.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) == 0 {
		return nil, fmt.Errorf("%s: %w", id, errutil.ErrNoMatchingConditionSet)
	}

	baseRank := -1
	for i, rs := range ranked {
		cand, ok := res.CandidateAt(rs.Position)
		if ok && cand.Completeness == resources.Full {
			baseRank = i
			break
		}
	}
	if baseRank == -1 {
		return nil, fmt.Errorf("%s: %w", id, errutil.ErrNoFullCandidate)
	}

	resType, err := r.snap.ResTypes.ByIndex(res.TypeIndex)
	if err != nil {
		return nil, err
	}

	baseCand, _ := res.CandidateAt(ranked[baseRank].Position)
	accum := baseCand.InstanceValue

	// Apply higher-ranked (rank < baseRank) partial candidates in
	// ascending priority order, i.e. starting from the one closest to the
	// base (weakest) and ending with rank 0 (strongest), so the strongest
	// wins any key conflict.
	for i := baseRank - 1; i >= 0; i-- {
		cand, ok := res.CandidateAt(ranked[i].Position)
		if !ok || cand.Completeness != resources.Partial {
			continue
		}
		accum, err = resType.MergeValues(accum, cand.InstanceValue, cand.MergeMethod)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", id, err)
		}
	}

	return accum, nil
}
