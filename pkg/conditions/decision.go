package conditions

import "strings"

// Decision is an ordered sequence of ConditionSets. Its leftmost entry is
// the highest-priority condition set as authored; the decision's own
// ordering is distinct from (and a tie-break input to) the score-based
// ordering the resolver computes at runtime.
type Decision struct {
	sets []*ConditionSet
	key  string
	hash string
}

// NewDecision builds a Decision from sets, preserving their given order
// (a Decision is not deduplicated or re-sorted: authored order is part of
// its identity and its tie-break semantics).
func NewDecision(sets []*ConditionSet) *Decision {
	d := &Decision{sets: append([]*ConditionSet(nil), sets...)}
	hashes := make([]string, len(sets))
	for i, s := range sets {
		hashes[i] = s.Hash()
	}
	d.key = strings.Join(hashes, "+")
	d.hash = hashConditionSetKey(d.key)
	return d
}

// ConditionSets returns the decision's members in authored order.
func (d *Decision) ConditionSets() []*ConditionSet { return d.sets }

// Key returns the canonical DecisionKey: the "+"-joined list of member
// condition-set hashes.
func (d *Decision) Key() string { return d.key }

// KeyWithHash returns Key() suffixed with "|<hash>", the optional extended
// form allowed for DecisionKey. Key() remains the canonical form; it is
// also the key pkg/builder interns decisions by.
func (d *Decision) KeyWithHash() string { return d.key + "|" + d.hash }

// Len returns the number of member condition sets.
func (d *Decision) Len() int { return len(d.sets) }

// ConditionScorer scores a single Condition against whatever context a
// caller has bound, without this package needing to know about qualifier
// types or context storage. pkg/resolver supplies the concrete
// implementation, wiring pkg/qualtypes and the caller's context together.
type ConditionScorer interface {
	Score(c *Condition) QualifierMatchScoreWithDefault
}

// QualifierMatchScoreWithDefault is the result of scoring one condition:
// the numeric score, and whether it was produced from a ScoreAsDefault
// fallback (context lacked the qualifier) rather than an actual match.
type QualifierMatchScoreWithDefault struct {
	Score          float64
	MatchedAsDefault bool
}

// ResolvedConditionSet is one condition set's resolution result, keyed by
// its position within the owning Decision.
type ResolvedConditionSet struct {
	Position     int
	Set          *ConditionSet
	Score        float64
	Matched      bool
	AnyByDefault bool
}

// Aggregate computes a ConditionSet's aggregate score: the product of its
// member conditions' scores (an Unconditional "always" condition
// contributes 1.0, "never" contributes 0.0). Matched means aggregate > 0.
func Aggregate(cs *ConditionSet, scorer ConditionScorer) (score float64, matched bool, anyByDefault bool) {
	score = 1.0
	if cs.Len() == 0 {
		return 1.0, true, false
	}
	for _, c := range cs.Conditions() {
		if c.Operator == OpAlways {
			continue
		}
		if c.Operator == OpNever {
			return 0, false, false
		}
		r := scorer.Score(c)
		if r.MatchedAsDefault {
			anyByDefault = true
		}
		score *= r.Score
		if score == 0 {
			return 0, false, anyByDefault
		}
	}
	return score, score > 0, anyByDefault
}

// Resolve evaluates every condition set in d against scorer, in d's
// authored order, returning one ResolvedConditionSet per member (callers
// filter/sort at resolve time; this function does not rank).
func Resolve(d *Decision, scorer ConditionScorer) []ResolvedConditionSet {
	out := make([]ResolvedConditionSet, len(d.sets))
	for i, s := range d.sets {
		score, matched, byDefault := Aggregate(s, scorer)
		out[i] = ResolvedConditionSet{
			Position:     i,
			Set:          s,
			Score:        score,
			Matched:      matched,
			AnyByDefault: byDefault,
		}
	}
	return out
}
