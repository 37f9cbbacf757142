package qualtypes

import "github.com/resolvectx/resloc/pkg/ids"

// Literal is the simplest built-in qualifier type: exact string equality,
// with an optional hierarchy of parent/child relations (e.g. region names)
// so that a descendant context value can match an ancestor condition value
// at a reduced, depth-based score.
type Literal struct {
	name ids.QualifierTypeName

	// hierarchy maps a value to its immediate parent. A value with no
	// entry (or an empty parent) is a root of the hierarchy.
	hierarchy map[string]string

	// values restricts valid values when non-empty; an empty set means
	// any non-empty string is valid, which is the common case for free-form
	// literal qualifiers (e.g. platform names) that aren't hierarchical.
	values map[string]bool
}

// NewLiteral builds a non-hierarchical literal qualifier type. If allowed
// is non-empty, only those values validate; otherwise any non-empty string
// does.
func NewLiteral(name ids.QualifierTypeName, allowed ...string) *Literal {
	l := &Literal{name: name}
	if len(allowed) > 0 {
		l.values = make(map[string]bool, len(allowed))
		for _, v := range allowed {
			l.values[v] = true
		}
	}
	return l
}

// NewHierarchicalLiteral builds a literal qualifier type whose values form
// a tree given by child->parent edges, e.g. {"us-ca": "us", "us": "na", "na": "global"}.
func NewHierarchicalLiteral(name ids.QualifierTypeName, childToParent map[string]string) *Literal {
	l := &Literal{name: name, hierarchy: map[string]string{}}
	for c, p := range childToParent {
		l.hierarchy[c] = p
	}
	l.values = map[string]bool{}
	for c, p := range childToParent {
		l.values[c] = true
		l.values[p] = true
	}
	return l
}

func (l *Literal) Name() ids.QualifierTypeName { return l.name }

func (l *Literal) IsValidConditionValue(v string) bool { return l.isValidValue(v) }
func (l *Literal) IsValidContextValue(v string) bool   { return l.isValidValue(v) }

func (l *Literal) isValidValue(v string) bool {
	if v == "" {
		return false
	}
	if l.values == nil {
		return true
	}
	return l.values[v]
}

// depth returns the number of hops from v up to the hierarchy root,
// counting v itself as depth 0.
func (l *Literal) depth(v string) int {
	d := 0
	for {
		p, ok := l.hierarchy[v]
		if !ok || p == "" {
			return d
		}
		v = p
		d++
	}
}

// ancestorOf reports whether ancestor is v or a strict ancestor of v in
// the hierarchy, and the number of hops between them.
func (l *Literal) ancestorOf(ancestor, v string) (int, bool) {
	hops := 0
	for {
		if v == ancestor {
			return hops, true
		}
		p, ok := l.hierarchy[v]
		if !ok || p == "" {
			return 0, false
		}
		v = p
		hops++
	}
}

// Match implements QualifierType. Exact equality scores PerfectMatch. If
// the qualifier type is hierarchical and the condition value is an
// ancestor of the context value, the score decays with distance:
// 1/(1+hops). A context value that is an ancestor of the condition value
// never matches (descendants narrow, ancestors don't), matching the BCP-47
// asymmetry the "language" type relies on.
func (l *Literal) Match(conditionValue, contextValue string) ids.QualifierMatchScore {
	if conditionValue == contextValue {
		return ids.PerfectMatch
	}
	if l.hierarchy == nil {
		return ids.NoMatch
	}
	if hops, ok := l.ancestorOf(conditionValue, contextValue); ok {
		return ids.QualifierMatchScore(1.0 / float64(1+hops))
	}
	return ids.NoMatch
}
