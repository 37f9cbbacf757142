package qualtypes

import (
	"regexp"
	"strings"

	"github.com/resolvectx/resloc/pkg/ids"
)

// territoryRE matches an ISO-3166-1 alpha-2 style two-letter code.
var territoryRE = regexp.MustCompile(`^[A-Za-z]{2}$`)

// Territory is the built-in two-letter-region qualifier type, with an
// optional region hierarchy (e.g. "US" under "NA" under "GLOBAL") using
// the same decaying-score rule as Literal.
type Territory struct {
	lit *Literal
}

// NewTerritory builds a non-hierarchical territory qualifier type.
func NewTerritory(name ids.QualifierTypeName) *Territory {
	return &Territory{lit: &Literal{name: name}}
}

// NewHierarchicalTerritory builds a territory qualifier type with a region
// hierarchy given by child->parent edges.
func NewHierarchicalTerritory(name ids.QualifierTypeName, childToParent map[string]string) *Territory {
	norm := make(map[string]string, len(childToParent))
	for c, p := range childToParent {
		norm[strings.ToUpper(c)] = strings.ToUpper(p)
	}
	return &Territory{lit: NewHierarchicalLiteral(name, norm)}
}

func (t *Territory) Name() ids.QualifierTypeName { return t.lit.Name() }

func (t *Territory) IsValidConditionValue(v string) bool { return territoryRE.MatchString(v) }
func (t *Territory) IsValidContextValue(v string) bool   { return territoryRE.MatchString(v) }

// Match implements QualifierType; comparisons are case-insensitive.
func (t *Territory) Match(conditionValue, contextValue string) ids.QualifierMatchScore {
	return t.lit.Match(strings.ToUpper(conditionValue), strings.ToUpper(contextValue))
}
