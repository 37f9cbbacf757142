package qualtypes

import (
	"regexp"
	"strings"

	"github.com/resolvectx/resloc/pkg/ids"
)

// languageTagRE is a deliberately loose BCP-47 grammar: a primary subtag
// followed by zero or more hyphen-separated extension subtags. Full BCP-47
// validation (script/region/variant ordering, registry membership) is out
// of scope; this is enough to reject obviously malformed tags.
var languageTagRE = regexp.MustCompile(`^[A-Za-z]{2,8}(-[A-Za-z0-9]{1,8})*$`)

// Language is the built-in BCP-47-style qualifier type. A context tag
// matches a condition tag exactly at PerfectMatch; a context tag with
// extra subtags (e.g. "en-GB") matches a condition tag that is a strict
// prefix of it (e.g. "en") at a fractional score. The reverse never
// matches: a condition of "en-GB" does not match a context of "en", since
// the candidate asked for a more specific tag than the caller provided.
type Language struct {
	name ids.QualifierTypeName
}

// NewLanguage builds the language qualifier type.
func NewLanguage(name ids.QualifierTypeName) *Language { return &Language{name: name} }

func (l *Language) Name() ids.QualifierTypeName { return l.name }

func (l *Language) IsValidConditionValue(v string) bool { return languageTagRE.MatchString(v) }
func (l *Language) IsValidContextValue(v string) bool   { return languageTagRE.MatchString(v) }

// Match implements QualifierType.
func (l *Language) Match(conditionValue, contextValue string) ids.QualifierMatchScore {
	cv := strings.ToLower(conditionValue)
	xv := strings.ToLower(contextValue)
	if cv == xv {
		return ids.PerfectMatch
	}

	condParts := strings.Split(cv, "-")
	ctxParts := strings.Split(xv, "-")
	if len(condParts) >= len(ctxParts) {
		// The condition is at least as specific as the context; a strict
		// fallback match requires the context to carry extra subtags.
		return ids.NoMatch
	}
	for i, p := range condParts {
		if ctxParts[i] != p {
			return ids.NoMatch
		}
	}
	// Fractional score: the more of the context's subtags the condition
	// covers, the higher the score, but always below PerfectMatch.
	return ids.QualifierMatchScore(float64(len(condParts)) / float64(len(ctxParts)+1))
}
