package importer

import (
	"fmt"
	"strings"

	"github.com/resolvectx/resloc/pkg/ids"
)

// parsedFilenameConditions is the result of parsing a basename's
// condition-carrying tail, per the filename grammar:
// `<baseName>.<conditionToken>(,<conditionToken>)*.json`.
type parsedFilenameConditions struct {
	BaseName   string
	Conditions []ConditionDecl
}

// parseFilenameConditions implements the filename condition parser:
//  1. Split basename on ".";  tail is the last segment before the
//     extension.
//  2. Parse tail as a comma-separated list of condition tokens
//     (qualifier=value or a bare value).
//  3. If parsing succeeds with at least one qualified token, strip tail
//     and emit those conditions.
//  4. A single anonymous token with no qualifier means no conditions;
//     keep the basename unchanged (it is just a dotted file name).
//  5. A partial parse failure (some tokens qualified, some bare, or a
//     malformed token) fails the import of that item.
//
// resolveBareValue looks up the qualifier whose literal value set accepts
// a bare token (spec: "bound to the qualifier whose literal set accepts
// it"); nil disables bare-token resolution, treating any bare token as
// anonymous (case 4).
func parseFilenameConditions(basenameWithExt string, resolveBareValue func(value string) (qualifier string, ok bool)) (parsedFilenameConditions, error) {
	ext := ""
	name := basenameWithExt
	if i := strings.LastIndex(basenameWithExt, "."); i >= 0 {
		ext = basenameWithExt[i:]
		name = basenameWithExt[:i]
	}

	segs := strings.Split(name, ".")
	if len(segs) < 2 {
		return parsedFilenameConditions{BaseName: basenameWithExt}, nil
	}
	tail := segs[len(segs)-1]
	rest := strings.Join(segs[:len(segs)-1], ".")

	tokens := strings.Split(tail, ",")
	var decls []ConditionDecl
	qualifiedCount := 0
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			return parsedFilenameConditions{}, fmt.Errorf("%s: empty condition token", basenameWithExt)
		}
		if eq := strings.Index(tok, "="); eq >= 0 {
			qualifier := tok[:eq]
			value := tok[eq+1:]
			if qualifier == "" || value == "" {
				return parsedFilenameConditions{}, fmt.Errorf("%s: malformed condition token %q", basenameWithExt, tok)
			}
			qn, err := ids.ToQualifierName(qualifier)
			if err != nil {
				return parsedFilenameConditions{}, fmt.Errorf("%s: %w", basenameWithExt, err)
			}
			decls = append(decls, ConditionDecl{QualifierName: qn, Value: value, Priority: ids.DefaultConditionPriority})
			qualifiedCount++
			continue
		}

		if resolveBareValue != nil {
			if qualifier, ok := resolveBareValue(tok); ok {
				qn, err := ids.ToQualifierName(qualifier)
				if err != nil {
					return parsedFilenameConditions{}, fmt.Errorf("%s: %w", basenameWithExt, err)
				}
				decls = append(decls, ConditionDecl{QualifierName: qn, Value: tok, Priority: ids.DefaultConditionPriority})
				qualifiedCount++
				continue
			}
		}
		decls = append(decls, ConditionDecl{Value: tok})
	}

	if qualifiedCount == 0 {
		// Case 4: a single anonymous token (or all tokens unresolved) -
		// treat the whole thing as no conditions, basename unchanged.
		return parsedFilenameConditions{BaseName: basenameWithExt}, nil
	}
	if qualifiedCount != len(tokens) {
		return parsedFilenameConditions{}, fmt.Errorf("%s: mixes qualified and anonymous condition tokens", basenameWithExt)
	}

	return parsedFilenameConditions{BaseName: rest + ext, Conditions: decls}, nil
}
