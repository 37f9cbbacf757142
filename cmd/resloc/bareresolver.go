package main

import (
	"github.com/resolvectx/resloc/pkg/ids"
	"github.com/resolvectx/resloc/pkg/qualtypes"
)

// bareValueResolver returns a function that guesses which qualifier a
// filename-encoded bare condition token (one with no "qualifier=" prefix)
// belongs to: the first qualifier whose type accepts the token as a
// condition value. Ambiguous tokens (matched by more than one qualifier
// type) are the declarer's problem to avoid by qualifying the token
// explicitly; ResolveBareValue only ever returns the first match.
func bareValueResolver(qt *qualtypes.Registry) func(value string) (qualifier string, ok bool) {
	return func(value string) (string, bool) {
		for i := 0; i < qt.NumQualifiers(); i++ {
			q, err := qt.QualifierByIndex(ids.QualifierIndex(i))
			if err != nil {
				continue
			}
			qualType, err := qt.QualifierTypeByIndex(q.TypeIndex)
			if err != nil {
				continue
			}
			if qualType.IsValidConditionValue(value) {
				return string(q.Name), true
			}
		}
		return "", false
	}
}
