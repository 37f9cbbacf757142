// Package conditions implements the condition / condition-set / decision
// algebra: building and hashing orderable condition structures
// and computing their match scores against a runtime context.
package conditions

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/resolvectx/resloc/pkg/ids"
)

// ConditionOperator enumerates the binary "matches" operator plus the
// unary unconditional operators "always" and "never".
type ConditionOperator string

const (
	OpMatches ConditionOperator = "matches"
	OpAlways  ConditionOperator = "always"
	OpNever   ConditionOperator = "never"
)

// Condition is either Unconditional (Operator is OpAlways/OpNever and no
// qualifier is consulted) or Binary (Operator is OpMatches, or any future
// binary operator, against a qualifier's value).
type Condition struct {
	Operator ConditionOperator

	// Binary fields; zero-valued for an Unconditional condition.
	QualifierIndex ids.QualifierIndex
	QualifierName  ids.QualifierName
	Value          string
	Priority       ids.ConditionPriority
	ScoreAsDefault *ids.QualifierMatchScore

	key string
}

// IsUnconditional reports whether c is Unconditional.
func (c *Condition) IsUnconditional() bool {
	return c.Operator == OpAlways || c.Operator == OpNever
}

// ConditionValueValidator validates a candidate condition value for a
// qualifier type; it is the qualtypes.QualifierType.IsValidConditionValue
// method, passed in rather than imported directly so this package stays
// free of a dependency on pkg/qualtypes.
type ConditionValueValidator func(value string) bool

// NewUnconditional builds an Unconditional condition. op must be OpAlways
// or OpNever.
func NewUnconditional(op ConditionOperator) (*Condition, error) {
	if op != OpAlways && op != OpNever {
		return nil, fmt.Errorf("%s: not a valid unconditional operator", op)
	}
	c := &Condition{Operator: op}
	c.key = string(op)
	return c, nil
}

// NewBinary builds a Binary condition, validating value against validate.
// op defaults to OpMatches when empty.
func NewBinary(
	qualIdx ids.QualifierIndex,
	qualName ids.QualifierName,
	op ConditionOperator,
	value string,
	priority ids.ConditionPriority,
	scoreAsDefault *ids.QualifierMatchScore,
	validate ConditionValueValidator,
) (*Condition, error) {
	if op == "" {
		op = OpMatches
	}
	if op == OpAlways || op == OpNever {
		return nil, fmt.Errorf("%s: unconditional operator not valid for a binary condition", op)
	}
	if validate != nil && !validate(value) {
		return nil, fmt.Errorf("%s: not a valid condition value for qualifier %s", value, qualName)
	}

	c := &Condition{
		Operator:       op,
		QualifierIndex: qualIdx,
		QualifierName:  qualName,
		Value:          value,
		Priority:       priority,
		ScoreAsDefault: scoreAsDefault,
	}
	c.key = renderBinaryKey(c)
	return c, nil
}

// Key returns the canonical ConditionKey. Equality of conditions is
// equality of keys.
func (c *Condition) Key() string { return c.key }

func renderBinaryKey(c *Condition) string {
	var b strings.Builder
	b.WriteString(string(c.QualifierName))
	if c.Operator != OpMatches {
		b.WriteString("-")
		b.WriteString(string(c.Operator))
	}
	b.WriteString("-[")
	b.WriteString(c.Value)
	b.WriteString("]")
	if c.Priority != ids.DefaultConditionPriority {
		b.WriteString("@")
		b.WriteString(strconv.Itoa(int(c.Priority)))
	}
	if c.ScoreAsDefault != nil {
		b.WriteString("(")
		b.WriteString(strconv.FormatFloat(float64(*c.ScoreAsDefault), 'g', -1, 64))
		b.WriteString(")")
	}
	return b.String()
}

// Compare imposes the canonical total order: priority desc, then
// scoreAsDefault desc (conditions without one sort after those with one),
// then qualifier name asc, then value asc. Unconditional conditions sort
// by priority only, using DefaultConditionPriority, then by operator name.
func Compare(a, b *Condition) int {
	pa, pb := effectivePriority(a), effectivePriority(b)
	if pa != pb {
		if pa > pb {
			return -1
		}
		return 1
	}

	sa, sb := scoreAsDefaultValue(a), scoreAsDefaultValue(b)
	if sa != sb {
		if sa > sb {
			return -1
		}
		return 1
	}

	if a.IsUnconditional() || b.IsUnconditional() {
		return strings.Compare(string(a.Operator), string(b.Operator))
	}

	if a.QualifierName != b.QualifierName {
		return strings.Compare(string(a.QualifierName), string(b.QualifierName))
	}
	return strings.Compare(a.Value, b.Value)
}

func effectivePriority(c *Condition) ids.ConditionPriority {
	if c.IsUnconditional() {
		return ids.DefaultConditionPriority
	}
	return c.Priority
}

func scoreAsDefaultValue(c *Condition) float64 {
	if c.ScoreAsDefault == nil {
		return -1
	}
	return float64(*c.ScoreAsDefault)
}
