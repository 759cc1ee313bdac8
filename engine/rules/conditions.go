// Package rules evaluates fact conditions. Evaluation is read-only: nothing
// here mutates a store or fires notifications.
package rules

import (
	"fmt"
	"strings"

	"github.com/nathoo/factcore/engine/tag"
	"github.com/nathoo/factcore/types"
)

// Reader is the read side of a fact store.
type Reader interface {
	ValueIfDefined(t tag.Tag) (int32, bool)
}

// Compare applies op to a fact. Every value comparison fails on an
// undefined fact; only IsUndefined and IsDefined look at definedness.
func Compare(op types.Operator, value int32, defined bool, wanted int32) bool {
	switch op {
	case types.Equals:
		return defined && value == wanted
	case types.NotEquals:
		return defined && value != wanted
	case types.Greater:
		return defined && value > wanted
	case types.GreaterOrEqual:
		return defined && value >= wanted
	case types.Less:
		return defined && value < wanted
	case types.LessOrEqual:
		return defined && value <= wanted
	case types.IsUndefined:
		return !defined
	case types.IsDefined:
		return defined
	default:
		return false
	}
}

// EvalSimple evaluates c against r. An invalid tag evaluates to false.
func EvalSimple(c types.SimpleCondition, r Reader) bool {
	if !c.Tag.IsValid() {
		return false
	}
	value, defined := r.ValueIfDefined(c.Tag)
	return Compare(c.Operator, value, defined, c.Wanted)
}

// EvalCompound evaluates all of c.And and any of c.Or through check.
// Empty groups are vacuously true. And stops at the first false, Or at the
// first true.
func EvalCompound(c types.Condition, check func(types.SimpleCondition) bool) bool {
	for _, sc := range c.And {
		if !check(sc) {
			return false
		}
	}
	if len(c.Or) == 0 {
		return true
	}
	for _, sc := range c.Or {
		if check(sc) {
			return true
		}
	}
	return false
}

// IsValid reports whether the simple condition has a usable tag and a known
// operator.
func IsValid(c types.SimpleCondition) bool {
	return c.Tag.IsValid() && c.Operator <= types.IsDefined
}

// Validate returns an error naming every invalid sub-condition of c, or nil.
func Validate(c types.Condition) error {
	var problems []string
	check := func(group string, list []types.SimpleCondition) {
		for i, sc := range list {
			if !sc.Tag.IsValid() {
				problems = append(problems, fmt.Sprintf("%s[%d]: fact tag is not valid", group, i))
			}
			if sc.Operator > types.IsDefined {
				problems = append(problems, fmt.Sprintf("%s[%d]: unknown operator %d", group, i, sc.Operator))
			}
		}
	}
	check("and", c.And)
	check("or", c.Or)
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("invalid condition: %s", strings.Join(problems, "; "))
}
