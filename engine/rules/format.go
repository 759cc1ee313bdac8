package rules

import (
	"fmt"
	"strings"

	"github.com/nathoo/factcore/types"
)

// operatorSymbols is indexed by types.Operator.
var operatorSymbols = [...]string{
	types.Equals:         "==",
	types.NotEquals:      "!=",
	types.Greater:        ">",
	types.GreaterOrEqual: ">=",
	types.Less:           "<",
	types.LessOrEqual:    "<=",
	types.IsUndefined:    "undefined",
	types.IsDefined:      "defined",
}

var operatorNames = map[string]types.Operator{
	"==":             types.Equals,
	"=":              types.Equals,
	"eq":             types.Equals,
	"equals":         types.Equals,
	"!=":             types.NotEquals,
	"ne":             types.NotEquals,
	"notequals":      types.NotEquals,
	">":              types.Greater,
	"gt":             types.Greater,
	"greater":        types.Greater,
	">=":             types.GreaterOrEqual,
	"ge":             types.GreaterOrEqual,
	"greaterorequal": types.GreaterOrEqual,
	"<":              types.Less,
	"lt":             types.Less,
	"less":           types.Less,
	"<=":             types.LessOrEqual,
	"le":             types.LessOrEqual,
	"lessorequal":    types.LessOrEqual,
	"undefined":      types.IsUndefined,
	"isundefined":    types.IsUndefined,
	"defined":        types.IsDefined,
	"isdefined":      types.IsDefined,
}

// ParseOperator accepts symbols (">=") and names ("GreaterOrEqual"),
// case-insensitively.
func ParseOperator(s string) (types.Operator, bool) {
	op, ok := operatorNames[strings.ToLower(strings.TrimSpace(s))]
	return op, ok
}

// OperatorString returns the symbol for op.
func OperatorString(op types.Operator) string {
	if int(op) < len(operatorSymbols) {
		return operatorSymbols[op]
	}
	return fmt.Sprintf("Operator(%d)", op)
}

// UsesValue reports whether op compares against the wanted value.
func UsesValue(op types.Operator) bool {
	return op != types.IsUndefined && op != types.IsDefined
}

// SimpleString renders "Quest.Step >= 3" or "Quest.Step defined".
func SimpleString(c types.SimpleCondition) string {
	if !UsesValue(c.Operator) {
		return fmt.Sprintf("%s %s", c.Tag, OperatorString(c.Operator))
	}
	return fmt.Sprintf("%s %s %d", c.Tag, OperatorString(c.Operator), c.Wanted)
}

// ConditionString renders a compound condition on one line.
func ConditionString(c types.Condition) string {
	join := func(list []types.SimpleCondition, sep string) string {
		parts := make([]string, len(list))
		for i, sc := range list {
			parts[i] = SimpleString(sc)
		}
		return strings.Join(parts, sep)
	}

	switch {
	case len(c.And) == 0 && len(c.Or) == 0:
		return "(always)"
	case len(c.Or) == 0:
		return "all(" + join(c.And, ", ") + ")"
	case len(c.And) == 0:
		return "any(" + join(c.Or, ", ") + ")"
	default:
		return "all(" + join(c.And, ", ") + ") and any(" + join(c.Or, ", ") + ")"
	}
}
