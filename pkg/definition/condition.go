package definition

import (
	"context"
	"reflect"
	"strings"

	"github.com/Grazulex/flowpipe-go/pkg/flowpipe"
)

// operators supported by declarative conditions. This is a deliberately small
// fixed set, not an expression language.
var operators = map[string]struct{}{
	"equals":     {},
	"not_equals": {},
	"gt":         {},
	"gte":        {},
	"lt":         {},
	"lte":        {},
	"contains":   {},
	"truthy":     {},
}

// KnownOperator reports whether name is a supported condition operator.
func KnownOperator(name string) bool {
	_, ok := operators[name]

	return ok
}

// Condition turns the declarative form into a flowpipe condition. Unknown
// operators evaluate false; the validator reports them before a build.
func (c ConditionDef) Condition() flowpipe.Condition {
	return flowpipe.ConditionFunc(func(ctx context.Context, payload any) bool {
		return c.evaluate(payload)
	})
}

func (c ConditionDef) evaluate(payload any) bool {
	operand := payload
	if c.Field != "" {
		fields, ok := payload.(map[string]any)
		if !ok {
			return false
		}

		operand, ok = fields[c.Field]
		if !ok {
			return false
		}
	}

	switch c.Operator {
	case "equals":
		return looseEqual(operand, c.Value)
	case "not_equals":
		return !looseEqual(operand, c.Value)
	case "gt", "gte", "lt", "lte":
		return compareOrdered(c.Operator, operand, c.Value)
	case "contains":
		return contains(operand, c.Value)
	case "truthy":
		return truthy(operand)
	default:
		return false
	}
}

// looseEqual compares with numeric coercion so that a YAML 2 matches an int,
// int64 or float64 payload value alike.
func looseEqual(a, b any) bool {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af == bf
		}
	}

	return reflect.DeepEqual(a, b)
}

func compareOrdered(op string, a, b any) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if !aok || !bok {
		return false
	}

	switch op {
	case "gt":
		return af > bf
	case "gte":
		return af >= bf
	case "lt":
		return af < bf
	case "lte":
		return af <= bf
	default:
		return false
	}
}

func contains(haystack, needle any) bool {
	switch h := haystack.(type) {
	case string:
		n, ok := needle.(string)

		return ok && strings.Contains(h, n)
	case []any:
		for _, item := range h {
			if looseEqual(item, needle) {
				return true
			}
		}

		return false
	case map[string]any:
		key, ok := needle.(string)
		if !ok {
			return false
		}
		_, present := h[key]

		return present
	default:
		return false
	}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		if f, ok := toFloat(v); ok {
			return f != 0
		}

		return true
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
