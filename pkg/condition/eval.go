package condition

import (
	"fmt"
	"strconv"
	"strings"
)

// Expr is a compiled condition ready for repeated evaluation against flat
// value maps. Compiling once and evaluating many times keeps parsing out of
// the navigation hot path.
type Expr interface {
	Eval(values map[string]any) bool
}

type exprTrue struct{}

func (exprTrue) Eval(map[string]any) bool { return true }

type exprNever struct{}

func (exprNever) Eval(map[string]any) bool { return false }

type exprCompare struct {
	rule Rule
}

func (e exprCompare) Eval(values map[string]any) bool {
	current := values[e.rule.Field]
	return compare(e.rule.Operator, current, e.rule.Value)
}

// Compile parses the condition string into an Expr. The "true" literal (and
// the empty rule it denotes) compiles to an always-true expression; input
// that does not match the grammar compiles to a never-matching expression so
// malformed rules degrade to a non-match instead of an error.
func Compile(input string) Expr {
	rule, ok := Parse(input)
	if !ok {
		return exprNever{}
	}
	return CompileRule(rule)
}

// CompileRule builds an Expr from an already-parsed rule.
func CompileRule(rule Rule) Expr {
	if rule.IsDefault {
		return exprTrue{}
	}
	return exprCompare{rule: rule}
}

// Evaluate is the convenience form of Compile followed by Eval. Comparisons
// are intentionally permissive for backward compatibility: `"5" == 5` is
// true, ordering operators attempt a numeric cast before falling back to
// string order, and the substring operators stringify both sides.
func Evaluate(input string, values map[string]any) bool {
	return Compile(input).Eval(values)
}

func compare(op Operator, current any, operand string) bool {
	switch op {
	case OpEqual:
		return looseEqual(current, operand)
	case OpNotEqual:
		return !looseEqual(current, operand)
	case OpGreater, OpGreaterEqual, OpLess, OpLessEqual:
		return looseOrder(op, current, operand)
	case OpContains:
		return strings.Contains(coerceString(current), operand)
	case OpStartsWith:
		return strings.HasPrefix(coerceString(current), operand)
	case OpEndsWith:
		return strings.HasSuffix(coerceString(current), operand)
	default:
		return false
	}
}

func looseEqual(current any, operand string) bool {
	if left, ok := coerceNumber(current); ok {
		if right, err := strconv.ParseFloat(strings.TrimSpace(operand), 64); err == nil {
			return left == right
		}
	}
	return coerceString(current) == operand
}

func looseOrder(op Operator, current any, operand string) bool {
	left, leftOK := coerceNumber(current)
	right, err := strconv.ParseFloat(strings.TrimSpace(operand), 64)
	if leftOK && err == nil {
		switch op {
		case OpGreater:
			return left > right
		case OpGreaterEqual:
			return left >= right
		case OpLess:
			return left < right
		case OpLessEqual:
			return left <= right
		}
	}

	// Lexicographic fallback when either side resists a numeric cast.
	ls, rs := coerceString(current), operand
	switch op {
	case OpGreater:
		return ls > rs
	case OpGreaterEqual:
		return ls >= rs
	case OpLess:
		return ls < rs
	case OpLessEqual:
		return ls <= rs
	}
	return false
}

func coerceNumber(value any) (float64, bool) {
	if value == nil {
		return 0, false
	}
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func coerceString(value any) string {
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(value)
	}
}
