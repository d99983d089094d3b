// Package condition implements the legacy infix condition dialect used by
// navigation rules: a single `<identifier> <operator> <value>` clause with
// an optionally quoted value. Strings remain the storage format; parsing
// produces a typed rule so evaluation never re-scans the input.
package condition

import (
	"fmt"
	"strings"
)

// TrueLiteral is the serialized form of an unconditional (default) rule.
// It always evaluates true.
const TrueLiteral = "true"

// Operator enumerates the comparison operators the dialect supports.
type Operator string

const (
	OpEqual        Operator = "=="
	OpNotEqual     Operator = "!="
	OpGreater      Operator = ">"
	OpGreaterEqual Operator = ">="
	OpLess         Operator = "<"
	OpLessEqual    Operator = "<="
	OpContains     Operator = "contains"
	OpStartsWith   Operator = "startsWith"
	OpEndsWith     Operator = "endsWith"
)

var operators = map[string]Operator{
	"==":         OpEqual,
	"!=":         OpNotEqual,
	">":          OpGreater,
	">=":         OpGreaterEqual,
	"<":          OpLess,
	"<=":         OpLessEqual,
	"contains":   OpContains,
	"startsWith": OpStartsWith,
	"endsWith":   OpEndsWith,
}

// Rule is the parsed form of a condition string.
type Rule struct {
	Field    string
	Operator Operator
	Value    string

	// IsDefault marks an unconditional rule; Build serializes it as the
	// literal "true" regardless of the other fields.
	IsDefault bool
}

// Parse matches the `<identifier> <operator> <value>` grammar. The second
// return value reports whether the input matched; callers substitute an
// empty rule when it did not. The "true" literal parses as a default rule.
func Parse(input string) (Rule, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return Rule{}, false
	}
	if trimmed == TrueLiteral {
		return Rule{IsDefault: true}, true
	}

	field, rest, ok := scanIdentifier(trimmed)
	if !ok {
		return Rule{}, false
	}
	opToken, rest, ok := scanToken(rest)
	if !ok {
		return Rule{}, false
	}
	op, ok := operators[opToken]
	if !ok {
		return Rule{}, false
	}

	value := strings.TrimSpace(rest)
	if value == "" {
		return Rule{}, false
	}
	return Rule{Field: field, Operator: op, Value: unquote(value)}, true
}

// Build is the inverse of Parse. Default rules always serialize to "true";
// values are emitted double-quoted so Build(Parse(s)) == s holds for every
// canonical string s that Build produces.
func Build(rule Rule) string {
	if rule.IsDefault {
		return TrueLiteral
	}
	return fmt.Sprintf("%s %s %q", rule.Field, rule.Operator, rule.Value)
}

func scanIdentifier(input string) (ident, rest string, ok bool) {
	idx := strings.IndexAny(input, " \t")
	if idx <= 0 {
		return "", "", false
	}
	ident = input[:idx]
	if _, clash := operators[ident]; clash {
		return "", "", false
	}
	return ident, strings.TrimLeft(input[idx:], " \t"), true
}

func scanToken(input string) (token, rest string, ok bool) {
	if input == "" {
		return "", "", false
	}
	idx := strings.IndexAny(input, " \t")
	if idx < 0 {
		return input, "", true
	}
	return input[:idx], strings.TrimLeft(input[idx:], " \t"), true
}

func unquote(value string) string {
	if len(value) >= 2 {
		first := value[0]
		last := value[len(value)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return value[1 : len(value)-1]
		}
	}
	return value
}
