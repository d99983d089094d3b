// Package validation evaluates a field's typed validation rules against a
// fixed operator catalog. Its comparison semantics deliberately invert the
// navigation engine's: a comparison rule such as `age > 65` is a failure
// trigger ("fail when age > 65"), not a routing match. The two evaluators
// therefore share no code even where operator symbols overlap.
package validation

import "time"

// Category groups catalog operators.
type Category string

const (
	CategoryComparison Category = "comparison"
	CategoryString     Category = "string"
	CategoryArray      Category = "array"
	CategoryLogical    Category = "logical"
	CategoryFormat     Category = "format"
	CategoryDate       Category = "date"
)

// ValueShape describes the operand an operator expects: none (format and
// logical checks), a single scalar, an array, a reference to another field
// (variable), or a mixed two-element range.
type ValueShape string

const (
	ShapeNone     ValueShape = "none"
	ShapeSingle   ValueShape = "single"
	ShapeArray    ValueShape = "array"
	ShapeVariable ValueShape = "variable"
	ShapeMixed    ValueShape = "mixed"
)

// env carries per-evaluation context into operator functions.
type env struct {
	now  time.Time
	form map[string]any
}

// Operator is one catalog entry. eval reports whether the operator's check
// holds for (value, operand); the engine applies polarity afterwards.
type Operator struct {
	Name     string
	Category Category
	Shape    ValueShape

	// failWhenTrue marks the comparison symbol operators, whose check is a
	// failure trigger. Every other operator states a requirement and fails
	// when its check does not hold.
	failWhenTrue bool

	eval func(value, operand any, e env) (bool, error)
}

var catalog = buildCatalog()

func buildCatalog() map[string]Operator {
	ops := []Operator{
		// Comparison triggers: fail when the condition holds.
		{Name: "==", Category: CategoryComparison, Shape: ShapeSingle, failWhenTrue: true, eval: evalEqual},
		{Name: "!=", Category: CategoryComparison, Shape: ShapeSingle, failWhenTrue: true, eval: evalNotEqual},
		{Name: ">", Category: CategoryComparison, Shape: ShapeSingle, failWhenTrue: true, eval: evalGreater},
		{Name: ">=", Category: CategoryComparison, Shape: ShapeSingle, failWhenTrue: true, eval: evalGreaterEqual},
		{Name: "<", Category: CategoryComparison, Shape: ShapeSingle, failWhenTrue: true, eval: evalLess},
		{Name: "<=", Category: CategoryComparison, Shape: ShapeSingle, failWhenTrue: true, eval: evalLessEqual},

		// Range requirement: fail when the value falls outside.
		{Name: "between", Category: CategoryComparison, Shape: ShapeMixed, eval: evalBetween},

		// String requirements.
		{Name: "contains", Category: CategoryString, Shape: ShapeSingle, eval: evalContains},
		{Name: "notContains", Category: CategoryString, Shape: ShapeSingle, eval: evalNotContains},
		{Name: "startsWith", Category: CategoryString, Shape: ShapeSingle, eval: evalStartsWith},
		{Name: "endsWith", Category: CategoryString, Shape: ShapeSingle, eval: evalEndsWith},
		{Name: "matches", Category: CategoryString, Shape: ShapeSingle, eval: evalMatches},

		// Array membership.
		{Name: "in", Category: CategoryArray, Shape: ShapeArray, eval: evalIn},
		{Name: "notIn", Category: CategoryArray, Shape: ShapeArray, eval: evalNotIn},

		// Logical checks, no operand.
		{Name: "isEmpty", Category: CategoryLogical, Shape: ShapeNone, eval: evalIsEmpty},
		{Name: "isNotEmpty", Category: CategoryLogical, Shape: ShapeNone, eval: evalIsNotEmpty},
		{Name: "isTrue", Category: CategoryLogical, Shape: ShapeNone, eval: evalIsTrue},
		{Name: "isFalse", Category: CategoryLogical, Shape: ShapeNone, eval: evalIsFalse},

		// Cross-field comparisons; the operand names the other field.
		{Name: "equalsField", Category: CategoryLogical, Shape: ShapeVariable, eval: evalEqualsField},
		{Name: "notEqualsField", Category: CategoryLogical, Shape: ShapeVariable, eval: evalNotEqualsField},

		// Format checks, no operand.
		{Name: "isEmail", Category: CategoryFormat, Shape: ShapeNone, eval: evalIsEmail},
		{Name: "isUrl", Category: CategoryFormat, Shape: ShapeNone, eval: evalIsURL},
		{Name: "isNumber", Category: CategoryFormat, Shape: ShapeNone, eval: evalIsNumber},
		{Name: "isInteger", Category: CategoryFormat, Shape: ShapeNone, eval: evalIsInteger},
		{Name: "isDate", Category: CategoryFormat, Shape: ShapeNone, eval: evalIsDate},
		{Name: "isPhone", Category: CategoryFormat, Shape: ShapeNone, eval: evalIsPhone},

		// Date requirements.
		{Name: "dateEquals", Category: CategoryDate, Shape: ShapeSingle, eval: evalDateEquals},
		{Name: "dateBefore", Category: CategoryDate, Shape: ShapeSingle, eval: evalDateBefore},
		{Name: "dateAfter", Category: CategoryDate, Shape: ShapeSingle, eval: evalDateAfter},
		{Name: "ageGreaterThan", Category: CategoryDate, Shape: ShapeSingle, eval: evalAgeGreaterThan},
		{Name: "ageLessThan", Category: CategoryDate, Shape: ShapeSingle, eval: evalAgeLessThan},
		{Name: "ageBetween", Category: CategoryDate, Shape: ShapeMixed, eval: evalAgeBetween},
	}

	out := make(map[string]Operator, len(ops))
	for _, op := range ops {
		out[op.Name] = op
	}
	return out
}

// Lookup returns the catalog entry for an operator name.
func Lookup(name string) (Operator, bool) {
	op, ok := catalog[name]
	return op, ok
}

// Operators lists the catalog names; handy for hosts building rule editors.
func Operators() []string {
	out := make([]string, 0, len(catalog))
	for name := range catalog {
		out = append(out, name)
	}
	return out
}
