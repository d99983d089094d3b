package openapi

import (
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formflow/pkg/document"
)

// constraintRules maps a property schema's constraints onto validation
// rules. Numeric bounds become comparison triggers (the rule fires when the
// value breaks the bound); everything else becomes a requirement.
func constraintRules(name string, schema *openapi3.Schema, required bool) []document.ValidationRule {
	label := schema.Title
	if label == "" {
		label = humanize(name)
	}

	var rules []document.ValidationRule
	add := func(operator string, value any, message string) {
		rules = append(rules, document.ValidationRule{
			Operator: operator,
			Value:    value,
			Message:  message,
		})
	}

	if required {
		add("isNotEmpty", nil, fmt.Sprintf("%s is required", label))
	}

	if schema.Min != nil {
		if schema.ExclusiveMin {
			add("<=", *schema.Min, fmt.Sprintf("%s must be greater than %v", label, *schema.Min))
		} else {
			add("<", *schema.Min, fmt.Sprintf("%s must be at least %v", label, *schema.Min))
		}
	}
	if schema.Max != nil {
		if schema.ExclusiveMax {
			add(">=", *schema.Max, fmt.Sprintf("%s must be less than %v", label, *schema.Max))
		} else {
			add(">", *schema.Max, fmt.Sprintf("%s must be at most %v", label, *schema.Max))
		}
	}

	if schema.MinLength > 0 {
		add("matches", fmt.Sprintf("^.{%d,}$", schema.MinLength),
			fmt.Sprintf("%s must be at least %d characters", label, schema.MinLength))
	}
	if schema.MaxLength != nil {
		add("matches", fmt.Sprintf("^.{0,%d}$", *schema.MaxLength),
			fmt.Sprintf("%s must be at most %d characters", label, *schema.MaxLength))
	}
	if schema.Pattern != "" {
		add("matches", schema.Pattern, fmt.Sprintf("%s has an invalid format", label))
	}

	if len(schema.Enum) > 0 {
		add("in", append([]any(nil), schema.Enum...),
			fmt.Sprintf("%s must be one of the listed values", label))
	}

	if op := formatOperator(schema); op != "" {
		add(op, nil, fmt.Sprintf("%s has an invalid format", label))
	}

	return rules
}

// formatOperator maps schema formats and numeric types onto the catalog's
// format checks.
func formatOperator(schema *openapi3.Schema) string {
	switch schema.Format {
	case "email":
		return "isEmail"
	case "uri", "url":
		return "isUrl"
	case "date", "date-time":
		return "isDate"
	}
	switch schemaType(schema) {
	case "integer":
		return "isInteger"
	case "number":
		return "isNumber"
	}
	return ""
}
