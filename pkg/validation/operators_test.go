package validation_test

import (
	"testing"

	"github.com/goliatone/go-formflow/pkg/document"
	"github.com/goliatone/go-formflow/pkg/validation"
)

// requirementCase exercises a requirement-style operator: pass expects nil,
// fail expects the configured message.
type requirementCase struct {
	name    string
	rule    document.ValidationRule
	value   any
	wantErr bool
}

func TestRequirementOperators(t *testing.T) {
	t.Parallel()

	engine := validation.New()
	cases := []requirementCase{
		{name: "contains pass", rule: document.ValidationRule{Operator: "contains", Value: "@", Message: "m"}, value: "a@b"},
		{name: "contains fail", rule: document.ValidationRule{Operator: "contains", Value: "@", Message: "m"}, value: "ab", wantErr: true},
		{name: "notContains pass", rule: document.ValidationRule{Operator: "notContains", Value: " ", Message: "m"}, value: "nospaces"},
		{name: "notContains fail", rule: document.ValidationRule{Operator: "notContains", Value: " ", Message: "m"}, value: "has space", wantErr: true},
		{name: "startsWith", rule: document.ValidationRule{Operator: "startsWith", Value: "+1", Message: "m"}, value: "+1 555"},
		{name: "endsWith fail", rule: document.ValidationRule{Operator: "endsWith", Value: ".gov", Message: "m"}, value: "site.com", wantErr: true},
		{name: "matches pass", rule: document.ValidationRule{Operator: "matches", Value: "^[A-Z]{2}[0-9]{4}$", Message: "m"}, value: "AB1234"},
		{name: "matches fail", rule: document.ValidationRule{Operator: "matches", Value: "^[A-Z]{2}[0-9]{4}$", Message: "m"}, value: "ab1234", wantErr: true},
		{name: "in pass", rule: document.ValidationRule{Operator: "in", Value: []any{"red", "green", "blue"}, Message: "m"}, value: "green"},
		{name: "in loose numeric", rule: document.ValidationRule{Operator: "in", Value: []any{"1", "2"}, Message: "m"}, value: 2},
		{name: "in fail", rule: document.ValidationRule{Operator: "in", Value: []any{"red"}, Message: "m"}, value: "mauve", wantErr: true},
		{name: "notIn pass", rule: document.ValidationRule{Operator: "notIn", Value: []any{"admin", "root"}, Message: "m"}, value: "alice"},
		{name: "notIn fail", rule: document.ValidationRule{Operator: "notIn", Value: []any{"admin"}, Message: "m"}, value: "admin", wantErr: true},
		{name: "isTrue pass", rule: document.ValidationRule{Operator: "isTrue", Message: "m"}, value: true},
		{name: "isTrue string", rule: document.ValidationRule{Operator: "isTrue", Message: "m"}, value: "true"},
		{name: "isTrue fail", rule: document.ValidationRule{Operator: "isTrue", Message: "m"}, value: false, wantErr: true},
		{name: "isFalse pass", rule: document.ValidationRule{Operator: "isFalse", Message: "m"}, value: false},
		{name: "isFalse fail", rule: document.ValidationRule{Operator: "isFalse", Message: "m"}, value: 1, wantErr: true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			failure := engine.Evaluate(tc.rule, tc.value, nil)
			if tc.wantErr && failure == nil {
				t.Fatalf("expected %s to fail for %#v", tc.rule.Operator, tc.value)
			}
			if !tc.wantErr && failure != nil {
				t.Fatalf("expected %s to pass for %#v, got %+v", tc.rule.Operator, tc.value, failure)
			}
		})
	}
}

func TestFormatOperators(t *testing.T) {
	t.Parallel()

	engine := validation.New()
	cases := []requirementCase{
		{name: "email pass", rule: document.ValidationRule{Operator: "isEmail", Message: "m"}, value: "user@example.com"},
		{name: "email fail", rule: document.ValidationRule{Operator: "isEmail", Message: "m"}, value: "user@", wantErr: true},
		{name: "email no domain dot", rule: document.ValidationRule{Operator: "isEmail", Message: "m"}, value: "user@host", wantErr: true},
		{name: "url pass", rule: document.ValidationRule{Operator: "isUrl", Message: "m"}, value: "https://example.com/path"},
		{name: "url fail", rule: document.ValidationRule{Operator: "isUrl", Message: "m"}, value: "not a url", wantErr: true},
		{name: "number pass", rule: document.ValidationRule{Operator: "isNumber", Message: "m"}, value: "12.5"},
		{name: "number fail", rule: document.ValidationRule{Operator: "isNumber", Message: "m"}, value: "12x", wantErr: true},
		{name: "integer pass", rule: document.ValidationRule{Operator: "isInteger", Message: "m"}, value: "42"},
		{name: "integer fail", rule: document.ValidationRule{Operator: "isInteger", Message: "m"}, value: 42.5, wantErr: true},
		{name: "date pass", rule: document.ValidationRule{Operator: "isDate", Message: "m"}, value: "1996-03-15"},
		{name: "date fail", rule: document.ValidationRule{Operator: "isDate", Message: "m"}, value: "not-a-date", wantErr: true},
		{name: "phone pass", rule: document.ValidationRule{Operator: "isPhone", Message: "m"}, value: "+1 (555) 867-5309"},
		{name: "phone fail short", rule: document.ValidationRule{Operator: "isPhone", Message: "m"}, value: "12345", wantErr: true},
		{name: "phone fail letters", rule: document.ValidationRule{Operator: "isPhone", Message: "m"}, value: "call me", wantErr: true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			failure := engine.Evaluate(tc.rule, tc.value, nil)
			if tc.wantErr && failure == nil {
				t.Fatalf("expected %s to fail for %#v", tc.rule.Operator, tc.value)
			}
			if !tc.wantErr && failure != nil {
				t.Fatalf("expected %s to pass for %#v, got %+v", tc.rule.Operator, tc.value, failure)
			}
		})
	}
}

func TestCatalogShapes(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		category validation.Category
		shape    validation.ValueShape
	}{
		">":          {category: validation.CategoryComparison, shape: validation.ShapeSingle},
		"between":    {category: validation.CategoryComparison, shape: validation.ShapeMixed},
		"matches":    {category: validation.CategoryString, shape: validation.ShapeSingle},
		"in":         {category: validation.CategoryArray, shape: validation.ShapeArray},
		"isEmpty":    {category: validation.CategoryLogical, shape: validation.ShapeNone},
		"isEmail":    {category: validation.CategoryFormat, shape: validation.ShapeNone},
		"ageBetween": {category: validation.CategoryDate, shape: validation.ShapeMixed},
		"equalsField": {
			category: validation.CategoryLogical,
			shape:    validation.ShapeVariable,
		},
	}

	for name, want := range cases {
		op, ok := validation.Lookup(name)
		if !ok {
			t.Fatalf("operator %q missing from catalog", name)
		}
		if op.Category != want.category || op.Shape != want.shape {
			t.Fatalf("%q = {%s %s}, want {%s %s}", name, op.Category, op.Shape, want.category, want.shape)
		}
	}

	if _, ok := validation.Lookup("summon"); ok {
		t.Fatalf("unexpected catalog entry")
	}
}
