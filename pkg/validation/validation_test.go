package validation_test

import (
	"testing"
	"time"

	"github.com/goliatone/go-formflow/pkg/document"
	"github.com/goliatone/go-formflow/pkg/validation"
)

func fixedEngine(t *testing.T, now time.Time) *validation.Engine {
	t.Helper()
	return validation.New(validation.WithClock(func() time.Time { return now }))
}

func TestComparisonOperatorsAreFailureTriggers(t *testing.T) {
	t.Parallel()

	engine := validation.New()
	rule := document.ValidationRule{
		Operator: ">",
		Value:    "65",
		Message:  "too old for this plan",
	}

	// `age > 65` configured as a validation rule means "fail when age > 65" —
	// the opposite framing from navigation's "route when true".
	if failure := engine.Evaluate(rule, 70, nil); failure == nil {
		t.Fatalf("expected 70 > 65 to trigger a failure")
	}
	if failure := engine.Evaluate(rule, 40, nil); failure != nil {
		t.Fatalf("expected 40 to pass, got %+v", failure)
	}
}

func TestBetweenScenario(t *testing.T) {
	t.Parallel()

	engine := validation.New()
	rule := document.ValidationRule{
		Operator: "between",
		Value:    []any{"10", "20"},
		Message:  "out of range",
	}

	if failure := engine.Evaluate(rule, 15, nil); failure != nil {
		t.Fatalf("expected 15 to pass, got %+v", failure)
	}
	failure := engine.Evaluate(rule, 25, nil)
	if failure == nil {
		t.Fatalf("expected 25 to fail")
	}
	if failure.Message != "out of range" {
		t.Fatalf("message = %q, want %q", failure.Message, "out of range")
	}
}

func TestFieldSubstitution(t *testing.T) {
	t.Parallel()

	engine := validation.New()
	rule := document.ValidationRule{
		Field:    "other",
		Operator: "isNotEmpty",
		Message:  "other field required",
	}

	form := map[string]any{"other": ""}
	if failure := engine.Evaluate(rule, "this value is ignored", form); failure == nil {
		t.Fatalf("expected the substituted field's emptiness to fail")
	}

	form["other"] = "present"
	if failure := engine.Evaluate(rule, "", form); failure != nil {
		t.Fatalf("expected pass after substitution, got %+v", failure)
	}
}

func TestConditionGuardSkipsRule(t *testing.T) {
	t.Parallel()

	engine := validation.New()
	rule := document.ValidationRule{
		Operator:  "isNotEmpty",
		Message:   "company name required",
		Condition: `accountType == "business"`,
	}

	personal := map[string]any{"accountType": "personal"}
	if failure := engine.Evaluate(rule, "", personal); failure != nil {
		t.Fatalf("guarded rule must be skipped, got %+v", failure)
	}

	business := map[string]any{"accountType": "business"}
	if failure := engine.Evaluate(rule, "", business); failure == nil {
		t.Fatalf("expected the rule to run when the guard holds")
	}
}

func TestEmptyComplementarity(t *testing.T) {
	t.Parallel()

	engine := validation.New()
	values := []any{
		nil,
		"",
		"   ",
		"text",
		0,
		42,
		[]any{},
		[]any{"a"},
		map[string]any{},
		true,
	}

	for _, value := range values {
		empty := engine.Evaluate(document.ValidationRule{Operator: "isEmpty", Message: "m"}, value, nil)
		notEmpty := engine.Evaluate(document.ValidationRule{Operator: "isNotEmpty", Message: "m"}, value, nil)
		// isEmpty passing must coincide with isNotEmpty failing, for every
		// value, including an empty array.
		if (empty == nil) == (notEmpty == nil) {
			t.Fatalf("isEmpty/isNotEmpty not complementary for %#v", value)
		}
	}
}

func TestInvalidRegexFailsClosed(t *testing.T) {
	t.Parallel()

	engine := validation.New()
	rules := []document.ValidationRule{
		{Operator: "matches", Value: "([", Message: "bad pattern"},
		{Operator: "isNotEmpty", Message: "required"},
	}

	// The broken rule converts to its own failure and never aborts the list.
	failures := engine.EvaluateAll(rules, "value", nil)
	if len(failures) != 1 {
		t.Fatalf("expected exactly the regex failure, got %+v", failures)
	}
	if failures[0].Message != "bad pattern" {
		t.Fatalf("message = %q", failures[0].Message)
	}
}

func TestUnknownOperatorFailsClosed(t *testing.T) {
	t.Parallel()

	engine := validation.New()
	failure := engine.Evaluate(document.ValidationRule{Operator: "summon", Message: "cannot summon"}, "x", nil)
	if failure == nil || failure.Message != "cannot summon" {
		t.Fatalf("expected fail-closed for unknown operator, got %+v", failure)
	}
}

func TestSeverityDefaultsToError(t *testing.T) {
	t.Parallel()

	engine := validation.New()
	failure := engine.Evaluate(document.ValidationRule{Operator: "isNotEmpty", Message: "required"}, "", nil)
	if failure == nil || failure.Severity != document.SeverityError {
		t.Fatalf("severity = %+v, want error", failure)
	}

	warn := engine.Evaluate(document.ValidationRule{
		Operator: "isNotEmpty", Message: "consider filling this", Severity: document.SeverityWarning,
	}, "", nil)
	if warn == nil || warn.Severity != document.SeverityWarning {
		t.Fatalf("severity = %+v, want warning", warn)
	}
}

func TestAgeBoundaryConsistency(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	engine := fixedEngine(t, now)

	// Exactly 30 approximation-years before "now": 30 * 365.25 days.
	birth := now.Add(-time.Duration(30 * 365.25 * 24 * float64(time.Hour)))

	cases := []struct {
		name string
		rule document.ValidationRule
	}{
		{name: "ageGreaterThan 29", rule: document.ValidationRule{Operator: "ageGreaterThan", Value: 29, Message: "m"}},
		{name: "ageLessThan 31", rule: document.ValidationRule{Operator: "ageLessThan", Value: 31, Message: "m"}},
		{name: "ageBetween 30 30", rule: document.ValidationRule{Operator: "ageBetween", Value: []any{30, 30}, Message: "m"}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if failure := engine.Evaluate(tc.rule, birth, nil); failure != nil {
				t.Fatalf("expected a 30-year-old to pass %s, got %+v", tc.rule.Operator, failure)
			}
		})
	}

	if failure := engine.Evaluate(document.ValidationRule{Operator: "ageGreaterThan", Value: 30, Message: "m"}, birth, nil); failure == nil {
		t.Fatalf("a 30-year-old is not strictly older than 30")
	}
}

func TestDateOperators(t *testing.T) {
	t.Parallel()

	engine := validation.New()

	before := engine.Evaluate(document.ValidationRule{
		Operator: "dateBefore", Value: "2030-01-01", Message: "deadline passed",
	}, "2026-06-01", nil)
	if before != nil {
		t.Fatalf("expected 2026-06-01 to be before 2030-01-01, got %+v", before)
	}

	after := engine.Evaluate(document.ValidationRule{
		Operator: "dateBefore", Value: "2020-01-01", Message: "deadline passed",
	}, "2026-06-01", nil)
	if after == nil {
		t.Fatalf("expected 2026-06-01 to fail dateBefore 2020-01-01")
	}

	equals := engine.Evaluate(document.ValidationRule{
		Operator: "dateEquals", Value: "2026-06-01", Message: "wrong day",
	}, "2026-06-01", nil)
	if equals != nil {
		t.Fatalf("expected equal dates to pass, got %+v", equals)
	}
}

func TestCrossFieldOperators(t *testing.T) {
	t.Parallel()

	engine := validation.New()
	form := map[string]any{"password": "hunter2", "confirm": "hunter2"}

	rule := document.ValidationRule{Operator: "equalsField", Value: "password", Message: "passwords differ"}
	if failure := engine.Evaluate(rule, form["confirm"], form); failure != nil {
		t.Fatalf("expected matching passwords to pass, got %+v", failure)
	}

	form["confirm"] = "other"
	if failure := engine.Evaluate(rule, form["confirm"], form); failure == nil {
		t.Fatalf("expected mismatched passwords to fail")
	}
}
