package validation

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/goliatone/go-formflow/pkg/condition"
	"github.com/goliatone/go-formflow/pkg/document"
)

// Failure reports one failed validation rule.
type Failure struct {
	Message  string
	Severity document.Severity
}

// Engine evaluates validation rules. The clock is injectable so age checks
// are deterministic under test.
type Engine struct {
	logger *slog.Logger
	now    func() time.Time
}

// Option customises an Engine.
type Option func(*Engine)

// WithLogger injects the diagnostics logger for contained rule errors.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock overrides the time source used by date and age operators.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New constructs an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs a single rule against value. When rule.Field names another
// node, that node's value from formValues is checked instead. A guard
// condition that evaluates false skips the rule entirely. The return is nil
// on pass and the rule's failure on fail.
//
// Anything that goes wrong inside the rule — unknown operator, malformed
// operand, an invalid regex, a panic — is contained and converted into the
// rule's configured failure message; one broken rule never aborts the rest
// of the list.
func (e *Engine) Evaluate(rule document.ValidationRule, value any, formValues map[string]any) *Failure {
	if rule.Field != "" {
		value = formValues[rule.Field]
	}
	if rule.Condition != "" && !condition.Evaluate(rule.Condition, formValues) {
		return nil
	}

	holds, err := e.runOperator(rule, value, formValues)
	if err != nil {
		e.logger.Error("validation rule errored; treating as failed",
			"operator", rule.Operator, "err", err)
		return e.failure(rule)
	}

	op, _ := Lookup(rule.Operator)
	if op.failWhenTrue {
		if holds {
			return e.failure(rule)
		}
		return nil
	}
	if !holds {
		return e.failure(rule)
	}
	return nil
}

// EvaluateAll runs every rule in order and collects the failures.
func (e *Engine) EvaluateAll(rules []document.ValidationRule, value any, formValues map[string]any) []Failure {
	var failures []Failure
	for _, rule := range rules {
		if failure := e.Evaluate(rule, value, formValues); failure != nil {
			failures = append(failures, *failure)
		}
	}
	return failures
}

// ValidateBlock evaluates a block's rules against the flat value map, using
// the block's fieldName to pick the value under test.
func (e *Engine) ValidateBlock(block document.Node, formValues map[string]any) []Failure {
	return e.EvaluateAll(block.ValidationRules, formValues[block.FieldName], formValues)
}

func (e *Engine) runOperator(rule document.ValidationRule, value any, formValues map[string]any) (holds bool, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			holds = false
			err = &panicError{value: recovered}
		}
	}()

	op, ok := Lookup(rule.Operator)
	if !ok {
		return false, &unknownOperatorError{name: rule.Operator}
	}
	return op.eval(value, rule.Value, env{now: e.now(), form: formValues})
}

func (e *Engine) failure(rule document.ValidationRule) *Failure {
	severity := rule.Severity
	if severity == "" {
		severity = document.SeverityError
	}
	return &Failure{Message: rule.Message, Severity: severity}
}

type unknownOperatorError struct {
	name string
}

func (e *unknownOperatorError) Error() string {
	return "validation: unknown operator " + e.name
}

type panicError struct {
	value any
}

func (e *panicError) Error() string {
	return fmt.Sprintf("validation: rule evaluation panicked: %v", e.value)
}
