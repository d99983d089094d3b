// Package navigation resolves which node a form run visits next. The rule
// scan itself is deliberately dumb: first condition that holds wins, in
// list order, with no validation of the target. Fallback behaviour for
// unmatched or dangling rules lives in Resolver, outside the engine
// contract, so hosts share one documented policy.
package navigation

import (
	"io"
	"log/slog"

	"github.com/goliatone/go-formflow/pkg/condition"
	"github.com/goliatone/go-formflow/pkg/document"
)

// Resolution is the outcome of a navigation decision.
type Resolution struct {
	Target   string
	IsPage   bool
	Terminal bool
}

// Resolve scans rules in list order and returns the resolution of the first
// rule whose condition evaluates true. A default rule's condition is treated
// as always-true; beyond that, order is authoritative — callers are
// responsible for placing default rules last. The second return value is
// false when no rule matched; the caller applies its own fallback.
//
// Target ids are not validated here: a rule pointing at a deleted node still
// resolves to that id.
func Resolve(rules []document.NavigationRule, values map[string]any) (Resolution, bool) {
	for _, rule := range rules {
		if !matches(rule, values) {
			continue
		}
		return resolutionFor(rule), true
	}
	return Resolution{}, false
}

func matches(rule document.NavigationRule, values map[string]any) bool {
	if rule.IsDefault {
		return true
	}
	return condition.Evaluate(rule.Condition, values)
}

func resolutionFor(rule document.NavigationRule) Resolution {
	return Resolution{
		Target:   rule.Target,
		IsPage:   rule.IsPageTarget,
		Terminal: rule.Target == document.SubmitTarget,
	}
}

// Resolver binds the engine to a tree snapshot and layers the fallback
// policy on top of Resolve:
//
//   - a matching rule whose target id is absent from the snapshot (a
//     dangling reference left behind by a deletion) is treated as a
//     non-match and scanning continues;
//   - when no rule matches, the successor is the next block on the same
//     page, then the next page in document order, then terminal submit.
type Resolver struct {
	tree   *document.Tree
	logger *slog.Logger
}

// Option customises a Resolver.
type Option func(*Resolver)

// WithLogger injects the logger used to surface skipped dangling rules.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver builds a Resolver over an immutable tree snapshot.
func NewResolver(tree *document.Tree, opts ...Option) *Resolver {
	r := &Resolver{
		tree:   tree,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Next resolves the successor of blockID for the given values.
func (r *Resolver) Next(blockID string, values map[string]any) Resolution {
	block, ok := r.tree.Node(blockID)
	if ok {
		for _, rule := range block.NavigationRules {
			if !matches(rule, values) {
				continue
			}
			if rule.Target != document.SubmitTarget && !r.tree.Contains(rule.Target) {
				r.logger.Warn("skipping navigation rule with dangling target",
					"block", blockID, "target", rule.Target)
				continue
			}
			return resolutionFor(rule)
		}
	}
	return r.sequentialNext(blockID)
}

// sequentialNext is the rule-free fallback: next block on the page, then
// the next page, then submit.
func (r *Resolver) sequentialNext(blockID string) Resolution {
	pageID, ok := r.enclosingPage(blockID)
	if !ok {
		return Resolution{Target: document.SubmitTarget, Terminal: true}
	}

	blocks := r.tree.BlockIDs(pageID)
	for i, id := range blocks {
		if id == blockID && i+1 < len(blocks) {
			return Resolution{Target: blocks[i+1]}
		}
	}

	pages := r.tree.PageIDs()
	for i, id := range pages {
		if id == pageID && i+1 < len(pages) {
			return Resolution{Target: pages[i+1], IsPage: true}
		}
	}
	return Resolution{Target: document.SubmitTarget, Terminal: true}
}

func (r *Resolver) enclosingPage(id string) (string, bool) {
	for {
		node, ok := r.tree.Node(id)
		if !ok {
			return "", false
		}
		if node.Type == document.NodeTypePage {
			return id, true
		}
		parent, ok := r.tree.Parent(id)
		if !ok {
			return "", false
		}
		id = parent
	}
}
