// Package formflow re-exports the document, navigation, validation, and
// flow-graph entry points so simple hosts can depend on a single package.
package formflow

import (
	"context"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formflow/pkg/document"
	"github.com/goliatone/go-formflow/pkg/flowgraph"
	"github.com/goliatone/go-formflow/pkg/navigation"
	"github.com/goliatone/go-formflow/pkg/openapi"
	"github.com/goliatone/go-formflow/pkg/validation"
)

// Document is the serialization envelope: tree plus localizations and theme.
type Document = document.Document

// Tree is an immutable document tree snapshot.
type Tree = document.Tree

// Node is one entry in the document tree.
type Node = document.Node

// NavigationRule routes a block to its successor.
type NavigationRule = document.NavigationRule

// ValidationRule constrains a field value.
type ValidationRule = document.ValidationRule

// Resolution is the outcome of a navigation decision.
type Resolution = navigation.Resolution

// Failure reports one failed validation rule.
type Failure = validation.Failure

// Graph is a positioned flow graph for a drawing host.
type Graph = flowgraph.Graph

// NewTree builds a single-node tree holding root.
func NewTree(root Node, opts ...document.TreeOption) *Tree {
	return document.New(root, opts...)
}

// ParseDocument decodes a JSON document envelope.
func ParseDocument(data []byte, opts ...document.TreeOption) (*Document, error) {
	return document.ParseDocument(data, opts...)
}

// NewResolver binds the navigation fallback policy to a tree snapshot.
func NewResolver(tree *Tree, opts ...navigation.Option) *navigation.Resolver {
	return navigation.NewResolver(tree, opts...)
}

// NewValidator constructs a validation engine.
func NewValidator(opts ...validation.Option) *validation.Engine {
	return validation.New(opts...)
}

// BuildGraph derives a positioned flow graph for a tree snapshot with a
// fresh builder; hosts that relayout incrementally should hold their own
// flowgraph.Builder.
func BuildGraph(tree *Tree, opts ...flowgraph.Option) Graph {
	return flowgraph.NewBuilder(opts...).Build(tree)
}

// DetectCycles reports navigation cycles as path strings.
func DetectCycles(tree *Tree) []string {
	return flowgraph.DetectCycles(tree)
}

// ImportOpenAPI converts an OpenAPI operation's request schema into a
// document.
func ImportOpenAPI(ctx context.Context, data []byte, operationID string, opts ...openapi.Option) (*Document, error) {
	return openapi.NewImporter(opts...).Import(ctx, data, operationID)
}

// ResolveTheme resolves a document's theme reference through a go-theme
// selector, overlaying document-level token overrides.
func ResolveTheme(doc *Document, selector theme.ThemeSelector) (*theme.Selection, error) {
	return document.ResolveTheme(doc, selector)
}
