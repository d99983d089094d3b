// Package openapi imports an OpenAPI 3 operation's request schema as a
// document tree: one page per top-level object property, one block per
// scalar property, with schema constraints mapped onto validation rules.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formflow/internal/sanitize"
	"github.com/goliatone/go-formflow/pkg/document"
)

// Importer converts OpenAPI operations into documents.
type Importer struct {
	logger      *slog.Logger
	resolveRefs bool
}

// Option customises an Importer.
type Option func(*Importer)

// WithLogger injects the diagnostics logger.
func WithLogger(logger *slog.Logger) Option {
	return func(im *Importer) {
		if logger != nil {
			im.logger = logger
		}
	}
}

// WithReferenceResolution toggles eager $ref resolution; on by default.
func WithReferenceResolution(enabled bool) Option {
	return func(im *Importer) {
		im.resolveRefs = enabled
	}
}

// NewImporter constructs an Importer.
func NewImporter(opts ...Option) *Importer {
	im := &Importer{
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		resolveRefs: true,
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Import parses raw OpenAPI 3 data and builds a document from the request
// schema of the operation named by operationID. An empty operationID picks
// the first operation carrying a request body, in path order.
func (im *Importer) Import(ctx context.Context, data []byte, operationID string) (*document.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("openapi import: document payload is empty")
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: im.resolveRefs,
	}
	spec, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi import: load document: %w", err)
	}
	if im.resolveRefs {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi import: validate: %w", err)
		}
	}

	op, opID, err := findOperation(spec, operationID)
	if err != nil {
		return nil, err
	}
	schema := requestSchema(op)
	if schema == nil {
		return nil, fmt.Errorf("openapi import: operation %q has no usable request schema", opID)
	}

	tree := im.buildTree(opID, op, schema)
	return &document.Document{Tree: tree}, nil
}

func findOperation(spec *openapi3.T, operationID string) (*openapi3.Operation, string, error) {
	if spec.Paths == nil || spec.Paths.Len() == 0 {
		return nil, "", errors.New("openapi import: document does not contain any paths")
	}

	paths := make([]string, 0, spec.Paths.Len())
	for path := range spec.Paths.Map() {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		item := spec.Paths.Map()[path]
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op == nil {
				continue
			}
			opID := op.OperationID
			if opID == "" {
				opID = strings.ToLower(method) + ":" + path
			}
			if operationID != "" && opID != operationID {
				continue
			}
			if operationID == "" && op.RequestBody == nil {
				continue
			}
			return op, opID, nil
		}
	}

	if operationID != "" {
		return nil, "", fmt.Errorf("openapi import: operation %q not found", operationID)
	}
	return nil, "", errors.New("openapi import: no operation with a request body")
}

// requestSchema picks the operation's request body schema, preferring the
// form-capable media types the way browsers submit them.
func requestSchema(op *openapi3.Operation) *openapi3.Schema {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	content := op.RequestBody.Value.Content
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok && mt.Schema != nil && mt.Schema.Value != nil {
			return mt.Schema.Value
		}
	}
	for _, mt := range content {
		if mt.Schema != nil && mt.Schema.Value != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

// buildTree lays the schema out as section -> pages -> blocks. Top-level
// object properties each become a page; scalar top-level properties are
// gathered onto a leading "details" page.
func (im *Importer) buildTree(opID string, op *openapi3.Operation, schema *openapi3.Schema) *document.Tree {
	label := op.Summary
	if label == "" {
		label = humanize(opID)
	}
	tree := document.New(document.Node{
		ID:    slug(opID),
		Type:  document.NodeTypeSection,
		Name:  opID,
		Label: sanitize.Text(label),
	}, document.WithLogger(im.logger))

	required := stringSet(schema.Required)

	type page struct {
		name   string
		schema *openapi3.Schema
	}
	var pages []page
	var scalars []string
	for _, name := range sortedPropertyNames(schema) {
		prop := schema.Properties[name]
		if prop == nil || prop.Value == nil {
			continue
		}
		if schemaType(prop.Value) == "object" {
			pages = append(pages, page{name: name, schema: prop.Value})
		} else {
			scalars = append(scalars, name)
		}
	}

	rootID := tree.RootID()
	if len(scalars) > 0 {
		pageID := slug(opID) + "-details"
		tree = tree.AddChild(rootID, document.Node{
			ID:    pageID,
			Type:  document.NodeTypePage,
			Name:  "details",
			Label: "Details",
		})
		for _, name := range scalars {
			tree = im.addBlock(tree, pageID, name, schema.Properties[name].Value, required[name])
		}
	}

	for _, pg := range pages {
		pageID := slug(pg.name)
		tree = tree.AddChild(rootID, document.Node{
			ID:    pageID,
			Type:  document.NodeTypePage,
			Name:  pg.name,
			Label: sanitize.Text(pageLabel(pg.name, pg.schema)),
		})
		pageRequired := stringSet(pg.schema.Required)
		for _, name := range sortedPropertyNames(pg.schema) {
			prop := pg.schema.Properties[name]
			if prop == nil || prop.Value == nil {
				continue
			}
			if schemaType(prop.Value) == "object" {
				im.logger.Debug("skipping nested object property", "page", pg.name, "property", name)
				continue
			}
			tree = im.addBlock(tree, pageID, name, prop.Value, pageRequired[name])
		}
	}

	return tree
}

func (im *Importer) addBlock(tree *document.Tree, pageID, name string, schema *openapi3.Schema, required bool) *document.Tree {
	label := schema.Title
	if label == "" {
		label = humanize(name)
	}
	return tree.AddChild(pageID, document.Node{
		ID:              pageID + "-" + slug(name),
		Type:            document.NodeTypeBlock,
		Name:            name,
		FieldName:       name,
		Label:           sanitize.Text(label),
		ValidationRules: constraintRules(name, schema, required),
	})
}

func sortedPropertyNames(schema *openapi3.Schema) []string {
	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func pageLabel(name string, schema *openapi3.Schema) string {
	if schema.Title != "" {
		return schema.Title
	}
	return humanize(name)
}

func schemaType(schema *openapi3.Schema) string {
	if schema.Type == nil {
		return ""
	}
	values := schema.Type.Slice()
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func stringSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]bool, len(values))
	for _, v := range values {
		out[v] = true
	}
	return out
}

func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "-") {
				b.WriteByte('-')
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func humanize(name string) string {
	var words []string
	var current []rune
	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = nil
		}
	}
	for _, r := range name {
		switch {
		case r == '_' || r == '-' || r == ' ' || r == ':' || r == '/':
			flush()
		case r >= 'A' && r <= 'Z':
			flush()
			current = append(current, r+('a'-'A'))
		default:
			current = append(current, r)
		}
	}
	flush()
	if len(words) == 0 {
		return name
	}
	first := []rune(words[0])
	if first[0] >= 'a' && first[0] <= 'z' {
		first[0] -= 'a' - 'A'
		words[0] = string(first)
	}
	return strings.Join(words, " ")
}
