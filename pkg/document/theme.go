package document

import (
	"fmt"

	theme "github.com/goliatone/go-theme"
)

// ThemeConfig is the document envelope's theme payload: a named go-theme
// selection plus document-level token overrides.
type ThemeConfig struct {
	Name    string            `json:"name,omitempty"`
	Variant string            `json:"variant,omitempty"`
	Tokens  map[string]string `json:"tokens,omitempty"`
}

// ResolveTheme resolves the document's theme through a go-theme selector and
// merges the document token overrides onto the manifest tokens, so the
// drawing host receives a single ready-to-use selection. A document without
// a theme resolves to nil.
func ResolveTheme(doc *Document, selector theme.ThemeSelector) (*theme.Selection, error) {
	if doc == nil || doc.Theme == nil || doc.Theme.Name == "" {
		return nil, nil
	}
	if selector == nil {
		return nil, fmt.Errorf("document: theme %q requires a selector", doc.Theme.Name)
	}

	selection, err := selector.Select(doc.Theme.Name, doc.Theme.Variant)
	if err != nil {
		return nil, fmt.Errorf("document: resolve theme %q: %w", doc.Theme.Name, err)
	}
	if selection == nil || selection.Manifest == nil || len(doc.Theme.Tokens) == 0 {
		return selection, nil
	}

	manifest := *selection.Manifest
	tokens := make(map[string]string, len(manifest.Tokens)+len(doc.Theme.Tokens))
	for key, value := range manifest.Tokens {
		tokens[key] = value
	}
	for key, value := range doc.Theme.Tokens {
		tokens[key] = value
	}
	manifest.Tokens = tokens

	merged := *selection
	merged.Manifest = &manifest
	return &merged, nil
}
