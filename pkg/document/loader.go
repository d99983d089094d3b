package document

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formflow/internal/sanitize"
)

// Store keeps documents loaded from a filesystem, keyed by path. It is safe
// for concurrent readers when treated as immutable after construction.
type Store struct {
	documents map[string]*Document
}

// LoadFS walks the provided filesystem and parses every JSON/YAML document
// file. Labels and validation messages are sanitised to plain text on the
// way in. When fsys is nil or holds no document files, the returned store
// is empty.
func LoadFS(fsys fs.FS, opts ...TreeOption) (*Store, error) {
	store := &Store{documents: make(map[string]*Document)}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDocumentFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("document: read %s: %w", path, err)
		}

		doc, err := parseFile(data, path, opts...)
		if err != nil {
			return err
		}
		store.documents[path] = doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Document returns the document loaded from the given path.
func (s *Store) Document(path string) (*Document, bool) {
	if s == nil {
		return nil, false
	}
	doc, ok := s.documents[path]
	return doc, ok
}

// Paths lists every loaded document path.
func (s *Store) Paths() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.documents))
	for path := range s.documents {
		out = append(out, path)
	}
	return out
}

// Empty reports whether the store holds any documents.
func (s *Store) Empty() bool {
	return s == nil || len(s.documents) == 0
}

// ParseFile parses one document file's bytes, picking the JSON or YAML
// decoder from the source path's extension and sanitising display strings.
func ParseFile(data []byte, source string, opts ...TreeOption) (*Document, error) {
	return parseFile(data, source, opts...)
}

func parseFile(data []byte, source string, opts ...TreeOption) (*Document, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, fmt.Errorf("document: file %s is empty", source)
	}

	payload := data
	if isYAMLFile(source) {
		converted, err := yamlToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("document: parse %s: %w", source, err)
		}
		payload = converted
	}

	doc, err := ParseDocument(payload, opts...)
	if err != nil {
		return nil, fmt.Errorf("document: parse %s: %w", source, err)
	}
	sanitizeDocument(doc)
	return doc, nil
}

// sanitizeDocument strips markup from the strings a rendering host will
// display verbatim.
func sanitizeDocument(doc *Document) {
	tree := doc.Tree
	var dirty []string
	tree.Walk(func(n Node, _ int) bool {
		if needsSanitizing(n) {
			dirty = append(dirty, n.ID)
		}
		return true
	})

	for _, id := range dirty {
		node, _ := tree.Node(id)
		label := sanitize.Text(node.Label)
		name := sanitize.Text(node.Name)
		rules := append([]ValidationRule(nil), node.ValidationRules...)
		for i := range rules {
			rules[i].Message = sanitize.Text(rules[i].Message)
		}
		tree = tree.UpdateByID(id, Patch{
			Label:           &label,
			Name:            &name,
			ValidationRules: &rules,
		})
	}
	doc.Tree = tree
}

func needsSanitizing(n Node) bool {
	if n.Label != sanitize.Text(n.Label) || n.Name != sanitize.Text(n.Name) {
		return true
	}
	for _, rule := range n.ValidationRules {
		if rule.Message != sanitize.Text(rule.Message) {
			return true
		}
	}
	return false
}

func isDocumentFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func isYAMLFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func yamlToJSON(data []byte) ([]byte, error) {
	var payload any
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return json.Marshal(normalizeYAML(payload))
}

// normalizeYAML rewrites yaml.v3 map keys to strings so the payload can be
// re-encoded as JSON.
func normalizeYAML(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = normalizeYAML(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[fmt.Sprint(key)] = normalizeYAML(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalizeYAML(item)
		}
		return out
	default:
		return v
	}
}
