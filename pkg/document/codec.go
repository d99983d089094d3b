package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Document is the serialization envelope: the tree plus the localization
// and theme payloads the drawing/rendering hosts consume. It round-trips as
// JSON with top-level keys rootNode, localizations, and theme.
type Document struct {
	Tree          *Tree
	Localizations map[string]map[string]string
	Theme         *ThemeConfig
}

type documentWire struct {
	RootNode      *nodeWire                    `json:"rootNode"`
	Localizations map[string]map[string]string `json:"localizations,omitempty"`
	Theme         *ThemeConfig                 `json:"theme,omitempty"`
}

// nodeWire is the nested on-disk node shape. Two child-list representations
// coexist for historical reasons: "items" always embeds child objects, while
// "nodes" mixes bare id references with embedded objects. Both are accepted
// on read; writes emit the canonical "items" form only.
type nodeWire struct {
	ID              string           `json:"id,omitempty"`
	Type            NodeType         `json:"type,omitempty"`
	Name            string           `json:"name,omitempty"`
	Label           string           `json:"label,omitempty"`
	FieldName       string           `json:"fieldName,omitempty"`
	NavigationRules []NavigationRule `json:"navigationRules,omitempty"`
	ValidationRules []ValidationRule `json:"validationRules,omitempty"`
	Items           []*nodeWire      `json:"items,omitempty"`
	Nodes           []childRef       `json:"nodes,omitempty"`
}

type childRef struct {
	ID   string
	Node *nodeWire
}

func (c *childRef) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return errors.New("document: empty child reference")
	}
	if trimmed[0] == '"' {
		return json.Unmarshal(trimmed, &c.ID)
	}
	c.Node = &nodeWire{}
	return json.Unmarshal(trimmed, c.Node)
}

// ParseDocument decodes a JSON document envelope into an indexed snapshot.
// Duplicate node ids are a hard error; bare "nodes" references that resolve
// nowhere, or that would give a node a second parent, are dropped.
func ParseDocument(data []byte, opts ...TreeOption) (*Document, error) {
	var wire documentWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("document: parse: %w", err)
	}
	return fromWire(wire, opts...)
}

func fromWire(wire documentWire, opts ...TreeOption) (*Document, error) {
	if wire.RootNode == nil {
		return nil, errors.New("document: rootNode is required")
	}

	tree := New(nodeFromWire(wire.RootNode), opts...)
	builder := &treeBuilder{tree: tree}
	if err := builder.descend(wire.RootNode, tree.RootID()); err != nil {
		return nil, err
	}
	builder.resolvePending()

	return &Document{
		Tree:          builder.tree,
		Localizations: wire.Localizations,
		Theme:         wire.Theme,
	}, nil
}

type pendingRef struct {
	parentID string
	targetID string
}

// treeBuilder assembles the flat index in two passes: embedded children are
// attached during the descent, bare id references are remembered and wired
// once the whole wire tree has been indexed.
type treeBuilder struct {
	tree    *Tree
	pending []pendingRef
}

func (b *treeBuilder) descend(wire *nodeWire, id string) error {
	attach := func(child *nodeWire) error {
		node := nodeFromWire(child)
		if node.ID != "" && b.tree.Contains(node.ID) {
			return fmt.Errorf("document: duplicate node id %q", node.ID)
		}
		next := b.tree.AddChild(id, node)
		childID := node.ID
		if childID == "" {
			// AddChild assigned a fresh id; recover it from the child list.
			kids := next.children[id]
			childID = kids[len(kids)-1]
		}
		b.tree = next
		return b.descend(child, childID)
	}

	for _, child := range wire.Items {
		if child == nil {
			continue
		}
		if err := attach(child); err != nil {
			return err
		}
	}
	for _, ref := range wire.Nodes {
		switch {
		case ref.Node != nil:
			if err := attach(ref.Node); err != nil {
				return err
			}
		case ref.ID != "":
			b.pending = append(b.pending, pendingRef{parentID: id, targetID: ref.ID})
		}
	}
	return nil
}

// resolvePending wires bare id references once every embedded node is known.
// References to unknown ids, to the root, or to nodes that already have a
// parent cannot be satisfied and are logged and dropped.
func (b *treeBuilder) resolvePending() {
	for _, ref := range b.pending {
		t := b.tree
		if !t.Contains(ref.targetID) {
			t.logger.Debug("dropping unresolvable child reference", "parent", ref.parentID, "target", ref.targetID)
			continue
		}
		if ref.targetID == t.rootID {
			t.logger.Debug("dropping child reference to root", "parent", ref.parentID)
			continue
		}
		if _, attached := t.parents[ref.targetID]; attached {
			t.logger.Debug("dropping duplicate child reference", "parent", ref.parentID, "target", ref.targetID)
			continue
		}
		next := t.clone()
		next.children[ref.parentID] = append(append([]string(nil), t.children[ref.parentID]...), ref.targetID)
		next.parents[ref.targetID] = ref.parentID
		b.tree = next
	}
}

func nodeFromWire(wire *nodeWire) Node {
	return Node{
		ID:              wire.ID,
		Type:            wire.Type,
		Name:            wire.Name,
		Label:           wire.Label,
		FieldName:       wire.FieldName,
		NavigationRules: append([]NavigationRule(nil), wire.NavigationRules...),
		ValidationRules: append([]ValidationRule(nil), wire.ValidationRules...),
	}
}

func nodeToWire(t *Tree, id string) *nodeWire {
	node, _ := t.Node(id)
	wire := &nodeWire{
		ID:              node.ID,
		Type:            node.Type,
		Name:            node.Name,
		Label:           node.Label,
		FieldName:       node.FieldName,
		NavigationRules: node.NavigationRules,
		ValidationRules: node.ValidationRules,
	}
	for _, childID := range t.children[id] {
		wire.Items = append(wire.Items, nodeToWire(t, childID))
	}
	return wire
}

// MarshalJSON emits the canonical envelope with embedded "items" children.
func (d Document) MarshalJSON() ([]byte, error) {
	if d.Tree == nil {
		return nil, errors.New("document: marshal: tree is nil")
	}
	return json.Marshal(documentWire{
		RootNode:      nodeToWire(d.Tree, d.Tree.RootID()),
		Localizations: d.Localizations,
		Theme:         d.Theme,
	})
}

// UnmarshalJSON decodes the envelope, accepting both legacy child shapes.
func (d *Document) UnmarshalJSON(data []byte) error {
	parsed, err := ParseDocument(data)
	if err != nil {
		return err
	}
	*d = *parsed
	return nil
}
