package document

import (
	"io"
	"log/slog"

	"github.com/google/uuid"
)

// Tree is an immutable snapshot of a document tree held as a flat index:
// node records keyed by id, child order kept separately. Mutations
// shallow-copy the index maps and replace only the touched entries, so
// untouched node records keep their identity across snapshots and readers
// always observe a consistent snapshot.
type Tree struct {
	rootID   string
	nodes    map[string]*Node
	children map[string][]string
	parents  map[string]string
	logger   *slog.Logger
}

// TreeOption customises snapshot construction.
type TreeOption func(*Tree)

// WithLogger injects the diagnostics logger used for degraded paths such as
// ignored mutations. Defaults to a discard logger.
func WithLogger(logger *slog.Logger) TreeOption {
	return func(t *Tree) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// New builds a single-node tree holding root. An empty root id is assigned.
func New(root Node, opts ...TreeOption) *Tree {
	if root.ID == "" {
		root.ID = uuid.NewString()
	}
	t := &Tree{
		rootID:   root.ID,
		nodes:    map[string]*Node{root.ID: &root},
		children: map[string][]string{},
		parents:  map[string]string{},
		logger:   discardLogger(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// RootID returns the id of the single root node.
func (t *Tree) RootID() string { return t.rootID }

// Root returns the root node record.
func (t *Tree) Root() Node { return *t.nodes[t.rootID] }

// Len reports the number of nodes in the snapshot.
func (t *Tree) Len() int { return len(t.nodes) }

// Node looks up a node by id.
func (t *Tree) Node(id string) (Node, bool) {
	n, ok := t.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Contains reports whether id names a node in this snapshot.
func (t *Tree) Contains(id string) bool {
	_, ok := t.nodes[id]
	return ok
}

// ChildIDs returns the ordered child ids of a node. The returned slice is a
// copy.
func (t *Tree) ChildIDs(id string) []string {
	kids := t.children[id]
	if len(kids) == 0 {
		return nil
	}
	return append([]string(nil), kids...)
}

// Children returns the ordered child nodes of a node.
func (t *Tree) Children(id string) []Node {
	kids := t.children[id]
	if len(kids) == 0 {
		return nil
	}
	out := make([]Node, 0, len(kids))
	for _, childID := range kids {
		out = append(out, *t.nodes[childID])
	}
	return out
}

// Parent returns the id of a node's parent; ok is false for the root and
// for unknown ids.
func (t *Tree) Parent(id string) (string, bool) {
	parent, ok := t.parents[id]
	return parent, ok
}

// Walk visits nodes depth-first in document order, root first. Returning
// false from fn stops the walk.
func (t *Tree) Walk(fn func(n Node, depth int) bool) {
	var visit func(id string, depth int) bool
	visit = func(id string, depth int) bool {
		if !fn(*t.nodes[id], depth) {
			return false
		}
		for _, childID := range t.children[id] {
			if !visit(childID, depth+1) {
				return false
			}
		}
		return true
	}
	visit(t.rootID, 0)
}

// AddChild attaches node under parentID, assigning a fresh id when the node
// carries none. Unknown parent ids and colliding node ids leave the snapshot
// untouched and return the same reference.
func (t *Tree) AddChild(parentID string, node Node) *Tree {
	if _, ok := t.nodes[parentID]; !ok {
		t.logger.Debug("addChild ignored: parent not found", "parent", parentID)
		return t
	}
	if node.ID == "" {
		node.ID = uuid.NewString()
	}
	if _, exists := t.nodes[node.ID]; exists {
		t.logger.Debug("addChild ignored: id already present", "id", node.ID)
		return t
	}

	next := t.clone()
	next.nodes[node.ID] = &node
	next.children[parentID] = append(append([]string(nil), t.children[parentID]...), node.ID)
	next.parents[node.ID] = parentID
	return next
}

// UpdateByID merges patch onto the node with id, preserving the id. Unknown
// ids return the same snapshot reference.
func (t *Tree) UpdateByID(id string, patch Patch) *Tree {
	current, ok := t.nodes[id]
	if !ok {
		t.logger.Debug("updateById ignored: id not found", "id", id)
		return t
	}

	updated := patch.apply(*current)
	updated.ID = current.ID

	next := t.clone()
	next.nodes[id] = &updated
	return next
}

// RemoveByID excises the node and its subtree from wherever it occurs.
// Unknown ids and the root id return the same snapshot reference.
func (t *Tree) RemoveByID(id string) *Tree {
	if _, ok := t.nodes[id]; !ok {
		t.logger.Debug("removeById ignored: id not found", "id", id)
		return t
	}
	if id == t.rootID {
		t.logger.Debug("removeById ignored: refusing to remove root", "id", id)
		return t
	}

	doomed := map[string]bool{}
	var collect func(nodeID string)
	collect = func(nodeID string) {
		doomed[nodeID] = true
		for _, childID := range t.children[nodeID] {
			collect(childID)
		}
	}
	collect(id)

	next := t.clone()
	for nodeID := range doomed {
		delete(next.nodes, nodeID)
		delete(next.children, nodeID)
		delete(next.parents, nodeID)
	}

	parentID := t.parents[id]
	kept := make([]string, 0, len(t.children[parentID]))
	for _, childID := range t.children[parentID] {
		if childID != id {
			kept = append(kept, childID)
		}
	}
	if len(kept) == 0 {
		delete(next.children, parentID)
	} else {
		next.children[parentID] = kept
	}
	return next
}

// BlockIDs returns the ordered block children of a page, following document
// order for nested groupings.
func (t *Tree) BlockIDs(pageID string) []string {
	var out []string
	var visit func(id string)
	visit = func(id string) {
		for _, childID := range t.children[id] {
			if t.nodes[childID].Type == NodeTypeBlock {
				out = append(out, childID)
			}
			visit(childID)
		}
	}
	visit(pageID)
	return out
}

// PageIDs returns every page id in document order.
func (t *Tree) PageIDs() []string {
	var out []string
	t.Walk(func(n Node, _ int) bool {
		if n.Type == NodeTypePage {
			out = append(out, n.ID)
		}
		return true
	})
	return out
}

func (t *Tree) clone() *Tree {
	next := &Tree{
		rootID:   t.rootID,
		nodes:    make(map[string]*Node, len(t.nodes)+1),
		children: make(map[string][]string, len(t.children)+1),
		parents:  make(map[string]string, len(t.parents)+1),
		logger:   t.logger,
	}
	for id, n := range t.nodes {
		next.nodes[id] = n
	}
	for id, kids := range t.children {
		next.children[id] = kids
	}
	for id, parent := range t.parents {
		next.parents[id] = parent
	}
	return next
}
