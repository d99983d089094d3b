// Package flowgraph derives a positioned visual graph from a document tree
// and its navigation rules, for a drawing host to paint. The builder only
// computes node boxes, edges, and positions; it draws nothing.
package flowgraph

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/goliatone/go-formflow/pkg/document"
)

// Position is a node's top-left corner in layout space.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a node's bounding box.
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Node is one visual node: a section, page, block, or the synthetic submit
// terminal. Conditional marks nodes that are only reachable through a
// conditional edge.
type Node struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Position    Position `json:"position"`
	Size        Size     `json:"size"`
	Conditional bool     `json:"conditional"`
}

// Edge connects two visual nodes. Label carries the routing condition (or
// "default"); Conditional is false for default/unconditional rules and for
// the implicit sequential edges between consecutive blocks.
type Edge struct {
	ID          string `json:"id"`
	Source      string `json:"source"`
	Target      string `json:"target"`
	Label       string `json:"label"`
	Conditional bool   `json:"conditional"`
}

// Graph is the builder output handed to the drawing host.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node box sizes and spacing are fixed; the drawing host scales as needed.
const (
	sectionW, sectionH = 220, 64
	pageW, pageH       = 200, 56
	blockW, blockH     = 160, 48
	submitW, submitH   = 120, 48
)

// Builder converts tree snapshots into positioned graphs. It remembers the
// previous layout so small edits reposition only the touched page's block
// stack; a full relayout runs on the first build and whenever the page
// count changes.
type Builder struct {
	logger *slog.Logger

	lastPositions  map[string]Position
	lastPageBlocks map[string][]string
	lastPageCount  int
	built          bool
}

// Option customises a Builder.
type Option func(*Builder)

// WithLogger injects the diagnostics logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBuilder constructs a Builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build derives the positioned graph for a tree snapshot.
func (b *Builder) Build(tree *document.Tree) Graph {
	graph := deriveGraph(tree)

	pages := tree.PageIDs()
	if !b.built || len(pages) != b.lastPageCount {
		b.layoutFull(tree, &graph)
	} else {
		b.layoutIncremental(tree, &graph)
	}

	b.built = true
	b.lastPageCount = len(pages)
	b.lastPositions = make(map[string]Position, len(graph.Nodes))
	for _, node := range graph.Nodes {
		b.lastPositions[node.ID] = node.Position
	}
	b.lastPageBlocks = make(map[string][]string, len(pages))
	for _, pageID := range pages {
		b.lastPageBlocks[pageID] = tree.BlockIDs(pageID)
	}
	return graph
}

// deriveGraph builds the node and edge lists without positions.
func deriveGraph(tree *document.Tree) Graph {
	var graph Graph
	needsSubmit := false

	tree.Walk(func(n document.Node, _ int) bool {
		graph.Nodes = append(graph.Nodes, Node{
			ID:    n.ID,
			Label: nodeLabel(n),
			Size:  sizeFor(n.Type),
		})
		return true
	})

	// Explicit edges, one per navigation rule.
	tree.Walk(func(n document.Node, _ int) bool {
		for i, rule := range n.NavigationRules {
			if rule.Target == document.SubmitTarget {
				needsSubmit = true
			}
			graph.Edges = append(graph.Edges, Edge{
				ID:          fmt.Sprintf("%s-rule-%d", n.ID, i),
				Source:      n.ID,
				Target:      rule.Target,
				Label:       edgeLabel(rule),
				Conditional: isConditional(rule),
			})
		}
		return true
	})

	// Implicit sequential edges between consecutive blocks on a page when
	// the earlier block declares no rules of its own.
	for _, pageID := range tree.PageIDs() {
		blocks := tree.BlockIDs(pageID)
		for i := 0; i+1 < len(blocks); i++ {
			from, _ := tree.Node(blocks[i])
			if len(from.NavigationRules) > 0 {
				continue
			}
			graph.Edges = append(graph.Edges, Edge{
				ID:     fmt.Sprintf("%s-seq-%s", blocks[i], blocks[i+1]),
				Source: blocks[i],
				Target: blocks[i+1],
			})
		}
	}

	if needsSubmit {
		graph.Nodes = append(graph.Nodes, Node{
			ID:    document.SubmitTarget,
			Label: "Submit",
			Size:  Size{W: submitW, H: submitH},
		})
	}

	markConditionalNodes(&graph)
	return graph
}

// markConditionalNodes flags nodes whose every incoming explicit edge is
// conditional: they are only visited when some condition holds.
func markConditionalNodes(graph *Graph) {
	incoming := make(map[string][]bool)
	for _, edge := range graph.Edges {
		incoming[edge.Target] = append(incoming[edge.Target], edge.Conditional)
	}
	for i := range graph.Nodes {
		flags := incoming[graph.Nodes[i].ID]
		if len(flags) == 0 {
			continue
		}
		conditional := true
		for _, f := range flags {
			if !f {
				conditional = false
				break
			}
		}
		graph.Nodes[i].Conditional = conditional
	}
}

func nodeLabel(n document.Node) string {
	if n.Label != "" {
		return n.Label
	}
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}

func edgeLabel(rule document.NavigationRule) string {
	if !isConditional(rule) {
		return "default"
	}
	return rule.Condition
}

func isConditional(rule document.NavigationRule) bool {
	return !rule.IsDefault && rule.Condition != "" && rule.Condition != "true"
}

func sizeFor(t document.NodeType) Size {
	switch t {
	case document.NodeTypeSection:
		return Size{W: sectionW, H: sectionH}
	case document.NodeTypePage:
		return Size{W: pageW, H: pageH}
	default:
		return Size{W: blockW, H: blockH}
	}
}
