package flowgraph_test

import (
	"strings"
	"testing"

	"github.com/goliatone/go-formflow/pkg/document"
	"github.com/goliatone/go-formflow/pkg/flowgraph"
)

func ringTree(ids ...string) *document.Tree {
	tree := document.New(document.Node{ID: "root", Type: document.NodeTypeSection})
	for _, id := range ids {
		tree = tree.AddChild("root", document.Node{ID: id, Type: document.NodeTypePage})
	}
	return tree
}

func withRule(tree *document.Tree, from, to string) *document.Tree {
	return tree.UpdateByID(from, document.Patch{
		NavigationRules: &[]document.NavigationRule{{Target: to, IsPageTarget: true, IsDefault: true}},
	})
}

func TestDetectCyclesRing(t *testing.T) {
	t.Parallel()

	tree := ringTree("a", "b", "c")
	tree = withRule(tree, "a", "b")
	tree = withRule(tree, "b", "c")
	tree = withRule(tree, "c", "a")

	cycles := flowgraph.DetectCycles(tree)
	if len(cycles) != 1 {
		t.Fatalf("expected exactly one cycle, got %v", cycles)
	}
	if cycles[0] != "a -> b -> c -> a" {
		t.Fatalf("cycle = %q", cycles[0])
	}
}

func TestDetectCyclesTwoIndependentRings(t *testing.T) {
	t.Parallel()

	tree := ringTree("a", "b", "x", "y")
	tree = withRule(tree, "a", "b")
	tree = withRule(tree, "b", "a")
	tree = withRule(tree, "x", "y")
	tree = withRule(tree, "y", "x")

	cycles := flowgraph.DetectCycles(tree)
	if len(cycles) != 2 {
		t.Fatalf("expected two cycles, got %v", cycles)
	}
	joined := strings.Join(cycles, "\n")
	if !strings.Contains(joined, "a -> b -> a") || !strings.Contains(joined, "x -> y -> x") {
		t.Fatalf("cycles = %v", cycles)
	}
}

func TestDetectCyclesAcyclic(t *testing.T) {
	t.Parallel()

	tree := ringTree("a", "b", "c")
	tree = withRule(tree, "a", "b")
	tree = withRule(tree, "b", "c")
	tree = withRule(tree, "c", "submit")

	if cycles := flowgraph.DetectCycles(tree); len(cycles) != 0 {
		t.Fatalf("expected no cycles, got %v", cycles)
	}
}

func TestDetectCyclesSelfLoop(t *testing.T) {
	t.Parallel()

	tree := ringTree("a")
	tree = withRule(tree, "a", "a")

	cycles := flowgraph.DetectCycles(tree)
	if len(cycles) != 1 || cycles[0] != "a -> a" {
		t.Fatalf("cycles = %v", cycles)
	}
}
