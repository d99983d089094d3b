package document_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/document"
)

func buildTree(t *testing.T) *document.Tree {
	t.Helper()

	tree := document.New(document.Node{ID: "root", Type: document.NodeTypeSection, Name: "Survey"})
	tree = tree.AddChild("root", document.Node{ID: "page-1", Type: document.NodeTypePage, Label: "About you"})
	tree = tree.AddChild("page-1", document.Node{ID: "block-name", Type: document.NodeTypeBlock, FieldName: "name"})
	tree = tree.AddChild("page-1", document.Node{ID: "block-age", Type: document.NodeTypeBlock, FieldName: "age"})
	tree = tree.AddChild("root", document.Node{ID: "page-2", Type: document.NodeTypePage, Label: "Wrap up"})
	tree = tree.AddChild("page-2", document.Node{ID: "block-feedback", Type: document.NodeTypeBlock, FieldName: "feedback"})
	return tree
}

func TestAddChildAssignsID(t *testing.T) {
	t.Parallel()

	tree := document.New(document.Node{ID: "root", Type: document.NodeTypeSection})
	next := tree.AddChild("root", document.Node{Type: document.NodeTypePage})
	if next == tree {
		t.Fatalf("expected a new snapshot")
	}

	kids := next.ChildIDs("root")
	if len(kids) != 1 {
		t.Fatalf("expected one child, got %d", len(kids))
	}
	if kids[0] == "" {
		t.Fatalf("expected an assigned id")
	}
}

func TestAddChildUnknownParentIsNoOp(t *testing.T) {
	t.Parallel()

	tree := buildTree(t)
	if got := tree.AddChild("missing", document.Node{Type: document.NodeTypeBlock}); got != tree {
		t.Fatalf("expected the same snapshot reference for an unknown parent")
	}
	if got := tree.AddChild("root", document.Node{ID: "page-1", Type: document.NodeTypePage}); got != tree {
		t.Fatalf("expected the same snapshot reference for a colliding id")
	}
}

func TestUpdateByID(t *testing.T) {
	t.Parallel()

	tree := buildTree(t)
	label := "Tell us about yourself"
	next := tree.UpdateByID("page-1", document.Patch{Label: &label})
	if next == tree {
		t.Fatalf("expected a new snapshot")
	}

	updated, ok := next.Node("page-1")
	if !ok {
		t.Fatalf("page-1 missing after update")
	}
	if updated.Label != label {
		t.Fatalf("label = %q, want %q", updated.Label, label)
	}
	if updated.ID != "page-1" {
		t.Fatalf("id must be preserved, got %q", updated.ID)
	}

	// Untouched node records keep identity across snapshots.
	before, _ := tree.Node("page-2")
	after, _ := next.Node("page-2")
	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("sibling changed (-before +after):\n%s", diff)
	}
}

func TestUpdateByIDUnknownIsNoOp(t *testing.T) {
	t.Parallel()

	tree := buildTree(t)
	label := "nope"
	if got := tree.UpdateByID("missing", document.Patch{Label: &label}); got != tree {
		t.Fatalf("expected the same snapshot reference for an unknown id")
	}
}

func TestRemoveByIDPrunesSubtree(t *testing.T) {
	t.Parallel()

	tree := buildTree(t)
	next := tree.RemoveByID("page-1")
	if next == tree {
		t.Fatalf("expected a new snapshot")
	}

	for _, id := range []string{"page-1", "block-name", "block-age"} {
		if next.Contains(id) {
			t.Fatalf("expected %q to be pruned", id)
		}
	}
	if !next.Contains("page-2") || !next.Contains("block-feedback") {
		t.Fatalf("unrelated nodes must survive")
	}
	if diff := cmp.Diff([]string{"page-2"}, next.ChildIDs("root")); diff != "" {
		t.Fatalf("root children mismatch (-want +got):\n%s", diff)
	}

	// The original snapshot is untouched.
	if !tree.Contains("block-name") {
		t.Fatalf("mutation leaked into the source snapshot")
	}
}

func TestRemoveByIDUnknownIsNoOp(t *testing.T) {
	t.Parallel()

	tree := buildTree(t)
	if got := tree.RemoveByID("missing"); got != tree {
		t.Fatalf("expected the same snapshot reference for an unknown id")
	}
	if got := tree.RemoveByID("root"); got != tree {
		t.Fatalf("expected the same snapshot reference when removing the root")
	}
}

func TestWalkOrder(t *testing.T) {
	t.Parallel()

	tree := buildTree(t)
	var visited []string
	tree.Walk(func(n document.Node, _ int) bool {
		visited = append(visited, n.ID)
		return true
	})

	want := []string{"root", "page-1", "block-name", "block-age", "page-2", "block-feedback"}
	if diff := cmp.Diff(want, visited); diff != "" {
		t.Fatalf("walk order mismatch (-want +got):\n%s", diff)
	}
}

func TestPageAndBlockQueries(t *testing.T) {
	t.Parallel()

	tree := buildTree(t)
	if diff := cmp.Diff([]string{"page-1", "page-2"}, tree.PageIDs()); diff != "" {
		t.Fatalf("pages mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"block-name", "block-age"}, tree.BlockIDs("page-1")); diff != "" {
		t.Fatalf("blocks mismatch (-want +got):\n%s", diff)
	}

	parent, ok := tree.Parent("block-age")
	if !ok || parent != "page-1" {
		t.Fatalf("Parent(block-age) = %q, %v", parent, ok)
	}
	if _, ok := tree.Parent("root"); ok {
		t.Fatalf("root must not report a parent")
	}
}
