package flowgraph

import (
	"strings"

	"github.com/goliatone/go-formflow/pkg/document"
)

// DetectCycles finds navigation cycles in a tree snapshot. The adjacency
// map holds every navigation-rule target except the submit terminal; a DFS
// with an explicit recursion stack closes a cycle whenever an edge reaches
// a node already on the active stack. Scanning continues after each find so
// every disjoint cycle is reported, not just the first. Cycles are
// advisory: the document stays usable.
func DetectCycles(tree *document.Tree) []string {
	adjacency := map[string][]string{}
	var ids []string
	tree.Walk(func(n document.Node, _ int) bool {
		ids = append(ids, n.ID)
		for _, rule := range n.NavigationRules {
			if rule.Target == document.SubmitTarget {
				continue
			}
			adjacency[n.ID] = append(adjacency[n.ID], rule.Target)
		}
		return true
	})

	var cycles []string
	visited := map[string]bool{}
	onStack := map[string]bool{}
	var stack []string

	var visit func(id string)
	visit = func(id string) {
		visited[id] = true
		onStack[id] = true
		stack = append(stack, id)

		for _, next := range adjacency[id] {
			if onStack[next] {
				cycles = append(cycles, formatCycle(stack, next))
				continue
			}
			if !visited[next] {
				visit(next)
			}
		}

		stack = stack[:len(stack)-1]
		onStack[id] = false
	}

	for _, id := range ids {
		if !visited[id] {
			visit(id)
		}
	}
	return cycles
}

// formatCycle reconstructs the path segment from the re-entered node back
// to itself, e.g. "a -> b -> c -> a".
func formatCycle(stack []string, entry string) string {
	start := 0
	for i, id := range stack {
		if id == entry {
			start = i
			break
		}
	}
	segment := append(append([]string(nil), stack[start:]...), entry)
	return strings.Join(segment, " -> ")
}
