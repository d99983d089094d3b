package flowgraph

import (
	"math"
	"sort"

	"github.com/goliatone/go-formflow/pkg/document"
)

const (
	marginX  = 40.0
	marginY  = 40.0
	spacingX = 240.0
	spacingY = 120.0

	// Collision search parameters: candidate positions are tried on
	// expanding rings at 45° steps until a free slot appears or the
	// attempt budget runs out, which bounds the search even under
	// adversarial placement.
	collisionPadding = 24.0
	collisionStep    = 48.0
	maxAttempts      = 64
)

type rect struct {
	x, y, w, h float64
}

func (r rect) overlaps(other rect, padding float64) bool {
	return r.x < other.x+other.w+padding &&
		other.x < r.x+r.w+padding &&
		r.y < other.y+other.h+padding &&
		other.y < r.y+r.h+padding
}

// layoutFull assigns every node a position: level-based hierarchical
// placement following containment and navigation edges from the start node
// (the root), same-level siblings spread horizontally at fixed spacing,
// collisions resolved by the radial search.
func (b *Builder) layoutFull(tree *document.Tree, graph *Graph) {
	adjacency := layoutAdjacency(tree, graph)

	levels := map[string]int{}
	order := map[string]int{}
	queue := []string{tree.RootID()}
	levels[tree.RootID()] = 0
	seen := map[string]bool{tree.RootID(): true}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order[id] = len(order)
		for _, next := range adjacency[id] {
			if seen[next] {
				continue
			}
			seen[next] = true
			levels[next] = levels[id] + 1
			queue = append(queue, next)
		}
	}

	// Nodes unreachable from the start node sink to one extra level.
	maxLevel := 0
	for _, level := range levels {
		if level > maxLevel {
			maxLevel = level
		}
	}
	for _, node := range graph.Nodes {
		if !seen[node.ID] {
			levels[node.ID] = maxLevel + 1
			order[node.ID] = len(order)
		}
	}

	byLevel := map[int][]int{}
	for i, node := range graph.Nodes {
		byLevel[levels[node.ID]] = append(byLevel[levels[node.ID]], i)
	}

	var placed []rect
	for level := 0; level <= maxLevel+1; level++ {
		indices := byLevel[level]
		sort.Slice(indices, func(a, c int) bool {
			return order[graph.Nodes[indices[a]].ID] < order[graph.Nodes[indices[c]].ID]
		})
		for slot, idx := range indices {
			node := &graph.Nodes[idx]
			node.Position = b.place(Position{
				X: marginX + float64(slot)*spacingX,
				Y: marginY + float64(level)*spacingY,
			}, node.Size, placed)
			placed = append(placed, rect{node.Position.X, node.Position.Y, node.Size.W, node.Size.H})
		}
	}
}

// layoutIncremental keeps every previously placed node where it was and
// restacks only the block stacks of pages whose block set changed. Nodes
// the previous layout never saw (and pages whose stacks moved) go through
// the collision search against the kept positions.
func (b *Builder) layoutIncremental(tree *document.Tree, graph *Graph) {
	restack := map[string]Position{}
	for _, pageID := range tree.PageIDs() {
		blocks := tree.BlockIDs(pageID)
		if sameIDs(blocks, b.lastPageBlocks[pageID]) {
			continue
		}
		pagePos, ok := b.lastPositions[pageID]
		if !ok {
			continue
		}
		for i, blockID := range blocks {
			restack[blockID] = Position{
				X: pagePos.X + spacingX/4,
				Y: pagePos.Y + float64(i+1)*(blockH+collisionPadding),
			}
		}
	}

	var placed []rect
	var strays []int
	for i := range graph.Nodes {
		node := &graph.Nodes[i]
		if pos, ok := restack[node.ID]; ok {
			node.Position = pos
		} else if pos, ok := b.lastPositions[node.ID]; ok {
			node.Position = pos
		} else {
			strays = append(strays, i)
			continue
		}
		placed = append(placed, rect{node.Position.X, node.Position.Y, node.Size.W, node.Size.H})
	}

	for _, idx := range strays {
		node := &graph.Nodes[idx]
		node.Position = b.place(Position{X: marginX, Y: marginY}, node.Size, placed)
		placed = append(placed, rect{node.Position.X, node.Position.Y, node.Size.W, node.Size.H})
	}
}

// place returns the first collision-free position for a box, starting at
// the preferred position and searching outward on expanding rings at 45°
// angle steps. When the attempt budget is exhausted the preferred position
// is used even if it overlaps.
func (b *Builder) place(preferred Position, size Size, placed []rect) Position {
	if !collides(preferred, size, placed) {
		return preferred
	}
	for attempt := 0; attempt < maxAttempts; attempt++ {
		radius := collisionStep * float64(1+attempt/8)
		angle := float64(attempt%8) * (math.Pi / 4)
		candidate := Position{
			X: preferred.X + radius*math.Cos(angle),
			Y: preferred.Y + radius*math.Sin(angle),
		}
		if !collides(candidate, size, placed) {
			return candidate
		}
	}
	b.logger.Debug("collision search exhausted; keeping overlapping position",
		"x", preferred.X, "y", preferred.Y)
	return preferred
}

func collides(pos Position, size Size, placed []rect) bool {
	box := rect{pos.X, pos.Y, size.W, size.H}
	for _, other := range placed {
		if box.overlaps(other, collisionPadding) {
			return true
		}
	}
	return false
}

// layoutAdjacency merges containment with navigation edges so levels
// follow both the tree shape and the routing.
func layoutAdjacency(tree *document.Tree, graph *Graph) map[string][]string {
	adjacency := map[string][]string{}
	tree.Walk(func(n document.Node, _ int) bool {
		adjacency[n.ID] = append(adjacency[n.ID], tree.ChildIDs(n.ID)...)
		return true
	})
	for _, edge := range graph.Edges {
		adjacency[edge.Source] = append(adjacency[edge.Source], edge.Target)
	}
	return adjacency
}

func sameIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
