package batch

import "slices"

// node is one arena slot. in lists live nodes that must be emitted first;
// out lists live nodes waiting on this one. Both hold indices into
// Graph.nodes.
type node struct {
	in  []int
	out []int
}

// Graph is the dependency graph over an ordered item slice.
//
// Node i wraps items[i]. An edge j→i (j < i) exists when items[i] overlaps
// items[j], meaning item j must be emitted before item i. Edges never point
// from a higher index to a lower one, so the graph is acyclic by
// construction.
//
// Removed nodes leave an empty slot and are stripped from every neighbor
// list immediately, so a live node with no incoming edges is always
// available for emission.
//
// The zero value is not usable; create graphs with [NewGraph]. A Graph is
// not safe for concurrent use.
type Graph[T Item[T]] struct {
	items []T
	nodes []*node
	live  int
}

// NewGraph builds the dependency graph for items, which should already be
// in initial order (see [SortItems]). The items slice is not modified.
//
// Construction performs O(N²) overlap checks. Only pairs (i, j) with i > j
// are tested, and only items[i].Overlaps(items[j]) is consulted.
func NewGraph[T Item[T]](items []T) *Graph[T] {
	g := &Graph[T]{
		items: slices.Clone(items),
		nodes: make([]*node, len(items)),
		live:  len(items),
	}
	for i := range g.nodes {
		g.nodes[i] = &node{}
	}
	for i := range items {
		for j := 0; j < i; j++ {
			if !items[i].Overlaps(items[j]) {
				continue
			}
			g.nodes[i].in = append(g.nodes[i].in, j)
			g.nodes[j].out = append(g.nodes[j].out, i)
		}
	}
	return g
}

// Len returns the number of slots, which equals the number of input items.
func (g *Graph[T]) Len() int { return len(g.nodes) }

// Live returns the number of nodes not yet removed.
func (g *Graph[T]) Live() int { return g.live }

// Has reports whether node i exists and has not been removed.
func (g *Graph[T]) Has(i int) bool {
	return i >= 0 && i < len(g.nodes) && g.nodes[i] != nil
}

// Item returns the item wrapped by slot i, removed or not.
func (g *Graph[T]) Item(i int) T { return g.items[i] }

// Incoming returns the live predecessors of node i in ascending order.
// It returns nil for removed nodes.
func (g *Graph[T]) Incoming(i int) []int {
	if !g.Has(i) {
		return nil
	}
	return slices.Clone(g.nodes[i].in)
}

// Outgoing returns the live successors of node i in ascending order.
// It returns nil for removed nodes.
func (g *Graph[T]) Outgoing(i int) []int {
	if !g.Has(i) {
		return nil
	}
	return slices.Clone(g.nodes[i].out)
}

// Edges returns every live edge as a [from, to] pair, ordered by source and
// then target index.
func (g *Graph[T]) Edges() [][2]int {
	var edges [][2]int
	for i, n := range g.nodes {
		if n == nil {
			continue
		}
		for _, o := range n.out {
			edges = append(edges, [2]int{i, o})
		}
	}
	return edges
}

// Roots returns the live nodes without incoming edges, in index order.
func (g *Graph[T]) Roots() []int {
	var roots []int
	for i, n := range g.nodes {
		if n != nil && len(n.in) == 0 {
			roots = append(roots, i)
		}
	}
	return roots
}

// Remove deletes node i and strips it from its neighbors' edge lists.
// Removing a node twice is a no-op.
func (g *Graph[T]) Remove(i int) {
	if !g.Has(i) {
		return
	}
	n := g.nodes[i]
	for _, o := range n.out {
		succ := g.nodes[o]
		succ.in = slices.DeleteFunc(succ.in, func(x int) bool { return x == i })
	}
	for _, p := range n.in {
		pred := g.nodes[p]
		pred.out = slices.DeleteFunc(pred.out, func(x int) bool { return x == i })
	}
	g.nodes[i] = nil
	g.live--
}

// Height returns the number of live nodes on the longest chain of outgoing
// edges starting at i, i itself included. It returns 0 for removed nodes.
func (g *Graph[T]) Height(i int) int {
	if !g.Has(i) {
		return 0
	}
	return g.height(i, make([]int, len(g.nodes)))
}

// height computes the height of start with an explicit stack. memo holds
// finished heights (0 = not computed) and may be shared between calls on
// the same unchanged graph.
func (g *Graph[T]) height(start int, memo []int) int {
	if memo[start] > 0 {
		return memo[start]
	}
	type frame struct {
		n, next, best int
	}
	stack := []frame{{n: start}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		out := g.nodes[top.n].out
		if top.next < len(out) {
			child := out[top.next]
			top.next++
			if memo[child] > 0 {
				top.best = max(top.best, memo[child])
				continue
			}
			stack = append(stack, frame{n: child})
			continue
		}
		h := top.best + 1
		memo[top.n] = h
		stack = stack[:len(stack)-1]
		if len(stack) > 0 {
			parent := &stack[len(stack)-1]
			parent.best = max(parent.best, h)
		}
	}
	return memo[start]
}

// Count returns the number of live nodes reachable from i through outgoing
// edges, i itself included. Each node is counted once. It returns 0 for
// removed nodes.
func (g *Graph[T]) Count(i int) int {
	if !g.Has(i) {
		return 0
	}
	visited := make([]bool, len(g.nodes))
	visited[i] = true
	stack := []int{i}
	count := 0
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		count++
		for _, o := range g.nodes[n].out {
			if !visited[o] {
				visited[o] = true
				stack = append(stack, o)
			}
		}
	}
	return count
}
