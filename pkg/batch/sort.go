package batch

import (
	"fmt"
	"slices"
)

// candidate is an available node scored for selection.
type candidate struct {
	index  int
	height int
	count  int
}

// analyze scores every root of g. It fails with ErrNoAvailableNode when
// live nodes remain but none is a root.
func (g *Graph[T]) analyze() ([]candidate, error) {
	roots := g.Roots()
	if len(roots) == 0 {
		return nil, fmt.Errorf("%w: %d of %d items remain", ErrNoAvailableNode, g.live, len(g.nodes))
	}
	memo := make([]int, len(g.nodes))
	cands := make([]candidate, len(roots))
	for k, r := range roots {
		cands[k] = candidate{index: r, height: g.height(r, memo), count: g.Count(r)}
	}
	return cands, nil
}

// pick returns the candidate with the greatest height, then the greatest
// count. Earlier candidates win remaining ties.
func pick(cands []candidate) candidate {
	best := cands[0]
	for _, c := range cands[1:] {
		if c.height > best.height || (c.height == best.height && c.count > best.count) {
			best = c
		}
	}
	return best
}

// Sort returns items reordered to reduce the number of draw calls while
// keeping every overlapping pair in its input order.
//
// items must already be in initial order (see [SortItems]); the input slice
// is not modified and no item is mutated. The result is a permutation of
// items and is deterministic for a given input.
//
// The algorithm repeats until every item is emitted:
//
//  1. Score the available nodes by height and reachable count.
//  2. Emit the best one and remove it from the graph.
//  3. While available nodes share the emitted key, emit all of them in
//     index order and remove them.
//
// The greedy walk can occasionally split a run that the input kept whole.
// When its output needs more draw calls than the input, Sort returns a copy
// of the input order instead, which is always a valid linearization.
//
// Sort returns an error wrapping [ErrNoAvailableNode] if the graph ever has
// no available node while items remain.
func Sort[T Item[T]](items []T) ([]T, error) {
	return sortGraph(NewGraph(items), items)
}

// sortGraph runs the walk over g, which must have been built from items,
// and applies the input-order fallback.
func sortGraph[T Item[T]](g *Graph[T], items []T) ([]T, error) {
	out, err := g.walk()
	if err != nil {
		return nil, err
	}
	if CountRuns(out) > CountRuns(items) {
		return slices.Clone(items), nil
	}
	return out, nil
}

// walk emits every node of g in greedy order, removing them as it goes.
func (g *Graph[T]) walk() ([]T, error) {
	out := make([]T, 0, g.live)

	for g.Live() > 0 {
		cands, err := g.analyze()
		if err != nil {
			return nil, err
		}
		best := pick(cands)
		key := g.Item(best.index).Key()
		out = append(out, g.Item(best.index))
		g.Remove(best.index)

		out, err = g.extend(out, key)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// extend appends every available node with the given key, repeating as
// removals free further matches.
func (g *Graph[T]) extend(out []T, key string) ([]T, error) {
	for g.Live() > 0 {
		roots := g.Roots()
		if len(roots) == 0 {
			return nil, fmt.Errorf("%w: %d of %d items remain", ErrNoAvailableNode, g.live, len(g.nodes))
		}
		var matched []int
		for _, r := range roots {
			if g.Item(r).Key() == key {
				matched = append(matched, r)
			}
		}
		if len(matched) == 0 {
			break
		}
		for _, r := range matched {
			out = append(out, g.Item(r))
			g.Remove(r)
		}
	}
	return out, nil
}

// Result describes the effect of reordering an item slice.
type Result[T Item[T]] struct {
	Items  []T // Reordered items
	Before int // Draw calls in the input order
	After  int // Draw calls in the reordered output
}

// Improved reports whether the reordering reduced the draw-call count.
func (r Result[T]) Improved() bool { return r.After < r.Before }

// Saved returns the number of draw calls removed by the reordering.
func (r Result[T]) Saved() int { return r.Before - r.After }

// Optimize sorts items with [Sort] and counts draw calls before and after.
// Items are not mutated; callers decide whether to apply the result,
// typically only when [Result.Improved] holds, and then call [AdjustDepth]
// on Result.Items.
func Optimize[T Item[T]](items []T) (Result[T], error) {
	sorted, err := Sort(items)
	if err != nil {
		return Result[T]{}, err
	}
	return Result[T]{
		Items:  sorted,
		Before: CountRuns(items),
		After:  CountRuns(sorted),
	}, nil
}
