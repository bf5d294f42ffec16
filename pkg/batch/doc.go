// Package batch reorders render items so that items sharing a batch key
// become contiguous, reducing the number of draw calls without breaking the
// relative order of items that overlap.
//
// # Overview
//
// A renderer can merge consecutive items with the same batch key (material,
// texture and shader) into a single draw call. Items that overlap on screen
// must keep their relative order, so the reordering is constrained by a
// partial order derived from overlap and original position.
//
// The package works on any type implementing [Item]. It never inspects the
// host's render objects: the item type supplies the batch key, an initial
// total order, and the overlap predicate.
//
// # Pipeline
//
// The usual flow is:
//
//  1. Sort the items with [SortItems] (initial order).
//  2. Reorder them with [Sort]. Internally a [Graph] is built whose edges
//     point from an earlier item to a later item it overlaps, and a greedy
//     topological walk emits items, extending the current run with every
//     available item sharing its key.
//  3. Compare [CountRuns] before and after. [Optimize] bundles steps 2 and 3.
//  4. Renumber depths with [AdjustDepth] (or compute them with [Depths]) so
//     that successive runs occupy strictly increasing depth bands.
//
// # Root Selection
//
// When no item of the current key is available, the batcher picks the
// available node with the greatest height (longest chain of dependents),
// then the greatest count of reachable dependents, then the lowest index.
// Emitting tall subtrees first unblocks the most work later. The result is
// a deterministic heuristic, not a minimum.
//
// # Errors
//
// [ErrNoAvailableNode] means the graph had no root while items remained,
// which only happens if the acyclicity invariant was broken. [ErrEmptyRun]
// means the renumberer was handed an empty run. Both are fatal to the call;
// the computation is deterministic so retrying is pointless.
//
// # Complexity
//
// Graph construction is O(N²) overlap checks and every selection step
// re-analyzes the live roots. This is fine for the tens to low hundreds of
// widgets found in a UI panel and should be revisited for large inputs.
//
// # Concurrency
//
// A [Graph] is not safe for concurrent use. [Sort] builds a fresh graph per
// call, so independent item slices can be processed in parallel.
package batch
