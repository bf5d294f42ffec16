package batch

import (
	"fmt"
	"math"
	"slices"
)

// Depths computes new depth values for items, which are typically the
// output of [Sort]. The result is indexed like items; items are not
// mutated.
//
// Runs are processed left to right. Each run is clamped to start above the
// previous run's last depth, its distinct depths are compacted into a
// consecutive sequence that keeps their relative order, and every later
// item whose depth would collide is pushed just past the run. As a result,
// any item of an earlier run ends up with a strictly smaller depth than any
// item of a later run. If that would push a depth past math.MaxInt, Depths
// returns an error wrapping [ErrDepthOverflow].
func Depths[T Item[T]](items []T) ([]int, error) {
	depths := make([]int, len(items))
	for i, it := range items {
		depths[i] = it.Depth()
	}
	lower := math.MinInt
	for _, r := range Runs(items) {
		last, err := renumberRun(depths, r, lower)
		if err != nil {
			return nil, err
		}
		lower = last + 1
	}
	return depths, nil
}

// renumberRun rewrites depths[r.Start:r.End] given the lower bound set by
// the previous run and bumps colliding depths after the run. It returns
// the deepest value assigned inside the run.
func renumberRun(depths []int, r Run, lower int) (int, error) {
	if r.Start >= r.End {
		return 0, fmt.Errorf("%w: [%d, %d)", ErrEmptyRun, r.Start, r.End)
	}

	clamped := make([]int, 0, r.Len())
	for i := r.Start; i < r.End; i++ {
		clamped = append(clamped, max(depths[i], lower))
	}

	// Distinct clamped depths in ascending order; an item's new depth is
	// the run minimum plus the rank of its clamped depth. Equal depths
	// collapse to one value and order is kept even when the run is not
	// sorted by depth.
	levels := slices.Clone(clamped)
	slices.Sort(levels)
	levels = slices.Compact(levels)
	minDepth := levels[0]
	for k, d := range clamped {
		rank, _ := slices.BinarySearch(levels, d)
		depths[r.Start+k] = minDepth + rank
	}
	cursor := minDepth + len(levels) - 1
	if cursor == math.MaxInt && r.End < len(depths) {
		return 0, fmt.Errorf("%w: run [%d, %d) ends at %d", ErrDepthOverflow, r.Start, r.End, cursor)
	}

	for i := r.End; i < len(depths); i++ {
		if depths[i] <= cursor {
			depths[i] = cursor + 1
		}
	}
	return cursor, nil
}

// AdjustDepth renumbers the depth of every item in place using [Depths].
// It is a no-op for an empty slice. On error no item is modified.
func AdjustDepth[T Mutable[T]](items []T) error {
	depths, err := Depths(items)
	if err != nil {
		return err
	}
	for i, it := range items {
		it.SetDepth(depths[i])
	}
	return nil
}
