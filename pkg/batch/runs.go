package batch

// Run is a maximal block of consecutive items sharing a batch key.
// It covers the half-open index range [Start, End).
type Run struct {
	Start int
	End   int
	Key   string
}

// Len returns the number of items in the run.
func (r Run) Len() int { return r.End - r.Start }

// Runs splits items into maximal runs of equal keys, in order.
// It returns nil for an empty slice.
func Runs[T Item[T]](items []T) []Run {
	if len(items) == 0 {
		return nil
	}
	var runs []Run
	start := 0
	for i := 1; i < len(items); i++ {
		if items[i].Key() == items[start].Key() {
			continue
		}
		runs = append(runs, Run{Start: start, End: i, Key: items[start].Key()})
		start = i
	}
	return append(runs, Run{Start: start, End: len(items), Key: items[start].Key()})
}

// CountRuns returns the number of draw calls needed to render items in
// order, that is the number of maximal runs of equal keys. It is 0 for an
// empty slice.
func CountRuns[T Item[T]](items []T) int {
	if len(items) == 0 {
		return 0
	}
	count := 1
	for i := 1; i < len(items); i++ {
		if items[i].Key() != items[i-1].Key() {
			count++
		}
	}
	return count
}
