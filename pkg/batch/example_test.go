package batch_test

import (
	"cmp"
	"fmt"

	"github.com/matzehuels/batchsort/pkg/batch"
)

// sprite is a one-dimensional render item covering [lo, hi).
type sprite struct {
	name   string
	atlas  string
	depth  int
	lo, hi int
}

func (s *sprite) Key() string        { return s.atlas }
func (s *sprite) Depth() int         { return s.depth }
func (s *sprite) SetDepth(depth int) { s.depth = depth }
func (s *sprite) Compare(o *sprite) int {
	if c := cmp.Compare(s.depth, o.depth); c != 0 {
		return c
	}
	return cmp.Compare(s.name, o.name)
}
func (s *sprite) Overlaps(o *sprite) bool { return s.lo < o.hi && o.lo < s.hi }

func Example() {
	items := []*sprite{
		{name: "bg", atlas: "ui", depth: 0, lo: 0, hi: 100},
		{name: "icon", atlas: "icons", depth: 1, lo: 10, hi: 20},
		{name: "frame", atlas: "ui", depth: 2, lo: 50, hi: 60},
		{name: "badge", atlas: "icons", depth: 3, lo: 70, hi: 80},
	}
	batch.SortItems(items)

	res, err := batch.Optimize(items)
	if err != nil {
		panic(err)
	}
	fmt.Printf("draw calls: %d -> %d\n", res.Before, res.After)

	if err := batch.AdjustDepth(res.Items); err != nil {
		panic(err)
	}
	for _, s := range res.Items {
		fmt.Println(s.name, s.atlas, s.depth)
	}
	// Output:
	// draw calls: 4 -> 2
	// bg ui 0
	// frame ui 1
	// icon icons 2
	// badge icons 3
}

func ExampleCountRuns() {
	items := []*sprite{
		{name: "a", atlas: "ui"},
		{name: "b", atlas: "ui"},
		{name: "c", atlas: "icons"},
		{name: "d", atlas: "ui"},
	}
	fmt.Println(batch.CountRuns(items))
	// Output: 3
}
