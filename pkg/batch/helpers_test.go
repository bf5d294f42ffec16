package batch

import (
	"cmp"
	"math/rand/v2"
	"slices"
	"strings"
)

// testItem depends on the items whose ids are listed in group.
type testItem struct {
	id    int
	depth int
	key   string
	group []int
}

func (t *testItem) Key() string        { return t.key }
func (t *testItem) Depth() int         { return t.depth }
func (t *testItem) SetDepth(depth int) { t.depth = depth }

func (t *testItem) Compare(o *testItem) int {
	if c := cmp.Compare(t.depth, o.depth); c != 0 {
		return c
	}
	return cmp.Compare(t.id, o.id)
}

func (t *testItem) Overlaps(o *testItem) bool {
	return slices.Contains(t.group, o.id) || slices.Contains(o.group, t.id)
}

// newItems creates items with depth and id equal to their index.
func newItems(keys string, groups [][]int) []*testItem {
	ks := strings.Split(keys, ",")
	items := make([]*testItem, len(ks))
	for i, k := range ks {
		var g []int
		if i < len(groups) {
			g = groups[i]
		}
		items[i] = &testItem{id: i, depth: i, key: k, group: g}
	}
	return items
}

// scenarioItems is the ten-widget scenario with known dependency groups.
func scenarioItems() []*testItem {
	return newItems("1,2,2,3,3,4,2,3,2,1", [][]int{
		{1, 2},
		{0, 2, 3},
		{0, 1, 3},
		{1, 2, 5},
		{2, 5},
		{3, 4},
		{7, 8},
		{6, 9},
		{6, 9},
		{7, 8},
	})
}

// randomItems builds n items over the given number of keys where each pair
// overlaps with probability p.
func randomItems(r *rand.Rand, n, keys int, p float64) []*testItem {
	items := make([]*testItem, n)
	for i := range items {
		items[i] = &testItem{id: i, depth: r.IntN(n), key: string(rune('a' + r.IntN(keys)))}
	}
	for i := range items {
		for j := 0; j < i; j++ {
			if r.Float64() < p {
				items[i].group = append(items[i].group, j)
			}
		}
	}
	return items
}

func ids(items []*testItem) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.id
	}
	return out
}

func keysOf(items []*testItem) string {
	ks := make([]string, len(items))
	for i, it := range items {
		ks[i] = it.key
	}
	return strings.Join(ks, ",")
}
