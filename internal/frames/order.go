package frames

import (
	"container/heap"
	"fmt"
	"strings"
)

// Rounding selects how a midpoint landing on .5 is resolved.
type Rounding int

const (
	// RoundHalfUp sends x.5 to x+1.
	RoundHalfUp Rounding = iota
	// RoundHalfEven sends x.5 to the nearest even index, matching the
	// farm scripts that predate this tool.
	RoundHalfEven
)

// ParseRounding maps a config value to a Rounding. Empty means half-up.
func ParseRounding(value string) (Rounding, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "half-up":
		return RoundHalfUp, nil
	case "half-even":
		return RoundHalfEven, nil
	default:
		return RoundHalfUp, fmt.Errorf("frames: unknown rounding %q", value)
	}
}

func (r Rounding) String() string {
	switch r {
	case RoundHalfEven:
		return "half-even"
	default:
		return "half-up"
	}
}

func (r Rounding) midpoint(lo, hi int) int {
	sum := lo + hi
	if sum%2 == 0 {
		return sum / 2
	}
	down := sum / 2
	if r == RoundHalfEven && down%2 == 0 {
		return down
	}
	return down + 1
}

// BisectOrder returns the visiting order over task indices 0..n-1. It starts
// with the two ends and then keeps splitting the widest gap between visited
// indices; among equally wide gaps the leftmost one is split first.
func BisectOrder(n int, rounding Rounding) []int {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []int{0}
	}
	order := make([]int, 0, n)
	order = append(order, 0, n-1)

	gaps := &gapHeap{{lo: 0, hi: n - 1}}
	for len(order) < n {
		g := heap.Pop(gaps).(gap)
		mid := rounding.midpoint(g.lo, g.hi)
		order = append(order, mid)
		if mid-g.lo > 1 {
			heap.Push(gaps, gap{lo: g.lo, hi: mid})
		}
		if g.hi-mid > 1 {
			heap.Push(gaps, gap{lo: mid, hi: g.hi})
		}
	}
	return order
}

// gap is an open interval between two visited indices.
type gap struct {
	lo, hi int
}

func (g gap) size() int { return g.hi - g.lo }

type gapHeap []gap

func (h gapHeap) Len() int { return len(h) }

func (h gapHeap) Less(i, j int) bool {
	if h[i].size() != h[j].size() {
		return h[i].size() > h[j].size()
	}
	return h[i].lo < h[j].lo
}

func (h gapHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *gapHeap) Push(x any) { *h = append(*h, x.(gap)) }

func (h *gapHeap) Pop() any {
	old := *h
	last := old[len(old)-1]
	*h = old[:len(old)-1]
	return last
}
