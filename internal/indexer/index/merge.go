package index

import (
	"cmp"
	"container/heap"
)

// Merge combines individually sorted posting lists into one stream ordered
// by DocID. Equal ids come out adjacent; their relative order is unspecified.
// The same list may be passed more than once.
func Merge[ID cmp.Ordered](lists ...PostingList[ID]) Stream[Posting[ID]] {
	h := make(cursorHeap[ID], 0, len(lists))
	for _, list := range lists {
		if len(list) > 0 {
			h = append(h, &cursor[ID]{list: list})
		}
	}
	heap.Init(&h)
	return &mergeStream[ID]{heap: h}
}

type mergeStream[ID cmp.Ordered] struct {
	heap cursorHeap[ID]
}

func (m *mergeStream[ID]) Next() (Posting[ID], bool) {
	if len(m.heap) == 0 {
		return Posting[ID]{}, false
	}
	c := m.heap[0]
	p := c.head()
	c.pos++
	if c.pos == len(c.list) {
		heap.Pop(&m.heap)
	} else {
		heap.Fix(&m.heap, 0)
	}
	return p, true
}

type cursor[ID cmp.Ordered] struct {
	list PostingList[ID]
	pos  int
}

func (c *cursor[ID]) head() Posting[ID] { return c.list[c.pos] }

type cursorHeap[ID cmp.Ordered] []*cursor[ID]

func (h cursorHeap[ID]) Len() int { return len(h) }

func (h cursorHeap[ID]) Less(i, j int) bool {
	return cmp.Less(h[i].head().DocID, h[j].head().DocID)
}

func (h cursorHeap[ID]) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *cursorHeap[ID]) Push(x any) {
	*h = append(*h, x.(*cursor[ID]))
}

func (h *cursorHeap[ID]) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}
