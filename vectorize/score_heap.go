package vectorize

type scoredDetection struct {
	index int
	score float64
}

// Copied from container/heap - https://golang.org/pkg/container/heap/
// Why make copy? Just want to avoid type conversion

// scoreHeap is a min-heap: lowest score first, equal scores by detection index.
type scoreHeap []scoredDetection

func (h scoreHeap) Len() int { return len(h) }
func (h scoreHeap) Less(i, j int) bool {
	if h[i].score == h[j].score {
		return h[i].index < h[j].index
	}
	return h[i].score < h[j].score
}
func (h scoreHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

// Push pushes the element x onto the heap.
// The complexity is O(log n) where n = h.Len().
func (h *scoreHeap) Push(x scoredDetection) {
	*h = append(*h, x)
	h.up(h.Len() - 1)
}

// Pop removes and returns the minimum element (according to Less) from the heap.
// The complexity is O(log n) where n = h.Len().
func (h *scoreHeap) Pop() scoredDetection {
	n := h.Len() - 1
	h.Swap(0, n)
	h.down(0, n)
	heapSize := len(*h)
	lastNode := (*h)[heapSize-1]
	*h = (*h)[0 : heapSize-1]
	return lastNode
}

func (h scoreHeap) up(j int) {
	for {
		i := (j - 1) / 2
		if i == j || !h.Less(j, i) {
			break
		}
		h.Swap(i, j)
		j = i
	}
}

func (h scoreHeap) down(i0, n int) bool {
	i := i0
	for {
		j1 := 2*i + 1
		if j1 >= n || j1 < 0 {
			break
		}
		j := j1
		if j2 := j1 + 1; j2 < n && h.Less(j2, j1) {
			j = j2
		}
		if !h.Less(j, i) {
			break
		}
		h.Swap(i, j)
		i = j
	}
	return i > i0
}

// topKIndexesOfClass returns up to k detection indexes with the given label,
// ordered ascending by score. Nil when the class is absent from the frame.
func topKIndexesOfClass(dets ObjectDetections, k int, label int) []int {
	h := make(scoreHeap, 0)
	for i, l := range dets.Labels {
		if l == label {
			h.Push(scoredDetection{index: i, score: dets.Scores[i]})
		}
	}
	if h.Len() == 0 {
		return nil
	}
	result := make([]int, 0, k)
	for h.Len() > 0 && len(result) < k {
		result = append(result, h.Pop().index)
	}
	return result
}
