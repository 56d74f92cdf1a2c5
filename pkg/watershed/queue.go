package watershed

import "container/heap"

// floodQueue pops voxel indices by ascending priority, first-in-first-out
// among equal priorities. The priority of a voxel is read from the
// intensity grid at push time.
type floodQueue interface {
	push(i int)
	pop() int
	len() int
}

// newQueue picks the queue implementation once per call: a bucket queue
// for 8/16-bit intensities, a binary heap for everything else.
func newQueue[T any](values []T, toFloat func(T) float64) floodQueue {
	switch v := any(values).(type) {
	case []uint8:
		return newBucketQueue(1<<8, func(i int) int { return int(v[i]) })
	case []uint16:
		return newBucketQueue(1<<16, func(i int) int { return int(v[i]) })
	}
	return &heapQueue{key: func(i int) float64 { return toFloat(values[i]) }}
}

// bucketQueue keeps one FIFO per grey level. cur never exceeds the lowest
// non-empty bucket, so push and pop are O(1) amortised.
type bucketQueue struct {
	buckets [][]int
	heads   []int
	key     func(int) int
	cur     int
	n       int
}

func newBucketQueue(levels int, key func(int) int) *bucketQueue {
	return &bucketQueue{
		buckets: make([][]int, levels),
		heads:   make([]int, levels),
		key:     key,
	}
}

func (q *bucketQueue) push(i int) {
	k := q.key(i)
	q.buckets[k] = append(q.buckets[k], i)
	if q.n == 0 || k < q.cur {
		q.cur = k
	}
	q.n++
}

func (q *bucketQueue) pop() int {
	for q.heads[q.cur] == len(q.buckets[q.cur]) {
		q.cur++
	}
	b := q.buckets[q.cur]
	i := b[q.heads[q.cur]]
	q.heads[q.cur]++
	if q.heads[q.cur] == len(b) {
		// drained: recycle the backing array
		q.buckets[q.cur] = b[:0]
		q.heads[q.cur] = 0
	}
	q.n--
	return i
}

func (q *bucketQueue) len() int { return q.n }

// entry is a heap record ordered by (priority, seq).
type entry struct {
	priority float64
	seq      uint64
	index    int
}

// entryHeap is a min-heap of entries; ties on priority are broken by the
// insertion sequence so that equal levels are served first-in-first-out.
type entryHeap []entry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority < h[j].priority
	}
	return h[i].seq < h[j].seq
}

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x interface{}) { *h = append(*h, x.(entry)) }

func (h *entryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

type heapQueue struct {
	h   entryHeap
	seq uint64
	key func(int) float64
}

func (q *heapQueue) push(i int) {
	heap.Push(&q.h, entry{priority: q.key(i), seq: q.seq, index: i})
	q.seq++
}

func (q *heapQueue) pop() int {
	return heap.Pop(&q.h).(entry).index
}

func (q *heapQueue) len() int { return q.h.Len() }
