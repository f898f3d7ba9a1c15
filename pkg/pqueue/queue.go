package pqueue

import (
	"math"
	"sort"
)

// WithCap bounds the queue to the size lowest priority items.
func WithCap(size uint) Option {
	return func(q *Queue) {
		q.cap = int(size)
	}
}

type Option func(*Queue)

type item struct {
	value int
	prior float64
}

// New returns an empty queue. Without WithCap the queue is unbounded.
func New(opts ...Option) *Queue {
	q := &Queue{cap: -1}
	for _, opt := range opts {
		opt(q)
	}
	if q.cap > 0 {
		q.items = make([]item, 0, q.cap+1)
	}
	return q
}

// Queue keeps values ordered by ascending priority. Values pushed with an
// equal priority keep their push order, so the result is deterministic.
type Queue struct {
	cap   int
	items []item
}

// Push inserts val. When the queue is full and val does not rank strictly
// before the tail it is dropped. NaN priorities have no rank and are dropped.
func (q *Queue) Push(val int, priority float64) {
	if q.cap == 0 || math.IsNaN(priority) {
		return
	}
	if q.cap > 0 && len(q.items) == q.cap && priority >= q.items[len(q.items)-1].prior {
		return
	}
	// first position whose priority ranks strictly after the new one
	pos := sort.Search(len(q.items), func(i int) bool {
		return priority < q.items[i].prior
	})
	q.items = append(q.items, item{})
	copy(q.items[pos+1:], q.items[pos:])
	q.items[pos] = item{value: val, prior: priority}
	if q.cap > 0 && len(q.items) > q.cap {
		q.items = q.items[:q.cap]
	}
}

// PopAll drains the queue and returns its values in priority order.
func (q *Queue) PopAll() []int {
	pulled := make([]int, len(q.items))
	for i := range q.items {
		pulled[i] = q.items[i].value
	}
	q.items = q.items[:0]
	return pulled
}
