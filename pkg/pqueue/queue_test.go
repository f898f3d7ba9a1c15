package pqueue

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestQueue_Push(t *testing.T) {
	t.Parallel()
	type push struct {
		value int
		prior float64
	}
	tests := []struct {
		name     string
		opts     []Option
		pushes   []push
		expected []int
	}{
		{
			name:     "asc_unbounded",
			pushes:   []push{{0, 3}, {1, 1}, {2, 2}},
			expected: []int{1, 2, 0},
		},
		{
			name:     "nan_dropped",
			opts:     []Option{WithCap(2)},
			pushes:   []push{{0, math.NaN()}, {1, 1}, {2, 2}, {3, 0}},
			expected: []int{3, 1},
		},
		{
			name:     "bounded",
			opts:     []Option{WithCap(2)},
			pushes:   []push{{0, 5}, {1, 4}, {2, 3}, {3, 6}},
			expected: []int{2, 1},
		},
		{
			name:     "ties_keep_push_order",
			pushes:   []push{{0, 1}, {1, 1}, {2, 0}, {3, 1}},
			expected: []int{2, 0, 1, 3},
		},
		{
			name:     "bounded_ties_drop_later",
			opts:     []Option{WithCap(2)},
			pushes:   []push{{0, 1}, {1, 1}, {2, 1}},
			expected: []int{0, 1},
		},
		{
			name:     "zero_cap",
			opts:     []Option{WithCap(0)},
			pushes:   []push{{0, 1}},
			expected: []int{},
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			q := New(test.opts...)
			for _, p := range test.pushes {
				q.Push(p.value, p.prior)
			}
			if diff := cmp.Diff(test.expected, q.PopAll()); diff != "" {
				t.Errorf("queue order mismatch (-want +got):\n%s", diff)
			}
			if rest := q.PopAll(); len(rest) != 0 {
				t.Errorf("queue must be empty after PopAll, got %v", rest)
			}
		})
	}
}
