package knn

import (
	"fmt"

	"github.com/go-sod/knn/internal/predictor"
)

// Aggregate reduces the labels selected by neighbors to a single label:
// the mode for classification, the arithmetic mean for regression.
func Aggregate(labels []float64, neighbors []int, method predictor.Method, policy predictor.ModePolicy) (float64, error) {
	if len(neighbors) == 0 {
		return 0, fmt.Errorf("empty neighbor list: %w", ErrInvalidK)
	}
	selected := make([]float64, len(neighbors))
	for i, idx := range neighbors {
		if idx < 0 || idx >= len(labels) {
			return 0, fmt.Errorf("index %d, %d labels: %w", idx, len(labels), ErrIndexOutOfRange)
		}
		selected[i] = labels[idx]
	}

	switch method {
	case predictor.MethodClassification:
		return mode(selected, policy)
	case predictor.MethodRegression:
		return mean(selected), nil
	default:
		return 0, fmt.Errorf("%q: %w", method, ErrInvalidMethod)
	}
}

func mean(values []float64) float64 {
	var s float64
	for _, v := range values {
		s += v
	}
	return s / float64(len(values))
}

// mode counts in neighbor order. On a tie the first label to reach the top
// count in list order is the earliest one, which makes NEAREST a plain scan.
func mode(values []float64, policy predictor.ModePolicy) (float64, error) {
	counts := make(map[float64]int, len(values))
	for _, v := range values {
		counts[v]++
	}

	var (
		best      float64
		bestCount int
		tied      bool
	)
	for _, v := range values {
		c := counts[v]
		switch {
		case c > bestCount:
			best, bestCount, tied = v, c, false
		case c == bestCount && v != best:
			tied = true
		}
	}

	if tied && policy == predictor.ModePolicyStrict {
		return 0, fmt.Errorf("%d labels share count %d: %w", len(counts), bestCount, ErrNoUniqueMode)
	}
	return best, nil
}
