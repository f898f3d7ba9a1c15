package geom

import (
	"fmt"
	"math"
)

var ErrNonFinite = fmt.Errorf("point has a NaN or infinite coordinate")

// Point is an ordered sequence of numeric feature values.
type Point []float64

func NewPoint(vec []float64) Point {
	return vec
}

func (v Point) Copy() Point {
	var v1 = make(Point, len(v))
	copy(v1, v)
	return v1
}

// Finite reports whether every coordinate is a finite number. Distances
// between finite points are never NaN.
func (v Point) Finite() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// CheckDimensions verifies that every point has exactly dim features.
// A negative dim takes the dimension of the first point.
func CheckDimensions(dim int, points ...Point) (int, error) {
	for i, p := range points {
		if dim < 0 {
			dim = len(p)
			continue
		}
		if len(p) != dim {
			return dim, fmt.Errorf("point %d has %d dimensions, expected %d: %w", i, len(p), dim, ErrDimNotEqual)
		}
	}
	return dim, nil
}

// CheckFinite returns ErrNonFinite for the first point holding a NaN or
// infinite coordinate.
func CheckFinite(points ...Point) error {
	for i, p := range points {
		if !p.Finite() {
			return fmt.Errorf("point %d %v: %w", i, p, ErrNonFinite)
		}
	}
	return nil
}
