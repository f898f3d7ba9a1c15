package predictor

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-sod/knn/internal/geom"
)

// Method selects how neighbor labels are aggregated.
type Method string

const (
	MethodClassification Method = "classification"
	MethodRegression     Method = "regression"
)

// ParseMethod accepts the method name in any case.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case MethodClassification, MethodRegression:
		return m, nil
	default:
		return Method(s), fmt.Errorf("unknown method %q", s)
	}
}

// ModePolicy decides what classification does when several labels share the
// highest count.
type ModePolicy string

const (
	// ModePolicyNearest picks the tied label that occurs first in the
	// neighbor list, which is the closest one.
	ModePolicyNearest ModePolicy = "NEAREST"
	// ModePolicyStrict fails instead of picking.
	ModePolicyStrict ModePolicy = "STRICT"
)

// Predictor estimates one label per query point from a labeled reference set.
type Predictor interface {
	Predict(ctx context.Context, ref []geom.Point, labels []float64, queries []geom.Point) ([]float64, error)
}
