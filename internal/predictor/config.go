package predictor

import (
	"fmt"
	"strings"

	"github.com/go-sod/knn/internal/geom"
)

type DistanceFuncType string

const (
	DistanceFuncTypeEuclidean DistanceFuncType = "EUCLIDEAN"
	DistanceFuncTypeChebyshev DistanceFuncType = "CHEBYSHEV"
	DistanceFuncTypeManhattan DistanceFuncType = "MANHATTAN"
)

type Config struct {
	K              int              `envconfig:"KNN_K" default:"2" toml:"k"`
	Method         Method           `envconfig:"KNN_METHOD" default:"regression" toml:"method"`
	MetricFuncType DistanceFuncType `envconfig:"KNN_DISTANCE_FUNC" default:"EUCLIDEAN" toml:"distance"`
	ModePolicy     ModePolicy       `envconfig:"KNN_MODE_POLICY" default:"NEAREST" toml:"mode_policy"`
	// number of queries processed concurrently
	Workers int `envconfig:"KNN_WORKERS" default:"1" toml:"workers"`
}

func (c Config) PredictorConfig() Config {
	return c
}

func (c Config) Validate() error {
	if c.K <= 0 {
		return fmt.Errorf("k must be positive, got %d", c.K)
	}
	if _, err := ParseMethod(string(c.Method)); err != nil {
		return err
	}
	if _, err := DistanceFuncFor(c.MetricFuncType); err != nil {
		return err
	}
	switch ModePolicy(strings.ToUpper(string(c.ModePolicy))) {
	case ModePolicyNearest, ModePolicyStrict:
	default:
		return fmt.Errorf("unknown mode policy: %s", c.ModePolicy)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	return nil
}

func DistanceFuncFor(d DistanceFuncType) (geom.DistanceFn, error) {
	switch DistanceFuncType(strings.ToUpper(string(d))) {
	case DistanceFuncTypeChebyshev:
		return geom.ChebyshevDistance, nil
	case DistanceFuncTypeEuclidean:
		return geom.EuclideanDistance, nil
	case DistanceFuncTypeManhattan:
		return geom.ManhattanDistance, nil
	default:
		return nil, fmt.Errorf("unknown distance function: %s", d)
	}
}
