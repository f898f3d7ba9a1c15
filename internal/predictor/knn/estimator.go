package knn

import (
	"context"
	"fmt"
	"math"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/go-sod/knn/internal/geom"
	"github.com/go-sod/knn/internal/predictor"
)

var _ predictor.Predictor = (*Estimator)(nil)

const DefaultK = 2

// Contract for returning the Estimator instance
type ProvideFn func() (*Estimator, error)

type Option func(*Estimator)

func WithK(k int) Option {
	return func(e *Estimator) {
		e.k = k
	}
}

func WithMethod(m predictor.Method) Option {
	return func(e *Estimator) {
		e.method = m
	}
}

func WithDistance(f geom.DistanceFn) Option {
	return func(e *Estimator) {
		e.distFunc = f
	}
}

func WithModePolicy(p predictor.ModePolicy) Option {
	return func(e *Estimator) {
		e.policy = predictor.ModePolicy(strings.ToUpper(string(p)))
	}
}

// WithWorkers sets how many queries are processed at once. Values below 2
// keep the estimator sequential.
func WithWorkers(n int) Option {
	return func(e *Estimator) {
		e.workers = n
	}
}

// New returns an estimator. Defaults: k=2, regression, Euclidean distance,
// NEAREST mode policy, one worker.
func New(opts ...Option) (*Estimator, error) {
	e := &Estimator{
		k:        DefaultK,
		method:   predictor.MethodRegression,
		distFunc: geom.EuclideanDistance,
		policy:   predictor.ModePolicyNearest,
		workers:  1,
	}
	for _, f := range opts {
		f(e)
	}
	if e.k <= 0 {
		return nil, fmt.Errorf("unable creating estimator, k=%d: %w", e.k, ErrInvalidK)
	}
	if e.method != predictor.MethodClassification && e.method != predictor.MethodRegression {
		return nil, fmt.Errorf("unable creating estimator, %q: %w", e.method, ErrInvalidMethod)
	}
	if e.policy != predictor.ModePolicyNearest && e.policy != predictor.ModePolicyStrict {
		return nil, fmt.Errorf("unable creating estimator, %q: %w", e.policy, ErrInvalidModePolicy)
	}
	if e.distFunc == nil {
		return nil, fmt.Errorf("unable creating estimator, distance function is not defined")
	}
	return e, nil
}

// NewFromConfig builds an estimator from the environment driven config.
func NewFromConfig(cfg predictor.Config) (*Estimator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid predictor config: %w", err)
	}
	distFunc, err := predictor.DistanceFuncFor(cfg.MetricFuncType)
	if err != nil {
		return nil, fmt.Errorf("unable provide distance function: %w", err)
	}
	method, _ := predictor.ParseMethod(string(cfg.Method))
	return New(
		WithK(cfg.K),
		WithMethod(method),
		WithDistance(distFunc),
		WithModePolicy(cfg.ModePolicy),
		WithWorkers(cfg.Workers),
	)
}

// Estimator is a brute force k-nearest-neighbor estimator. It holds no data;
// every call works on the sets it is given and never modifies them.
type Estimator struct {
	k        int
	method   predictor.Method
	distFunc geom.DistanceFn
	policy   predictor.ModePolicy
	workers  int
}

func (e *Estimator) K() int { return e.k }

func (e *Estimator) Method() predictor.Method { return e.method }

// With returns a copy of the estimator with opts applied.
func (e *Estimator) With(opts ...Option) (*Estimator, error) {
	cp := *e
	return New(append([]Option{
		WithK(cp.k), WithMethod(cp.method), WithDistance(cp.distFunc),
		WithModePolicy(cp.policy), WithWorkers(cp.workers),
	}, opts...)...)
}

// Predict returns one label per query, in query order.
func (e *Estimator) Predict(ctx context.Context, ref []geom.Point, labels []float64, queries []geom.Point) ([]float64, error) {
	predictions, _, err := e.PredictDetailed(ctx, ref, labels, queries)
	return predictions, err
}

// PredictDetailed is Predict that also returns the neighbor list of every
// query.
func (e *Estimator) PredictDetailed(
	ctx context.Context,
	ref []geom.Point,
	labels []float64,
	queries []geom.Point,
) ([]float64, [][]int, error) {
	if len(ref) != len(labels) {
		return nil, nil, fmt.Errorf("%d points, %d labels: %w", len(ref), len(labels), ErrLabelsMismatch)
	}
	if err := validateK(e.k, len(ref)); err != nil {
		return nil, nil, err
	}
	for i, l := range labels {
		if math.IsNaN(l) || math.IsInf(l, 0) {
			return nil, nil, fmt.Errorf("label %d: %w", i, ErrInvalidLabel)
		}
	}
	if err := validatePoints(ref, queries); err != nil {
		return nil, nil, err
	}

	predictions := make([]float64, len(queries))
	neighbors := make([][]int, len(queries))
	predictOne := func(i int) error {
		nn, err := nearest(e.distFunc, ref, queries[i], e.k)
		if err != nil {
			return fmt.Errorf("query %d: %w", i, err)
		}
		label, err := Aggregate(labels, nn, e.method, e.policy)
		if err != nil {
			return fmt.Errorf("query %d: %w", i, err)
		}
		predictions[i] = label
		neighbors[i] = nn
		return nil
	}

	if e.workers < 2 || len(queries) < 2 {
		for i := range queries {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
			if err := predictOne(i); err != nil {
				return nil, nil, err
			}
		}
		return predictions, neighbors, nil
	}

	errGrp, gctx := errgroup.WithContext(ctx)
	errGrp.SetLimit(e.workers)
	for i := range queries {
		i := i
		if gctx.Err() != nil {
			break
		}
		errGrp.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return predictOne(i)
		})
	}
	if err := errGrp.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return predictions, neighbors, nil
}
