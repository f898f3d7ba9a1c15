package dispatcher

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/go-sod/knn/internal/database"
	"github.com/go-sod/knn/internal/dataset"
	"github.com/go-sod/knn/internal/geom"
	"github.com/go-sod/knn/internal/logging"
	"github.com/go-sod/knn/internal/metrics"
	"github.com/go-sod/knn/internal/predictor"
	"github.com/go-sod/knn/internal/predictor/knn"
	sampleDb "github.com/go-sod/knn/internal/sample/database"
	"github.com/go-sod/knn/internal/sample/model"
)

var (
	ErrEmptyDataset  = fmt.Errorf("dataset name is empty")
	ErrInvalidVector = fmt.Errorf("vector is empty or has non finite values")
	ErrMixedLabels   = fmt.Errorf("dataset mixes categorical and numeric labels")
	ErrTooManyItems  = fmt.Errorf("too many items")
)

// Contract for returning the Manager instance
type ProvideFn func() (Manager, error)

// Manager serves labeled reference sets stored per dataset.
type Manager interface {
	Collector
	Predictor
	Catalog
}

// Collector stores labeled samples.
type Collector interface {
	Collect(ctx context.Context, in ...model.Sample) (int, error)
}

// Predictor estimates labels for query vectors against a stored dataset.
type Predictor interface {
	Predict(ctx context.Context, req PredictRequest) (*PredictResult, error)
}

// Catalog lists and drops datasets.
type Catalog interface {
	Datasets(ctx context.Context) ([]DatasetInfo, error)
	Drop(ctx context.Context, name string) error
}

type PredictRequest struct {
	Dataset string
	// zero keeps the estimator's K
	K int
	// empty keeps the estimator's method
	Method  predictor.Method
	Vectors []geom.Point
}

type Prediction struct {
	Label     float64
	Class     string
	Neighbors []int
	IDs       []uuid.UUID
}

type PredictResult struct {
	Dataset     string
	Method      predictor.Method
	K           int
	Predictions []Prediction
}

type DatasetInfo struct {
	Name    string
	Samples int
}

// Abstractions for getting dependencies
type (
	// function for getting the samples of a dataset in insertion order
	fetchSamplesFn func(string, sampleDb.FilterFn) ([]model.Sample, error)
	// function to add sets of samples
	appendSamplesFn func(context.Context, []model.Sample) ([]model.Sample, error)
	// function for dropping a dataset
	deleteDatasetFn func(context.Context, string) error
	// function for getting all dataset names
	fetchKeysFn func() ([]string, error)
	// number of samples in a dataset
	countByDatasetFn func(string) (int, error)
)

// General structure for aggregation of dependency pulling functions
type pullDependencies struct {
	fetchSamples   fetchSamplesFn
	appendSamples  appendSamplesFn
	deleteDataset  deleteDatasetFn
	fetchKeys      fetchKeysFn
	countByDataset countByDatasetFn
}

type Options struct {
	maxQueries int
	maxCollect int
}

type Option func(*manager)

func WithMaxQueries(n int) Option {
	return func(m *manager) {
		m.opts.maxQueries = n
	}
}

func WithMaxCollect(n int) Option {
	return func(m *manager) {
		m.opts.maxCollect = n
	}
}

// New returns a manager backed by db.
func New(db *database.DB, estimator *knn.Estimator, opts ...Option) (*manager, error) {
	if db == nil {
		return nil, fmt.Errorf("database instance is not created")
	}
	sdb := sampleDb.New(db)
	return newManager(pullDependencies{
		fetchSamples:   sdb.FindByDataset,
		appendSamples:  sdb.AppendMany,
		deleteDataset:  sdb.DeleteDataset,
		fetchKeys:      sdb.Keys,
		countByDataset: sdb.CountByDataset,
	}, estimator, opts...)
}

func newManager(deps pullDependencies, estimator *knn.Estimator, opts ...Option) (*manager, error) {
	if estimator == nil {
		return nil, fmt.Errorf("estimator instance is not created")
	}
	m := &manager{
		deps:      deps,
		estimator: estimator,
		shapes:    map[string]shape{},
	}
	for _, f := range opts {
		f(m)
	}
	return m, nil
}

// shape is what every sample of a dataset must agree on
type shape struct {
	dim         int
	categorical bool
}

type manager struct {
	opts      Options
	deps      pullDependencies
	estimator *knn.Estimator

	mtx    sync.Mutex
	shapes map[string]shape
}

// Collect validates and stores samples. A batch is stored entirely or not
// at all.
func (m *manager) Collect(ctx context.Context, in ...model.Sample) (int, error) {
	logger := logging.FromContext(ctx)
	if m.opts.maxCollect > 0 && len(in) > m.opts.maxCollect {
		return 0, fmt.Errorf("%d samples, max allowed %d: %w", len(in), m.opts.maxCollect, ErrTooManyItems)
	}
	if len(in) == 0 {
		return 0, nil
	}

	m.mtx.Lock()
	defer m.mtx.Unlock()

	pending := map[string]shape{}
	batch := make([]model.Sample, 0, len(in))
	for i, s := range in {
		if s.Dataset == "" {
			return 0, fmt.Errorf("sample %d: %w", i, ErrEmptyDataset)
		}
		if err := validVector(s.Vec); err != nil {
			return 0, fmt.Errorf("sample %d: %w", i, err)
		}
		if !s.Categorical() && (math.IsNaN(s.Label) || math.IsInf(s.Label, 0)) {
			return 0, fmt.Errorf("sample %d: %w", i, knn.ErrInvalidLabel)
		}
		want, ok := pending[s.Dataset]
		if !ok {
			if want, ok = m.shapeOf(s.Dataset); !ok {
				want = shape{dim: len(s.Vec), categorical: s.Categorical()}
			}
			pending[s.Dataset] = want
		}
		if len(s.Vec) != want.dim {
			return 0, fmt.Errorf("sample %d has %d dimensions, dataset %q has %d: %w",
				i, len(s.Vec), s.Dataset, want.dim, geom.ErrDimNotEqual)
		}
		if s.Categorical() != want.categorical {
			return 0, fmt.Errorf("sample %d, dataset %q: %w", i, s.Dataset, ErrMixedLabels)
		}
		// the stored vector must not alias the caller's slice
		s.Vec = s.Vec.Copy()
		batch = append(batch, s)
	}

	stored, err := m.deps.appendSamples(ctx, batch)
	if err != nil {
		return 0, fmt.Errorf("append samples: %w", err)
	}
	for name, sh := range pending {
		m.shapes[name] = sh
	}
	metrics.RecordCollect(ctx, len(stored))
	logger.Debugf("collected %d samples", len(stored))
	return len(stored), nil
}

// shapeOf must be called with mtx held.
func (m *manager) shapeOf(name string) (shape, bool) {
	if sh, ok := m.shapes[name]; ok {
		return sh, true
	}
	first := true
	list, err := m.deps.fetchSamples(name, func(model.Sample) bool {
		ok := first
		first = false
		return ok
	})
	if err != nil || len(list) == 0 {
		return shape{}, false
	}
	sh := shape{dim: len(list[0].Vec), categorical: list[0].Categorical()}
	m.shapes[name] = sh
	return sh, true
}

func (m *manager) Predict(ctx context.Context, req PredictRequest) (*PredictResult, error) {
	logger := logging.FromContext(ctx)
	if req.Dataset == "" {
		return nil, ErrEmptyDataset
	}
	if m.opts.maxQueries > 0 && len(req.Vectors) > m.opts.maxQueries {
		return nil, fmt.Errorf("%d vectors, max allowed %d: %w", len(req.Vectors), m.opts.maxQueries, ErrTooManyItems)
	}
	for i, v := range req.Vectors {
		if err := validVector(v); err != nil {
			return nil, fmt.Errorf("vector %d: %w", i, err)
		}
	}

	var opts []knn.Option
	if req.K != 0 {
		opts = append(opts, knn.WithK(req.K))
	}
	if req.Method != "" {
		method, err := predictor.ParseMethod(string(req.Method))
		if err != nil {
			return nil, fmt.Errorf("%v: %w", err, knn.ErrInvalidMethod)
		}
		opts = append(opts, knn.WithMethod(method))
	}
	estimator, err := m.estimator.With(opts...)
	if err != nil {
		return nil, err
	}

	samples, err := m.deps.fetchSamples(req.Dataset, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch samples: %w", err)
	}

	ref := make([]geom.Point, len(samples))
	labels := make([]float64, len(samples))
	var encoder *dataset.Encoder
	if len(samples) > 0 && samples[0].Categorical() {
		encoder = dataset.NewEncoder()
	}
	for i, s := range samples {
		ref[i] = s.Vec
		if encoder != nil {
			labels[i] = encoder.Encode(s.Class)
		} else {
			labels[i] = s.Label
		}
	}
	if encoder != nil && estimator.Method() == predictor.MethodRegression {
		return nil, fmt.Errorf("dataset %q is categorical, regression is not possible: %w", req.Dataset, knn.ErrInvalidMethod)
	}

	ctx = metrics.WithTags(ctx, string(estimator.Method()), req.Dataset)
	started := time.Now()
	values, neighbors, err := estimator.PredictDetailed(ctx, ref, labels, req.Vectors)
	metrics.RecordPredict(ctx, len(req.Vectors), started, err)
	if err != nil {
		return nil, fmt.Errorf("estimator.Predict: %w", err)
	}

	result := &PredictResult{
		Dataset:     req.Dataset,
		Method:      estimator.Method(),
		K:           estimator.K(),
		Predictions: make([]Prediction, len(values)),
	}
	for i, v := range values {
		p := Prediction{Label: v, Neighbors: neighbors[i], IDs: make([]uuid.UUID, len(neighbors[i]))}
		for j, idx := range neighbors[i] {
			p.IDs[j] = samples[idx].ID
		}
		if encoder != nil {
			if p.Class, err = encoder.Decode(v); err != nil {
				return nil, err
			}
		}
		result.Predictions[i] = p
	}
	logger.Debugf("predicted %d vectors against %q (%d samples)", len(values), req.Dataset, len(samples))
	return result, nil
}

func (m *manager) Datasets(_ context.Context) ([]DatasetInfo, error) {
	keys, err := m.deps.fetchKeys()
	if err != nil {
		return nil, fmt.Errorf("fetch keys: %w", err)
	}
	out := make([]DatasetInfo, 0, len(keys))
	for _, k := range keys {
		n, err := m.deps.countByDataset(k)
		if err != nil {
			return nil, fmt.Errorf("count %q: %w", k, err)
		}
		out = append(out, DatasetInfo{Name: k, Samples: n})
	}
	return out, nil
}

func (m *manager) Drop(ctx context.Context, name string) error {
	if name == "" {
		return ErrEmptyDataset
	}
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if err := m.deps.deleteDataset(ctx, name); err != nil {
		return fmt.Errorf("delete dataset: %w", err)
	}
	delete(m.shapes, name)
	logging.FromContext(ctx).Infof("dataset %q dropped", name)
	return nil
}

func validVector(v geom.Point) error {
	if len(v) == 0 || !v.Finite() {
		return ErrInvalidVector
	}
	return nil
}
