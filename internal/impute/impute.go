package impute

import (
	"context"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/go-sod/knn/internal/dataset"
	"github.com/go-sod/knn/internal/geom"
	"github.com/go-sod/knn/internal/logging"
	"github.com/go-sod/knn/internal/metrics"
	"github.com/go-sod/knn/internal/predictor"
	"github.com/go-sod/knn/internal/predictor/knn"
)

// ErrColumnsMismatch is returned when train and input name their columns
// differently.
var ErrColumnsMismatch = fmt.Errorf("train and input columns differ")

// Result summarizes one imputation run.
type Result struct {
	RunID          uuid.UUID
	Reference      int
	Queries        int
	Imputed        int
	SkippedTrain   int
	SkippedQueries int
}

type Job struct {
	cfg       Config
	estimator *knn.Estimator
}

func New(cfg Config) (*Job, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid impute config: %w", err)
	}
	estimator, err := knn.NewFromConfig(cfg.Config)
	if err != nil {
		return nil, fmt.Errorf("knn.NewFromConfig: %w", err)
	}
	return &Job{cfg: cfg, estimator: estimator}, nil
}

// Run reads the train and input files, fills the missing target cells and
// writes the output file.
func (j *Job) Run(ctx context.Context) (*Result, error) {
	logger := logging.FromContext(ctx)
	logger.Infof("trying to open csv files %s, %s", j.cfg.TrainPath, j.cfg.InputPath)

	train, err := readTable(j.cfg.TrainPath)
	if err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}
	input, err := readTable(j.cfg.InputPath)
	if err != nil {
		return nil, fmt.Errorf("input: %w", err)
	}

	result, err := j.Impute(ctx, train, input)
	if err != nil {
		return nil, err
	}

	out, err := os.Create(j.cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("creating output: %w", err)
	}
	if err := dataset.WriteCSV(out, input); err != nil {
		_ = out.Close()
		return nil, fmt.Errorf("writing output: %w", err)
	}
	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("closing output: %w", err)
	}
	logger.Infof("run %s finished, imputed %d of %d rows into %s",
		result.RunID, result.Imputed, result.Queries+result.SkippedQueries, j.cfg.OutputPath)
	return result, nil
}

// Impute fills, in place, every missing target cell of input whose features
// are complete, using train as the reference set.
func (j *Job) Impute(ctx context.Context, train, input *dataset.Table) (*Result, error) {
	result := &Result{RunID: uuid.New()}
	logger := logging.FromContext(ctx).With("run", result.RunID.String())
	ctx = metrics.WithTags(ctx, string(j.estimator.Method()), "impute")

	if len(train.Columns) != len(input.Columns) {
		return nil, fmt.Errorf("train has %d columns, input has %d: %w",
			len(train.Columns), len(input.Columns), geom.ErrDimNotEqual)
	}
	for i := range train.Columns {
		if train.Columns[i] != input.Columns[i] {
			return nil, fmt.Errorf("column %d is %q in train and %q in input: %w",
				i, train.Columns[i], input.Columns[i], ErrColumnsMismatch)
		}
	}
	trainTarget, err := train.ResolveColumn(j.cfg.Target, j.cfg.TargetPosition)
	if err != nil {
		return nil, fmt.Errorf("train target: %w", err)
	}
	inputTarget, err := input.ResolveColumn(j.cfg.Target, j.cfg.TargetPosition)
	if err != nil {
		return nil, fmt.Errorf("input target: %w", err)
	}

	classification := j.estimator.Method() == predictor.MethodClassification
	encoder := dataset.NewEncoder()

	var (
		ref    []geom.Point
		labels []float64
	)
	for row := 0; row < train.Len(); row++ {
		point, err := train.Point(row, trainTarget)
		if err != nil {
			logger.Warnf("skipping train row: %v", err)
			result.SkippedTrain++
			continue
		}
		if !point.Finite() {
			logger.Warnf("skipping train row %s: non finite feature", train.Index[row])
			result.SkippedTrain++
			continue
		}
		var label float64
		if classification {
			if train.IsMissing(row, trainTarget) {
				logger.Warnf("skipping train row %s: missing label", train.Index[row])
				result.SkippedTrain++
				continue
			}
			label = encoder.Encode(train.Records[row][trainTarget])
		} else if label, err = train.Float(row, trainTarget); err != nil {
			logger.Warnf("skipping train row: %v", err)
			result.SkippedTrain++
			continue
		} else if math.IsNaN(label) || math.IsInf(label, 0) {
			logger.Warnf("skipping train row %s: non finite label", train.Index[row])
			result.SkippedTrain++
			continue
		}
		ref = append(ref, point)
		labels = append(labels, label)
	}
	result.Reference = len(ref)

	var (
		queries []geom.Point
		rows    []int
	)
	for row := 0; row < input.Len(); row++ {
		if !input.IsMissing(row, inputTarget) {
			continue
		}
		point, err := input.Point(row, inputTarget)
		if err != nil {
			logger.Warnf("skipping input row: %v", err)
			result.SkippedQueries++
			continue
		}
		if !point.Finite() {
			logger.Warnf("skipping input row %s: non finite feature", input.Index[row])
			result.SkippedQueries++
			continue
		}
		queries = append(queries, point)
		rows = append(rows, row)
	}
	result.Queries = len(queries)
	logger.Debugf("reference set %d rows, %d queries", result.Reference, result.Queries)

	if len(queries) == 0 {
		metrics.RecordImpute(ctx, 0, result.SkippedQueries)
		return result, nil
	}

	started := time.Now()
	predictions, err := j.estimator.Predict(ctx, ref, labels, queries)
	metrics.RecordPredict(ctx, len(queries), started, err)
	if err != nil {
		return nil, fmt.Errorf("estimator.Predict: %w", err)
	}

	for i, row := range rows {
		var cell string
		if classification {
			if cell, err = encoder.Decode(predictions[i]); err != nil {
				return nil, fmt.Errorf("row %s: %w", input.Index[row], err)
			}
		} else {
			cell = strconv.FormatFloat(Round(predictions[i], j.cfg.Decimals), 'f', -1, 64)
		}
		input.Set(row, inputTarget, cell)
		result.Imputed++
	}
	metrics.RecordImpute(ctx, result.Imputed, result.SkippedQueries)
	return result, nil
}

// Round rounds half to even at the given number of decimals. Negative
// decimals leave v untouched.
func Round(v float64, decimals int) float64 {
	if decimals < 0 {
		return v
	}
	p := math.Pow(10, float64(decimals))
	return math.RoundToEven(v*p) / p
}

func readTable(path string) (*dataset.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	t, err := dataset.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return t, nil
}
