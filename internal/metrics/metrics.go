package metrics

import (
	"context"
	"fmt"
	"time"

	"contrib.go.opencensus.io/exporter/prometheus"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"

	"github.com/go-sod/knn/internal/logging"
)

var (
	NumPredictions = stats.Int64("predictions_total",
		"Total number of predict calls", stats.UnitDimensionless)
	NumQueries = stats.Int64("queries_total",
		"Total number of query points estimated", stats.UnitDimensionless)
	NumImputed = stats.Int64("imputed_cells_total",
		"Total number of cells filled by imputation", stats.UnitDimensionless)
	NumSkipped = stats.Int64("skipped_rows_total",
		"Rows left out of imputation because of missing features", stats.UnitDimensionless)
	NumSamples = stats.Int64("collected_samples_total",
		"Total number of labeled samples stored", stats.UnitDimensionless)
	LatencyMs = stats.Float64("latency",
		"Latency of predict calls", stats.UnitMilliseconds)

	KeyStatus, _  = tag.NewKey("status")
	KeyMethod, _  = tag.NewKey("method")
	KeyDataset, _ = tag.NewKey("dataset")

	TagValueStatusOK    = "ok"
	TagValueStatusError = "error"

	defaultLatencyMsDistribution = view.Distribution(
		0, 0.01, 0.05, 0.1, 0.3, 0.6, 0.8, 1, 2, 3, 4, 5, 6, 8, 10, 13, 16,
		20, 25, 30, 40, 50, 65, 80, 100, 130, 160, 200, 250, 300, 400, 500,
		650, 800, 1000, 2000, 5000, 10000, 20000, 50000, 100000)

	allTagKeys = []tag.Key{
		KeyStatus, KeyMethod, KeyDataset,
	}

	allViews = []*view.View{
		{
			Name:        LatencyMs.Name(),
			Measure:     LatencyMs,
			Description: LatencyMs.Description(),
			Aggregation: defaultLatencyMsDistribution,
			TagKeys:     allTagKeys,
		},
		{
			Name:        NumPredictions.Name(),
			Measure:     NumPredictions,
			Description: NumPredictions.Description(),
			Aggregation: view.Count(),
			TagKeys:     allTagKeys,
		},
		{
			Name:        NumQueries.Name(),
			Measure:     NumQueries,
			Description: NumQueries.Description(),
			Aggregation: view.Sum(),
			TagKeys:     allTagKeys,
		},
		{
			Name:        NumImputed.Name(),
			Measure:     NumImputed,
			Description: NumImputed.Description(),
			Aggregation: view.Sum(),
			TagKeys:     allTagKeys,
		},
		{
			Name:        NumSkipped.Name(),
			Measure:     NumSkipped,
			Description: NumSkipped.Description(),
			Aggregation: view.Sum(),
			TagKeys:     allTagKeys,
		},
		{
			Name:        NumSamples.Name(),
			Measure:     NumSamples,
			Description: NumSamples.Description(),
			Aggregation: view.Sum(),
			TagKeys:     allTagKeys,
		},
	}
)

// Register registers all views with opencensus. Calling it more than once
// is harmless.
func Register() error {
	if err := view.Register(allViews...); err != nil {
		return fmt.Errorf("registering views: %w", err)
	}
	return nil
}

// NewExporter registers the views and returns a prometheus exporter that
// serves them over http.
func NewExporter(ctx context.Context, namespace string) (*prometheus.Exporter, error) {
	logger := logging.FromContext(ctx)
	if err := Register(); err != nil {
		return nil, err
	}
	pe, err := prometheus.NewExporter(prometheus.Options{
		Namespace: namespace,
		OnError:   func(err error) { logger.Errorf("prometheus exporter: %v", err) },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenCensus Prometheus exporter: %w", err)
	}
	view.RegisterExporter(pe)
	return pe, nil
}

// WithTags returns ctx tagged with method and dataset.
func WithTags(ctx context.Context, method, dataset string) context.Context {
	tctx, err := tag.New(ctx, tag.Upsert(KeyMethod, method), tag.Upsert(KeyDataset, dataset))
	if err != nil {
		logging.FromContext(ctx).Debugf("unable to tag metrics context: %v", err)
		return ctx
	}
	return tctx
}

// RecordPredict records one predict call over queries points.
func RecordPredict(ctx context.Context, queries int, started time.Time, err error) {
	status := TagValueStatusOK
	if err != nil {
		status = TagValueStatusError
	}
	sctx, tagErr := tag.New(ctx, tag.Upsert(KeyStatus, status))
	if tagErr != nil {
		sctx = ctx
	}
	ms := float64(time.Since(started)) / float64(time.Millisecond)
	stats.Record(sctx, NumPredictions.M(1), NumQueries.M(int64(queries)), LatencyMs.M(ms))
}

// RecordImpute records the outcome of an imputation run.
func RecordImpute(ctx context.Context, imputed, skipped int) {
	stats.Record(ctx, NumImputed.M(int64(imputed)), NumSkipped.M(int64(skipped)))
}

// RecordCollect records stored samples.
func RecordCollect(ctx context.Context, n int) {
	stats.Record(ctx, NumSamples.M(int64(n)))
}
