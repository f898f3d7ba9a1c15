package metrics

import (
	"context"
	"testing"
	"time"

	"go.opencensus.io/stats/view"
)

func TestRecordPredict(t *testing.T) {
	if err := Register(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := WithTags(context.Background(), "regression", "test-record")
	RecordPredict(ctx, 3, time.Now(), nil)
	RecordPredict(ctx, 2, time.Now(), nil)

	rows, err := view.RetrieveData(NumQueries.Name())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var total float64
	for _, row := range rows {
		for _, tg := range row.Tags {
			if tg.Key == KeyDataset && tg.Value == "test-record" {
				total += row.Data.(*view.SumData).Value
			}
		}
	}
	if total != 5 {
		t.Errorf("queries sum got: %v, expected: 5", total)
	}
}
