package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/go-sod/knn/internal/collect"
	"github.com/go-sod/knn/internal/database"
	"github.com/go-sod/knn/internal/dispatcher"
	"github.com/go-sod/knn/internal/predictor/knn"
)

func newTestMux(t *testing.T) http.Handler {
	t.Helper()
	ctx := context.Background()
	db, err := database.NewFromEnv(ctx, &database.Config{
		FileName:    filepath.Join(t.TempDir(), "knn.db"),
		OpenTimeout: time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close(ctx) })

	estimator, err := knn.New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m, err := dispatcher.New(db, estimator)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	collectHandler, err := collect.NewHandler(&collect.Config{RequestTimeout: time.Second}, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	predictHandler, err := NewHandler(&Config{RequestTimeout: time.Second}, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/collect", collectHandler)
	mux.Handle("/predict", predictHandler)
	return mux
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestHandler_CollectThenPredict(t *testing.T) {
	t.Parallel()
	mux := newTestMux(t)

	w := post(t, mux, "/collect", `{"dataset": "houses", "data": [
		{"vector": [0, 0], "label": 10},
		{"vector": [1, 1], "label": 20},
		{"vector": [5, 5], "label": 90}
	]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("collect status got: %d, body: %s", w.Code, w.Body.String())
	}

	w = post(t, mux, "/predict", `{"dataset": "houses", "k": 2, "method": "regression", "vectors": [[0.1, 0.1]]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("predict status got: %d, body: %s", w.Code, w.Body.String())
	}
	var resp response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Dataset != "houses" || resp.K != 2 || resp.Method != "regression" || len(resp.Predictions) != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	p := resp.Predictions[0]
	if math.Abs(p.Label-15) > 1e-12 {
		t.Errorf("label got: %v, expected: 15", p.Label)
	}
	if diff := cmp.Diff([]int{0, 1}, p.Neighbors); diff != "" {
		t.Errorf("neighbors mismatch (-want +got):\n%s", diff)
	}
	if len(p.IDs) != 2 {
		t.Errorf("neighbor ids got: %d, expected: 2", len(p.IDs))
	}
}

func TestHandler_PredictErrors(t *testing.T) {
	t.Parallel()
	mux := newTestMux(t)
	if w := post(t, mux, "/collect", `{"dataset": "d", "data": [{"vector": [0], "label": 1}, {"vector": [1], "label": 2}]}`); w.Code != http.StatusOK {
		t.Fatalf("collect status got: %d", w.Code)
	}
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "unknown_dataset", body: `{"dataset": "x", "vectors": [[1]]}`, status: http.StatusNotFound},
		{name: "k_too_large", body: `{"dataset": "d", "k": 3, "vectors": [[1]]}`, status: http.StatusBadRequest},
		{name: "method", body: `{"dataset": "d", "method": "vote", "vectors": [[1]]}`, status: http.StatusBadRequest},
		{name: "dimension", body: `{"dataset": "d", "vectors": [[1, 2]]}`, status: http.StatusBadRequest},
		{name: "no_dataset", body: `{"vectors": [[1]]}`, status: http.StatusBadRequest},
		{name: "malformed", body: `{"dataset": `, status: http.StatusBadRequest},
	}
	for _, test := range tests {
		if w := post(t, mux, "/predict", test.body); w.Code != test.status {
			t.Errorf("%s: status got: %d, expected: %d, body: %s", test.name, w.Code, test.status, w.Body.String())
		}
	}
}

func TestHandler_CollectErrors(t *testing.T) {
	t.Parallel()
	mux := newTestMux(t)
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "dimension", body: `{"dataset": "d", "data": [{"vector": [0], "label": 1}, {"vector": [1, 2], "label": 2}]}`, status: http.StatusBadRequest},
		{name: "empty_vector", body: `{"dataset": "d", "data": [{"vector": [], "label": 1}]}`, status: http.StatusBadRequest},
		{name: "no_dataset", body: `{"data": [{"vector": [1], "label": 1}]}`, status: http.StatusBadRequest},
		{name: "unknown_field", body: `{"dataset": "d", "rows": []}`, status: http.StatusBadRequest},
	}
	for _, test := range tests {
		if w := post(t, mux, "/collect", test.body); w.Code != test.status {
			t.Errorf("%s: status got: %d, expected: %d, body: %s", test.name, w.Code, test.status, w.Body.String())
		}
	}
}
